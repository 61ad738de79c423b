package session

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"weatherwatch/datasource"
	"weatherwatch/forecast"
	"weatherwatch/geolocation"
	"weatherwatch/logger"
	"weatherwatch/models"
)

const (
	// SuggestionMinLength is the shortest input that triggers a suggestion lookup
	SuggestionMinLength = 3
	// SuggestionLimit caps the suggestions kept for display
	SuggestionLimit = 3

	suggestionFetchLimit = 5
)

// Service orchestrates user actions: it runs lookups against the data sources
// and records their outcome in the session State.
type Service struct {
	weather     datasource.WeatherSource
	suggestions datasource.SuggestionSource
	locator     geolocation.Locator
	aggregate   forecast.Options
	state       *State
}

// NewService creates a session service. suggestions and locator may be nil,
// which disables suggestions and reports geolocation as unsupported.
func NewService(weather datasource.WeatherSource, suggestions datasource.SuggestionSource, locator geolocation.Locator, opts forecast.Options) *Service {
	if locator == nil {
		locator = geolocation.Unsupported{}
	}
	return &Service{
		weather:     weather,
		suggestions: suggestions,
		locator:     locator,
		aggregate:   opts,
		state:       NewState(),
	}
}

// State returns the current session snapshot
func (s *Service) State() Snapshot {
	return s.state.Snapshot()
}

// ReportConfiguration records every fatal configuration error joined into err
// so that it stays visible in the session state. Non-fatal errors are ignored.
func (s *Service) ReportConfiguration(err error) {
	for _, c := range datasource.ClassifyAll(err) {
		if c.Fatal && s.state.AddConfiguration(c) {
			logger.Errorf("Configuration error: %s", c.Message)
		}
	}
}

// result returns the current snapshot as seen by the request holding token
func (s *Service) result(token string) Snapshot {
	snap := s.state.Snapshot()
	snap.Superseded = snap.Token != token
	return snap
}

// SearchCity looks up current conditions and forecast for a city name
func (s *Service) SearchCity(ctx context.Context, city string) Snapshot {
	city = strings.TrimSpace(city)
	s.state.SetQuery(city)
	s.state.ClearSuggestions()

	if city == "" {
		return s.result(s.state.Reject(datasource.Classify(datasource.ErrEmptyQuery)))
	}

	token, reqCtx := s.state.Begin(ctx)
	s.fetch(reqCtx, token, models.NewCityQuery(city))
	return s.result(token)
}

// SearchCoordinates looks up current conditions and forecast for a coordinate pair
func (s *Service) SearchCoordinates(ctx context.Context, lat, lon float64) Snapshot {
	token, reqCtx := s.state.Begin(ctx)
	s.fetch(reqCtx, token, models.NewCoordinatesQuery(lat, lon))
	return s.result(token)
}

// UseCurrentLocation clears the query text, resolves the current location and
// looks up the weather there. A geolocation failure makes no weather request.
func (s *Service) UseCurrentLocation(ctx context.Context) Snapshot {
	s.state.SetQuery("")
	s.state.ClearSuggestions()

	token, reqCtx := s.state.Begin(ctx)

	coords, err := s.locator.Locate(reqCtx)
	if err != nil {
		s.fail(token, "current location", err)
		return s.result(token)
	}

	logger.Debugf("Resolved current location to %s", coords)
	s.fetch(reqCtx, token, models.NewCoordinatesQuery(coords.Lat, coords.Lon))
	return s.result(token)
}

func (s *Service) fetch(ctx context.Context, token string, query models.LocationQuery) {
	logger.Infof("Fetching weather for %s from %s", query, s.weather.Name())

	report, err := s.weather.FetchWeather(ctx, query)
	if err != nil {
		s.fail(token, query.String(), err)
		return
	}

	report.Days = forecast.AggregateByDay(report.Entries, s.aggregate)
	if !s.state.Succeed(token, report) {
		logger.Debugf("Dropped stale weather result for %s", query)
		return
	}
	logger.Infof("Updated weather for %s (%d forecast days)", report.Current.DisplayName(), len(report.Days))
}

func (s *Service) fail(token, what string, err error) {
	failure := datasource.Classify(err)
	if !s.state.Fail(token, failure) {
		logger.Debugf("Dropped stale failure for %s: %v", what, err)
		return
	}
	if failure.Fatal {
		s.state.AddConfiguration(failure)
		logger.Errorf("Configuration error while fetching %s: %v", what, err)
		return
	}
	if errors.Is(err, context.Canceled) {
		logger.Debugf("Request for %s canceled", what)
		return
	}
	logger.Warnf("Error fetching %s: %v", what, err)
}

// Suggest records partial as the query text and returns up to SuggestionLimit
// place suggestions for it. Input shorter than SuggestionMinLength returns an
// empty list without a lookup. Failures yield an empty list; a missing
// credential is also recorded as a configuration error in the state.
func (s *Service) Suggest(ctx context.Context, partial string) []models.Suggestion {
	s.state.SetQuery(partial)

	prefix := strings.TrimSpace(partial)
	if utf8.RuneCountInString(prefix) < SuggestionMinLength || s.suggestions == nil {
		s.state.ClearSuggestions()
		return []models.Suggestion{}
	}

	cities, err := s.suggestions.SearchCities(ctx, prefix, suggestionFetchLimit)
	if err != nil {
		if failure := datasource.Classify(err); failure.Fatal {
			if s.state.AddConfiguration(failure) {
				logger.Errorf("Suggestions from %s unavailable: %v", s.suggestions.Name(), err)
			}
		} else {
			logger.Debugf("Suggestions for %q from %s failed: %v", prefix, s.suggestions.Name(), err)
		}
		s.state.SetSuggestions(partial, nil)
		return []models.Suggestion{}
	}

	suggestions := ToSuggestions(cities, SuggestionLimit)
	s.state.SetSuggestions(partial, suggestions)
	return suggestions
}

// ToSuggestions drops cities without a resolvable name and keeps at most limit
func ToSuggestions(cities []datasource.City, limit int) []models.Suggestion {
	out := make([]models.Suggestion, 0, limit)
	for _, c := range cities {
		if len(out) == limit {
			break
		}
		name := strings.TrimSpace(c.City)
		if name == "" {
			name = strings.TrimSpace(c.Name)
		}
		if name == "" {
			continue
		}
		country := c.CountryCode
		if country == "" {
			country = c.Country
		}
		out = append(out, models.Suggestion{ID: c.ID, Name: name, Country: country})
	}
	return out
}

// Select replaces the query text with "name, country" and clears the suggestions
func (s *Service) Select(suggestion models.Suggestion) Snapshot {
	s.state.SetQuery(suggestion.Label())
	s.state.ClearSuggestions()
	return s.state.Snapshot()
}
