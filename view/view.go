// Package view turns session snapshots into display models and terminal output.
package view

import (
	"math"
	"strings"
	"time"

	"weatherwatch/datasource"
	"weatherwatch/models"
	"weatherwatch/session"
)

// Units describes how values are labeled for a unit system
type Units struct {
	Temperature string `json:"temperature"`
	Speed       string `json:"speed"`
}

// UnitsFor returns the labels for metric, imperial or standard
func UnitsFor(system string) Units {
	switch system {
	case "imperial":
		return Units{Temperature: "°F", Speed: "mph"}
	case "standard":
		return Units{Temperature: "K", Speed: "m/s"}
	default:
		return Units{Temperature: "°C", Speed: "m/s"}
	}
}

// BackgroundClass returns the styling class for a weather main category
func BackgroundClass(main string) string {
	switch strings.ToLower(main) {
	case "clear":
		return "sunny"
	case "clouds":
		return "cloudy"
	case "rain", "drizzle":
		return "rainy"
	default:
		return ""
	}
}

// Current is the current-conditions panel
type Current struct {
	Location    string    `json:"location"`
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feelsLike"`
	TempMin     float64   `json:"tempMin"`
	TempMax     float64   `json:"tempMax"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure"`
	WindSpeed   float64   `json:"windSpeed"`
	WindDeg     int       `json:"windDeg"`
	Visibility  int       `json:"visibility"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	IconURL     string    `json:"iconUrl"`
	Background  string    `json:"background"`
}

// DayCard is one card in the forecast row
type DayCard struct {
	Date          string  `json:"date"`
	Weekday       string  `json:"weekday"`
	TempMin       float64 `json:"tempMin"`
	TempMax       float64 `json:"tempMax"`
	Description   string  `json:"description"`
	IconURL       string  `json:"iconUrl"`
	Precipitation int     `json:"precipitation"` // percent
}

// Page is everything a front end shows for one session state
type Page struct {
	Phase        session.Phase       `json:"phase"`
	Loading      bool                `json:"loading"`
	Superseded   bool                `json:"superseded,omitempty"`
	Query        string              `json:"query"`
	LocationName string              `json:"locationName,omitempty"`
	Error        string              `json:"error,omitempty"`
	ErrorKind    datasource.Kind     `json:"errorKind,omitempty"`
	Current      *Current            `json:"current,omitempty"`
	Forecast     []DayCard           `json:"forecast"`
	Suggestions  []models.Suggestion `json:"suggestions"`
	Units        Units               `json:"units"`

	// Configuration holds fatal configuration errors, shown regardless of phase
	Configuration []datasource.Classification `json:"configuration"`
}

// Round rounds to one decimal place for display
func Round(v float64) float64 {
	return math.Round(v*10) / 10
}

// NewPage builds the display model for a snapshot
func NewPage(snap session.Snapshot, units Units) Page {
	page := Page{
		Phase:         snap.Phase,
		Loading:       snap.Loading(),
		Superseded:    snap.Superseded,
		Query:         snap.Query,
		LocationName:  snap.LocationName,
		Forecast:      []DayCard{},
		Suggestions:   snap.Suggestions,
		Units:         units,
		Configuration: snap.Configuration,
	}
	if page.Suggestions == nil {
		page.Suggestions = []models.Suggestion{}
	}
	if page.Configuration == nil {
		page.Configuration = []datasource.Classification{}
	}

	if snap.Failure != nil {
		page.Error = snap.Failure.Message
		page.ErrorKind = snap.Failure.Kind
		return page
	}
	if snap.Report == nil {
		return page
	}

	c := snap.Report.Current
	page.Current = &Current{
		Location:    c.DisplayName(),
		Time:        c.Timestamp,
		Temperature: Round(c.Temperature),
		FeelsLike:   Round(c.FeelsLike),
		TempMin:     Round(c.TempMin),
		TempMax:     Round(c.TempMax),
		Humidity:    c.Humidity,
		Pressure:    c.Pressure,
		WindSpeed:   Round(c.WindSpeed),
		WindDeg:     c.WindDeg,
		Visibility:  c.Visibility,
		Sunrise:     c.Sunrise,
		Sunset:      c.Sunset,
		Condition:   c.Condition.Main,
		Description: c.Condition.Description,
		IconURL:     datasource.IconURL(c.Condition.Icon),
		Background:  BackgroundClass(c.Condition.Main),
	}

	for _, d := range snap.Report.Days {
		page.Forecast = append(page.Forecast, DayCard{
			Date:          d.DateKey,
			Weekday:       d.Date.Weekday().String()[:3],
			TempMin:       Round(d.TempMin),
			TempMax:       Round(d.TempMax),
			Description:   d.Condition.Description,
			IconURL:       datasource.IconURL(d.Condition.Icon),
			Precipitation: int(math.Round(d.Precipitation * 100)),
		})
	}
	return page
}
