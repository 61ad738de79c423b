package datasource

import (
	"context"

	"weatherwatch/models"
)

// WeatherSource fetches current conditions and the raw forecast for one location
type WeatherSource interface {
	// FetchWeather fetches current conditions and, only if that succeeds, the forecast
	FetchWeather(ctx context.Context, query models.LocationQuery) (models.WeatherReport, error)

	// Name returns the provider's name
	Name() string
}

// SuggestionSource looks up places whose name starts with a prefix
type SuggestionSource interface {
	// SearchCities returns at most limit candidate places for prefix
	SearchCities(ctx context.Context, prefix string, limit int) ([]City, error)

	// Name returns the provider's name
	Name() string
}

// City is a candidate place returned by a SuggestionSource
type City struct {
	ID          int    `json:"id"`
	City        string `json:"city"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
}
