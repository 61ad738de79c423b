package models

import (
	"fmt"
	"time"
)

// Condition is a weather condition as reported by the provider
type Condition struct {
	ID          int    `json:"id"`          // provider condition code
	Main        string `json:"main"`        // main category, e.g. "Rain"
	Description string `json:"description"` // short text description
	Icon        string `json:"icon"`        // provider icon code
}

// CurrentConditions is a single snapshot of weather at a point in time for a location
type CurrentConditions struct {
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feelsLike"`
	TempMin     float64   `json:"tempMin"`
	TempMax     float64   `json:"tempMax"`
	Humidity    float64   `json:"humidity"`   // percentage
	Pressure    float64   `json:"pressure"`   // in hPa
	WindSpeed   float64   `json:"windSpeed"`  // in the unit system of the request
	WindDeg     int       `json:"windDeg"`    // wind direction in degrees
	Visibility  int       `json:"visibility"` // in meters
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
	Condition   Condition `json:"condition"`
}

// DisplayName returns "name, country", or just the name when the country is unknown
func (c CurrentConditions) DisplayName() string {
	if c.Country == "" {
		return c.Name
	}
	return fmt.Sprintf("%s, %s", c.Name, c.Country)
}

// Coordinates is a latitude/longitude pair
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// LocationQuery selects a location either by city name or by coordinates.
// Exactly one form is active.
type LocationQuery struct {
	City        string       `json:"city,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// NewCityQuery creates a query by free-text city name
func NewCityQuery(city string) LocationQuery {
	return LocationQuery{City: city}
}

// NewCoordinatesQuery creates a query by latitude and longitude
func NewCoordinatesQuery(lat, lon float64) LocationQuery {
	return LocationQuery{Coordinates: &Coordinates{Lat: lat, Lon: lon}}
}

// IsCoordinates reports whether the query is keyed by coordinates
func (q LocationQuery) IsCoordinates() bool {
	return q.Coordinates != nil
}

func (q LocationQuery) String() string {
	if q.IsCoordinates() {
		return q.Coordinates.String()
	}
	return q.City
}
