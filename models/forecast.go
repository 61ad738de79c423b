package models

import (
	"time"
)

// ForecastEntry is one 3-hour forecast sample as returned by the provider
type ForecastEntry struct {
	Timestamp     time.Time `json:"timestamp"` // time this forecast is for
	DateText      string    `json:"dateText"`  // provider "dt_txt" stamp (UTC)
	Temperature   float64   `json:"temperature"`
	FeelsLike     float64   `json:"feelsLike"`
	TempMin       float64   `json:"tempMin"`
	TempMax       float64   `json:"tempMax"`
	Humidity      float64   `json:"humidity"` // percentage
	Pressure      float64   `json:"pressure"` // in hPa
	WindSpeed     float64   `json:"windSpeed"`
	WindDeg       int       `json:"windDeg"`
	Visibility    int       `json:"visibility"`    // in meters
	Precipitation float64   `json:"precipitation"` // probability of precipitation, 0..1
	Condition     Condition `json:"condition"`
}

// ForecastDay is a daily summary derived by aggregating same-date forecast entries.
// Only TempMin and TempMax are folded across the day; the other fields come from
// the day's representative entry.
type ForecastDay struct {
	DateKey       string    `json:"dateKey"` // calendar date in the aggregation location, 2006-01-02
	Date          time.Time `json:"date"`    // local midnight of DateKey
	TempMin       float64   `json:"tempMin"`
	TempMax       float64   `json:"tempMax"`
	Humidity      float64   `json:"humidity"`
	Pressure      float64   `json:"pressure"`
	WindSpeed     float64   `json:"windSpeed"`
	WindDeg       int       `json:"windDeg"`
	Visibility    int       `json:"visibility"`
	Precipitation float64   `json:"precipitation"`
	Condition     Condition `json:"condition"`
	Samples       int       `json:"samples"` // raw entries folded into this day
}

// WeatherReport is the result of one successful weather lookup
type WeatherReport struct {
	Query    LocationQuery     `json:"query"`
	Current  CurrentConditions `json:"current"`
	Entries  []ForecastEntry   `json:"entries"`
	Days     []ForecastDay     `json:"days"`
	Provider string            `json:"provider"`
	Fetched  time.Time         `json:"fetched"`
}

// Suggestion is a candidate place match for partial user text input
type Suggestion struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Label returns the query text that selecting this suggestion produces
func (s Suggestion) Label() string {
	if s.Country == "" {
		return s.Name
	}
	return s.Name + ", " + s.Country
}
