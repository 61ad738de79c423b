package view

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherwatch/datasource"
	"weatherwatch/models"
	"weatherwatch/session"
)

func TestBackgroundClass(t *testing.T) {
	assert.Equal(t, "sunny", BackgroundClass("Clear"))
	assert.Equal(t, "cloudy", BackgroundClass("Clouds"))
	assert.Equal(t, "rainy", BackgroundClass("Rain"))
	assert.Equal(t, "rainy", BackgroundClass("drizzle"))
	assert.Equal(t, "", BackgroundClass("Snow"))
	assert.Equal(t, "", BackgroundClass(""))
}

func TestCompass(t *testing.T) {
	assert.Equal(t, "N", Compass(0))
	assert.Equal(t, "N", Compass(355))
	assert.Equal(t, "E", Compass(90))
	assert.Equal(t, "WSW", Compass(250))
	assert.Equal(t, "S", Compass(-180))
}

func successSnapshot() session.Snapshot {
	day := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	return session.Snapshot{
		Phase:        session.PhaseSuccess,
		Query:        "Paris",
		LocationName: "Paris, FR",
		Report: &models.WeatherReport{
			Current: models.CurrentConditions{
				Name: "Paris", Country: "FR",
				Temperature: 18.44, FeelsLike: 17.96, TempMin: 16.1, TempMax: 19.8,
				Humidity: 58, Pressure: 1021, WindSpeed: 3.6, WindDeg: 250, Visibility: 10000,
				Condition: models.Condition{Main: "Clear", Description: "clear sky", Icon: "01d"},
			},
			Days: []models.ForecastDay{
				{DateKey: "2024-06-05", Date: day, TempMin: 11.94, TempMax: 21.36, Precipitation: 0.37,
					Condition: models.Condition{Description: "few clouds", Icon: "02d"}},
			},
		},
	}
}

func TestNewPageSuccess(t *testing.T) {
	page := NewPage(successSnapshot(), UnitsFor("metric"))

	require.NotNil(t, page.Current)
	assert.Equal(t, "Paris, FR", page.Current.Location)
	assert.Equal(t, 18.4, page.Current.Temperature)
	assert.Equal(t, 18.0, page.Current.FeelsLike)
	assert.Equal(t, "sunny", page.Current.Background)
	assert.Equal(t, "https://openweathermap.org/img/wn/01d@2x.png", page.Current.IconURL)
	assert.Empty(t, page.Error)

	require.Len(t, page.Forecast, 1)
	card := page.Forecast[0]
	assert.Equal(t, "2024-06-05", card.Date)
	assert.Equal(t, "Wed", card.Weekday)
	assert.Equal(t, 11.9, card.TempMin)
	assert.Equal(t, 21.4, card.TempMax)
	assert.Equal(t, 37, card.Precipitation)
}

func TestNewPageError(t *testing.T) {
	snap := session.Snapshot{
		Phase:   session.PhaseError,
		Failure: &datasource.Classification{Kind: datasource.KindNotFound, Message: datasource.MessageNotFound},
	}
	page := NewPage(snap, UnitsFor("metric"))

	assert.Equal(t, datasource.MessageNotFound, page.Error)
	assert.Equal(t, datasource.KindNotFound, page.ErrorKind)
	assert.Nil(t, page.Current)
	assert.Empty(t, page.Forecast)
	assert.NotNil(t, page.Suggestions)
	assert.NotNil(t, page.Configuration)
}

func TestNewPageCarriesConfigurationAndSuperseded(t *testing.T) {
	snap := successSnapshot()
	snap.Superseded = true
	snap.Configuration = []datasource.Classification{
		{Kind: datasource.KindConfiguration, Message: datasource.MessageMissingSuggestionKey, Fatal: true},
	}
	page := NewPage(snap, UnitsFor("metric"))

	assert.True(t, page.Superseded)
	require.Len(t, page.Configuration, 1)
	assert.Equal(t, datasource.MessageMissingSuggestionKey, page.Configuration[0].Message)
	assert.NotNil(t, page.Current)
}

func TestWritePage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, NewPage(successSnapshot(), UnitsFor("imperial"))))

	out := buf.String()
	assert.Contains(t, out, "Paris, FR")
	assert.Contains(t, out, "18.4°F")
	assert.Contains(t, out, "3.6 mph WSW")
	assert.Contains(t, out, "1-Day Forecast")
	assert.Contains(t, out, "Wed 2024-06-05")
	assert.Contains(t, out, "few clouds")
}

func TestWritePageStates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, Page{Loading: true}))
	assert.Equal(t, "Loading...\n", buf.String())

	buf.Reset()
	require.NoError(t, WritePage(&buf, Page{Error: datasource.MessageUnauthorized}))
	assert.Equal(t, "Error: "+datasource.MessageUnauthorized+"\n", buf.String())
}

func TestWriteSuggestions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSuggestions(&buf, []models.Suggestion{{ID: 1, Name: "Paris", Country: "FR"}}))
	assert.Equal(t, "1. Paris, FR\n", buf.String())
}
