package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"weatherwatch/logger"
	"weatherwatch/models"
)

const (
	weatherEndpoint  = "weather"
	forecastEndpoint = "forecast"

	iconURLTemplate = "https://openweathermap.org/img/wn/%s@2x.png"
	userAgent       = "weatherwatch/1.0"
)

// IconURL returns the image URL for a provider icon code
func IconURL(code string) string {
	if code == "" {
		return ""
	}
	return fmt.Sprintf(iconURLTemplate, code)
}

// OpenWeatherMapClient fetches current conditions and the 5-day/3-hour forecast
type OpenWeatherMapClient struct {
	apiKey string
	units  string
	client *resty.Client
}

// Ensure OpenWeatherMapClient implements WeatherSource
var _ WeatherSource = (*OpenWeatherMapClient)(nil)

// NewOpenWeatherMapClient creates a client for the given base URL
// (e.g. https://api.openweathermap.org/data/2.5). Units is one of metric, imperial or standard.
func NewOpenWeatherMapClient(apiKey, baseURL, units string, timeout time.Duration) *OpenWeatherMapClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout).
		SetRetryCount(0)

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debugf("OpenWeatherMap %s -> %d in %s", resp.Request.RawRequest.URL.Path, resp.StatusCode(), resp.Time())
		return nil
	})

	if units == "" {
		units = "metric"
	}

	return &OpenWeatherMapClient{
		apiKey: apiKey,
		units:  units,
		client: client,
	}
}

// Name returns the provider name
func (p *OpenWeatherMapClient) Name() string {
	return "OpenWeatherMap"
}

// FetchByCity fetches current conditions and forecast for a city name
func (p *OpenWeatherMapClient) FetchByCity(ctx context.Context, city string) (models.WeatherReport, error) {
	return p.FetchWeather(ctx, models.NewCityQuery(city))
}

// FetchByCoordinates fetches current conditions and forecast for a latitude/longitude pair
func (p *OpenWeatherMapClient) FetchByCoordinates(ctx context.Context, lat, lon float64) (models.WeatherReport, error) {
	return p.FetchWeather(ctx, models.NewCoordinatesQuery(lat, lon))
}

// FetchWeather fetches current conditions and, only if that succeeds, the forecast.
// Both requests use the same location selector.
func (p *OpenWeatherMapClient) FetchWeather(ctx context.Context, query models.LocationQuery) (models.WeatherReport, error) {
	if p.apiKey == "" {
		return models.WeatherReport{}, ErrMissingAPIKey
	}

	params, err := p.locationParams(query)
	if err != nil {
		return models.WeatherReport{}, err
	}

	current, err := p.currentConditions(ctx, params)
	if err != nil {
		return models.WeatherReport{}, err
	}

	entries, err := p.forecast(ctx, params)
	if err != nil {
		return models.WeatherReport{}, err
	}

	return models.WeatherReport{
		Query:    query,
		Current:  current,
		Entries:  entries,
		Provider: p.Name(),
		Fetched:  time.Now(),
	}, nil
}

func (p *OpenWeatherMapClient) locationParams(query models.LocationQuery) (map[string]string, error) {
	params := map[string]string{
		"units": p.units,
		"appid": p.apiKey,
	}

	if query.IsCoordinates() {
		params["lat"] = strconv.FormatFloat(query.Coordinates.Lat, 'f', -1, 64)
		params["lon"] = strconv.FormatFloat(query.Coordinates.Lon, 'f', -1, 64)
		return params, nil
	}

	city := strings.TrimSpace(query.City)
	if city == "" {
		return nil, ErrEmptyQuery
	}
	params["q"] = city
	return params, nil
}

// statusCode accepts both the numeric and the string form of the "cod" field
type statusCode int

func (s *statusCode) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("invalid cod %q: %w", data, err)
	}
	*s = statusCode(n)
	return nil
}

type owmStatus struct {
	Cod     statusCode `json:"cod"`
	Message any        `json:"message"`
}

func (s owmStatus) message() string {
	switch m := s.Message.(type) {
	case string:
		return m
	case nil:
		return ""
	default:
		return fmt.Sprint(m)
	}
}

type owmCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
}

type owmWind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

// OpenWeatherMapCurrentResponse is the /weather response body
type OpenWeatherMapCurrentResponse struct {
	owmStatus
	Name       string         `json:"name"`
	Dt         int64          `json:"dt"`
	Main       owmMain        `json:"main"`
	Wind       owmWind        `json:"wind"`
	Visibility int            `json:"visibility"`
	Weather    []owmCondition `json:"weather"`
	Sys        struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
}

// OpenWeatherMapForecastResponse is the /forecast response body
type OpenWeatherMapForecastResponse struct {
	owmStatus
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []struct {
		Dt         int64          `json:"dt"`
		DtTxt      string         `json:"dt_txt"`
		Main       owmMain        `json:"main"`
		Wind       owmWind        `json:"wind"`
		Visibility int            `json:"visibility"`
		Pop        float64        `json:"pop"` // probability of precipitation
		Weather    []owmCondition `json:"weather"`
	} `json:"list"`
}

func (p *OpenWeatherMapClient) currentConditions(ctx context.Context, params map[string]string) (models.CurrentConditions, error) {
	var body OpenWeatherMapCurrentResponse
	if err := p.get(ctx, weatherEndpoint, params, &body); err != nil {
		return models.CurrentConditions{}, err
	}

	return models.CurrentConditions{
		Name:        body.Name,
		Country:     body.Sys.Country,
		Timestamp:   time.Unix(body.Dt, 0),
		Temperature: body.Main.Temp,
		FeelsLike:   body.Main.FeelsLike,
		TempMin:     body.Main.TempMin,
		TempMax:     body.Main.TempMax,
		Humidity:    body.Main.Humidity,
		Pressure:    body.Main.Pressure,
		WindSpeed:   body.Wind.Speed,
		WindDeg:     body.Wind.Deg,
		Visibility:  body.Visibility,
		Sunrise:     time.Unix(body.Sys.Sunrise, 0),
		Sunset:      time.Unix(body.Sys.Sunset, 0),
		Condition:   firstCondition(body.Weather),
	}, nil
}

func (p *OpenWeatherMapClient) forecast(ctx context.Context, params map[string]string) ([]models.ForecastEntry, error) {
	var body OpenWeatherMapForecastResponse
	if err := p.get(ctx, forecastEndpoint, params, &body); err != nil {
		return nil, err
	}

	entries := make([]models.ForecastEntry, 0, len(body.List))
	for _, item := range body.List {
		entries = append(entries, models.ForecastEntry{
			Timestamp:     time.Unix(item.Dt, 0),
			DateText:      item.DtTxt,
			Temperature:   item.Main.Temp,
			FeelsLike:     item.Main.FeelsLike,
			TempMin:       item.Main.TempMin,
			TempMax:       item.Main.TempMax,
			Humidity:      item.Main.Humidity,
			Pressure:      item.Main.Pressure,
			WindSpeed:     item.Wind.Speed,
			WindDeg:       item.Wind.Deg,
			Visibility:    item.Visibility,
			Precipitation: item.Pop,
			Condition:     firstCondition(item.Weather),
		})
	}
	return entries, nil
}

// get performs one request and decodes a successful body into out.
// A 200 response carrying a failure "cod" is reported as that status.
func (p *OpenWeatherMapClient) get(ctx context.Context, endpoint string, params map[string]string, out interface{ status() owmStatus }) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/" + endpoint)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		var status owmStatus
		_ = json.Unmarshal(resp.Body(), &status)
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode(), Message: status.message()}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("failed to parse response: %v", err),
		}
	}

	if status := out.status(); status.Cod != 0 && int(status.Cod) != http.StatusOK {
		return &APIError{Endpoint: endpoint, StatusCode: int(status.Cod), Message: status.message()}
	}
	return nil
}

func (s *owmStatus) status() owmStatus {
	return *s
}

func firstCondition(weather []owmCondition) models.Condition {
	if len(weather) == 0 {
		return models.Condition{}
	}
	w := weather[0]
	return models.Condition{
		ID:          w.ID,
		Main:        w.Main,
		Description: w.Description,
		Icon:        w.Icon,
	}
}
