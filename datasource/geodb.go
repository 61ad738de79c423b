package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"weatherwatch/config"
)

const citiesEndpoint = "cities"

// GeoDBClient implements SuggestionSource against the GeoDB Cities API
type GeoDBClient struct {
	apiKey string
	client *resty.Client
}

// Ensure GeoDBClient implements SuggestionSource
var _ SuggestionSource = (*GeoDBClient)(nil)

// NewGeoDBClient creates a new GeoDB client. host is sent as X-RapidAPI-Host when set.
func NewGeoDBClient(apiKey, baseURL, host string, timeout time.Duration) *GeoDBClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetHeader("X-RapidAPI-Key", apiKey).
		SetTimeout(timeout).
		SetRetryCount(0)
	if host != "" {
		client.SetHeader("X-RapidAPI-Host", host)
	}

	return &GeoDBClient{
		apiKey: apiKey,
		client: client,
	}
}

// Name returns the provider name
func (g *GeoDBClient) Name() string {
	return "GeoDB"
}

// SearchCities returns up to limit cities whose name starts with prefix, most populous first
func (g *GeoDBClient) SearchCities(ctx context.Context, prefix string, limit int) ([]City, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("%w: %w", ErrMissingAPIKey, config.ErrMissingSuggestionKey)
	}

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, ErrEmptyQuery
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"namePrefix": prefix,
			"limit":      strconv.Itoa(limit),
			"sort":       "-population",
			"types":      "CITY",
		}).
		Get("/" + citiesEndpoint)
	if err != nil {
		return nil, &TransportError{Endpoint: citiesEndpoint, Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &APIError{Endpoint: citiesEndpoint, StatusCode: resp.StatusCode(), Message: resp.Status()}
	}

	var body struct {
		Data []City `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &APIError{
			Endpoint:   citiesEndpoint,
			StatusCode: resp.StatusCode(),
			Message:    "failed to parse response: " + err.Error(),
		}
	}

	return body.Data, nil
}
