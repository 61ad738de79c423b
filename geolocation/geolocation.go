// Package geolocation resolves the coordinates of the machine running weatherwatch.
package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"weatherwatch/config"
	"weatherwatch/models"
)

var (
	// ErrPermissionDenied means the location could not be obtained: the lookup was
	// refused, failed, or returned no position.
	ErrPermissionDenied = errors.New("location permission denied or unavailable")

	// ErrUnsupported means no geolocation capability is configured at all
	ErrUnsupported = errors.New("geolocation unsupported")
)

// Locator resolves the current location once
type Locator interface {
	Locate(ctx context.Context) (models.Coordinates, error)
}

// FromConfig builds the Locator selected by the configuration
func FromConfig(cfg *config.Config) Locator {
	switch cfg.Geolocation.Mode {
	case config.GeolocationStatic:
		if cfg.Geolocation.Lat != nil && cfg.Geolocation.Lon != nil {
			return StaticLocator{Coordinates: models.Coordinates{Lat: *cfg.Geolocation.Lat, Lon: *cfg.Geolocation.Lon}}
		}
		return Unsupported{}
	case config.GeolocationIP:
		return NewIPLocator(cfg.Geolocation.URL, cfg.HTTPTimeout)
	default:
		return Unsupported{}
	}
}

// Unsupported is the Locator for environments without any geolocation capability
type Unsupported struct{}

func (Unsupported) Locate(context.Context) (models.Coordinates, error) {
	return models.Coordinates{}, ErrUnsupported
}

// StaticLocator always reports the same coordinates
type StaticLocator struct {
	Coordinates models.Coordinates
}

func (s StaticLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, contextFailure(err)
	}
	return s.Coordinates, nil
}

// contextFailure passes cancellation through unchanged (a newer request took over)
// and reports an expired deadline as a denied location.
func contextFailure(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
}

// IPLocator estimates the location from the public IP address using an
// ip-api.com compatible endpoint
type IPLocator struct {
	url    string
	client *resty.Client
}

// NewIPLocator creates a locator querying url
func NewIPLocator(url string, timeout time.Duration) *IPLocator {
	return &IPLocator{
		url: url,
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0),
	}
}

type ipLookupResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// Locate performs a single lookup. Every failure other than context
// cancellation is reported as ErrPermissionDenied, a timeout included.
func (l *IPLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	resp, err := l.client.R().
		SetContext(ctx).
		SetQueryParam("fields", "status,message,lat,lon").
		Get(l.url)
	if err != nil {
		if ctx.Err() != nil {
			return models.Coordinates{}, contextFailure(ctx.Err())
		}
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return models.Coordinates{}, fmt.Errorf("%w: lookup returned %s", ErrPermissionDenied, resp.Status())
	}

	var body ipLookupResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	if body.Status != "" && !strings.EqualFold(body.Status, "success") {
		return models.Coordinates{}, fmt.Errorf("%w: %s", ErrPermissionDenied, body.Message)
	}
	if body.Lat == nil || body.Lon == nil {
		return models.Coordinates{}, fmt.Errorf("%w: no position in response", ErrPermissionDenied)
	}

	return models.Coordinates{Lat: *body.Lat, Lon: *body.Lon}, nil
}
