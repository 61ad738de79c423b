package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultOpenWeatherMapURL = "https://api.openweathermap.org/data/2.5"
	defaultGeoDBURL          = "https://wft-geo-db.p.rapidapi.com/v1/geo"
	defaultGeoDBHost         = "wft-geo-db.p.rapidapi.com"
	defaultGeolocationURL    = "http://ip-api.com/json/"
	defaultUnits             = "metric"
	defaultForecastDays      = 6
	defaultHTTPTimeout       = 10 * time.Second
	defaultPort              = 8080
)

// Geolocation modes
const (
	GeolocationIP     = "ip"
	GeolocationStatic = "static"
	GeolocationNone   = "none"
)

// Forecast representative-sample policies
const (
	SampleFirst = "first"
	SampleNoon  = "noon"
)

// Missing credentials reported by Validate
var (
	ErrMissingWeatherKey    = errors.New("OPENWEATHERMAP_API_KEY is required")
	ErrMissingSuggestionKey = errors.New("GEODB_API_KEY is required")
)

// Config holds the application configuration
type Config struct {
	OpenWeatherMap struct {
		APIKey  string `yaml:"apiKey"`
		BaseURL string `yaml:"baseURL"`
		Units   string `yaml:"units"`
	} `yaml:"openWeatherMap"`

	GeoDB struct {
		APIKey  string `yaml:"apiKey"`
		BaseURL string `yaml:"baseURL"`
		Host    string `yaml:"host"`
	} `yaml:"geoDB"`

	Forecast struct {
		Days     int    `yaml:"days"`
		Sample   string `yaml:"sample"`
		Timezone string `yaml:"timezone"`
	} `yaml:"forecast"`

	Geolocation struct {
		Mode string   `yaml:"mode"`
		URL  string   `yaml:"url"`
		Lat  *float64 `yaml:"lat"`
		Lon  *float64 `yaml:"lon"`
	} `yaml:"geolocation"`

	HTTPTimeout time.Duration `yaml:"httpTimeout"`
	Port        int           `yaml:"port"`
	LogLevel    string        `yaml:"logLevel"`
}

// Default creates a configuration with every default filled in
func Default() *Config {
	cfg := &Config{}
	cfg.OpenWeatherMap.BaseURL = defaultOpenWeatherMapURL
	cfg.OpenWeatherMap.Units = defaultUnits
	cfg.GeoDB.BaseURL = defaultGeoDBURL
	cfg.GeoDB.Host = defaultGeoDBHost
	cfg.Forecast.Days = defaultForecastDays
	cfg.Forecast.Sample = SampleFirst
	cfg.Geolocation.Mode = GeolocationIP
	cfg.Geolocation.URL = defaultGeolocationURL
	cfg.HTTPTimeout = defaultHTTPTimeout
	cfg.Port = defaultPort
	cfg.LogLevel = "INFO"
	return cfg
}

// Load builds the configuration from defaults, then the optional YAML file at path,
// then .env and the process environment. Later sources override earlier ones.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	_ = godotenv.Load() // a missing .env is fine

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.OpenWeatherMap.APIKey, "OPENWEATHERMAP_API_KEY")
	setString(&c.OpenWeatherMap.BaseURL, "OPENWEATHERMAP_BASE_URL")
	setString(&c.OpenWeatherMap.Units, "UNITS")
	setString(&c.GeoDB.APIKey, "GEODB_API_KEY")
	setString(&c.GeoDB.BaseURL, "GEODB_BASE_URL")
	setString(&c.GeoDB.Host, "GEODB_HOST")
	setString(&c.Forecast.Sample, "FORECAST_SAMPLE")
	setString(&c.Forecast.Timezone, "TIMEZONE")
	setString(&c.Geolocation.Mode, "GEOLOCATION")
	setString(&c.Geolocation.URL, "GEOLOCATION_URL")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := env("FORECAST_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return fmt.Errorf("invalid FORECAST_DAYS: %s", v)
		}
		c.Forecast.Days = days
	}

	if v := env("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
		}
		c.HTTPTimeout = d
	}

	if v := env("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return fmt.Errorf("invalid PORT: %s", v)
		}
		c.Port = port
	}

	for name, dst := range map[string]**float64{
		"LOCATION_LAT": &c.Geolocation.Lat,
		"LOCATION_LON": &c.Geolocation.Lon,
	} {
		if v := env(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*dst = &f
		}
	}

	return nil
}

func (c *Config) check() error {
	switch strings.ToLower(c.OpenWeatherMap.Units) {
	case "metric", "imperial", "standard":
		c.OpenWeatherMap.Units = strings.ToLower(c.OpenWeatherMap.Units)
	default:
		return fmt.Errorf("invalid UNITS: %s", c.OpenWeatherMap.Units)
	}

	switch strings.ToLower(c.Forecast.Sample) {
	case SampleFirst, SampleNoon:
		c.Forecast.Sample = strings.ToLower(c.Forecast.Sample)
	default:
		return fmt.Errorf("invalid FORECAST_SAMPLE: %s", c.Forecast.Sample)
	}

	if c.Forecast.Days <= 0 {
		return fmt.Errorf("invalid forecast days: %d", c.Forecast.Days)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	switch strings.ToLower(c.Geolocation.Mode) {
	case GeolocationIP, GeolocationNone:
	case GeolocationStatic:
		if c.Geolocation.Lat == nil || c.Geolocation.Lon == nil {
			return errors.New("static geolocation requires LOCATION_LAT and LOCATION_LON")
		}
	default:
		return fmt.Errorf("invalid GEOLOCATION: %s", c.Geolocation.Mode)
	}
	c.Geolocation.Mode = strings.ToLower(c.Geolocation.Mode)

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("invalid HTTP_TIMEOUT: %s", c.HTTPTimeout)
	}
	return nil
}

// Validate reports missing credentials. Both keys are required; the result
// joins one sentinel per missing key.
func (c *Config) Validate() error {
	var errs []error
	if c.OpenWeatherMap.APIKey == "" {
		errs = append(errs, ErrMissingWeatherKey)
	}
	if c.GeoDB.APIKey == "" {
		errs = append(errs, ErrMissingSuggestionKey)
	}
	return errors.Join(errs...)
}

// Location returns the time zone used to derive forecast calendar dates.
// An empty TIMEZONE means the local zone of this process.
func (c *Config) Location() (*time.Location, error) {
	if c.Forecast.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Forecast.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	return loc, nil
}

// ListenAddr returns the address the view API binds to. It only listens on loopback.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func setString(dst *string, name string) {
	if v := env(name); v != "" {
		*dst = v
	}
}
