package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"weatherwatch/api"
	"weatherwatch/config"
	"weatherwatch/datasource"
	"weatherwatch/forecast"
	"weatherwatch/geolocation"
	"weatherwatch/logger"
	"weatherwatch/session"
	"weatherwatch/view"
)

func main() {
	// Parse command line arguments
	city := flag.String("city", "", "City name to look up")
	lat := flag.Float64("lat", 0, "Latitude to look up (with -lon)")
	lon := flag.Float64("lon", 0, "Longitude to look up (with -lat)")
	here := flag.Bool("here", false, "Look up the weather at the current location")
	suggest := flag.String("suggest", "", "List city suggestions for partial input")
	serve := flag.Bool("serve", false, "Run the local view API")
	port := flag.Int("port", 0, "Port for the view API (overrides PORT)")
	configFile := flag.String("config", "", "Path to an optional YAML configuration file")
	days := flag.Int("days", 0, "Number of forecast days (overrides FORECAST_DAYS)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if *port > 0 {
		cfg.Port = *port
	}
	if *days > 0 {
		cfg.Forecast.Days = *days
	}
	if !logger.SetLevel(cfg.LogLevel) {
		logger.Warnf("Unknown LOG_LEVEL %q, using INFO", cfg.LogLevel)
	}

	service := newService(cfg)

	// Missing credentials are fatal. The view API still starts so the page can show why.
	if err := cfg.Validate(); err != nil {
		if !*serve {
			for _, c := range datasource.ClassifyAll(err) {
				logger.Errorf("%s", c.Message)
			}
			logger.Fatalf("Configuration error: %v", err)
		}
		service.ReportConfiguration(err)
	}
	if cfg.OpenWeatherMap.APIKey != "" {
		logger.Infof("Using OpenWeatherMap API key: %s", logger.MaskKey(cfg.OpenWeatherMap.APIKey))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *serve {
		srv := api.New(cfg, service)
		logger.Infof("View API listening on http://%s", cfg.ListenAddr())
		if err := srv.Run(ctx); err != nil {
			logger.Fatalf("Server stopped: %v", err)
		}
		return
	}

	units := view.UnitsFor(cfg.OpenWeatherMap.Units)
	coordinates := flagSet("lat") || flagSet("lon")

	var snap session.Snapshot
	switch {
	case *suggest != "":
		if err := view.WriteSuggestions(os.Stdout, service.Suggest(ctx, *suggest)); err != nil {
			logger.Fatalf("Failed to write output: %v", err)
		}
		return
	case *here:
		snap = service.UseCurrentLocation(ctx)
	case coordinates:
		if !flagSet("lat") || !flagSet("lon") {
			logger.Fatalf("-lat and -lon must be given together")
		}
		snap = service.SearchCoordinates(ctx, *lat, *lon)
	case flagSet("city"):
		snap = service.SearchCity(ctx, *city)
	default:
		fmt.Fprintln(os.Stderr, "Usage: weatherwatch -city NAME | -lat N -lon N | -here | -suggest TEXT | -serve")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := view.WritePage(os.Stdout, view.NewPage(snap, units)); err != nil {
		logger.Fatalf("Failed to write output: %v", err)
	}
	if snap.Failure != nil {
		os.Exit(1)
	}
}

// newService wires the data sources selected by the configuration into a session
func newService(cfg *config.Config) *session.Service {
	weather := datasource.NewOpenWeatherMapClient(
		cfg.OpenWeatherMap.APIKey,
		cfg.OpenWeatherMap.BaseURL,
		cfg.OpenWeatherMap.Units,
		cfg.HTTPTimeout,
	)

	suggestions := datasource.NewGeoDBClient(cfg.GeoDB.APIKey, cfg.GeoDB.BaseURL, cfg.GeoDB.Host, cfg.HTTPTimeout)

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("Failed to load time zone: %v", err)
	}

	logger.Debugf("Geolocation mode: %s", cfg.Geolocation.Mode)
	return session.NewService(weather, suggestions, geolocation.FromConfig(cfg), forecast.Options{
		Days:     cfg.Forecast.Days,
		Location: loc,
		Sample:   forecast.ParseSamplePolicy(cfg.Forecast.Sample),
	})
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
