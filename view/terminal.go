package view

import (
	"fmt"
	"io"
	"text/tabwriter"

	"weatherwatch/models"
)

// compass points for wind direction, 16-wind rose
var compass = []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}

// Compass returns the 16-point compass direction for degrees
func Compass(deg int) string {
	i := int((float64(((deg%360)+360)%360) + 11.25) / 22.5)
	return compass[i%16]
}

// WritePage renders a page as plain text
func WritePage(w io.Writer, page Page) error {
	if page.Loading {
		_, err := fmt.Fprintln(w, "Loading...")
		return err
	}
	if page.Error != "" {
		_, err := fmt.Fprintf(w, "Error: %s\n", page.Error)
		return err
	}
	if page.Current == nil {
		_, err := fmt.Fprintln(w, "Enter a city or use your location to get the weather.")
		return err
	}

	u := page.Units
	c := page.Current
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", c.Location, c.Description)
	fmt.Fprintf(tw, "Temperature:\t%.1f%s (feels like %.1f%s)\n", c.Temperature, u.Temperature, c.FeelsLike, u.Temperature)
	fmt.Fprintf(tw, "Min / Max:\t%.1f%s / %.1f%s\n", c.TempMin, u.Temperature, c.TempMax, u.Temperature)
	fmt.Fprintf(tw, "Humidity:\t%.0f%%\n", c.Humidity)
	fmt.Fprintf(tw, "Pressure:\t%.0f hPa\n", c.Pressure)
	fmt.Fprintf(tw, "Wind:\t%.1f %s %s\n", c.WindSpeed, u.Speed, Compass(c.WindDeg))
	fmt.Fprintf(tw, "Visibility:\t%.1f km\n", float64(c.Visibility)/1000)
	if !c.Sunrise.IsZero() {
		fmt.Fprintf(tw, "Sunrise / Sunset:\t%s / %s\n", c.Sunrise.Format("15:04"), c.Sunset.Format("15:04"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(page.Forecast) == 0 {
		return nil
	}

	fmt.Fprintf(w, "\n%d-Day Forecast\n", len(page.Forecast))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, d := range page.Forecast {
		fmt.Fprintf(tw, "%s %s\t%.1f%s / %.1f%s\t%d%%\t%s\n",
			d.Weekday, d.Date, d.TempMin, u.Temperature, d.TempMax, u.Temperature, d.Precipitation, d.Description)
	}
	return tw.Flush()
}

// WriteSuggestions renders suggestions as a numbered list
func WriteSuggestions(w io.Writer, suggestions []models.Suggestion) error {
	if len(suggestions) == 0 {
		_, err := fmt.Fprintln(w, "No suggestions.")
		return err
	}
	for i, s := range suggestions {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, s.Label()); err != nil {
			return err
		}
	}
	return nil
}
