package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// weatherSource answers weather queries directly from Open-Meteo:
// geocode the place name, then fetch the current forecast. No API key
// needed, so it handles weather before the general-purpose chain runs.
type weatherSource struct {
	client *http.Client
}

func newWeatherSource(timeout time.Duration) *weatherSource {
	return &weatherSource{client: newHTTPClient(timeout)}
}

func (s *weatherSource) Name() string { return "open-meteo" }

var reWeatherPlace = regexp.MustCompile(`(?i)(?:weather|temperature|forecast)\s+(?:in|at|for)\s+([a-zA-Z][a-zA-Z\s]+)`)

// IsWeatherQuery reports whether the message names a place to get
// weather for.
func IsWeatherQuery(text string) bool {
	return reWeatherPlace.MatchString(text)
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature   float64 `json:"temperature_2m"`
		ApparentTemp  float64 `json:"apparent_temperature"`
		Humidity      float64 `json:"relative_humidity_2m"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		Precipitation float64 `json:"precipitation"`
		WeatherCode   int     `json:"weather_code"`
	} `json:"current"`
}

// WMO weather interpretation codes, condensed.
var weatherCodes = map[int]string{
	0: "clear sky", 1: "mainly clear", 2: "partly cloudy", 3: "overcast",
	45: "fog", 48: "depositing rime fog",
	51: "light drizzle", 53: "drizzle", 55: "dense drizzle",
	61: "light rain", 63: "rain", 65: "heavy rain",
	71: "light snow", 73: "snow", 75: "heavy snow",
	80: "rain showers", 81: "rain showers", 82: "violent rain showers",
	95: "thunderstorm", 96: "thunderstorm with hail", 99: "thunderstorm with heavy hail",
}

func (s *weatherSource) Search(ctx context.Context, q Query) (*Result, error) {
	m := reWeatherPlace.FindStringSubmatch(q.Raw)
	if m == nil {
		return nil, fmt.Errorf("no place in weather query")
	}
	place := strings.TrimSpace(m[1])

	geoParams := map[string]string{"name": place, "count": "1", "format": "json"}
	data, err := httpGet(ctx, s.client,
		"https://geocoding-api.open-meteo.com/v1/search?"+encodeQuery(geoParams), nil)
	if err != nil {
		return nil, err
	}
	var geo geocodeResponse
	if err := json.Unmarshal(data, &geo); err != nil {
		return nil, fmt.Errorf("failed to parse geocode response: %w", err)
	}
	if len(geo.Results) == 0 {
		return nil, fmt.Errorf("place %q not found", place)
	}
	loc := geo.Results[0]

	fcParams := map[string]string{
		"latitude":  fmt.Sprintf("%.4f", loc.Latitude),
		"longitude": fmt.Sprintf("%.4f", loc.Longitude),
		"current":   "temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,precipitation,weather_code",
	}
	data, err = httpGet(ctx, s.client,
		"https://api.open-meteo.com/v1/forecast?"+encodeQuery(fcParams), nil)
	if err != nil {
		return nil, err
	}
	var fc forecastResponse
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse forecast response: %w", err)
	}

	condition := weatherCodes[fc.Current.WeatherCode]
	if condition == "" {
		condition = "mixed conditions"
	}
	text := fmt.Sprintf(
		"Current weather in %s, %s: %.1f°C (feels like %.1f°C), %s, humidity %.0f%%, wind %.1f km/h.",
		loc.Name, loc.Country,
		fc.Current.Temperature, fc.Current.ApparentTemp,
		condition, fc.Current.Humidity, fc.Current.WindSpeed)
	return &Result{Text: text, Sources: []string{"open-meteo.com"}}, nil
}
