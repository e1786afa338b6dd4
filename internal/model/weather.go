package model

import "strings"

// WeatherQuery is the city text submitted by the user.
type WeatherQuery struct {
	City string `json:"city"`
}

// NewWeatherQuery trims surrounding whitespace from the submitted text.
func NewWeatherQuery(city string) WeatherQuery {
	return WeatherQuery{City: strings.TrimSpace(city)}
}

// Blank reports whether the query has nothing to look up.
func (q WeatherQuery) Blank() bool {
	return strings.TrimSpace(q.City) == ""
}

// Weather is the parsed payload of a successful lookup.
type Weather struct {
	City        string   `json:"city"`
	Temperature float64  `json:"temperature"`
	Humidity    float64  `json:"humidity"`
	WindSpeed   *float64 `json:"wind_speed,omitempty"`
}

// WeatherResult holds either a Weather or an error message, never both.
type WeatherResult struct {
	Weather *Weather `json:"weather,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func Success(w *Weather) WeatherResult {
	return WeatherResult{Weather: w}
}

func Failure(msg string) WeatherResult {
	return WeatherResult{Error: msg}
}

func (r WeatherResult) OK() bool {
	return r.Weather != nil
}
