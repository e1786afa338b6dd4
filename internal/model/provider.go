package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MissingFieldError is returned when a provider body lacks a required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// FlexFloat accepts a JSON number or a string holding a number.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || strings.ContainsAny(s, "xX") {
			return fmt.Errorf("value %q is not a number", s)
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// OpenWeatherMapResponse is the subset of the OpenWeatherMap current
// weather body we read. Pointers distinguish absent fields from zero.
type OpenWeatherMapResponse struct {
	Name string `json:"name"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

func (r *OpenWeatherMapResponse) ToWeather(city string) (*Weather, error) {
	if r.Main == nil {
		return nil, &MissingFieldError{Field: "main"}
	}
	if r.Main.Temp == nil {
		return nil, &MissingFieldError{Field: "main.temp"}
	}
	if r.Main.Humidity == nil {
		return nil, &MissingFieldError{Field: "main.humidity"}
	}
	w := &Weather{
		City:        city,
		Temperature: *r.Main.Temp,
		Humidity:    *r.Main.Humidity,
	}
	if r.Name != "" {
		w.City = r.Name
	}
	if r.Wind != nil && r.Wind.Speed != nil {
		speed := *r.Wind.Speed
		w.WindSpeed = &speed
	}
	return w, nil
}

// RapidAPIResponse is the loosely typed body of the RapidAPI weather
// endpoint, where temp and humidity may arrive as numbers or strings.
// The city is fixed by the endpoint, so only a name in the body is
// reported back.
type RapidAPIResponse struct {
	Name string `json:"name"`
	Main *struct {
		Temp     *FlexFloat `json:"temp"`
		Humidity *FlexFloat `json:"humidity"`
	} `json:"main"`
}

func (r *RapidAPIResponse) ToWeather() (*Weather, error) {
	if r.Main == nil {
		return nil, &MissingFieldError{Field: "main"}
	}
	if r.Main.Temp == nil {
		return nil, &MissingFieldError{Field: "main.temp"}
	}
	if r.Main.Humidity == nil {
		return nil, &MissingFieldError{Field: "main.humidity"}
	}
	return &Weather{
		City:        r.Name,
		Temperature: float64(*r.Main.Temp),
		Humidity:    float64(*r.Main.Humidity),
	}, nil
}
