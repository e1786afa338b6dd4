package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/fakhrymubarak/weather-lookup/internal/config"
	"github.com/fakhrymubarak/weather-lookup/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// maxBodySize caps how much of a provider body is read.
const maxBodySize = 1 << 20

// WeatherRepository defines the interface for weather data access
type WeatherRepository interface {
	GetWeather(ctx context.Context, city string) (*model.Weather, error)
}

// weatherRepository implements WeatherRepository for one configured provider shape
type weatherRepository struct {
	provider   config.ProviderConfig
	httpClient *http.Client
}

// NewWeatherRepository creates a new weather repository instance
func NewWeatherRepository(provider config.ProviderConfig, httpClient ...*http.Client) WeatherRepository {
	client := http.DefaultClient
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	return &weatherRepository{
		provider:   provider,
		httpClient: client,
	}
}

// GetWeather issues exactly one request to the provider and parses the body.
func (r *weatherRepository) GetWeather(ctx context.Context, city string) (*model.Weather, error) {
	ctx, span := otel.Tracer("weather-lookup/repository").Start(ctx, "repository: fetch-weather")
	defer span.End()
	span.SetAttributes(
		attribute.String("weather.city", city),
		attribute.String("weather.provider", r.provider.Shape),
	)

	weather, err := r.fetchFromExternalAPI(ctx, city)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return weather, nil
}

func (r *weatherRepository) fetchFromExternalAPI(ctx context.Context, city string) (*model.Weather, error) {
	if r.provider.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}

	req, err := r.buildRequest(ctx, city)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// body is kept for logs only; a failed read must not hide the status
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	return r.decode(body, city)
}

// buildRequest shapes the outbound call for the configured provider.
func (r *weatherRepository) buildRequest(ctx context.Context, city string) (*http.Request, error) {
	var target string
	switch r.provider.Shape {
	case config.ShapeOpenWeatherMap:
		units := r.provider.Units
		if units == "" {
			units = "metric"
		}
		q := url.Values{}
		q.Set("q", city)
		q.Set("appid", r.provider.APIKey)
		q.Set("units", units)
		target = r.provider.BaseURL + "/weather?" + q.Encode()
	case config.ShapeRapidAPI:
		// The city is part of the configured endpoint.
		target = r.provider.BaseURL
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedShape, r.provider.Shape)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.provider.Shape == config.ShapeRapidAPI {
		req.Header.Set("X-RapidAPI-Key", r.provider.APIKey)
		req.Header.Set("X-RapidAPI-Host", r.provider.Host)
	}
	return req, nil
}

func (r *weatherRepository) decode(body []byte, city string) (*model.Weather, error) {
	var (
		weather *model.Weather
		err     error
	)
	switch r.provider.Shape {
	case config.ShapeRapidAPI:
		var data model.RapidAPIResponse
		if err = json.Unmarshal(body, &data); err != nil {
			return nil, &ParseError{Err: err}
		}
		weather, err = data.ToWeather()
	default:
		var data model.OpenWeatherMapResponse
		if err = json.Unmarshal(body, &data); err != nil {
			return nil, &ParseError{Err: err}
		}
		weather, err = data.ToWeather(city)
	}
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return weather, nil
}
