package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fakhrymubarak/weather-lookup/internal/model"
	"github.com/fakhrymubarak/weather-lookup/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrWeatherService = errors.New("weather service error")
	ErrBlankQuery     = errors.New("city name is blank")
)

// WeatherServiceInterface is what the HTTP and terminal surfaces depend on.
type WeatherServiceInterface interface {
	GetWeather(ctx context.Context, city string) (*model.Weather, error)
	Lookup(ctx context.Context, query model.WeatherQuery) model.WeatherResult
}

type WeatherService struct {
	WeatherRepo repository.WeatherRepository
	Logger      *zap.SugaredLogger
}

// NewWeatherService wires the service to an explicitly constructed repository.
func NewWeatherService(repo repository.WeatherRepository, logger *zap.SugaredLogger) *WeatherService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &WeatherService{
		WeatherRepo: repo,
		Logger:      logger,
	}
}

// GetWeather validates the city and fetches it. A blank city never reaches the repository.
func (s *WeatherService) GetWeather(ctx context.Context, city string) (*model.Weather, error) {
	query := model.NewWeatherQuery(city)
	if query.Blank() {
		return nil, ErrBlankQuery
	}
	if s.WeatherRepo == nil {
		return nil, fmt.Errorf("%w: no repository configured", ErrWeatherService)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	weather, err := s.WeatherRepo.GetWeather(ctx, query.City)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.Logger.Warnw("Weather lookup failed", "city", query.City, "error", err)
		}
		return nil, err
	}
	s.Logger.Debugw("Weather lookup succeeded",
		"city", query.City,
		"temperature", weather.Temperature,
		"humidity", weather.Humidity)
	return weather, nil
}

// Lookup folds the outcome of GetWeather into a WeatherResult.
func (s *WeatherService) Lookup(ctx context.Context, query model.WeatherQuery) model.WeatherResult {
	weather, err := s.GetWeather(ctx, query.City)
	if err != nil {
		return model.Failure(err.Error())
	}
	return model.Success(weather)
}
