package service

import (
	"context"
	"testing"

	"github.com/fakhrymubarak/weather-lookup/internal/model"
	"github.com/fakhrymubarak/weather-lookup/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock repository for testing
type mockWeatherRepository struct {
	err      error
	mockData *model.Weather
	calls    []string
}

func (m *mockWeatherRepository) GetWeather(ctx context.Context, city string) (*model.Weather, error) {
	m.calls = append(m.calls, city)
	if m.err != nil {
		return nil, m.err
	}
	return m.mockData, nil
}

func TestWeatherService_GetWeather(t *testing.T) {
	tests := []struct {
		name        string
		city        string
		err         error
		mockData    *model.Weather
		expectError bool
	}{
		{
			name:     "Successful weather retrieval",
			city:     "London",
			mockData: &model.Weather{City: "London", Temperature: 15.2, Humidity: 81},
		},
		{
			name:        "Repository error",
			city:        "InvalidCity",
			err:         &repository.StatusError{Code: 404},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockWeatherRepository{err: tt.err, mockData: tt.mockData}
			service := NewWeatherService(mockRepo, nil)

			result, err := service.GetWeather(context.Background(), tt.city)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mockData.City, result.City)
			assert.Equal(t, []string{tt.city}, mockRepo.calls)
		})
	}
}

func TestWeatherService_BlankCityNeverCallsRepository(t *testing.T) {
	for _, city := range []string{"", " ", "\t\n "} {
		mockRepo := &mockWeatherRepository{mockData: &model.Weather{}}
		service := NewWeatherService(mockRepo, nil)

		_, err := service.GetWeather(context.Background(), city)
		assert.ErrorIs(t, err, ErrBlankQuery)
		assert.Empty(t, mockRepo.calls)
	}
}

func TestWeatherService_TrimsCity(t *testing.T) {
	mockRepo := &mockWeatherRepository{mockData: &model.Weather{City: "Berlin"}}
	service := NewWeatherService(mockRepo, nil)

	_, err := service.GetWeather(context.Background(), "  Berlin ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Berlin"}, mockRepo.calls)
}

func TestWeatherService_Lookup(t *testing.T) {
	ok := NewWeatherService(&mockWeatherRepository{mockData: &model.Weather{City: "Rome", Temperature: 30.5, Humidity: 22}}, nil)
	result := ok.Lookup(context.Background(), model.NewWeatherQuery("Rome"))
	require.True(t, result.OK())
	assert.Equal(t, 30.5, result.Weather.Temperature)
	assert.Empty(t, result.Error)

	failing := NewWeatherService(&mockWeatherRepository{err: &repository.StatusError{Code: 404}}, nil)
	result = failing.Lookup(context.Background(), model.NewWeatherQuery("Nowhere"))
	assert.False(t, result.OK())
	assert.Contains(t, result.Error, "404")
}

func TestWeatherService_NilRepo(t *testing.T) {
	service := NewWeatherService(nil, nil)
	_, err := service.GetWeather(context.Background(), "London")
	assert.ErrorIs(t, err, ErrWeatherService)
}

func TestWeatherService_GetWeather_NilContext(t *testing.T) {
	mockRepo := &mockWeatherRepository{mockData: &model.Weather{City: "London"}}
	service := NewWeatherService(mockRepo, nil)
	//nolint:staticcheck
	result, err := service.GetWeather(nil, "London")
	assert.NoError(t, err)
	assert.NotNil(t, result)
}
