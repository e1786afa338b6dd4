package integrationtest

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fakhrymubarak/weather-lookup/internal/config"
	"github.com/fakhrymubarak/weather-lookup/internal/handler"
	"github.com/fakhrymubarak/weather-lookup/internal/repository"
	"github.com/fakhrymubarak/weather-lookup/internal/service"
	"github.com/fakhrymubarak/weather-lookup/internal/surface"
	"github.com/fakhrymubarak/weather-lookup/internal/telemetry"
	"go.uber.org/zap"
)

const (
	testAPIKey   = "test_api_key"
	testRapidKey = "test_rapid_key"
	testHost     = "weather.p.rapidapi.test"
)

// mockProvider counts requests and remembers the last one it served.
type mockProvider struct {
	*httptest.Server
	hits atomic.Int64
	last atomic.Pointer[http.Request]
}

func (m *mockProvider) Hits() int64 { return m.hits.Load() }

func (m *mockProvider) LastRequest() *http.Request { return m.last.Load() }

func fixture(name string) []byte {
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		panic(err)
	}
	return data
}

func writeJSON(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

// newMockOWMApi answers like the OpenWeatherMap current weather endpoint
// for London only.
func newMockOWMApi() *mockProvider {
	m := &mockProvider{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.hits.Add(1)
		m.last.Store(r.Clone(r.Context()))

		if r.URL.Path != "/weather" {
			writeJSON(w, http.StatusNotFound, []byte(`{"cod":"404","message":"Internal error"}`))
			return
		}
		if r.URL.Query().Get("appid") != testAPIKey {
			writeJSON(w, http.StatusUnauthorized, []byte(`{"cod":401,"message":"Invalid API key"}`))
			return
		}
		switch r.URL.Query().Get("q") {
		case "London":
			writeJSON(w, http.StatusOK, fixture("openweathermap_london.json"))
		case "Nowhere":
			writeJSON(w, http.StatusOK, []byte(`{"cod":200,"name":"Nowhere"}`))
		default:
			writeJSON(w, http.StatusNotFound, []byte(`{"cod":"404","message":"city not found"}`))
		}
	}))
	return m
}

// newMockRapidAPI answers like a RapidAPI weather endpoint with a fixed city.
func newMockRapidAPI() *mockProvider {
	m := &mockProvider{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.hits.Add(1)
		m.last.Store(r.Clone(r.Context()))

		if r.Header.Get("X-RapidAPI-Key") != testRapidKey || r.Header.Get("X-RapidAPI-Host") != testHost {
			writeJSON(w, http.StatusForbidden, []byte(`{"message":"You are not subscribed to this API."}`))
			return
		}
		writeJSON(w, http.StatusOK, fixture("rapidapi_london.json"))
	}))
	return m
}

// stack is one fully wired lookup server in front of a provider.
type stack struct {
	Server  *httptest.Server
	Surface *surface.Surface
}

func (s *stack) Close() {
	s.Server.Close()
	s.Surface.Close()
}

func setupIntegrationTestServer(provider config.ProviderConfig, logger *zap.SugaredLogger) *stack {
	client := telemetry.NewHTTPClient(config.GetHTTPTimeout())
	weatherRepo := repository.NewWeatherRepository(provider, client)
	weatherService := service.NewWeatherService(weatherRepo, logger)
	surf := surface.New(weatherService, surface.WithLogger(logger))

	router := handler.SetupRouter(handler.NewWeatherHandler(weatherService, surf, logger), logger)
	return &stack{
		Server:  httptest.NewServer(router),
		Surface: surf,
	}
}
