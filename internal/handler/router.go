package handler

import (
	"net/http"
	"time"

	"github.com/fakhrymubarak/weather-lookup/internal/middleware"
	"github.com/fakhrymubarak/weather-lookup/internal/telemetry"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// defaultRequestTimeout stays under the default 15s server write timeout.
const defaultRequestTimeout = 10 * time.Second

type routerConfig struct {
	requestTimeout time.Duration
}

type RouterOption func(*routerConfig)

// WithRequestTimeout bounds how long a single request may run.
func WithRequestTimeout(d time.Duration) RouterOption {
	return func(c *routerConfig) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// RequestTimeoutFor derives a request timeout that fires before the
// server's write timeout cuts the connection, leaving room to write the
// 504 response.
func RequestTimeoutFor(writeTimeout time.Duration) time.Duration {
	if writeTimeout <= 0 {
		return defaultRequestTimeout
	}
	if writeTimeout > 2*time.Second {
		return writeTimeout - time.Second
	}
	return writeTimeout / 2
}

func SetupRouter(h *WeatherHandler, logger *zap.SugaredLogger, opts ...RouterOption) http.Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	cfg := routerConfig{requestTimeout: defaultRequestTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.requestTimeout))

	h.Routes(r)

	return telemetry.WrapHandler(r, "weather-lookup-server")
}
