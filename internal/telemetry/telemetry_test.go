package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestSetup_NoEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "weather-lookup", "", zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient(3 * time.Second)
	assert.Equal(t, 3*time.Second, client.Timeout)
	assert.NotNil(t, client.Transport)
}

func TestNewHTTPClient_RecordsClientSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := Setup(context.Background(), "weather-lookup", "", zap.NewNop().Sugar())
	require.NoError(t, err)

	ctx, span := tp.Tracer("test").Start(context.Background(), "parent")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := NewHTTPClient(time.Second).Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	span.End()

	assert.NotEmpty(t, traceparent)
	assert.GreaterOrEqual(t, len(recorder.Ended()), 2)
}

func TestWrapHandler(t *testing.T) {
	h := WrapHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}), "test-server")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, rr.Code)
}
