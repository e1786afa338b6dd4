package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/fakhrymubarak/weather-lookup/internal/model"
	"github.com/fakhrymubarak/weather-lookup/internal/repository"
	"github.com/fakhrymubarak/weather-lookup/internal/service"
	"github.com/fakhrymubarak/weather-lookup/internal/surface"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type WeatherHandler struct {
	WeatherService service.WeatherServiceInterface
	Surface        *surface.Surface
	Logger         *zap.SugaredLogger
}

func NewWeatherHandler(svc service.WeatherServiceInterface, surf *surface.Surface, logger *zap.SugaredLogger) *WeatherHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &WeatherHandler{
		WeatherService: svc,
		Surface:        surf,
		Logger:         logger,
	}
}

// writeJSONResponse encodes before writing the header so an encoding
// failure can still be reported as a 500.
func (h *WeatherHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		h.Logger.Errorw("could not encode json", "error", err)
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(model.ErrorResponse("could not encode response"))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(append(body, '\n'))
}

// statusFor maps a lookup failure to the status returned to our caller.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrBlankQuery):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrLocationNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrAPIKeyMissing), errors.Is(err, repository.ErrUnsupportedShape):
		return http.StatusInternalServerError
	case errors.Is(err, repository.ErrTransport) && errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// HandleWeather runs one synchronous lookup: GET /weather?location=<city>.
func (h *WeatherHandler) HandleWeather(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if model.NewWeatherQuery(location).Blank() {
		h.writeJSONResponse(w, http.StatusBadRequest, model.ErrorResponse("Missing 'location' query parameter"))
		return
	}

	weather, err := h.WeatherService.GetWeather(r.Context(), location)
	if err != nil {
		h.writeJSONResponse(w, statusFor(err), model.ErrorResponse(err.Error()))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, model.SuccessResponse(model.Success(weather)))
}

type lookupRequest struct {
	City string `json:"city"`
}

// HandleLookup submits a query to the shared surface: POST /lookup.
func (h *WeatherHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeJSONResponse(w, http.StatusBadRequest, model.ErrorResponse("invalid request body"))
			return
		}
	} else {
		req.City = r.FormValue("city")
	}

	if model.NewWeatherQuery(req.City).Blank() {
		h.writeJSONResponse(w, http.StatusBadRequest, model.ErrorResponse("Missing 'city' value"))
		return
	}

	if !h.Surface.Submit(req.City) {
		h.writeJSONResponse(w, http.StatusServiceUnavailable, model.ErrorResponse("lookup surface is closed"))
		return
	}
	h.writeJSONResponse(w, http.StatusAccepted, model.SuccessResponse(h.Surface.State()))
}

// HandleState renders the shared surface: GET /state[?format=text].
func (h *WeatherHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	st := h.Surface.State()
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(surface.Render(st)))
		return
	}
	h.writeJSONResponse(w, http.StatusOK, model.SuccessResponse(st))
}

func (h *WeatherHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Routes registers the surface endpoints on a chi router.
func (h *WeatherHandler) Routes(r chi.Router) {
	r.Get("/weather", h.HandleWeather)
	r.Post("/lookup", h.HandleLookup)
	r.Get("/state", h.HandleState)
	r.Get("/healthz", h.HandleHealth)
}
