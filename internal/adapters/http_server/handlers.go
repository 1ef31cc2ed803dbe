package httpserver

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/xyd945/travel-ai-agent/internal/app"
	"github.com/xyd945/travel-ai-agent/internal/domain"
	"github.com/xyd945/travel-ai-agent/internal/session"
)

//go:embed static
var staticFS embed.FS

const maxBodyBytes = 1 << 20

type Handlers struct {
	Assistant *app.AssistantService
	Places    *app.PlaceResolver
	Hotels    *app.HotelService
	Chat      *app.ChatService
	Sessions  *session.Store
	MapsKey   string
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/healthz/db", h.healthDB)

	s.mux.Post("/ai", h.ask)
	s.mux.Get("/places", h.getPlace)
	s.mux.Post("/places", h.resolvePlaces)
	s.mux.Post("/hotels", h.hotelsByCity)
	s.mux.Post("/hotels/search", h.searchHotels)
	s.mux.Get("/maps-key", h.mapsKey)
	s.mux.Post("/chat", h.chat)
	s.mux.Get("/sessions/{id}", h.getSession)

	s.mux.Get("/", index)
}

func index(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, staticFS, "static/index.html")
}

// ---- responses ----

type errorBody struct {
	Error string `json:"error"`
	Raw   string `json:"raw,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var mal *domain.MalformedResponseError
	if errors.As(err, &mal) {
		body.Raw = mal.Raw
	}
	if status >= 500 {
		log.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, body)
}

func statusFor(err error) int {
	var (
		up  *domain.UpstreamError
		net *domain.NetworkError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMissingCredential), errors.Is(err, domain.ErrMalformedResponse):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &up):
		// credential problems upstream are our misconfiguration
		if up.Status >= 400 && up.Status <= 599 && up.Status != http.StatusUnauthorized && up.Status != http.StatusForbidden {
			return up.Status
		}
		return http.StatusInternalServerError
	case errors.As(err, &net):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Invalid("request body: %v", err)
	}
	return nil
}

// ---- handlers ----

type askRequest struct {
	UserPrompt          string        `json:"userPrompt"`
	ConversationHistory []domain.Turn `json:"conversationHistory"`
}

func (h *Handlers) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.UserPrompt) == "" {
		writeJSONError(w, http.StatusBadRequest, `Missing "userPrompt" in request body`)
		return
	}
	ans, err := h.Assistant.Ask(r.Context(), req.UserPrompt, req.ConversationHistory)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ans)
}

func (h *Handlers) getPlace(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("placeName"))
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing or invalid placeName parameter")
		return
	}
	strategy, ok := domain.ParseStrategy(q.Get("strategy"))
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "strategy must be direct or biased")
		return
	}
	p, err := h.Places.Resolve(r.Context(), name, q.Get("location"), strategy)
	if errors.Is(err, domain.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, `No candidates found for "`+name+`"`)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"place": p})
}

type placesRequest struct {
	Places   []domain.PlaceOfInterest `json:"places"`
	Location string                   `json:"location"`
	Strategy string                   `json:"strategy"`
}

func (h *Handlers) resolvePlaces(w http.ResponseWriter, r *http.Request) {
	var req placesRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Places) == 0 {
		writeJSONError(w, http.StatusBadRequest, `"places" must be a non-empty array`)
		return
	}
	strategy, ok := domain.ParseStrategy(req.Strategy)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "strategy must be direct or biased")
		return
	}
	batch := h.Places.ResolveAll(r.Context(), req.Places, req.Location, strategy)
	writeJSON(w, http.StatusOK, batch.Places)
}

type hotelsRequest struct {
	Name        string `json:"name"`
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
}

type hotelsResponse struct {
	Success bool                 `json:"success"`
	Count   int                  `json:"count"`
	Hotels  []domain.HotelRecord `json:"hotels"`
}

func (h *Handlers) hotelsByCity(w http.ResponseWriter, r *http.Request) {
	var req hotelsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.City) == "" {
		writeJSONError(w, http.StatusBadRequest, "City parameter is required")
		return
	}
	hs, err := h.Hotels.FindHotelsByCity(r.Context(), req.City, req.CountryCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hotelsResponse{Success: true, Count: len(hs), Hotels: hs})
}

func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	var req hotelsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	hs, err := h.Hotels.FindHotelsByNameOrCity(r.Context(), req.Name, req.City, req.CountryCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hotelsResponse{Success: true, Count: len(hs), Hotels: hs})
}

func (h *Handlers) mapsKey(w http.ResponseWriter, r *http.Request) {
	if h.MapsKey == "" {
		writeJSONError(w, http.StatusInternalServerError, "Maps API key not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"apiKey": h.MapsKey})
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

func (h *Handlers) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Chat.Turn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.Sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handlers) healthDB(w http.ResponseWriter, r *http.Request) {
	n, err := h.Hotels.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("database health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "Failed to connect to database",
			"details": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Connection successful",
		"table":   "hotels",
		"count":   n,
	})
}
