package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agenciacheck/pix-portal/internal/config"
	"github.com/agenciacheck/pix-portal/internal/db"
	"github.com/agenciacheck/pix-portal/internal/logging"
	"github.com/agenciacheck/pix-portal/internal/pix"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	pix     *pix.Service
	db      *sql.DB
	queries *db.Queries
	config  *config.Config
	logger  logging.Logger
	now     func() time.Time
}

// New creates a new Handler instance
func New(database *sql.DB, cfg *config.Config, logger logging.Logger) *Handler {
	return &Handler{
		pix:     pix.NewService(cfg.Merchant(), cfg.PixQRSize),
		db:      database,
		queries: db.New(database),
		config:  cfg,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Routes mounts every endpoint on a new router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.withLogger)

	r.Get("/health", h.HealthHandler)

	r.Route("/api/pix", func(r chi.Router) {
		r.Post("/charges", h.CreateChargeHandler)
		r.Get("/charges", h.ListChargesHandler)
		r.Get("/charges/{id}", h.GetChargeHandler)
		r.Get("/charges/{id}/qr.png", h.ChargeQRHandler)
		r.Post("/parse", h.ParseHandler)
	})

	r.Get("/api/logs", h.LogsHandler)

	return r
}

// withLogger makes the handler's logger available to everything serving the request.
func (h *Handler) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), h.logger)))
	})
}

// HealthHandler reports liveness and the merchant codes are issued for
// GET /health
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	merchant := h.pix.Merchant()
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"configured":    h.pix.IsConfigured(),
		"merchant_name": merchant.Name,
		"merchant_city": merchant.City,
		"initiation":    string(merchant.Initiation),
	})
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response: %v", err)
	}
}

func (h *Handler) jsonError(w http.ResponseWriter, code, message string, status int) {
	h.jsonResponse(w, status, ErrorResponse{Error: code, Message: message})
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int64) int64 {
	if s := r.URL.Query().Get(name); s != "" {
		if parsed, err := strconv.ParseInt(s, 10, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
