package handler

import (
	"net/http"
	"time"

	"github.com/agenciacheck/pix-portal/internal/db"
)

// LogEntry is one audit log line
type LogEntry struct {
	ID        int64     `json:"id"`
	Subsystem string    `json:"subsystem"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LogsHandler lists audit log entries, newest first
// GET /api/logs?subsystem=pix&level=error&limit=100
func (h *Handler) LogsHandler(w http.ResponseWriter, r *http.Request) {
	logs, err := h.queries.ListLogsFiltered(r.Context(), db.ListLogsFilteredParams{
		Subsystem: r.URL.Query().Get("subsystem"),
		Level:     r.URL.Query().Get("level"),
		Limit:     queryInt(r, "limit", 100),
	})
	if err != nil {
		h.jsonError(w, "internal_error", "Database error", http.StatusInternalServerError)
		return
	}

	entries := make([]LogEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, LogEntry{
			ID:        l.ID,
			Subsystem: l.Subsystem,
			Level:     l.Level,
			Message:   l.Message,
			Metadata:  l.Metadata.String,
			CreatedAt: l.CreatedAt,
		})
	}
	h.jsonResponse(w, http.StatusOK, entries)
}
