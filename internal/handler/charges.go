package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agenciacheck/pix-portal/internal/db"
	"github.com/agenciacheck/pix-portal/internal/logging"
	"github.com/agenciacheck/pix-portal/internal/pix"
)

// CreateChargeRequest is the request body for issuing a charge
type CreateChargeRequest struct {
	// Amount accepts 12.50, "12.50" and "12,50".
	Amount      json.RawMessage `json:"amount"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	Size        int             `json:"size"`
}

// ChargeResponse describes a stored charge
type ChargeResponse struct {
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	Amount      string    `json:"amount"`
	Description string    `json:"description,omitempty"`
	Code        string    `json:"code"`
	QRCode      string    `json:"qr_code,omitempty"`
	QRURL       string    `json:"qr_url"`
	Warnings    []string  `json:"warnings,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *Handler) chargeResponse(c db.Charge) ChargeResponse {
	return ChargeResponse{
		ID:          c.ID,
		Reference:   c.Reference,
		Amount:      c.Amount,
		Description: c.Description.String,
		Code:        c.Code,
		QRURL:       h.config.ChargeURL(c.ID) + "/qr.png",
		CreatedAt:   c.CreatedAt,
	}
}

// CreateChargeHandler builds a BR Code for the configured merchant and stores it
// POST /api/pix/charges
func (h *Handler) CreateChargeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.LoggerFromContext(ctx)

	var req CreateChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid_request", "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	amount, err := decodeAmount(req.Amount)
	if err != nil {
		h.audit(ctx, "error", fmt.Sprintf("Rejected charge %q: %v", req.Reference, err))
		h.pixError(w, r, err)
		return
	}

	charge, err := h.pix.GeneratePaymentQR(pix.GenerateParams{
		Amount:      amount,
		Reference:   req.Reference,
		Description: req.Description,
		Size:        req.Size,
	})
	if err != nil {
		h.audit(ctx, "error", fmt.Sprintf("Rejected charge %q: %v", req.Reference, err))
		h.pixError(w, r, err)
		return
	}

	// read back what was actually emitted, after sanitization and truncation
	parsed, err := pix.ParsePayload(charge.Code)
	if err != nil {
		logger.Error("generated code does not parse: %v", err)
		h.jsonError(w, "internal_error", "generated code failed validation", http.StatusInternalServerError)
		return
	}

	warnings := make([]string, 0, len(charge.Warnings))
	for _, warning := range charge.Warnings {
		warnings = append(warnings, warning.String())
	}

	stored, err := h.storeCharge(ctx, db.CreateChargeParams{
		ID:          uuid.NewString(),
		Reference:   parsed.ReferenceLabel,
		Amount:      parsed.AmountText,
		Description: sql.NullString{String: parsed.Description, Valid: parsed.Description != ""},
		Code:        charge.Code,
		CreatedAt:   h.now(),
	}, len(warnings))
	if err != nil {
		logger.Error("failed to store charge: %v", err)
		h.jsonError(w, "internal_error", "Failed to store charge", http.StatusInternalServerError)
		return
	}

	for _, warning := range warnings {
		logger.Warn("charge %s: %s", stored.ID, warning)
	}
	logger.Info("issued charge %s reference=%s amount=%s", stored.ID, stored.Reference, stored.Amount)

	resp := h.chargeResponse(stored)
	resp.QRCode = charge.QRCode
	resp.Warnings = warnings
	h.jsonResponse(w, http.StatusCreated, resp)
}

// storeCharge inserts the charge and its audit entry in one transaction.
func (h *Handler) storeCharge(ctx context.Context, params db.CreateChargeParams, warnings int) (db.Charge, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return db.Charge{}, err
	}
	defer tx.Rollback()

	qtx := h.queries.WithTx(tx)
	stored, err := qtx.CreateCharge(ctx, params)
	if err != nil {
		return db.Charge{}, err
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"charge_id": stored.ID,
		"reference": stored.Reference,
		"amount":    stored.Amount,
		"warnings":  warnings,
	})
	if err != nil {
		return db.Charge{}, err
	}
	if _, err := qtx.CreateLog(ctx, db.CreateLogParams{
		Subsystem: "pix",
		Level:     "success",
		Message:   fmt.Sprintf("Issued charge %s: %s BRL", stored.ID, stored.Amount),
		Metadata:  sql.NullString{String: string(metadata), Valid: true},
	}); err != nil {
		return db.Charge{}, err
	}

	return stored, tx.Commit()
}

// ListChargesHandler lists the most recent charges, or the charge issued for
// a reference. The placeholder reference "***" is not a filter.
// GET /api/pix/charges?limit=50
// GET /api/pix/charges?reference=FB12345678
func (h *Handler) ListChargesHandler(w http.ResponseWriter, r *http.Request) {
	if ref := r.URL.Query().Get("reference"); ref != "" && ref != pix.DefaultReference {
		charge, err := h.queries.GetChargeByReference(r.Context(), ref)
		if errors.Is(err, sql.ErrNoRows) {
			h.jsonResponse(w, http.StatusOK, []ChargeResponse{})
			return
		}
		if err != nil {
			h.jsonError(w, "internal_error", "Failed to fetch charges", http.StatusInternalServerError)
			return
		}
		h.jsonResponse(w, http.StatusOK, []ChargeResponse{h.chargeResponse(charge)})
		return
	}

	charges, err := h.queries.ListCharges(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		h.jsonError(w, "internal_error", "Failed to fetch charges", http.StatusInternalServerError)
		return
	}

	resp := make([]ChargeResponse, 0, len(charges))
	for _, c := range charges {
		resp = append(resp, h.chargeResponse(c))
	}
	h.jsonResponse(w, http.StatusOK, resp)
}

// GetChargeHandler returns a single charge
// GET /api/pix/charges/{id}
func (h *Handler) GetChargeHandler(w http.ResponseWriter, r *http.Request) {
	charge, ok := h.loadCharge(w, r)
	if !ok {
		return
	}
	h.jsonResponse(w, http.StatusOK, h.chargeResponse(charge))
}

// ChargeQRHandler renders the QR code of a stored charge
// GET /api/pix/charges/{id}/qr.png?size=256
func (h *Handler) ChargeQRHandler(w http.ResponseWriter, r *http.Request) {
	charge, ok := h.loadCharge(w, r)
	if !ok {
		return
	}

	png, err := h.pix.RenderPNG(charge.Code, int(queryInt(r, "size", 0)))
	if err != nil {
		logging.LoggerFromContext(r.Context()).Error("failed to render QR for charge %s: %v", charge.ID, err)
		h.jsonError(w, "internal_error", "Failed to render QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) loadCharge(w http.ResponseWriter, r *http.Request) (db.Charge, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		h.jsonError(w, "invalid_request", "Invalid charge id", http.StatusBadRequest)
		return db.Charge{}, false
	}

	charge, err := h.queries.GetCharge(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		h.jsonError(w, "not_found", "Charge not found", http.StatusNotFound)
		return db.Charge{}, false
	}
	if err != nil {
		h.jsonError(w, "internal_error", "Database error", http.StatusInternalServerError)
		return db.Charge{}, false
	}
	return charge, true
}

// decodeAmount accepts a JSON number or a string in either notation.
func decodeAmount(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("%w: amount is required", pix.ErrInvalidAmount)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var number json.Number
		if err := json.Unmarshal(raw, &number); err != nil {
			return 0, fmt.Errorf("%w: %s", pix.ErrInvalidAmount, string(raw))
		}
		text = number.String()
	}
	return pix.ParseAmount(text)
}

// audit records an entry in the logs table. Failures are only logged.
func (h *Handler) audit(ctx context.Context, level, message string) {
	if _, err := h.queries.CreateLog(ctx, db.CreateLogParams{
		Subsystem: "pix",
		Level:     level,
		Message:   message,
	}); err != nil {
		logging.LoggerFromContext(ctx).Warn("failed to write audit log: %v", err)
	}
}
