package handler

import (
	"errors"
	"net/http"

	"github.com/agenciacheck/pix-portal/internal/logging"
	"github.com/agenciacheck/pix-portal/internal/pix"
)

// pixErrorCodes maps core errors to stable API error codes.
var pixErrorCodes = []struct {
	err  error
	code string
}{
	{pix.ErrInvalidAmount, "invalid_amount"},
	{pix.ErrMissingMerchantKey, "missing_merchant_key"},
	{pix.ErrMissingMerchantName, "missing_merchant_name"},
	{pix.ErrMissingMerchantCity, "missing_merchant_city"},
	{pix.ErrInvalidInitiation, "invalid_initiation"},
	{pix.ErrFieldTooLong, "field_too_long"},
	{pix.ErrMalformedLength, "malformed_length"},
	{pix.ErrTruncatedPayload, "truncated_payload"},
	{pix.ErrChecksumMismatch, "checksum_mismatch"},
}

// pixError writes a core error as 422, or 503 when no merchant is configured.
func (h *Handler) pixError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, pix.ErrNotConfigured) {
		h.jsonError(w, "not_configured", err.Error(), http.StatusServiceUnavailable)
		return
	}
	for _, c := range pixErrorCodes {
		if errors.Is(err, c.err) {
			h.jsonError(w, c.code, err.Error(), http.StatusUnprocessableEntity)
			return
		}
	}
	logging.LoggerFromContext(r.Context()).Error("unexpected pix error: %v", err)
	h.jsonError(w, "internal_error", err.Error(), http.StatusInternalServerError)
}
