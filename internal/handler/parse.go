package handler

import (
	"encoding/json"
	"net/http"

	"github.com/agenciacheck/pix-portal/internal/logging"
	"github.com/agenciacheck/pix-portal/internal/pix"
)

// ParseRequest is the request body for validating a BR Code
type ParseRequest struct {
	Code string `json:"code"`
}

// FieldResponse is one TLV field of a parsed code
type FieldResponse struct {
	ID       string          `json:"id"`
	Value    string          `json:"value"`
	Children []FieldResponse `json:"children,omitempty"`
}

// ParseResponse is a validated BR Code
type ParseResponse struct {
	Valid          bool            `json:"valid"`
	PixCode        bool            `json:"pix"`
	Initiation     string          `json:"initiation,omitempty"`
	MerchantKey    string          `json:"merchant_key,omitempty"`
	MerchantURL    string          `json:"merchant_url,omitempty"`
	MerchantName   string          `json:"merchant_name"`
	MerchantCity   string          `json:"merchant_city"`
	Amount         string          `json:"amount,omitempty"`
	Currency       string          `json:"currency"`
	ReferenceLabel string          `json:"reference,omitempty"`
	Description    string          `json:"description,omitempty"`
	CRC            string          `json:"crc"`
	Fields         []FieldResponse `json:"fields"`
	Advisories     []string        `json:"advisories,omitempty"`
}

func fieldResponses(fields []pix.Field) []FieldResponse {
	out := make([]FieldResponse, 0, len(fields))
	for _, f := range fields {
		out = append(out, FieldResponse{
			ID:       f.ID,
			Value:    f.Value,
			Children: fieldResponses(f.Children),
		})
	}
	return out
}

// ParseHandler validates a pasted BR Code and returns its fields
// POST /api/pix/parse
func (h *Handler) ParseHandler(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid_request", "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	parsed, err := pix.ParsePayload(req.Code)
	if err != nil {
		logging.LoggerFromContext(r.Context()).Debug("rejected BR Code: %v", err)
		h.pixError(w, r, err)
		return
	}

	resp := ParseResponse{
		Valid:          true,
		PixCode:        parsed.IsPix(),
		Initiation:     string(parsed.Initiation),
		MerchantKey:    parsed.MerchantKey,
		MerchantURL:    parsed.MerchantURL,
		MerchantName:   parsed.MerchantName,
		MerchantCity:   parsed.MerchantCity,
		Amount:         parsed.AmountText,
		Currency:       parsed.Currency,
		ReferenceLabel: parsed.ReferenceLabel,
		Description:    parsed.Description,
		CRC:            parsed.CRC,
		Fields:         fieldResponses(parsed.Fields),
	}
	for _, advisory := range parsed.Advisories() {
		resp.Advisories = append(resp.Advisories, advisory.Error())
	}

	h.jsonResponse(w, http.StatusOK, resp)
}
