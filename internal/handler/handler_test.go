package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/agenciacheck/pix-portal/internal/config"
	"github.com/agenciacheck/pix-portal/internal/db"
	"github.com/agenciacheck/pix-portal/internal/logging"
	"github.com/agenciacheck/pix-portal/internal/pix"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:         "http://pix.test",
		PixKey:          "58975369000108",
		PixMerchantName: "Agencia Check",
		PixMerchantCity: "Sao Paulo",
		PixInitiation:   pix.InitiationDynamic,
		PixQRSize:       128,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	return newTestServerWithLogger(t, cfg, logging.NewNoopLogger())
}

func newTestServerWithLogger(t *testing.T, cfg *config.Config, logger logging.Logger) *httptest.Server {
	t.Helper()

	database, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.Migrate(context.Background(), database))

	h := New(database, cfg, logger)
	h.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(encoded))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, true, body["configured"])
	require.Equal(t, "Agencia Check", body["merchant_name"])
	require.Equal(t, "Sao Paulo", body["merchant_city"])
	require.Equal(t, "12", body["initiation"])
}

func TestCreateCharge(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp := postJSON(t, srv.URL+"/api/pix/charges", map[string]interface{}{
		"amount":    "2,50",
		"reference": "FB12345678",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var charge ChargeResponse
	decode(t, resp, &charge)
	require.NotEmpty(t, charge.ID)
	require.Equal(t, "FB12345678", charge.Reference)
	require.Equal(t, "2.50", charge.Amount)
	require.Equal(t, "00020101021226360014BR.GOV.BCB.PIX011458975369000108"+
		"52040000530398654042.505802BR5913Agencia Check6009Sao Paulo"+
		"62140510FB123456786304A66D", charge.Code)
	require.True(t, strings.HasPrefix(charge.QRCode, "data:image/png;base64,"))
	require.Equal(t, "http://pix.test/api/pix/charges/"+charge.ID+"/qr.png", charge.QRURL)
	require.Empty(t, charge.Warnings)

	getResp, err := http.Get(srv.URL + "/api/pix/charges/" + charge.ID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var stored ChargeResponse
	decode(t, getResp, &stored)
	require.Equal(t, charge.Code, stored.Code)
	require.Empty(t, stored.QRCode)

	listResp, err := http.Get(srv.URL + "/api/pix/charges")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var list []ChargeResponse
	decode(t, listResp, &list)
	require.Len(t, list, 1)
	require.Equal(t, charge.ID, list[0].ID)

	byRefResp, err := http.Get(srv.URL + "/api/pix/charges?reference=FB12345678")
	require.NoError(t, err)
	defer byRefResp.Body.Close()

	var byRef []ChargeResponse
	decode(t, byRefResp, &byRef)
	require.Len(t, byRef, 1)
	require.Equal(t, charge.ID, byRef[0].ID)

	missingResp, err := http.Get(srv.URL + "/api/pix/charges?reference=NOPE")
	require.NoError(t, err)
	defer missingResp.Body.Close()

	var missing []ChargeResponse
	decode(t, missingResp, &missing)
	require.Empty(t, missing)

	logsResp, err := http.Get(srv.URL + "/api/logs?level=success")
	require.NoError(t, err)
	defer logsResp.Body.Close()

	var entries []LogEntry
	decode(t, logsResp, &entries)
	require.Len(t, entries, 1)
	require.Contains(t, entries[0].Metadata, charge.ID)
}

func TestListChargesPlaceholderReference(t *testing.T) {
	srv := newTestServer(t, testConfig())

	for _, amount := range []string{"1.00", "2.00"} {
		resp := postJSON(t, srv.URL+"/api/pix/charges", map[string]interface{}{"amount": amount})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/api/pix/charges?reference=" + url.QueryEscape(pix.DefaultReference))
	require.NoError(t, err)
	defer resp.Body.Close()

	var list []ChargeResponse
	decode(t, resp, &list)
	require.Len(t, list, 2)
	for _, c := range list {
		require.Equal(t, pix.DefaultReference, c.Reference)
	}
}

// lockedBuffer is written by the server goroutines and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRequestsLogThroughContextLogger(t *testing.T) {
	var buf lockedBuffer
	srv := newTestServerWithLogger(t, testConfig(), logging.New(&buf, "debug", "json"))

	resp := postJSON(t, srv.URL+"/api/pix/charges", map[string]interface{}{
		"amount":    "5.00",
		"reference": "LOG-1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	parseResp := postJSON(t, srv.URL+"/api/pix/parse", ParseRequest{Code: "not a code"})
	require.Equal(t, http.StatusUnprocessableEntity, parseResp.StatusCode)

	out := buf.String()
	require.Contains(t, out, "issued charge")
	require.Contains(t, out, "reference=LOG1")
	require.Contains(t, out, "rejected BR Code")
	require.Contains(t, out, "field 62.05: non alphanumeric characters removed")
}

func TestCreateChargeNumericAmountAndWarnings(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp := postJSON(t, srv.URL+"/api/pix/charges", map[string]interface{}{
		"amount":      49.9,
		"reference":   "PED-0042",
		"description": "Pacote com 1000 diamantes para a conta do cliente no aplicativo, entrega em até 24 horas úteis",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var charge ChargeResponse
	decode(t, resp, &charge)
	require.Equal(t, "49.90", charge.Amount)
	require.Equal(t, "PED0042", charge.Reference)
	require.NotEmpty(t, charge.Warnings)

	parsed, err := pix.ParsePayload(charge.Code)
	require.NoError(t, err)
	require.Equal(t, charge.Description, parsed.Description)
}

func TestCreateChargeErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed json", `{"amount":`, http.StatusBadRequest, "invalid_request"},
		{"missing amount", `{"reference":"A1"}`, http.StatusUnprocessableEntity, "invalid_amount"},
		{"zero amount", `{"amount":0}`, http.StatusUnprocessableEntity, "invalid_amount"},
		{"three decimals", `{"amount":"1.005"}`, http.StatusUnprocessableEntity, "invalid_amount"},
		{"amount too large", `{"amount":"99999999999.00"}`, http.StatusUnprocessableEntity, "field_too_long"},
	}

	srv := newTestServer(t, testConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/pix/charges", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, tt.wantStatus, resp.StatusCode)
			var body ErrorResponse
			decode(t, resp, &body)
			require.Equal(t, tt.wantCode, body.Error)
		})
	}

	logsResp, err := http.Get(srv.URL + "/api/logs?level=error")
	require.NoError(t, err)
	defer logsResp.Body.Close()

	var entries []LogEntry
	decode(t, logsResp, &entries)
	require.Len(t, entries, 4)
}

func TestCreateChargeNotConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.PixMerchantCity = ""
	srv := newTestServer(t, cfg)

	resp := postJSON(t, srv.URL+"/api/pix/charges", map[string]interface{}{"amount": "10.00"})
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body ErrorResponse
	decode(t, resp, &body)
	require.Equal(t, "not_configured", body.Error)
}

func TestGetChargeErrors(t *testing.T) {
	srv := newTestServer(t, testConfig())

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/api/pix/charges/not-a-uuid", http.StatusBadRequest},
		{"/api/pix/charges/6f1c1f4e-7a53-4c4e-9d7f-0c7a2b4f8e11", http.StatusNotFound},
		{"/api/pix/charges/6f1c1f4e-7a53-4c4e-9d7f-0c7a2b4f8e11/qr.png", http.StatusNotFound},
	}

	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, tt.wantStatus, resp.StatusCode, tt.path)
	}
}

func TestChargeQR(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp := postJSON(t, srv.URL+"/api/pix/charges", map[string]interface{}{"amount": "15.00"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var charge ChargeResponse
	decode(t, resp, &charge)

	qrResp, err := http.Get(srv.URL + "/api/pix/charges/" + charge.ID + "/qr.png?size=200")
	require.NoError(t, err)
	defer qrResp.Body.Close()

	require.Equal(t, http.StatusOK, qrResp.StatusCode)
	require.Equal(t, "image/png", qrResp.Header.Get("Content-Type"))

	var png bytes.Buffer
	_, err = png.ReadFrom(qrResp.Body)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))
}

func TestParse(t *testing.T) {
	srv := newTestServer(t, testConfig())

	code := "00020126580014br.gov.bcb.pix0136123e4567-e12b-12d1-a456-426655440000" +
		"5204000053039865802BR5913Fulano de Tal6008BRASILIA62070503***63041D3D"

	resp := postJSON(t, srv.URL+"/api/pix/parse", ParseRequest{Code: code})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed ParseResponse
	decode(t, resp, &parsed)
	require.True(t, parsed.Valid)
	require.True(t, parsed.PixCode)
	require.Equal(t, "123e4567-e12b-12d1-a456-426655440000", parsed.MerchantKey)
	require.Equal(t, "Fulano de Tal", parsed.MerchantName)
	require.Equal(t, "986", parsed.Currency)
	require.Equal(t, "1D3D", parsed.CRC)
	require.Empty(t, parsed.Amount)
	require.Len(t, parsed.Fields, 9)
	require.Len(t, parsed.Fields[1].Children, 2)
}

func TestParseErrors(t *testing.T) {
	srv := newTestServer(t, testConfig())

	tests := []struct {
		name     string
		code     string
		wantCode string
	}{
		{"corrupted body", "00020126580014br.gov.bcb.pix0136123e4567-e12b-12d1-a456-426655440000" +
			"5204000053039865802BR5913Fulano de Tal6008BRASILIA62070503***63041D3E", "checksum_mismatch"},
		{"empty", "", "checksum_mismatch"},
		{"field overlaps the checksum", "0002015907Fulano63042DBD", "truncated_payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/pix/parse", ParseRequest{Code: tt.code})
			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			var body ErrorResponse
			decode(t, resp, &body)
			require.Equal(t, tt.wantCode, body.Error)
		})
	}
}
