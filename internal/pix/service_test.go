package pix

import (
	"errors"
	"strings"
	"testing"
)

func testMerchant() Merchant {
	return Merchant{
		Key:  "58975369000108",
		Name: "Agencia Check",
		City: "Sao Paulo",
	}
}

func TestServiceGenerateCode(t *testing.T) {
	s := NewService(testMerchant(), 0)

	payload, err := s.GenerateCode(GenerateParams{Amount: 2.50, Reference: "FB12345678"})
	if err != nil {
		t.Fatalf("GenerateCode() error = %v", err)
	}

	want, _ := BuildPayload(agenciaCheckRequest())
	if payload.Code != want.Code {
		t.Errorf("GenerateCode() = %q, want %q", payload.Code, want.Code)
	}
}

func TestServiceStaticMerchant(t *testing.T) {
	m := testMerchant()
	m.Initiation = InitiationStatic
	s := NewService(m, 0)

	payload, err := s.GenerateCode(GenerateParams{Amount: 10})
	if err != nil {
		t.Fatalf("GenerateCode() error = %v", err)
	}
	if !strings.HasPrefix(payload.Code, "000201010211") {
		t.Errorf("GenerateCode() = %q, want a static code", payload.Code)
	}
}

func TestServiceGeneratePaymentQR(t *testing.T) {
	s := NewService(testMerchant(), 128)

	charge, err := s.GeneratePaymentQR(GenerateParams{Amount: 99.90, Description: "Pacote diamantes"})
	if err != nil {
		t.Fatalf("GeneratePaymentQR() error = %v", err)
	}

	if !strings.HasPrefix(charge.QRCode, "data:image/png;base64,") {
		t.Errorf("QRCode should be a data URL, got %q", charge.QRCode[:30])
	}
	if _, err := ParsePayload(charge.Code); err != nil {
		t.Errorf("ParsePayload(%q) error = %v", charge.Code, err)
	}
}

func TestServiceNotConfigured(t *testing.T) {
	s := NewService(Merchant{Key: "58975369000108"}, 0)

	if s.IsConfigured() {
		t.Fatal("IsConfigured() = true, want false without name and city")
	}
	if _, err := s.GenerateCode(GenerateParams{Amount: 1}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("GenerateCode() error = %v, want %v", err, ErrNotConfigured)
	}
	if _, err := s.GeneratePaymentQR(GenerateParams{Amount: 1}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("GeneratePaymentQR() error = %v, want %v", err, ErrNotConfigured)
	}
}

func TestServiceInvalidAmount(t *testing.T) {
	s := NewService(testMerchant(), 0)

	if _, err := s.GenerateCode(GenerateParams{Amount: 0}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("GenerateCode() error = %v, want %v", err, ErrInvalidAmount)
	}
}
