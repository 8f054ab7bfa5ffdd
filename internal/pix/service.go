package pix

import "errors"

// ErrNotConfigured is returned by Service when no merchant is configured.
var ErrNotConfigured = errors.New("pix merchant not configured")

// Merchant is the receiving side of every charge issued by a Service.
type Merchant struct {
	Key        string
	Name       string
	City       string
	Initiation Initiation
}

// Service issues BR Codes for a fixed merchant.
type Service struct {
	merchant Merchant
	qrSize   int
}

// NewService creates a service for the given merchant. A non positive qrSize
// falls back to DefaultQRSize.
func NewService(merchant Merchant, qrSize int) *Service {
	if qrSize <= 0 {
		qrSize = DefaultQRSize
	}
	return &Service{
		merchant: merchant,
		qrSize:   qrSize,
	}
}

// GenerateParams holds the per-charge parameters.
type GenerateParams struct {
	// Amount is the payment amount in BRL.
	Amount float64
	// Reference is the transaction id (txid). Optional.
	Reference string
	// Description is a free text shown to the payer. Optional.
	Description string
	// Size is the QR code size in pixels. Defaults to the service size.
	Size int
}

// Charge is a generated BR Code together with its QR rendering.
type Charge struct {
	Payload
	// QRCode is a PNG data URL.
	QRCode string
}

// GenerateCode builds the BR Code string without rendering a QR image.
func (s *Service) GenerateCode(params GenerateParams) (*Payload, error) {
	if !s.IsConfigured() {
		return nil, ErrNotConfigured
	}

	return BuildPayload(ChargeRequest{
		Amount:         params.Amount,
		MerchantKey:    s.merchant.Key,
		MerchantName:   s.merchant.Name,
		MerchantCity:   s.merchant.City,
		ReferenceLabel: params.Reference,
		Description:    params.Description,
		Initiation:     s.merchant.Initiation,
	})
}

// GeneratePaymentQR builds the BR Code and renders it as a QR data URL.
func (s *Service) GeneratePaymentQR(params GenerateParams) (*Charge, error) {
	payload, err := s.GenerateCode(params)
	if err != nil {
		return nil, err
	}

	size := params.Size
	if size <= 0 {
		size = s.qrSize
	}

	qr, err := GenerateQRBase64(payload.Code, size)
	if err != nil {
		return nil, err
	}

	return &Charge{Payload: *payload, QRCode: qr}, nil
}

// RenderPNG renders an existing code with the service's default size when size <= 0.
func (s *Service) RenderPNG(code string, size int) ([]byte, error) {
	if size <= 0 {
		size = s.qrSize
	}
	return GenerateQRPNG(code, size)
}

// Merchant returns the configured merchant.
func (s *Service) Merchant() Merchant {
	return s.merchant
}

// IsConfigured returns true if key, name and city are all set.
func (s *Service) IsConfigured() bool {
	return s.merchant.Key != "" && s.merchant.Name != "" && s.merchant.City != ""
}
