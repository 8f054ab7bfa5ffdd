package pix

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// DefaultQRSize is the QR image width in pixels used when none is given.
const DefaultQRSize = 256

// QRRecoveryLevel is the error correction of rendered codes. A full 512 byte
// BR Code still fits a phone screen at Medium.
var QRRecoveryLevel = qrcode.Medium

// GenerateQRPNG renders a BR Code as a PNG image. The code is validated first;
// a QR image is never produced for a payload that would be rejected by a payer's app.
func GenerateQRPNG(code string, size int) ([]byte, error) {
	if _, err := ParsePayload(code); err != nil {
		return nil, fmt.Errorf("cannot render QR code: %w", err)
	}
	if size <= 0 {
		size = DefaultQRSize
	}

	q, err := qrcode.New(code, QRRecoveryLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	png, err := q.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}

// GenerateQRBase64 renders a BR Code as a PNG data URL for an img src attribute.
func GenerateQRBase64(code string, size int) (string, error) {
	png, err := GenerateQRPNG(code, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
