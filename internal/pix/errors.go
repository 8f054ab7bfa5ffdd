package pix

import "errors"

// Builder errors.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrMissingMerchantKey  = errors.New("missing merchant key")
	ErrMissingMerchantName = errors.New("missing merchant name")
	ErrMissingMerchantCity = errors.New("missing merchant city")
	ErrInvalidInitiation   = errors.New("invalid point of initiation method")
	ErrFieldTooLong        = errors.New("field too long")
)

// Parser errors. ErrUnsupportedFieldID is advisory and never returned by ParsePayload.
var (
	ErrMalformedLength    = errors.New("malformed length")
	ErrTruncatedPayload   = errors.New("truncated payload")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrUnsupportedFieldID = errors.New("unsupported field id")
)
