// Package pix implements PIX BR Code generation and validation: the EMV
// derived tag-length-value payload behind Brazilian instant payment QR codes
// and "copia e cola" strings.
// See: https://www.bcb.gov.br/estabilidadefinanceira/pix (Manual do BR Code)
package pix

import (
	"fmt"
	"strings"
)

// GUI identifies the PIX arrangement inside the merchant account template.
const GUI = "BR.GOV.BCB.PIX"

// Field limits of the BR Code profile.
const (
	MaxMerchantNameLength = 25
	MaxMerchantCityLength = 15
	MaxReferenceLength    = 25
	MaxPayloadLength      = 512
)

// DefaultReference is emitted in field 62-05 when no transaction id is given.
const DefaultReference = "***"

const (
	idPayloadFormat   = "00"
	idInitiation      = "01"
	idMerchantAccount = "26"
	idCategoryCode    = "52"
	idCurrency        = "53"
	idAmount          = "54"
	idCountryCode     = "58"
	idMerchantName    = "59"
	idMerchantCity    = "60"
	idAdditionalData  = "62"
	idCRC             = "63"

	// merchant account template (26)
	idAccountGUI = "00"
	idAccountKey = "01"
	idAccountURL = "25"

	// additional data template (62)
	idDataDescription = "02"
	idDataReference   = "05"
)

const (
	payloadFormatIndicator = "01"
	categoryCodeUnknown    = "0000"
	currencyBRL            = "986"
	countryBrazil          = "BR"
)

// Initiation is the point of initiation method (field 01).
type Initiation string

const (
	// InitiationStatic marks a reusable code.
	InitiationStatic Initiation = "11"
	// InitiationDynamic marks a single-use code. It is the default.
	InitiationDynamic Initiation = "12"
)

// ParseInitiation accepts "static"/"11" and "dynamic"/"12". Empty means dynamic.
func ParseInitiation(s string) (Initiation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dynamic", string(InitiationDynamic):
		return InitiationDynamic, nil
	case "static", string(InitiationStatic):
		return InitiationStatic, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidInitiation, s)
}

// ChargeRequest holds the parameters of a single BR Code.
type ChargeRequest struct {
	// Amount in BRL, strictly positive with at most 2 decimal places.
	Amount float64
	// MerchantKey is the receiver's PIX key (CPF/CNPJ, e-mail, +55 phone or random key).
	MerchantKey string
	// MerchantName is normalized to ASCII and truncated to 25 bytes.
	MerchantName string
	// MerchantCity is normalized to ASCII and truncated to 15 bytes.
	MerchantCity string
	// ReferenceLabel is the txid. Only letters and digits are kept, max 25.
	ReferenceLabel string
	// Description is free text, truncated to the room left in field 62.
	Description string
	// Initiation defaults to InitiationDynamic.
	Initiation Initiation
}

// Warning reports a value that was changed to fit the BR Code format.
type Warning struct {
	// FieldID is the field path, e.g. "59" or "62.05".
	FieldID string
	Reason  string
}

func (w Warning) String() string {
	return fmt.Sprintf("field %s: %s", w.FieldID, w.Reason)
}

// Payload is a built BR Code.
type Payload struct {
	Code     string
	Warnings []Warning
}

// BuildPayload serializes the request into a BR Code. The output depends only
// on the request; identical requests produce identical codes.
//
// Oversized names, cities, references and descriptions are truncated, never
// rejected. Every such change is listed in Payload.Warnings.
func BuildPayload(req ChargeRequest) (*Payload, error) {
	initiation := req.Initiation
	if initiation == "" {
		initiation = InitiationDynamic
	}
	if initiation != InitiationStatic && initiation != InitiationDynamic {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInitiation, initiation)
	}

	amount, err := FormatAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(req.MerchantKey)
	if key == "" {
		return nil, ErrMissingMerchantKey
	}

	var warnings []Warning

	name := fitText(idMerchantName, req.MerchantName, MaxMerchantNameLength, &warnings)
	if name == "" {
		return nil, ErrMissingMerchantName
	}
	city := fitText(idMerchantCity, req.MerchantCity, MaxMerchantCityLength, &warnings)
	if city == "" {
		return nil, ErrMissingMerchantCity
	}

	account, err := nestedField(idMerchantAccount,
		Field{ID: idAccountGUI, Value: GUI},
		Field{ID: idAccountKey, Value: key},
	)
	if err != nil {
		return nil, err
	}

	additional, err := additionalData(req.ReferenceLabel, req.Description, &warnings)
	if err != nil {
		return nil, err
	}

	body, err := EncodeFields(
		Field{ID: idPayloadFormat, Value: payloadFormatIndicator},
		Field{ID: idInitiation, Value: string(initiation)},
		account,
		Field{ID: idCategoryCode, Value: categoryCodeUnknown},
		Field{ID: idCurrency, Value: currencyBRL},
		Field{ID: idAmount, Value: amount},
		Field{ID: idCountryCode, Value: countryBrazil},
		Field{ID: idMerchantName, Value: name},
		Field{ID: idMerchantCity, Value: city},
		additional,
	)
	if err != nil {
		return nil, err
	}

	body += crcFieldPrefix
	code := body + CRC16(body)
	if len(code) > MaxPayloadLength {
		return nil, fmt.Errorf("%w: payload has %d bytes, max %d", ErrFieldTooLong, len(code), MaxPayloadLength)
	}

	return &Payload{Code: code, Warnings: warnings}, nil
}

// additionalData builds template 62: the reference first, then the
// description cut so the whole template stays within 99 bytes.
func additionalData(reference, description string, warnings *[]Warning) (Field, error) {
	refPath := idAdditionalData + "." + idDataReference

	ref := sanitizeReference(reference)
	if ref != strings.TrimSpace(reference) {
		*warnings = append(*warnings, Warning{FieldID: refPath, Reason: "non alphanumeric characters removed"})
	}
	if len(ref) > MaxReferenceLength {
		*warnings = append(*warnings, Warning{
			FieldID: refPath,
			Reason:  fmt.Sprintf("truncated from %d to %d characters", len(ref), MaxReferenceLength),
		})
		ref = ref[:MaxReferenceLength]
	}
	if ref == "" {
		ref = DefaultReference
	}

	children := []Field{{ID: idDataReference, Value: ref}}

	if desc := toASCII(description); desc != "" {
		descPath := idAdditionalData + "." + idDataDescription
		if desc != strings.TrimSpace(description) {
			*warnings = append(*warnings, Warning{FieldID: descPath, Reason: "normalized to ASCII"})
		}
		// both sub fields carry a 4 byte header
		room := MaxFieldLength - (4 + len(ref)) - 4
		if len(desc) > room {
			*warnings = append(*warnings, Warning{
				FieldID: descPath,
				Reason:  fmt.Sprintf("truncated from %d to %d characters", len(desc), room),
			})
			desc = desc[:room]
		}
		children = append(children, Field{ID: idDataDescription, Value: desc})
	}

	return nestedField(idAdditionalData, children...)
}

// fitText normalizes s to ASCII and truncates it to maxLen, recording a
// warning for each change.
func fitText(id, s string, maxLen int, warnings *[]Warning) string {
	clean := toASCII(s)
	if clean != strings.TrimSpace(s) {
		*warnings = append(*warnings, Warning{FieldID: id, Reason: "normalized to ASCII"})
	}
	if len(clean) > maxLen {
		*warnings = append(*warnings, Warning{
			FieldID: id,
			Reason:  fmt.Sprintf("truncated from %d to %d characters", len(clean), maxLen),
		})
	}
	return truncate(clean, maxLen)
}
