package pix

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsedPayload is a decoded and checksum-verified BR Code.
type ParsedPayload struct {
	// Fields holds every top level field in payload order. Templates 26 and
	// 62 have their Children populated.
	Fields []Field

	PayloadFormat string
	Initiation    Initiation

	// GUI, MerchantKey and MerchantURL come from template 26.
	GUI         string
	MerchantKey string
	MerchantURL string

	CategoryCode string
	Currency     string
	// AmountText is the raw value of field 54, empty when the code carries no amount.
	AmountText string
	Amount     float64

	CountryCode  string
	MerchantName string
	MerchantCity string

	// ReferenceLabel is the raw txid; DefaultReference ("***") means none.
	ReferenceLabel string
	Description    string

	CRC string

	// Unsupported lists top level fields this package does not interpret.
	Unsupported []Field
}

// IsPix reports whether the merchant account template carries the PIX GUI.
func (p *ParsedPayload) IsPix() bool {
	return strings.EqualFold(p.GUI, GUI)
}

// HasReference reports whether a transaction id other than the placeholder is present.
func (p *ParsedPayload) HasReference() bool {
	return p.ReferenceLabel != "" && p.ReferenceLabel != DefaultReference
}

// Advisories returns one ErrUnsupportedFieldID per uninterpreted top level field.
// They do not make the payload invalid.
func (p *ParsedPayload) Advisories() []error {
	var errs []error
	for _, f := range p.Unsupported {
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnsupportedFieldID, f.ID))
	}
	return errs
}

// ParsePayload validates and decodes a BR Code.
//
// The checksum is verified before the structure is decoded, so any corruption
// of the body is reported as ErrChecksumMismatch. A payload with a valid
// checksum but a broken structure fails with ErrMalformedLength or
// ErrTruncatedPayload. No partial result is ever returned.
func ParsePayload(code string) (*ParsedPayload, error) {
	code = strings.TrimSpace(code)
	if len(code) < len(crcFieldPrefix)+4 {
		return nil, fmt.Errorf("%w: payload too short to carry a checksum", ErrChecksumMismatch)
	}

	body := code[:len(code)-4]
	if !strings.HasSuffix(body, crcFieldPrefix) {
		return nil, fmt.Errorf("%w: checksum field %s not found at the end", ErrChecksumMismatch, crcFieldPrefix)
	}
	got := code[len(code)-4:]
	if want := CRC16(body); !strings.EqualFold(got, want) {
		return nil, fmt.Errorf("%w: payload carries %s, computed %s", ErrChecksumMismatch, got, want)
	}

	fields, err := decodeFields(code)
	if err != nil {
		return nil, err
	}
	if last := fields[len(fields)-1]; last.ID != idCRC || len(last.Value) != 4 {
		return nil, fmt.Errorf("%w: last field is %s, want %s", ErrChecksumMismatch, last.ID, idCRC)
	}

	p := &ParsedPayload{Fields: fields}
	for i := range fields {
		f := &fields[i]
		switch f.ID {
		case idPayloadFormat:
			p.PayloadFormat = f.Value
		case idInitiation:
			p.Initiation = Initiation(f.Value)
		case idMerchantAccount:
			if f.Children, err = decodeFields(f.Value); err != nil {
				return nil, fmt.Errorf("field %s: %w", f.ID, err)
			}
			p.readMerchantAccount(f.Children)
		case idCategoryCode:
			p.CategoryCode = f.Value
		case idCurrency:
			p.Currency = f.Value
		case idAmount:
			if !encodedAmountRx.MatchString(f.Value) {
				return nil, fmt.Errorf("%w: field %s holds %q", ErrInvalidAmount, f.ID, f.Value)
			}
			amount, err := strconv.ParseFloat(f.Value, 64)
			if err != nil || amount <= 0 {
				return nil, fmt.Errorf("%w: field %s holds %q", ErrInvalidAmount, f.ID, f.Value)
			}
			p.AmountText = f.Value
			p.Amount = amount
		case idCountryCode:
			p.CountryCode = f.Value
		case idMerchantName:
			p.MerchantName = f.Value
		case idMerchantCity:
			p.MerchantCity = f.Value
		case idAdditionalData:
			if f.Children, err = decodeFields(f.Value); err != nil {
				return nil, fmt.Errorf("field %s: %w", f.ID, err)
			}
			p.readAdditionalData(f.Children)
		case idCRC:
			p.CRC = strings.ToUpper(f.Value)
		default:
			p.Unsupported = append(p.Unsupported, *f)
		}
	}

	return p, nil
}

func (p *ParsedPayload) readMerchantAccount(children []Field) {
	if f, ok := findField(children, idAccountGUI); ok {
		p.GUI = f.Value
	}
	if f, ok := findField(children, idAccountKey); ok {
		p.MerchantKey = f.Value
	}
	// dynamic codes point to a location instead of carrying a key
	if f, ok := findField(children, idAccountURL); ok {
		p.MerchantURL = f.Value
	}
}

func (p *ParsedPayload) readAdditionalData(children []Field) {
	if f, ok := findField(children, idDataReference); ok {
		p.ReferenceLabel = f.Value
	}
	if f, ok := findField(children, idDataDescription); ok {
		p.Description = f.Value
	}
}
