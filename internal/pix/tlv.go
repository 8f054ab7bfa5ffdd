package pix

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxFieldLength is the largest value a 2-digit length prefix can describe.
const MaxFieldLength = 99

// Field is a single ID-length-value entry of a BR Code.
// Children is only populated by the parser, for the templates 26 and 62.
type Field struct {
	ID       string
	Value    string
	Children []Field
}

// Encode returns id + 2-digit zero padded byte length + value.
func (f Field) Encode() (string, error) {
	if len(f.ID) != 2 {
		return "", fmt.Errorf("%w: field id %q must have 2 digits", ErrMalformedLength, f.ID)
	}
	if len(f.Value) > MaxFieldLength {
		return "", fmt.Errorf("%w: field %s has %d bytes, max %d", ErrFieldTooLong, f.ID, len(f.Value), MaxFieldLength)
	}
	return fmt.Sprintf("%s%02d%s", f.ID, len(f.Value), f.Value), nil
}

// EncodeFields encodes the fields in order and concatenates them.
func EncodeFields(fields ...Field) (string, error) {
	var b strings.Builder
	for _, f := range fields {
		enc, err := f.Encode()
		if err != nil {
			return "", err
		}
		b.WriteString(enc)
	}
	return b.String(), nil
}

// nestedField encodes children as the value of a template field.
func nestedField(id string, children ...Field) (Field, error) {
	value, err := EncodeFields(children...)
	if err != nil {
		return Field{}, err
	}
	return Field{ID: id, Value: value}, nil
}

// decodeFields scans s left to right and splits it into fields.
func decodeFields(s string) ([]Field, error) {
	var fields []Field
	for i := 0; i < len(s); {
		if i+4 > len(s) {
			return nil, fmt.Errorf("%w: incomplete header at offset %d", ErrTruncatedPayload, i)
		}
		id := s[i : i+2]
		if !isDigits(id) {
			return nil, fmt.Errorf("%w: field id %q at offset %d is not numeric", ErrMalformedLength, id, i)
		}
		lenText := s[i+2 : i+4]
		if !isDigits(lenText) {
			return nil, fmt.Errorf("%w: field %s declares length %q", ErrMalformedLength, id, lenText)
		}
		n, _ := strconv.Atoi(lenText)
		start := i + 4
		if start+n > len(s) {
			return nil, fmt.Errorf("%w: field %s declares %d bytes, %d remain", ErrTruncatedPayload, id, n, len(s)-start)
		}
		fields = append(fields, Field{ID: id, Value: s[start : start+n]})
		i = start + n
	}
	return fields, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// findField returns the first field with the given id.
func findField(fields []Field, id string) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}
