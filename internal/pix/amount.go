package pix

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxAmountLength is the size limit of field 54.
const MaxAmountLength = 13

var amountRx = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// encodedAmountRx matches field 54 as found in third party codes, which may
// carry more than two decimals.
var encodedAmountRx = regexp.MustCompile(`^\d+(\.\d+)?$`)

// FormatAmount renders a strictly positive amount with exactly two decimals,
// '.' as separator and no thousands separator. Amounts with more than two
// fractional digits are rejected rather than rounded.
func FormatAmount(amount float64) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return "", fmt.Errorf("%w: %v must be greater than zero", ErrInvalidAmount, amount)
	}

	// shortest representation that round-trips, e.g. 2.5 -> "2.5"
	shortest := strconv.FormatFloat(amount, 'f', -1, 64)
	if dot := strings.IndexByte(shortest, '.'); dot != -1 && len(shortest)-dot-1 > 2 {
		return "", fmt.Errorf("%w: %s has more than 2 decimal places", ErrInvalidAmount, shortest)
	}

	text := strconv.FormatFloat(amount, 'f', 2, 64)
	if len(text) > MaxAmountLength {
		return "", fmt.Errorf("%w: amount %s exceeds %d characters", ErrFieldTooLong, text, MaxAmountLength)
	}
	return text, nil
}

// ParseAmount reads an amount typed by a person: "12.50", "12,50" and
// "1.234,56" are accepted.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)

	if strings.Contains(s, ",") {
		// Brazilian notation: '.' groups thousands, ',' separates decimals
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	if !amountRx.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, s)
	}
	return amount, nil
}
