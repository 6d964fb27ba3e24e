package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal coerces a form value to a decimal.
//
// Both dot (12.5) and comma (12,5) separators are accepted. An empty value is
// zero. Negative values are kept as-is: entries are stored as provided.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q", ErrInvalidNumber, s)
	}
	return d, nil
}

// ParseCount coerces a form value to an integer count. An empty value is zero.
// A whole decimal such as "3.0" is accepted; a fractional one is not.
func ParseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("%w %q: not a whole number", ErrInvalidNumber, s)
	}
	return d.IntPart(), nil
}
