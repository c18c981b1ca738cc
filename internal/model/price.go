package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of fixed-point units per price unit.
const PriceScale = 1000

var (
	priceScale = decimal.NewFromInt(PriceScale)
	maxScaled  = decimal.NewFromInt(math.MaxInt64)
)

// ParsePrice converts a decimal string such as "105.1" to fixed-point.
// Values with more precision than PriceScale allows are rejected instead of
// being rounded, as are values whose fixed-point form does not fit in int64.
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse price: empty value")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("parse price %q: negative", s)
	}

	scaled := d.Mul(priceScale)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("parse price %q: more than 3 decimal places", s)
	}
	if scaled.GreaterThan(maxScaled) {
		return 0, fmt.Errorf("parse price %q: out of range", s)
	}
	return scaled.IntPart(), nil
}

// FormatPrice renders a fixed-point price as a decimal string.
func FormatPrice(v int64) string {
	return decimal.New(v, -3).String()
}
