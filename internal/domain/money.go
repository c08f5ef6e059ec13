package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const minorUnitExp = 2

// FormatMinorUnits renders centavos as a fixed two-place decimal string.
func FormatMinorUnits(amount int64) string {
	return decimal.New(amount, -minorUnitExp).StringFixed(minorUnitExp)
}

// ParseMajorUnits converts a decimal string such as "150.25" into minor
// units. More than two fractional digits is an error rather than a rounding,
// and so is a value that does not fit in an int64.
func ParseMajorUnits(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("ParseMajorUnits: %w", ErrInvalidAmount)
	}
	shifted := d.Shift(minorUnitExp)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("ParseMajorUnits: too many decimal places: %w", ErrInvalidAmount)
	}
	if !shifted.BigInt().IsInt64() {
		return 0, fmt.Errorf("ParseMajorUnits: out of range: %w", ErrInvalidAmount)
	}
	return shifted.IntPart(), nil
}

// RoundToMinorUnits converts a floating point major-unit amount, as found in
// legacy data files, to minor units using banker's rounding.
func RoundToMinorUnits(f float64) int64 {
	return decimal.NewFromFloat(f).Shift(minorUnitExp).RoundBank(0).IntPart()
}
