package roomstat

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Decimal is a fixed-point number with exactly two fractional digits,
// stored as hundredths. It is the value type of every rounded aggregate.
type Decimal struct {
	hundredths int64
}

// NewDecimal builds a Decimal from a count of hundredths: 1046 is 10.46.
func NewDecimal(hundredths int64) Decimal {
	return Decimal{hundredths: hundredths}
}

// DecimalFromFloat rounds f half away from zero to two decimals.
func DecimalFromFloat(f float64) Decimal {
	return Decimal{hundredths: int64(math.Round(f * 100))}
}

// ParseDecimal parses a canonical decimal string such as "10.46" or "-3".
// More than two fractional digits are rounded half away from zero.
func ParseDecimal(s string) (Decimal, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return DecimalFromFloat(f), nil
}

// Hundredths returns the raw scaled value.
func (d Decimal) Hundredths() int64 { return d.hundredths }

// String returns the canonical form: no grouping, always two decimals.
func (d Decimal) String() string {
	v := d.hundredths
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON emits the canonical form as a bare JSON number.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts a JSON number.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDecimal(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText emits the canonical form, used by the XML encoder.
func (d Decimal) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
