// Package money provides the fixed-point decimal type used for balances and amounts.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept by Money.
const Scale = 2

// MaxIntegerDigits bounds the integer part of a parsed amount. It matches the
// numeric(15,2) balance and amount columns.
const MaxIntegerDigits = 13

// maxFractionDigits bounds the precision read before rounding to Scale.
const maxFractionDigits = 32

var (
	// ErrInvalidMoney is returned when a value cannot be read as a decimal amount.
	ErrInvalidMoney = errors.New("invalid money value")
	// ErrOutOfRange is returned for numbers with more than MaxIntegerDigits
	// integer digits. It wraps ErrInvalidMoney.
	ErrOutOfRange = fmt.Errorf("%w: out of range", ErrInvalidMoney)
)

// Money is a decimal value rounded to two fractional digits.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{d: decimal.Zero}

// Max is the largest amount a numeric(15,2) column holds.
var Max = Money{d: decimal.New(1, MaxIntegerDigits).Sub(decimal.New(1, -Scale))}

// FromDecimal rounds d to Scale and wraps it.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(Scale)}
}

// FromCents builds an amount from an integer number of cents.
func FromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -Scale)}
}

// Parse reads a decimal string or a numeric value into Money.
func Parse(v any) (Money, error) {
	switch val := v.(type) {
	case nil:
		return Zero, fmt.Errorf("%w: missing value", ErrInvalidMoney)
	case Money:
		return val, nil
	case *Money:
		if val == nil {
			return Zero, fmt.Errorf("%w: missing value", ErrInvalidMoney)
		}
		return *val, nil
	case decimal.Decimal:
		return fromDecimal(val)
	case string:
		return parseString(val)
	case json.Number:
		return parseString(val.String())
	case int:
		return fromDecimal(decimal.NewFromInt(int64(val)))
	case int8:
		return fromDecimal(decimal.NewFromInt(int64(val)))
	case int16:
		return fromDecimal(decimal.NewFromInt(int64(val)))
	case int32:
		return fromDecimal(decimal.NewFromInt(int64(val)))
	case int64:
		return fromDecimal(decimal.NewFromInt(val))
	case uint:
		return fromDecimal(decimal.NewFromUint64(uint64(val)))
	case uint8:
		return fromDecimal(decimal.NewFromUint64(uint64(val)))
	case uint16:
		return fromDecimal(decimal.NewFromUint64(uint64(val)))
	case uint32:
		return fromDecimal(decimal.NewFromUint64(uint64(val)))
	case uint64:
		return fromDecimal(decimal.NewFromUint64(val))
	case float32:
		return parseFloat(float64(val))
	case float64:
		return parseFloat(val)
	default:
		return Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidMoney, v)
	}
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(v any) Money {
	m, err := Parse(v)
	if err != nil {
		panic(err)
	}
	return m
}

func parseString(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: empty string", ErrInvalidMoney)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	return fromDecimal(d)
}

func parseFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Zero, fmt.Errorf("%w: %v", ErrInvalidMoney, f)
	}
	return fromDecimal(decimal.NewFromFloat(f))
}

// fromDecimal checks the magnitude from the coefficient and exponent alone,
// since rounding an exponent like 1e999999999 allocates the full integer.
func fromDecimal(d decimal.Decimal) (Money, error) {
	exp := d.Exponent()
	if exp < -maxFractionDigits {
		return Zero, fmt.Errorf("%w: more than %d fractional digits", ErrInvalidMoney, maxFractionDigits)
	}
	if !d.IsZero() && d.NumDigits()+int(exp) > MaxIntegerDigits {
		return Zero, ErrOutOfRange
	}
	if d.IsZero() && exp > 0 {
		return Zero, nil
	}
	return FromDecimal(d), nil
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }

// Cmp returns -1, 0 or +1 as m is less than, equal to or greater than o.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) Equal(o Money) bool       { return m.d.Equal(o.d) }
func (m Money) LessThan(o Money) bool    { return m.d.LessThan(o.d) }
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }
func (m Money) IsZero() bool             { return m.d.IsZero() }
func (m Money) IsPositive() bool         { return m.d.IsPositive() }
func (m Money) IsNegative() bool         { return m.d.IsNegative() }

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// String renders the amount with exactly two fractional digits.
func (m Money) String() string { return m.d.StringFixed(Scale) }

// MarshalJSON encodes the amount as a string to avoid float rounding on the client.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = Zero
		return nil
	}
	raw = strings.Trim(raw, `"`)
	parsed, err := parseString(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("scan money: %w", err)
	}
	*m = FromDecimal(d)
	return nil
}
