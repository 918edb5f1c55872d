package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every amount carries.
const Scale = 2

// Currency is the single currency all auctions are priced in.
const Currency = "EUR"

var (
	ErrNegativeResult = errors.New("money arithmetic produced a negative amount")
	ErrInvalidAmount  = errors.New("invalid money amount")
)

// Money is a non-negative, exact amount with a fixed scale of two decimal places.
// The zero value is 0.00.
type Money struct {
	amount decimal.Decimal
}

// Zero is 0.00.
var Zero = Money{}

// Max is the largest amount whose minor units fit in an int64.
var Max = Money{amount: decimal.New(math.MaxInt64, -Scale)}

// New validates d and returns it as Money. Values with more than two
// decimal places are rejected rather than rounded, and so are values
// above Max.
func New(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, d.String())
	}
	if !d.Equal(d.Truncate(Scale)) {
		return Money{}, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, d.String(), Scale)
	}
	if !d.Shift(Scale).BigInt().IsInt64() {
		return Money{}, fmt.Errorf("%w: %s exceeds %s", ErrInvalidAmount, d.String(), Max)
	}
	return Money{amount: d.Truncate(Scale)}, nil
}

func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return New(d)
}

// MustParse is Parse for constants and tests; it panics on invalid input.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromMinorUnits converts an integer count of cents.
func FromMinorUnits(units int64) (Money, error) {
	if units < 0 {
		return Money{}, fmt.Errorf("%w: %d minor units is negative", ErrInvalidAmount, units)
	}
	return Money{amount: decimal.New(units, -Scale)}, nil
}

// MinorUnits returns the amount as an exact count of cents.
func (m Money) MinorUnits() int64 {
	return m.amount.Shift(Scale).IntPart()
}

func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Add returns m + other, failing with ErrInvalidAmount if the sum exceeds Max.
func (m Money) Add(other Money) (Money, error) {
	sum, err := New(m.amount.Add(other.amount))
	if err != nil {
		return Money{}, fmt.Errorf("%s + %s: %w", m, other, err)
	}
	return sum, nil
}

// Sub returns m - other, failing with ErrNegativeResult if other > m.
func (m Money) Sub(other Money) (Money, error) {
	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Money{}, fmt.Errorf("%s - %s: %w", m, other, ErrNegativeResult)
	}
	return Money{amount: result}, nil
}

// Mul multiplies by a whole factor.
func (m Money) Mul(factor int64) (Money, error) {
	if factor < 0 {
		return Money{}, fmt.Errorf("%s * %d: %w", m, factor, ErrNegativeResult)
	}
	product, err := New(m.amount.Mul(decimal.NewFromInt(factor)))
	if err != nil {
		return Money{}, fmt.Errorf("%s * %d: %w", m, factor, err)
	}
	return product, nil
}

func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.amount.GreaterThanOrEqual(other.amount)
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// String renders the amount with exactly two decimal places, e.g. "120.00".
func (m Money) String() string {
	return m.amount.StringFixed(Scale)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both "12.50" and 12.50.
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, string(data))
		}
		s = n.String()
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalYAML and UnmarshalYAML let seed files carry amounts as plain strings.
func (m Money) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

func (m *Money) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
