// Package money provides an immutable monetary value type with currency
// discipline. Amounts are stored rounded to two decimal places (round half
// away from zero) and every arithmetic operation returns a new value.
package money

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for money construction and arithmetic.
var (
	ErrInvalidAmount     = errors.New("amount must not be negative and currency must not be blank")
	ErrCurrencyMismatch  = errors.New("cannot operate on money with different currencies")
	ErrNegativeResult    = errors.New("resulting amount cannot be negative")
	ErrInvalidMultiplier = errors.New("multiplier cannot be negative")
)

// Money is a non-negative monetary amount tagged with a currency code.
// The zero value is not a valid Money; use New or Zero.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New creates a Money from the given amount and currency code. The amount is
// rounded to two decimal places and the currency is uppercased. It returns
// ErrInvalidAmount when the amount is negative or the currency is blank.
func New(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errors.Wrapf(ErrInvalidAmount, "amount %s", amount)
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return Money{}, errors.Wrap(ErrInvalidAmount, "blank currency")
	}

	return Money{
		amount:   amount.Round(2),
		currency: currency,
	}, nil
}

// Zero returns the zero amount in the given currency.
func Zero(currency string) (Money, error) {
	return New(decimal.Zero, currency)
}

// MustNew is New that panics on error. Intended for tests and constants.
func MustNew(amount decimal.Decimal, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Amount returns the rounded decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the uppercased currency code.
func (m Money) Currency() string {
	return m.currency
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Add returns the sum of m and other. It returns ErrCurrencyMismatch when the
// currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return New(m.amount.Add(other.amount), m.currency)
}

// Subtract returns the difference of m and other. It returns
// ErrCurrencyMismatch when the currencies differ and ErrNegativeResult when
// other exceeds m.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	if m.amount.LessThan(other.amount) {
		return Money{}, errors.Wrapf(ErrNegativeResult, "%s - %s", m, other)
	}
	return New(m.amount.Sub(other.amount), m.currency)
}

// Multiply returns m scaled by the non-negative integer multiplier. It returns
// ErrInvalidMultiplier when the multiplier is negative.
func (m Money) Multiply(multiplier int) (Money, error) {
	if multiplier < 0 {
		return Money{}, errors.Wrapf(ErrInvalidMultiplier, "multiplier %d", multiplier)
	}
	return New(m.amount.Mul(decimal.NewFromInt(int64(multiplier))), m.currency)
}

// Equal reports structural equality: same amount and same currency.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String formats the money as "CUR 12.34".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.currency, m.amount.StringFixed(2))
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.currency != other.currency {
		return errors.Wrapf(ErrCurrencyMismatch, "%s vs %s", m.currency, other.currency)
	}
	return nil
}
