package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		amount       decimal.Decimal
		currency     string
		wantAmount   string
		wantCurrency string
		wantErr      error
	}{
		{
			name:         "stores amount and uppercases currency",
			amount:       dec("10.50"),
			currency:     "usd",
			wantAmount:   "10.5",
			wantCurrency: "USD",
		},
		{
			name:         "rounds half away from zero",
			amount:       dec("10.005"),
			currency:     "USD",
			wantAmount:   "10.01",
			wantCurrency: "USD",
		},
		{
			name:         "rounds down below midpoint",
			amount:       dec("10.004"),
			currency:     "USD",
			wantAmount:   "10",
			wantCurrency: "USD",
		},
		{
			name:         "truncates extra precision",
			amount:       dec("3.14159"),
			currency:     "brl",
			wantAmount:   "3.14",
			wantCurrency: "BRL",
		},
		{
			name:     "negative amount rejected",
			amount:   dec("-0.01"),
			currency: "USD",
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "blank currency rejected",
			amount:   dec("1"),
			currency: "   ",
			wantErr:  ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.amount, tt.currency)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, m.Amount().String())
			assert.Equal(t, tt.wantCurrency, m.Currency())
		})
	}
}

func TestAdd(t *testing.T) {
	a := MustNew(dec("10.25"), "USD")
	b := MustNew(dec("5.75"), "USD")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "16", sum.Amount().String())
	assert.Equal(t, "USD", sum.Currency())

	// Commutativity.
	sum2, err := b.Add(a)
	require.NoError(t, err)
	assert.True(t, sum.Equal(sum2))

	// Operands unchanged.
	assert.Equal(t, "10.25", a.Amount().String())

	_, err = a.Add(MustNew(dec("5"), "BRL"))
	require.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestSubtract(t *testing.T) {
	a := MustNew(dec("10"), "USD")
	b := MustNew(dec("4.50"), "USD")

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "5.5", diff.Amount().String())

	// Round-trip: a.Add(b).Subtract(b) == a.
	sum, err := a.Add(b)
	require.NoError(t, err)
	back, err := sum.Subtract(b)
	require.NoError(t, err)
	assert.True(t, back.Equal(a))

	_, err = b.Subtract(a)
	require.ErrorIs(t, err, ErrNegativeResult)

	_, err = a.Subtract(MustNew(dec("1"), "EUR"))
	require.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMultiply(t *testing.T) {
	m := MustNew(dec("100"), "USD")

	tests := []struct {
		name       string
		multiplier int
		want       string
		wantErr    error
	}{
		{name: "by five", multiplier: 5, want: "500"},
		{name: "by zero", multiplier: 0, want: "0"},
		{name: "by one", multiplier: 1, want: "100"},
		{name: "negative rejected", multiplier: -1, wantErr: ErrInvalidMultiplier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Multiply(tt.multiplier)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Amount().String())
			assert.Equal(t, "USD", got.Currency())
		})
	}
}

func TestEqual(t *testing.T) {
	a := MustNew(dec("10.00"), "usd")
	b := MustNew(dec("10"), "USD")
	c := MustNew(dec("10"), "BRL")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(MustNew(dec("10.01"), "USD")))
}

func TestZeroAndString(t *testing.T) {
	z, err := Zero("usd")
	require.NoError(t, err)
	assert.True(t, z.IsZero())
	assert.Equal(t, "USD 0.00", z.String())

	m := MustNew(dec("1234.5"), "BRL")
	assert.Equal(t, "BRL 1234.50", m.String())
}
