// Package discount implements the quantity-tiered discount policy for order
// line items. Tiers form a contiguous, non-overlapping table over the allowed
// quantity range; quantities above the ceiling are rejected outright rather
// than capped.
package discount

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// MaxQuantity is the hard business ceiling on line item quantity.
const MaxQuantity = 20

// ErrQuantityOutOfRange is returned when a quantity falls outside the tier
// table: non-positive, or above MaxQuantity.
var ErrQuantityOutOfRange = errors.New("quantity out of discountable range")

// Tier is one contiguous quantity range mapped to a discount rate.
type Tier struct {
	Name string
	Min  int
	Max  int
	// Rate is the discount fraction applied to quantity * unit price.
	Rate decimal.Decimal
}

// Applies reports whether the tier covers the given quantity.
func (t Tier) Applies(quantity int) bool {
	return quantity >= t.Min && quantity <= t.Max
}

// Amount computes the discount for the given quantity and unit price:
// rate * quantity * unitPrice.
func (t Tier) Amount(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return subtotal.Mul(t.Rate)
}

// tiers is the ordered tier table. Ranges are contiguous and non-overlapping,
// so resolution is unambiguous for any quantity in [1, MaxQuantity].
var tiers = []Tier{
	{Name: "none", Min: 1, Max: 3, Rate: decimal.Zero},
	{Name: "standard", Min: 4, Max: 9, Rate: decimal.NewFromFloat(0.10)},
	{Name: "bulk", Min: 10, Max: MaxQuantity, Rate: decimal.NewFromFloat(0.20)},
}

// Tiers returns a copy of the tier table.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// Resolve returns the single tier covering the given quantity. It returns
// ErrQuantityOutOfRange for non-positive quantities (caught earlier at item
// construction, guarded here regardless) and for quantities above MaxQuantity.
func Resolve(quantity int) (Tier, error) {
	for _, t := range tiers {
		if t.Applies(quantity) {
			return t, nil
		}
	}
	return Tier{}, errors.Wrapf(ErrQuantityOutOfRange, "quantity %d, max allowed %d", quantity, MaxQuantity)
}
