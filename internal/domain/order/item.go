package order

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gabrielatds/ambev/internal/domain/money"
)

// Item is a single order line: a product reference with quantity, unit price,
// and the discount produced by the discount engine. Items are owned
// exclusively by one Order; all mutation goes through named operations so the
// aggregate invariants hold at every step.
type Item struct {
	id           uuid.UUID
	productID    uuid.UUID
	productTitle string
	unitPrice    money.Money
	quantity     int
	discount     money.Money
	total        money.Money
}

// NewItem creates a line item for the given product. The discount starts at
// zero in the unit price's currency and the total starts at the undiscounted
// subtotal. It returns ErrInvalidQuantity when quantity is not positive.
func NewItem(productID uuid.UUID, productTitle string, unitPrice money.Money, quantity int) (*Item, error) {
	if quantity <= 0 {
		return nil, errors.Wrapf(ErrInvalidQuantity, "quantity %d", quantity)
	}

	zero, err := money.Zero(unitPrice.Currency())
	if err != nil {
		return nil, errors.Wrap(err, "zero discount")
	}
	subtotal, err := unitPrice.Multiply(quantity)
	if err != nil {
		return nil, errors.Wrap(err, "subtotal")
	}

	return &Item{
		id:           uuid.New(),
		productID:    productID,
		productTitle: productTitle,
		unitPrice:    unitPrice,
		quantity:     quantity,
		discount:     zero,
		total:        subtotal,
	}, nil
}

// RestoreItem rehydrates a line item from stored state without invariant
// checks. Storage-layer use only; Validate reports any violations the stored
// state carries.
func RestoreItem(id, productID uuid.UUID, productTitle string, unitPrice money.Money, quantity int, discount, total money.Money) *Item {
	return &Item{
		id:           id,
		productID:    productID,
		productTitle: productTitle,
		unitPrice:    unitPrice,
		quantity:     quantity,
		discount:     discount,
		total:        total,
	}
}

// ID returns the line item identifier.
func (i *Item) ID() uuid.UUID { return i.id }

// ProductID returns the referenced product identifier.
func (i *Item) ProductID() uuid.UUID { return i.productID }

// ProductTitle returns the product title captured at order time.
func (i *Item) ProductTitle() string { return i.productTitle }

// UnitPrice returns the per-unit price.
func (i *Item) UnitPrice() money.Money { return i.unitPrice }

// Quantity returns the current quantity.
func (i *Item) Quantity() int { return i.quantity }

// Discount returns the discount applied to this line.
func (i *Item) Discount() money.Money { return i.discount }

// Total returns the line total as of the last recompute.
func (i *Item) Total() money.Money { return i.total }

// IncreaseQuantity raises the quantity by amount. It returns
// ErrInvalidQuantity when amount is not positive.
func (i *Item) IncreaseQuantity(amount int) error {
	if amount <= 0 {
		return errors.Wrapf(ErrInvalidQuantity, "increase by %d", amount)
	}
	i.quantity += amount
	return nil
}

// DecreaseQuantity lowers the quantity by amount. It returns
// ErrInvalidQuantity when amount is not positive and ErrInsufficientQuantity
// when amount exceeds the current quantity. The owning Order removes the line
// when the quantity reaches zero.
func (i *Item) DecreaseQuantity(amount int) error {
	if amount <= 0 {
		return errors.Wrapf(ErrInvalidQuantity, "decrease by %d", amount)
	}
	if amount > i.quantity {
		return errors.Wrapf(ErrInsufficientQuantity, "decrease by %d, have %d", amount, i.quantity)
	}
	i.quantity -= amount
	return nil
}

// ApplyDiscount replaces the line's discount. It does not recompute the
// total; callers pair it with RecomputeTotal so the two steps stay
// independently testable and explicit about ordering.
func (i *Item) ApplyDiscount(d money.Money) {
	i.discount = d
}

// RecomputeTotal sets the line total to unit price x quantity - discount.
// A money.ErrNegativeResult here means the discount engine produced a
// discount exceeding the subtotal, which is a bug upstream, not user input.
func (i *Item) RecomputeTotal() error {
	subtotal, err := i.Subtotal()
	if err != nil {
		return err
	}
	total, err := subtotal.Subtract(i.discount)
	if err != nil {
		return errors.Wrap(err, "recompute total")
	}
	i.total = total
	return nil
}

// Subtotal returns unit price x quantity, before any discount.
func (i *Item) Subtotal() (money.Money, error) {
	return i.unitPrice.Multiply(i.quantity)
}
