// Package order holds the sales order aggregate: the Order root, its line
// items, and the domain service orchestrating discounts and persistence.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gabrielatds/ambev/internal/domain/money"
)

// Sentinel errors for aggregate mutation and the order workflows.
var (
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrInsufficientQuantity = errors.New("cannot decrease more than the existing quantity")
	ErrItemNotFound         = errors.New("item not found in the order")
	ErrNotFound             = errors.New("order not found")
	ErrDuplicateNumber      = errors.New("order number already exists")
	ErrCancelled            = errors.New("order is cancelled")
)

// Order is the aggregate root: header fields plus an ordered, exclusively
// owned list of line items. An order holds at most one line per product;
// cancellation is a one-way transition after which item mutation is rejected
// by the service workflows.
type Order struct {
	id           uuid.UUID
	number       int64
	date         time.Time
	customerID   uuid.UUID
	customerName string
	branchID     uuid.UUID
	branchName   string
	cancelled    bool
	items        []*Item
}

// New creates an order with header fields only; items start empty and the
// order starts open. Structural problems surface through Validate rather than
// construction errors, so callers can report everything at once.
func New(number int64, date time.Time, customerID uuid.UUID, customerName string, branchID uuid.UUID, branchName string) *Order {
	return &Order{
		id:           uuid.New(),
		number:       number,
		date:         date,
		customerID:   customerID,
		customerName: customerName,
		branchID:     branchID,
		branchName:   branchName,
	}
}

// Restore rehydrates an order from stored state without invariant checks.
// Storage-layer use only.
func Restore(id uuid.UUID, number int64, date time.Time, customerID uuid.UUID, customerName string, branchID uuid.UUID, branchName string, cancelled bool, items []*Item) *Order {
	return &Order{
		id:           id,
		number:       number,
		date:         date,
		customerID:   customerID,
		customerName: customerName,
		branchID:     branchID,
		branchName:   branchName,
		cancelled:    cancelled,
		items:        items,
	}
}

// ID returns the order identifier.
func (o *Order) ID() uuid.UUID { return o.id }

// Number returns the business order number, unique across orders.
func (o *Order) Number() int64 { return o.number }

// Date returns the order date.
func (o *Order) Date() time.Time { return o.date }

// CustomerID returns the customer identifier.
func (o *Order) CustomerID() uuid.UUID { return o.customerID }

// CustomerName returns the customer name captured at order time.
func (o *Order) CustomerName() string { return o.customerName }

// BranchID returns the branch identifier.
func (o *Order) BranchID() uuid.UUID { return o.branchID }

// BranchName returns the branch name captured at order time.
func (o *Order) BranchName() string { return o.branchName }

// Cancelled reports whether the order has been cancelled.
func (o *Order) Cancelled() bool { return o.cancelled }

// Items returns the line items in insertion order. The slice is shared with
// the aggregate; callers must not modify it.
func (o *Order) Items() []*Item { return o.items }

// AddItem appends a line for the product, or merges the quantity into an
// existing line so the order never holds two lines for one product. It
// returns ErrInvalidQuantity when quantity is not positive.
func (o *Order) AddItem(productID uuid.UUID, productTitle string, unitPrice money.Money, quantity int) error {
	if quantity <= 0 {
		return errors.Wrapf(ErrInvalidQuantity, "quantity %d", quantity)
	}

	if existing := o.findItem(productID); existing != nil {
		return existing.IncreaseQuantity(quantity)
	}

	item, err := NewItem(productID, productTitle, unitPrice, quantity)
	if err != nil {
		return err
	}
	o.items = append(o.items, item)
	return nil
}

// RemoveItem decreases the product's line by quantity, dropping the line
// entirely when it reaches zero. It returns ErrInvalidQuantity when quantity
// is not positive and ErrItemNotFound when no line exists for the product.
func (o *Order) RemoveItem(productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return errors.Wrapf(ErrInvalidQuantity, "quantity %d", quantity)
	}

	existing := o.findItem(productID)
	if existing == nil {
		return errors.Wrapf(ErrItemNotFound, "product %s", productID)
	}

	if err := existing.DecreaseQuantity(quantity); err != nil {
		return err
	}

	if existing.Quantity() == 0 {
		kept := o.items[:0]
		for _, item := range o.items {
			if item.ProductID() != productID {
				kept = append(kept, item)
			}
		}
		o.items = kept
	}
	return nil
}

// Cancel marks the order cancelled. The transition is one-way and idempotent;
// there is no reversal operation.
func (o *Order) Cancel() {
	o.cancelled = true
}

// TotalAmount sums every line's total. Lines that have not been through the
// discount engine contribute their undiscounted subtotal. It returns
// money.ErrCurrencyMismatch when lines carry mixed currencies, an aggregate
// invariant the caller must preserve.
func (o *Order) TotalAmount() (money.Money, error) {
	if len(o.items) == 0 {
		return money.Money{}, errors.Wrap(ErrItemNotFound, "order has no items")
	}

	total, err := money.Zero(o.items[0].UnitPrice().Currency())
	if err != nil {
		return money.Money{}, err
	}
	for _, item := range o.items {
		total, err = total.Add(item.Total())
		if err != nil {
			return money.Money{}, errors.Wrapf(err, "item %s", item.ProductID())
		}
	}
	return total, nil
}

func (o *Order) findItem(productID uuid.UUID) *Item {
	for _, item := range o.items {
		if item.ProductID() == productID {
			return item
		}
	}
	return nil
}

// Repository defines persistence operations for orders. Order number
// uniqueness is enforced here, not by the aggregate.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByNumber(ctx context.Context, number int64) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}
