package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gabrielatds/ambev/internal/domain/branch"
	"github.com/gabrielatds/ambev/internal/domain/customer"
	"github.com/gabrielatds/ambev/internal/domain/discount"
	"github.com/gabrielatds/ambev/internal/domain/money"
)

// ValidationError aggregates structural violations from Validate. It is
// always a list so callers can surface every problem at once.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// LineRequest describes one requested order line.
type LineRequest struct {
	ProductID    uuid.UUID
	ProductTitle string
	UnitPrice    decimal.Decimal
	Currency     string
	Quantity     int
}

// CreateOrderRequest holds the input for creating an order.
type CreateOrderRequest struct {
	Number     int64
	Date       time.Time
	CustomerID uuid.UUID
	BranchID   uuid.UUID
	Items      []LineRequest
}

// UpdateOrderRequest holds the input for replacing an order's lines.
type UpdateOrderRequest struct {
	ID    uuid.UUID
	Items []LineRequest
}

// Service encapsulates the order business logic: discount resolution,
// aggregate construction, and the create/read/update/cancel/delete workflows.
type Service struct {
	orders    Repository
	customers customer.Repository
	branches  branch.Repository
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	orders Repository,
	customers customer.Repository,
	branches branch.Repository,
) *Service {
	return &Service{
		orders:    orders,
		customers: customers,
		branches:  branches,
	}
}

// GetDiscount resolves the tier for the given quantity and returns the
// discount amount for quantity x unitPrice. It surfaces
// discount.ErrQuantityOutOfRange unchanged.
func (s *Service) GetDiscount(quantity int, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	tier, err := discount.Resolve(quantity)
	if err != nil {
		return decimal.Zero, err
	}
	return tier.Amount(quantity, unitPrice), nil
}

// ApplyDiscounts resolves and applies the tier discount to every item, then
// recomputes each item's total. Items are processed in input order and
// independently; the first failure aborts and is surfaced unchanged.
func (s *Service) ApplyDiscounts(items []*Item) error {
	for _, item := range items {
		amount, err := s.GetDiscount(item.Quantity(), item.UnitPrice().Amount())
		if err != nil {
			return errors.Wrapf(err, "product %s", item.ProductID())
		}

		d, err := money.New(amount, item.UnitPrice().Currency())
		if err != nil {
			return errors.Wrapf(err, "discount for product %s", item.ProductID())
		}

		item.ApplyDiscount(d)
		if err := item.RecomputeTotal(); err != nil {
			return errors.Wrapf(err, "product %s", item.ProductID())
		}
	}
	return nil
}

// CreateOrder validates the request, rejects duplicate order numbers,
// resolves customer and branch names, builds the aggregate, applies
// discounts, and persists the order.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if _, err := s.orders.GetByNumber(ctx, req.Number); err == nil {
		return nil, errors.Wrapf(ErrDuplicateNumber, "number %d", req.Number)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "check order number")
	}

	cust, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve customer")
	}
	br, err := s.branches.GetByID(ctx, req.BranchID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve branch")
	}

	o := New(req.Number, req.Date, cust.ID, cust.Name, br.ID, br.Name)
	if err := s.addLines(o, req.Items); err != nil {
		return nil, err
	}

	if vs := o.Validate(); len(vs) > 0 {
		return nil, &ValidationError{Violations: vs}
	}

	if err := s.ApplyDiscounts(o.Items()); err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// GetOrder loads a single order by ID.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListOrders returns all orders.
func (s *Service) ListOrders(ctx context.Context) ([]*Order, error) {
	return s.orders.List(ctx)
}

// UpdateOrder replaces the order's lines, reapplies discounts, and persists.
// Cancellation is terminal: updating a cancelled order fails with
// ErrCancelled.
func (s *Service) UpdateOrder(ctx context.Context, req UpdateOrderRequest) (*Order, error) {
	stored, err := s.orders.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if stored.Cancelled() {
		return nil, errors.Wrapf(ErrCancelled, "order %s", req.ID)
	}

	o := Restore(
		stored.ID(), stored.Number(), stored.Date(),
		stored.CustomerID(), stored.CustomerName(),
		stored.BranchID(), stored.BranchName(),
		false, nil,
	)
	if err := s.addLines(o, req.Items); err != nil {
		return nil, err
	}

	if vs := o.Validate(); len(vs) > 0 {
		return nil, &ValidationError{Violations: vs}
	}

	if err := s.ApplyDiscounts(o.Items()); err != nil {
		return nil, err
	}

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}
	return o, nil
}

// CancelOrder marks the order cancelled and persists the transition.
// Cancelling an already cancelled order is a no-op.
func (s *Service) CancelOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Cancelled() {
		return o, nil
	}

	o.Cancel()
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "cancel order")
	}
	return o, nil
}

// DeleteOrder removes the order entirely.
func (s *Service) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.orders.Delete(ctx, id)
}

func (s *Service) addLines(o *Order, lines []LineRequest) error {
	for _, line := range lines {
		price, err := money.New(line.UnitPrice, line.Currency)
		if err != nil {
			return errors.Wrapf(err, "product %s", line.ProductID)
		}
		if err := o.AddItem(line.ProductID, line.ProductTitle, price, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}
