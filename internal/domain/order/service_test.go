package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielatds/ambev/internal/domain/branch"
	"github.com/gabrielatds/ambev/internal/domain/customer"
	"github.com/gabrielatds/ambev/internal/domain/discount"
)

type mockOrderRepo struct {
	byID     map[uuid.UUID]*Order
	byNumber map[int64]*Order
	created  []*Order
	updated  []*Order
	deleted  []uuid.UUID
}

func newMockOrderRepo(orders ...*Order) *mockOrderRepo {
	r := &mockOrderRepo{
		byID:     make(map[uuid.UUID]*Order),
		byNumber: make(map[int64]*Order),
	}
	for _, o := range orders {
		r.byID[o.ID()] = o
		r.byNumber[o.Number()] = o
	}
	return r
}

func (r *mockOrderRepo) Create(_ context.Context, o *Order) error {
	r.created = append(r.created, o)
	r.byID[o.ID()] = o
	r.byNumber[o.Number()] = o
	return nil
}

func (r *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	if o, ok := r.byID[id]; ok {
		return o, nil
	}
	return nil, ErrNotFound
}

func (r *mockOrderRepo) GetByNumber(_ context.Context, number int64) (*Order, error) {
	if o, ok := r.byNumber[number]; ok {
		return o, nil
	}
	return nil, ErrNotFound
}

func (r *mockOrderRepo) List(_ context.Context) ([]*Order, error) {
	out := make([]*Order, 0, len(r.byID))
	for _, o := range r.byID {
		out = append(out, o)
	}
	return out, nil
}

func (r *mockOrderRepo) Update(_ context.Context, o *Order) error {
	r.updated = append(r.updated, o)
	r.byID[o.ID()] = o
	return nil
}

func (r *mockOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	r.deleted = append(r.deleted, id)
	delete(r.byID, id)
	return nil
}

type mockCustomerRepo struct {
	customers map[uuid.UUID]*customer.Customer
}

func (r *mockCustomerRepo) GetByID(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	if c, ok := r.customers[id]; ok {
		return c, nil
	}
	return nil, customer.ErrNotFound
}

func (r *mockCustomerRepo) List(_ context.Context) ([]customer.Customer, error) { return nil, nil }
func (r *mockCustomerRepo) Upsert(_ context.Context, _ customer.Customer) error { return nil }

type mockBranchRepo struct {
	branches map[uuid.UUID]*branch.Branch
}

func (r *mockBranchRepo) GetByID(_ context.Context, id uuid.UUID) (*branch.Branch, error) {
	if b, ok := r.branches[id]; ok {
		return b, nil
	}
	return nil, branch.ErrNotFound
}

func (r *mockBranchRepo) List(_ context.Context) ([]branch.Branch, error) { return nil, nil }
func (r *mockBranchRepo) Upsert(_ context.Context, _ branch.Branch) error { return nil }

type fixture struct {
	svc        *Service
	orders     *mockOrderRepo
	customerID uuid.UUID
	branchID   uuid.UUID
}

func newFixture(orders ...*Order) *fixture {
	customerID := uuid.New()
	branchID := uuid.New()

	repo := newMockOrderRepo(orders...)
	svc := NewService(
		repo,
		&mockCustomerRepo{customers: map[uuid.UUID]*customer.Customer{
			customerID: {ID: customerID, Name: "ACME Corp"},
		}},
		&mockBranchRepo{branches: map[uuid.UUID]*branch.Branch{
			branchID: {ID: branchID, Name: "Downtown"},
		}},
	)
	return &fixture{svc: svc, orders: repo, customerID: customerID, branchID: branchID}
}

func TestGetDiscount(t *testing.T) {
	svc := newFixture().svc
	unitPrice := decimal.NewFromInt(100)

	tests := []struct {
		name     string
		quantity int
		want     string
		wantErr  error
	}{
		{name: "two items no discount", quantity: 2, want: "0"},
		{name: "five items ten percent", quantity: 5, want: "50"},
		{name: "fifteen items twenty percent", quantity: 15, want: "300"},
		{name: "twenty one items rejected", quantity: 21, wantErr: discount.ErrQuantityOutOfRange},
		{name: "zero items rejected", quantity: 0, wantErr: discount.ErrQuantityOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetDiscount(tt.quantity, unitPrice)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestApplyDiscounts(t *testing.T) {
	svc := newFixture().svc

	tests := []struct {
		name         string
		quantity     int
		wantDiscount string
		wantTotal    string
	}{
		{name: "no discount tier", quantity: 2, wantDiscount: "USD 0.00", wantTotal: "USD 200.00"},
		{name: "ten percent tier", quantity: 5, wantDiscount: "USD 50.00", wantTotal: "USD 450.00"},
		{name: "twenty percent tier", quantity: 15, wantDiscount: "USD 300.00", wantTotal: "USD 1200.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewItem(uuid.New(), "Lager 350ml", usd(t, "100.00"), tt.quantity)
			require.NoError(t, err)

			require.NoError(t, svc.ApplyDiscounts([]*Item{item}))
			assert.Equal(t, tt.wantDiscount, item.Discount().String())
			assert.Equal(t, tt.wantTotal, item.Total().String())
		})
	}
}

func TestApplyDiscountsRejectsQuantityAboveCeiling(t *testing.T) {
	svc := newFixture().svc

	item, err := NewItem(uuid.New(), "Lager 350ml", usd(t, "100.00"), 20)
	require.NoError(t, err)
	require.NoError(t, item.IncreaseQuantity(1))

	err = svc.ApplyDiscounts([]*Item{item})
	require.ErrorIs(t, err, discount.ErrQuantityOutOfRange)
}

// The resolver caps discounts at 20% of the subtotal, so recomputing a total
// never goes negative for any quantity the resolver accepts.
func TestApplyDiscountsNeverNegativeTotal(t *testing.T) {
	svc := newFixture().svc

	for q := 1; q <= discount.MaxQuantity; q++ {
		item, err := NewItem(uuid.New(), "Lager 350ml", usd(t, "0.01"), q)
		require.NoError(t, err)
		require.NoError(t, svc.ApplyDiscounts([]*Item{item}))
		assert.False(t, item.Total().Amount().IsNegative(), "quantity %d", q)
	}
}

func TestCreateOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o, err := f.svc.CreateOrder(ctx, CreateOrderRequest{
		Number:     1001,
		Date:       time.Now().Add(-time.Minute),
		CustomerID: f.customerID,
		BranchID:   f.branchID,
		Items: []LineRequest{
			{ProductID: uuid.New(), ProductTitle: "Lager 350ml", UnitPrice: decimal.NewFromInt(100), Currency: "usd", Quantity: 5},
			{ProductID: uuid.New(), ProductTitle: "Stout 600ml", UnitPrice: decimal.NewFromInt(10), Currency: "usd", Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, f.orders.created, 1)

	assert.Equal(t, "ACME Corp", o.CustomerName())
	assert.Equal(t, "Downtown", o.BranchName())
	require.Len(t, o.Items(), 2)
	assert.Equal(t, "USD 50.00", o.Items()[0].Discount().String())
	assert.Equal(t, "USD 0.00", o.Items()[1].Discount().String())

	total, err := o.TotalAmount()
	require.NoError(t, err)
	assert.Equal(t, "USD 470.00", total.String())
}

func TestCreateOrderDuplicateNumber(t *testing.T) {
	existing := validOrder()
	f := newFixture(existing)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		Number:     existing.Number(),
		Date:       time.Now(),
		CustomerID: f.customerID,
		BranchID:   f.branchID,
		Items:      []LineRequest{{ProductID: uuid.New(), ProductTitle: "Lager", UnitPrice: decimal.NewFromInt(1), Currency: "USD", Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrDuplicateNumber)
	assert.Empty(t, f.orders.created)
}

func TestCreateOrderUnknownCustomer(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		Number:     1001,
		Date:       time.Now(),
		CustomerID: uuid.New(),
		BranchID:   f.branchID,
		Items:      []LineRequest{{ProductID: uuid.New(), ProductTitle: "Lager", UnitPrice: decimal.NewFromInt(1), Currency: "USD", Quantity: 1}},
	})
	require.ErrorIs(t, err, customer.ErrNotFound)
}

func TestCreateOrderCollectsViolations(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		Number:     0,
		Date:       time.Now().Add(time.Hour),
		CustomerID: f.customerID,
		BranchID:   f.branchID,
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	fields := make([]string, len(vErr.Violations))
	for i, v := range vErr.Violations {
		fields[i] = v.Field
	}
	assert.Contains(t, fields, "number")
	assert.Contains(t, fields, "date")
	assert.Contains(t, fields, "items")
}

func TestUpdateOrder(t *testing.T) {
	existing := validOrder()
	require.NoError(t, existing.AddItem(uuid.New(), "Lager 350ml", usd(t, "10.00"), 2))

	f := newFixture(existing)

	productID := uuid.New()
	o, err := f.svc.UpdateOrder(context.Background(), UpdateOrderRequest{
		ID: existing.ID(),
		Items: []LineRequest{
			{ProductID: productID, ProductTitle: "Stout 600ml", UnitPrice: decimal.NewFromInt(100), Currency: "USD", Quantity: 10},
		},
	})
	require.NoError(t, err)
	require.Len(t, f.orders.updated, 1)

	require.Len(t, o.Items(), 1)
	assert.Equal(t, productID, o.Items()[0].ProductID())
	assert.Equal(t, "USD 200.00", o.Items()[0].Discount().String())
	assert.Equal(t, "USD 800.00", o.Items()[0].Total().String())
}

func TestUpdateOrderCancelledIsTerminal(t *testing.T) {
	existing := validOrder()
	require.NoError(t, existing.AddItem(uuid.New(), "Lager 350ml", usd(t, "10.00"), 2))
	existing.Cancel()

	f := newFixture(existing)

	_, err := f.svc.UpdateOrder(context.Background(), UpdateOrderRequest{
		ID:    existing.ID(),
		Items: []LineRequest{{ProductID: uuid.New(), ProductTitle: "Stout", UnitPrice: decimal.NewFromInt(1), Currency: "USD", Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrCancelled)
	assert.Empty(t, f.orders.updated)
}

func TestCancelOrder(t *testing.T) {
	existing := validOrder()
	f := newFixture(existing)
	ctx := context.Background()

	o, err := f.svc.CancelOrder(ctx, existing.ID())
	require.NoError(t, err)
	assert.True(t, o.Cancelled())
	require.Len(t, f.orders.updated, 1)

	// Idempotent: second cancel does not persist again.
	o, err = f.svc.CancelOrder(ctx, existing.ID())
	require.NoError(t, err)
	assert.True(t, o.Cancelled())
	require.Len(t, f.orders.updated, 1)
}

func TestDeleteOrder(t *testing.T) {
	existing := validOrder()
	f := newFixture(existing)
	ctx := context.Background()

	require.NoError(t, f.svc.DeleteOrder(ctx, existing.ID()))
	require.ErrorIs(t, f.svc.DeleteOrder(ctx, existing.ID()), ErrNotFound)

	_, err := f.svc.GetOrder(ctx, existing.ID())
	require.ErrorIs(t, err, ErrNotFound)
}
