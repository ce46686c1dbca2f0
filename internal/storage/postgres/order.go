package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gabrielatds/ambev/internal/domain/money"
	"github.com/gabrielatds/ambev/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, number, order_date, customer_id, customer_name, branch_id, branch_name, cancelled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	insertOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, product_title, unit_price, currency, quantity, discount, total, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateOrderSQL = `UPDATE orders SET order_date = $2, customer_id = $3, customer_name = $4,
		branch_id = $5, branch_name = $6, cancelled = $7 WHERE id = $1`

	deleteOrderItemsSQL = `DELETE FROM order_items WHERE order_id = $1`

	getOrderByIDSQL = `SELECT id, number, order_date, customer_id, customer_name, branch_id, branch_name, cancelled
		FROM orders WHERE id = $1`

	getOrderByNumberSQL = `SELECT id, number, order_date, customer_id, customer_name, branch_id, branch_name, cancelled
		FROM orders WHERE number = $1`

	listOrdersSQL = `SELECT id, number, order_date, customer_id, customer_name, branch_id, branch_name, cancelled
		FROM orders ORDER BY number`

	getOrderItemsSQL = `SELECT id, product_id, product_title, unit_price, currency, quantity, discount, total
		FROM order_items WHERE order_id = $1 ORDER BY position`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. The order
// header and its item rows are written in one transaction so the aggregate is
// never half-persisted.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order and its line items transactionally.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertOrderSQL,
			o.ID(), o.Number(), o.Date(),
			o.CustomerID(), o.CustomerName(),
			o.BranchID(), o.BranchName(),
			o.Cancelled(),
		)
		if err != nil {
			return err
		}
		return insertItems(ctx, tx, o)
	})
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID(), err)
	}
	return nil
}

// Update rewrites the order header and replaces its item rows
// transactionally.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateOrderSQL,
			o.ID(), o.Date(),
			o.CustomerID(), o.CustomerName(),
			o.BranchID(), o.BranchName(),
			o.Cancelled(),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return order.ErrNotFound
		}
		if _, err := tx.Exec(ctx, deleteOrderItemsSQL, o.ID()); err != nil {
			return err
		}
		return insertItems(ctx, tx, o)
	})
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return order.ErrNotFound
		}
		return fmt.Errorf("updating order %q: %w", o.ID(), err)
	}
	return nil
}

// GetByID loads an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.getOne(ctx, getOrderByIDSQL, id)
}

// GetByNumber loads an order by its business number.
func (r *OrderRepository) GetByNumber(ctx context.Context, number int64) (*order.Order, error) {
	return r.getOne(ctx, getOrderByNumberSQL, number)
}

// List returns all orders with their items, ordered by number.
func (r *OrderRepository) List(ctx context.Context) ([]*order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	headers, err := pgx.CollectRows(rows, scanOrderHeader)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders := make([]*order.Order, 0, len(headers))
	for _, h := range headers {
		items, err := r.loadItems(ctx, h.id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, h.restore(items))
	}
	return orders, nil
}

// Delete removes an order; item rows go with it via the FK cascade. It
// returns order.ErrNotFound when no row matches.
func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) getOne(ctx context.Context, sql string, arg any) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}

	h, err := pgx.CollectExactlyOneRow(rows, scanOrderHeader)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order: %w", err)
	}

	items, err := r.loadItems(ctx, h.id)
	if err != nil {
		return nil, err
	}
	return h.restore(items), nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]*order.Item, error) {
	rows, err := r.pool.Query(ctx, getOrderItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("loading items for order %q: %w", orderID, err)
	}
	items, err := pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return nil, fmt.Errorf("loading items for order %q: %w", orderID, err)
	}
	return items, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	for pos, item := range o.Items() {
		_, err := tx.Exec(ctx, insertOrderItemSQL,
			item.ID(), o.ID(),
			item.ProductID(), item.ProductTitle(),
			item.UnitPrice().Amount(), item.UnitPrice().Currency(),
			item.Quantity(),
			item.Discount().Amount(), item.Total().Amount(),
			pos,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// orderHeader is the scanned orders row before items are attached.
type orderHeader struct {
	id           uuid.UUID
	number       int64
	date         time.Time
	customerID   uuid.UUID
	customerName string
	branchID     uuid.UUID
	branchName   string
	cancelled    bool
}

func (h orderHeader) restore(items []*order.Item) *order.Order {
	return order.Restore(h.id, h.number, h.date, h.customerID, h.customerName, h.branchID, h.branchName, h.cancelled, items)
}

func scanOrderHeader(row pgx.CollectableRow) (orderHeader, error) {
	var h orderHeader
	err := row.Scan(
		&h.id, &h.number, &h.date,
		&h.customerID, &h.customerName,
		&h.branchID, &h.branchName,
		&h.cancelled,
	)
	return h, err
}

func scanOrderItem(row pgx.CollectableRow) (*order.Item, error) {
	var (
		id, productID          uuid.UUID
		productTitle, currency string
		unitPrice              decimal.Decimal
		quantity               int32
		discountAmt, totalAmt  decimal.Decimal
	)
	err := row.Scan(&id, &productID, &productTitle, &unitPrice, &currency, &quantity, &discountAmt, &totalAmt)
	if err != nil {
		return nil, err
	}

	price, err := money.New(unitPrice, currency)
	if err != nil {
		return nil, fmt.Errorf("stored unit price for item %q: %w", id, err)
	}
	disc, err := money.New(discountAmt, currency)
	if err != nil {
		return nil, fmt.Errorf("stored discount for item %q: %w", id, err)
	}
	total, err := money.New(totalAmt, currency)
	if err != nil {
		return nil, fmt.Errorf("stored total for item %q: %w", id, err)
	}

	return order.RestoreItem(id, productID, productTitle, price, int(quantity), disc, total), nil
}
