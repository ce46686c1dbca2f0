// Package customer holds the customer reference entity resolved by the order
// workflows at order creation time.
package customer

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

const maxNameLength = 100

// Customer is a party that places orders.
type Customer struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
}

// Violation is a single named structural problem found during validation.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks structural invariants and returns every violation found.
func (c Customer) Validate() []Violation {
	var vs []Violation
	if c.ID == uuid.Nil {
		vs = append(vs, Violation{Field: "id", Message: "customer ID is required"})
	}
	if c.Name == "" {
		vs = append(vs, Violation{Field: "name", Message: "customer name is required"})
	} else if len(c.Name) > maxNameLength {
		vs = append(vs, Violation{Field: "name", Message: fmt.Sprintf("customer name cannot exceed %d characters", maxNameLength)})
	}
	return vs
}

// Repository defines persistence operations for customers.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Upsert(ctx context.Context, c Customer) error
}
