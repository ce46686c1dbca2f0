// Package branch holds the branch reference entity: the store location an
// order is placed against.
package branch

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested branch does not exist.
var ErrNotFound = errors.New("branch not found")

const maxNameLength = 100

// Branch is a store location that fulfils orders.
type Branch struct {
	ID      uuid.UUID
	Name    string
	Address string
	City    string
}

// Violation is a single named structural problem found during validation.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks structural invariants and returns every violation found.
func (b Branch) Validate() []Violation {
	var vs []Violation
	if b.ID == uuid.Nil {
		vs = append(vs, Violation{Field: "id", Message: "branch ID is required"})
	}
	if b.Name == "" {
		vs = append(vs, Violation{Field: "name", Message: "branch name is required"})
	} else if len(b.Name) > maxNameLength {
		vs = append(vs, Violation{Field: "name", Message: fmt.Sprintf("branch name cannot exceed %d characters", maxNameLength)})
	}
	return vs
}

// Repository defines persistence operations for branches.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Branch, error)
	List(ctx context.Context) ([]Branch, error)
	Upsert(ctx context.Context, b Branch) error
}
