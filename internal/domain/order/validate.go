package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxNameLength bounds customer, branch, and product title lengths.
const MaxNameLength = 100

// Violation is a single named structural problem found during validation.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks the aggregate's structural invariants and returns every
// violation found, so callers can surface all problems at once. It is the
// creation-time check: a cancelled order is a violation here because orders
// must start open. It never panics on malformed state; an order rehydrated
// with bad data reports violations instead of failing structurally.
func (o *Order) Validate() []Violation {
	var vs []Violation

	if o.number <= 0 {
		vs = append(vs, Violation{Field: "number", Message: "order number must be greater than 0"})
	}
	if o.date.IsZero() {
		vs = append(vs, Violation{Field: "date", Message: "order date is required"})
	} else if o.date.After(time.Now()) {
		vs = append(vs, Violation{Field: "date", Message: "order date cannot be in the future"})
	}
	if o.customerID == uuid.Nil {
		vs = append(vs, Violation{Field: "customerId", Message: "customer ID is required"})
	}
	vs = append(vs, validateName("customerName", "customer name", o.customerName)...)
	if o.branchID == uuid.Nil {
		vs = append(vs, Violation{Field: "branchId", Message: "branch ID is required"})
	}
	vs = append(vs, validateName("branchName", "branch name", o.branchName)...)

	if len(o.items) == 0 {
		vs = append(vs, Violation{Field: "items", Message: "at least one order item is required"})
	}
	for idx, item := range o.items {
		if item.Quantity() <= 0 {
			vs = append(vs, Violation{
				Field:   fmt.Sprintf("items[%d].quantity", idx),
				Message: "each order item must have a quantity greater than 0",
			})
		}
		if len(item.ProductTitle()) > MaxNameLength {
			vs = append(vs, Violation{
				Field:   fmt.Sprintf("items[%d].productTitle", idx),
				Message: fmt.Sprintf("product title cannot exceed %d characters", MaxNameLength),
			})
		}
	}

	if o.cancelled {
		vs = append(vs, Violation{Field: "cancelled", Message: "order cannot be cancelled at creation"})
	}

	return vs
}

func validateName(field, label, value string) []Violation {
	switch {
	case value == "":
		return []Violation{{Field: field, Message: label + " is required"}}
	case len(value) > MaxNameLength:
		return []Violation{{Field: field, Message: fmt.Sprintf("%s cannot exceed %d characters", label, MaxNameLength)}}
	}
	return nil
}
