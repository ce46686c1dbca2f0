package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gabrielatds/ambev/internal/domain/branch"
	"github.com/gabrielatds/ambev/internal/domain/customer"
	"github.com/gabrielatds/ambev/internal/domain/order"
)

// orderLineRequest is one requested line in a create or update payload.
type orderLineRequest struct {
	ProductID    uuid.UUID       `json:"productId"`
	ProductTitle string          `json:"productTitle"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Currency     string          `json:"currency"`
	Quantity     int             `json:"quantity"`
}

// createOrderRequest is the POST /api/orders payload.
type createOrderRequest struct {
	Number     int64              `json:"number"`
	Date       time.Time          `json:"date"`
	CustomerID uuid.UUID          `json:"customerId"`
	BranchID   uuid.UUID          `json:"branchId"`
	Items      []orderLineRequest `json:"items"`
}

// updateOrderRequest is the PUT /api/orders/{id} payload.
type updateOrderRequest struct {
	Items []orderLineRequest `json:"items"`
}

// orderItemResponse is one line in an order response.
type orderItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"productId"`
	ProductTitle string          `json:"productTitle"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Currency     string          `json:"currency"`
	Quantity     int             `json:"quantity"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
}

// orderResponse is the full order representation returned by the API.
type orderResponse struct {
	ID           uuid.UUID           `json:"id"`
	Number       int64               `json:"number"`
	Date         time.Time           `json:"date"`
	CustomerID   uuid.UUID           `json:"customerId"`
	CustomerName string              `json:"customerName"`
	BranchID     uuid.UUID           `json:"branchId"`
	BranchName   string              `json:"branchName"`
	Cancelled    bool                `json:"cancelled"`
	Items        []orderItemResponse `json:"items"`
	TotalAmount  decimal.Decimal     `json:"totalAmount"`
	Currency     string              `json:"currency"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items()))
	for i, item := range o.Items() {
		items[i] = orderItemResponse{
			ID:           item.ID(),
			ProductID:    item.ProductID(),
			ProductTitle: item.ProductTitle(),
			UnitPrice:    item.UnitPrice().Amount(),
			Currency:     item.UnitPrice().Currency(),
			Quantity:     item.Quantity(),
			Discount:     item.Discount().Amount(),
			Total:        item.Total().Amount(),
		}
	}

	resp := orderResponse{
		ID:           o.ID(),
		Number:       o.Number(),
		Date:         o.Date(),
		CustomerID:   o.CustomerID(),
		CustomerName: o.CustomerName(),
		BranchID:     o.BranchID(),
		BranchName:   o.BranchName(),
		Cancelled:    o.Cancelled(),
		Items:        items,
		TotalAmount:  decimal.Zero,
	}
	if total, err := o.TotalAmount(); err == nil {
		resp.TotalAmount = total.Amount()
		resp.Currency = total.Currency()
	}
	return resp
}

func toLineRequests(lines []orderLineRequest) []order.LineRequest {
	out := make([]order.LineRequest, len(lines))
	for i, l := range lines {
		out[i] = order.LineRequest{
			ProductID:    l.ProductID,
			ProductTitle: l.ProductTitle,
			UnitPrice:    l.UnitPrice,
			Currency:     l.Currency,
			Quantity:     l.Quantity,
		}
	}
	return out
}

// customerResponse is the GET /api/customers element.
type customerResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
	Phone string    `json:"phone,omitempty"`
}

func toCustomerResponses(cs []customer.Customer) []customerResponse {
	out := make([]customerResponse, len(cs))
	for i, c := range cs {
		out[i] = customerResponse{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
	}
	return out
}

// branchResponse is the GET /api/branches element.
type branchResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address,omitempty"`
	City    string    `json:"city,omitempty"`
}

func toBranchResponses(bs []branch.Branch) []branchResponse {
	out := make([]branchResponse, len(bs))
	for i, b := range bs {
		out[i] = branchResponse{ID: b.ID, Name: b.Name, Address: b.Address, City: b.City}
	}
	return out
}
