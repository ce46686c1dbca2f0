// Package handler implements the HTTP API: JSON endpoints over the order
// service and the reference repositories, with API-key security on mutations.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/gabrielatds/ambev/internal/domain/branch"
	"github.com/gabrielatds/ambev/internal/domain/customer"
	"github.com/gabrielatds/ambev/internal/domain/order"
)

// maxBodyBytes bounds request body size for all JSON endpoints.
const maxBodyBytes = 1 << 20

// Handler exposes the order API over net/http, delegating business logic to
// the order service and the reference repositories.
type Handler struct {
	orders    *order.Service
	customers customer.Repository
	branches  branch.Repository
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders *order.Service,
	customers customer.Repository,
	branches branch.Repository,
) *Handler {
	return &Handler{
		orders:    orders,
		customers: customers,
		branches:  branches,
	}
}

// Register attaches all API routes to the mux. Mutating order routes go
// through the security middleware; reads are open.
func (h *Handler) Register(mux *http.ServeMux, secure func(http.Handler) http.Handler) {
	guard := func(fn http.HandlerFunc) http.Handler { return secure(fn) }

	mux.Handle("POST /api/orders", guard(h.CreateOrder))
	mux.Handle("PUT /api/orders/{id}", guard(h.UpdateOrder))
	mux.Handle("POST /api/orders/{id}/cancel", guard(h.CancelOrder))
	mux.Handle("DELETE /api/orders/{id}", guard(h.DeleteOrder))

	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("GET /api/customers", h.ListCustomers)
	mux.HandleFunc("GET /api/branches", h.ListBranches)
}

// errorResponse is the JSON error payload common to all endpoints.
type errorResponse struct {
	Code       int               `json:"code"`
	Message    string            `json:"message"`
	Violations []order.Violation `json:"violations,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, errorResponse{Code: status, Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
