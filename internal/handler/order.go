package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gabrielatds/ambev/internal/domain/branch"
	"github.com/gabrielatds/ambev/internal/domain/customer"
	"github.com/gabrielatds/ambev/internal/domain/discount"
	"github.com/gabrielatds/ambev/internal/domain/money"
	"github.com/gabrielatds/ambev/internal/domain/order"
)

// CreateOrder handles POST /api/orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.CreateOrder(r.Context(), order.CreateOrderRequest{
		Number:     req.Number,
		Date:       req.Date,
		CustomerID: req.CustomerID,
		BranchID:   req.BranchID,
		Items:      toLineRequests(req.Items),
	})
	if err != nil {
		h.respondOrderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, toOrderResponse(o))
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	o, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		h.respondOrderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toOrderResponse(o))
}

// ListOrders handles GET /api/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	os, err := h.orders.ListOrders(r.Context())
	if err != nil {
		h.respondOrderError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(os))
	for i, o := range os {
		resp[i] = toOrderResponse(o)
	}
	respondJSON(w, r, http.StatusOK, resp)
}

// UpdateOrder handles PUT /api/orders/{id}.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.UpdateOrder(r.Context(), order.UpdateOrderRequest{
		ID:    id,
		Items: toLineRequests(req.Items),
	})
	if err != nil {
		h.respondOrderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toOrderResponse(o))
}

// CancelOrder handles POST /api/orders/{id}/cancel.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	o, err := h.orders.CancelOrder(r.Context(), id)
	if err != nil {
		h.respondOrderError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toOrderResponse(o))
}

// DeleteOrder handles DELETE /api/orders/{id}.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(r.Context(), id); err != nil {
		h.respondOrderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCustomers handles GET /api/customers.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	cs, err := h.customers.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("list customers", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, r, http.StatusOK, toCustomerResponses(cs))
}

// ListBranches handles GET /api/branches.
func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	bs, err := h.branches.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("list branches", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, r, http.StatusOK, toBranchResponses(bs))
}

// respondOrderError maps domain errors to HTTP error responses. Structural
// validation problems are 400 with the full violation list; business-rule
// rejections are 422; unknown errors are logged and returned as 500.
func (h *Handler) respondOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *order.ValidationError
	if errors.As(err, &vErr) {
		respondJSON(w, r, http.StatusBadRequest, errorResponse{
			Code:       http.StatusBadRequest,
			Message:    "validation failed",
			Violations: vErr.Violations,
		})
		return
	}

	switch {
	case errors.Is(err, order.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "order not found")
	case errors.Is(err, customer.ErrNotFound):
		respondError(w, r, http.StatusUnprocessableEntity, "customer not found")
	case errors.Is(err, branch.ErrNotFound):
		respondError(w, r, http.StatusUnprocessableEntity, "branch not found")
	case errors.Is(err, discount.ErrQuantityOutOfRange),
		errors.Is(err, order.ErrDuplicateNumber),
		errors.Is(err, order.ErrCancelled),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrInsufficientQuantity),
		errors.Is(err, order.ErrItemNotFound),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrCurrencyMismatch):
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		zctx.From(r.Context()).Error("order request failed", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid order id")
		return uuid.Nil, false
	}
	return id, true
}
