//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

// orderNumbers hands out unique order numbers across the whole run, seeded
// from the clock so reruns against the same database do not collide.
var orderNumbers = func() *atomic.Int64 {
	v := new(atomic.Int64)
	v.Store(time.Now().Unix())
	return v
}()

func nextOrderNumber() int64 {
	return orderNumbers.Add(1)
}

func newOrderPayload(quantity int) createOrderRequest {
	return createOrderRequest{
		Number:     nextOrderNumber(),
		Date:       time.Now().Add(-time.Minute).UTC(),
		CustomerID: customerBarDoZeca,
		BranchID:   branchCDSaoPaulo,
		Items: []orderLineRequest{
			{
				ProductID:    "0d4f1b3a-1111-4c6e-9f2a-000000000001",
				ProductTitle: "Pilsen 350ml (pack of 12)",
				UnitPrice:    "100",
				Currency:     "USD",
				Quantity:     quantity,
			},
		},
	}
}

func createOrder(t *testing.T, quantity int) orderResponse {
	t.Helper()

	resp := doJSON(t, http.MethodPost, "/api/orders", newOrderPayload(quantity), testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d", resp.StatusCode)
	}
	return decodeJSON[orderResponse](t, resp)
}

func TestCreateOrder_NoAuth(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/orders", newOrderPayload(1), "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_InvalidKey(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/orders", newOrderPayload(1), "wrong-key")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	payload := newOrderPayload(1)
	payload.Number = 0
	payload.Items = nil

	resp := doJSON(t, http.MethodPost, "/api/orders", payload, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if len(body.Violations) < 2 {
		t.Fatalf("expected violations for number and items, got %+v", body.Violations)
	}
}

func TestCreateOrder_UnknownCustomer(t *testing.T) {
	payload := newOrderPayload(1)
	payload.CustomerID = "00000000-0000-0000-0000-00000000dead"

	resp := doJSON(t, http.MethodPost, "/api/orders", payload, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_TierDiscount(t *testing.T) {
	order := createOrder(t, 5)

	if len(order.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(order.Items))
	}
	if got := order.Items[0].Discount; got != "50" {
		t.Errorf("discount: got %q, want \"50\"", got)
	}
	if got := order.Items[0].Total; got != "450" {
		t.Errorf("total: got %q, want \"450\"", got)
	}
	if got := order.TotalAmount; got != "450" {
		t.Errorf("order total: got %q, want \"450\"", got)
	}
	if order.CustomerName != "Bar do Zeca" {
		t.Errorf("customer name: got %q", order.CustomerName)
	}
}

func TestCreateOrder_NoDiscountBelowFourUnits(t *testing.T) {
	order := createOrder(t, 3)

	if got := order.Items[0].Discount; got != "0" {
		t.Errorf("discount: got %q, want \"0\"", got)
	}
	if got := order.TotalAmount; got != "300" {
		t.Errorf("order total: got %q, want \"300\"", got)
	}
}

func TestCreateOrder_QuantityAboveCeiling(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/orders", newOrderPayload(21), testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_DuplicateNumber(t *testing.T) {
	payload := newOrderPayload(2)

	resp := doJSON(t, http.MethodPost, "/api/orders", payload, testAPIKey)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, "/api/orders", payload, testAPIKey)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate create: expected 422, got %d", resp.StatusCode)
	}
}

func TestGetOrder_Unknown(t *testing.T) {
	resp := doGet(t, "/api/orders/11111111-2222-3333-4444-555555555555")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestOrderLifecycle(t *testing.T) {
	created := createOrder(t, 2)

	// Read it back.
	resp := doGet(t, "/api/orders/"+created.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}
	got := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if got.Number != created.Number {
		t.Fatalf("number: got %d, want %d", got.Number, created.Number)
	}

	// Replace its items with a bulk-tier quantity.
	update := updateOrderRequest{
		Items: []orderLineRequest{
			{
				ProductID:    "0d4f1b3a-1111-4c6e-9f2a-000000000002",
				ProductTitle: "IPA 600ml",
				UnitPrice:    "100",
				Currency:     "USD",
				Quantity:     10,
			},
		},
	}
	resp = doJSON(t, http.MethodPut, "/api/orders/"+created.ID, update, testAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	updated := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if got := updated.Items[0].Discount; got != "200" {
		t.Errorf("updated discount: got %q, want \"200\"", got)
	}
	if got := updated.TotalAmount; got != "800" {
		t.Errorf("updated total: got %q, want \"800\"", got)
	}

	// Cancel, then verify mutation is refused.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("/api/orders/%s/cancel", created.ID), nil, testAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d", resp.StatusCode)
	}
	cancelled := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if !cancelled.Cancelled {
		t.Fatal("order should be cancelled")
	}

	resp = doJSON(t, http.MethodPut, "/api/orders/"+created.ID, update, testAPIKey)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("update after cancel: expected 422, got %d", resp.StatusCode)
	}

	// Delete and confirm it is gone.
	resp = doJSON(t, http.MethodDelete, "/api/orders/"+created.ID, nil, testAPIKey)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}

	resp = doGet(t, "/api/orders/" + created.ID)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestListOrders(t *testing.T) {
	created := createOrder(t, 1)

	resp := doGet(t, "/api/orders")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	orders := decodeJSON[[]orderResponse](t, resp)
	for _, o := range orders {
		if o.ID == created.ID {
			return
		}
	}
	t.Fatalf("created order %s not in list of %d orders", created.ID, len(orders))
}
