package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcb-shop/config"
	"pcb-shop/libs"
	"pcb-shop/models"
	"pcb-shop/repositories"
	"pcb-shop/routes"
	"pcb-shop/services"
	"pcb-shop/utils"
)

type stubBackend struct {
	feeErr    error
	orderErr  error
	addresses []models.ShippingAddress
}

func (b *stubBackend) CalculateFee(ctx context.Context, req models.ShippingFeeRequest) (*models.ShippingFeeResponse, error) {
	if b.feeErr != nil {
		return nil, b.feeErr
	}
	fee := 30000.0
	if req.DeliverOption == models.DeliverOptionFast {
		fee = 55000
	}
	return &models.ShippingFeeResponse{Success: true, Fee: &models.CarrierFeeEnvelope{Fee: &models.CarrierFee{Fee: &fee}}}, nil
}

func (b *stubBackend) ListShippingAddresses(context.Context, string) ([]models.ShippingAddress, error) {
	return b.addresses, nil
}

func (b *stubBackend) SetDefaultShippingAddress(context.Context, string, string) error { return nil }

func (b *stubBackend) ListPaymentMethods(context.Context) ([]models.PaymentMethod, error) {
	return []models.PaymentMethod{{ID: "1", Code: "cod", Name: "Cash on delivery"}, {ID: "2", Code: "vnpay", Name: "VNPay"}}, nil
}

func (b *stubBackend) CreateOrder(_ context.Context, order models.OrderRequest) (*models.OrderResult, error) {
	if b.orderErr != nil {
		return nil, b.orderErr
	}
	return &models.OrderResult{ID: "ord-1", OrderNumber: "PCB-0001", Total: order.Total}, nil
}

type stubHistory struct {
	records []models.OrderRecord
}

func (h *stubHistory) ListByUser(_ context.Context, userID string, limit int) ([]models.OrderRecord, error) {
	out := []models.OrderRecord{}
	for _, r := range h.records {
		if r.UserID == userID && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

type testServer struct {
	router  *gin.Engine
	backend *stubBackend
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prev := config.AppConfig
	config.AppConfig = &config.Config{JWTSecret: "controller-secret"}
	t.Cleanup(func() { config.AppConfig = prev })

	backend := &stubBackend{addresses: []models.ShippingAddress{
		{ID: "a-1", ProvinceName: "Hà Nội", DistrictName: "Ba Đình", WardName: "Kim Mã", Address: "5 Kim Mã", IsDefault: true},
		{ID: "a-2", ProvinceName: "Đà Nẵng", DistrictName: "Hải Châu", WardName: "Thạch Thang", Address: "9 Bạch Đằng"},
	}}
	deps := services.SessionDeps{
		Snapshots: repositories.NewMemoryCartSnapshotRepository(),
		Addresses: backend,
		Payments:  backend,
		Fees:      backend,
		Orders:    backend,
		Origin:    models.Origin{Province: "Hồ Chí Minh", District: "Quận 3", Ward: "Phường 7", Address: "1 Võ Văn Tần"},

		DefaultWeightGrams: 200,
		Logger:             zerolog.Nop(),
	}
	history := &stubHistory{records: []models.OrderRecord{
		{ID: 1, UserID: "u-1", OrderNumber: "PCB-0000", Total: 100000},
		{ID: 2, UserID: "someone-else", OrderNumber: "PCB-9999"},
	}}

	router := gin.New()
	routes.SetupRoutes(router, routes.Deps{
		Sessions: services.NewSessionManager(deps, time.Hour),
		Orders:   history,
		Metrics:  libs.NewMetrics("test"),
	})

	token, err := utils.GenerateToken("u-1", "buyer@example.com", "customer", time.Hour)
	require.NoError(t, err)
	return &testServer{router: router, backend: backend, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func data(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", resp)
	return d
}

func TestRequiresToken(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	rec, resp := s.do(t, http.MethodGet, "/cart", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, resp["success"])
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	rec, _ := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCartLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodPost, "/cart/items", map[string]interface{}{
		"product_id": "p-1",
		"product":    map[string]interface{}{"name": "Arduino Uno", "price": 120000},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	added := data(t, resp)
	itemID := added["id"].(string)
	assert.Equal(t, float64(1), added["quantity"])
	assert.Equal(t, float64(120000), added["price_at_add"])

	rec, resp = s.do(t, http.MethodPatch, "/cart/items/"+itemID, map[string]interface{}{"quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(360000), data(t, resp)["total_price"])

	rec, resp = s.do(t, http.MethodPost, "/cart/items/"+itemID+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), data(t, resp)["selected_total"])

	rec, resp = s.do(t, http.MethodPost, "/cart/selection", map[string]interface{}{"checked": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(360000), data(t, resp)["selected_total"])

	rec, _ = s.do(t, http.MethodDelete, "/cart/selection", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/cart/items/"+itemID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = s.do(t, http.MethodDelete, "/cart/items/"+itemID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, resp["success"])
}

func TestAddItemRejected(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/cart/items", map[string]interface{}{"product_id": "p-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/cart/items", map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodPost, "/cart/items", map[string]interface{}{
		"product_id": "p-1", "quantity": 2, "price_at_add": 100000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := s.do(t, http.MethodGet, "/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := data(t, resp)
	assert.Equal(t, true, summary["can_submit"])
	assert.Equal(t, float64(30000), summary["shipping_fee"])
	assert.Equal(t, float64(230000), summary["total"])

	rec, resp = s.do(t, http.MethodPut, "/checkout/shipping-method", map[string]string{"tier": "fast"})
	require.Equal(t, http.StatusOK, rec.Code)
	quote := data(t, resp)
	assert.Equal(t, float64(55000), quote["fee"])
	assert.Equal(t, float64(services.MethodFast), quote["method_id"])

	rec, _ = s.do(t, http.MethodPut, "/checkout/shipping-method", map[string]string{"tier": "drone"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPut, "/checkout/address", map[string]string{"address_id": "a-2"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodPut, "/checkout/address", map[string]string{"address_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodPut, "/checkout/payment-method", map[string]string{"code": "vnpay"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = s.do(t, http.MethodPost, "/checkout/orders", map[string]string{"note": "fragile"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	placed := data(t, resp)
	sent := placed["request"].(map[string]interface{})
	assert.Equal(t, "vnpay", sent["payment_method"])
	assert.Equal(t, float64(255000), sent["total"])
	assert.Equal(t, "xteam", sent["deliver_option"])

	rec, resp = s.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, data(t, resp)["items"])
}

func TestSubmitIncompleteCheckout(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodPost, "/checkout/orders", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, resp["error"], "select at least one item")
}

func TestSubmitSessionExpired(t *testing.T) {
	s := newTestServer(t)
	s.backend.orderErr = &libs.APIError{Status: http.StatusUnauthorized}
	rec, _ := s.do(t, http.MethodPost, "/cart/items", map[string]interface{}{"product_id": "p-1", "price_at_add": 1000})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := s.do(t, http.MethodPost, "/checkout/orders", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "session expired, please log in again", resp["message"])
}

func TestAddressesAndPayments(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodGet, "/checkout/addresses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	addresses := data(t, resp)
	assert.Equal(t, "ready", addresses["status"])
	assert.Equal(t, "a-1", addresses["selected_id"])

	rec, _ = s.do(t, http.MethodPut, "/checkout/addresses/a-2/default", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = s.do(t, http.MethodGet, "/checkout/payment-methods?refresh=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payments := data(t, resp)
	assert.Equal(t, "cod", payments["selected"])

	rec, _ = s.do(t, http.MethodPut, "/checkout/payment-method", map[string]string{"code": "paypal"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderHistory(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodGet, "/checkout/orders?limit=500", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	orders := resp["data"].([]interface{})
	require.Len(t, orders, 1)
	assert.Equal(t, "PCB-0000", orders[0].(map[string]interface{})["order_number"])
	assert.Equal(t, float64(100), resp["meta"].(map[string]interface{})["limit"])
}

func TestReadyWithoutChecks(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	rec, resp := s.do(t, http.MethodGet, "/ready", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pcb-shop-checkout", resp["service"])
}
