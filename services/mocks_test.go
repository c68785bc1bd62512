package services

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"pcb-shop/models"
)

var errRemote = errors.New("remote down")

var testLogger = zerolog.Nop()

func feeResponse(fee float64) *models.ShippingFeeResponse {
	ok := true
	return &models.ShippingFeeResponse{
		Success: true,
		Fee: &models.CarrierFeeEnvelope{
			Success: &ok,
			Fee:     &models.CarrierFee{Fee: &fee},
		},
	}
}

// mockQuoter answers fee requests from a function and records every request.
type mockQuoter struct {
	mu       sync.Mutex
	requests []models.ShippingFeeRequest
	respond  func(req models.ShippingFeeRequest) (*models.ShippingFeeResponse, error)
}

func (m *mockQuoter) CalculateFee(_ context.Context, req models.ShippingFeeRequest) (*models.ShippingFeeResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	respond := m.respond
	m.mu.Unlock()
	if respond == nil {
		return feeResponse(35000), nil
	}
	return respond(req)
}

func (m *mockQuoter) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockQuoter) lastRequest() models.ShippingFeeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

type mockObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *mockObserver) ObserveFeeQuote(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockObserver) seen() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.outcomes...)
}

type mockCartRemote struct {
	mu      sync.Mutex
	fail    error
	added   []models.CartItem
	updated map[string]int
	removed []string
}

func (m *mockCartRemote) AddCartItem(_ context.Context, item models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.added = append(m.added, item)
	return nil
}

func (m *mockCartRemote) UpdateCartItem(_ context.Context, itemID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if m.updated == nil {
		m.updated = map[string]int{}
	}
	m.updated[itemID] = quantity
	return nil
}

func (m *mockCartRemote) RemoveCartItem(_ context.Context, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.removed = append(m.removed, itemID)
	return nil
}

type mockAddresses struct {
	mu         sync.Mutex
	addresses  []models.ShippingAddress
	err        error
	defaultErr error
	defaults   []string
}

func (m *mockAddresses) ListShippingAddresses(_ context.Context, _ string) ([]models.ShippingAddress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]models.ShippingAddress(nil), m.addresses...), nil
}

func (m *mockAddresses) SetDefaultShippingAddress(_ context.Context, _ string, addressID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.defaultErr != nil {
		return m.defaultErr
	}
	m.defaults = append(m.defaults, addressID)
	return nil
}

type mockPaymentSource struct {
	mu      sync.Mutex
	methods []models.PaymentMethod
	err     error
	calls   int
	gate    chan struct{}
}

func (m *mockPaymentSource) ListPaymentMethods(_ context.Context) ([]models.PaymentMethod, error) {
	m.mu.Lock()
	m.calls++
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.methods, nil
}

func (m *mockPaymentSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockOrders struct {
	mu      sync.Mutex
	sent    []models.OrderRequest
	err     error
	result  models.OrderResult
	entered chan struct{}
	gate    chan struct{}
}

func (m *mockOrders) CreateOrder(_ context.Context, order models.OrderRequest) (*models.OrderResult, error) {
	if m.gate != nil {
		m.entered <- struct{}{}
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, order)
	result := m.result
	return &result, nil
}

type mockRecorder struct {
	mu      sync.Mutex
	records []models.OrderRecord
	err     error
}

func (m *mockRecorder) Record(_ context.Context, rec *models.OrderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, *rec)
	return nil
}

type mockEvents struct {
	mu     sync.Mutex
	events []models.OrderSubmittedEvent
}

func (m *mockEvents) PublishOrderSubmitted(_ context.Context, event models.OrderSubmittedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockEvents) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (m *mockNotifier) SendOrderConfirmation(toEmail, orderNumber string, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, toEmail+":"+orderNumber)
	return nil
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
