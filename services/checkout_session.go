package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"pcb-shop/models"
)

var (
	ErrCheckoutIncomplete = errors.New("checkout is incomplete")
	ErrSubmitInProgress   = errors.New("an order is already being placed")
)

type AddressSource interface {
	ListShippingAddresses(ctx context.Context, userID string) ([]models.ShippingAddress, error)
	SetDefaultShippingAddress(ctx context.Context, userID, addressID string) error
}

type paymentRefresher interface {
	Refresh(ctx context.Context) ([]models.PaymentMethod, error)
}

type OrderPlacer interface {
	CreateOrder(ctx context.Context, order models.OrderRequest) (*models.OrderResult, error)
}

type OrderRecorder interface {
	Record(ctx context.Context, rec *models.OrderRecord) error
}

type OrderEventPublisher interface {
	PublishOrderSubmitted(ctx context.Context, event models.OrderSubmittedEvent) error
}

type OrderNotifier interface {
	SendOrderConfirmation(toEmail, orderNumber string, total int64) error
}

// SessionDeps are shared by every checkout session. Optional collaborators may be nil.
type SessionDeps struct {
	Snapshots  SnapshotStore
	CartRemote CartRemote
	Addresses  AddressSource
	Payments   PaymentMethodSource
	Fees       FeeQuoter
	FeeBreaker *gobreaker.CircuitBreaker[*models.ShippingFeeResponse]
	Observer   QuoteObserver
	Orders     OrderPlacer
	Recorder   OrderRecorder
	Events     OrderEventPublisher
	Notifier   OrderNotifier

	Origin             models.Origin
	DefaultWeightGrams int
	Logger             zerolog.Logger
}

// CheckoutState is what the selectors have decided so far.
type CheckoutState struct {
	AddressID        string `json:"address_id,omitempty"`
	ShippingMethodID int    `json:"shipping_method_id"`
	ShippingFee      *int64 `json:"shipping_fee"`
	PaymentCode      string `json:"payment_code,omitempty"`
}

type SubmitOptions struct {
	Note  string
	Email string
}

// CheckoutSession coordinates one user's cart, address, shipping and payment choices.
type CheckoutSession struct {
	userID string
	deps   SessionDeps
	logger zerolog.Logger

	cart      *SyncedCart
	addresses *AddressSelector
	shipping  *ShippingSelector
	payments  *PaymentSelector

	openOnce   sync.Once
	submitting sync.Mutex

	mu    sync.Mutex
	state CheckoutState
}

func NewCheckoutSession(userID string, deps SessionDeps) *CheckoutSession {
	logger := deps.Logger.With().Str("user_id", userID).Logger()
	s := &CheckoutSession{
		userID: userID,
		deps:   deps,
		logger: logger.With().Str("component", "checkout_session").Logger(),
		state:  CheckoutState{ShippingMethodID: MethodStandard},
	}

	store := NewCartStore(userID, deps.Snapshots, logger)
	s.cart = NewSyncedCart(store, deps.CartRemote, logger)

	s.addresses = NewAddressSelector(func(addr models.ShippingAddress) {
		s.mu.Lock()
		s.state.AddressID = addr.ID
		s.mu.Unlock()
	})

	calc := NewFeeCalculator(deps.Fees, deps.FeeBreaker, deps.Observer, logger)
	s.shipping = NewShippingSelector(deps.Origin, calc, func(methodID int, fee *int64) {
		s.mu.Lock()
		s.state.ShippingMethodID = methodID
		s.state.ShippingFee = fee
		s.mu.Unlock()
	})

	s.payments = NewPaymentSelector(func(m models.PaymentMethod) {
		s.mu.Lock()
		s.state.PaymentCode = m.Code
		s.mu.Unlock()
	})
	return s
}

func (s *CheckoutSession) UserID() string { return s.userID }

func (s *CheckoutSession) Cart() *SyncedCart { return s.cart }

// Open restores the cart and loads addresses and payment methods. Addresses and payment
// methods load once per session; a cart that could not be read is retried on later calls.
func (s *CheckoutSession) Open(ctx context.Context) {
	first := false
	s.openOnce.Do(func() {
		first = true
		if err := s.cart.Rehydrate(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("cart not restored, will retry")
		}
		if err := s.LoadAddresses(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("shipping addresses unavailable")
		}
		if err := s.ReloadPaymentMethods(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("payment methods unavailable")
		}
	})
	if first || s.cart.Hydrated() {
		return
	}
	if err := s.cart.Rehydrate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("cart still not restored")
		return
	}
	s.refreshShipping(ctx)
}

func (s *CheckoutSession) LoadAddresses(ctx context.Context) error {
	if s.deps.Addresses == nil {
		s.addresses.Load(nil)
		return nil
	}
	list, err := s.deps.Addresses.ListShippingAddresses(ctx, s.userID)
	if err != nil {
		s.addresses.Fail(err)
		return fmt.Errorf("load shipping addresses: %w", err)
	}
	s.addresses.Load(list)
	s.syncAddressState()
	s.refreshShipping(ctx)
	return nil
}

func (s *CheckoutSession) ReloadPaymentMethods(ctx context.Context) error {
	return s.loadPaymentMethods(ctx, false)
}

// RefreshPaymentMethods reloads the methods past any cache in front of the source.
func (s *CheckoutSession) RefreshPaymentMethods(ctx context.Context) error {
	return s.loadPaymentMethods(ctx, true)
}

func (s *CheckoutSession) loadPaymentMethods(ctx context.Context, bypassCache bool) error {
	if s.deps.Payments == nil {
		s.payments.Load(nil)
		return nil
	}
	var (
		methods []models.PaymentMethod
		err     error
	)
	if r, ok := s.deps.Payments.(paymentRefresher); ok && bypassCache {
		methods, err = r.Refresh(ctx)
	} else {
		methods, err = s.deps.Payments.ListPaymentMethods(ctx)
	}
	if err != nil {
		s.payments.Fail(err)
		return fmt.Errorf("load payment methods: %w", err)
	}
	s.payments.Load(methods)
	return nil
}

func (s *CheckoutSession) AddItem(ctx context.Context, in AddItemInput) (models.CartItem, error) {
	item, err := s.cart.Add(ctx, in)
	s.refreshShipping(ctx)
	return item, err
}

func (s *CheckoutSession) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	err := s.cart.SetQuantity(ctx, itemID, quantity)
	s.refreshShipping(ctx)
	return err
}

func (s *CheckoutSession) RemoveItem(ctx context.Context, itemID string) error {
	err := s.cart.Remove(ctx, itemID)
	s.refreshShipping(ctx)
	return err
}

func (s *CheckoutSession) ToggleSelectItem(ctx context.Context, itemID string) error {
	err := s.cart.ToggleSelectItem(ctx, itemID)
	s.refreshShipping(ctx)
	return err
}

func (s *CheckoutSession) SelectAll(ctx context.Context, checked bool, ids ...string) {
	s.cart.SelectAll(ctx, checked, ids...)
	s.refreshShipping(ctx)
}

func (s *CheckoutSession) ClearSelectedItems(ctx context.Context) {
	s.cart.ClearSelectedItems(ctx)
	s.refreshShipping(ctx)
}

func (s *CheckoutSession) Addresses() models.AddressState {
	return s.addresses.State()
}

func (s *CheckoutSession) SelectAddress(ctx context.Context, addressID string) (models.ShippingAddress, error) {
	addr, err := s.addresses.Select(addressID)
	if err != nil {
		return models.ShippingAddress{}, err
	}
	s.refreshShipping(ctx)
	return addr, nil
}

// SetDefaultAddress flips the default on the server first, then mirrors it locally.
func (s *CheckoutSession) SetDefaultAddress(ctx context.Context, addressID string) error {
	if !s.addresses.Contains(addressID) {
		return ErrAddressNotFound
	}
	if s.deps.Addresses != nil {
		if err := s.deps.Addresses.SetDefaultShippingAddress(ctx, s.userID, addressID); err != nil {
			return fmt.Errorf("set default address: %w", err)
		}
	}
	return s.addresses.MarkDefault(addressID)
}

func (s *CheckoutSession) Shipping() models.ShippingQuote {
	return s.shipping.Quote()
}

func (s *CheckoutSession) SetShippingTier(ctx context.Context, tier ShippingTier) (models.ShippingQuote, error) {
	s.refreshInputsOnly()
	return s.shipping.SetTier(ctx, tier)
}

func (s *CheckoutSession) Payments() models.PaymentState {
	return s.payments.State()
}

func (s *CheckoutSession) SelectPaymentMethod(code string) (models.PaymentMethod, error) {
	return s.payments.Select(code)
}

func (s *CheckoutSession) State() CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *CheckoutSession) Summary() models.CheckoutSummary {
	view := s.cart.View()
	state := s.State()
	quote := s.shipping.Quote()

	summary := models.CheckoutSummary{
		Cart:        view,
		Addresses:   s.addresses.State(),
		Shipping:    quote,
		Payment:     s.payments.State(),
		Subtotal:    view.SelectedTotal,
		ShippingFee: state.ShippingFee,
		Total:       view.SelectedTotal,
	}
	if state.ShippingFee != nil {
		summary.Total += *state.ShippingFee
	}
	summary.Blockers = s.blockers(view.SelectedTotal, len(view.SelectedIDs), state, quote)
	summary.CanSubmit = len(summary.Blockers) == 0
	return summary
}

// BuildOrder assembles the order creation payload from the current selections.
func (s *CheckoutSession) BuildOrder() (models.OrderRequest, error) {
	return s.buildOrder(s.cart.SelectedItems())
}

func (s *CheckoutSession) buildOrder(items []models.CartItem) (models.OrderRequest, error) {
	var subtotal int64
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	state := s.State()
	quote := s.shipping.Quote()

	if state.ShippingMethodID == MethodFast && !FastDeliveryAllowed(subtotal) {
		return models.OrderRequest{}, fmt.Errorf("%w: %w", ErrCheckoutIncomplete, ErrFastDeliveryValueRange)
	}
	if blockers := s.blockers(subtotal, len(items), state, quote); len(blockers) > 0 {
		return models.OrderRequest{}, fmt.Errorf("%w: %s", ErrCheckoutIncomplete, strings.Join(blockers, "; "))
	}

	addr, _ := s.addresses.Selected()
	payment, _ := s.payments.Selected()
	tier := TierStandard
	if state.ShippingMethodID == MethodFast {
		tier = TierFast
	}

	order := models.OrderRequest{
		Items:            make([]models.OrderItem, 0, len(items)),
		ShippingAddress:  addr,
		ShippingMethodID: state.ShippingMethodID,
		DeliverOption:    tier.DeliverOption(),
		ShippingFee:      *state.ShippingFee,
		PaymentMethod:    payment.Code,
		Subtotal:         subtotal,
		Total:            subtotal + *state.ShippingFee,
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice(),
			LineTotal:   item.LineTotal(),
		})
	}
	return order, nil
}

// Submit places the order, then drops the ordered lines from the cart. Journaling,
// the order event and the confirmation mail are best effort.
func (s *CheckoutSession) Submit(ctx context.Context, opts SubmitOptions) (*models.OrderResult, models.OrderRequest, error) {
	if s.deps.Orders == nil {
		return nil, models.OrderRequest{}, errors.New("order placement is not configured")
	}

	if !s.submitting.TryLock() {
		return nil, models.OrderRequest{}, ErrSubmitInProgress
	}
	defer s.submitting.Unlock()

	ordered := s.cart.SelectedItems()
	order, err := s.buildOrder(ordered)
	if err != nil {
		return nil, models.OrderRequest{}, err
	}
	order.Note = strings.TrimSpace(opts.Note)

	result, err := s.deps.Orders.CreateOrder(ctx, order)
	if err != nil {
		return nil, order, fmt.Errorf("create order: %w", err)
	}

	ids := make([]string, 0, len(ordered))
	for _, item := range ordered {
		ids = append(ids, item.ID)
	}
	s.cart.RemoveItems(ctx, ids)
	s.refreshShipping(ctx)

	s.logger.Info().
		Str("order_id", result.ID).
		Str("order_number", result.OrderNumber).
		Int64("total", order.Total).
		Msg("order submitted")

	s.record(ctx, order, result)
	s.announce(order, result, opts.Email)
	return result, order, nil
}

func (s *CheckoutSession) record(ctx context.Context, order models.OrderRequest, result *models.OrderResult) {
	if s.deps.Recorder == nil {
		return
	}
	rec := &models.OrderRecord{
		UserID:         s.userID,
		RemoteOrderID:  result.ID,
		OrderNumber:    result.OrderNumber,
		ItemCount:      len(order.Items),
		Subtotal:       order.Subtotal,
		ShippingFee:    order.ShippingFee,
		Total:          order.Total,
		ShippingMethod: order.ShippingMethodID,
		PaymentMethod:  order.PaymentMethod,
	}
	if err := s.deps.Recorder.Record(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("order_id", result.ID).Msg("order journal write failed")
	}
}

func (s *CheckoutSession) announce(order models.OrderRequest, result *models.OrderResult, email string) {
	if s.deps.Events == nil && (s.deps.Notifier == nil || email == "") {
		return
	}
	orderNumber := firstNonEmpty(result.OrderNumber, result.ID)

	go func() {
		if s.deps.Events != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			event := models.OrderSubmittedEvent{
				EventID:       uuid.NewString(),
				UserID:        s.userID,
				OrderID:       result.ID,
				OrderNumber:   result.OrderNumber,
				Total:         order.Total,
				ShippingFee:   order.ShippingFee,
				PaymentMethod: order.PaymentMethod,
				OccurredAt:    time.Now().UTC(),
			}
			if err := s.deps.Events.PublishOrderSubmitted(ctx, event); err != nil {
				s.logger.Warn().Err(err).Str("order_id", result.ID).Msg("order event publish failed")
			}
		}
		if s.deps.Notifier != nil && email != "" {
			if err := s.deps.Notifier.SendOrderConfirmation(email, orderNumber, order.Total); err != nil {
				s.logger.Warn().Err(err).Str("order_id", result.ID).Msg("order confirmation mail failed")
			}
		}
	}()
}

func (s *CheckoutSession) blockers(subtotal int64, selectedCount int, state CheckoutState, quote models.ShippingQuote) []string {
	var out []string
	if selectedCount == 0 {
		out = append(out, "select at least one item")
	}
	if _, ok := s.addresses.Selected(); !ok {
		out = append(out, "choose a shipping address")
	}
	if state.ShippingFee == nil {
		out = append(out, firstNonEmpty(quote.Reason, "shipping fee is not available yet"))
	}
	if _, ok := s.payments.Selected(); !ok {
		out = append(out, "choose a payment method")
	}
	return out
}

func (s *CheckoutSession) syncAddressState() {
	addr, ok := s.addresses.Selected()
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.state.AddressID = addr.ID
	} else {
		s.state.AddressID = ""
	}
}

func (s *CheckoutSession) inputs() ShippingInputs {
	in := ShippingInputs{}
	if addr, ok := s.addresses.Selected(); ok {
		in.Destination = &addr
	}
	for _, item := range s.cart.SelectedItems() {
		in.WeightGrams += item.Quantity * item.WeightGrams(s.deps.DefaultWeightGrams)
		in.DeclaredValue += item.LineTotal()
	}
	return in
}

// refreshShipping re-derives the fee from the current address and selected items.
func (s *CheckoutSession) refreshShipping(ctx context.Context) {
	s.syncAddressState()
	s.shipping.UpdateInputs(ctx, s.inputs())
}

// refreshInputsOnly hands the selector up-to-date inputs without triggering a quote, so the
// tier change that follows quotes against them.
func (s *CheckoutSession) refreshInputsOnly() {
	s.shipping.setInputs(s.inputs())
}
