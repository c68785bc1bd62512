package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pcb-shop/models"
)

type ShippingTier string

const (
	TierStandard ShippingTier = "standard"
	TierFast     ShippingTier = "fast"
)

const (
	MethodStandard = 1
	MethodFast     = 2
)

// Fast delivery is only offered for declared order values inside this inclusive range.
const (
	FastDeliveryMinValue int64 = 1
	FastDeliveryMaxValue int64 = 20_000_000
)

var (
	ErrFastDeliveryValueRange = errors.New("fast delivery requires order value between 1 and 20,000,000")
	ErrUnknownTier            = errors.New("unknown shipping tier")
)

func ParseTier(raw string) (ShippingTier, error) {
	switch ShippingTier(raw) {
	case TierStandard, TierFast:
		return ShippingTier(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, raw)
}

func (t ShippingTier) MethodID() int {
	if t == TierFast {
		return MethodFast
	}
	return MethodStandard
}

func (t ShippingTier) DeliverOption() string {
	if t == TierFast {
		return models.DeliverOptionFast
	}
	return models.DeliverOptionStandard
}

// FastDeliveryAllowed reports whether value is inside the fast tier's range.
func FastDeliveryAllowed(value int64) bool {
	return value >= FastDeliveryMinValue && value <= FastDeliveryMaxValue
}

// ShippingInputs are the values the fee depends on besides the tier.
type ShippingInputs struct {
	Destination   *models.ShippingAddress
	WeightGrams   int
	DeclaredValue int64
}

func (in ShippingInputs) equal(other ShippingInputs) bool {
	if in.WeightGrams != other.WeightGrams || in.DeclaredValue != other.DeclaredValue {
		return false
	}
	if (in.Destination == nil) != (other.Destination == nil) {
		return false
	}
	return in.Destination == nil || *in.Destination == *other.Destination
}

// ShippingSelector switches between the standard and fast tiers and re-derives the fee
// whenever the tier or an input changes, reporting (methodID, fee) through onQuote.
type ShippingSelector struct {
	mu      sync.Mutex
	tier    ShippingTier
	inputs  ShippingInputs
	origin  models.Origin
	calc    *FeeCalculator
	onQuote func(methodID int, fee *int64)
	last    models.ShippingQuote
	primed  bool
}

func NewShippingSelector(origin models.Origin, calc *FeeCalculator, onQuote func(methodID int, fee *int64)) *ShippingSelector {
	return &ShippingSelector{
		tier:    TierStandard,
		origin:  origin,
		calc:    calc,
		onQuote: onQuote,
		last: models.ShippingQuote{
			Tier:     string(TierStandard),
			MethodID: MethodStandard,
			Status:   models.FeeStatusIdle,
		},
	}
}

func (s *ShippingSelector) Tier() ShippingTier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tier
}

func (s *ShippingSelector) SetTier(ctx context.Context, tier ShippingTier) (models.ShippingQuote, error) {
	if _, err := ParseTier(string(tier)); err != nil {
		return s.Quote(), err
	}
	s.mu.Lock()
	changed := s.tier != tier || !s.primed
	s.tier = tier
	s.mu.Unlock()

	if !changed {
		return s.Quote(), nil
	}
	return s.Refresh(ctx), nil
}

func (s *ShippingSelector) Toggle(ctx context.Context) models.ShippingQuote {
	next := TierFast
	if s.Tier() == TierFast {
		next = TierStandard
	}
	quote, _ := s.SetTier(ctx, next)
	return quote
}

// UpdateInputs recomputes the fee only when in differs from the current inputs.
func (s *ShippingSelector) UpdateInputs(ctx context.Context, in ShippingInputs) models.ShippingQuote {
	if in.Destination != nil {
		dest := *in.Destination
		in.Destination = &dest
	}

	s.mu.Lock()
	changed := !s.primed || !s.inputs.equal(in)
	s.inputs = in
	s.mu.Unlock()

	if !changed {
		return s.Quote()
	}
	return s.Refresh(ctx)
}

// setInputs stores in without quoting; a change forces the next SetTier to refresh.
func (s *ShippingSelector) setInputs(in ShippingInputs) {
	if in.Destination != nil {
		dest := *in.Destination
		in.Destination = &dest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inputs.equal(in) {
		s.primed = false
	}
	s.inputs = in
}

// Refresh recomputes the fee for the current tier and inputs.
func (s *ShippingSelector) Refresh(ctx context.Context) models.ShippingQuote {
	s.mu.Lock()
	tier := s.tier
	inputs := s.inputs
	s.primed = true
	s.mu.Unlock()

	quote := models.ShippingQuote{Tier: string(tier), MethodID: tier.MethodID()}

	if tier == TierFast && !FastDeliveryAllowed(inputs.DeclaredValue) {
		s.calc.Block(ErrFastDeliveryValueRange.Error())
		quote.Status = models.FeeStatusIneligible
		quote.Reason = ErrFastDeliveryValueRange.Error()
	} else {
		state := s.calc.Calculate(ctx, s.request(tier, inputs))
		if state.Stale {
			// a newer refresh owns the quote
			return s.Quote()
		}
		quote.Status = state.Status
		quote.Fee = state.Fee
		quote.Reason = state.Reason
	}

	s.mu.Lock()
	if s.tier != tier {
		// the tier moved on while the fee was being computed; that newer refresh reports
		s.mu.Unlock()
		return quote
	}
	s.last = quote
	s.mu.Unlock()

	if s.onQuote != nil {
		s.onQuote(quote.MethodID, quote.Fee)
	}
	return quote
}

func (s *ShippingSelector) Quote() models.ShippingQuote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *ShippingSelector) request(tier ShippingTier, in ShippingInputs) models.ShippingFeeRequest {
	req := models.ShippingFeeRequest{
		PickProvince:  s.origin.Province,
		PickDistrict:  s.origin.District,
		PickWard:      s.origin.Ward,
		PickAddress:   s.origin.Address,
		Weight:        in.WeightGrams,
		Value:         in.DeclaredValue,
		DeliverOption: tier.DeliverOption(),
		Transport:     models.TransportRoad,
	}
	if in.Destination != nil {
		req.Province = in.Destination.ProvinceName
		req.District = in.Destination.DistrictName
		req.Ward = in.Destination.WardName
		req.Address = in.Destination.Address
	}
	return req
}
