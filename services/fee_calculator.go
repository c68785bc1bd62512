package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"pcb-shop/libs"
	"pcb-shop/models"
)

const feeUnavailableReason = "shipping fee unavailable"

// FeeQuoter is the carrier fee endpoint of the storefront API.
type FeeQuoter interface {
	CalculateFee(ctx context.Context, req models.ShippingFeeRequest) (*models.ShippingFeeResponse, error)
}

type QuoteObserver interface {
	ObserveFeeQuote(outcome string)
}

type FeeState struct {
	Status string
	Fee    *int64
	Reason string
	// Stale marks an answer that was superseded by a newer call and not stored.
	Stale  bool
}

// NewFeeBreaker trips after five consecutive carrier failures and probes again after 30s.
// The breaker is shared by every session, so answers caused by one caller's request
// (4xx, a cancelled request) do not count against it.
func NewFeeBreaker(name string) *gobreaker.CircuitBreaker[*models.ShippingFeeResponse] {
	return gobreaker.NewCircuitBreaker[*models.ShippingFeeResponse](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: carrierHealthy,
	})
}

func carrierHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *libs.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 400 && apiErr.Status < 500
	}
	return false
}

// FeeCalculator wraps the carrier fee call behind an idle/calculating/ready/unavailable
// contract. Every call is numbered; only the answer to the latest call is kept.
type FeeCalculator struct {
	quoter   FeeQuoter
	breaker  *gobreaker.CircuitBreaker[*models.ShippingFeeResponse]
	observer QuoteObserver
	logger   zerolog.Logger

	mu    sync.Mutex
	seq   uint64
	state FeeState
}

func NewFeeCalculator(quoter FeeQuoter, breaker *gobreaker.CircuitBreaker[*models.ShippingFeeResponse], observer QuoteObserver, logger zerolog.Logger) *FeeCalculator {
	if breaker == nil {
		breaker = NewFeeBreaker("shipping-fee")
	}
	return &FeeCalculator{
		quoter:   quoter,
		breaker:  breaker,
		observer: observer,
		logger:   logger.With().Str("component", "fee_calculator").Logger(),
		state:    FeeState{Status: models.FeeStatusIdle},
	}
}

// Calculate quotes req. Incomplete requests never reach the carrier and reset the fee.
func (f *FeeCalculator) Calculate(ctx context.Context, req models.ShippingFeeRequest) FeeState {
	if !req.Complete() {
		f.Reset()
		f.observe("skipped")
		return FeeState{Status: models.FeeStatusIdle}
	}

	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.state = FeeState{Status: models.FeeStatusCalculating}
	f.mu.Unlock()

	resp, err := f.breaker.Execute(func() (*models.ShippingFeeResponse, error) {
		return f.quoter.CalculateFee(ctx, req)
	})
	next := f.interpret(resp, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.seq {
		f.logger.Debug().Uint64("seq", seq).Uint64("latest", f.seq).Msg("discarding stale fee response")
		f.observe("stale")
		current := f.state
		current.Stale = true
		return current
	}
	f.state = next
	return next
}

// Reset drops the current fee and invalidates any call still in flight.
func (f *FeeCalculator) Reset() {
	f.set(FeeState{Status: models.FeeStatusIdle})
}

// Block marks the fee as not computable for a business reason, invalidating calls in flight.
func (f *FeeCalculator) Block(reason string) {
	f.set(FeeState{Status: models.FeeStatusIneligible, Reason: reason})
}

func (f *FeeCalculator) State() FeeState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *FeeCalculator) set(state FeeState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.state = state
}

func (f *FeeCalculator) interpret(resp *models.ShippingFeeResponse, err error) FeeState {
	if err != nil {
		reason := feeUnavailableReason
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			reason = "shipping fee service is temporarily unavailable"
		}
		f.logger.Warn().Err(err).Msg("shipping fee request failed")
		f.observe("error")
		return FeeState{Status: models.FeeStatusUnavailable, Reason: reason}
	}

	if fee, ok := ExtractFee(resp); ok {
		f.observe("ok")
		return FeeState{Status: models.FeeStatusReady, Fee: &fee}
	}

	reason := feeUnavailableReason
	if resp != nil {
		reason = firstNonEmpty(resp.Reason, resp.Message, innerMessage(resp), feeUnavailableReason)
	}
	f.logger.Info().Str("reason", reason).Msg("carrier returned no fee")
	f.observe("unavailable")
	return FeeState{Status: models.FeeStatusUnavailable, Reason: reason}
}

func (f *FeeCalculator) observe(outcome string) {
	if f.observer != nil {
		f.observer.ObserveFeeQuote(outcome)
	}
}

// ExtractFee returns the fee only for a fully successful response carrying a numeric fee.
func ExtractFee(resp *models.ShippingFeeResponse) (int64, bool) {
	if resp == nil || !resp.Success || resp.Fee == nil {
		return 0, false
	}
	if resp.Fee.Success != nil && !*resp.Fee.Success {
		return 0, false
	}
	if resp.Fee.Fee == nil || resp.Fee.Fee.Fee == nil {
		return 0, false
	}
	fee := *resp.Fee.Fee.Fee
	if fee < 0 || math.IsNaN(fee) || math.IsInf(fee, 0) {
		return 0, false
	}
	return int64(math.Round(fee)), true
}

func innerMessage(resp *models.ShippingFeeResponse) string {
	if resp.Fee == nil {
		return ""
	}
	return resp.Fee.Message
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
