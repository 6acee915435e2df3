// Package payment emulates an external payment gateway.  Charges and
// refunds take a configurable amount of wall-clock time and succeed
// with a configurable probability, which is how the platform exercises
// its failure paths without a real payment integration.  Swapping in a
// real provider only requires implementing the same two operations.
package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of a charge or refund attempt.  PaymentID is
// non-empty only for successful charges.  Message is human-readable and
// safe to surface to callers.
type Outcome struct {
	Success   bool   `json:"success"`
	PaymentID string `json:"payment_id,omitempty"`
	Message   string `json:"message"`
}

// Simulator issues randomized charge and refund outcomes.  It holds no
// state about past payments; every call is an independent draw.  The
// zero value is not usable, construct with NewSimulator.
type Simulator struct {
	chargeRate    float64
	refundRate    float64
	chargeLatency time.Duration
	refundLatency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator returns a Simulator with the reference behavior: 90%
// charge success after ~1s, 95% refund success after ~500ms.
func NewSimulator() *Simulator {
	return NewSimulatorWithRand(rand.New(rand.NewSource(time.Now().UnixNano())), 0.90, 0.95)
}

// NewSimulatorWithRand builds a Simulator around a caller-supplied
// random source and success probabilities.  Tests pass a seeded rand
// (or probabilities of 0/1) to force deterministic outcomes.
func NewSimulatorWithRand(rng *rand.Rand, chargeRate, refundRate float64) *Simulator {
	return &Simulator{
		chargeRate:    chargeRate,
		refundRate:    refundRate,
		chargeLatency: time.Second,
		refundLatency: 500 * time.Millisecond,
		rng:           rng,
	}
}

// SetLatency overrides the simulated processing delays.  Tests set both
// to zero so suites stay fast.
func (s *Simulator) SetLatency(charge, refund time.Duration) {
	s.chargeLatency = charge
	s.refundLatency = refund
}

// Charge attempts to collect amountCents from the given user.  It
// blocks for the configured latency (or until ctx is done) and then
// draws an outcome.  On success the Outcome carries a freshly generated
// payment identifier; on failure the identifier is empty.  The amount
// and user are accepted for contract parity with a real gateway but do
// not influence the outcome.
func (s *Simulator) Charge(ctx context.Context, amountCents int64, userID uint64) Outcome {
	if err := s.wait(ctx, s.chargeLatency); err != nil {
		return Outcome{Success: false, Message: fmt.Sprintf("payment aborted: %v", err)}
	}
	if s.draw() < s.chargeRate {
		return Outcome{
			Success:   true,
			PaymentID: "pay_" + uuid.NewString(),
			Message:   "payment processed successfully",
		}
	}
	return Outcome{Success: false, Message: "payment failed, please try again"}
}

// Refund attempts to reverse a previous charge.  The simulator does not
// track issued payment identifiers, so it never rejects an unknown one;
// validating the reference is the caller's job.
func (s *Simulator) Refund(ctx context.Context, paymentID string) Outcome {
	if err := s.wait(ctx, s.refundLatency); err != nil {
		return Outcome{Success: false, Message: fmt.Sprintf("refund aborted: %v", err)}
	}
	if s.draw() < s.refundRate {
		return Outcome{Success: true, Message: "refund processed successfully"}
	}
	return Outcome{Success: false, Message: "refund failed, please contact support"}
}

// draw returns the next value in [0,1) from the shared random source.
// rand.Rand is not safe for concurrent use, hence the mutex.
func (s *Simulator) draw() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// wait sleeps for d while honoring context cancellation.
func (s *Simulator) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
