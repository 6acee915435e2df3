package payment

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSimulator(chargeRate, refundRate float64) *Simulator {
	s := NewSimulatorWithRand(rand.New(rand.NewSource(1)), chargeRate, refundRate)
	s.SetLatency(0, 0)
	return s
}

func TestNewSimulatorDefaults(t *testing.T) {
	s := NewSimulator()
	require.NotNil(t, s.rng)
	assert.Equal(t, 0.90, s.chargeRate)
	assert.Equal(t, 0.95, s.refundRate)
	assert.Equal(t, time.Second, s.chargeLatency)
	assert.Equal(t, 500*time.Millisecond, s.refundLatency)
}

func TestChargeAlwaysSucceeds(t *testing.T) {
	s := newTestSimulator(1.0, 1.0)

	out := s.Charge(context.Background(), 25_000, 7)
	require.True(t, out.Success)
	assert.True(t, strings.HasPrefix(out.PaymentID, "pay_"))
	assert.NotEmpty(t, out.Message)
}

func TestChargeAlwaysFails(t *testing.T) {
	s := newTestSimulator(0.0, 1.0)

	out := s.Charge(context.Background(), 25_000, 7)
	require.False(t, out.Success)
	assert.Empty(t, out.PaymentID)
	assert.NotEmpty(t, out.Message)
}

func TestChargePaymentIDsAreUnique(t *testing.T) {
	s := newTestSimulator(1.0, 1.0)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		out := s.Charge(context.Background(), 1000, 1)
		require.True(t, out.Success)
		require.False(t, seen[out.PaymentID], "duplicate payment id %s", out.PaymentID)
		seen[out.PaymentID] = true
	}
}

func TestRefundOutcomes(t *testing.T) {
	s := newTestSimulator(1.0, 1.0)
	out := s.Refund(context.Background(), "pay_abc")
	require.True(t, out.Success)
	assert.Empty(t, out.PaymentID)

	s = newTestSimulator(1.0, 0.0)
	out = s.Refund(context.Background(), "pay_abc")
	require.False(t, out.Success)
}

func TestChargeHonorsContextCancellation(t *testing.T) {
	s := NewSimulatorWithRand(rand.New(rand.NewSource(1)), 1.0, 1.0)
	s.SetLatency(time.Minute, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	out := s.Charge(ctx, 1000, 1)
	require.False(t, out.Success)
	assert.Less(t, time.Since(start), time.Second, "cancelled charge should return promptly")
}

func TestChargeRateIsRoughlyHonored(t *testing.T) {
	s := newTestSimulator(0.9, 0.95)

	const n = 2000
	var ok int
	for i := 0; i < n; i++ {
		if s.Charge(context.Background(), 1000, 1).Success {
			ok++
		}
	}
	rate := float64(ok) / n
	assert.InDelta(t, 0.9, rate, 0.05)
}
