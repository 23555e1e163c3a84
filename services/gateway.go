package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tischplan/reservation-app/models"
)

// ErrPaymentDeclined is what the gateway returns when a charge is rejected.
var ErrPaymentDeclined = errors.New("payment declined by gateway")

// PaymentGateway is the capability an electronic payment needs: attempt a
// charge, get back a transaction id or a failure. Charges must honor the
// caller's context so the simulated latency stays cancellable.
type PaymentGateway interface {
	Charge(ctx context.Context, method string, amount float64, token string) (string, error)
}

// MockGateway simulates an external payment processor: a fixed processing
// delay and an optional percentage of declined charges.
type MockGateway struct {
	Latency     time.Duration
	FailureRate int // percent of charges declined, 0-100

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockGateway(latency time.Duration, failureRate int) *MockGateway {
	return &MockGateway{
		Latency:     latency,
		FailureRate: failureRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *MockGateway) Charge(ctx context.Context, method string, amount float64, token string) (string, error) {
	select {
	case <-time.After(g.Latency):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	g.mu.Lock()
	declined := g.FailureRate > 0 && g.rng.Intn(100) < g.FailureRate
	g.mu.Unlock()
	if declined {
		return "", ErrPaymentDeclined
	}

	prefix := "CARD_"
	if method == models.MethodPayPal {
		prefix = "PAYPAL_"
	}
	return prefix + uuid.NewString(), nil
}
