package payment

import (
	"context"
	"time"

	"github.com/John-Gaitho/branded-in-grace-api/models"
	"go.uber.org/zap"
)

// Outcome is the terminal result of watching one payment.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeTimedOut  Outcome = "timed_out"
	OutcomeAborted   Outcome = "aborted" // lookup error or cancelled context
)

// StatusSource looks up the current transaction status for a
// CheckoutRequestID. The production source reads the transaction row
// the gateway callback mutates.
type StatusSource interface {
	Status(ctx context.Context, checkoutRequestID string) (models.TransactionStatus, error)
}

// Observer receives terminal notifications. Keeping the side effects
// (clearing the cart, finalising the order) behind this interface means
// the poller can later be swapped for a webhook-driven watcher without
// touching checkout.
type Observer interface {
	OnCompleted(ctx context.Context, checkoutRequestID string)
	OnFailed(ctx context.Context, checkoutRequestID string)
	OnTimedOut(ctx context.Context, checkoutRequestID string)
}

// Coordinator polls a StatusSource on a fixed interval for a bounded
// number of attempts, then reports the outcome to its Observer.
type Coordinator struct {
	source      StatusSource
	observer    Observer
	interval    time.Duration
	maxAttempts int
	log         *zap.Logger
}

func NewCoordinator(source StatusSource, observer Observer, interval time.Duration, maxAttempts int, log *zap.Logger) *Coordinator {
	return &Coordinator{
		source:      source,
		observer:    observer,
		interval:    interval,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// Watch blocks until the transaction reaches a terminal status, the
// attempt budget runs out, or ctx is cancelled. Exactly maxAttempts
// lookups are made when nothing terminal ever shows up; after that the
// payment may still complete on the gateway side with no observer,
// which is why the timed-out path only warns and leaves state alone.
//
// A lookup error aborts the loop rather than retrying: the status read
// is local, so a failure there means something is wrong enough that
// hammering it on the same interval won't help.
func (co *Coordinator) Watch(ctx context.Context, checkoutRequestID string) Outcome {
	ticker := time.NewTicker(co.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= co.maxAttempts; attempt++ {
		status, err := co.source.Status(ctx, checkoutRequestID)
		if err != nil {
			co.log.Error("payment status lookup failed, abandoning poll",
				zap.String("checkout_request_id", checkoutRequestID),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return OutcomeAborted
		}

		switch status {
		case models.TransactionCompleted:
			co.log.Info("payment completed",
				zap.String("checkout_request_id", checkoutRequestID),
				zap.Int("attempt", attempt))
			co.observer.OnCompleted(ctx, checkoutRequestID)
			return OutcomeCompleted
		case models.TransactionFailed:
			co.log.Info("payment failed",
				zap.String("checkout_request_id", checkoutRequestID),
				zap.Int("attempt", attempt))
			co.observer.OnFailed(ctx, checkoutRequestID)
			return OutcomeFailed
		}

		if attempt == co.maxAttempts {
			break
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			co.log.Warn("payment watch cancelled",
				zap.String("checkout_request_id", checkoutRequestID))
			return OutcomeAborted
		}
	}

	co.log.Warn("payment status unknown after polling window",
		zap.String("checkout_request_id", checkoutRequestID),
		zap.Int("attempts", co.maxAttempts))
	co.observer.OnTimedOut(ctx, checkoutRequestID)
	return OutcomeTimedOut
}
