package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/John-Gaitho/branded-in-grace-api/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// scriptedSource replays a fixed status sequence, sticking on the last
// entry once the script is exhausted.
type scriptedSource struct {
	statuses []models.TransactionStatus
	err      error
	calls    int
}

func (s *scriptedSource) Status(ctx context.Context, checkoutRequestID string) (models.TransactionStatus, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	idx := s.calls - 1
	if idx >= len(s.statuses) {
		idx = len(s.statuses) - 1
	}
	return s.statuses[idx], nil
}

type recordingObserver struct {
	completed, failed, timedOut int
}

func (o *recordingObserver) OnCompleted(ctx context.Context, id string) { o.completed++ }
func (o *recordingObserver) OnFailed(ctx context.Context, id string)    { o.failed++ }
func (o *recordingObserver) OnTimedOut(ctx context.Context, id string)  { o.timedOut++ }

func TestWatchStopsOnCompleted(t *testing.T) {
	source := &scriptedSource{statuses: []models.TransactionStatus{
		models.TransactionPending,
		models.TransactionPending,
		models.TransactionCompleted,
	}}
	obs := &recordingObserver{}
	co := NewCoordinator(source, obs, time.Millisecond, 10, zap.NewNop())

	outcome := co.Watch(context.Background(), "ws_CO_1")

	assert.Equal(t, OutcomeCompleted, outcome)
	assert.Equal(t, 3, source.calls)
	assert.Equal(t, 1, obs.completed)
	assert.Zero(t, obs.failed)
	assert.Zero(t, obs.timedOut)
}

func TestWatchStopsOnFailed(t *testing.T) {
	source := &scriptedSource{statuses: []models.TransactionStatus{
		models.TransactionPending,
		models.TransactionFailed,
	}}
	obs := &recordingObserver{}
	co := NewCoordinator(source, obs, time.Millisecond, 10, zap.NewNop())

	outcome := co.Watch(context.Background(), "ws_CO_1")

	assert.Equal(t, OutcomeFailed, outcome)
	assert.Equal(t, 2, source.calls)
	assert.Equal(t, 1, obs.failed)
	assert.Zero(t, obs.completed)
}

func TestWatchTimesOutAfterExactlyMaxAttempts(t *testing.T) {
	source := &scriptedSource{statuses: []models.TransactionStatus{models.TransactionPending}}
	obs := &recordingObserver{}
	co := NewCoordinator(source, obs, time.Millisecond, 5, zap.NewNop())

	outcome := co.Watch(context.Background(), "ws_CO_1")

	assert.Equal(t, OutcomeTimedOut, outcome)
	assert.Equal(t, 5, source.calls)
	assert.Equal(t, 1, obs.timedOut)
	assert.Zero(t, obs.completed)
	assert.Zero(t, obs.failed)
}

func TestWatchAbortsOnLookupError(t *testing.T) {
	source := &scriptedSource{err: errors.New("connection refused")}
	obs := &recordingObserver{}
	co := NewCoordinator(source, obs, time.Millisecond, 10, zap.NewNop())

	outcome := co.Watch(context.Background(), "ws_CO_1")

	assert.Equal(t, OutcomeAborted, outcome)
	assert.Equal(t, 1, source.calls, "a lookup error must not be retried")
	assert.Zero(t, obs.completed+obs.failed+obs.timedOut)
}

func TestWatchAbortsOnCancelledContext(t *testing.T) {
	source := &scriptedSource{statuses: []models.TransactionStatus{models.TransactionPending}}
	obs := &recordingObserver{}
	co := NewCoordinator(source, obs, time.Minute, 10, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := co.Watch(ctx, "ws_CO_1")

	assert.Equal(t, OutcomeAborted, outcome)
	assert.Equal(t, 1, source.calls)
	assert.Zero(t, obs.timedOut, "cancellation is not a timeout")
}
