package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kaytu-io/assistant-relay/services/relay/metrics"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	DefaultInterval    = time.Second
	DefaultMaxAttempts = 60
)

// not defined by the pinned go-openai release
const runStatusIncomplete openai.RunStatus = "incomplete"

var (
	ErrRequiresAction = errors.New("run requires action, function calling is not supported")
	ErrTimeout        = errors.New("run did not reach a terminal status in time")
)

// RunFailedError reports a run that settled in a failure status.
type RunFailedError struct {
	Status    openai.RunStatus
	LastError *openai.RunLastError
}

func (e *RunFailedError) Error() string {
	if e.LastError != nil {
		return fmt.Sprintf("run ended with status %s: %s: %s", e.Status, e.LastError.Code, e.LastError.Message)
	}
	return fmt.Sprintf("run ended with status %s", e.Status)
}

// RetrieveError wraps a failure to query the run status.
type RetrieveError struct {
	Attempt int
	Err     error
}

func (e *RetrieveError) Error() string {
	return fmt.Sprintf("retrieve run (attempt %d): %v", e.Attempt, e.Err)
}

func (e *RetrieveError) Unwrap() error {
	return e.Err
}

type Outcome string

const (
	OutcomePending        Outcome = "pending"
	OutcomeCompleted      Outcome = "completed"
	OutcomeFailed         Outcome = "failed"
	OutcomeRequiresAction Outcome = "requires_action"
	OutcomeTimeout        Outcome = "timeout"
	OutcomeError          Outcome = "error"
)

// Classify maps a run status onto the poller's outcomes. Unknown statuses are pending.
func Classify(status openai.RunStatus) Outcome {
	switch status {
	case openai.RunStatusCompleted:
		return OutcomeCompleted
	case openai.RunStatusCancelling,
		openai.RunStatusCancelled,
		openai.RunStatusExpired,
		openai.RunStatusFailed,
		runStatusIncomplete:
		return OutcomeFailed
	case openai.RunStatusRequiresAction:
		return OutcomeRequiresAction
	default:
		return OutcomePending
	}
}

type RunRetriever interface {
	RetrieveRun(ctx context.Context, threadID, runID string) (openai.Run, error)
}

type Option func(*Poller)

func WithInterval(interval time.Duration) Option {
	return func(p *Poller) {
		p.interval = interval
	}
}

func WithMaxAttempts(maxAttempts int) Option {
	return func(p *Poller) {
		p.maxAttempts = maxAttempts
	}
}

type Poller struct {
	logger      *zap.Logger
	client      RunRetriever
	interval    time.Duration
	maxAttempts int
}

func New(logger *zap.Logger, client RunRetriever, opts ...Option) *Poller {
	p := &Poller{
		logger:      logger.Named("poller"),
		client:      client,
		interval:    DefaultInterval,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait queries the run until it settles or the attempt budget is spent.
// It returns the completed run, or an error describing why it didn't complete.
func (p *Poller) Wait(ctx context.Context, threadID, runID string) (openai.Run, error) {
	start := time.Now()

	run, attempts, outcome, err := p.wait(ctx, threadID, runID)

	metrics.RunsCount.WithLabelValues(string(outcome)).Inc()
	metrics.RunPollAttempts.Observe(float64(attempts))
	metrics.RunDuration.WithLabelValues(string(outcome)).Observe(time.Since(start).Seconds())

	return run, err
}

func (p *Poller) wait(ctx context.Context, threadID, runID string) (openai.Run, int, Outcome, error) {
	logger := p.logger.With(zap.String("thread_id", threadID), zap.String("run_id", runID))

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		run, err := p.client.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			logger.Error("failed to retrieve run", zap.Int("attempt", attempt), zap.Error(err))
			return openai.Run{}, attempt, OutcomeError, &RetrieveError{Attempt: attempt, Err: err}
		}

		logger.Debug("run status",
			zap.String("status", string(run.Status)),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.maxAttempts),
		)

		switch outcome := Classify(run.Status); outcome {
		case OutcomeCompleted:
			return run, attempt, outcome, nil
		case OutcomeFailed:
			err := &RunFailedError{Status: run.Status}
			if run.Status == openai.RunStatusFailed {
				err.LastError = run.LastError
			}
			logger.Warn("run failed", zap.Error(err))
			return run, attempt, outcome, err
		case OutcomeRequiresAction:
			logger.Warn("run requires action", zap.Int("attempt", attempt))
			return run, attempt, outcome, ErrRequiresAction
		}

		if attempt == p.maxAttempts {
			break
		}

		if err := p.sleep(ctx); err != nil {
			return openai.Run{}, attempt, OutcomeError, err
		}
	}

	logger.Warn("run timed out", zap.Int("max_attempts", p.maxAttempts))
	return openai.Run{}, p.maxAttempts, OutcomeTimeout, ErrTimeout
}

func (p *Poller) sleep(ctx context.Context) error {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
