package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func TestExecuteRetriesTransientFailure(t *testing.T) {
	exec := NewExecutor(Policy{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
		BreakerEnabled: false,
	}, nil)

	attempts := 0
	errTransient := errors.New("transient")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{
			Retryable:     errors.Is(err, errTransient),
			RecordFailure: true,
		}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(Policy{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
		BreakerEnabled: false,
	}, nil)

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) ErrorClassification {
		return ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestSingleAttemptPolicyNeverRetries(t *testing.T) {
	exec := NewExecutor(func() Policy {
		p := SingleAttemptPolicy()
		p.BreakerEnabled = false
		return p
	}(), nil)

	attempts := 0
	errTransient := errors.New("transient")
	err := exec.Execute(context.Background(), "generate", func(context.Context) error {
		attempts++
		return errTransient
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("single attempt policy must call once, got %d attempts", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Policy{
		MaxAttempts:             1,
		InitialBackoff:          1 * time.Millisecond,
		MaxBackoff:              1 * time.Millisecond,
		Multiplier:              2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	}, nil)

	errDown := errors.New("down")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{
			Retryable:     false,
			RecordFailure: true,
		}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "op", func(context.Context) error {
			return errDown
		}, classifier)
		if !errors.Is(err, errDown) {
			t.Fatalf("expected failure on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, classifier)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
}

func TestBreakersAreIsolatedPerOperation(t *testing.T) {
	exec := NewExecutor(Policy{
		MaxAttempts:             1,
		InitialBackoff:          1 * time.Millisecond,
		MaxBackoff:              1 * time.Millisecond,
		Multiplier:              2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	}, nil)

	errDown := errors.New("down")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		_ = exec.Execute(context.Background(), "search", func(context.Context) error {
			return errDown
		}, classifier)
	}

	called := false
	err := exec.Execute(context.Background(), "generate", func(context.Context) error {
		called = true
		return nil
	}, classifier)
	if err != nil || !called {
		t.Fatalf("unrelated operation must not share the breaker: err=%v called=%v", err, called)
	}
}
