package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func TestNew(t *testing.T) {
	cfg := Config{
		Name:             "test-circuit",
		FailureThreshold: 3,
		ResetTimeout:     20 * time.Second,
	}

	cb := New(cfg)

	if cb == nil {
		t.Fatal("expected circuit breaker, got nil")
	}
	if cb.Name() != "test-circuit" {
		t.Errorf("expected name='test-circuit', got %q", cb.Name())
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected initial state=Closed, got %v", cb.State())
	}
}

func TestCircuitBreaker_Execute_Success(t *testing.T) {
	cb := New(DefaultConfig("test-circuit"))

	result, err := cb.Execute(func() (interface{}, error) {
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected result='success', got %v", result)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected state=Closed after success, got %v", cb.State())
	}
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := New(Config{
		Name:             "test-circuit",
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
	})

	testErr := errors.New("provider down")
	invocations := 0
	fail := func() (interface{}, error) {
		invocations++
		return nil, testErr
	}

	// Two consecutive failures trip the circuit
	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(fail); !errors.Is(err, testErr) {
			t.Fatalf("attempt %d: expected provider error, got %v", i+1, err)
		}
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("expected state=Open after 2 failures, got %v", cb.State())
	}

	// Third call is rejected without invoking the operation
	_, err := cb.Execute(fail)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
	if invocations != 2 {
		t.Errorf("expected operation not invoked while open, invocations=%d", invocations)
	}
	if !IsOpenError(err) {
		t.Error("expected IsOpenError=true for open-state rejection")
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := New(Config{
		Name:             "test-circuit",
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
	})

	testErr := errors.New("provider down")

	// failure, success, failure: never two consecutive failures
	_, _ = cb.Execute(func() (interface{}, error) { return nil, testErr })
	_, _ = cb.Execute(func() (interface{}, error) { return "ok", nil })
	_, _ = cb.Execute(func() (interface{}, error) { return nil, testErr })

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected state=Closed, got %v", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	resetTimeout := 50 * time.Millisecond
	testErr := errors.New("provider down")

	trip := func(cb *CircuitBreaker) {
		for i := 0; i < 2; i++ {
			_, _ = cb.Execute(func() (interface{}, error) { return nil, testErr })
		}
	}

	t.Run("successful probe closes the circuit", func(t *testing.T) {
		cb := New(Config{Name: "probe", FailureThreshold: 2, ResetTimeout: resetTimeout})
		trip(cb)
		if cb.State() != gobreaker.StateOpen {
			t.Fatalf("expected Open, got %v", cb.State())
		}

		time.Sleep(resetTimeout + 20*time.Millisecond)

		if _, err := cb.Execute(func() (interface{}, error) { return "ok", nil }); err != nil {
			t.Fatalf("expected probe to run, got %v", err)
		}
		if cb.State() != gobreaker.StateClosed {
			t.Errorf("expected Closed after successful probe, got %v", cb.State())
		}
	})

	t.Run("failed probe reopens the circuit", func(t *testing.T) {
		cb := New(Config{Name: "probe", FailureThreshold: 2, ResetTimeout: resetTimeout})
		trip(cb)

		time.Sleep(resetTimeout + 20*time.Millisecond)

		if _, err := cb.Execute(func() (interface{}, error) { return nil, testErr }); !errors.Is(err, testErr) {
			t.Fatalf("expected probe failure, got %v", err)
		}
		if cb.State() != gobreaker.StateOpen {
			t.Errorf("expected Open after failed probe, got %v", cb.State())
		}
	})
}

func TestCircuitBreaker_IsOpen(t *testing.T) {
	cb := New(Config{Name: "t", FailureThreshold: 1, ResetTimeout: time.Minute})
	if cb.IsOpen() {
		t.Error("expected closed breaker")
	}
	_, _ = cb.Execute(func() (interface{}, error) { return nil, errors.New("boom") })
	if !cb.IsOpen() {
		t.Error("expected open breaker after threshold failure")
	}
}

func TestCircuitBreaker_IgnoredErrorsDoNotTrip(t *testing.T) {
	cb := New(Config{Name: "t", FailureThreshold: 2, ResetTimeout: time.Minute})

	cancelled := errors.New("fetch aborted: context canceled")
	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (interface{}, error) {
			return nil, Ignore(cancelled)
		})
		if !errors.Is(err, cancelled) {
			t.Fatalf("expected wrapped error to propagate, got %v", err)
		}
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected state=Closed after ignored errors, got %v", cb.State())
	}

	// Real failures still count.
	boom := errors.New("boom")
	_, _ = cb.Execute(func() (interface{}, error) { return nil, boom })
	_, _ = cb.Execute(func() (interface{}, error) { return nil, boom })
	if cb.State() != gobreaker.StateOpen {
		t.Errorf("expected state=Open after real failures, got %v", cb.State())
	}
}

func TestRegistry_LazyPerProvider(t *testing.T) {
	r := NewRegistry(2, time.Minute)

	a := r.Get("provider-a")
	b := r.Get("provider-b")

	if a == b {
		t.Error("expected distinct breakers per provider")
	}
	if got := r.Get("provider-a"); got != a {
		t.Error("expected same breaker instance on repeated Get")
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 breakers, got %d", r.Len())
	}
	if a.Name() != "provider-a" {
		t.Errorf("expected breaker named after provider, got %q", a.Name())
	}
}

func TestRegistry_IsolatedState(t *testing.T) {
	r := NewRegistry(1, time.Minute)

	_, _ = r.Get("bad").Execute(func() (interface{}, error) { return nil, errors.New("boom") })

	if !r.Get("bad").IsOpen() {
		t.Error("expected 'bad' breaker open")
	}
	if r.Get("good").IsOpen() {
		t.Error("expected 'good' breaker unaffected")
	}
}
