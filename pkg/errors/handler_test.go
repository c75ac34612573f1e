package errors

import (
	"fmt"
	"testing"
	"time"
)

func TestHandlerShutsDownOnBurst(t *testing.T) {
	shutdown := make(chan struct{})
	exited := make(chan int, 1)

	h := NewErrorHandler(Options{
		MaxErrors:     3,
		ResetInterval: time.Hour,
		CheckInterval: 5 * time.Millisecond,
		Shutdown:      func() { close(shutdown) },
		Exit:          func(code int) { exited <- code },
	})
	defer h.Stop()

	for i := 0; i < 4; i++ {
		h.Capture(fmt.Errorf("fallo %d", i), "test")
	}

	select {
	case code := <-exited:
		if code != 1 {
			t.Errorf("exit code = %d, want 1", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not shut down")
	}

	select {
	case <-shutdown:
	default:
		t.Error("Shutdown callback was not called before exit")
	}
}

func TestHandlerResetsCounter(t *testing.T) {
	h := NewErrorHandler(Options{
		MaxErrors:     100,
		ResetInterval: 10 * time.Millisecond,
		CheckInterval: time.Hour,
		Exit:          func(int) { t.Error("unexpected exit") },
	})
	defer h.Stop()

	h.IncrementError()
	h.IncrementError()
	if h.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", h.Count())
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("counter was never reset")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCaptureNil(t *testing.T) {
	h := NewErrorHandler(Options{CheckInterval: time.Hour, Exit: func(int) {}})
	defer h.Stop()

	h.Capture(nil, "test")
	if h.Count() != 0 {
		t.Errorf("Count() = %d after nil error, want 0", h.Count())
	}
}

func TestRecoverMiddleware(t *testing.T) {
	done := make(chan struct{})
	Go(func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("guarded goroutine did not finish")
	}
}
