// Package errors is the anti-crash layer: it counts recovered panics and
// reported errors, and shuts the process down when they arrive in a burst.
package errors

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/webhook"
)

// Options configures an ErrorHandler. Zero values use the defaults.
type Options struct {
	WebhookURL string
	// Shutdown runs before the process exits on an error burst.
	Shutdown func()
	// MaxErrors tolerated within one ResetInterval. Default 15.
	MaxErrors int32
	// ResetInterval clears the counter. Default 5s.
	ResetInterval time.Duration
	// CheckInterval polls the counter. Default 1s.
	CheckInterval time.Duration
	// Exit defaults to os.Exit.
	Exit func(code int)
}

// ErrorHandler manages error counting and reporting
type ErrorHandler struct {
	errorCount int32
	opts       Options
	hook       *webhook.Hook
	stopChan   chan struct{}
	stopOnce   sync.Once
}

// ReportErrorOptions contains options for reporting an error
type ReportErrorOptions struct {
	Error   string
	Message string
}

var (
	handler *ErrorHandler
	once    sync.Once
)

// Init initializes the global error handler
func Init(webhookURL string, shutdownFunc func()) *ErrorHandler {
	once.Do(func() {
		handler = NewErrorHandler(Options{WebhookURL: webhookURL, Shutdown: shutdownFunc})
	})
	return handler
}

// Get returns the global error handler instance
func Get() *ErrorHandler {
	return handler
}

// NewErrorHandler creates an ErrorHandler and starts its monitor.
func NewErrorHandler(opts Options) *ErrorHandler {
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = 15
	}
	if opts.ResetInterval <= 0 {
		opts.ResetInterval = 5 * time.Second
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = time.Second
	}
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}

	h := &ErrorHandler{
		opts:     opts,
		hook:     webhook.MustParseOrNil(opts.WebhookURL),
		stopChan: make(chan struct{}),
	}
	go h.monitor()
	return h
}

func (h *ErrorHandler) monitor() {
	reset := time.NewTicker(h.opts.ResetInterval)
	check := time.NewTicker(h.opts.CheckInterval)
	defer reset.Stop()
	defer check.Stop()

	for {
		select {
		case <-reset.C:
			atomic.StoreInt32(&h.errorCount, 0)
		case <-check.C:
			if atomic.LoadInt32(&h.errorCount) > h.opts.MaxErrors {
				h.shutdown()
				return
			}
		case <-h.stopChan:
			return
		}
	}
}

func (h *ErrorHandler) shutdown() {
	start := time.Now()
	logger.Warn("Se detectó un número demasiado alto de errores", "CRITICAL")
	logger.Warn("Apagando...", "CRITICAL")

	h.Report(ReportErrorOptions{
		Error:   "Critical Error",
		Message: "Número inusual de errores. Apagando...",
	})

	if h.opts.Shutdown != nil {
		h.opts.Shutdown()
	}

	logger.Warn(fmt.Sprintf("Finalizando proceso... Tiempo total: %v", time.Since(start)), "CRITICAL")
	h.opts.Exit(1)
}

// Stop stops the monitor goroutine
func (h *ErrorHandler) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
}

// Count is the number of errors seen in the current interval.
func (h *ErrorHandler) Count() int32 {
	return atomic.LoadInt32(&h.errorCount)
}

// IncrementError increments the error count
func (h *ErrorHandler) IncrementError() {
	count := atomic.AddInt32(&h.errorCount, 1)
	logger.Error(fmt.Sprintf("Error count: %d", count), "AntiCrash")
}

// Capture records a non-fatal error returned by a handler.
func (h *ErrorHandler) Capture(err error, where string) {
	if err == nil {
		return
	}
	h.IncrementError()
	logger.Error(fmt.Sprintf("%s: %v", where, err), "AntiCrash")
}

// HandlePanic handles a recovered panic
func (h *ErrorHandler) HandlePanic(recovered any) {
	h.IncrementError()
	logger.Debug("Unhandled Panic/Catch\n"+string(debug.Stack()), "AntiCrash")
	logger.Error(fmt.Sprintf("%v", recovered), "SYS")
}

// Report sends an error report to the error webhook
func (h *ErrorHandler) Report(data ReportErrorOptions) {
	if h.hook == nil {
		return
	}

	embed := webhook.Embed("Error "+data.Error, data.Message, 0xFF0000)
	if err := h.hook.Send(embed); err != nil {
		logger.Error(fmt.Sprintf("Failed to send error report: %v", err), "AntiCrash")
		return
	}
	logger.Warn("Sent ErrorReport to Webhook", "AntiCrash")
}

// RecoverMiddleware returns a recovery function for deferred calls:
//
//	defer errors.RecoverMiddleware()()
func RecoverMiddleware() func() {
	return func() {
		if r := recover(); r != nil {
			if handler != nil {
				handler.HandlePanic(r)
			} else {
				logger.Error(fmt.Sprintf("Panic recovered (no handler): %v", r), "AntiCrash")
			}
		}
	}
}

// Go runs fn in a goroutine guarded by RecoverMiddleware.
func Go(fn func()) {
	go func() {
		defer RecoverMiddleware()()
		fn()
	}()
}
