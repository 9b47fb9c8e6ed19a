// Package timeouts provides centralized timeout values for calls to the Dojo API.
//
// By default no client-side timeout is applied: a hung call keeps its view
// loading until the server (or the transport) gives up. Timeouts can be
// enabled at startup using Configure().
//
// Guidelines:
//   - Request: every REST call made through the api client
//   - Login: the credential exchange, which may be slower (password hashing)
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values. Zero means no deadline.
const (
	DefaultRequest time.Duration = 0
	DefaultLogin   time.Duration = 0
)

// mu protects all timeout values from concurrent access.
var mu sync.RWMutex

var (
	request = DefaultRequest
	login   = DefaultLogin
)

// Request returns the timeout for ordinary REST calls.
func Request() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return request
}

// Login returns the timeout for the credential exchange.
func Login() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return login
}

// Config holds timeout configuration values.
// Negative values are ignored (current values are kept); zero disables the timeout.
type Config struct {
	Request time.Duration
	Login   time.Duration
}

// Configure sets timeout values. Call it during startup before any view loads.
//
// Example:
//
//	timeouts.Configure(timeouts.Config{Request: 15 * time.Second})
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Request >= 0 {
		request = cfg.Request
	}
	if cfg.Login >= 0 {
		login = cfg.Login
	}
}

// Reset restores all timeouts to their default values.
// Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	request = DefaultRequest
	login = DefaultLogin
}

// Current returns the current timeout configuration as a Config struct.
// Useful for logging or debugging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{
		Request: request,
		Login:   login,
	}
}

// WithTimeout derives a context for one operation. A zero timeout returns a
// plain cancelable context. The returned cancel function logs a warning if
// the deadline was hit.
//
// Example:
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Request(), c.log, "GET /groups/")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
