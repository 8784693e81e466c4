package social

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/goliatone/go-errors"
	threadly "github.com/goliatone/threadly-client"
)

// DefaultCallbackPath is where the backend is configured to redirect after an
// external login.
const DefaultCallbackPath = "/oauth/callback"

// ErrNoToken is returned when the callback arrives without a token parameter.
var ErrNoToken = errors.New("callback carried no token", errors.CategoryAuth).
	WithTextCode("oauth_callback_no_token").
	WithCode(errors.CodeUnauthorized)

// CallbackListener runs a loopback HTTP endpoint that captures the session
// token from the external-login redirect. The token is delivered once to
// Wait and never re-read.
type CallbackListener struct {
	addr   string
	path   string
	app    *fiber.App
	tokens chan string
	once   sync.Once
	logger threadly.Logger
}

// CallbackOption customizes listener construction.
type CallbackOption func(*CallbackListener)

// WithCallbackPath overrides the callback route.
func WithCallbackPath(path string) CallbackOption {
	return func(l *CallbackListener) {
		if path != "" {
			l.path = path
		}
	}
}

// WithCallbackLogger overrides the default noop logger.
func WithCallbackLogger(logger threadly.Logger) CallbackOption {
	return func(l *CallbackListener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewCallbackListener builds a listener bound to addr, e.g. "127.0.0.1:8910".
func NewCallbackListener(addr string, opts ...CallbackOption) *CallbackListener {
	l := &CallbackListener{
		addr:   addr,
		path:   DefaultCallbackPath,
		tokens: make(chan string, 1),
		logger: defCallbackLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get(l.path, l.handleCallback)
	l.app = app

	return l
}

// Start serves the callback route in the background.
func (l *CallbackListener) Start() {
	go func() {
		if err := l.app.Listen(l.addr); err != nil {
			l.logger.Error("callback listener stopped: %v", err)
		}
	}()
}

// Wait blocks until a token arrives or ctx is done.
func (l *CallbackListener) Wait(ctx context.Context) (string, error) {
	select {
	case token := <-l.tokens:
		return token, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Shutdown stops the listener.
func (l *CallbackListener) Shutdown() error {
	return l.app.Shutdown()
}

// App exposes the underlying fiber app, mainly for embedding and tests.
func (l *CallbackListener) App() *fiber.App {
	return l.app
}

func (l *CallbackListener) handleCallback(c *fiber.Ctx) error {
	// the query string is backed by fiber's request buffer; copy before it
	// outlives the handler
	token := utils.CopyString(c.Query("token"))
	if token == "" {
		l.logger.Warn("external login callback without token")
		return c.Status(fiber.StatusBadRequest).SendString("Missing token.")
	}

	delivered := false
	l.once.Do(func() {
		l.tokens <- token
		delivered = true
	})
	if !delivered {
		// token already consumed once, refuse replays
		return c.Status(fiber.StatusConflict).SendString("Login already completed.")
	}

	return c.SendString("Login complete. You can return to the app.")
}

type defCallbackLogger struct{}

func (defCallbackLogger) Debug(string, ...any) {}
func (defCallbackLogger) Info(string, ...any)  {}
func (defCallbackLogger) Warn(string, ...any)  {}
func (defCallbackLogger) Error(string, ...any) {}
