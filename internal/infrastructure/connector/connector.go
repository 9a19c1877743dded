// Package connector establishes connections to backing stores and keeps
// retrying until one succeeds.
package connector

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultRetryDelay is the fixed pause between two failed attempts.
const DefaultRetryDelay = 2000 * time.Millisecond

// DefaultAttemptTimeout bounds a single connection attempt.
const DefaultAttemptTimeout = 5 * time.Second

// State is the connection state of a backing store
type State int32

const (
	StateDisconnected State = iota
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// DialFunc performs one connection attempt.
type DialFunc func(ctx context.Context) error

// Status is the read side of a Connector.
type Status interface {
	Connected() bool
}

// Connector owns the connection state of one backing store.
// The retry loop and MarkConnected are the only writers.
type Connector struct {
	name           string
	dial           DialFunc
	retryDelay     time.Duration
	attemptTimeout time.Duration
	logger         *zap.Logger
	wait           func(ctx context.Context, d time.Duration) error

	state    atomic.Int32
	attempts atomic.Int64
	ready    chan struct{}
	once     sync.Once

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool

	onAttempt func(err error)
}

// Option configures a Connector
type Option func(*Connector)

// WithRetryDelay sets the pause between failed attempts
func WithRetryDelay(d time.Duration) Option {
	return func(c *Connector) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// WithAttemptTimeout bounds each dial call
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Connector) {
		if d > 0 {
			c.attemptTimeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Connector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAttemptObserver registers a callback invoked after every attempt with its result.
func WithAttemptObserver(fn func(err error)) Option {
	return func(c *Connector) {
		c.onAttempt = fn
	}
}

// New creates a disconnected Connector. Nothing happens until Start is called.
func New(name string, dial DialFunc, opts ...Option) *Connector {
	c := &Connector{
		name:           name,
		dial:           dial,
		retryDelay:     DefaultRetryDelay,
		attemptTimeout: DefaultAttemptTimeout,
		logger:         zap.NewNop(),
		wait:           sleep,
		ready:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("store", name))
	return c
}

// Name returns the backing store name
func (c *Connector) Name() string {
	return c.name
}

// State returns the current connection state
func (c *Connector) State() State {
	return State(c.state.Load())
}

// Connected reports whether a connection attempt has succeeded
func (c *Connector) Connected() bool {
	return c.State() == StateConnected
}

// Attempts returns the number of dial attempts made so far
func (c *Connector) Attempts() int64 {
	return c.attempts.Load()
}

// Ready is closed once the store is connected
func (c *Connector) Ready() <-chan struct{} {
	return c.ready
}

// MarkConnected moves the connector to the connected state. It is used by
// client libraries that report readiness through their own events.
func (c *Connector) MarkConnected() {
	c.once.Do(func() {
		c.state.Store(int32(StateConnected))
		close(c.ready)
		c.logger.Info("backing store connected")
	})
}

// Start launches the connection loop in the background and returns immediately.
// Calling Start more than once has no effect.
func (c *Connector) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(ctx)
}

// Stop cancels a pending retry and waits for the loop to exit
func (c *Connector) Stop(ctx context.Context) error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the disconnected -> connected state machine: attempt, and on
// failure wait the retry delay and attempt again.
func (c *Connector) run(ctx context.Context) {
	defer close(c.done)

	for !c.Connected() {
		err := c.attempt(ctx)
		if c.onAttempt != nil {
			c.onAttempt(err)
		}
		if err == nil {
			c.MarkConnected()
			return
		}
		if ctx.Err() != nil || c.Connected() {
			return
		}

		c.logger.Error("backing store connection failed",
			zap.Error(err),
			zap.Int64("attempt", c.Attempts()),
			zap.Duration("retry_in", c.retryDelay),
		)

		if err := c.waitRetry(ctx); err != nil {
			return
		}
	}
}

// waitRetry pauses for the retry delay, ending early if the store is
// reported connected in the meantime.
func (c *Connector) waitRetry(ctx context.Context) error {
	waitCtx, stop := context.WithCancel(ctx)
	defer stop()

	go func() {
		select {
		case <-c.ready:
			stop()
		case <-waitCtx.Done():
		}
	}()

	err := c.wait(waitCtx, c.retryDelay)
	if c.Connected() {
		return nil
	}
	return err
}

func (c *Connector) attempt(ctx context.Context) error {
	c.attempts.Add(1)

	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	return c.dial(attemptCtx)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
