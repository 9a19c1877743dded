package cache

import (
	"context"
	"net"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/shopcart/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ReadyMarker receives the "connection is ready" signal from the Redis client
type ReadyMarker interface {
	MarkConnected()
}

// NewRedisClient creates a Redis client for the given configuration.
// The client connects lazily; use PingDialer to drive the first connection.
// A non-nil hook is installed both as the client hook and as the
// OnConnect callback, so it sees dial failures and completed handshakes.
func NewRedisClient(cfg config.RedisConfig, hook *ConnectionHook) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if hook != nil {
		opts.OnConnect = hook.OnConnect
	}
	client := redis.NewClient(opts)
	if hook != nil {
		client.AddHook(hook)
	}
	return client
}

// PingDialer returns a connection attempt that succeeds once Redis answers PING
func PingDialer(client redis.UniversalClient) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// ConnectionHook turns the client's own connection events into connection
// state. A failed dial is logged. A connection is reported ready only from
// OnConnect, which go-redis calls after AUTH, HELLO and SELECT succeeded.
type ConnectionHook struct {
	logger *zap.Logger

	mu    sync.RWMutex
	ready ReadyMarker
}

// NewConnectionHook creates a hook. Call ReportTo before the client is used.
func NewConnectionHook(logger *zap.Logger) *ConnectionHook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionHook{logger: logger}
}

// ReportTo sets the receiver of the ready signal
func (h *ConnectionHook) ReportTo(ready ReadyMarker) {
	h.mu.Lock()
	h.ready = ready
	h.mu.Unlock()
}

// OnConnect matches redis.Options.OnConnect
func (h *ConnectionHook) OnConnect(ctx context.Context, cn *redis.Conn) error {
	h.mu.RLock()
	ready := h.ready
	h.mu.RUnlock()

	if ready != nil {
		ready.MarkConnected()
	}
	return nil
}

// DialHook implements redis.Hook
func (h *ConnectionHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.logger.Error("Redis ERROR", zap.String("addr", addr), zap.Error(err))
			return nil, err
		}
		return conn, nil
	}
}

// ProcessHook implements redis.Hook
func (h *ConnectionHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return next
}

// ProcessPipelineHook implements redis.Hook
func (h *ConnectionHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

var _ redis.Hook = (*ConnectionHook)(nil)
