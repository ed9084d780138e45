package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/shopfloor-ops/shopcore/internal/platform/envutil"
	"github.com/shopfloor-ops/shopcore/internal/platform/logger"
)

// Bus fans events out beyond this process. NoopBus is used whenever
// REDIS_ADDR is unset — single-process deployments need no cross-
// process fan-out, and this keeps Redis an optional dependency rather
// than a required one (spec.md's ambient stack does not mandate a
// message broker).
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	StartForwarder(ctx context.Context, onEvent func(Event)) error
	Close() error
}

type NoopBus struct{}

func (NoopBus) Publish(context.Context, Event) error              { return nil }
func (NoopBus) StartForwarder(context.Context, func(Event)) error { return nil }
func (NoopBus) Close() error                                      { return nil }

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewBus returns a NoopBus when REDIS_ADDR is unset, otherwise a Redis
// pub/sub-backed Bus (grounded on the teacher's
// internal/clients/redis/sse_bus.go).
func NewBus(log *logger.Logger) (Bus, error) {
	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		return NoopBus{}, nil
	}
	channel := envutil.String("REDIS_CHANNEL", "shopcore.audit")

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisBus{log: log.With("service", "realtime.redisBus"), rdb: rdb, channel: channel}, nil
}

func (b *redisBus) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onEvent func(Event)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad redis audit event payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
