package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrPoison marks a message that can never be handled. It is logged and
// committed so the partition keeps moving.
var ErrPoison = errors.New("poison message")

type Handler func(ctx context.Context, key, value []byte) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader messageReader
	log    *zap.Logger
}

type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topic   string
	Logger  *zap.Logger
}

func NewConsumer(cfg ConsumerConfig) *Consumer {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:               cfg.Brokers,
		GroupID:               cfg.GroupID,
		Topic:                 cfg.Topic,
		StartOffset:           kafka.LastOffset,
		WatchPartitionChanges: true,

		MinBytes:          1e3,
		MaxBytes:          10e6,
		SessionTimeout:    10 * time.Second,
		RebalanceTimeout:  15 * time.Second,
		HeartbeatInterval: 3 * time.Second,
	})

	log := cfg.Logger.With(
		zap.String("component", "kafka.consumer"),
		zap.String("topic", cfg.Topic),
		zap.String("group", cfg.GroupID),
	)
	return &Consumer{reader: r, log: log}
}

// Consume fetches messages until ctx is done. A message is committed after h
// succeeds or reports ErrPoison. Any other handler error retries the same
// message with backoff; the next message is not fetched until it settles.
func (c *Consumer) Consume(ctx context.Context, h Handler) error {
	log := c.log
	log.Info("consumer started")

	backoff := 200 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Info("consumer stopped (ctx canceled)")
			return ctx.Err()
		default:
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped (ctx canceled)")
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				log.Debug("fetch EOF; retry", zap.Duration("backoff", backoff))
			} else {
				log.Warn("fetch failed; retry", zap.Error(err), zap.Duration("backoff", backoff))
			}
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		backoff = 200 * time.Millisecond

		if err := c.handle(ctx, h, msg); err != nil {
			log.Info("consumer stopped (ctx canceled)")
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				log.Info("commit interrupted by context cancel")
				return ctx.Err()
			}
			log.Warn("commit failed; will retry later", zap.Error(err))
		}
	}
}

// handle runs h until it succeeds or reports ErrPoison. The reader only
// commits forward, so a failed message is retried here rather than left
// behind a later commit. It returns only when ctx is done.
func (c *Consumer) handle(ctx context.Context, h Handler, msg kafka.Message) error {
	backoff := 200 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for attempt := 1; ; attempt++ {
		err := h(ctx, msg.Key, msg.Value)
		if err == nil {
			return nil
		}
		fields := []zap.Field{zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset), zap.Error(err)}
		if errors.Is(err, ErrPoison) {
			c.log.Warn("skipping poison message", fields...)
			return nil
		}
		c.log.Error("handler error; retry", append(fields, zap.Int("attempt", attempt), zap.Duration("backoff", backoff))...)
		if !sleep(ctx, backoff) {
			return ctx.Err()
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (c *Consumer) Close() error { return c.reader.Close() }

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
