package kafka

import (
	"context"
	"errors"
	"strconv"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"workshop-dispatch/internal/backend"
	"workshop-dispatch/internal/service"
)

type Config struct {
	Brokers     []string
	GroupID     string
	Topic       string
	DLQ         string
	MaxRetries  int
	BaseBackoff time.Duration
}

// Handler processes one dispatch request payload.
type Handler interface {
	HandleMessage(ctx context.Context, payload []byte) error
}

type Consumer struct {
	reader *kafka.Reader
	dlq    *kafka.Writer
	h      Handler
	cfg    Config
}

func NewConsumer(cfg Config, h Handler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        100 * time.Millisecond,
		CommitInterval: 0,
	})

	var w *kafka.Writer
	if cfg.DLQ != "" {
		w = &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.DLQ,
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		}
	}

	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 200 * time.Millisecond
	}

	return &Consumer{reader: r, dlq: w, h: h, cfg: cfg}
}

func (c *Consumer) Subscribe(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			logrus.WithError(err).Warn("kafka fetch error")
			if !sleep(ctx, 300*time.Millisecond) {
				return nil
			}
			continue
		}

		log := logrus.WithFields(logrus.Fields{
			"topic":     m.Topic,
			"partition": m.Partition,
			"offset":    m.Offset,
			"key":       string(m.Key),
		})
		log.Debug("dispatch request fetched")

		attempts, last := c.handle(ctx, m.Value)
		if last == nil {
			if err := c.reader.CommitMessages(ctx, m); err != nil {
				log.WithError(err).Warn("commit failed")
			}
			continue
		}
		if ctx.Err() != nil {
			return nil
		}

		if c.dlq != nil {
			dlqMsg := kafka.Message{
				Key:   m.Key,
				Value: m.Value,
				Headers: append(m.Headers,
					kafka.Header{Key: "x-dlq-reason", Value: []byte(trimErr(last))},
					kafka.Header{Key: "x-dlq-attempts", Value: []byte(strconv.Itoa(attempts))},
					kafka.Header{Key: "x-dlq-ts", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
					kafka.Header{Key: "x-dlq-source-topic", Value: []byte(c.reader.Config().Topic)},
					kafka.Header{Key: "x-dlq-group", Value: []byte(c.reader.Config().GroupID)},
				),
			}
			if err := c.dlq.WriteMessages(ctx, dlqMsg); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.WithError(err).Error("write to DLQ failed")
				sleep(ctx, 500*time.Millisecond)
				continue
			}
			log.WithError(last).WithField("attempts", attempts).Warn("dispatch request moved to DLQ")
		} else {
			log.WithError(last).Warn("DLQ disabled, dispatch request dropped")
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.WithError(err).Warn("commit after DLQ failed")
		}
	}
}

// handle runs the handler with retries and returns the attempts made and the last error,
// nil on success.
func (c *Consumer) handle(ctx context.Context, payload []byte) (int, error) {
	var last error
	attempt := 0
	for ; attempt <= c.cfg.MaxRetries; attempt++ {
		if !sleep(ctx, backoff(attempt, c.cfg.BaseBackoff)) {
			return attempt, ctx.Err()
		}
		last = c.h.HandleMessage(ctx, payload)
		if last == nil || isNonRetryable(last) {
			return attempt + 1, last
		}
	}
	return attempt, last
}

func (c *Consumer) Close() error {
	var first error
	if c.reader != nil {
		if err := c.reader.Close(); err != nil {
			first = err
		}
	}
	if c.dlq != nil {
		if err := c.dlq.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func backoff(n int, base time.Duration) time.Duration {
	if n <= 0 {
		return 0
	}
	d := base * (1 << (n - 1))
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func trimErr(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	if len(s) > 1000 {
		return s[:1000]
	}
	return s
}

// isNonRetryable reports errors a redelivery cannot fix. A busy dispatcher and an
// unreachable backend are retried; a partially populated group is left for ResumeGroup.
func isNonRetryable(err error) bool {
	switch {
	case errors.Is(err, service.ErrDecode),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrTerminalState),
		errors.Is(err, service.ErrPartialSubmission):
		return true
	}
	return backend.IsRejection(err)
}
