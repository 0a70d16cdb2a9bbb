package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vmtuan/stockroom/internal/config"
	"github.com/vmtuan/stockroom/pkg/outbox"
)

type HandlerFunc func(ctx context.Context, topic string, payload []byte) error

type CleanupFunc func()

// Consumer delivers records to per-topic handlers. Delivery is at-least-once:
// only records whose handler succeeded are committed, and a failed record is
// fetched again on the next poll, so handlers must tolerate duplicates.
type Consumer interface {
	RegisterHandler(topic string, handler HandlerFunc) error
	Run(ctx context.Context) (CleanupFunc, error)
}

var _ Consumer = (*KafkaConsumer)(nil)

type KafkaConsumer struct {
	cl       *kgo.Client
	handlers map[string]HandlerFunc
	log      *slog.Logger
}

func NewKafkaConsumer(ctx context.Context, cfg config.Kafka, logger *slog.Logger) (*KafkaConsumer, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Addresses...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.AllowAutoTopicCreation(),
		kgo.AutoCommitMarks(),
		kgo.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := cl.Ping(pingCtx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("ping kafka: %w", err)
	}

	return &KafkaConsumer{
		cl:       cl,
		handlers: make(map[string]HandlerFunc),
		log:      logger,
	}, nil
}

func (c *KafkaConsumer) RegisterHandler(topic string, handler HandlerFunc) error {
	if _, exists := c.handlers[topic]; exists {
		return fmt.Errorf("handler for topic %s already registered", topic)
	}

	c.cl.AddConsumeTopics(topic)
	c.handlers[topic] = handler
	return nil
}

func (c *KafkaConsumer) Run(ctx context.Context) (CleanupFunc, error) {
	ctx, cancel := context.WithCancel(ctx)
	doneChan := make(chan struct{})

	go func() {
		defer close(doneChan)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				fetches := c.cl.PollFetches(ctx)
				if errs := fetches.Errors(); len(errs) > 0 {
					if errors.Is(errs[0].Err, context.Canceled) {
						// context cancelled, likely due to shutdown
						continue
					}

					c.log.ErrorContext(ctx, "error fetching messages",
						slog.Any("error", errs),
					)
					continue
				}

				rewinds := make(map[string]map[int32]kgo.EpochOffset)
				fetches.EachPartition(func(p kgo.FetchTopicPartition) {
					handled, failed := c.handleBatch(ctx, p.Records)
					if len(handled) > 0 {
						c.cl.MarkCommitRecords(handled...)
					}
					if failed != nil {
						if _, ok := rewinds[p.Topic]; !ok {
							rewinds[p.Topic] = make(map[int32]kgo.EpochOffset)
						}
						rewinds[p.Topic][p.Partition] = kgo.EpochOffset{
							Epoch:  failed.LeaderEpoch,
							Offset: failed.Offset,
						}
					}
				})

				if err := c.cl.CommitMarkedOffsets(ctx); err != nil {
					c.log.ErrorContext(ctx, "error committing offsets",
						slog.Any("error", err),
					)
				}

				if len(rewinds) > 0 {
					c.cl.SetOffsets(rewinds)
				}
			}
		}
	}()

	cleanup := func() {
		cancel()
		c.cl.Close()
		<-doneChan
	}

	return cleanup, nil
}

// handleBatch runs a partition's records in order and returns the prefix that
// was handled successfully plus the record that failed, if any. Processing
// stops at the first failure so the failed record and everything after it in
// the partition stay uncommitted and are fetched again.
func (c *KafkaConsumer) handleBatch(ctx context.Context, recs []*kgo.Record) (handled []*kgo.Record, failed *kgo.Record) {
	for _, rec := range recs {
		if err := c.handleRecord(ctx, rec); err != nil {
			return handled, rec
		}
		handled = append(handled, rec)
	}
	return handled, nil
}

func (c *KafkaConsumer) handleRecord(ctx context.Context, rec *kgo.Record) (err error) {
	ctx = outbox.InjectCorrelationIDFromRecord(ctx, rec)

	defer func() {
		if rvr := recover(); rvr != nil {
			span := trace.SpanFromContext(ctx)
			span.RecordError(fmt.Errorf("panic: %v", rvr))
			span.SetStatus(codes.Error, "panic in handler")

			c.log.ErrorContext(ctx, "panic in message handler",
				slog.String("topic", rec.Topic),
				slog.Any("recover", rvr),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("panic in handler: %v", rvr)
		}
	}()

	fn, exists := c.handlers[rec.Topic]
	if !exists {
		c.log.WarnContext(ctx, "no handler registered for topic",
			slog.String("topic", rec.Topic),
		)
		return nil
	}

	if err := fn(ctx, rec.Topic, rec.Value); err != nil {
		c.log.ErrorContext(ctx, "error handling message",
			slog.String("topic", rec.Topic),
			slog.String("key", string(rec.Key)),
			slog.Any("error", err),
		)
		return err
	}

	return nil
}

func (c *KafkaConsumer) Close() {
	c.cl.Close()
}
