package mq

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

func newTestConsumer(handlers map[string]HandlerFunc) *KafkaConsumer {
	return &KafkaConsumer{
		handlers: handlers,
		log:      slog.New(slog.DiscardHandler),
	}
}

func newRecord(topic string, offset int64, value string) *kgo.Record {
	return &kgo.Record{Topic: topic, Offset: offset, Value: []byte(value)}
}

func TestHandleBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Should handle every record in order when nothing fails", func(t *testing.T) {
		var seen []string
		c := newTestConsumer(map[string]HandlerFunc{
			"events": func(_ context.Context, _ string, payload []byte) error {
				seen = append(seen, string(payload))
				return nil
			},
		})

		recs := []*kgo.Record{
			newRecord("events", 0, "a"),
			newRecord("events", 1, "b"),
			newRecord("events", 2, "c"),
		}

		handled, failed := c.handleBatch(ctx, recs)
		require.Nil(t, failed)
		require.Len(t, handled, 3)
		assert.Equal(t, []string{"a", "b", "c"}, seen)
	})

	t.Run("Should stop at the first failed record and not handle the rest", func(t *testing.T) {
		var seen []string
		c := newTestConsumer(map[string]HandlerFunc{
			"events": func(_ context.Context, _ string, payload []byte) error {
				if string(payload) == "boom" {
					return errors.New("enqueue failed")
				}
				seen = append(seen, string(payload))
				return nil
			},
		})

		recs := []*kgo.Record{
			newRecord("events", 0, "a"),
			newRecord("events", 1, "b"),
			newRecord("events", 2, "boom"),
			newRecord("events", 3, "d"),
		}

		handled, failed := c.handleBatch(ctx, recs)
		require.NotNil(t, failed)
		assert.Equal(t, int64(2), failed.Offset)
		require.Len(t, handled, 2)
		assert.Equal(t, int64(1), handled[1].Offset)
		assert.Equal(t, []string{"a", "b"}, seen)
	})

	t.Run("Should treat a panicking handler as a failed record", func(t *testing.T) {
		c := newTestConsumer(map[string]HandlerFunc{
			"events": func(_ context.Context, _ string, payload []byte) error {
				if string(payload) == "boom" {
					panic("handler blew up")
				}
				return nil
			},
		})

		recs := []*kgo.Record{
			newRecord("events", 0, "a"),
			newRecord("events", 1, "boom"),
		}

		handled, failed := c.handleBatch(ctx, recs)
		require.NotNil(t, failed)
		assert.Equal(t, int64(1), failed.Offset)
		assert.Len(t, handled, 1)
	})

	t.Run("Should count records without a handler as handled", func(t *testing.T) {
		c := newTestConsumer(map[string]HandlerFunc{})

		handled, failed := c.handleBatch(ctx, []*kgo.Record{newRecord("unknown", 0, "a")})
		require.Nil(t, failed)
		assert.Len(t, handled, 1)
	})
}
