package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vmtuan/stockroom/internal/model"
	"github.com/vmtuan/stockroom/internal/repository"
	"github.com/vmtuan/stockroom/internal/storage/mq"
)

// Service consumes product events and reacts to them. It is the read side of
// the outbox: everything here happens after the originating transaction
// committed, and possibly more than once.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
	jobRepo    repository.JobRepository
	minStock   int
}

func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	jobRepo repository.JobRepository,
	minStock int,
) *Service {
	if minStock <= 0 {
		minStock = model.DefaultLowStockThreshold
	}
	return &Service{
		logger:     logger,
		mqConsumer: mqConsumer,
		jobRepo:    jobRepo,
		minStock:   minStock,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.mqConsumer.RegisterHandler(
		model.TopicProductCreated,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev model.ProductCreatedEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal product created event: %w", err)
			}

			if err := s.handleProductCreatedEvent(ctx, ev); err != nil {
				return fmt.Errorf("handle product created event: %w", err)
			}

			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("register product created event handler: %w", err)
	}

	if err := s.mqConsumer.RegisterHandler(
		model.TopicProductStockChanged,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev model.StockChangedEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal stock changed event: %w", err)
			}

			if err := s.handleStockChangedEvent(ctx, ev); err != nil {
				return fmt.Errorf("handle stock changed event: %w", err)
			}

			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("register stock changed event handler: %w", err)
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}
