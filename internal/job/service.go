package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vmtuan/stockroom/internal/config"
	"github.com/vmtuan/stockroom/internal/metric"
	"github.com/vmtuan/stockroom/internal/repository"
	"github.com/vmtuan/stockroom/internal/storage/db"
	"github.com/vmtuan/stockroom/pkg/ptr"
)

// Handler processes one job type. Jobs are delivered at least once, so
// Handle must be idempotent.
type Handler interface {
	Type() string
	Handle(ctx context.Context, args json.RawMessage) error
}

// Service polls the background job queue and dispatches pending jobs to
// registered handlers. A failed job stays pending with its attempt counter
// bumped until it succeeds or exhausts the configured attempts.
type Service struct {
	cfg      config.Jobs
	logger   *slog.Logger
	db       db.DB
	jobRepo  repository.JobRepository
	handlers map[string]Handler

	stopChan chan struct{}
}

func NewService(
	cfg config.Jobs,
	logger *slog.Logger,
	db db.DB,
	jobRepo repository.JobRepository,
) *Service {
	return &Service{
		cfg:      cfg,
		logger:   logger.With(slog.String("service", "job")),
		db:       db,
		jobRepo:  jobRepo,
		handlers: make(map[string]Handler),
		stopChan: make(chan struct{}),
	}
}

func (s *Service) RegisterHandler(handler Handler) error {
	if _, exists := s.handlers[handler.Type()]; exists {
		return fmt.Errorf("handler for job type %s already registered", handler.Type())
	}

	s.handlers[handler.Type()] = handler
	return nil
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.run(ctx)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
			cancel()
		}
	}
}

func (s *Service) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-time.After(s.cfg.Interval):
			if err := s.processBatch(ctx); err != nil {
				s.logger.ErrorContext(ctx, "error processing job batch", slog.Any("error", err))
			}
		}
	}
}

// processBatch claims a batch of pending jobs, runs them sequentially and
// records the outcomes in the same transaction that holds the row locks.
func (s *Service) processBatch(ctx context.Context) error {
	return s.db.WithTx(ctx, func(db db.DB) error {
		jobs, err := s.jobRepo.
			WithDB(db).
			ListPendingJobs(ctx, repository.ListPendingJobsParams{
				//nolint:gosec
				BatchSize:   int32(s.cfg.BatchSize),
				MaxAttempts: s.cfg.MaxAttempts,
			})
		if err != nil {
			return fmt.Errorf("list pending jobs: %w", err)
		}

		if len(jobs) == 0 {
			return nil
		}

		s.logger.InfoContext(ctx, "processing jobs", slog.Int("count", len(jobs)))

		items := make([]repository.MarkJobsItem, 0, len(jobs))
		for _, pending := range jobs {
			if err := s.handleJob(ctx, pending); err != nil {
				s.logger.ErrorContext(ctx,
					"error handling job",
					slog.String("job_id", pending.ID.String()),
					slog.String("job_type", pending.JobType),
					slog.Int("attempts", int(pending.Attempts)),
					slog.Any("error", err),
				)
				metric.JobsProcessedTotal.WithLabelValues(pending.JobType, metric.StatusError).Inc()
				items = append(items, repository.MarkJobsItem{
					ID:    pending.ID,
					Error: ptr.New(err.Error()),
				})
				continue
			}

			metric.JobsProcessedTotal.WithLabelValues(pending.JobType, metric.StatusOK).Inc()
			items = append(items, repository.MarkJobsItem{
				ID:    pending.ID,
				Error: nil,
			})
		}

		if err := s.jobRepo.
			WithDB(db).
			MarkJobs(ctx, repository.MarkJobsParams{Items: items}); err != nil {
			return fmt.Errorf("mark jobs: %w", err)
		}

		return nil
	})
}

func (s *Service) handleJob(ctx context.Context, pending repository.PendingJob) error {
	handler, exists := s.handlers[pending.JobType]
	if !exists {
		return fmt.Errorf("no handler registered for job type %s", pending.JobType)
	}

	return handler.Handle(ctx, pending.Args)
}
