package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vmtuan/stockroom/internal/job"
	"github.com/vmtuan/stockroom/internal/model"
	"github.com/vmtuan/stockroom/internal/repository"
)

// handleStockChangedEvent logs every stock movement and, when a decrease
// leaves the stock below the minimum, enqueues a low stock alert job. The
// alert work is deliberately queued instead of done inline so a slow or
// failing alert never blocks event consumption.
func (s *Service) handleStockChangedEvent(ctx context.Context, ev model.StockChangedEvent) error {
	s.logger.InfoContext(ctx, "product stock changed",
		slog.String("product_id", ev.ProductID.String()),
		slog.String("product_name", ev.ProductName),
		slog.Int("old_stock", ev.OldStock),
		slog.Int("new_stock", ev.NewStock),
		slog.String("change_type", string(ev.ChangeType)),
	)

	if ev.ChangeType != model.StockDecreased || ev.NewStock >= s.minStock {
		return nil
	}

	args, err := json.Marshal(job.LowStockAlertArgs{
		ProductID:    ev.ProductID,
		ProductName:  ev.ProductName,
		CurrentStock: ev.NewStock,
		MinimumStock: s.minStock,
	})
	if err != nil {
		return fmt.Errorf("marshal low stock alert args: %w", err)
	}

	if err := s.jobRepo.CreateJob(ctx, repository.CreateJobParams{
		JobType: job.TypeLowStockAlert,
		Args:    args,
	}); err != nil {
		return fmt.Errorf("job repository create job: %w", err)
	}

	return nil
}
