package event

import (
	"context"
	"log/slog"

	"github.com/vmtuan/stockroom/internal/model"
)

func (s *Service) handleProductCreatedEvent(ctx context.Context, ev model.ProductCreatedEvent) error {
	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", ev.ProductID.String()),
		slog.String("name", ev.Name),
		slog.String("price", ev.Price.String()),
		slog.Int("stock", ev.Stock),
		slog.String("category_id", ev.CategoryID.String()),
	)
	return nil
}
