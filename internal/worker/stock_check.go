package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vmtuan/stockroom/internal/config"
	"github.com/vmtuan/stockroom/internal/metric"
	"github.com/vmtuan/stockroom/internal/model"
	"github.com/vmtuan/stockroom/internal/repository"
)

// StockCheckService periodically sweeps the catalog for low-stock products
// and warns about each one found. The sweep is a safety net behind the
// event-driven alert path: if an alert was lost or stock was adjusted outside
// the usual flow, the next sweep still surfaces it. Ticks never overlap; a
// slow sweep just delays the next one.
type StockCheckService struct {
	cfg         config.Worker
	logger      *slog.Logger
	productRepo repository.ProductRepository

	stopChan chan struct{}
}

func NewStockCheckService(
	cfg config.Worker,
	logger *slog.Logger,
	productRepo repository.ProductRepository,
) *StockCheckService {
	return &StockCheckService{
		cfg:         cfg,
		logger:      logger.With(slog.String("service", "stock_check")),
		productRepo: productRepo,
		stopChan:    make(chan struct{}),
	}
}

type CleanupFunc func()

func (s *StockCheckService) Run(ctx context.Context) CleanupFunc {
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

func (s *StockCheckService) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-time.After(s.cfg.StockCheckInterval):
			if _, err := s.CheckOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "error checking stock levels", slog.Any("error", err))
			}
		}
	}
}

// CheckOnce runs a single sweep and returns the low-stock products it found.
func (s *StockCheckService) CheckOnce(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx, model.NewLowStockSpec(s.cfg.LowStockThreshold))
	if err != nil {
		return nil, fmt.Errorf("product repository list: %w", err)
	}

	metric.LowStockProductsFound.Set(float64(len(products)))

	if len(products) == 0 {
		return nil, nil
	}

	s.logger.InfoContext(ctx, "found low stock products", slog.Int("count", len(products)))

	for _, p := range products {
		s.logger.WarnContext(ctx, "product stock below threshold",
			slog.String("product_id", p.ID.String()),
			slog.String("product_name", p.Name),
			slog.Int("stock", p.Stock),
			slog.Int("threshold", s.cfg.LowStockThreshold),
		)
	}

	return products, nil
}
