package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vmtuan/stockroom/internal/apperr"
	"github.com/vmtuan/stockroom/internal/repository"
)

const TypeLowStockAlert = "low_stock_alert"

type LowStockAlertArgs struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	CurrentStock int       `json:"current_stock"`
	MinimumStock int       `json:"minimum_stock"`
}

// LowStockAlertHandler emits an alert for a product whose stock dropped below
// the minimum. The queue delivers at least once and with arbitrary delay, so
// the handler re-reads the live stock and stays silent when the product is
// gone or the stock has recovered in the meantime.
type LowStockAlertHandler struct {
	logger      *slog.Logger
	productRepo repository.ProductRepository
}

func NewLowStockAlertHandler(
	logger *slog.Logger,
	productRepo repository.ProductRepository,
) *LowStockAlertHandler {
	return &LowStockAlertHandler{
		logger:      logger,
		productRepo: productRepo,
	}
}

func (h *LowStockAlertHandler) Type() string { return TypeLowStockAlert }

func (h *LowStockAlertHandler) Handle(ctx context.Context, rawArgs json.RawMessage) error {
	var args LowStockAlertArgs
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return fmt.Errorf("unmarshal low stock alert args: %w", err)
	}

	product, err := h.productRepo.Get(ctx, args.ProductID)
	if err != nil {
		if apperr.Code(err) == apperr.CodeProductNotFound {
			h.logger.InfoContext(ctx, "skipping low stock alert, product no longer exists",
				slog.String("product_id", args.ProductID.String()),
			)
			return nil
		}
		return fmt.Errorf("product repository get: %w", err)
	}

	if product.Stock >= args.MinimumStock {
		h.logger.InfoContext(ctx, "skipping low stock alert, stock has recovered",
			slog.String("product_id", product.ID.String()),
			slog.Int("stock", product.Stock),
			slog.Int("minimum_stock", args.MinimumStock),
		)
		return nil
	}

	h.logger.WarnContext(ctx, "low stock alert",
		slog.String("product_id", product.ID.String()),
		slog.String("product_name", product.Name),
		slog.Int("stock", product.Stock),
		slog.Int("minimum_stock", args.MinimumStock),
	)

	return nil
}
