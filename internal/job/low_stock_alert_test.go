package job_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmtuan/stockroom/internal/job"
	"github.com/vmtuan/stockroom/internal/model"
	"github.com/vmtuan/stockroom/internal/repository"
)

func marshalArgs(t *testing.T, args job.LowStockAlertArgs) json.RawMessage {
	t.Helper()

	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return raw
}

func TestLowStockAlertHandler(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	newProduct := func(t *testing.T, stock int) model.Product {
		t.Helper()
		p, err := model.NewProduct(uuid.New(), "Keyboard", decimal.NewFromInt(50), stock, uuid.New(), nil)
		require.NoError(t, err)
		p.ClearPendingEvents()
		return *p
	}

	t.Run("Should alert when stock is still below minimum", func(t *testing.T) {
		productRepo := repository.NewMemoryProductRepository()
		product := newProduct(t, 5)
		require.NoError(t, productRepo.Create(ctx, product))

		handler := job.NewLowStockAlertHandler(logger, productRepo)
		err := handler.Handle(ctx, marshalArgs(t, job.LowStockAlertArgs{
			ProductID:    product.ID,
			ProductName:  product.Name,
			CurrentStock: 5,
			MinimumStock: 10,
		}))
		require.NoError(t, err)
	})

	t.Run("Should stay silent when stock has recovered", func(t *testing.T) {
		productRepo := repository.NewMemoryProductRepository()
		product := newProduct(t, 50)
		require.NoError(t, productRepo.Create(ctx, product))

		handler := job.NewLowStockAlertHandler(logger, productRepo)
		err := handler.Handle(ctx, marshalArgs(t, job.LowStockAlertArgs{
			ProductID:    product.ID,
			ProductName:  product.Name,
			CurrentStock: 5,
			MinimumStock: 10,
		}))
		require.NoError(t, err)
	})

	t.Run("Should stay silent when the product was deleted", func(t *testing.T) {
		productRepo := repository.NewMemoryProductRepository()

		handler := job.NewLowStockAlertHandler(logger, productRepo)
		err := handler.Handle(ctx, marshalArgs(t, job.LowStockAlertArgs{
			ProductID:    uuid.New(),
			ProductName:  "Keyboard",
			CurrentStock: 5,
			MinimumStock: 10,
		}))
		require.NoError(t, err)
	})

	t.Run("Should fail on malformed args", func(t *testing.T) {
		handler := job.NewLowStockAlertHandler(logger, repository.NewMemoryProductRepository())

		err := handler.Handle(ctx, []byte("not json"))
		require.Error(t, err)
	})

	t.Run("Should expose its job type", func(t *testing.T) {
		handler := job.NewLowStockAlertHandler(logger, repository.NewMemoryProductRepository())
		assert.Equal(t, job.TypeLowStockAlert, handler.Type())
	})
}
