package model_test

import (
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmtuan/stockroom/internal/apperr"
	"github.com/vmtuan/stockroom/internal/model"
	"github.com/vmtuan/stockroom/pkg/ptr"
)

func newTestProduct(t *testing.T, stock int) *model.Product {
	t.Helper()

	p, err := model.NewProduct(
		uuid.New(),
		"Mechanical Keyboard",
		decimal.NewFromFloat(79.99),
		stock,
		uuid.New(),
		nil,
	)
	require.NoError(t, err)
	p.ClearPendingEvents()
	return p
}

func TestNewProduct(t *testing.T) {
	categoryID := uuid.New()

	t.Run("Should create product and record created event", func(t *testing.T) {
		p, err := model.NewProduct(
			uuid.New(),
			"Mechanical Keyboard",
			decimal.NewFromFloat(79.99),
			40,
			categoryID,
			ptr.New("87 keys, hot-swappable"),
		)
		require.NoError(t, err)

		assert.Equal(t, "Mechanical Keyboard", p.Name)
		assert.True(t, p.Price.Equal(decimal.NewFromFloat(79.99)))
		assert.Equal(t, 40, p.Stock)
		assert.Equal(t, categoryID, p.CategoryID)

		events := p.PendingEvents()
		require.Len(t, events, 1)

		created, ok := events[0].(model.ProductCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, p.ID, created.ProductID)
		assert.Equal(t, p.ID.String(), created.PartitionKey())
		assert.Equal(t, model.TopicProductCreated, created.Topic())
	})

	t.Run("Should reject whitespace-only name", func(t *testing.T) {
		_, err := model.NewProduct(uuid.New(), "   ", decimal.NewFromInt(10), 5, categoryID, nil)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeInvalidProductName, apperr.Code(err))
	})

	t.Run("Should reject name shorter than 3 characters", func(t *testing.T) {
		_, err := model.NewProduct(uuid.New(), "ab", decimal.NewFromInt(10), 5, categoryID, nil)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeInvalidProductName, apperr.Code(err))
	})

	t.Run("Should reject name longer than 128 characters", func(t *testing.T) {
		_, err := model.NewProduct(uuid.New(), strings.Repeat("a", 129), decimal.NewFromInt(10), 5, categoryID, nil)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeInvalidProductName, apperr.Code(err))
	})

	t.Run("Should accept name of exactly 3 and 128 characters", func(t *testing.T) {
		_, err := model.NewProduct(uuid.New(), "abc", decimal.NewFromInt(10), 5, categoryID, nil)
		assert.NoError(t, err)

		_, err = model.NewProduct(uuid.New(), strings.Repeat("b", 128), decimal.NewFromInt(10), 5, categoryID, nil)
		assert.NoError(t, err)
	})

	t.Run("Should reject price below minimum", func(t *testing.T) {
		_, err := model.NewProduct(uuid.New(), "Keyboard", decimal.Zero, 5, categoryID, nil)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeInvalidProductPrice, apperr.Code(err))
	})

	t.Run("Should reject price above maximum", func(t *testing.T) {
		_, err := model.NewProduct(uuid.New(), "Keyboard", decimal.NewFromInt(1_000_001), 5, categoryID, nil)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeInvalidProductPrice, apperr.Code(err))
	})

	t.Run("Should accept boundary prices", func(t *testing.T) {
		_, err := model.NewProduct(uuid.New(), "Keyboard", decimal.NewFromFloat(0.01), 5, categoryID, nil)
		assert.NoError(t, err)

		_, err = model.NewProduct(uuid.New(), "Keyboard", decimal.NewFromInt(1_000_000), 5, categoryID, nil)
		assert.NoError(t, err)
	})

	t.Run("Should reject stock out of range", func(t *testing.T) {
		_, err := model.NewProduct(uuid.New(), "Keyboard", decimal.NewFromInt(10), -1, categoryID, nil)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeInvalidProductStock, apperr.Code(err))

		_, err = model.NewProduct(uuid.New(), "Keyboard", decimal.NewFromInt(10), 100_001, categoryID, nil)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeInvalidProductStock, apperr.Code(err))
	})

	t.Run("Should reject description longer than 1000 characters", func(t *testing.T) {
		long := strings.Repeat("d", 1001)
		_, err := model.NewProduct(uuid.New(), "Keyboard", decimal.NewFromInt(10), 5, categoryID, &long)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeInvalidProductDescription, apperr.Code(err))
	})
}

func TestProductIncreaseStock(t *testing.T) {
	t.Run("Should increase stock and record event", func(t *testing.T) {
		p := newTestProduct(t, 10)

		require.NoError(t, p.IncreaseStock(5))
		assert.Equal(t, 15, p.Stock)

		events := p.PendingEvents()
		require.Len(t, events, 1)

		ev, ok := events[0].(model.StockChangedEvent)
		require.True(t, ok)
		assert.Equal(t, 10, ev.OldStock)
		assert.Equal(t, 15, ev.NewStock)
		assert.Equal(t, 5, ev.ChangeAmount)
		assert.Equal(t, model.StockIncreased, ev.ChangeType)
		assert.Equal(t, p.ID.String(), ev.PartitionKey())
	})

	t.Run("Should reject non-positive quantity", func(t *testing.T) {
		p := newTestProduct(t, 10)

		require.Error(t, p.IncreaseStock(0))
		require.Error(t, p.IncreaseStock(-3))
		assert.Equal(t, 10, p.Stock)
		assert.Empty(t, p.PendingEvents())
	})

	t.Run("Should reject increase past maximum stock", func(t *testing.T) {
		p := newTestProduct(t, model.ProductMaxStock-1)

		err := p.IncreaseStock(2)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeInvalidProductStock, apperr.Code(err))
		assert.Equal(t, model.ProductMaxStock-1, p.Stock)
		assert.Empty(t, p.PendingEvents())
	})

	t.Run("Should reject quantity large enough to overflow the sum", func(t *testing.T) {
		p := newTestProduct(t, 10)

		err := p.IncreaseStock(math.MaxInt)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeInvalidProductStock, apperr.Code(err))
		assert.Equal(t, 10, p.Stock)
		assert.Empty(t, p.PendingEvents())
	})
}

func TestProductDecreaseStock(t *testing.T) {
	t.Run("Should decrease stock and record event", func(t *testing.T) {
		p := newTestProduct(t, 10)

		require.NoError(t, p.DecreaseStock(7))
		assert.Equal(t, 3, p.Stock)

		events := p.PendingEvents()
		require.Len(t, events, 1)

		ev, ok := events[0].(model.StockChangedEvent)
		require.True(t, ok)
		assert.Equal(t, 10, ev.OldStock)
		assert.Equal(t, 3, ev.NewStock)
		assert.Equal(t, 7, ev.ChangeAmount)
		assert.Equal(t, model.StockDecreased, ev.ChangeType)
	})

	t.Run("Should allow decreasing to exactly zero", func(t *testing.T) {
		p := newTestProduct(t, 5)

		require.NoError(t, p.DecreaseStock(5))
		assert.Equal(t, 0, p.Stock)
	})

	t.Run("Should fail with insufficient stock and leave product untouched", func(t *testing.T) {
		p := newTestProduct(t, 5)

		err := p.DecreaseStock(8)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeInsufficientStock, apperr.Code(err))
		assert.Equal(t, 5, p.Stock)
		assert.Empty(t, p.PendingEvents())
	})

	t.Run("Should reject non-positive quantity", func(t *testing.T) {
		p := newTestProduct(t, 5)

		require.Error(t, p.DecreaseStock(0))
		require.Error(t, p.DecreaseStock(-1))
		assert.Equal(t, 5, p.Stock)
	})
}

func TestProductPendingEvents(t *testing.T) {
	t.Run("Should accumulate events in mutation order and clear", func(t *testing.T) {
		p := newTestProduct(t, 10)

		require.NoError(t, p.IncreaseStock(5))
		require.NoError(t, p.DecreaseStock(12))

		events := p.PendingEvents()
		require.Len(t, events, 2)

		first := events[0].(model.StockChangedEvent)
		second := events[1].(model.StockChangedEvent)
		assert.Equal(t, model.StockIncreased, first.ChangeType)
		assert.Equal(t, model.StockDecreased, second.ChangeType)
		assert.Equal(t, first.NewStock, second.OldStock)

		p.ClearPendingEvents()
		assert.Empty(t, p.PendingEvents())
	})
}
