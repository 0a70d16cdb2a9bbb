package model_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vmtuan/stockroom/internal/model"
)

func productWith(name string, price float64, stock int, categoryID uuid.UUID) model.Product {
	return model.Product{
		ID:         uuid.New(),
		Name:       name,
		Price:      decimal.NewFromFloat(price),
		Stock:      stock,
		CategoryID: categoryID,
	}
}

func TestLowStockSpec(t *testing.T) {
	spec := model.NewLowStockSpec(10)

	t.Run("Should match stock strictly below threshold", func(t *testing.T) {
		assert.True(t, spec.Match(productWith("a", 10, 9, uuid.New())))
		assert.True(t, spec.Match(productWith("a", 10, 0, uuid.New())))
	})

	t.Run("Should not match stock at or above threshold", func(t *testing.T) {
		assert.False(t, spec.Match(productWith("a", 10, 10, uuid.New())))
		assert.False(t, spec.Match(productWith("a", 10, 11, uuid.New())))
	})

	t.Run("Should fall back to default threshold for non-positive input", func(t *testing.T) {
		spec := model.NewLowStockSpec(0)
		assert.Equal(t, model.DefaultLowStockThreshold, spec.Threshold)

		spec = model.NewLowStockSpec(-5)
		assert.Equal(t, model.DefaultLowStockThreshold, spec.Threshold)
	})
}

func TestExpensiveSpec(t *testing.T) {
	t.Run("Should match price at or above minimum", func(t *testing.T) {
		spec := model.NewExpensiveSpec(decimal.NewFromInt(500))

		assert.True(t, spec.Match(productWith("a", 500, 1, uuid.New())))
		assert.True(t, spec.Match(productWith("a", 501, 1, uuid.New())))
		assert.False(t, spec.Match(productWith("a", 499.99, 1, uuid.New())))
	})

	t.Run("Should fall back to default minimum for zero input", func(t *testing.T) {
		spec := model.NewExpensiveSpec(decimal.Zero)
		assert.True(t, spec.MinPrice.Equal(model.DefaultExpensiveMinPrice))
	})
}

func TestPriceRangeSpec(t *testing.T) {
	spec := model.PriceRangeSpec{
		MinPrice: decimal.NewFromInt(10),
		MaxPrice: decimal.NewFromInt(20),
	}

	t.Run("Should match inclusive bounds", func(t *testing.T) {
		assert.True(t, spec.Match(productWith("a", 10, 1, uuid.New())))
		assert.True(t, spec.Match(productWith("a", 15, 1, uuid.New())))
		assert.True(t, spec.Match(productWith("a", 20, 1, uuid.New())))
	})

	t.Run("Should not match outside the range", func(t *testing.T) {
		assert.False(t, spec.Match(productWith("a", 9.99, 1, uuid.New())))
		assert.False(t, spec.Match(productWith("a", 20.01, 1, uuid.New())))
	})
}

func TestByCategorySpec(t *testing.T) {
	categoryID := uuid.New()
	spec := model.ByCategorySpec{CategoryID: categoryID}

	assert.True(t, spec.Match(productWith("a", 10, 1, categoryID)))
	assert.False(t, spec.Match(productWith("a", 10, 1, uuid.New())))
}

func TestByNameSpec(t *testing.T) {
	spec := model.ByNameSpec{Name: "Mechanical Keyboard"}

	assert.True(t, spec.Match(productWith("Mechanical Keyboard", 10, 1, uuid.New())))
	assert.False(t, spec.Match(productWith("mechanical keyboard", 10, 1, uuid.New())))
}

func TestAndSpec(t *testing.T) {
	categoryID := uuid.New()

	t.Run("Should require all parts to match", func(t *testing.T) {
		spec := model.And(
			model.NewLowStockSpec(10),
			model.ByCategorySpec{CategoryID: categoryID},
		)

		assert.True(t, spec.Match(productWith("a", 10, 5, categoryID)))
		assert.False(t, spec.Match(productWith("a", 10, 50, categoryID)))
		assert.False(t, spec.Match(productWith("a", 10, 5, uuid.New())))
	})

	t.Run("Should match everything when empty", func(t *testing.T) {
		assert.True(t, model.And().Match(productWith("a", 10, 5, categoryID)))
	})
}
