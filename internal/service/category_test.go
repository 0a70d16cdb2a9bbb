package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmtuan/stockroom/internal/apperr"
	"github.com/vmtuan/stockroom/internal/model"
	"github.com/vmtuan/stockroom/internal/repository"
	"github.com/vmtuan/stockroom/internal/service"
	"github.com/vmtuan/stockroom/pkg/ptr"
	"github.com/vmtuan/stockroom/pkg/validator"
)

type categoryServiceFixture struct {
	svc          service.CategoryService
	categoryRepo *repository.MemoryCategoryRepository
	productRepo  *repository.MemoryProductRepository
}

func newCategoryServiceFixture(t *testing.T) *categoryServiceFixture {
	t.Helper()

	categoryRepo := repository.NewMemoryCategoryRepository()
	productRepo := repository.NewMemoryProductRepository()

	return &categoryServiceFixture{
		svc:          service.NewCategoryService(validator.NewDefaultValidator(), categoryRepo, productRepo),
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create and fetch category", func(t *testing.T) {
		f := newCategoryServiceFixture(t)

		created, err := f.svc.Create(ctx, service.CreateCategoryParams{
			Name:        "Peripherals",
			Description: ptr.New("keyboards and mice"),
		})
		require.NoError(t, err)

		got, err := f.svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Peripherals", got.Name)
	})

	t.Run("Should reject duplicate name on create", func(t *testing.T) {
		f := newCategoryServiceFixture(t)

		_, err := f.svc.Create(ctx, service.CreateCategoryParams{Name: "Peripherals"})
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, service.CreateCategoryParams{Name: "Peripherals"})
		require.Error(t, err)
		assert.Equal(t, apperr.CodeDuplicateCategoryName, apperr.Code(err))
	})

	t.Run("Should reject rename to an existing name", func(t *testing.T) {
		f := newCategoryServiceFixture(t)

		_, err := f.svc.Create(ctx, service.CreateCategoryParams{Name: "Peripherals"})
		require.NoError(t, err)
		other, err := f.svc.Create(ctx, service.CreateCategoryParams{Name: "Audio"})
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, service.UpdateCategoryParams{ID: other.ID, Name: "Peripherals"})
		require.Error(t, err)
		assert.Equal(t, apperr.CodeDuplicateCategoryName, apperr.Code(err))
	})

	t.Run("Should refuse deleting a category that still has products", func(t *testing.T) {
		f := newCategoryServiceFixture(t)

		category, err := f.svc.Create(ctx, service.CreateCategoryParams{Name: "Peripherals"})
		require.NoError(t, err)

		product, err := model.NewProduct(uuid.New(), "Keyboard", decimal.NewFromInt(50), 5, category.ID, nil)
		require.NoError(t, err)
		product.ClearPendingEvents()
		require.NoError(t, f.productRepo.Create(ctx, *product))

		err = f.svc.Delete(ctx, category.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeCategoryHasProducts, apperr.Code(err))
	})

	t.Run("Should delete an empty category", func(t *testing.T) {
		f := newCategoryServiceFixture(t)

		category, err := f.svc.Create(ctx, service.CreateCategoryParams{Name: "Peripherals"})
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(ctx, category.ID))

		_, err = f.svc.Get(ctx, category.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeCategoryNotFound, apperr.Code(err))
	})

	t.Run("Should list categories", func(t *testing.T) {
		f := newCategoryServiceFixture(t)

		_, err := f.svc.Create(ctx, service.CreateCategoryParams{Name: "Audio"})
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, service.CreateCategoryParams{Name: "Peripherals"})
		require.NoError(t, err)

		categories, err := f.svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, categories, 2)
	})
}
