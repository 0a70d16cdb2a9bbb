package repository_test

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
)

func seedProduct(t *testing.T, repo repository.ProductRepository, name string, price float64, stock int, categoryID uuid.UUID) model.Product {
	t.Helper()

	p, err := model.NewProduct(uuid.New(), name, decimal.NewFromFloat(price), stock, categoryID, nil)
	require.NoError(t, err)
	p.ClearPendingEvents()
	require.NoError(t, repo.Create(context.Background(), *p))
	return *p
}

func TestMemoryProductRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Should get, update and delete by id", func(t *testing.T) {
		repo := repository.NewMemoryProductRepository()
		p := seedProduct(t, repo, "Keyboard", 79.99, 10, uuid.New())

		got, err := repo.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Name, got.Name)

		got.Stock = 3
		require.NoError(t, repo.Update(ctx, got))

		got, err = repo.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Stock)

		require.NoError(t, repo.Delete(ctx, p.ID))

		_, err = repo.Get(ctx, p.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeProductNotFound, apperr.Code(err))
	})

	t.Run("Should filter lists through the spec", func(t *testing.T) {
		repo := repository.NewMemoryProductRepository()
		categoryID := uuid.New()

		seedProduct(t, repo, "Cheap Low", 5, 3, categoryID)
		seedProduct(t, repo, "Cheap High", 5, 50, categoryID)
		seedProduct(t, repo, "Pricey Low", 2000, 2, uuid.New())

		low, err := repo.List(ctx, model.NewLowStockSpec(10))
		require.NoError(t, err)
		require.Len(t, low, 2)
		assert.Equal(t, "Cheap Low", low[0].Name)
		assert.Equal(t, "Pricey Low", low[1].Name)

		count, err := repo.CountMatching(ctx, model.ByCategorySpec{CategoryID: categoryID})
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)

		exists, err := repo.ExistsMatching(ctx, model.NewExpensiveSpec(decimal.NewFromInt(1000)))
		require.NoError(t, err)
		assert.True(t, exists)

		all, err := repo.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("Should report other products using a name", func(t *testing.T) {
		repo := repository.NewMemoryProductRepository()
		p := seedProduct(t, repo, "Keyboard", 79.99, 10, uuid.New())

		taken, err := repo.ExistsOtherWithName(ctx, "Keyboard", uuid.Nil)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = repo.ExistsOtherWithName(ctx, "Keyboard", p.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})
}

func TestMemoryJobRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Should retry failed jobs until attempts run out", func(t *testing.T) {
		repo := repository.NewMemoryJobRepository()
		require.NoError(t, repo.CreateJob(ctx, repository.CreateJobParams{JobType: "noop"}))

		params := repository.ListPendingJobsParams{BatchSize: 10, MaxAttempts: 2}

		jobs, err := repo.ListPendingJobs(ctx, params)
		require.NoError(t, err)
		require.Len(t, jobs, 1)

		failure := "boom"
		require.NoError(t, repo.MarkJobs(ctx, repository.MarkJobsParams{
			Items: []repository.MarkJobsItem{{ID: jobs[0].ID, Error: &failure}},
		}))

		jobs, err = repo.ListPendingJobs(ctx, params)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.EqualValues(t, 1, jobs[0].Attempts)

		require.NoError(t, repo.MarkJobs(ctx, repository.MarkJobsParams{
			Items: []repository.MarkJobsItem{{ID: jobs[0].ID, Error: &failure}},
		}))

		jobs, err = repo.ListPendingJobs(ctx, params)
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})

	t.Run("Should drop succeeded jobs from the pending list", func(t *testing.T) {
		repo := repository.NewMemoryJobRepository()
		require.NoError(t, repo.CreateJob(ctx, repository.CreateJobParams{JobType: "noop"}))

		params := repository.ListPendingJobsParams{BatchSize: 10, MaxAttempts: 5}

		jobs, err := repo.ListPendingJobs(ctx, params)
		require.NoError(t, err)
		require.Len(t, jobs, 1)

		require.NoError(t, repo.MarkJobs(ctx, repository.MarkJobsParams{
			Items: []repository.MarkJobsItem{{ID: jobs[0].ID, Error: nil}},
		}))

		jobs, err = repo.ListPendingJobs(ctx, params)
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})
}
