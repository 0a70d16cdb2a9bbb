package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/vmtuan/stockroom/internal/apperr"
	"github.com/vmtuan/stockroom/internal/model"
	"github.com/vmtuan/stockroom/internal/storage/db"
)

// The memory repositories filter with model.ProductSpec.Match, giving
// specifications their in-memory interpretation. They back the service and
// worker tests and let the spec-equivalence property be checked against the
// SQL translation without a database.

var _ ProductRepository = (*MemoryProductRepository)(nil)

type MemoryProductRepository struct {
	mu       sync.RWMutex
	products []model.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{}
}

func (r *MemoryProductRepository) WithDB(_ db.DB) ProductRepository { return r }

func (r *MemoryProductRepository) Create(_ context.Context, product model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = append(r.products, product)
	return nil
}

func (r *MemoryProductRepository) Get(_ context.Context, id uuid.UUID) (model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, apperr.ErrProductNotFound.WithData("product_id", id.String())
}

func (r *MemoryProductRepository) Update(_ context.Context, product model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.products {
		if p.ID == product.ID {
			r.products[i] = product
			return nil
		}
	}
	return apperr.ErrProductNotFound.WithData("product_id", product.ID.String())
}

func (r *MemoryProductRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return apperr.ErrProductNotFound.WithData("product_id", id.String())
}

func (r *MemoryProductRepository) List(_ context.Context, spec model.ProductSpec) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var products []model.Product
	for _, p := range r.products {
		if spec == nil || spec.Match(p) {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *MemoryProductRepository) CountMatching(ctx context.Context, spec model.ProductSpec) (int64, error) {
	products, err := r.List(ctx, spec)
	if err != nil {
		return 0, err
	}
	return int64(len(products)), nil
}

func (r *MemoryProductRepository) ExistsMatching(ctx context.Context, spec model.ProductSpec) (bool, error) {
	count, err := r.CountMatching(ctx, spec)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MemoryProductRepository) ExistsOtherWithName(_ context.Context, name string, excludeID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.Name == name && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

var _ CategoryRepository = (*MemoryCategoryRepository)(nil)

type MemoryCategoryRepository struct {
	mu         sync.RWMutex
	categories []model.Category
}

func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{}
}

func (r *MemoryCategoryRepository) WithDB(_ db.DB) CategoryRepository { return r }

func (r *MemoryCategoryRepository) Create(_ context.Context, category model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = append(r.categories, category)
	return nil
}

func (r *MemoryCategoryRepository) Get(_ context.Context, id uuid.UUID) (model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Category{}, apperr.ErrCategoryNotFound.WithData("category_id", id.String())
}

func (r *MemoryCategoryRepository) Update(_ context.Context, category model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.categories {
		if c.ID == category.ID {
			r.categories[i] = category
			return nil
		}
	}
	return apperr.ErrCategoryNotFound.WithData("category_id", category.ID.String())
}

func (r *MemoryCategoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.categories {
		if c.ID == id {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return nil
		}
	}
	return apperr.ErrCategoryNotFound.WithData("category_id", id.String())
}

func (r *MemoryCategoryRepository) List(_ context.Context) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	categories := make([]model.Category, len(r.categories))
	copy(categories, r.categories)
	return categories, nil
}

func (r *MemoryCategoryRepository) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.categories {
		if c.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryCategoryRepository) ExistsOtherWithName(_ context.Context, name string, excludeID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.categories {
		if c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

var _ OutboxMsgRepository = (*MemoryOutboxMsgRepository)(nil)

type MemoryOutboxMsgRepository struct {
	mu   sync.Mutex
	msgs []memoryOutboxMsg
}

type memoryOutboxMsg struct {
	id        uuid.UUID
	params    CreateOutboxMsgParams
	processed bool
}

func NewMemoryOutboxMsgRepository() *MemoryOutboxMsgRepository {
	return &MemoryOutboxMsgRepository{}
}

func (r *MemoryOutboxMsgRepository) WithDB(_ db.DB) OutboxMsgRepository { return r }

func (r *MemoryOutboxMsgRepository) CreateOutboxMsg(_ context.Context, params CreateOutboxMsgParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, memoryOutboxMsg{id: uuid.New(), params: params})
	return nil
}

func (r *MemoryOutboxMsgRepository) ListUnprocessedOutboxMsgs(_ context.Context, params ListUnprocessedOutboxMsgsParams) ([]ListUnprocessedOutboxMsgsResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var results []ListUnprocessedOutboxMsgsResult
	for _, msg := range r.msgs {
		if msg.processed {
			continue
		}
		if int32(len(results)) >= params.BatchSize {
			break
		}
		results = append(results, ListUnprocessedOutboxMsgsResult{
			ID:           msg.id,
			Topic:        msg.params.Topic,
			Headers:      msg.params.Headers,
			Payload:      msg.params.Payload,
			PartitionKey: msg.params.PartitionKey,
		})
	}
	return results, nil
}

func (r *MemoryOutboxMsgRepository) BulkUpdateOutboxMsgs(_ context.Context, params BulkUpdateOutboxMsgsParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range params.Items {
		for i := range r.msgs {
			if r.msgs[i].id == item.ID {
				r.msgs[i].processed = true
			}
		}
	}
	return nil
}

// Msgs returns every message ever written, processed or not, oldest first.
func (r *MemoryOutboxMsgRepository) Msgs() []CreateOutboxMsgParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := make([]CreateOutboxMsgParams, 0, len(r.msgs))
	for _, msg := range r.msgs {
		msgs = append(msgs, msg.params)
	}
	return msgs
}

var _ JobRepository = (*MemoryJobRepository)(nil)

type MemoryJobRepository struct {
	mu   sync.Mutex
	jobs []memoryJob
}

type memoryJob struct {
	id        uuid.UUID
	jobType   string
	args      json.RawMessage
	attempts  int32
	processed bool
}

func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{}
}

func (r *MemoryJobRepository) WithDB(_ db.DB) JobRepository { return r }

func (r *MemoryJobRepository) CreateJob(_ context.Context, params CreateJobParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, memoryJob{
		id:      uuid.New(),
		jobType: params.JobType,
		args:    params.Args,
	})
	return nil
}

func (r *MemoryJobRepository) ListPendingJobs(_ context.Context, params ListPendingJobsParams) ([]PendingJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var jobs []PendingJob
	for _, job := range r.jobs {
		if job.processed || job.attempts >= params.MaxAttempts {
			continue
		}
		if int32(len(jobs)) >= params.BatchSize {
			break
		}
		jobs = append(jobs, PendingJob{
			ID:       job.id,
			JobType:  job.jobType,
			Args:     job.args,
			Attempts: job.attempts,
		})
	}
	return jobs, nil
}

func (r *MemoryJobRepository) MarkJobs(_ context.Context, params MarkJobsParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range params.Items {
		for i := range r.jobs {
			if r.jobs[i].id != item.ID {
				continue
			}
			if item.Error == nil {
				r.jobs[i].processed = true
			} else {
				r.jobs[i].attempts++
			}
		}
	}
	return nil
}

// Jobs returns every job ever enqueued, oldest first.
func (r *MemoryJobRepository) Jobs() []CreateJobParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := make([]CreateJobParams, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, CreateJobParams{JobType: job.jobType, Args: job.args})
	}
	return jobs
}
