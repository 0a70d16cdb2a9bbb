package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vmtuan/stockroom/internal/apperr"
	"github.com/vmtuan/stockroom/internal/model"
	"github.com/vmtuan/stockroom/internal/repository"
	"github.com/vmtuan/stockroom/internal/storage/db"
	"github.com/vmtuan/stockroom/pkg/outbox"
	"github.com/vmtuan/stockroom/pkg/ptr"
	"github.com/vmtuan/stockroom/pkg/validator"
)

type CreateProductParams struct {
	Name        string          `validate:"required"`
	Price       decimal.Decimal `validate:"required"`
	Stock       int             `validate:"gte=0"`
	CategoryID  uuid.UUID       `validate:"required"`
	Description *string
}

type UpdateProductParams struct {
	ID          uuid.UUID       `validate:"required"`
	Name        string          `validate:"required"`
	Price       decimal.Decimal `validate:"required"`
	CategoryID  uuid.UUID       `validate:"required"`
	Description *string
}

type ChangeStockParams struct {
	ID       uuid.UUID `validate:"required"`
	Quantity int       `validate:"gt=0"`
}

type ProductService interface {
	Create(ctx context.Context, params CreateProductParams) (model.Product, error)
	Get(ctx context.Context, id uuid.UUID) (model.Product, error)
	// Update replaces name, price, category and description. Stock is not
	// touched here; it only moves through IncreaseStock and DecreaseStock so
	// every movement leaves a stock changed event behind.
	Update(ctx context.Context, params UpdateProductParams) (model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, spec model.ProductSpec) ([]model.Product, error)

	IncreaseStock(ctx context.Context, params ChangeStockParams) (model.Product, error)
	DecreaseStock(ctx context.Context, params ChangeStockParams) (model.Product, error)

	LowStockProducts(ctx context.Context, threshold int) ([]model.Product, error)
	ExpensiveProducts(ctx context.Context, minPrice decimal.Decimal) ([]model.Product, error)
	ProductsInPriceRange(ctx context.Context, min, max decimal.Decimal) ([]model.Product, error)
	ProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error)
}

type productService struct {
	db            db.DB
	validator     validator.Validator
	productRepo   repository.ProductRepository
	categoryRepo  repository.CategoryRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewProductService(
	db db.DB,
	validator validator.Validator,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ProductService {
	return &productService{
		db:            db,
		validator:     validator,
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *productService) Create(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, err
	}

	exists, err := s.categoryRepo.Exists(ctx, params.CategoryID)
	if err != nil {
		return model.Product{}, fmt.Errorf("category repository exists: %w", err)
	}
	if !exists {
		return model.Product{}, apperr.ErrCategoryNotFound.WithData("category_id", params.CategoryID.String())
	}

	// Advisory check for a friendlier error; the unique index on name is the
	// authoritative guard against races.
	taken, err := s.productRepo.ExistsOtherWithName(ctx, params.Name, uuid.Nil)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository name exists: %w", err)
	}
	if taken {
		return model.Product{}, apperr.ErrDuplicateProductName.WithData("name", params.Name)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	product, err := model.NewProduct(id, params.Name, params.Price, params.Stock, params.CategoryID, params.Description)
	if err != nil {
		return model.Product{}, err
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.
			WithDB(db).
			Create(ctx, *product); err != nil {
			return fmt.Errorf("product repository create: %w", err)
		}

		return s.stageEvents(ctx, db, product)
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return *product, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.Get(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository get: %w", err)
	}

	return product, nil
}

func (s *productService) Update(ctx context.Context, params UpdateProductParams) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, err
	}

	product, err := s.productRepo.Get(ctx, params.ID)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository get: %w", err)
	}

	if params.CategoryID != product.CategoryID {
		exists, err := s.categoryRepo.Exists(ctx, params.CategoryID)
		if err != nil {
			return model.Product{}, fmt.Errorf("category repository exists: %w", err)
		}
		if !exists {
			return model.Product{}, apperr.ErrCategoryNotFound.WithData("category_id", params.CategoryID.String())
		}
	}

	if params.Name != product.Name {
		taken, err := s.productRepo.ExistsOtherWithName(ctx, params.Name, params.ID)
		if err != nil {
			return model.Product{}, fmt.Errorf("product repository name exists: %w", err)
		}
		if taken {
			return model.Product{}, apperr.ErrDuplicateProductName.WithData("name", params.Name)
		}
	}

	if err := product.SetName(params.Name); err != nil {
		return model.Product{}, err
	}
	if err := product.SetPrice(params.Price); err != nil {
		return model.Product{}, err
	}
	if err := product.SetDescription(params.Description); err != nil {
		return model.Product{}, err
	}
	product.CategoryID = params.CategoryID
	product.Touch()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return model.Product{}, fmt.Errorf("product repository update: %w", err)
	}

	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("product repository delete: %w", err)
	}

	return nil
}

func (s *productService) List(ctx context.Context, spec model.ProductSpec) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("product repository list: %w", err)
	}

	return products, nil
}

func (s *productService) IncreaseStock(ctx context.Context, params ChangeStockParams) (model.Product, error) {
	return s.changeStock(ctx, params, func(p *model.Product) error {
		return p.IncreaseStock(params.Quantity)
	})
}

func (s *productService) DecreaseStock(ctx context.Context, params ChangeStockParams) (model.Product, error) {
	return s.changeStock(ctx, params, func(p *model.Product) error {
		return p.DecreaseStock(params.Quantity)
	})
}

// changeStock loads the product, applies the mutation and persists the new
// stock together with the recorded events in one transaction. The events only
// ever reach the outbox when the stock update commits.
func (s *productService) changeStock(
	ctx context.Context,
	params ChangeStockParams,
	mutate func(*model.Product) error,
) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, err
	}

	var product model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		p, err := s.productRepo.WithDB(db).Get(ctx, params.ID)
		if err != nil {
			return fmt.Errorf("product repository get: %w", err)
		}

		if err := mutate(&p); err != nil {
			return err
		}
		p.Touch()

		if err := s.productRepo.WithDB(db).Update(ctx, p); err != nil {
			return fmt.Errorf("product repository update: %w", err)
		}

		if err := s.stageEvents(ctx, db, &p); err != nil {
			return err
		}

		product = p
		return nil
	}); err != nil {
		return model.Product{}, err
	}

	return product, nil
}

func (s *productService) LowStockProducts(ctx context.Context, threshold int) ([]model.Product, error) {
	return s.List(ctx, model.NewLowStockSpec(threshold))
}

func (s *productService) ExpensiveProducts(ctx context.Context, minPrice decimal.Decimal) ([]model.Product, error) {
	return s.List(ctx, model.NewExpensiveSpec(minPrice))
}

func (s *productService) ProductsInPriceRange(ctx context.Context, min, max decimal.Decimal) ([]model.Product, error) {
	return s.List(ctx, model.PriceRangeSpec{MinPrice: min, MaxPrice: max})
}

func (s *productService) ProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error) {
	return s.List(ctx, model.ByCategorySpec{CategoryID: categoryID})
}

// stageEvents drains the aggregate's pending events into the outbox within
// the caller's transaction, keyed by the aggregate id so the broker preserves
// their order.
func (s *productService) stageEvents(ctx context.Context, db db.DB, product *model.Product) error {
	events := product.PendingEvents()
	if len(events) == 0 {
		return nil
	}

	headers := outbox.BuildHeaders(ctx)
	repo := s.outboxMsgRepo.WithDB(db)
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}

		if err := repo.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        ev.Topic(),
			Headers:      headers,
			Payload:      payload,
			PartitionKey: ptr.New(ev.PartitionKey()),
		}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}
	}

	product.ClearPendingEvents()
	return nil
}
