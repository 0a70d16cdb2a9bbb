package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vmtuan/stockroom/internal/apperr"
	"github.com/vmtuan/stockroom/internal/model"
	"github.com/vmtuan/stockroom/internal/repository"
	"github.com/vmtuan/stockroom/pkg/validator"
)

type CreateCategoryParams struct {
	Name        string `validate:"required"`
	Description *string
}

type UpdateCategoryParams struct {
	ID          uuid.UUID `validate:"required"`
	Name        string    `validate:"required"`
	Description *string
}

type CategoryService interface {
	Create(ctx context.Context, params CreateCategoryParams) (model.Category, error)
	Get(ctx context.Context, id uuid.UUID) (model.Category, error)
	Update(ctx context.Context, params UpdateCategoryParams) (model.Category, error)
	// Delete removes an empty category. A category that still has products
	// cannot be deleted.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]model.Category, error)
}

type categoryService struct {
	validator    validator.Validator
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewCategoryService(
	validator validator.Validator,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
) CategoryService {
	return &categoryService{
		validator:    validator,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

func (s *categoryService) Create(ctx context.Context, params CreateCategoryParams) (model.Category, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Category{}, err
	}

	taken, err := s.categoryRepo.ExistsOtherWithName(ctx, params.Name, uuid.Nil)
	if err != nil {
		return model.Category{}, fmt.Errorf("category repository name exists: %w", err)
	}
	if taken {
		return model.Category{}, apperr.ErrDuplicateCategoryName.WithData("name", params.Name)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Category{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	category, err := model.NewCategory(id, params.Name, params.Description)
	if err != nil {
		return model.Category{}, err
	}

	if err := s.categoryRepo.Create(ctx, *category); err != nil {
		return model.Category{}, fmt.Errorf("category repository create: %w", err)
	}

	return *category, nil
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (model.Category, error) {
	category, err := s.categoryRepo.Get(ctx, id)
	if err != nil {
		return model.Category{}, fmt.Errorf("category repository get: %w", err)
	}

	return category, nil
}

func (s *categoryService) Update(ctx context.Context, params UpdateCategoryParams) (model.Category, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Category{}, err
	}

	category, err := s.categoryRepo.Get(ctx, params.ID)
	if err != nil {
		return model.Category{}, fmt.Errorf("category repository get: %w", err)
	}

	if params.Name != category.Name {
		taken, err := s.categoryRepo.ExistsOtherWithName(ctx, params.Name, params.ID)
		if err != nil {
			return model.Category{}, fmt.Errorf("category repository name exists: %w", err)
		}
		if taken {
			return model.Category{}, apperr.ErrDuplicateCategoryName.WithData("name", params.Name)
		}
	}

	if err := category.SetName(params.Name); err != nil {
		return model.Category{}, err
	}
	if err := category.SetDescription(params.Description); err != nil {
		return model.Category{}, err
	}
	category.Touch()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return model.Category{}, fmt.Errorf("category repository update: %w", err)
	}

	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	hasProducts, err := s.productRepo.ExistsMatching(ctx, model.ByCategorySpec{CategoryID: id})
	if err != nil {
		return fmt.Errorf("product repository exists matching: %w", err)
	}
	if hasProducts {
		return apperr.ErrCategoryHasProducts.WithData("category_id", id.String())
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("category repository delete: %w", err)
	}

	return nil
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("category repository list: %w", err)
	}

	return categories, nil
}
