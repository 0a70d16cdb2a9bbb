package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vmtuan/stockroom/internal/apperr"
	"github.com/vmtuan/stockroom/internal/model"
	"github.com/vmtuan/stockroom/internal/storage/db"
)

type CategoryRepository interface {
	WithDB(db db.DB) CategoryRepository
	Create(ctx context.Context, category model.Category) error
	Get(ctx context.Context, id uuid.UUID) (model.Category, error)
	Update(ctx context.Context, category model.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]model.Category, error)

	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsOtherWithName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
}

type categoryRepository struct {
	db db.DB
}

func NewCategoryRepository(db db.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r categoryRepository) WithDB(db db.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = "id, name, description, created_at, updated_at"

func (r categoryRepository) Create(ctx context.Context, category model.Category) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES (@id, @name, @description, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":          category.ID,
		"name":        category.Name,
		"description": category.Description,
		"created_at":  category.CreatedAt,
		"updated_at":  category.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

func (r categoryRepository) Get(ctx context.Context, id uuid.UUID) (model.Category, error) {
	var category model.Category
	if err := r.db.QueryRow(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = $1
	`, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Category{}, apperr.ErrCategoryNotFound.WithData("category_id", id.String())
		}
		return model.Category{}, fmt.Errorf("get category: %w", err)
	}

	return category, nil
}

func (r categoryRepository) Update(ctx context.Context, category model.Category) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE categories
		SET name        = @name,
			description = @description,
			updated_at  = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":          category.ID,
		"name":        category.Name,
		"description": category.Description,
		"updated_at":  category.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrCategoryNotFound.WithData("category_id", category.ID.String())
	}

	return nil
}

func (r categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrCategoryNotFound.WithData("category_id", id.String())
	}

	return nil
}

func (r categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var category model.Category
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&category.CreatedAt,
			&category.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

func (r categoryRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)
	`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("category exists: %w", err)
	}

	return exists, nil
}

func (r categoryRepository) ExistsOtherWithName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1 AND id <> $2)
	`, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("category name exists: %w", err)
	}

	return exists, nil
}
