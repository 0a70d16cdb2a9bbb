package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/vmtuan/stockroom/internal/apperr"
	"github.com/vmtuan/stockroom/internal/model"
	"github.com/vmtuan/stockroom/internal/storage/db"
)

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	Create(ctx context.Context, product model.Product) error
	Get(ctx context.Context, id uuid.UUID) (model.Product, error)
	Update(ctx context.Context, product model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns products matching the spec, oldest first. A nil spec
	// returns all products.
	List(ctx context.Context, spec model.ProductSpec) ([]model.Product, error)
	CountMatching(ctx context.Context, spec model.ProductSpec) (int64, error)
	ExistsMatching(ctx context.Context, spec model.ProductSpec) (bool, error)

	// ExistsOtherWithName reports whether a product other than excludeID
	// already uses the given name. Advisory only; the unique index is the
	// authoritative guard.
	ExistsOtherWithName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = "id, name, price, stock, description, category_id, created_at, updated_at"

func (r productRepository) Create(ctx context.Context, product model.Product) error {
	price, err := numericFromDecimal(product.Price)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, price, stock, description, category_id, created_at, updated_at)
		VALUES (@id, @name, @price, @stock, @description, @category_id, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":          product.ID,
		"name":        product.Name,
		"price":       price,
		"stock":       product.Stock,
		"description": product.Description,
		"category_id": product.CategoryID,
		"created_at":  product.CreatedAt,
		"updated_at":  product.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r productRepository) Get(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, apperr.ErrProductNotFound.WithData("product_id", id.String())
		}
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func (r productRepository) Update(ctx context.Context, product model.Product) error {
	price, err := numericFromDecimal(product.Price)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name        = @name,
			price       = @price,
			stock       = @stock,
			description = @description,
			category_id = @category_id,
			updated_at  = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":          product.ID,
		"name":        product.Name,
		"price":       price,
		"stock":       product.Stock,
		"description": product.Description,
		"category_id": product.CategoryID,
		"updated_at":  product.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrProductNotFound.WithData("product_id", product.ID.String())
	}

	return nil
}

func (r productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrProductNotFound.WithData("product_id", id.String())
	}

	return nil
}

func (r productRepository) List(ctx context.Context, spec model.ProductSpec) ([]model.Product, error) {
	cond, args, err := BuildProductWhere(spec)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE `+cond+`
		ORDER BY created_at, id
	`, args)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (r productRepository) CountMatching(ctx context.Context, spec model.ProductSpec) (int64, error) {
	cond, args, err := BuildProductWhere(spec)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM products WHERE `+cond,
		args,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	return count, nil
}

func (r productRepository) ExistsMatching(ctx context.Context, spec model.ProductSpec) (bool, error) {
	cond, args, err := BuildProductWhere(spec)
	if err != nil {
		return false, err
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM products WHERE `+cond+`)`,
		args,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("products exist: %w", err)
	}

	return exists, nil
}

func (r productRepository) ExistsOtherWithName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM products WHERE name = $1 AND id <> $2)
	`, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("product name exists: %w", err)
	}

	return exists, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		product model.Product
		price   pgtype.Numeric
	)
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&price,
		&product.Stock,
		&product.Description,
		&product.CategoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return model.Product{}, err
	}

	d, err := decimalFromNumeric(price)
	if err != nil {
		return model.Product{}, err
	}
	product.Price = d

	return product, nil
}

func numericFromDecimal(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("convert decimal to numeric: %w", err)
	}
	return n, nil
}

func decimalFromNumeric(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Decimal{}, fmt.Errorf("numeric is null")
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}
