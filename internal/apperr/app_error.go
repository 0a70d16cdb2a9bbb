package apperr

import (
	"errors"

	"github.com/vmtuan/stockroom/pkg/zerror"
)

const (
	CodeInvalidProductName        = "INVALID_PRODUCT_NAME"
	CodeInvalidProductPrice       = "INVALID_PRODUCT_PRICE"
	CodeInvalidProductStock       = "INVALID_PRODUCT_STOCK"
	CodeInvalidProductDescription = "INVALID_PRODUCT_DESCRIPTION"
	CodeInsufficientStock         = "INSUFFICIENT_STOCK"
	CodeDuplicateProductName      = "DUPLICATE_PRODUCT_NAME"
	CodeProductNotFound           = "PRODUCT_NOT_FOUND"

	CodeInvalidCategoryName        = "INVALID_CATEGORY_NAME"
	CodeInvalidCategoryDescription = "INVALID_CATEGORY_DESCRIPTION"
	CodeDuplicateCategoryName      = "DUPLICATE_CATEGORY_NAME"
	CodeCategoryNotFound           = "CATEGORY_NOT_FOUND"
	CodeCategoryHasProducts        = "CATEGORY_HAS_PRODUCTS"

	CodeValidationFailed = "VALIDATION_FAILED"
)

var (
	ErrInvalidProductName        = zerror.NewValidationFailed(CodeInvalidProductName, "product name must be non-empty and between 3 and 128 characters")
	ErrInvalidProductPrice       = zerror.NewValidationFailed(CodeInvalidProductPrice, "product price is out of range")
	ErrInvalidProductStock       = zerror.NewValidationFailed(CodeInvalidProductStock, "product stock is out of range")
	ErrInvalidProductDescription = zerror.NewValidationFailed(CodeInvalidProductDescription, "product description is too long")
	ErrInsufficientStock         = zerror.NewUnprocessableEntity(CodeInsufficientStock, "requested quantity exceeds available stock")
	ErrDuplicateProductName      = zerror.NewConflict(CodeDuplicateProductName, "a product with this name already exists")
	ErrProductNotFound           = zerror.NewNotFound(CodeProductNotFound, "product not found")

	ErrInvalidCategoryName        = zerror.NewValidationFailed(CodeInvalidCategoryName, "category name must be non-empty and at most 128 characters")
	ErrInvalidCategoryDescription = zerror.NewValidationFailed(CodeInvalidCategoryDescription, "category description is too long")
	ErrDuplicateCategoryName      = zerror.NewConflict(CodeDuplicateCategoryName, "a category with this name already exists")
	ErrCategoryNotFound           = zerror.NewNotFound(CodeCategoryNotFound, "category not found")
	ErrCategoryHasProducts        = zerror.NewConflict(CodeCategoryHasProducts, "category still has products referencing it")

	ValidationErr = zerror.NewValidationFailed(CodeValidationFailed, "validation error")
)

// NewInsufficientStock builds an INSUFFICIENT_STOCK error carrying the data
// the caller needs to display: which product, how much was requested and how
// much is actually available.
func NewInsufficientStock(productName string, requestedQuantity, availableStock int) zerror.ZError {
	return ErrInsufficientStock.
		WithData("product_name", productName).
		WithData("requested_quantity", requestedQuantity).
		WithData("available_stock", availableStock)
}

// Code returns the ZError code of err, or an empty string if err is not a ZError.
func Code(err error) string {
	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return zErr.Code()
	}
	return ""
}
