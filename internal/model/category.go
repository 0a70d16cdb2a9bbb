package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vmtuan/stockroom/internal/apperr"
)

const (
	CategoryMaxNameLength        = 128
	CategoryMaxDescriptionLength = 512
)

// Category groups products. Products reference it by id only; the category
// does not own the products' lifetime. Name uniqueness is enforced by the
// service layer and the storage unique index, not here.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewCategory(id uuid.UUID, name string, description *string) (*Category, error) {
	now := time.Now().UTC()
	c := &Category{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.SetName(name); err != nil {
		return nil, err
	}
	if err := c.SetDescription(description); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Category) SetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.ErrInvalidCategoryName.WithData("name", name)
	}
	if utf8.RuneCountInString(name) > CategoryMaxNameLength {
		return apperr.ErrInvalidCategoryName.
			WithData("name", name).
			WithData("max_length", CategoryMaxNameLength)
	}

	c.Name = name
	return nil
}

func (c *Category) Touch() {
	c.UpdatedAt = time.Now().UTC()
}

func (c *Category) SetDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > CategoryMaxDescriptionLength {
		return apperr.ErrInvalidCategoryDescription.
			WithData("max_length", CategoryMaxDescriptionLength)
	}

	c.Description = description
	return nil
}
