package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vmtuan/stockroom/internal/apperr"
)

const (
	ProductMinNameLength        = 3
	ProductMaxNameLength        = 128
	ProductMaxDescriptionLength = 1000

	ProductMinStock = 0
	ProductMaxStock = 100_000
)

// Price bounds are inclusive.
var (
	ProductMinPrice = decimal.New(1, -2) // 0.01
	ProductMaxPrice = decimal.NewFromInt(1_000_000)
)

// Product is the aggregate root for inventory items. Fields are exported for
// persistence and serialization, but all mutations must go through the setter
// methods so the invariants (name/price/stock bounds, stock never negative)
// hold after every change. Stock movements additionally record a
// StockChangedEvent on the aggregate; the pending events are dispatched by
// the persistence boundary after a successful commit, never from here.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description *string         `json:"description,omitempty"`
	CategoryID  uuid.UUID       `json:"category_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	pendingEvents []DomainEvent
}

// NewProduct validates all fields together and constructs the product
// all-or-nothing: the first violated field aborts construction and no
// product value is returned. A ProductCreatedEvent is recorded on the new
// aggregate for dispatch after the insert commits.
func NewProduct(
	id uuid.UUID,
	name string,
	price decimal.Decimal,
	stock int,
	categoryID uuid.UUID,
	description *string,
) (*Product, error) {
	now := time.Now().UTC()
	p := &Product{
		ID:         id,
		CategoryID: categoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := p.SetName(name); err != nil {
		return nil, err
	}
	if err := p.SetPrice(price); err != nil {
		return nil, err
	}
	if err := p.SetStock(stock); err != nil {
		return nil, err
	}
	if err := p.SetDescription(description); err != nil {
		return nil, err
	}

	p.appendEvent(ProductCreatedEvent{
		ProductID:  p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		CategoryID: p.CategoryID,
		CreatedAt:  now,
	})

	return p, nil
}

// SetName rejects whitespace-only names as empty and bounds the length to
// [ProductMinNameLength, ProductMaxNameLength]. The name is stored as given.
func (p *Product) SetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.ErrInvalidProductName.WithData("name", name)
	}

	length := utf8.RuneCountInString(name)
	if length < ProductMinNameLength || length > ProductMaxNameLength {
		return apperr.ErrInvalidProductName.
			WithData("name", name).
			WithData("min_length", ProductMinNameLength).
			WithData("max_length", ProductMaxNameLength)
	}

	p.Name = name
	return nil
}

func (p *Product) SetPrice(price decimal.Decimal) error {
	if price.LessThan(ProductMinPrice) || price.GreaterThan(ProductMaxPrice) {
		return apperr.ErrInvalidProductPrice.
			WithData("price", price.String()).
			WithData("min_price", ProductMinPrice.String()).
			WithData("max_price", ProductMaxPrice.String())
	}

	p.Price = price
	return nil
}

func (p *Product) SetStock(stock int) error {
	if stock < ProductMinStock || stock > ProductMaxStock {
		return apperr.ErrInvalidProductStock.
			WithData("stock", stock).
			WithData("min_stock", ProductMinStock).
			WithData("max_stock", ProductMaxStock)
	}

	p.Stock = stock
	return nil
}

func (p *Product) SetDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > ProductMaxDescriptionLength {
		return apperr.ErrInvalidProductDescription.
			WithData("max_length", ProductMaxDescriptionLength)
	}

	p.Description = description
	return nil
}

// IncreaseStock raises the stock by quantity and records a StockChangedEvent.
// The quantity must be strictly positive and the resulting stock must stay
// within bounds.
func (p *Product) IncreaseStock(quantity int) error {
	if quantity <= 0 {
		return apperr.ErrInvalidProductStock.WithData("quantity", quantity)
	}
	// Compared as headroom so a huge quantity cannot overflow the sum.
	if quantity > ProductMaxStock-p.Stock {
		return apperr.ErrInvalidProductStock.
			WithData("quantity", quantity).
			WithData("stock", p.Stock).
			WithData("max_stock", ProductMaxStock)
	}

	oldStock := p.Stock
	p.Stock += quantity

	p.appendEvent(NewStockChangedEvent(p.ID, p.Name, oldStock, p.Stock, StockIncreased))
	return nil
}

// DecreaseStock lowers the stock by quantity and records a StockChangedEvent.
// Decreasing by more than the available stock fails with INSUFFICIENT_STOCK
// and leaves the aggregate untouched.
func (p *Product) DecreaseStock(quantity int) error {
	if quantity <= 0 {
		return apperr.ErrInvalidProductStock.WithData("quantity", quantity)
	}
	if p.Stock < quantity {
		return apperr.NewInsufficientStock(p.Name, quantity, p.Stock)
	}

	oldStock := p.Stock
	p.Stock -= quantity

	p.appendEvent(NewStockChangedEvent(p.ID, p.Name, oldStock, p.Stock, StockDecreased))
	return nil
}

// Touch bumps UpdatedAt. Callers that persist a mutation call this once
// before the write.
func (p *Product) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

func (p *Product) appendEvent(event DomainEvent) {
	p.pendingEvents = append(p.pendingEvents, event)
}

// PendingEvents returns the events recorded since the last clear, in the
// order the mutations happened.
func (p *Product) PendingEvents() []DomainEvent {
	return p.pendingEvents
}

// ClearPendingEvents drops the recorded events. The persistence boundary
// calls this after handing the events to the outbox.
func (p *Product) ClearPendingEvents() {
	p.pendingEvents = nil
}
