package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TopicProductCreated      = "product.created"
	TopicProductStockChanged = "product.stock_changed"
)

// DomainEvent is an immutable fact recorded by an aggregate mutation. Events
// are published through the outbox after the mutation commits; the partition
// key keeps events of one aggregate in order on the broker.
type DomainEvent interface {
	Topic() string
	PartitionKey() string
}

type StockChangeType string

const (
	StockIncreased StockChangeType = "increased"
	StockDecreased StockChangeType = "decreased"
)

type StockChangedEvent struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	OldStock     int             `json:"old_stock"`
	NewStock     int             `json:"new_stock"`
	ChangeAmount int             `json:"change_amount"`
	ChangeType   StockChangeType `json:"change_type"`
	ChangedAt    time.Time       `json:"changed_at"`
}

func NewStockChangedEvent(
	productID uuid.UUID,
	productName string,
	oldStock, newStock int,
	changeType StockChangeType,
) StockChangedEvent {
	changeAmount := newStock - oldStock
	if changeAmount < 0 {
		changeAmount = -changeAmount
	}

	return StockChangedEvent{
		ProductID:    productID,
		ProductName:  productName,
		OldStock:     oldStock,
		NewStock:     newStock,
		ChangeAmount: changeAmount,
		ChangeType:   changeType,
		ChangedAt:    time.Now().UTC(),
	}
}

func (e StockChangedEvent) Topic() string { return TopicProductStockChanged }

func (e StockChangedEvent) PartitionKey() string { return e.ProductID.String() }

type ProductCreatedEvent struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	CategoryID uuid.UUID       `json:"category_id"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (e ProductCreatedEvent) Topic() string { return TopicProductCreated }

func (e ProductCreatedEvent) PartitionKey() string { return e.ProductID.String() }
