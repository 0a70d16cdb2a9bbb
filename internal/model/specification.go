package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultLowStockThreshold = 10

var DefaultExpensiveMinPrice = decimal.NewFromInt(1000)

// ProductSpec is a named predicate over products. A spec value has two
// interpretations derived from the same fields: the pure in-memory Match
// below, and the SQL translation in the repository package. Both paths must
// select the same products.
type ProductSpec interface {
	Match(p Product) bool
}

// LowStockSpec selects products with stock strictly below the threshold.
type LowStockSpec struct {
	Threshold int
}

func NewLowStockSpec(threshold int) LowStockSpec {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return LowStockSpec{Threshold: threshold}
}

func (s LowStockSpec) Match(p Product) bool {
	return p.Stock < s.Threshold
}

// ExpensiveSpec selects products priced at or above MinPrice.
type ExpensiveSpec struct {
	MinPrice decimal.Decimal
}

func NewExpensiveSpec(minPrice decimal.Decimal) ExpensiveSpec {
	if minPrice.IsZero() {
		minPrice = DefaultExpensiveMinPrice
	}
	return ExpensiveSpec{MinPrice: minPrice}
}

func (s ExpensiveSpec) Match(p Product) bool {
	return p.Price.GreaterThanOrEqual(s.MinPrice)
}

// PriceRangeSpec selects products priced within [MinPrice, MaxPrice].
type PriceRangeSpec struct {
	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal
}

func (s PriceRangeSpec) Match(p Product) bool {
	return p.Price.GreaterThanOrEqual(s.MinPrice) && p.Price.LessThanOrEqual(s.MaxPrice)
}

// ByCategorySpec selects products belonging to one category.
type ByCategorySpec struct {
	CategoryID uuid.UUID
}

func (s ByCategorySpec) Match(p Product) bool {
	return p.CategoryID == s.CategoryID
}

// ByNameSpec selects products by exact name. Used for the advisory
// duplicate-name check; the unique index remains the authoritative guard.
type ByNameSpec struct {
	Name string
}

func (s ByNameSpec) Match(p Product) bool {
	return p.Name == s.Name
}

// AndSpec combines specs conjunctively.
type AndSpec struct {
	Specs []ProductSpec
}

func And(specs ...ProductSpec) AndSpec {
	return AndSpec{Specs: specs}
}

func (s AndSpec) Match(p Product) bool {
	for _, spec := range s.Specs {
		if !spec.Match(p) {
			return false
		}
	}
	return true
}
