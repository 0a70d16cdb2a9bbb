package repository

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vmtuan/stockroom/internal/model"
)

// BuildProductWhere translates a product specification into a SQL condition
// with named arguments. This is the storage interpretation of the same spec
// values that model.ProductSpec.Match interprets in memory; the two must
// select the same rows (see the equivalence tests).
//
// A nil spec translates to TRUE (no filtering).
func BuildProductWhere(spec model.ProductSpec) (string, pgx.NamedArgs, error) {
	b := &whereBuilder{args: pgx.NamedArgs{}}

	cond, err := b.build(spec)
	if err != nil {
		return "", nil, err
	}

	return cond, b.args, nil
}

type whereBuilder struct {
	args pgx.NamedArgs
	n    int
}

func (b *whereBuilder) bind(v any) string {
	name := fmt.Sprintf("p%d", b.n)
	b.n++
	b.args[name] = v
	return "@" + name
}

func (b *whereBuilder) build(spec model.ProductSpec) (string, error) {
	switch s := spec.(type) {
	case nil:
		return "TRUE", nil
	case model.LowStockSpec:
		return "stock < " + b.bind(s.Threshold), nil
	case model.ExpensiveSpec:
		return "price >= " + b.bind(s.MinPrice.String()), nil
	case model.PriceRangeSpec:
		return fmt.Sprintf("price >= %s AND price <= %s",
			b.bind(s.MinPrice.String()), b.bind(s.MaxPrice.String())), nil
	case model.ByCategorySpec:
		return "category_id = " + b.bind(s.CategoryID), nil
	case model.ByNameSpec:
		return "name = " + b.bind(s.Name), nil
	case model.AndSpec:
		if len(s.Specs) == 0 {
			return "TRUE", nil
		}
		parts := make([]string, 0, len(s.Specs))
		for _, inner := range s.Specs {
			cond, err := b.build(inner)
			if err != nil {
				return "", err
			}
			parts = append(parts, "("+cond+")")
		}
		return strings.Join(parts, " AND "), nil
	default:
		return "", fmt.Errorf("unsupported product spec %T", spec)
	}
}
