// Package projection derives the operator-visible product list from the
// cached product set and a filter/sort configuration. It holds no state:
// Apply is a pure function, recomputed whenever either input changes.
package projection

import (
	"slices"
	"sort"
	"strings"

	"github.com/caraseli02/inventory-app-sub002/internal/catalog"
)

// Field selects the sort key.
type Field string

const (
	FieldName     Field = "name"
	FieldStock    Field = "stock"
	FieldPrice    Field = "price"
	FieldCategory Field = "category"
)

// Dir selects the sort direction.
type Dir string

const (
	Asc  Dir = "asc"
	Desc Dir = "desc"
)

// Config is the filter/sort configuration.
type Config struct {
	Search       string
	Category     string
	LowStockOnly bool
	SortField    Field
	SortDir      Dir
}

// DefaultConfig returns the reset state: no filters, name ascending.
func DefaultConfig() Config {
	return Config{SortField: FieldName, SortDir: Asc}
}

// Result is the derived view plus its aggregates. Total and Filtered are
// recomputed from the same pipeline outputs, never tracked as counters.
type Result struct {
	Items      catalog.ProductList
	Categories []string
	Total      int
	Filtered   int
}

// Apply runs the pipeline in fixed order: text filter, category filter,
// low-stock filter, stable sort (reversed when descending). The input slice
// is never mutated.
func Apply(products catalog.ProductList, cfg Config) Result {
	items := make(catalog.ProductList, 0, len(products))

	search := strings.ToLower(strings.TrimSpace(cfg.Search))
	for _, p := range products {
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if cfg.Category != "" && p.Category != cfg.Category {
			continue
		}
		if cfg.LowStockOnly && !p.LowStock() {
			continue
		}
		items = append(items, p)
	}

	sortItems(items, cfg.SortField)
	if cfg.SortDir == Desc {
		slices.Reverse(items)
	}

	return Result{
		Items:      items,
		Categories: categories(products),
		Total:      len(products),
		Filtered:   len(items),
	}
}

func matchesSearch(p catalog.Product, search string) bool {
	if strings.Contains(strings.ToLower(p.Name), search) {
		return true
	}
	// An absent barcode never matches.
	return p.Barcode != "" && strings.Contains(strings.ToLower(p.Barcode), search)
}

func sortItems(items catalog.ProductList, field Field) {
	switch field {
	case FieldStock:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Stock < items[j].Stock
		})
	case FieldPrice:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Price.Cmp(items[j].Price) < 0
		})
	case FieldCategory:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Category) < strings.ToLower(items[j].Category)
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
		})
	}
}

// categories returns the distinct category set of the full (pre-filter)
// product list, sorted for stable display.
func categories(products catalog.ProductList) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
