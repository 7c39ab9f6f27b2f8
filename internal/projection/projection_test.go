package projection

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caraseli02/inventory-app-sub002/internal/catalog"
)

func demoProducts() catalog.ProductList {
	return catalog.ProductList{
		{ID: "1", Name: "Espresso Beans", Barcode: "4006381333931", Category: "Coffee", Price: decimal.NewFromFloat(18.50), Stock: 24, MinStock: 10},
		{ID: "2", Name: "Oat Milk", Barcode: "7350002401224", Category: "Dairy", Price: decimal.NewFromFloat(2.95), Stock: 6, MinStock: 12},
		{ID: "3", Name: "Paper Cups", Barcode: "5000112637922", Category: "Supplies", Price: decimal.NewFromFloat(4.20), Stock: 40},
		{ID: "4", Name: "Ceramic Mug", Category: "Merch", Price: decimal.NewFromFloat(9.99), Stock: 3, MinStock: 5},
	}
}

func names(items catalog.ProductList) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.Name
	}
	return out
}

func Test_Apply_DefaultConfigSortsByNameAscending(t *testing.T) {
	// given
	products := demoProducts()

	// when
	result := Apply(products, DefaultConfig())

	// then every product is visible, sorted by name
	assert.Equal(t, []string{"Ceramic Mug", "Espresso Beans", "Oat Milk", "Paper Cups"}, names(result.Items))
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 4, result.Filtered)
}

func Test_Apply_SearchFilter(t *testing.T) {
	testCases := []struct {
		name     string
		search   string
		expected []string
	}{
		{
			name:     "matches name case-insensitively",
			search:   "  MILK ",
			expected: []string{"Oat Milk"},
		},
		{
			name:     "matches barcode substring",
			search:   "400638",
			expected: []string{"Espresso Beans"},
		},
		{
			name:     "blank search matches everything",
			search:   "   ",
			expected: []string{"Ceramic Mug", "Espresso Beans", "Oat Milk", "Paper Cups"},
		},
		{
			name:     "no match yields empty view",
			search:   "zzz",
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Search = tc.search

			result := Apply(demoProducts(), cfg)

			assert.Equal(t, tc.expected, names(result.Items))
			assert.Equal(t, 4, result.Total, "total always counts the unfiltered set")
		})
	}
}

func Test_Apply_AbsentBarcodeNeverMatchesSearch(t *testing.T) {
	// given a product without a barcode and a search that would match an
	// empty string
	products := catalog.ProductList{{ID: "1", Name: "Unlabeled"}}
	cfg := DefaultConfig()
	cfg.Search = "x"

	result := Apply(products, cfg)

	assert.Empty(t, result.Items)
}

func Test_Apply_CategoryFilterIsExact(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Category = "Coffee"

	result := Apply(demoProducts(), cfg)

	assert.Equal(t, []string{"Espresso Beans"}, names(result.Items))

	// case-sensitive: a lowercased category matches nothing
	cfg.Category = "coffee"
	assert.Empty(t, Apply(demoProducts(), cfg).Items)
}

func Test_Apply_LowStockFilter(t *testing.T) {
	// given: Oat Milk (6 < 12) and Ceramic Mug (3 < 5) are low; Paper Cups has
	// no minimum configured and must not count even at low stock
	cfg := DefaultConfig()
	cfg.LowStockOnly = true

	result := Apply(demoProducts(), cfg)

	assert.Equal(t, []string{"Ceramic Mug", "Oat Milk"}, names(result.Items))
}

func Test_Apply_SortFields(t *testing.T) {
	testCases := []struct {
		name     string
		field    Field
		dir      Dir
		expected []string
	}{
		{
			name:     "stock ascending",
			field:    FieldStock,
			dir:      Asc,
			expected: []string{"Ceramic Mug", "Oat Milk", "Espresso Beans", "Paper Cups"},
		},
		{
			name:     "stock descending",
			field:    FieldStock,
			dir:      Desc,
			expected: []string{"Paper Cups", "Espresso Beans", "Oat Milk", "Ceramic Mug"},
		},
		{
			name:     "price ascending",
			field:    FieldPrice,
			dir:      Asc,
			expected: []string{"Oat Milk", "Paper Cups", "Ceramic Mug", "Espresso Beans"},
		},
		{
			name:     "category ascending",
			field:    FieldCategory,
			dir:      Asc,
			expected: []string{"Espresso Beans", "Oat Milk", "Ceramic Mug", "Paper Cups"},
		},
		{
			name:     "name descending",
			field:    FieldName,
			dir:      Desc,
			expected: []string{"Paper Cups", "Oat Milk", "Espresso Beans", "Ceramic Mug"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{SortField: tc.field, SortDir: tc.dir}

			result := Apply(demoProducts(), cfg)

			assert.Equal(t, tc.expected, names(result.Items))
		})
	}
}

func Test_Apply_SortIsStable(t *testing.T) {
	// given three products with equal stock: ties keep input order, and the
	// result is identical across runs
	products := catalog.ProductList{
		{ID: "1", Name: "Alpha", Stock: 5},
		{ID: "2", Name: "Beta", Stock: 5},
		{ID: "3", Name: "Gamma", Stock: 5},
	}
	cfg := Config{SortField: FieldStock, SortDir: Asc}

	first := Apply(products, cfg)
	second := Apply(products, cfg)

	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, names(first.Items), "ties preserve input order")
	assert.Equal(t, names(first.Items), names(second.Items))
}

func Test_Apply_DescIsReversedAsc(t *testing.T) {
	// ascending then reversing must equal descending directly, per field
	for _, field := range []Field{FieldName, FieldStock, FieldPrice, FieldCategory} {
		t.Run(string(field), func(t *testing.T) {
			asc := Apply(demoProducts(), Config{SortField: field, SortDir: Asc})
			desc := Apply(demoProducts(), Config{SortField: field, SortDir: Desc})

			reversed := names(asc.Items)
			for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
				reversed[i], reversed[j] = reversed[j], reversed[i]
			}
			assert.Equal(t, reversed, names(desc.Items))
		})
	}
}

func Test_Apply_DoesNotMutateInput(t *testing.T) {
	// given an unsorted input list
	products := catalog.ProductList{
		{ID: "1", Name: "Zed"},
		{ID: "2", Name: "Alpha"},
	}
	cfg := DefaultConfig()

	result := Apply(products, cfg)

	require.Equal(t, []string{"Alpha", "Zed"}, names(result.Items))
	assert.Equal(t, "Zed", products[0].Name, "input order must be untouched")
}

func Test_Apply_CategoriesComeFromFullSet(t *testing.T) {
	// given a category filter that narrows the view to one category
	cfg := DefaultConfig()
	cfg.Category = "Coffee"

	result := Apply(demoProducts(), cfg)

	// then the category list still reflects the whole product set, sorted
	assert.Equal(t, []string{"Coffee", "Dairy", "Merch", "Supplies"}, result.Categories)
	assert.Equal(t, 1, result.Filtered)
	assert.Equal(t, 4, result.Total)
}

func Test_Apply_EmptyInput(t *testing.T) {
	result := Apply(nil, DefaultConfig())

	assert.Empty(t, result.Items)
	assert.Empty(t, result.Categories)
	assert.Zero(t, result.Total)
	assert.Zero(t, result.Filtered)
}
