package catalog

import (
	"github.com/Karikari1234/shopify-products-scraper/lib/flatten"
	"github.com/Karikari1234/shopify-products-scraper/lib/htmlutil"
	"github.com/Karikari1234/shopify-products-scraper/lib/tabular"
)

// RowBuilder aligns flattened products to a frozen schema. Missing
// fields become empty cells, every returned row is exactly as wide as
// the schema's header.
type RowBuilder struct {
	Schema          Schema
	IncludeVariants bool
}

// Rows builds the output rows for one resolved product. Non-variant
// mode always yields one row. Variant mode yields one row per variant,
// zero rows when the variant list is empty, and a single row with blank
// variant cells when the payload has no variant list at all.
func (b RowBuilder) Rows(scrapedUrl string, meta htmlutil.PageMeta, product flatten.Record) []tabular.Row {
	flat := flatten.Flatten(product)

	prefix := make(tabular.Row, 0, 3+len(b.Schema.ProductFields))
	prefix = append(prefix, scrapedUrl, meta.Title, meta.Description)
	for _, field := range b.Schema.ProductFields {
		prefix = append(prefix, flat[field])
	}

	if !b.IncludeVariants {
		return []tabular.Row{b.pad(prefix)}
	}

	variants, hasList := variantRecords(product)
	if !hasList {
		return []tabular.Row{b.pad(prefix)}
	}

	rows := make([]tabular.Row, 0, len(variants))
	for _, variant := range variants {
		variantFlat := flatten.Flatten(variant)

		// rows share the product prefix, copy before appending
		row := make(tabular.Row, len(prefix), len(prefix)+len(b.Schema.VariantFields))
		copy(row, prefix)
		for _, field := range b.Schema.VariantFields {
			row = append(row, variantFlat[field])
		}
		rows = append(rows, row)
	}
	return rows
}

// pad widens a prefix row with blank variant cells so its length always
// matches the header.
func (b RowBuilder) pad(prefix tabular.Row) tabular.Row {
	for range b.Schema.VariantFields {
		prefix = append(prefix, "")
	}
	return prefix
}
