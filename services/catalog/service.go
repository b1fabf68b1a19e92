// Package catalog turns a storefront's product listing into one flat
// table. A run discovers the column set from a sample of resolved
// products, freezes it, then streams every product (or every variant)
// through the flattener into the configured sinks.
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Karikari1234/shopify-products-scraper/lib/flatten"
	"github.com/Karikari1234/shopify-products-scraper/lib/scrapers/shopify"
	"github.com/Karikari1234/shopify-products-scraper/lib/tabular"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultSampleSize = 3

// Schema is the fixed column contract for a run. Field lists are sorted
// and deduplicated, variant fields are only populated in variant mode.
type Schema struct {
	ProductFields []string
	VariantFields []string
	// Sampled is how many resolved products informed the field sets.
	Sampled int
}

// Header lays out the final column order: the three leading columns,
// then product fields, then prefixed variant fields.
func (s Schema) Header() tabular.Header {
	header := make(tabular.Header, 0, 3+len(s.ProductFields)+len(s.VariantFields))
	header = append(header, "scraped_url", "meta_title", "meta_description")
	header = append(header, s.ProductFields...)
	for _, field := range s.VariantFields {
		header = append(header, "variant_"+field)
	}
	return header
}

type DiscoverOptions struct {
	IncludeVariants bool
	// SampleSize caps how many first-page products inform the field
	// sets. Zero keeps the default of 3. Fields that only appear on
	// products outside the sample are dropped from every row, larger
	// samples trade startup time for coverage.
	SampleSize int
	// Prescan resolves every product in the catalog up front instead
	// of sampling the first page. Complete coverage, but each product
	// detail is fetched twice across a full run.
	Prescan bool
}

// DiscoverSchema fixes the column set before any row is built. It fails
// when the catalog yields nothing to sample, a schema discovered from
// zero products would silently produce an empty table.
func DiscoverSchema(ctx context.Context, client *shopify.Client, opts DiscoverOptions) (Schema, error) {
	ctx, span := tracer.Start(ctx, "DiscoverSchema", trace.WithAttributes(
		attribute.Bool("prescan", opts.Prescan),
	))
	defer span.End()

	productFields := flatten.NewFieldSet()
	variantFields := flatten.NewFieldSet()
	sampled := 0

	sample := func(rec flatten.Record) {
		handle, ok := shopify.Handle(rec)
		if !ok {
			slog.WarnContext(ctx, "listing record has no handle, skipping")
			return
		}
		product, err := client.Product(ctx, handle)
		if err != nil {
			slog.WarnContext(ctx, "failed to resolve product for schema discovery", "handle", handle, "err", err)
			return
		}
		productFields.AddRecord(product)
		if opts.IncludeVariants {
			variants, _ := variantRecords(product)
			for _, variant := range variants {
				variantFields.AddRecord(variant)
			}
		}
		sampled++
	}

	if opts.Prescan {
		pages := client.Catalog(ctx)
		for pages.Next() {
			slog.InfoContext(ctx, "prescanning page", "page", pages.PageNumber(), "products", len(pages.Page()))
			for _, rec := range pages.Page() {
				sample(rec)
			}
		}
		if err := pages.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "prescan could not walk the catalog")
			return Schema{}, err
		}
	} else {
		pages := client.Catalog(ctx)
		if !pages.Next() {
			err := pages.Err()
			if err == nil {
				err = errors.New("the catalog's first page has no products")
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "no first page to sample")
			return Schema{}, err
		}

		records := pages.Page()
		size := opts.SampleSize
		if size <= 0 {
			size = defaultSampleSize
		}
		if size > len(records) {
			size = len(records)
		}
		for _, rec := range records[:size] {
			sample(rec)
		}
	}

	if sampled == 0 {
		err := errors.New("schema discovery sampled no products")
		span.RecordError(err)
		span.SetStatus(codes.Error, "empty sample")
		return Schema{}, err
	}

	schema := Schema{
		ProductFields: productFields.Sorted(),
		VariantFields: variantFields.Sorted(),
		Sampled:       sampled,
	}
	span.SetAttributes(
		attribute.Int("sampled", schema.Sampled),
		attribute.Int("product_fields", len(schema.ProductFields)),
		attribute.Int("variant_fields", len(schema.VariantFields)),
	)
	return schema, nil
}

// variantRecords returns the record elements of the product's variant
// list. The second return is false when the payload carries no list at
// all, which row building treats differently from an empty one.
func variantRecords(product flatten.Record) ([]flatten.Record, bool) {
	raw, present := product["variants"]
	if !present {
		return nil, false
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, false
	}

	var records []flatten.Record
	for _, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			continue
		}
		records = append(records, flatten.Record(rec))
	}
	return records, true
}
