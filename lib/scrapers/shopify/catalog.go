package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Karikari1234/shopify-products-scraper/lib/flatten"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	pageFetchAttempts  = 3
	pageBackoffInitial = time.Millisecond * 500
	pageBackoffMax     = time.Second * 4
)

// ProductsPage fetches one page of the catalog listing. Page numbering
// starts at 1. An empty slice marks the end of the catalog.
func (c *Client) ProductsPage(ctx context.Context, page int) ([]flatten.Record, error) {
	ctx, span := tracer.Start(ctx, "ProductsPage", trace.WithAttributes(
		attribute.Int("page", page),
	))
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		Get("/products.json")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch product listing")
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("GET %s: %s", res.Request.URL, res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, "product listing returned an error status")
		return nil, err
	}

	var payload struct {
		Products []flatten.Record `json:"products"`
	}
	dec := json.NewDecoder(bytes.NewReader(res.Body()))
	dec.UseNumber()
	err = dec.Decode(&payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode product listing")
		return nil, fmt.Errorf("decode products page %d: %w", page, err)
	}

	span.SetAttributes(attribute.Int("products", len(payload.Products)))
	return payload.Products, nil
}

// Catalog iterates the listing pages until the first empty page. Usage
// follows the sql.Rows shape, after Next returns false check Err to tell
// a truncated run from a finished catalog.
type Catalog struct {
	client *Client
	ctx    context.Context

	page  int
	items []flatten.Record
	err   error
	done  bool
}

func (c *Client) Catalog(ctx context.Context) *Catalog {
	return &Catalog{client: c, ctx: ctx}
}

func (it *Catalog) Next() bool {
	if it.done {
		return false
	}

	page := it.page + 1
	items, err := it.fetchPage(page)
	if err != nil {
		it.err = fmt.Errorf("page %d: %w", page, err)
		it.done = true
		return false
	}
	if len(items) == 0 {
		it.done = true
		return false
	}

	it.page = page
	it.items = items
	return true
}

// Page returns the records fetched by the last successful Next.
func (it *Catalog) Page() []flatten.Record {
	return it.items
}

func (it *Catalog) PageNumber() int {
	return it.page
}

func (it *Catalog) Err() error {
	return it.err
}

// fetchPage retries transient failures before giving up, an empty page is
// returned as-is since it is the catalog's natural end.
func (it *Catalog) fetchPage(page int) ([]flatten.Record, error) {
	var lastErr error
	for attempt := 0; attempt < pageFetchAttempts; attempt++ {
		if err := it.ctx.Err(); err != nil {
			return nil, err
		}
		if attempt > 0 {
			sleep := backoffSleep(pageBackoffInitial, pageBackoffMax, attempt-1)
			timer := time.NewTimer(sleep)
			select {
			case <-timer.C:
			case <-it.ctx.Done():
				timer.Stop()
				return nil, it.ctx.Err()
			}
		}

		items, err := it.client.ProductsPage(it.ctx, page)
		if err == nil {
			return items, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func backoffSleep(initial, max time.Duration, attempt int) time.Duration {
	sleep := initial
	for i := 0; i < attempt && sleep < max; i++ {
		sleep *= 2
		if sleep > max {
			return max
		}
	}
	return sleep
}
