package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/Karikari1234/shopify-products-scraper/lib/flatten"
	"github.com/Karikari1234/shopify-products-scraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Product fetches the complete record for one handle, including variants
// and images the listing payload omits.
func (c *Client) Product(ctx context.Context, handle string) (flatten.Record, error) {
	ctx, span := tracer.Start(ctx, "Product", trace.WithAttributes(
		attribute.String("handle", handle),
	))
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/products/%s.json", url.PathEscape(handle)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch product detail")
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("GET %s: %s", res.Request.URL, res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, "product detail returned an error status")
		return nil, err
	}

	var payload struct {
		Product flatten.Record `json:"product"`
	}
	dec := json.NewDecoder(bytes.NewReader(res.Body()))
	dec.UseNumber()
	err = dec.Decode(&payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode product detail")
		return nil, fmt.Errorf("decode product %q: %w", handle, err)
	}
	if payload.Product == nil {
		err := fmt.Errorf("product %q: payload has no product object", handle)
		span.RecordError(err)
		span.SetStatus(codes.Error, "product detail payload empty")
		return nil, err
	}

	return payload.Product, nil
}

// PageMeta fetches the rendered product page and extracts its title and
// meta description.
func (c *Client) PageMeta(ctx context.Context, handle string) (htmlutil.PageMeta, error) {
	ctx, span := tracer.Start(ctx, "PageMeta", trace.WithAttributes(
		attribute.String("handle", handle),
	))
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/products/%s", url.PathEscape(handle)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch product page")
		return htmlutil.PageMeta{}, err
	}
	if res.IsError() {
		err := fmt.Errorf("GET %s: %s", res.Request.URL, res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, "product page returned an error status")
		return htmlutil.PageMeta{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse product page html")
		return htmlutil.PageMeta{}, fmt.Errorf("parse product page %q: %w", handle, err)
	}

	return htmlutil.ExtractPageMeta(ctx, doc), nil
}

// Handle pulls the handle field from a listing record.
func Handle(rec flatten.Record) (string, bool) {
	handle, ok := rec["handle"].(string)
	if !ok || handle == "" {
		return "", false
	}
	return handle, true
}
