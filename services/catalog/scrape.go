package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Karikari1234/shopify-products-scraper/lib/flatten"
	"github.com/Karikari1234/shopify-products-scraper/lib/htmlutil"
	"github.com/Karikari1234/shopify-products-scraper/lib/scrapers/shopify"
	"github.com/Karikari1234/shopify-products-scraper/lib/tabular"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type ScrapeOptions struct {
	IncludeVariants bool
	// Workers is how many products are resolved concurrently within a
	// page. Zero or one keeps the sequential behavior. Rows land in
	// completion order, the schema is frozen so alignment is unaffected.
	Workers int
}

type Stats struct {
	RunId     string
	Pages     int
	Products  int
	Variants  int
	Skipped   int
	Columns   int
	Truncated bool
	Elapsed   time.Duration
}

type scraper struct {
	client          *shopify.Client
	sink            tabular.Sink
	builder         RowBuilder
	includeVariants bool
	workers         int
	stats           *Stats
}

type itemResult struct {
	rows     []tabular.Row
	variants int
	skipped  bool
}

// Scrape streams the whole catalog through the sink under a schema
// fixed by DiscoverSchema. Item failures are skipped and counted,
// repeated page failures truncate the run but keep what was already
// written. The sink is begun and closed here, callers only construct it.
func Scrape(ctx context.Context, client *shopify.Client, sink tabular.Sink, schema Schema, opts ScrapeOptions) (Stats, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()

	runId, err := random.String(8)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate run id")
		return Stats{}, err
	}
	span.SetAttributes(attribute.String("run_id", runId))

	start := time.Now()
	header := schema.Header()
	stats := Stats{
		RunId:   runId,
		Columns: len(header),
	}

	slog.InfoContext(ctx, "starting scrape", "run_id", runId, "columns", stats.Columns, "sampled", schema.Sampled)

	err = sink.Begin(ctx, header)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to start sink")
		return stats, fmt.Errorf("start sink: %w", err)
	}

	s := scraper{
		client: client,
		sink:   sink,
		builder: RowBuilder{
			Schema:          schema,
			IncludeVariants: opts.IncludeVariants,
		},
		includeVariants: opts.IncludeVariants,
		workers:         opts.Workers,
		stats:           &stats,
	}
	err = s.run(ctx)

	closeErr := sink.Close(ctx)
	if err == nil {
		err = closeErr
	}

	stats.Elapsed = time.Since(start)
	span.SetAttributes(
		attribute.Int("pages", stats.Pages),
		attribute.Int("products", stats.Products),
		attribute.Int("variants", stats.Variants),
		attribute.Int("skipped", stats.Skipped),
		attribute.Bool("truncated", stats.Truncated),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scrape aborted")
		return stats, err
	}
	return stats, nil
}

func (s *scraper) run(ctx context.Context) error {
	pages := s.client.Catalog(ctx)
	for pages.Next() {
		records := pages.Page()
		s.stats.Pages++
		slog.InfoContext(ctx, "scraping page", "page", pages.PageNumber(), "products", len(records))

		var err error
		if s.workers > 1 {
			err = s.processPageParallel(ctx, records)
		} else {
			err = s.processPage(ctx, records)
		}
		if err != nil {
			return err
		}
	}

	err := pages.Err()
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		// transport gave up on a page after retries, everything before
		// it is already in the sink
		slog.WarnContext(ctx, "catalog listing ended early", "err", err, "pages", s.stats.Pages)
		s.stats.Truncated = true
	}
	return nil
}

func (s *scraper) processPage(ctx context.Context, records []flatten.Record) error {
	for _, rec := range records {
		err := s.note(ctx, s.processItem(ctx, rec))
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *scraper) processPageParallel(ctx context.Context, records []flatten.Record) error {
	jobs := make(chan flatten.Record)
	results := make(chan itemResult)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				results <- s.processItem(ctx, rec)
			}
		}()
	}
	go func() {
		for _, rec := range records {
			jobs <- rec
		}
		close(jobs)
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for res := range results {
		if firstErr != nil {
			// keep draining so the workers can exit
			continue
		}
		firstErr = s.note(ctx, res)
	}
	return firstErr
}

func (s *scraper) processItem(ctx context.Context, rec flatten.Record) itemResult {
	handle, ok := shopify.Handle(rec)
	if !ok {
		slog.WarnContext(ctx, "listing record has no handle, skipping")
		return itemResult{skipped: true}
	}
	scrapedUrl := s.client.ProductUrl(handle)
	slog.InfoContext(ctx, "scraping product", "url", scrapedUrl)

	product, err := s.client.Product(ctx, handle)
	if err != nil {
		slog.WarnContext(ctx, "failed to resolve product detail", "handle", handle, "err", err)
		return itemResult{skipped: true}
	}

	meta, err := s.client.PageMeta(ctx, handle)
	if err != nil {
		// the row still goes out, just with blank meta columns
		slog.WarnContext(ctx, "failed to fetch product page meta", "handle", handle, "err", err)
		meta = htmlutil.PageMeta{}
	}

	res := itemResult{
		rows: s.builder.Rows(scrapedUrl, meta, product),
	}
	if s.includeVariants {
		variants, _ := variantRecords(product)
		res.variants = len(variants)
	}
	return res
}

// note folds one item's outcome into the running stats and the sink.
// Only the page loop calls it, so stats need no locking.
func (s *scraper) note(ctx context.Context, res itemResult) error {
	if res.skipped {
		s.stats.Skipped++
		return nil
	}
	for _, row := range res.rows {
		err := s.sink.Write(ctx, row)
		if err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	s.stats.Products++
	s.stats.Variants += res.variants
	return nil
}
