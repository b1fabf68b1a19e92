package commands

import (
	"context"
	"log/slog"

	"github.com/Karikari1234/shopify-products-scraper/lib/restyutil"
	"github.com/Karikari1234/shopify-products-scraper/lib/scrapers/shopify"
	"github.com/Karikari1234/shopify-products-scraper/lib/serviceutil"
	"github.com/Karikari1234/shopify-products-scraper/lib/telemetry"
)

func initTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	tel, err := telemetry.SetupFromEnv(ctx, "shopify-scraper")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		tel.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}

	shopify.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/shopify"),
	)
}
