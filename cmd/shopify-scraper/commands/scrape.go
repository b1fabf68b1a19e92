package commands

import (
	"errors"
	"log/slog"
	"os"
	"time"

	configlibsql "github.com/Karikari1234/shopify-products-scraper/lib/configutil/libsql"

	"github.com/Karikari1234/shopify-products-scraper/lib/configutil"
	"github.com/Karikari1234/shopify-products-scraper/lib/scrapers/shopify"
	"github.com/Karikari1234/shopify-products-scraper/lib/serviceutil"
	"github.com/Karikari1234/shopify-products-scraper/lib/tabular"
	"github.com/Karikari1234/shopify-products-scraper/services/catalog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	UserAgent      string              `json:"user_agent"`
	RateLimit      float64             `json:"rate_limit"`
	TimeoutSeconds float64             `json:"timeout_seconds"`
	Database       configlibsql.Struct `json:"database"`
	Smtp           catalog.SmtpConfig  `json:"smtp"`
}

var (
	scrapeVariants    *bool
	scrapeDebugFields *bool
	scrapeSample      *int
	scrapePrescan     *bool
	scrapeWorkers     *int
	scrapeOut         *string
	scrapeDb          *string
	scrapeNotify      *string
)

func init() {
	scrapeVariants = scrapeCmd.Flags().Bool("variants", false, "Emit one row per variant instead of one row per product.")
	scrapeDebugFields = scrapeCmd.Flags().Bool("debug-fields", false, "Print the discovered field lists before scraping.")
	scrapeSample = scrapeCmd.Flags().Int("sample", 3, "How many first-page products to sample for schema discovery.")
	scrapePrescan = scrapeCmd.Flags().Bool("prescan", false, "Resolve the whole catalog up front so no field is missed.")
	scrapeWorkers = scrapeCmd.Flags().Int("workers", 1, "How many products to resolve concurrently.")
	scrapeOut = scrapeCmd.Flags().String("out", "products_complete.csv", "The csv file to write rows to.")
	scrapeDb = scrapeCmd.Flags().String("db", "", "Mirror rows into this sqlite database as well.")
	scrapeNotify = scrapeCmd.Flags().String("notify", "", "Email address to send the run report to.")
	rootCmd.AddCommand(scrapeCmd)
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("scraper.json5")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func createClient(storeUrl string, cfg Config) *shopify.Client {
	client, err := shopify.NewClient(shopify.ClientOptions{
		StoreUrl:  storeUrl,
		UserAgent: cfg.UserAgent,
		RateLimit: cfg.RateLimit,
		Timeout:   time.Duration(cfg.TimeoutSeconds * float64(time.Second)),
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize storefront client", err)
	}
	return client
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <store url> [--variants] [--out <path/to/output.csv>]",
	Short: "Scrapes a storefront's full catalog into a csv file.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			cmd.Usage()
			return
		}

		ctx := cmd.Context()
		cfg := readConfig()

		storeUrl, err := shopify.NormalizeStoreUrl(args[0])
		if err != nil {
			serviceutil.Fatal("invalid store url", err)
		}
		client := createClient(storeUrl, cfg)

		schema, err := catalog.DiscoverSchema(ctx, client, catalog.DiscoverOptions{
			IncludeVariants: *scrapeVariants,
			SampleSize:      *scrapeSample,
			Prescan:         *scrapePrescan,
		})
		if err != nil {
			serviceutil.Fatal("failed to discover the table schema", err)
		}
		if *scrapeDebugFields {
			renderFieldTable("product fields", schema.ProductFields)
			if *scrapeVariants {
				renderFieldTable("variant fields", schema.VariantFields)
			}
		}

		sink := tabular.MultiSink{tabular.NewCSVSink(*scrapeOut)}
		dbcfg := cfg.Database
		if *scrapeDb != "" {
			dbcfg = configlibsql.Struct{File: *scrapeDb}
		}
		if dbcfg.File != "" || dbcfg.Url != "" {
			database, err := dbcfg.OpenDB()
			if err != nil {
				serviceutil.Fatal("failed to open output database", err)
			}
			defer database.Close()
			sink = append(sink, tabular.NewSQLiteSink(database, "products"))
		}

		stats, err := catalog.Scrape(ctx, client, sink, schema, catalog.ScrapeOptions{
			IncludeVariants: *scrapeVariants,
			Workers:         *scrapeWorkers,
		})
		if err != nil {
			serviceutil.Fatal("scrape aborted", err)
		}

		renderSummary(*scrapeOut, stats)

		if *scrapeNotify != "" {
			err := catalog.EmailReport(ctx, cfg.Smtp, *scrapeNotify, storeUrl, stats)
			if err != nil {
				slog.ErrorContext(ctx, "failed to email the run report", "to", *scrapeNotify, "err", err)
			}
		}
	},
}

func renderSummary(out string, stats catalog.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"run " + stats.RunId, out})
	t.AppendRow(table.Row{"pages", stats.Pages})
	t.AppendRow(table.Row{"products", stats.Products})
	t.AppendRow(table.Row{"variants", stats.Variants})
	t.AppendRow(table.Row{"skipped", stats.Skipped})
	t.AppendRow(table.Row{"columns", stats.Columns})
	t.AppendRow(table.Row{"elapsed", stats.Elapsed.Round(time.Millisecond).String()})
	t.Render()

	if stats.Truncated {
		slog.Warn("the listing ended early on repeated page failures, the table is incomplete")
	}
}
