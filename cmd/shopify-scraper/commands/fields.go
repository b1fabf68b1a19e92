package commands

import (
	"log/slog"
	"os"
	"regexp"
	"sort"

	"github.com/Karikari1234/shopify-products-scraper/lib/scrapers/shopify"
	"github.com/Karikari1234/shopify-products-scraper/lib/serviceutil"
	"github.com/Karikari1234/shopify-products-scraper/services/catalog"

	"github.com/antzucaro/matchr"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	fieldsVariants *bool
	fieldsSample   *int
	fieldsPrescan  *bool
)

func init() {
	fieldsVariants = fieldsCmd.Flags().Bool("variants", false, "Also discover per-variant fields.")
	fieldsSample = fieldsCmd.Flags().Int("sample", 3, "How many first-page products to sample.")
	fieldsPrescan = fieldsCmd.Flags().Bool("prescan", false, "Resolve the whole catalog instead of sampling.")
	rootCmd.AddCommand(fieldsCmd)
}

var fieldsCmd = &cobra.Command{
	Use:   "fields <store url>",
	Short: "Prints the column sets a scrape would discover, without scraping.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			cmd.Usage()
			return
		}

		cfg := readConfig()
		storeUrl, err := shopify.NormalizeStoreUrl(args[0])
		if err != nil {
			serviceutil.Fatal("invalid store url", err)
		}
		client := createClient(storeUrl, cfg)

		schema, err := catalog.DiscoverSchema(cmd.Context(), client, catalog.DiscoverOptions{
			IncludeVariants: *fieldsVariants,
			SampleSize:      *fieldsSample,
			Prescan:         *fieldsPrescan,
		})
		if err != nil {
			serviceutil.Fatal("failed to discover fields", err)
		}

		slog.Info("schema discovered", "sampled_products", schema.Sampled)
		renderFieldTable("product fields", schema.ProductFields)
		if *fieldsVariants {
			renderFieldTable("variant fields", schema.VariantFields)
		}
	},
}

func renderFieldTable(title string, fields []string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", title})
	for i, field := range fields {
		t.AppendRow(table.Row{i + 1, field})
	}
	t.Render()

	for name, count := range positionalFamilies(fields) {
		slog.Info("positional column family, widths vary per record", "family", name, "columns", count)
	}
	for _, pair := range nearDuplicates(fields) {
		slog.Warn("two field names are suspiciously similar", "left", pair[0], "right", pair[1])
	}
}

var digitsRegex = regexp.MustCompile(`[0-9]+`)

// positionalFamilies groups columns that differ only by list index,
// e.g. images_0_src and images_3_src. Variable-length lists make these
// families grow with the largest record in the sample.
func positionalFamilies(fields []string) map[string]int {
	families := map[string]int{}
	for _, field := range fields {
		stripped := digitsRegex.ReplaceAllString(field, "#")
		if stripped == field {
			continue
		}
		families[stripped]++
	}
	for name, count := range families {
		if count < 2 {
			delete(families, name)
		}
	}
	return families
}

// nearDuplicates flags names that look like typo'd twins of each other.
// Positional families are collapsed first so they do not drown the
// output in index-only pairs.
func nearDuplicates(fields []string) [][2]string {
	seen := map[string]bool{}
	var names []string
	for _, field := range fields {
		stripped := digitsRegex.ReplaceAllString(field, "#")
		if seen[stripped] {
			continue
		}
		seen[stripped] = true
		names = append(names, stripped)
	}
	sort.Strings(names)

	var pairs [][2]string
	for i, left := range names {
		for _, right := range names[i+1:] {
			if matchr.JaroWinkler(left, right, false) >= 0.96 {
				pairs = append(pairs, [2]string{left, right})
			}
		}
	}
	return pairs
}
