package shopify

import (
	"github.com/Karikari1234/shopify-products-scraper/lib/restyutil"
	"github.com/Karikari1234/shopify-products-scraper/lib/telemetry"
)

var tracer = telemetry.Tracer("shopify-products-scraper.lib.scrapers.shopify")
var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput enables wire-transcript dumps for every client
// created afterwards. Call before NewClient.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
