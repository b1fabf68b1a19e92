package catalog

import "github.com/Karikari1234/shopify-products-scraper/lib/telemetry"

var tracer = telemetry.Tracer("shopify-products-scraper.services.catalog")
