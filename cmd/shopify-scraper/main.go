package main

import (
	"github.com/Karikari1234/shopify-products-scraper/cmd/shopify-scraper/commands"
	"github.com/Karikari1234/shopify-products-scraper/lib/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()
	commands.ExecuteContext(ctx)
}
