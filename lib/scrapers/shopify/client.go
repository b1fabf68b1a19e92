// Package shopify fetches storefront catalogs through the public
// products.json endpoints and per-product HTML pages.
package shopify

import (
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/Karikari1234/shopify-products-scraper/lib/restyutil"
	"github.com/Karikari1234/shopify-products-scraper/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	// StoreUrl accepts bare hostnames, "https://" is assumed.
	StoreUrl string
	// UserAgent overrides the default desktop browser user agent.
	UserAgent string
	// RateLimit is the max requests per second across all endpoints.
	// Zero keeps the default of 2.
	RateLimit float64
	// Timeout is the per-request timeout. Zero keeps the default of 30s.
	Timeout time.Duration
}

// NormalizeStoreUrl trims trailing slashes and assumes https for
// scheme-less input.
func NormalizeStoreUrl(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("store url is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse store url: %w", err)
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("store url %q has no host", raw)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	return parsed.String(), nil
}

func NewClient(opts ClientOptions) (*Client, error) {
	storeUrl, err := NormalizeStoreUrl(opts.StoreUrl)
	if err != nil {
		return nil, err
	}
	baseUrl, err := url.Parse(storeUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(storeUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	client.SetTimeout(timeout)

	rateLimit := opts.RateLimit
	if rateLimit == 0 {
		rateLimit = 2
	}
	// max burst >= rate just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(rate.Limit(rateLimit), max(int(rateLimit), 1))
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	if restyInstrumentOutput != nil {
		restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)
	} else {
		telemetry.InstrumentResty(client, "shopify-products-scraper.lib.scrapers.shopify.http")
	}

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

// ProductUrl returns the product page address used both for meta fetches
// and as the scraped_url column value.
func (c *Client) ProductUrl(handle string) string {
	return fmt.Sprintf("%s/products/%s", strings.TrimRight(c.BaseUrl.String(), "/"), url.PathEscape(handle))
}
