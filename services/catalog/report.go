package catalog

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string
	Port         int
	EmailAddress string
	Password     string
}

// EmailReport mails a plain-text run summary. Servers that reject AUTH
// get a second, unauthenticated attempt.
func EmailReport(ctx context.Context, config SmtpConfig, to string, storeUrl string, stats Stats) error {
	ctx, span := tracer.Start(ctx, "EmailReport")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Shopify Products Scraper <%s>", config.EmailAddress)
	mail.To = []string{to}
	mail.Subject = fmt.Sprintf("Scrape %s of %s finished", stats.RunId, storeUrl)

	body := fmt.Sprintf(`Scrape %s of %s finished in %s.

Pages:    %d
Products: %d
Variants: %d
Skipped:  %d
Columns:  %d
`,
		stats.RunId, storeUrl, stats.Elapsed.Round(time.Second),
		stats.Pages, stats.Products, stats.Variants, stats.Skipped, stats.Columns,
	)
	if stats.Truncated {
		body += "\nThe product listing ended early on repeated page failures, the table is incomplete.\n"
	}
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", config.Server, config.Port)
	err := mail.Send(addr, smtp.PlainAuth("", config.EmailAddress, config.Password, config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send report email")
		return err
	}
	return nil
}
