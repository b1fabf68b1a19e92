package htmlutil

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("shopify-products-scraper.lib.htmlutil")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// whitespace runs must collapse before non-printables are stripped,
// otherwise newline-separated words fuse together
func collapseText(node *html.Node) string {
	text := whitespaceRegex.ReplaceAllString(GetText(node), " ")
	text = removeNonPrintable(text)
	return strings.Trim(text, " ")
}

type PageMeta struct {
	Title       string
	Description string
}

// ExtractPageMeta pulls the <title> text and the content of the first
// <meta name="description"> tag. Storefront themes vary in attribute
// casing, the name match is case-insensitive. Missing tags yield empty
// strings rather than errors.
func ExtractPageMeta(ctx context.Context, doc *goquery.Document) PageMeta {
	ctx, span := tracer.Start(ctx, "ExtractPageMeta")
	defer span.End()

	var meta PageMeta

	title := doc.Find("title").First()
	if len(title.Nodes) > 0 {
		meta.Title = collapseText(title.Nodes[0])
	}

	doc.Find("meta").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		name, ok := sel.Attr("name")
		if !ok {
			return true
		}
		if strings.ToLower(strings.TrimSpace(name)) != "description" {
			return true
		}
		meta.Description, _ = sel.Attr("content")
		return false
	})

	span.AddEvent("page_meta", trace.WithAttributes(
		attribute.String("title", meta.Title),
		attribute.Int("description_len", len(meta.Description)),
	))
	return meta
}
