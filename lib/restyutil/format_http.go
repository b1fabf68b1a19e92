package restyutil

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
)

// formatTranscript renders one exchange as a plain text transcript for
// the filesystem output. Catalog requests never carry a body, so only
// the response side renders one.
func formatTranscript(res *resty.Response) string {
	var out strings.Builder

	fmt.Fprintf(&out, "---- REQUEST ----\n\n%s %s\n\n", res.Request.Method, res.Request.URL)
	writeHeaders(&out, res.Request.RawRequest.Header)

	finalUrl := res.Request.URL
	if redirected, err := res.RawResponse.Location(); err == nil {
		finalUrl = redirected.String()
	}

	fmt.Fprintf(&out, "\n---- RESPONSE ----\n\n%d %s\n\n", res.StatusCode(), finalUrl)
	writeHeaders(&out, res.Header())
	fmt.Fprintf(&out, "\n%s\n", res.String())

	return out.String()
}

// headers render in sorted order so transcripts of the same endpoint
// diff cleanly
func writeHeaders(out *strings.Builder, headers http.Header) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range headers[name] {
			fmt.Fprintf(out, "%s: %s\n", name, value)
		}
	}
}
