package httputil

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips every tag. bluemonday policies are safe for concurrent use.
var strictPolicy = bluemonday.StrictPolicy()

// StripHTML removes all markup from client-supplied text the console renders
// verbatim, such as notification titles and upload file names. Entities are
// decoded again so plain text round-trips unchanged.
func StripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
