package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// pathCharReplacer maps URL path separators, dots, and query markers to underscores.
var pathCharReplacer = strings.NewReplacer(
	"/", "_",
	".", "_",
	"?", "_",
	"=", "_",
	"&", "_",
)

// PageFilename derives a filesystem-safe markdown filename from a page URL.
// The URL path (and query string, if any) is lower-cased with separators,
// dots, and query markers replaced by underscores. Empty or root paths map
// to "index". The result always carries a ".md" suffix.
func PageFilename(pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parsing page URL %q: %w", pageURL, err)
	}

	base := strings.TrimPrefix(parsed.Path, "/")
	if parsed.RawQuery != "" {
		base += "?" + parsed.RawQuery
	}

	name := strings.ToLower(pathCharReplacer.Replace(base))
	if name == "" || name == "_" {
		name = "index"
	}
	return name + ".md", nil
}
