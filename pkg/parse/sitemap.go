package parse

import (
	"encoding/xml"
	"fmt"

	"sitemap-harvester/pkg/utils"
)

// --- XML Structs for Sitemap Parsing ---

// XMLURL represents a <url> element in a sitemap
type XMLURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// XMLURLSet represents a <urlset> element in a sitemap. The root element
// name is deliberately not constrained: a well-formed document whose root is
// not a urlset simply yields no <url> entries, which is the end-of-sitemap
// signal rather than an error.
type XMLURLSet struct {
	URLs []XMLURL `xml:"url"`
}

// ExtractPageURLs parses sitemap XML bytes and returns the contained page
// URLs. A urlset with a single <url> entry and one with many are both
// normalized to a flat list. A well-formed document without <url> entries
// yields an empty list and no error; callers treat that as the end-of-sitemap
// signal.
func ExtractPageURLs(sitemapXML []byte) ([]string, error) {
	var urlSet XMLURLSet
	if err := xml.Unmarshal(sitemapXML, &urlSet); err != nil {
		return nil, fmt.Errorf("%w: parsing sitemap XML: %v", utils.ErrSitemapFetch, err)
	}

	urls := make([]string, 0, len(urlSet.URLs))
	for _, entry := range urlSet.URLs {
		if entry.Loc == "" {
			continue
		}
		urls = append(urls, entry.Loc)
	}
	return urls, nil
}
