// Package discover extracts candidate crawl targets from fetched HTML.
// It is purely functional: it never fetches and never touches the graph;
// de-duplication and scheduling belong to the caller.
package discover

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

// Discoverer finds outbound links on pages that share the seed URL's
// literal prefix. Note the prefix compares the whole seed string, not just
// scheme and host, so sibling paths under the same host are excluded when
// the seed points below the root.
type Discoverer struct {
	seedURL        string
	followRelative bool
	minLength      int // candidates shorter than this are noise (javascript:, "#", bare "/")
	log            *logrus.Entry
}

// New creates a Discoverer scoped to seedURL.
func New(seedURL string, followRelative bool, minLength int, log *logrus.Entry) *Discoverer {
	return &Discoverer{
		seedURL:        seedURL,
		followRelative: followRelative,
		minLength:      minLength,
		log:            log,
	}
}

// Discover parses body and returns up to capPerPage candidate URLs, taken
// from anchor hrefs in document order. Candidates are resolved against
// baseURL (when relative following is on), stripped of fragments, and
// filtered to http/https URLs of at least the minimum length. A base URL
// outside the seed prefix, a parse failure, or malformed markup all yield
// an empty sequence; the crawl continues either way.
func (d *Discoverer) Discover(baseURL, contentType string, body []byte, capPerPage int) []string {
	if !strings.HasPrefix(baseURL, d.seedURL) {
		return nil
	}
	if capPerPage <= 0 {
		return nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		d.log.WithField("url", baseURL).Debugf("unparseable base URL: %v", err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(decode(body, contentType))
	if err != nil {
		d.log.WithField("url", baseURL).Debugf("HTML parse failed: %v", err)
		return nil
	}

	var candidates []string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if href == "" {
			return true
		}

		candidate, ok := d.canonicalize(base, href)
		if !ok {
			return true
		}
		candidates = append(candidates, candidate)
		return len(candidates) < capPerPage
	})
	return candidates
}

// canonicalize resolves href, strips its fragment, and applies the length
// and scheme filters.
func (d *Discoverer) canonicalize(base *url.URL, href string) (string, bool) {
	var ref *url.URL
	var err error
	if d.followRelative {
		ref, err = base.Parse(href)
	} else {
		ref, err = url.Parse(href)
	}
	if err != nil {
		return "", false
	}
	ref.Fragment = ""
	ref.RawFragment = ""

	candidate := ref.String()
	if len(candidate) < d.minLength {
		return "", false
	}
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		return "", false
	}
	return candidate, true
}

// decode wraps body in a charset-aware reader using the Content-Type hint,
// falling back to the raw bytes when the charset is unknown.
func decode(body []byte, contentType string) io.Reader {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return bytes.NewReader(body)
	}
	return r
}
