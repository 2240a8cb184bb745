package browser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Element is one queryable HTML scope: the whole page or a single result card.
// Lookups return the trimmed value and whether a non-empty value was found, so
// selector fallback is plain iteration rather than error control flow.
type Element interface {
	// Text returns the text content of the first element matching selector
	Text(selector string) (string, bool)

	// Attr returns the named attribute of the first element matching selector.
	// An empty selector reads the attribute off the scope's own element.
	Attr(selector, name string) (string, bool)
}

// Document is a loaded page. It retains the raw HTML so extraction failures
// can capture a diagnostic snapshot of exactly what was rendered.
type Document struct {
	url  string
	html string
	doc  *goquery.Document
}

// NewDocument parses rendered HTML into a queryable document
func NewDocument(url, html string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &Document{url: url, html: html, doc: doc}, nil
}

// URL returns the navigated URL
func (d *Document) URL() string {
	return d.url
}

// HTML returns the raw rendered page source
func (d *Document) HTML() string {
	return d.html
}

// Has reports whether any element matches selector
func (d *Document) Has(selector string) bool {
	return d.doc.Find(selector).Length() > 0
}

// Text returns the text content of the first element matching selector
func (d *Document) Text(selector string) (string, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(sel.Text())
	return text, text != ""
}

// Attr returns the named attribute of the first element matching selector
func (d *Document) Attr(selector, name string) (string, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	val, ok := sel.Attr(name)
	val = strings.TrimSpace(val)
	return val, ok && val != ""
}

// Cards returns up to limit fragments matching the card selector, in document order
func (d *Document) Cards(selector string, limit int) []*Fragment {
	var cards []*Fragment
	d.doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if limit > 0 && len(cards) >= limit {
			return false
		}
		cards = append(cards, &Fragment{sel: s})
		return true
	})
	return cards
}

// Fragment is a sub-scope of a document, such as one search result card
type Fragment struct {
	sel *goquery.Selection
}

// Text returns the text content of the first descendant matching selector
func (f *Fragment) Text(selector string) (string, bool) {
	sel := f.sel.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(sel.Text())
	return text, text != ""
}

// Attr returns the named attribute. An empty selector reads the fragment's
// own element, which is how link hrefs are read off anchor cards.
func (f *Fragment) Attr(selector, name string) (string, bool) {
	sel := f.sel
	if selector != "" {
		sel = f.sel.Find(selector).First()
	}
	if sel.Length() == 0 {
		return "", false
	}
	val, ok := sel.Attr(name)
	val = strings.TrimSpace(val)
	return val, ok && val != ""
}
