package dom

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// htmlElement adapts a parsed goquery selection to the Element contract.
// Timeouts are meaningless against static HTML and are ignored.
type htmlElement struct {
	sel *goquery.Selection
}

// ParseDocument parses an HTML snapshot and returns its root element.
func ParseDocument(html string) (Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &htmlElement{sel: doc.Selection}, nil
}

func (e *htmlElement) Find(selector string, _ time.Duration) Element {
	matches := e.matches(Compile(selector))
	if matches.Length() == 0 {
		return nil
	}
	return &htmlElement{sel: matches.First()}
}

func (e *htmlElement) FindAll(selector string) []Element {
	matches := e.matches(Compile(selector))

	elements := make([]Element, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, &htmlElement{sel: s})
	})
	return elements
}

func (e *htmlElement) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

func (e *htmlElement) Attr(name string) string {
	return e.sel.AttrOr(name, "")
}

func (e *htmlElement) matches(q Query) *goquery.Selection {
	if q.Text != "" {
		want := strings.TrimSpace(q.Text)
		// Containment, not equality, so "Suppliers" still finds a tab
		// labelled "Suppliers (120)". Elements with a matching child are
		// excluded to keep the match on the innermost element.
		return e.sel.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
			if !strings.Contains(s.Text(), want) {
				return false
			}
			childMatches := false
			s.Children().Each(func(_ int, c *goquery.Selection) {
				if strings.Contains(c.Text(), want) {
					childMatches = true
				}
			})
			return !childMatches
		})
	}
	return e.sel.Find(q.CSS)
}
