// Package dom resolves logical selectors against a page, whether the page is
// a live browser session or parsed HTML. Absence is never an error: lookups
// return nil or an empty slice, and every accessor is read-only.
package dom

import (
	"time"
)

// Element is one located node. Implementations must not mutate page state.
type Element interface {
	// Find resolves selector inside this element. A positive timeout bounds
	// how long to wait for the element to appear; zero means check once
	// without waiting. Returns nil when nothing matches.
	Find(selector string, timeout time.Duration) Element

	// FindAll resolves selector to every match inside this element, in
	// document order. Returns an empty slice when nothing matches.
	FindAll(selector string) []Element

	// Text returns the element's visible text, trimmed. Empty when the
	// element has no text.
	Text() string

	// Attr returns the named attribute's value, or "" when absent.
	Attr(name string) string
}

// Interactive is an Element that can receive user-style input. Only live
// page elements implement it; parsed-HTML elements are read-only.
type Interactive interface {
	Element

	Click() error
	SetInputFiles(path string) error
}
