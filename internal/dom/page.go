package dom

import (
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// pageElement adapts a live playwright locator to the Element contract.
type pageElement struct {
	loc playwright.Locator
}

// PageRoot wraps the document root of a live page.
func PageRoot(page playwright.Page) Interactive {
	return &pageElement{loc: page.Locator("html")}
}

func (e *pageElement) Find(selector string, timeout time.Duration) Element {
	loc := e.loc.Locator(locatorString(Compile(selector))).First()

	if timeout <= 0 {
		count, err := loc.Count()
		if err != nil || count == 0 {
			return nil
		}
		return &pageElement{loc: loc}
	}

	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil
	}
	return &pageElement{loc: loc}
}

func (e *pageElement) FindAll(selector string) []Element {
	locators, err := e.loc.Locator(locatorString(Compile(selector))).All()
	if err != nil {
		return nil
	}

	elements := make([]Element, 0, len(locators))
	for _, loc := range locators {
		elements = append(elements, &pageElement{loc: loc})
	}
	return elements
}

func (e *pageElement) Text() string {
	text, err := e.loc.InnerText()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func (e *pageElement) Attr(name string) string {
	value, err := e.loc.GetAttribute(name)
	if err != nil {
		return ""
	}
	return value
}

func (e *pageElement) Click() error {
	if err := e.loc.Click(); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (e *pageElement) SetInputFiles(path string) error {
	if err := e.loc.SetInputFiles(path); err != nil {
		return fmt.Errorf("set input files failed: %w", err)
	}
	return nil
}

func locatorString(q Query) string {
	if q.Text != "" {
		// Unquoted text= is a substring match, so "Suppliers" still finds
		// a tab labelled "Suppliers (120)".
		return "text=" + q.Text
	}
	return q.CSS
}
