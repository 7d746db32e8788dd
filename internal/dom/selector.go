package dom

import (
	"fmt"
	"strings"
)

// Query is a compiled selector. Exactly one of CSS or Text is set.
type Query struct {
	CSS  string
	Text string
}

// Compile translates a logical selector into a Query. Supported forms:
//
//	.cls or any raw CSS     passed through unchanged
//	tag:section             tag match
//	tag:section@class=content  tag with exact attribute value
//	@attr=value             exact attribute value
//	@attr:value             attribute value containment; for @class: the
//	                        value is split into class names that must all
//	                        be present
//	@attr                   attribute presence
//	text:Suppliers          text containment match
//
// The grammar mirrors the selector strings carried in configuration, so
// markup updates never require code changes.
func Compile(selector string) Query {
	switch {
	case strings.HasPrefix(selector, "text:"):
		return Query{Text: strings.TrimPrefix(selector, "text:")}
	case strings.HasPrefix(selector, "tag:"):
		rest := strings.TrimPrefix(selector, "tag:")
		tag, attr, found := strings.Cut(rest, "@")
		if !found {
			return Query{CSS: tag}
		}
		return Query{CSS: tag + compileAttr(attr)}
	case strings.HasPrefix(selector, "@"):
		return Query{CSS: compileAttr(strings.TrimPrefix(selector, "@"))}
	default:
		return Query{CSS: selector}
	}
}

func compileAttr(attr string) string {
	// The first separator wins, so "@dot-params:area=suppliers" is a
	// containment match on the dot-params attribute.
	eq := strings.IndexByte(attr, '=')
	co := strings.IndexByte(attr, ':')

	if eq >= 0 && (co < 0 || eq < co) {
		return fmt.Sprintf(`[%s=%q]`, attr[:eq], attr[eq+1:])
	}
	if co >= 0 {
		name, value := attr[:co], attr[co+1:]
		if name == "class" {
			var b strings.Builder
			for _, cls := range strings.Fields(value) {
				b.WriteByte('.')
				b.WriteString(cls)
			}
			return b.String()
		}
		return fmt.Sprintf(`[%s*=%q]`, name, value)
	}
	return "[" + attr + "]"
}
