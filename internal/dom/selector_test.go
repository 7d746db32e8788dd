package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		expected Query
	}{
		{
			name:     "raw class selector passes through",
			selector: ".iedPc",
			expected: Query{CSS: ".iedPc"},
		},
		{
			name:     "raw selector list passes through",
			selector: "section, div",
			expected: Query{CSS: "section, div"},
		},
		{
			name:     "tag only",
			selector: "tag:section",
			expected: Query{CSS: "section"},
		},
		{
			name:     "tag with exact attribute",
			selector: "tag:section@class=content",
			expected: Query{CSS: `section[class="content"]`},
		},
		{
			name:     "exact attribute value",
			selector: "@data-search=switch-image-upload",
			expected: Query{CSS: `[data-search="switch-image-upload"]`},
		},
		{
			name:     "attribute containment",
			selector: "@dot-params:area=suppliers",
			expected: Query{CSS: `[dot-params*="area=suppliers"]`},
		},
		{
			name:     "class containment expands to class list",
			selector: "@class:wYFEM REIxN",
			expected: Query{CSS: ".wYFEM.REIxN"},
		},
		{
			name:     "attribute presence",
			selector: "@name",
			expected: Query{CSS: "[name]"},
		},
		{
			name:     "text match",
			selector: "text:Suppliers",
			expected: Query{Text: "Suppliers"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compile(tt.selector))
		})
	}
}
