// Package templates renders the table pages and HTMX partials.
//
// Components live in the .templ files next to this one; the _templ.go files
// are generated from them with templ generate. This file holds the helpers
// the components share.
package templates

import (
	"net/url"
	"strconv"
	"strings"
)

// TablePath returns the URL of a table resource, escaping every segment.
func TablePath(tableID string, parts ...string) string {
	var b strings.Builder
	b.WriteString("/tables/")
	b.WriteString(url.PathEscape(tableID))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

// GridSelector is the CSS selector of a table's grid container.
func GridSelector(tableID string) string {
	return "#" + targetID(tableID)
}

// targetID is the element id of a table's grid container.
func targetID(tableID string) string {
	return "grid-" + domID(tableID)
}

// domID keeps letters, digits, dash and underscore.
func domID(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, s)
}

func itoa(i int) string { return strconv.Itoa(i) }

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
