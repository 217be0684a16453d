// Package query turns free-text search input into an engine-neutral query description.
package query

import (
	"strings"
)

// MatchAllToken is the query text that selects every document of an index.
const MatchAllToken = "*"

// MaxPage is the largest page number callers may request. Offsets and
// has-next arithmetic stay within int range for any page size up to MaxPage.
const MaxPage = 100_000

// Order is a sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// IsValid reports whether o is asc or desc.
func (o Order) IsValid() bool {
	return o == Asc || o == Desc
}

// Sort is a candidate sort directive. Field may be rewritten by the executor's fallback chain.
type Sort struct {
	Field string
	Order Order
}

// Compiled is an immutable, per-request query description.
type Compiled struct {
	matchAll bool
	terms    []string
	page     int
	perPage  int
	sort     *Sort
}

// Compile builds a query from free text, pagination and optional sort directives.
// A lone "*" (or no tokens at all) matches everything; otherwise every whitespace-separated
// token must occur as a substring somewhere in the document. page and perPage are taken as-is.
func Compile(text string, page, perPage int, sortBy string, sortOrder Order) Compiled {
	c := Compiled{page: page, perPage: perPage}

	trimmed := strings.TrimSpace(text)
	if trimmed == MatchAllToken {
		c.matchAll = true
	} else {
		c.terms = strings.Fields(trimmed)
		c.matchAll = len(c.terms) == 0
	}

	if sortBy != "" && sortOrder != "" {
		c.sort = &Sort{Field: sortBy, Order: sortOrder}
	}
	return c
}

// MatchAll reports whether the query selects every document.
func (c Compiled) MatchAll() bool { return c.matchAll }

// Terms returns a copy of the raw tokens (without wildcards).
func (c Compiled) Terms() []string {
	out := make([]string, len(c.terms))
	copy(out, c.terms)
	return out
}

// Page returns the 1-based page number.
func (c Compiled) Page() int { return c.page }

// PerPage returns the page size.
func (c Compiled) PerPage() int { return c.perPage }

// Offset returns the number of hits to skip.
func (c Compiled) Offset() int { return (c.page - 1) * c.perPage }

// Size returns the number of hits to fetch.
func (c Compiled) Size() int { return c.perPage }

// Sort returns the sort directive, if any.
func (c Compiled) Sort() (Sort, bool) {
	if c.sort == nil {
		return Sort{}, false
	}
	return *c.sort, true
}

// WithSortField returns a copy sorting on field with the same direction.
// It is a no-op copy when c has no sort.
func (c Compiled) WithSortField(field string) Compiled {
	if c.sort == nil {
		return c
	}
	c.sort = &Sort{Field: field, Order: c.sort.Order}
	return c
}

// WithoutSort returns an unsorted copy.
func (c Compiled) WithoutSort() Compiled {
	c.sort = nil
	return c
}

// Expression renders the match expression in query_string syntax:
// "*" for match-all, otherwise "(*tok1*) AND (*tok2*)".
func (c Compiled) Expression() string {
	if c.matchAll {
		return MatchAllToken
	}
	parts := make([]string, len(c.terms))
	for i, t := range c.terms {
		parts[i] = "(*" + escapeTerm(t) + "*)"
	}
	return strings.Join(parts, " AND ")
}

// escapeTerm backslash-escapes query_string reserved characters so a token is matched literally.
func escapeTerm(t string) string {
	return termEscaper.Replace(t)
}

var termEscaper = strings.NewReplacer(
	`\`, `\\`,
	`+`, `\+`,
	`-`, `\-`,
	`=`, `\=`,
	`&`, `\&`,
	`|`, `\|`,
	`>`, `\>`,
	`<`, `\<`,
	`!`, `\!`,
	`(`, `\(`,
	`)`, `\)`,
	`{`, `\{`,
	`}`, `\}`,
	`[`, `\[`,
	`]`, `\]`,
	`^`, `\^`,
	`"`, `\"`,
	`~`, `\~`,
	`*`, `\*`,
	`?`, `\?`,
	`:`, `\:`,
	`/`, `\/`,
)
