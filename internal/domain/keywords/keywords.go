// Package keywords matches free text against fixed keyword tables.
//
// Single-word terms match whole words, allowing simple inflections
// ("flood" matches "floods" and "flooding"). Terms containing a space match
// as phrases over the normalized text.
package keywords

import (
	"strconv"
	"strings"
	"unicode"
)

var suffixes = []string{"s", "es", "d", "ed", "ing"} //nolint:gochecknoglobals // fixed inflection list

// Text is a message prepared for repeated keyword lookups.
type Text struct {
	words  []string
	index  map[string]struct{}
	joined string
}

// Parse lowercases and tokenizes s.
func Parse(s string) Text {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	idx := make(map[string]struct{}, len(words))
	for _, w := range words {
		idx[w] = struct{}{}
	}
	return Text{words: words, index: idx, joined: " " + strings.Join(words, " ") + " "}
}

// Has reports whether term occurs in the text.
func (t Text) Has(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	if strings.Contains(term, " ") {
		return strings.Contains(t.joined, " "+strings.Join(strings.Fields(term), " ")+" ")
	}
	if _, ok := t.index[term]; ok {
		return true
	}
	for _, suf := range suffixes {
		if _, ok := t.index[term+suf]; ok {
			return true
		}
	}
	return false
}

// Any reports whether any of terms occurs in the text.
func (t Text) Any(terms []string) bool {
	for _, term := range terms {
		if t.Has(term) {
			return true
		}
	}
	return false
}

// Numbers returns every all-digit word as an integer, in order.
func (t Text) Numbers() []int {
	var out []int
	for _, w := range t.words {
		n, err := strconv.Atoi(w)
		if err != nil || n < 0 {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Empty reports whether the text has no words.
func (t Text) Empty() bool {
	return len(t.words) == 0
}

// Group is a labelled list of terms.
type Group struct {
	Label string
	Terms []string
}

// Table is an ordered list of groups; earlier groups take precedence.
type Table []Group

// First returns the label of the first group with a hit.
func (tb Table) First(t Text) (string, bool) {
	for _, g := range tb {
		if t.Any(g.Terms) {
			return g.Label, true
		}
	}
	return "", false
}
