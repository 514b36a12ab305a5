package scrape

import (
	"regexp"
	"strings"
)

var (
	markupRe     = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Null-like markers occasionally rendered by the listing instead of an
// empty cell.
var nullMarkers = map[string]bool{
	"null": true,
	"n/a":  true,
	"na":   true,
	"-":    true,
	"--":   true,
}

type Cleaner struct{}

func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Run normalizes every text field of an entry: markup remnants are stripped,
// whitespace runs collapse to single spaces, and null-like values degrade to
// the empty string. Pure function, never fails.
func (c *Cleaner) Run(entry Entry) Entry {
	return Entry{
		Program:     c.cleanText(entry.Program),
		Degree:      c.cleanText(entry.Degree),
		DateAdded:   c.cleanText(entry.DateAdded),
		URL:         strings.TrimSpace(entry.URL),
		Status:      c.cleanText(entry.Status),
		Term:        c.cleanText(entry.Term),
		Citizenship: c.cleanText(entry.Citizenship),
		GPA:         c.cleanText(entry.GPA),
		GRE:         c.cleanText(entry.GRE),
		GREVerbal:   c.cleanText(entry.GREVerbal),
		GREAW:       c.cleanText(entry.GREAW),
		Comment:     c.cleanText(entry.Comment),
	}
}

func (c *Cleaner) cleanText(text string) string {
	if text == "" {
		return ""
	}

	text = markupRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if nullMarkers[strings.ToLower(text)] {
		return ""
	}

	return text
}
