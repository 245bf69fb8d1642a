// Package types provides type definitions for structured data shared across the content agent.
package types

import (
	"strings"
	"time"
)

const (
	// maxListedAuthors is how many authors a paper's author line shows.
	maxListedAuthors = 3
	// summaryLimit is the number of characters kept from a paper abstract.
	summaryLimit = 300
)

// Paper is a single academic search result.
type Paper struct {
	Title     string    `json:"title"`
	Authors   []string  `json:"authors,omitempty"`
	Summary   string    `json:"summary"`
	Link      string    `json:"link"`
	Published time.Time `json:"published,omitempty"`
	Source    string    `json:"source,omitempty"`
}

// AuthorLine returns up to three authors joined by ", ", or "Unknown".
func (p Paper) AuthorLine() string {
	var names []string
	for _, a := range p.Authors {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		names = append(names, a)
		if len(names) == maxListedAuthors {
			break
		}
	}
	if len(names) == 0 {
		return "Unknown"
	}
	return strings.Join(names, ", ")
}

// Year returns the publication year, or "" when unknown.
func (p Paper) Year() string {
	if p.Published.IsZero() {
		return ""
	}
	return p.Published.Format("2006")
}

// AsSource converts a paper into a citation source record.
func (p Paper) AsSource() Source {
	return Source{
		Title:   p.Title,
		Authors: p.AuthorLine(),
		Link:    p.Link,
		Year:    p.Year(),
	}
}

// ToMap renders the paper in the shape handed to the language model.
func (p Paper) ToMap() map[string]any {
	m := map[string]any{
		"title":   p.Title,
		"authors": p.AuthorLine(),
		"summary": p.Summary,
		"link":    p.Link,
	}
	if y := p.Year(); y != "" {
		m["year"] = y
	}
	return m
}

// TruncateSummary collapses whitespace and keeps the first 300 characters followed by "...".
func TruncateSummary(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > summaryLimit {
		runes = runes[:summaryLimit]
	}
	return string(runes) + "..."
}

// Source is a citation input record.
type Source struct {
	Title   string `json:"title,omitempty"`
	Authors string `json:"authors,omitempty"`
	Link    string `json:"link,omitempty"`
	Year    string `json:"year,omitempty"`
}
