package scrape

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Result links on the listing are relative; stored URLs are absolute.
const resultBaseUrl = "https://www.thegradcafe.com"

var (
	resultLinkRe = regexp.MustCompile(`/result/\d+`)
	termRe       = regexp.MustCompile(`(?i)^(Fall|Spring|Summer|Winter)\s+\d{4}$`)
	greVerbalRe  = regexp.MustCompile(`(?i)^GRE\s*V\s*\d+`)
	greAWRe      = regexp.MustCompile(`(?i)^GRE\s*(AW|A)\s*[\d.]+`)
	greRe        = regexp.MustCompile(`(?i)^GRE\s*\d+`)
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Run extracts admission entries from one listing page. The listing renders
// each result as a group of adjacent table rows: a primary row with four or
// more cells, optionally followed by a badge row and a comment row. Returns
// entries in page order plus the number of groups skipped as malformed.
func (p *Parser) Run(data []byte) ([]Entry, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse page: %w", err)
	}

	rows := doc.Find("table").First().Find("tbody").First().Find("tr")

	entries := make([]Entry, 0, rows.Length()/2)
	skipped := 0
	var group []*goquery.Selection

	flush := func() {
		if len(group) == 0 {
			return
		}
		if entry, ok := p.parseGroup(group); ok {
			entries = append(entries, entry)
		} else {
			skipped++
		}
		group = nil
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		if row.Find("td").Length() >= 4 {
			flush()
		}
		group = append(group, row)
	})
	flush()

	return entries, skipped, nil
}

func (p *Parser) parseGroup(rows []*goquery.Selection) (Entry, bool) {
	primary := rows[0]
	cells := primary.Find("td")

	if cells.Length() < 4 {
		slog.Warn("Skipping malformed entry group", "reason", "missing primary row")
		return Entry{}, false
	}

	entry := Entry{}

	university := strings.TrimSpace(cells.Eq(0).Find("div[class*='tw-font-medium']").First().Text())
	if university == "" {
		university = strings.TrimSpace(cells.Eq(0).Text())
	}

	program := ""
	progDiv := cells.Eq(1).Find("div").First()
	if progDiv.Length() > 0 {
		spans := progDiv.Find("span")
		if spans.Length() > 0 {
			program = strings.TrimSpace(spans.Eq(0).Text())
			if spans.Length() > 1 {
				entry.Degree = strings.TrimSpace(spans.Eq(1).Text())
			}
		} else {
			program = strings.TrimSpace(progDiv.Text())
		}
	}

	switch {
	case program != "" && university != "":
		entry.Program = program + ", " + university
	case program != "":
		entry.Program = program
	default:
		entry.Program = university
	}

	entry.DateAdded = strings.TrimSpace(cells.Eq(2).Text())

	statusDiv := cells.Eq(3).Find("div").First()
	if statusDiv.Length() > 0 {
		entry.Status = strings.TrimSpace(statusDiv.Text())
	} else {
		entry.Status = strings.TrimSpace(cells.Eq(3).Text())
	}

	if cells.Length() > 4 {
		entry.URL = p.resultLink(cells.Eq(4))
	}
	if entry.URL == "" {
		entry.URL = p.resultLink(primary)
	}

	for _, row := range rows[1:] {
		comment := row.Find("p[class*='tw-text-gray'][class*='tw-text-sm']").First()
		if comment.Length() > 0 {
			entry.Comment = strings.TrimSpace(comment.Text())
			continue
		}
		p.extractBadges(row, &entry)
	}

	if entry.URL == "" && entry.Program == "" {
		slog.Warn("Skipping malformed entry group", "reason", "missing url and program")
		return Entry{}, false
	}

	return entry, true
}

func (p *Parser) resultLink(s *goquery.Selection) string {
	link := ""

	s.Find("a[href*='/result/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		if !resultLinkRe.MatchString(href) {
			return true
		}
		if strings.HasPrefix(href, "http") {
			link = href
		} else {
			link = resultBaseUrl + href
		}
		return false
	})

	return link
}

// extractBadges matches chip tokens against the known badge shapes. Tokens
// that match nothing are ignored rather than failing the entry.
func (p *Parser) extractBadges(row *goquery.Selection, entry *Entry) {
	row.Find("div[class*='tw-rounded'], div[class*='tw-px-2']").Each(func(_ int, div *goquery.Selection) {
		text := strings.TrimSpace(div.Text())
		if text == "" {
			return
		}

		switch {
		case termRe.MatchString(text):
			entry.Term = text
		case text == "American" || text == "International":
			entry.Citizenship = text
		case strings.HasPrefix(text, "GPA"):
			entry.GPA = text
		case greVerbalRe.MatchString(text):
			entry.GREVerbal = text
		case greAWRe.MatchString(text):
			entry.GREAW = text
		case greRe.MatchString(text):
			entry.GRE = text
		}
	})
}
