package ingest

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gradsift/gradsift/app/database"
)

const dateAddedLayout = "January 2, 2006"

var (
	numberRe       = regexp.MustCompile(`[\d.]+`)
	decisionDateRe = regexp.MustCompile(`on (\d{1,2}) (\w+)`)
	yearRe         = regexp.MustCompile(`\d{4}`)
)

// Loader coerces standardized records into typed applicant rows and stores
// them. Unparseable fields become NULLs, never load failures; the only fatal
// condition is a repository error.
type Loader struct {
	repo database.ApplicantRepository
}

func NewLoader(repo database.ApplicantRepository) *Loader {
	return &Loader{
		repo: repo,
	}
}

// Run stores a batch of records and reports how many rows were newly
// inserted and how many were skipped. A record is skipped when its URL is
// empty (no business key to deduplicate on) or when a row with the same URL
// already exists. A repository error aborts the batch.
func (l *Loader) Run(records []Record) (int, int, error) {
	inserted := 0
	skipped := 0

	for _, record := range records {
		if record.Entry.URL == "" {
			slog.Warn("Skipping entry without result URL", "program", record.Entry.Program)
			skipped++
			continue
		}

		created, err := l.repo.InsertApplicant(buildApplicantRecord(record))
		if err != nil {
			return inserted, skipped, fmt.Errorf("failed to store applicant %s: %w", record.Entry.URL, err)
		}

		if created {
			inserted++
		} else {
			skipped++
		}
	}

	return inserted, skipped, nil
}

func buildApplicantRecord(record Record) database.ApplicantRecord {
	entry := record.Entry

	return database.ApplicantRecord{
		Program:           entry.Program,
		Comments:          entry.Comment,
		DateAdded:         parseDate(entry.DateAdded),
		URL:               entry.URL,
		Status:            entry.Status,
		Decision:          parseDecision(entry.Status),
		DecisionDate:      parseDecisionDate(entry.Status, entry.Term),
		Term:              entry.Term,
		USOrInternational: parseCitizenship(entry.Citizenship),
		GPA:               parseScore(entry.GPA),
		GRE:               parseScore(entry.GRE),
		GREVerbal:         parseScore(entry.GREVerbal),
		GREAW:             parseScore(entry.GREAW),
		Degree:            entry.Degree,

		StandardizedProgram:    record.Program,
		StandardizedUniversity: record.University,
	}
}

// parseDate reads the listing's long date form, e.g. "January 30, 2026".
func parseDate(text string) *time.Time {
	if text == "" {
		return nil
	}

	parsed, err := time.Parse(dateAddedLayout, text)
	if err != nil {
		return nil
	}

	return &parsed
}

// parseScore extracts the numeric part of a badge like "GPA 3.9" or
// "GRE V 159".
func parseScore(text string) *float64 {
	if text == "" {
		return nil
	}

	match := numberRe.FindString(text)
	if match == "" {
		return nil
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}

	return &value
}

// parseDecision reduces a status like "Accepted on 29 Jan" to its decision
// word. Unrecognized statuses keep their first word.
func parseDecision(status string) string {
	if status == "" {
		return ""
	}

	lower := strings.ToLower(status)
	switch {
	case strings.Contains(lower, "accepted"):
		return "Accepted"
	case strings.Contains(lower, "rejected"):
		return "Rejected"
	case strings.Contains(lower, "interview"):
		return "Interview"
	case strings.Contains(lower, "wait"):
		return "Waitlisted"
	}

	if fields := strings.Fields(status); len(fields) > 0 {
		return fields[0]
	}

	return status
}

// parseDecisionDate combines the day and month from a status like
// "Accepted on 29 Jan" with the year found in the term, e.g. "Fall 2026".
// A term without a year falls back to the current year.
func parseDecisionDate(status string, term string) *time.Time {
	match := decisionDateRe.FindStringSubmatch(status)
	if match == nil {
		return nil
	}

	year := time.Now().Year()
	if yearMatch := yearRe.FindString(term); yearMatch != "" {
		parsed, err := strconv.Atoi(yearMatch)
		if err == nil {
			year = parsed
		}
	}

	candidate := fmt.Sprintf("%s %s %d", match[1], match[2], year)
	for _, layout := range []string{"2 Jan 2006", "2 January 2006"} {
		if parsed, err := time.Parse(layout, candidate); err == nil {
			return &parsed
		}
	}

	return nil
}

// parseCitizenship maps the listing's citizenship badge onto the three
// buckets the analysis queries group by.
func parseCitizenship(text string) string {
	switch strings.ToLower(text) {
	case "american":
		return "American"
	case "international":
		return "International"
	}

	return "Other"
}
