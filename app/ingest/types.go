package ingest

import (
	"fmt"
	"time"

	"github.com/gradsift/gradsift/app/scrape"
)

// Record is one admission entry headed for storage: the cleaned scrape
// fields plus the canonical program and university pair. Canonical fields
// stay empty when resolution failed; the record is stored regardless.
type Record struct {
	Entry      scrape.Entry
	Program    string
	University string
}

// Options select the page range and pacing of one ingestion run.
type Options struct {
	StartPage int
	Pages     int
	Delay     time.Duration
}

// Summary reports what one ingestion run did. Err carries the first failure
// cause when the run aborted early.
type Summary struct {
	RunID              string
	StartPage          int
	PagesRequested     int
	PagesFetched       int
	PagesFailed        int
	EntriesParsed      int
	ParseSkipped       int
	Inserted           int
	Skipped            int
	ResolutionFailures int
	Err                error
	StartedAt          time.Time
	FinishedAt         time.Time
}

func (s *Summary) recordError(err error) {
	if s.Err == nil {
		s.Err = err
	}
}

// Message renders the one-line completion text surfaced by status polls
// after the run finishes.
func (s Summary) Message() string {
	if s.Err != nil {
		return fmt.Sprintf("Pull finished with errors: %d pages fetched, %d inserted, %d skipped, first error: %v",
			s.PagesFetched, s.Inserted, s.Skipped, s.Err)
	}
	return fmt.Sprintf("Pull completed: %d pages fetched, %d entries parsed, %d inserted, %d skipped",
		s.PagesFetched, s.EntriesParsed, s.Inserted, s.Skipped)
}
