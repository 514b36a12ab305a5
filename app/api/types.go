package api

import (
	"github.com/gradsift/gradsift/app/analysis"
	"github.com/gradsift/gradsift/app/database"
	"github.com/gradsift/gradsift/app/ingest"
)

// PullRunner starts a background data pull, rejecting with ingest.ErrBusy
// when one is already in flight.
type PullRunner interface {
	Start(opts ingest.Options) error
}

// AnalysisProvider serves the cached analysis snapshot and recomputes it on
// demand.
type AnalysisProvider interface {
	Refresh() error
	Snapshot() *analysis.Snapshot
}

// GateStatus exposes the busy gate for read-only status polls.
type GateStatus interface {
	Status() ingest.Status
}

var _ PullRunner = (*ingest.Runner)(nil)
var _ AnalysisProvider = (*analysis.Service)(nil)
var _ GateStatus = (*ingest.Gate)(nil)

type Handler struct {
	runner          PullRunner
	analysisService AnalysisProvider
	gate            GateStatus
	applicantRepo   database.ApplicantRepository
	defaults        ingest.Options
}
