package analysis

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gradsift/gradsift/app/database"
	"github.com/gradsift/gradsift/app/ingest"
)

// University ranking thresholds. Small cohorts produce meaningless
// acceptance rates, so universities below the floor are left out.
const (
	minUniversityApplications = 20
	topUniversityLimit        = 10
)

// Snapshot is one complete set of analysis answers, computed in a single
// pass over the repository and served as-is until the next refresh.
type Snapshot struct {
	GeneratedAt          time.Time
	Term                 string
	TotalEntries         int
	TermEntries          int
	InternationalPercent float64
	AverageScores        database.ScoreAverages
	AmericanAverageGPA   *float64
	AcceptanceRate       float64
	AcceptedAverageGPA   *float64
	TopUniversities      []database.UniversityAcceptance
	DegreeStats          []database.DegreeStats
}

// Service computes and caches the analysis snapshot. Recomputation happens
// only through the gated Refresh, so readers never observe a half-built
// snapshot and analysis never races a data pull.
type Service struct {
	repo database.ApplicantRepository
	gate *ingest.Gate
	term string

	mu       sync.RWMutex
	snapshot *Snapshot
}

func NewService(repo database.ApplicantRepository, gate *ingest.Gate, term string) *Service {
	return &Service{
		repo: repo,
		gate: gate,
		term: term,
	}
}

// Refresh recomputes the snapshot under the gate. Returns ingest.ErrBusy
// when a pull or another refresh is in progress.
func (s *Service) Refresh() error {
	if !s.gate.TryStart(ingest.OperationRefresh) {
		return ingest.ErrBusy
	}

	if err := s.Compute(); err != nil {
		s.gate.Finish(fmt.Sprintf("Analysis refresh failed: %v", err))
		return err
	}

	s.gate.Finish("Analysis refreshed")

	return nil
}

// Compute runs every analysis query and atomically replaces the cached
// snapshot. Not gated: main calls it once at boot before the server listens.
func (s *Service) Compute() error {
	start := time.Now()

	total, err := s.repo.GetApplicantCount()
	if err != nil {
		return fmt.Errorf("failed to get applicant count: %w", err)
	}

	termEntries, err := s.repo.CountByTerm(s.term)
	if err != nil {
		return fmt.Errorf("failed to count entries for term: %w", err)
	}

	international, err := s.repo.GetInternationalPercentage()
	if err != nil {
		return fmt.Errorf("failed to get international percentage: %w", err)
	}

	scores, err := s.repo.GetAverageScores()
	if err != nil {
		return fmt.Errorf("failed to get average scores: %w", err)
	}

	americanGPA, err := s.repo.GetAverageGPA("American", s.term)
	if err != nil {
		return fmt.Errorf("failed to get American average GPA: %w", err)
	}

	acceptanceRate, err := s.repo.GetAcceptanceRate(s.term)
	if err != nil {
		return fmt.Errorf("failed to get acceptance rate: %w", err)
	}

	acceptedGPA, err := s.repo.GetAcceptedAverageGPA(s.term)
	if err != nil {
		return fmt.Errorf("failed to get accepted average GPA: %w", err)
	}

	topUniversities, err := s.repo.GetTopUniversitiesByAcceptance(minUniversityApplications, topUniversityLimit)
	if err != nil {
		return fmt.Errorf("failed to get top universities: %w", err)
	}

	degreeStats, err := s.repo.GetStatsByDegree()
	if err != nil {
		return fmt.Errorf("failed to get degree stats: %w", err)
	}

	snapshot := &Snapshot{
		GeneratedAt:          time.Now().UTC(),
		Term:                 s.term,
		TotalEntries:         total,
		TermEntries:          termEntries,
		InternationalPercent: international,
		AverageScores:        scores,
		AmericanAverageGPA:   americanGPA,
		AcceptanceRate:       acceptanceRate,
		AcceptedAverageGPA:   acceptedGPA,
		TopUniversities:      topUniversities,
		DegreeStats:          degreeStats,
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	slog.Info("Analysis snapshot computed", "total_entries", total, "term", s.term, "duration", time.Since(start).String())

	return nil
}

// Snapshot returns the last computed snapshot, or nil when none has been
// computed yet.
func (s *Service) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}
