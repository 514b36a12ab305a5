package analysis

import (
	"errors"
	"testing"

	"github.com/gradsift/gradsift/app/database"
	"github.com/gradsift/gradsift/app/ingest"
)

// MockApplicantRepo returns canned analysis values and records the
// parameters it was queried with.
type MockApplicantRepo struct {
	count         int
	termEntries   int
	international float64
	scores        database.ScoreAverages
	americanGPA   *float64
	acceptance    float64
	acceptedGPA   *float64
	universities  []database.UniversityAcceptance
	degreeStats   []database.DegreeStats
	err           error

	gotCitizenship     string
	gotTerm            string
	gotMinApplications int
	gotLimit           int
}

var _ database.ApplicantRepository = (*MockApplicantRepo)(nil)

func (m *MockApplicantRepo) InsertApplicant(record database.ApplicantRecord) (bool, error) {
	return false, nil
}

func (m *MockApplicantRepo) GetApplicantCount() (int, error) {
	return m.count, m.err
}

func (m *MockApplicantRepo) CountByTerm(term string) (int, error) {
	m.gotTerm = term
	return m.termEntries, m.err
}

func (m *MockApplicantRepo) GetInternationalPercentage() (float64, error) {
	return m.international, m.err
}

func (m *MockApplicantRepo) GetAverageScores() (database.ScoreAverages, error) {
	return m.scores, m.err
}

func (m *MockApplicantRepo) GetAverageGPA(citizenship string, term string) (*float64, error) {
	m.gotCitizenship = citizenship
	return m.americanGPA, m.err
}

func (m *MockApplicantRepo) GetAcceptanceRate(term string) (float64, error) {
	return m.acceptance, m.err
}

func (m *MockApplicantRepo) GetAcceptedAverageGPA(term string) (*float64, error) {
	return m.acceptedGPA, m.err
}

func (m *MockApplicantRepo) GetTopUniversitiesByAcceptance(minApplications int, limit int) ([]database.UniversityAcceptance, error) {
	m.gotMinApplications = minApplications
	m.gotLimit = limit
	return m.universities, m.err
}

func (m *MockApplicantRepo) GetStatsByDegree() ([]database.DegreeStats, error) {
	return m.degreeStats, m.err
}

func testRepo() *MockApplicantRepo {
	gpa := 3.61
	acceptedGPA := 3.74
	avgGPA := 3.55

	return &MockApplicantRepo{
		count:         12500,
		termEntries:   4200,
		international: 48.32,
		scores:        database.ScoreAverages{GPA: &avgGPA},
		americanGPA:   &gpa,
		acceptance:    37.5,
		acceptedGPA:   &acceptedGPA,
		universities: []database.UniversityAcceptance{
			{University: "Stanford University", Applications: 120, Acceptances: 60, AcceptanceRate: 50.0},
		},
		degreeStats: []database.DegreeStats{
			{Degree: "PhD", Applications: 7000, AverageGPA: &avgGPA, AcceptanceRate: 33.33},
		},
	}
}

func TestServiceSnapshotNilBeforeCompute(t *testing.T) {
	service := NewService(testRepo(), ingest.NewGate(), "Fall 2026")

	if service.Snapshot() != nil {
		t.Error("Expected nil snapshot before first compute")
	}
}

func TestServiceCompute(t *testing.T) {
	repo := testRepo()
	service := NewService(repo, ingest.NewGate(), "Fall 2026")

	if err := service.Compute(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	snapshot := service.Snapshot()
	if snapshot == nil {
		t.Fatal("Expected a snapshot after compute")
	}
	if snapshot.TotalEntries != 12500 {
		t.Errorf("Expected 12500 total entries, got: %d", snapshot.TotalEntries)
	}
	if snapshot.TermEntries != 4200 {
		t.Errorf("Expected 4200 term entries, got: %d", snapshot.TermEntries)
	}
	if snapshot.Term != "Fall 2026" {
		t.Errorf("Expected term 'Fall 2026', got: %s", snapshot.Term)
	}
	if snapshot.InternationalPercent != 48.32 {
		t.Errorf("Expected international percent 48.32, got: %v", snapshot.InternationalPercent)
	}
	if snapshot.AmericanAverageGPA == nil || *snapshot.AmericanAverageGPA != 3.61 {
		t.Errorf("Expected American average GPA 3.61, got: %v", snapshot.AmericanAverageGPA)
	}
	if snapshot.AcceptanceRate != 37.5 {
		t.Errorf("Expected acceptance rate 37.5, got: %v", snapshot.AcceptanceRate)
	}
	if snapshot.AcceptedAverageGPA == nil || *snapshot.AcceptedAverageGPA != 3.74 {
		t.Errorf("Expected accepted average GPA 3.74, got: %v", snapshot.AcceptedAverageGPA)
	}
	if len(snapshot.TopUniversities) != 1 || snapshot.TopUniversities[0].University != "Stanford University" {
		t.Errorf("Expected Stanford University ranking, got: %v", snapshot.TopUniversities)
	}
	if len(snapshot.DegreeStats) != 1 || snapshot.DegreeStats[0].Degree != "PhD" {
		t.Errorf("Expected PhD degree stats, got: %v", snapshot.DegreeStats)
	}
	if snapshot.GeneratedAt.IsZero() {
		t.Error("Expected generated timestamp to be set")
	}

	if repo.gotTerm != "Fall 2026" {
		t.Errorf("Expected term query for 'Fall 2026', got: %s", repo.gotTerm)
	}
	if repo.gotCitizenship != "American" {
		t.Errorf("Expected GPA query for 'American', got: %s", repo.gotCitizenship)
	}
	if repo.gotMinApplications != 20 {
		t.Errorf("Expected minimum 20 applications, got: %d", repo.gotMinApplications)
	}
	if repo.gotLimit != 10 {
		t.Errorf("Expected limit 10, got: %d", repo.gotLimit)
	}
}

func TestServiceRefresh(t *testing.T) {
	gate := ingest.NewGate()
	service := NewService(testRepo(), gate, "Fall 2026")

	if err := service.Refresh(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if service.Snapshot() == nil {
		t.Error("Expected a snapshot after refresh")
	}

	status := gate.Status()
	if status.State != ingest.StateIdle {
		t.Errorf("Expected gate released after refresh, got: %q", status.State)
	}
	if status.Message != "Analysis refreshed" {
		t.Errorf("Expected completion message, got: %q", status.Message)
	}
}

func TestServiceRefreshRejectedWhileBusy(t *testing.T) {
	gate := ingest.NewGate()
	service := NewService(testRepo(), gate, "Fall 2026")

	if !gate.TryStart(ingest.OperationPull) {
		t.Fatal("Expected gate acquisition to succeed")
	}

	if err := service.Refresh(); !errors.Is(err, ingest.ErrBusy) {
		t.Errorf("Expected ErrBusy while a pull is running, got: %v", err)
	}
	if service.Snapshot() != nil {
		t.Error("Expected snapshot to stay unset after rejected refresh")
	}
}

func TestServiceRefreshReleasesGateOnError(t *testing.T) {
	repo := testRepo()
	repo.err = errors.New("connection refused")

	gate := ingest.NewGate()
	service := NewService(repo, gate, "Fall 2026")

	err := service.Refresh()
	if err == nil {
		t.Fatal("Expected repository error to fail the refresh")
	}

	status := gate.Status()
	if status.State != ingest.StateIdle {
		t.Errorf("Expected gate released after failed refresh, got: %q", status.State)
	}

	if !gate.TryStart(ingest.OperationPull) {
		t.Error("Expected gate to be usable after failed refresh")
	}
}
