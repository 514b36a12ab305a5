package database

import (
	"time"
)

// ApplicantRecord is the insert shape handed to the repository by the load
// step. Nil pointers map to NULL columns.
type ApplicantRecord struct {
	Program           string
	Comments          string
	DateAdded         *time.Time
	URL               string
	Status            string
	Decision          string
	DecisionDate      *time.Time
	Term              string
	USOrInternational string
	GPA               *float64
	GRE               *float64
	GREVerbal         *float64
	GREAW             *float64
	Degree            string

	StandardizedProgram    string
	StandardizedUniversity string
}

type ApplicantRepository interface {
	// InsertApplicant stores one record keyed on its URL. Returns true when
	// a new row was created, false when the URL already existed and the
	// insert was skipped.
	InsertApplicant(record ApplicantRecord) (bool, error)

	GetApplicantCount() (int, error)

	CountByTerm(term string) (int, error)
	GetInternationalPercentage() (float64, error)
	GetAverageScores() (ScoreAverages, error)
	GetAverageGPA(citizenship string, term string) (*float64, error)
	GetAcceptanceRate(term string) (float64, error)
	GetAcceptedAverageGPA(term string) (*float64, error)
	GetTopUniversitiesByAcceptance(minApplications int, limit int) ([]UniversityAcceptance, error)
	GetStatsByDegree() ([]DegreeStats, error)
}
