package database

import (
	"database/sql"
	"fmt"
)

type applicantRepository struct {
	db *DB
}

var _ ApplicantRepository = (*applicantRepository)(nil)

func NewApplicantRepository(db *DB) ApplicantRepository {
	return &applicantRepository{db: db}
}

func (r *applicantRepository) InsertApplicant(record ApplicantRecord) (bool, error) {
	result, err := r.db.Exec(`
		INSERT INTO applicants (
			program, comments, date_added, url, status, decision, decision_date,
			term, us_or_international, gpa, gre, gre_v, gre_aw, degree,
			llm_generated_program, llm_generated_university
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (url) DO NOTHING
	`, record.Program, record.Comments, record.DateAdded, record.URL, record.Status,
		record.Decision, record.DecisionDate, record.Term, record.USOrInternational,
		record.GPA, record.GRE, record.GREVerbal, record.GREAW, record.Degree,
		record.StandardizedProgram, record.StandardizedUniversity)

	if err != nil {
		return false, fmt.Errorf("failed to insert applicant: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return affected == 1, nil
}

func (r *applicantRepository) GetApplicantCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM applicants").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get applicant count: %w", err)
	}
	return count, nil
}

func (r *applicantRepository) CountByTerm(term string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM applicants
		WHERE term ILIKE '%' || $1 || '%'
	`, term).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("failed to count applicants by term: %w", err)
	}

	return count, nil
}

func (r *applicantRepository) GetInternationalPercentage() (float64, error) {
	var percentage sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT ROUND(
			(COUNT(CASE WHEN us_or_international = 'International' THEN 1 END) * 100.0 /
			NULLIF(COUNT(*), 0)), 2
		)
		FROM applicants
	`).Scan(&percentage)

	if err != nil {
		return 0, fmt.Errorf("failed to get international percentage: %w", err)
	}

	return percentage.Float64, nil
}

// GetAverageScores averages each metric over the applicants who provided it.
// AVG skips NULLs, so every metric has its own denominator.
func (r *applicantRepository) GetAverageScores() (ScoreAverages, error) {
	var gpa, gre, greVerbal, greAW sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT
			ROUND(AVG(gpa)::numeric, 2),
			ROUND(AVG(gre)::numeric, 2),
			ROUND(AVG(gre_v)::numeric, 2),
			ROUND(AVG(gre_aw)::numeric, 2)
		FROM applicants
		WHERE gpa IS NOT NULL
		   OR gre IS NOT NULL
		   OR gre_v IS NOT NULL
		   OR gre_aw IS NOT NULL
	`).Scan(&gpa, &gre, &greVerbal, &greAW)

	if err != nil {
		return ScoreAverages{}, fmt.Errorf("failed to get average scores: %w", err)
	}

	return ScoreAverages{
		GPA:       nullableFloat(gpa),
		GRE:       nullableFloat(gre),
		GREVerbal: nullableFloat(greVerbal),
		GREAW:     nullableFloat(greAW),
	}, nil
}

func (r *applicantRepository) GetAverageGPA(citizenship string, term string) (*float64, error) {
	var gpa sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT ROUND(AVG(gpa)::numeric, 2)
		FROM applicants
		WHERE us_or_international = $1
		  AND term ILIKE '%' || $2 || '%'
		  AND gpa IS NOT NULL
	`, citizenship, term).Scan(&gpa)

	if err != nil {
		return nil, fmt.Errorf("failed to get average GPA: %w", err)
	}

	return nullableFloat(gpa), nil
}

func (r *applicantRepository) GetAcceptanceRate(term string) (float64, error) {
	var rate sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT ROUND(
			(COUNT(CASE WHEN status ILIKE '%Accepted%' THEN 1 END) * 100.0 /
			NULLIF(COUNT(*), 0)), 2
		)
		FROM applicants
		WHERE term ILIKE '%' || $1 || '%'
	`, term).Scan(&rate)

	if err != nil {
		return 0, fmt.Errorf("failed to get acceptance rate: %w", err)
	}

	return rate.Float64, nil
}

func (r *applicantRepository) GetAcceptedAverageGPA(term string) (*float64, error) {
	var gpa sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT ROUND(AVG(gpa)::numeric, 2)
		FROM applicants
		WHERE term ILIKE '%' || $1 || '%'
		  AND status ILIKE '%Accepted%'
		  AND gpa IS NOT NULL
	`, term).Scan(&gpa)

	if err != nil {
		return nil, fmt.Errorf("failed to get accepted average GPA: %w", err)
	}

	return nullableFloat(gpa), nil
}

// GetTopUniversitiesByAcceptance ranks canonical universities by acceptance
// rate, ignoring entries whose university was never resolved.
func (r *applicantRepository) GetTopUniversitiesByAcceptance(minApplications int, limit int) ([]UniversityAcceptance, error) {
	rows, err := r.db.Query(`
		SELECT
			llm_generated_university,
			COUNT(*) AS total_applications,
			COUNT(CASE WHEN status ILIKE '%Accepted%' THEN 1 END) AS acceptances,
			ROUND(
				(COUNT(CASE WHEN status ILIKE '%Accepted%' THEN 1 END) * 100.0 /
				NULLIF(COUNT(*), 0)), 2
			) AS acceptance_rate
		FROM applicants
		WHERE llm_generated_university IS NOT NULL AND llm_generated_university != ''
		GROUP BY llm_generated_university
		HAVING COUNT(*) >= $1
		ORDER BY acceptance_rate DESC
		LIMIT $2
	`, minApplications, limit)

	if err != nil {
		return nil, fmt.Errorf("failed to get top universities: %w", err)
	}
	defer rows.Close()

	var universities []UniversityAcceptance
	for rows.Next() {
		var entry UniversityAcceptance
		var rate sql.NullFloat64

		if err := rows.Scan(&entry.University, &entry.Applications, &entry.Acceptances, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan university row: %w", err)
		}

		entry.AcceptanceRate = rate.Float64
		universities = append(universities, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating university rows: %w", err)
	}

	return universities, nil
}

func (r *applicantRepository) GetStatsByDegree() ([]DegreeStats, error) {
	rows, err := r.db.Query(`
		SELECT
			degree,
			COUNT(*) AS total_applications,
			ROUND(AVG(gpa)::numeric, 2) AS avg_gpa,
			ROUND(
				(COUNT(CASE WHEN status ILIKE '%Accepted%' THEN 1 END) * 100.0 /
				NULLIF(COUNT(*), 0)), 2
			) AS acceptance_rate
		FROM applicants
		WHERE degree IS NOT NULL AND degree != ''
		GROUP BY degree
		ORDER BY total_applications DESC
	`)

	if err != nil {
		return nil, fmt.Errorf("failed to get stats by degree: %w", err)
	}
	defer rows.Close()

	var stats []DegreeStats
	for rows.Next() {
		var entry DegreeStats
		var gpa, rate sql.NullFloat64

		if err := rows.Scan(&entry.Degree, &entry.Applications, &gpa, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan degree row: %w", err)
		}

		entry.AverageGPA = nullableFloat(gpa)
		entry.AcceptanceRate = rate.Float64
		stats = append(stats, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating degree rows: %w", err)
	}

	return stats, nil
}

func nullableFloat(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	return &value.Float64
}
