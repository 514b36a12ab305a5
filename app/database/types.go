package database

// ScoreAverages holds the mean of each reported score across applicants who
// provided it.
type ScoreAverages struct {
	GPA       *float64
	GRE       *float64
	GREVerbal *float64
	GREAW     *float64
}

// UniversityAcceptance is one row of the per-university acceptance rollup.
type UniversityAcceptance struct {
	University     string
	Applications   int
	Acceptances    int
	AcceptanceRate float64
}

// DegreeStats is one row of the per-degree rollup.
type DegreeStats struct {
	Degree         string
	Applications   int
	AverageGPA     *float64
	AcceptanceRate float64
}
