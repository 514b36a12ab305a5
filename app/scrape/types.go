package scrape

// Entry holds one admission result extracted from the listing markup.
// Every field is free text as rendered by the source; absent fields stay
// empty strings. Values are raw until passed through Cleaner.
type Entry struct {
	Program     string // combined "program, university" as listed
	Degree      string
	DateAdded   string
	URL         string
	Status      string
	Term        string
	Citizenship string
	GPA         string
	GRE         string
	GREVerbal   string
	GREAW       string
	Comment     string
}
