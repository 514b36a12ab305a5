package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	Port         string
	APIAccessKey string
	PullInterval int

	// Scrape configuration
	SourceUrl         string
	ScrapePages       int
	ScrapeStartPage   int
	ScrapeDelay       int
	FetchRetries      int
	FetchBackoff      int
	AbortOnFetchError bool

	// Standardization configuration
	RulesFile   string
	LLMEndpoint string
	LLMModel    string
	LLMAPIKey   string
	CacheSize   int

	// Analysis configuration
	AnalysisTerm string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
