package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"gradsift_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"gradsift_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"gradsift" description:"Database name"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	PullInterval int    `long:"pull-interval" env:"PULL_INTERVAL" default:"0" description:"Automatic data pull interval in minutes (0 disables)"`

	// Scrape configuration
	SourceUrl         string `long:"source-url" env:"SOURCE_URL" default:"https://www.thegradcafe.com/survey/" description:"Base URL of the admission results listing"`
	ScrapePages       int    `long:"scrape-pages" env:"SCRAPE_PAGES" default:"1500" description:"Number of pages to fetch per pull (~20 entries per page)"`
	ScrapeStartPage   int    `long:"scrape-start-page" env:"SCRAPE_START_PAGE" default:"1" description:"Page to start fetching from"`
	ScrapeDelay       int    `long:"scrape-delay" env:"SCRAPE_DELAY" default:"1000" description:"Delay between page fetches in milliseconds"`
	FetchRetries      int    `long:"fetch-retries" env:"FETCH_RETRIES" default:"3" description:"Retries per page after a failed fetch before the page is abandoned"`
	FetchBackoff      int    `long:"fetch-backoff" env:"FETCH_BACKOFF" default:"2000" description:"Initial retry backoff in milliseconds, doubled on each attempt"`
	AbortOnFetchError bool   `long:"abort-on-fetch-error" env:"ABORT_ON_FETCH_ERROR" description:"Abort the whole run when a page cannot be fetched instead of skipping it"`

	// Standardization configuration
	RulesFile   string `long:"rules-file" env:"RULES_FILE" default:"./rules/canon.yml" description:"YAML file with canonical program and university names"`
	LLMEndpoint string `long:"llm-endpoint" env:"LLM_ENDPOINT" description:"OpenAI-compatible chat completions URL for the standardization fallback (optional)"`
	LLMModel    string `long:"llm-model" env:"LLM_MODEL" default:"gpt-4o-mini" description:"Model name sent to the standardization endpoint"`
	LLMAPIKey   string `long:"llm-api-key" env:"LLM_API_KEY" description:"Bearer token for the standardization endpoint (optional)"`
	CacheSize   int    `long:"cache-size" env:"CACHE_SIZE" default:"10000" description:"Standardization cache capacity in entries"`

	// Analysis configuration
	AnalysisTerm string `long:"analysis-term" env:"ANALYSIS_TERM" default:"Fall 2026" description:"Admission term the analysis questions focus on"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"GradSift/1.0 (Educational Research Bot)" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:            raw.DBHost,
		DBPort:            raw.DBPort,
		DBUser:            raw.DBUser,
		DBPassword:        raw.DBPassword,
		DBName:            raw.DBName,
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		PullInterval:      raw.PullInterval,
		SourceUrl:         raw.SourceUrl,
		ScrapePages:       raw.ScrapePages,
		ScrapeStartPage:   raw.ScrapeStartPage,
		ScrapeDelay:       raw.ScrapeDelay,
		FetchRetries:      raw.FetchRetries,
		FetchBackoff:      raw.FetchBackoff,
		AbortOnFetchError: raw.AbortOnFetchError,
		RulesFile:         raw.RulesFile,
		LLMEndpoint:       raw.LLMEndpoint,
		LLMModel:          raw.LLMModel,
		LLMAPIKey:         raw.LLMAPIKey,
		CacheSize:         raw.CacheSize,
		AnalysisTerm:      raw.AnalysisTerm,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
