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
	// Input data
	LabelsPath  string `long:"labels-path" env:"LABELS_PATH" default:"data/raw/train/labels/TRECIS_2018_2019-labels.json" description:"Path to the raw annotation labels JSON file"`
	TopicsPath  string `long:"topics-path" env:"TOPICS_PATH" default:"data/raw/TRECIS-2018-2019.topics.xml" description:"Path to the event topics XML file"`
	APIKeysPath string `long:"api-keys-path" env:"API_KEYS_PATH" default:"api_keys.yml" description:"Path to the Twitter API credentials YAML file"`

	// Output data
	DataDir string `long:"data-dir" env:"DATA_DIR" default:"data/processed" description:"Directory for processed datasets and the corpus tree"`
	DBPath  string `long:"db-path" env:"DB_PATH" default:"data/corpus.db" description:"Path to the SQLite corpus database"`

	// Fetcher configuration
	BatchSize        int `long:"batch-size" env:"BATCH_SIZE" default:"100" description:"Number of document IDs per lookup call"`
	FetchConcurrency int `long:"fetch-concurrency" env:"FETCH_CONCURRENCY" default:"1" description:"Number of lookup calls issued concurrently"`
	QuotaEpsilon     int `long:"quota-epsilon" env:"QUOTA_EPSILON" default:"5" description:"Extra seconds to sleep past the quota reset time (clock skew guard)"`
	QuotaRetries     int `long:"quota-retries" env:"QUOTA_RETRIES" default:"25" description:"Maximum quota-exceeded retries per batch"`

	// HTTP server configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port (serve mode)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authenticated endpoints (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"CrisisCorpus/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load parses configuration from command-line flags and environment
// variables. It returns (nil, nil, "") when help was requested. The second
// return value is the positional command ("prepare" or "serve").
func Load() (*Cfg, string, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	parser.Usage = "[prepare|serve] [OPTIONS]"

	args, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, "", nil
			}
		}
		return nil, "", fmt.Errorf("failed to parse configuration: %w", err)
	}

	command := "prepare"
	if len(args) > 0 {
		command = args[0]
	}
	if command != "prepare" && command != "serve" {
		return nil, "", fmt.Errorf("unknown command %q, expected 'prepare' or 'serve'", command)
	}

	cfg := &Cfg{
		LabelsPath:       raw.LabelsPath,
		TopicsPath:       raw.TopicsPath,
		APIKeysPath:      raw.APIKeysPath,
		DataDir:          raw.DataDir,
		DBPath:           raw.DBPath,
		BatchSize:        raw.BatchSize,
		FetchConcurrency: raw.FetchConcurrency,
		QuotaEpsilon:     raw.QuotaEpsilon,
		QuotaRetries:     raw.QuotaRetries,
		Port:             raw.Port,
		APIAccessKey:     raw.APIAccessKey,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if cfg.BatchSize <= 0 {
		return nil, "", fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.FetchConcurrency <= 0 {
		return nil, "", fmt.Errorf("fetch concurrency must be positive, got %d", cfg.FetchConcurrency)
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, command, nil
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
		}
	}
	return nil
}
