package cfg

type Cfg struct {
	// Input data
	LabelsPath  string
	TopicsPath  string
	APIKeysPath string

	// Output data
	DataDir string
	DBPath  string

	// Fetcher configuration
	BatchSize        int
	FetchConcurrency int
	QuotaEpsilon     int
	QuotaRetries     int

	// HTTP server configuration
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
