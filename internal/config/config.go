package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// It is constructed once at process start and passed by reference into every
// component constructor; a missing required value fails construction instead
// of surfacing lazily at first use.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Redis (ephemeral run state: worklists, oversized report bodies, locks)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Item-management platform
	IMSBaseURL string
	IMSTimeout time.Duration

	// Notifier gateway
	NotifierURL     string
	NotifierTimeout time.Duration

	// Webhook transport
	WebhookSecret string

	// Rate limiting: maximum upstream platform calls per second
	RateLimit int

	// Bounded retry for upstream fetches: index 0 = first retry delay, etc.
	FetchBackoff []time.Duration

	// Batch re-verification workflow
	BatchSize       int
	SweepInterval   time.Duration
	ReaperInterval  time.Duration
	StallAfter      time.Duration
	BlobTTL         time.Duration
	InlineBodyLimit int

	// Queue capacity for continuation messages
	QueueCapacity int

	// Business constants. Fixed lists maintained by the consortium; not
	// expected to change between deployments, so no env hooks.
	DiscardMarker string
	SuffixMarker  string
	Provenance    []string
	ExcludedNotes []string
	SkipLocations []string
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	secret := os.Getenv("WEBHOOK_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("WEBHOOK_SECRET is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		IMSBaseURL: getEnv("IMS_BASE_URL", "https://api.example.edu/ims/v1"),
		IMSTimeout: getDuration("IMS_TIMEOUT", 10*time.Second),

		NotifierURL:     getEnv("NOTIFIER_URL", "http://localhost:9090/notify"),
		NotifierTimeout: getDuration("NOTIFIER_TIMEOUT", 10*time.Second),

		WebhookSecret: secret,

		RateLimit: getInt("IMS_RATE_LIMIT", 10),

		FetchBackoff: []time.Duration{
			getDuration("FETCH_BACKOFF_1", 2*time.Second),
			getDuration("FETCH_BACKOFF_2", 4*time.Second),
		},

		BatchSize:       getInt("BATCH_SIZE", 50),
		SweepInterval:   getDuration("SWEEP_INTERVAL", 24*time.Hour),
		ReaperInterval:  getDuration("REAPER_INTERVAL", 5*time.Minute),
		StallAfter:      getDuration("STALL_AFTER", 15*time.Minute),
		BlobTTL:         getDuration("BLOB_TTL", 48*time.Hour),
		InlineBodyLimit: getInt("INLINE_BODY_LIMIT", 32*1024),

		QueueCapacity: getInt("QUEUE_CAPACITY", 1000),

		DiscardMarker: "discard",
		SuffixMarker:  "X",
		Provenance:    defaultProvenance(),
		ExcludedNotes: defaultExcludedNotes(),
		SkipLocations: defaultSkipLocations(),
	}, nil
}

// defaultProvenance is the allow-list of consortium member institutions.
// Items whose provenance label is not in this list are out of scope.
func defaultProvenance() []string {
	return []string{
		"Property of American University",
		"Property of American University Law School",
		"Property of Catholic University of America",
		"Property of Gallaudet University",
		"Property of George Mason University",
		"Property of George Washington Himmelfarb",
		"Property of George Washington University",
		"Property of George Washington University School of Law",
		"Property of Georgetown University",
		"Property of Georgetown University School of Law",
		"Property of Howard University",
		"Property of Marymount University",
		"Property of National Security Archive",
		"Property of University of the District of Columbia",
		"Property of University of the District of Columbia Jazz Archives",
	}
}

// defaultExcludedNotes suppresses staging for items whose internal note
// marks them as already being handled manually.
func defaultExcludedNotes() []string {
	return []string{
		"At WRLC waiting to be processed",
		"DO NOT DELETE",
		"WD",
	}
}

// defaultSkipLocations lists physical locations whose call numbers do not
// follow the row/tray shelving format.
func defaultSkipLocations() []string {
	return []string{
		"WRLC Gemtrac Drawer",
		"WRLC Microfilm Cabinet",
		"WRLC Microfiche Cabinet",
		"Low Temperature Media Preservation Unit  # 1 @ SCF",
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
