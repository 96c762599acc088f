// Package config loads application settings from the environment. A .env
// file in the working directory is honoured when present so local
// development does not require exporting a dozen variables. Provider
// credentials are optional: a provider without credentials is simply never
// attempted by the orchestrator.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	defaultAddr        = ":4000"
	defaultDBPath      = "songidentify.db"
	defaultMaxUpload   = 10 << 20 // 10MiB
	defaultTimeout     = 15 * time.Second
	defaultHistorySize = 10
)

// Config bundles every setting read at startup.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// StoreKind selects the persistence backend: "sqlite" or "memory".
	StoreKind string
	// DBPath locates the SQLite file when StoreKind is "sqlite".
	DBPath string
	// MaxUploadBytes caps the size of an uploaded audio clip.
	MaxUploadBytes int64
	// ProviderTimeout bounds each outbound recognition call.
	ProviderTimeout time.Duration
	// GuessFallback enables the byte-statistics demo guesser instead of
	// the fixed placeholder when every provider fails.
	GuessFallback bool
	// HistoryLimit is the default page size for the history endpoint.
	HistoryLimit int

	// Provider credentials. Empty values leave the provider unconfigured.
	AudDToken      string
	ACRHost        string
	ACRAccessKey   string
	ACRSecret      string
	RapidAPIKey    string
	AudioTagAPIKey string

	// Spotify credentials for the optional metadata enricher.
	SpotifyClientID     string
	SpotifyClientSecret string

	// RedisAddr enables the identification result cache when set.
	RedisAddr string
}

// Load reads the configuration from a .env file (if any) and the process
// environment, applying defaults for everything unset.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:                getEnvOrDefault("LISTEN_ADDR", defaultAddr),
		StoreKind:           getEnvOrDefault("STORE", "sqlite"),
		DBPath:              getEnvOrDefault("DATABASE_PATH", defaultDBPath),
		MaxUploadBytes:      parseInt64OrDefault(os.Getenv("MAX_UPLOAD_BYTES"), defaultMaxUpload),
		ProviderTimeout:     parseDurationOrDefault(os.Getenv("PROVIDER_TIMEOUT"), defaultTimeout),
		GuessFallback:       os.Getenv("DEMO_GUESS") == "1" || os.Getenv("DEMO_GUESS") == "true",
		HistoryLimit:        int(parseInt64OrDefault(os.Getenv("HISTORY_LIMIT"), defaultHistorySize)),
		AudDToken:           os.Getenv("AUDD_API_TOKEN"),
		ACRHost:             os.Getenv("ACRCLOUD_HOST"),
		ACRAccessKey:        os.Getenv("ACRCLOUD_ACCESS_KEY"),
		ACRSecret:           os.Getenv("ACRCLOUD_SECRET"),
		RapidAPIKey:         os.Getenv("RAPIDAPI_KEY"),
		AudioTagAPIKey:      os.Getenv("AUDIOTAG_API_KEY"),
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
	}
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt64OrDefault(s string, defaultValue int64) int64 {
	if s == "" {
		return defaultValue
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		logrus.Warnf("invalid integer %q, using default %d", s, defaultValue)
		return defaultValue
	}
	return v
}

func parseDurationOrDefault(s string, defaultValue time.Duration) time.Duration {
	if s == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		logrus.Warnf("invalid duration %q, using default %v", s, defaultValue)
		return defaultValue
	}
	return d
}
