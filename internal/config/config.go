package config

import (
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Backend BackendConfig
	Org     OrgConfig
	Store   StoreConfig
	Bus     BusConfig
	Control ControlConfig
	Session SessionConfig
}

type BackendConfig struct {
	APIKey           string
	BaseURL          string
	Model            string
	VectorStoreID    string
	RetrievalResults int
	SocksProxy       string // empty means direct
	Timeout          time.Duration
}

type OrgConfig struct {
	Name           string
	ShortName      string
	HeuristicsFile string
}

type StoreConfig struct {
	Backend     string // "memory", "redis" or "postgres"
	RedisURL    string
	PostgresDSN string
	TTL         time.Duration
}

type BusConfig struct {
	URL       string // empty disables the bus
	Shard     string
	Reconnect int // seconds between reconnect attempts
}

type ControlConfig struct {
	Socket string
}

type SessionConfig struct {
	Window      int
	IdleTimeout time.Duration
}

// Load reads envFile, when present, into the environment and builds the config.
func Load(envFile string) *Config {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Debug("Env file not loaded, using system environment", "file", envFile, "err", err)
		}
	}

	return &Config{
		Backend: BackendConfig{
			APIKey:           getEnv("OPENAI_API_KEY", ""),
			BaseURL:          getEnv("OPENAI_BASE_URL", ""),
			Model:            getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			VectorStoreID:    getEnv("VECTOR_STORE_ID", ""),
			RetrievalResults: getEnvAsInt("RETRIEVAL_RESULTS", 20),
			SocksProxy:       getEnv("SOCKS_PROXY", ""),
			Timeout:          getEnvAsDuration("BACKEND_TIMEOUT", 60*time.Second),
		},
		Org: OrgConfig{
			Name:           getEnv("ORG_NAME", "Sparkout Tech Solutions"),
			ShortName:      getEnv("ORG_SHORT_NAME", "Sparkout"),
			HeuristicsFile: getEnv("HEURISTICS_FILE", ""),
		},
		Store: StoreConfig{
			Backend:     getEnv("STORE_BACKEND", "memory"),
			RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
			PostgresDSN: getEnv("POSTGRES_DSN", ""),
			TTL:         getEnvAsDuration("HISTORY_TTL", 24*time.Hour),
		},
		Bus: BusConfig{
			URL:       getEnv("BUS_URL", ""),
			Shard:     getEnv("BUS_SHARD", "voxroute"),
			Reconnect: getEnvAsInt("BUS_RECONNECT", 3),
		},
		Control: ControlConfig{
			Socket: getEnv("CONTROL_SOCKET", "/tmp/voxroute.sock"),
		},
		Session: SessionConfig{
			Window:      getEnvAsInt("HISTORY_WINDOW", 50),
			IdleTimeout: getEnvAsDuration("SESSION_IDLE", 30*time.Minute),
		},
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Backend.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY not set"))
	}
	if c.Backend.VectorStoreID == "" {
		errs = append(errs, errors.New("VECTOR_STORE_ID not set"))
	}
	if c.Backend.RetrievalResults <= 0 {
		errs = append(errs, fmt.Errorf("RETRIEVAL_RESULTS must be positive, got %d", c.Backend.RetrievalResults))
	}
	if c.Org.Name == "" || c.Org.ShortName == "" {
		errs = append(errs, errors.New("ORG_NAME and ORG_SHORT_NAME must not be empty"))
	}

	switch c.Store.Backend {
	case "memory":
	case "redis":
		if c.Store.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL not set for redis store"))
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN not set for postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend))
	}

	if c.Bus.Reconnect < 0 {
		errs = append(errs, fmt.Errorf("BUS_RECONNECT must not be negative, got %d", c.Bus.Reconnect))
	}
	if c.Bus.URL != "" && c.Bus.Shard == "" {
		errs = append(errs, errors.New("BUS_SHARD must not be empty when BUS_URL is set"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") and bare seconds ("90").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
