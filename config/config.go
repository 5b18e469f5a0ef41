package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all relay configuration.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string

	// HostURL is this relay's own externally reachable base URL, used to
	// build confirmation and preferences links.
	HostURL string

	// DB connection parameters.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	// Mailjet credentials and the sender identity.
	MailjetAPIKey    string
	MailjetAPISecret string
	MailjetBaseURL   string
	MailFrom         string

	// RelayChains is the set of chain IDs whose blockchain-reference tags
	// are subject to the relay write policy.
	RelayChains map[string]struct{}

	// ChainRateLimit and ChainRateWindow bound the relay write policy's
	// per (peer address, chain_id:address) limiter.
	ChainRateLimit  int
	ChainRateWindow time.Duration
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load() // no-op if .env absent (production uses real env vars)

	cfg := &Config{
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		HostURL:          getEnv("HOST_URL", "http://localhost:8080"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnvInt("DB_PORT", 5432),
		DBUser:           getEnv("DB_USER", "bcr_relay"),
		DBPassword:       getEnv("DB_PASSWORD", ""),
		DBName:           getEnv("DB_NAME", "bcr_relay"),
		MailjetAPIKey:    getEnv("MAILJET_API_KEY", ""),
		MailjetAPISecret: getEnv("MAILJET_API_SECRET", ""),
		MailjetBaseURL:   getEnv("MAILJET_BASE_URL", "https://api.mailjet.com"),
		MailFrom:         getEnv("MAIL_FROM", "notifications@bitcredit.example"),
		RelayChains:      parseChainSet(getEnv("RELAY_CHAINS", "bill,identity,company")),
		ChainRateLimit:   getEnvInt("CHAIN_RATE_LIMIT", 6),
		ChainRateWindow:  time.Duration(getEnvInt("CHAIN_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}

	if cfg.MailjetAPIKey == "" || cfg.MailjetAPISecret == "" {
		return nil, fmt.Errorf("config: MAILJET_API_KEY and MAILJET_API_SECRET are required")
	}

	return cfg, nil
}

// DBConnString builds a libpq-style connection string for pgxpool.
func (c *Config) DBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func parseChainSet(raw string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, chain := range strings.Split(raw, ",") {
		chain = strings.TrimSpace(chain)
		if chain != "" {
			out[chain] = struct{}{}
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
