package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           int
	DatabaseURL    string
	JWTSecret      string
	AdminAddresses []string
	CORSOrigin     string
	TokenTTL       time.Duration
	NonceTTL       time.Duration
}

const (
	defaultPort     = 8080
	defaultTokenTTL = 7 * 24 * time.Hour
	defaultNonceTTL = 5 * time.Minute
)

// ParseFlags validates flags, falling back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var admins string

	fs := flag.NewFlagSet("agoravote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.CORSOrigin, "cors-origin", "", "Allowed CORS origin")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Session token secret (prefer env)")
	fs.StringVar(&admins, "admins", "", "Comma-separated admin wallet addresses")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	// The token secret MUST be provided; a guessed default would
	// let anyone mint valid sessions.
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	if admins == "" {
		admins = os.Getenv("ADMIN_ADDRESSES")
	}
	cfg.AdminAddresses = splitAddresses(admins)

	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = os.Getenv("CORS_ORIGIN")
	}

	cfg.TokenTTL = defaultTokenTTL
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return Config{}, errors.New("invalid TOKEN_TTL env variable")
		}
		cfg.TokenTTL = ttl
	}

	cfg.NonceTTL = defaultNonceTTL
	if v := os.Getenv("NONCE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return Config{}, errors.New("invalid NONCE_TTL env variable")
		}
		cfg.NonceTTL = ttl
	}

	return cfg, nil
}

func splitAddresses(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
