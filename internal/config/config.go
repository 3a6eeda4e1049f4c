// Package config loads application configuration from environment
// variables.
package config

import (
    "log"
    "os"
    "strconv"
)

// Config holds all runtime configuration values.  Each field corresponds
// to one environment variable; strings for identifiers and secrets, ints
// for durations.
type Config struct {
    Env              string // application environment (e.g. "dev", "prod")
    Port             string // HTTP port to listen on
    DBUser           string // database username
    DBPass           string // database password (optional)
    DBHost           string // database host address
    DBPort           string // database port number
    DBName           string // database name
    JWTSecret        string // secret used to verify JWTs issued by the auth service
    HoldTTLMin       int    // slot hold time-to-live in minutes
    SweepIntervalMin int    // expired-reservation sweep interval in minutes
    ProofDir         string // directory for uploaded payment proofs
    AMQPURL          string // RabbitMQ connection URL (optional)
}

// Load reads configuration from the environment.  Required variables are
// enforced by must(); missing values exit with a fatal log message.
func Load() Config {
    return Config{
        Env:              must("APP_ENV"),
        Port:             must("APP_PORT"),
        DBUser:           must("DB_USER"),
        DBPass:           os.Getenv("DB_PASS"), // empty allowed
        DBHost:           must("DB_HOST"),
        DBPort:           must("DB_PORT"),
        DBName:           must("DB_NAME"),
        JWTSecret:        must("JWT_SECRET"),
        HoldTTLMin:       intOr("HOLD_TTL_MIN", 15),
        SweepIntervalMin: intOr("SWEEP_INTERVAL_MIN", 5),
        ProofDir:         strOr("PROOF_DIR", "data/proofs"),
        AMQPURL:          os.Getenv("AMQP_URL"),
    }
}

// must retrieves a required environment variable.  If the variable is
// unset or empty the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// strOr returns the variable's value or a default when unset.
func strOr(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// intOr parses the variable as an integer, falling back to the default
// when unset and exiting on a malformed value.
func intOr(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
