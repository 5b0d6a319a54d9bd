package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// DataFile is the 500 Cities export to load, .csv or .xlsx. Required.
	DataFile string
	// GeoLevel restricts the load to one geographic level when non-empty.
	GeoLevel string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// BinCount and Palette drive the marker color binning.
	BinCount int
	Palette  domain.Palette

	SessionTTL    time.Duration
	SessionLimit  int
	SweepInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is folded in first so
// local runs need no wrapper script; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataFile := os.Getenv("DATA_FILE")
	if dataFile == "" {
		return nil, errors.New("DATA_FILE is required")
	}

	shutdownTimeout, err := parseDurationVar("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	sessionTTL, err := parseDurationVar("SESSION_TTL", "30m")
	if err != nil {
		return nil, err
	}
	sweepInterval, err := parseDurationVar("SESSION_SWEEP_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}
	binCount, err := parsePositiveIntVar("BIN_COUNT", 6)
	if err != nil {
		return nil, err
	}
	sessionLimit, err := parsePositiveIntVar("SESSION_LIMIT", 100)
	if err != nil {
		return nil, err
	}

	palette := domain.DefaultPalette
	if s := os.Getenv("PALETTE"); s != "" {
		palette, err = domain.ParsePalette(s)
		if err != nil {
			return nil, fmt.Errorf("invalid PALETTE: %w", err)
		}
	}
	if binCount > len(palette) {
		return nil, fmt.Errorf("BIN_COUNT is %d but the palette has only %d colors", binCount, len(palette))
	}

	return &Config{
		DataFile:        dataFile,
		GeoLevel:        os.Getenv("GEO_LEVEL"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		BinCount:        binCount,
		Palette:         palette,
		SessionTTL:      sessionTTL,
		SessionLimit:    sessionLimit,
		SweepInterval:   sweepInterval,
	}, nil
}

// envOrDefault returns the variable's value, or fallback when unset or empty.
func envOrDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func parseDurationVar(name, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(name, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: want a positive duration", name)
	}
	return d, nil
}

func parsePositiveIntVar(name string, fallback int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: want a positive integer", name)
	}
	return n, nil
}
