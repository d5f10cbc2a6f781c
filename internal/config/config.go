// Package config reads the host's configuration from the environment, with
// a .env file for development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string
	TournamentID string

	// Bracket authority.
	APIBaseURL   string
	AuthBaseURL  string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AccessToken  string // optional, pre-seeded token
	RefreshToken string

	// Requests per second allowed against the authority, and burst size.
	RateLimit float64
	RateBurst int
}

// Load reads the environment. A missing .env file is fine in production;
// missing required keys are not.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:         getenv("ADDR", ":8080"),
		TournamentID: os.Getenv("TOURNAMENT_ID"),
		APIBaseURL:   getenv("BRACKET_API_URL", "https://api.challonge.com/v2"),
		AuthBaseURL:  getenv("BRACKET_AUTH_URL", "https://api.challonge.com"),
		ClientID:     os.Getenv("BRACKET_CLIENT_ID"),
		ClientSecret: os.Getenv("BRACKET_CLIENT_SECRET"),
		RedirectURI:  os.Getenv("BRACKET_REDIRECT_URI"),
		AccessToken:  os.Getenv("BRACKET_ACCESS_TOKEN"),
		RefreshToken: os.Getenv("BRACKET_REFRESH_TOKEN"),
		RateLimit:    1,
		RateBurst:    5,
	}

	if cfg.TournamentID == "" {
		return Config{}, fmt.Errorf("TOURNAMENT_ID is required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return Config{}, fmt.Errorf("BRACKET_CLIENT_ID and BRACKET_CLIENT_SECRET are required")
	}

	if v := os.Getenv("BRACKET_RATE_LIMIT"); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("BRACKET_RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = limit
	}
	if v := os.Getenv("BRACKET_RATE_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("BRACKET_RATE_BURST: %w", err)
		}
		cfg.RateBurst = burst
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
