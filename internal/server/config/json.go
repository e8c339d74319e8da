package config

import (
	"encoding/json"
	"fmt"
	"os"

	"credkeeper/internal/flagx"
	"credkeeper/internal/timex"
)

// jsonConfig is an intermediate DTO for JSON config files. It uses
// timex.Duration for interval fields, which accepts both strings such as
// "15m" and integer nanoseconds. After unmarshalling, non-zero fields are
// copied into the runtime Config.
type jsonConfig struct {
	EndpointAddrHTTP   string         `json:"endpoint_addr_http"`
	DatabaseDSN        string         `json:"database_dsn"`
	UseMemoryStore     bool           `json:"use_memory_store"`
	RedisAddr          string         `json:"redis_addr"`
	AccessTokenSecret  string         `json:"access_token_secret"`
	RefreshTokenSecret string         `json:"refresh_token_secret"`
	AccessTokenTTL     timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL    timex.Duration `json:"refresh_token_ttl"`
	ResetTokenTTL      timex.Duration `json:"reset_token_ttl"`
	ClockSkew          timex.Duration `json:"clock_skew"`
	BcryptCost         int            `json:"bcrypt_cost"`
	SMTPAddr           string         `json:"smtp_addr"`
	SMTPUsername       string         `json:"smtp_username"`
	SMTPPassword       string         `json:"smtp_password"`
	SMTPFrom           string         `json:"smtp_from"`
	SMTPTimeout        timex.Duration `json:"smtp_timeout"`
	FrontendURL        string         `json:"frontend_url"`
	RateLimitPerMinute int            `json:"rate_limit_per_minute"`
}

// parseJSON overlays configuration values from the JSON file named by the
// -c/-config flags. If no file is given, the config is left as is.
func parseJSON(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if c.EndpointAddrHTTP != "" {
		cfg.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		cfg.DatabaseDSN = c.DatabaseDSN
	}
	if c.UseMemoryStore {
		cfg.UseMemoryStore = true
	}
	if c.RedisAddr != "" {
		cfg.RedisAddr = c.RedisAddr
	}
	if c.AccessTokenSecret != "" {
		cfg.AccessTokenSecret = c.AccessTokenSecret
	}
	if c.RefreshTokenSecret != "" {
		cfg.RefreshTokenSecret = c.RefreshTokenSecret
	}
	if c.AccessTokenTTL.Duration != 0 {
		cfg.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL.Duration != 0 {
		cfg.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if c.ResetTokenTTL.Duration != 0 {
		cfg.ResetTokenTTL = c.ResetTokenTTL.Duration
	}
	if c.ClockSkew.Duration != 0 {
		cfg.ClockSkew = c.ClockSkew.Duration
	}
	if c.BcryptCost != 0 {
		cfg.BcryptCost = c.BcryptCost
	}
	if c.SMTPAddr != "" {
		cfg.SMTPAddr = c.SMTPAddr
	}
	if c.SMTPUsername != "" {
		cfg.SMTPUsername = c.SMTPUsername
	}
	if c.SMTPPassword != "" {
		cfg.SMTPPassword = c.SMTPPassword
	}
	if c.SMTPFrom != "" {
		cfg.SMTPFrom = c.SMTPFrom
	}
	if c.SMTPTimeout.Duration != 0 {
		cfg.SMTPTimeout = c.SMTPTimeout.Duration
	}
	if c.FrontendURL != "" {
		cfg.FrontendURL = c.FrontendURL
	}
	if c.RateLimitPerMinute != 0 {
		cfg.RateLimitPerMinute = c.RateLimitPerMinute
	}

	return nil
}
