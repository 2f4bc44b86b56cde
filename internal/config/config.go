package config

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config is the root configuration for timesheet, stored in
// ~/.timesheet/config.json. The file supports single-line // comments for
// documentation purposes.
type Config struct {
	Storage  StorageConfig  `json:"storage"`
	Server   ServerConfig   `json:"server"`
	Invoice  InvoiceConfig  `json:"invoice"`
	Webhook  WebhookConfig  `json:"webhook"`
	Calendar CalendarConfig `json:"calendar"`

	// path is where the config was loaded from.
	path string
	// ephemeralSecret is set when no JWT secret was configured and one was
	// generated for this process only.
	ephemeralSecret bool
}

// StorageConfig selects the backend.
type StorageConfig struct {
	// DSN is a postgres:// URL, a SQLite file (*.db or sqlite:<path>) or a
	// directory for the JSON file store. Empty = ~/.timesheet.
	DSN string `json:"dsn"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr          string `json:"addr"`
	JWTSecret     string `json:"jwt_secret"`
	TokenTTLHours int    `json:"token_ttl_hours"`
}

// InvoiceConfig holds the fixed commercial terms.
type InvoiceConfig struct {
	HourlyRate   float64 `json:"hourly_rate"`
	SeriesPrefix string  `json:"series_prefix"`
	ClientName   string  `json:"client_name"`
	ProviderName string  `json:"provider_name"`
	DefaultEmail string  `json:"default_email"`
}

// WebhookConfig configures invoice dispatch.
type WebhookConfig struct {
	URL            string      `json:"url"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	BearerToken    string      `json:"bearer_token"`
	OAuth          OAuthConfig `json:"oauth"`
}

// OAuthConfig is an optional OAuth2 client-credentials grant for the webhook.
type OAuthConfig struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	TokenURL     string   `json:"token_url"`
	Scopes       []string `json:"scopes"`
}

// CalendarConfig controls the calendar grid.
type CalendarConfig struct {
	// WeekStart is "monday" or "sunday".
	WeekStart string `json:"week_start"`
}

const (
	DefaultAddr          = ":8080"
	DefaultTokenTTLHours = 24
	DefaultHourlyRate    = 15
	DefaultSeriesPrefix  = "46"
	DefaultClientName    = "Olivier"
	DefaultProviderName  = "Maxence"
	DefaultWebhookURL    = "https://n8n.garagesync.io/webhook/generate-invoice"
	DefaultTimeout       = 10
	DefaultWeekStart     = "monday"
)

// Environment variables that override the file.
const (
	EnvDSN           = "TIMESHEET_DSN"
	EnvAddr          = "TIMESHEET_ADDR"
	EnvJWTSecret     = "TIMESHEET_JWT_SECRET"
	EnvWebhookURL    = "TIMESHEET_WEBHOOK_URL"
	EnvLegacyWebhook = "N8N_WEBHOOK_URL"
	EnvWebhookToken  = "TIMESHEET_WEBHOOK_TOKEN"
	EnvHourlyRate    = "TIMESHEET_HOURLY_RATE"
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:          DefaultAddr,
			TokenTTLHours: DefaultTokenTTLHours,
		},
		Invoice: InvoiceConfig{
			HourlyRate:   DefaultHourlyRate,
			SeriesPrefix: DefaultSeriesPrefix,
			ClientName:   DefaultClientName,
			ProviderName: DefaultProviderName,
		},
		Webhook: WebhookConfig{
			URL:            DefaultWebhookURL,
			TimeoutSeconds: DefaultTimeout,
		},
		Calendar: CalendarConfig{WeekStart: DefaultWeekStart},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// timesheet configuration – ~/.timesheet/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. Environment variables (TIMESHEET_DSN, TIMESHEET_ADDR,
// TIMESHEET_JWT_SECRET, TIMESHEET_WEBHOOK_URL) override this file.
{
  // ── Storage ──────────────────────────────────────────────────────────────
  "storage": {
    // Where data lives:
    // • ""                         – JSON files in ~/.timesheet (default)
    // • "/srv/timesheet"           – JSON files in that directory
    // • "/srv/timesheet.db"        – SQLite database
    // • "postgres://user@host/db"  – PostgreSQL
    "dsn": ""
  },

  // ── HTTP API (timesheet serve) ───────────────────────────────────────────
  "server": {
    "addr": ":8080",

    // Secret used to sign session tokens. When empty a random secret is
    // generated on every start, which logs everybody out on restart.
    "jwt_secret": "",

    "token_ttl_hours": 24
  },

  // ── Invoices ─────────────────────────────────────────────────────────────
  "invoice": {
    "hourly_rate": 15,
    // Invoice numbers are "<series_prefix>-<counter>", e.g. "46-07".
    "series_prefix": "46",
    "client_name": "Olivier",
    "provider_name": "Maxence",
    // Recipient used when neither the request nor the settings name one.
    "default_email": ""
  },

  // ── Invoice webhook ──────────────────────────────────────────────────────
  "webhook": {
    "url": "https://n8n.garagesync.io/webhook/generate-invoice",
    "timeout_seconds": 10,
    // Optional static bearer token.
    "bearer_token": "",
    // Optional OAuth2 client-credentials grant (used when bearer_token is empty).
    "oauth": {
      "client_id": "",
      "client_secret": "",
      "token_url": "",
      "scopes": []
    }
  },

  // ── Calendar ─────────────────────────────────────────────────────────────
  "calendar": {
    // First column of the month grid: "monday" (default) or "sunday".
    "week_start": "monday"
  }
}
`

// DefaultPath returns the path to ~/.timesheet/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".timesheet", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config at path (DefaultPath when empty), creating it with
// annotated defaults on first run, then applies environment overrides.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return finish(defaultConfig(), ""), err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return finish(defaultConfig(), path), nil
	}
	if err != nil {
		return finish(defaultConfig(), path), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return finish(defaultConfig(), path), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	fillDefaults(&cfg)
	return finish(cfg, path), nil
}

// fillDefaults sets zero-value fields to the built-in defaults so callers
// always get a usable Config even if the user only partially fills in the
// file.
func fillDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.TokenTTLHours <= 0 {
		cfg.Server.TokenTTLHours = def.Server.TokenTTLHours
	}
	if cfg.Invoice.HourlyRate <= 0 {
		cfg.Invoice.HourlyRate = def.Invoice.HourlyRate
	}
	if cfg.Invoice.SeriesPrefix == "" {
		cfg.Invoice.SeriesPrefix = def.Invoice.SeriesPrefix
	}
	if cfg.Invoice.ClientName == "" {
		cfg.Invoice.ClientName = def.Invoice.ClientName
	}
	if cfg.Invoice.ProviderName == "" {
		cfg.Invoice.ProviderName = def.Invoice.ProviderName
	}
	if cfg.Webhook.URL == "" {
		cfg.Webhook.URL = def.Webhook.URL
	}
	if cfg.Webhook.TimeoutSeconds <= 0 {
		cfg.Webhook.TimeoutSeconds = def.Webhook.TimeoutSeconds
	}
	if cfg.Calendar.WeekStart == "" {
		cfg.Calendar.WeekStart = def.Calendar.WeekStart
	}
}

// finish applies environment overrides and makes sure a signing secret
// exists.
func finish(cfg Config, path string) Config {
	cfg.path = path
	applyEnv(&cfg)
	if cfg.Server.JWTSecret == "" {
		cfg.Server.JWTSecret = randomSecret()
		cfg.ephemeralSecret = true
	}
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDSN); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv(EnvLegacyWebhook); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv(EnvWebhookURL); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv(EnvWebhookToken); v != "" {
		cfg.Webhook.BearerToken = v
	}
	if v := os.Getenv(EnvHourlyRate); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil && rate > 0 {
			cfg.Invoice.HourlyRate = rate
		}
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// Path returns the file the config was loaded from.
func (c Config) Path() string { return c.path }

// Dir returns the directory holding the config file; logs go below it.
func (c Config) Dir() string {
	if c.path == "" {
		return ""
	}
	return filepath.Dir(c.path)
}

// EphemeralSecret reports whether the JWT secret was generated for this
// process because none was configured.
func (c Config) EphemeralSecret() bool { return c.ephemeralSecret }

// TokenTTL returns the session lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Server.TokenTTLHours) * time.Hour
}

// WebhookTimeout returns the per-dispatch timeout.
func (c Config) WebhookTimeout() time.Duration {
	return time.Duration(c.Webhook.TimeoutSeconds) * time.Second
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
