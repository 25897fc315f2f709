package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvDBDriver      = "TRACKER_DB_DRIVER"
	EnvDBDSN         = "TRACKER_DB_DSN"
	EnvTelegramToken = "TRACKER_TELEGRAM_TOKEN"
	EnvHTTPAddr      = "TRACKER_HTTP_ADDR"
	EnvLogLevel      = "TRACKER_LOG_LEVEL"
	EnvLogFormat     = "TRACKER_LOG_FORMAT"
)

const redacted = "********"

// Config is the resolved configuration for every tracker command.
type Config struct {
	Bot      BotConfig      `toml:"bot"`
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	HTTP     HTTPConfig     `toml:"http"`
	Telegram TelegramConfig `toml:"telegram"`
	Log      LogConfig      `toml:"log"`
}

type BotConfig struct {
	DefaultLanguage  string `toml:"default_language"`
	MaxMessageLength int    `toml:"max_message_length"`
	Workers          int    `toml:"workers"` // concurrent Telegram updates
}

// DatabaseConfig selects the SQL dialect. For sqlite DSN is a file path.
type DatabaseConfig struct {
	Driver       string `toml:"driver"` // "sqlite" or "postgres"
	DSN          string `toml:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns"` // ignored for sqlite
}

type StorageConfig struct {
	Timeout string `toml:"timeout"`
}

type HTTPConfig struct {
	Addr         string `toml:"addr"`
	ReadTimeout  string `toml:"read_timeout"`
	WriteTimeout string `toml:"write_timeout"`
}

type TelegramConfig struct {
	Token       string `toml:"token"`
	PollTimeout int    `toml:"poll_timeout"` // seconds
}

type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
}

// Default returns a complete configuration that stores data in a SQLite file at dbPath.
func Default(dbPath string) *Config {
	return &Config{
		Bot: BotConfig{
			DefaultLanguage:  "en",
			MaxMessageLength: 4096,
			Workers:          8,
		},
		Database: DatabaseConfig{Driver: "sqlite", DSN: dbPath, MaxOpenConns: 10},
		Storage:  StorageConfig{Timeout: "5s"},
		HTTP:     HTTPConfig{Addr: "127.0.0.1:8080", ReadTimeout: "10s", WriteTimeout: "10s"},
		Telegram: TelegramConfig{PollTimeout: 60},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes r over cfg, so keys missing from r keep the values already in cfg.
func (m *Manager) Read(r io.Reader, cfg *Config) error {
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Load starts from Default(dbPath), applies the file at path if it exists, then environment
// overrides from getenv, and validates the result. An empty path skips the file.
func Load(path, dbPath string, getenv func(string) string) (*Config, error) {
	cfg := Default(dbPath)
	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to open config file: %w", err)
		default:
			defer f.Close()
			m := &Manager{}
			if err := m.Read(f, cfg); err != nil {
				return nil, fmt.Errorf("reading config from %s: %w", path, err)
			}
		}
	}
	if getenv != nil {
		cfg.ApplyEnv(getenv)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile exports the variables of a dotenv file into the process environment without
// overwriting ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Database.Driver, EnvDBDriver)
	set(&c.Database.DSN, EnvDBDSN)
	set(&c.Telegram.Token, EnvTelegramToken)
	set(&c.HTTP.Addr, EnvHTTPAddr)
	set(&c.Log.Level, EnvLogLevel)
	set(&c.Log.Format, EnvLogFormat)
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Bot.MaxMessageLength <= 0 {
		return fmt.Errorf("bot.max_message_length must be > 0")
	}
	if c.Bot.Workers <= 0 {
		return fmt.Errorf("bot.workers must be > 0")
	}
	if c.Telegram.PollTimeout < 0 {
		return fmt.Errorf("telegram.poll_timeout must be >= 0")
	}
	for name, v := range map[string]string{
		"storage.timeout":    c.Storage.Timeout,
		"http.read_timeout":  c.HTTP.ReadTimeout,
		"http.write_timeout": c.HTTP.WriteTimeout,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// StorageTimeout is the per-call storage deadline. Call after Validate.
func (c *Config) StorageTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Storage.Timeout)
	return d
}

func (c *Config) HTTPTimeouts() (read, write time.Duration) {
	read, _ = time.ParseDuration(c.HTTP.ReadTimeout)
	write, _ = time.ParseDuration(c.HTTP.WriteTimeout)
	return read, write
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Telegram.Token != "" {
		out.Telegram.Token = redacted
	}
	if out.Database.Driver == "postgres" {
		out.Database.DSN = redactDSN(out.Database.DSN)
	}
	return &out
}

// redactDSN hides a password in a postgres URL or key=value DSN.
func redactDSN(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		rest := dsn[i+3:]
		at := strings.LastIndex(rest, "@")
		colon := strings.Index(rest, ":")
		if at > 0 && colon >= 0 && colon < at {
			return dsn[:i+3] + rest[:colon+1] + redacted + rest[at:]
		}
		return dsn
	}
	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=" + redacted
		}
	}
	return strings.Join(fields, " ")
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
