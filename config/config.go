package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Slack     SlackConfig     `mapstructure:"slack"`
	Web       WebConfig       `mapstructure:"web"`
	Clocking  ClockingConfig  `mapstructure:"clocking"`
	Intratime IntratimeConfig `mapstructure:"intratime"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	// URL is a complete DSN and wins over the discrete fields.
	URL            string `mapstructure:"url"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	LogLevel       string `mapstructure:"log_level"`

	// SSMParameter names an SSM parameter holding a YAML list of database
	// servers; SSMEntry selects one of them by name.
	SSMParameter string `mapstructure:"ssm_parameter"`
	SSMEntry     string `mapstructure:"ssm_entry"`
}

const dsnParams = "charset=utf8mb4&parseTime=true&loc=UTC"

// DSN points at the clockzy schema.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.User, c.Password, c.Host, c.Port, c.Name, dsnParams)
}

// ServerDSN connects without selecting a schema.
func (c DatabaseConfig) ServerDSN() string {
	if c.URL != "" {
		return stripSchema(c.URL)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/?%s", c.User, c.Password, c.Host, c.Port, dsnParams)
}

// SchemaName is the schema the DSN selects.
func (c DatabaseConfig) SchemaName() string {
	if c.URL == "" {
		return c.Name
	}
	// Split on "?" to remove query params
	dsn, _, _ := strings.Cut(c.URL, "?")
	segments := strings.Split(dsn, "/")
	return segments[len(segments)-1]
}

func stripSchema(dsn string) string {
	base, query, hasQuery := strings.Cut(dsn, "?")
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[:i+1]
	}
	if hasQuery {
		return base + "?" + query
	}
	return base
}

type SlackConfig struct {
	SigningSecret  string `mapstructure:"signing_secret"`
	BotToken       string `mapstructure:"bot_token"`
	InfoChannelID  string `mapstructure:"info_channel"`
	ErrorChannelID string `mapstructure:"error_channel"`
}

type WebConfig struct {
	// TokenSecret is base64 encoded.
	TokenSecret    string        `mapstructure:"token_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	CredentialsTTL time.Duration `mapstructure:"credentials_ttl"`
	BaseURL        string        `mapstructure:"base_url"`
	ReportBucket   string        `mapstructure:"report_bucket"`
}

type ClockingConfig struct {
	DefaultTimezone string `mapstructure:"default_timezone"`
	ExcludeWeekends bool   `mapstructure:"exclude_weekends"`
}

// IntratimeConfig points at the Intratime API. Users opt in one by one with
// the /intratime command.
type IntratimeConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from defaults, then the YAML file at path when
// given, then CLOCKZY_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)

	v.SetDefault("db.url", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.name", "clockzy")
	v.SetDefault("db.user", "root")
	v.SetDefault("db.password", "")
	v.SetDefault("db.max_connections", 10)
	v.SetDefault("db.log_level", "warn")
	v.SetDefault("db.ssm_parameter", "")
	v.SetDefault("db.ssm_entry", "")

	v.SetDefault("slack.signing_secret", "")
	v.SetDefault("slack.bot_token", "")
	v.SetDefault("slack.info_channel", "")
	v.SetDefault("slack.error_channel", "")

	v.SetDefault("web.token_secret", "")
	v.SetDefault("web.token_ttl", "8h")
	v.SetDefault("web.credentials_ttl", "10m")
	v.SetDefault("web.base_url", "http://localhost:8090")
	v.SetDefault("web.report_bucket", "")

	v.SetDefault("clocking.default_timezone", "Europe/Berlin")
	v.SetDefault("clocking.exclude_weekends", true)

	v.SetDefault("intratime.enabled", true)
	v.SetDefault("intratime.url", "http://newapi.intratime.es")
	v.SetDefault("intratime.timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("CLOCKZY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// names shared with the rest of the deployment
	v.BindEnv("db.url", "CLOCKZY_DB_URL", "DSN")
	v.BindEnv("slack.signing_secret", "CLOCKZY_SLACK_SIGNING_SECRET", "SLACK_SIGNING_SECRET")
	v.BindEnv("slack.bot_token", "CLOCKZY_SLACK_BOT_TOKEN", "SLACK_BOT_TOKEN")
	v.BindEnv("slack.info_channel", "CLOCKZY_SLACK_INFO_CHANNEL", "SLACK_INFO_CHANNEL")
	v.BindEnv("slack.error_channel", "CLOCKZY_SLACK_ERROR_CHANNEL", "SLACK_ERROR_CHANNEL")
	v.BindEnv("web.token_secret", "CLOCKZY_WEB_TOKEN_SECRET", "TOKEN_SECRET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings every command depends on. Secrets are
// checked by the commands that need them.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be between 1 and 65535")
	}
	if c.Clocking.DefaultTimezone == "" {
		return errors.New("invalid config: clocking.default_timezone is required")
	}
	if _, err := time.LoadLocation(c.Clocking.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid config: clocking.default_timezone: %w", err)
	}
	if c.Web.CredentialsTTL <= 0 {
		return errors.New("invalid config: web.credentials_ttl must be positive")
	}
	if c.Intratime.Enabled && c.Intratime.URL == "" {
		return errors.New("invalid config: intratime.url is required when intratime is enabled")
	}
	return nil
}
