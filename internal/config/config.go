package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultConfigName is the config file looked up when --config is not given
const DefaultConfigName = "odoocli.conf"

// ErrMissingServer is returned when neither env vars nor the config file name a server
var ErrMissingServer = errors.New("server host and database are required")

// Config represents application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Mail   MailConfig   `mapstructure:"mail"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig represents the Odoo instance to talk to
type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Database string `mapstructure:"database"`
}

// MailConfig represents SMTP delivery settings
type MailConfig struct {
	Server          string `mapstructure:"server"`
	Port            int    `mapstructure:"port"`
	TLS             bool   `mapstructure:"tls"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	From            string `mapstructure:"from"`
	ReplyTo         string `mapstructure:"reply_to"`
	CC              string `mapstructure:"cc"`
	BCC             string `mapstructure:"bcc"`
	SubjectTemplate string `mapstructure:"subject_template"` // path to a template file
	BodyTemplate    string `mapstructure:"body_template"`    // path to a template file
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// envBindings maps config keys to the environment variables that override them
var envBindings = map[string]string{
	"server.host":           "ODOOCLIHOST",
	"server.database":       "ODOOCLIDATABASE",
	"mail.server":           "ODOOCLI_MAIL_SERVER",
	"mail.port":             "ODOOCLI_MAIL_PORT",
	"mail.tls":              "ODOOCLI_MAIL_TLS",
	"mail.user":             "ODOOCLI_MAIL_USER",
	"mail.password":         "ODOOCLI_MAIL_PASSWORD",
	"mail.from":             "ODOOCLI_MAIL_FROM",
	"mail.reply_to":         "ODOOCLI_MAIL_REPLY_TO",
	"mail.cc":               "ODOOCLI_MAIL_CC",
	"mail.bcc":              "ODOOCLI_MAIL_BCC",
	"mail.subject_template": "ODOOCLI_MAIL_SUBJECT_TEMPLATE",
	"mail.body_template":    "ODOOCLI_MAIL_BODY_TEMPLATE",
	"log.file":              "ODOOCLI_LOG_FILE",
	"log.level":             "ODOOCLI_LOG_LEVEL",
}

// LoadDotEnv loads a .env file from the working directory if there is one
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load loads configuration. Environment variables win over the INI file. An
// explicit configPath must exist; otherwise DefaultConfigName is searched in
// SearchPaths and may be absent as long as the environment supplies the server
// settings.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("ini")

	if configPath == "" {
		configPath = findConfig(SearchPaths())
	} else if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetDefault("mail.port", 0)
	v.SetDefault("log.level", "warn")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if configPath != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SearchPaths returns the directories searched for DefaultConfigName, in
// order: next to the executable, the working directory, $HOME/.odoocli
func SearchPaths() []string {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	dirs = append(dirs, ".")
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".odoocli"))
	}
	return dirs
}

// findConfig returns the first DefaultConfigName found in dirs, or ""
func findConfig(dirs []string) string {
	for _, dir := range dirs {
		path := filepath.Join(dir, DefaultConfigName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Host == "" || c.Server.Database == "" {
		return ErrMissingServer
	}
	return nil
}

// Validate checks the settings needed to send a report by mail
func (m *MailConfig) Validate() error {
	if m.Server == "" {
		return fmt.Errorf("mail.server (ODOOCLI_MAIL_SERVER) is required")
	}
	if m.From == "" {
		return fmt.Errorf("mail.from (ODOOCLI_MAIL_FROM) is required")
	}
	if m.Port < 0 || m.Port > 65535 {
		return fmt.Errorf("mail.port must be between 0 and 65535, got %d", m.Port)
	}
	return nil
}

// GetPort returns the SMTP port, defaulting to submission (587) with TLS and 25 without
func (m *MailConfig) GetPort() int {
	if m.Port > 0 {
		return m.Port
	}
	if m.TLS {
		return 587
	}
	return 25
}

// ServerURL returns the host with a scheme, defaulting to https
func (s *ServerConfig) ServerURL() string {
	host := strings.TrimRight(s.Host, "/")
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "https://" + host
}
