package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel   string           `yaml:"log_level" envconfig:"LOG_LEVEL"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Email      EmailConfig      `yaml:"email"`
	Store      StoreConfig      `yaml:"store"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type MonitoringConfig struct {
	URL            string `yaml:"url" envconfig:"MONITORING_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"MONITORING_TIMEOUT_SECONDS"`
}

func (m MonitoringConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// EmailConfig covers both directions: SMTP for alerts and confirmations,
// IMAP for the reply mailbox. Credentials come from the environment in
// deployment; the file only carries the non-secret parts.
type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server" envconfig:"EMAIL_SMTP_SERVER"`
	SMTPPort   int    `yaml:"smtp_port" envconfig:"EMAIL_SMTP_PORT"`
	IMAPServer string `yaml:"imap_server" envconfig:"EMAIL_IMAP_SERVER"`
	IMAPPort   int    `yaml:"imap_port" envconfig:"EMAIL_IMAP_PORT"`
	Mailbox    string `yaml:"mailbox" envconfig:"EMAIL_MAILBOX"`
	Sender     string `yaml:"sender_email" envconfig:"EMAIL_SENDER"`
	Password   string `yaml:"sender_password" envconfig:"EMAIL_PASSWORD"`
	Recipient  string `yaml:"recipient_email" envconfig:"EMAIL_RECIPIENT"`
}

type StoreConfig struct {
	Dir  string `yaml:"dir" envconfig:"STORE_DIR"`
	File string `yaml:"file" envconfig:"STORE_FILE"`
}

type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url" envconfig:"METRICS_PUSHGATEWAY_URL"`
}

// LoadConfig reads the YAML configuration file, then lets environment
// variables override individual fields.
func LoadConfig(path string) (*Config, error) {
	config := defaults()

	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(raw, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func defaults() *Config {
	return &Config{
		LogLevel: "info",
		Monitoring: MonitoringConfig{
			TimeoutSeconds: 30,
		},
		Email: EmailConfig{
			SMTPPort: 587,
			IMAPPort: 993,
			Mailbox:  "INBOX",
		},
		Store: StoreConfig{
			Dir:  ".",
			File: "conditions.yaml",
		},
	}
}

func (c *Config) validate() error {
	if c.Monitoring.URL == "" {
		return errors.New("monitoring URL is required")
	}
	if c.Email.SMTPServer == "" {
		return errors.New("SMTP server is required")
	}
	if c.Email.Sender == "" {
		return errors.New("sender email is required")
	}
	if c.Email.Recipient == "" {
		return errors.New("recipient email is required")
	}
	return nil
}
