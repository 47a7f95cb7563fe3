package emailsend

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Provider      string        `mapstructure:"provider"` // "smtp" or "ses"
	SMTPHost      string        `mapstructure:"smtp_host"`
	SMTPPort      int           `mapstructure:"smtp_port"`
	SMTPUsername  string        `mapstructure:"smtp_username"`
	SMTPPassword  string        `mapstructure:"smtp_password"`
	UseTLS        bool          `mapstructure:"use_tls"`
	DefaultFrom   string        `mapstructure:"default_from"`
	AWSRegion     string        `mapstructure:"aws_region"`
	SNSTopicARN   string        `mapstructure:"sns_topic_arn"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		Provider:      "smtp",
		SMTPPort:      587,
		UseTLS:        true,
		DefaultFrom:   "noreply@shopchat.example.com",
		AWSRegion:     "ap-south-1",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.Provider != "smtp" && c.Provider != "ses" {
		return fmt.Errorf("provider must be smtp or ses, got %q", c.Provider)
	}
	if c.Provider == "smtp" {
		if c.SMTPHost == "" {
			return fmt.Errorf("smtp_host is required")
		}
		if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
			return fmt.Errorf("smtp_port must be between 1 and 65535")
		}
	}
	if c.Provider == "ses" && c.AWSRegion == "" {
		return fmt.Errorf("aws_region is required for the ses provider")
	}
	if c.DefaultFrom == "" {
		return fmt.Errorf("default_from email is required")
	}
	return nil
}
