// Package config loads the YAML configuration of the mailvoice server.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hal9000y/mailvoice/internal/mail"
)

const (
	envClientID     = "OAUTH_GOOGLE_CLIENT_ID"
	envClientSecret = "OAUTH_GOOGLE_CLIENT_SECRET"
)

type Config struct {
	HTTPAddr  string    `yaml:"http_addr"`
	UserID    string    `yaml:"user_id"`
	Timezone  string    `yaml:"timezone"`
	OAuth     OAuth     `yaml:"oauth"`
	Store     Store     `yaml:"store"`
	Scheduler Scheduler `yaml:"scheduler"`
	Dispatch  Dispatch  `yaml:"dispatch"`
	Rules     []Rule    `yaml:"automation_rules"`
}

type OAuth struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// RedirectURL defaults to http://<listen addr>/oauth.
	RedirectURL string `yaml:"redirect_url"`
	TokenFile   string `yaml:"token_file"`
}

type Store struct {
	Path string `yaml:"path"`
}

type Scheduler struct {
	Disabled bool   `yaml:"disabled"`
	Spec     string `yaml:"spec"`
}

type Dispatch struct {
	ListLimit int64 `yaml:"list_limit"`
}

// Rule is an automation rule declared in the config file.
type Rule struct {
	Name      string `yaml:"name"`
	Condition string `yaml:"condition"`
	Action    string `yaml:"action"`
	Disabled  bool   `yaml:"disabled"`
}

func Default() Config {
	return Config{
		HTTPAddr: "localhost:0",
		UserID:   "me",
		Timezone: "Local",
		OAuth: OAuth{
			TokenFile: "./data/mailvoice-token.json",
		},
		Store: Store{
			Path: "./data/mailvoice.db",
		},
		Scheduler: Scheduler{
			Spec: "@every 1m",
		},
		Dispatch: Dispatch{
			ListLimit: 20,
		},
	}
}

// Load reads the optional .env file, then the optional YAML file with ${VAR}
// expansion on top of Default. OAuth credentials fall back to the
// OAUTH_GOOGLE_CLIENT_ID and OAUTH_GOOGLE_CLIENT_SECRET variables.
func Load(path, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("godotenv.Load failed: %w", err)
		}
	}

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("os.ReadFile failed: %w", err)
		}

		dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(raw)))))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("yaml.Decode failed: %w", err)
		}
	}

	if cfg.OAuth.ClientID == "" {
		cfg.OAuth.ClientID = os.Getenv(envClientID)
	}
	if cfg.OAuth.ClientSecret == "" {
		cfg.OAuth.ClientSecret = os.Getenv(envClientSecret)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("user_id must not be empty")
	}
	if c.Dispatch.ListLimit <= 0 {
		return fmt.Errorf("dispatch.list_limit must be positive, got %d", c.Dispatch.ListLimit)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	for i, r := range c.Rules {
		if r.Name == "" || r.Condition == "" || r.Action == "" {
			return fmt.Errorf("automation_rules[%d]: name, condition and action are required", i)
		}
	}
	return nil
}

// RequireOAuth reports missing OAuth client credentials.
func (c Config) RequireOAuth() error {
	if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" {
		return fmt.Errorf("oauth client id and secret must be set (env %s and %s)", envClientID, envClientSecret)
	}
	return nil
}

func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// AutomationRules converts the declared rules to domain rules.
func (c Config) AutomationRules() []mail.AutomationRule {
	rules := make([]mail.AutomationRule, 0, len(c.Rules))
	for _, r := range c.Rules {
		rules = append(rules, mail.AutomationRule{
			Name:      r.Name,
			Condition: r.Condition,
			Action:    r.Action,
			IsActive:  !r.Disabled,
		})
	}
	return rules
}
