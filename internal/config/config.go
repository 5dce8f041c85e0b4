package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	RPCURL        string               `yaml:"rpc_url"`
	Organization  string               `yaml:"organization"`
	Organizations []OrganizationConfig `yaml:"organizations"`
	API           struct {
		LocalChainID  int64  `yaml:"local_chain_id"`
		LocalURL      string `yaml:"local_url"`
		ProductionURL string `yaml:"production_url"`
	} `yaml:"api"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Session struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"session"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // "console" or "json"
		File   string `yaml:"file"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`

	registry *Registry
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults cover everything except the RPC URL.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DAOSCOPE_RPC_URL"); v != "" {
		cfg.RPCURL = v
	}
	if v := os.Getenv("DAOSCOPE_ORG"); v != "" {
		cfg.Organization = v
	}
	if v := os.Getenv("DAOSCOPE_LOCAL_CHAIN_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.API.LocalChainID = id
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RPCURL == "" {
		c.RPCURL = "http://localhost:8545"
	}
	if c.Organization == "" {
		c.Organization = "osaka"
	}
	if len(c.Organizations) == 0 {
		c.Organizations = DefaultOrganizations()
	}
	if c.API.LocalChainID == 0 {
		c.API.LocalChainID = 5777
	}
	if c.API.LocalURL == "" {
		c.API.LocalURL = "http://localhost:5000/block-cities/us-central1/api"
	}
	if c.API.ProductionURL == "" {
		c.API.ProductionURL = "https://us-central1-block-cities.cloudfunctions.net/api"
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 */5 * * * *"
	}
	if c.Session.StateFile == "" {
		c.Session.StateFile = "data/session.json"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks required fields and resolves the organization table.
// Unknown or malformed organizations fail here, before any network call is made.
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc_url is required")
	}
	reg, err := NewRegistry(c.Organizations)
	if err != nil {
		return fmt.Errorf("organizations: %w", err)
	}
	if _, err := reg.Get(c.Organization); err != nil {
		return fmt.Errorf("organization: %w", err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	c.registry = reg
	return nil
}

// Registry returns the validated organization table. It is nil until Validate succeeds.
func (c *Config) Registry() *Registry {
	return c.registry
}
