package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // sqlite or mysql
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`

	Signal struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"signal"`

	Chamber struct {
		Size            int `yaml:"size"`
		ZeroHourSeconds int `yaml:"zeroHourSeconds"`
	} `yaml:"chamber"`

	Aggregation struct {
		WarnUnmatchedParty bool `yaml:"warnUnmatchedParty"`
	} `yaml:"aggregation"`
}

// LoadConfig reads the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "sabhahub.db"
	}
	if c.Signal.Host == "" {
		c.Signal.Host = "127.0.0.1"
	}
	if c.Signal.Port == 0 {
		c.Signal.Port = 65432
	}
	if c.Chamber.Size == 0 {
		c.Chamber.Size = 245
	}
	if c.Chamber.ZeroHourSeconds == 0 {
		c.Chamber.ZeroHourSeconds = 180
	}
}
