package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	Auth       AuthConfig       `yaml:"auth"`
	CORS       CORSConfig       `yaml:"cors"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"-"`
}

// длительности в yaml задаются строками вида "5m", yaml.v3 сам их не
// разбирает, поэтому поле читается отдельно
func (d *DatabaseConfig) UnmarshalYAML(value *yaml.Node) error {
	type raw DatabaseConfig
	aux := struct {
		*raw        `yaml:",inline"`
		IdleTimeout string `yaml:"idle_timeout"`
	}{raw: (*raw)(d)}

	if err := value.Decode(&aux); err != nil {
		return err
	}

	if aux.IdleTimeout != "" {
		parsed, err := time.ParseDuration(aux.IdleTimeout)
		if err != nil {
			return fmt.Errorf("idle_timeout: %w", err)
		}
		d.IdleTimeout = parsed
	}
	return nil
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "postgres" или "inmemory"
}

type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"-"`
	Issuer   string        `yaml:"issuer"`
}

func (a *AuthConfig) UnmarshalYAML(value *yaml.Node) error {
	type raw AuthConfig
	aux := struct {
		*raw     `yaml:",inline"`
		TokenTTL string `yaml:"token_ttl"`
	}{raw: (*raw)(a)}

	if err := value.Decode(&aux); err != nil {
		return err
	}

	if aux.TokenTTL != "" {
		parsed, err := time.ParseDuration(aux.TokenTTL)
		if err != nil {
			return fmt.Errorf("token_ttl: %w", err)
		}
		a.TokenTTL = parsed
	}
	return nil
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	defer file.Close()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}

	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}

	return &cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
