package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"corsOrigins"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	AI struct {
		APIKey  string `yaml:"apiKey"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"baseURL"`
	} `yaml:"ai"`

	Auth struct {
		JWTSecret     string `yaml:"jwtSecret"`
		TokenTTLHours int    `yaml:"tokenTTLHours"`
	} `yaml:"auth"`

	Upload struct {
		MaxFileSize int64 `yaml:"maxFileSize"`
	} `yaml:"upload"`
}

// Load baca file config.yaml; secrets boleh dioverride via env
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Env overrides for secrets so the yaml file can stay committed.
	if v := os.Getenv("MISTRAL_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("MISTRAL_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwtSecret must be at least 32 characters")
	}
	if c.AI.APIKey == "" {
		return fmt.Errorf("ai.apiKey (or MISTRAL_API_KEY) is required")
	}
	switch strings.ToLower(c.Database.Driver) {
	case "", "mysql", "postgres":
	default:
		return fmt.Errorf("database.driver must be mysql or postgres, got %q", c.Database.Driver)
	}
	return nil
}

// Model returns the configured model name with a sane default.
func (c *Config) Model() string {
	if c.AI.Model == "" {
		return "mistral-large-latest"
	}
	return c.AI.Model
}

// TokenTTLHours with default: a week.
func (c *Config) TokenTTLHours() int {
	if c.Auth.TokenTTLHours <= 0 {
		return 24 * 7
	}
	return c.Auth.TokenTTLHours
}

// MaxFileSize with default 10MB.
func (c *Config) MaxFileSize() int64 {
	if c.Upload.MaxFileSize <= 0 {
		return 10 * 1024 * 1024
	}
	return c.Upload.MaxFileSize
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}
