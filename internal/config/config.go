// Package config provides configuration management using Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Sources   []SourceConfig  `mapstructure:"sources"`
	Workflows WorkflowsConfig `mapstructure:"workflows"`
	Overviews OverviewsConfig `mapstructure:"overviews"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Janitor   JanitorConfig   `mapstructure:"janitor"`
	Server    ServerConfig    `mapstructure:"server"`
	TLS       TLSConfig       `mapstructure:"tls"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// WorkspaceConfig holds the catalog workspace layout.
type WorkspaceConfig struct {
	Root    string `mapstructure:"root"`    // Container holding persistent datasets
	Scratch string `mapstructure:"scratch"` // Container for temporary datasets
	Prefix  string `mapstructure:"prefix"`  // Salt prepended to temporary names
}

// SourceConfig holds one raster source definition.
type SourceConfig struct {
	Name      string      `mapstructure:"name"`
	Type      string      `mapstructure:"type"` // local, s3, azure, http
	LocalPath string      `mapstructure:"local_path"`
	S3        S3Config    `mapstructure:"s3"`
	Azure     AzureConfig `mapstructure:"azure"`
	HTTP      HTTPConfig  `mapstructure:"http"`
}

// S3Config holds AWS S3 configuration.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Prefix          string `mapstructure:"prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// AzureConfig holds Azure Blob Storage configuration.
type AzureConfig struct {
	Container        string `mapstructure:"container"`
	AccountName      string `mapstructure:"account_name"`
	AccountKey       string `mapstructure:"account_key"`
	ConnectionString string `mapstructure:"connection_string"`
	Prefix           string `mapstructure:"prefix"`
}

// HTTPConfig holds HTTP source configuration.
type HTTPConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	IndexFile string        `mapstructure:"index_file"` // default: index.txt
	Timeout   time.Duration `mapstructure:"timeout"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
}

// WorkflowsConfig holds workflow definition file locations.
type WorkflowsConfig struct {
	Dir string `mapstructure:"dir"`
}

// OverviewsConfig holds default overview build policy.
type OverviewsConfig struct {
	MaxRetries int    `mapstructure:"max_retries"`
	Levels     int    `mapstructure:"levels"`
	Resampling string `mapstructure:"resampling"`
}

// SyncConfig holds mosaic synchronization configuration.
type SyncConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// JanitorConfig holds scratch workspace janitor configuration.
type JanitorConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	TTL      time.Duration `mapstructure:"ttl"`      // Age after which a leaked temporary is swept
	Debounce time.Duration `mapstructure:"debounce"` // Quiet period after filesystem events
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// TLSConfig holds TLS/CertMagic configuration.
type TLSConfig struct {
	Enabled  bool      `mapstructure:"enabled"`
	Domains  []string  `mapstructure:"domains"`
	Email    string    `mapstructure:"email"`
	CacheDir string    `mapstructure:"cache_dir"`
	Staging  bool      `mapstructure:"staging"` // Use Let's Encrypt staging
	DNS      DNSConfig `mapstructure:"dns"`
}

// DNSConfig holds Azure DNS provider settings for DNS-01 challenges.
type DNSConfig struct {
	SubscriptionID    string `mapstructure:"subscription_id"`
	ResourceGroupName string `mapstructure:"resource_group_name"`
	ClientID          string `mapstructure:"client_id"` // Managed identity client ID, optional
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
	Quiet  bool   `mapstructure:"quiet"`  // Suppress progress output
}

// Defaults sets the default configuration values.
func Defaults() {
	// Workspace defaults
	viper.SetDefault("workspace.root", "./data/workspace.db")
	viper.SetDefault("workspace.scratch", "./data/scratch.db")
	viper.SetDefault("workspace.prefix", "")

	// Workflow defaults
	viper.SetDefault("workflows.dir", "./workflows")

	// Overview defaults
	viper.SetDefault("overviews.max_retries", 3)
	viper.SetDefault("overviews.levels", 0)
	viper.SetDefault("overviews.resampling", "BILINEAR")

	// Sync defaults
	viper.SetDefault("sync.enabled", false)
	viper.SetDefault("sync.interval", time.Hour)

	// Janitor defaults
	viper.SetDefault("janitor.enabled", false)
	viper.SetDefault("janitor.ttl", 24*time.Hour)
	viper.SetDefault("janitor.debounce", 5*time.Second)

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)

	// TLS defaults
	viper.SetDefault("tls.enabled", false)
	viper.SetDefault("tls.cache_dir", "./.certmagic")
	viper.SetDefault("tls.staging", false)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", 9090)
	viper.SetDefault("metrics.path", "/metrics")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.quiet", false)
}

// Load loads configuration from environment and config file.
func Load(configPath string) (*Config, error) {
	Defaults()

	// Environment variable binding
	viper.SetEnvPrefix("MOSAICCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/mosaicctl")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Workspace.Root == "" {
		return fmt.Errorf("workspace root is required")
	}
	if c.Workspace.Scratch == "" {
		c.Workspace.Scratch = c.Workspace.Root
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Overviews.MaxRetries < 1 {
		return fmt.Errorf("overviews max_retries must be at least 1, got %d", c.Overviews.MaxRetries)
	}

	if c.Sync.Enabled && c.Sync.Interval <= 0 {
		return fmt.Errorf("sync enabled but interval is %s", c.Sync.Interval)
	}

	if c.Janitor.Enabled && c.Janitor.TTL <= 0 {
		return fmt.Errorf("janitor enabled but ttl is %s", c.Janitor.TTL)
	}

	if c.TLS.Enabled {
		if len(c.TLS.Domains) == 0 {
			return fmt.Errorf("TLS enabled but no domains specified")
		}
		if c.TLS.Email == "" {
			return fmt.Errorf("TLS enabled but no email specified")
		}
	}

	names := make(map[string]bool, len(c.Sources))
	for i := range c.Sources {
		if err := c.Sources[i].validate(); err != nil {
			return err
		}
		if names[c.Sources[i].Name] {
			return fmt.Errorf("duplicate source name: %s", c.Sources[i].Name)
		}
		names[c.Sources[i].Name] = true
	}

	return nil
}

// validate checks one raster source definition.
func (s *SourceConfig) validate() error {
	if s.Name == "" {
		return fmt.Errorf("source name is required")
	}

	switch s.Type {
	case "local":
		if s.LocalPath == "" {
			return fmt.Errorf("source %s: local path is required", s.Name)
		}
	case "s3":
		if s.S3.Bucket == "" {
			return fmt.Errorf("source %s: S3 bucket is required", s.Name)
		}
		if s.S3.Region == "" {
			return fmt.Errorf("source %s: S3 region is required", s.Name)
		}
	case "azure":
		if s.Azure.Container == "" {
			return fmt.Errorf("source %s: azure container is required", s.Name)
		}
		if s.Azure.AccountName == "" && s.Azure.ConnectionString == "" {
			return fmt.Errorf("source %s: azure account name or connection string is required", s.Name)
		}
	case "http":
		if s.HTTP.BaseURL == "" {
			return fmt.Errorf("source %s: HTTP base URL is required", s.Name)
		}
	default:
		return fmt.Errorf("source %s: unknown source type: %s", s.Name, s.Type)
	}

	return nil
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
