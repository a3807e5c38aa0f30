// Package config loads the helium configuration from helium.yaml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the configuration file name without extension
const FileName = "helium"

// EnvPrefix prefixes every environment override, e.g. HELIUM_SERVER_PORT
const EnvPrefix = "HELIUM"

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Config represents the helium configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Model     ModelConfig     `mapstructure:"model"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// RouteParam is the query parameter carrying the raw route
	RouteParam string `mapstructure:"route_param"`
	// StaticPrefix is the URL prefix of the public assets; empty disables them
	StaticPrefix    string        `mapstructure:"static_prefix"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig represents the named database connections
type DatabaseConfig struct {
	// Default is the connection activated at startup
	Default     string                      `mapstructure:"default"`
	Connections map[string]ConnectionConfig `mapstructure:"connections"`
}

// ConnectionConfig represents one database connection
type ConnectionConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
	// Schema qualifies table names on PostgreSQL
	Schema string `mapstructure:"schema"`
}

// CacheConfig represents the model cache backend
type CacheConfig struct {
	Driver   string        `mapstructure:"driver"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// TemplatesConfig represents the template root
type TemplatesConfig struct {
	Root   string `mapstructure:"root"`
	Reload bool   `mapstructure:"reload"`
}

// ModelConfig holds the defaults applied to every model
type ModelConfig struct {
	CreateTable   bool `mapstructure:"create_table"`
	ColumnCheck   bool `mapstructure:"column_check"`
	DisplayErrors bool `mapstructure:"display_errors"`
}

// LogConfig represents logger configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Supported values
var (
	Drivers      = []string{"postgres", "pgx", "sqlite3"}
	CacheDrivers = []string{"memory", "redis"}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.route_param", "rt")
	v.SetDefault("server.static_prefix", "/public")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.prefix", "helium:")
	v.SetDefault("cache.ttl", 300*time.Second)
	v.SetDefault("templates.root", "app")
	v.SetDefault("model.create_table", true)
	v.SetDefault("model.column_check", true)
	v.SetDefault("model.display_errors", true)
	v.SetDefault("log.level", "info")
}

// Default returns the configuration used when no file is present
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads helium.yaml from the given directories (the working directory
// when none) and applies HELIUM_ environment overrides. A missing file is
// not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFile reads an explicit configuration file
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port must be between 1 and 65535, got %d", ErrInvalid, c.Server.Port)
	}
	if c.Server.RouteParam == "" {
		return fmt.Errorf("%w: server.route_param must not be empty", ErrInvalid)
	}
	if p := c.Server.StaticPrefix; p != "" {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%w: server.static_prefix must start with '/', got: %s", ErrInvalid, p)
		}
		if p == "/" || strings.HasSuffix(p, "/") {
			return fmt.Errorf("%w: server.static_prefix must not end with '/', got: %s", ErrInvalid, p)
		}
	}

	if c.Database.Default != "" {
		if len(c.Database.Connections) == 0 {
			return fmt.Errorf("%w: database.default is %q but no connections are configured", ErrInvalid, c.Database.Default)
		}
		if _, ok := c.Database.Connections[c.Database.Default]; !ok {
			return fmt.Errorf("%w: database.default %q is not a configured connection", ErrInvalid, c.Database.Default)
		}
	}
	for _, name := range c.ConnectionNames() {
		conn := c.Database.Connections[name]
		if !contains(Drivers, conn.Driver) {
			return fmt.Errorf("%w: database.connections.%s.driver must be one of %s, got %q",
				ErrInvalid, name, strings.Join(Drivers, ", "), conn.Driver)
		}
		if conn.URL == "" {
			return fmt.Errorf("%w: database.connections.%s.url is required", ErrInvalid, name)
		}
	}

	if !contains(CacheDrivers, c.Cache.Driver) {
		return fmt.Errorf("%w: cache.driver must be one of %s, got %q",
			ErrInvalid, strings.Join(CacheDrivers, ", "), c.Cache.Driver)
	}
	if c.Cache.Driver == "redis" && c.Cache.Addr == "" {
		return fmt.Errorf("%w: cache.addr is required for the redis driver", ErrInvalid)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl must not be negative", ErrInvalid)
	}
	return nil
}

// ConnectionNames returns the configured connection names, sorted
func (c *Config) ConnectionNames() []string {
	names := make([]string, 0, len(c.Database.Connections))
	for name := range c.Database.Connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
