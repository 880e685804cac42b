package freebucket

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the process configuration. Values are layered: defaults,
// then an optional YAML file, then FREEBUCKET_* environment variables;
// CLI flags override on top of the result.
type Config struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	DataDir       string `yaml:"data_dir"`
	Region        string `yaml:"region"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
}

// DefaultConfig returns the built-in defaults for a local deployment.
func DefaultConfig() Config {
	return Config{
		Host:          "127.0.0.1",
		Port:          3210,
		DataDir:       "./freebucket_data",
		Region:        "local",
		MaxUploadSize: 500 * 1024 * 1024,
	}
}

// LoadConfig builds a Config from defaults, the YAML file at path (if
// non-empty), and the environment.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FREEBUCKET_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("FREEBUCKET_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("FREEBUCKET_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("FREEBUCKET_REGION"); v != "" {
		c.Region = v
	}
}

// Addr returns the host:port the server listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
