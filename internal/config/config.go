package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig `yaml:"server"`
	StateDir string       `yaml:"state_dir"`
	Debug    bool         `yaml:"debug"`
}

type ServerConfig struct {
	Address   string        `yaml:"address"`
	KeepAlive time.Duration `yaml:"keep_alive"`
}

// Default is what the client runs with when no config file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost:8080",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
