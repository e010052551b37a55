package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config mirrors config.toml. Durations are written as "3s" or "1m30s";
// a bare integer is taken as nanoseconds, so 0 means "none".
type Config struct {
	ServerURL      string        `toml:"server_url"`
	StatePath      string        `toml:"state_path"`
	LogPath        string        `toml:"log_path"`
	LogLevel       string        `toml:"log_level"`
	ToastDuration  time.Duration `toml:"toast_duration"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	StubAddr       string        `toml:"stub_addr"`
}

// Dir is the directory holding config.toml and, by default, the state and
// log files.
func Dir(home string) string {
	return filepath.Join(home, ".config", "mdc")
}

func Defaults(home string) *Config {
	return &Config{
		ServerURL:     "http://localhost:8000",
		StatePath:     filepath.Join(Dir(home), "state.db"),
		LogPath:       filepath.Join(Dir(home), "mdc.log"),
		LogLevel:      "info",
		ToastDuration: 3 * time.Second,
		StubAddr:      ":8000",
	}
}

// Load reads ~/.config/mdc/config.toml over the defaults. A missing file is
// not an error.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(Dir(home), "config.toml"), home)
}

// LoadFile is Load with an explicit file and home directory. A .env file
// next to the config file feeds the environment overrides without
// replacing variables that are already set.
func LoadFile(cfgPath, home string) (*Config, error) {
	cfg := Defaults(home)

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	envPath := filepath.Join(filepath.Dir(cfgPath), ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("parse env file %s: %w", envPath, err)
		}
	}

	mergeWithEnv(cfg)

	// expand ~ in paths
	cfg.StatePath = expandHome(cfg.StatePath, home)
	cfg.LogPath = expandHome(cfg.LogPath, home)

	return cfg, nil
}

func mergeWithEnv(cfg *Config) {
	if v := os.Getenv("MDC_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("MDC_STATE_PATH"); v != "" {
		cfg.StatePath = v
	}
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
