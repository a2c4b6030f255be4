// Package clientconfig loads settings for the gamemate command-line client.
package clientconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/ionutdr23/GameMate/internal/domain"
)

type Config struct {
	APIURL  string
	Token   string
	Timeout time.Duration
}

const (
	DefaultPath    = "~/.config/gamemate/client.toml"
	defaultAPIURL  = "http://127.0.0.1:8080"
	defaultTimeout = 10 * time.Second
	tokenEnv       = "GAMEMATE_TOKEN"
)

// Load reads the client config at path (DefaultPath when empty). A missing
// file yields defaults. GAMEMATE_TOKEN, when set, overrides the file's token.
func Load(path string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{APIURL: defaultAPIURL, Timeout: defaultTimeout}

	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		var raw struct {
			APIURL  string `toml:"api_url"`
			Token   string `toml:"token"`
			Timeout string `toml:"timeout"`
		}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if v := strings.TrimSpace(raw.APIURL); v != "" {
			cfg.APIURL = v
		}
		cfg.Token = strings.TrimSpace(raw.Token)
		if v := strings.TrimSpace(raw.Timeout); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return Config{}, fmt.Errorf("parse config: invalid timeout %q", v)
			}
			cfg.Timeout = d
		}
	}

	if v := strings.TrimSpace(getenv(tokenEnv)); v != "" {
		cfg.Token = v
	}
	return cfg, nil
}

// LoadDesired reads the edited game profile list from a TOML file of
// [[game]] tables.
func LoadDesired(path string) ([]domain.GameProfileRequest, error) {
	resolved, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("read game profiles: %w", err)
	}
	var doc struct {
		Game []domain.GameProfileRequest `toml:"game"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse game profiles: %w", err)
	}
	return doc.Game, nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
