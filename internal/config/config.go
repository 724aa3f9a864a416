package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Server contains connection settings for the image service.
type Server struct {
	URL            string `toml:"url"`
	SessionKey     string `toml:"session_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Output contains defaults for command output.
type Output struct {
	// Style is the default info style when no --style flag is given:
	// plain, yaml, or json. Empty picks plain on a terminal.
	Style string `toml:"style"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the render commands.
type Config struct {
	Server  Server  `toml:"server"`
	Output  Output  `toml:"output"`
	Logging Logging `toml:"logging"`
}

// Default returns the baseline configuration before any file or environment
// overrides are applied.
func Default() Config {
	return Config{
		Server: Server{
			URL:            "http://localhost:4080",
			TimeoutSeconds: 60,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}

// Load locates, parses, and validates a configuration file. The session key
// may be supplied through OMERO_SESSION_KEY instead of the file.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if key := strings.TrimSpace(os.Getenv("OMERO_SESSION_KEY")); key != "" {
		cfg.Server.SessionKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Validate checks the configuration for values the commands cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return errors.New("server url must not be empty")
	}
	if c.Server.TimeoutSeconds < 0 {
		return fmt.Errorf("server timeout must not be negative: %d", c.Server.TimeoutSeconds)
	}
	switch strings.ToLower(strings.TrimSpace(c.Output.Style)) {
	case "", "plain", "yaml", "json":
	default:
		return fmt.Errorf("unknown output style %q", c.Output.Style)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/omero-render/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("omero-render.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~") {
		usr, err := user.Current()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		home := usr.HomeDir
		if env := os.Getenv("HOME"); env != "" {
			home = env
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
