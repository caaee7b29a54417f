package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const appName = "compare-changesets"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "COMPARE_CHANGESETS"

var (
	// ValidFormats lists the accepted output formats.
	ValidFormats = []string{"patch", "stat", "name-status", "json", "yaml"}
	// ValidColors lists the accepted color modes.
	ValidColors = []string{"auto", "always", "never"}
)

// Config represents the compare-changesets configuration.
type Config struct {
	Repo           string   `json:"repo,omitempty" mapstructure:"repo"`
	Format         string   `json:"format" mapstructure:"format"`
	Color          string   `json:"color" mapstructure:"color"`
	ContextLines   int      `json:"contextLines" mapstructure:"contextLines"`
	FindRenames    int      `json:"findRenames" mapstructure:"findRenames"`
	AllowConflicts bool     `json:"allowConflicts" mapstructure:"allowConflicts"`
	ExitCode       bool     `json:"exitCode" mapstructure:"exitCode"`
	Include        []string `json:"include,omitempty" mapstructure:"include"`
	Exclude        []string `json:"exclude,omitempty" mapstructure:"exclude"`
	LogLevel       string   `json:"logLevel" mapstructure:"logLevel"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Format:   "patch",
		Color:    "auto",
		LogLevel: "warn",
	}
}

// keys maps each config key to its environment variable suffix and the CLI
// flag that overrides it.
var keys = []struct {
	key  string
	env  string
	flag string
}{
	{"repo", "REPO", "repo"},
	{"format", "FORMAT", "format"},
	{"color", "COLOR", "color"},
	{"contextLines", "CONTEXT_LINES", "context-lines"},
	{"findRenames", "FIND_RENAMES", "find-renames"},
	{"allowConflicts", "ALLOW_CONFLICTS", "allow-conflicts"},
	{"exitCode", "EXIT_CODE", "exit-code"},
	{"include", "INCLUDE", "paths"},
	{"exclude", "EXCLUDE", "exclude"},
	{"logLevel", "LOG_LEVEL", "log-level"},
}

// ConfigDir returns the platform-appropriate config directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName), nil
		}
		return filepath.Join(home, "AppData", "Roaming", appName), nil
	default:
		return filepath.Join(home, ".config", appName), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads the config file layered over the defaults, ignoring the
// environment. Returns Default() if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- flags.
// Only flags the user actually set take precedence; flags may be nil.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("repo", def.Repo)
	v.SetDefault("format", def.Format)
	v.SetDefault("color", def.Color)
	v.SetDefault("contextLines", def.ContextLines)
	v.SetDefault("findRenames", def.FindRenames)
	v.SetDefault("allowConflicts", def.AllowConflicts)
	v.SetDefault("exitCode", def.ExitCode)
	v.SetDefault("include", def.Include)
	v.SetDefault("exclude", def.Exclude)
	v.SetDefault("logLevel", def.LogLevel)

	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	for _, k := range keys {
		if err := v.BindEnv(k.key, EnvPrefix+"_"+k.env); err != nil {
			return Config{}, err
		}
		if flags == nil {
			continue
		}
		if f := flags.Lookup(k.flag); f != nil {
			if err := v.BindPFlag(k.key, f); err != nil {
				return Config{}, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Include = splitList(cfg.Include)
	cfg.Exclude = splitList(cfg.Exclude)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var result *multierror.Error
	if !lo.Contains(ValidFormats, c.Format) {
		result = multierror.Append(result, fmt.Errorf("format %q must be one of %s", c.Format, strings.Join(ValidFormats, ", ")))
	}
	if !lo.Contains(ValidColors, c.Color) {
		result = multierror.Append(result, fmt.Errorf("color %q must be one of %s", c.Color, strings.Join(ValidColors, ", ")))
	}
	if c.ContextLines < 0 {
		result = multierror.Append(result, fmt.Errorf("contextLines must not be negative, got %d", c.ContextLines))
	}
	if c.FindRenames < 0 || c.FindRenames > 100 {
		result = multierror.Append(result, fmt.Errorf("findRenames must be between 0 and 100, got %d", c.FindRenames))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, fmt.Errorf("logLevel %q is not a valid level", c.LogLevel))
	}
	return result.ErrorOrNil()
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "repo":
		cfg.Repo = value
	case "format":
		cfg.Format = value
	case "color":
		cfg.Color = value
	case "logLevel":
		cfg.LogLevel = value
	case "contextLines":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("contextLines must be an integer: %w", err)
		}
		cfg.ContextLines = n
	case "findRenames":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("findRenames must be an integer: %w", err)
		}
		cfg.FindRenames = n
	case "allowConflicts":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("allowConflicts must be a boolean: %w", err)
		}
		cfg.AllowConflicts = b
	case "exitCode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("exitCode must be a boolean: %w", err)
		}
		cfg.ExitCode = b
	case "include":
		cfg.Include = SplitComma(value)
	case "exclude":
		cfg.Exclude = SplitComma(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return cfg.Validate()
}

// SplitComma splits a comma-separated list, trimming blanks.
func SplitComma(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	parts = lo.Compact(parts)
	if len(parts) == 0 {
		return nil
	}
	return parts
}

// splitList normalizes list values that may arrive as a single
// comma-separated element from the environment or a flag.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		out = append(out, SplitComma(item)...)
	}
	return out
}
