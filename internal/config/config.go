package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/sawmill/internal/gitctx"
)

// FileName is the name of the project config file looked up at the
// repository root.
const FileName = "sawmill.toml"

// ErrNotFound is returned when an explicitly requested config file does not
// exist.
var ErrNotFound = errors.New("config file not found")

// Error reports a config file that exists but cannot be parsed.
type Error struct {
	Path    string
	Line    int // 0 when unknown
	Message string
}

func (e *Error) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, "Error in "+e.Path)
	}
	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("at line %d", e.Line))
	}
	if len(parts) == 0 {
		return e.Message
	}
	return strings.Join(parts, " ") + ": " + e.Message
}

// Config represents the sawmill configuration.
type Config struct {
	General  GeneralConfig  `toml:"general" json:"general"`
	Output   OutputConfig   `toml:"output" json:"output"`
	Suppress SuppressConfig `toml:"suppress" json:"suppress"`
	Check    CheckConfig    `toml:"check" json:"check"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-" json:"path,omitempty"`
}

// GeneralConfig holds tool-wide settings.
type GeneralConfig struct {
	DefaultPlugin string `toml:"default_plugin,omitempty" json:"default_plugin,omitempty"`
}

// OutputConfig controls rendering. A nil Color means auto-detect.
type OutputConfig struct {
	Color  *bool  `toml:"color,omitempty" json:"color,omitempty"`
	Format string `toml:"format,omitempty" json:"format"`
}

// SuppressConfig lists display-only suppressions. Suppressed messages are
// hidden from output and excluded from checks, but unlike waivers they
// carry no audit trail.
type SuppressConfig struct {
	Patterns   []string `toml:"patterns,omitempty" json:"patterns,omitempty"`
	MessageIDs []string `toml:"message_ids,omitempty" json:"message_ids,omitempty"`
}

// CheckConfig holds defaults for the check command.
type CheckConfig struct {
	FailOn     string `toml:"fail_on,omitempty" json:"fail_on,omitempty"`
	Waivers    string `toml:"waivers,omitempty" json:"waivers,omitempty"`
	FilterMode string `toml:"filter_mode,omitempty" json:"filter_mode"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Output: OutputConfig{Format: "text"},
		Check:  CheckConfig{FilterMode: "and"},
	}
}

// ColorEnabled resolves the color setting; auto is reported as ok=false.
func (c Config) ColorEnabled() (enabled, ok bool) {
	if c.Output.Color == nil {
		return false, false
	}
	return *c.Output.Color, true
}

// ConfigDir returns the platform-appropriate config directory for sawmill.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sawmill"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "sawmill"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "sawmill"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "sawmill"), nil
	default:
		return filepath.Join(home, ".config", "sawmill"), nil
	}
}

// ConfigPath returns the full path to the user config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Discover picks the config file to use. An explicit path must exist.
// Otherwise the repository root enclosing start is tried, then the user
// config directory. An empty result means defaults only.
func Discover(explicit, start string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: %s", ErrNotFound, explicit)
			}
			return "", fmt.Errorf("reading config file: %w", err)
		}
		return explicit, nil
	}
	if root, err := gitctx.FindRoot(start); err == nil {
		candidate := filepath.Join(root, FileName)
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	if user, err := ConfigPath(); err == nil && fileExists(user) {
		return user, nil
	}
	return "", nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadFile loads config from path. A missing file yields ErrNotFound.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML config data. Syntax and type errors are returned as
// *Error carrying the offending line.
func Parse(data []byte, path string) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		cerr := &Error{Path: path, Message: err.Error()}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			cerr.Line, _ = derr.Position()
		}
		return Config{}, cerr
	}
	cfg.Path = path
	return cfg, nil
}

// Marshal renders cfg as TOML.
func Marshal(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the config to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The file is chosen by Discover. The overrides map comes from CLI flags
// (only non-empty values should be set).
func Load(explicit string, overrides map[string]string) (Config, error) {
	cfg := Default()

	path, err := Discover(explicit, "")
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		mergeFile(&cfg, fileCfg)
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.General.DefaultPlugin != "" {
		dst.General.DefaultPlugin = src.General.DefaultPlugin
	}
	if src.Output.Color != nil {
		v := *src.Output.Color
		dst.Output.Color = &v
	}
	if src.Output.Format != "" {
		dst.Output.Format = src.Output.Format
	}
	if len(src.Suppress.Patterns) > 0 {
		dst.Suppress.Patterns = append([]string(nil), src.Suppress.Patterns...)
	}
	if len(src.Suppress.MessageIDs) > 0 {
		dst.Suppress.MessageIDs = append([]string(nil), src.Suppress.MessageIDs...)
	}
	if src.Check.FailOn != "" {
		dst.Check.FailOn = src.Check.FailOn
	}
	if src.Check.Waivers != "" {
		dst.Check.Waivers = src.Check.Waivers
	}
	if src.Check.FilterMode != "" {
		dst.Check.FilterMode = src.Check.FilterMode
	}
	dst.Path = src.Path
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv("SAWMILL_PLUGIN"); v != "" {
		cfg.General.DefaultPlugin = v
	}
	if v := os.Getenv("SAWMILL_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv("SAWMILL_FAIL_ON"); v != "" {
		cfg.Check.FailOn = v
	}
	if v := os.Getenv("SAWMILL_COLOR"); v != "" {
		color, err := parseColor(v)
		if err != nil {
			return fmt.Errorf("SAWMILL_COLOR: %w", err)
		}
		cfg.Output.Color = color
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists the settable config keys in file order.
func Keys() []string {
	return []string{
		"general.default_plugin",
		"output.color",
		"output.format",
		"suppress.patterns",
		"suppress.message_ids",
		"check.fail_on",
		"check.waivers",
		"check.filter_mode",
	}
}

// SetField sets a single config field by dotted key name. List values are
// comma separated. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "general.default_plugin", "plugin":
		cfg.General.DefaultPlugin = value
	case "output.color", "color":
		color, err := parseColor(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		cfg.Output.Color = color
	case "output.format", "format":
		cfg.Output.Format = value
	case "suppress.patterns":
		cfg.Suppress.Patterns = splitList(value)
	case "suppress.message_ids":
		cfg.Suppress.MessageIDs = splitList(value)
	case "check.fail_on", "fail_on":
		cfg.Check.FailOn = value
	case "check.waivers", "waivers":
		cfg.Check.Waivers = value
	case "check.filter_mode", "filter_mode":
		switch strings.ToLower(value) {
		case "and", "or":
			cfg.Check.FilterMode = strings.ToLower(value)
		default:
			return fmt.Errorf("%s must be \"and\" or \"or\", got %q", key, value)
		}
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// parseColor accepts a boolean or "auto", which clears the setting.
func parseColor(v string) (*bool, error) {
	if strings.EqualFold(v, "auto") {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("must be true, false or auto, got %q", v)
	}
	return &b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
