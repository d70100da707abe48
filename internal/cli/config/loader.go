package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "CLAUDELINT_"

// FileNames are the config file names looked up in each directory.
var FileNames = []string{".claudelint.yaml", ".claudelint.yml"}

// envKeys maps environment variable names (without prefix) to config keys.
var envKeys = map[string]string{
	"OUTPUT_FORMAT":         "output.format",
	"OUTPUT_VERBOSE":        "output.verbose",
	"OUTPUT_COLOR":          "output.color",
	"OUTPUT_DOCS_URL":       "output.docsURL",
	"MAX_WARNINGS":          "maxWarnings",
	"WARNINGS_AS_ERRORS":    "warningsAsErrors",
	"IGNORE_PATTERNS":       "ignorePatterns",
	"CUSTOM_RULES":          "customRules",
	"CUSTOM_RULE_MAX_STEPS": "customRuleMaxSteps",
	"ON_INVALID_OPTIONS":    "onInvalidOptions",
	"CONCURRENCY":           "concurrency",
	"LOG_LEVEL":             "log.level",
	"LOG_FORMAT":            "log.format",
}

// EnvVars returns every supported environment variable, prefix included,
// mapped to the config key it sets.
func EnvVars() map[string]string {
	out := make(map[string]string, len(envKeys))
	for name, key := range envKeys {
		out[EnvPrefix+name] = key
	}
	return out
}

// listKeys hold comma-separated values when they come from the environment.
var listKeys = map[string]bool{
	"ignorePatterns": true,
	"customRules":    true,
}

// flagKeys maps command-line flag names to config keys. Flags not listed
// here (--config, --watch) are not configuration.
var flagKeys = map[string]string{
	"format":             "output.format",
	"verbose":            "output.verbose",
	"color":              "output.color",
	"max-warnings":       "maxWarnings",
	"warnings-as-errors": "warningsAsErrors",
	"ignore-pattern":     "ignorePatterns",
	"rules-dir":          "customRules",
	"max-steps":          "customRuleMaxSteps",
	"on-invalid-options": "onInvalidOptions",
	"concurrency":        "concurrency",
	"log-level":          "log.level",
	"log-format":         "log.format",
}

// FlagKey returns the config key a command-line flag sets.
func FlagKey(flag string) (string, bool) {
	key, ok := flagKeys[flag]
	return key, ok
}

// FindConfigFile searches upward from startDir for a config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func FindConfigFile(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// envKey translates a prefixed environment variable into a config key.
func envKey(name string) string {
	return envKeys[strings.TrimPrefix(name, EnvPrefix)]
}

func envValue(key, value string) any {
	if !listKeys[key] {
		return value
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load loads configuration from file, .env, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > .env > config file > defaults.
//
// cfgFile names an explicit config file; when empty the loader searches
// upward from the working directory. Every failure is a
// *lint.ConfigurationError.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, &lint.ConfigurationError{Message: "cannot determine working directory", Err: err}
	}
	return LoadFrom(cwd, cfgFile, flags)
}

// LoadFrom is Load with an explicit starting directory.
func LoadFrom(startDir, cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	defaults := Default()

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"output.format":      defaults.Output.Format,
		"output.verbose":     false,
		"output.color":       defaults.Output.Color,
		"maxWarnings":        defaults.MaxWarnings,
		"warningsAsErrors":   false,
		"customRuleMaxSteps": defaults.CustomRuleMaxSteps,
		"onInvalidOptions":   defaults.OnInvalidOptions,
		"concurrency":        0,
		"log.level":          defaults.Log.Level,
		"log.format":         defaults.Log.Format,
	}, "."), nil); err != nil {
		return nil, &lint.ConfigurationError{Message: "failed to load defaults", Err: err}
	}

	// 2. Find and load config file
	if cfgFile == "" {
		cfgFile = FindConfigFile(startDir)
	} else {
		cfgFile = resolvePathRelativeTo(cfgFile, startDir)
	}
	projectRoot := startDir
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, &lint.ConfigurationError{Source: cfgFile, Message: "cannot read configuration", Err: err}
		}
		projectRoot = filepath.Dir(cfgFile)
	}

	// 3. Load the project .env file; real environment variables win over it
	dotenv, err := readDotEnv(filepath.Join(projectRoot, ".env"))
	if err != nil {
		return nil, err
	}
	if len(dotenv) > 0 {
		if err := k.Load(confmap.Provider(dotenv, "."), nil); err != nil {
			return nil, &lint.ConfigurationError{Source: ".env", Message: "cannot load values", Err: err}
		}
	}

	// 4. Load environment variables (CLAUDELINT_ prefix)
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(name, value string) (string, any) {
		key := envKey(name)
		if key == "" {
			return "", nil
		}
		return key, envValue(key, value)
	}), nil); err != nil {
		return nil, &lint.ConfigurationError{Message: "failed to load env vars", Err: err}
	}

	// 5. Load flags (highest priority)
	var flagRules []string
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, &lint.ConfigurationError{Message: "failed to load flags", Err: err}
		}
		if f := flags.Lookup("rules-dir"); f != nil && f.Changed {
			flagRules, _ = flags.GetStringSlice("rules-dir")
		}
	}

	// 6. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, &lint.ConfigurationError{Source: cfgFile, Message: "unable to decode config", Err: err}
	}
	cfg.File = cfgFile
	cfg.ProjectRoot = projectRoot

	// Paths given as flags are relative to the working directory, the rest
	// to the project root.
	if flagRules != nil {
		cfg.CustomRules = make([]string, len(flagRules))
		for i, p := range flagRules {
			cfg.CustomRules[i] = resolvePathRelativeTo(p, startDir)
		}
	} else {
		for i, p := range cfg.CustomRules {
			cfg.CustomRules[i] = resolvePathRelativeTo(p, projectRoot)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readDotEnv reads CLAUDELINT_ entries of a .env file as config keys.
// A missing file yields no values.
func readDotEnv(path string) (map[string]any, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &lint.ConfigurationError{Source: path, Message: "cannot read .env file", Err: err}
	}

	out := make(map[string]any)
	for name, value := range values {
		if !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		if key := envKey(name); key != "" {
			out[key] = envValue(key, value)
		}
	}
	return out, nil
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// WithLogger returns a copy of ctx carrying the logger.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.New(slog.DiscardHandler)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored by WithConfig, or the defaults
// rooted at the working directory.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*Config); ok {
			return c
		}
	}
	cfg := Default()
	cfg.ProjectRoot, _ = os.Getwd()
	return cfg
}

// NewLogger builds the stderr logger described by the log section.
func NewLogger(w io.Writer, c LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (expected text or json)", c.Format)
	}
}
