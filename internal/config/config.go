package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read into the config.
// A double underscore separates nesting levels: SM2DECK_LOG__LEVEL sets log.level.
const EnvPrefix = "SM2DECK_"

// Config holds the application settings.
type Config struct {
	DB       string `koanf:"db" validate:"required"`
	ReposDir string `koanf:"repos_dir" validate:"required"`
	Log      Log    `koanf:"log"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"db":         "db",
	"repos-dir":  "repos_dir",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// RegisterFlags defines the config flags and their defaults on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a YAML config file")
	fs.String("db", "sm2deck.db", "Path to the SQLite database file")
	fs.String("repos-dir", "repos", "Directory where git sources are checked out")
	fs.String("log-level", "info", "Log level: debug, info, warn or error")
	fs.String("log-format", "text", "Log format: text or json")
}

// Load builds the config from, in increasing precedence, flag defaults, the
// YAML file at path (skipped when empty), SM2DECK_ environment variables and
// flags set explicitly on the command line.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags == nil {
		flags = pflag.NewFlagSet("defaults", pflag.ContinueOnError)
		RegisterFlags(flags)
	}
	// Unchanged flags only fill keys that are still missing, so their
	// defaults sit below the file and the environment.
	if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config against its field constraints.
func (c *Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return fmt.Errorf("invalid config: %w", err)
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func flagKey(f *pflag.Flag) (string, interface{}) {
	key, ok := flagKeys[f.Name]
	if !ok {
		return "", nil
	}
	return key, f.Value.String()
}
