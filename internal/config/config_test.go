package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sm2deck.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if cfg.DB != "sm2deck.db" || cfg.ReposDir != "repos" {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Unexpected log defaults %+v", cfg.Log)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
db: from-file.db
repos_dir: /var/lib/sm2deck/repos
log:
  level: warn
  format: json
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(path, newFlags(t))
		if err != nil {
			t.Fatalf("Load() returned an unexpected error: %v", err)
		}
		if cfg.DB != "from-file.db" || cfg.ReposDir != "/var/lib/sm2deck/repos" || cfg.Log.Level != "warn" || cfg.Log.Format != "json" {
			t.Errorf("Expected file values, but got %+v", cfg)
		}
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("SM2DECK_DB", "from-env.db")
		t.Setenv("SM2DECK_LOG__LEVEL", "DEBUG")
		cfg, err := Load(path, newFlags(t))
		if err != nil {
			t.Fatalf("Load() returned an unexpected error: %v", err)
		}
		if cfg.DB != "from-env.db" || cfg.Log.Level != "debug" {
			t.Errorf("Expected env values, but got %+v", cfg)
		}
		if cfg.Log.Format != "json" {
			t.Errorf("Expected file format to survive, but got %s", cfg.Log.Format)
		}
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("SM2DECK_DB", "from-env.db")
		cfg, err := Load(path, newFlags(t, "--db", "from-flag.db", "--log-format", "text"))
		if err != nil {
			t.Fatalf("Load() returned an unexpected error: %v", err)
		}
		if cfg.DB != "from-flag.db" || cfg.Log.Format != "text" {
			t.Errorf("Expected flag values, but got %+v", cfg)
		}
		if cfg.Log.Level != "warn" {
			t.Errorf("Expected file level to survive, but got %s", cfg.Log.Level)
		}
	})
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"unknown level", []string{"--log-level", "loud"}},
		{"unknown format", []string{"--log-format", "xml"}},
		{"empty db", []string{"--db", ""}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load("", newFlags(t, tc.args...))
			if err == nil || !strings.Contains(err.Error(), "invalid config") {
				t.Errorf("Expected an invalid config error, but got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil); err == nil {
		t.Error("Expected an error for a missing config file")
	}
}
