package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/conorfennell/sm2deck/internal/config"
	"github.com/conorfennell/sm2deck/internal/logging"
	"github.com/conorfennell/sm2deck/internal/storage"
)

type commandContext struct {
	config *config.Config
	logger *slog.Logger
	now    func() time.Time
}

func newCommandContext() *commandContext {
	return &commandContext{now: time.Now}
}

// load resolves the config and logger for the command being run.
func (c *commandContext) load(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(strings.TrimSpace(path), cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	c.config = cfg
	c.logger = logger
	return nil
}

func (c *commandContext) withDB(fn func(*storage.DB) error) error {
	db, err := storage.Open(c.config.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

const (
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

func emphasize(s string, colorize bool) string {
	if !colorize {
		return s
	}
	return ansiBold + s + ansiReset
}

func formatDue(t time.Time, now time.Time) string {
	if !t.After(now) {
		return "now"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
