package gitsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
)

// Sync clones a git repository if it doesn't exist at the given path,
// or pulls the latest changes if it does. Clone and pull progress is written
// to progress, which may be nil.
func Sync(ctx context.Context, url, localPath string, progress io.Writer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	_, err := os.Stat(localPath)
	switch {
	case os.IsNotExist(err):
		logger.Info("Cloning repository", "url", url, "path", localPath)
		_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
			URL:      url,
			Progress: progress,
		})
		if err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", url, err)
		}
		logger.Info("Clone successful", "path", localPath)

	case err == nil:
		logger.Info("Pulling latest changes", "path", localPath)
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
		}

		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
		}

		err = worktree.PullContext(ctx, &git.PullOptions{
			RemoteName: "origin",
			Progress:   progress,
		})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
		}
		logger.Info("Pull successful (or already up-to-date)", "path", localPath)

	default:
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	}

	return nil
}
