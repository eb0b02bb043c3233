package sync

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conorfennell/sm2deck/internal/gitsource"
	"github.com/conorfennell/sm2deck/internal/knol"
	"github.com/conorfennell/sm2deck/internal/parser"
	"github.com/conorfennell/sm2deck/internal/storage"
)

// Options controls a sync run.
type Options struct {
	ReposDir string    // where git sources are checked out
	Progress io.Writer // git clone/pull progress, may be nil
	Logger   *slog.Logger
}

// Report summarises a sync run.
type Report struct {
	Sources int
	Added   int
	Removed int
	Errors  []error
}

// SourceType guesses whether path names a git repository or a local directory.
func SourceType(path string) string {
	if strings.HasSuffix(path, ".git") || strings.HasPrefix(path, "git@") ||
		strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return storage.SourceGit
	}
	return storage.SourceLocal
}

// Run iterates over all sources and reconciles each one with its deck.
// Cards found for the first time are created due at now; imported cards whose
// content is gone from the source are deleted with their schedule. A failing
// source is reported and skipped. While any file of a source fails to parse,
// none of its cards are deleted.
func Run(ctx context.Context, db *storage.DB, now time.Time, opts Options) (Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Starting sync process for all sources...")
	sources, err := db.GetAllSources(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("get sources: %w", err)
	}

	var report Report
	if len(sources) == 0 {
		logger.Info("No sources configured. Add one with `sm2deck source add <deck-id> <path/or/url.git>`")
		return report, nil
	}

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		logger.Info("Syncing source", "id", source.ID, "type", source.Type, "path", source.Path)
		report.Sources++

		root := source.Path
		if source.Type == storage.SourceGit {
			localRepoPath, err := gitURLToLocalPath(opts.ReposDir, source.Path)
			if err != nil {
				logger.Error("Error determining local path for git repo", "url", source.Path, "error", err)
				report.Errors = append(report.Errors, err)
				continue
			}
			if err := os.MkdirAll(filepath.Dir(localRepoPath), 0o755); err != nil {
				report.Errors = append(report.Errors, fmt.Errorf("create repos directory: %w", err))
				continue
			}
			if err := gitsource.Sync(ctx, source.Path, localRepoPath, opts.Progress, logger); err != nil {
				logger.Error("Error syncing git repo", "url", source.Path, "error", err)
				report.Errors = append(report.Errors, err)
				continue
			}
			root = localRepoPath
		}

		added, removed, errs := reconcileSource(ctx, db, source, root, now, logger)
		report.Added += added
		report.Removed += removed
		report.Errors = append(report.Errors, errs...)
	}
	logger.Info("Sync process complete.",
		"sources", report.Sources,
		"added", report.Added,
		"removed", report.Removed,
		"errors", len(report.Errors),
	)
	return report, nil
}

func reconcileSource(ctx context.Context, db *storage.DB, source storage.Source, root string, now time.Time, logger *slog.Logger) (added, removed int, errs []error) {
	foundCardHashes := make(map[string]bool)
	parsed, unparsed := 0, 0

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		fileCards, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			unparsed++
			errs = append(errs, fmt.Errorf("parsing %s: %w", path, parseErr))
		}
		for _, card := range fileCards {
			parsed++
			card.Hash = knol.Hash(card)
			if foundCardHashes[card.Hash] {
				continue
			}
			foundCardHashes[card.Hash] = true

			existing, findErr := db.FindCardByHash(ctx, source.DeckID, card.Hash)
			if findErr != nil {
				errs = append(errs, fmt.Errorf("db check for %s: %w", card.Hash, findErr))
				continue
			}
			if existing != nil {
				continue
			}

			card.DeckID = source.DeckID
			card.SourceID = source.ID
			logger.Debug("New card found, inserting...", "hash", card.Hash)
			if _, insertErr := db.CreateCard(ctx, card, now); insertErr != nil {
				errs = append(errs, fmt.Errorf("db insert for %s: %w", card.Hash, insertErr))
				continue
			}
			added++
		}
		return nil
	})
	if walkErr != nil {
		logger.Error("Error walking directory", "path", root, "error", walkErr)
		return added, removed, append(errs, fmt.Errorf("walk %s: %w", root, walkErr))
	}

	// Cards of a file that failed to parse are unknown, so nothing can be
	// called orphaned until every file parses again.
	if unparsed > 0 {
		logger.Warn("Skipping orphan removal, some files could not be parsed",
			"source_id", source.ID, "files", unparsed)
		return added, removed, errs
	}

	dbCards, err := db.GetCardsBySourceID(ctx, source.ID)
	if err != nil {
		logger.Error("Error getting cards for source", "source_id", source.ID, "error", err)
		return added, removed, append(errs, err)
	}

	for _, dbCard := range dbCards {
		if foundCardHashes[dbCard.Hash] {
			continue
		}
		logger.Info("Orphaned card, deleting", "hash", dbCard.Hash)
		if err := db.DeleteCard(ctx, dbCard.ID); err != nil {
			logger.Warn("Failed to delete orphaned card", "hash", dbCard.Hash, "error", err)
			errs = append(errs, err)
			continue
		}
		removed++
	}

	if err := db.UpdateSourceLastScanned(ctx, source.ID, now); err != nil {
		logger.Warn("Failed to update last scanned for source", "source_id", source.ID, "error", err)
	}

	logger.Info("reconciliation complete",
		"path", root,
		"parsed_cards", parsed,
		"added", added,
		"orphaned_deleted", removed,
		"errors", len(errs),
	)
	return added, removed, errs
}

func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
