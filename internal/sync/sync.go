// Package sync reconciles registered quest-text sources into the corpus.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dawnhollow/memquest/internal/domain"
	"github.com/dawnhollow/memquest/internal/gitsource"
	"github.com/dawnhollow/memquest/internal/ingest"
	"github.com/dawnhollow/memquest/internal/storage"
)

// ReposDir is where git sources are mirrored locally.
const ReposDir = "repos"

// RunSync walks every registered source, refreshing git mirrors first, and
// ingests each text file through the upload pipeline. The file's base name
// becomes the quest name prefix; the dedup suffix rule keeps re-syncs from
// colliding with already-ingested material.
func RunSync(ctx context.Context, db *storage.DB, ingestor *ingest.Ingestor) error {
	sources, err := db.GetAllSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to get sources: %w", err)
	}
	if len(sources) == 0 {
		slog.Info("no sources configured")
		return nil
	}

	if err := os.MkdirAll(ReposDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create repos directory: %w", err)
	}

	for _, source := range sources {
		slog.Info("syncing source", "id", source.ID, "type", source.Type, "path", source.Path)

		dir := source.Path
		if source.Type == "git" {
			local, err := gitsource.LocalPath(ReposDir, source.Path)
			if err != nil {
				slog.Error("bad git source url", "url", source.Path, "error", err)
				continue
			}
			if err := gitsource.Sync(source.Path, local); err != nil {
				slog.Error("failed to sync git source", "url", source.Path, "error", err)
				continue
			}
			dir = local
		}

		if err := ingestDir(ctx, ingestor, dir); err != nil {
			slog.Error("failed to ingest source", "path", dir, "error", err)
			continue
		}
		if err := db.UpdateSourceLastSynced(ctx, source.ID); err != nil {
			slog.Warn("failed to stamp source sync time", "source_id", source.ID, "error", err)
		}
	}
	slog.Info("sync complete")
	return nil
}

// ingestDir feeds every .txt and .md file under dir through the ingestor.
func ingestDir(ctx context.Context, ingestor *ingest.Ingestor, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext != ".txt" && ext != ".md" {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		text, err := ingest.Decode(raw)
		if err != nil {
			slog.Warn("skipping undecodable file", "path", path, "error", err)
			return nil
		}

		prefix := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		report, err := ingestor.IngestText(ctx, text, prefix, "sync")
		if err != nil {
			if errors.Is(err, domain.ErrNoContent) {
				return nil
			}
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		slog.Info("ingested source file", "path", path, "created", report.Created)
		return nil
	})
}
