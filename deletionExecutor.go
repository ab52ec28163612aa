package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
)

// DeletionExecutor removes one batch of assets and reports how many were deleted
type DeletionExecutor interface {
	DeleteAssets(ctx context.Context, batch DeletionBatch) (int, error)
}

type DeletionReport struct {
	BatchesExecuted int
	Deleted         int
	// batch that stopped the execution, nil when every batch went through
	FailedBatch *DeletionBatch
	Err         error
}

// ExecuteDeletionPlan runs batches strictly in order. Later batches may only be safe once
// earlier ones are gone, so the first failure stops execution.
func ExecuteDeletionPlan(ctx context.Context, plan []DeletionBatch, exec DeletionExecutor) DeletionReport {
	report := DeletionReport{}
	for i := range plan {
		batch := plan[i]
		if ctx.Err() != nil {
			report.FailedBatch = &batch
			report.Err = abortedError(ctx, "deletion")
			return report
		}
		deleted, err := exec.DeleteAssets(ctx, batch)
		report.Deleted += deleted
		if err != nil {
			report.FailedBatch = &batch
			report.Err = fmt.Errorf("batch %d: %w", i+1, err)
			log.Error().Err(err).Int("batch", i+1).Int("deleted", report.Deleted).Msg("deletion stopped")
			return report
		}
		report.BatchesExecuted++
	}
	return report
}

// DryRunExecutor only counts assets that would be deleted
type DryRunExecutor struct{}

func (DryRunExecutor) DeleteAssets(ctx context.Context, batch DeletionBatch) (int, error) {
	log.Info().Int("assets", len(batch.Assets)).Bool("forced", batch.Forced).Msg("dry run, skipping batch")
	return len(batch.Assets), nil
}

var assetFileExtensions = []string{".uasset", ".umap"}

// ContentDirExecutor removes asset files from a content directory on disk.
// Asset "/Game/Props/Chair" maps to "<ContentDir>/Props/Chair.uasset" (or .umap).
type ContentDirExecutor struct {
	ContentDir string
	Namespace  string
	BytesFreed int64
}

func (e *ContentDirExecutor) DeleteAssets(ctx context.Context, batch DeletionBatch) (int, error) {
	deleted := 0
	for _, id := range batch.Assets {
		if ctx.Err() != nil {
			return deleted, abortedError(ctx, "deletion")
		}
		removed, err := e.deleteAsset(id)
		if err != nil {
			return deleted, err
		}
		if removed {
			deleted++
		}
	}
	return deleted, nil
}

func (e *ContentDirExecutor) deleteAsset(id AssetId) (bool, error) {
	base := ContentPath(e.ContentDir, e.Namespace, string(id))
	removed := false
	for _, ext := range assetFileExtensions {
		filePath := base + ext
		info, err := os.Stat(filePath)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("failed to stat '%s': %w", id, err)
		}
		if err := os.Remove(filePath); err != nil {
			return removed, fmt.Errorf("failed to delete '%s': %w", id, err)
		}
		e.BytesFreed += info.Size()
		removed = true
		log.Debug().Str("asset", string(id)).Str("file", filePath).Msg("deleted")
	}
	if !removed {
		log.Warn().Str("asset", string(id)).Msg("asset file no longer exists")
	}
	return removed, nil
}

// DeleteEmptyFolders removes folders deepest-first, so parents are only removed after their children.
// Folders that are gone already are skipped; a folder that is not empty on disk stops the deletion.
func DeleteEmptyFolders(ctx context.Context, contentDir string, namespace string, folders map[string]bool, dryRun bool) (int, error) {
	deleted := 0
	for _, folder := range SortFoldersDeepestFirst(folders) {
		if ctx.Err() != nil {
			return deleted, abortedError(ctx, "folder deletion")
		}
		dirPath := ContentPath(contentDir, namespace, folder)
		if dirPath == contentDir {
			continue
		}
		if _, err := os.Stat(dirPath); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if dryRun {
			deleted++
			continue
		}
		if err := os.Remove(dirPath); err != nil {
			return deleted, fmt.Errorf("failed to delete folder '%s': %w", folder, err)
		}
		deleted++
	}
	return deleted, nil
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
