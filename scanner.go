package main

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

// AssetSource enumerates every asset of a namespace with its edges
type AssetSource interface {
	Namespace() string
	Assets() []AssetRecord
}

// SignalSource provides reasons for assets to be kept, once the graph is known
type SignalSource interface {
	Signals(graph *AssetGraph) (UsageSignals, error)
}

// FolderSource supplies the content folder tree. Assets in removed are treated as deleted.
type FolderSource interface {
	FolderTree(removed AssetSet) *FolderNode
}

type ScanOptions struct {
	// glob patterns relative to the namespace root, matching assets are never reported as unused
	IgnorePaths []string
	// nil skips the empty folder search
	Folders FolderSource
	// nil skips the corrupted and non-engine file check
	Files             ContentFileSource
	EmptyFolders      EmptyFolderOptions
	AfterDeletion     bool
	SkipDeletionPlan  bool
	SkipCircularCheck bool
}

// ScanOptionsFromConfig maps config onto scan options. Ignored paths also hide folders.
func ScanOptionsFromConfig(config ProjectCleanerConfig, folders FolderSource) ScanOptions {
	ignoredFolders := append([]string{}, config.IgnoredFolders...)
	ignoredFolders = append(ignoredFolders, config.IgnorePaths...)
	return ScanOptions{
		IgnorePaths: config.IgnorePaths,
		Folders:     folders,
		EmptyFolders: EmptyFolderOptions{
			IgnoredFolders:        ignoredFolders,
			DeveloperName:         config.DeveloperName,
			ScanDevelopersContent: config.ScanDevelopersContent,
		},
	}
}

type ScanResult struct {
	ScanID    ulid.ULID
	Namespace string
	Graph     *AssetGraph
	Usage     *UsageClassification
	Unused    AssetSet
	// unused assets hidden by IgnorePaths
	Ignored      AssetSet
	Circular     AssetSet
	Plan         []DeletionBatch
	EmptyFolders map[string]bool
	Files        ContentFiles
	Duration     time.Duration
}

// Scan builds the asset graph, classifies usage, resolves unused assets and plans their deletion.
// Graph building and signal errors stop the scan. Cancellation returns what was computed
// so far together with an error wrapping ErrScanAborted.
func Scan(ctx context.Context, assets AssetSource, signals SignalSource, opts ScanOptions) (*ScanResult, error) {
	start := time.Now()
	result := &ScanResult{
		ScanID:       ulid.Make(),
		Namespace:    assets.Namespace(),
		Unused:       AssetSet{},
		Ignored:      AssetSet{},
		Circular:     AssetSet{},
		Plan:         []DeletionBatch{},
		EmptyFolders: map[string]bool{},
		Files:        ContentFiles{Corrupted: []string{}, NonEngine: []string{}},
	}
	logger := log.With().Str("scan", result.ScanID.String()).Str("namespace", result.Namespace).Logger()
	finish := func(err error) (*ScanResult, error) {
		result.Duration = time.Since(start)
		if err != nil {
			logger.Warn().Err(err).Dur("duration", result.Duration).Msg("scan stopped")
		} else {
			logger.Debug().Dur("duration", result.Duration).Msg("scan finished")
		}
		return result, err
	}

	graph, err := BuildAssetGraph(result.Namespace, assets.Assets())
	result.Graph = graph
	if err != nil {
		return finish(fmt.Errorf("failed to build asset graph: %w", err))
	}
	logger.Debug().Int("assets", graph.Len()).Msg("asset graph built")

	usageSignals, err := signals.Signals(graph)
	if err != nil {
		return finish(fmt.Errorf("failed to collect usage signals: %w", err))
	}

	usage, err := ClassifyUsage(ctx, graph, usageSignals)
	result.Usage = usage
	if err != nil {
		return finish(err)
	}
	logger.Debug().Int("used", usage.UsedClosure.Len()).Int("seeds", usage.Seeds.Len()).Msg("usage classified")

	ignore := IgnoreAssetsMatching(CreateGlobMatchers(opts.IgnorePaths, result.Namespace))
	result.Unused = ResolveUnused(graph, usage.UsedClosure, ignore)
	result.Ignored = ResolveIgnored(graph, usage.UsedClosure, ignore)
	logger.Debug().Int("unused", result.Unused.Len()).Int("ignored", result.Ignored.Len()).Msg("unused assets resolved")

	if opts.Files != nil {
		result.Files = ClassifyContentFiles(graph, opts.Files.ContentFiles())
		logger.Debug().Int("corrupted", len(result.Files.Corrupted)).Int("nonEngine", len(result.Files.NonEngine)).Msg("content files classified")
	}

	if !opts.SkipCircularCheck {
		result.Circular = FindCircularAssets(graph)
	}

	if !opts.SkipDeletionPlan {
		plan, err := PlanDeletion(ctx, graph, result.Unused)
		result.Plan = plan
		if err != nil {
			return finish(err)
		}
		logger.Debug().Int("batches", len(plan)).Msg("deletion planned")
	}

	if opts.Folders != nil {
		removed := AssetSet{}
		if opts.AfterDeletion {
			removed = result.Unused
		}
		tree := opts.Folders.FolderTree(removed)
		result.EmptyFolders = FindEmptyFolders(tree, result.Namespace, opts.EmptyFolders)
		logger.Debug().Int("emptyFolders", len(result.EmptyFolders)).Msg("empty folders found")
	}

	return finish(nil)
}

// ScanManifest runs a scan of a manifest source, which provides assets, signals and folders at once.
// With afterDeletion, empty folders are computed as if unused assets were already deleted.
func ScanManifest(ctx context.Context, source *ManifestSource, config ProjectCleanerConfig, afterDeletion bool) (*ScanResult, error) {
	opts := ScanOptionsFromConfig(config, source)
	opts.Files = source
	opts.AfterDeletion = afterDeletion
	return Scan(ctx, source, source, opts)
}
