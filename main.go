package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var Version = "1.0.0"

var (
	currentDir, _ = os.Getwd()
	verbose       bool
	rootCmd       = &cobra.Command{
		Use:   "project-cleaner",
		Short: "Find unused assets and empty folders in a game content tree",
		Long: `Analyzes an asset registry manifest to find assets nothing depends on,
plans a dependency-safe deletion order and finds folders left empty.`,
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(os.Stderr, verbose)
		},
	}
)

var docsCmd = &cobra.Command{
	Use:   "doc-gen",
	Short: "Generate CLI documentation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return doc.GenMarkdownTree(rootCmd, "./docs")
	},
}

// ---------------- shared flags ----------------

var (
	cleanerCwd        string
	cleanerManifests  []string
	cleanerConfigPath string
	cleanerNamespace  string
	cleanerOutput     string
	cleanerListAll    bool
	cleanerZeroExit   bool
)

var manifestFileNames = []string{
	"project-cleaner.manifest.json",
	"project-cleaner.manifest.jsonc",
	"project-cleaner.manifest.yaml",
	"project-cleaner.manifest.yml",
	"project-cleaner.manifest.toml",
}

func addScanFlags(command *cobra.Command) {
	command.Flags().StringVarP(&cleanerCwd, "cwd", "c", currentDir,
		"Project directory, text sources are resolved relative to it")
	command.Flags().StringSliceVarP(&cleanerManifests, "manifest", "m", []string{},
		"Asset manifest file(s), each one is scanned separately (default: ./project-cleaner.manifest.json)")
	command.Flags().StringVar(&cleanerConfigPath, "config", "",
		"Path to config file (default: ./project-cleaner.config.json if present)")
	command.Flags().StringVarP(&cleanerNamespace, "namespace", "n", "",
		"Namespace root owning the assets, eg. /Game (overrides manifest and config)")
}

type scanCommandOptions struct {
	Cwd           string
	Manifests     []string
	ConfigPath    string
	Namespace     string
	AfterDeletion bool
}

func currentScanOptions() scanCommandOptions {
	return scanCommandOptions{
		Cwd:        ResolveAbsoluteCwd(cleanerCwd),
		Manifests:  cleanerManifests,
		ConfigPath: cleanerConfigPath,
		Namespace:  cleanerNamespace,
	}
}

type manifestScan struct {
	ManifestPath string
	Source       *ManifestSource
	Result       *ScanResult
	Err          error
}

func resolveManifestPaths(cwd string, manifests []string) ([]string, error) {
	if len(manifests) == 0 {
		for _, name := range manifestFileNames {
			candidate := filepath.Join(cwd, name)
			if _, err := os.Stat(candidate); err == nil {
				return []string{candidate}, nil
			}
		}
		return nil, fmt.Errorf("no manifest found in '%s', pass one with --manifest", cwd)
	}

	paths := make([]string, 0, len(manifests))
	for _, manifest := range manifests {
		if !filepath.IsAbs(manifest) {
			manifest = filepath.Join(cwd, manifest)
		}
		paths = append(paths, manifest)
	}
	return paths, nil
}

// runManifestScans loads config and manifests, then scans every manifest concurrently.
// Each scan owns its graph, results keep the order of manifests.
func runManifestScans(ctx context.Context, opts scanCommandOptions) ([]manifestScan, ProjectCleanerConfig, error) {
	config, err := LoadConfigOrDefault(opts.Cwd, opts.ConfigPath)
	if err != nil {
		return nil, config, fmt.Errorf("could not load configuration: %w", err)
	}

	paths, err := resolveManifestPaths(opts.Cwd, opts.Manifests)
	if err != nil {
		return nil, config, err
	}

	scans := make([]manifestScan, len(paths))
	for i, manifestPath := range paths {
		manifest, err := LoadAssetManifest(manifestPath)
		if err != nil {
			return nil, config, err
		}
		scans[i] = manifestScan{
			ManifestPath: manifestPath,
			Source:       NewManifestSource(manifest, config, opts.Cwd, opts.Namespace),
		}
	}

	var wg sync.WaitGroup
	for i := range scans {
		wg.Add(1)
		go func(scan *manifestScan) {
			defer wg.Done()
			scan.Result, scan.Err = ScanManifest(ctx, scan.Source, config, opts.AfterDeletion)
		}(&scans[i])
	}
	wg.Wait()

	for _, scan := range scans {
		if scan.Err != nil {
			return scans, config, fmt.Errorf("%s: %w", filepath.Base(scan.ManifestPath), scan.Err)
		}
	}
	return scans, config, nil
}

// ---------------- scan ----------------
var scanWatch bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Report unused assets, circular assets and empty folders",
	Long: `Builds the asset graph from the manifest, marks everything reachable from primary,
editor only, excluded, externally referenced and indirectly referenced assets as used
and reports the rest as unused.`,
	Example: `  project-cleaner scan -m Saved/assets.manifest.json
  project-cleaner scan -m game.manifest.yaml -m plugin.manifest.yaml --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := currentScanOptions()
		unusedCount, err := runScanCommand(cmd.Context(), os.Stdout, opts, cleanerOutput, cleanerListAll)
		if err != nil {
			return err
		}

		if scanWatch {
			watched, err := watchedFiles(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Watching %d files for changes...\n", len(watched))
			return WatchFiles(cmd.Context(), watched, func() {
				if _, err := runScanCommand(cmd.Context(), os.Stdout, opts, cleanerOutput, cleanerListAll); err != nil {
					log.Error().Err(err).Msg("scan failed")
				}
			})
		}

		if !cleanerZeroExit && unusedCount > 0 {
			os.Exit(exitCode(unusedCount))
		}
		return nil
	},
}

// exitCode caps a count to the largest exit status, so 256 findings never exit 0
func exitCode(count int) int {
	return min(count, 255)
}

// runScanCommand prints a report for every manifest and returns the total number of unused assets
func runScanCommand(ctx context.Context, w io.Writer, opts scanCommandOptions, output string, listAll bool) (int, error) {
	scans, _, err := runManifestScans(ctx, opts)
	if err != nil {
		return 0, err
	}

	unusedCount := 0
	for _, scan := range scans {
		if len(scans) > 1 && (output == "" || output == "text") {
			fmt.Fprintf(w, "=== %s ===\n", filepath.Base(scan.ManifestPath))
		}
		if err := WriteScanReport(w, scan.Result, output, listAll); err != nil {
			return unusedCount, err
		}
		unusedCount += scan.Result.Unused.Len()
	}
	return unusedCount, nil
}

func watchedFiles(opts scanCommandOptions) ([]string, error) {
	files, err := resolveManifestPaths(opts.Cwd, opts.Manifests)
	if err != nil {
		return nil, err
	}
	if opts.ConfigPath != "" {
		configPath := opts.ConfigPath
		if !filepath.IsAbs(configPath) {
			configPath = filepath.Join(opts.Cwd, configPath)
		}
		files = append(files, configPath)
	} else if configPath, err := FindConfigFile(opts.Cwd); err == nil {
		files = append(files, configPath)
	}
	return files, nil
}

// ---------------- plan ----------------
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the order in which unused assets can be deleted",
	Long: `Orders unused assets into batches. An asset is only deleted after every unused asset
referencing it is gone. Reference cycles are broken by forcing a single asset into its own batch.`,
	Example: "project-cleaner plan -m assets.manifest.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlanCommand(cmd.Context(), os.Stdout, currentScanOptions())
	},
}

func runPlanCommand(ctx context.Context, w io.Writer, opts scanCommandOptions) error {
	scans, _, err := runManifestScans(ctx, opts)
	if err != nil {
		return err
	}
	for _, scan := range scans {
		if len(scans) > 1 {
			fmt.Fprintf(w, "=== %s ===\n", filepath.Base(scan.ManifestPath))
		}
		cycles, err := FindReferenceCycles(scan.Result.Graph, scan.Result.Unused)
		if err != nil {
			return err
		}
		fmt.Fprint(w, FormatDeletionPlan(scan.Result.Plan, cycles))
	}
	return nil
}

// ---------------- clean ----------------
var (
	cleanContentDir         string
	cleanDryRun             bool
	cleanDeleteEmptyFolders bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete unused assets from the content directory",
	Long: `Executes the deletion plan batch by batch against the content directory.
Runs in dry run mode unless --dry-run=false is passed.`,
	Example: "project-cleaner clean -m assets.manifest.json --content-dir Content --dry-run=false --delete-empty-folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := currentScanOptions()
		contentDir := cleanContentDir
		if contentDir == "" {
			contentDir = filepath.Join(opts.Cwd, "Content")
		} else if !filepath.IsAbs(contentDir) {
			contentDir = filepath.Join(opts.Cwd, contentDir)
		}
		return runCleanCommand(cmd.Context(), os.Stdout, opts, contentDir, cleanDryRun, cleanDeleteEmptyFolders)
	},
}

func runCleanCommand(ctx context.Context, w io.Writer, opts scanCommandOptions, contentDir string, dryRun bool, deleteEmptyFolders bool) error {
	opts.AfterDeletion = true
	scans, _, err := runManifestScans(ctx, opts)
	if err != nil {
		return err
	}

	var errs []error
	for _, scan := range scans {
		result := scan.Result
		var executor DeletionExecutor = DryRunExecutor{}
		contentExecutor := &ContentDirExecutor{ContentDir: contentDir, Namespace: result.Namespace}
		if !dryRun {
			executor = contentExecutor
		}

		report := ExecuteDeletionPlan(ctx, result.Plan, executor)

		foldersDeleted := 0
		if deleteEmptyFolders && report.Err == nil {
			foldersDeleted, err = DeleteEmptyFolders(ctx, contentDir, result.Namespace, result.EmptyFolders, dryRun)
			if err != nil {
				report.Err = err
			}
		}

		fmt.Fprint(w, FormatDeletionReport(report, foldersDeleted, contentExecutor.BytesFreed, dryRun))
		if report.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(scan.ManifestPath), report.Err))
		}
	}
	return errors.Join(errs...)
}

// ---------------- empty-folders ----------------
var emptyFoldersAfterDeletion bool

var emptyFoldersCmd = &cobra.Command{
	Use:   "empty-folders",
	Short: "List folders that hold no files, deepest first",
	Long: `Lists folders without files in them or in any subfolder. Collections and Developers
folders are skipped, Developers content only counts when scanDevelopersContent is enabled.`,
	Example: "project-cleaner empty-folders -m assets.manifest.json --after-deletion",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := currentScanOptions()
		opts.AfterDeletion = emptyFoldersAfterDeletion
		scans, _, err := runManifestScans(cmd.Context(), opts)
		if err != nil {
			return err
		}
		for _, scan := range scans {
			fmt.Print(FormatEmptyFolders(scan.Result.EmptyFolders))
		}
		return nil
	},
}

// ---------------- circular ----------------
var circularCmd = &cobra.Command{
	Use:     "circular",
	Short:   "List assets that reference their own dependencies",
	Example: "project-cleaner circular -m assets.manifest.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		circularCount, err := runCircularCommand(cmd.Context(), os.Stdout, currentScanOptions())
		if err != nil {
			return err
		}
		if !cleanerZeroExit && circularCount > 0 {
			os.Exit(exitCode(circularCount))
		}
		return nil
	},
}

func runCircularCommand(ctx context.Context, w io.Writer, opts scanCommandOptions) (int, error) {
	scans, _, err := runManifestScans(ctx, opts)
	if err != nil {
		return 0, err
	}
	circularCount := 0
	for _, scan := range scans {
		fmt.Fprint(w, FormatCircularAssets(scan.Result.Graph, scan.Result.Circular, scan.Result.Unused))
		circularCount += scan.Result.Circular.Len()
	}
	return circularCount, nil
}

// ---------------- graph ----------------
var graphOutputFile string

var graphCmd = &cobra.Command{
	Use:     "graph",
	Short:   "Export the asset graph in graphviz DOT format",
	Long:    `Exports assets and their dependencies, coloured by the reason they are kept. Unused assets are red.`,
	Example: "project-cleaner graph -m assets.manifest.json -o assets.dot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGraphCommand(cmd.Context(), os.Stdout, currentScanOptions(), graphOutputFile)
	},
}

// runGraphCommand writes DOT graphs to outputFile, or to w when outputFile is empty
func runGraphCommand(ctx context.Context, w io.Writer, opts scanCommandOptions, outputFile string) error {
	scans, _, err := runManifestScans(ctx, opts)
	if err != nil {
		return err
	}
	if outputFile == "" {
		return writeGraphs(w, scans)
	}

	file, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	if err := writeGraphs(file, scans); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write '%s': %w", outputFile, err)
	}
	return nil
}

func writeGraphs(w io.Writer, scans []manifestScan) error {
	for _, scan := range scans {
		if err := WriteDOT(w, scan.Result); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs to stderr")

	for _, command := range []*cobra.Command{scanCmd, planCmd, cleanCmd, emptyFoldersCmd, circularCmd, graphCmd} {
		addScanFlags(command)
	}

	// scan flags
	scanCmd.Flags().StringVarP(&cleanerOutput, "output", "o", "text", "Output format: text, json or yaml")
	scanCmd.Flags().BoolVar(&cleanerListAll, "list-all", false, "List all items instead of limiting output")
	scanCmd.Flags().BoolVar(&cleanerZeroExit, "zero-exit-code", false, "Use this flag to always return zero exit code")
	scanCmd.Flags().BoolVarP(&scanWatch, "watch", "w", false, "Scan again whenever the manifest or config changes")

	// clean flags
	cleanCmd.Flags().StringVar(&cleanContentDir, "content-dir", "", "Content directory holding asset files (default: ./Content)")
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", true, "Only report what would be deleted")
	cleanCmd.Flags().BoolVar(&cleanDeleteEmptyFolders, "delete-empty-folders", false, "Delete folders left empty after assets are deleted")

	emptyFoldersCmd.Flags().BoolVar(&emptyFoldersAfterDeletion, "after-deletion", false, "Treat unused assets as already deleted")

	circularCmd.Flags().BoolVar(&cleanerZeroExit, "zero-exit-code", false, "Use this flag to always return zero exit code")

	graphCmd.Flags().StringVarP(&graphOutputFile, "output-file", "o", "", "Write DOT output to a file instead of stdout")

	rootCmd.AddCommand(scanCmd, planCmd, cleanCmd, emptyFoldersCmd, circularCmd, graphCmd, configCmd, docsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
