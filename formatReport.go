package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

const defaultListLimit = 5

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	dimmed = color.New(color.Faint).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func okMark() string   { return green("✅") }
func failMark() string { return red("❌") }

// ScanReport is the serializable form of a scan result
type ScanReport struct {
	ScanID             string                `json:"scanId" yaml:"scanId"`
	Namespace          string                `json:"namespace" yaml:"namespace"`
	TotalAssets        int                   `json:"totalAssets" yaml:"totalAssets"`
	DurationMs         int64                 `json:"durationMs" yaml:"durationMs"`
	UsedByCategory     map[AssetCategory]int `json:"usedByCategory" yaml:"usedByCategory"`
	Unused             []AssetId             `json:"unused" yaml:"unused"`
	Ignored            []AssetId             `json:"ignored" yaml:"ignored"`
	Circular           []AssetId             `json:"circular" yaml:"circular"`
	IndirectReferences []IndirectReference   `json:"indirectReferences" yaml:"indirectReferences"`
	Plan               []DeletionBatch       `json:"plan" yaml:"plan"`
	EmptyFolders       []string              `json:"emptyFolders" yaml:"emptyFolders"`
	CorruptedFiles     []string              `json:"corruptedFiles" yaml:"corruptedFiles"`
	NonEngineFiles     []string              `json:"nonEngineFiles" yaml:"nonEngineFiles"`
}

func NewScanReport(result *ScanResult) ScanReport {
	report := ScanReport{
		ScanID:             result.ScanID.String(),
		Namespace:          result.Namespace,
		DurationMs:         result.Duration.Milliseconds(),
		UsedByCategory:     map[AssetCategory]int{},
		Unused:             result.Unused.Sorted(),
		Ignored:            result.Ignored.Sorted(),
		Circular:           result.Circular.Sorted(),
		IndirectReferences: []IndirectReference{},
		Plan:               result.Plan,
		EmptyFolders:       SortFoldersDeepestFirst(result.EmptyFolders),
		CorruptedFiles:     result.Files.Corrupted,
		NonEngineFiles:     result.Files.NonEngine,
	}
	if report.CorruptedFiles == nil {
		report.CorruptedFiles = []string{}
	}
	if report.NonEngineFiles == nil {
		report.NonEngineFiles = []string{}
	}
	if result.Graph != nil {
		report.TotalAssets = result.Graph.Len()
	}
	if result.Usage != nil {
		report.UsedByCategory = result.Usage.CountByCategory()
		for _, id := range result.Usage.UsedClosure.Sorted() {
			report.IndirectReferences = append(report.IndirectReferences, result.Usage.IndirectReferences[id]...)
		}
	}
	return report
}

func limitItems[T any](items []T, max int, listAll bool) ([]T, int) {
	if listAll || len(items) <= max {
		return items, 0
	}
	return items[:max], len(items) - max
}

// WriteScanReport writes result in one of the output formats: text, json or yaml
func WriteScanReport(w io.Writer, result *ScanResult, format string, listAll bool) error {
	switch format {
	case "", "text":
		_, err := io.WriteString(w, FormatScanReport(result, listAll))
		return err
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(NewScanReport(result))
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(NewScanReport(result))
	default:
		return fmt.Errorf("unknown output format '%s', use text, json or yaml", format)
	}
}

func FormatScanReport(result *ScanResult, listAll bool) string {
	var b strings.Builder
	report := NewScanReport(result)

	fmt.Fprintf(&b, "\n📁 %s %s\n", bold(report.Namespace), dimmed(fmt.Sprintf("(%d assets, scan %s, %dms)", report.TotalAssets, report.ScanID, report.DurationMs)))

	if len(report.UsedByCategory) > 0 {
		fmt.Fprintf(&b, "  Used assets:\n")
		for _, entry := range GetSortedMap(report.UsedByCategory) {
			fmt.Fprintf(&b, "    %s %d\n", PadRight(string(entry.k), ' ', 22), entry.v)
		}
	}

	writeList(&b, "Unused Assets", report.Unused, listAll)

	if len(report.Ignored) > 0 {
		fmt.Fprintf(&b, "  ⚠️  Ignored Unused Assets (%d)\n", len(report.Ignored))
	}

	writeList(&b, "Circular Assets", report.Circular, listAll)
	writeList(&b, "Empty Folders", report.EmptyFolders, listAll)
	writeList(&b, "Corrupted Files", report.CorruptedFiles, listAll)
	writeList(&b, "Non-Engine Files", report.NonEngineFiles, listAll)

	if len(report.Unused) == 0 && len(report.EmptyFolders) == 0 {
		fmt.Fprintf(&b, "\n%s Nothing to clean up!\n", okMark())
	} else {
		fmt.Fprintf(&b, "\n%s Found %d unused assets and %d empty folders.\n", failMark(), len(report.Unused), len(report.EmptyFolders))
	}
	return b.String()
}

func writeList[T ~string](b *strings.Builder, title string, items []T, listAll bool) {
	if len(items) == 0 {
		fmt.Fprintf(b, "  %s %s\n", okMark(), title)
		return
	}
	fmt.Fprintf(b, "  %s %s (%d):\n", failMark(), title, len(items))
	toDisplay, remaining := limitItems(items, defaultListLimit, listAll)
	for _, item := range toDisplay {
		fmt.Fprintf(b, "    - %s\n", item)
	}
	if remaining > 0 {
		fmt.Fprintf(b, "    ... and %d more\n", remaining)
	}
}

// FormatDeletionPlan lists batches in execution order, forced batches are marked
func FormatDeletionPlan(plan []DeletionBatch, cycles [][]AssetId) string {
	if len(plan) == 0 {
		return fmt.Sprintf("No unused assets to delete! %s\n", okMark())
	}

	var b strings.Builder
	total := len(FlattenDeletionPlan(plan))
	fmt.Fprintf(&b, "Deletion plan: %d assets in %d batches\n\n", total, len(plan))
	for i, batch := range plan {
		if batch.Forced {
			fmt.Fprintf(&b, "Batch %d (forced, breaks a reference cycle):\n", i+1)
		} else {
			fmt.Fprintf(&b, "Batch %d (%d assets):\n", i+1, len(batch.Assets))
		}
		for _, id := range batch.Assets {
			fmt.Fprintf(&b, " ➞ %s\n", id)
		}
		fmt.Fprintln(&b)
	}

	if len(cycles) > 0 {
		fmt.Fprintf(&b, "Reference cycles among unused assets (%d):\n", len(cycles))
		for i, cycle := range cycles {
			fmt.Fprintf(&b, "Cycle %d:\n", i+1)
			for depth, id := range cycle {
				fmt.Fprintf(&b, "%s ➞ %s\n", strings.Repeat(" ", depth), id)
			}
		}
	}
	return b.String()
}

func FormatEmptyFolders(folders map[string]bool) string {
	if len(folders) == 0 {
		return fmt.Sprintf("No empty folders found! %s\n", okMark())
	}
	var b strings.Builder
	for _, folder := range SortFoldersDeepestFirst(folders) {
		fmt.Fprintln(&b, folder)
	}
	return b.String()
}

func FormatDeletionReport(report DeletionReport, foldersDeleted int, bytesFreed int64, dryRun bool) string {
	var b strings.Builder
	verb := "Deleted"
	if dryRun {
		verb = "Would delete"
	}
	fmt.Fprintf(&b, "%s %d assets in %d batches", verb, report.Deleted, report.BatchesExecuted)
	if bytesFreed > 0 {
		fmt.Fprintf(&b, " (%s freed)", formatSize(bytesFreed))
	}
	fmt.Fprintln(&b)
	if foldersDeleted > 0 {
		fmt.Fprintf(&b, "%s %d empty folders\n", verb, foldersDeleted)
	}
	if report.Err != nil {
		fmt.Fprintf(&b, "%s Stopped: %v\n", failMark(), report.Err)
	} else {
		fmt.Fprintf(&b, "%s Done\n", okMark())
	}
	return b.String()
}
