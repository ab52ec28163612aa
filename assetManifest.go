package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ManifestAsset is one asset exported from the editor asset registry
type ManifestAsset struct {
	ID    AssetId `json:"id" yaml:"id" toml:"id" validate:"required,startswith=/"`
	Class string  `json:"class,omitempty" yaml:"class,omitempty" toml:"class,omitempty"`
	// class generated by a blueprint asset, checked against primary classes too
	GeneratedClass string    `json:"generatedClass,omitempty" yaml:"generatedClass,omitempty" toml:"generatedClass,omitempty"`
	Dependencies   []AssetId `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies,omitempty" validate:"dive,required"`
	Referencers    []AssetId `json:"referencers,omitempty" yaml:"referencers,omitempty" toml:"referencers,omitempty" validate:"dive,required"`
}

// AssetManifest is a snapshot of a content tree: assets with their edges, plain files, folders
// and hints about references made from source code or config files.
type AssetManifest struct {
	Namespace          string              `json:"namespace,omitempty" yaml:"namespace,omitempty" toml:"namespace,omitempty" validate:"omitempty,startswith=/"`
	Assets             []ManifestAsset     `json:"assets" yaml:"assets" toml:"assets" validate:"dive"`
	Files              []string            `json:"files,omitempty" yaml:"files,omitempty" toml:"files,omitempty" validate:"dive,startswith=/"`
	Folders            []string            `json:"folders,omitempty" yaml:"folders,omitempty" toml:"folders,omitempty" validate:"dive,startswith=/"`
	IndirectReferences []IndirectReference `json:"indirectReferences,omitempty" yaml:"indirectReferences,omitempty" toml:"indirectReferences,omitempty"`
	TextSources        []string            `json:"textSources,omitempty" yaml:"textSources,omitempty" toml:"textSources,omitempty" validate:"dive,required"`
}

var ErrDuplicatedAsset = errors.New("duplicated asset id")

var manifestValidator = newManifestValidator()

// newManifestValidator reports fields by their json names, eg. "assets[0].id"
func newManifestValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// LoadAssetManifest reads a manifest file. The format follows the extension:
// .yaml/.yml, .toml, anything else is parsed as JSON with comments.
func LoadAssetManifest(manifestPath string) (*AssetManifest, error) {
	content, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, err
	}
	manifest, err := ParseAssetManifest(content, filepath.Ext(manifestPath))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(manifestPath), err)
	}
	return manifest, nil
}

func ParseAssetManifest(content []byte, ext string) (*AssetManifest, error) {
	manifest := &AssetManifest{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, manifest); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(content, manifest); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(content), manifest); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}
	}

	if err := validateManifest(manifest); err != nil {
		return nil, err
	}
	manifest.Namespace = strings.TrimSuffix(manifest.Namespace, "/")
	return manifest, nil
}

func validateManifest(manifest *AssetManifest) error {
	if err := manifestValidator.Struct(manifest); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fieldErr := validationErrors[0]
			return fmt.Errorf("%s: failed on '%s' rule (value: '%v')",
				strings.TrimPrefix(fieldErr.Namespace(), "AssetManifest."), fieldErr.Tag(), fieldErr.Value())
		}
		return err
	}

	seen := make(map[AssetId]int, len(manifest.Assets))
	for i, asset := range manifest.Assets {
		if first, ok := seen[asset.ID]; ok {
			return fmt.Errorf("assets[%d].id: %w '%s' (first defined at assets[%d])", i, ErrDuplicatedAsset, asset.ID, first)
		}
		seen[asset.ID] = i
	}
	for i, ref := range manifest.IndirectReferences {
		if !strings.HasPrefix(string(ref.ID), "/") {
			return fmt.Errorf("indirectReferences[%d].id: asset '%s' has to be an absolute asset path", i, ref.ID)
		}
	}
	return nil
}

// ManifestSource feeds a manifest into a scan. It enumerates assets and derives usage signals
// from the config; it also provides the folder tree for the empty folder search.
type ManifestSource struct {
	manifest  *AssetManifest
	config    ProjectCleanerConfig
	namespace string
	// text sources are resolved relative to this directory
	baseDir string
}

// NewManifestSource picks the namespace from namespaceOverride, the manifest, the config,
// and falls back to "/Game", in that order.
func NewManifestSource(manifest *AssetManifest, config ProjectCleanerConfig, baseDir string, namespaceOverride string) *ManifestSource {
	namespace := defaultNamespace
	for _, candidate := range []string{namespaceOverride, manifest.Namespace, config.Namespace} {
		if candidate != "" {
			namespace = strings.TrimSuffix(candidate, "/")
			break
		}
	}
	return &ManifestSource{
		manifest:  manifest,
		config:    config,
		namespace: namespace,
		baseDir:   baseDir,
	}
}

func (m *ManifestSource) Namespace() string {
	return m.namespace
}

func (m *ManifestSource) Assets() []AssetRecord {
	records := make([]AssetRecord, 0, len(m.manifest.Assets))
	for _, asset := range m.manifest.Assets {
		records = append(records, AssetRecord{
			ID:           asset.ID,
			Dependencies: asset.Dependencies,
			Referencers:  asset.Referencers,
		})
	}
	return records
}

func (m *ManifestSource) Signals(graph *AssetGraph) (UsageSignals, error) {
	signals := UsageSignals{
		Primary:              AssetSet{},
		ExternallyReferenced: AssetSet{},
		UserExcluded:         AssetSet{},
		ExcludedByPath:       AssetSet{},
		ExcludedByClass:      AssetSet{},
		Blacklisted:          AssetSet{},
	}

	excludedPathMatchers := CreateGlobMatchers(m.config.ExcludedPaths, m.namespace)

	for _, asset := range m.manifest.Assets {
		if !graph.Has(asset.ID) {
			continue
		}
		if slices.Contains(m.config.PrimaryClasses, asset.Class) ||
			(asset.GeneratedClass != "" && slices.Contains(m.config.PrimaryClasses, asset.GeneratedClass)) {
			signals.Primary.Add(asset.ID)
		}
		if slices.Contains(m.config.BlacklistedClasses, asset.Class) {
			signals.Blacklisted.Add(asset.ID)
		}
		if slices.Contains(m.config.ExcludedClasses, asset.Class) {
			signals.ExcludedByClass.Add(asset.ID)
		}
		if len(excludedPathMatchers) > 0 && MatchesAnyGlobMatcher(string(asset.ID), excludedPathMatchers, false) {
			signals.ExcludedByPath.Add(asset.ID)
		}
		if graph.HasExternalReferencer(asset.ID) {
			signals.ExternallyReferenced.Add(asset.ID)
		}
	}

	for _, excluded := range m.config.ExcludedAssets {
		signals.UserExcluded.Add(AssetId(strings.TrimSuffix(excluded, "/")))
	}

	textRefs, err := ReadIndirectReferences(m.baseDir, m.manifest.TextSources, m.namespace, m.config.SkipCommentedReferences)
	if err != nil {
		return signals, err
	}
	allRefs := append(slices.Clone(m.manifest.IndirectReferences), textRefs...)
	signals.Indirect = ResolveIndirectReferences(graph, allRefs)

	log.Debug().
		Int("primary", signals.Primary.Len()).
		Int("blacklisted", signals.Blacklisted.Len()).
		Int("indirect", len(signals.Indirect)).
		Int("externallyReferenced", signals.ExternallyReferenced.Len()).
		Msg("usage signals collected")

	return signals, nil
}

// ContentFiles returns the plain files listed in the manifest
func (m *ManifestSource) ContentFiles() []string {
	return m.manifest.Files
}

// FolderTree builds the content tree out of asset ids, plain files and listed folders.
// Assets in removed are left out, as if they were already deleted.
func (m *ManifestSource) FolderTree(removed AssetSet) *FolderNode {
	files := make([]string, 0, len(m.manifest.Assets)+len(m.manifest.Files))
	for _, asset := range m.manifest.Assets {
		if removed.Has(asset.ID) {
			continue
		}
		files = append(files, string(asset.ID))
	}
	files = append(files, m.manifest.Files...)
	return BuildFolderTree(m.namespace, files, m.manifest.Folders)
}
