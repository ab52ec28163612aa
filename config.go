package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/jsonc"
)

// ProjectCleanerConfig decides which assets count as used and which paths are never reported
type ProjectCleanerConfig struct {
	Schema        string `json:"$schema,omitempty"`
	ConfigVersion string `json:"configVersion"`
	Namespace     string `json:"namespace,omitempty"`
	// classes of assets that are roots of the project (maps, primary data assets)
	PrimaryClasses []string `json:"primaryClasses,omitempty"`
	// editor only classes, their usage can't be traced through references
	BlacklistedClasses    []string `json:"blacklistedClasses,omitempty"`
	ExcludedClasses       []string `json:"excludedClasses,omitempty"`
	ExcludedPaths         []string `json:"excludedPaths,omitempty"`
	ExcludedAssets        []string `json:"excludedAssets,omitempty"`
	IgnorePaths           []string `json:"ignorePaths,omitempty"`
	IgnoredFolders        []string `json:"ignoredFolders,omitempty"`
	ScanDevelopersContent bool     `json:"scanDevelopersContent,omitempty"`
	DeveloperName         string   `json:"developerName,omitempty"`
	// asset paths mentioned only in comments of text sources don't keep assets alive
	SkipCommentedReferences bool `json:"skipCommentedReferences,omitempty"`
}

const currentConfigVersion = "1.0"

var supportedConfigVersions = ">= 1.0, < 2.0"

var configFileNames = []string{
	"project-cleaner.config.json",
	".project-cleaner.config.json",
	"project-cleaner.config.jsonc",
	".project-cleaner.config.jsonc",
}

var ErrConfigNotFound = errors.New("config file not found")

func DefaultConfig() ProjectCleanerConfig {
	return ProjectCleanerConfig{
		ConfigVersion:      currentConfigVersion,
		Namespace:          defaultNamespace,
		PrimaryClasses:     []string{"World"},
		BlacklistedClasses: []string{"EditorUtilityWidget", "EditorUtilityBlueprint", "EditorUtilityWidgetBlueprint", "MapBuildDataRegistry"},
		ExcludedClasses:    []string{},
		ExcludedPaths:      []string{},
		ExcludedAssets:     []string{},
		IgnorePaths:        []string{"MSPresets/"},
		IgnoredFolders:     []string{},
	}
}

// FindConfigFile returns the first known config file name present in dir
func FindConfigFile(dir string) (string, error) {
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w in '%s'", ErrConfigNotFound, dir)
}

// LoadConfig loads the config from a file path or from a directory holding one of the known config files.
func LoadConfig(configPath string) (ProjectCleanerConfig, error) {
	fileInfo, err := os.Stat(configPath)
	if err != nil {
		return ProjectCleanerConfig{}, err
	}

	actualPath := configPath
	if fileInfo.IsDir() {
		actualPath, err = FindConfigFile(configPath)
		if err != nil {
			return ProjectCleanerConfig{}, err
		}
	}

	content, err := os.ReadFile(actualPath)
	if err != nil {
		return ProjectCleanerConfig{}, err
	}

	config, err := ParseConfig(content)
	if err != nil {
		return ProjectCleanerConfig{}, fmt.Errorf("%s: %w", filepath.Base(actualPath), err)
	}
	return config, nil
}

// LoadConfigOrDefault loads config from cwd (or explicit path), falling back to defaults when none exists
func LoadConfigOrDefault(cwd string, configPath string) (ProjectCleanerConfig, error) {
	if configPath != "" {
		if !filepath.IsAbs(configPath) {
			configPath = filepath.Join(cwd, configPath)
		}
		return LoadConfig(configPath)
	}
	config, err := LoadConfig(cwd)
	if errors.Is(err, ErrConfigNotFound) {
		return DefaultConfig(), nil
	}
	return config, err
}

// ParseConfig parses JSONC config content, fills in defaults for omitted lists and validates it
func ParseConfig(content []byte) (ProjectCleanerConfig, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(content), &raw); err != nil {
		return ProjectCleanerConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(jsonc.ToJSON(content), &config); err != nil {
		return ProjectCleanerConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if _, ok := raw["configVersion"]; !ok || config.ConfigVersion == "" {
		return ProjectCleanerConfig{}, errors.New("configVersion is required")
	}

	if err := validateConfigVersion(config.ConfigVersion); err != nil {
		return ProjectCleanerConfig{}, err
	}
	if err := ValidateConfig(config); err != nil {
		return ProjectCleanerConfig{}, err
	}

	config.Namespace = strings.TrimSuffix(config.Namespace, "/")
	return config, nil
}

func validateConfigVersion(version string) error {
	constraint, err := semver.NewConstraint(supportedConfigVersions)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid configVersion '%s': %w", version, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("unsupported configVersion '%s', supported versions: %s", version, supportedConfigVersions)
	}
	return nil
}

func ValidateConfig(config ProjectCleanerConfig) error {
	if config.Namespace != "" && !strings.HasPrefix(config.Namespace, "/") {
		return fmt.Errorf("namespace '%s' has to start with '/'", config.Namespace)
	}

	patternLists := []struct {
		field    string
		patterns []string
	}{
		{"excludedPaths", config.ExcludedPaths},
		{"ignorePaths", config.IgnorePaths},
		{"ignoredFolders", config.IgnoredFolders},
	}
	for _, list := range patternLists {
		for i, pattern := range list.patterns {
			if err := validatePattern(pattern); err != nil {
				return fmt.Errorf("%s[%d]: %w", list.field, i, err)
			}
		}
		if err := ValidateGlobPatterns(list.patterns); err != nil {
			return fmt.Errorf("%s%w", list.field, err)
		}
	}

	for i, asset := range config.ExcludedAssets {
		if !strings.HasPrefix(asset, "/") {
			return fmt.Errorf("excludedAssets[%d]: asset '%s' has to be an absolute asset path", i, asset)
		}
	}

	if strings.ContainsAny(config.DeveloperName, `/\`) {
		return fmt.Errorf("developerName '%s' can't contain path separators", config.DeveloperName)
	}

	return nil
}

func validatePattern(pattern string) error {
	if len(pattern) >= 2 && pattern[0] == '.' && (pattern[1] == '/' || pattern[1] == '\\') {
		return fmt.Errorf("pattern '%s' starts with './' or '.\\', which is not allowed. Use paths relative to the namespace root", pattern)
	}
	if len(pattern) >= 3 && pattern[0] == '.' && pattern[1] == '.' && (pattern[2] == '/' || pattern[2] == '\\') {
		return fmt.Errorf("pattern '%s' starts with '../' or '..\\', which is not allowed. Use paths relative to the namespace root", pattern)
	}
	return nil
}

// initConfigFileCore writes the default config into cwd. It fails when any config file already exists.
func initConfigFileCore(cwd string) (string, error) {
	if existing, err := FindConfigFile(cwd); err == nil {
		return "", fmt.Errorf("config file already exists: %s", existing)
	}

	content, err := json.MarshalIndent(DefaultConfig(), "", "  ")
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(cwd, configFileNames[0])
	if err := os.WriteFile(configPath, append(content, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return configPath, nil
}
