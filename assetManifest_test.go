package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const jsonManifest = `{
	// exported from the editor
	"namespace": "/Game",
	"assets": [
		{"id": "/Game/Maps/Main", "class": "World", "dependencies": ["/Game/Props/Chair"]},
		{"id": "/Game/Props/Chair", "class": "StaticMesh", "referencers": ["/OtherPlugin/Maps/Demo"]},
		{"id": "/Game/Props/Old", "class": "StaticMesh"},
	],
	"folders": ["/Game/Empty"],
}`

const yamlManifest = `namespace: /Game
assets:
  - id: /Game/Maps/Main
    class: World
    dependencies: [/Game/Props/Chair]
  - id: /Game/Props/Chair
    class: StaticMesh
    referencers: [/OtherPlugin/Maps/Demo]
  - id: /Game/Props/Old
    class: StaticMesh
folders: [/Game/Empty]
`

const tomlManifest = `namespace = "/Game"
folders = ["/Game/Empty"]

[[assets]]
id = "/Game/Maps/Main"
class = "World"
dependencies = ["/Game/Props/Chair"]

[[assets]]
id = "/Game/Props/Chair"
class = "StaticMesh"
referencers = ["/OtherPlugin/Maps/Demo"]

[[assets]]
id = "/Game/Props/Old"
class = "StaticMesh"
`

func TestParseAssetManifest_Formats(t *testing.T) {
	expected := &AssetManifest{
		Namespace: "/Game",
		Assets: []ManifestAsset{
			{ID: "/Game/Maps/Main", Class: "World", Dependencies: []AssetId{"/Game/Props/Chair"}},
			{ID: "/Game/Props/Chair", Class: "StaticMesh", Referencers: []AssetId{"/OtherPlugin/Maps/Demo"}},
			{ID: "/Game/Props/Old", Class: "StaticMesh"},
		},
		Folders: []string{"/Game/Empty"},
	}

	tests := []struct {
		ext     string
		content string
	}{
		{".json", jsonManifest},
		{".jsonc", jsonManifest},
		{".yaml", yamlManifest},
		{".YML", yamlManifest},
		{".toml", tomlManifest},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			manifest, err := ParseAssetManifest([]byte(tt.content), tt.ext)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(manifest, expected) {
				t.Errorf("expected %+v, got %+v", expected, manifest)
			}
		})
	}
}

func TestParseAssetManifest_Validation(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		expectedError string
	}{
		{
			name:          "missing id",
			content:       `{"assets": [{"class": "World"}]}`,
			expectedError: "assets[0].id: failed on 'required' rule",
		},
		{
			name:          "relative id",
			content:       `{"assets": [{"id": "Maps/Main"}]}`,
			expectedError: "assets[0].id: failed on 'startswith' rule (value: 'Maps/Main')",
		},
		{
			name:          "empty dependency",
			content:       `{"assets": [{"id": "/Game/A", "dependencies": [""]}]}`,
			expectedError: "assets[0].dependencies[0]: failed on 'required' rule",
		},
		{
			name:          "relative namespace",
			content:       `{"namespace": "Game", "assets": []}`,
			expectedError: "namespace: failed on 'startswith' rule",
		},
		{
			name:          "duplicated asset",
			content:       `{"assets": [{"id": "/Game/A"}, {"id": "/Game/B"}, {"id": "/Game/A"}]}`,
			expectedError: "assets[2].id: duplicated asset id '/Game/A' (first defined at assets[0])",
		},
		{
			name:          "relative indirect reference",
			content:       `{"assets": [], "indirectReferences": [{"id": "UI/Hud", "file": "Hud.cpp", "line": 1}]}`,
			expectedError: "indirectReferences[0].id: asset 'UI/Hud' has to be an absolute asset path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAssetManifest([]byte(tt.content), ".json")
			if err == nil {
				t.Fatalf("expected error containing %q", tt.expectedError)
			}
			if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.expectedError)) {
				t.Errorf("expected error containing %q, got %q", tt.expectedError, err.Error())
			}
		})
	}
}

func TestParseAssetManifest_DuplicatedAssetIs(t *testing.T) {
	_, err := ParseAssetManifest([]byte(`{"assets": [{"id": "/Game/A"}, {"id": "/Game/A"}]}`), ".json")
	if !errors.Is(err, ErrDuplicatedAsset) {
		t.Errorf("expected ErrDuplicatedAsset, got %v", err)
	}
}

func TestLoadAssetManifest(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "assets.manifest.yaml")
	if err := os.WriteFile(manifestPath, []byte(yamlManifest), 0644); err != nil {
		t.Fatal(err)
	}

	manifest, err := LoadAssetManifest(manifestPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(manifest.Assets) != 3 {
		t.Errorf("expected 3 assets, got %d", len(manifest.Assets))
	}

	broken := filepath.Join(dir, "broken.manifest.json")
	if err := os.WriteFile(broken, []byte(`{"assets": [`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadAssetManifest(broken)
	if err == nil || !strings.HasPrefix(err.Error(), "broken.manifest.json: failed to parse manifest") {
		t.Errorf("expected parse error with file name, got %v", err)
	}
}

func TestNewManifestSource_Namespace(t *testing.T) {
	tests := []struct {
		name              string
		manifestNamespace string
		configNamespace   string
		override          string
		expected          string
	}{
		{"override wins", "/FromManifest", "/FromConfig", "/FromFlag/", "/FromFlag"},
		{"manifest before config", "/FromManifest", "/FromConfig", "", "/FromManifest"},
		{"config", "", "/FromConfig", "", "/FromConfig"},
		{"default", "", "", "", "/Game"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Namespace = tt.configNamespace
			source := NewManifestSource(&AssetManifest{Namespace: tt.manifestNamespace}, config, "", tt.override)
			if source.Namespace() != tt.expected {
				t.Errorf("expected namespace '%s', got '%s'", tt.expected, source.Namespace())
			}
		})
	}
}

func TestManifestSource_Signals(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Hud.cpp"), []byte("Load(TEXT(\"/Game/UI/Hud.Hud_C\"));\n// Load(\"/Game/UI/OldHud\");\n"), 0644); err != nil {
		t.Fatal(err)
	}

	manifest := &AssetManifest{
		Assets: []ManifestAsset{
			{ID: "/Game/Maps/Main", Class: "World"},
			{ID: "/Game/BP_GameMode", Class: "Blueprint", GeneratedClass: "GameModeBase"},
			{ID: "/Game/Tools/EUW_Tool", Class: "EditorUtilityWidgetBlueprint"},
			{ID: "/Game/Data/DT_Items", Class: "DataTable"},
			{ID: "/Game/Keep/Rock", Class: "StaticMesh"},
			{ID: "/Game/Props/Chair", Class: "StaticMesh", Referencers: []AssetId{"/OtherPlugin/Demo"}},
			{ID: "/Game/UI/Hud", Class: "WidgetBlueprint"},
			{ID: "/Game/UI/OldHud", Class: "WidgetBlueprint"},
			{ID: "/Game/Props/Old", Class: "StaticMesh"},
		},
		IndirectReferences: []IndirectReference{{ID: "/Game/Props/Old", File: "Config/DefaultGame.ini", Line: 4}},
		TextSources:        []string{"Hud.cpp"},
	}
	config := DefaultConfig()
	config.PrimaryClasses = append(config.PrimaryClasses, "GameModeBase")
	config.ExcludedClasses = []string{"DataTable"}
	config.ExcludedPaths = []string{"Keep/"}
	config.ExcludedAssets = []string{"/Game/Props/Lamp/"}
	config.SkipCommentedReferences = true

	source := NewManifestSource(manifest, config, dir, "")
	graph, err := BuildAssetGraph(source.Namespace(), source.Assets())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	signals, err := source.Signals(graph)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name     string
		got      AssetSet
		expected []AssetId
	}{
		{"primary", signals.Primary, []AssetId{"/Game/BP_GameMode", "/Game/Maps/Main"}},
		{"blacklisted", signals.Blacklisted, []AssetId{"/Game/Tools/EUW_Tool"}},
		{"excludedByClass", signals.ExcludedByClass, []AssetId{"/Game/Data/DT_Items"}},
		{"excludedByPath", signals.ExcludedByPath, []AssetId{"/Game/Keep/Rock"}},
		{"externallyReferenced", signals.ExternallyReferenced, []AssetId{"/Game/Props/Chair"}},
		{"userExcluded", signals.UserExcluded, []AssetId{"/Game/Props/Lamp"}},
		{"indirect", signals.IndirectIds(), []AssetId{"/Game/Props/Old", "/Game/UI/Hud"}},
	}
	for _, check := range checks {
		if got := check.got.Sorted(); !reflect.DeepEqual(got, check.expected) {
			t.Errorf("%s: expected %v, got %v", check.name, check.expected, got)
		}
	}
}

func TestManifestSource_FolderTree(t *testing.T) {
	manifest := &AssetManifest{
		Assets: []ManifestAsset{
			{ID: "/Game/Props/Chair"},
			{ID: "/Game/Old/Rock"},
		},
		Files:   []string{"/Game/Docs/readme.txt"},
		Folders: []string{"/Game/Empty"},
	}
	source := NewManifestSource(manifest, DefaultConfig(), "", "")

	before := FindEmptyFolders(source.FolderTree(AssetSet{}), "/Game", EmptyFolderOptions{})
	if !reflect.DeepEqual(before, map[string]bool{"/Game/Empty": true}) {
		t.Errorf("expected only /Game/Empty, got %v", before)
	}

	after := FindEmptyFolders(source.FolderTree(NewAssetSet("/Game/Old/Rock")), "/Game", EmptyFolderOptions{})
	if !reflect.DeepEqual(after, map[string]bool{"/Game/Empty": true, "/Game/Old": true}) {
		t.Errorf("expected /Game/Old to become empty, got %v", after)
	}
}
