package main

import (
	"testing"
)

func TestRemoveCommentsFromCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no comments",
			input:    "static ConstructorHelpers::FObjectFinder<UTexture2D> Icon(TEXT(\"/Game/UI/T_Icon\"));",
			expected: "static ConstructorHelpers::FObjectFinder<UTexture2D> Icon(TEXT(\"/Game/UI/T_Icon\"));",
		},
		{
			name:     "single line comments",
			input:    "// This is a comment /Game/Old/A\nconst FString Path = TEXT(\"/Game/A\"); // inline /Game/Old/B",
			expected: "\nconst FString Path = TEXT(\"/Game/A\"); ",
		},
		{
			name:     "multi-line comments keep line count",
			input:    "Load();/* old\n /Game/Old/A */\nInit();",
			expected: "Load();\n\nInit();",
		},
		{
			name:     "comments in strings",
			input:    "auto a = \"// not a comment\";\nchar c = '\"';\nauto b = \"/* not a comment */\";",
			expected: "auto a = \"// not a comment\";\nchar c = '\"';\nauto b = \"/* not a comment */\";",
		},
		{
			name:     "escaped quote in string",
			input:    "auto a = \"a\\\"// b\";",
			expected: "auto a = \"a\\\"// b\";",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RemoveCommentsFromCode([]byte(tt.input))
			if string(result) != tt.expected {
				t.Errorf("RemoveCommentsFromCode() = %v, want %v", string(result), tt.expected)
			}
		})
	}
}

func TestRemoveIniComments(t *testing.T) {
	input := "; comment /Game/A\nKey=/Game/B\n  # other /Game/C"
	expected := "\nKey=/Game/B\n"

	result := RemoveIniComments([]byte(input))
	if string(result) != expected {
		t.Errorf("RemoveIniComments() = %q, want %q", string(result), expected)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", ' ', 4); got != "ab  " {
		t.Errorf("PadRight() = %q, want %q", got, "ab  ")
	}
	if got := PadRight("abcdef", ' ', 4); got != "abcdef" {
		t.Errorf("PadRight() = %q, want %q", got, "abcdef")
	}
}

func TestGetSortedMap(t *testing.T) {
	counts := map[AssetCategory]int{CategoryPrimary: 2, CategoryBlacklisted: 1, CategoryPlain: 5}

	sorted := GetSortedMap(counts)

	expectedKeys := []AssetCategory{CategoryBlacklisted, CategoryPlain, CategoryPrimary}
	if len(sorted) != len(expectedKeys) {
		t.Fatalf("Expected %d entries, got %d", len(expectedKeys), len(sorted))
	}
	for i, key := range expectedKeys {
		if sorted[i].k != key {
			t.Errorf("Entry %d: expected %s, got %s", i, key, sorted[i].k)
		}
	}
	if sorted[1].v != 5 {
		t.Errorf("Expected Plain count 5, got %d", sorted[1].v)
	}
}
