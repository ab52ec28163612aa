package main

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

type GlobMatcher struct {
	globPattern                        glob.Glob
	inputString                        string
	shouldMatchAnyFileOrDirWithPattern bool
	patternRoot                        string
	isAdditional                       bool
}

// CreateGlobMatchers compiles patterns relative to patternsRoot (eg. "/Game").
// Invalid patterns are skipped, use ValidateGlobPatterns to report them.
func CreateGlobMatchers(patterns []string, patternsRoot string) []GlobMatcher {
	globMatchers := []GlobMatcher{}
	patternRootNorm := patternsRoot
	if patternRootNorm != "" && !strings.HasSuffix(patternRootNorm, "/") {
		patternRootNorm = patternRootNorm + "/"
	}

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		// entries without `/` or `*` are plain names, they match any asset or folder with that exact name (like .gitignore)
		shouldMatchAnyFileOrDirWithPattern := !strings.Contains(pattern, "/") && !strings.Contains(pattern, "*")

		if strings.HasSuffix(pattern, "/") && !strings.Contains(pattern, "*") {
			// entry with `/` suffix matches whole folder recursively
			pattern = "**" + pattern + "**"
		}

		compiled, err := glob.Compile(pattern)
		if err != nil {
			continue
		}

		globMatchers = append(globMatchers, GlobMatcher{
			globPattern:                        compiled,
			inputString:                        pattern,
			patternRoot:                        patternRootNorm,
			shouldMatchAnyFileOrDirWithPattern: shouldMatchAnyFileOrDirWithPattern,
			isAdditional:                       false,
		})
		// `**/x` has to match `x` placed directly in the root too
		if strings.HasPrefix(pattern, "**/") {
			additionalPattern := strings.Replace(pattern, "**/", "", 1)
			if additional, err := glob.Compile(additionalPattern); err == nil {
				globMatchers = append(globMatchers, GlobMatcher{
					globPattern:                        additional,
					inputString:                        additionalPattern,
					patternRoot:                        patternRootNorm,
					shouldMatchAnyFileOrDirWithPattern: false,
					isAdditional:                       true,
				})
			}
		}
	}
	return globMatchers
}

// ValidateGlobPatterns returns the first pattern that can't be compiled
func ValidateGlobPatterns(patterns []string) error {
	for i, pattern := range patterns {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("[%d] '%s': %w", i, pattern, err)
		}
	}
	return nil
}

func MatchesAnyGlobMatcher(assetPath string, matchers []GlobMatcher, debug bool) bool {
	for _, matcher := range matchers {
		pathWithoutPrefix := strings.TrimPrefix(assetPath, matcher.patternRoot)
		if debug {
			fmt.Println("Matcher", matcher.globPattern, matcher.inputString, matcher.patternRoot, matcher.shouldMatchAnyFileOrDirWithPattern, matcher.isAdditional)
			fmt.Println("Input", pathWithoutPrefix, assetPath)
		}
		if matcher.globPattern.Match(pathWithoutPrefix) {
			return true
		}
		if matcher.shouldMatchAnyFileOrDirWithPattern && strings.HasSuffix(pathWithoutPrefix, "/"+matcher.inputString) {
			// asset or folder named exactly as the pattern
			return true
		}
		if matcher.shouldMatchAnyFileOrDirWithPattern && (strings.Contains(pathWithoutPrefix, "/"+matcher.inputString+"/") || strings.HasPrefix(pathWithoutPrefix, matcher.inputString+"/")) {
			// anything inside a folder named exactly as the pattern
			return true
		}
	}
	return false
}
