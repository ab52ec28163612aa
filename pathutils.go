package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePathForInternal converts an OS path into the forward slash form used for
// manifest paths and text sources.
// Examples:
// - "C:\\project\\Source\\Hud.cpp" -> "C:/project/Source/Hud.cpp"
// - "./a/../b/" -> "b"
func NormalizePathForInternal(p string) string {
	if runtime.GOOS != "windows" {
		return p
	}
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(filepath.Clean(p))
	if len(s) > 1 && strings.HasSuffix(s, "/") {
		s = strings.TrimRight(s, "/")
	}
	return s
}

// DenormalizePathForOS converts an internal forward-slash path back to the
// OS-native representation for os.* calls.
func DenormalizePathForOS(internal string) string {
	if runtime.GOOS != "windows" {
		return internal
	}
	if internal == "" {
		return ""
	}
	return filepath.FromSlash(internal)
}

func ResolveAbsoluteCwd(cwd string) string {
	if filepath.IsAbs(cwd) {
		return cwd
	}
	binaryExecDir, _ := os.Getwd()
	return filepath.Join(binaryExecDir, cwd)
}

// AssetRelativePath strips the namespace root from an asset id or folder,
// "/Game/Props/Chair" in "/Game" becomes "Props/Chair".
func AssetRelativePath(namespace string, id string) string {
	namespace = strings.TrimSuffix(namespace, "/")
	if namespace != "" && (id == namespace || strings.HasPrefix(id, namespace+"/")) {
		return strings.TrimPrefix(strings.TrimPrefix(id, namespace), "/")
	}
	return strings.TrimPrefix(id, "/")
}

// ContentPath maps an asset id or folder onto a path below contentDir
func ContentPath(contentDir string, namespace string, id string) string {
	relative := AssetRelativePath(namespace, id)
	if relative == "" {
		return contentDir
	}
	return filepath.Join(contentDir, DenormalizePathForOS(relative))
}
