// Package project holds project-level identity helpers: config discovery,
// content digests and the root-relative module ids used across a build.
package project

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ToUnixPath replaces every backslash with a forward slash, so Windows style
// paths join and compare the same way as POSIX ones.
func ToUnixPath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// Join normalizes both inputs to forward slashes and joins them as one
// cleaned path. An absolute spec ignores base.
func Join(base, spec string) string {
	base = ToUnixPath(base)
	spec = ToUnixPath(spec)
	if path.IsAbs(spec) {
		return path.Clean(spec)
	}
	return path.Join(base, spec)
}

// ModuleID returns the "./"-prefixed, forward-slash path of abs relative to
// root. The file name is kept byte for byte: on Linux "café" in NFC and NFD
// are two different files and get two different ids.
func ModuleID(root, abs string) string {
	root = path.Clean(ToUnixPath(root))
	abs = path.Clean(ToUnixPath(abs))
	return "./" + relPath(root, abs)
}

// SpellingKey folds id to Unicode NFC. Two ids with the same key name the
// same file on normalizing filesystems (macOS) and distinct files elsewhere.
func SpellingKey(id string) string {
	return norm.NFC.String(id)
}

// relPath is path.Rel for slash paths; it climbs with ".." when abs is not
// under root.
func relPath(root, abs string) string {
	if root == abs {
		return "."
	}
	if root == "/" {
		return strings.TrimPrefix(abs, "/")
	}
	if strings.HasPrefix(abs, root+"/") {
		return abs[len(root)+1:]
	}
	rootParts := splitPath(root)
	absParts := splitPath(abs)
	common := 0
	for common < len(rootParts) && common < len(absParts) && rootParts[common] == absParts[common] {
		common++
	}
	parts := make([]string, 0, len(rootParts)-common+len(absParts)-common)
	for i := common; i < len(rootParts); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, absParts[common:]...)
	return strings.Join(parts, "/")
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
