// Where: internal/infra/staging/staging.go
// What: Filtered copy of a source tree into the staging directory.
// Why: The archive must contain exactly the files a deploy should ship.
package staging

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/skiffhq/skiff-cli/internal/infra/fileops"
	"github.com/skiffhq/skiff-cli/internal/meta"
)

// dependencyDir is dropped from the copy when a fresh install will run
// inside the staging directory.
const dependencyDir = "node_modules"

// builtinExcludes always apply. A leading slash anchors a pattern to the
// source root; unanchored patterns match any path segment.
var builtinExcludes = []string{
	".git*",
	"*.swp",
	".editorconfig",
	"/" + meta.HomeDir,
	meta.SecretsEnvFile,
	"*.log",
	"/build",
}

// Spec describes one staging run. User globs are appended to the
// built-in exclude set. PrebuiltSource suppresses the package-manifest
// force-include, which only applies when building from source.
type Spec struct {
	SourceDir           string
	DestDir             string
	ExcludeGlobs        []string
	ExcludeDependencies bool
	PrebuiltSource      bool
}

// Stage clears the destination and mirrors the filtered source tree into
// it. Symlinks are resolved to their targets. Any filesystem error
// aborts; callers re-run from a clean destination.
func Stage(spec Spec) error {
	if spec.SourceDir == "" || spec.DestDir == "" {
		return fmt.Errorf("staging requires source and destination directories")
	}
	if !fileops.DirExists(spec.SourceDir) {
		return fmt.Errorf("source directory does not exist: %s", spec.SourceDir)
	}

	if err := fileops.RemoveDir(spec.DestDir); err != nil {
		return fmt.Errorf("clear staging dir: %w", err)
	}
	if err := fileops.EnsureDir(spec.DestDir); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}

	patterns := make([]string, 0, len(builtinExcludes)+len(spec.ExcludeGlobs)+1)
	patterns = append(patterns, builtinExcludes...)
	patterns = append(patterns, spec.ExcludeGlobs...)
	if spec.ExcludeDependencies {
		patterns = append(patterns, dependencyDir)
	}

	return copyTree(spec, patterns, "")
}

func copyTree(spec Spec, patterns []string, rel string) error {
	entries, err := os.ReadDir(filepath.Join(spec.SourceDir, filepath.FromSlash(rel)))
	if err != nil {
		return fmt.Errorf("read source dir: %w", err)
	}

	for _, entry := range entries {
		entryRel := path.Join(rel, entry.Name())
		src := filepath.Join(spec.SourceDir, filepath.FromSlash(entryRel))

		// Stat follows symlinks so linked trees and files stage as copies.
		info, err := os.Stat(src)
		if err != nil {
			return fmt.Errorf("stat %s: %w", entryRel, err)
		}

		if matchesAny(patterns, entryRel) && !forceIncluded(spec, entryRel) {
			continue
		}

		dst := filepath.Join(spec.DestDir, filepath.FromSlash(entryRel))
		if info.IsDir() {
			if err := fileops.EnsureDir(dst); err != nil {
				return fmt.Errorf("create dir %s: %w", entryRel, err)
			}
			if err := copyTree(spec, patterns, entryRel); err != nil {
				return err
			}
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if err := fileops.CopyFileWithMode(src, dst, info.Mode()); err != nil {
			return fmt.Errorf("copy %s: %w", entryRel, err)
		}
	}
	return nil
}

// forceIncluded keeps the root package manifest in the staged tree even
// when an exclude pattern matches it, but never in prebuilt mode.
func forceIncluded(spec Spec, rel string) bool {
	return !spec.PrebuiltSource && rel == meta.PackageManifestFile
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if matches(pattern, rel) {
			return true
		}
	}
	return false
}

// matches applies shell-glob syntax to the slash-separated path rel. An
// anchored pattern (leading slash) must match the path or one of its
// leading directory chains from the source root; an unanchored pattern
// matches any single path segment.
func matches(pattern, rel string) bool {
	if strings.HasPrefix(pattern, "/") {
		trimmed := strings.TrimPrefix(pattern, "/")
		for _, prefix := range leadingPaths(rel) {
			if ok, err := path.Match(trimmed, prefix); err == nil && ok {
				return true
			}
		}
		return false
	}
	for _, segment := range strings.Split(rel, "/") {
		if ok, err := path.Match(pattern, segment); err == nil && ok {
			return true
		}
	}
	return false
}

func leadingPaths(rel string) []string {
	segments := strings.Split(rel, "/")
	prefixes := make([]string, 0, len(segments))
	for i := range segments {
		prefixes = append(prefixes, path.Join(segments[:i+1]...))
	}
	return prefixes
}
