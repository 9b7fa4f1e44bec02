package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ExtensionFilter matches file names against a fixed set of upper-cased suffixes.
type ExtensionFilter struct {
	suffixes []string
}

// NewExtensionFilter builds a filter from command-line extensions.
// A leading "." is conventional but not required.
func NewExtensionFilter(extensions []string) (ExtensionFilter, error) {
	if len(extensions) == 0 {
		return ExtensionFilter{}, &StartupConfigError{Field: "file types", Reason: "at least one extension is required"}
	}

	suffixes := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		if strings.TrimSpace(ext) == "" {
			return ExtensionFilter{}, &StartupConfigError{Field: "file type", Value: ext, Reason: "must not be empty"}
		}
		suffixes = append(suffixes, strings.ToUpper(ext))
	}
	return ExtensionFilter{suffixes: suffixes}, nil
}

// Matches reports whether name ends with one of the suffixes, ignoring case
func (f ExtensionFilter) Matches(name string) bool {
	upper := strings.ToUpper(name)
	for _, suffix := range f.suffixes {
		if strings.HasSuffix(upper, suffix) {
			return true
		}
	}
	return false
}

// Suffixes returns a copy of the normalized suffixes
func (f ExtensionFilter) Suffixes() []string {
	return append([]string(nil), f.suffixes...)
}

// DiscoveryOptions tunes DiscoverImages beyond the extension filter.
type DiscoveryOptions struct {
	IncludeArchives bool
	SortMethod      int
}

// DiscoverImages walks root and returns the regular files accepted by filter.
// Traversal errors are logged and only end collection for the failing branch,
// so the result is always whatever could be collected.
func DiscoverImages(root string, filter ExtensionFilter, opts DiscoveryOptions) []ImagePath {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		warnLog("%v", &DiscoveryError{Path: root, Err: err})
		absRoot = root
	}

	var found []ImagePath
	filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			reportDiscoveryError(path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !isRegularFile(path, d) {
			return nil
		}

		if filter.Matches(d.Name()) {
			found = append(found, ImagePath{Path: path})
		} else if opts.IncludeArchives && isArchiveExt(path) {
			entries, err := listArchiveImages(path, filter)
			if err != nil {
				reportDiscoveryError(path, err)
				return nil
			}
			found = append(found, entries...)
		}
		return nil
	})

	discoveredFiles.Set(float64(len(found)))
	return sortImagePaths(found, opts.SortMethod)
}

// isRegularFile follows symlinks for the final entry only; WalkDir itself
// never descends into linked directories.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		reportDiscoveryError(path, err)
		return false
	}
	return info.Mode().IsRegular()
}

func reportDiscoveryError(path string, err error) {
	discoveryErrors.Inc()
	warnLog("%v", &DiscoveryError{Path: path, Err: err})
}
