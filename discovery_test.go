package main

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func mustFilter(t *testing.T, exts ...string) ExtensionFilter {
	t.Helper()
	f, err := NewExtensionFilter(exts)
	if err != nil {
		t.Fatalf("NewExtensionFilter(%v) failed: %v", exts, err)
	}
	return f
}

func sortedPathSet(paths []ImagePath) []string {
	out := pathsToStrings(paths)
	sort.Strings(out)
	return out
}

func TestExtensionFilter(t *testing.T) {
	filter := mustFilter(t, ".jpg", ".png")

	tests := []struct {
		name     string
		file     string
		expected bool
	}{
		{"Lowercase jpg", "a.jpg", true},
		{"Uppercase PNG", "b.PNG", true},
		{"Mixed case", "c.JpG", true},
		{"Text file", "c.txt", false},
		{"JPEG is a different suffix", "d.jpeg", false},
		{"Multiple dots", "holiday.backup.jpg", true},
		{"Suffix without dot", "photojpg", false},
		{"Empty name", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.Matches(tt.file); got != tt.expected {
				t.Errorf("Matches(%q) = %v, want %v", tt.file, got, tt.expected)
			}
		})
	}

	if got := filter.Suffixes(); !reflect.DeepEqual(got, []string{".JPG", ".PNG"}) {
		t.Errorf("Expected normalized suffixes, got %v", got)
	}
}

func TestExtensionFilterWithoutDot(t *testing.T) {
	filter := mustFilter(t, "jpg")
	if !filter.Matches("photo.jpg") || !filter.Matches("photojpg") {
		t.Error("A suffix without a dot matches any name ending in it")
	}
}

func TestNewExtensionFilterRejectsEmpty(t *testing.T) {
	for _, exts := range [][]string{nil, {}, {".jpg", ""}, {"  "}} {
		_, err := NewExtensionFilter(exts)
		var cfgErr *StartupConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("NewExtensionFilter(%q): expected StartupConfigError, got %v", exts, err)
		}
	}
}

func TestDiscoverImagesMatchesExtensions(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "b.PNG"))
	touch(t, filepath.Join(root, "c.txt"))

	result := DiscoverImages(root, mustFilter(t, ".jpg", ".png"), DiscoveryOptions{})

	want := []string{filepath.Join(root, "a.jpg"), filepath.Join(root, "b.PNG")}
	if got := sortedPathSet(result); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if got := testutil.ToFloat64(discoveredFiles); got != 2 {
		t.Errorf("Expected discovered gauge 2, got %v", got)
	}
}

func TestDiscoverImagesRecursesAndSkipsDirectories(t *testing.T) {
	root := t.TempDir()

	testFiles := []struct {
		name      string
		shouldAdd bool
	}{
		{"top.jpg", true},
		{"nested/deeper/photo.JPG", true},
		{"nested/image2.png", true},
		{"nested/notes.md", false},
		{"other/backup.bak", false},
		{"other/scan.jpeg", false},
	}

	var expected []string
	for _, file := range testFiles {
		path := filepath.Join(root, filepath.FromSlash(file.name))
		touch(t, path)
		if file.shouldAdd {
			expected = append(expected, path)
		}
	}
	// A directory whose name matches must not be returned
	if err := os.MkdirAll(filepath.Join(root, "album.jpg", "inside"), 0755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(root, "album.jpg", "inside", "real.jpg"))
	expected = append(expected, filepath.Join(root, "album.jpg", "inside", "real.jpg"))
	sort.Strings(expected)

	result := DiscoverImages(root, mustFilter(t, ".jpg", ".png"), DiscoveryOptions{})

	if got := sortedPathSet(result); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v\nGot      %v", expected, got)
	}
	for _, p := range result {
		if !filepath.IsAbs(p.Path) {
			t.Errorf("Expected absolute path, got %s", p.Path)
		}
		if p.ArchivePath != "" {
			t.Errorf("Regular file reported as archive entry: %+v", p)
		}
	}
}

func TestDiscoverImagesIsIdempotent(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"x10.jpg", "x2.jpg", "sub/x1.jpg", "sub/skip.gif"} {
		touch(t, filepath.Join(root, filepath.FromSlash(name)))
	}
	filter := mustFilter(t, ".jpg")

	first := DiscoverImages(root, filter, DiscoveryOptions{})
	second := DiscoverImages(root, filter, DiscoveryOptions{})

	if !reflect.DeepEqual(sortedPathSet(first), sortedPathSet(second)) {
		t.Errorf("Repeated discovery differs:\n%v\n%v", pathsToStrings(first), pathsToStrings(second))
	}
	if len(first) != 3 {
		t.Errorf("Expected 3 files, got %d", len(first))
	}
}

func TestDiscoverImagesNaturalOrder(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"img10.jpg", "img2.jpg", "img1.jpg"} {
		touch(t, filepath.Join(root, name))
	}

	result := DiscoverImages(root, mustFilter(t, ".jpg"), DiscoveryOptions{SortMethod: SortNatural})

	want := []string{
		filepath.Join(root, "img1.jpg"),
		filepath.Join(root, "img2.jpg"),
		filepath.Join(root, "img10.jpg"),
	}
	if got := pathsToStrings(result); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestDiscoverImagesRelativeRootGivesAbsolutePaths(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "pics", "a.jpg"))
	t.Chdir(root)

	result := DiscoverImages("pics", mustFilter(t, ".jpg"), DiscoveryOptions{})

	if len(result) != 1 {
		t.Fatalf("Expected 1 file, got %v", pathsToStrings(result))
	}
	if !filepath.IsAbs(result[0].Path) {
		t.Errorf("Expected absolute path, got %s", result[0].Path)
	}
}

func TestDiscoverImagesMissingRoot(t *testing.T) {
	before := testutil.ToFloat64(discoveryErrors)

	result := DiscoverImages(filepath.Join(t.TempDir(), "does-not-exist"), mustFilter(t, ".jpg"), DiscoveryOptions{})

	if len(result) != 0 {
		t.Errorf("Expected no results, got %v", pathsToStrings(result))
	}
	if got := testutil.ToFloat64(discoveryErrors) - before; got != 1 {
		t.Errorf("Expected 1 discovery error, got %v", got)
	}
}

func TestDiscoverImagesUnreadableBranch(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root can read directories without permission bits")
	}

	root := t.TempDir()
	touch(t, filepath.Join(root, "ok", "a.jpg"))
	touch(t, filepath.Join(root, "locked", "hidden.jpg"))
	touch(t, filepath.Join(root, "z.jpg"))

	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	result := DiscoverImages(root, mustFilter(t, ".jpg"), DiscoveryOptions{})

	want := []string{filepath.Join(root, "ok", "a.jpg"), filepath.Join(root, "z.jpg")}
	if got := sortedPathSet(result); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected siblings of the unreadable branch %v, got %v", want, got)
	}
}

func TestDiscoverImagesSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	touch(t, filepath.Join(outside, "target.jpg"))
	touch(t, filepath.Join(outside, "dir", "inner.jpg"))

	if err := os.Symlink(filepath.Join(outside, "target.jpg"), filepath.Join(root, "link.jpg")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "dir"), filepath.Join(root, "linkdir")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "missing.jpg"), filepath.Join(root, "dangling.jpg")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	result := DiscoverImages(root, mustFilter(t, ".jpg"), DiscoveryOptions{})

	want := []string{filepath.Join(root, "link.jpg")}
	if got := pathsToStrings(result); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected only the file symlink %v, got %v", want, got)
	}
}

func writeZip(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to add %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
}

func TestDiscoverImagesArchives(t *testing.T) {
	root := t.TempDir()
	archive := filepath.Join(root, "album.zip")
	writeZip(t, archive, map[string][]byte{
		"inner/p1.png": []byte("not decoded during discovery"),
		"readme.txt":   []byte("skip"),
	})
	touch(t, filepath.Join(root, "loose.png"))
	filter := mustFilter(t, ".png")

	without := DiscoverImages(root, filter, DiscoveryOptions{})
	if got := pathsToStrings(without); !reflect.DeepEqual(got, []string{filepath.Join(root, "loose.png")}) {
		t.Errorf("Archives must be ignored by default, got %v", got)
	}

	with := DiscoverImages(root, filter, DiscoveryOptions{IncludeArchives: true})
	if len(with) != 2 {
		t.Fatalf("Expected loose file and one archive entry, got %v", pathsToStrings(with))
	}

	var entry ImagePath
	for _, p := range with {
		if p.ArchivePath != "" {
			entry = p
		}
	}
	if entry.ArchivePath != archive || entry.EntryPath != "inner/p1.png" || entry.Path != archive+":inner/p1.png" {
		t.Errorf("Unexpected archive entry %+v", entry)
	}
}

func TestDiscoverImagesBrokenArchive(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "broken.zip"), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(root, "ok.png"))

	result := DiscoverImages(root, mustFilter(t, ".png"), DiscoveryOptions{IncludeArchives: true})

	if got := pathsToStrings(result); !reflect.DeepEqual(got, []string{filepath.Join(root, "ok.png")}) {
		t.Errorf("Broken archive should be skipped, got %v", got)
	}
}
