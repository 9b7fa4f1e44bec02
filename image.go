package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bodgit/sevenzip"
	"github.com/disintegration/imaging"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/nwaples/rardecode"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

type ImagePath struct {
	Path        string // Absolute file path or archive:entry format
	ArchivePath string // Empty for regular files, path to archive for entries
	EntryPath   string // Empty for regular files, path within archive for entries
}

// Resource is a decoded image that can be drawn and must be released.
// *ebiten.Image satisfies it.
type Resource interface {
	Bounds() image.Rectangle
	Deallocate()
}

// LoadResult is either a loaded Resource or the reason loading failed.
type LoadResult struct {
	Resource Resource
	Err      error
}

// OK reports whether the load produced a resource
func (r LoadResult) OK() bool {
	return r.Err == nil && r.Resource != nil
}

// Loader turns an ImagePath into a drawable resource.
type Loader interface {
	Load(path ImagePath) LoadResult
}

// ImageLoader decodes files with imaging and hands the pixels to newResource.
type ImageLoader struct {
	newResource func(image.Image) Resource
}

// NewImageLoader returns a loader producing ebiten images
func NewImageLoader() *ImageLoader {
	return &ImageLoader{
		newResource: func(img image.Image) Resource {
			return ebiten.NewImageFromImage(img)
		},
	}
}

func (l *ImageLoader) Load(path ImagePath) LoadResult {
	start := time.Now()
	img, err := decodeImage(path)
	loadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return LoadResult{Err: &LoadError{Path: path.Path, Err: err}}
	}
	return LoadResult{Resource: l.newResource(img)}
}

func decodeImage(path ImagePath) (image.Image, error) {
	if path.ArchivePath == "" {
		return imaging.Open(path.Path, imaging.AutoOrientation(true))
	}

	data, err := readArchiveEntry(path.ArchivePath, path.EntryPath)
	if err != nil {
		return nil, err
	}
	return decodeImageFromBytes(data, path.EntryPath)
}

func decodeImageFromBytes(data []byte, name string) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return img, nil
}

// Archive handling

func isArchiveExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".rar", ".7z":
		return true
	default:
		return false
	}
}

func readArchiveEntry(archivePath, entryPath string) ([]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(archivePath)); ext {
	case ".zip":
		return readZipEntry(archivePath, entryPath)
	case ".rar":
		return readRarEntry(archivePath, entryPath)
	case ".7z":
		return read7zEntry(archivePath, entryPath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", ext)
	}
}

func readZipEntry(archivePath, entryPath string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entryPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

func readRarEntry(archivePath, entryPath string) ([]byte, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Name == entryPath {
			return io.ReadAll(r)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

func read7zEntry(archivePath, entryPath string) ([]byte, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entryPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

// listArchiveImages returns the entries of an archive accepted by filter
func listArchiveImages(archivePath string, filter ExtensionFilter) ([]ImagePath, error) {
	var names []string
	var err error

	switch ext := strings.ToLower(filepath.Ext(archivePath)); ext {
	case ".zip":
		names, err = listZipEntries(archivePath)
	case ".rar":
		names, err = listRarEntries(archivePath)
	case ".7z":
		names, err = list7zEntries(archivePath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", ext)
	}
	if err != nil {
		return nil, err
	}

	var images []ImagePath
	for _, name := range names {
		if filter.Matches(name) {
			images = append(images, ImagePath{
				Path:        archivePath + ":" + name,
				ArchivePath: archivePath,
				EntryPath:   name,
			})
		}
	}
	return images, nil
}

func listZipEntries(archivePath string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func listRarEntries(archivePath string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	var names []string
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !header.IsDir {
			names = append(names, header.Name)
		}
	}
	return names, nil
}

func list7zEntries(archivePath string) ([]string, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	return names, nil
}
