package main

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

type fakeResource struct {
	name     string
	w, h     int
	released int
}

func (r *fakeResource) Bounds() image.Rectangle { return image.Rect(0, 0, r.w, r.h) }
func (r *fakeResource) Deallocate()             { r.released++ }

// fakeLoader succeeds unless the path is listed in fail or failAll is set
type fakeLoader struct {
	fail    map[string]bool
	failAll bool
	calls   []ImagePath
	created []*fakeResource
}

func (l *fakeLoader) Load(path ImagePath) LoadResult {
	l.calls = append(l.calls, path)
	if l.failAll || l.fail[path.Path] {
		return LoadResult{Err: &LoadError{Path: path.Path, Err: errors.New("corrupt image")}}
	}
	res := &fakeResource{name: path.Path, w: 640, h: 480}
	l.created = append(l.created, res)
	return LoadResult{Resource: res}
}

func (l *fakeLoader) last() *fakeResource {
	if len(l.created) == 0 {
		return nil
	}
	return l.created[len(l.created)-1]
}

type scheduledCall struct {
	delay time.Duration
	fn    func()
}

// recordingScheduler never fires anything by itself
type recordingScheduler struct {
	calls []scheduledCall
}

func (s *recordingScheduler) Schedule(delay time.Duration, fn func()) {
	s.calls = append(s.calls, scheduledCall{delay: delay, fn: fn})
}

func (s *recordingScheduler) last(t *testing.T) scheduledCall {
	t.Helper()
	if len(s.calls) == 0 {
		t.Fatal("nothing was scheduled")
	}
	return s.calls[len(s.calls)-1]
}

type countingCursor struct {
	hidden int
}

func (c *countingCursor) HideCursor() { c.hidden++ }

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeKeys reports the listed keys as pressed this frame
type fakeKeys struct {
	justPressed map[ebiten.Key]bool
	held        map[ebiten.Key]bool
}

func (k *fakeKeys) IsKeyJustPressed(key ebiten.Key) bool { return k.justPressed[key] }
func (k *fakeKeys) IsKeyPressed(key ebiten.Key) bool     { return k.held[key] || k.justPressed[key] }

func (k *fakeKeys) press(keys ...ebiten.Key) {
	k.justPressed = map[ebiten.Key]bool{}
	for _, key := range keys {
		k.justPressed[key] = true
	}
}

type fakeActions struct {
	exits int
	shows int
}

func (a *fakeActions) Exit()            { a.exits++ }
func (a *fakeActions) ShowCurrentPath() { a.shows++ }

type fakeDisplay struct {
	w, h      int
	runCalled bool
	game      *Game
}

func (d *fakeDisplay) ScreenSize() (int, int) { return d.w, d.h }
func (d *fakeDisplay) Run(game *Game) error {
	d.runCalled = true
	d.game = game
	return nil
}

func makePaths(names ...string) []ImagePath {
	paths := make([]ImagePath, len(names))
	for i, name := range names {
		paths[i] = ImagePath{Path: "/photos/" + name}
	}
	return paths
}

// touch creates an empty file, creating parent directories as needed
func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// writePNG writes a solid w x h PNG to path
func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{200, 100, 50, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", path, err)
	}
}
