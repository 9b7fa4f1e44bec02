package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Game drives the slideshow from ebiten's update loop. Update, Draw and
// every scheduled tick run on the same goroutine, so no locking is needed.
type Game struct {
	show      *Slideshow
	scheduler *FrameScheduler
	renderer  *Renderer
	input     *InputHandler

	started  bool
	quitting bool
}

// NewGame wires a slideshow to the frame scheduler, renderer and keyboard.
// opts.Scheduler is kept only if it is a *FrameScheduler, since the game
// loop has to pump it.
func NewGame(paths []ImagePath, opts SlideshowOptions, keybindings map[string][]string) *Game {
	g := &Game{}

	scheduler, ok := opts.Scheduler.(*FrameScheduler)
	if !ok {
		scheduler = NewFrameScheduler(nil)
	}
	g.scheduler = scheduler
	opts.Scheduler = scheduler
	if opts.Cursor == nil {
		opts.Cursor = ebitenCursor{}
	}

	g.show = NewSlideshow(paths, opts)
	g.renderer = NewRenderer(g.show)
	g.show.repaint = g.renderer.RequestRepaint
	g.input = NewInputHandler(g, NewKeybindingManager(keybindings))
	return g
}

func (g *Game) Update() error {
	g.input.HandleInput()
	if g.quitting {
		g.show.Stop()
		g.scheduler.Clear()
		return ebiten.Termination
	}

	if !g.started {
		g.started = true
		g.show.Start()
	}
	if g.scheduler.Poll() > 0 {
		if d, ok := g.NextTick(); ok {
			debugLog("Next tick in %v", d)
		}
	}
	return nil
}

// NextTick reports how long until the scheduler fires next
func (g *Game) NextTick() (time.Duration, bool) {
	next, ok := g.scheduler.NextWake()
	if !ok {
		return 0, false
	}
	return next.Sub(g.scheduler.now()), true
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Exit disposes the display on the next Update
func (g *Game) Exit() {
	g.quitting = true
}

// ShowCurrentPath logs the file on screen
func (g *Game) ShowCurrentPath() {
	if path, ok := g.show.CurrentPath(); ok {
		infoLog("Showing %s", path.Path)
	} else {
		infoLog("No image loaded yet")
	}
}

// Slideshow exposes the driver for inspection
func (g *Game) Slideshow() *Slideshow {
	return g.show
}

// ebitenCursor hides the pointer; ebiten cannot warp it off screen
type ebitenCursor struct{}

func (ebitenCursor) HideCursor() {
	ebiten.SetCursorMode(ebiten.CursorModeHidden)
}

// ebitenDisplay opens a borderless, always-on-top window covering the monitor
type ebitenDisplay struct {
	title      string
	fullscreen bool
}

func (d *ebitenDisplay) ScreenSize() (int, int) {
	if m := ebiten.Monitor(); m != nil {
		return m.Size()
	}
	return ebiten.ScreenSizeInFullscreen()
}

func (d *ebitenDisplay) Run(game *Game) error {
	w, h := d.ScreenSize()

	ebiten.SetWindowTitle(d.title)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(true)
	ebiten.SetWindowPosition(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetScreenClearedEveryFrame(false)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetCursorMode(ebiten.CursorModeHidden)
	if d.fullscreen {
		ebiten.SetFullscreen(true)
	}

	return ebiten.RunGame(game)
}
