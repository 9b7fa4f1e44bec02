package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

var colorBackground = color.RGBA{0, 0, 0, 255}

// Renderer paints the current image centered on a black surface. Since the
// screen is not cleared every frame it only redraws after a repaint request
// or a change of surface size.
type Renderer struct {
	renderState RenderState
	dirty       bool
	lastW       int
	lastH       int
}

// NewRenderer creates a new Renderer
func NewRenderer(renderState RenderState) *Renderer {
	return &Renderer{
		renderState: renderState,
		dirty:       true,
	}
}

// RequestRepaint marks the surface for redraw on the next frame
func (r *Renderer) RequestRepaint() {
	r.dirty = true
}

// NeedsRedraw reports whether Draw would paint for a surface of w x h
func (r *Renderer) NeedsRedraw(w, h int) bool {
	return r.dirty || w != r.lastW || h != r.lastH
}

func (r *Renderer) Draw(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if !r.NeedsRedraw(w, h) {
		return
	}
	r.dirty = false
	r.lastW, r.lastH = w, h

	screen.Fill(colorBackground)

	img, ok := r.renderState.Current().(*ebiten.Image)
	if !ok || img == nil {
		return
	}

	offset := centerOffset(image.Pt(w, h), img.Bounds().Size())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offset.X), float64(offset.Y))
	screen.DrawImage(img, op)
}
