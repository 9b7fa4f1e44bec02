package main

import "image"

// InputActions provides action methods for the input handler
type InputActions interface {
	Exit()
	ShowCurrentPath()
}

// RenderState provides read-only access to what the renderer paints
type RenderState interface {
	// Current returns the image on screen, or nil before the first successful load
	Current() Resource
}

// Display is the windowing collaborator: it reports the screen size and
// runs the game loop until the window is disposed.
type Display interface {
	ScreenSize() (int, int)
	Run(game *Game) error
}

// centerOffset places an image of size img in the middle of surface.
// Offsets are negative when the image is larger than the surface.
func centerOffset(surface, img image.Point) image.Point {
	return image.Point{
		X: (surface.X - img.X) / 2,
		Y: (surface.Y - img.Y) / 2,
	}
}
