package display

import (
	"errors"
	"image"

	"github.com/rs/zerolog"
)

var (
	ErrDisplayUnavailable = errors.New("Display unavailable")
	ErrReleased           = errors.New("Surface released")
)

const DefaultTitle = "Maxpixel"

type Options struct {
	Width  int
	Height int
	Title  string

	// Position of the top-left window corner.
	X, Y int

	Logger zerolog.Logger
}

func (o Options) Size() image.Point { return image.Pt(o.Width, o.Height) }

// Surface is a single window showing at most one image at a time.
// All methods except Events are called from the goroutine given the surface
// by its Driver.
type Surface interface {
	// Size is the current drawable size in pixels.
	Size() image.Point

	// Present replaces the shown image. The previous image is released
	// only after the new one is committed.
	Present(img *image.RGBA) error

	// Resize requests the window to be exactly sz pixels.
	Resize(sz image.Point) error

	// Events yields window-system events, to be fed back to Handle.
	Events() <-chan interface{}

	// Handle processes one window-system event and reports whether the
	// surface is still alive.
	Handle(e interface{}) bool

	// Teardown destroys the window and all resources, safe to call more
	// than once.
	Teardown()
}

// Driver opens a surface and hands it to run on a goroutine that owns it.
// run returning ends the driver. An error is only returned when run could
// not be called.
type Driver func(o Options, run func(Surface)) error
