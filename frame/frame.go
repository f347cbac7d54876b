package frame

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var ErrInvalidFrame = errors.New("Invalid frame")

const maxInt = int(^uint(0) >> 1)

// Frame is a row-major grid of samples with 1 (gray) or 3 (RGB) interleaved
// channels. Max is the sample value that maps to full intensity, 0 means 255.
type Frame struct {
	Width    int
	Height   int
	Channels int
	Pix      []float64
	Max      float64

	Caption string
}

// New allocates a zeroed frame. Shapes whose sample count does not fit in an
// int get no buffer and fail Validate, anything else is allocated as asked.
func New(width, height, channels int) Frame {
	n, ok := samples(width, height, channels)
	if !ok {
		n = 0
	}

	return Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float64, n),
	}
}

// Gray8 wraps 8-bit gray samples, the common max-pixel layout.
func Gray8(width, height int, pix []uint8) Frame {
	f := New(width, height, 1)
	for i := 0; i < len(pix) && i < len(f.Pix); i++ {
		f.Pix[i] = float64(pix[i])
	}
	return f
}

// Gray16 wraps 16-bit gray samples, normalized against max (0 means 65535).
func Gray16(width, height int, pix []uint16, max uint16) Frame {
	f := New(width, height, 1)
	f.Max = 65535
	if max != 0 {
		f.Max = float64(max)
	}
	for i := 0; i < len(pix) && i < len(f.Pix); i++ {
		f.Pix[i] = float64(pix[i])
	}
	return f
}

func FromImage(img image.Image) Frame {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok {
		f := New(b.Dx(), b.Dy(), 1)
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				f.Pix[i] = float64(g.GrayAt(x, y).Y)
				i++
			}
		}
		return f
	}

	f := New(b.Dx(), b.Dy(), 3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			f.Pix[i] = float64(c.R)
			f.Pix[i+1] = float64(c.G)
			f.Pix[i+2] = float64(c.B)
			i += 3
		}
	}
	return f
}

// samples is width*height*channels, false when the shape is empty or the
// count, or the 4 byte per pixel RGBA rendition, overflows an int.
func samples(width, height, channels int) (int, bool) {
	if width <= 0 || height <= 0 || channels <= 0 {
		return 0, false
	}
	px := 4
	if channels > px {
		px = channels
	}
	if width > maxInt/height || width*height > maxInt/px {
		return 0, false
	}
	return width * height * channels, true
}

func (f Frame) Size() image.Point { return image.Pt(f.Width, f.Height) }

func (f Frame) Validate() error {
	n, ok := samples(f.Width, f.Height, f.Channels)
	switch {
	case f.Width <= 0 || f.Height <= 0:
		return fmt.Errorf("%w: %dx%d", ErrInvalidFrame, f.Width, f.Height)
	case f.Channels != 1 && f.Channels != 3:
		return fmt.Errorf("%w: %d channels", ErrInvalidFrame, f.Channels)
	case !ok:
		return fmt.Errorf("%w: %dx%dx%d overflows", ErrInvalidFrame, f.Width, f.Height, f.Channels)
	case len(f.Pix) != n:
		return fmt.Errorf(
			"%w: %d samples for %dx%dx%d",
			ErrInvalidFrame,
			len(f.Pix),
			f.Width,
			f.Height,
			f.Channels,
		)
	case f.Max < 0:
		return fmt.Errorf("%w: negative max %f", ErrInvalidFrame, f.Max)
	}

	return nil
}

// Clone returns a deep copy, the returned frame shares no memory with f.
func (f Frame) Clone() Frame {
	c := f
	if f.Pix != nil {
		c.Pix = make([]float64, len(f.Pix))
		copy(c.Pix, f.Pix)
	}
	return c
}

// Level maps a sample to 8 bits, clamping out of range values.
func (f Frame) Level(v float64) uint8 {
	max := f.Max
	if max == 0 {
		max = 255
	}

	v = v * 255 / max
	switch {
	case v != v, v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
