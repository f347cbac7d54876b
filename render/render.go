package render

import (
	"fmt"
	"image"
	"math"
	"os"
	"time"

	"github.com/frizinak/liveview/frame"
	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
)

const (
	ScalerNearest    = "nearest"
	ScalerBilinear   = "bilinear"
	ScalerCatmullRom = "catmullrom"

	// FontDefault is the fixed 7x13 bitmap face, FontGo the bundled Go
	// Regular TrueType font. Any other value is a path to a .ttf file.
	FontDefault = ""
	FontGo      = "goregular"
)

type Config struct {
	Scaler   string
	Font     string
	FontSize float64
}

type Result struct {
	Image  *image.RGBA
	Size   image.Point
	Scaled bool
	Took   time.Duration
}

type Renderer struct {
	l      zerolog.Logger
	scaler draw.Interpolator
	text   *TextWriter
}

func Scaler(name string) (draw.Interpolator, error) {
	switch name {
	case ScalerNearest:
		return draw.NearestNeighbor, nil
	case ScalerBilinear, "":
		return draw.ApproxBiLinear, nil
	case ScalerCatmullRom:
		return draw.CatmullRom, nil
	}
	return nil, fmt.Errorf("unknown scaler %q", name)
}

func New(l zerolog.Logger, c Config) (*Renderer, error) {
	s, err := Scaler(c.Scaler)
	if err != nil {
		return nil, err
	}

	size := c.FontSize
	if size <= 0 {
		size = 12
	}

	tw := NewTextWriter()
	switch c.Font {
	case FontDefault:
	case FontGo:
		tt, err := GoRegular()
		if err != nil {
			return nil, err
		}
		tw.SetFont(tt, size, 72)
	default:
		f, err := os.Open(c.Font)
		if err != nil {
			return nil, err
		}
		err = tw.SetReadFont(f, size, 72)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("font %s: %w", c.Font, err)
		}
	}

	return &Renderer{l: l, scaler: s, text: tw}, nil
}

// Fit returns the size src should be drawn at to fit within window without
// cropping or distortion. Frames that already fit are never upscaled.
func Fit(src, window image.Point) image.Point {
	if src.X <= 0 || src.Y <= 0 || window.X <= 0 || window.Y <= 0 {
		return src
	}
	if window.X >= src.X && window.Y >= src.Y {
		return src
	}

	scale := float64(window.X) / float64(src.X)
	scale2 := float64(window.Y) / float64(src.Y)
	if scale2 < scale {
		scale = scale2
	}

	w := int(math.Round(float64(src.X) * scale))
	h := int(math.Round(float64(src.Y) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return image.Pt(w, h)
}

// RGBA normalizes all samples to 8 bits per channel, gray is replicated to
// all three channels.
func RGBA(f frame.Frame) (*image.RGBA, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rectangle{Max: f.Size()})
	n := f.Width * f.Height
	for i := 0; i < n; i++ {
		o := i * 4
		switch f.Channels {
		case 1:
			v := f.Level(f.Pix[i])
			img.Pix[o], img.Pix[o+1], img.Pix[o+2] = v, v, v
		case 3:
			s := i * 3
			img.Pix[o] = f.Level(f.Pix[s])
			img.Pix[o+1] = f.Level(f.Pix[s+1])
			img.Pix[o+2] = f.Level(f.Pix[s+2])
		}
		img.Pix[o+3] = 255
	}

	return img, nil
}

// Render converts f into an image fitting window, with the caption drawn on
// top after scaling so its size does not depend on the frame resolution.
// A zero window disables fitting.
func (r *Renderer) Render(f frame.Frame, window image.Point) (Result, error) {
	start := time.Now()
	img, err := RGBA(f)
	if err != nil {
		return Result{}, err
	}

	res := Result{Image: img, Size: img.Bounds().Size()}
	if window != (image.Point{}) {
		if sz := Fit(res.Size, window); sz != res.Size {
			dst := image.NewRGBA(image.Rectangle{Max: sz})
			r.scaler.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
			res.Image = dst
			res.Size = sz
			res.Scaled = true
		}
	}

	if f.Caption != "" {
		if _, err := r.text.Write(res.Image, f.Caption, image.Point{}); err != nil {
			r.l.Warn().Err(err).Msg("caption skipped")
		}
	}

	res.Took = time.Since(start)
	return res, nil
}
