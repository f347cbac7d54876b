package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"io/ioutil"
	"strings"
	"unicode/utf8"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

var ErrCaption = errors.New("Invalid caption")

// CaptionColor is the colour maxpixel captions have always been drawn in.
var CaptionColor = color.RGBA{0, 155, 62, 255}

type TextWriter struct {
	face font.Face
	src  image.Image
}

func NewTextWriter() *TextWriter {
	return &TextWriter{face: basicfont.Face7x13, src: image.NewUniform(CaptionColor)}
}

func (t *TextWriter) SetColor(c color.Color) { t.src = image.NewUniform(c) }

func (t *TextWriter) SetFace(f font.Face) *TextWriter {
	t.face = f
	return t
}

func (t *TextWriter) SetFont(tt *truetype.Font, size, dpi float64) *TextWriter {
	return t.SetFace(truetype.NewFace(tt, &truetype.Options{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	}))
}

func (t *TextWriter) SetReadFont(r io.Reader, size, dpi float64) error {
	f, err := ReadFont(r)
	if err != nil {
		return err
	}

	t.SetFont(f, size, dpi)
	return nil
}

// Write draws text with its top-left corner at pt, one line per '\n', and
// returns the bottom-right corner of the drawn block. A nil img only
// measures.
func (t *TextWriter) Write(img draw.Image, text string, pt image.Point) (image.Point, error) {
	if !utf8.ValidString(text) {
		return pt, ErrCaption
	}

	m := t.face.Metrics()
	d := &font.Drawer{Dst: img, Src: t.src, Face: t.face}
	end := pt
	y := fixed.I(pt.Y) + m.Ascent
	for _, line := range strings.Split(text, "\n") {
		d.Dot = fixed.Point26_6{X: fixed.I(pt.X), Y: y}
		if img != nil {
			d.DrawString(line)
		} else {
			d.Dot.X += d.MeasureString(line)
		}

		if x := d.Dot.X.Ceil(); x > end.X {
			end.X = x
		}
		end.Y = (y + m.Descent).Ceil()
		y += m.Height
	}

	return end, nil
}

func ReadFont(r io.Reader) (*truetype.Font, error) {
	rawFont, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return freetype.ParseFont(rawFont)
}

// GoRegular returns the bundled Go Regular font.
func GoRegular() (*truetype.Font, error) {
	return freetype.ParseFont(goregular.TTF)
}
