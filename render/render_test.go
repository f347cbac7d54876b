package render

import (
	"errors"
	"image"
	"image/color"
	"strconv"
	"testing"

	"github.com/frizinak/liveview/frame"
	"github.com/rs/zerolog"
)

func TestFit(t *testing.T) {
	tests := []struct {
		src, window, want image.Point
	}{
		{image.Pt(1920, 1080), image.Pt(800, 600), image.Pt(800, 450)},
		{image.Pt(400, 300), image.Pt(800, 600), image.Pt(400, 300)},
		{image.Pt(640, 480), image.Pt(640, 480), image.Pt(640, 480)},
		{image.Pt(1000, 2000), image.Pt(800, 600), image.Pt(300, 600)},
		{image.Pt(900, 500), image.Pt(800, 600), image.Pt(800, 444)},
		{image.Pt(2000, 2000), image.Pt(0, 0), image.Pt(2000, 2000)},
	}

	for _, tt := range tests {
		if got := Fit(tt.src, tt.window); got != tt.want {
			t.Errorf("Fit(%v, %v) = %v, want %v", tt.src, tt.window, got, tt.want)
		}
	}
}

func newRenderer(t *testing.T, c Config) *Renderer {
	t.Helper()
	r, err := New(zerolog.Nop(), c)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRGBAGray(t *testing.T) {
	f := frame.New(2, 1, 1)
	f.Pix[1] = 255
	img, err := RGBA(f)
	if err != nil {
		t.Fatal(err)
	}

	c := img.RGBAAt(1, 0)
	if c.R != 255 || c.G != 255 || c.B != 255 || c.A != 255 {
		t.Fatalf("expected white, got %v", c)
	}
	c = img.RGBAAt(0, 0)
	if c.R != 0 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Fatalf("expected opaque black, got %v", c)
	}
}

func TestRenderInvalid(t *testing.T) {
	r := newRenderer(t, Config{})
	_, err := r.Render(frame.New(0, 10, 1), image.Pt(100, 100))
	if !errors.Is(err, frame.ErrInvalidFrame) {
		t.Fatalf("expected ErrInvalidFrame, got %v", err)
	}
}

func TestRenderScales(t *testing.T) {
	for _, s := range []string{ScalerNearest, ScalerBilinear, ScalerCatmullRom} {
		r := newRenderer(t, Config{Scaler: s})
		res, err := r.Render(frame.New(1920, 1080, 1), image.Pt(800, 600))
		if err != nil {
			t.Fatal(err)
		}
		if !res.Scaled || res.Size != image.Pt(800, 450) || res.Image.Bounds().Size() != res.Size {
			t.Fatalf("%s: unexpected result %v scaled=%v", s, res.Size, res.Scaled)
		}
	}

	if _, err := New(zerolog.Nop(), Config{Scaler: "lanczos9"}); err == nil {
		t.Fatal("expected unknown scaler error")
	}
}

func TestRenderNoResize(t *testing.T) {
	r := newRenderer(t, Config{})
	res, err := r.Render(frame.New(400, 300, 3), image.Pt(800, 600))
	if err != nil {
		t.Fatal(err)
	}
	if res.Scaled || res.Size != image.Pt(400, 300) {
		t.Fatalf("unexpected resize to %v", res.Size)
	}
}

func countCaption(img *image.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := img.RGBAAt(x, y); c.G > 0 && c.R == 0 {
				n++
			}
		}
	}
	return n
}

func TestRenderCaption(t *testing.T) {
	for _, font := range []string{FontDefault, FontGo} {
		r := newRenderer(t, Config{Font: font})
		f := frame.New(64, 32, 1)
		f.Caption = "42"
		res, err := r.Render(f, image.Pt(64, 32))
		if err != nil {
			t.Fatal(err)
		}

		n := countCaption(res.Image)
		if n == 0 {
			t.Fatalf("font %q: no caption pixels drawn", font)
		}
		for y := 20; y < 32; y++ {
			for x := 32; x < 64; x++ {
				if c := res.Image.RGBAAt(x, y); c.G > 0 {
					t.Fatalf("font %q: caption outside top-left corner at %d,%d", font, x, y)
				}
			}
		}
	}
}

func TestRenderBadCaption(t *testing.T) {
	r := newRenderer(t, Config{})
	f := frame.New(32, 16, 1)
	f.Caption = string([]byte{0xff, 0xfe})
	res, err := r.Render(f, image.Pt(32, 16))
	if err != nil {
		t.Fatalf("caption failure must not fail the render: %v", err)
	}
	if countCaption(res.Image) != 0 {
		t.Fatal("expected no caption for invalid text")
	}
}

func TestTextWriterMeasure(t *testing.T) {
	tw := NewTextWriter()
	end, err := tw.Write(nil, "ab\nabcd", image.Point{})
	if err != nil {
		t.Fatal(err)
	}
	if end.X != 28 || end.Y <= 13 {
		t.Fatalf("unexpected measured block %v", end)
	}
}

func TestRenderOverflowingFrame(t *testing.T) {
	r := newRenderer(t, Config{})
	side := 1 << (strconv.IntSize / 2)
	f := frame.Frame{Width: side, Height: side, Channels: 1}
	if _, err := r.Render(f, image.Pt(640, 480)); !errors.Is(err, frame.ErrInvalidFrame) {
		t.Fatalf("expected ErrInvalidFrame, got %v", err)
	}
}

func TestTextWriterColor(t *testing.T) {
	tw := NewTextWriter()
	tw.SetColor(color.White)
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	if _, err := tw.Write(img, "ab", image.Point{}); err != nil {
		t.Fatal(err)
	}

	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		p := img.Pix[i : i+3]
		if p[0] > 0 && p[0] == p[1] && p[1] == p[2] {
			n++
		}
	}
	if n == 0 {
		t.Fatal("no text drawn in the configured colour")
	}
}
