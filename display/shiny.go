package display

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/exp/shiny/driver/gldriver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

var background = color.Black

// Shiny is the Driver for an OpenGL window through golang.org/x/exp/shiny.
func Shiny(o Options, run func(Surface)) error {
	if err := Probe(); err != nil {
		return err
	}

	var err error
	gldriver.Main(func(s screen.Screen) {
		var surf *shinySurface
		surf, err = newShinySurface(s, o)
		if err != nil {
			return
		}
		defer surf.Teardown()
		run(surf)
	})

	return err
}

type shinySurface struct {
	l    zerolog.Logger
	o    Options
	s    screen.Screen
	w    screen.Window
	tex  screen.Texture
	sz   size.Event
	seen bool

	place *Placer

	// guards tex, Teardown may be forced from another goroutine
	sem      sync.Mutex
	released bool

	events chan interface{}
	quit   chan struct{}
	once   sync.Once
}

func newShinySurface(s screen.Screen, o Options) (*shinySurface, error) {
	if o.Title == "" {
		o.Title = DefaultTitle
	}

	w, err := s.NewWindow(&screen.NewWindowOptions{
		Width:  o.Width,
		Height: o.Height,
		Title:  o.Title,
	})
	if err != nil {
		return nil, err
	}

	surf := &shinySurface{
		l:      o.Logger,
		o:      o,
		s:      s,
		w:      w,
		events: make(chan interface{}),
		quit:   make(chan struct{}),
	}

	if p, err := NewPlacer(o.Title); err != nil {
		surf.l.Warn().Err(err).Msg("window placement disabled")
	} else {
		surf.place = p
	}

	go func() {
		defer close(surf.events)
		for {
			e := w.NextEvent()
			select {
			case surf.events <- e:
			case <-surf.quit:
				return
			}
			if c, ok := e.(lifecycle.Event); ok && c.To == lifecycle.StageDead {
				return
			}
		}
	}()

	return surf, nil
}

func (s *shinySurface) Size() image.Point {
	if !s.seen {
		return s.o.Size()
	}
	return image.Pt(s.sz.WidthPx, s.sz.HeightPx)
}

func (s *shinySurface) Events() <-chan interface{} { return s.events }

func (s *shinySurface) Handle(e interface{}) bool {
	switch e := e.(type) {
	case lifecycle.Event:
		if e.To == lifecycle.StageDead {
			return false
		}
		if e.Crosses(lifecycle.StageVisible) == lifecycle.CrossOn && s.place != nil {
			sz := s.Size()
			if err := s.place.MoveResize(s.o.X, s.o.Y, sz.X, sz.Y); err != nil {
				s.l.Debug().Err(err).Msg("initial placement")
			}
		}
	case size.Event:
		s.sz = e
		s.seen = true
	case paint.Event:
		s.sem.Lock()
		if !s.released {
			s.paint()
		}
		s.sem.Unlock()
	case error:
		s.l.Error().Err(e).Msg("window")
	}

	return true
}

func (s *shinySurface) paint() {
	sz := s.Size()
	s.w.Fill(image.Rectangle{Max: sz}, background, draw.Src)
	if s.tex != nil {
		s.w.Copy(image.Point{}, s.tex, s.tex.Bounds(), draw.Src, nil)
	}
	s.w.Publish()
}

func (s *shinySurface) Present(img *image.RGBA) error {
	b := img.Bounds()
	buf, err := s.s.NewBuffer(b.Size())
	if err != nil {
		return err
	}
	defer buf.Release()
	draw.Draw(buf.RGBA(), buf.Bounds(), img, b.Min, draw.Src)

	tex, err := s.s.NewTexture(b.Size())
	if err != nil {
		return err
	}
	tex.Upload(image.Point{}, buf, buf.Bounds())

	s.sem.Lock()
	if s.released {
		s.sem.Unlock()
		tex.Release()
		return ErrReleased
	}
	old := s.tex
	s.tex = tex
	s.paint()
	s.sem.Unlock()

	if old != nil {
		old.Release()
	}
	return nil
}

func (s *shinySurface) Resize(sz image.Point) error {
	if s.place == nil {
		return nil
	}
	return s.place.MoveResize(s.o.X, s.o.Y, sz.X, sz.Y)
}

func (s *shinySurface) Teardown() {
	s.once.Do(func() {
		close(s.quit)
		s.sem.Lock()
		s.released = true
		if s.tex != nil {
			s.tex.Release()
			s.tex = nil
		}
		s.sem.Unlock()
		if s.place != nil {
			s.place.Close()
		}
		s.w.Release()
	})
}
