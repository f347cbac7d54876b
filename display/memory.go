package display

import (
	"image"
	"image/draw"
	"sync"
	"time"
)

type killEvent struct{}

// Memory is an offscreen surface that keeps a copy of every presented image.
// It backs headless viewers and tests.
type Memory struct {
	sem       sync.Mutex
	size      image.Point
	shown     *image.RGBA
	presented []*image.RGBA
	resizes   []image.Point
	teardowns int
	released  bool
	delay     time.Duration

	events chan interface{}
	once   sync.Once
}

func NewMemory(size image.Point) *Memory {
	return &Memory{size: size, events: make(chan interface{}, 8)}
}

// Headless is a Driver that runs m on the calling goroutine.
func Headless(m *Memory) Driver {
	return func(o Options, run func(Surface)) error {
		m.sem.Lock()
		if m.size == (image.Point{}) {
			m.size = o.Size()
		}
		m.sem.Unlock()
		run(m)
		return nil
	}
}

// SetDelay makes every Present take at least d, simulating a slow display.
func (m *Memory) SetDelay(d time.Duration) {
	m.sem.Lock()
	m.delay = d
	m.sem.Unlock()
}

// Kill simulates the window being destroyed by the window system.
func (m *Memory) Kill() {
	select {
	case m.events <- killEvent{}:
	default:
	}
}

// Send injects a window-system event.
func (m *Memory) Send(e interface{}) { m.events <- e }

func (m *Memory) Size() image.Point {
	m.sem.Lock()
	defer m.sem.Unlock()
	return m.size
}

func (m *Memory) Present(img *image.RGBA) error {
	m.sem.Lock()
	delay := m.delay
	m.sem.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	cp := image.NewRGBA(img.Bounds())
	draw.Draw(cp, cp.Bounds(), img, img.Bounds().Min, draw.Src)

	m.sem.Lock()
	defer m.sem.Unlock()
	if m.released {
		return ErrReleased
	}
	m.shown = cp
	m.presented = append(m.presented, cp)
	return nil
}

func (m *Memory) Resize(sz image.Point) error {
	m.sem.Lock()
	defer m.sem.Unlock()
	if m.released {
		return ErrReleased
	}
	m.size = sz
	m.resizes = append(m.resizes, sz)
	return nil
}

func (m *Memory) Events() <-chan interface{} { return m.events }

func (m *Memory) Handle(e interface{}) bool {
	switch e := e.(type) {
	case killEvent:
		return false
	case image.Point:
		m.sem.Lock()
		m.size = e
		m.sem.Unlock()
	}
	return true
}

func (m *Memory) Teardown() {
	m.once.Do(func() {
		m.sem.Lock()
		m.released = true
		m.shown = nil
		m.teardowns++
		m.sem.Unlock()
	})
}

// Presented returns every image presented so far, in order.
func (m *Memory) Presented() []*image.RGBA {
	m.sem.Lock()
	defer m.sem.Unlock()
	return append([]*image.RGBA(nil), m.presented...)
}

// Shown is the image currently on the surface, nil after Teardown.
func (m *Memory) Shown() *image.RGBA {
	m.sem.Lock()
	defer m.sem.Unlock()
	return m.shown
}

func (m *Memory) Resizes() []image.Point {
	m.sem.Lock()
	defer m.sem.Unlock()
	return append([]image.Point(nil), m.resizes...)
}

func (m *Memory) Teardowns() int {
	m.sem.Lock()
	defer m.sem.Unlock()
	return m.teardowns
}

func (m *Memory) Released() bool {
	m.sem.Lock()
	defer m.sem.Unlock()
	return m.released
}
