package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/frizinak/liveview/channel"
	"github.com/frizinak/liveview/display"
	"github.com/frizinak/liveview/frame"
	"github.com/frizinak/liveview/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	DefaultSettleDelay  = time.Millisecond * 100
	DefaultGracePeriod  = time.Second * 5
	DefaultKillGrace    = time.Second
	DefaultRenderBudget = time.Millisecond * 50
)

type Config struct {
	Width  int
	Height int
	Title  string

	// SettleDelay is slept after every Push to throttle producers that
	// outpace the display. Zero disables it.
	SettleDelay time.Duration

	// GracePeriod bounds a cooperative Stop, KillGrace the wait after
	// forcing termination.
	GracePeriod time.Duration
	KillGrace   time.Duration

	// RenderBudget is the per-frame render time above which a slow render
	// is logged.
	RenderBudget time.Duration

	Render render.Config
}

func DefaultConfig(width, height int, title string) Config {
	return Config{
		Width:        width,
		Height:       height,
		Title:        title,
		SettleDelay:  DefaultSettleDelay,
		GracePeriod:  DefaultGracePeriod,
		KillGrace:    DefaultKillGrace,
		RenderBudget: DefaultRenderBudget,
	}
}

func (c Config) withDefaults() Config {
	if c.Title == "" {
		c.Title = display.DefaultTitle
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = DefaultGracePeriod
	}
	if c.KillGrace <= 0 {
		c.KillGrace = DefaultKillGrace
	}
	if c.RenderBudget <= 0 {
		c.RenderBudget = DefaultRenderBudget
	}
	return c
}

type Option func(*options)

type options struct {
	driver display.Driver
	l      zerolog.Logger
	reg    prometheus.Registerer
}

func WithDriver(d display.Driver) Option { return func(o *options) { o.driver = d } }

func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.l = l } }

func WithRegisterer(r prometheus.Registerer) Option { return func(o *options) { o.reg = r } }

// Handle is the producer side of a running viewer.
type Handle struct {
	l     zerolog.Logger
	c     Config
	ch    *channel.Channel
	m     *metrics
	state stateVar

	cancel context.CancelFunc
	done   chan struct{}

	sem     sync.Mutex
	surface display.Surface

	stopOnce sync.Once
	stopErr  error
}

// CreateViewer opens a window of the given size with default settings.
func CreateViewer(ctx context.Context, width, height int, title string, opts ...Option) (*Handle, error) {
	return Create(ctx, DefaultConfig(width, height, title), opts...)
}

// Create starts the viewer and returns once it is running. When the display
// cannot be opened the returned error wraps ErrDisplayUnavailable.
func Create(ctx context.Context, c Config, opts ...Option) (*Handle, error) {
	o := options{driver: display.Shiny, l: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}

	c = c.withDefaults()
	l := o.l.With().Str("window", c.Title).Logger()
	r, err := render.New(l, c.Render)
	if err != nil {
		return nil, err
	}

	pctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		l:      l,
		c:      c,
		ch:     channel.New(),
		m:      newMetrics(l, o.reg, c.Title),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	p := &process{
		l:      l,
		r:      r,
		ch:     h.ch,
		m:      h.m,
		state:  &h.state,
		budget: c.RenderBudget,
	}

	started := make(chan error, 1)
	dopts := display.Options{
		Width:  c.Width,
		Height: c.Height,
		Title:  c.Title,
		Logger: l,
	}

	go func() {
		defer close(h.done)
		var ran bool
		err := o.driver(dopts, func(s display.Surface) {
			ran = true
			h.sem.Lock()
			h.surface = s
			h.sem.Unlock()
			h.state.advance(Running)
			started <- nil
			p.run(pctx, s)
		})

		h.ch.Close()
		h.state.advance(Stopped)
		if ran {
			if err != nil {
				l.Error().Err(err).Msg("display driver")
			}
			return
		}

		if err == nil {
			err = errors.New("driver returned without a surface")
		}
		if !errors.Is(err, display.ErrDisplayUnavailable) {
			err = fmt.Errorf("%w: %v", display.ErrDisplayUnavailable, err)
		}
		started <- err
	}()

	select {
	case err := <-started:
		if err != nil {
			cancel()
			return nil, err
		}
	case <-ctx.Done():
		h.cancel()
		h.reclaim()
		return nil, ctx.Err()
	}

	l.Debug().Int("width", c.Width).Int("height", c.Height).Msg("viewer running")
	return h, nil
}

func (h *Handle) State() State { return h.state.get() }

// Done is closed once the viewer has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Push queues f for display. f is copied, the caller keeps ownership of its
// buffer. Invalid frames are accepted here and skipped by the viewer.
func (h *Handle) Push(f frame.Frame) error {
	if err := h.ch.Send(channel.UpdateMessage(f.Clone())); err != nil {
		return err
	}
	h.m.pushed.Inc()
	h.m.queue.Set(float64(h.ch.Len()))

	if h.c.SettleDelay > 0 {
		time.Sleep(h.c.SettleDelay)
	}
	return nil
}

func (h *Handle) PushImage(img image.Image, caption string) error {
	f := frame.FromImage(img)
	f.Caption = caption
	return h.Push(f)
}

// Stop shuts the viewer down and waits for it to exit. Calling it again
// returns the first result.
func (h *Handle) Stop() error {
	h.stopOnce.Do(func() { h.stopErr = h.stop() })
	return h.stopErr
}

func (h *Handle) stop() error {
	defer h.cancel()

	if err := h.ch.Send(channel.ShutdownMessage()); err != nil {
		h.l.Debug().Err(err).Msg("viewer already exited")
	}
	h.ch.Close()

	grace := time.NewTimer(h.c.GracePeriod)
	defer grace.Stop()
	select {
	case <-h.done:
		return nil
	case <-grace.C:
	}

	h.l.Warn().Dur("grace", h.c.GracePeriod).Msg("viewer unresponsive, forcing termination")
	h.state.advance(ShuttingDown)
	h.cancel()

	kill := time.NewTimer(h.c.KillGrace)
	defer kill.Stop()
	select {
	case <-h.done:
	case <-kill.C:
		h.reclaim()
	}

	return fmt.Errorf("%w after %s", ErrShutdownTimeout, h.c.GracePeriod)
}

// reclaim releases the surface from outside the viewer goroutine, only used
// when that goroutine does not exit on its own.
func (h *Handle) reclaim() {
	h.state.advance(Stopped)
	h.ch.Close()
	h.ch.Drain()

	h.sem.Lock()
	s := h.surface
	h.sem.Unlock()
	if s != nil {
		s.Teardown()
	}
}
