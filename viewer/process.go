package viewer

import (
	"context"
	"time"

	"github.com/frizinak/liveview/channel"
	"github.com/frizinak/liveview/display"
	"github.com/frizinak/liveview/frame"
	"github.com/frizinak/liveview/render"
	"github.com/rs/zerolog"
)

// process is the consumer side: it owns the surface and the receiving end
// of the channel and runs on the goroutine the display driver hands it.
type process struct {
	l      zerolog.Logger
	r      *render.Renderer
	ch     *channel.Channel
	m      *metrics
	state  *stateVar
	budget time.Duration
}

func (p *process) run(ctx context.Context, s display.Surface) {
	defer p.exit(s)
	p.state.advance(Running)
	events := s.Events()

	for {
		select {
		case <-ctx.Done():
			p.state.advance(ShuttingDown)
			p.l.Warn().Msg("forced termination")
			return

		case e, ok := <-events:
			if !ok || !s.Handle(e) {
				p.l.Warn().Msg("surface destroyed")
				p.state.advance(ShuttingDown)
				return
			}

		case <-p.ch.Ready():
			for {
				msg, ok := p.ch.TryReceive()
				if !ok {
					break
				}
				p.m.queue.Set(float64(p.ch.Len()))

				if msg.Kind == channel.Shutdown {
					p.l.Debug().Msg("shutdown received")
					p.state.advance(ShuttingDown)
					return
				}

				p.frame(s, msg.Frame)

				// keep the window responsive between queued frames
				if !p.pump(s, events) {
					p.l.Warn().Msg("surface destroyed")
					p.state.advance(ShuttingDown)
					return
				}
				if ctx.Err() != nil {
					break
				}
			}
		}
	}
}

func (p *process) pump(s display.Surface, events <-chan interface{}) bool {
	for {
		select {
		case e, ok := <-events:
			if !ok || !s.Handle(e) {
				return false
			}
		default:
			return true
		}
	}
}

func (p *process) frame(s display.Surface, f frame.Frame) {
	if p.state.get() != Running {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			p.m.skipped.Inc()
			p.l.Error().Interface("panic", r).Msg("frame skipped")
		}
	}()

	res, err := p.r.Render(f, s.Size())
	if err != nil {
		p.m.skipped.Inc()
		p.l.Warn().Err(err).Msg("frame skipped")
		return
	}

	p.m.render.Observe(res.Took.Seconds())
	if p.budget > 0 && res.Took > p.budget {
		p.l.Debug().
			Dur("took", res.Took).
			Dur("budget", p.budget).
			Int("width", f.Width).
			Int("height", f.Height).
			Msg("slow render")
	}

	if p.state.get() != Running {
		return
	}

	if err := s.Present(res.Image); err != nil {
		p.m.skipped.Inc()
		p.l.Warn().Err(err).Msg("present failed")
		return
	}
	p.m.rendered.Inc()

	if res.Scaled {
		if err := s.Resize(res.Size); err != nil {
			p.l.Debug().Err(err).Msg("window resize")
		}
	}
}

func (p *process) exit(s display.Surface) {
	s.Teardown()
	p.ch.Close()
	if n := p.ch.Drain(); n != 0 {
		p.m.dropped.Add(float64(n))
		p.l.Info().Int("frames", n).Msg("discarded queued frames")
	}
	p.m.queue.Set(0)
	p.state.advance(Stopped)
}
