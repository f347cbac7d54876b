package viewer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type metrics struct {
	pushed   prometheus.Counter
	rendered prometheus.Counter
	skipped  prometheus.Counter
	dropped  prometheus.Counter
	queue    prometheus.Gauge
	render   prometheus.Histogram
}

func newMetrics(l zerolog.Logger, reg prometheus.Registerer, title string) *metrics {
	labels := prometheus.Labels{"window": title}
	m := &metrics{
		pushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "liveview",
			Name:        "frames_pushed_total",
			Help:        "Frames enqueued by the producer.",
			ConstLabels: labels,
		}),
		rendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "liveview",
			Name:        "frames_rendered_total",
			Help:        "Frames presented on the surface.",
			ConstLabels: labels,
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "liveview",
			Name:        "frames_skipped_total",
			Help:        "Frames that failed to render or present.",
			ConstLabels: labels,
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "liveview",
			Name:        "frames_dropped_total",
			Help:        "Queued frames discarded at shutdown.",
			ConstLabels: labels,
		}),
		queue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "liveview",
			Name:        "queue_depth",
			Help:        "Messages waiting for the viewer.",
			ConstLabels: labels,
		}),
		render: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "liveview",
			Name:        "render_seconds",
			Help:        "Time spent converting, scaling and annotating a frame.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}

	if reg == nil {
		return m
	}

	for _, c := range []prometheus.Collector{m.pushed, m.rendered, m.skipped, m.dropped, m.queue, m.render} {
		if err := reg.Register(c); err != nil {
			l.Warn().Err(err).Msg("metric not registered")
		}
	}
	return m
}
