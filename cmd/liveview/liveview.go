package main

import (
	"context"
	"errors"
	"image"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/frizinak/liveview/config"
	"github.com/frizinak/liveview/display"
	"github.com/frizinak/liveview/viewer"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type app struct {
	configFile string
	logLevel   string
	metrics    string
	headless   bool

	conf config.Config
	l    zerolog.Logger
	reg  *prometheus.Registry
}

func main() {
	a := &app{
		l: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger(),
	}
	root := &cobra.Command{
		Use:           "liveview",
		Short:         "Show the latest frames of a capture pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Config file (.json, .yaml, .toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the configured log level")
	root.PersistentFlags().StringVar(&a.metrics, "metrics", "", "Serve Prometheus metrics on this address")
	root.PersistentFlags().BoolVar(&a.headless, "headless", false, "Render offscreen instead of opening a window")

	root.AddCommand(a.initCmd(), a.demoCmd(), a.showCmd())

	if err := root.Execute(); err != nil {
		a.l.Fatal().Err(err).Msg("liveview")
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Name() == "init" {
		return nil
	}

	a.conf = config.Defaults()
	file := a.configFile
	if file == "" {
		var err error
		if file, err = config.DefaultConfigFile(); err != nil {
			return err
		}
	}

	conf, err := config.LoadConfig(file)
	switch {
	case err == nil:
		a.conf = conf
	case os.IsNotExist(err) && a.configFile == "":
		a.l.Debug().Str("file", file).Msg("no config file, using defaults")
	default:
		return err
	}

	if a.logLevel != "" {
		a.conf.LogLevel = a.logLevel
	}
	if a.metrics != "" {
		a.conf.MetricsAddr = a.metrics
	}

	lvl, err := a.conf.Level()
	if err != nil {
		return err
	}
	a.l = a.l.Level(lvl)
	a.reg = prometheus.NewRegistry()
	return nil
}

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file := a.configFile
			if file == "" {
				var err error
				if file, err = config.DefaultConfigFile(); err != nil {
					return err
				}
			}

			created, err := config.EnsureConfig(file)
			if err != nil {
				return err
			}
			if !created {
				a.l.Info().Str("file", file).Msg("config file exists")
				return nil
			}
			a.l.Info().Str("file", file).Msg("created example config file")
			return nil
		},
	}
}

// start opens the viewer and the metrics endpoint and returns a context that
// ends on SIGINT/SIGTERM.
func (a *app) start() (context.Context, context.CancelFunc, *viewer.Handle, error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	opts := []viewer.Option{
		viewer.WithLogger(a.l),
		viewer.WithRegisterer(a.reg),
	}
	if a.headless {
		opts = append(opts, viewer.WithDriver(display.Headless(display.NewMemory(image.Point{}))))
	}

	h, err := viewer.Create(ctx, a.conf.ToViewerConfig(), opts...)
	if err != nil {
		cancel()
		if errors.Is(err, viewer.ErrDisplayUnavailable) {
			a.l.Error().Msg("no display reachable, rerun with --headless")
		}
		return nil, nil, nil, err
	}

	if a.conf.MetricsAddr != "" {
		r := chi.NewRouter()
		r.Handle("/metrics", promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: a.conf.MetricsAddr, Handler: r}
		go func() {
			a.l.Info().Str("addr", a.conf.MetricsAddr).Msg("serving metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.l.Error().Err(err).Msg("metrics server")
			}
		}()
		go func() {
			<-h.Done()
			srv.Close()
		}()
	}

	return ctx, cancel, h, nil
}
