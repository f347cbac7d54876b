package main

import (
	"context"
	"strconv"
	"time"

	"github.com/frizinak/liveview/frame"
	"github.com/spf13/cobra"
)

// dots draws a 2x2 block on the diagonal for every step up to n, the way a
// running maximum accumulates a moving target.
func dots(f frame.Frame, n int) {
	for i := 0; i <= n; i++ {
		p := i * 3
		for y := p; y < p+2 && y < f.Height; y++ {
			for x := p; x < p+2 && x < f.Width; x++ {
				for c := 0; c < f.Channels; c++ {
					f.Pix[(y*f.Width+x)*f.Channels+c] = 255
				}
			}
		}
	}
}

func (a *app) demoCmd() *cobra.Command {
	var width, height, count int
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Push a synthetic maxpixel stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel, h, err := a.start()
			if err != nil {
				return err
			}
			defer cancel()

			err = a.demo(ctx, h.Push, h.Done(), width, height, count, interval)
			if serr := h.Stop(); serr != nil && err == nil {
				err = serr
			}
			return err
		},
	}

	cmd.Flags().IntVar(&width, "width", 2000, "Frame width")
	cmd.Flags().IntVar(&height, "height", 2000, "Frame height")
	cmd.Flags().IntVarP(&count, "count", "n", 100, "Number of frames")
	cmd.Flags().DurationVar(&interval, "interval", time.Millisecond*100, "Pause between frames")
	return cmd
}

func (a *app) demo(
	ctx context.Context,
	push func(frame.Frame) error,
	done <-chan struct{},
	width, height, count int,
	interval time.Duration,
) error {
	f := frame.New(width, height, 1)
	for i := 0; i < count; i++ {
		dots(f, i)
		f.Caption = strconv.Itoa(i * 3)
		if err := push(f); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-done:
			a.l.Warn().Msg("viewer exited")
			return nil
		case <-time.After(interval):
		}
	}
	return nil
}
