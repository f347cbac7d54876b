package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

func decodeFile(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return img, nil
}

func (a *app) showCmd() *cobra.Command {
	var hold time.Duration
	cmd := &cobra.Command{
		Use:   "show <image>...",
		Short: "Show image files one after another",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel, h, err := a.start()
			if err != nil {
				return err
			}
			defer cancel()

			for _, file := range args {
				img, err := decodeFile(file)
				if err != nil {
					a.l.Warn().Err(err).Msg("skipping file")
					continue
				}
				if err := h.PushImage(img, filepath.Base(file)); err != nil {
					return err
				}
			}

			if hold > 0 {
				select {
				case <-ctx.Done():
				case <-h.Done():
				case <-time.After(hold):
				}
			}
			return h.Stop()
		},
	}

	cmd.Flags().DurationVar(&hold, "hold", time.Second*5, "Keep the last image up this long")
	return cmd
}
