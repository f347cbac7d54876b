package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frizinak/liveview/frame"
	"github.com/rs/zerolog"
)

func TestDots(t *testing.T) {
	f := frame.New(10, 10, 1)
	dots(f, 1)
	for _, p := range [][2]int{{0, 0}, {1, 1}, {3, 3}, {4, 4}} {
		if f.Pix[p[1]*10+p[0]] != 255 {
			t.Fatalf("expected dot at %v", p)
		}
	}
	if f.Pix[2*10+2] != 0 || f.Pix[6*10+6] != 0 {
		t.Fatal("unexpected dot")
	}

	dots(f, 100)
	if f.Pix[9*10+9] != 255 {
		t.Fatal("expected diagonal to reach the corner")
	}
}

func TestDemoPushesInOrder(t *testing.T) {
	a := &app{l: zerolog.Nop()}
	var got []string
	push := func(f frame.Frame) error {
		got = append(got, f.Caption)
		return nil
	}

	err := a.demo(context.Background(), push, make(chan struct{}), 20, 20, 3, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != "0" || got[1] != "3" || got[2] != "6" {
		t.Fatalf("unexpected captions %v", got)
	}
}

func TestDemoStopsOnPushError(t *testing.T) {
	a := &app{l: zerolog.Nop()}
	fail := errors.New("closed")
	n := 0
	push := func(f frame.Frame) error {
		n++
		return fail
	}

	err := a.demo(context.Background(), push, make(chan struct{}), 20, 20, 5, time.Millisecond)
	if !errors.Is(err, fail) || n != 1 {
		t.Fatalf("expected to stop after first error, got %v after %d", err, n)
	}
}
