package display

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Probe checks that an X server is reachable.
func Probe() error {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDisplayUnavailable, err)
	}
	xu.Conn().Close()
	return nil
}

// Placer moves and resizes a top-level window found by its exact title.
type Placer struct {
	xu    *xgbutil.XUtil
	title string
	win   xproto.Window
}

func NewPlacer(title string) (*Placer, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDisplayUnavailable, err)
	}
	return &Placer{xu: xu, title: title}, nil
}

func (p *Placer) find() (xproto.Window, error) {
	if p.win != 0 {
		return p.win, nil
	}

	clients, err := ewmh.ClientListGet(p.xu)
	if err != nil {
		return 0, fmt.Errorf("failed to get client list: %w", err)
	}
	for _, win := range clients {
		name, err := ewmh.WmNameGet(p.xu, win)
		if err != nil {
			continue
		}
		if name == p.title {
			p.win = win
			return win, nil
		}
	}
	return 0, fmt.Errorf("no window with title %q", p.title)
}

func (p *Placer) MoveResize(x, y, width, height int) error {
	win, err := p.find()
	if err != nil {
		return err
	}

	if err := ewmh.MoveresizeWindow(p.xu, win, x, y, width, height); err != nil {
		xwindow.New(p.xu, win).MoveResize(x, y, width, height)
	}
	return nil
}

func (p *Placer) Close() {
	p.xu.Conn().Close()
}
