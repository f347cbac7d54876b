package channel

import (
	"context"
	"errors"
	"sync"

	"github.com/frizinak/liveview/frame"
)

var ErrClosed = errors.New("Channel closed")

type Kind int

const (
	Update Kind = iota
	Shutdown
)

func (k Kind) String() string {
	switch k {
	case Update:
		return "update"
	case Shutdown:
		return "shutdown"
	}
	return "unknown"
}

type Message struct {
	Kind  Kind
	Frame frame.Frame
}

func UpdateMessage(f frame.Frame) Message { return Message{Kind: Update, Frame: f} }
func ShutdownMessage() Message           { return Message{Kind: Shutdown} }

// Channel is an unbounded FIFO for one producer and one consumer.
// Send never blocks, Receive blocks until a message is queued.
type Channel struct {
	sem    sync.Mutex
	queue  []Message
	ready  chan struct{}
	closed bool
}

func New() *Channel {
	return &Channel{ready: make(chan struct{}, 1)}
}

func (c *Channel) signal() {
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

func (c *Channel) Send(m Message) error {
	c.sem.Lock()
	if c.closed {
		c.sem.Unlock()
		return ErrClosed
	}
	c.queue = append(c.queue, m)
	c.sem.Unlock()
	c.signal()
	return nil
}

// Ready fires when messages might be available, follow up with TryReceive
// until it reports false.
func (c *Channel) Ready() <-chan struct{} { return c.ready }

func (c *Channel) TryReceive() (Message, bool) {
	c.sem.Lock()
	defer c.sem.Unlock()
	if len(c.queue) == 0 {
		return Message{}, false
	}

	m := c.queue[0]
	c.queue[0] = Message{}
	c.queue = c.queue[1:]
	if len(c.queue) != 0 {
		c.signal()
	}
	return m, true
}

func (c *Channel) Receive(ctx context.Context) (Message, error) {
	for {
		if m, ok := c.TryReceive(); ok {
			return m, nil
		}

		select {
		case <-ctx.Done():
			return Message{}, ctx.Err()
		case <-c.ready:
		}
	}
}

func (c *Channel) Len() int {
	c.sem.Lock()
	n := len(c.queue)
	c.sem.Unlock()
	return n
}

// Close rejects further sends, queued messages stay receivable.
func (c *Channel) Close() {
	c.sem.Lock()
	c.closed = true
	c.sem.Unlock()
}

func (c *Channel) Closed() bool {
	c.sem.Lock()
	defer c.sem.Unlock()
	return c.closed
}

// Drain discards all queued messages and returns how many were dropped.
func (c *Channel) Drain() int {
	c.sem.Lock()
	n := len(c.queue)
	c.queue = nil
	c.sem.Unlock()
	return n
}
