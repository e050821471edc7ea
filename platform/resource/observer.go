package resource

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robbyt/go-livescript/platform/service"
)

// Observer is notified synchronously after a Resource reloads.
type Observer interface {
	Reloaded(ctx context.Context, event Event)
}

// Event describes a completed reload.
type Event struct {
	Name    string
	Outcome service.Outcome
	At      time.Time
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, event Event)

func (f ObserverFunc) Reloaded(ctx context.Context, event Event) {
	f(ctx, event)
}

// ChannelObserver publishes reload events into a buffered channel. Events that do not
// fit in the buffer are dropped and counted.
type ChannelObserver struct {
	ch      chan Event
	dropped atomic.Uint64
}

// NewChannelObserver creates a ChannelObserver with the given buffer size.
func NewChannelObserver(size int) *ChannelObserver {
	if size < 1 {
		size = 1
	}
	return &ChannelObserver{ch: make(chan Event, size)}
}

// Events returns the receive side of the channel.
func (c *ChannelObserver) Events() <-chan Event {
	return c.ch
}

// Dropped returns how many events were discarded because the buffer was full.
func (c *ChannelObserver) Dropped() uint64 {
	return c.dropped.Load()
}

func (c *ChannelObserver) Reloaded(_ context.Context, event Event) {
	select {
	case c.ch <- event:
	default:
		c.dropped.Add(1)
	}
}

type subscription struct {
	id       uint64
	observer Observer
}
