// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package refresh

import "context"

// Event is a host lifecycle notification.
type Event int

// Host lifecycle events.
const (
	EventViewChanged Event = iota
	EventSceneLoaded
	EventRefresh
)

func (e Event) String() string {
	switch e {
	case EventViewChanged:
		return "view_changed"
	case EventSceneLoaded:
		return "scene_loaded"
	case EventRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Handle dispatches one event.
func (c *Controller) Handle(ctx context.Context, ev Event) {
	switch ev {
	case EventViewChanged:
		c.OnActiveViewChanged(ctx)
	case EventSceneLoaded:
		c.OnSceneLoaded(ctx)
	case EventRefresh:
		_ = c.Refresh(ctx)
	default:
		c.logger.Warn("unknown event", "event", int(ev))
	}
}

// Run handles events in arrival order until ctx is cancelled or events is
// closed.
func (c *Controller) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.Handle(ctx, ev)
		}
	}
}
