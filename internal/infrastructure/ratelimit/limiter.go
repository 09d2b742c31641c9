package ratelimit

import (
	"context"
	"time"
)

// Limits caps requests per sliding window. A zero limit disables that window.
type Limits struct {
	PerMinute int
	PerHour   int
}

// Enabled reports whether any window is limited
func (l Limits) Enabled() bool {
	return l.PerMinute > 0 || l.PerHour > 0
}

type window struct {
	duration time.Duration
	limit    int
}

func (l Limits) windows() []window {
	var ws []window
	if l.PerMinute > 0 {
		ws = append(ws, window{time.Minute, l.PerMinute})
	}
	if l.PerHour > 0 {
		ws = append(ws, window{time.Hour, l.PerHour})
	}
	return ws
}

// Limiter decides whether one more request for key fits in its windows.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
