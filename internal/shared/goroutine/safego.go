// Package goroutine runs background work with panic recovery.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"singmerge/internal/shared/logger"
)

// Go runs fn in a new goroutine and delivers its result on the returned channel.
// A panic in fn is logged with its stack and delivered as an error.
// The channel is buffered and closed after the single send.
func Go(log logger.Interface, name string, fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("goroutine panicked",
					"goroutine", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
				done <- fmt.Errorf("%s panicked: %v", name, r)
			}
		}()
		done <- fn()
	}()
	return done
}
