package goroutine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"singmerge/internal/shared/logger"
)

func TestGo(t *testing.T) {
	want := errors.New("listen failed")
	err := <-Go(logger.NewNopLogger(), "worker", func() error { return want })
	assert.ErrorIs(t, err, want)

	assert.NoError(t, <-Go(logger.NewNopLogger(), "worker", func() error { return nil }))
}

func TestGo_RecoversPanic(t *testing.T) {
	done := Go(logger.NewNopLogger(), "worker", func() error { panic("boom") })

	err := <-done
	assert.EqualError(t, err, "worker panicked: boom")

	_, open := <-done
	assert.False(t, open)
}
