package adapters

import (
	"testing"

	"github.com/stretchr/testify/require"

	"huddle/internal/core"
)

func TestWSConn_TrySendQueuesUntilFull(t *testing.T) {
	req := require.New(t)
	c := &wsConn{send: make(chan core.Frame, 2)}

	req.NoError(c.TrySend(core.Frame("a")))
	req.NoError(c.TrySend(core.Frame("b")))

	// The queue is full, the next frame is refused instead of blocking
	req.ErrorIs(c.TrySend(core.Frame("c")), ErrBackpressure)

	req.Equal(core.Frame("a"), <-c.send)
	req.NoError(c.TrySend(core.Frame("d")))
}

func TestWSConn_CloseFlushesQueuedFrames(t *testing.T) {
	req := require.New(t)
	c := &wsConn{send: make(chan core.Frame, 2)}
	req.NoError(c.TrySend(core.Frame("bye")))

	c.Close()

	// Frames queued before Close still drain; new sends are refused
	frame, ok := <-c.send
	req.True(ok)
	req.Equal(core.Frame("bye"), frame)
	_, ok = <-c.send
	req.False(ok)
	req.ErrorIs(c.TrySend(core.Frame("late")), ErrClosed)
}

func TestWSConn_CloseIsIdempotent(t *testing.T) {
	c := &wsConn{send: make(chan core.Frame, 1)}
	c.Close()
	c.Close()
}
