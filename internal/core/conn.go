package core

// Frame is a marshaled outbound event.
type Frame []byte

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; TrySend must never block, Close must be
// safe to call more than once. Frames queued before Close are
// still flushed to the wire.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
