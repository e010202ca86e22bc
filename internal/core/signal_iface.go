package core

// Frame is a raw payload handed to a transport endpoint.
type Frame []byte

// SignalConnection abstracts the realtime messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
