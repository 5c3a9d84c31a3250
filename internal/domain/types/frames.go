package types

// Frame is anything the lobby pushes to a connection. Concrete frames live in
// the wire package.
type Frame interface {
	FrameType() string
}

// Outbound is the per-connection delivery sink. Deliver must not block for
// long: it either enqueues the frame or fails with ErrOutboundClosed or
// ErrOutboundFull.
type Outbound interface {
	Deliver(f Frame) error
	Close(reason string)
}
