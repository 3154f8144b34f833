package spp

import (
    "errors"
    "fmt"
)

var (
    // ErrAdapterUnavailable is returned by Connect when no local adapter exists.
    ErrAdapterUnavailable = errors.New("spp: no adapter")

    // ErrAdapterDisabled is returned by Connect when the adapter is powered off.
    ErrAdapterDisabled = errors.New("spp: bluetooth disabled")

    // ErrAlreadyConnected is returned by Connect on a connected instance.
    ErrAlreadyConnected = errors.New("spp: already connected")

    // ErrNotConnected is returned by I/O calls on a disconnected instance.
    // It does not change the connection state.
    ErrNotConnected = errors.New("spp: not connected")
)

// SocketError reports a failure of the platform socket layer.
// Op is one of "adapter", "device", "socket", "connect", "streams",
// "read", "write", "flush" or "close".
type SocketError struct {
    Op      string
    Address string
    Err     error
}

func (e *SocketError) Error() string {
    if e == nil {
        return "<nil>"
    }
    if e.Address == "" {
        return fmt.Sprintf("spp: %s: %v", e.Op, e.Err)
    }
    return fmt.Sprintf("spp: %s %s: %v", e.Op, e.Address, e.Err)
}

func (e *SocketError) Unwrap() error {
    return e.Err
}

// IsSocketError reports whether err is a SocketError for the given op.
// An empty op matches any SocketError.
func IsSocketError(err error, op string) bool {
    var serr *SocketError
    if errors.As(err, &serr) {
        return op == "" || serr.Op == op
    }
    return false
}
