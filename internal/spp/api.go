// Package spp wraps a platform Bluetooth Serial Port Profile socket behind a
// single-byte connection API.
//
// The platform side (adapter lookup, device resolution, RFCOMM sockets) is
// injected through the interfaces below so the connection never touches
// process-global Bluetooth state.
//
// Thread-safety: Connect, Disconnect, Flush and IsConnected may be called from
// any goroutine. One reader (ReadByte) and one writer (WriteByte) may run
// concurrently; multiple concurrent readers or writers are not supported.
package spp

import (
    "context"
    "io"

    "github.com/google/uuid"
)

// SPPUUID is the Serial Port Profile service class UUID used for RFCOMM connections.
var SPPUUID = uuid.MustParse("00001101-0000-1000-8000-00805F9B34FB")

// AdapterProvider returns the local Bluetooth adapter to connect through.
type AdapterProvider interface {
    // DefaultAdapter returns the system's default adapter.
    // A nil Adapter (with or without an error) means no adapter is available.
    DefaultAdapter() (Adapter, error)
}

// Adapter is the local Bluetooth controller.
type Adapter interface {
    // Enabled reports whether the radio is powered on.
    Enabled() (bool, error)

    // CancelDiscovery stops an in-progress device discovery, if any.
    // Calling it while no discovery runs is not an error.
    CancelDiscovery() error

    // RemoteDevice maps an address of the form "AA:BB:CC:DD:EE:FF" to a device handle.
    // It does not contact the device.
    RemoteDevice(address string) (Device, error)
}

// Device is a remote Bluetooth device.
type Device interface {
    // Address returns the device address.
    Address() string

    // CreateRFCOMMSocket prepares an unconnected RFCOMM socket to the given service.
    CreateRFCOMMSocket(service uuid.UUID) (Socket, error)
}

// Socket is a single RFCOMM connection.
//
// Contract:
//   - Connect blocks until the link is up, fails, or ctx is done.
//   - InputStream and OutputStream are only valid after a successful Connect.
//     Closing a stream does not close the socket.
//   - Close releases every resource held by the socket and may be called
//     on an unconnected socket.
type Socket interface {
    Connect(ctx context.Context) error
    InputStream() (io.ReadCloser, error)
    OutputStream() (io.WriteCloser, error)
    Close() error
}

// Flusher is implemented by output streams that buffer writes.
type Flusher interface {
    Flush() error
}
