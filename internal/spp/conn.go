package spp

import (
    "context"
    "errors"
    "fmt"
    "io"
    "strings"
    "sync"

    "github.com/sirupsen/logrus"
)

// SerialConnection owns at most one RFCOMM connection to a remote SPP device.
//
// The zero value is not usable; create instances with New. An instance may be
// connected and disconnected any number of times.
type SerialConnection struct {
    provider AdapterProvider
    logger   logrus.FieldLogger

    mu        sync.Mutex
    connected bool
    address   string
    adapter   Adapter
    socket    Socket
    output    io.WriteCloser
    input     io.ReadCloser
}

// New creates a disconnected SerialConnection that obtains its adapter from provider.
// A nil logger discards log output.
func New(provider AdapterProvider, logger logrus.FieldLogger) *SerialConnection {
    if logger == nil {
        l := logrus.New()
        l.SetOutput(io.Discard)
        logger = l
    }
    return &SerialConnection{
        provider: provider,
        logger:   logger.WithField("component", "spp"),
    }
}

// Connect opens an RFCOMM connection to the SPP service of the device at address.
//
// Connect blocks until the link is up, fails, or ctx is done. On any failure the
// connection is left fully disconnected. Calling Connect on a connected instance
// returns ErrAlreadyConnected and leaves the existing connection untouched.
func (c *SerialConnection) Connect(ctx context.Context, address string) error {
    c.mu.Lock()
    defer c.mu.Unlock()

    log := c.logger.WithField("address", address)
    if c.connected {
        log.Error("connect: already connected")
        return ErrAlreadyConnected
    }

    adapter, err := c.provider.DefaultAdapter()
    if err != nil || adapter == nil {
        log.WithError(err).Error("connect: no adapter")
        if err != nil {
            return fmt.Errorf("%w: %v", ErrAdapterUnavailable, err)
        }
        return ErrAdapterUnavailable
    }

    enabled, err := adapter.Enabled()
    if err != nil {
        log.WithError(err).Error("connect: query adapter state")
        return &SocketError{Op: "adapter", Address: address, Err: err}
    }
    if !enabled {
        log.Error("connect: bluetooth disabled")
        return ErrAdapterDisabled
    }

    // Device paths and the kernel address parser only accept upper-case hex.
    address = strings.ToUpper(address)
    c.adapter = adapter
    c.address = address
    if err := c.openLocked(ctx, adapter, address); err != nil {
        log.WithError(err).Error("connect failed")
        _ = c.teardownLocked()
        return err
    }

    c.connected = true
    log.Info("connected")
    return nil
}

// openLocked creates and connects the socket and acquires both streams.
// Whatever it managed to acquire is left on c for teardownLocked.
func (c *SerialConnection) openLocked(ctx context.Context, adapter Adapter, address string) error {
    device, err := adapter.RemoteDevice(address)
    if err != nil {
        return &SocketError{Op: "device", Address: address, Err: err}
    }
    socket, err := device.CreateRFCOMMSocket(SPPUUID)
    if err != nil {
        return &SocketError{Op: "socket", Address: address, Err: err}
    }
    c.socket = socket

    // Discovery slows connection setup considerably.
    if err := adapter.CancelDiscovery(); err != nil {
        c.logger.WithError(err).Warn("connect: cancel discovery")
    }

    if err := socket.Connect(ctx); err != nil {
        return &SocketError{Op: "connect", Address: address, Err: err}
    }
    if c.output, err = socket.OutputStream(); err != nil {
        c.output = nil
        return &SocketError{Op: "streams", Address: address, Err: err}
    }
    if c.input, err = socket.InputStream(); err != nil {
        c.input = nil
        return &SocketError{Op: "streams", Address: address, Err: err}
    }
    return nil
}

// Disconnect closes the output stream, the input stream and the socket, in
// that order. Every close is attempted even if an earlier one fails; the
// returned error joins the failures. The instance is always disconnected
// afterwards, and calling Disconnect on a disconnected instance is a no-op.
func (c *SerialConnection) Disconnect() error {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.teardownLocked()
}

func (c *SerialConnection) teardownLocked() error {
    var errs []error
    closeOne := func(what string, cl io.Closer) {
        if err := cl.Close(); err != nil {
            c.logger.WithError(err).WithField("address", c.address).Errorf("close %s", what)
            errs = append(errs, &SocketError{Op: "close", Address: c.address, Err: fmt.Errorf("%s: %w", what, err)})
        }
    }
    if c.output != nil {
        closeOne("output stream", c.output)
    }
    if c.input != nil {
        closeOne("input stream", c.input)
    }
    if c.socket != nil {
        closeOne("socket", c.socket)
    }

    if c.connected {
        c.logger.WithField("address", c.address).Info("disconnected")
    }
    c.output = nil
    c.input = nil
    c.socket = nil
    c.adapter = nil
    c.address = ""
    c.connected = false
    return errors.Join(errs...)
}

// IsConnected reports whether the instance holds a live connection.
func (c *SerialConnection) IsConnected() bool {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.connected
}

// Address returns the normalised address of the connected device, or "".
func (c *SerialConnection) Address() string {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.address
}

// WriteByte writes b to the device.
// A write failure disconnects the instance.
func (c *SerialConnection) WriteByte(b byte) error {
    out, sock, addr := c.outputSnapshot()
    if out == nil {
        return ErrNotConnected
    }
    if _, err := out.Write([]byte{b}); err != nil {
        return c.fail(sock, addr, "write", err)
    }
    return nil
}

// ReadByte blocks until one byte arrives from the device.
//
// At end of stream it returns io.EOF and the connection stays up. Any other
// read failure disconnects the instance.
func (c *SerialConnection) ReadByte() (byte, error) {
    c.mu.Lock()
    in, sock, addr := c.input, c.socket, c.address
    c.mu.Unlock()
    if in == nil {
        return 0, ErrNotConnected
    }

    var buf [1]byte
    if _, err := io.ReadFull(in, buf[:]); err != nil {
        if errors.Is(err, io.EOF) {
            return 0, io.EOF
        }
        return 0, c.fail(sock, addr, "read", err)
    }
    return buf[0], nil
}

// ReadByteValue is ReadByte with an int result: the byte value (0-255) on
// success, -1 at end of stream and 0 on any failure.
//
// A failure is indistinguishable from a received zero byte; callers that need
// to tell them apart must use ReadByte or check IsConnected.
func (c *SerialConnection) ReadByteValue() int {
    b, err := c.ReadByte()
    switch {
    case err == nil:
        return int(b)
    case errors.Is(err, io.EOF):
        return -1
    default:
        return 0
    }
}

// Flush flushes the output stream if it buffers writes.
// It is a no-op while disconnected. A flush failure disconnects the instance.
func (c *SerialConnection) Flush() error {
    out, sock, addr := c.outputSnapshot()
    if out == nil {
        return nil
    }
    f, ok := out.(Flusher)
    if !ok {
        return nil
    }
    if err := f.Flush(); err != nil {
        return c.fail(sock, addr, "flush", err)
    }
    return nil
}

func (c *SerialConnection) outputSnapshot() (io.WriteCloser, Socket, string) {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.output, c.socket, c.address
}

// fail logs an I/O failure and tears the connection down, unless sock has
// already been replaced or released.
func (c *SerialConnection) fail(sock Socket, address, op string, err error) error {
    c.mu.Lock()
    defer c.mu.Unlock()

    c.logger.WithError(err).WithFields(logrus.Fields{"op": op, "address": address}).Error("i/o failed")
    if sock != nil && c.socket == sock {
        _ = c.teardownLocked()
    }
    return &SocketError{Op: op, Address: address, Err: err}
}
