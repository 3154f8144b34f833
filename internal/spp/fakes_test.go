package spp

import (
    "bytes"
    "context"
    "errors"
    "io"
    "sync"

    "github.com/google/uuid"
)

var errBoom = errors.New("boom")

type fakeProvider struct {
    adapter *fakeAdapter
    err     error
    calls   int
}

func (p *fakeProvider) DefaultAdapter() (Adapter, error) {
    p.calls++
    if p.adapter == nil {
        return nil, p.err
    }
    return p.adapter, p.err
}

// socketPlan configures the sockets a fakeAdapter hands out.
type socketPlan struct {
    connectErr   error
    outputErr    error
    inputErr     error
    closeErr     error
    outCloseErr  error
    inCloseErr   error
    blockConnect bool
    input        []byte
    noFlush      bool
}

type fakeAdapter struct {
    enabled    bool
    enabledErr error
    cancelErr  error
    resolveErr error
    socketErr  error
    plan       socketPlan

    cancelCalls int
    resolved    []string
    services    []uuid.UUID
    sockets     []*fakeSocket
}

func newFakeAdapter() *fakeAdapter {
    return &fakeAdapter{enabled: true}
}

func (a *fakeAdapter) Enabled() (bool, error) {
    return a.enabled, a.enabledErr
}

func (a *fakeAdapter) CancelDiscovery() error {
    a.cancelCalls++
    return a.cancelErr
}

func (a *fakeAdapter) RemoteDevice(address string) (Device, error) {
    a.resolved = append(a.resolved, address)
    if a.resolveErr != nil {
        return nil, a.resolveErr
    }
    return &fakeDevice{adapter: a, address: address}, nil
}

func (a *fakeAdapter) lastSocket() *fakeSocket {
    if len(a.sockets) == 0 {
        return nil
    }
    return a.sockets[len(a.sockets)-1]
}

type fakeDevice struct {
    adapter *fakeAdapter
    address string
}

func (d *fakeDevice) Address() string { return d.address }

func (d *fakeDevice) CreateRFCOMMSocket(service uuid.UUID) (Socket, error) {
    d.adapter.services = append(d.adapter.services, service)
    if d.adapter.socketErr != nil {
        return nil, d.adapter.socketErr
    }
    plan := d.adapter.plan
    s := &fakeSocket{plan: plan}
    s.in = &fakeInput{sock: s, data: append([]byte(nil), plan.input...), closeErr: plan.inCloseErr}
    s.out = &fakeOutput{sock: s, closeErr: plan.outCloseErr}
    d.adapter.sockets = append(d.adapter.sockets, s)
    return s, nil
}

type fakeSocket struct {
    plan      socketPlan
    connected bool
    closed    int
    in        *fakeInput
    out       *fakeOutput

    mu     sync.Mutex
    events []string
}

func (s *fakeSocket) record(ev string) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.events = append(s.events, ev)
}

func (s *fakeSocket) Connect(ctx context.Context) error {
    if s.plan.blockConnect {
        <-ctx.Done()
        return ctx.Err()
    }
    if s.plan.connectErr != nil {
        return s.plan.connectErr
    }
    s.connected = true
    return nil
}

func (s *fakeSocket) InputStream() (io.ReadCloser, error) {
    if s.plan.inputErr != nil {
        return nil, s.plan.inputErr
    }
    return s.in, nil
}

func (s *fakeSocket) OutputStream() (io.WriteCloser, error) {
    if s.plan.outputErr != nil {
        return nil, s.plan.outputErr
    }
    if s.plan.noFlush {
        return plainWriter{s.out}, nil
    }
    return s.out, nil
}

func (s *fakeSocket) Close() error {
    s.closed++
    s.record("socket")
    return s.plan.closeErr
}

type fakeInput struct {
    sock     *fakeSocket
    data     []byte
    readErr  error
    closeErr error
    closed   bool
}

func (in *fakeInput) Read(p []byte) (int, error) {
    if in.readErr != nil {
        return 0, in.readErr
    }
    if len(in.data) == 0 {
        return 0, io.EOF
    }
    n := copy(p, in.data)
    in.data = in.data[n:]
    return n, nil
}

func (in *fakeInput) Close() error {
    in.closed = true
    in.sock.record("input")
    return in.closeErr
}

type fakeOutput struct {
    sock     *fakeSocket
    buf      bytes.Buffer
    writeErr error
    flushErr error
    closeErr error
    flushes  int
    closed   bool
}

func (out *fakeOutput) Write(p []byte) (int, error) {
    if out.writeErr != nil {
        return 0, out.writeErr
    }
    return out.buf.Write(p)
}

func (out *fakeOutput) Flush() error {
    out.flushes++
    return out.flushErr
}

func (out *fakeOutput) Close() error {
    out.closed = true
    out.sock.record("output")
    return out.closeErr
}

// plainWriter hides fakeOutput's Flush method.
type plainWriter struct {
    out *fakeOutput
}

func (w plainWriter) Write(p []byte) (int, error) { return w.out.Write(p) }
func (w plainWriter) Close() error                { return w.out.Close() }
