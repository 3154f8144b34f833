//go:build linux

package bluez

import (
    "context"
    "errors"
    "fmt"
    "os"
    "strconv"
    "sync"
    "sync/atomic"

    dbus "github.com/godbus/dbus/v5"
    "github.com/sirupsen/logrus"
    "golang.org/x/sys/unix"
)

var pathCounter uint64

// profile implements org.bluez.Profile1 and forwards NewConnection events.
type profile struct {
    mu       sync.Mutex
    ch       chan acceptResult
    accepted bool // true after first delivery; subsequent connections are rejected/closed
    logger   logrus.FieldLogger
}

type acceptResult struct {
    fd  int
    mac string
}

func newProfile(logger logrus.FieldLogger) *profile {
    return &profile{ch: make(chan acceptResult, 1), logger: logger}
}

// Release is called by BlueZ when the profile is being released.
func (p *profile) Release() *dbus.Error { return nil }

// Cancel may be called to indicate a canceled request.
func (p *profile) Cancel() *dbus.Error { return nil }

// RequestDisconnection is ignored; the socket owner closes the fd.
func (p *profile) RequestDisconnection(_ dbus.ObjectPath) *dbus.Error { return nil }

// NewConnection delivers the RFCOMM socket fd to the waiting Connect.
func (p *profile) NewConnection(dev dbus.ObjectPath, fd dbus.UnixFD, _ map[string]dbus.Variant) *dbus.Error {
    res := acceptResult{fd: int(fd), mac: macFromPath(string(dev))}
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.accepted {
        p.logger.WithField("peer", res.mac).Warn("rejecting extra connection")
        _ = unix.Close(res.fd)
        return &dbus.Error{Name: "org.bluez.Error.Rejected", Body: []interface{}{"already connected"}}
    }
    select {
    case p.ch <- res:
        p.accepted = true
        return nil
    default:
        _ = unix.Close(res.fd)
        return &dbus.Error{Name: "org.bluez.Error.Rejected", Body: []interface{}{"no receiver"}}
    }
}

// drain closes an fd that was delivered but never picked up.
func (p *profile) drain() {
    select {
    case res := <-p.ch:
        _ = unix.Close(res.fd)
    default:
    }
}

// profileSocket connects the SPP service through a client-role BlueZ profile.
type profileSocket struct {
    fileSocket

    bus     *dbus.Conn
    devPath dbus.ObjectPath
    service string
    logger  logrus.FieldLogger

    mu      sync.Mutex
    closed  bool
    used    bool
    prof    *profile
    cleanup []func()
}

func (s *profileSocket) register() (chan acceptResult, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.closed {
        return nil, errors.New("bluez: socket closed")
    }
    if s.used {
        return nil, errors.New("bluez: Connect already used")
    }
    s.used = true

    s.prof = newProfile(s.logger)
    // Unique path per socket to avoid collisions.
    id := atomic.AddUint64(&pathCounter, 1)
    path := dbus.ObjectPath("/org/bluetooth_spp/client/p" + strconv.FormatUint(id, 10))
    if err := s.bus.Export(s.prof, path, profileInterfaceName); err != nil {
        return nil, fmt.Errorf("bluez: export client profile: %w", err)
    }
    s.cleanup = append(s.cleanup, func() {
        _ = s.bus.Export(nil, path, profileInterfaceName)
    })

    pm := s.bus.Object(bluezService, dbus.ObjectPath("/org/bluez"))
    optsMap := map[string]dbus.Variant{
        "Role": dbus.MakeVariant("client"),
    }
    if call := pm.Call(profileManagerIface+".RegisterProfile", 0, path, s.service, optsMap); call.Err != nil {
        return nil, fmt.Errorf("bluez: RegisterProfile(client): %w", call.Err)
    }
    s.cleanup = append(s.cleanup, func() {
        _ = pm.Call(profileManagerIface+".UnregisterProfile", 0, path).Err
    })
    return s.prof.ch, nil
}

// Connect asks BlueZ to connect the service and waits for the profile to
// receive the socket fd.
func (s *profileSocket) Connect(ctx context.Context) error {
    ch, err := s.register()
    if err != nil {
        return err
    }

    devObj := s.bus.Object(bluezService, s.devPath)
    if call := devObj.CallWithContext(ctx, deviceIface+".ConnectProfile", 0, s.service); call.Err != nil {
        if ctx.Err() != nil {
            return fmt.Errorf("bluez: connect canceled: %w", ctx.Err())
        }
        return fmt.Errorf("bluez: ConnectProfile: %w", call.Err)
    }

    select {
    case <-ctx.Done():
        return fmt.Errorf("bluez: connect canceled: %w", ctx.Err())
    case res := <-ch:
        // Non-blocking so Close can interrupt a pending read.
        if err := unix.SetNonblock(res.fd, true); err != nil {
            _ = unix.Close(res.fd)
            return fmt.Errorf("bluez: set nonblock: %w", err)
        }
        s.setFile(os.NewFile(uintptr(res.fd), "rfcomm"))
        s.logger.WithField("peer", res.mac).Debug("profile connected")
        return nil
    }
}

// Close unregisters the profile and closes the connection, if any.
// Safe to call more than once.
func (s *profileSocket) Close() error {
    s.mu.Lock()
    if s.closed {
        s.mu.Unlock()
        return nil
    }
    s.closed = true
    cleanup := s.cleanup
    s.cleanup = nil
    prof := s.prof
    s.mu.Unlock()

    for i := len(cleanup) - 1; i >= 0; i-- {
        cleanup[i]()
    }
    if prof != nil {
        prof.drain()
    }
    return s.closeFile()
}
