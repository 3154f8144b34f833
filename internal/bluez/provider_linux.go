//go:build linux

package bluez

import (
    "errors"
    "fmt"
    "sort"
    "sync"

    dbus "github.com/godbus/dbus/v5"
    "github.com/google/uuid"
    "github.com/sirupsen/logrus"

    "bluetooth-spp/internal/spp"
)

const (
    bluezService         = "org.bluez"
    profileInterfaceName = "org.bluez.Profile1"
    profileManagerIface  = "org.bluez.ProfileManager1"
    deviceIface          = "org.bluez.Device1"
    adapterIface         = "org.bluez.Adapter1"
    objManagerIface      = "org.freedesktop.DBus.ObjectManager"
    propsIface           = "org.freedesktop.DBus.Properties"
)

// Provider implements spp.AdapterProvider over the system bus.
// It is safe for concurrent use. Close releases the bus connection.
type Provider struct {
    opts   Options
    logger logrus.FieldLogger

    mu     sync.Mutex
    closed bool
    bus    *dbus.Conn

    // cleanup functions to release resources in Close (executed once, in reverse order).
    cleanup []func()
}

// NewProvider creates a provider; the bus is connected on first use.
func NewProvider(opts Options) *Provider {
    return &Provider{opts: opts, logger: opts.logger()}
}

// ensureBusLocked connects to the system bus if not yet connected.
func (p *Provider) ensureBusLocked() error {
    if p.bus != nil {
        return nil
    }
    c, err := dbus.SystemBus()
    if err != nil {
        return fmt.Errorf("bluez: connect system bus: %w", err)
    }
    p.bus = c
    // Close the bus last during cleanup.
    p.cleanup = append(p.cleanup, func() { p.bus.Close() })
    return nil
}

// DefaultAdapter returns the configured adapter, or the first one BlueZ
// reports. It returns a nil Adapter when BlueZ has no adapters.
func (p *Provider) DefaultAdapter() (spp.Adapter, error) {
    p.mu.Lock()
    if p.closed {
        p.mu.Unlock()
        return nil, errors.New("bluez: closed")
    }
    if err := p.ensureBusLocked(); err != nil {
        p.mu.Unlock()
        return nil, err
    }
    bus := p.bus
    p.mu.Unlock()

    paths, err := listAdapters(bus)
    if err != nil {
        return nil, err
    }
    if len(paths) == 0 {
        p.logger.Debug("no adapters")
        return nil, nil
    }
    sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

    path := paths[0]
    if p.opts.Adapter != "" {
        path = ""
        for _, ap := range paths {
            if adapterName(string(ap)) == p.opts.Adapter {
                path = ap
                break
            }
        }
        if path == "" {
            return nil, fmt.Errorf("bluez: adapter %s not found", p.opts.Adapter)
        }
    }
    p.logger.WithField("adapter", path).Debug("using adapter")
    return &adapter{p: p, bus: bus, path: path}, nil
}

// Close is safe for concurrent and redundant calls (idempotent).
func (p *Provider) Close() error {
    p.mu.Lock()
    if p.closed {
        p.mu.Unlock()
        return nil
    }
    p.closed = true
    cleanup := p.cleanup
    p.cleanup = nil
    p.mu.Unlock()

    for i := len(cleanup) - 1; i >= 0; i-- {
        if cleanup[i] != nil {
            cleanup[i]()
        }
    }
    return nil
}

type adapter struct {
    p    *Provider
    bus  *dbus.Conn
    path dbus.ObjectPath
}

func (a *adapter) property(name string) (interface{}, error) {
    var v dbus.Variant
    call := a.bus.Object(bluezService, a.path).Call(propsIface+".Get", 0, adapterIface, name)
    if call.Err != nil {
        return nil, fmt.Errorf("bluez: get %s: %w", name, call.Err)
    }
    if err := call.Store(&v); err != nil {
        return nil, fmt.Errorf("bluez: decode %s: %w", name, err)
    }
    return v.Value(), nil
}

func (a *adapter) boolProperty(name string) (bool, error) {
    v, err := a.property(name)
    if err != nil {
        return false, err
    }
    b, ok := v.(bool)
    if !ok {
        return false, fmt.Errorf("bluez: %s is %T, not bool", name, v)
    }
    return b, nil
}

// Enabled reports Adapter1.Powered.
func (a *adapter) Enabled() (bool, error) {
    return a.boolProperty("Powered")
}

// CancelDiscovery stops discovery if the adapter reports one running.
func (a *adapter) CancelDiscovery() error {
    discovering, err := a.boolProperty("Discovering")
    if err != nil || !discovering {
        return err
    }
    if err := a.bus.Object(bluezService, a.path).Call(adapterIface+".StopDiscovery", 0).Err; err != nil {
        return fmt.Errorf("bluez: StopDiscovery: %w", err)
    }
    a.p.logger.WithField("adapter", a.path).Debug("discovery stopped")
    return nil
}

func (a *adapter) RemoteDevice(address string) (spp.Device, error) {
    bdaddr, err := ParseAddress(address)
    if err != nil {
        return nil, err
    }
    return &device{
        a:       a,
        address: address,
        bdaddr:  bdaddr,
        path:    dbus.ObjectPath(devicePath(string(a.path), address)),
    }, nil
}

type device struct {
    a       *adapter
    address string
    bdaddr  [6]byte
    path    dbus.ObjectPath
}

func (d *device) Address() string {
    return d.address
}

// CreateRFCOMMSocket returns an unconnected socket to service on the device.
func (d *device) CreateRFCOMMSocket(service uuid.UUID) (spp.Socket, error) {
    logger := d.a.p.logger.WithField("device", d.address)
    if ch := d.a.p.opts.Channel; ch != 0 {
        logger.WithField("channel", ch).Debug("dialing rfcomm channel")
        return &rfcommSocket{addr: d.bdaddr, channel: ch, logger: logger}, nil
    }
    logger.WithField("service", service).Debug("connecting through profile")
    return &profileSocket{
        bus:     d.a.bus,
        devPath: d.path,
        service: service.String(),
        logger:  logger,
    }, nil
}

func listAdapters(bus *dbus.Conn) ([]dbus.ObjectPath, error) {
    obj := bus.Object(bluezService, dbus.ObjectPath("/"))
    var objs map[dbus.ObjectPath]map[string]map[string]dbus.Variant
    if call := obj.Call(objManagerIface+".GetManagedObjects", 0); call.Err != nil {
        return nil, fmt.Errorf("bluez: GetManagedObjects: %w", call.Err)
    } else if err := call.Store(&objs); err != nil {
        return nil, fmt.Errorf("bluez: decode GetManagedObjects: %w", err)
    }
    var out []dbus.ObjectPath
    for path, ifaces := range objs {
        if _, ok := ifaces[adapterIface]; ok {
            out = append(out, path)
        }
    }
    return out, nil
}
