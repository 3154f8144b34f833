// Package bluez implements the spp platform interfaces on top of BlueZ.
//
// Adapters are looked up over the system D-Bus. Sockets are opened either by
// registering a client Profile1 with BlueZ and asking the device to connect it
// (the default, which needs the device to be known to BlueZ), or by dialing a
// fixed RFCOMM channel directly through the kernel socket API.
package bluez

import (
    "io"

    "github.com/sirupsen/logrus"
)

// Options controls adapter selection and the socket strategy.
type Options struct {
    // Adapter selects the local adapter by name (e.g. "hci0").
    // Empty selects the first adapter in path order.
    Adapter string

    // Channel, when non-zero, makes sockets dial this RFCOMM channel directly
    // instead of connecting the service through a BlueZ profile.
    Channel uint8

    Logger logrus.FieldLogger
}

func (o Options) logger() logrus.FieldLogger {
    if o.Logger != nil {
        return o.Logger.WithField("component", "bluez")
    }
    l := logrus.New()
    l.SetOutput(io.Discard)
    return l
}
