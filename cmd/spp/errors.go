package main

import (
    "context"
    "errors"

    "bluetooth-spp/internal/spp"
)

// FormatUserError turns connection errors into a one-line hint for the terminal.
func FormatUserError(err error) string {
    switch {
    case errors.Is(err, spp.ErrAdapterUnavailable):
        return "no Bluetooth adapter found - is bluetoothd running?"
    case errors.Is(err, spp.ErrAdapterDisabled):
        return "Bluetooth is turned off - run `bluetoothctl power on` and retry"
    case errors.Is(err, context.DeadlineExceeded):
        return "timed out connecting - is the device in range and paired? (" + err.Error() + ")"
    case spp.IsSocketError(err, "connect"):
        return "could not connect: " + err.Error()
    case errors.Is(err, spp.ErrNotConnected):
        return "connection lost"
    }
    return err.Error()
}
