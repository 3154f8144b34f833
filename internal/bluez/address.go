package bluez

import (
    "fmt"
    "net"
    "strings"
)

// ParseAddress parses "AA:BB:CC:DD:EE:FF" into the little-endian byte order
// the kernel uses for bdaddr_t.
func ParseAddress(addr string) ([6]byte, error) {
    var b [6]byte
    hw, err := net.ParseMAC(addr)
    if err != nil {
        return b, fmt.Errorf("bluez: invalid address %q: %w", addr, err)
    }
    if len(hw) != len(b) {
        return b, fmt.Errorf("bluez: invalid address %q: want 6 octets, got %d", addr, len(hw))
    }
    for i := range b {
        b[i] = hw[len(b)-1-i]
    }
    return b, nil
}

// devicePath returns the BlueZ Device1 object path for addr under adapterPath,
// e.g. /org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF.
func devicePath(adapterPath, addr string) string {
    return adapterPath + "/dev_" + strings.ReplaceAll(strings.ToUpper(addr), ":", "_")
}

// macFromPath extracts the address from a Device1 object path.
func macFromPath(p string) string {
    // Expect .../dev_XX_XX_XX_XX_XX_XX
    idx := strings.LastIndex(p, "/dev_")
    if idx < 0 {
        return ""
    }
    return strings.ReplaceAll(p[idx+5:], "_", ":")
}

// adapterName returns the last element of an adapter object path ("hci0").
func adapterName(p string) string {
    if idx := strings.LastIndex(p, "/"); idx >= 0 {
        return p[idx+1:]
    }
    return p
}
