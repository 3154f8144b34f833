// Command spp talks to a Bluetooth Serial Port Profile device.
//
// Prerequisites
// - Linux with BlueZ (bluetoothd) running and system D-Bus access.
// - Adapter powered on: `bluetoothctl power on`.
// - Without --channel the device must already be paired (pairing is not handled here).
//
// Examples
//
//	spp status 00:11:22:33:44:55
//	spp write --hex 00:11:22:33:44:55 "41 42 0d 0a"
//	spp read -n 32 00:11:22:33:44:55
//	spp term 00:11:22:33:44:55          (Ctrl-] quits)
//	spp bridge --symlink /tmp/spp0 00:11:22:33:44:55
//
// Settings may also come from SPP_* environment variables or a YAML file
// given with --config.
package main

import (
    "context"
    "errors"
    "fmt"
    "os"
    "os/signal"
    "syscall"

    "github.com/spf13/cobra"
)

var (
    version = "dev"
    commit  = "none"
)

var rootCmd = &cobra.Command{
    Use:   "spp",
    Short: "Bluetooth Serial Port Profile client",
    Long: `Connects to a Bluetooth device's Serial Port Profile (RFCOMM) service and
exchanges raw bytes with it: one-shot reads and writes, an interactive
terminal, or a PTY bridge for serial-port software.`,
    Version: version + " (" + commit + ")",
}

func init() {
    // main() prints errors itself
    rootCmd.SilenceErrors = true

    rootCmd.AddCommand(statusCmd)
    rootCmd.AddCommand(writeCmd)
    rootCmd.AddCommand(readCmd)
    rootCmd.AddCommand(termCmd)
    rootCmd.AddCommand(bridgeCmd)

    pf := rootCmd.PersistentFlags()
    pf.String("config", "", "YAML config file")
    pf.String("log-level", "", "Log level (debug, info, warn, error)")
    pf.String("log-file", "", "Write logs to this file (rotated)")
    pf.BoolP("verbose", "V", false, "Debug logging (same as --log-level=debug)")
    pf.String("adapter", "", "Local adapter name, e.g. hci0 (default: first adapter)")
    pf.Uint8("channel", 0, "Dial this RFCOMM channel directly instead of using a BlueZ profile")
    pf.Duration("timeout", defaultConnectTimeout, "Connect timeout")
}

func main() {
    // Ctrl-C / SIGTERM cancel the command context.
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    sig := make(chan os.Signal, 1)
    signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
    go func() {
        <-sig
        cancel()
    }()

    if err := rootCmd.ExecuteContext(ctx); err != nil {
        if errors.Is(err, context.Canceled) {
            return
        }
        fmt.Fprintf(os.Stderr, "ERROR: %s\n", FormatUserError(err))
        os.Exit(1)
    }
}
