package main

import (
    "fmt"
    "os"

    "github.com/creack/pty"
    "github.com/fatih/color"
    "github.com/spf13/cobra"
)

var bridgeCmd = &cobra.Command{
    Use:   "bridge [device-address]",
    Short: "Expose the device as a pseudo-terminal",
    Long: `Creates a PTY (e.g. /dev/pts/3) and relays bytes between it and the device,
so software that expects a serial port can talk to the SPP device.

Example:
  spp bridge --symlink /tmp/spp0 00:11:22:33:44:55
  picocom /tmp/spp0`,
    Args: cobra.MaximumNArgs(1),
    RunE: runBridge,
}

var bridgeSymlink string

func init() {
    bridgeCmd.Flags().StringVar(&bridgeSymlink, "symlink", "", "Create a symlink to the PTY device (e.g., /tmp/spp0)")
}

func runBridge(cmd *cobra.Command, args []string) error {
    s, err := openSession(cmd, args)
    if err != nil {
        return err
    }
    defer s.Close()

    ptmx, tty, err := pty.Open()
    if err != nil {
        return fmt.Errorf("open pty: %w", err)
    }
    defer ptmx.Close()
    // Holding the slave open keeps the master readable between clients.
    defer tty.Close()

    if bridgeSymlink != "" {
        _ = os.Remove(bridgeSymlink)
        if err := os.Symlink(tty.Name(), bridgeSymlink); err != nil {
            return fmt.Errorf("symlink: %w", err)
        }
        defer os.Remove(bridgeSymlink)
    }
    color.New(color.FgGreen).Fprintf(os.Stderr, "bridging %s <-> %s\n", s.conn.Address(), tty.Name())
    s.logger.WithField("tty", tty.Name()).Info("bridge running")

    ctx := cmd.Context()
    err = runPumps(ctx.Done(),
        func() error { return pumpIn(ptmx, s.conn, noEscape) },
        func() error { return pumpOut(s.conn, ptmx) },
    )
    if err == nil && ctx.Err() != nil {
        return ctx.Err()
    }
    return err
}
