package main

import (
    "fmt"
    "os"

    "github.com/fatih/color"
    "github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
    Use:   "status [device-address]",
    Short: "Connect, report the link state and disconnect",
    Args:  cobra.MaximumNArgs(1),
    RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
    s, err := openSession(cmd, args)
    if err != nil {
        return err
    }
    defer s.Close()

    state := color.New(color.FgGreen, color.Bold).Sprint("CONNECTED")
    if !s.conn.IsConnected() {
        state = color.New(color.FgRed, color.Bold).Sprint("DISCONNECTED")
    }
    fmt.Fprintf(os.Stdout, "%s %s\n", state, s.conn.Address())
    return nil
}
