package main

import (
    "errors"
    "fmt"
    "os"

    "github.com/fatih/color"
    "github.com/spf13/cobra"
    "golang.org/x/term"
)

// escapeByte is Ctrl-].
const escapeByte = 0x1d

var termCmd = &cobra.Command{
    Use:   "term [device-address]",
    Short: "Interactive terminal to the device",
    Long: `Connects stdin and stdout to the device. When stdin is a terminal it is put
in raw mode so every keystroke is sent as typed. Press Ctrl-] to quit.`,
    Args: cobra.MaximumNArgs(1),
    RunE: runTerm,
}

func runTerm(cmd *cobra.Command, args []string) error {
    s, err := openSession(cmd, args)
    if err != nil {
        return err
    }
    defer s.Close()

    fd := int(os.Stdin.Fd())
    escape := noEscape
    if term.IsTerminal(fd) {
        state, err := term.MakeRaw(fd)
        if err != nil {
            return fmt.Errorf("raw mode: %w", err)
        }
        defer term.Restore(fd, state)
        escape = escapeByte
    }
    color.New(color.FgGreen).Fprintf(os.Stderr, "connected to %s, Ctrl-] to quit\r\n", s.conn.Address())

    ctx := cmd.Context()
    err = runPumps(ctx.Done(),
        func() error { return pumpIn(os.Stdin, s.conn, escape) },
        func() error { return pumpOut(s.conn, os.Stdout) },
    )
    if errors.Is(err, errEscape) {
        return nil
    }
    if err == nil && ctx.Err() != nil {
        return ctx.Err()
    }
    return err
}
