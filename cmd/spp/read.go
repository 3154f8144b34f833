package main

import (
    "encoding/hex"
    "errors"
    "fmt"
    "io"

    "github.com/fatih/color"
    "github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
    Use:   "read [device-address]",
    Short: "Receive bytes from the device",
    Long: `Reads -n bytes (blocking) and prints a hex dump.

With --values each read is printed as an integer the way a raw byte read
reports it: 0-255 for data, -1 at end of stream and 0 when the read failed.`,
    Args: cobra.MaximumNArgs(1),
    RunE: runRead,
}

var (
    readCount  int
    readValues bool
)

func init() {
    readCmd.Flags().IntVarP(&readCount, "count", "n", 16, "Number of bytes to read")
    readCmd.Flags().BoolVar(&readValues, "values", false, "Print raw int values instead of a hex dump")
}

// receiveBytes reads up to n bytes. End of stream stops early without error.
func receiveBytes(conn byteConn, n int) ([]byte, error) {
    out := make([]byte, 0, n)
    for len(out) < n {
        b, err := conn.ReadByte()
        if errors.Is(err, io.EOF) {
            return out, nil
        }
        if err != nil {
            return out, err
        }
        out = append(out, b)
    }
    return out, nil
}

func runRead(cmd *cobra.Command, args []string) error {
    if readCount <= 0 {
        return fmt.Errorf("--count must be positive")
    }
    s, err := openSession(cmd, args)
    if err != nil {
        return err
    }
    defer s.Close()

    w := cmd.OutOrStdout()
    addr := s.conn.Address()
    if readValues {
        for i := 0; i < readCount; i++ {
            v := s.conn.ReadByteValue()
            fmt.Fprintln(w, v)
            if v < 0 || !s.conn.IsConnected() {
                break
            }
        }
        return nil
    }

    data, err := receiveBytes(s.conn, readCount)
    color.New(color.FgCyan).Fprintf(w, "%d bytes from %s\n", len(data), addr)
    fmt.Fprint(w, hex.Dump(data))
    return err
}
