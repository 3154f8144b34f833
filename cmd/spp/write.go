package main

import (
    "encoding/hex"
    "fmt"
    "strings"

    "github.com/spf13/cobra"
)

var writeCmd = &cobra.Command{
    Use:   "write [device-address] <data>",
    Short: "Send bytes to the device",
    Long: `Sends data one byte at a time and flushes.

Example:
  spp write 00:11:22:33:44:55 "hello"
  spp write --hex 00:11:22:33:44:55 "41 42 0d 0a"`,
    Args: cobra.RangeArgs(1, 2),
    RunE: runWrite,
}

var writeHex bool

func init() {
    writeCmd.Flags().BoolVar(&writeHex, "hex", false, "Data is hex (spaces and colons ignored)")
}

// parsePayload decodes the data argument.
func parsePayload(data string, isHex bool) ([]byte, error) {
    if !isHex {
        return []byte(data), nil
    }
    clean := strings.NewReplacer(" ", "", ":", "", "\t", "").Replace(data)
    b, err := hex.DecodeString(clean)
    if err != nil {
        return nil, fmt.Errorf("invalid hex data: %w", err)
    }
    return b, nil
}

// sendBytes writes data byte by byte and flushes. It returns how many bytes
// were accepted before a failure.
func sendBytes(conn byteConn, data []byte) (int, error) {
    for i, b := range data {
        if err := conn.WriteByte(b); err != nil {
            return i, err
        }
    }
    return len(data), conn.Flush()
}

func runWrite(cmd *cobra.Command, args []string) error {
    payload, err := parsePayload(args[len(args)-1], writeHex)
    if err != nil {
        return err
    }
    s, err := openSession(cmd, args[:len(args)-1])
    if err != nil {
        return err
    }
    defer s.Close()

    n, err := sendBytes(s.conn, payload)
    s.logger.WithField("bytes", n).Info("written")
    if err != nil {
        return fmt.Errorf("write failed after %d of %d bytes: %w", n, len(payload), err)
    }
    fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes\n", n)
    return nil
}
