package main

import (
    "errors"
    "io"
)

// noEscape disables the escape byte in pumpIn.
const noEscape = -1

// errEscape reports that the user typed the escape byte.
var errEscape = errors.New("escape")

// pumpOut copies bytes from the device to w until the device closes the
// stream (nil) or fails.
func pumpOut(conn byteConn, w io.Writer) error {
    for {
        b, err := conn.ReadByte()
        if errors.Is(err, io.EOF) {
            return nil
        }
        if err != nil {
            return err
        }
        if _, err := w.Write([]byte{b}); err != nil {
            return err
        }
    }
}

// pumpIn copies bytes from r to the device, flushing after every chunk. It
// stops at end of input (nil), on a write failure, or with errEscape when
// escape (0-255) is read.
func pumpIn(r io.Reader, conn byteConn, escape int) error {
    buf := make([]byte, 256)
    for {
        n, rerr := r.Read(buf)
        for _, b := range buf[:n] {
            if escape >= 0 && int(b) == escape {
                return errEscape
            }
            if err := conn.WriteByte(b); err != nil {
                return err
            }
        }
        if n > 0 {
            if err := conn.Flush(); err != nil {
                return err
            }
        }
        if errors.Is(rerr, io.EOF) {
            return nil
        }
        if rerr != nil {
            return rerr
        }
    }
}

// runPumps runs both directions until either finishes or done is closed.
func runPumps(done <-chan struct{}, in func() error, out func() error) error {
    errCh := make(chan error, 2)
    go func() { errCh <- in() }()
    go func() { errCh <- out() }()
    select {
    case <-done:
        return nil
    case err := <-errCh:
        return err
    }
}
