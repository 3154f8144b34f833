//go:build linux

package bluez

import (
    "context"
    "errors"
    "fmt"
    "os"
    "sync"

    "github.com/sirupsen/logrus"
    "golang.org/x/sys/unix"
)

// pollIntervalMs bounds how long a pending connect goes without checking ctx.
const pollIntervalMs = 100

// rfcommSocket dials a fixed RFCOMM channel through the kernel socket API.
type rfcommSocket struct {
    fileSocket

    addr    [6]byte
    channel uint8
    logger  logrus.FieldLogger

    mu     sync.Mutex
    closed bool
}

func (s *rfcommSocket) Connect(ctx context.Context) error {
    s.mu.Lock()
    closed := s.closed
    s.mu.Unlock()
    if closed {
        return errors.New("bluez: socket closed")
    }

    fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
    if err != nil {
        return fmt.Errorf("bluez: rfcomm socket: %w", err)
    }
    sa := &unix.SockaddrRFCOMM{Addr: s.addr, Channel: s.channel}
    err = unix.Connect(fd, sa)
    if errors.Is(err, unix.EINPROGRESS) {
        err = waitConnected(ctx, fd)
    }
    if err != nil {
        _ = unix.Close(fd)
        return err
    }

    f := os.NewFile(uintptr(fd), "rfcomm")
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.closed {
        _ = f.Close()
        return errors.New("bluez: socket closed")
    }
    s.setFile(f)
    s.logger.WithField("channel", s.channel).Debug("rfcomm connected")
    return nil
}

// waitConnected polls a non-blocking connect until it completes or ctx is done.
func waitConnected(ctx context.Context, fd int) error {
    fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
    for {
        if err := ctx.Err(); err != nil {
            return fmt.Errorf("bluez: connect canceled: %w", err)
        }
        n, err := unix.Poll(fds, pollIntervalMs)
        if errors.Is(err, unix.EINTR) {
            continue
        }
        if err != nil {
            return fmt.Errorf("bluez: poll: %w", err)
        }
        if n == 0 {
            continue
        }
        soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
        if err != nil {
            return fmt.Errorf("bluez: getsockopt: %w", err)
        }
        if soErr != 0 {
            return fmt.Errorf("bluez: rfcomm connect: %w", unix.Errno(soErr))
        }
        return nil
    }
}

func (s *rfcommSocket) Close() error {
    s.mu.Lock()
    s.closed = true
    s.mu.Unlock()
    return s.closeFile()
}
