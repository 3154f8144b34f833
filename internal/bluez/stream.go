package bluez

import (
    "errors"
    "io"
    "os"
    "sync"
    "sync/atomic"
)

var errSocketNotConnected = errors.New("bluez: socket not connected")

// fileSocket holds the connected RFCOMM file shared by both stream views.
type fileSocket struct {
    fmu  sync.Mutex
    file *os.File
}

func (s *fileSocket) setFile(f *os.File) {
    s.fmu.Lock()
    defer s.fmu.Unlock()
    s.file = f
}

func (s *fileSocket) currentFile() *os.File {
    s.fmu.Lock()
    defer s.fmu.Unlock()
    return s.file
}

// closeFile closes and forgets the file, if any.
func (s *fileSocket) closeFile() error {
    s.fmu.Lock()
    f := s.file
    s.file = nil
    s.fmu.Unlock()
    if f == nil {
        return nil
    }
    return f.Close()
}

func (s *fileSocket) InputStream() (io.ReadCloser, error) {
    f := s.currentFile()
    if f == nil {
        return nil, errSocketNotConnected
    }
    return &streamView{f: f}, nil
}

func (s *fileSocket) OutputStream() (io.WriteCloser, error) {
    f := s.currentFile()
    if f == nil {
        return nil, errSocketNotConnected
    }
    return &streamView{f: f}, nil
}

// streamView is one direction of the socket file. Closing a view only
// detaches it; the socket owns the file.
type streamView struct {
    f      *os.File
    closed atomic.Bool
}

func (v *streamView) Read(p []byte) (int, error) {
    if v.closed.Load() {
        return 0, os.ErrClosed
    }
    return v.f.Read(p)
}

func (v *streamView) Write(p []byte) (int, error) {
    if v.closed.Load() {
        return 0, os.ErrClosed
    }
    return v.f.Write(p)
}

func (v *streamView) Close() error {
    v.closed.Store(true)
    return nil
}
