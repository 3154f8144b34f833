package bluez

import (
    "io"
    "os"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestStreamsRequireConnection(t *testing.T) {
    var s fileSocket

    _, err := s.InputStream()
    assert.ErrorIs(t, err, errSocketNotConnected)
    _, err = s.OutputStream()
    assert.ErrorIs(t, err, errSocketNotConnected)
    assert.NoError(t, s.closeFile())
}

func TestInputStreamReadsSocketFile(t *testing.T) {
    r, w, err := os.Pipe()
    require.NoError(t, err)
    defer w.Close()

    var s fileSocket
    s.setFile(r)
    in, err := s.InputStream()
    require.NoError(t, err)

    _, err = w.Write([]byte{0x41})
    require.NoError(t, err)
    buf := make([]byte, 1)
    _, err = io.ReadFull(in, buf)
    require.NoError(t, err)
    assert.Equal(t, byte(0x41), buf[0])

    // Closing the view leaves the file to the socket.
    require.NoError(t, in.Close())
    _, err = in.Read(buf)
    assert.ErrorIs(t, err, os.ErrClosed)
    assert.Same(t, r, s.currentFile())

    require.NoError(t, s.closeFile())
    assert.Nil(t, s.currentFile())
    assert.NoError(t, s.closeFile())
}

func TestOutputStreamWritesSocketFile(t *testing.T) {
    r, w, err := os.Pipe()
    require.NoError(t, err)
    defer r.Close()

    var s fileSocket
    s.setFile(w)
    out, err := s.OutputStream()
    require.NoError(t, err)

    n, err := out.Write([]byte{0x00})
    require.NoError(t, err)
    assert.Equal(t, 1, n)
    require.NoError(t, s.closeFile())

    data, err := io.ReadAll(r)
    require.NoError(t, err)
    assert.Equal(t, []byte{0x00}, data)

    _, err = out.Write([]byte{0x01})
    assert.Error(t, err)
}
