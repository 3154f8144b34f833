package main

import (
    "context"
    "errors"
    "fmt"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "bluetooth-spp/internal/config"
    "bluetooth-spp/internal/spp"
)

func TestFormatUserError(t *testing.T) {
    assert.Contains(t, FormatUserError(spp.ErrAdapterDisabled), "turned off")
    assert.Contains(t, FormatUserError(fmt.Errorf("%w: no bus", spp.ErrAdapterUnavailable)), "no Bluetooth adapter")
    assert.Contains(t, FormatUserError(&spp.SocketError{Op: "connect", Err: context.DeadlineExceeded}), "timed out")
    assert.Contains(t, FormatUserError(&spp.SocketError{Op: "connect", Address: "00:11:22:33:44:55", Err: errLink}), "could not connect")
    assert.Equal(t, "connection lost", FormatUserError(spp.ErrNotConnected))
    assert.Equal(t, "plain", FormatUserError(errors.New("plain")))
}

func TestResolveAddress(t *testing.T) {
    cfg := &config.Config{Address: "00:11:22:33:44:55", ConnectTimeout: time.Second}

    addr, err := resolveAddress(nil, cfg)
    require.NoError(t, err)
    assert.Equal(t, "00:11:22:33:44:55", addr)

    addr, err = resolveAddress([]string{"aa:bb:cc:dd:ee:ff"}, cfg)
    require.NoError(t, err)
    assert.Equal(t, "aa:bb:cc:dd:ee:ff", addr)

    _, err = resolveAddress(nil, &config.Config{})
    assert.Error(t, err)

    _, err = resolveAddress([]string{"nope"}, cfg)
    assert.Error(t, err)
}
