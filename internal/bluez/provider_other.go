//go:build !linux

package bluez

import (
    "github.com/sirupsen/logrus"

    "bluetooth-spp/internal/spp"
)

// Provider reports no adapters outside Linux.
type Provider struct {
    logger logrus.FieldLogger
}

func NewProvider(opts Options) *Provider {
    return &Provider{logger: opts.logger()}
}

func (p *Provider) DefaultAdapter() (spp.Adapter, error) {
    p.logger.Debug("bluez is only available on linux")
    return nil, nil
}

func (p *Provider) Close() error { return nil }
