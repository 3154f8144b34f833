package main

import (
    "context"
    "errors"
    "io"
    "time"

    "github.com/sirupsen/logrus"
    "github.com/spf13/cobra"

    "bluetooth-spp/internal/bluez"
    "bluetooth-spp/internal/config"
    "bluetooth-spp/internal/logging"
    "bluetooth-spp/internal/spp"
)

const defaultConnectTimeout = 30 * time.Second

// byteConn is the part of spp.SerialConnection the commands drive.
type byteConn interface {
    io.ByteReader
    io.ByteWriter
    Flush() error
    IsConnected() bool
}

// session is one connected device plus the resources behind it.
type session struct {
    cfg      *config.Config
    logger   *logrus.Logger
    provider *bluez.Provider
    conn     *spp.SerialConnection
    logClose io.Closer
}

// resolveAddress picks the address argument, falling back to the configured one.
func resolveAddress(args []string, cfg *config.Config) (string, error) {
    address := cfg.Address
    if len(args) > 0 {
        address = args[0]
    }
    if address == "" {
        return "", errors.New("device address required (argument, SPP_ADDRESS or config file)")
    }
    if _, err := bluez.ParseAddress(address); err != nil {
        return "", err
    }
    return address, nil
}

// openSession loads settings, builds the logger and backend, and connects.
func openSession(cmd *cobra.Command, args []string) (*session, error) {
    configPath, _ := cmd.Flags().GetString("config")
    cfg, err := config.Load(configPath, cmd.Flags())
    if err != nil {
        return nil, err
    }
    address, err := resolveAddress(args, cfg)
    if err != nil {
        return nil, err
    }
    verbose, _ := cmd.Flags().GetBool("verbose")
    logger, logClose, err := logging.New(cfg.Log, verbose)
    if err != nil {
        return nil, err
    }

    // Arguments validated - don't show usage on runtime errors
    cmd.SilenceUsage = true

    opts := cfg.BluezOptions()
    opts.Logger = logger
    provider := bluez.NewProvider(opts)
    conn := spp.New(provider, logger)

    ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ConnectTimeout)
    defer cancel()
    logger.WithFields(logrus.Fields{"address": address, "timeout": deadlineStr(ctx)}).Info("connecting")
    if err := conn.Connect(ctx, address); err != nil {
        _ = provider.Close()
        _ = logClose.Close()
        return nil, err
    }
    return &session{cfg: cfg, logger: logger, provider: provider, conn: conn, logClose: logClose}, nil
}

func (s *session) Close() {
    if err := s.conn.Disconnect(); err != nil {
        s.logger.WithError(err).Warn("disconnect")
    }
    _ = s.provider.Close()
    _ = s.logClose.Close()
}

func deadlineStr(ctx context.Context) string {
    if d, ok := ctx.Deadline(); ok {
        return time.Until(d).Truncate(time.Second).String()
    }
    return "none"
}
