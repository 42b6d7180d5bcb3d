// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BoostyLabs/ordpsbt/bitcoin/mempool"
	"github.com/BoostyLabs/ordpsbt/bitcoin/networks"
)

const (
	defaultNetwork  = "testnet"
	defaultLogLevel = "info"
)

// config defines global options, may be loaded from INI file.
type config struct {
	ConfigFile string         `short:"C" long:"config" description:"path to INI configuration file" no-ini:"true"`
	Network    string         `short:"n" long:"network" env:"ORDPSBT_NETWORK" description:"bitcoin network" choice:"mainnet" choice:"testnet" choice:"regtest" default:"testnet"`
	LogLevel   string         `long:"log-level" env:"ORDPSBT_LOG_LEVEL" description:"log level (debug, info, warn, error)" default:"info"`
	Explorer   mempool.Config `group:"Explorer"`
}

// validate checks config values and resolves network parameters.
func (cfg *config) validate() (*networks.Params, error) {
	params, err := networks.Resolve(cfg.Network)
	if err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	if _, err = zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	if cfg.Explorer.BaseURL != "" &&
		!strings.HasPrefix(cfg.Explorer.BaseURL, "http://") && !strings.HasPrefix(cfg.Explorer.BaseURL, "https://") {
		return nil, errors.Errorf("invalid config: explorer url %q has no http scheme", cfg.Explorer.BaseURL)
	}

	return params, nil
}

// newLogger creates production logger writing to stderr.
func newLogger(level string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	logConfig := zap.NewProductionConfig()
	logConfig.Level = atomicLevel
	logConfig.Encoding = "console"
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return logConfig.Build()
}
