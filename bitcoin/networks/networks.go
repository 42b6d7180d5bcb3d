// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package networks

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/BoostyLabs/ordpsbt/bitcoin"
)

// Network defines network tag.
type Network string

const (
	// Mainnet defines bitcoin main network.
	Mainnet Network = "mainnet"
	// Testnet defines bitcoin test network (testnet3).
	Testnet Network = "testnet"
	// Regtest defines local regression test network.
	Regtest Network = "regtest"
)

// Params describes constant parameter set of the network.
type Params struct {
	Network Network
	Chain   *chaincfg.Params
	// ExplorerPath defines path prefix for block explorer API calls, e.g. "/testnet".
	ExplorerPath string
}

var params = map[Network]Params{
	Mainnet: {Network: Mainnet, Chain: &chaincfg.MainNetParams, ExplorerPath: ""},
	Testnet: {Network: Testnet, Chain: &chaincfg.TestNet3Params, ExplorerPath: "/testnet"},
	Regtest: {Network: Regtest, Chain: &chaincfg.RegressionNetParams, ExplorerPath: ""},
}

// Resolve returns parameters of the network by tag.
func Resolve(tag string) (*Params, error) {
	p, ok := params[Network(strings.ToLower(strings.TrimSpace(tag)))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", bitcoin.ErrUnknownNetwork, tag)
	}

	return &p, nil
}

// MustResolve uses Resolve, panics in case of error.
func MustResolve(tag string) *Params {
	p, err := Resolve(tag)
	if err != nil {
		panic(err)
	}

	return p
}

// String returns network tag as string.
func (n Network) String() string {
	return string(n)
}
