// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package utils

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/BoostyLabs/ordpsbt/bitcoin"
)

// NewP2WPKHAddress returns native segwit v0 address of the public key.
func NewP2WPKHAddress(chainParams *chaincfg.Params, pubKey *btcec.PublicKey) (*btcutil.AddressWitnessPubKeyHash, error) {
	return btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pubKey.SerializeCompressed()), chainParams)
}

// NewP2SHAddress returns pay-to-script-hash address of the redeem script.
func NewP2SHAddress(chainParams *chaincfg.Params, redeemScript []byte) (*btcutil.AddressScriptHash, error) {
	return btcutil.NewAddressScriptHash(redeemScript, chainParams)
}

// NewTaprootKeyPathAddress returns taproot address of key path only output for the internal key.
func NewTaprootKeyPathAddress(chainParams *chaincfg.Params, internalKey *btcec.PublicKey) (*btcutil.AddressTaproot, error) {
	return btcutil.NewAddressTaproot(schnorr.SerializePubKey(txscript.ComputeTaprootKeyNoScript(internalKey)), chainParams)
}

// DecodeAddress decodes address and checks it belongs to the network.
func DecodeAddress(chainParams *chaincfg.Params, address string) (btcutil.Address, error) {
	addr, err := btcutil.DecodeAddress(address, chainParams)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bitcoin.ErrInvalidAddress, err)
	}

	if !addr.IsForNet(chainParams) {
		return nil, fmt.Errorf("%w: %s is not for %s", bitcoin.ErrInvalidAddress, address, chainParams.Name)
	}

	return addr, nil
}

// AddressScript returns locking script paying to the address.
func AddressScript(chainParams *chaincfg.Params, address string) ([]byte, error) {
	addr, err := DecodeAddress(chainParams, address)
	if err != nil {
		return nil, err
	}

	return txscript.PayToAddrScript(addr)
}
