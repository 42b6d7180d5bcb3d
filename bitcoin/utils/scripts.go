// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package utils

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
)

// NewP2WPKHScript builds native segwit v0 locking script: {OP_0 <hash160(compressed pubKey)>}.
func NewP2WPKHScript(pubKey *btcec.PublicKey) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(btcutil.Hash160(pubKey.SerializeCompressed())).
		Script()
}

// MustP2WPKHScript uses NewP2WPKHScript, panics in case of error.
func MustP2WPKHScript(pubKey *btcec.PublicKey) []byte {
	script, err := NewP2WPKHScript(pubKey)
	if err != nil {
		panic(err)
	}

	return script
}

// NewP2SHScript builds pay-to-script-hash locking script: {OP_HASH160 <hash160(redeemScript)> OP_EQUAL}.
func NewP2SHScript(redeemScript []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_HASH160).
		AddData(btcutil.Hash160(redeemScript)).
		AddOp(txscript.OP_EQUAL).
		Script()
}

// NewTaprootKeyPathScript builds segwit v1 locking script for key path only spending,
// the output key is tweaked with empty script root (BIP-86).
func NewTaprootKeyPathScript(internalKey *btcec.PublicKey) ([]byte, error) {
	return txscript.PayToTaprootScript(txscript.ComputeTaprootKeyNoScript(internalKey))
}
