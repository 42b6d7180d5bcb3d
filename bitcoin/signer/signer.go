// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package signer

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/ordpsbt/bitcoin"
	"github.com/BoostyLabs/ordpsbt/bitcoin/networks"
	"github.com/BoostyLabs/ordpsbt/bitcoin/txbuilder"
	"github.com/BoostyLabs/ordpsbt/bitcoin/utils"
)

var (
	// ErrSigner defines errors class for psbt signing.
	ErrSigner = errors.New("sign psbt")
	// ErrCanceled defines that signing was canceled by the signer side.
	ErrCanceled = errors.New("signing canceled")
	// ErrSigHashMismatch defines that directive flags differ from the flags committed in psbt input.
	ErrSigHashMismatch = errors.New("sighash flags mismatch")
	// ErrUnknownSigningAddress defines that signer holds no key for directive address.
	ErrUnknownSigningAddress = errors.New("unknown signing address")
	// ErrInvalidInputIndex defines that directive points outside of psbt inputs.
	ErrInvalidInputIndex = errors.New("invalid input index")
	// ErrUnsupportedInput defines that input script can not be signed.
	ErrUnsupportedInput = errors.New("unsupported input script")
)

// Request describes psbt along with inputs to sign.
type Request struct {
	PSBT       txbuilder.EncodedPSBT        `json:"psbt"`
	Directives []bitcoin.SigningDirective `json:"inputsToSign"`
}

// Response describes signed psbt.
type Response struct {
	PSBT txbuilder.EncodedPSBT `json:"psbt"`
}

// Signer exposes access to an external psbt signer, e.g. a wallet.
// Returns ErrCanceled when signing was rejected.
type Signer interface {
	SignPSBT(ctx context.Context, request Request) (*Response, error)
}

// ensures that KeySigner implements Signer.
var _ Signer = (*KeySigner)(nil)

// signingKey describes private key bound to the address it controls.
type signingKey struct {
	privateKey *btcec.PrivateKey
	scriptType string
}

// KeySigner provides psbt signing with locally held private keys.
type KeySigner struct {
	networkParams *networks.Params
	keys          map[string]signingKey // by address.
}

// NewKeySigner is a constructor for KeySigner.
// Every key controls its P2WPKH, P2SH-P2WPKH and P2TR key path addresses.
func NewKeySigner(networkParams *networks.Params, privateKeys ...*btcec.PrivateKey) (*KeySigner, error) {
	signer := &KeySigner{
		networkParams: networkParams,
		keys:          make(map[string]signingKey, 3*len(privateKeys)),
	}

	for _, privateKey := range privateKeys {
		pubKey := privateKey.PubKey()

		segwitAddress, err := utils.NewP2WPKHAddress(networkParams.Chain, pubKey)
		if err != nil {
			return nil, err
		}

		wrappedAddress, err := utils.NewP2SHAddress(networkParams.Chain, utils.MustP2WPKHScript(pubKey))
		if err != nil {
			return nil, err
		}

		taprootAddress, err := utils.NewTaprootKeyPathAddress(networkParams.Chain, pubKey)
		if err != nil {
			return nil, err
		}

		signer.keys[segwitAddress.EncodeAddress()] = signingKey{privateKey, txbuilder.SegwitPubKeyHashTag}
		signer.keys[wrappedAddress.EncodeAddress()] = signingKey{privateKey, txbuilder.WrappedSegwitPubKeyHashTag}
		signer.keys[taprootAddress.EncodeAddress()] = signingKey{privateKey, txbuilder.TaprootTag}
	}

	return signer, nil
}

// SignPSBT signs inputs listed in directives, returns updated psbt.
func (signer *KeySigner) SignPSBT(ctx context.Context, request Request) (_ *Response, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrSigner, err)
		}
	}()

	if err = ctx.Err(); err != nil {
		return nil, errors.Join(ErrCanceled, err)
	}

	packet, err := txbuilder.DecodePSBT(request.PSBT)
	if err != nil {
		return nil, err
	}

	var (
		tx                   = packet.UnsignedTx
		prevOutputFetcherMap = make(map[wire.OutPoint]*wire.TxOut, len(tx.TxIn))
	)
	for idx, in := range packet.Inputs {
		if in.WitnessUtxo == nil {
			return nil, fmt.Errorf("%w: input %d has no witness utxo", ErrUnsupportedInput, idx)
		}
		prevOutputFetcherMap[tx.TxIn[idx].PreviousOutPoint] = in.WitnessUtxo
	}

	var (
		prevOutputFetcher = txscript.NewMultiPrevOutFetcher(prevOutputFetcherMap)
		sigHashes         = txscript.NewTxSigHashes(tx, prevOutputFetcher)
	)
	for _, directive := range request.Directives {
		if directive.InputIndex < 0 || len(packet.Inputs) <= directive.InputIndex {
			return nil, fmt.Errorf("%w: %d", ErrInvalidInputIndex, directive.InputIndex)
		}

		key, ok := signer.keys[directive.Address]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSigningAddress, directive.Address)
		}

		input := &packet.Inputs[directive.InputIndex]
		if input.SighashType != directive.SigHash {
			return nil, fmt.Errorf("%w: input %d commits to 0x%02x, directive requests 0x%02x",
				ErrSigHashMismatch, directive.InputIndex, input.SighashType, directive.SigHash)
		}

		switch key.scriptType {
		case txbuilder.TaprootTag:
			err = signTaprootInput(packet, directive.InputIndex, sigHashes, key.privateKey)
		default:
			err = signSegwitInput(packet, directive.InputIndex, sigHashes, key.privateKey)
		}
		if err != nil {
			return nil, err
		}
	}

	encoded, err := txbuilder.EncodePSBT(packet)
	if err != nil {
		return nil, err
	}

	return &Response{PSBT: encoded}, nil
}

// signTaprootInput signs taproot key path input.
func signTaprootInput(packet *psbt.Packet, idx int, sigHashes *txscript.TxSigHashes, privateKey *btcec.PrivateKey) error {
	input := &packet.Inputs[idx]
	if !txscript.IsPayToTaproot(input.WitnessUtxo.PkScript) {
		return fmt.Errorf("%w: input %d is not taproot", ErrUnsupportedInput, idx)
	}

	witness, err := txscript.TaprootWitnessSignature(
		packet.UnsignedTx, sigHashes, idx,
		input.WitnessUtxo.Value, input.WitnessUtxo.PkScript, input.SighashType, privateKey)
	if err != nil {
		return err
	}

	input.TaprootKeySpendSig = witness[0]

	return nil
}

// signSegwitInput signs native or P2SH nested pay-to-witness-pubkey-hash input.
func signSegwitInput(packet *psbt.Packet, idx int, sigHashes *txscript.TxSigHashes, privateKey *btcec.PrivateKey) error {
	var (
		input    = &packet.Inputs[idx]
		pubKey   = privateKey.PubKey().SerializeCompressed()
		pkScript = input.WitnessUtxo.PkScript
	)

	// the witness program is the script code for both native and nested spends.
	witnessProgram := pkScript
	if txscript.IsPayToScriptHash(pkScript) {
		witnessProgram = input.RedeemScript
	}
	if !txscript.IsPayToWitnessPubKeyHash(witnessProgram) {
		return fmt.Errorf("%w: input %d is not pay-to-witness-pubkey-hash", ErrUnsupportedInput, idx)
	}

	sig, err := txscript.RawTxInWitnessSignature(
		packet.UnsignedTx, sigHashes, idx,
		input.WitnessUtxo.Value, witnessProgram, input.SighashType, privateKey)
	if err != nil {
		return err
	}

	updater, err := psbt.NewUpdater(packet)
	if err != nil {
		return err
	}

	outcome, err := updater.Sign(idx, sig, pubKey, nil, nil)
	if err != nil {
		return err
	}
	if outcome != psbt.SignSuccesful {
		return fmt.Errorf("%w: input %d is already finalized", ErrUnsupportedInput, idx)
	}

	return nil
}
