// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"errors"
	"math/big"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/ordpsbt/bitcoin"
	"github.com/BoostyLabs/ordpsbt/bitcoin/networks"
	"github.com/BoostyLabs/ordpsbt/bitcoin/utils"
	"github.com/BoostyLabs/ordpsbt/internal/numbers"
)

const (
	// txVersion defines transaction version for this builder.
	txVersion int32 = 2
	// signHashType defines signing intent flags for every input, overrides input defaults.
	signHashType = txscript.SigHashSingle | txscript.SigHashAnyOneCanPay
)

var (
	// ErrTxBuilder defines errors class for transaction building.
	ErrTxBuilder = errors.New("build transaction")
	// ErrAmountOutOfRange defines that output amount does not fit transaction output value.
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// EncodedPSBT is a base64 encoded partially signed bitcoin transaction (BIP-174, version 0).
type EncodedPSBT string

// SelfSendParams describes data needed to build self-send transaction.
type SelfSendParams struct {
	PaymentKey       KeyMaterial
	UTXOs            []bitcoin.UTXO // only the first one is spent.
	RecipientAddress string         // receives both transfer and change.
}

// DualPartyParams describes data needed to build two-party transfer transaction.
type DualPartyParams struct {
	PaymentPubKey string // hex, spent as P2SH-P2WPKH.
	OrdinalPubKey string // hex, spent as P2TR with the key used as internal key as is.
	PaymentUTXOs  []bitcoin.UTXO
	OrdinalUTXOs  []bitcoin.UTXO
	Recipient1    string
	Recipient2    string // receives amount2 and change.
}

// Result describes built unsigned transaction.
type Result struct {
	PSBT       EncodedPSBT
	Directives []bitcoin.SigningDirective // one per input, in inputs order.
	Amounts    []int64                    // outputs values in outputs order, in Satoshi.
	Fee        int64                      // in Satoshi.
}

// TxBuilder provides transaction building related logic.
type TxBuilder struct {
	networkParams *networks.Params
}

// NewTxBuilder is a constructor for TxBuilder.
func NewTxBuilder(networkParams *networks.Params) *TxBuilder {
	return &TxBuilder{
		networkParams: networkParams,
	}
}

// BuildSelfSend constructs transaction moving value of the first utxo to the recipient
// with change left at the same address.
//
//	Tx struct
//	inputs:
//	┌─────────┬──────────────┬────────────────────────────────────────┐
//	│  index  │     type     │             description                │
//	├=========┼==============┼========================================┤
//	│       0 │ payment      │ first utxo, any supported script type  │
//	└─────────┴──────────────┴────────────────────────────────────────┘
//
//	outputs:
//	┌─────────┬──────────────┬────────────────────────────────────────┐
//	│  index  │     type     │             description                │
//	├=========┼==============┼========================================┤
//	│       0 │ transfer     │ min(value, 3000) - fee                 │
//	├─────────┼──────────────┼────────────────────────────────────────┤
//	│       1 │ change       │ value - transfer - fee                 │
//	└─────────┴──────────────┴────────────────────────────────────────┘
func (b *TxBuilder) BuildSelfSend(params SelfSendParams) (*Result, error) {
	if len(params.UTXOs) == 0 {
		return nil, bitcoin.ErrNoSpendableOutputs
	}

	utxo := params.UTXOs[0]
	input, err := BuildInput(utxo, params.PaymentKey, b.networkParams)
	if err != nil {
		return nil, err
	}

	send, change, err := SelfSendAmounts(utxo.Amount)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(txVersion)
	inputs := []*InputSpec{input.WithSigHash(signHashType)}
	for _, in := range inputs {
		tx.AddTxIn(in.TxIn())
	}

	// transfer output (#0).
	if err = b.addOutput(tx, send, params.RecipientAddress); err != nil {
		return nil, err
	}

	// change output (#1).
	if err = b.addOutput(tx, change, params.RecipientAddress); err != nil {
		return nil, err
	}

	return b.finalize(tx, inputs)
}

// BuildDualParty constructs transaction spending the first payment and the first ordinal
// utxos into two recipients plus change.
//
//	Tx struct
//	inputs:
//	┌─────────┬──────────────┬────────────────────────────────────────┐
//	│  index  │     type     │             description                │
//	├=========┼==============┼========================================┤
//	│       0 │ payment      │ P2SH-P2WPKH utxo of the payment key    │
//	├─────────┼──────────────┼────────────────────────────────────────┤
//	│       1 │ ordinal      │ P2TR utxo of the ordinal key           │
//	└─────────┴──────────────┴────────────────────────────────────────┘
//
//	outputs:
//	┌─────────┬──────────────┬────────────────────────────────────────┐
//	│  index  │     type     │             description                │
//	├=========┼==============┼========================================┤
//	│       0 │ recipient1   │ min(payment, 3000) - fee               │
//	├─────────┼──────────────┼────────────────────────────────────────┤
//	│       1 │ recipient2   │ min(ordinal, 3000)                     │
//	├─────────┼──────────────┼────────────────────────────────────────┤
//	│       2 │ change       │ to recipient2, not merged with #1      │
//	└─────────┴──────────────┴────────────────────────────────────────┘
func (b *TxBuilder) BuildDualParty(params DualPartyParams) (*Result, error) {
	if len(params.PaymentUTXOs) == 0 || len(params.OrdinalUTXOs) == 0 {
		return nil, bitcoin.ErrNoSpendableOutputs
	}

	paymentPubKey, err := utils.DecodePublicKeyHex(params.PaymentPubKey)
	if err != nil {
		return nil, err
	}

	ordinalPubKey, err := utils.DecodePublicKeyHex(params.OrdinalPubKey)
	if err != nil {
		return nil, err
	}

	var (
		paymentOutput = params.PaymentUTXOs[0]
		ordinalOutput = params.OrdinalUTXOs[0]
	)

	paymentInput, err := BuildInput(paymentOutput, KeyMaterial{
		Role:   RolePayment,
		Script: WrappedSegwitPubKeyHash{PubKey: paymentPubKey},
	}, b.networkParams)
	if err != nil {
		return nil, err
	}

	ordinalInput, err := BuildInput(ordinalOutput, KeyMaterial{
		Role:   RoleOrdinal,
		Script: TaprootAsIs{PubKey: ordinalPubKey},
	}, b.networkParams)
	if err != nil {
		return nil, err
	}

	amount1, amount2, change, err := DualPartyAmounts(paymentOutput.Amount, ordinalOutput.Amount)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(txVersion)
	inputs := []*InputSpec{paymentInput.WithSigHash(signHashType), ordinalInput.WithSigHash(signHashType)}
	for _, in := range inputs {
		tx.AddTxIn(in.TxIn())
	}

	// recipient1 output (#0).
	if err = b.addOutput(tx, amount1, params.Recipient1); err != nil {
		return nil, err
	}

	// recipient2 output (#1).
	if err = b.addOutput(tx, amount2, params.Recipient2); err != nil {
		return nil, err
	}

	// change output (#2).
	if err = b.addOutput(tx, change, params.Recipient2); err != nil {
		return nil, err
	}

	return b.finalize(tx, inputs)
}

// finalize converts the draft into PSBT, fills inputs data and serialises it.
// The draft must not be used after.
func (b *TxBuilder) finalize(tx *wire.MsgTx, inputs []*InputSpec) (*Result, error) {
	p, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, errors.Join(ErrTxBuilder, err)
	}

	result := &Result{
		Directives: make([]bitcoin.SigningDirective, len(inputs)),
		Amounts:    make([]int64, len(tx.TxOut)),
	}

	var in, out int64
	for idx, input := range inputs {
		input.PrepareInput(&p.Inputs[idx])
		result.Directives[idx] = input.Directive(idx)
		in += input.WitnessUtxo.Value
	}
	for idx, txOut := range tx.TxOut {
		result.Amounts[idx] = txOut.Value
		out += txOut.Value
	}
	result.Fee = in - out

	encoded, err := EncodePSBT(p)
	if err != nil {
		return nil, errors.Join(ErrTxBuilder, err)
	}
	result.PSBT = encoded

	return result, nil
}

// addOutput adds output paying the amount to the address.
func (b *TxBuilder) addOutput(tx *wire.MsgTx, amount *big.Int, address string) error {
	if numbers.IsNegative(amount) {
		return errors.Join(ErrTxBuilder, bitcoin.ErrInsufficientFunds)
	}
	if !numbers.FitsInt64(amount) {
		return errors.Join(ErrTxBuilder, ErrAmountOutOfRange)
	}

	destinationAddrByte, err := utils.AddressScript(b.networkParams.Chain, address)
	if err != nil {
		return errors.Join(ErrTxBuilder, err)
	}

	tx.AddTxOut(wire.NewTxOut(amount.Int64(), destinationAddrByte))

	return nil
}
