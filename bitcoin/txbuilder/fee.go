// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"math/big"

	"github.com/BoostyLabs/ordpsbt/internal/numbers"
)

const (
	// MinerFeeSatoshi defines fixed miner fee of every built transaction.
	MinerFeeSatoshi int64 = 300
	// MaxTransferSatoshi defines the largest amount taken from a single output for transfer.
	MaxTransferSatoshi int64 = 3000
)

var (
	minerFee          = big.NewInt(MinerFeeSatoshi)
	maxTransferAmount = big.NewInt(MaxTransferSatoshi)
)

// SelfSendAmounts returns transfer and change amounts for the output value.
// The value must cover the full transfer and the fee.
//
//	send   = min(value, 3000) - fee
//	change = value - send - fee
func SelfSendAmounts(value *big.Int) (send, change *big.Int, err error) {
	need := numbers.Sum(maxTransferAmount, minerFee)
	if numbers.IsLess(value, need) {
		return nil, nil, NewInsufficientError(OutputTransfer, need, value)
	}

	send = numbers.Sub(numbers.Min(value, maxTransferAmount), minerFee)
	change = numbers.Sub(value, send, minerFee)
	if numbers.IsNegative(change) {
		return nil, nil, NewInsufficientError(OutputChange, numbers.Sum(send, minerFee), value)
	}

	return send, change, nil
}

// DualPartyAmounts returns both recipients and change amounts for payment and ordinal output values.
//
//	amount1 = min(payment, 3000) - fee
//	amount2 = min(ordinal, 3000)
//	change  = payment + ordinal - (amount1 + amount2) - fee
func DualPartyAmounts(payment, ordinal *big.Int) (amount1, amount2, change *big.Int, err error) {
	available := numbers.Min(payment, maxTransferAmount)
	amount1 = numbers.Sub(available, minerFee)
	if numbers.IsNegative(amount1) {
		return nil, nil, nil, NewInsufficientError(OutputRecipient1, minerFee, available)
	}

	amount2 = new(big.Int).Set(numbers.Min(ordinal, maxTransferAmount))

	var (
		total = numbers.Sum(amount1, amount2)
		have  = numbers.Sum(payment, ordinal)
	)
	change = numbers.Sub(have, total, minerFee)
	if numbers.IsNegative(change) {
		return nil, nil, nil, NewInsufficientError(OutputChange, numbers.Sum(total, minerFee), have)
	}

	return amount1, amount2, change, nil
}
