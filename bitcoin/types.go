// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bitcoin

import (
	"math/big"

	"github.com/btcsuite/btcd/txscript"
)

// UTXO describes unspent transaction output data.
type UTXO struct {
	TxHash    string
	Index     uint32   // output index in transaction outputs.
	Amount    *big.Int // in Satoshi.
	Confirmed bool
	Status    UTXOStatus
}

// UTXOStatus describes confirmation details reported by the explorer.
type UTXOStatus struct {
	BlockHeight uint64
	BlockHash   string
	BlockTime   int64
}

// OutPoint returns the output reference of the UTXO.
func (u *UTXO) OutPoint() OutPoint {
	return OutPoint{TxHash: u.TxHash, Index: u.Index}
}

// SigningDirective describes which input has to be signed by which address
// and with what signature hash flags. Sent to the signer along with the PSBT.
type SigningDirective struct {
	InputIndex int                  `json:"inputIndex"`
	Address    string               `json:"signingAddress"`
	SigHash    txscript.SigHashType `json:"sighashFlags"`
}
