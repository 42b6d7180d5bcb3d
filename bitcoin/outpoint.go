// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bitcoin

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// outPointSeparator defines separator between TxHash, Index and optional amount.
const outPointSeparator string = ":"

// OutPoint describes a reference to a transaction output.
type OutPoint struct {
	TxHash string
	Index  uint32
}

// NewUTXOFromString parses unspent output from 'txid:vout:value' string, value in Satoshi.
func NewUTXOFromString(s string) (*UTXO, error) {
	parts := strings.Split(s, outPointSeparator)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: invalid utxo format: %s", ErrInvalidUTXO, s)
	}

	op, err := parseOutPoint(parts[0], parts[1])
	if err != nil {
		return nil, err
	}

	amount, ok := new(big.Int).SetString(parts[2], 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: invalid value: %s", ErrInvalidUTXO, parts[2])
	}

	return &UTXO{TxHash: op.TxHash, Index: op.Index, Amount: amount}, nil
}

// Hash returns TxHash as chain hash.
func (op OutPoint) Hash() (*chainhash.Hash, error) {
	if len(op.TxHash) != chainhash.MaxHashStringSize {
		return nil, fmt.Errorf("%w: invalid TxHash format: %s", ErrInvalidUTXO, op.TxHash)
	}

	hash, err := chainhash.NewHashFromStr(op.TxHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUTXO, err)
	}

	return hash, nil
}

// String returns out point as string.
func (op OutPoint) String() string {
	return fmt.Sprintf("%s%s%d", op.TxHash, outPointSeparator, op.Index)
}

func parseOutPoint(txHash, index string) (*OutPoint, error) {
	op := &OutPoint{TxHash: txHash}
	if _, err := op.Hash(); err != nil {
		return nil, err
	}

	idx, err := strconv.ParseUint(index, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid index: %s", ErrInvalidUTXO, index)
	}
	op.Index = uint32(idx)

	return op, nil
}
