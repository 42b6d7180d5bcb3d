// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bitcoin

import (
	"errors"
)

var (
	// ErrNoSpendableOutputs defines that an empty unspent outputs set was supplied.
	ErrNoSpendableOutputs = errors.New("no spendable outputs")
	// ErrInsufficientFunds defines that the fee exceeds available value, producing a negative amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrUnsupportedKeyType defines that the script type of the key is not recognized.
	ErrUnsupportedKeyType = errors.New("unsupported key type")
	// ErrUnknownNetwork defines that the network tag could not be resolved.
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrInvalidPublicKey defines that the public key bytes could not be parsed for the requested script.
	ErrInvalidPublicKey = errors.New("invalid public key")
	// ErrInvalidUTXO defines that the unspent output record is malformed.
	ErrInvalidUTXO = errors.New("invalid utxo")
	// ErrInvalidAddress defines that the address could not be decoded for the network.
	ErrInvalidAddress = errors.New("invalid address")
)
