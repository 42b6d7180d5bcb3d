// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/BoostyLabs/ordpsbt/bitcoin"
)

type outputSign string

const (
	// OutputTransfer defines self-send transfer output.
	OutputTransfer outputSign = "transfer"
	// OutputRecipient1 defines first recipient output of two-party transfer.
	OutputRecipient1 outputSign = "recipient1"
	// OutputChange defines change output.
	OutputChange outputSign = "change"
)

// InsufficientError is the error type to describe insufficient funds errors with details.
type InsufficientError struct {
	Output outputSign
	Need   *big.Int
	Have   *big.Int
}

// NewInsufficientError is a constructor for InsufficientError.
func NewInsufficientError(output outputSign, need, have *big.Int) *InsufficientError {
	return &InsufficientError{output, need, have}
}

// Error returns error description.
func (e *InsufficientError) Error() string {
	var errMsg = fmt.Sprintf("%s for %s output", bitcoin.ErrInsufficientFunds, e.Output)

	if e.Have != nil && e.Need != nil {
		errMsg += fmt.Sprintf(": Need - %s, Have - %s", e.Need, e.Have)
	}

	return errMsg
}

// Is implements comparator method for [errors] package.
func (e *InsufficientError) Is(target error) bool {
	if target == bitcoin.ErrInsufficientFunds {
		return true
	}

	var other *InsufficientError
	if errors.As(target, &other) {
		return other.Output == e.Output
	}

	return false
}
