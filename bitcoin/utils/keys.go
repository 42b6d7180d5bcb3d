// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package utils

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/BoostyLabs/ordpsbt/bitcoin"
)

// pubKeyBytesLenUncompressed defines length of uncompressed public key with 0x04 prefix.
const pubKeyBytesLenUncompressed = 65

// DecodePublicKeyHex decodes hex encoded public key bytes.
func DecodePublicKeyHex(pubKey string) ([]byte, error) {
	b, err := hex.DecodeString(pubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bitcoin.ErrInvalidPublicKey, err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty key", bitcoin.ErrInvalidPublicKey)
	}

	return b, nil
}

// ParsePublicKey parses 32 bytes x-only, 33 bytes compressed or 65 bytes uncompressed public key.
// NOTE: x-only keys are parsed with even Y coordinate.
func ParsePublicKey(pubKey []byte) (*btcec.PublicKey, error) {
	var (
		key *btcec.PublicKey
		err error
	)
	switch len(pubKey) {
	case schnorr.PubKeyBytesLen:
		key, err = schnorr.ParsePubKey(pubKey)
	case btcec.PubKeyBytesLenCompressed, pubKeyBytesLenUncompressed:
		key, err = btcec.ParsePubKey(pubKey)
	default:
		return nil, fmt.Errorf("%w: unexpected length %d", bitcoin.ErrInvalidPublicKey, len(pubKey))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bitcoin.ErrInvalidPublicKey, err)
	}

	return key, nil
}

// XOnlyFromCompressed returns 32 bytes x-only key by dropping the parity byte of compressed public key.
func XOnlyFromCompressed(pubKey []byte) ([]byte, error) {
	if len(pubKey) != btcec.PubKeyBytesLenCompressed {
		return nil, fmt.Errorf("%w: compressed key expected, got %d bytes", bitcoin.ErrInvalidPublicKey, len(pubKey))
	}

	xOnly := make([]byte, schnorr.PubKeyBytesLen)
	copy(xOnly, pubKey[1:])

	return xOnly, nil
}
