// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"fmt"
	"strings"

	"github.com/BoostyLabs/ordpsbt/bitcoin"
	"github.com/BoostyLabs/ordpsbt/bitcoin/utils"
)

// KeyRole defines the owner role of the key.
type KeyRole string

const (
	// RolePayment defines key controlling payment (btc) outputs.
	RolePayment KeyRole = "payment"
	// RoleOrdinal defines key controlling ordinal-bearing (taproot) outputs.
	RoleOrdinal KeyRole = "ordinal"
)

// KeyScript is a closed set of spending scripts a public key can be bound to.
// Every variant carries the public key it derives its script from.
type KeyScript interface {
	// PublicKey returns raw public key bytes.
	PublicKey() []byte
	// String returns script type tag.
	String() string

	keyScript()
}

// SegwitPubKeyHash defines native segwit v0 pay-to-pubkey-hash (P2WPKH) spending.
type SegwitPubKeyHash struct {
	PubKey []byte
}

// Taproot defines segwit v1 key path spending, the internal key is
// the compressed public key with the parity byte dropped.
type Taproot struct {
	PubKey []byte
}

// TaprootAsIs defines segwit v1 key path spending where the 32 bytes x-only
// public key is used as the internal key without any stripping.
type TaprootAsIs struct {
	PubKey []byte
}

// WrappedSegwitPubKeyHash defines P2WPKH nested into pay-to-script-hash (P2SH-P2WPKH) spending.
type WrappedSegwitPubKeyHash struct {
	PubKey []byte
}

// Script type tags.
const (
	SegwitPubKeyHashTag        = "segwit-v0-pubkeyhash"
	TaprootTag                 = "taproot"
	TaprootAsIsTag             = "taproot-as-is"
	WrappedSegwitPubKeyHashTag = "wrapped-segwit-pubkeyhash"
)

func (SegwitPubKeyHash) keyScript()        {}
func (Taproot) keyScript()                 {}
func (TaprootAsIs) keyScript()             {}
func (WrappedSegwitPubKeyHash) keyScript() {}

// PublicKey returns raw public key bytes.
func (s SegwitPubKeyHash) PublicKey() []byte { return s.PubKey }

// PublicKey returns raw public key bytes.
func (s Taproot) PublicKey() []byte { return s.PubKey }

// PublicKey returns raw public key bytes.
func (s TaprootAsIs) PublicKey() []byte { return s.PubKey }

// PublicKey returns raw public key bytes.
func (s WrappedSegwitPubKeyHash) PublicKey() []byte { return s.PubKey }

func (SegwitPubKeyHash) String() string        { return SegwitPubKeyHashTag }
func (Taproot) String() string                 { return TaprootTag }
func (TaprootAsIs) String() string             { return TaprootAsIsTag }
func (WrappedSegwitPubKeyHash) String() string { return WrappedSegwitPubKeyHashTag }

// ParseKeyScript returns KeyScript variant by script type tag.
// Short address type names (p2wpkh, p2tr, p2sh-p2wpkh) are accepted as well.
func ParseKeyScript(tag string, pubKey []byte) (KeyScript, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case SegwitPubKeyHashTag, "p2wpkh":
		return SegwitPubKeyHash{PubKey: pubKey}, nil
	case TaprootTag, "p2tr":
		return Taproot{PubKey: pubKey}, nil
	case WrappedSegwitPubKeyHashTag, "p2sh-p2wpkh", "p2sh":
		return WrappedSegwitPubKeyHash{PubKey: pubKey}, nil
	}

	return nil, fmt.Errorf("%w: %q", bitcoin.ErrUnsupportedKeyType, tag)
}

// KeyMaterial describes public key tagged with owner role and intended script.
type KeyMaterial struct {
	Role   KeyRole
	Script KeyScript
}

// NewKeyMaterial is a constructor for KeyMaterial from hex encoded public key.
func NewKeyMaterial(role KeyRole, scriptTag, pubKeyHex string) (KeyMaterial, error) {
	pubKey, err := utils.DecodePublicKeyHex(pubKeyHex)
	if err != nil {
		return KeyMaterial{}, err
	}

	script, err := ParseKeyScript(scriptTag, pubKey)
	if err != nil {
		return KeyMaterial{}, err
	}

	return KeyMaterial{Role: role, Script: script}, nil
}
