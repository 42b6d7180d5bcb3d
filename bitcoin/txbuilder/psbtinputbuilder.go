// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/ordpsbt/bitcoin"
	"github.com/BoostyLabs/ordpsbt/bitcoin/networks"
	"github.com/BoostyLabs/ordpsbt/bitcoin/utils"
	"github.com/BoostyLabs/ordpsbt/internal/numbers"
)

// ErrPSBTInputBuilder defines errors class for input building.
var ErrPSBTInputBuilder = errors.New("build psbt input")

const (
	// segwitSigHashType defines default signature hash type for native segwit and taproot inputs.
	segwitSigHashType = txscript.SigHashAll | txscript.SigHashAnyOneCanPay
	// wrappedSegwitSigHashType defines default signature hash type for nested segwit inputs.
	wrappedSegwitSigHashType = txscript.SigHashSingle | txscript.SigHashAnyOneCanPay
)

// InputSpec describes transaction input bound to its spending script.
type InputSpec struct {
	Role        KeyRole
	ScriptType  string
	OutPoint    wire.OutPoint
	WitnessUtxo *wire.TxOut // locking script and committed amount.
	// RedeemScript is set for P2SH wrapped inputs only.
	RedeemScript []byte
	// WitnessScript is set for P2SH-P2WSH inputs only, empty for P2SH-P2WPKH.
	WitnessScript      []byte
	TaprootInternalKey []byte
	// SigHashType is the spend intent flags, defaults to the script type policy
	// until overridden with WithSigHash.
	SigHashType txscript.SigHashType
	Address     btcutil.Address // address which signs the input.
}

// BuildInput derives locking script and spending data of the utxo for the key.
func BuildInput(utxo bitcoin.UTXO, key KeyMaterial, params *networks.Params) (spec *InputSpec, err error) {
	defer func(err *error) {
		if err != nil && *err != nil {
			*err = errors.Join(ErrPSBTInputBuilder, *err)
		}
	}(&err)

	if utxo.Amount == nil || numbers.IsNegative(utxo.Amount) || !numbers.FitsInt64(utxo.Amount) {
		return nil, fmt.Errorf("%w: invalid amount of %s", bitcoin.ErrInvalidUTXO, utxo.OutPoint())
	}

	hash, err := utxo.OutPoint().Hash()
	if err != nil {
		return nil, err
	}

	spec = &InputSpec{
		Role:     key.Role,
		OutPoint: *wire.NewOutPoint(hash, utxo.Index),
	}

	var (
		amount   = utxo.Amount.Int64()
		chain    = params.Chain
		pkScript []byte
	)
	switch script := key.Script.(type) {
	case SegwitPubKeyHash:
		pubKey, err := parseECDSAPubKey(script.PubKey)
		if err != nil {
			return nil, err
		}

		if pkScript, err = utils.NewP2WPKHScript(pubKey); err != nil {
			return nil, err
		}
		if spec.Address, err = utils.NewP2WPKHAddress(chain, pubKey); err != nil {
			return nil, err
		}

		spec.SigHashType = segwitSigHashType
	case Taproot:
		xOnly, err := utils.XOnlyFromCompressed(script.PubKey)
		if err != nil {
			return nil, err
		}

		if pkScript, spec.Address, err = taprootKeyPath(xOnly, params); err != nil {
			return nil, err
		}

		spec.TaprootInternalKey = xOnly
		spec.SigHashType = segwitSigHashType
	case TaprootAsIs:
		// internal key field of psbt holds x-only keys only.
		if len(script.PubKey) != schnorr.PubKeyBytesLen {
			return nil, fmt.Errorf("%w: x-only taproot key expected, got %d bytes", bitcoin.ErrInvalidPublicKey, len(script.PubKey))
		}

		if pkScript, spec.Address, err = taprootKeyPath(script.PubKey, params); err != nil {
			return nil, err
		}

		spec.TaprootInternalKey = append([]byte(nil), script.PubKey...)
		spec.SigHashType = segwitSigHashType
	case WrappedSegwitPubKeyHash:
		pubKey, err := parseECDSAPubKey(script.PubKey)
		if err != nil {
			return nil, err
		}

		if spec.RedeemScript, err = utils.NewP2WPKHScript(pubKey); err != nil {
			return nil, err
		}
		if pkScript, err = utils.NewP2SHScript(spec.RedeemScript); err != nil {
			return nil, err
		}
		if spec.Address, err = utils.NewP2SHAddress(chain, spec.RedeemScript); err != nil {
			return nil, err
		}

		spec.SigHashType = wrappedSegwitSigHashType
	default:
		return nil, fmt.Errorf("%w: %v", bitcoin.ErrUnsupportedKeyType, key.Script)
	}

	spec.ScriptType = key.Script.String()
	spec.WitnessUtxo = wire.NewTxOut(amount, pkScript)

	return spec, nil
}

// WithSigHash returns a copy of the input with signing intent flags overridden.
func (in *InputSpec) WithSigHash(sigHashType txscript.SigHashType) *InputSpec {
	c := *in
	c.SigHashType = sigHashType

	return &c
}

// TxIn returns unsigned transaction input spending the out point.
func (in *InputSpec) TxIn() *wire.TxIn {
	outPoint := in.OutPoint

	return wire.NewTxIn(&outPoint, nil, nil)
}

// PrepareInput updates psbt input with required data based on script type.
func (in *InputSpec) PrepareInput(input *psbt.PInput) {
	input.WitnessUtxo = wire.NewTxOut(in.WitnessUtxo.Value, in.WitnessUtxo.PkScript)
	input.SighashType = in.SigHashType

	if len(in.RedeemScript) != 0 {
		input.RedeemScript = in.RedeemScript
	}
	if len(in.WitnessScript) != 0 {
		input.WitnessScript = in.WitnessScript
	}
	if len(in.TaprootInternalKey) != 0 {
		input.TaprootInternalKey = in.TaprootInternalKey
	}
}

// Directive returns signing directive of the input placed at provided index.
func (in *InputSpec) Directive(index int) bitcoin.SigningDirective {
	return bitcoin.SigningDirective{
		InputIndex: index,
		Address:    in.Address.EncodeAddress(),
		SigHash:    in.SigHashType,
	}
}

// parseECDSAPubKey parses compressed or uncompressed public key, x-only keys are rejected.
func parseECDSAPubKey(pubKey []byte) (*btcec.PublicKey, error) {
	if len(pubKey) == schnorr.PubKeyBytesLen {
		return nil, fmt.Errorf("%w: x-only key can not be used for pubkey hash script", bitcoin.ErrInvalidPublicKey)
	}

	return utils.ParsePublicKey(pubKey)
}

// taprootKeyPath returns key path only locking script and address for the internal key.
func taprootKeyPath(internalKey []byte, params *networks.Params) ([]byte, btcutil.Address, error) {
	key, err := utils.ParsePublicKey(internalKey)
	if err != nil {
		return nil, nil, err
	}

	pkScript, err := utils.NewTaprootKeyPathScript(key)
	if err != nil {
		return nil, nil, err
	}

	address, err := utils.NewTaprootKeyPathAddress(params.Chain, key)
	if err != nil {
		return nil, nil, err
	}

	return pkScript, address, nil
}
