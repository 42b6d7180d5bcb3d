// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
)

// ErrNoWitnessUtxo defines that psbt input does not carry witness utxo.
var ErrNoWitnessUtxo = errors.New("input has no witness utxo")

// DecodePSBT parses base64 encoded PSBT.
func DecodePSBT(encoded EncodedPSBT) (*psbt.Packet, error) {
	return psbt.NewFromRawBytes(strings.NewReader(string(encoded)), true)
}

// EncodePSBT serialises PSBT into base64.
func EncodePSBT(p *psbt.Packet) (EncodedPSBT, error) {
	encoded, err := p.B64Encode()
	if err != nil {
		return "", err
	}

	return EncodedPSBT(encoded), nil
}

// InputIndexesByScriptType returns map with script classes of witness utxos and indexes of inputs to sign.
func InputIndexesByScriptType(encoded EncodedPSBT) (map[txscript.ScriptClass][]int, error) {
	p, err := DecodePSBT(encoded)
	if err != nil {
		return nil, err
	}

	var result = make(map[txscript.ScriptClass][]int, 2)
	for idx, input := range p.Inputs {
		if input.WitnessUtxo == nil {
			return nil, ErrNoWitnessUtxo
		}

		class := txscript.GetScriptClass(input.WitnessUtxo.PkScript)
		result[class] = append(result[class], idx)
	}

	return result, nil
}
