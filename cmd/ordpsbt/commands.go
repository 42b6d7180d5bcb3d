// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"encoding/hex"
	"encoding/json"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"

	"github.com/BoostyLabs/ordpsbt/bitcoin"
	"github.com/BoostyLabs/ordpsbt/bitcoin/payments"
	"github.com/BoostyLabs/ordpsbt/bitcoin/signer"
	"github.com/BoostyLabs/ordpsbt/bitcoin/txbuilder"
)

// buildOutput describes command result printed to stdout.
type buildOutput struct {
	PSBT         txbuilder.EncodedPSBT        `json:"psbt"`
	InputsToSign []bitcoin.SigningDirective `json:"inputsToSign"`
	Amounts      []int64                    `json:"amounts"`
	Fee          int64                      `json:"fee"`
	Signed       bool                       `json:"signed"`
}

type selfSendCommand struct {
	app *application

	PubKey  string   `long:"pubkey" description:"hex encoded payment public key" required:"true"`
	KeyType string   `long:"key-type" description:"script type of the key" choice:"p2wpkh" choice:"p2tr" choice:"p2sh-p2wpkh" default:"p2wpkh"`
	Address string   `long:"address" description:"address to spend from and send to" required:"true"`
	UTXOs   []string `long:"utxo" description:"unspent output as txid:vout:value, fetched from explorer when omitted (repeatable)"`

	PrivateKeys []string `long:"private-key" description:"hex or WIF private key, signs the built psbt locally (repeatable)"`
}

// Execute builds self-send psbt.
func (cmd *selfSendCommand) Execute([]string) error {
	utxos, err := parseUTXOs(cmd.UTXOs)
	if err != nil {
		return err
	}

	service, err := cmd.app.service(cmd.PrivateKeys)
	if err != nil {
		return err
	}

	result, err := service.BuildSelfSend(cmd.app.ctx, payments.SelfSendRequest{
		PubKey:  cmd.PubKey,
		KeyType: cmd.KeyType,
		Address: cmd.Address,
		UTXOs:   utxos,
	})
	if err != nil {
		return err
	}

	return cmd.app.print(service, result, len(cmd.PrivateKeys) != 0)
}

type dualPartyCommand struct {
	app *application

	PaymentPubKey  string   `long:"payment-pubkey" description:"hex encoded payment public key, spent as P2SH-P2WPKH" required:"true"`
	OrdinalPubKey  string   `long:"ordinal-pubkey" description:"hex encoded ordinal public key, used as taproot internal key as is" required:"true"`
	PaymentAddress string   `long:"payment-address" description:"payment address to fetch unspent outputs of"`
	OrdinalAddress string   `long:"ordinal-address" description:"ordinal address to fetch unspent outputs of"`
	Recipient1     string   `long:"recipient1" description:"first recipient address" required:"true"`
	Recipient2     string   `long:"recipient2" description:"second recipient address, receives change" required:"true"`
	PaymentUTXOs   []string `long:"payment-utxo" description:"payment unspent output as txid:vout:value (repeatable)"`
	OrdinalUTXOs   []string `long:"ordinal-utxo" description:"ordinal unspent output as txid:vout:value (repeatable)"`

	PrivateKeys []string `long:"private-key" description:"hex or WIF private key, signs the built psbt locally (repeatable)"`
}

// Execute builds two-party transfer psbt.
func (cmd *dualPartyCommand) Execute([]string) error {
	paymentUTXOs, err := parseUTXOs(cmd.PaymentUTXOs)
	if err != nil {
		return err
	}

	ordinalUTXOs, err := parseUTXOs(cmd.OrdinalUTXOs)
	if err != nil {
		return err
	}

	if len(paymentUTXOs) == 0 && cmd.PaymentAddress == "" {
		return errors.New("either --payment-utxo or --payment-address has to be set")
	}
	if len(ordinalUTXOs) == 0 && cmd.OrdinalAddress == "" {
		return errors.New("either --ordinal-utxo or --ordinal-address has to be set")
	}

	service, err := cmd.app.service(cmd.PrivateKeys)
	if err != nil {
		return err
	}

	result, err := service.BuildDualParty(cmd.app.ctx, payments.DualPartyRequest{
		PaymentPubKey:  cmd.PaymentPubKey,
		OrdinalPubKey:  cmd.OrdinalPubKey,
		PaymentAddress: cmd.PaymentAddress,
		OrdinalAddress: cmd.OrdinalAddress,
		Recipient1:     cmd.Recipient1,
		Recipient2:     cmd.Recipient2,
		PaymentUTXOs:   paymentUTXOs,
		OrdinalUTXOs:   ordinalUTXOs,
	})
	if err != nil {
		return err
	}

	return cmd.app.print(service, result, len(cmd.PrivateKeys) != 0)
}

type decodeCommand struct {
	app *application

	PSBT string `long:"psbt" description:"base64 encoded psbt" required:"true"`
}

// decodedInput describes psbt input printed by decode command.
type decodedInput struct {
	OutPoint     string `json:"outpoint"`
	Value        int64  `json:"value"`
	ScriptClass  string `json:"scriptClass"`
	SigHash      uint32 `json:"sighashFlags"`
	InternalKey  string `json:"taprootInternalKey,omitempty"`
	RedeemScript string `json:"redeemScript,omitempty"`
	Signed       bool   `json:"signed"`
}

// decodedOutput describes psbt output printed by decode command.
type decodedOutput struct {
	Address string `json:"address,omitempty"`
	Script  string `json:"script"`
	Value   int64  `json:"value"`
}

// Execute prints psbt inputs and outputs.
func (cmd *decodeCommand) Execute([]string) error {
	packet, err := txbuilder.DecodePSBT(txbuilder.EncodedPSBT(cmd.PSBT))
	if err != nil {
		return errors.Wrap(err, "decode psbt")
	}

	indexesByClass, err := txbuilder.InputIndexesByScriptType(txbuilder.EncodedPSBT(cmd.PSBT))
	if err != nil {
		return errors.Wrap(err, "classify psbt inputs")
	}

	var (
		tx            = packet.UnsignedTx
		inputs        = make([]decodedInput, len(packet.Inputs))
		outputs       = make([]decodedOutput, len(tx.TxOut))
		inputsByClass = make(map[string][]int, len(indexesByClass))
	)
	for idx, in := range packet.Inputs {
		inputs[idx] = decodedInput{
			OutPoint:     tx.TxIn[idx].PreviousOutPoint.String(),
			Value:        in.WitnessUtxo.Value,
			SigHash:      uint32(in.SighashType),
			InternalKey:  hex.EncodeToString(in.TaprootInternalKey),
			RedeemScript: hex.EncodeToString(in.RedeemScript),
			Signed:       len(in.PartialSigs) != 0 || len(in.TaprootKeySpendSig) != 0,
		}
	}
	for class, indexes := range indexesByClass {
		inputsByClass[class.String()] = indexes
		for _, idx := range indexes {
			inputs[idx].ScriptClass = class.String()
		}
	}

	for idx, out := range tx.TxOut {
		outputs[idx] = decodedOutput{Script: hex.EncodeToString(out.PkScript), Value: out.Value}

		_, addresses, _, err := txscript.ExtractPkScriptAddrs(out.PkScript, cmd.app.params.Chain)
		if err == nil && len(addresses) == 1 {
			outputs[idx].Address = addresses[0].EncodeAddress()
		}
	}

	return cmd.app.writeJSON(struct {
		Version       int32            `json:"version"`
		Inputs        []decodedInput   `json:"inputs"`
		InputsByClass map[string][]int `json:"inputsByScriptClass"`
		Outputs       []decodedOutput  `json:"outputs"`
	}{tx.Version, inputs, inputsByClass, outputs})
}

// service creates payments service with explorer and optional local signer.
func (app *application) service(privateKeys []string) (*payments.Service, error) {
	keys := make([]*btcec.PrivateKey, 0, len(privateKeys))
	for _, privateKey := range privateKeys {
		key, err := parsePrivateKey(privateKey)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	keySigner, err := signer.NewKeySigner(app.params, keys...)
	if err != nil {
		return nil, err
	}

	return payments.NewService(app.params, app.explorer(), keySigner, app.log.Named("payments")), nil
}

// print signs built psbt when local keys are given and writes result.
func (app *application) print(service *payments.Service, result *txbuilder.Result, sign bool) error {
	output := buildOutput{
		PSBT:         result.PSBT,
		InputsToSign: result.Directives,
		Amounts:      result.Amounts,
		Fee:          result.Fee,
	}

	if sign {
		resp, err := service.Sign(app.ctx, result)
		if err != nil {
			return err
		}

		output.PSBT = resp.PSBT
		output.Signed = true
	}

	return app.writeJSON(output)
}

func (app *application) writeJSON(v interface{}) error {
	encoder := json.NewEncoder(app.out)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

// parseUTXOs parses txid:vout:value records.
func parseUTXOs(records []string) ([]bitcoin.UTXO, error) {
	utxos := make([]bitcoin.UTXO, 0, len(records))
	for _, record := range records {
		utxo, err := bitcoin.NewUTXOFromString(record)
		if err != nil {
			return nil, errors.Wrapf(err, "parse utxo %q", record)
		}
		utxos = append(utxos, *utxo)
	}

	return utxos, nil
}

// parsePrivateKey parses hex encoded private key or WIF.
func parsePrivateKey(s string) (*btcec.PrivateKey, error) {
	if b, err := hex.DecodeString(s); err == nil && len(b) == btcec.PrivKeyBytesLen {
		key, _ := btcec.PrivKeyFromBytes(b)
		return key, nil
	}

	wif, err := btcutil.DecodeWIF(s)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}

	return wif.PrivKey, nil
}
