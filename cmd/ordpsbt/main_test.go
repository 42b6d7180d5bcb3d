// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/ordpsbt/bitcoin"
	"github.com/BoostyLabs/ordpsbt/bitcoin/utils"
)

const testTxHash = "d78a52d61c43ec43d56e270e8f87ebe952f3bb5fe0a042494ed6ebf753285746"

func TestRun(t *testing.T) {
	ctx := context.Background()

	privKey, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{41}, 32))
	pubKeyHex := hex.EncodeToString(privKey.PubKey().SerializeCompressed())

	address, err := utils.NewP2WPKHAddress(&chaincfg.TestNet3Params, privKey.PubKey())
	require.NoError(t, err)

	t.Run("self-send", func(t *testing.T) {
		var out bytes.Buffer
		err := run(ctx, []string{
			"--log-level", "error",
			"self-send",
			"--pubkey", pubKeyHex,
			"--address", address.EncodeAddress(),
			"--utxo", testTxHash + ":1:5000",
		}, &out)
		require.NoError(t, err)

		var result buildOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.NotEmpty(t, result.PSBT)
		require.Equal(t, []int64{2700, 2000}, result.Amounts)
		require.EqualValues(t, 300, result.Fee)
		require.False(t, result.Signed)
		require.Len(t, result.InputsToSign, 1)
		require.Equal(t, address.EncodeAddress(), result.InputsToSign[0].Address)
		require.EqualValues(t, 0x83, result.InputsToSign[0].SigHash)

		var decoded bytes.Buffer
		err = run(ctx, []string{"--log-level", "error", "decode", "--psbt", string(result.PSBT)}, &decoded)
		require.NoError(t, err)
		require.Contains(t, decoded.String(), address.EncodeAddress())
		require.Contains(t, decoded.String(), testTxHash+":1")
	})

	t.Run("self-send signed", func(t *testing.T) {
		var out bytes.Buffer
		err := run(ctx, []string{
			"--log-level", "error",
			"self-send",
			"--pubkey", pubKeyHex,
			"--key-type", "p2tr",
			"--address", address.EncodeAddress(),
			"--utxo", testTxHash + ":0:8000",
			"--private-key", hex.EncodeToString(privKey.Serialize()),
		}, &out)
		require.NoError(t, err)

		var result buildOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.True(t, result.Signed)
		require.Equal(t, []int64{2700, 5000}, result.Amounts)
	})

	t.Run("dual-party", func(t *testing.T) {
		ordinalKey, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{42}, 32))

		var out bytes.Buffer
		err := run(ctx, []string{
			"--log-level", "error",
			"dual-party",
			"--payment-pubkey", pubKeyHex,
			"--ordinal-pubkey", hex.EncodeToString(schnorr.SerializePubKey(ordinalKey.PubKey())),
			"--recipient1", address.EncodeAddress(),
			"--recipient2", address.EncodeAddress(),
			"--payment-utxo", testTxHash + ":0:10000",
			"--ordinal-utxo", testTxHash + ":1:1000",
		}, &out)
		require.NoError(t, err)

		var result buildOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, []int64{2700, 1000, 7000}, result.Amounts)
		require.Len(t, result.InputsToSign, 2)

		var decoded bytes.Buffer
		err = run(ctx, []string{"--log-level", "error", "decode", "--psbt", string(result.PSBT)}, &decoded)
		require.NoError(t, err)

		var layout struct {
			Inputs []struct {
				ScriptClass string `json:"scriptClass"`
				Value       int64  `json:"value"`
			} `json:"inputs"`
			InputsByClass map[string][]int `json:"inputsByScriptClass"`
		}
		require.NoError(t, json.Unmarshal(decoded.Bytes(), &layout))
		require.Equal(t, map[string][]int{
			txscript.ScriptHashTy.String():       {0},
			txscript.WitnessV1TaprootTy.String(): {1},
		}, layout.InputsByClass)
		require.Len(t, layout.Inputs, 2)
		require.Equal(t, txscript.ScriptHashTy.String(), layout.Inputs[0].ScriptClass)
		require.EqualValues(t, 10000, layout.Inputs[0].Value)
		require.Equal(t, txscript.WitnessV1TaprootTy.String(), layout.Inputs[1].ScriptClass)
		require.EqualValues(t, 1000, layout.Inputs[1].Value)
	})

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ordpsbt.conf")
		require.NoError(t, os.WriteFile(path, []byte("network = mainnet\nlog-level = error\n"), 0o600))

		mainnetAddress, err := utils.NewP2WPKHAddress(&chaincfg.MainNetParams, privKey.PubKey())
		require.NoError(t, err)

		var out bytes.Buffer
		err = run(ctx, []string{
			"--config", path,
			"self-send",
			"--pubkey", pubKeyHex,
			"--address", mainnetAddress.EncodeAddress(),
			"--utxo", testTxHash + ":1:5000",
		}, &out)
		require.NoError(t, err)

		var result buildOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, mainnetAddress.EncodeAddress(), result.InputsToSign[0].Address)
	})

	t.Run("errors", func(t *testing.T) {
		var out bytes.Buffer
		err := run(ctx, []string{
			"--log-level", "error",
			"self-send",
			"--pubkey", pubKeyHex,
			"--address", address.EncodeAddress(),
			"--utxo", testTxHash + ":1:3000",
		}, &out)
		require.ErrorIs(t, err, bitcoin.ErrInsufficientFunds)

		err = run(ctx, []string{"--network", "signet", "decode", "--psbt", "cHNidP8="}, &out)
		require.Error(t, err)

		err = run(ctx, []string{"--log-level", "error", "self-send", "--pubkey", pubKeyHex, "--address", address.EncodeAddress(), "--utxo", "bad"}, &out)
		require.ErrorIs(t, err, bitcoin.ErrInvalidUTXO)

		err = run(ctx, []string{"--log-level", "error", "self-send", "--address", address.EncodeAddress()}, &out)
		require.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	cfg := config{Network: "testnet", LogLevel: "info"}
	params, err := cfg.validate()
	require.NoError(t, err)
	require.Equal(t, &chaincfg.TestNet3Params, params.Chain)

	cfg.Network = "unknown"
	_, err = cfg.validate()
	require.ErrorIs(t, err, bitcoin.ErrUnknownNetwork)

	cfg = config{Network: "mainnet", LogLevel: "loud"}
	_, err = cfg.validate()
	require.Error(t, err)

	cfg = config{Network: "mainnet", LogLevel: "info"}
	cfg.Explorer.BaseURL = "mempool.space"
	_, err = cfg.validate()
	require.Error(t, err)
}

func TestParseUTXOs(t *testing.T) {
	utxos, err := parseUTXOs([]string{testTxHash + ":2:546", testTxHash + ":0:1"})
	require.NoError(t, err)
	require.Len(t, utxos, 2)
	require.EqualValues(t, 2, utxos[0].Index)
	require.EqualValues(t, 546, utxos[0].Amount.Int64())

	_, err = parseUTXOs([]string{testTxHash + ":x:1"})
	require.ErrorIs(t, err, bitcoin.ErrInvalidUTXO)
}
