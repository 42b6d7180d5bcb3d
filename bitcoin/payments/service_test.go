// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package payments_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BoostyLabs/ordpsbt/bitcoin"
	"github.com/BoostyLabs/ordpsbt/bitcoin/networks"
	"github.com/BoostyLabs/ordpsbt/bitcoin/payments"
	"github.com/BoostyLabs/ordpsbt/bitcoin/signer"
	"github.com/BoostyLabs/ordpsbt/bitcoin/txbuilder"
	"github.com/BoostyLabs/ordpsbt/bitcoin/utils"
)

const testTxHash = "d78a52d61c43ec43d56e270e8f87ebe952f3bb5fe0a042494ed6ebf753285746"

type utxoSourceMock struct {
	mock.Mock
}

func (m *utxoSourceMock) ListUnspent(ctx context.Context, params *networks.Params, address string) ([]bitcoin.UTXO, error) {
	args := m.Called(ctx, params, address)
	utxos, _ := args.Get(0).([]bitcoin.UTXO)

	return utxos, args.Error(1)
}

type signerMock struct {
	mock.Mock
}

func (m *signerMock) SignPSBT(ctx context.Context, request signer.Request) (*signer.Response, error) {
	args := m.Called(ctx, request)
	resp, _ := args.Get(0).(*signer.Response)

	return resp, args.Error(1)
}

func TestService(t *testing.T) {
	ctx := context.Background()
	params := networks.MustResolve("testnet")

	var (
		paymentPrivKey = testPrivKey(31)
		ordinalPrivKey = testPrivKey(32)
	)

	paymentAddress, err := utils.NewP2WPKHAddress(params.Chain, paymentPrivKey.PubKey())
	require.NoError(t, err)
	wrappedAddress, err := utils.NewP2SHAddress(params.Chain, utils.MustP2WPKHScript(paymentPrivKey.PubKey()))
	require.NoError(t, err)
	ordinalAddress, err := utils.NewTaprootKeyPathAddress(params.Chain, ordinalPrivKey.PubKey())
	require.NoError(t, err)

	keySigner, err := signer.NewKeySigner(params, paymentPrivKey, ordinalPrivKey)
	require.NoError(t, err)

	selfSendRequest := payments.SelfSendRequest{
		PubKey:  hex.EncodeToString(paymentPrivKey.PubKey().SerializeCompressed()),
		KeyType: "p2wpkh",
		Address: paymentAddress.EncodeAddress(),
	}

	t.Run("self send", func(t *testing.T) {
		utxos := new(utxoSourceMock)
		utxos.On("ListUnspent", mock.Anything, params, paymentAddress.EncodeAddress()).
			Return([]bitcoin.UTXO{{TxHash: testTxHash, Index: 1, Amount: big.NewInt(5000), Confirmed: true}}, nil).Once()

		service := payments.NewService(params, utxos, keySigner, zap.NewNop())

		resp, err := service.SelfSend(ctx, selfSendRequest)
		require.NoError(t, err)

		p, err := txbuilder.DecodePSBT(resp.PSBT)
		require.NoError(t, err)
		require.NotEmpty(t, p.Inputs[0].PartialSigs)
		utxos.AssertExpectations(t)
	})

	t.Run("preset utxos are not fetched", func(t *testing.T) {
		utxos := new(utxoSourceMock)
		service := payments.NewService(params, utxos, keySigner, zap.NewNop())

		req := selfSendRequest
		req.UTXOs = []bitcoin.UTXO{{TxHash: testTxHash, Amount: big.NewInt(9000)}}

		result, err := service.BuildSelfSend(ctx, req)
		require.NoError(t, err)
		require.Equal(t, []int64{2700, 6000}, result.Amounts)
		utxos.AssertNotCalled(t, "ListUnspent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("dual party", func(t *testing.T) {
		utxos := new(utxoSourceMock)
		utxos.On("ListUnspent", mock.Anything, params, wrappedAddress.EncodeAddress()).
			Return([]bitcoin.UTXO{{TxHash: testTxHash, Index: 0, Amount: big.NewInt(10000)}}, nil).Once()
		utxos.On("ListUnspent", mock.Anything, params, ordinalAddress.EncodeAddress()).
			Return([]bitcoin.UTXO{{TxHash: testTxHash, Index: 1, Amount: big.NewInt(1000)}}, nil).Once()

		service := payments.NewService(params, utxos, keySigner, zap.NewNop())

		req := payments.DualPartyRequest{
			PaymentPubKey:  hex.EncodeToString(paymentPrivKey.PubKey().SerializeCompressed()),
			OrdinalPubKey:  hex.EncodeToString(schnorr.SerializePubKey(ordinalPrivKey.PubKey())),
			PaymentAddress: wrappedAddress.EncodeAddress(),
			OrdinalAddress: ordinalAddress.EncodeAddress(),
			Recipient1:     paymentAddress.EncodeAddress(),
			Recipient2:     ordinalAddress.EncodeAddress(),
		}

		resp, err := service.DualParty(ctx, req)
		require.NoError(t, err)

		p, err := txbuilder.DecodePSBT(resp.PSBT)
		require.NoError(t, err)
		require.NotEmpty(t, p.Inputs[0].PartialSigs)
		require.NotEmpty(t, p.Inputs[1].TaprootKeySpendSig)
		utxos.AssertExpectations(t)
	})

	t.Run("no spendable outputs", func(t *testing.T) {
		utxos := new(utxoSourceMock)
		utxos.On("ListUnspent", mock.Anything, params, paymentAddress.EncodeAddress()).
			Return([]bitcoin.UTXO{}, nil).Once()

		walletSigner := new(signerMock)
		service := payments.NewService(params, utxos, walletSigner, zap.NewNop())

		resp, err := service.SelfSend(ctx, selfSendRequest)
		require.ErrorIs(t, err, bitcoin.ErrNoSpendableOutputs)
		require.ErrorIs(t, err, payments.ErrPayments)
		require.Nil(t, resp)
		walletSigner.AssertNotCalled(t, "SignPSBT", mock.Anything, mock.Anything)
	})

	t.Run("explorer failure", func(t *testing.T) {
		explorerErr := errors.New("explorer is down")

		utxos := new(utxoSourceMock)
		utxos.On("ListUnspent", mock.Anything, params, paymentAddress.EncodeAddress()).
			Return(nil, explorerErr).Once()

		service := payments.NewService(params, utxos, new(signerMock), zap.NewNop())

		_, err := service.SelfSend(ctx, selfSendRequest)
		require.ErrorIs(t, err, explorerErr)
	})

	t.Run("signing canceled", func(t *testing.T) {
		utxos := new(utxoSourceMock)
		utxos.On("ListUnspent", mock.Anything, params, paymentAddress.EncodeAddress()).
			Return([]bitcoin.UTXO{{TxHash: testTxHash, Amount: big.NewInt(5000)}}, nil).Once()

		walletSigner := new(signerMock)
		walletSigner.On("SignPSBT", mock.Anything, mock.MatchedBy(func(req signer.Request) bool {
			return len(req.Directives) == 1 && req.Directives[0].Address == paymentAddress.EncodeAddress()
		})).Return(nil, signer.ErrCanceled).Once()

		service := payments.NewService(params, utxos, walletSigner, zap.NewNop())

		resp, err := service.SelfSend(ctx, selfSendRequest)
		require.ErrorIs(t, err, signer.ErrCanceled)
		require.Nil(t, resp)
		walletSigner.AssertExpectations(t)
	})

	t.Run("unsupported key type", func(t *testing.T) {
		utxos := new(utxoSourceMock)
		service := payments.NewService(params, utxos, keySigner, zap.NewNop())

		req := selfSendRequest
		req.KeyType = "p2pkh"
		_, err := service.BuildSelfSend(ctx, req)
		require.ErrorIs(t, err, bitcoin.ErrUnsupportedKeyType)
		utxos.AssertNotCalled(t, "ListUnspent", mock.Anything, mock.Anything, mock.Anything)
	})
}

func testPrivKey(seed byte) *btcec.PrivateKey {
	privKey, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{seed}, 32))

	return privKey
}
