// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package payments

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/BoostyLabs/ordpsbt/bitcoin"
	"github.com/BoostyLabs/ordpsbt/bitcoin/networks"
	"github.com/BoostyLabs/ordpsbt/bitcoin/signer"
	"github.com/BoostyLabs/ordpsbt/bitcoin/txbuilder"
)

// ErrPayments defines errors class for payments service.
var ErrPayments = errors.New("payments service")

// UTXOSource exposes access to unspent outputs of an address.
type UTXOSource interface {
	ListUnspent(ctx context.Context, params *networks.Params, address string) ([]bitcoin.UTXO, error)
}

// SelfSendRequest describes self-send, UTXOs are fetched by Address when not set.
type SelfSendRequest struct {
	PubKey  string // hex.
	KeyType string // script type tag.
	Address string // spent from and sent to.
	UTXOs   []bitcoin.UTXO
}

// DualPartyRequest describes two-party transfer, UTXOs are fetched by addresses when not set.
type DualPartyRequest struct {
	PaymentPubKey  string
	OrdinalPubKey  string
	PaymentAddress string
	OrdinalAddress string
	Recipient1     string
	Recipient2     string
	PaymentUTXOs   []bitcoin.UTXO
	OrdinalUTXOs   []bitcoin.UTXO
}

// Service sequences unspent outputs fetching, psbt building and signing.
type Service struct {
	params    *networks.Params
	utxos     UTXOSource
	txBuilder *txbuilder.TxBuilder
	signer    signer.Signer
	log       *zap.Logger
}

// NewService is a constructor for payments Service.
func NewService(params *networks.Params, utxos UTXOSource, walletSigner signer.Signer, log *zap.Logger) *Service {
	return &Service{
		params:    params,
		utxos:     utxos,
		txBuilder: txbuilder.NewTxBuilder(params),
		signer:    walletSigner,
		log:       log,
	}
}

// BuildSelfSend fetches unspent outputs if needed and builds unsigned self-send psbt.
func (service *Service) BuildSelfSend(ctx context.Context, req SelfSendRequest) (*txbuilder.Result, error) {
	key, err := txbuilder.NewKeyMaterial(txbuilder.RolePayment, req.KeyType, req.PubKey)
	if err != nil {
		return nil, errors.Join(ErrPayments, err)
	}

	utxos, err := service.unspent(ctx, req.UTXOs, req.Address)
	if err != nil {
		return nil, err
	}

	result, err := service.txBuilder.BuildSelfSend(txbuilder.SelfSendParams{
		PaymentKey:       key,
		UTXOs:            utxos,
		RecipientAddress: req.Address,
	})
	if err != nil {
		return nil, errors.Join(ErrPayments, err)
	}

	service.log.Info("self-send psbt built",
		zap.String("address", req.Address),
		zap.String("key_type", key.Script.String()),
		zap.Int64s("amounts", result.Amounts),
		zap.Int64("fee", result.Fee))

	return result, nil
}

// SelfSend builds self-send psbt and passes it to the signer.
func (service *Service) SelfSend(ctx context.Context, req SelfSendRequest) (*signer.Response, error) {
	result, err := service.BuildSelfSend(ctx, req)
	if err != nil {
		return nil, err
	}

	return service.Sign(ctx, result)
}

// BuildDualParty fetches unspent outputs if needed and builds unsigned two-party transfer psbt.
func (service *Service) BuildDualParty(ctx context.Context, req DualPartyRequest) (*txbuilder.Result, error) {
	paymentUTXOs, err := service.unspent(ctx, req.PaymentUTXOs, req.PaymentAddress)
	if err != nil {
		return nil, err
	}

	ordinalUTXOs, err := service.unspent(ctx, req.OrdinalUTXOs, req.OrdinalAddress)
	if err != nil {
		return nil, err
	}

	result, err := service.txBuilder.BuildDualParty(txbuilder.DualPartyParams{
		PaymentPubKey: req.PaymentPubKey,
		OrdinalPubKey: req.OrdinalPubKey,
		PaymentUTXOs:  paymentUTXOs,
		OrdinalUTXOs:  ordinalUTXOs,
		Recipient1:    req.Recipient1,
		Recipient2:    req.Recipient2,
	})
	if err != nil {
		return nil, errors.Join(ErrPayments, err)
	}

	service.log.Info("dual-party psbt built",
		zap.String("recipient1", req.Recipient1),
		zap.String("recipient2", req.Recipient2),
		zap.Int64s("amounts", result.Amounts),
		zap.Int64("fee", result.Fee))

	return result, nil
}

// DualParty builds two-party transfer psbt and passes it to the signer.
func (service *Service) DualParty(ctx context.Context, req DualPartyRequest) (*signer.Response, error) {
	result, err := service.BuildDualParty(ctx, req)
	if err != nil {
		return nil, err
	}

	return service.Sign(ctx, result)
}

// unspent returns preset outputs or fetches them, empty set is an error.
func (service *Service) unspent(ctx context.Context, preset []bitcoin.UTXO, address string) ([]bitcoin.UTXO, error) {
	utxos := preset
	if len(utxos) == 0 {
		var err error
		if utxos, err = service.utxos.ListUnspent(ctx, service.params, address); err != nil {
			return nil, errors.Join(ErrPayments, err)
		}
	}

	if len(utxos) == 0 {
		service.log.Warn("no spendable outputs", zap.String("address", address))
		return nil, errors.Join(ErrPayments, bitcoin.ErrNoSpendableOutputs)
	}

	return utxos, nil
}

// Sign hands built psbt along with its directives to the signer.
func (service *Service) Sign(ctx context.Context, result *txbuilder.Result) (*signer.Response, error) {
	resp, err := service.signer.SignPSBT(ctx, signer.Request{
		PSBT:       result.PSBT,
		Directives: result.Directives,
	})
	if err != nil {
		if errors.Is(err, signer.ErrCanceled) {
			service.log.Info("signing canceled")
		}

		return nil, errors.Join(ErrPayments, err)
	}

	return resp, nil
}
