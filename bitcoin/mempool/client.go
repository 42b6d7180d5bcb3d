// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package mempool

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/BoostyLabs/ordpsbt/bitcoin"
	"github.com/BoostyLabs/ordpsbt/bitcoin/networks"
)

const (
	// DefaultBaseURL defines public mempool.space explorer.
	DefaultBaseURL = "https://mempool.space"
	// DefaultTimeout defines default http request timeout.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody defines how many bytes of failed response body get into the error.
	maxErrorBody = 1024
)

var (
	// ErrUnexpectedStatus defines that explorer responded with non 2xx status.
	ErrUnexpectedStatus = errors.New("mempool: unexpected status")
	// ErrInvalidResponse defines that explorer response could not be decoded.
	ErrInvalidResponse = errors.New("mempool: invalid response")
)

// Config defines configurable values of the explorer client.
type Config struct {
	BaseURL string        `long:"explorer-url" env:"ORDPSBT_EXPLORER_URL" description:"mempool.space compatible explorer base url" default:"https://mempool.space"`
	Timeout time.Duration `long:"explorer-timeout" description:"explorer request timeout" default:"30s"`
}

// utxoResponse describes single unspent output returned by explorer.
type utxoResponse struct {
	TxID   string `json:"txid"`
	Vout   uint32 `json:"vout"`
	Status struct {
		Confirmed   bool   `json:"confirmed"`
		BlockHeight uint64 `json:"block_height"`
		BlockHash   string `json:"block_hash"`
		BlockTime   int64  `json:"block_time"`
	} `json:"status"`
	Value uint64 `json:"value"`
}

// Client is a mempool.space REST API client for address unspent outputs.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient is a constructor for Client.
func NewClient(config Config, log *zap.Logger) *Client {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// ListUnspent returns unspent outputs of the address in explorer order.
func (client *Client) ListUnspent(ctx context.Context, params *networks.Params, address string) ([]bitcoin.UTXO, error) {
	endpoint := client.baseURL + params.ExplorerPath + "/api/address/" + url.PathEscape(address) + "/utxo"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "mempool: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "mempool: get %s", endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		client.log.Warn("explorer request failed",
			zap.String("address", address),
			zap.Int("status", resp.StatusCode))

		return nil, errors.Wrapf(ErrUnexpectedStatus, "HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var outputs []utxoResponse
	if err = json.NewDecoder(resp.Body).Decode(&outputs); err != nil {
		return nil, errors.Wrapf(ErrInvalidResponse, "decode: %v", err)
	}

	utxos := make([]bitcoin.UTXO, 0, len(outputs))
	for _, output := range outputs {
		if _, err = (bitcoin.OutPoint{TxHash: output.TxID, Index: output.Vout}).Hash(); err != nil {
			return nil, errors.Wrapf(ErrInvalidResponse, "utxo %s:%d: %v", output.TxID, output.Vout, err)
		}

		utxos = append(utxos, bitcoin.UTXO{
			TxHash:    output.TxID,
			Index:     output.Vout,
			Amount:    new(big.Int).SetUint64(output.Value),
			Confirmed: output.Status.Confirmed,
			Status: bitcoin.UTXOStatus{
				BlockHeight: output.Status.BlockHeight,
				BlockHash:   output.Status.BlockHash,
				BlockTime:   output.Status.BlockTime,
			},
		})
	}

	client.log.Debug("unspent outputs fetched",
		zap.String("network", params.Network.String()),
		zap.String("address", address),
		zap.Int("count", len(utxos)))

	return utxos, nil
}
