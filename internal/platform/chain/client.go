// Package chain wraps the go-ethereum RPC client with the three queries the
// sentinel needs: chain head, per-address transaction counts, and OrderFilled
// logs from the CTF exchange contract.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/polysentinel/sentinel/internal/domain"
)

// orderFilledABIJSON is the single event the sentinel listens for. The
// exchange emits one OrderFilled per matched side.
const orderFilledABIJSON = `[{"anonymous":false,"inputs":[{"indexed":true,"internalType":"bytes32","name":"orderHash","type":"bytes32"},{"indexed":true,"internalType":"address","name":"maker","type":"address"},{"indexed":true,"internalType":"address","name":"taker","type":"address"},{"indexed":false,"internalType":"uint256","name":"makerAssetId","type":"uint256"},{"indexed":false,"internalType":"uint256","name":"takerAssetId","type":"uint256"},{"indexed":false,"internalType":"uint256","name":"makerAmountFilled","type":"uint256"},{"indexed":false,"internalType":"uint256","name":"takerAmountFilled","type":"uint256"},{"indexed":false,"internalType":"uint256","name":"fee","type":"uint256"}],"name":"OrderFilled","type":"event"}]`

var (
	exchangeABI      abi.ABI
	orderFilledTopic common.Hash
)

func init() {
	parsed, err := abi.JSON(strings.NewReader(orderFilledABIJSON))
	if err != nil {
		panic("failed to parse CTF exchange ABI: " + err.Error())
	}
	exchangeABI = parsed
	orderFilledTopic = parsed.Events["OrderFilled"].ID
}

// Config holds connection parameters for the chain client.
type Config struct {
	RPCURL          string
	ExchangeAddress string
	RequestTimeout  time.Duration
}

// Client is the Polygon RPC client used by the scan loop and the freshness
// classifier.
type Client struct {
	eth      *ethclient.Client
	exchange common.Address
	timeout  time.Duration
	logger   *slog.Logger
}

// Dial connects to the RPC endpoint and verifies connectivity with a head
// query. A failure here is fatal for startup: the sentinel must not begin
// scanning without a working upstream.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", cfg.RPCURL, err)
	}

	c := &Client{
		eth:      eth,
		exchange: common.HexToAddress(cfg.ExchangeAddress),
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "chain")),
	}

	head, err := c.BlockNumber(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("chain: connectivity probe: %w", err)
	}
	c.logger.Info("connected to chain rpc",
		slog.String("rpc", cfg.RPCURL),
		slog.Uint64("head", head),
	)

	return c, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// BlockNumber returns the current chain head.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	head, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("chain: block number: %w", err)
	}
	return head, nil
}

// TransactionCount returns the total number of transactions ever sent by the
// wallet (its latest nonce). Used by the freshness classifier.
func (c *Client) TransactionCount(ctx context.Context, wallet string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	count, err := c.eth.NonceAt(ctx, common.HexToAddress(wallet), nil)
	if err != nil {
		return 0, fmt.Errorf("chain: nonce for %s: %w", wallet, err)
	}
	return count, nil
}

// FilterTrades fetches the OrderFilled logs emitted by the exchange contract
// in the inclusive block range [from, to] and decodes them into TradeEvents
// in log order. The caller bounds the range; public providers reject wide
// queries.
func (c *Client) FilterTrades(ctx context.Context, from, to uint64) ([]domain.TradeEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{c.exchange},
		Topics:    [][]common.Hash{{orderFilledTopic}},
	}

	logs, err := c.eth.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("chain: filter logs [%d,%d]: %w", from, to, err)
	}

	events := make([]domain.TradeEvent, 0, len(logs))
	for _, lg := range logs {
		ev, err := decodeOrderFilled(lg.Topics, lg.Data)
		if err != nil {
			c.logger.Warn("skipping undecodable log",
				slog.String("tx_hash", lg.TxHash.Hex()),
				slog.Uint64("block", lg.BlockNumber),
				slog.String("error", err.Error()),
			)
			continue
		}
		ev.TxHash = lg.TxHash.Hex()
		ev.BlockNumber = lg.BlockNumber
		events = append(events, ev)
	}

	return events, nil
}

// decodeOrderFilled unpacks a single OrderFilled log. maker and taker arrive
// as indexed topics; asset IDs and amounts are in the data payload.
func decodeOrderFilled(topics []common.Hash, data []byte) (domain.TradeEvent, error) {
	if len(topics) < 4 {
		return domain.TradeEvent{}, fmt.Errorf("expected 4 topics, got %d", len(topics))
	}

	var payload struct {
		MakerAssetId      *big.Int
		TakerAssetId      *big.Int
		MakerAmountFilled *big.Int
		TakerAmountFilled *big.Int
		Fee               *big.Int
	}
	if err := exchangeABI.UnpackIntoInterface(&payload, "OrderFilled", data); err != nil {
		return domain.TradeEvent{}, fmt.Errorf("unpack OrderFilled: %w", err)
	}

	if !payload.MakerAmountFilled.IsInt64() || !payload.TakerAmountFilled.IsInt64() {
		return domain.TradeEvent{}, fmt.Errorf("fill amount out of int64 range")
	}

	return domain.TradeEvent{
		Maker:             strings.ToLower(common.HexToAddress(topics[2].Hex()).Hex()),
		Taker:             strings.ToLower(common.HexToAddress(topics[3].Hex()).Hex()),
		MakerAssetID:      payload.MakerAssetId.String(),
		TakerAssetID:      payload.TakerAssetId.String(),
		MakerAmountFilled: payload.MakerAmountFilled.Int64(),
		TakerAmountFilled: payload.TakerAmountFilled.Int64(),
	}, nil
}
