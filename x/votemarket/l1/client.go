// Package l1 reads Ethereum mainnet state for proof generation: block
// headers pinned to their reported hash, and EIP-1186 account/storage
// proofs. It is the only component in the proving path that performs
// network I/O.
package l1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/ethclient/gethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"

	"github.com/stake-dao/votemarket-relay/x/votemarket/header"
)

// Client talks JSON-RPC to one Ethereum endpoint. Safe for concurrent
// use; concurrent calls share the configured semaphore.
type Client struct {
	cfg     Config
	log     zerolog.Logger
	rpc     *rpc.Client
	eth     *ethclient.Client
	geth    *gethclient.Client
	sem     chan struct{}
	metrics *Metrics
}

var (
	_ HeaderSource = (*Client)(nil)
	_ ProofReader  = (*Client)(nil)
	_ Source       = (*Client)(nil)
)

// Option customizes a Client beyond its Config.
type Option func(*Client)

// WithMetrics attaches Prometheus collectors to the client.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Dial connects to the configured endpoint and, when a chain ID is
// configured, verifies the endpoint serves that chain.
func Dial(ctx context.Context, cfg Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rpcClient, err := rpc.DialContext(ctx, cfg.RPCEndpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RPCEndpoint, err)
	}

	c := &Client{
		cfg:  cfg,
		log:  logger.With().Str("component", "l1").Logger(),
		rpc:  rpcClient,
		eth:  ethclient.NewClient(rpcClient),
		geth: gethclient.New(rpcClient),
	}
	if cfg.MaxConcurrency > 0 {
		c.sem = make(chan struct{}, cfg.MaxConcurrency)
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.ChainID != 0 {
		chainID, err := c.eth.ChainID(ctx)
		if err != nil {
			rpcClient.Close()
			return nil, fmt.Errorf("query chain id: %w", classify(err))
		}
		if chainID.Uint64() != cfg.ChainID {
			rpcClient.Close()
			return nil, fmt.Errorf("endpoint serves chain %d, configured for %d", chainID.Uint64(), cfg.ChainID)
		}
	}

	c.log.Info().Str("endpoint", cfg.RPCEndpoint).Uint64("chain_id", cfg.ChainID).Msg("l1 client connected")
	return c, nil
}

func (c *Client) Close() {
	c.rpc.Close()
}

// HeaderByNumber fetches a block header and validates that re-encoding
// its fields reproduces the hash the endpoint reported.
func (c *Client) HeaderByNumber(ctx context.Context, number uint64) (*header.Header, error) {
	var raw json.RawMessage
	err := c.call(ctx, "eth_getBlockByNumber", func(ctx context.Context) error {
		return c.rpc.CallContext(ctx, &raw, "eth_getBlockByNumber", hexutil.EncodeUint64(number), false)
	})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: block %d not found", ErrStateUnavailable, number)
	}

	var fields types.Header
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: block %d: %v", header.ErrMalformedHeader, number, err)
	}
	var reported struct {
		Hash common.Hash `json:"hash"`
	}
	if err := json.Unmarshal(raw, &reported); err != nil {
		return nil, fmt.Errorf("%w: block %d: %v", header.ErrMalformedHeader, number, err)
	}

	return header.FromFields(&fields, reported.Hash)
}

// Latest returns the endpoint's current head height.
func (c *Client) Latest(ctx context.Context) (uint64, error) {
	var n uint64
	err := c.call(ctx, "eth_blockNumber", func(ctx context.Context) error {
		var callErr error
		n, callErr = c.eth.BlockNumber(ctx)
		return callErr
	})
	return n, err
}

// GetProof fetches an EIP-1186 proof for the account and storage keys at
// the given block.
func (c *Client) GetProof(ctx context.Context, account common.Address, keys []common.Hash, blockNumber uint64) (*AccountResult, error) {
	hexKeys := make([]string, len(keys))
	for i, k := range keys {
		hexKeys[i] = k.Hex()
	}

	var res *gethclient.AccountResult
	err := c.call(ctx, "eth_getProof", func(ctx context.Context) error {
		var callErr error
		res, callErr = c.geth.GetProof(ctx, account, hexKeys, new(big.Int).SetUint64(blockNumber))
		return callErr
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%w: empty proof response for %s at block %d", ErrStateUnavailable, account, blockNumber)
	}
	return convertAccountResult(res)
}

// call runs one RPC operation under the semaphore and the per-call
// timeout, retrying transient failures with capped exponential backoff.
// The method label only feeds logs and metrics.
func (c *Client) call(ctx context.Context, method string, fn func(context.Context) error) error {
	start := time.Now()
	err := c.dispatch(ctx, method, fn)
	c.metrics.RecordCall(method, callResult(err), time.Since(start))
	return err
}

func (c *Client) dispatch(ctx context.Context, method string, fn func(context.Context) error) error {
	if c.sem != nil {
		select {
		case c.sem <- struct{}{}:
			defer func() { <-c.sem }()
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var err error
	for attempt := 0; attempt < c.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.log.Warn().Err(err).Str("method", method).Int("attempt", attempt+1).Dur("backoff", delay).Msg("retrying rpc call")
			c.metrics.RecordRetry()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
		callErr := fn(callCtx)
		cancel()

		if callErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(callErr, context.DeadlineExceeded) {
			// the per-call budget elapsed while the caller's context is
			// still live
			err = fmt.Errorf("%w: call exceeded %s", ErrRPCTransient, c.cfg.RequestTimeout)
		} else {
			err = classify(callErr)
		}
		if !errors.Is(err, ErrRPCTransient) {
			return err
		}
	}
	return err
}

func callResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, ErrRPCTransient):
		return "transient"
	default:
		return "terminal"
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.cfg.Retry.BackoffBase << (attempt - 1)
	if d > c.cfg.Retry.BackoffMax && c.cfg.Retry.BackoffMax > 0 {
		d = c.cfg.Retry.BackoffMax
	}
	return d
}
