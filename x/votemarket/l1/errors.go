package l1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrStateUnavailable marks state that is gone for good at the
	// queried block: pruned tries, unknown or not yet existing blocks.
	// Never retried.
	ErrStateUnavailable = errors.New("state unavailable")

	// ErrRPCTransient marks endpoint failures worth a bounded retry.
	ErrRPCTransient = errors.New("transient rpc failure")
)

// Messages seen from geth, erigon, reth and hosted providers when the
// queried block or its state cannot be served at all.
var stateUnavailableMessages = []string{
	"missing trie node",
	"header not found",
	"block not found",
	"unknown block",
	"state not available",
	"state is not available",
	"pruned",
	"pruning",
	"required historical state unavailable",
	"distance to target block exceeds maximum proof window",
}

// Messages that indicate endpoint congestion rather than a broken
// request.
var transientMessages = []string{
	"connection refused",
	"connection reset",
	"too many requests",
	"rate limit",
	"request timed out",
	"i/o timeout",
	"temporarily unavailable",
}

// classify sorts an endpoint failure into the retry taxonomy: transient
// trouble wraps ErrRPCTransient, unreachable state wraps
// ErrStateUnavailable, and anything unrecognized stays terminal so a new
// failure mode surfaces instead of being hammered with retries.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := strings.ToLower(err.Error())
	for _, s := range stateUnavailableMessages {
		if strings.Contains(msg, s) {
			return fmt.Errorf("%w: %v", ErrStateUnavailable, err)
		}
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 || httpErr.StatusCode >= 500 {
			return fmt.Errorf("%w: %v", ErrRPCTransient, err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrRPCTransient, err)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return fmt.Errorf("%w: %v", ErrRPCTransient, err)
	}
	for _, s := range transientMessages {
		if strings.Contains(msg, s) {
			return fmt.Errorf("%w: %v", ErrRPCTransient, err)
		}
	}

	return err
}
