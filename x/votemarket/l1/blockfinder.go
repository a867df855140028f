package l1

import (
	"context"
	"fmt"

	"github.com/stake-dao/votemarket-relay/x/votemarket/header"
)

// FindBlockByTime returns the highest block whose timestamp is at or
// below target, bisecting [lowBound, head]. lowBound is typically the
// controller's creation block, which keeps the search window small.
func FindBlockByTime(ctx context.Context, src HeaderSource, target uint64, lowBound uint64) (*header.Header, error) {
	head, err := src.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if lowBound > head {
		return nil, fmt.Errorf("%w: lower bound %d is past head %d", ErrStateUnavailable, lowBound, head)
	}

	headHeader, err := src.HeaderByNumber(ctx, head)
	if err != nil {
		return nil, err
	}
	if headHeader.Time <= target {
		return headHeader, nil
	}

	low, err := src.HeaderByNumber(ctx, lowBound)
	if err != nil {
		return nil, err
	}
	if low.Time > target {
		return nil, fmt.Errorf("%w: no block at or below timestamp %d above block %d", ErrStateUnavailable, target, lowBound)
	}

	// invariant: time(lo) <= target < time(hi)
	lo, hi := lowBound, head
	best := low
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		h, err := src.HeaderByNumber(ctx, mid)
		if err != nil {
			return nil, err
		}
		if h.Time <= target {
			lo, best = mid, h
		} else {
			hi = mid
		}
	}
	return best, nil
}
