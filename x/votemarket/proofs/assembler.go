package proofs

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/stake-dao/votemarket-relay/x/votemarket/epoch"
	"github.com/stake-dao/votemarket-relay/x/votemarket/header"
	"github.com/stake-dao/votemarket-relay/x/votemarket/l1"
	"github.com/stake-dao/votemarket-relay/x/votemarket/protocol"
	"github.com/stake-dao/votemarket-relay/x/votemarket/slots"
)

// assembler drives a single request through fetch, echo checks and
// bundle construction. One instance per request; never reused. The
// checks are sanity cross-checks against endpoint confusion (wrong
// block, reordered keys, a proof for the wrong account), not a local
// re-verification of the trie: that stays with the on-chain verifier.
type assembler struct {
	req    Request
	layout protocol.Layout
	src    l1.Source
	log    zerolog.Logger

	state  State
	reason string

	header    *header.Header
	account   *l1.AccountResult
	storage   *l1.AccountResult
	weightKey common.Hash
	userKeys  []common.Hash
}

func newAssembler(req Request, layout protocol.Layout, src l1.Source, log zerolog.Logger) *assembler {
	return &assembler{
		req:    req,
		layout: layout,
		src:    src,
		log:    log,
		state:  StateInitialized,
	}
}

func (a *assembler) run(ctx context.Context) (*Bundle, error) {
	steps := []func(context.Context) error{
		a.fetchHeader,
		a.fetchAccountProof,
		a.fetchStorageProofs,
		a.crossCheck,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, a.fail(ReasonCancelled, fmt.Errorf("%w: %v", ErrCancelled, err))
		}
		if err := step(ctx); err != nil {
			return nil, err
		}
	}
	a.state = StateComplete
	return a.bundle(), nil
}

// fetchHeader pins the block the whole bundle is anchored to. The
// endpoint must echo the requested number, the raw encoding must hash
// to the reported hash, and the target epoch must already have started
// at the block's timestamp.
func (a *assembler) fetchHeader(ctx context.Context) error {
	h, err := a.src.HeaderByNumber(ctx, a.req.BlockNumber)
	if err != nil {
		return a.fail(fetchReason(err, ReasonHeaderInvalid), err)
	}
	if h.Number != a.req.BlockNumber {
		return a.fail(ReasonHeaderInvalid, fmt.Errorf(
			"%w: endpoint returned block %d for request %d", ErrProofKeyMismatch, h.Number, a.req.BlockNumber))
	}
	if err := h.Validate(h.Hash); err != nil {
		return a.fail(ReasonHeaderInvalid, err)
	}
	if target := epoch.Canonical(a.req.Epoch); target > epoch.Canonical(h.Time) {
		return a.fail(ReasonEpochInFuture, fmt.Errorf(
			"%w: epoch %d has not started at block %d (time %d)", epoch.ErrEpochInFuture, target, h.Number, h.Time))
	}

	a.header = h
	a.state = StateHeaderFetched
	a.log.Debug().Uint64("block", h.Number).Str("hash", h.Hash.Hex()).Msg("header pinned")
	return nil
}

// fetchAccountProof retrieves the controller's account proof together
// with the gauge's weight slot in a single call, so both are guaranteed
// to come from the same state.
func (a *assembler) fetchAccountProof(ctx context.Context) error {
	weightKey, err := slots.WeightKey(a.layout, a.req.Gauge, epoch.Canonical(a.req.Epoch))
	if err != nil {
		return a.fail(ReasonInvalidLayout, err)
	}
	a.weightKey = weightKey

	res, err := a.src.GetProof(ctx, a.layout.Controller, []common.Hash{weightKey}, a.req.BlockNumber)
	if err != nil {
		return a.fail(fetchReason(err, ReasonAccountProofUnavailable), err)
	}
	if len(res.AccountProof) == 0 {
		return a.fail(ReasonAccountProofUnavailable, fmt.Errorf(
			"%w: empty account proof for %s at block %d", l1.ErrStateUnavailable, a.layout.Controller.Hex(), a.req.BlockNumber))
	}

	a.account = res
	a.state = StateAccountProofFetched
	a.log.Debug().Str("weight_key", weightKey.Hex()).Int("account_nodes", len(res.AccountProof)).Msg("account proof fetched")
	return nil
}

// fetchStorageProofs retrieves the voter's slope slots. Skipped when
// the request has no user.
func (a *assembler) fetchStorageProofs(ctx context.Context) error {
	if a.req.User == nil {
		a.state = StateStorageProofsFetched
		return nil
	}

	keys, err := slots.UserKeys(a.layout, *a.req.User, a.req.Gauge)
	if err != nil {
		return a.fail(ReasonInvalidLayout, err)
	}
	a.userKeys = keys

	res, err := a.src.GetProof(ctx, a.layout.Controller, keys, a.req.BlockNumber)
	if err != nil {
		return a.fail(fetchReason(err, ReasonStorageProofUnavailable), err)
	}

	a.storage = res
	a.state = StateStorageProofsFetched
	a.log.Debug().Int("user_keys", len(keys)).Msg("storage proofs fetched")
	return nil
}

// crossCheck verifies the endpoint echoed exactly what was asked:
// controller address, every storage key in request order, and the same
// storage root across both proof calls.
func (a *assembler) crossCheck(context.Context) error {
	if a.account.Address != a.layout.Controller {
		return a.fail(ReasonProofKeyMismatch, fmt.Errorf(
			"%w: account proof is for %s, expected controller %s",
			ErrProofKeyMismatch, a.account.Address.Hex(), a.layout.Controller.Hex()))
	}
	if n := len(a.account.StorageProof); n != 1 {
		return a.fail(ReasonProofKeyMismatch, fmt.Errorf(
			"%w: expected 1 weight storage proof, got %d", ErrProofKeyMismatch, n))
	}
	if got := a.account.StorageProof[0].Key; got != a.weightKey {
		return a.fail(ReasonProofKeyMismatch, fmt.Errorf(
			"%w: weight proof key %s, requested %s", ErrProofKeyMismatch, got.Hex(), a.weightKey.Hex()))
	}
	if len(a.account.StorageProof[0].Proof) == 0 {
		return a.fail(ReasonStorageProofUnavailable, fmt.Errorf(
			"%w: empty weight proof for key %s", l1.ErrStateUnavailable, a.weightKey.Hex()))
	}

	if a.storage != nil {
		if a.storage.Address != a.layout.Controller {
			return a.fail(ReasonProofKeyMismatch, fmt.Errorf(
				"%w: storage proof is for %s, expected controller %s",
				ErrProofKeyMismatch, a.storage.Address.Hex(), a.layout.Controller.Hex()))
		}
		if a.storage.StorageHash != a.account.StorageHash {
			return a.fail(ReasonProofKeyMismatch, fmt.Errorf(
				"%w: storage root changed between proof calls (%s vs %s)",
				ErrProofKeyMismatch, a.storage.StorageHash.Hex(), a.account.StorageHash.Hex()))
		}
		if got, want := len(a.storage.StorageProof), len(a.userKeys); got != want {
			return a.fail(ReasonProofKeyMismatch, fmt.Errorf(
				"%w: expected %d user storage proofs, got %d", ErrProofKeyMismatch, want, got))
		}
		for i, sp := range a.storage.StorageProof {
			if sp.Key != a.userKeys[i] {
				return a.fail(ReasonProofKeyMismatch, fmt.Errorf(
					"%w: user proof %d has key %s, requested %s",
					ErrProofKeyMismatch, i, sp.Key.Hex(), a.userKeys[i].Hex()))
			}
			if len(sp.Proof) == 0 {
				return a.fail(ReasonStorageProofUnavailable, fmt.Errorf(
					"%w: empty user proof for key %s", l1.ErrStateUnavailable, sp.Key.Hex()))
			}
		}
	}

	a.state = StateCrossChecked
	return nil
}

func (a *assembler) bundle() *Bundle {
	b := &Bundle{
		Request:      a.req,
		Epoch:        epoch.Canonical(a.req.Epoch),
		BlockNumber:  a.req.BlockNumber,
		Header:       a.header,
		AccountProof: a.account.AccountProof,
		StorageHash:  a.account.StorageHash,
		WeightProof:  toStorageProof(a.account.StorageProof[0]),
	}
	if a.storage != nil {
		b.UserProofs = make([]StorageProof, len(a.storage.StorageProof))
		for i, sp := range a.storage.StorageProof {
			b.UserProofs[i] = toStorageProof(sp)
		}
	}
	return b
}

func (a *assembler) fail(reason string, err error) error {
	a.state = StateFailed
	a.reason = reason
	return &FailureError{Reason: reason, Err: err}
}

// fetchReason maps a fetch error to its stage reason, overriding with
// cancellation when the caller's context died.
func fetchReason(err error, stage string) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrCancelled) {
		return ReasonCancelled
	}
	return stage
}

func toStorageProof(sp l1.StorageResult) StorageProof {
	return StorageProof{Key: sp.Key, Value: sp.Value, Nodes: sp.Proof}
}
