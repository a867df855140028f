// Package backfill keeps campaign gauges proven. A periodic sweep walks
// every campaign's missing epochs in order, resolves the block to prove
// against, builds the storage proofs and journals the encoded
// submissions for later on-chain ingestion.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stake-dao/votemarket-relay/x/votemarket/epoch"
	"github.com/stake-dao/votemarket-relay/x/votemarket/l1"
	"github.com/stake-dao/votemarket-relay/x/votemarket/proofs"
	"github.com/stake-dao/votemarket-relay/x/votemarket/protocol"
)

// Journal is the write side of the submission store.
type Journal interface {
	PutSubmission(sub *proofs.Submission) error
	ProcessedEpochs(protocol string, gauge common.Address, start uint64) (*epoch.Set, error)
}

// Runner sweeps campaigns on a fixed interval. The first sweep runs
// immediately on Start; later sweeps follow PollInterval.
type Runner struct {
	cfg      Config
	registry *protocol.Registry
	builder  proofs.Builder
	journal  Journal
	heads    l1.HeaderSource
	log      zerolog.Logger
	metrics  *Metrics

	// now returns the current time. Injectable for deterministic tests.
	now func() time.Time

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option configures a Runner.
type Option func(*Runner)

// WithMetrics attaches sweep metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner wires a sweep runner. The config should be validated by the
// caller; Start re-checks it before launching the loop.
func NewRunner(
	cfg Config,
	registry *protocol.Registry,
	builder proofs.Builder,
	journal Journal,
	heads l1.HeaderSource,
	logger zerolog.Logger,
	opts ...Option,
) *Runner {
	r := &Runner{
		cfg:      cfg,
		registry: registry,
		builder:  builder,
		journal:  journal,
		heads:    heads,
		log:      logger.With().Str("component", "backfill").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the sweep loop. Disabled configs and empty campaign
// lists return without starting anything.
func (r *Runner) Start(ctx context.Context) error {
	if !r.cfg.Enabled || len(r.cfg.Campaigns) == 0 {
		r.log.Info().Msg("backfill disabled")
		return nil
	}
	if err := r.cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.started = true

	go r.run(runCtx, r.done)
	return nil
}

// Stop halts the loop and waits for the in-flight sweep to drain, up to
// the context deadline.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = false
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.mu.Unlock()

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	if err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
		r.log.Error().Err(err).Msg("sweep failed")
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
				r.log.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}

// Sweep runs one pass over every campaign, bounded by Concurrency. It
// returns an error when any campaign failed; the others still complete.
func (r *Runner) Sweep(ctx context.Context) error {
	start := r.now()
	log := r.log.With().Str("sweep_id", uuid.NewString()).Logger()
	log.Info().Int("campaigns", len(r.cfg.Campaigns)).Msg("sweep started")

	concurrency := r.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	for _, campaign := range r.cfg.Campaigns {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(c Campaign) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := r.sweepCampaign(ctx, log, c); err != nil {
				failed.Add(1)
				log.Error().Err(err).Str("campaign", c.String()).Msg("campaign sweep failed")
			}
		}(campaign)
	}
	wg.Wait()

	elapsed := r.now().Sub(start)
	result := "ok"
	switch {
	case ctx.Err() != nil:
		result = "cancelled"
	case failed.Load() > 0:
		result = "partial"
	}
	r.metrics.RecordSweep(result, elapsed)
	log.Info().
		Dur("elapsed", elapsed).
		Int64("failed", failed.Load()).
		Str("result", result).
		Msg("sweep finished")

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d campaigns failed", n, len(r.cfg.Campaigns))
	}
	return ctx.Err()
}

// sweepCampaign fills the campaign's missing epochs oldest-first, up to
// CatchUpLimit per sweep. A failure leaves the remaining epochs for the
// next sweep; the sequential walk keeps the journal gap-free.
func (r *Runner) sweepCampaign(ctx context.Context, log zerolog.Logger, c Campaign) error {
	layout, err := r.registry.Get(c.Protocol)
	if err != nil {
		return err
	}
	gauge := c.GaugeAddress()

	processed, err := r.journal.ProcessedEpochs(layout.Name, gauge, c.StartEpoch)
	if err != nil {
		return fmt.Errorf("campaign %s: %w", c, err)
	}

	now := uint64(r.now().Unix())
	missing := processed.Missing(now)
	r.metrics.RecordEpochLag(layout.Name, c.Gauge, len(missing))
	if len(missing) == 0 {
		return nil
	}
	if len(missing) > r.cfg.CatchUpLimit {
		missing = missing[:r.cfg.CatchUpLimit]
	}

	clog := log.With().Str("campaign", c.String()).Logger()
	clog.Debug().Uints64("epochs", missing).Msg("filling epochs")

	for _, target := range missing {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := epoch.CheckSequential(processed, target, now); err != nil {
			// the current epoch boundary moved under us; resume next sweep
			if errors.Is(err, epoch.ErrEpochInFuture) {
				return nil
			}
			return fmt.Errorf("campaign %s: %w", c, err)
		}

		blockNumber, err := r.resolveBlock(ctx, layout, target)
		if err != nil {
			return fmt.Errorf("campaign %s epoch %d: %w", c, target, err)
		}
		if err := r.fillEpoch(ctx, clog, layout, c, target, blockNumber); err != nil {
			return err
		}
		processed.Add(target)
	}
	return nil
}

// resolveBlock picks the block height to prove the epoch at.
func (r *Runner) resolveBlock(ctx context.Context, layout protocol.Layout, target uint64) (uint64, error) {
	switch r.cfg.BlockMode {
	case BlockModeEpochEnd:
		h, err := l1.FindBlockByTime(ctx, r.heads, target+epoch.Week-1, layout.CreationBlock)
		if err != nil {
			return 0, err
		}
		return h.Number, nil
	default:
		head, err := r.heads.Latest(ctx)
		if err != nil {
			return 0, err
		}
		if head <= r.cfg.Confirmations {
			return 0, fmt.Errorf("head %d inside confirmation margin %d", head, r.cfg.Confirmations)
		}
		return head - r.cfg.Confirmations, nil
	}
}

// fillEpoch builds and journals the gauge submission plus one per
// campaign user. The store keys overwrite cleanly, so a partial fill is
// safe to retry.
func (r *Runner) fillEpoch(
	ctx context.Context,
	log zerolog.Logger,
	layout protocol.Layout,
	c Campaign,
	target, blockNumber uint64,
) error {
	req := proofs.Request{
		Protocol:    layout.Name,
		Gauge:       c.GaugeAddress(),
		Epoch:       target,
		BlockNumber: blockNumber,
	}
	sub, err := r.builder.BuildSubmission(ctx, req)
	if err != nil {
		return fmt.Errorf("campaign %s epoch %d: %w", c, target, err)
	}
	if err := r.journal.PutSubmission(sub); err != nil {
		return fmt.Errorf("campaign %s epoch %d: journal: %w", c, target, err)
	}
	r.metrics.RecordSubmission(layout.Name, "gauge")

	for _, user := range c.UserAddresses() {
		if err := ctx.Err(); err != nil {
			return err
		}
		u := user
		userReq := req
		userReq.User = &u

		userSub, err := r.builder.BuildSubmission(ctx, userReq)
		if err != nil {
			return fmt.Errorf("campaign %s epoch %d user %s: %w", c, target, u.Hex(), err)
		}
		if err := r.journal.PutSubmission(userSub); err != nil {
			return fmt.Errorf("campaign %s epoch %d user %s: journal: %w", c, target, u.Hex(), err)
		}
		r.metrics.RecordSubmission(layout.Name, "user")
	}

	log.Info().
		Uint64("epoch", target).
		Uint64("block", blockNumber).
		Int("users", len(c.Users)).
		Msg("epoch filled")
	return nil
}
