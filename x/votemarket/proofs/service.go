// Package proofs assembles storage-proof bundles for gauge-controller
// state and encodes them into the byte payloads the on-chain oracle
// verifies. Assembly is a fixed pipeline per request: pin the block
// header, prove the controller account together with the gauge's weight
// slot, prove the voter's slope slots when a user is given, then
// cross-check every endpoint echo before handing the bundle out.
package proofs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stake-dao/votemarket-relay/x/votemarket/l1"
	"github.com/stake-dao/votemarket-relay/x/votemarket/protocol"
)

// Builder is the proving surface consumed by the HTTP layer and the
// backfill runner.
type Builder interface {
	BuildProofBundle(ctx context.Context, req Request) (*Bundle, error)
	BuildSubmission(ctx context.Context, req Request) (*Submission, error)
	Protocols() []protocol.Layout
}

// Service builds proof bundles against a registry of controller
// layouts and an L1 source. It holds no per-request state: every build
// runs an independent assembler, so concurrent calls are safe.
type Service struct {
	registry *protocol.Registry
	src      l1.Source
	log      zerolog.Logger
	metrics  *Metrics
}

var _ Builder = (*Service)(nil)

type Option func(*Service)

// WithMetrics attaches a metrics recorder to the service.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(registry *protocol.Registry, src l1.Source, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		src:      src,
		log:      logger.With().Str("component", "proofs").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildProofBundle assembles and cross-checks one bundle. The returned
// error carries a stage reason retrievable with FailureReason when the
// failure happened inside assembly.
func (s *Service) BuildProofBundle(ctx context.Context, req Request) (*Bundle, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		s.metrics.RecordBuild(req.Protocol, "invalid_request", time.Since(start))
		return nil, err
	}
	layout, err := s.registry.Get(req.Protocol)
	if err != nil {
		s.metrics.RecordBuild(req.Protocol, "unknown_protocol", time.Since(start))
		return nil, fmt.Errorf("build proof bundle: %w", err)
	}

	b, err := newAssembler(req, layout, s.src, s.log).run(ctx)
	if err != nil {
		reason := FailureReason(err)
		s.log.Error().Err(err).
			Str("request", req.String()).
			Str("reason", reason).
			Msg("proof bundle failed")
		s.metrics.RecordBuild(req.Protocol, reason, time.Since(start))
		return nil, err
	}

	s.log.Info().
		Str("request", req.String()).
		Uint64("epoch", b.Epoch).
		Int("account_nodes", len(b.AccountProof)).
		Int("user_proofs", len(b.UserProofs)).
		Dur("elapsed", time.Since(start)).
		Msg("proof bundle built")
	s.metrics.RecordBuild(req.Protocol, "ok", time.Since(start))
	return b, nil
}

// BuildSubmission assembles a bundle and encodes it into oracle
// payloads in one call.
func (s *Service) BuildSubmission(ctx context.Context, req Request) (*Submission, error) {
	b, err := s.BuildProofBundle(ctx, req)
	if err != nil {
		return nil, err
	}
	sub, err := EncodeForSubmission(b)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordSubmissionNodes(sub.NodeCount())
	return sub, nil
}

// Protocols lists the controller layouts the service can prove.
func (s *Service) Protocols() []protocol.Layout {
	return s.registry.All()
}
