// Package http exposes the proof service over REST: on-demand bundle
// building, journal lookups, protocol listing and verifier calldata.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	apicommon "github.com/stake-dao/votemarket-relay/server/api"
	"github.com/stake-dao/votemarket-relay/x/votemarket/epoch"
	"github.com/stake-dao/votemarket-relay/x/votemarket/oracle"
	"github.com/stake-dao/votemarket-relay/x/votemarket/proofs"
	"github.com/stake-dao/votemarket-relay/x/votemarket/protocol"
	"github.com/stake-dao/votemarket-relay/x/votemarket/store"
)

// Journal is the read side of the submission store.
type Journal interface {
	GetSubmission(protocol string, gauge common.Address, epoch uint64) (*store.Record, bool, error)
	GetUserSubmission(protocol string, gauge, user common.Address, epoch uint64) (*store.Record, bool, error)
	ListSubmissions(protocol string, gauge common.Address) ([]*store.Record, error)
}

type Handler struct {
	builder  proofs.Builder
	journal  Journal
	verifier *oracle.Binding
	log      zerolog.Logger
	now      func() time.Time
}

// NewHandler wires the proof surface. verifier may be nil when no
// verifier contract is configured; the calldata route then responds
// 503.
func NewHandler(builder proofs.Builder, journal Journal, verifier *oracle.Binding, log zerolog.Logger) *Handler {
	return &Handler{
		builder:  builder,
		journal:  journal,
		verifier: verifier,
		log:      log.With().Str("component", "proofs-http").Logger(),
		now:      time.Now,
	}
}

// handleBuild assembles and encodes one submission on demand.
func (h *Handler) handleBuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req buildReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_json", "failed to decode request", nil)
		return
	}
	proofReq, err := req.toRequest()
	if err != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	sub, err := h.builder.BuildSubmission(r.Context(), proofReq)
	if err != nil {
		h.writeBuildError(w, r, err)
		return
	}

	apicommon.WriteJSON(w, http.StatusOK, sub)
}

// handleProofByKey serves a journaled submission.
func (h *Handler) handleProofByKey(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	protocolName := strings.TrimSpace(vars["protocol"])
	gaugeStr := strings.TrimSpace(vars["gauge"])
	epochStr := strings.TrimSpace(vars["epoch"])
	if protocolName == "" || gaugeStr == "" || epochStr == "" {
		apicommon.WriteError(w, r, http.StatusBadRequest, "missing_path_param",
			"provide /v1/proofs/{protocol}/{gauge}/{epoch}", nil)
		return
	}
	if !common.IsHexAddress(gaugeStr) {
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_gauge", "expect a 20-byte hex address", nil)
		return
	}
	gauge := common.HexToAddress(gaugeStr)

	ep, err := strconv.ParseUint(epochStr, 10, 64)
	if err != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_epoch", "expect a unix timestamp", nil)
		return
	}

	var (
		rec *store.Record
		ok  bool
	)
	if userStr := strings.TrimSpace(r.URL.Query().Get("user")); userStr != "" {
		if !common.IsHexAddress(userStr) {
			apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_user", "expect a 20-byte hex address", nil)
			return
		}
		rec, ok, err = h.journal.GetUserSubmission(protocolName, gauge, common.HexToAddress(userStr), ep)
	} else {
		rec, ok, err = h.journal.GetSubmission(protocolName, gauge, ep)
	}
	if err != nil {
		apicommon.WriteError(w, r, http.StatusInternalServerError, "journal_error", err.Error(), nil)
		return
	}
	if !ok {
		apicommon.WriteError(w, r, http.StatusNotFound, "not_found", "no journaled submission for this key", nil)
		return
	}

	apicommon.WriteJSON(w, http.StatusOK, rec)
}

// handleProofsByGauge lists every journaled submission for a gauge, in
// epoch order.
func (h *Handler) handleProofsByGauge(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	protocolName := strings.TrimSpace(vars["protocol"])
	gaugeStr := strings.TrimSpace(vars["gauge"])
	if protocolName == "" || gaugeStr == "" {
		apicommon.WriteError(w, r, http.StatusBadRequest, "missing_path_param",
			"provide /v1/proofs/{protocol}/{gauge}", nil)
		return
	}
	if !common.IsHexAddress(gaugeStr) {
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_gauge", "expect a 20-byte hex address", nil)
		return
	}
	gauge := common.HexToAddress(gaugeStr)

	recs, err := h.journal.ListSubmissions(protocolName, gauge)
	if err != nil {
		apicommon.WriteError(w, r, http.StatusInternalServerError, "journal_error", err.Error(), nil)
		return
	}

	apicommon.WriteJSON(w, http.StatusOK, map[string]any{
		"protocol":    protocolName,
		"gauge":       gauge,
		"count":       len(recs),
		"submissions": recs,
	})
}

// handleProtocols lists the supported controller layouts.
func (h *Handler) handleProtocols(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	layouts := h.builder.Protocols()
	apicommon.WriteJSON(w, http.StatusOK, map[string]any{
		"protocols": layouts,
		"count":     len(layouts),
	})
}

// handleCurrentEpoch reports the voting period the server clock is in.
func (h *Handler) handleCurrentEpoch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	now := uint64(h.now().Unix())
	apicommon.WriteJSON(w, http.StatusOK, map[string]any{
		"epoch":        epoch.Canonical(now),
		"week_seconds": epoch.Week,
		"now":          now,
	})
}

// handleCalldata builds a submission and packs the verifier ingestion
// calls for it.
func (h *Handler) handleCalldata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	if h.verifier == nil {
		apicommon.WriteError(w, r, http.StatusServiceUnavailable, "verifier_unavailable",
			"no verifier contract configured", nil)
		return
	}

	var req buildReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_json", "failed to decode request", nil)
		return
	}
	proofReq, err := req.toRequest()
	if err != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	sub, err := h.builder.BuildSubmission(r.Context(), proofReq)
	if err != nil {
		h.writeBuildError(w, r, err)
		return
	}

	calls := map[string]hexutil.Bytes{}
	blockData, err := h.verifier.SetBlockDataCalldata(sub)
	if err != nil {
		apicommon.WriteError(w, r, http.StatusInternalServerError, "encode_failed", err.Error(), nil)
		return
	}
	calls["set_block_data"] = blockData

	pointData, err := h.verifier.SetPointDataCalldata(sub)
	if err != nil {
		apicommon.WriteError(w, r, http.StatusInternalServerError, "encode_failed", err.Error(), nil)
		return
	}
	calls["set_point_data"] = pointData

	if sub.User != nil {
		accountData, err := h.verifier.SetAccountDataCalldata(sub)
		if err != nil {
			apicommon.WriteError(w, r, http.StatusInternalServerError, "encode_failed", err.Error(), nil)
			return
		}
		calls["set_account_data"] = accountData
	}

	apicommon.WriteJSON(w, http.StatusOK, map[string]any{
		"verifier":   h.verifier.Address(),
		"submission": sub,
		"calls":      calls,
	})
}

// writeBuildError maps build failures onto API status codes: requester
// mistakes are 4xx, endpoint trouble is 5xx.
func (h *Handler) writeBuildError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, protocol.ErrUnknownProtocol) {
		apicommon.WriteError(w, r, http.StatusNotFound, "unknown_protocol", err.Error(), nil)
		return
	}

	switch proofs.FailureReason(err) {
	case proofs.ReasonEpochInFuture:
		apicommon.WriteError(w, r, http.StatusUnprocessableEntity, proofs.ReasonEpochInFuture, err.Error(), nil)
	case proofs.ReasonInvalidLayout:
		apicommon.WriteError(w, r, http.StatusBadRequest, proofs.ReasonInvalidLayout, err.Error(), nil)
	case proofs.ReasonAccountProofUnavailable, proofs.ReasonStorageProofUnavailable, proofs.ReasonCancelled:
		apicommon.WriteError(w, r, http.StatusServiceUnavailable, proofs.FailureReason(err), err.Error(), nil)
	case proofs.ReasonHeaderInvalid, proofs.ReasonProofKeyMismatch:
		apicommon.WriteError(w, r, http.StatusBadGateway, proofs.FailureReason(err), err.Error(), nil)
	default:
		apicommon.WriteError(w, r, http.StatusBadRequest, "build_failed", err.Error(), nil)
	}
}
