package proofs

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Submission carries the byte payloads the on-chain oracle ingests,
// plus enough request context to journal and replay it.
//
// The payload layout is fixed by the verifier:
//
//	BlockData       raw block header RLP, byte for byte
//	ControllerProof RLP list of the controller's account proof nodes
//	PointData       RLP list of one node list proving the weight slot
//	AccountData     RLP list of node lists, one per user slot; absent
//	                when the request had no user
type Submission struct {
	Protocol    string          `json:"protocol"`
	Gauge       common.Address  `json:"gauge"`
	User        *common.Address `json:"user,omitempty"`
	Epoch       uint64          `json:"epoch"`
	BlockNumber uint64          `json:"block_number"`
	BlockHash   common.Hash     `json:"block_hash"`

	BlockData       ProofBytes `json:"block_data"`
	ControllerProof ProofBytes `json:"controller_proof"`
	PointData       ProofBytes `json:"point_data"`
	AccountData     ProofBytes `json:"account_data,omitempty"`
}

// EncodeForSubmission serializes a bundle into the oracle's byte
// layout. Trie nodes pass through verbatim: the verifier hashes each
// node as received, so re-encoding could break hash linkage. Each node
// is still required to parse as a single RLP list, which rejects
// endpoint garbage before it reaches the chain.
func EncodeForSubmission(b *Bundle) (*Submission, error) {
	if b == nil || b.Header == nil {
		return nil, errors.New("encode submission: nil bundle")
	}

	accountNodes, err := wrapNodes("account proof", b.AccountProof)
	if err != nil {
		return nil, err
	}
	controllerProof, err := rlp.EncodeToBytes(accountNodes)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	weightNodes, err := wrapNodes("weight proof", b.WeightProof.Nodes)
	if err != nil {
		return nil, err
	}
	pointData, err := rlp.EncodeToBytes([][]rlp.RawValue{weightNodes})
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	s := &Submission{
		Protocol:        b.Request.Protocol,
		Gauge:           b.Request.Gauge,
		User:            b.Request.User,
		Epoch:           b.Epoch,
		BlockNumber:     b.BlockNumber,
		BlockHash:       b.Header.Hash,
		BlockData:       ProofBytes(b.Header.Raw).Clone(),
		ControllerProof: controllerProof,
		PointData:       pointData,
	}

	if len(b.UserProofs) > 0 {
		lists := make([][]rlp.RawValue, len(b.UserProofs))
		for i, sp := range b.UserProofs {
			nodes, err := wrapNodes(fmt.Sprintf("user proof %d", i), sp.Nodes)
			if err != nil {
				return nil, err
			}
			lists[i] = nodes
		}
		accountData, err := rlp.EncodeToBytes(lists)
		if err != nil {
			return nil, fmt.Errorf("encode submission: %w", err)
		}
		s.AccountData = accountData
	}

	return s, nil
}

// NodeCount reports how many trie nodes the submission carries across
// all payloads.
func (s *Submission) NodeCount() int {
	total := countListItems(s.ControllerProof)
	total += countNestedNodes(s.PointData)
	total += countNestedNodes(s.AccountData)
	return total
}

// wrapNodes validates that every node is a single canonical RLP list
// and converts the slice for raw re-emission.
func wrapNodes(kind string, nodes [][]byte) ([]rlp.RawValue, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("encode submission: %s has no nodes", kind)
	}
	out := make([]rlp.RawValue, len(nodes))
	for i, n := range nodes {
		if _, rest, err := rlp.SplitList(n); err != nil || len(rest) != 0 {
			return nil, fmt.Errorf("encode submission: %s node %d is not a canonical trie node", kind, i)
		}
		out[i] = rlp.RawValue(n)
	}
	return out, nil
}

func countListItems(payload ProofBytes) int {
	if len(payload) == 0 {
		return 0
	}
	content, _, err := rlp.SplitList(payload)
	if err != nil {
		return 0
	}
	n, err := rlp.CountValues(content)
	if err != nil {
		return 0
	}
	return n
}

// countNestedNodes counts the items of each inner list of a list-of-
// lists payload.
func countNestedNodes(payload ProofBytes) int {
	if len(payload) == 0 {
		return 0
	}
	content, _, err := rlp.SplitList(payload)
	if err != nil {
		return 0
	}
	total := 0
	for len(content) > 0 {
		kind, inner, rest, err := rlp.Split(content)
		if err != nil {
			break
		}
		if kind == rlp.List {
			if n, err := rlp.CountValues(inner); err == nil {
				total += n
			}
		}
		content = rest
	}
	return total
}
