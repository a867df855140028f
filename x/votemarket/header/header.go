// Package header decodes Ethereum block headers and pins them to their
// keccak hash. The on-chain verifier recomputes everything from raw
// bytes, so a header whose re-encoding does not reproduce the reported
// hash is rejected outright rather than patched up.
package header

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

const (
	// MinFields is the pre-London header field count.
	MinFields = 15
	// MaxFields covers every fork up to the Prague requests hash.
	MaxFields = 21
)

var (
	// ErrMalformedHeader is returned for bytes that do not parse as a
	// supported block header.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrHeaderHashMismatch is returned when a header's bytes do not
	// hash to the expected value.
	ErrHeaderHashMismatch = errors.New("header hash mismatch")
)

// Header is a decoded block header pinned to its canonical RLP bytes.
type Header struct {
	Hash       common.Hash
	ParentHash common.Hash
	StateRoot  common.Hash
	Number     uint64
	Time       uint64
	FieldCount int

	// Raw is the canonical header RLP; Hash is keccak256(Raw).
	Raw []byte
}

// Decode parses raw header RLP. Field counts between MinFields and
// MaxFields are accepted, so headers from any fork since Frontier decode
// without per-fork switches; anything outside that range, trailing
// bytes, or a field type mismatch fails with ErrMalformedHeader.
func Decode(raw []byte) (*Header, error) {
	content, rest, err := rlp.SplitList(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after header list", ErrMalformedHeader, len(rest))
	}
	fields, err := rlp.CountValues(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	if fields < MinFields || fields > MaxFields {
		return nil, fmt.Errorf("%w: unsupported field count %d", ErrMalformedHeader, fields)
	}

	var decoded types.Header
	if err := rlp.DecodeBytes(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	h := &Header{
		Hash:       crypto.Keccak256Hash(raw),
		ParentHash: decoded.ParentHash,
		StateRoot:  decoded.Root,
		Time:       decoded.Time,
		FieldCount: fields,
		Raw:        append([]byte(nil), raw...),
	}
	if decoded.Number != nil {
		h.Number = decoded.Number.Uint64()
	}
	return h, nil
}

// FromFields re-encodes a header received as JSON fields and checks the
// result against the hash the endpoint reported. A mismatch means the
// fields cannot reproduce the on-chain header bytes, so the block is
// unusable for proving.
func FromFields(fields *types.Header, reportedHash common.Hash) (*Header, error) {
	raw, err := rlp.EncodeToBytes(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: re-encode: %v", ErrMalformedHeader, err)
	}
	h, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if h.Hash != reportedHash {
		return nil, fmt.Errorf("%w: re-encoded %s, endpoint reported %s", ErrHeaderHashMismatch, h.Hash, reportedHash)
	}
	return h, nil
}

// Validate recomputes keccak256 over the raw bytes and compares it to
// the expected hash.
func (h *Header) Validate(expected common.Hash) error {
	if got := crypto.Keccak256Hash(h.Raw); got != expected {
		return fmt.Errorf("%w: computed %s, expected %s", ErrHeaderHashMismatch, got, expected)
	}
	return nil
}
