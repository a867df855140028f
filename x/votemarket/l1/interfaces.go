package l1

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stake-dao/votemarket-relay/x/votemarket/header"
)

// HeaderSource serves hash-validated block headers.
type HeaderSource interface {
	// HeaderByNumber fetches the header at the given height and pins it
	// to the hash the endpoint reported.
	HeaderByNumber(ctx context.Context, number uint64) (*header.Header, error)

	// Latest returns the current chain head height.
	Latest(ctx context.Context) (uint64, error)
}

// ProofReader serves EIP-1186 account and storage proofs.
type ProofReader interface {
	GetProof(ctx context.Context, account common.Address, keys []common.Hash, blockNumber uint64) (*AccountResult, error)
}

// Source is the full read surface proof assembly needs.
type Source interface {
	HeaderSource
	ProofReader
}
