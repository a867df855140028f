package proofs

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stake-dao/votemarket-relay/x/votemarket/header"
)

// Request identifies one proof bundle: a protocol's gauge at a voting
// epoch, proven against a specific L1 block. User is optional; when set
// the bundle additionally proves that voter's slope state.
type Request struct {
	Protocol    string          `json:"protocol"`
	Gauge       common.Address  `json:"gauge"`
	User        *common.Address `json:"user,omitempty"`
	Epoch       uint64          `json:"epoch"`
	BlockNumber uint64          `json:"block_number"`
}

func (r Request) Validate() error {
	if r.Protocol == "" {
		return fmt.Errorf("request: protocol is required")
	}
	if r.Gauge == (common.Address{}) {
		return fmt.Errorf("request: gauge address is required")
	}
	if r.User != nil && *r.User == (common.Address{}) {
		return fmt.Errorf("request: user address must not be zero")
	}
	if r.Epoch == 0 {
		return fmt.Errorf("request: epoch is required")
	}
	if r.BlockNumber == 0 {
		return fmt.Errorf("request: block number is required")
	}
	return nil
}

func (r Request) String() string {
	s := fmt.Sprintf("%s/%s/%d@%d", r.Protocol, r.Gauge.Hex(), r.Epoch, r.BlockNumber)
	if r.User != nil {
		s += "+" + r.User.Hex()
	}
	return s
}

// StorageProof proves one storage slot under the controller's storage
// root. Nodes are the raw trie nodes exactly as the endpoint returned
// them; Value is the slot's decoded content.
type StorageProof struct {
	Key   common.Hash `json:"key"`
	Value *big.Int    `json:"value"`
	Nodes [][]byte    `json:"nodes"`
}

// Bundle is one assembled, cross-checked proof bundle. AccountProof
// ties the controller account to Header.StateRoot; WeightProof and
// UserProofs tie individual slots to StorageHash.
type Bundle struct {
	Request     Request        `json:"request"`
	Epoch       uint64         `json:"epoch"`
	BlockNumber uint64         `json:"block_number"`
	Header      *header.Header `json:"header"`

	AccountProof [][]byte    `json:"account_proof"`
	StorageHash  common.Hash `json:"storage_hash"`
	WeightProof  StorageProof   `json:"weight_proof"`
	UserProofs   []StorageProof `json:"user_proofs,omitempty"`
}
