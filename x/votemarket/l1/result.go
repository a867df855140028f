package l1

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient/gethclient"
)

// AccountResult is an eth_getProof response with every proof node
// hex-decoded into raw trie node bytes.
type AccountResult struct {
	Address      common.Address
	AccountProof [][]byte
	Balance      *big.Int
	CodeHash     common.Hash
	Nonce        uint64
	StorageHash  common.Hash
	StorageProof []StorageResult
}

// StorageResult proves one storage slot under the account's storage root.
type StorageResult struct {
	Key   common.Hash
	Value *big.Int
	Proof [][]byte
}

func convertAccountResult(res *gethclient.AccountResult) (*AccountResult, error) {
	out := &AccountResult{
		Address:     res.Address,
		Balance:     res.Balance,
		CodeHash:    res.CodeHash,
		Nonce:       res.Nonce,
		StorageHash: res.StorageHash,
	}

	var err error
	out.AccountProof, err = decodeNodes(res.AccountProof)
	if err != nil {
		return nil, fmt.Errorf("account proof: %w", err)
	}

	out.StorageProof = make([]StorageResult, len(res.StorageProof))
	for i, sp := range res.StorageProof {
		key, err := parseHexWord(sp.Key)
		if err != nil {
			return nil, fmt.Errorf("storage proof %d key: %w", i, err)
		}
		nodes, err := decodeNodes(sp.Proof)
		if err != nil {
			return nil, fmt.Errorf("storage proof %d: %w", i, err)
		}
		out.StorageProof[i] = StorageResult{Key: key, Value: sp.Value, Proof: nodes}
	}
	return out, nil
}

func decodeNodes(nodes []string) ([][]byte, error) {
	out := make([][]byte, len(nodes))
	for i, n := range nodes {
		b, err := hexutil.Decode(n)
		if err != nil {
			return nil, fmt.Errorf("node %d: %v", i, err)
		}
		out[i] = b
	}
	return out, nil
}

// parseHexWord parses a hex quantity into a left-padded 32-byte word.
// Endpoints disagree on zero padding for proof keys, so "0x0", "0x01"
// and the full 64-digit form all parse to the same value.
func parseHexWord(s string) (common.Hash, error) {
	t := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if t == "" {
		return common.Hash{}, fmt.Errorf("empty hex word %q", s)
	}
	if len(t)%2 == 1 {
		t = "0" + t
	}
	b, err := hex.DecodeString(t)
	if err != nil {
		return common.Hash{}, fmt.Errorf("bad hex word %q: %v", s, err)
	}
	if len(b) > common.HashLength {
		return common.Hash{}, fmt.Errorf("hex word %q longer than 32 bytes", s)
	}
	return common.BytesToHash(b), nil
}
