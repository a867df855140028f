// Package oracle encodes calldata for the on-chain verifier that
// ingests submission payloads and writes the proven values into the
// oracle contract. Encoding only; signing and broadcast stay with the
// operator's transaction tooling.
package oracle

import (
	_ "embed"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/stake-dao/votemarket-relay/x/votemarket/proofs"
)

// Verifier ABI JSON embedded at compile time.
//
//go:embed abi/verifier.json
var verifierABIJSON string

// Binding wraps a deployed verifier contract: its address plus the
// parsed ABI for packing the three ingestion calls.
type Binding struct {
	address common.Address
	abi     abi.ABI
}

// NewBinding parses the embedded verifier ABI and validates the
// contract address.
func NewBinding(contractAddr string) (*Binding, error) {
	if strings.TrimSpace(contractAddr) == "" {
		return nil, fmt.Errorf("verifier address cannot be empty")
	}
	if !common.IsHexAddress(contractAddr) {
		return nil, fmt.Errorf("invalid verifier address: %s", contractAddr)
	}

	parsedABI, err := abi.JSON(strings.NewReader(verifierABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse verifier ABI: %w", err)
	}

	return &Binding{
		address: common.HexToAddress(contractAddr),
		abi:     parsedABI,
	}, nil
}

// Address returns the verifier contract address the calldata targets.
func (b *Binding) Address() common.Address {
	return b.address
}

// ABI returns the parsed verifier ABI.
func (b *Binding) ABI() abi.ABI {
	return b.abi
}

// SetBlockDataCalldata packs setBlockData(blockHeader, proof): the raw
// header RLP plus the controller account proof. The verifier recovers
// the state root from these before any slot can be proven.
func (b *Binding) SetBlockDataCalldata(sub *proofs.Submission) ([]byte, error) {
	if sub == nil {
		return nil, fmt.Errorf("submission cannot be nil")
	}
	data, err := b.abi.Pack("setBlockData", sub.BlockData.Bytes(), sub.ControllerProof.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to pack setBlockData calldata: %w", err)
	}
	return data, nil
}

// SetPointDataCalldata packs setPointData(gauge, epoch, proof) with the
// weight proof payload.
func (b *Binding) SetPointDataCalldata(sub *proofs.Submission) ([]byte, error) {
	if sub == nil {
		return nil, fmt.Errorf("submission cannot be nil")
	}
	data, err := b.abi.Pack("setPointData",
		sub.Gauge, new(big.Int).SetUint64(sub.Epoch), sub.PointData.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to pack setPointData calldata: %w", err)
	}
	return data, nil
}

// SetAccountDataCalldata packs setAccountData(account, gauge, epoch,
// proof) with the user slope payload. Fails when the submission was
// built without a user.
func (b *Binding) SetAccountDataCalldata(sub *proofs.Submission) ([]byte, error) {
	if sub == nil {
		return nil, fmt.Errorf("submission cannot be nil")
	}
	if sub.User == nil || len(sub.AccountData) == 0 {
		return nil, fmt.Errorf("submission has no user payload")
	}
	data, err := b.abi.Pack("setAccountData",
		*sub.User, sub.Gauge, new(big.Int).SetUint64(sub.Epoch), sub.AccountData.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to pack setAccountData calldata: %w", err)
	}
	return data, nil
}

// CalldataBatch packs the verifier calls for one submission in
// ingestion order: block data first, then the gauge point, then the
// user account when present. The slice is ready for a multicall.
func (b *Binding) CalldataBatch(sub *proofs.Submission) ([][]byte, error) {
	blockData, err := b.SetBlockDataCalldata(sub)
	if err != nil {
		return nil, err
	}
	pointData, err := b.SetPointDataCalldata(sub)
	if err != nil {
		return nil, err
	}
	batch := [][]byte{blockData, pointData}

	if sub.User != nil {
		accountData, err := b.SetAccountDataCalldata(sub)
		if err != nil {
			return nil, err
		}
		batch = append(batch, accountData)
	}
	return batch, nil
}
