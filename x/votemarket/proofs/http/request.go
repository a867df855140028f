package http

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stake-dao/votemarket-relay/x/votemarket/proofs"
)

// buildReq is the JSON schema for POST routeBuildProof and
// routeCalldata.
type buildReq struct {
	Protocol    string `json:"protocol"`
	Gauge       string `json:"gauge"` // 0x-hex
	User        string `json:"user,omitempty"`
	Epoch       uint64 `json:"epoch"`
	BlockNumber uint64 `json:"block_number"`
}

func (r buildReq) toRequest() (proofs.Request, error) {
	if !common.IsHexAddress(r.Gauge) {
		return proofs.Request{}, fmt.Errorf("gauge must be a 20-byte hex address")
	}
	req := proofs.Request{
		Protocol:    r.Protocol,
		Gauge:       common.HexToAddress(r.Gauge),
		Epoch:       r.Epoch,
		BlockNumber: r.BlockNumber,
	}
	if r.User != "" {
		if !common.IsHexAddress(r.User) {
			return proofs.Request{}, fmt.Errorf("user must be a 20-byte hex address")
		}
		user := common.HexToAddress(r.User)
		req.User = &user
	}
	return req, req.Validate()
}
