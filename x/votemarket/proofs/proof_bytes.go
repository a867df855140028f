package proofs

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// ProofBytes holds one opaque submission payload. Tooling around the
// oracle encodes these inconsistently (0x-hex, bare hex, base64, raw
// JSON byte arrays), so unmarshalling accepts all of them; marshalling
// always emits 0x-prefixed hex.
type ProofBytes []byte

func (p ProofBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *ProofBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		decoded, err := decodeProofString(s)
		if err != nil {
			return err
		}
		*p = decoded
		return nil
	}

	var arr []int
	if err := json.Unmarshal(data, &arr); err == nil {
		out := make([]byte, len(arr))
		for i, v := range arr {
			if v < 0 || v > 255 {
				return fmt.Errorf("proof bytes: element %d out of byte range: %d", i, v)
			}
			out[i] = byte(v)
		}
		*p = out
		return nil
	}

	return fmt.Errorf("proof bytes: unsupported JSON encoding")
}

// Bytes returns the payload as a plain byte slice.
func (p ProofBytes) Bytes() []byte {
	return []byte(p)
}

// String renders the payload as 0x-prefixed hex.
func (p ProofBytes) String() string {
	return "0x" + hex.EncodeToString(p)
}

// Clone returns an independent copy of the payload.
func (p ProofBytes) Clone() ProofBytes {
	if p == nil {
		return nil
	}
	out := make(ProofBytes, len(p))
	copy(out, p)
	return out
}

func decodeProofString(s string) ([]byte, error) {
	if s == "" || s == "0x" || s == "0X" {
		return ProofBytes{}, nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		b, err := hex.DecodeString(s[2:])
		if err != nil {
			return nil, fmt.Errorf("proof bytes: invalid hex: %w", err)
		}
		return b, nil
	}
	if b, err := hex.DecodeString(s); err == nil {
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return nil, fmt.Errorf("proof bytes: string is neither hex nor base64")
}
