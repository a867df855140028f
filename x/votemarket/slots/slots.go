// Package slots derives the storage trie keys of gauge controller vote
// state. Every derivation is pure keccak arithmetic over a layout from
// the protocol registry; nothing here touches the network.
package slots

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/stake-dao/votemarket-relay/x/votemarket/protocol"
)

// ErrSlotOverflow is returned when a struct field offset would push a
// storage slot past 2^256-1.
var ErrSlotOverflow = errors.New("storage slot offset overflow")

// DeriveSimpleSlot returns the storage key of mapping[key] for a Solidity
// mapping declared at slot: keccak256(pad32(key) ++ pad32(slot)).
func DeriveSimpleSlot(slot, key common.Hash) common.Hash {
	return crypto.Keccak256Hash(key[:], slot[:])
}

// DeriveVyperSlot is the Vyper hashing rule, with the slot hashed before
// the key: keccak256(pad32(slot) ++ pad32(key)).
func DeriveVyperSlot(slot, key common.Hash) common.Hash {
	return crypto.Keccak256Hash(slot[:], key[:])
}

// DeriveNestedSlot chains DeriveSimpleSlot across two mapping levels,
// outer key first, matching the contract's declared nesting order.
func DeriveNestedSlot(slot, outerKey, innerKey common.Hash) common.Hash {
	return DeriveSimpleSlot(DeriveSimpleSlot(slot, outerKey), innerKey)
}

// DeriveStructFieldSlot offsets a derived slot by a struct field index.
// Overflow past 2^256-1 is an error, never a silent wrap.
func DeriveStructFieldSlot(slot common.Hash, fieldOffset uint64) (common.Hash, error) {
	sum, overflow := new(uint256.Int).AddOverflow(
		new(uint256.Int).SetBytes32(slot[:]),
		uint256.NewInt(fieldOffset),
	)
	if overflow {
		return common.Hash{}, ErrSlotOverflow
	}
	return common.Hash(sum.Bytes32()), nil
}

// WeightKey returns the storage key of a gauge's vote weight entry for an
// epoch under the given layout.
func WeightKey(layout protocol.Layout, gauge common.Address, epoch uint64) (common.Hash, error) {
	if err := checkScheme(layout); err != nil {
		return common.Hash{}, err
	}

	first, second := addressKey(gauge), uintKey(epoch)
	if layout.WeightEpochFirst {
		first, second = second, first
	}

	slot := mapKey(layout.Scheme, uintKey(layout.PointWeightsSlot), first)
	slot, err := DeriveStructFieldSlot(slot, layout.WeightFieldOffset)
	if err != nil {
		return common.Hash{}, err
	}
	slot = mapKey(layout.Scheme, slot, second)
	return wrapLegacyStruct(layout.Scheme, slot), nil
}

// LastUserVoteKey returns the storage key of the user's last-vote
// timestamp for a gauge. The slot holds a scalar, so legacy layouts do
// not apply their struct rehash here.
func LastUserVoteKey(layout protocol.Layout, user, gauge common.Address) (common.Hash, error) {
	if err := checkScheme(layout); err != nil {
		return common.Hash{}, err
	}
	if !layout.HasLastUserVote {
		return common.Hash{}, fmt.Errorf("%w: protocol %s has no last vote slot", protocol.ErrInvalidLayout, layout.Name)
	}

	slot := mapKey(layout.Scheme, uintKey(layout.LastUserVoteSlot), addressKey(user))
	return mapKey(layout.Scheme, slot, addressKey(gauge)), nil
}

// UserSlopeKeys returns the storage keys of the slope struct words proven
// for a user's vote on a gauge, in layout order.
func UserSlopeKeys(layout protocol.Layout, user, gauge common.Address) ([]common.Hash, error) {
	if err := checkScheme(layout); err != nil {
		return nil, err
	}

	base, err := userSlopeBase(layout, user, gauge)
	if err != nil {
		return nil, err
	}
	keys := make([]common.Hash, 0, len(layout.SlopeWords))
	for _, word := range layout.SlopeWords {
		key, err := DeriveStructFieldSlot(base, word)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// UserKeys returns every storage key proven for a user's vote on a gauge,
// in submission order: the last-vote slot when the layout tracks one,
// then the slope struct words.
func UserKeys(layout protocol.Layout, user, gauge common.Address) ([]common.Hash, error) {
	slopeKeys, err := UserSlopeKeys(layout, user, gauge)
	if err != nil {
		return nil, err
	}
	if !layout.HasLastUserVote {
		return slopeKeys, nil
	}
	lastVote, err := LastUserVoteKey(layout, user, gauge)
	if err != nil {
		return nil, err
	}
	return append([]common.Hash{lastVote}, slopeKeys...), nil
}

func userSlopeBase(layout protocol.Layout, user, gauge common.Address) (common.Hash, error) {
	slot := mapKey(layout.Scheme, uintKey(layout.VoteUserSlopesSlot), addressKey(user))
	slot, err := DeriveStructFieldSlot(slot, layout.SlopeFieldOffset)
	if err != nil {
		return common.Hash{}, err
	}
	slot = mapKey(layout.Scheme, slot, addressKey(gauge))
	return wrapLegacyStruct(layout.Scheme, slot), nil
}

func mapKey(scheme protocol.Scheme, slot, key common.Hash) common.Hash {
	if scheme == protocol.SchemeSolidity {
		return DeriveSimpleSlot(slot, key)
	}
	return DeriveVyperSlot(slot, key)
}

// Controllers compiled with pre-0.3 Vyper hash struct-valued mapping
// slots once more. Scalar-valued mappings are left as derived.
func wrapLegacyStruct(scheme protocol.Scheme, slot common.Hash) common.Hash {
	if scheme == protocol.SchemeVyperLegacy {
		return crypto.Keccak256Hash(slot[:])
	}
	return slot
}

func checkScheme(layout protocol.Layout) error {
	switch layout.Scheme {
	case protocol.SchemeVyper, protocol.SchemeVyperLegacy, protocol.SchemeSolidity:
		return nil
	default:
		return fmt.Errorf("%w: protocol %s: unknown scheme %q", protocol.ErrInvalidLayout, layout.Name, layout.Scheme)
	}
}

func addressKey(a common.Address) common.Hash {
	var h common.Hash
	copy(h[12:], a[:])
	return h
}

func uintKey(v uint64) common.Hash {
	var h common.Hash
	binary.BigEndian.PutUint64(h[24:], v)
	return h
}
