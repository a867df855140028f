// Package protocol describes where each supported gauge controller keeps
// the voting state we prove: controller address, storage layout scheme,
// and the base slots of the vote mappings.
package protocol

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

//go:embed layouts.yaml
var defaultLayouts []byte

var (
	// ErrUnknownProtocol is returned when a protocol name is not registered.
	ErrUnknownProtocol = errors.New("unknown protocol")
	// ErrInvalidLayout is returned when a layout table fails validation.
	ErrInvalidLayout = errors.New("invalid layout")
)

// Scheme selects how mapping keys are hashed into storage trie slots.
type Scheme string

const (
	// SchemeVyper hashes keccak(slot ++ key) per mapping level.
	SchemeVyper Scheme = "vyper"
	// SchemeVyperLegacy is SchemeVyper plus one extra keccak over the
	// final slot of struct-valued mappings.
	SchemeVyperLegacy Scheme = "vyper-legacy"
	// SchemeSolidity hashes keccak(key ++ slot) per mapping level.
	SchemeSolidity Scheme = "solidity"
)

// Layout describes one protocol's gauge controller storage.
type Layout struct {
	Name          string         `json:"name"`
	Controller    common.Address `json:"controller"`
	Scheme        Scheme         `json:"scheme"`
	CreationBlock uint64         `json:"creation_block"`

	PointWeightsSlot   uint64 `json:"point_weights_slot"`
	VoteUserSlopesSlot uint64 `json:"vote_user_slopes_slot"`
	LastUserVoteSlot   uint64 `json:"last_user_vote_slot,omitempty"`
	HasLastUserVote    bool   `json:"has_last_user_vote"`

	// SlopeWords lists which words of the per-user vote struct are
	// proven, as offsets from its base slot.
	SlopeWords []uint64 `json:"slope_words"`

	// WeightEpochFirst orders the weight mapping keys epoch-then-gauge
	// instead of gauge-then-epoch.
	WeightEpochFirst bool `json:"weight_epoch_first,omitempty"`

	// WeightFieldOffset and SlopeFieldOffset are added to the
	// first-level slot before the second mapping lookup, for controllers
	// that nest the inner mapping inside a struct.
	WeightFieldOffset uint64 `json:"weight_field_offset,omitempty"`
	SlopeFieldOffset  uint64 `json:"slope_field_offset,omitempty"`
}

type layoutFile struct {
	Protocols map[string]layoutSpec `yaml:"protocols"`
}

type layoutSpec struct {
	Controller    string    `yaml:"controller"`
	Scheme        string    `yaml:"scheme"`
	CreationBlock uint64    `yaml:"creation_block"`
	Slots         slotsSpec `yaml:"slots"`

	SlopeWords        []uint64 `yaml:"slope_words"`
	WeightEpochFirst  bool     `yaml:"weight_epoch_first"`
	WeightFieldOffset uint64   `yaml:"weight_field_offset"`
	SlopeFieldOffset  uint64   `yaml:"slope_field_offset"`
}

type slotsSpec struct {
	PointWeights   uint64  `yaml:"point_weights"`
	LastUserVote   *uint64 `yaml:"last_user_vote"`
	VoteUserSlopes uint64  `yaml:"vote_user_slopes"`
}

// Registry resolves protocol names to layouts.
type Registry struct {
	layouts map[string]Layout
	names   []string
}

// Load parses a layout registry from YAML and validates every entry.
func Load(data []byte) (*Registry, error) {
	var file layoutFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if len(file.Protocols) == 0 {
		return nil, fmt.Errorf("%w: no protocols defined", ErrInvalidLayout)
	}

	r := &Registry{layouts: make(map[string]Layout, len(file.Protocols))}
	for name, spec := range file.Protocols {
		layout, err := spec.toLayout(name)
		if err != nil {
			return nil, err
		}
		r.layouts[layout.Name] = layout
		r.names = append(r.names, layout.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Default returns the registry built from the embedded layout table.
func Default() (*Registry, error) {
	return Load(defaultLayouts)
}

// MustDefault is Default for initialization paths; the embedded table is
// covered by tests, so a failure here is a build defect.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the layout for a protocol name. Lookup is case-insensitive
// and ignores surrounding whitespace.
func (r *Registry) Get(name string) (Layout, error) {
	layout, ok := r.layouts[normalizeName(name)]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
	}
	return layout, nil
}

// Has reports whether a protocol name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.layouts[normalizeName(name)]
	return ok
}

// Names returns the registered protocol names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// All returns every registered layout, ordered by name.
func (r *Registry) All() []Layout {
	out := make([]Layout, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.layouts[name])
	}
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s layoutSpec) toLayout(name string) (Layout, error) {
	name = normalizeName(name)
	if name == "" {
		return Layout{}, fmt.Errorf("%w: empty protocol name", ErrInvalidLayout)
	}

	scheme := Scheme(s.Scheme)
	switch scheme {
	case SchemeVyper, SchemeVyperLegacy, SchemeSolidity:
	default:
		return Layout{}, fmt.Errorf("%w: protocol %s: unknown scheme %q", ErrInvalidLayout, name, s.Scheme)
	}

	if !common.IsHexAddress(s.Controller) {
		return Layout{}, fmt.Errorf("%w: protocol %s: bad controller address %q", ErrInvalidLayout, name, s.Controller)
	}
	controller := common.HexToAddress(s.Controller)
	if controller == (common.Address{}) {
		return Layout{}, fmt.Errorf("%w: protocol %s: zero controller address", ErrInvalidLayout, name)
	}

	if s.CreationBlock == 0 {
		return Layout{}, fmt.Errorf("%w: protocol %s: missing creation block", ErrInvalidLayout, name)
	}

	if len(s.SlopeWords) == 0 {
		return Layout{}, fmt.Errorf("%w: protocol %s: missing slope words", ErrInvalidLayout, name)
	}
	for i, w := range s.SlopeWords {
		if w > 2 {
			return Layout{}, fmt.Errorf("%w: protocol %s: slope word %d out of range", ErrInvalidLayout, name, w)
		}
		if i > 0 && s.SlopeWords[i-1] >= w {
			return Layout{}, fmt.Errorf("%w: protocol %s: slope words must be strictly increasing", ErrInvalidLayout, name)
		}
	}

	layout := Layout{
		Name:               name,
		Controller:         controller,
		Scheme:             scheme,
		CreationBlock:      s.CreationBlock,
		PointWeightsSlot:   s.Slots.PointWeights,
		VoteUserSlopesSlot: s.Slots.VoteUserSlopes,
		SlopeWords:         append([]uint64(nil), s.SlopeWords...),
		WeightEpochFirst:   s.WeightEpochFirst,
		WeightFieldOffset:  s.WeightFieldOffset,
		SlopeFieldOffset:   s.SlopeFieldOffset,
	}
	if s.Slots.LastUserVote != nil {
		layout.LastUserVoteSlot = *s.Slots.LastUserVote
		layout.HasLastUserVote = true
	}
	return layout, nil
}
