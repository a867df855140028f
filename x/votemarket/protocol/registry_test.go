package protocol

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayouts(t *testing.T) {
	t.Parallel()

	r, err := Default()
	require.NoError(t, err)
	require.Equal(t, []string{"balancer", "curve", "frax", "fxn", "pendle"}, r.Names())

	curve, err := r.Get("curve")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x2F50D538606Fa9EDD2B11E2446BEb18C9D5846bB"), curve.Controller)
	assert.Equal(t, SchemeVyperLegacy, curve.Scheme)
	assert.Equal(t, uint64(10647875), curve.CreationBlock)
	assert.Equal(t, uint64(12), curve.PointWeightsSlot)
	assert.Equal(t, uint64(9), curve.VoteUserSlopesSlot)
	assert.True(t, curve.HasLastUserVote)
	assert.Equal(t, uint64(11), curve.LastUserVoteSlot)
	assert.Equal(t, []uint64{0, 2}, curve.SlopeWords)
	assert.False(t, curve.WeightEpochFirst)
	assert.Zero(t, curve.WeightFieldOffset)
	assert.Zero(t, curve.SlopeFieldOffset)

	balancer, err := r.Get("balancer")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xC128468b7Ce63eA702C1f104D55A2566b13D3ABD"), balancer.Controller)
	assert.Equal(t, SchemeVyper, balancer.Scheme)
	assert.Equal(t, uint64(1000000008), balancer.PointWeightsSlot)
	assert.Equal(t, uint64(1000000007), balancer.LastUserVoteSlot)
	assert.Equal(t, uint64(1000000005), balancer.VoteUserSlopesSlot)

	frax, err := r.Get("frax")
	require.NoError(t, err)
	assert.Equal(t, SchemeVyper, frax.Scheme)
	assert.Equal(t, uint64(1000000011), frax.PointWeightsSlot)
	assert.Equal(t, uint64(1000000010), frax.LastUserVoteSlot)
	assert.Equal(t, uint64(1000000008), frax.VoteUserSlopesSlot)

	fxn, err := r.Get("fxn")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xe60eB8098B34eD775ac44B1ddE864e098C6d7f37"), fxn.Controller)
	assert.Equal(t, frax.PointWeightsSlot, fxn.PointWeightsSlot)
	assert.Equal(t, frax.VoteUserSlopesSlot, fxn.VoteUserSlopesSlot)

	pendle, err := r.Get("pendle")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x44087E105137a5095c008AaB6a6530182821F2F0"), pendle.Controller)
	assert.Equal(t, SchemeSolidity, pendle.Scheme)
	assert.Equal(t, uint64(161), pendle.PointWeightsSlot)
	assert.Equal(t, uint64(162), pendle.VoteUserSlopesSlot)
	assert.False(t, pendle.HasLastUserVote)
	assert.Equal(t, []uint64{0, 1}, pendle.SlopeWords)
	assert.True(t, pendle.WeightEpochFirst)
	assert.Equal(t, uint64(1), pendle.WeightFieldOffset)
	assert.Equal(t, uint64(1), pendle.SlopeFieldOffset)
}

func TestRegistryGet(t *testing.T) {
	t.Parallel()

	r := MustDefault()

	got, err := r.Get("  Curve ")
	require.NoError(t, err)
	assert.Equal(t, "curve", got.Name)

	_, err = r.Get("uniswap")
	require.ErrorIs(t, err, ErrUnknownProtocol)

	assert.True(t, r.Has("PENDLE"))
	assert.False(t, r.Has("uniswap"))
}

func TestRegistryAll(t *testing.T) {
	t.Parallel()

	r := MustDefault()
	all := r.All()
	require.Len(t, all, len(r.Names()))
	for i, name := range r.Names() {
		assert.Equal(t, name, all[i].Name)
	}
}

func TestLoadValidation(t *testing.T) {
	t.Parallel()

	valid := `
protocols:
  demo:
    controller: "0x2F50D538606Fa9EDD2B11E2446BEb18C9D5846bB"
    scheme: vyper
    creation_block: 100
    slots:
      point_weights: 1
      last_user_vote: 2
      vote_user_slopes: 3
    slope_words: [0, 2]
`
	r, err := Load([]byte(valid))
	require.NoError(t, err)
	layout, err := r.Get("demo")
	require.NoError(t, err)
	assert.True(t, layout.HasLastUserVote)

	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "malformed yaml",
			yaml: "protocols: [",
		},
		{
			name: "no protocols",
			yaml: "protocols: {}",
		},
		{
			name: "unknown scheme",
			yaml: `
protocols:
  demo:
    controller: "0x2F50D538606Fa9EDD2B11E2446BEb18C9D5846bB"
    scheme: huff
    creation_block: 100
    slots: {point_weights: 1, vote_user_slopes: 3}
    slope_words: [0]
`,
		},
		{
			name: "bad controller address",
			yaml: `
protocols:
  demo:
    controller: "not-an-address"
    scheme: vyper
    creation_block: 100
    slots: {point_weights: 1, vote_user_slopes: 3}
    slope_words: [0]
`,
		},
		{
			name: "zero controller address",
			yaml: `
protocols:
  demo:
    controller: "0x0000000000000000000000000000000000000000"
    scheme: vyper
    creation_block: 100
    slots: {point_weights: 1, vote_user_slopes: 3}
    slope_words: [0]
`,
		},
		{
			name: "missing creation block",
			yaml: `
protocols:
  demo:
    controller: "0x2F50D538606Fa9EDD2B11E2446BEb18C9D5846bB"
    scheme: vyper
    slots: {point_weights: 1, vote_user_slopes: 3}
    slope_words: [0]
`,
		},
		{
			name: "missing slope words",
			yaml: `
protocols:
  demo:
    controller: "0x2F50D538606Fa9EDD2B11E2446BEb18C9D5846bB"
    scheme: vyper
    creation_block: 100
    slots: {point_weights: 1, vote_user_slopes: 3}
`,
		},
		{
			name: "slope word out of range",
			yaml: `
protocols:
  demo:
    controller: "0x2F50D538606Fa9EDD2B11E2446BEb18C9D5846bB"
    scheme: vyper
    creation_block: 100
    slots: {point_weights: 1, vote_user_slopes: 3}
    slope_words: [0, 5]
`,
		},
		{
			name: "slope words not increasing",
			yaml: `
protocols:
  demo:
    controller: "0x2F50D538606Fa9EDD2B11E2446BEb18C9D5846bB"
    scheme: vyper
    creation_block: 100
    slots: {point_weights: 1, vote_user_slopes: 3}
    slope_words: [2, 0]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrInvalidLayout)
		})
	}
}
