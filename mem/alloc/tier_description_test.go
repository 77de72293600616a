package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDescription512(t *testing.T) {
	desc, err := CreateDescription(512, 32, 4, 0.9)
	require.NoError(t, err)

	want := []TierInfo{
		{Size: 512, AllocationSize: 512, Slots: 1},
		{Size: 768, AllocationSize: 384, Slots: 2},
		{Size: 768, AllocationSize: 256, Slots: 3},
		{Size: 768, AllocationSize: 192, Slots: 4},
		{Size: 640, AllocationSize: 128, Slots: 5},
		{Size: 576, AllocationSize: 96, Slots: 6},
		{Size: 448, AllocationSize: 64, Slots: 7},
		{Size: 384, AllocationSize: 48, Slots: 8},
		{Size: 288, AllocationSize: 32, Slots: 9},
	}
	assert.Equal(t, want, desc.Tiers)
	assert.Equal(t, 5152, desc.BufferSize)
	assert.Equal(t, len(desc.Tiers)-1, desc.TierIndex(32))
}

func TestDescriptionInvariants(t *testing.T) {
	params := []struct {
		max, min, gran int
		decay          float32
	}{
		{512, 32, 4, 0.9},
		{4096, 16, 4, 0.9},
		{65536, 32, 8, 0.95},
		{65536, 64, 2, 0.8},
		{1 << 20, 64, 4, 0.9},
		{64, 8, 2, 1.0},
		{256, 16, 4, 0.5},
	}
	for _, p := range params {
		desc, err := CreateDescription(p.max, p.min, p.gran, p.decay)
		require.NoError(t, err, "%+v", p)

		offset := 0
		for i, tier := range desc.Tiers {
			require.Zero(t, tier.Size%tier.AllocationSize, "%+v tier %d", p, i)
			require.Equal(t, tier.Slots*tier.AllocationSize, tier.Size)
			require.Zero(t, offset%desc.TierStartAlignment(i, 1<<30), "%+v tier %d start %d", p, i, offset)
			if i > 0 {
				require.Less(t, tier.AllocationSize, desc.Tiers[i-1].AllocationSize)
			}
			offset += tier.Size
		}
		require.Equal(t, desc.BufferSize, offset)
		require.Equal(t, p.max, desc.Tiers[0].AllocationSize)
		require.Equal(t, p.min, desc.Tiers[len(desc.Tiers)-1].AllocationSize)
		require.Equal(t, len(desc.Tiers)-1, desc.TierIndex(p.min))
	}
}

// smallestFit is the brute-force answer TierIndex must match.
func smallestFit(desc *Description, size int) int {
	best := -1
	for i, tier := range desc.Tiers {
		if tier.AllocationSize >= size {
			best = i
		}
	}
	return best
}

func TestTierIndexMatchesSearch(t *testing.T) {
	for _, p := range []struct{ max, min, gran int }{
		{512, 32, 4},
		{4096, 16, 16},
		{8192, 64, 2},
		{1024, 8, 8},
	} {
		desc, err := CreateDescription(p.max, p.min, p.gran, 0.9)
		require.NoError(t, err)
		for size := 1; size <= p.max; size++ {
			require.Equal(t, smallestFit(&desc, size), desc.TierIndex(size), "%+v size=%d", p, size)
		}
		assert.Equal(t, -1, desc.TierIndex(p.max+1))
	}
}

func TestTierIndexSameTierDeterminism(t *testing.T) {
	desc, err := CreateDescription(512, 32, 4, 0.9)
	require.NoError(t, err)

	for i := 0; i < len(desc.Tiers)-1; i++ {
		lo := desc.Tiers[i+1].AllocationSize + 1
		hi := desc.Tiers[i].AllocationSize
		for s1 := lo; s1 <= hi; s1++ {
			assert.Equal(t, desc.TierIndex(hi), desc.TierIndex(s1), "sizes %d and %d", s1, hi)
		}
	}
	assert.Equal(t, 7, desc.TierIndex(33))
	assert.Equal(t, 6, desc.TierIndex(49))
	assert.Equal(t, 1, desc.TierIndex(384))
	assert.Equal(t, 0, desc.TierIndex(385))
}

func TestCreateDescriptionSingleTier(t *testing.T) {
	desc, err := CreateDescription(64, 64, 4, 0.5)
	require.NoError(t, err)
	require.Len(t, desc.Tiers, 1)
	assert.Equal(t, 64, desc.BufferSize)
	assert.Equal(t, 0, desc.TierIndex(1))
	assert.Equal(t, 0, desc.TierIndex(64))
}

func TestCreateDescriptionRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name           string
		max, min, gran int
		decay          float32
	}{
		{"max not pow2", 500, 32, 4, 0.9},
		{"min not pow2", 512, 24, 4, 0.9},
		{"gran not pow2", 512, 32, 3, 0.9},
		{"min below pointer", 512, 4, 2, 0.9},
		{"min above max", 32, 64, 4, 0.9},
		{"gran too small", 512, 32, 1, 0.9},
		{"gran above min", 512, 32, 64, 0.9},
		{"decay zero", 512, 32, 4, 0},
		{"decay above one", 512, 32, 4, 1.5},
		{"too many tiers", 1 << 30, 16, 16, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateDescription(tt.max, tt.min, tt.gran, tt.decay)
			require.ErrorIs(t, err, ErrBadConfig)
		})
	}
}
