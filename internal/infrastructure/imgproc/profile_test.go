package imgproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	p, err := r.Lookup(CategoryMenuItem)
	require.NoError(t, err)
	assert.Equal(t, 600, p.TargetWidth)
	assert.Equal(t, 400, p.TargetHeight)
	assert.Equal(t, FitCover, p.Fit)
	assert.Equal(t, 70, p.MinSizeKB)
	assert.Equal(t, 150, p.MaxSizeKB)

	p, err = r.Lookup(CategoryLogo)
	require.NoError(t, err)
	assert.Equal(t, FitContain, p.Fit)
	assert.Equal(t, 85, p.InitialQuality)
}

func TestRegistryLookupUnknownCategory(t *testing.T) {
	r := NewRegistry()

	_, err := r.Lookup("avatar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "avatar")
}

func TestRegistryOverrides(t *testing.T) {
	r, err := NewRegistryWithOverrides([]ProfileOverride{
		{Category: CategoryBanner, MaxSizeKB: 250, InitialQuality: 70},
	})
	require.NoError(t, err)

	p, err := r.Lookup(CategoryBanner)
	require.NoError(t, err)
	assert.Equal(t, 250, p.MaxSizeKB)
	assert.Equal(t, 70, p.InitialQuality)
	// untouched fields keep their built-in values
	assert.Equal(t, 100, p.MinSizeKB)
	assert.Equal(t, 1200, p.TargetWidth)
}

func TestRegistryOverrideUnknownCategory(t *testing.T) {
	_, err := NewRegistryWithOverrides([]ProfileOverride{
		{Category: "thumbnail", MaxSizeKB: 50},
	})
	assert.Error(t, err)
}

func TestRegistryOverrideInvertedBand(t *testing.T) {
	_, err := NewRegistryWithOverrides([]ProfileOverride{
		{Category: CategoryLogo, MinSizeKB: 500},
	})
	assert.Error(t, err)
}
