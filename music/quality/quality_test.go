package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogOrderIsStable(t *testing.T) {
	tiers := Tiers()
	assert.Len(t, tiers, 7)
	assert.Equal(t, "standard", tiers[0].Code)
	assert.Equal(t, "jymaster", tiers[6].Code)
}

func TestByOrdinal(t *testing.T) {
	tier, ok := ByOrdinal(2)
	assert.True(t, ok)
	assert.Equal(t, "exhigh", tier.Code)

	_, ok = ByOrdinal(0)
	assert.False(t, ok)
	_, ok = ByOrdinal(8)
	assert.False(t, ok)
}

func TestByCode(t *testing.T) {
	tier, ok := ByCode(" Lossless ")
	assert.True(t, ok)
	assert.Equal(t, "Lossless", tier.Name)

	_, ok = ByCode("vinyl")
	assert.False(t, ok)
}

func TestValidCodeAcceptsAskSentinel(t *testing.T) {
	assert.True(t, ValidCode("ask"))
	assert.True(t, ValidCode("hires"))
	assert.False(t, ValidCode(""))
	assert.False(t, ValidCode("best"))
}
