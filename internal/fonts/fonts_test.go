package fonts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasureEmpty(t *testing.T) {
	m, err := Measure("", Spec{Size: 24})
	require.NoError(t, err)
	assert.Zero(t, m.Width)
	assert.Zero(t, m.Height)
}

func TestMeasureGrowsWithTextAndSize(t *testing.T) {
	short, err := Measure("ab", Spec{Size: 24})
	require.NoError(t, err)
	long, err := Measure("abcdef", Spec{Size: 24})
	require.NoError(t, err)
	big, err := Measure("ab", Spec{Size: 48})
	require.NoError(t, err)

	assert.Greater(t, short.Width, 0.0)
	assert.Greater(t, short.Height, 0.0)
	assert.Greater(t, long.Width, short.Width)
	assert.Greater(t, big.Width, short.Width)
	assert.Greater(t, big.Height, short.Height)
	assert.Greater(t, short.Ascent, 0.0)
}

func TestFaceDefaultsSize(t *testing.T) {
	face, err := Face(Spec{Bold: true})
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultSize), face.Size())
}
