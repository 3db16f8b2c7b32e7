package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModifiers(t *testing.T) {
	mods := ParseModifiers([]string{"Ctrl", "shift", "bogus"})
	assert.True(t, mods.Has(ModControl))
	assert.True(t, mods.Has(ModShift))
	assert.True(t, mods.Has(ModControl|ModShift))
	assert.False(t, mods.Has(ModAlt))
	assert.False(t, mods.Has(0))
}

func TestParseButton(t *testing.T) {
	assert.Equal(t, ButtonPrimary, ParseButton(0))
	assert.Equal(t, ButtonPan, ParseButton(1))
	assert.Equal(t, ButtonSecondary, ParseButton(2))
	assert.Equal(t, ButtonNone, ParseButton(7))
}
