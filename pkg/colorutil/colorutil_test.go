package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLuma(t *testing.T) {
	assert.Equal(t, uint8(0), Luma(0, 0, 0))
	assert.Equal(t, uint8(255), Luma(255, 255, 255))
	assert.Equal(t, uint8(76), Luma(255, 0, 0))
	assert.Equal(t, uint8(150), Luma(0, 255, 0))
	assert.Equal(t, uint8(29), Luma(0, 0, 255))
}

func TestLumaOf(t *testing.T) {
	assert.Equal(t, uint8(200), LumaOf(color.Gray{Y: 200}))
	assert.Equal(t, uint8(255), LumaOf(color.RGBA{R: 255, G: 255, B: 255, A: 255}))
	assert.Equal(t, uint8(0), LumaOf(Black))
	assert.Equal(t, uint8(255), LumaOf(color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
}

func TestLumaOfIgnoresAlpha(t *testing.T) {
	assert.Equal(t, uint8(255), LumaOf(color.NRGBA{R: 255, G: 255, B: 255, A: 0}))
	assert.Equal(t, uint8(255), LumaOf(color.NRGBA64{R: 0xffff, G: 0xffff, B: 0xffff, A: 0}))
	assert.Equal(t, uint8(76), LumaOf(color.NRGBA{R: 255, A: 0}))
}
