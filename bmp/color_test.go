package bmp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/objfind/objfind/raster"
)

func TestMaskBits(t *testing.T) {
	tests := []struct {
		mask uint32
		bits uint
	}{
		{0x00000000, 0},
		{0x0000001f, 5},
		{0x000007e0, 6},
		{0x0000f800, 5},
		{0x00ff0000, 8},
		{0xffffffff, 32},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.bits, maskBits(tt.mask))
	}
}

func TestMaskShift(t *testing.T) {
	tests := []struct {
		mask  uint32
		shift uint
	}{
		{0x0000001f, 0},
		{0x000007e0, 5},
		{0x0000f800, 11},
		{0xff000000, 24},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.shift, maskShift(tt.mask))
	}
}

func TestRescaleWiden(t *testing.T) {
	// Widening must backfill so full scale stays full scale.
	assert.Equal(t, uint32(0xff), rescale(0x1f, 5, 8))
	assert.Equal(t, uint32(0xff), rescale(1, 1, 8))
	assert.Equal(t, uint32(0xff), rescale(3, 2, 8))
	assert.Equal(t, uint32(0xbf), rescale(2, 2, 8))
	assert.Equal(t, uint32(0), rescale(0, 5, 8))
}

func TestRescaleNarrow(t *testing.T) {
	assert.Equal(t, uint32(0x1f), rescale(0xff, 8, 5))
	assert.Equal(t, uint32(0), rescale(0x07, 8, 5))
}

func TestRescaleWidenNarrowRoundTrip(t *testing.T) {
	for from := uint(1); from <= 8; from++ {
		for to := from; to <= 8; to++ {
			for v := uint32(0); v < 1<<from; v++ {
				assert.Equal(t, v, rescale(rescale(v, from, to), to, from),
					"v=%d from=%d to=%d", v, from, to)
			}
		}
	}
}

func TestComponent(t *testing.T) {
	assert.Equal(t, uint32(0x1f), component(0xf800, 0xf800))
	assert.Equal(t, uint32(0x15), component(0x02a0, 0x07e0))
	assert.Equal(t, uint32(0), component(0xffff, 0))
}

func TestPackWord(t *testing.T) {
	p := raster.Pixel{R: 0xff, G: 0x00, B: 0xff, A: 0x80}

	// 32-bit RGBA masks keep every channel intact.
	assert.Equal(t, uint32(0x80ff00ff), packWord(p, 0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000))

	// 5-6-5 packing drops the alpha channel.
	assert.Equal(t, uint32(0xf81f), packWord(p, 0xf800, 0x07e0, 0x001f, 0))
}
