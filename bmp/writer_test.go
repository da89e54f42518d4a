package bmp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objfind/objfind/raster"
)

func testRaster() *raster.Raster {
	img := raster.New(3, 2)
	img.Set(0, 0, raster.Pixel{R: 0x12, G: 0x34, B: 0x56, A: 0x78})
	img.Set(1, 0, raster.Pixel{R: 0xff, A: 0xff})
	img.Set(2, 0, raster.Pixel{G: 0xff, A: 0xff})
	img.Set(0, 1, raster.Pixel{B: 0xff, A: 0xff})
	img.Set(1, 1, raster.Pixel{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	img.Set(2, 1, raster.Pixel{A: 0xff})
	return img
}

func TestEncode32RoundTrip(t *testing.T) {
	img := testRaster()

	buf := new(bytes.Buffer)
	require.NoError(t, Encode(buf, img, 32))

	desc, decoded, err := Decode(buf)
	require.NoError(t, err)

	assert.Equal(t, 32, desc.BitCount)
	assert.Equal(t, CompressionBitFields, desc.Compression)
	assert.Equal(t, uint32(0xff000000), desc.AlphaMask)

	// The pixel buffer survives byte for byte.
	assert.Equal(t, img.Pix, decoded.Pix)
}

func TestEncode24RoundTrip(t *testing.T) {
	img := testRaster()

	buf := new(bytes.Buffer)
	require.NoError(t, Encode(buf, img, 24))

	desc, decoded, err := Decode(buf)
	require.NoError(t, err)

	assert.Equal(t, 24, desc.BitCount)
	assert.Equal(t, CompressionNone, desc.Compression)

	// Color is preserved exactly; alpha is forced opaque.
	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			want := img.At(x, y)
			want.A = 0xff
			assert.Equal(t, want, decoded.At(x, y), "x=%d y=%d", x, y)
		}
	}
}

func TestEncode16RoundTrip(t *testing.T) {
	img := testRaster()

	buf := new(bytes.Buffer)
	require.NoError(t, Encode(buf, img, 16))

	_, decoded, err := Decode(buf)
	require.NoError(t, err)

	// Channels pass through the 5-6-5 quantization.
	quant := func(v uint8, bits uint) uint8 {
		return uint8(rescale(rescale(uint32(v), 8, bits), bits, 8))
	}
	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			p := img.At(x, y)
			want := raster.Pixel{R: quant(p.R, 5), G: quant(p.G, 6), B: quant(p.B, 5)}
			assert.Equal(t, want, decoded.At(x, y), "x=%d y=%d", x, y)
		}
	}
}

func TestEncode8BitPalette(t *testing.T) {
	// Colors drawn from the fixed 3:3:2 palette survive unchanged.
	p := palette8()
	img := raster.New(2, 2)
	img.Set(0, 0, p[7])   // full red
	img.Set(1, 0, p[56])  // full green
	img.Set(0, 1, p[192]) // full blue
	img.Set(1, 1, p[0])   // black

	buf := new(bytes.Buffer)
	require.NoError(t, Encode(buf, img, 8))

	desc, decoded, err := Decode(buf)
	require.NoError(t, err)

	assert.Equal(t, 8, desc.BitCount)
	assert.Len(t, desc.Palette, 256)
	assert.Equal(t, img.Pix, decoded.Pix)
}

func TestEncode4BitPalette(t *testing.T) {
	// Odd width exercises the nibble packing.
	p := palette4()
	img := raster.New(3, 1)
	img.Set(0, 0, p[3]) // full red
	img.Set(1, 0, p[4]) // full green
	img.Set(2, 0, p[8]) // full blue

	buf := new(bytes.Buffer)
	require.NoError(t, Encode(buf, img, 4))

	desc, decoded, err := Decode(buf)
	require.NoError(t, err)

	assert.Equal(t, 4, desc.BitCount)
	assert.Len(t, desc.Palette, 16)
	assert.Equal(t, img.Pix, decoded.Pix)
}

func TestEncodeQuantizes(t *testing.T) {
	img := raster.New(1, 1)
	img.Set(0, 0, raster.Pixel{R: 0xff, G: 0x80, B: 0x40, A: 0xff})

	buf := new(bytes.Buffer)
	require.NoError(t, Encode(buf, img, 8))

	_, decoded, err := Decode(buf)
	require.NoError(t, err)

	// R 0xff -> bucket 7, G 0x80 -> bucket 4, B 0x40 -> bucket 1.
	assert.Equal(t, raster.Pixel{R: 0xff, G: 0x9f, B: 0x7f, A: 0xff}, decoded.At(0, 0))
}

func TestEncodeUnsupportedDepth(t *testing.T) {
	img := raster.New(1, 1)

	for _, bitCount := range []int{0, 1, 2, 12, 64} {
		assert.Equal(t, errEncodeDepth, Encode(new(bytes.Buffer), img, bitCount), "bitCount=%d", bitCount)
	}
}

func TestEncodeBadBuffer(t *testing.T) {
	img := &raster.Raster{W: 2, H: 2, Pix: make([]raster.Pixel, 3)}

	assert.Equal(t, errBufferSize, Encode(new(bytes.Buffer), img, 32))
	assert.Equal(t, errBufferSize, Encode(new(bytes.Buffer), nil, 32))
}
