/*
Package bmp implements a decoder and encoder for the Windows bitmap
family of pixel encodings.

Decoding supports 1, 4 and 8 bit palette-indexed images, 16 bit packed
5-5-5 images, raw 24 and 32 bit images, RLE8 run-length compression and
16/32 bit images using arbitrary per-channel bit-field masks. Every
variant decodes to the same raster representation; row 0 of the raster
buffer is the bottom scanline regardless of the scan direction stored
in the header.

Encoding supports 32, 24 and 16 bit bit-field output and 8 and 4 bit
palette-indexed output using fixed analytic palettes.
*/
package bmp

import (
	"github.com/objfind/objfind/raster"
)

const (
	signature      = 0x4d42
	fileHeaderSize = 14
	infoHeaderSize = 40
	v4HeaderSize   = 108
)

// Compression codes as stored in the DIB header.
const (
	CompressionNone uint32 = iota
	CompressionRLE8
	CompressionRLE4
	CompressionBitFields
)

// Descriptor holds the decoded DIB header metadata for a bitmap. Width
// and Height are always positive; a negative stored height is recorded
// as TopDown instead.
type Descriptor struct {
	Width       int
	Height      int
	TopDown     bool
	BitCount    int
	Compression uint32

	RedMask   uint32
	GreenMask uint32
	BlueMask  uint32
	AlphaMask uint32

	// Palette is nil for bit depths above 8.
	Palette []raster.Pixel
}

func paletteSize(bitCount int) int {
	switch bitCount {
	case 1:
		return 2
	case 4:
		return 16
	case 8:
		return 256
	}
	return 0
}

// lineWidth returns the 4-byte-aligned stored width of one scanline.
func lineWidth(width, bitCount int) int {
	return ((width*bitCount+7)/8 + 3) &^ 3
}
