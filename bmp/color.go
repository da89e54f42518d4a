package bmp

import (
	"github.com/objfind/objfind/raster"
)

// maskBits returns the number of set bits in mask.
func maskBits(mask uint32) uint {
	var n uint
	for mask != 0 {
		mask &= mask - 1
		n++
	}
	return n
}

// maskShift returns the bit position of the lowest set bit in mask.
func maskShift(mask uint32) uint {
	return maskBits((mask & (^mask + 1)) - 1)
}

// component extracts the channel described by mask from a packed pixel
// word and right-aligns it.
func component(word, mask uint32) uint32 {
	return (word & mask) >> maskShift(mask)
}

// widthMask returns a mask covering the n lowest bits.
func widthMask(n uint) uint32 {
	if n >= 32 {
		return 0xffffffff
	}
	return 1<<n - 1
}

// rescale converts a channel value from one bit width to another.
// Widening backfills the newly exposed low bits so that a full-scale
// value stays full scale (a 5-bit 31 becomes 255, not 248); narrowing
// simply drops the low bits.
func rescale(v uint32, from, to uint) uint32 {
	if to < from {
		return v >> (from - to)
	}
	v <<= to - from
	if v > 0 {
		v |= widthMask(to - from)
	}
	return v
}

// packWord assembles a pixel into a packed word according to the given
// channel masks, rescaling each 8-bit channel to the width of its mask.
func packWord(p raster.Pixel, redMask, greenMask, blueMask, alphaMask uint32) uint32 {
	return rescale(uint32(p.R), 8, maskBits(redMask))<<maskShift(redMask) |
		rescale(uint32(p.G), 8, maskBits(greenMask))<<maskShift(greenMask) |
		rescale(uint32(p.B), 8, maskBits(blueMask))<<maskShift(blueMask) |
		rescale(uint32(p.A), 8, maskBits(alphaMask))<<maskShift(alphaMask)
}
