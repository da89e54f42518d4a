package bmp

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/objfind/objfind/raster"
)

var (
	errEncodeDepth = errors.New("bmp: unsupported encode bit depth")
	errBufferSize  = errors.New("bmp: pixel buffer does not match dimensions")
)

type fileHeader struct {
	Signature  uint16
	Size       uint32
	Reserved   uint32
	DataOffset uint32
}

type infoHeader struct {
	HeaderSize    uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	PelsPerMeterX int32
	PelsPerMeterY int32
	ClrUsed       uint32
	ClrImportant  uint32
}

// v4Fields are the extended header fields written for bit-field output;
// the color-space fields stay zero.
type v4Fields struct {
	RedMask    uint32
	GreenMask  uint32
	BlueMask   uint32
	AlphaMask  uint32
	CsType     uint32
	Endpoints  [9]uint32
	GammaRed   uint32
	GammaGreen uint32
	GammaBlue  uint32
}

type encoder struct {
	w   io.Writer
	img *raster.Raster
}

// palette4 returns the fixed 16-entry palette allocating two bits to
// red and one bit each to green and blue.
func palette4() []raster.Pixel {
	p := make([]raster.Pixel, 16)
	for r := 0; r < 4; r++ {
		for g := 0; g < 2; g++ {
			for b := 0; b < 2; b++ {
				e := raster.Pixel{A: 0xff}
				if r > 0 {
					e.R = uint8(r<<6 | 0x3f)
				}
				if g > 0 {
					e.G = uint8(g<<7 | 0x7f)
				}
				if b > 0 {
					e.B = uint8(b<<7 | 0x7f)
				}
				p[r|g<<2|b<<3] = e
			}
		}
	}
	return p
}

func index4(p raster.Pixel) byte {
	return p.R>>6 | p.G>>7<<2 | p.B>>7<<3
}

// palette8 returns the fixed 256-entry palette allocating three bits
// each to red and green and two bits to blue.
func palette8() []raster.Pixel {
	p := make([]raster.Pixel, 256)
	for r := 0; r < 8; r++ {
		for g := 0; g < 8; g++ {
			for b := 0; b < 4; b++ {
				e := raster.Pixel{A: 0xff}
				if r > 0 {
					e.R = uint8(r<<5 | 0x1f)
				}
				if g > 0 {
					e.G = uint8(g<<5 | 0x1f)
				}
				if b > 0 {
					e.B = uint8(b<<6 | 0x3f)
				}
				p[r|g<<3|b<<6] = e
			}
		}
	}
	return p
}

func index8(p raster.Pixel) byte {
	return p.R>>5 | p.G>>5<<3 | p.B>>6<<6
}

func (e *encoder) writeHeaders(bitCount int, compression uint32, palette []raster.Pixel, masks *v4Fields) error {
	headerSize := infoHeaderSize
	if masks != nil {
		headerSize = v4HeaderSize
	}
	offset := fileHeaderSize + headerSize + 4*len(palette)
	sizeImage := lineWidth(e.img.W, bitCount) * e.img.H

	fh := fileHeader{
		Signature:  signature,
		Size:       uint32(offset + sizeImage),
		DataOffset: uint32(offset),
	}
	ih := infoHeader{
		HeaderSize:    uint32(headerSize),
		Width:         int32(e.img.W),
		Height:        int32(e.img.H),
		Planes:        1,
		BitCount:      uint16(bitCount),
		Compression:   compression,
		SizeImage:     uint32(sizeImage),
		PelsPerMeterX: 3780,
		PelsPerMeterY: 3780,
		ClrUsed:       uint32(len(palette)),
	}

	if err := binary.Write(e.w, binary.LittleEndian, fh); err != nil {
		return err
	}
	if err := binary.Write(e.w, binary.LittleEndian, ih); err != nil {
		return err
	}
	if masks != nil {
		if err := binary.Write(e.w, binary.LittleEndian, masks); err != nil {
			return err
		}
	}
	for _, p := range palette {
		if _, err := e.w.Write([]byte{p.B, p.G, p.R, p.A}); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodeBitFields(bitCount int, redMask, greenMask, blueMask, alphaMask uint32) error {
	// Plain BGR is the canonical 24-bit layout, so only the packed
	// 16 and 32 bit variants advertise bit-field compression.
	compression := CompressionNone
	var masks *v4Fields
	if bitCount != 24 {
		compression = CompressionBitFields
		masks = &v4Fields{
			RedMask:   redMask,
			GreenMask: greenMask,
			BlueMask:  blueMask,
			AlphaMask: alphaMask,
		}
	}
	if err := e.writeHeaders(bitCount, compression, nil, masks); err != nil {
		return err
	}

	bytesPerPixel := bitCount / 8
	line := make([]byte, lineWidth(e.img.W, bitCount))

	// Bottom scanline first, matching the positive stored height.
	for y := e.img.H - 1; y >= 0; y-- {
		for x := 0; x < e.img.W; x++ {
			word := packWord(e.img.At(x, y), redMask, greenMask, blueMask, alphaMask)
			for b := 0; b < bytesPerPixel; b++ {
				line[x*bytesPerPixel+b] = byte(word >> (8 * uint(b)))
			}
		}
		if _, err := e.w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodePaletted(bitCount int, palette []raster.Pixel, index func(raster.Pixel) byte) error {
	if err := e.writeHeaders(bitCount, CompressionNone, palette, nil); err != nil {
		return err
	}

	line := make([]byte, lineWidth(e.img.W, bitCount))

	for y := e.img.H - 1; y >= 0; y-- {
		for i := range line {
			line[i] = 0
		}
		for x := 0; x < e.img.W; x++ {
			i := index(e.img.At(x, y))
			switch {
			case bitCount == 8:
				line[x] = i
			case x&1 == 0:
				line[x>>1] = i << 4
			default:
				line[x>>1] |= i
			}
		}
		if _, err := e.w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes img to w at the requested bit depth. 32, 24 and 16 bit
// output uses fixed channel masks; 8 and 4 bit output quantizes against
// the fixed analytic palettes. Other depths fail.
func Encode(w io.Writer, img *raster.Raster, bitCount int) error {
	if img == nil || len(img.Pix) != img.W*img.H {
		return errBufferSize
	}
	e := encoder{w: w, img: img}

	switch bitCount {
	case 32:
		return e.encodeBitFields(32, 0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000)
	case 24:
		return e.encodeBitFields(24, 0x00ff0000, 0x0000ff00, 0x000000ff, 0)
	case 16:
		return e.encodeBitFields(16, 0x0000f800, 0x000007e0, 0x0000001f, 0)
	case 8:
		return e.encodePaletted(8, palette8(), index8)
	case 4:
		return e.encodePaletted(4, palette4(), index4)
	}
	return errEncodeDepth
}
