package bmp

import (
	"encoding/binary"
	"errors"
	"io"
	"io/ioutil"

	"github.com/objfind/objfind/raster"
)

var (
	errSignature   = errors.New("bmp: bad signature")
	errTruncated   = errors.New("bmp: truncated image data")
	errHeader      = errors.New("bmp: unsupported DIB header")
	errDepth       = errors.New("bmp: unsupported bit depth")
	errCompression = errors.New("bmp: unsupported compression")
	errRLE4        = errors.New("bmp: RLE4 compression is not supported")
	errRLE         = errors.New("bmp: malformed RLE8 stream")
	errBadPalette  = errors.New("bmp: palette index out of range")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type decoder struct {
	r   io.Reader
	pos int

	desc       Descriptor
	headerSize int
	colorsUsed int
	dataOffset int

	img *raster.Raster
}

func (d *decoder) read(b []byte) error {
	if err := readFull(d.r, b); err != nil {
		if err == io.ErrUnexpectedEOF {
			return errTruncated
		}
		return err
	}
	d.pos += len(b)
	return nil
}

// skipTo discards stream bytes up to the given absolute offset.
func (d *decoder) skipTo(off int) error {
	if off < d.pos {
		return errHeader
	}
	n, err := io.CopyN(ioutil.Discard, d.r, int64(off-d.pos))
	d.pos += int(n)
	if err != nil {
		if err == io.EOF {
			return errTruncated
		}
		return err
	}
	return nil
}

func (d *decoder) readFileHeader() error {
	var tmp [fileHeaderSize]byte
	if err := d.read(tmp[:]); err != nil {
		return err
	}
	if binary.LittleEndian.Uint16(tmp[0:2]) != signature {
		return errSignature
	}
	d.dataOffset = int(binary.LittleEndian.Uint32(tmp[10:14]))
	return nil
}

func (d *decoder) readInfoHeader() error {
	var tmp [infoHeaderSize]byte
	if err := d.read(tmp[0:4]); err != nil {
		return err
	}
	d.headerSize = int(binary.LittleEndian.Uint32(tmp[0:4]))
	if d.headerSize < infoHeaderSize {
		return errHeader
	}
	if err := d.read(tmp[4:]); err != nil {
		return err
	}

	width := int(int32(binary.LittleEndian.Uint32(tmp[4:8])))
	height := int(int32(binary.LittleEndian.Uint32(tmp[8:12])))
	if width < 0 {
		width = -width
	}
	if height < 0 {
		height = -height
		d.desc.TopDown = true
	}
	d.desc.Width = width
	d.desc.Height = height
	d.desc.BitCount = int(binary.LittleEndian.Uint16(tmp[14:16]))
	d.desc.Compression = binary.LittleEndian.Uint32(tmp[16:20])
	d.colorsUsed = int(binary.LittleEndian.Uint32(tmp[32:36]))

	if width == 0 || height == 0 {
		return errHeader
	}

	// Channel masks live inside the header from the V2/V4 variants
	// onwards, but a plain 40-byte header with BI_BITFIELDS stores
	// three mask words immediately after it.
	if d.headerSize >= 52 || (d.headerSize == infoHeaderSize && d.desc.Compression == CompressionBitFields) {
		var masks [12]byte
		if err := d.read(masks[:]); err != nil {
			return err
		}
		d.desc.RedMask = binary.LittleEndian.Uint32(masks[0:4])
		d.desc.GreenMask = binary.LittleEndian.Uint32(masks[4:8])
		d.desc.BlueMask = binary.LittleEndian.Uint32(masks[8:12])
	}
	if d.headerSize >= 56 {
		var alpha [4]byte
		if err := d.read(alpha[:]); err != nil {
			return err
		}
		d.desc.AlphaMask = binary.LittleEndian.Uint32(alpha[:])
	}

	// Masks trailing a plain 40-byte header sit beyond HeaderSize, so
	// only skip forward when extended header fields remain unread.
	if off := fileHeaderSize + d.headerSize; off > d.pos {
		return d.skipTo(off)
	}
	return nil
}

func (d *decoder) readPalette() error {
	size := paletteSize(d.desc.BitCount)
	if size == 0 {
		return nil
	}

	n := size
	if d.colorsUsed > 0 && d.colorsUsed < size {
		n = d.colorsUsed
	}

	// Always allocate the full table so any index decodes; entries
	// beyond ColorsUsed stay zero.
	d.desc.Palette = make([]raster.Pixel, size)
	var tmp [4]byte
	for i := 0; i < n; i++ {
		if err := d.read(tmp[:]); err != nil {
			return err
		}
		// Entries are stored as BGRA records.
		d.desc.Palette[i] = raster.Pixel{R: tmp[2], G: tmp[1], B: tmp[0], A: tmp[3]}
	}
	return nil
}

// setStored writes a pixel addressed by its position within the stored
// scanline order, normalizing the scan direction so that raster row 0
// is always the bottom scanline.
func (d *decoder) setStored(x, line int, p raster.Pixel) {
	y := d.desc.Height - line - 1
	if d.desc.TopDown {
		y = line
	}
	d.img.Set(x, y, p)
}

func (d *decoder) paletteAt(index byte) (raster.Pixel, error) {
	if int(index) >= len(d.desc.Palette) {
		return raster.Pixel{}, errBadPalette
	}
	return d.desc.Palette[index], nil
}

func (d *decoder) decodeUncompressed() error {
	line := make([]byte, lineWidth(d.desc.Width, d.desc.BitCount))

	for i := 0; i < d.desc.Height; i++ {
		if err := d.read(line); err != nil {
			return err
		}

		for j := 0; j < d.desc.Width; j++ {
			var p raster.Pixel
			var err error

			switch d.desc.BitCount {
			case 1:
				// Eight pixels per byte, most significant bit first.
				p, err = d.paletteAt(line[j>>3] >> (7 - uint(j&7)) & 1)
			case 4:
				// Two pixels per byte, high nibble first.
				nibble := line[j>>1] >> 4
				if j&1 == 1 {
					nibble = line[j>>1] & 0x0f
				}
				p, err = d.paletteAt(nibble)
			case 8:
				p, err = d.paletteAt(line[j])
			case 16:
				// Packed 5-5-5.
				word := binary.LittleEndian.Uint16(line[j*2:])
				p = raster.Pixel{
					R: uint8(word >> 10 & 0x1f << 3),
					G: uint8(word >> 5 & 0x1f << 3),
					B: uint8(word & 0x1f << 3),
					A: 0xff,
				}
			case 24:
				p = raster.Pixel{R: line[j*3+2], G: line[j*3+1], B: line[j*3], A: 0xff}
			case 32:
				p = raster.Pixel{R: line[j*4+2], G: line[j*4+1], B: line[j*4], A: line[j*4+3]}
			default:
				return errDepth
			}
			if err != nil {
				return err
			}

			d.setStored(j, i, p)
		}
	}

	return nil
}

func (d *decoder) decodeRLE8() error {
	if d.desc.BitCount != 8 {
		return errCompression
	}

	var x, line int
	var tmp [2]byte

	for {
		if err := d.read(tmp[:]); err != nil {
			return err
		}
		count, value := int(tmp[0]), tmp[1]

		switch {
		case count > 0:
			// Replicated run of one palette color.
			p, err := d.paletteAt(value)
			if err != nil {
				return err
			}
			if x+count > d.desc.Width || line >= d.desc.Height {
				return errRLE
			}
			for k := 0; k < count; k++ {
				d.setStored(x+k, line, p)
			}
			x += count
		case value == 0: // end of line
			x = 0
			line++
		case value == 1: // end of bitmap
			return nil
		case value == 2: // cursor delta
			if err := d.read(tmp[:]); err != nil {
				return err
			}
			x += int(int8(tmp[0]))
			line += int(int8(tmp[1]))
			if x < 0 || line < 0 {
				return errRLE
			}
		default:
			// Literal run of palette indices, padded to a 2-byte
			// boundary.
			run := int(value)
			if x+run > d.desc.Width || line >= d.desc.Height {
				return errRLE
			}
			literal := make([]byte, run+run&1)
			if err := d.read(literal); err != nil {
				return err
			}
			for k := 0; k < run; k++ {
				p, err := d.paletteAt(literal[k])
				if err != nil {
					return err
				}
				d.setStored(x+k, line, p)
			}
			x += run
		}
	}
}

func (d *decoder) decodeBitFields() error {
	if d.desc.BitCount != 16 && d.desc.BitCount != 32 {
		return errCompression
	}

	redBits := maskBits(d.desc.RedMask)
	greenBits := maskBits(d.desc.GreenMask)
	blueBits := maskBits(d.desc.BlueMask)
	alphaBits := maskBits(d.desc.AlphaMask)

	line := make([]byte, lineWidth(d.desc.Width, d.desc.BitCount))

	for i := 0; i < d.desc.Height; i++ {
		if err := d.read(line); err != nil {
			return err
		}

		for j := 0; j < d.desc.Width; j++ {
			var word uint32
			if d.desc.BitCount == 16 {
				word = uint32(binary.LittleEndian.Uint16(line[j*2:]))
			} else {
				word = binary.LittleEndian.Uint32(line[j*4:])
			}

			d.setStored(j, i, raster.Pixel{
				R: uint8(rescale(component(word, d.desc.RedMask), redBits, 8)),
				G: uint8(rescale(component(word, d.desc.GreenMask), greenBits, 8)),
				B: uint8(rescale(component(word, d.desc.BlueMask), blueBits, 8)),
				A: uint8(rescale(component(word, d.desc.AlphaMask), alphaBits, 8)),
			})
		}
	}

	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := d.readFileHeader(); err != nil {
		return err
	}
	if err := d.readInfoHeader(); err != nil {
		return err
	}
	if err := d.readPalette(); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	if err := d.skipTo(d.dataOffset); err != nil {
		return err
	}

	d.img = raster.New(d.desc.Width, d.desc.Height)

	switch d.desc.Compression {
	case CompressionNone:
		return d.decodeUncompressed()
	case CompressionRLE8:
		return d.decodeRLE8()
	case CompressionRLE4:
		return errRLE4
	case CompressionBitFields:
		return d.decodeBitFields()
	}

	return errCompression
}

// Decode reads a bitmap from r and returns its header metadata together
// with the decoded pixel raster.
func Decode(r io.Reader) (*Descriptor, *raster.Raster, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, nil, err
	}
	return &d.desc, d.img, nil
}

// DecodeConfig returns the header metadata of a bitmap without decoding
// the pixel data.
func DecodeConfig(r io.Reader) (*Descriptor, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return nil, err
	}
	return &d.desc, nil
}
