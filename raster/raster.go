/*
Package raster provides the pixel container shared by the bitmap codec
and the matching pipeline.

A Raster owns a contiguous row-major buffer in which row 0 holds the
bottom scanline of the displayed image. The accessors take image
coordinates instead: x grows to the right and y grows downwards from
the top scanline, so every stage of the pipeline addresses pixels the
way they appear on screen.
*/
package raster

// Pixel is a single four-channel pixel value.
type Pixel struct {
	R, G, B, A uint8
}

// Raster is a W by H pixel buffer. len(Pix) == W*H always holds.
type Raster struct {
	W, H int
	Pix  []Pixel
}

// New returns a zeroed raster of the given dimensions.
func New(w, h int) *Raster {
	return &Raster{
		W:   w,
		H:   h,
		Pix: make([]Pixel, w*h),
	}
}

// Index returns the buffer offset of the pixel at image coordinates
// (x, y).
func (r *Raster) Index(x, y int) int {
	return (r.H-y-1)*r.W + x
}

// At returns the pixel at image coordinates (x, y).
func (r *Raster) At(x, y int) Pixel {
	return r.Pix[r.Index(x, y)]
}

// Set stores a pixel at image coordinates (x, y).
func (r *Raster) Set(x, y int, p Pixel) {
	r.Pix[r.Index(x, y)] = p
}

// Clone returns an independent copy of r.
func (r *Raster) Clone() *Raster {
	dup := New(r.W, r.H)
	copy(dup.Pix, r.Pix)
	return dup
}

func clamp(x, min, max int) int {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
