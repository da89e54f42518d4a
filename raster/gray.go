package raster

// Gray is a single-channel luma plane stored top-down row-major, the
// coordinate frame the matcher slides its windows in.
type Gray struct {
	W, H int
	Pix  []uint8
}

// Luma returns the integer-weighted luma approximation of p.
func Luma(p Pixel) uint8 {
	return uint8((int(p.R)*76 + int(p.G)*150 + int(p.B)*30) >> 8)
}

// Grayscale extracts a luma plane from r. The source raster is left
// untouched.
func Grayscale(r *Raster) *Gray {
	g := &Gray{
		W:   r.W,
		H:   r.H,
		Pix: make([]uint8, r.W*r.H),
	}
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			g.Pix[y*g.W+x] = Luma(r.At(x, y))
		}
	}
	return g
}

// At returns the luma value at image coordinates (x, y).
func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.W+x]
}
