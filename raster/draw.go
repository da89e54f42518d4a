package raster

// DrawRect draws a one-pixel rectangle outline with its top-left corner
// at image coordinates (x, y) and the given extent, clipped to the
// raster bounds.
func DrawRect(r *Raster, x, y, w, h int, p Pixel) {
	if w < 1 || h < 1 || x >= r.W || y >= r.H || x+w <= 0 || y+h <= 0 {
		return
	}

	for i := clamp(y, 0, r.H-1); i <= clamp(y+h-1, 0, r.H-1); i++ {
		if x >= 0 && x < r.W {
			r.Set(x, i, p)
		}
		if x+w-1 >= 0 && x+w-1 < r.W {
			r.Set(x+w-1, i, p)
		}
	}
	for j := clamp(x, 0, r.W-1); j <= clamp(x+w-1, 0, r.W-1); j++ {
		if y >= 0 && y < r.H {
			r.Set(j, y, p)
		}
		if y+h-1 >= 0 && y+h-1 < r.H {
			r.Set(j, y+h-1, p)
		}
	}
}
