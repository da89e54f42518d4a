package raster

import (
	"errors"
)

var errUpscale = errors.New("raster: upscaling is not supported")

// Half-weights of the separable 5-tap Gaussian kernel: center, ±1, ±2.
var blurKernel = [3]float64{0.4026, 0.2442, 0.0545}

// GaussianBlur runs one separable 5-tap Gaussian pass over r in place:
// a horizontal pass over every row followed by a vertical pass over
// every column. Samples beyond the border replicate the nearest edge
// pixel, so a constant-color raster is a fixed point of the operator.
func GaussianBlur(r *Raster) {
	tmp := make([]Pixel, len(r.Pix))

	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			tmp[r.Index(x, y)] = blurAt(r, x, y, true)
		}
	}
	copy(r.Pix, tmp)

	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			tmp[r.Index(x, y)] = blurAt(r, x, y, false)
		}
	}
	copy(r.Pix, tmp)
}

func blurAt(r *Raster, x, y int, horizontal bool) Pixel {
	p := r.At(x, y)
	sumR := float64(p.R) * blurKernel[0]
	sumG := float64(p.G) * blurKernel[0]
	sumB := float64(p.B) * blurKernel[0]

	for m := 1; m <= 2; m++ {
		var lo, hi Pixel
		if horizontal {
			lo = r.At(clamp(x-m, 0, r.W-1), y)
			hi = r.At(clamp(x+m, 0, r.W-1), y)
		} else {
			lo = r.At(x, clamp(y-m, 0, r.H-1))
			hi = r.At(x, clamp(y+m, 0, r.H-1))
		}
		sumR += (float64(lo.R) + float64(hi.R)) * blurKernel[m]
		sumG += (float64(lo.G) + float64(hi.G)) * blurKernel[m]
		sumB += (float64(lo.B) + float64(hi.B)) * blurKernel[m]
	}

	// Round so the unit-sum kernel leaves constant regions untouched.
	return Pixel{R: uint8(sumR + 0.5), G: uint8(sumG + 0.5), B: uint8(sumB + 0.5), A: p.A}
}

// GaussianBlurN repeats the blur operator. Repeated narrow passes are
// the prefilter for coarser search scales; there is no single-pass
// wide-kernel equivalent of the compounding they produce.
func GaussianBlurN(r *Raster, times int) {
	for i := 0; i < times; i++ {
		GaussianBlur(r)
	}
}

// NearestResample returns a downscaled copy of r. Both scale factors
// must be in (0, 1]; output dimensions are floor(W*scaleW) by
// floor(H*scaleH) and each output pixel samples the nearest source
// pixel, clamped to the source bounds.
func NearestResample(r *Raster, scaleW, scaleH float64) (*Raster, error) {
	if scaleW <= 0 || scaleH <= 0 || scaleW > 1 || scaleH > 1 {
		return nil, errUpscale
	}

	dw := int(float64(r.W) * scaleW)
	dh := int(float64(r.H) * scaleH)
	if dw < 1 || dh < 1 {
		return nil, errUpscale
	}

	dst := New(dw, dh)
	for y := 0; y < dh; y++ {
		srcY := clamp(int(float64(y)/scaleH), 0, r.H-1)
		for x := 0; x < dw; x++ {
			srcX := clamp(int(float64(x)/scaleW), 0, r.W-1)
			dst.Set(x, y, r.At(srcX, srcY))
		}
	}
	return dst, nil
}

// Halve is the legacy fixed-halving variant: it keeps every second
// pixel in both directions, yielding ceil(W/2) by ceil(H/2) output.
func Halve(r *Raster) *Raster {
	dst := New((r.W+1)/2, (r.H+1)/2)
	for y := 0; y < r.H; y += 2 {
		for x := 0; x < r.W; x += 2 {
			dst.Set(x/2, y/2, r.At(x, y))
		}
	}
	return dst
}
