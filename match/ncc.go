package match

import (
	"math"

	"github.com/objfind/objfind/raster"
)

// ncc computes the normalized cross-correlation coefficient of the
// template against the scene window whose top-left corner is at column
// j, row i. Accumulation is row-major so results are reproducible.
//
// A zero-variance window or template has no structure to correlate
// against and would divide the coefficient by zero. Instead of
// producing NaN, such windows score by mean intensity similarity in
// [0, 1], which lets flat templates still rank against flat regions.
func ncc(scene, templ *raster.Gray, i, j int) float64 {
	n := templ.W * templ.H

	var sceneSum, templSum int
	for m := 0; m < templ.H; m++ {
		for k := 0; k < templ.W; k++ {
			sceneSum += int(scene.At(j+k, i+m))
			templSum += int(templ.At(k, m))
		}
	}
	sceneMean := float64(sceneSum) / float64(n)
	templMean := float64(templSum) / float64(n)

	var sceneVar, templVar, cross float64
	for m := 0; m < templ.H; m++ {
		for k := 0; k < templ.W; k++ {
			ds := float64(scene.At(j+k, i+m)) - sceneMean
			dt := float64(templ.At(k, m)) - templMean
			sceneVar += ds * ds
			templVar += dt * dt
			cross += ds * dt
		}
	}

	if sceneVar == 0 || templVar == 0 {
		return 1 - math.Abs(sceneMean-templMean)/255
	}

	// Population standard deviations, no bias correction.
	sceneDev := math.Sqrt(sceneVar / float64(n))
	templDev := math.Sqrt(templVar / float64(n))

	return cross / (sceneDev * templDev * float64(n))
}
