/*
Package match implements a multi-scale sliding-window template search
over grayscale rasters using normalized cross-correlation.
*/
package match

import (
	"errors"
	"sort"
	"time"

	"github.com/objfind/objfind/raster"
)

var errMissingInput = errors.New("match: scene and template rasters are required")

// Config is the search schedule. The scale grid steps independent
// width and height factors across [ScaleMin, ScaleMax]; every value is
// calibration data, not an algorithmic invariant.
type Config struct {
	ScaleMin       float64 `yaml:"scale_min"`
	ScaleMax       float64 `yaml:"scale_max"`
	ScaleStep      float64 `yaml:"scale_step"`
	NCCThreshold   float64 `yaml:"ncc_threshold"`
	AcceptAccuracy float64 `yaml:"accept_accuracy"`
	BlurPasses     int     `yaml:"blur_passes"`
	TopK           int     `yaml:"top_k"`
}

// DefaultConfig returns the schedule the tool was calibrated with.
func DefaultConfig() Config {
	return Config{
		ScaleMin:       0.05,
		ScaleMax:       0.15,
		ScaleStep:      0.05,
		NCCThreshold:   0.6,
		AcceptAccuracy: 0.8,
		BlurPasses:     3,
		TopK:           5,
	}
}

// Point is a location in scene coordinates, y growing downwards.
type Point struct {
	X, Y int
}

// Candidate is one scored template location in scene coordinates.
type Candidate struct {
	X, Y     int
	Score    float64 // NCC at the matched offset
	Accuracy float64
	IoU      float64

	// Back-projected template extent that produced the score.
	TemplW, TemplH int
}

// Result carries the ranked candidates of one search together with the
// elapsed wall time.
type Result struct {
	Candidates []Candidate
	Elapsed    time.Duration
}

// Engine runs searches with a fixed configuration.
type Engine struct {
	config Config
}

func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

const scaleEpsilon = 1e-9

// Search slides the template over the prefiltered, resampled scene for
// every scale hypothesis. Width factors are tried largest first, height
// factors smallest first. Candidates are rebuilt per hypothesis; the
// search stops early once a hypothesis's best candidate reaches the
// acceptance accuracy, and the final hypothesis's candidates are
// returned truncated to the top TopK by accuracy.
//
// When ref is non-nil, accuracy and IoU are rectangle-overlap scores
// against the reference location; candidates that do not overlap it at
// all are dropped. Without a reference the NCC score stands in as the
// accuracy so that ranking and early exit still apply.
func (e *Engine) Search(scene, templ *raster.Raster, ref *Point) (*Result, error) {
	if scene == nil || templ == nil {
		return nil, errMissingInput
	}

	start := time.Now()

	var candidates []Candidate
	found := false

	for scaleW := e.config.ScaleMax; scaleW >= e.config.ScaleMin-scaleEpsilon && !found; scaleW -= e.config.ScaleStep {
		for scaleH := e.config.ScaleMin; scaleH <= e.config.ScaleMax+scaleEpsilon; scaleH += e.config.ScaleStep {
			hypothesis, err := e.searchScale(scene, templ, ref, scaleW, scaleH)
			if err != nil {
				return nil, err
			}
			candidates = hypothesis

			if len(candidates) > 0 && candidates[0].Accuracy >= e.config.AcceptAccuracy {
				found = true
				break
			}
		}
	}

	if len(candidates) > e.config.TopK {
		candidates = candidates[:e.config.TopK]
	}

	return &Result{
		Candidates: candidates,
		Elapsed:    time.Since(start),
	}, nil
}

func (e *Engine) searchScale(scene, templ *raster.Raster, ref *Point, scaleW, scaleH float64) ([]Candidate, error) {
	if int(float64(scene.W)*scaleW) < 1 || int(float64(scene.H)*scaleH) < 1 {
		// Scene collapses to nothing at this scale.
		return nil, nil
	}

	work := scene.Clone()
	raster.GaussianBlurN(work, e.config.BlurPasses)
	work, err := raster.NearestResample(work, scaleW, scaleH)
	if err != nil {
		return nil, err
	}

	sceneGray := raster.Grayscale(work)
	templGray := raster.Grayscale(templ)

	rows := sceneGray.H - templGray.H + 1
	cols := sceneGray.W - templGray.W + 1
	if rows < 1 || cols < 1 {
		// Template does not fit the resampled scene at this scale.
		return nil, nil
	}

	scaledW := int(float64(templ.W) / scaleW)
	scaledH := int(float64(templ.H) / scaleH)

	var candidates []Candidate
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			score := ncc(sceneGray, templGray, i, j)
			if score <= e.config.NCCThreshold {
				continue
			}

			c := Candidate{
				X:      clamp(int(float64(j)/scaleW), 0, scene.W-1),
				Y:      clamp(int(float64(i)/scaleH), 0, scene.H-1),
				Score:  score,
				TemplW: scaledW,
				TemplH: scaledH,
			}

			if ref != nil {
				accuracy, iou, overlaps := overlap(c.X, c.Y, scaledW, scaledH, *ref)
				if !overlaps {
					continue
				}
				c.Accuracy, c.IoU = accuracy, iou
			} else {
				c.Accuracy = score
			}

			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Accuracy > candidates[b].Accuracy
	})

	return candidates, nil
}

// overlap scores a candidate box against an equally sized box at the
// reference location: accuracy is intersection over the template area,
// IoU intersection over union.
func overlap(x, y, w, h int, ref Point) (accuracy, iou float64, ok bool) {
	dx := abs(x - ref.X)
	dy := abs(y - ref.Y)
	if dx >= w || dy >= h {
		return 0, 0, false
	}

	area := w * h
	inter := (w - dx) * (h - dy)
	return float64(inter) / float64(area), float64(inter) / float64(2*area-inter), true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
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
