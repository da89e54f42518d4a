package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/objfind/objfind/raster"
)

func grayPlane(w, h int, pix []uint8) *raster.Gray {
	return &raster.Gray{W: w, H: h, Pix: pix}
}

func TestNCCSelfMatch(t *testing.T) {
	scene := grayPlane(4, 4, []uint8{
		10, 20, 30, 40,
		50, 60, 70, 80,
		90, 100, 110, 120,
		130, 140, 150, 160,
	})
	templ := grayPlane(2, 2, []uint8{60, 70, 100, 110})

	// The template is the window at row 1, column 1.
	assert.InDelta(t, 1.0, ncc(scene, templ, 1, 1), 1e-12)
}

func TestNCCAntiCorrelated(t *testing.T) {
	scene := grayPlane(2, 2, []uint8{0, 255, 255, 0})
	templ := grayPlane(2, 2, []uint8{255, 0, 0, 255})

	assert.InDelta(t, -1.0, ncc(scene, templ, 0, 0), 1e-12)
}

func TestNCCMismatchScoresLower(t *testing.T) {
	scene := grayPlane(4, 2, []uint8{
		0, 255, 50, 200,
		255, 0, 10, 90,
	})
	templ := grayPlane(2, 2, []uint8{0, 255, 255, 0})

	match := ncc(scene, templ, 0, 0)
	miss := ncc(scene, templ, 0, 2)
	assert.True(t, match > miss, "match=%g miss=%g", match, miss)
}

func TestNCCFlatFallback(t *testing.T) {
	scene := grayPlane(2, 2, []uint8{100, 100, 100, 100})

	// Identical flat regions score a perfect match, never NaN.
	templ := grayPlane(2, 2, []uint8{100, 100, 100, 100})
	assert.InDelta(t, 1.0, ncc(scene, templ, 0, 0), 1e-12)

	// Differing means degrade the score proportionally.
	templ = grayPlane(2, 2, []uint8{200, 200, 200, 200})
	assert.InDelta(t, 1.0-100.0/255, ncc(scene, templ, 0, 0), 1e-12)
}

func TestNCCFlatTemplateOnTexturedScene(t *testing.T) {
	scene := grayPlane(2, 2, []uint8{0, 255, 255, 0})
	templ := grayPlane(2, 2, []uint8{128, 128, 128, 128})

	score := ncc(scene, templ, 0, 0)
	assert.False(t, score != score, "score must not be NaN")
	assert.InDelta(t, 1.0-0.5/255, score, 1e-12)
}
