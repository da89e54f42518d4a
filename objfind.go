/*
Package objfind locates a template bitmap inside a larger scene bitmap
using a multi-scale normalized cross-correlation search.
*/
package objfind

import (
	"fmt"
	"log"
	"os"

	"github.com/objfind/objfind/bmp"
	"github.com/objfind/objfind/match"
	"github.com/objfind/objfind/raster"
)

type ObjFind struct {
	db     *RefDB
	config match.Config
	logger *log.Logger
}

// New returns a handle using the given reference database, which may be
// nil when no ground truth is available.
func New(db *RefDB, config match.Config, logger *log.Logger) *ObjFind {
	return &ObjFind{
		db:     db,
		config: config,
		logger: logger,
	}
}

// DecodeFile decodes a bitmap file into a raster.
func DecodeFile(path string) (*raster.Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	_, img, err := bmp.Decode(f)
	return img, err
}

// Match decodes the scene and template bitmaps and searches the scene
// for the template. A negative id, a nil database or a missing entry
// all search without a reference location.
func (o *ObjFind) Match(scenePath, templPath string, id int) (*match.Result, error) {
	scene, err := DecodeFile(scenePath)
	if err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	templ, err := DecodeFile(templPath)
	if err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}

	var ref *match.Point
	if o.db != nil && id >= 0 {
		if ref, err = o.db.FindReferenceByID(id); err != nil {
			return nil, err
		}
		if ref == nil {
			o.logger.Printf("no reference coordinates for id %d\n", id)
		}
	}

	return match.NewEngine(o.config).Search(scene, templ, ref)
}

// Annotate writes a 32-bit copy of the scene bitmap with a rectangle
// drawn at every candidate location.
func (o *ObjFind) Annotate(scenePath, outPath string, res *match.Result) error {
	scene, err := DecodeFile(scenePath)
	if err != nil {
		return err
	}

	for _, c := range res.Candidates {
		raster.DrawRect(scene, c.X, c.Y, c.TemplW, c.TemplH, raster.Pixel{G: 0xff, A: 0xff})
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return bmp.Encode(f, scene, 32)
}
