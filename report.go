package objfind

import (
	"fmt"
	"io"
	"time"

	"github.com/objfind/objfind/match"
)

// Report writes match results as text, one block per scene/template
// pair: a header, one line per candidate and an average-accuracy plus
// elapsed-time summary.
type Report struct {
	w io.Writer
}

func NewReport(w io.Writer) *Report {
	return &Report{w: w}
}

func (r *Report) Write(name string, res *match.Result) error {
	if _, err := fmt.Fprintf(r.w, "%s:\ncoordinates accuracy IoU\n", name); err != nil {
		return err
	}

	var sum float64
	for _, c := range res.Candidates {
		if _, err := fmt.Fprintf(r.w, "(%d, %d) %g %g\n", c.X, c.Y, c.Accuracy, c.IoU); err != nil {
			return err
		}
		sum += c.Accuracy
	}

	var average float64
	if len(res.Candidates) > 0 {
		average = sum / float64(len(res.Candidates))
	}

	_, err := fmt.Fprintf(r.w, "average precision:%g processing time(ms):%g\n\n",
		average, float64(res.Elapsed)/float64(time.Millisecond))
	return err
}
