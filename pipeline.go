package objfind

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/objfind/objfind/match"
)

// Batch runs pair scene bitmaps with their templates by number:
// test007.bmp matches obj007.bmp.
var scenePattern = regexp.MustCompile(`^test(\d+)\.bmp$`)

type pair struct {
	id    int
	scene string
	templ string
}

type pairResult struct {
	pair
	result *match.Result
}

func (o *ObjFind) findPairs(ctx context.Context, base string) (<-chan pair, <-chan error, error) {
	out := make(chan pair)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			m := scenePattern.FindStringSubmatch(info.Name())
			if m == nil {
				return nil
			}
			id, err := strconv.Atoi(m[1])
			if err != nil {
				return err
			}

			templ := filepath.Join(filepath.Dir(file), fmt.Sprintf("obj%0*d.bmp", len(m[1]), id))
			if _, err := os.Stat(templ); err != nil {
				if os.IsNotExist(err) {
					o.logger.Printf("No template for \"%s\"\n", file)
					return nil
				}
				return err
			}

			select {
			case out <- pair{id: id, scene: file, templ: templ}:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (o *ObjFind) matchWorker(ctx context.Context, wg *sync.WaitGroup, in <-chan pair, out chan<- pairResult) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer wg.Done()
		for p := range in {
			res, err := o.Match(p.scene, p.templ, p.id)
			if err != nil {
				errc <- fmt.Errorf("%s: %w", p.scene, err)
				return
			}

			select {
			case out <- pairResult{pair: p, result: res}:
			case <-ctx.Done():
				errc <- errors.New("match cancelled")
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan matches every numbered scene/template pair below dir and writes
// one report block per pair in pair order. With annotate set, each
// scene also gets an output_ copy with the candidates outlined.
func (o *ObjFind) Scan(dir string, workers int, report *Report, annotate bool) error {
	base, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if workers < 1 {
		workers = 1
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	pairs, errc, err := o.findPairs(ctx, base)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	results := make(chan pairResult)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		errc, err := o.matchWorker(ctx, &wg, pairs, results)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var collected []pairResult
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range results {
			collected = append(collected, r)
		}
	}()

	if err := waitForPipeline(errcList...); err != nil {
		return err
	}
	<-done

	// Workers finish out of order; report blocks stay in pair order.
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].id < collected[j].id
	})

	for _, r := range collected {
		if err := report.Write(filepath.Base(r.scene), r.result); err != nil {
			return err
		}
		if annotate {
			out := filepath.Join(filepath.Dir(r.scene), "output_"+filepath.Base(r.scene))
			if err := o.Annotate(r.scene, out, r.result); err != nil {
				return err
			}
		}
	}

	return nil
}
