// Package composer fills values that have no extracted fragment by
// compositing images of their decomposition tokens. It runs ascending
// fixed-point passes over the store: each pass composes every value
// whose tokens are already covered, and the loop ends when a full pass
// produces nothing new. Whatever is still missing then is an
// unrecoverable gap.
package composer

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/inkbound/numberbook/internal/store"
)

// FatalDigitError aborts the run: without every base digit 0-9 no value
// above 9 can ever be composed.
type FatalDigitError struct {
	Missing []int
}

func (e *FatalDigitError) Error() string {
	return fmt.Sprintf("no fragment extracted for base digit(s) %v; composition cannot proceed", e.Missing)
}

// Result summarizes a composition run.
type Result struct {
	Composed int
	Passes   int
	Gaps     []int
}

// Composer composes missing values from fragments already in the store.
type Composer struct {
	store     *store.Store
	maxNumber int
	spacing   int
	workers   int
}

// New returns a Composer writing into st for values in [1, maxNumber],
// placing spacing pixels between composited tokens.
func New(st *store.Store, maxNumber, spacing, workers int) *Composer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Composer{store: st, maxNumber: maxNumber, spacing: spacing, workers: workers}
}

// Run executes fixed-point composition passes until convergence and
// returns the composition result, including remaining gaps. It fails
// fast with FatalDigitError if any base digit is uncovered.
func (c *Composer) Run(ctx context.Context) (Result, error) {
	if err := c.checkDigits(); err != nil {
		return Result{}, err
	}

	var res Result
	for {
		ready := c.resolvable()
		if len(ready) == 0 {
			break
		}
		res.Passes++

		fragments, err := c.composePass(ctx, ready)
		if err != nil {
			return Result{}, err
		}
		// Writes happen after the pass barrier, in ascending order, so
		// the next pass sees a consistent store.
		for _, f := range fragments {
			if err := c.store.Put(f); err != nil {
				return Result{}, err
			}
		}
		res.Composed += len(fragments)
		slog.Debug("composition pass complete", "pass", res.Passes, "composed", len(fragments))
	}

	res.Gaps = c.store.Gaps(c.maxNumber)
	return res, nil
}

// checkDigits verifies base digit coverage (0-9).
func (c *Composer) checkDigits() error {
	var missing []int
	for d := 0; d <= 9; d++ {
		if !c.store.Has(d) {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		return &FatalDigitError{Missing: missing}
	}
	return nil
}

// resolvable returns, ascending, every missing value whose tokens are
// all covered by the store right now.
func (c *Composer) resolvable() []int {
	var ready []int
	for v := 1; v <= c.maxNumber; v++ {
		if c.store.Has(v) {
			continue
		}
		if Primitive(v) {
			continue // cannot be built from anything smaller
		}
		ok := true
		for _, tok := range Tokens(v) {
			if !c.store.Has(tok) {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, v)
		}
	}
	return ready
}

// composePass composites all ready values concurrently. The store is
// only read during the pass; results are returned for insertion after
// the barrier.
func (c *Composer) composePass(ctx context.Context, ready []int) ([]*store.Fragment, error) {
	fragments := make([]*store.Fragment, len(ready))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, v := range ready {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			toks := Tokens(v)
			parts := make([]image.Image, len(toks))
			for j, tok := range toks {
				f := c.store.Canonical(tok)
				if f == nil {
					return fmt.Errorf("token %d for value %d vanished mid-pass", tok, v)
				}
				parts[j] = f.Image
			}
			fragments[i] = &store.Fragment{
				Value:  v,
				Image:  compositeHorizontal(parts, c.spacing),
				Origin: store.OriginComposed,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fragments, nil
}
