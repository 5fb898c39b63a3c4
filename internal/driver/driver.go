// Package driver runs lowering over many translation units at once.
// Lowering one unit is a single-threaded pass; independent units may
// run in parallel.
package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"sable/internal/ast"
	"sable/internal/ir"
	"sable/internal/types"
)

// Unit pairs a translation unit with the interner it was type-checked
// against. Units must not share an interner: lowering interns types.
type Unit struct {
	TU    *ast.TranslationUnit
	Types *types.Interner
}

// LowerAll lowers every unit, at most jobs at a time (NumCPU when
// jobs <= 0). Results are in input order; the first failure aborts
// the remaining work.
func LowerAll(ctx context.Context, units []Unit, opts ir.Options, jobs int) ([]*ir.Module, error) {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	mods := make([]*ir.Module, len(units))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, u := range units {
		i, u := i, u // per-iteration copies; required under the go 1.21 language version
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := ir.ConstructModule(u.TU, u.Types, opts)
			if err != nil {
				name := ""
				if u.TU != nil {
					name = u.TU.Name
				}
				return fmt.Errorf("lowering %s: %w", name, err)
			}
			mods[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mods, nil
}
