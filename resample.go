/*
Copyright © 2026 the GMCorr authors.
This file is part of GMCorr.

GMCorr is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GMCorr is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GMCorr.  If not, see <http://www.gnu.org/licenses/>.
*/

package gmcorr

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// Resample generates a new residual field from the stored solves of r and
// the standard-normal draws rand. No distances or covariances are
// recalculated. Given the draws used by Simulate, the result is identical
// to the simulated field.
func (r *Realization) Resample(rand []float64) ([]float64, error) {
	if !r.Complete() {
		return nil, fmt.Errorf("gmcorr: resample: realization is incomplete (%d of %d cells)", r.Simulated, len(r.Cells))
	}
	if len(rand) != len(r.Cells) {
		return nil, fmt.Errorf("%w: %d random values for %d cells", ErrInvalidConfig, len(rand), len(r.Cells))
	}
	eps := make([]float64, len(r.Cells))
	for num := range r.Cells {
		eps[num] = r.Cells[num].value(eps, rand[num])
	}
	return eps, nil
}

// ResampleMany generates one residual field for each set of draws in
// rands. Fields are generated concurrently; each is independent of the
// others.
func (r *Realization) ResampleMany(ctx context.Context, rands [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rands))
	errs := make([]error, len(rands))
	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for ii := pp; ii < len(rands); ii += nprocs {
				if err := ctx.Err(); err != nil {
					errs[ii] = err
					continue
				}
				out[ii], errs[ii] = r.Resample(rands[ii])
			}
		}(pp)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("gmcorr: realization %d: %w", i, err)
		}
	}
	return out, nil
}

// StandardNormal returns n draws from the standard normal distribution.
// The same seed always gives the same draws.
func StandardNormal(n int, seed uint64) []float64 {
	d := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, seed)}
	o := make([]float64, n)
	for i := range o {
		o[i] = d.Rand()
	}
	return o
}
