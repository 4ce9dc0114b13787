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
	"fmt"
	"math"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/sparse"
)

// Field holds a residual field and the ground-motion data perturbed by it,
// as Rows×Cols arrays.
type Field struct {
	Epsilon, Data, Perturbed *sparse.DenseArray
}

// Perturb applies the residual field eps to the data in g, returning
// data·exp(eps·uncertainty) for each cell.
func Perturb(g *Grid, eps []float64) (*Field, error) {
	if len(eps) != g.Len() {
		return nil, fmt.Errorf("%w: %d residuals for %d cells", ErrInvalidConfig, len(eps), g.Len())
	}
	f := &Field{
		Epsilon:   sparse.ZerosDense(g.Rows, g.Cols),
		Data:      sparse.ZerosDense(g.Rows, g.Cols),
		Perturbed: sparse.ZerosDense(g.Rows, g.Cols),
	}
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			num := i*g.Cols + j
			f.Epsilon.Set(eps[num], i, j)
			f.Data.Set(g.Data[num], i, j)
			f.Perturbed.Set(g.Data[num]*math.Exp(eps[num]*g.Uncertainty[num]), i, j)
		}
	}
	return f, nil
}

// Field returns the simulated residuals of r applied to the data in g.
func (r *Realization) Field(g *Grid) (*Field, error) {
	if err := r.CheckGrid(g); err != nil {
		return nil, err
	}
	return Perturb(g, r.Epsilon)
}

// Summary describes a simulated residual field.
type Summary struct {
	Cells                  int
	Mean, StdDev, Min, Max float64

	// Unconditioned is the number of cells that had no conditioning
	// data.
	Unconditioned int

	// StationConditioned is the number of cells conditioned on at least
	// one station.
	StationConditioned int

	Warnings int
}

// Summary returns statistics of the simulated cells of r.
func (r *Realization) Summary() Summary {
	s := Summary{Cells: r.Simulated, Warnings: r.Warnings}
	if r.Simulated == 0 {
		return s
	}
	eps := r.Epsilon[:r.Simulated]
	s.Mean = stats.StatsMean(eps)
	if len(eps) > 1 {
		s.StdDev = stats.StatsSampleStandardDeviation(eps)
	}
	s.Min = stats.StatsMin(eps)
	s.Max = stats.StatsMax(eps)
	for _, c := range r.Cells[:r.Simulated] {
		if len(c.Indices)+len(c.Stations) == 0 {
			s.Unconditioned++
		}
		if len(c.Stations) > 0 {
			s.StationConditioned++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d cells: mean %.4g, std. dev. %.4g, range [%.4g, %.4g]; "+
		"%d unconditioned, %d station-conditioned, %d warnings",
		s.Cells, s.Mean, s.StdDev, s.Min, s.Max, s.Unconditioned, s.StationConditioned, s.Warnings)
}
