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
	"time"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gmcorr/internal/hash"
	"gonum.org/v1/gonum/mat"
)

// CellSolve holds what is needed to recompute the value of one cell in a
// new realization.
type CellSolve struct {
	// Indices holds the grid indices of the conditioning cells, in
	// traversal order.
	Indices []int

	// Stations holds the indices of the conditioning stations.
	Stations []int

	// Weights holds the conditional-mean weights, for Stations followed
	// by Indices.
	Weights []float64

	// Std is the conditional standard deviation.
	Std float64

	// Rand is the standard-normal draw used for the cell.
	Rand float64
}

// mean returns the conditional mean of the cell given the residuals eps
// of the cells simulated before it. Station residuals are zero, so their
// weights do not contribute.
func (c *CellSolve) mean(eps []float64) float64 {
	ns := len(c.Stations)
	var mu float64
	for k, idx := range c.Indices {
		mu += c.Weights[ns+k] * eps[idx]
	}
	return mu
}

// value returns the residual of the cell for the standard-normal draw
// rand.
func (c *CellSolve) value(eps []float64, rand float64) float64 {
	return c.mean(eps) + rand*c.Std
}

// Realization is a simulated residual field together with the per-cell
// solves needed to generate further realizations.
type Realization struct {
	Rows, Cols int

	// Epsilon holds the simulated residual of each cell in row-major
	// order.
	Epsilon []float64

	Cells []CellSolve

	// Simulated is the number of cells that have been simulated. Cells
	// are simulated in row-major order.
	Simulated int

	// Warnings is the number of cells whose conditional variance was
	// negative beyond round-off.
	Warnings int

	// GridKey fingerprints the grid geometry the realization was
	// simulated on. It is empty for realizations built by hand.
	GridKey string
}

// gridKey fingerprints the dimensions and site locations of g. Data and
// uncertainty do not enter the solves and are left out.
func gridKey(g *Grid) string {
	return hash.Fingerprint(struct {
		Rows, Cols int
		Sites      []geom.Point
	}{g.Rows, g.Cols, g.Sites})
}

// CheckGrid returns an error if r was not simulated on a grid with the
// dimensions and site locations of g.
func (r *Realization) CheckGrid(g *Grid) error {
	if g.Rows != r.Rows || g.Cols != r.Cols {
		return fmt.Errorf("%w: grid is %dx%d but realization is %dx%d",
			ErrInvalidConfig, g.Rows, g.Cols, r.Rows, r.Cols)
	}
	if r.GridKey != "" && r.GridKey != gridKey(g) {
		return fmt.Errorf("%w: grid sites differ from those the realization was simulated on", ErrInvalidConfig)
	}
	return nil
}

func newRealization(rows, cols int) *Realization {
	return &Realization{
		Rows:    rows,
		Cols:    cols,
		Epsilon: make([]float64, rows*cols),
		Cells:   make([]CellSolve, rows*cols),
	}
}

// put records cell num, which must be the next cell in traversal order.
func (r *Realization) put(num int, c CellSolve, eps float64) {
	if num != r.Simulated {
		panic(fmt.Errorf("gmcorr: cell %d written out of order; next cell is %d", num, r.Simulated))
	}
	r.Cells[num] = c
	r.Epsilon[num] = eps
	r.Simulated++
}

// Complete returns whether every cell has been simulated.
func (r *Realization) Complete() bool { return r.Simulated == len(r.Cells) }

// Simulator generates correlated residual fields.
type Simulator struct {
	cfg      Config
	l, d     []float64
	stations *stationIndex

	// Log receives progress and data-quality messages. It defaults to
	// logrus.StandardLogger().
	Log logrus.FieldLogger

	// ProgressInterval is the number of cells between progress messages.
	ProgressInterval int
}

// NewSimulator returns a simulator for cfg, which is checked for
// consistency. The correlation model is queried once so that an
// unsupported intensity measure type is reported before any simulation.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Model.Covariance(mat.NewSymDense(1, nil), cfg.IMT); err != nil {
		return nil, fmt.Errorf("%w: correlation model: %v", ErrInvalidConfig, err)
	}
	s := &Simulator{
		cfg:              cfg,
		stations:         newStationIndex(cfg.Stations),
		Log:              logrus.StandardLogger(),
		ProgressInterval: 5000,
	}
	s.l, s.d = gridSpacing(cfg.Grid)
	return s, nil
}

// window returns the template window of row i.
func (s *Simulator) window(i int) *rowWindow {
	return buildRowWindow(s.cfg.Grid, sizeWindow(i, s.cfg.Radius, s.l, s.d, s.cfg.Grid.Cols, s.cfg.RowSpacing))
}

// Simulate generates a residual field from the standard-normal draws
// rand, one per cell in row-major order. Cells are simulated in row-major
// order, each conditioned on the previously simulated cells and the
// stations within the search radius. If ctx is cancelled between rows,
// the partially simulated realization is returned with ctx.Err().
func (s *Simulator) Simulate(ctx context.Context, rand []float64) (*Realization, error) {
	g := s.cfg.Grid
	if len(rand) != g.Len() {
		return nil, fmt.Errorf("%w: %d random values for %d cells", ErrInvalidConfig, len(rand), g.Len())
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	next := rowWindows(ctx, g, s.window, s.cfg.Lookahead)

	r := newRealization(g.Rows, g.Cols)
	r.GridKey = gridKey(g)
	start := time.Now()
	var wait, work time.Duration
	for i := 0; i < g.Rows; i++ {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		t0 := time.Now()
		rw, ok := next()
		if !ok {
			return r, ctx.Err()
		}
		t1 := time.Now()
		wait += t1.Sub(t0)

		// The first full station-free solve in the row serves every
		// other such cell in the row.
		var rowSolve *solution
		for j := 0; j < g.Cols; j++ {
			num := i*g.Cols + j
			red := rw.reduce(g, j)
			aug := augment(g, s.stations, red, s.cfg.Radius)
			c := CellSolve{
				Indices:  red.conditioning(),
				Stations: aug.stations,
				Std:      1,
				Rand:     rand[num],
			}
			if len(c.Indices)+len(c.Stations) > 0 {
				cacheable := red.full && len(aug.stations) == 0
				var sol solution
				if cacheable && rowSolve != nil {
					sol = *rowSolve
				} else {
					var err error
					sol, err = solve(aug.dist, s.cfg.IMT, s.cfg.Model)
					if err != nil {
						return r, fmt.Errorf("gmcorr: cell (%d, %d): %w", i, j, err)
					}
					if sol.variance < varianceTolerance {
						r.Warnings++
						s.Log.WithFields(logrus.Fields{
							"row":      i,
							"col":      j,
							"variance": sol.variance,
						}).Warn("gmcorr: negative conditional variance; covariance may be inconsistent")
					}
					if cacheable {
						rowSolve = &sol
					}
				}
				c.Weights, c.Std = sol.weights, sol.std
			}
			r.put(num, c, c.value(r.Epsilon, c.Rand))
			if s.ProgressInterval > 0 && (num+1)%s.ProgressInterval == 0 {
				s.Log.WithFields(logrus.Fields{
					"cell":  num + 1,
					"cells": g.Len(),
				}).Info("gmcorr: simulating")
			}
		}
		work += time.Since(t1)
	}
	s.Log.WithFields(logrus.Fields{
		"total":    time.Since(start),
		"windows":  wait,
		"cells":    work,
		"warnings": r.Warnings,
	}).Info("gmcorr: simulation complete")
	return r, nil
}
