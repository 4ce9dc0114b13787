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

// Package gmcorr generates spatially correlated ground-motion residual
// fields on regular longitude/latitude grids by sequential conditional
// Gaussian simulation. Each grid cell is drawn from its distribution
// conditioned on the cells already simulated within a search radius and on
// seismic stations, whose residuals are fixed at zero. The weights computed
// for each cell are kept so that further realizations can be generated
// without repeating any distance or covariance calculations.
package gmcorr

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/mat"
)

// Version gives the version number.
const Version = "0.1.0"

// ErrInvalidConfig is returned (wrapped) when the inputs to a simulation
// are inconsistent.
var ErrInvalidConfig = errors.New("gmcorr: invalid configuration")

// Grid holds a regular longitude/latitude grid of ground-motion values.
// All slices are in row-major order with length Rows*Cols, so that cell
// (i, j) is stored at index i*Cols+j. Row 0 is simulated first.
type Grid struct {
	Rows, Cols int

	// Sites holds the cell locations. X is longitude and Y is latitude,
	// both in degrees.
	Sites []geom.Point

	// Data holds the ground-motion value at each cell.
	Data []float64

	// Uncertainty holds the log-space standard deviation of each cell.
	Uncertainty []float64
}

// Len returns the number of cells in the grid.
func (g *Grid) Len() int { return g.Rows * g.Cols }

// CorrelationModel maps inter-site distances to covariances of the
// normalized residual.
type CorrelationModel interface {
	// Covariance returns the covariance matrix associated with the
	// distance matrix dist [km] for the intensity measure type imt
	// (for example "PGA" or "SA(1.0)"). The result must be symmetric and
	// positive-semidefinite.
	Covariance(dist *mat.SymDense, imt string) (*mat.SymDense, error)
}

// RowSpacingPolicy specifies how the number of grid rows within the search
// radius of a row is estimated.
type RowSpacingPolicy int

const (
	// RepresentativeRowSpacing assumes every row gap equals the second
	// row gap in the grid (the first when there is only one).
	RepresentativeRowSpacing RowSpacingPolicy = iota

	// CumulativeRowSpacing walks upward through the actual row gaps
	// until their sum exceeds the search radius.
	CumulativeRowSpacing
)

func (p RowSpacingPolicy) String() string {
	switch p {
	case RepresentativeRowSpacing:
		return "representative"
	case CumulativeRowSpacing:
		return "cumulative"
	default:
		return fmt.Sprintf("RowSpacingPolicy(%d)", int(p))
	}
}

// ParseRowSpacing returns the policy with the given name.
func ParseRowSpacing(s string) (RowSpacingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "representative":
		return RepresentativeRowSpacing, nil
	case "cumulative":
		return CumulativeRowSpacing, nil
	default:
		return 0, fmt.Errorf("%w: unknown row spacing policy %q", ErrInvalidConfig, s)
	}
}

// Config holds the inputs to a simulation. It is not modified by the
// simulation.
type Config struct {
	Grid *Grid

	// Stations holds the longitude/latitude of the seismic stations.
	Stations []geom.Point

	// Radius is the search radius [km] for conditioning data.
	Radius float64

	// IMT is the intensity measure type passed to Model.
	IMT string

	Model CorrelationModel

	RowSpacing RowSpacingPolicy

	// Lookahead is the number of row windows that may be built
	// concurrently ahead of the row being simulated. When it is zero
	// each window is built just before its row is simulated.
	Lookahead int
}

// Validate checks that c is internally consistent.
func (c *Config) Validate() error {
	g := c.Grid
	if g == nil {
		return fmt.Errorf("%w: missing grid", ErrInvalidConfig)
	}
	if g.Rows < 1 || g.Cols < 1 {
		return fmt.Errorf("%w: grid dimensions %dx%d", ErrInvalidConfig, g.Rows, g.Cols)
	}
	n := g.Len()
	for _, v := range []struct {
		name string
		len  int
	}{
		{"sites", len(g.Sites)},
		{"data", len(g.Data)},
		{"uncertainty", len(g.Uncertainty)},
	} {
		if v.len != n {
			return fmt.Errorf("%w: grid has %d cells but %d %s", ErrInvalidConfig, n, v.len, v.name)
		}
	}
	for i, p := range g.Sites {
		if err := checkLonLat(p); err != nil {
			return fmt.Errorf("%w: site %d: %v", ErrInvalidConfig, i, err)
		}
	}
	for i, p := range c.Stations {
		if err := checkLonLat(p); err != nil {
			return fmt.Errorf("%w: station %d: %v", ErrInvalidConfig, i, err)
		}
	}
	if !(c.Radius > 0) || math.IsInf(c.Radius, 0) {
		return fmt.Errorf("%w: search radius must be positive and finite; got %g", ErrInvalidConfig, c.Radius)
	}
	if c.Model == nil {
		return fmt.Errorf("%w: missing correlation model", ErrInvalidConfig)
	}
	if c.IMT == "" {
		return fmt.Errorf("%w: missing intensity measure type", ErrInvalidConfig)
	}
	if c.RowSpacing != RepresentativeRowSpacing && c.RowSpacing != CumulativeRowSpacing {
		return fmt.Errorf("%w: unknown row spacing policy %v", ErrInvalidConfig, c.RowSpacing)
	}
	if c.Lookahead < 0 {
		return fmt.Errorf("%w: negative lookahead %d", ErrInvalidConfig, c.Lookahead)
	}
	return nil
}

func checkLonLat(p geom.Point) error {
	if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
		return fmt.Errorf("non-finite coordinate (%g, %g)", p.X, p.Y)
	}
	if p.Y < -90 || p.Y > 90 {
		return fmt.Errorf("latitude %g out of range", p.Y)
	}
	return nil
}
