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
	"encoding/gob"
	"fmt"
	"io"
	"math"
)

// Save writes r to w in gob format
// (format description at https://golang.org/pkg/encoding/gob/).
// Partially simulated realizations can be saved.
func Save(w io.Writer, r *Realization) error {
	if err := gob.NewEncoder(w).Encode(r); err != nil {
		return fmt.Errorf("gmcorr.Save: %v", err)
	}
	return nil
}

// Load reads a realization previously written by Save. The stored solves
// are checked so that a damaged file is reported here rather than when
// the realization is resampled.
func Load(rd io.Reader) (*Realization, error) {
	r := new(Realization)
	if err := gob.NewDecoder(rd).Decode(r); err != nil {
		return nil, fmt.Errorf("gmcorr.Load: %v", err)
	}
	if err := r.check(); err != nil {
		return nil, fmt.Errorf("gmcorr.Load: %w", err)
	}
	return r, nil
}

// check returns an error if r is not a realization that Simulate could
// have produced. Each simulated cell must be conditioned only on cells
// simulated before it and carry one weight per conditioning value.
func (r *Realization) check() error {
	n := r.Rows * r.Cols
	if r.Rows < 0 || r.Cols < 0 || len(r.Epsilon) != n || len(r.Cells) != n || r.Simulated < 0 || r.Simulated > n {
		return fmt.Errorf("%w: inconsistent realization: %dx%d grid, %d residuals, %d cells, %d simulated",
			ErrInvalidConfig, r.Rows, r.Cols, len(r.Epsilon), len(r.Cells), r.Simulated)
	}
	for num, c := range r.Cells[:r.Simulated] {
		if len(c.Weights) != len(c.Stations)+len(c.Indices) {
			return fmt.Errorf("%w: cell %d has %d weights for %d stations and %d cells",
				ErrInvalidConfig, num, len(c.Weights), len(c.Stations), len(c.Indices))
		}
		for _, idx := range c.Indices {
			if idx < 0 || idx >= num {
				return fmt.Errorf("%w: cell %d is conditioned on cell %d, which is not simulated before it",
					ErrInvalidConfig, num, idx)
			}
		}
		if !(c.Std >= 0) || math.IsInf(c.Std, 0) {
			return fmt.Errorf("%w: cell %d has standard deviation %g", ErrInvalidConfig, num, c.Std)
		}
	}
	return nil
}
