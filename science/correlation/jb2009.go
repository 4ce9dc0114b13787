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

package correlation

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// JB2009 is the correlation model of Jayaram and Baker (2009),
// "Correlation model for spatially distributed ground-motion intensities",
// Earthquake Engineering & Structural Dynamics 38(15):1687-1708.
type JB2009 struct {
	// Vs30Clustered specifies whether Vs30 values are spatially
	// clustered, which lengthens the correlation range at short periods.
	Vs30Clustered bool
}

// Range returns the range parameter b [km] for spectral period t [s].
func (m JB2009) Range(t float64) float64 {
	switch {
	case t >= 1:
		return 22.0 + 3.7*t
	case m.Vs30Clustered:
		return 40.7 - 15.0*t
	default:
		return 8.5 + 17.2*t
	}
}

// Covariance returns exp(-3h/b) for each distance h in dist.
func (m JB2009) Covariance(dist *mat.SymDense, imt string) (*mat.SymDense, error) {
	t, err := period(imt)
	if err != nil {
		return nil, err
	}
	b := m.Range(t)
	return apply(dist, func(h float64) float64 {
		return math.Exp(-3 * h / b)
	}), nil
}

// Exponential is a correlation model that decays exponentially with
// distance, independent of intensity measure.
type Exponential struct {
	// Range is the distance [km] at which the correlation falls to 1/e.
	Range float64
}

// Covariance returns exp(-h/Range) for each distance h in dist.
func (m Exponential) Covariance(dist *mat.SymDense, imt string) (*mat.SymDense, error) {
	if _, err := ParseIMT(imt); err != nil {
		return nil, err
	}
	return apply(dist, func(h float64) float64 {
		return math.Exp(-h / m.Range)
	}), nil
}
