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
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rcond is the relative cut-off below which singular values are treated
// as zero when pseudo-inverting a covariance matrix.
const rcond = 1e-15

// varianceTolerance is the most negative conditional variance that is
// attributed to round-off rather than to an inconsistent covariance.
const varianceTolerance = -1e-8

// solution holds the conditional distribution of one cell given its
// conditioning data.
type solution struct {
	// weights maps the conditioning values to the conditional mean.
	weights []float64

	// variance is the conditional variance before flooring at zero.
	variance float64

	std float64
}

// solve computes the conditional distribution of the last point in dist
// given the values at all the other points. The covariance is partitioned
// as
//
//	[ Sig11   Sig12 ]
//	[ Sig12ᵀ  Sig22 ]
//
// and the weights are Sig12ᵀ·Sig11⁺, where ⁺ is the Moore-Penrose
// pseudo-inverse.
func solve(dist *mat.SymDense, imt string, m CorrelationModel) (solution, error) {
	n := dist.SymmetricDim() - 1
	if n <= 0 {
		return solution{variance: 1, std: 1}, nil
	}
	cov, err := m.Covariance(dist, imt)
	if err != nil {
		return solution{}, err
	}
	sig11 := mat.NewDense(n, n, nil)
	sig12 := make([]float64, n)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			sig11.Set(a, b, cov.At(a, b))
		}
		sig12[a] = cov.At(a, n)
	}
	s := solution{weights: make([]float64, n)}
	mat.NewVecDense(n, s.weights).MulVec(pinv(sig11).T(), mat.NewVecDense(n, sig12))
	s.variance = cov.At(n, n) - floats.Dot(s.weights, sig12)
	s.std = math.Sqrt(math.Max(s.variance, 0))
	return s, nil
}

// pinv returns the pseudo-inverse of a, computed from its singular value
// decomposition. Singular values no greater than rcond times the largest
// are discarded.
func pinv(a *mat.Dense) *mat.Dense {
	r, c := a.Dims()
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return mat.NewDense(c, r, nil)
	}
	s := svd.Values(nil)
	if len(s) == 0 || s[0] == 0 {
		return mat.NewDense(c, r, nil)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	cutoff := rcond * s[0]
	vr, _ := v.Dims()
	for k, sk := range s {
		f := 0.
		if sk > cutoff {
			f = 1 / sk
		}
		for i := 0; i < vr; i++ {
			v.Set(i, k, v.At(i, k)*f)
		}
	}
	o := mat.NewDense(c, r, nil)
	o.Mul(&v, u.T())
	return o
}
