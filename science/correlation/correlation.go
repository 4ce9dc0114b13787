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

// Package correlation provides models of the spatial correlation of
// ground-motion residuals as a function of inter-site distance.
package correlation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spatialmodel/gmcorr"
	"gonum.org/v1/gonum/mat"
)

var (
	_ gmcorr.CorrelationModel = JB2009{}
	_ gmcorr.CorrelationModel = GA2010{}
	_ gmcorr.CorrelationModel = Exponential{}
)

// IMT is an intensity measure type.
type IMT struct {
	// Name is "PGA", "PGV", or "SA".
	Name string

	// Period is the spectral period [s] of SA.
	Period float64
}

func (m IMT) String() string {
	if m.Name == "SA" {
		return fmt.Sprintf("SA(%g)", m.Period)
	}
	return m.Name
}

// ParseIMT parses an intensity measure type such as "PGA", "PGV", or
// "SA(0.3)".
func ParseIMT(s string) (IMT, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	switch u {
	case "PGA", "PGV":
		return IMT{Name: u}, nil
	}
	if strings.HasPrefix(u, "SA(") && strings.HasSuffix(u, ")") {
		p, err := strconv.ParseFloat(strings.TrimSpace(u[3:len(u)-1]), 64)
		if err != nil || p < 0 {
			return IMT{}, fmt.Errorf("correlation: invalid spectral period in %q", s)
		}
		return IMT{Name: "SA", Period: p}, nil
	}
	return IMT{}, fmt.Errorf("correlation: unknown intensity measure type %q", s)
}

// period returns the spectral period of the named intensity measure
// type, treating PGA as a period of zero. PGV is not supported.
func period(imt string) (float64, error) {
	m, err := ParseIMT(imt)
	if err != nil {
		return 0, err
	}
	if m.Name == "PGV" {
		return 0, fmt.Errorf("correlation: %s is not supported", m)
	}
	return m.Period, nil
}

// apply returns the matrix of rho evaluated at each distance in dist.
func apply(dist *mat.SymDense, rho func(h float64) float64) *mat.SymDense {
	n := dist.SymmetricDim()
	o := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		o.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			o.SetSym(i, j, rho(dist.At(i, j)))
		}
	}
	return o
}

// New returns the correlation model with the given name: "JB2009",
// "GA2010", or "exponential(r)" where r is the range [km].
// vs30Clustered only applies to JB2009.
func New(name string, vs30Clustered bool) (gmcorr.CorrelationModel, error) {
	u := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case u == "JB2009":
		return JB2009{Vs30Clustered: vs30Clustered}, nil
	case u == "GA2010":
		return GA2010{}, nil
	case strings.HasPrefix(u, "EXPONENTIAL(") && strings.HasSuffix(u, ")"):
		r, err := strconv.ParseFloat(strings.TrimSpace(u[len("EXPONENTIAL("):len(u)-1]), 64)
		if err != nil || !(r > 0) {
			return nil, fmt.Errorf("correlation: invalid range in %q", name)
		}
		return Exponential{Range: r}, nil
	default:
		return nil, fmt.Errorf("correlation: unknown model %q", name)
	}
}
