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

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/mat"
)

// EarthRadius is the mean radius of the Earth [km].
const EarthRadius = 6371.0

// GeodeticDistance returns the great-circle distance [km] between a and b,
// where X is longitude and Y is latitude in degrees. The Earth is treated
// as a sphere of radius EarthRadius.
func GeodeticDistance(a, b geom.Point) float64 {
	lon1, lat1 := radians(a.X), radians(a.Y)
	lon2, lat2 := radians(b.X), radians(b.Y)
	sLat := math.Sin((lat1 - lat2) / 2)
	sLon := math.Sin((lon1 - lon2) / 2)
	h := sLat*sLat + math.Cos(lat1)*math.Cos(lat2)*sLon*sLon
	return 2 * EarthRadius * math.Asin(math.Sqrt(math.Min(h, 1)))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// distanceMatrix returns the distances among the sites with the given
// indices.
func distanceMatrix(sites []geom.Point, indices []int) *mat.SymDense {
	n := len(indices)
	d := mat.NewSymDense(n, nil)
	for a := 0; a < n; a++ {
		pa := sites[indices[a]]
		for b := a + 1; b < n; b++ {
			d.SetSym(a, b, GeodeticDistance(pa, sites[indices[b]]))
		}
	}
	return d
}
