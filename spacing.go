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

import "math"

// gridSpacing returns the distance [km] between each pair of vertically
// adjacent rows, measured along the first column (l, length Rows-1), and
// between the first two cells of each row (d, length Rows). d is zero for
// single-column grids.
func gridSpacing(g *Grid) (l, d []float64) {
	l = make([]float64, g.Rows-1)
	for k := range l {
		l[k] = GeodeticDistance(g.Sites[(k+1)*g.Cols], g.Sites[k*g.Cols])
	}
	d = make([]float64, g.Rows)
	if g.Cols > 1 {
		for k := range d {
			d[k] = GeodeticDistance(g.Sites[k*g.Cols], g.Sites[k*g.Cols+1])
		}
	}
	return l, d
}

// window describes the rows and columns within the search radius of the
// cells in one grid row.
type window struct {
	row int

	// vert is the number of rows in the window, including the current
	// one.
	vert int

	// hor is the number of columns on each side of a cell.
	hor int

	// addedVert is the first row in the window.
	addedVert int
}

// sizeWindow returns the window of row i for search radius r [km], given
// the row gaps l and column spacings d from gridSpacing.
func sizeWindow(i int, r float64, l, d []float64, cols int, policy RowSpacingPolicy) window {
	w := window{row: i, vert: 1}
	if d[i] > 0 {
		w.hor = int(math.Min(math.Floor(r/d[i]), float64(cols-1)))
	}
	switch policy {
	case CumulativeRowSpacing:
		var sum float64
		for k := i - 1; k >= 0; k-- {
			sum += l[k]
			if sum > r {
				break
			}
			w.vert++
		}
	default:
		if i == 0 {
			break
		}
		spacing := l[0]
		if len(l) > 1 {
			spacing = l[1]
		}
		if float64(i)*spacing <= r {
			w.vert = i + 1
		} else {
			w.vert = int(math.Floor(r/spacing)) + 1
		}
	}
	w.addedVert = i - w.vert + 1
	return w
}
