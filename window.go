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

	"gonum.org/v1/gonum/mat"
)

// rowWindow holds the distances among the cells in the window of one grid
// row, arranged as if the cell in column hor were being simulated with
// full reach: prior rows span columns [0, 2hor] and the current row spans
// [0, hor]. Distances on a regular longitude/latitude grid do not change
// when every point is shifted along the rows, so the same matrix serves
// every cell in the row.
type rowWindow struct {
	window
	cols int

	// indices holds the grid indices of the template cells.
	indices []int

	// dist is nil when the template is wider than the grid.
	dist *mat.SymDense
}

// width returns the number of template columns in the prior rows.
func (w window) width() int { return 2*w.hor + 1 }

// buildRowWindow returns the template distance matrix for window w.
func buildRowWindow(g *Grid, w window) *rowWindow {
	rw := &rowWindow{window: w, cols: g.Cols}
	if w.width() > g.Cols {
		return rw
	}
	rw.indices = make([]int, 0, (w.vert-1)*w.width()+w.hor+1)
	for k := w.addedVert; k <= w.row; k++ {
		n := w.width()
		if k == w.row {
			n = w.hor + 1
		}
		for j := 0; j < n; j++ {
			rw.indices = append(rw.indices, k*g.Cols+j)
		}
	}
	rw.dist = distanceMatrix(g.Sites, rw.indices)
	return rw
}

// reduced is the causal neighborhood of one cell: the cells in its window
// that precede it in traversal order, followed by the cell itself.
type reduced struct {
	indices []int
	dist    *mat.SymDense

	// full reports whether the neighborhood has the same shape as the row
	// template, in which case its conditional weights equal those of any
	// other full cell in the row.
	full bool
}

// target returns the grid index of the cell being simulated.
func (r reduced) target() int { return r.indices[len(r.indices)-1] }

// conditioning returns the grid indices of the conditioning cells.
func (r reduced) conditioning() []int { return r.indices[:len(r.indices)-1] }

// reduce returns the neighborhood of the cell in column j. Prior rows
// keep the columns within hor of j that exist in the grid; the current
// row keeps only the columns to the left of j.
func (rw *rowWindow) reduce(g *Grid, j int) reduced {
	lo := -min(j, rw.hor)
	hi := min(rw.hor, rw.cols-1-j)
	var r reduced
	var pos []int
	for k := rw.addedVert; k <= rw.row; k++ {
		top := hi
		if k == rw.row {
			top = 0
		}
		base := (k - rw.addedVert) * rw.width()
		for o := lo; o <= top; o++ {
			r.indices = append(r.indices, k*rw.cols+j+o)
			pos = append(pos, base+rw.hor+o)
		}
	}
	if rw.dist == nil {
		r.dist = distanceMatrix(g.Sites, r.indices)
		return r
	}
	r.full = lo == -rw.hor && (rw.vert == 1 || hi == rw.hor)
	n := len(pos)
	r.dist = mat.NewSymDense(n, nil)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			r.dist.SetSym(a, b, rw.dist.At(pos[a], pos[b]))
		}
	}
	return r
}

// rowWindows returns a function that yields the window of each row in
// turn. When lookahead is positive, windows are built in a separate
// goroutine up to lookahead rows ahead of the caller. The function
// returns false once every row has been yielded or ctx is done.
func rowWindows(ctx context.Context, g *Grid, build func(i int) *rowWindow, lookahead int) func() (*rowWindow, bool) {
	if lookahead == 0 {
		i := 0
		return func() (*rowWindow, bool) {
			if i >= g.Rows || ctx.Err() != nil {
				return nil, false
			}
			rw := build(i)
			i++
			return rw, true
		}
	}
	c := make(chan *rowWindow, lookahead-1)
	go func() {
		defer close(c)
		for i := 0; i < g.Rows; i++ {
			rw := build(i)
			select {
			case c <- rw:
			case <-ctx.Done():
				return
			}
		}
	}()
	return func() (*rowWindow, bool) {
		rw, ok := <-c
		return rw, ok
	}
}
