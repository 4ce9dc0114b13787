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
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"gonum.org/v1/gonum/mat"
)

// station is a station location stored in a spatial index.
type station struct {
	geom.Point
	i int
}

// stationIndex finds the stations near a grid cell.
type stationIndex struct {
	points []geom.Point
	tree   *rtree.Rtree
}

func newStationIndex(points []geom.Point) *stationIndex {
	si := &stationIndex{points: points, tree: rtree.NewTree(25, 50)}
	for i, p := range points {
		si.tree.Insert(&station{Point: p, i: i})
	}
	return si
}

// within returns the indices, in ascending order, of the stations closer
// than r [km] to p.
func (si *stationIndex) within(p geom.Point, r float64) []int {
	if si == nil || len(si.points) == 0 {
		return nil
	}
	var o []int
	seen := make(map[int]struct{})
	for _, b := range searchBounds(p, r) {
		for _, sI := range si.tree.SearchIntersect(b) {
			s := sI.(*station)
			if _, ok := seen[s.i]; ok {
				continue
			}
			seen[s.i] = struct{}{}
			if GeodeticDistance(p, s.Point) < r {
				o = append(o, s.i)
			}
		}
	}
	sort.Ints(o)
	return o
}

// searchBounds returns longitude/latitude boxes that together contain
// every point within r [km] of p. A box that crosses the antimeridian is
// split in two.
func searchBounds(p geom.Point, r float64) []*geom.Bounds {
	delta := r / EarthRadius // angular radius
	dLat := delta * 180 / math.Pi
	minLat, maxLat := p.Y-dLat, p.Y+dLat
	if delta >= math.Pi/2 || minLat <= -90 || maxLat >= 90 {
		return []*geom.Bounds{{
			Min: geom.Point{X: -540, Y: -90},
			Max: geom.Point{X: 540, Y: 90},
		}}
	}
	cosLat := math.Cos(radians(math.Max(math.Abs(minLat), math.Abs(maxLat))))
	s := math.Sin(delta) / cosLat
	if s >= 1 {
		return []*geom.Bounds{{
			Min: geom.Point{X: -540, Y: minLat},
			Max: geom.Point{X: 540, Y: maxLat},
		}}
	}
	dLon := math.Asin(s)*180/math.Pi*(1+1e-9) + 1e-9
	o := []*geom.Bounds{{
		Min: geom.Point{X: p.X - dLon, Y: minLat},
		Max: geom.Point{X: p.X + dLon, Y: maxLat},
	}}
	if p.X-dLon < -180 {
		o = append(o, &geom.Bounds{
			Min: geom.Point{X: p.X - dLon + 360, Y: minLat},
			Max: geom.Point{X: p.X + dLon + 360, Y: maxLat},
		})
	}
	if p.X+dLon > 180 {
		o = append(o, &geom.Bounds{
			Min: geom.Point{X: p.X - dLon - 360, Y: minLat},
			Max: geom.Point{X: p.X + dLon - 360, Y: maxLat},
		})
	}
	return o
}

// augmented is a neighborhood extended with the stations near its target
// cell.
type augmented struct {
	// dist holds the distances among the stations followed by the
	// neighborhood cells. The target cell is last.
	dist *mat.SymDense

	// stations holds the indices of the included stations.
	stations []int
}

// augment adds the stations within r [km] of the target of red to its
// distance matrix. Stations come before grid cells.
func augment(g *Grid, si *stationIndex, red reduced, r float64) augmented {
	sta := si.within(g.Sites[red.target()], r)
	if len(sta) == 0 {
		return augmented{dist: red.dist}
	}
	ns, nc := len(sta), len(red.indices)
	d := mat.NewSymDense(ns+nc, nil)
	for a := 0; a < ns; a++ {
		pa := si.points[sta[a]]
		for b := a + 1; b < ns; b++ {
			d.SetSym(a, b, GeodeticDistance(pa, si.points[sta[b]]))
		}
		for b, c := range red.indices {
			d.SetSym(a, ns+b, GeodeticDistance(pa, g.Sites[c]))
		}
	}
	for a := 0; a < nc; a++ {
		for b := a + 1; b < nc; b++ {
			d.SetSym(ns+a, ns+b, red.dist.At(a, b))
		}
	}
	return augmented{dist: d, stations: sta}
}
