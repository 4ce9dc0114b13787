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

package gmcorrutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	goshp "github.com/jonas-p/go-shp"
	"github.com/spatialmodel/gmcorr"
)

// gridVars are the variables in a grid file, all with dimensions
// (row, col).
var gridVars = []struct{ name, description, units string }{
	{"lon", "Cell longitude", "degrees_east"},
	{"lat", "Cell latitude", "degrees_north"},
	{"data", "Ground-motion value", "-"},
	{"uncertainty", "Log-space standard deviation of the ground-motion value", "-"},
}

// ReadGrid reads a ground-motion grid from a NetCDF file containing the
// variables lon, lat, data, and uncertainty, each with dimensions
// (row, col).
func ReadGrid(filename string) (*gmcorr.Grid, error) {
	ff, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("gmcorr: opening grid file: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, fmt.Errorf("gmcorr: reading grid file %s: %v", filename, err)
	}
	dims := f.Header.Lengths("lon")
	if len(dims) != 2 {
		return nil, fmt.Errorf("gmcorr: grid file %s: variable lon must have dimensions (row, col)", filename)
	}
	g := &gmcorr.Grid{Rows: dims[0], Cols: dims[1]}
	vals := make(map[string][]float64)
	for _, v := range gridVars {
		d, err := readVar(f, v.name, dims)
		if err != nil {
			return nil, fmt.Errorf("gmcorr: grid file %s: %v", filename, err)
		}
		vals[v.name] = d
	}
	g.Sites = make([]geom.Point, g.Len())
	for i := range g.Sites {
		g.Sites[i] = geom.Point{X: vals["lon"][i], Y: vals["lat"][i]}
	}
	g.Data = vals["data"]
	g.Uncertainty = vals["uncertainty"]
	return g, nil
}

// readVar reads variable name, which must have the given dimensions.
func readVar(f *cdf.File, name string, dims []int) ([]float64, error) {
	have := f.Header.Lengths(name)
	if len(have) != len(dims) {
		return nil, fmt.Errorf("variable %s has dimensions %v; want %v", name, have, dims)
	}
	n := 1
	for i, d := range dims {
		if have[i] != d {
			return nil, fmt.Errorf("variable %s has dimensions %v; want %v", name, have, dims)
		}
		n *= d
	}
	r := f.Reader(name, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("reading variable %s: %v", name, err)
	}
	switch b := buf.(type) {
	case []float64:
		return b, nil
	case []float32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("variable %s has unsupported type %T", name, buf)
	}
}

// writeVar writes the whole of variable name.
func writeVar(f *cdf.File, name string, data []float64) error {
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing variable %s: %v", name, err)
	}
	return nil
}

// createNCF creates a NetCDF file with header h, calls write to fill in
// the variables, and then finalizes the file.
func createNCF(filename string, h *cdf.Header, write func(f *cdf.File) error) error {
	h.Define()
	ff, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("gmcorr: creating %s: %v", filename, err)
	}
	f, err := cdf.Create(ff, h) // writes the header to ff
	if err != nil {
		ff.Close()
		return fmt.Errorf("gmcorr: writing header of %s: %v", filename, err)
	}
	if err := write(f); err != nil {
		ff.Close()
		return fmt.Errorf("gmcorr: %s: %v", filename, err)
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		ff.Close()
		return fmt.Errorf("gmcorr: %s: %v", filename, err)
	}
	return ff.Close()
}

func lonLat(g *gmcorr.Grid) (lon, lat []float64) {
	lon = make([]float64, len(g.Sites))
	lat = make([]float64, len(g.Sites))
	for i, p := range g.Sites {
		lon[i], lat[i] = p.X, p.Y
	}
	return lon, lat
}

// WriteGrid writes g to a NetCDF file in the format read by ReadGrid.
func WriteGrid(filename string, g *gmcorr.Grid) error {
	h := cdf.NewHeader([]string{"row", "col"}, []int{g.Rows, g.Cols})
	h.AddAttribute("", "comment", "Ground-motion grid")
	for _, v := range gridVars {
		h.AddVariable(v.name, []string{"row", "col"}, []float64{0})
		h.AddAttribute(v.name, "description", v.description)
		h.AddAttribute(v.name, "units", v.units)
	}
	lon, lat := lonLat(g)
	return createNCF(filename, h, func(f *cdf.File) error {
		for _, v := range []struct {
			name string
			data []float64
		}{
			{"lon", lon}, {"lat", lat}, {"data", g.Data}, {"uncertainty", g.Uncertainty},
		} {
			if err := writeVar(f, v.name, v.data); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteField writes a simulated field to a NetCDF file with the
// variables lon, lat, epsilon, data, and perturbed on dimensions
// (row, col).
func WriteField(filename string, g *gmcorr.Grid, field *gmcorr.Field) error {
	h := cdf.NewHeader([]string{"row", "col"}, []int{g.Rows, g.Cols})
	h.AddAttribute("", "comment", "Spatially correlated ground-motion field")
	h.AddAttribute("", "gmcorr_version", gmcorr.Version)
	vars := []struct {
		name, description, units string
		data                     []float64
	}{
		{"lon", "Cell longitude", "degrees_east", nil},
		{"lat", "Cell latitude", "degrees_north", nil},
		{"epsilon", "Spatially correlated normalized residual", "-", field.Epsilon.Elements},
		{"data", "Input ground-motion value", "-", field.Data.Elements},
		{"perturbed", "Ground-motion value perturbed by the residual field", "-", field.Perturbed.Elements},
	}
	vars[0].data, vars[1].data = lonLat(g)
	for _, v := range vars {
		h.AddVariable(v.name, []string{"row", "col"}, []float64{0})
		h.AddAttribute(v.name, "description", v.description)
		h.AddAttribute(v.name, "units", v.units)
	}
	return createNCF(filename, h, func(f *cdf.File) error {
		for _, v := range vars {
			if err := writeVar(f, v.name, v.data); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteRealizations writes a set of residual fields, and the data in g
// perturbed by each of them, to a NetCDF file with dimensions
// (realization, row, col).
func WriteRealizations(filename string, g *gmcorr.Grid, eps [][]float64) error {
	dims := []string{"realization", "row", "col"}
	h := cdf.NewHeader(dims, []int{len(eps), g.Rows, g.Cols})
	h.AddAttribute("", "comment", "Resampled spatially correlated ground-motion fields")
	h.AddAttribute("", "gmcorr_version", gmcorr.Version)
	h.AddVariable("lon", dims[1:], []float64{0})
	h.AddAttribute("lon", "units", "degrees_east")
	h.AddVariable("lat", dims[1:], []float64{0})
	h.AddAttribute("lat", "units", "degrees_north")
	h.AddVariable("epsilon", dims, []float64{0})
	h.AddAttribute("epsilon", "description", "Spatially correlated normalized residual")
	h.AddAttribute("epsilon", "units", "-")
	h.AddVariable("perturbed", dims, []float64{0})
	h.AddAttribute("perturbed", "description", "Ground-motion value perturbed by the residual field")
	h.AddAttribute("perturbed", "units", "-")

	n := g.Len()
	allEps := make([]float64, 0, len(eps)*n)
	allPerturbed := make([]float64, 0, len(eps)*n)
	for k, e := range eps {
		field, err := gmcorr.Perturb(g, e)
		if err != nil {
			return fmt.Errorf("gmcorr: realization %d: %v", k, err)
		}
		allEps = append(allEps, field.Epsilon.Elements...)
		allPerturbed = append(allPerturbed, field.Perturbed.Elements...)
	}
	lon, lat := lonLat(g)
	return createNCF(filename, h, func(f *cdf.File) error {
		if err := writeVar(f, "lon", lon); err != nil {
			return err
		}
		if err := writeVar(f, "lat", lat); err != nil {
			return err
		}
		if err := writeVar(f, "epsilon", allEps); err != nil {
			return err
		}
		return writeVar(f, "perturbed", allPerturbed)
	})
}

// lonLatProj4 is the spatial reference of station and output shapefiles
// that carry no projection information.
const lonLatProj4 = "+proj=longlat"

// WriteShapefile writes a simulated field to a point shapefile with one
// point per grid cell.
func WriteShapefile(filename string, g *gmcorr.Grid, field *gmcorr.Field) error {
	fileBase := strings.TrimSuffix(filename, filepath.Ext(filename))
	shape, err := shp.NewEncoderFromFields(fileBase+".shp", goshp.POINT,
		goshp.NumberField("ROW", 10),
		goshp.NumberField("COL", 10),
		goshp.FloatField("EPSILON", 14, 8),
		goshp.FloatField("DATA", 14, 8),
		goshp.FloatField("PERTURBED", 14, 8),
	)
	if err != nil {
		return fmt.Errorf("gmcorr: creating output shapefile: %v", err)
	}
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			err = shape.EncodeFields(g.Sites[i*g.Cols+j], i, j,
				field.Epsilon.Get(i, j), field.Data.Get(i, j), field.Perturbed.Get(i, j))
			if err != nil {
				shape.Close()
				return fmt.Errorf("gmcorr: writing output shapefile: %v", err)
			}
		}
	}
	shape.Close()

	f, err := os.Create(fileBase + ".prj")
	if err != nil {
		return fmt.Errorf("gmcorr: creating output prj file: %v", err)
	}
	fmt.Fprint(f, lonLatProj4)
	return f.Close()
}

// stationRecord is a row of a station shapefile.
type stationRecord struct {
	geom.Geom
}

// ReadStations reads station locations from a point shapefile and
// converts them to longitude and latitude. Shapefiles without a .prj
// file are assumed to already be in longitude and latitude.
func ReadStations(filename string) ([]geom.Point, error) {
	fname := strings.TrimSuffix(filename, filepath.Ext(filename))
	f, err := shp.NewDecoder(fname + ".shp")
	if err != nil {
		return nil, fmt.Errorf("gmcorr: there was a problem reading the station shapefile '%s': %v", fname, err)
	}
	defer f.Close()

	dst, err := proj.Parse(lonLatProj4)
	if err != nil {
		panic(err)
	}
	src := dst
	if _, err := os.Stat(fname + ".prj"); err == nil {
		src, err = f.SR()
		if err != nil {
			return nil, fmt.Errorf("gmcorr: there was a problem reading the projection information for "+
				"the station shapefile '%s': %v", fname, err)
		}
	}
	trans, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("gmcorr: there was a problem creating a spatial reprojector for "+
			"the station shapefile '%s': %v", fname, err)
	}

	var stations []geom.Point
	for {
		var rec stationRecord
		if ok := f.DecodeRow(&rec); !ok {
			break
		}
		g, err := rec.Transform(trans)
		if err != nil {
			return nil, fmt.Errorf("gmcorr: reprojecting station %d in %s: %v", len(stations), fname, err)
		}
		switch p := g.(type) {
		case geom.Point:
			stations = append(stations, p)
		case *geom.Point:
			stations = append(stations, *p)
		case geom.MultiPoint:
			stations = append(stations, p...)
		default:
			return nil, fmt.Errorf("gmcorr: station %d in %s has geometry type %T; want point",
				len(stations), fname, g)
		}
	}
	if err := f.Error(); err != nil {
		return nil, fmt.Errorf("gmcorr: problem reading station shapefile.\nfile: %s\nerror: %v", fname, err)
	}
	return stations, nil
}

// SaveRealization writes r to a gob file.
func SaveRealization(filename string, r *gmcorr.Realization) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("gmcorr: creating solution file: %v", err)
	}
	if err := gmcorr.Save(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadRealization reads a realization written by SaveRealization.
func LoadRealization(filename string) (*gmcorr.Realization, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("gmcorr: opening solution file: %v", err)
	}
	defer f.Close()
	return gmcorr.Load(f)
}
