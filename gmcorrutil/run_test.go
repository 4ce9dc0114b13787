package gmcorrutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/gmcorr"
)

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	Root.SetOutput(&out)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), gmcorr.Version) {
		t.Errorf("version output %q", out.String())
	}
}

// A field resampled with the seed used for the simulation must be
// identical to the simulated field.
func TestRunResample(t *testing.T) {
	dir := t.TempDir()
	g := testGrid(5, 6)
	gridFile := filepath.Join(dir, "grid.nc")
	if err := WriteGrid(gridFile, g); err != nil {
		t.Fatal(err)
	}
	stationFile := filepath.Join(dir, "stations.shp")
	writeStations(t, stationFile, []geom.Point{g.Sites[8], {X: -117.93, Y: 34.05}}, lonLatProj4)

	Cfg.Set("config", "")
	Cfg.Set("GridFile", gridFile)
	Cfg.Set("StationFile", stationFile)
	Cfg.Set("Radius", 5.0)
	Cfg.Set("IMT", "SA(0.3)")
	Cfg.Set("CorrelationModel", "JB2009")
	Cfg.Set("Lookahead", 2)
	Cfg.Set("Seed", 7)
	Cfg.Set("LogLevel", "warning")
	Cfg.Set("OutputFile", filepath.Join(dir, "field.nc"))
	Cfg.Set("OutputShapefile", filepath.Join(dir, "field.shp"))
	Cfg.Set("SolutionFile", filepath.Join(dir, "solution.gob"))
	Root.SetOutput(new(bytes.Buffer))
	defer Root.SetOutput(nil)

	Root.SetArgs([]string{"run"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"field.nc", "field.shp", "field.prj", "field.log", "solution.gob"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("missing output: %v", err)
		}
	}
	simulated, dims := readNCF(t, filepath.Join(dir, "field.nc"), "epsilon")
	if len(dims) != 2 || dims[0] != g.Rows || dims[1] != g.Cols {
		t.Fatalf("output dimensions %v", dims)
	}
	// Cell 8 is at a station.
	if v := simulated[8]; v > 1e-3 || v < -1e-3 {
		t.Errorf("residual at station: %g", v)
	}

	Cfg.Set("Realizations", 3)
	Cfg.Set("OutputFile", filepath.Join(dir, "resampled.nc"))
	Root.SetArgs([]string{"resample"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	resampled, dims := readNCF(t, filepath.Join(dir, "resampled.nc"), "epsilon")
	if len(dims) != 3 || dims[0] != 3 {
		t.Fatalf("resampled dimensions %v", dims)
	}
	n := g.Len()
	for num := 0; num < n; num++ {
		if resampled[num] != simulated[num] {
			t.Errorf("cell %d: simulated %g, resampled %g", num, simulated[num], resampled[num])
		}
	}
	same := true
	for num := 0; num < n; num++ {
		if resampled[n+num] != resampled[num] {
			same = false
		}
	}
	if same {
		t.Error("realizations with different seeds should differ")
	}
}

func TestRunUnknownIMT(t *testing.T) {
	dir := t.TempDir()
	gridFile := filepath.Join(dir, "grid.nc")
	if err := WriteGrid(gridFile, testGrid(2, 2)); err != nil {
		t.Fatal(err)
	}
	Cfg.Set("config", "")
	Cfg.Set("GridFile", gridFile)
	Cfg.Set("StationFile", "")
	Cfg.Set("IMT", "PGV")
	Cfg.Set("CorrelationModel", "GA2010")
	Cfg.Set("OutputFile", filepath.Join(dir, "field.nc"))
	Cfg.Set("SolutionFile", "")
	Root.SetOutput(new(bytes.Buffer))
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"run"})
	if err := Root.Execute(); err == nil {
		t.Error("want error for unsupported intensity measure type")
	}
}
