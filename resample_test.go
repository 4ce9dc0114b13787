package gmcorr

import (
	"context"
	"math"
	"testing"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/floats"
)

func resampleConfig() Config {
	g := regularGrid(6, 7, -117, 34, 0.015)
	return Config{
		Grid:     g,
		Stations: []geom.Point{g.Sites[10], {X: -116.95, Y: 34.04}},
		Radius:   4,
		IMT:      "PGA",
		Model:    expModel(8),
	}
}

func TestResampleRoundTrip(t *testing.T) {
	cfg := resampleConfig()
	rand := StandardNormal(cfg.Grid.Len(), 42)
	s, err := NewSimulator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.Log = quietLogger()
	r, err := s.Simulate(context.Background(), rand)
	if err != nil {
		t.Fatal(err)
	}
	eps, err := r.Resample(rand)
	if err != nil {
		t.Fatal(err)
	}
	for num := range eps {
		if eps[num] != r.Epsilon[num] {
			t.Errorf("cell %d: simulated %g, resampled %g", num, r.Epsilon[num], eps[num])
		}
	}

	other, err := r.Resample(StandardNormal(cfg.Grid.Len(), 43))
	if err != nil {
		t.Fatal(err)
	}
	if floats.Equal(other, eps) {
		t.Error("different draws should give a different field")
	}
}

func TestResampleMany(t *testing.T) {
	cfg := resampleConfig()
	r := simulate(t, cfg, 1)
	rands := make([][]float64, 9)
	for k := range rands {
		rands[k] = StandardNormal(cfg.Grid.Len(), uint64(100+k))
	}
	fields, err := r.ResampleMany(context.Background(), rands)
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != len(rands) {
		t.Fatalf("have %d fields, want %d", len(fields), len(rands))
	}
	for k, f := range fields {
		want, err := r.Resample(rands[k])
		if err != nil {
			t.Fatal(err)
		}
		if !floats.Equal(f, want) {
			t.Errorf("realization %d differs from sequential resample", k)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.ResampleMany(ctx, rands); err == nil {
		t.Error("want error from cancelled context")
	}
}

func TestResampleIncomplete(t *testing.T) {
	r := newRealization(2, 2)
	if _, err := r.Resample(make([]float64, 4)); err == nil {
		t.Error("want error for incomplete realization")
	}
}

func TestStandardNormal(t *testing.T) {
	a := StandardNormal(20000, 9)
	if !floats.Equal(a, StandardNormal(20000, 9)) {
		t.Error("draws should be reproducible")
	}
	if floats.Equal(a, StandardNormal(20000, 10)) {
		t.Error("different seeds should give different draws")
	}
	mean := floats.Sum(a) / float64(len(a))
	var ss float64
	for _, v := range a {
		ss += (v - mean) * (v - mean)
	}
	sd := math.Sqrt(ss / float64(len(a)-1))
	if math.Abs(mean) > 0.05 || math.Abs(sd-1) > 0.05 {
		t.Errorf("mean %g, std. dev. %g", mean, sd)
	}
}

func TestPerturb(t *testing.T) {
	g := regularGrid(2, 3, 0, 0, 0.1)
	eps := []float64{0, 1, -1, 0.5, 2, -2}
	f, err := Perturb(g, eps)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			num := i*g.Cols + j
			want := g.Data[num] * math.Exp(eps[num]*g.Uncertainty[num])
			if different(f.Perturbed.Get(i, j), want, 1e-12) {
				t.Errorf("(%d, %d): have %g, want %g", i, j, f.Perturbed.Get(i, j), want)
			}
			if f.Epsilon.Get(i, j) != eps[num] || f.Data.Get(i, j) != g.Data[num] {
				t.Errorf("(%d, %d): wrong epsilon or data", i, j)
			}
		}
	}
	if _, err := Perturb(g, eps[1:]); err == nil {
		t.Error("want error for wrong length")
	}
}
