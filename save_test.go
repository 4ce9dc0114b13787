package gmcorr

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestSaveLoad(t *testing.T) {
	cfg := resampleConfig()
	r := simulate(t, cfg, 8)

	buf := new(bytes.Buffer)
	if err := Save(buf, r); err != nil {
		t.Fatal(err)
	}
	r2, err := Load(buf)
	if err != nil {
		t.Fatal(err)
	}
	if r2.Rows != r.Rows || r2.Cols != r.Cols || r2.Simulated != r.Simulated {
		t.Errorf("loaded %dx%d with %d simulated; saved %dx%d with %d",
			r2.Rows, r2.Cols, r2.Simulated, r.Rows, r.Cols, r.Simulated)
	}
	if !floats.Equal(r2.Epsilon, r.Epsilon) {
		t.Error("residuals differ")
	}
	if r2.GridKey != r.GridKey {
		t.Errorf("grid key %s != %s", r2.GridKey, r.GridKey)
	}
	rand := StandardNormal(cfg.Grid.Len(), 99)
	want, err := r.Resample(rand)
	if err != nil {
		t.Fatal(err)
	}
	have, err := r2.Resample(rand)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.Equal(have, want) {
		t.Error("loaded realization resamples differently")
	}
}

func TestSavePartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := resampleConfig()
	s, err := NewSimulator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.Log = quietLogger()
	r, err := s.Simulate(ctx, StandardNormal(cfg.Grid.Len(), 1))
	if err == nil {
		t.Fatal("want cancellation error")
	}
	buf := new(bytes.Buffer)
	if err := Save(buf, r); err != nil {
		t.Fatal(err)
	}
	r2, err := Load(buf)
	if err != nil {
		t.Fatal(err)
	}
	if r2.Complete() || r2.Simulated != 0 {
		t.Errorf("loaded realization should be empty; %d simulated", r2.Simulated)
	}
}

func TestCheckGrid(t *testing.T) {
	cfg := resampleConfig()
	r := simulate(t, cfg, 3)
	if r.GridKey == "" {
		t.Fatal("simulated realization has no grid key")
	}
	if err := r.CheckGrid(resampleConfig().Grid); err != nil {
		t.Errorf("same grid: %v", err)
	}

	g := resampleConfig().Grid
	for i := range g.Data {
		g.Data[i] *= 2
	}
	if _, err := r.Field(g); err != nil {
		t.Errorf("changed data should be accepted: %v", err)
	}

	g.Sites[5].X += 0.001
	if _, err := r.Field(g); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("moved site: want ErrInvalidConfig, have %v", err)
	}
	if err := r.CheckGrid(regularGrid(7, 6, -117, 34, 0.015)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("transposed grid: want ErrInvalidConfig, have %v", err)
	}

	r.GridKey = ""
	if err := r.CheckGrid(g); err != nil {
		t.Errorf("realization without key: %v", err)
	}
}

func TestLoadDamaged(t *testing.T) {
	// valid returns a 1x3 realization in which cell 2 is conditioned on
	// one station and on cells 0 and 1.
	valid := func() *Realization {
		r := newRealization(1, 3)
		r.put(0, CellSolve{Std: 1, Rand: 0.5}, 0.5)
		r.put(1, CellSolve{Indices: []int{0}, Weights: []float64{0.6}, Std: 0.8, Rand: -1}, -0.5)
		r.put(2, CellSolve{Indices: []int{0, 1}, Stations: []int{0}, Weights: []float64{0.1, 0.2, 0.3}, Std: 0.7, Rand: 0.1}, 0.02)
		return r
	}
	for name, mod := range map[string]func(r *Realization){
		"index out of range":   func(r *Realization) { r.Cells[2].Indices[1] = 99 },
		"negative index":       func(r *Realization) { r.Cells[1].Indices[0] = -1 },
		"conditioned on self":  func(r *Realization) { r.Cells[1].Indices[0] = 1 },
		"conditioned on later": func(r *Realization) { r.Cells[1].Indices[0] = 2 },
		"short weights":        func(r *Realization) { r.Cells[2].Weights = r.Cells[2].Weights[:2] },
		"extra weights":        func(r *Realization) { r.Cells[0].Weights = []float64{1} },
		"nan std":              func(r *Realization) { r.Cells[1].Std = math.NaN() },
		"negative std":         func(r *Realization) { r.Cells[2].Std = -0.1 },
		"too many simulated":   func(r *Realization) { r.Simulated = 4 },
		"short residuals":      func(r *Realization) { r.Epsilon = r.Epsilon[:2] },
	} {
		r := valid()
		mod(r)
		buf := new(bytes.Buffer)
		if err := Save(buf, r); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if _, err := Load(buf); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: want ErrInvalidConfig, have %v", name, err)
		}
	}

	buf := new(bytes.Buffer)
	if err := Save(buf, valid()); err != nil {
		t.Fatal(err)
	}
	r, err := Load(buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Resample([]float64{0, 0, 0}); err != nil {
		t.Error(err)
	}

	// Cells not yet simulated are not checked.
	p := valid()
	p.Simulated = 2
	p.Cells[2].Indices[0] = 99
	buf.Reset()
	if err := Save(buf, p); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(buf); err != nil {
		t.Errorf("partial realization: %v", err)
	}
}
