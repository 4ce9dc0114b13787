package correlation

import (
	"math"
	"testing"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/gmcorr"
	"gonum.org/v1/gonum/mat"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

// sites returns the distance matrix of a small irregular set of sites.
func sites() *mat.SymDense {
	p := []geom.Point{
		{X: -122.00, Y: 37.00},
		{X: -121.97, Y: 37.01},
		{X: -121.90, Y: 37.05},
		{X: -122.10, Y: 36.95},
		{X: -121.50, Y: 37.40},
		{X: -121.99, Y: 37.00},
	}
	d := mat.NewSymDense(len(p), nil)
	for i := range p {
		for j := i + 1; j < len(p); j++ {
			d.SetSym(i, j, gmcorr.GeodeticDistance(p[i], p[j]))
		}
	}
	return d
}

func TestParseIMT(t *testing.T) {
	for s, want := range map[string]IMT{
		"PGA":       {Name: "PGA"},
		" pgv":      {Name: "PGV"},
		"SA(1.0)":   {Name: "SA", Period: 1},
		"sa(0.3)":   {Name: "SA", Period: 0.3},
		"SA( 2.5 )": {Name: "SA", Period: 2.5},
	} {
		have, err := ParseIMT(s)
		if err != nil {
			t.Errorf("%q: %v", s, err)
			continue
		}
		if have != want {
			t.Errorf("%q: have %v, want %v", s, have, want)
		}
	}
	for _, s := range []string{"", "MMI", "SA()", "SA(-1)", "SA(x)", "SA(1.0"} {
		if _, err := ParseIMT(s); err == nil {
			t.Errorf("%q: want error", s)
		}
	}
	if s := (IMT{Name: "SA", Period: 0.2}).String(); s != "SA(0.2)" {
		t.Errorf("have %s", s)
	}
}

func TestJB2009Range(t *testing.T) {
	for _, test := range []struct {
		m    JB2009
		t    float64
		want float64
	}{
		{m: JB2009{}, t: 0, want: 8.5},
		{m: JB2009{}, t: 0.5, want: 17.1},
		{m: JB2009{Vs30Clustered: true}, t: 0, want: 40.7},
		{m: JB2009{Vs30Clustered: true}, t: 0.5, want: 33.2},
		{m: JB2009{}, t: 1, want: 25.7},
		{m: JB2009{Vs30Clustered: true}, t: 2, want: 29.4},
	} {
		if have := test.m.Range(test.t); different(have, test.want, 1e-12) {
			t.Errorf("%+v T=%g: have %g, want %g", test.m, test.t, have, test.want)
		}
	}
}

func TestJB2009Covariance(t *testing.T) {
	d := mat.NewSymDense(2, []float64{0, 10, 10, 0})
	c, err := JB2009{}.Covariance(d, "PGA")
	if err != nil {
		t.Fatal(err)
	}
	if want := math.Exp(-30 / 8.5); different(c.At(0, 1), want, 1e-12) {
		t.Errorf("have %g, want %g", c.At(0, 1), want)
	}
	if _, err := (JB2009{}).Covariance(d, "PGV"); err == nil {
		t.Error("PGV should not be supported")
	}
}

func TestGA2010Coefficients(t *testing.T) {
	m := GA2010{}
	a0, b0, g0 := m.Coefficients(0)
	if a0 != 0.40 || b0 != 0.45 || g0 != 1 {
		t.Errorf("PGA: have %g %g %g", a0, b0, g0)
	}
	a, _, _ := m.Coefficients(math.Sqrt(0.1 * 0.2))
	if different(a, 0.375, 1e-12) {
		t.Errorf("interpolated alpha: have %g, want 0.375", a)
	}
	a, _, _ = m.Coefficients(10)
	if a != 0.12 {
		t.Errorf("long period alpha: have %g, want 0.12", a)
	}
	prev := math.Inf(1)
	for _, p := range []float64{0.05, 0.1, 0.3, 0.7, 1, 3, 5} {
		a, _, _ := m.Coefficients(p)
		if a > prev {
			t.Errorf("alpha should not increase with period: %g at %g s", a, p)
		}
		prev = a
	}
}

// Every model must give a symmetric positive-definite matrix with a unit
// diagonal for distinct sites, with correlation decreasing in distance.
func TestModelContracts(t *testing.T) {
	d := sites()
	n := d.SymmetricDim()
	for _, test := range []struct {
		name string
		m    gmcorr.CorrelationModel
	}{
		{"JB2009", JB2009{}},
		{"JB2009 clustered", JB2009{Vs30Clustered: true}},
		{"GA2010", GA2010{}},
		{"exponential", Exponential{Range: 15}},
	} {
		for _, imt := range []string{"PGA", "SA(0.3)", "SA(1.0)", "SA(3.0)"} {
			c, err := test.m.Covariance(d, imt)
			if err != nil {
				t.Fatalf("%s %s: %v", test.name, imt, err)
			}
			for i := 0; i < n; i++ {
				if c.At(i, i) != 1 {
					t.Errorf("%s %s: diagonal %d = %g", test.name, imt, i, c.At(i, i))
				}
				for j := 0; j < n; j++ {
					if c.At(i, j) != c.At(j, i) {
						t.Errorf("%s %s: not symmetric at (%d, %d)", test.name, imt, i, j)
					}
					if c.At(i, j) < 0 || c.At(i, j) > 1 {
						t.Errorf("%s %s: (%d, %d) = %g", test.name, imt, i, j, c.At(i, j))
					}
				}
			}
			// Site 4 is much farther from site 0 than site 1 is.
			if c.At(0, 4) >= c.At(0, 1) {
				t.Errorf("%s %s: correlation should decrease with distance", test.name, imt)
			}
			var chol mat.Cholesky
			if !chol.Factorize(c) {
				t.Errorf("%s %s: not positive definite", test.name, imt)
			}
		}
	}
}

// Reordering the sites must reorder the covariance in the same way.
func TestPermutationInvariance(t *testing.T) {
	d := sites()
	n := d.SymmetricDim()
	perm := []int{3, 0, 5, 1, 4, 2}
	dp := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			dp.SetSym(i, j, d.At(perm[i], perm[j]))
		}
	}
	for _, m := range []gmcorr.CorrelationModel{JB2009{}, GA2010{}} {
		c, err := m.Covariance(d, "SA(0.5)")
		if err != nil {
			t.Fatal(err)
		}
		cp, err := m.Covariance(dp, "SA(0.5)")
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if cp.At(i, j) != c.At(perm[i], perm[j]) {
					t.Errorf("%T: (%d, %d) differs after permutation", m, i, j)
				}
			}
		}
	}
}

func TestNew(t *testing.T) {
	m, err := New("jb2009", true)
	if err != nil {
		t.Fatal(err)
	}
	if jb, ok := m.(JB2009); !ok || !jb.Vs30Clustered {
		t.Errorf("have %#v", m)
	}
	if m, err := New("GA2010", false); err != nil || m != (GA2010{}) {
		t.Errorf("have %#v, %v", m, err)
	}
	m, err = New("exponential(12.5)", false)
	if err != nil {
		t.Fatal(err)
	}
	if e, ok := m.(Exponential); !ok || e.Range != 12.5 {
		t.Errorf("have %#v", m)
	}
	for _, name := range []string{"", "BJ2008", "exponential(0)", "exponential(x)"} {
		if _, err := New(name, false); err == nil {
			t.Errorf("%q: want error", name)
		}
	}
}
