package mhd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofem2d/InputParameters"
	"github.com/notargets/gofem2d/fem"
	"github.com/notargets/gofem2d/mesh"
)

func laplacianFD(f fem.FunctionCoefficient, x [2]float64, h float64) float64 {
	var (
		c  = f(x)
		xp = f([2]float64{x[0] + h, x[1]})
		xm = f([2]float64{x[0] - h, x[1]})
		yp = f([2]float64{x[0], x[1] + h})
		ym = f([2]float64{x[0], x[1] - h})
	)
	return (xp + xm + yp + ym - 4*c) / (h * h)
}

func testParams() Params {
	p := DefaultParams()
	p.Beta = 0.1
	p.ResiG = 0.01
	return p
}

func samplePoints(d Domain) (pts [][2]float64) {
	for _, s := range []float64{0.13, 0.37, 0.5, 0.71, 0.94} {
		for _, r := range []float64{0.21, 0.5, 0.88} {
			pts = append(pts, [2]float64{
				d.XMin + s*(d.XMax-d.XMin),
				d.YMin + r*(d.YMax-d.YMin),
			})
		}
	}
	return
}

func TestCurrentIsLaplacianOfFlux(t *testing.T) {
	p := testParams()
	for icase := 1; icase <= 4; icase++ {
		f, err := p.Case(icase)
		require.NoError(t, err)
		for _, x := range samplePoints(f.Domain) {
			assert.InDeltaf(t, laplacianFD(f.Psi, x, 1.e-3), f.J(x), 1.e-4,
				"case %d at %v", icase, x)
			assert.Equal(t, 0., f.Phi(x))
			assert.Equal(t, 0., f.W(x))
		}
	}
}

func TestElectricFieldBalancesBackground(t *testing.T) {
	p := testParams()
	for icase := 2; icase <= 4; icase++ {
		f, err := p.Case(icase)
		require.NoError(t, err)
		require.NotNil(t, f.E0)
		for _, x := range samplePoints(f.Domain) {
			assert.InDeltaf(t, p.ResiG*laplacianFD(f.BackPsi, x, 1.e-3), f.E0(x), 1.e-5,
				"case %d at %v", icase, x)
		}
	}
	f, err := p.Case(1)
	require.NoError(t, err)
	assert.Nil(t, f.E0)
	assert.Equal(t, Domain{0, p.Lx, 0, 1}, f.Domain)
	assert.InDelta(t, -0.25, f.BackPsi([2]float64{1, 0.25}), 1.e-15)
}

func TestCaseErrors(t *testing.T) {
	p := DefaultParams()
	_, err := p.Case(5)
	assert.Error(t, err)
	p.Lx = 0
	_, err = p.Case(1)
	assert.Error(t, err)
	p = DefaultParams()
	p.Lambda = 0
	_, err = p.Case(3)
	assert.Error(t, err)
	_, err = p.Case(2)
	assert.Error(t, err)
}

func TestDomainOverride(t *testing.T) {
	d := Domain{-1, 1, -1, 1}
	do, err := d.Override(map[string]float64{"XMin": 0, "YMax": 2})
	require.NoError(t, err)
	assert.Equal(t, Domain{0, 1, -1, 2}, do)
	_, err = d.Override(map[string]float64{"ZMin": 0})
	assert.Error(t, err)
	_, err = d.Override(map[string]float64{"XMax": -2})
	assert.Error(t, err)
}

func TestSetup(t *testing.T) {
	for icase := 1; icase <= 4; icase++ {
		opts := DefaultOptions()
		opts.Case = icase
		opts.Params = testParams()
		opts.NX, opts.NY = 16, 16
		opts.Order = 3
		opts.Solver.PrintLevel = 0
		opts.Solver.RelTol = 1.e-10
		opts.OutputDir = t.TempDir()
		st, err := Setup(opts)
		require.NoError(t, err)
		assert.Equal(t, 256, st.Mesh.NumElements)
		assert.True(t, st.Solve.Converged)
		// Cubic elements reproduce the equilibrium to discretization accuracy
		assert.Lessf(t, st.EquilibriumError, 2.e-3, "case %d", icase)

		lo, hi := st.Phi.MinMax()
		assert.Equal(t, 0., lo)
		assert.Equal(t, 0., hi)
		_, err = os.Stat(filepath.Join(opts.OutputDir, "mhd_init.vtk"))
		assert.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(opts.OutputDir, "summary.yaml"))
		require.NoError(t, err)
		var s Summary
		require.NoError(t, yaml.Unmarshal(data, &s))
		assert.Equal(t, icase, s.Case)
		assert.Equal(t, "H1_2D_P3", s.FESpace)
		assert.Equal(t, st.Domain, s.Domain)
		assert.Equal(t, opts.Params, s.Params)
		assert.Len(t, s.Ranges, 6)
	}
}

func TestSetupErrors(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputDir = ""
	opts.Case = 0
	_, err := Setup(opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.OutputDir = ""
	opts.Order = 0
	_, err = Setup(opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.OutputDir = ""
	opts.Domain = map[string]float64{"XMin": 5}
	_, err = Setup(opts)
	assert.Error(t, err)
}

func TestApplyParameters(t *testing.T) {
	var ip InputParameters.MHD
	require.NoError(t, ip.Parse([]byte(`
Case: 3
Lambda: 0.5
Resistivity: 1.e-4
NX: 12
ElementType: triangle
PolynomialOrder: 3
Domain:
  XMax: 2
`)))
	opts := DefaultOptions()
	require.NoError(t, opts.ApplyParameters(&ip))
	assert.Equal(t, 3, opts.Case)
	assert.Equal(t, 0.5, opts.Params.Lambda)
	assert.Equal(t, 1.e-4, opts.Params.ResiG)
	assert.Equal(t, 0.001, opts.Params.Beta)
	assert.Equal(t, 0.2, opts.Params.Ep)
	assert.Equal(t, 12, opts.NX)
	assert.Equal(t, 16, opts.NY)
	assert.Equal(t, mesh.Triangle, opts.ElementType)
	assert.Equal(t, 3, opts.Order)
	assert.Equal(t, 2., opts.Domain["XMax"])
}
