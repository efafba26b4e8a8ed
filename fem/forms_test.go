package fem

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofem2d/mesh"
)

func newSpace(t *testing.T, n int, et mesh.ElementType, p int) *FiniteElementSpace {
	m, err := mesh.NewCartesian2D(n, n, et, 1, 1)
	require.NoError(t, err)
	fec, err := NewH1Collection(p)
	require.NoError(t, err)
	fes, err := NewFiniteElementSpace(m, fec)
	require.NoError(t, err)
	return fes
}

func solveDense(t *testing.T, ls *LinearSystem) []float64 {
	var x mat.VecDense
	require.NoError(t, x.SolveVec(mat.DenseCopyOf(ls.A), mat.NewVecDense(ls.Size(), ls.B)))
	return x.RawVector().Data
}

func TestSpaceDofs(t *testing.T) {
	{ // 2x2 quads, p=3
		fes := newSpace(t, 2, mesh.Quad, 3)
		assert.Equal(t, 9, fes.NVertexDofs())
		assert.Equal(t, 9+12*2, fes.NExposedDofs())
		assert.Equal(t, 49, fes.NDofs())
		assert.Equal(t, "H1_2D_P3", fes.FEC.Name())
		ess := fes.GetEssentialTrueDofs(fes.BdrMarker(true))
		assert.Len(t, ess, 24)
		assert.Len(t, fes.GetEssentialTrueDofs(fes.BdrMarker(false, mesh.BdrBottom)), 7)
		assert.Empty(t, fes.GetEssentialTrueDofs(fes.BdrMarker(false)))
	}
	{ // 2x2 cells split into 8 triangles, p=3
		fes := newSpace(t, 2, mesh.Triangle, 3)
		assert.Equal(t, 9+16*2, fes.NExposedDofs())
		assert.Equal(t, 49, fes.NDofs())
		assert.Len(t, fes.GetEssentialTrueDofs(fes.BdrMarker(true)), 24)
	}
}

// Interpolating a polynomial inside the space must reproduce it everywhere,
// which only holds if shared edge dofs are numbered consistently
func TestProjectionContinuity(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	f := FunctionCoefficient(func(x [2]float64) float64 {
		return x[0]*x[0]*x[0] + x[0]*x[1]*x[1] - 2*x[1]*x[1] + 1
	})
	for _, et := range []mesh.ElementType{mesh.Triangle, mesh.Quad} {
		m, err := mesh.NewCartesian2D(3, 2, et, 1, 1)
		require.NoError(t, err)
		// Shuffle vertex numbering through refinement so edge orientations vary
		require.NoError(t, m.UniformRefinement())
		fec, err := NewH1Collection(3)
		require.NoError(t, err)
		fes, err := NewFiniteElementSpace(m, fec)
		require.NoError(t, err)
		gf := NewGridFunction(fes)
		gf.ProjectCoefficient(f)
		for k := 0; k < fes.GetNE(); k++ {
			T := NewElementTransformation(m, k)
			for n := 0; n < 5; n++ {
				x := [2]float64{r.Float64(), r.Float64()}
				if et == mesh.Triangle && x[0]+x[1] > 1 {
					x = [2]float64{1 - x[0], 1 - x[1]}
				}
				require.InDelta(t, f.Eval(T.Transform(x)), gf.ValueAt(k, x), 1.e-10)
			}
		}
		assert.Less(t, gf.ComputeL2Error(f), 1.e-12)
		assert.Less(t, gf.ComputeMaxNodalError(f), 1.e-12)
		// Exact integral of f over the unit square
		assert.InDelta(t, 0.25+1./6.-2./3.+1, gf.Integral(), 1.e-12)
	}
}

// A unit quad and a triangle sharing the edge x = 1, traversed in opposite
// directions by the two elements
func mixedMesh(t *testing.T) *mesh.Mesh {
	m := mesh.NewMesh()
	m.Vertices = [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {2, 0}}
	m.AddElement(mesh.Quad, []int{0, 1, 2, 3}, 1)
	m.AddElement(mesh.Triangle, []int{1, 4, 2}, 2)
	require.NoError(t, m.BuildConnectivity())
	return m
}

func TestMixedMeshContinuity(t *testing.T) {
	for p := 1; p <= 6; p++ {
		fec, err := NewH1Collection(p)
		require.NoError(t, err)
		fes, err := NewFiniteElementSpace(mixedMesh(t), fec)
		require.NoError(t, err)
		// Quad edge 1 and triangle edge 2 share p-1 edge dofs
		assert.Equal(t, 5+6*(p-1), fes.NExposedDofs())

		// Polynomials in both P_p and Q_p are reproduced exactly
		poly := FunctionCoefficient(func(x [2]float64) float64 {
			return math.Pow(x[1], float64(p)) - x[0]*math.Pow(x[1], float64(p-1)) + 2
		})
		gf := NewGridFunction(fes)
		gf.ProjectCoefficient(poly)
		assert.Less(t, gf.ComputeL2Error(poly), 1.e-12, "p=%d", p)
		assert.Less(t, gf.ComputeMaxNodalError(poly), 1.e-12, "p=%d", p)

		// Traces of a non-polynomial interpolant agree along the shared edge
		gf.ProjectCoefficient(FunctionCoefficient(func(x [2]float64) float64 {
			return math.Sin(3*x[1]) + x[0]*math.Exp(x[1])
		}))
		for _, y := range []float64{0.1, 0.37, 0.5, 0.81} {
			assert.InDelta(t, gf.ValueAt(0, [2]float64{1, y}), gf.ValueAt(1, [2]float64{0, y}), 1.e-13,
				"p=%d y=%g", p, y)
		}
	}
}

func TestMassAndBoundaryForms(t *testing.T) {
	for _, et := range []mesh.ElementType{mesh.Triangle, mesh.Quad} {
		fes := newSpace(t, 3, et, 2)
		a := NewBilinearForm(fes)
		a.AddDomainIntegrator(MassIntegrator{})
		require.NoError(t, a.Assemble())
		b := NewLinearForm(fes)
		b.AddBoundaryIntegrator(BoundaryLFIntegrator{Q: ConstantCoefficient(1)})
		b.AddBoundaryIntegrator(BoundaryLFIntegrator{Q: ConstantCoefficient(10)},
			fes.BdrMarker(false, mesh.BdrTop))
		b.AddDomainIntegrator(DomainLFIntegrator{Q: ConstantCoefficient(2)})
		b.Assemble()
		x := NewGridFunction(fes)
		ls, err := a.FormLinearSystem(nil, x, b)
		require.NoError(t, err)
		// 1^T M 1 is the area
		var (
			n    = ls.Size()
			ones = make([]float64, n)
			sum  float64
		)
		for i := range ones {
			ones[i] = 1
		}
		y := mat.NewVecDense(n, nil)
		y.MulVec(ls.A, mat.NewVecDense(n, ones))
		for i := 0; i < n; i++ {
			sum += y.AtVec(i)
		}
		assert.InDelta(t, 1., sum, 1.e-12)
		// Perimeter + 10 * top length + 2 * area
		var bsum float64
		for _, v := range b.Values() {
			bsum += v
		}
		assert.InDelta(t, 4.+10.+2., bsum, 1.e-12)
	}
}

func TestFormLinearSystemErrors(t *testing.T) {
	fes := newSpace(t, 2, mesh.Quad, 1)
	a := NewBilinearForm(fes)
	a.AddDomainIntegrator(DiffusionIntegrator{})
	b := NewLinearForm(fes)
	x := NewGridFunction(fes)
	_, err := a.FormLinearSystem(nil, x, b)
	assert.Error(t, err)
	require.NoError(t, a.Assemble())
	_, err = a.FormLinearSystem([]int{fes.NDofs()}, x, b)
	assert.Error(t, err)
}

// -Laplace(u) = f with u = x^2 + 2y^2 - xy lies in the space for p >= 2, so
// the discrete solution is exact up to round-off
func TestPoissonExactSolution(t *testing.T) {
	var (
		exact = FunctionCoefficient(func(x [2]float64) float64 {
			return x[0]*x[0] + 2*x[1]*x[1] - x[0]*x[1]
		})
		rhs = ConstantCoefficient(-6)
	)
	for _, et := range []mesh.ElementType{mesh.Triangle, mesh.Quad} {
		for _, sc := range []bool{false, true} {
			fes := newSpace(t, 3, et, 3)
			ess := fes.GetEssentialTrueDofs(fes.BdrMarker(true))
			b := NewLinearForm(fes)
			b.AddDomainIntegrator(DomainLFIntegrator{Q: rhs})
			b.Assemble()
			x := NewGridFunction(fes)
			x.ProjectBdrCoefficient(exact, fes.BdrMarker(true))
			a := NewBilinearForm(fes)
			a.AddDomainIntegrator(DiffusionIntegrator{Q: ConstantCoefficient(1)})
			if sc {
				a.EnableStaticCondensation()
			}
			require.NoError(t, a.Assemble())
			ls, err := a.FormLinearSystem(ess, x, b)
			require.NoError(t, err)
			if sc {
				assert.True(t, ls.Condensed)
				assert.Equal(t, fes.NExposedDofs(), ls.Size())
			} else {
				assert.Equal(t, fes.NDofs(), ls.Size())
			}
			X := solveDense(t, ls)
			require.NoError(t, a.RecoverFEMSolution(X, b, x))
			assert.Less(t, x.ComputeL2Error(exact), 1.e-10, "%v static condensation %v", et, sc)
			assert.Less(t, x.ComputeMaxNodalError(exact), 1.e-10)
		}
	}
}

func TestPoissonConvergence(t *testing.T) {
	var (
		exact = FunctionCoefficient(func(x [2]float64) float64 {
			return math.Sin(math.Pi*x[0]) * math.Sin(math.Pi*x[1])
		})
		rhs = ProductCoefficient{Scale: 2 * math.Pi * math.Pi, Q: exact}
	)
	solve := func(n int, et mesh.ElementType, p int) float64 {
		fes := newSpace(t, n, et, p)
		ess := fes.GetEssentialTrueDofs(fes.BdrMarker(true))
		b := NewLinearForm(fes)
		b.AddDomainIntegrator(DomainLFIntegrator{Q: rhs})
		b.Assemble()
		x := NewGridFunction(fes)
		a := NewBilinearForm(fes)
		a.AddDomainIntegrator(DiffusionIntegrator{})
		a.EnableStaticCondensation()
		require.NoError(t, a.Assemble())
		ls, err := a.FormLinearSystem(ess, x, b)
		require.NoError(t, err)
		require.NoError(t, a.RecoverFEMSolution(solveDense(t, ls), b, x))
		return x.ComputeL2Error(exact)
	}
	for _, et := range []mesh.ElementType{mesh.Triangle, mesh.Quad} {
		for p := 1; p <= 3; p++ {
			e1, e2 := solve(4, et, p), solve(8, et, p)
			rate := math.Log2(e1 / e2)
			assert.Greater(t, rate, float64(p+1)-0.3, "%v p=%d errors %g %g", et, p, e1, e2)
		}
	}
}

// Assembly split across mesh partitions matches serial assembly
func TestPartitionedAssembly(t *testing.T) {
	serial := newSpace(t, 4, mesh.Triangle, 2)
	parallel := newSpace(t, 4, mesh.Triangle, 2)
	parallel.Mesh.EToP = make([]int, parallel.Mesh.NumElements)
	for k := range parallel.Mesh.EToP {
		parallel.Mesh.EToP[k] = k % 3
	}
	assemble := func(fes *FiniteElementSpace) *LinearSystem {
		a := NewBilinearForm(fes)
		a.AddDomainIntegrator(DiffusionIntegrator{})
		a.AddDomainIntegrator(MassIntegrator{Q: ConstantCoefficient(0.5)})
		require.NoError(t, a.Assemble())
		b := NewLinearForm(fes)
		b.AddDomainIntegrator(DomainLFIntegrator{Q: ConstantCoefficient(1)})
		b.Assemble()
		ls, err := a.FormLinearSystem(nil, NewGridFunction(fes), b)
		require.NoError(t, err)
		return ls
	}
	ls1, ls2 := assemble(serial), assemble(parallel)
	assert.True(t, mat.EqualApprox(ls1.A, ls2.A, 1.e-14))
	assert.InDeltaSlice(t, ls1.B, ls2.B, 1.e-14)

	// Unpartitioned meshes are split into contiguous blocks covering every element
	blocks := assemblyBlocks(serial, 5)
	require.Len(t, blocks, 5)
	var all []int
	for i, b := range blocks {
		assert.Len(t, b, []int{7, 7, 6, 6, 6}[i])
		all = append(all, b...)
	}
	for k, e := range all {
		assert.Equal(t, k, e)
	}
	assert.Len(t, assemblyBlocks(parallel, 5), 3)
	assert.Len(t, assemblyBlocks(newSpace(t, 1, mesh.Quad, 1), 8), 1)
}

func TestGridFunctionUtilities(t *testing.T) {
	fes := newSpace(t, 2, mesh.Quad, 2)
	gf := NewGridFunction(fes)
	gf.ProjectCoefficient(FunctionCoefficient(func(x [2]float64) float64 { return x[0] - 2 }))
	assert.Equal(t, 0., gf.Max()) // Every vertex value is negative
	lo, hi := gf.MinMax()
	assert.InDelta(t, -2., lo, 1.e-14)
	assert.InDelta(t, -1., hi, 1.e-14)
	assert.Len(t, gf.VertexValues(), fes.NVertexDofs())
	gf.SubtractMean()
	assert.InDelta(t, 0., gf.Integral(), 1.e-14)
	assert.InDelta(t, 0.5, gf.Max(), 1.e-14)
}
