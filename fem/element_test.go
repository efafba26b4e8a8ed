package fem

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofem2d/mesh"
)

func factorial(n int) float64 {
	f := 1.
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

func TestIntegrationRules(t *testing.T) {
	for order := 0; order <= 10; order++ {
		tri, quad := TriangleRule(order), QuadRule(order)
		for a := 0; a <= order; a++ {
			for b := 0; a+b <= order; b++ {
				var sum float64
				for _, ip := range tri {
					sum += ip.Weight * math.Pow(ip.X[0], float64(a)) * math.Pow(ip.X[1], float64(b))
				}
				exact := factorial(a) * factorial(b) / factorial(a+b+2)
				require.InDelta(t, exact, sum, 1.e-14, "triangle order %d x^%d y^%d", order, a, b)
			}
			for b := 0; b <= order; b++ {
				var sum float64
				for _, ip := range quad {
					sum += ip.Weight * math.Pow(ip.X[0], float64(a)) * math.Pow(ip.X[1], float64(b))
				}
				require.InDelta(t, 1./float64((a+1)*(b+1)), sum, 1.e-14, "quad order %d x^%d y^%d", order, a, b)
			}
		}
		var length float64
		for _, ip := range SegmentRule(order) {
			length += ip.Weight * math.Pow(ip.X[0], float64(order))
		}
		assert.InDelta(t, 1./float64(order+1), length, 1.e-14)
	}
	// Rules are cached
	assert.Same(t, &TriangleRule(4)[0], &TriangleRule(4)[0])
	assert.Panics(t, func() { IntRule(mesh.ElementType(7), 2) })
}

func TestGaussLobatto(t *testing.T) {
	assert.Equal(t, []float64{0, 1}, GaussLobatto(1))
	assert.Equal(t, []float64{0, 0.5, 1}, GaussLobatto(2))
	x := GaussLobatto(3)
	assert.InDelta(t, 0.5-0.5/math.Sqrt(5), x[1], 1.e-14)
	assert.InDelta(t, 0.5+0.5/math.Sqrt(5), x[2], 1.e-14)
	x = GaussLobatto(4)
	assert.InDelta(t, 0.5-0.5*math.Sqrt(3./7.), x[1], 1.e-14)
	assert.Equal(t, 0.5, x[2])
	for p := 1; p <= 8; p++ {
		x = GaussLobatto(p)
		for i := range x {
			assert.InDelta(t, x[i], 1-x[p-i], 1.e-15)
			if i > 0 {
				assert.Greater(t, x[i], x[i-1])
			}
		}
	}
}

func TestShapeFunctions(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for p := 1; p <= 10; p++ {
		tri, err := NewH1Triangle(p)
		require.NoError(t, err)
		quad, err := NewH1Quad(p)
		require.NoError(t, err)
		assert.Equal(t, (p+1)*(p+2)/2, tri.Dof())
		assert.Equal(t, (p+1)*(p+1), quad.Dof())
		assert.Equal(t, 3*p, tri.NumExposedDofs())
		assert.Equal(t, 4*p, quad.NumExposedDofs())
		for _, fe := range []*FiniteElement{tri, quad} {
			var (
				nd     = fe.Dof()
				shape  = make([]float64, nd)
				dshape = make([][2]float64, nd)
			)
			// Nodal basis
			for i, node := range fe.Nodes {
				fe.CalcShape(node, shape)
				for j := range shape {
					delta := 0.
					if i == j {
						delta = 1
					}
					require.InDelta(t, delta, shape[j], 1.e-12, "%v p=%d node %d shape %d", fe.Geom, p, i, j)
				}
			}
			// Partition of unity, zero gradient sum and exact gradients of an
			// interpolated degree p polynomial
			f := func(x [2]float64) float64 { return math.Pow(x[0], float64(p)) - 2*math.Pow(x[1], float64(p)) }
			for n := 0; n < 10; n++ {
				x := [2]float64{r.Float64(), r.Float64()}
				if fe.Geom == mesh.Triangle && x[0]+x[1] > 1 {
					x = [2]float64{1 - x[0], 1 - x[1]}
				}
				fe.CalcShape(x, shape)
				fe.CalcDShape(x, dshape)
				var s, gx, gy, fx, fy float64
				for j := 0; j < nd; j++ {
					s += shape[j]
					gx += dshape[j][0]
					gy += dshape[j][1]
					fx += f(fe.Nodes[j]) * dshape[j][0]
					fy += f(fe.Nodes[j]) * dshape[j][1]
				}
				assert.InDelta(t, 1., s, 1.e-12)
				assert.InDelta(t, 0., gx, 1.e-10)
				assert.InDelta(t, 0., gy, 1.e-10)
				assert.InDelta(t, float64(p)*math.Pow(x[0], float64(p-1)), fx, 1.e-9, "%v p=%d", fe.Geom, p)
				assert.InDelta(t, -2*float64(p)*math.Pow(x[1], float64(p-1)), fy, 1.e-9, "%v p=%d", fe.Geom, p)
			}
			// Edge dofs lie on their edge, in order
			rv := ReferenceVertices(fe.Geom)
			for i, pair := range mesh.LocalEdges(fe.Geom) {
				dofs := fe.EdgeDofs(i)
				require.Len(t, dofs, p+1)
				assert.Equal(t, pair[0], dofs[0])
				assert.Equal(t, pair[1], dofs[p])
				a, b := rv[pair[0]], rv[pair[1]]
				prev := -1.
				for _, d := range dofs {
					x := fe.Nodes[d]
					cross := (b[0]-a[0])*(x[1]-a[1]) - (b[1]-a[1])*(x[0]-a[0])
					assert.InDelta(t, 0., cross, 1.e-14)
					dist := math.Hypot(x[0]-a[0], x[1]-a[1])
					assert.Greater(t, dist, prev)
					prev = dist
				}
			}
		}
	}
	_, err := NewH1Triangle(0)
	assert.Error(t, err)
	_, err = NewH1Quad(-1)
	assert.Error(t, err)
}

func TestEdgeNodesMatchAcrossGeometries(t *testing.T) {
	for p := 2; p <= 8; p++ {
		tri, err := NewH1Triangle(p)
		require.NoError(t, err)
		quad, err := NewH1Quad(p)
		require.NoError(t, err)
		gll := GaussLobatto(p)
		for _, fe := range []*FiniteElement{tri, quad} {
			rv := ReferenceVertices(fe.Geom)
			for i, pair := range mesh.LocalEdges(fe.Geom) {
				a, b := rv[pair[0]], rv[pair[1]]
				length := math.Hypot(b[0]-a[0], b[1]-a[1])
				for k, d := range fe.EdgeDofs(i) {
					x := fe.Nodes[d]
					// Position along the edge as a fraction of its length
					assert.InDelta(t, gll[k], math.Hypot(x[0]-a[0], x[1]-a[1])/length, 1.e-14,
						"%v p=%d edge %d node %d", fe.Geom, p, i, k)
				}
			}
		}
		// Interior triangle nodes stay inside
		for _, x := range tri.Nodes[tri.NumExposedDofs():] {
			assert.Greater(t, x[0], 0.)
			assert.Greater(t, x[1], 0.)
			assert.Less(t, x[0]+x[1], 1.)
		}
	}
}

func TestElementTransformation(t *testing.T) {
	m, err := mesh.NewRectangle(1, 1, mesh.Quad, 1, 2, 3, 3)
	require.NoError(t, err)
	T := NewElementTransformation(m, 0)
	x := T.Transform([2]float64{0.5, 0.5})
	assert.InDelta(t, 2., x[0], 1.e-14)
	assert.InDelta(t, 2.5, x[1], 1.e-14)
	J, det := T.Jacobian([2]float64{0.3, 0.7})
	assert.InDelta(t, 2., J[0][0], 1.e-14)
	assert.InDelta(t, 0., J[0][1], 1.e-14)
	assert.InDelta(t, 0., J[1][0], 1.e-14)
	assert.InDelta(t, 1., J[1][1], 1.e-14)
	assert.InDelta(t, 2., det, 1.e-14)

	// Gradient of the mapped x coordinate is (1, 0)
	fe, err := NewH1Quad(1)
	require.NoError(t, err)
	var (
		dref  = make([][2]float64, 4)
		dphys = make([][2]float64, 4)
		gx    [2]float64
	)
	fe.CalcDShape([2]float64{0.2, 0.6}, dref)
	T.PhysicalDShape([2]float64{0.2, 0.6}, dref, dphys)
	for i, c := range T.Coords {
		gx[0] += c[0] * dphys[i][0]
		gx[1] += c[0] * dphys[i][1]
	}
	assert.InDelta(t, 1., gx[0], 1.e-14)
	assert.InDelta(t, 0., gx[1], 1.e-14)

	// Clockwise coordinates are rejected
	T.Coords[1], T.Coords[3] = T.Coords[3], T.Coords[1]
	assert.Panics(t, func() { T.PhysicalDShape([2]float64{0.5, 0.5}, dref, dphys) })
}
