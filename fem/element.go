package fem

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofem2d/mesh"
)

// FiniteElement is a nodal H1 (Lagrange) reference element. Local dofs are
// ordered vertices first, then the interior nodes of each local edge running
// from the edge's first to its second vertex, then element interior nodes.
// Both geometries place p+1 Gauss-Lobatto points along every edge, so
// triangles and quadrilaterals sharing an edge see the same edge trace.
//
// The nodal basis is expanded in an orthonormal modal basis: Legendre tensor
// products on the quadrilateral and the PKD (Koornwinder-Dubiner) basis on the
// triangle.
type FiniteElement struct {
	Geom  mesh.ElementType
	Order int
	Nodes [][2]float64 // Reference coordinates of each local dof

	NumVertexDofs   int
	NumEdgeDofs     int // Per edge
	NumInteriorDofs int

	modes [][2]int   // Modal indices (i, j)
	vinv  *mat.Dense // Inverse Vandermonde, shape_j(x) = sum_m psi_m(x) vinv(m, j)
}

// Reference vertices, counter-clockwise
var (
	triangleVertices = [][2]float64{{0, 0}, {1, 0}, {0, 1}}
	quadVertices     = [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
)

// ReferenceVertices returns the reference vertices of the element geometry
func ReferenceVertices(geom mesh.ElementType) [][2]float64 {
	switch geom {
	case mesh.Triangle:
		return triangleVertices
	case mesh.Quad:
		return quadVertices
	}
	panic(fmt.Sprintf("unknown geometry %v", geom))
}

// NewH1Triangle builds the order p Lagrange triangle. Interior nodes blend the
// 1D Gauss-Lobatto points in barycentric coordinates (Blyth and Pozrikidis),
// which reduces to the Gauss-Lobatto points on each edge.
func NewH1Triangle(p int) (fe *FiniteElement, err error) {
	if p < 1 {
		return nil, fmt.Errorf("order must be >= 1, got %d", p)
	}
	var (
		t = GaussLobatto(p)
	)
	fe = &FiniteElement{
		Geom:            mesh.Triangle,
		Order:           p,
		NumVertexDofs:   3,
		NumEdgeDofs:     p - 1,
		NumInteriorDofs: (p - 1) * (p - 2) / 2,
	}
	fe.Nodes = append(fe.Nodes, triangleVertices...)
	fe.Nodes = append(fe.Nodes, edgeNodes(triangleVertices, mesh.Triangle, t)...)
	for j := 1; j < p; j++ {
		for i := 1; i+j < p; i++ {
			k := p - i - j
			fe.Nodes = append(fe.Nodes, [2]float64{
				(1 + 2*t[i] - t[j] - t[k]) / 3,
				(1 + 2*t[j] - t[i] - t[k]) / 3,
			})
		}
	}
	for i := 0; i <= p; i++ {
		for j := 0; i+j <= p; j++ {
			fe.modes = append(fe.modes, [2]int{i, j})
		}
	}
	if err = fe.invertVandermonde(); err != nil {
		return nil, err
	}
	return
}

// NewH1Quad builds the order p tensor product Lagrange quadrilateral on
// Gauss-Lobatto nodes
func NewH1Quad(p int) (fe *FiniteElement, err error) {
	if p < 1 {
		return nil, fmt.Errorf("order must be >= 1, got %d", p)
	}
	var (
		t = GaussLobatto(p)
	)
	fe = &FiniteElement{
		Geom:            mesh.Quad,
		Order:           p,
		NumVertexDofs:   4,
		NumEdgeDofs:     p - 1,
		NumInteriorDofs: (p - 1) * (p - 1),
	}
	fe.Nodes = append(fe.Nodes, quadVertices...)
	fe.Nodes = append(fe.Nodes, edgeNodes(quadVertices, mesh.Quad, t)...)
	for j := 1; j < p; j++ {
		for i := 1; i < p; i++ {
			fe.Nodes = append(fe.Nodes, [2]float64{t[i], t[j]})
		}
	}
	for j := 0; j <= p; j++ {
		for i := 0; i <= p; i++ {
			fe.modes = append(fe.modes, [2]int{i, j})
		}
	}
	if err = fe.invertVandermonde(); err != nil {
		return nil, err
	}
	return
}

func edgeNodes(verts [][2]float64, geom mesh.ElementType, t []float64) (nodes [][2]float64) {
	p := len(t) - 1
	for _, e := range mesh.LocalEdges(geom) {
		a, b := verts[e[0]], verts[e[1]]
		for i := 1; i < p; i++ {
			nodes = append(nodes, [2]float64{
				a[0] + t[i]*(b[0]-a[0]),
				a[1] + t[i]*(b[1]-a[1]),
			})
		}
	}
	return
}

func (fe *FiniteElement) invertVandermonde() error {
	var (
		n = len(fe.Nodes)
		V = mat.NewDense(n, n, nil)
	)
	if len(fe.modes) != n {
		return fmt.Errorf("%d nodes for %d modes", n, len(fe.modes))
	}
	for i, x := range fe.Nodes {
		V.SetRow(i, fe.modal(x, nil))
	}
	fe.vinv = mat.NewDense(n, n, nil)
	if err := fe.vinv.Inverse(V); err != nil {
		return fmt.Errorf("singular Vandermonde for %v order %d: %w", fe.Geom, fe.Order, err)
	}
	return nil
}

// Dof returns the number of local dofs
func (fe *FiniteElement) Dof() int { return len(fe.Nodes) }

// NumExposedDofs is the number of vertex and edge dofs, the ones shared
// between elements
func (fe *FiniteElement) NumExposedDofs() int {
	return fe.NumVertexDofs + len(mesh.LocalEdges(fe.Geom))*fe.NumEdgeDofs
}

// EdgeDofs returns the local dofs lying on local edge i, in edge order
// (first vertex, edge interior, second vertex)
func (fe *FiniteElement) EdgeDofs(i int) (dofs []int) {
	e := mesh.LocalEdges(fe.Geom)[i]
	dofs = append(dofs, e[0])
	base := fe.NumVertexDofs + i*fe.NumEdgeDofs
	for j := 0; j < fe.NumEdgeDofs; j++ {
		dofs = append(dofs, base+j)
	}
	return append(dofs, e[1])
}

// CalcShape evaluates every shape function at the reference point
func (fe *FiniteElement) CalcShape(x [2]float64, shape []float64) {
	var (
		n   = len(fe.Nodes)
		psi = fe.modal(x, nil)
	)
	for j := 0; j < n; j++ {
		var s float64
		for m := 0; m < n; m++ {
			s += psi[m] * fe.vinv.At(m, j)
		}
		shape[j] = s
	}
}

// CalcDShape evaluates reference gradients of every shape function
func (fe *FiniteElement) CalcDShape(x [2]float64, dshape [][2]float64) {
	var (
		n    = len(fe.Nodes)
		dpsi = make([][2]float64, n)
	)
	fe.modal(x, dpsi)
	for j := 0; j < n; j++ {
		var gx, gy float64
		for m := 0; m < n; m++ {
			c := fe.vinv.At(m, j)
			gx += dpsi[m][0] * c
			gy += dpsi[m][1] * c
		}
		dshape[j] = [2]float64{gx, gy}
	}
}

// modal evaluates the orthonormal modes at a reference point, and their
// reference gradients when dpsi is not nil
func (fe *FiniteElement) modal(x [2]float64, dpsi [][2]float64) (psi []float64) {
	psi = make([]float64, len(fe.modes))
	// Modes are defined on [-1,1], d/dx = 2 d/dr
	r, s := 2*x[0]-1, 2*x[1]-1
	switch fe.Geom {
	case mesh.Quad:
		for m, ij := range fe.modes {
			fa, dfa := jacobiP(r, 0, 0, ij[0])
			gb, dgb := jacobiP(s, 0, 0, ij[1])
			psi[m] = fa * gb
			if dpsi != nil {
				dpsi[m] = [2]float64{2 * dfa * gb, 2 * fa * dgb}
			}
		}
	case mesh.Triangle:
		// Collapsed coordinates, the top vertex maps to a = -1
		a, b := -1., s
		if math.Abs(1-s) > 1.e-14 {
			a = 2*(1+r)/(1-s) - 1
		}
		h := 0.5 * (1 - b)
		for m, ij := range fe.modes {
			i := ij[0]
			fa, dfa := jacobiP(a, 0, 0, i)
			gb, dgb := jacobiP(b, float64(2*i+1), 0, ij[1])
			scale := math.Pow(2, float64(i)+0.5)
			psi[m] = scale * fa * gb * math.Pow(h, float64(i))
			if dpsi == nil {
				continue
			}
			dr, ds := dfa*gb, dfa*gb*0.5*(1+a)
			tmp := dgb * math.Pow(h, float64(i))
			if i > 0 {
				hm := math.Pow(h, float64(i-1))
				dr *= hm
				ds *= hm
				tmp -= 0.5 * float64(i) * gb * hm
			}
			ds += fa * tmp
			dpsi[m] = [2]float64{2 * scale * dr, 2 * scale * ds}
		}
	default:
		panic(fmt.Sprintf("unknown geometry %v", fe.Geom))
	}
	return
}

// jacobiP evaluates the orthonormal Jacobi polynomial P_n^(alpha,beta) and its
// derivative at x in [-1,1]
func jacobiP(x, alpha, beta float64, n int) (p, dp float64) {
	norm := func(alpha, beta float64, n int) float64 {
		lg := func(v float64) float64 {
			l, _ := math.Lgamma(v)
			return l
		}
		nf := float64(n)
		gamma := math.Exp((alpha+beta+1)*math.Ln2 - math.Log(2*nf+alpha+beta+1) +
			lg(nf+alpha+1) + lg(nf+beta+1) - lg(nf+alpha+beta+1) - lg(nf+1))
		return 1 / math.Sqrt(gamma)
	}
	p = jacobiRecurrence(x, alpha, beta, n) * norm(alpha, beta, n)
	if n > 0 {
		dp = 0.5 * (alpha + beta + float64(n) + 1) *
			jacobiRecurrence(x, alpha+1, beta+1, n-1) * norm(alpha, beta, n)
	}
	return
}

// jacobiRecurrence is the classical three term recurrence for the unscaled
// Jacobi polynomial
func jacobiRecurrence(x, alpha, beta float64, n int) float64 {
	if n == 0 {
		return 1
	}
	var (
		p0 = 1.
		p1 = 0.5 * (alpha - beta + (alpha+beta+2)*x)
	)
	for k := 1; k < n; k++ {
		kF := float64(k)
		a1 := 2 * (kF + 1) * (kF + alpha + beta + 1) * (2*kF + alpha + beta)
		a2 := (2*kF + alpha + beta + 1) * (alpha*alpha - beta*beta)
		a3 := (2*kF + alpha + beta) * (2*kF + alpha + beta + 1) * (2*kF + alpha + beta + 2)
		a4 := 2 * (kF + alpha) * (kF + beta) * (2*kF + alpha + beta + 2)
		p0, p1 = p1, ((a2+a3*x)*p1-a4*p0)/a1
	}
	return p1
}

// GaussLobatto returns the p+1 Gauss-Lobatto-Legendre points on [0,1]. The
// interior points are the Gauss-Jacobi(1,1) nodes, found as eigenvalues of the
// symmetric Jacobi matrix.
func GaussLobatto(p int) (x []float64) {
	x = make([]float64, p+1)
	x[0], x[p] = 0, 1
	n := p - 1 // Interior points
	if n < 1 {
		return
	}
	var (
		alpha, beta = 1., 1.
		J           = mat.NewSymDense(n, nil)
	)
	for i := 0; i < n; i++ {
		h1 := 2*float64(i) + alpha + beta
		J.SetSym(i, i, (beta*beta-alpha*alpha)/(h1*(h1+2)))
		if i < n-1 {
			ip1 := float64(i + 1)
			J.SetSym(i, i+1, 2./(h1+2.)*math.Sqrt(ip1*(ip1+alpha+beta)*(ip1+alpha)*(ip1+beta)/((h1+1.)*(h1+3.))))
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(J, false); !ok {
		panic("eigenvalue decomposition failed")
	}
	r := eig.Values(nil)
	sort.Float64s(r)
	for i, v := range r {
		x[i+1] = 0.5 * (v + 1)
	}
	// Symmetrize to remove round-off, so reversed edges see identical nodes
	for i := 1; i <= p/2; i++ {
		s := 0.5 * (x[i] + 1 - x[p-i])
		x[i], x[p-i] = s, 1-s
	}
	if p%2 == 0 {
		x[p/2] = 0.5
	}
	return
}
