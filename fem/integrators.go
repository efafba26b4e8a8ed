package fem

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofem2d/mesh"
)

// BilinearFormIntegrator computes a local element matrix
type BilinearFormIntegrator interface {
	AssembleElementMatrix(fe *FiniteElement, T *ElementTransformation, elmat *mat.Dense)
}

// LinearFormIntegrator computes a local element vector from a domain integral
type LinearFormIntegrator interface {
	AssembleElementVector(fe *FiniteElement, T *ElementTransformation, elvec []float64)
}

// BoundaryFormIntegrator computes a local element vector from an integral
// over one local edge of the element
type BoundaryFormIntegrator interface {
	AssembleBoundaryVector(fe *FiniteElement, T *ElementTransformation, localEdge int, elvec []float64)
}

// DiffusionIntegrator assembles (Q grad u, grad v). A nil Q is one.
type DiffusionIntegrator struct {
	Q Coefficient
}

func (di DiffusionIntegrator) AssembleElementMatrix(fe *FiniteElement, T *ElementTransformation, elmat *mat.Dense) {
	var (
		nd    = fe.Dof()
		dref  = make([][2]float64, nd)
		dphys = make([][2]float64, nd)
		order = 2 * fe.Order
	)
	if fe.Geom == mesh.Quad {
		order += 2
	}
	elmat.Zero()
	for _, ip := range IntRule(fe.Geom, order) {
		fe.CalcDShape(ip.X, dref)
		det := T.PhysicalDShape(ip.X, dref, dphys)
		w := ip.Weight * det * evalOrOne(di.Q, T.Transform(ip.X))
		for i := 0; i < nd; i++ {
			for j := i; j < nd; j++ {
				v := w * (dphys[i][0]*dphys[j][0] + dphys[i][1]*dphys[j][1])
				elmat.Set(i, j, elmat.At(i, j)+v)
			}
		}
	}
	symmetrize(elmat)
}

// MassIntegrator assembles (Q u, v). A nil Q is one.
type MassIntegrator struct {
	Q Coefficient
}

func (mi MassIntegrator) AssembleElementMatrix(fe *FiniteElement, T *ElementTransformation, elmat *mat.Dense) {
	var (
		nd    = fe.Dof()
		shape = make([]float64, nd)
		order = 2*fe.Order + 2
	)
	elmat.Zero()
	for _, ip := range IntRule(fe.Geom, order) {
		fe.CalcShape(ip.X, shape)
		_, det := T.Jacobian(ip.X)
		w := ip.Weight * det * evalOrOne(mi.Q, T.Transform(ip.X))
		for i := 0; i < nd; i++ {
			for j := i; j < nd; j++ {
				elmat.Set(i, j, elmat.At(i, j)+w*shape[i]*shape[j])
			}
		}
	}
	symmetrize(elmat)
}

func symmetrize(m *mat.Dense) {
	n, _ := m.Dims()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.Set(j, i, m.At(i, j))
		}
	}
}

// DomainLFIntegrator assembles (Q, v)
type DomainLFIntegrator struct {
	Q Coefficient
}

func (di DomainLFIntegrator) AssembleElementVector(fe *FiniteElement, T *ElementTransformation, elvec []float64) {
	var (
		nd    = fe.Dof()
		shape = make([]float64, nd)
		order = 2*fe.Order + 2
	)
	for i := range elvec {
		elvec[i] = 0
	}
	for _, ip := range IntRule(fe.Geom, order) {
		fe.CalcShape(ip.X, shape)
		_, det := T.Jacobian(ip.X)
		w := ip.Weight * det * di.Q.Eval(T.Transform(ip.X))
		for i := 0; i < nd; i++ {
			elvec[i] += w * shape[i]
		}
	}
}

// BoundaryLFIntegrator assembles the edge integral (Q, v) on a boundary edge
type BoundaryLFIntegrator struct {
	Q Coefficient
}

func (bi BoundaryLFIntegrator) AssembleBoundaryVector(fe *FiniteElement, T *ElementTransformation, localEdge int, elvec []float64) {
	var (
		nd     = fe.Dof()
		shape  = make([]float64, nd)
		pair   = mesh.LocalEdges(fe.Geom)[localEdge]
		rv     = ReferenceVertices(fe.Geom)
		a, b   = rv[pair[0]], rv[pair[1]]
		pa, pb = T.Coords[pair[0]], T.Coords[pair[1]]
		length = math.Hypot(pb[0]-pa[0], pb[1]-pa[1])
	)
	for i := range elvec {
		elvec[i] = 0
	}
	for _, ip := range SegmentRule(2*fe.Order + 2) {
		t := ip.X[0]
		ref := [2]float64{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
		// Straight edges: the physical point is the linear blend of the end points
		x := [2]float64{pa[0] + t*(pb[0]-pa[0]), pa[1] + t*(pb[1]-pa[1])}
		fe.CalcShape(ref, shape)
		w := ip.Weight * length * bi.Q.Eval(x)
		for i := 0; i < nd; i++ {
			elvec[i] += w * shape[i]
		}
	}
}
