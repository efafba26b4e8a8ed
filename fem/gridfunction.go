package fem

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// GridFunction holds the dof values of a function in a finite element space
type GridFunction struct {
	Fes  *FiniteElementSpace
	Data []float64
}

// NewGridFunction returns the zero function in the space
func NewGridFunction(fes *FiniteElementSpace) *GridFunction {
	return &GridFunction{Fes: fes, Data: make([]float64, fes.NDofs())}
}

// ProjectCoefficient interpolates the coefficient at every nodal point
func (gf *GridFunction) ProjectCoefficient(c Coefficient) {
	fes := gf.Fes
	for k := 0; k < fes.GetNE(); k++ {
		var (
			fe   = fes.GetFE(k)
			T    = NewElementTransformation(fes.Mesh, k)
			dofs = fes.ElementDofs(k)
		)
		for i, node := range fe.Nodes {
			gf.Data[dofs[i]] = c.Eval(T.Transform(node))
		}
	}
}

// ProjectBdrCoefficient interpolates the coefficient on the nodes of the
// boundary edges whose attribute is marked, leaving other dofs untouched
func (gf *GridFunction) ProjectBdrCoefficient(c Coefficient, marker []int) {
	var (
		fes = gf.Fes
		m   = fes.Mesh
	)
	for b, be := range m.Boundary {
		a := be.Attribute - 1
		if a < 0 || a >= len(marker) || marker[a] == 0 {
			continue
		}
		var (
			fe     = fes.GetFE(be.Element)
			T      = NewElementTransformation(m, be.Element)
			global = fes.BoundaryEdgeDofs(b)
		)
		for i, l := range fe.EdgeDofs(be.LocalEdge) {
			gf.Data[global[i]] = c.Eval(T.Transform(fe.Nodes[l]))
		}
	}
}

// ValueAt evaluates the function at a reference point of element k
func (gf *GridFunction) ValueAt(k int, ref [2]float64) (v float64) {
	var (
		fe    = gf.Fes.GetFE(k)
		dofs  = gf.Fes.ElementDofs(k)
		shape = make([]float64, fe.Dof())
	)
	fe.CalcShape(ref, shape)
	for i, d := range dofs {
		v += shape[i] * gf.Data[d]
	}
	return
}

// ComputeL2Error integrates (u_h - exact)^2 over the mesh and returns the
// square root
func (gf *GridFunction) ComputeL2Error(exact Coefficient) float64 {
	var (
		fes = gf.Fes
		sum float64
	)
	for k := 0; k < fes.GetNE(); k++ {
		var (
			fe    = fes.GetFE(k)
			T     = NewElementTransformation(fes.Mesh, k)
			dofs  = fes.ElementDofs(k)
			shape = make([]float64, fe.Dof())
		)
		for _, ip := range IntRule(fe.Geom, 2*fe.Order+3) {
			fe.CalcShape(ip.X, shape)
			var uh float64
			for i, d := range dofs {
				uh += shape[i] * gf.Data[d]
			}
			_, det := T.Jacobian(ip.X)
			diff := uh - exact.Eval(T.Transform(ip.X))
			sum += ip.Weight * det * diff * diff
		}
	}
	return math.Sqrt(sum)
}

// ComputeMaxNodalError is the largest |u_h - exact| over the mesh vertices
func (gf *GridFunction) ComputeMaxNodalError(exact Coefficient) (maxErr float64) {
	for v, x := range gf.Fes.Mesh.Vertices {
		maxErr = math.Max(maxErr, math.Abs(gf.Data[v]-exact.Eval(x)))
	}
	return
}

// Max returns the largest vertex value, never less than zero
func (gf *GridFunction) Max() (t float64) {
	for _, v := range gf.Data[:gf.Fes.NVertexDofs()] {
		if v > t {
			t = v
		}
	}
	return
}

// MinMax returns the extreme dof values
func (gf *GridFunction) MinMax() (lo, hi float64) {
	return floats.Min(gf.Data), floats.Max(gf.Data)
}

// Values returns the dof vector
func (gf *GridFunction) Values() []float64 { return gf.Data }

// VertexValues returns the values at the mesh vertices, indexed by vertex
func (gf *GridFunction) VertexValues() (v []float64) {
	v = make([]float64, gf.Fes.NVertexDofs())
	copy(v, gf.Data)
	return
}

// Integral integrates the function over the mesh
func (gf *GridFunction) Integral() (sum float64) {
	fes := gf.Fes
	for k := 0; k < fes.GetNE(); k++ {
		var (
			fe    = fes.GetFE(k)
			T     = NewElementTransformation(fes.Mesh, k)
			dofs  = fes.ElementDofs(k)
			shape = make([]float64, fe.Dof())
		)
		for _, ip := range IntRule(fe.Geom, fe.Order+2) {
			fe.CalcShape(ip.X, shape)
			_, det := T.Jacobian(ip.X)
			for i, d := range dofs {
				sum += ip.Weight * det * shape[i] * gf.Data[d]
			}
		}
	}
	return
}

// SubtractMean shifts the function to zero mean over the domain. Lagrange
// shape functions sum to one so a constant shift applies to every dof.
func (gf *GridFunction) SubtractMean() {
	var area float64
	for k := 0; k < gf.Fes.GetNE(); k++ {
		area += gf.Fes.Mesh.ElementArea(k)
	}
	floats.AddConst(-gf.Integral()/area, gf.Data)
}
