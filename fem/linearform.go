package fem

type boundaryIntegrator struct {
	integ  BoundaryFormIntegrator
	marker []int // nil means every boundary attribute
}

// LinearForm is the right hand side vector b(v) = sum of its integrators
type LinearForm struct {
	fes      *FiniteElementSpace
	domain   []LinearFormIntegrator
	boundary []boundaryIntegrator
	data     []float64
}

// NewLinearForm creates a zero linear form on the space
func NewLinearForm(fes *FiniteElementSpace) *LinearForm {
	return &LinearForm{fes: fes, data: make([]float64, fes.NDofs())}
}

// AddDomainIntegrator adds an element integral
func (lf *LinearForm) AddDomainIntegrator(integ LinearFormIntegrator) {
	lf.domain = append(lf.domain, integ)
}

// AddBoundaryIntegrator adds an integral over boundary edges, restricted to
// the marked attributes when a marker is given
func (lf *LinearForm) AddBoundaryIntegrator(integ BoundaryFormIntegrator, marker ...[]int) {
	bi := boundaryIntegrator{integ: integ}
	if len(marker) > 0 {
		bi.marker = marker[0]
	}
	lf.boundary = append(lf.boundary, bi)
}

// Assemble evaluates every integrator into the global vector
func (lf *LinearForm) Assemble() {
	var (
		fes = lf.fes
		m   = fes.Mesh
	)
	for i := range lf.data {
		lf.data[i] = 0
	}
	for k := 0; k < m.NumElements; k++ {
		var (
			fe    = fes.GetFE(k)
			T     = NewElementTransformation(m, k)
			dofs  = fes.ElementDofs(k)
			elvec = make([]float64, fe.Dof())
		)
		for _, integ := range lf.domain {
			integ.AssembleElementVector(fe, T, elvec)
			for i, d := range dofs {
				lf.data[d] += elvec[i]
			}
		}
	}
	for _, bi := range lf.boundary {
		for _, be := range m.Boundary {
			if bi.marker != nil {
				a := be.Attribute - 1
				if a < 0 || a >= len(bi.marker) || bi.marker[a] == 0 {
					continue
				}
			}
			var (
				fe    = fes.GetFE(be.Element)
				T     = NewElementTransformation(m, be.Element)
				dofs  = fes.ElementDofs(be.Element)
				elvec = make([]float64, fe.Dof())
			)
			bi.integ.AssembleBoundaryVector(fe, T, be.LocalEdge, elvec)
			for i, d := range dofs {
				lf.data[d] += elvec[i]
			}
		}
	}
}

// Values returns the assembled vector
func (lf *LinearForm) Values() []float64 { return lf.data }

// FESpace returns the space of the form
func (lf *LinearForm) FESpace() *FiniteElementSpace { return lf.fes }
