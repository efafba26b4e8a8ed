package fem

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofem2d/utils"
)

// condensedElement holds what static condensation needs to eliminate and
// later recover the interior dofs of one element
type condensedElement struct {
	lu     mat.LU     // Factorization of A_ii
	invAie *mat.Dense // A_ii^{-1} A_ie
	aei    *mat.Dense // A_ei
	schur  *mat.Dense // A_ee - A_ei A_ii^{-1} A_ie
}

// BilinearForm is the operator a(u, v) = sum of its domain integrators
type BilinearForm struct {
	fes         *FiniteElementSpace
	integrators []BilinearFormIntegrator
	staticCond  bool

	elmats    []*mat.Dense
	condensed []*condensedElement // nil entries for elements without interior dofs
}

// LinearSystem is the assembled system A X = B after essential dof elimination
type LinearSystem struct {
	A         *sparse.CSR
	X, B      []float64
	Essential []int
	Condensed bool
}

// NewBilinearForm creates an empty form on the space
func NewBilinearForm(fes *FiniteElementSpace) *BilinearForm {
	return &BilinearForm{fes: fes}
}

// AddDomainIntegrator adds an element integral
func (a *BilinearForm) AddDomainIntegrator(integ BilinearFormIntegrator) {
	a.integrators = append(a.integrators, integ)
}

// EnableStaticCondensation eliminates element interior dofs from the linear
// system built by FormLinearSystem. It has no effect on spaces without
// interior dofs.
func (a *BilinearForm) EnableStaticCondensation() { a.staticCond = true }

// StaticCondensationIsEnabled reports whether condensation will be applied
func (a *BilinearForm) StaticCondensationIsEnabled() bool {
	return a.staticCond && a.fes.NExposedDofs() < a.fes.NDofs()
}

// Assemble computes every element matrix. Elements of each mesh partition are
// processed by their own goroutine. An unpartitioned mesh is split into
// contiguous element blocks, one per CPU.
func (a *BilinearForm) Assemble() error {
	var (
		fes   = a.fes
		parts = assemblyBlocks(fes, runtime.NumCPU())
		errs  = make([]error, len(parts))
		wg    sync.WaitGroup
	)
	a.elmats = make([]*mat.Dense, fes.GetNE())
	a.condensed = make([]*condensedElement, fes.GetNE())
	for p, elems := range parts {
		wg.Add(1)
		go func(p int, elems []int) {
			defer wg.Done()
			for _, k := range elems {
				var (
					fe    = fes.GetFE(k)
					nd    = fe.Dof()
					T     = NewElementTransformation(fes.Mesh, k)
					elmat = mat.NewDense(nd, nd, nil)
					tmp   = mat.NewDense(nd, nd, nil)
				)
				for _, integ := range a.integrators {
					integ.AssembleElementMatrix(fe, T, tmp)
					elmat.Add(elmat, tmp)
				}
				a.elmats[k] = elmat
				if a.StaticCondensationIsEnabled() && fe.NumInteriorDofs > 0 {
					ce, err := condense(elmat, fe.NumExposedDofs())
					if err != nil {
						errs[p] = fmt.Errorf("element %d: %w", k, err)
						return
					}
					a.condensed[k] = ce
				}
			}
		}(p, elems)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func assemblyBlocks(fes *FiniteElementSpace, np int) (parts [][]int) {
	if fes.Mesh.NumPartitions() > 1 {
		return fes.Mesh.PartitionElements()
	}
	pm := utils.NewPartitionMap(np, fes.GetNE())
	parts = make([][]int, pm.ParallelDegree)
	for bn := range parts {
		kMin, kMax := pm.GetBucketRange(bn)
		parts[bn] = make([]int, 0, pm.GetBucketDimension(bn))
		for k := kMin; k < kMax; k++ {
			parts[bn] = append(parts[bn], k)
		}
	}
	return
}

func condense(elmat *mat.Dense, ne int) (ce *condensedElement, err error) {
	var (
		nd, _ = elmat.Dims()
		aee   = elmat.Slice(0, ne, 0, ne)
		aei   = elmat.Slice(0, ne, ne, nd)
		aie   = elmat.Slice(ne, nd, 0, ne)
		aii   = elmat.Slice(ne, nd, ne, nd)
	)
	ce = &condensedElement{
		invAie: mat.NewDense(nd-ne, ne, nil),
		aei:    mat.DenseCopyOf(aei),
		schur:  mat.DenseCopyOf(aee),
	}
	ce.lu.Factorize(aii)
	if err = ce.lu.SolveTo(ce.invAie, false, aie); err != nil {
		return nil, fmt.Errorf("interior block is singular: %w", err)
	}
	var corr mat.Dense
	corr.Mul(aei, ce.invAie)
	ce.schur.Sub(ce.schur, &corr)
	return
}

// ElementMatrix returns the assembled matrix of element k
func (a *BilinearForm) ElementMatrix(k int) *mat.Dense { return a.elmats[k] }

// FormLinearSystem builds A X = B from the assembled form, the current
// solution guess x (which carries the essential boundary values) and the
// right hand side b. Essential dofs are eliminated symmetrically: their rows
// and columns are removed, the diagonal set to one and B corrected with the
// known values. With static condensation the system only involves vertex and
// edge dofs.
func (a *BilinearForm) FormLinearSystem(essTdofs []int, x *GridFunction, b *LinearForm) (ls *LinearSystem, err error) {
	if a.elmats == nil {
		return nil, fmt.Errorf("bilinear form is not assembled")
	}
	var (
		fes       = a.fes
		condensed = a.StaticCondensationIsEnabled()
		n         = fes.NDofs()
		bv        = b.Values()
		xv        = x.Data
	)
	if condensed {
		n = fes.NExposedDofs()
	}
	isEss := make([]bool, n)
	for _, d := range essTdofs {
		if d < 0 || d >= n {
			return nil, fmt.Errorf("essential dof %d outside system of size %d", d, n)
		}
		isEss[d] = true
	}
	ls = &LinearSystem{
		X:         make([]float64, n),
		B:         make([]float64, n),
		Essential: essTdofs,
		Condensed: condensed,
	}
	copy(ls.X, xv[:n])
	copy(ls.B, bv[:n])

	dok := sparse.NewDOK(n, n)
	for k := 0; k < fes.GetNE(); k++ {
		var (
			dofs  = fes.ElementDofs(k)
			elmat = a.elmats[k]
		)
		if condensed {
			fe := fes.GetFE(k)
			ne := fe.NumExposedDofs()
			if ce := a.condensed[k]; ce != nil {
				// B_e -= A_ei A_ii^{-1} b_i
				bi := mat.NewVecDense(fe.NumInteriorDofs, nil)
				for j := 0; j < fe.NumInteriorDofs; j++ {
					bi.SetVec(j, bv[dofs[ne+j]])
				}
				var y, corr mat.VecDense
				if err = ce.lu.SolveVecTo(&y, false, bi); err != nil {
					return nil, fmt.Errorf("element %d: %w", k, err)
				}
				corr.MulVec(ce.aei, &y)
				for i := 0; i < ne; i++ {
					ls.B[dofs[i]] -= corr.AtVec(i)
				}
				elmat = ce.schur
			}
			dofs = dofs[:ne]
		}
		for i, gi := range dofs {
			if isEss[gi] {
				continue
			}
			for j, gj := range dofs {
				v := elmat.At(i, j)
				if isEss[gj] {
					ls.B[gi] -= v * xv[gj]
					continue
				}
				dok.Set(gi, gj, dok.At(gi, gj)+v)
			}
		}
	}
	for _, d := range essTdofs {
		dok.Set(d, d, 1)
		ls.B[d] = xv[d]
	}
	ls.A = dok.ToCSR()
	return
}

// RecoverFEMSolution copies the solution of the linear system back into the
// grid function, reconstructing condensed interior dofs from b
func (a *BilinearForm) RecoverFEMSolution(X []float64, b *LinearForm, x *GridFunction) error {
	var (
		fes = a.fes
		bv  = b.Values()
	)
	copy(x.Data, X)
	if len(X) == fes.NDofs() {
		return nil
	}
	for k := 0; k < fes.GetNE(); k++ {
		ce := a.condensed[k]
		if ce == nil {
			continue
		}
		var (
			fe   = fes.GetFE(k)
			ne   = fe.NumExposedDofs()
			ni   = fe.NumInteriorDofs
			dofs = fes.ElementDofs(k)
			bi   = mat.NewVecDense(ni, nil)
			xe   = mat.NewVecDense(ne, nil)
		)
		for j := 0; j < ni; j++ {
			bi.SetVec(j, bv[dofs[ne+j]])
		}
		for i := 0; i < ne; i++ {
			xe.SetVec(i, X[dofs[i]])
		}
		// x_i = A_ii^{-1} b_i - A_ii^{-1} A_ie x_e
		var y, corr mat.VecDense
		if err := ce.lu.SolveVecTo(&y, false, bi); err != nil {
			return fmt.Errorf("element %d: %w", k, err)
		}
		corr.MulVec(ce.invAie, xe)
		for j := 0; j < ni; j++ {
			x.Data[dofs[ne+j]] = y.AtVec(j) - corr.AtVec(j)
		}
	}
	return nil
}

// Size returns the number of unknowns in the system
func (ls *LinearSystem) Size() int { return len(ls.B) }

// ProjectOutConstants removes the component of B along the constant vector,
// making a pure Neumann system consistent
func (ls *LinearSystem) ProjectOutConstants() {
	mean := floats.Sum(ls.B) / float64(len(ls.B))
	floats.AddConst(-mean, ls.B)
}
