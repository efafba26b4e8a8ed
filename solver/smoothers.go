package solver

import "fmt"

// Preconditioner applies an approximate inverse, z = M^{-1} r
type Preconditioner interface {
	Apply(r, z []float64)
}

// Identity is the trivial preconditioner
type Identity struct{}

func (Identity) Apply(r, z []float64) { copy(z, r) }

// JacobiSmoother scales by the inverse diagonal
type JacobiSmoother struct {
	invDiag []float64
}

func NewJacobiSmoother(A *CSR) *JacobiSmoother {
	d := A.Diagonal()
	for i, v := range d {
		if v == 0 {
			panic(fmt.Sprintf("zero diagonal in row %d", i))
		}
		d[i] = 1 / v
	}
	return &JacobiSmoother{invDiag: d}
}

func (js *JacobiSmoother) Apply(r, z []float64) {
	for i, v := range r {
		z[i] = v * js.invDiag[i]
	}
}

// GSSmoother is one symmetric Gauss-Seidel iteration (a forward then a
// backward sweep) started from zero, a symmetric positive definite
// preconditioner for SPD matrices
type GSSmoother struct {
	A    *CSR
	diag []float64
}

func NewGSSmoother(A *CSR) *GSSmoother {
	d := A.Diagonal()
	for i, v := range d {
		if v == 0 {
			panic(fmt.Sprintf("zero diagonal in row %d", i))
		}
	}
	return &GSSmoother{A: A, diag: d}
}

func (gs *GSSmoother) Apply(r, z []float64) {
	n := gs.A.Size()
	for i := range z {
		z[i] = 0
	}
	sweep := func(i int) {
		s := r[i]
		cols, vals := gs.A.Row(i)
		for p, j := range cols {
			if j != i {
				s -= vals[p] * z[j]
			}
		}
		z[i] = s / gs.diag[i]
	}
	for i := 0; i < n; i++ {
		sweep(i)
	}
	for i := n - 1; i >= 0; i-- {
		sweep(i)
	}
}

// NewPreconditioner builds a preconditioner by name: "gs" (default), "jacobi"
// or "none"
func NewPreconditioner(name string, A *CSR) (Preconditioner, error) {
	switch name {
	case "", "gs":
		return NewGSSmoother(A), nil
	case "jacobi":
		return NewJacobiSmoother(A), nil
	case "none":
		return Identity{}, nil
	}
	return nil, fmt.Errorf("unknown preconditioner %q", name)
}
