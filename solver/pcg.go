package solver

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofem2d/utils"
)

var (
	ErrNotConverged = errors.New("PCG did not converge")
	ErrNaN          = errors.New("NaN in PCG iteration")
)

// Settings controls the PCG iteration. Convergence is declared when the
// preconditioned residual norm sqrt(r.z) falls below
// max(RelTol * initial norm, AbsTol).
type Settings struct {
	PrintLevel int // 0 quiet, 1 summary, 2 every iteration
	MaxIter    int
	RelTol     float64
	AbsTol     float64
}

func DefaultSettings() Settings {
	return Settings{
		PrintLevel: 1,
		MaxIter:    1000,
		RelTol:     1e-6,
		AbsTol:     0,
	}
}

type Result struct {
	Iterations  int
	Converged   bool
	InitialNorm float64
	FinalNorm   float64
}

// PCG solves the symmetric positive (semi)definite system A x = b with the
// preconditioned conjugate gradient method, using x as initial guess. A nil
// preconditioner is the identity.
func PCG(A Operator, M Preconditioner, b, x []float64, s Settings) (res Result, err error) {
	var (
		n  = A.Size()
		r  = make([]float64, n)
		z  = make([]float64, n)
		d  = make([]float64, n)
		Ad = make([]float64, n)
	)
	if len(b) != n || len(x) != n {
		return res, fmt.Errorf("dimension mismatch: operator %d, b %d, x %d", n, len(b), len(x))
	}
	if M == nil {
		M = Identity{}
	}
	A.MulVec(x, r)
	floats.SubTo(r, b, r)
	M.Apply(r, z)
	copy(d, z)

	nom := floats.Dot(z, r)
	if math.IsNaN(nom) {
		return res, fmt.Errorf("%w: initial residual", ErrNaN)
	}
	if nom < 0 {
		return res, fmt.Errorf("preconditioner is not positive definite: (r, z) = %g", nom)
	}
	res.InitialNorm = math.Sqrt(nom)
	res.FinalNorm = res.InitialNorm
	stop := math.Max(nom*s.RelTol*s.RelTol, s.AbsTol*s.AbsTol)
	if s.PrintLevel > 1 {
		log.Printf("   Iteration : %3d  (B r, r) = %g", 0, nom)
	}
	if nom <= stop {
		res.Converged = true
		return
	}
	for it := 1; it <= s.MaxIter; it++ {
		A.MulVec(d, Ad)
		den := floats.Dot(d, Ad)
		if den <= 0 {
			if den == 0 {
				break
			}
			return res, fmt.Errorf("operator is not positive definite: (d, A d) = %g", den)
		}
		alpha := nom / den
		floats.AddScaled(x, alpha, d)
		floats.AddScaled(r, -alpha, Ad)
		M.Apply(r, z)
		betanom := floats.Dot(r, z)
		if math.IsNaN(betanom) || utils.IsNan(x) {
			return res, fmt.Errorf("%w at iteration %d", ErrNaN, it)
		}
		if betanom < 0 {
			return res, fmt.Errorf("preconditioner is not positive definite: (r, z) = %g", betanom)
		}
		res.Iterations = it
		res.FinalNorm = math.Sqrt(betanom)
		if s.PrintLevel > 1 {
			log.Printf("   Iteration : %3d  (B r, r) = %g", it, betanom)
		}
		if betanom <= stop {
			res.Converged = true
			break
		}
		floats.AddScaledTo(d, z, betanom/nom, d)
		nom = betanom
	}
	if s.PrintLevel > 0 {
		log.Printf("PCG: Number of iterations: %d, ||r||_B = %g (initial %g)",
			res.Iterations, res.FinalNorm, res.InitialNorm)
	}
	if !res.Converged {
		return res, fmt.Errorf("%w after %d iterations, ||r||_B = %g",
			ErrNotConverged, res.Iterations, res.FinalNorm)
	}
	return
}

// Solve runs PCG on a sparse matrix with the named preconditioner
func Solve(A *sparse.CSR, b, x []float64, precond string, s Settings) (res Result, err error) {
	op := NewCSR(A)
	M, err := NewPreconditioner(precond, op)
	if err != nil {
		return
	}
	return PCG(op, M, b, x, s)
}
