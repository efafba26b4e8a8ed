// Package mhd sets up the initial conditions of the reduced, incompressible
// MHD equations in stream function / flux function form: the stream
// function phi, the vorticity w, the flux function psi and the current
// density j = Laplace(psi).
package mhd

import (
	"fmt"
	"math"

	"github.com/notargets/gofem2d/fem"
)

// Params carries the physical constants shared by the initial conditions
type Params struct {
	Beta   float64 `json:"Beta"` // Perturbation magnitude
	Lx     float64 `json:"Lx"`   // Domain length in x for cases 1 and 2
	Lambda float64 `json:"Lambda"`
	ResiG  float64 `json:"Resistivity"`
	Ep     float64 `json:"Ep"`
	Tau    float64 `json:"Tau"`
}

// DefaultParams are the constants of the reference runs
func DefaultParams() Params {
	return Params{
		Beta:   0.001,
		Lx:     3.,
		Lambda: 5.,
		ResiG:  0.001,
		Ep:     0.2,
		Tau:    15.,
	}
}

// InitialPhi and InitialW are zero, every case starts at rest
func (p Params) InitialPhi(x [2]float64) float64 { return 0 }

func (p Params) InitialW(x [2]float64) float64 { return 0 }

func (p Params) perturbation(x [2]float64) float64 {
	return p.Beta * math.Sin(math.Pi*x[1]) * math.Cos(2*math.Pi/p.Lx*x[0])
}

// Case 1: uniform field with a sinusoidal perturbation

// InitialJ is Laplace(InitialPsi)
func (p Params) InitialJ(x [2]float64) float64 {
	return -math.Pi * math.Pi * (1 + 4/(p.Lx*p.Lx)) * p.perturbation(x)
}

// InitialPsi is the background flux function plus the perturbation
func (p Params) InitialPsi(x [2]float64) float64 {
	return -x[1] + p.perturbation(x)
}

// BackPsi is the equilibrium flux function of case 1
func (p Params) BackPsi(x [2]float64) float64 { return -x[1] }

// Case 2: Harris current sheet centered at y = 1/2

func (p Params) sech2(x [2]float64) float64 {
	c := math.Cosh(p.Lambda * (x[1] - 0.5))
	return 1 / (c * c)
}

// InitialJ2 is Laplace(InitialPsi2)
func (p Params) InitialJ2(x [2]float64) float64 {
	return p.Lambda*p.sech2(x) + p.InitialJ(x)
}

func (p Params) InitialPsi2(x [2]float64) float64 {
	return p.BackPsi2(x) + p.perturbation(x)
}

// BackPsi2 is the Harris sheet equilibrium
func (p Params) BackPsi2(x [2]float64) float64 {
	return math.Log(math.Cosh(p.Lambda*(x[1]-0.5))) / p.Lambda
}

// E0rhs balances the resistive diffusion of the case 2 background
func (p Params) E0rhs(x [2]float64) float64 {
	return p.ResiG * p.Lambda * p.sech2(x)
}

// Case 3: chain of magnetic islands

func (p Params) islands(x [2]float64) float64 {
	return math.Cosh(x[1]/p.Lambda) + p.Ep*math.Cos(x[0]/p.Lambda)
}

func (p Params) backJ3(x [2]float64) float64 {
	d := p.islands(x)
	return (p.Ep*p.Ep - 1) / p.Lambda / (d * d)
}

// InitialJ3 is Laplace(InitialPsi3)
func (p Params) InitialJ3(x [2]float64) float64 {
	return p.backJ3(x) -
		math.Pi*math.Pi*1.25*p.Beta*math.Cos(0.5*math.Pi*x[1])*math.Cos(math.Pi*x[0])
}

func (p Params) InitialPsi3(x [2]float64) float64 {
	return p.BackPsi3(x) + p.Beta*math.Cos(0.5*math.Pi*x[1])*math.Cos(math.Pi*x[0])
}

// BackPsi3 is the island chain equilibrium
func (p Params) BackPsi3(x [2]float64) float64 {
	return -p.Lambda * math.Log(p.islands(x))
}

// E0rhs3 balances the resistive diffusion of the island background
func (p Params) E0rhs3(x [2]float64) float64 {
	return p.ResiG * p.backJ3(x)
}

// Case 4: islands with a localized Gaussian perturbation, sharing the case 3
// background

func (p Params) gaussian(x [2]float64) float64 {
	return p.Beta * math.Exp(-p.Tau*x[1]*x[1]) * math.Cos(math.Pi*x[0])
}

// InitialJ4 is Laplace(InitialPsi4)
func (p Params) InitialJ4(x [2]float64) float64 {
	ty := 2 * p.Tau * x[1]
	return p.backJ3(x) + p.gaussian(x)*(ty*ty-math.Pi*math.Pi-2*p.Tau)
}

func (p Params) InitialPsi4(x [2]float64) float64 {
	return p.BackPsi3(x) + p.gaussian(x)
}

// Domain is the rectangle a case is posed on
type Domain struct {
	XMin float64 `json:"XMin"`
	XMax float64 `json:"XMax"`
	YMin float64 `json:"YMin"`
	YMax float64 `json:"YMax"`
}

// Override replaces the bounds named in over (XMin, XMax, YMin, YMax)
func (d Domain) Override(over map[string]float64) (do Domain, err error) {
	do = d
	for key, val := range over {
		switch key {
		case "XMin":
			do.XMin = val
		case "XMax":
			do.XMax = val
		case "YMin":
			do.YMin = val
		case "YMax":
			do.YMax = val
		default:
			return d, fmt.Errorf("unknown domain bound %q", key)
		}
	}
	if do.XMax <= do.XMin || do.YMax <= do.YMin {
		return d, fmt.Errorf("empty domain [%g,%g]x[%g,%g]", do.XMin, do.XMax, do.YMin, do.YMax)
	}
	return
}

// Fields is the set of initial conditions of one test case. E0 is nil when
// the case has no external electric field.
type Fields struct {
	Case    int
	Phi, W  fem.FunctionCoefficient
	Psi, J  fem.FunctionCoefficient
	BackPsi fem.FunctionCoefficient
	E0      fem.FunctionCoefficient
	Domain  Domain
}

// Case returns the fields and default domain of test case 1 to 4
func (p Params) Case(icase int) (f Fields, err error) {
	f = Fields{
		Case: icase,
		Phi:  p.InitialPhi,
		W:    p.InitialW,
	}
	switch icase {
	case 1:
		f.Psi, f.J, f.BackPsi = p.InitialPsi, p.InitialJ, p.BackPsi
	case 2:
		f.Psi, f.J, f.BackPsi, f.E0 = p.InitialPsi2, p.InitialJ2, p.BackPsi2, p.E0rhs
	case 3:
		f.Psi, f.J, f.BackPsi, f.E0 = p.InitialPsi3, p.InitialJ3, p.BackPsi3, p.E0rhs3
	case 4:
		f.Psi, f.J, f.BackPsi, f.E0 = p.InitialPsi4, p.InitialJ4, p.BackPsi3, p.E0rhs3
	default:
		return f, fmt.Errorf("unknown initial condition case %d, expected 1-4", icase)
	}
	switch icase {
	case 1, 2:
		if p.Lx <= 0 {
			return f, fmt.Errorf("domain length Lx must be positive, have %g", p.Lx)
		}
		f.Domain = Domain{XMin: 0, XMax: p.Lx, YMin: 0, YMax: 1}
	default:
		if p.Lambda == 0 {
			return f, fmt.Errorf("case %d requires a nonzero Lambda", icase)
		}
		f.Domain = Domain{XMin: -1, XMax: 1, YMin: -1, YMax: 1}
	}
	if icase == 2 && p.Lambda == 0 {
		return f, fmt.Errorf("case 2 requires a nonzero Lambda")
	}
	return
}
