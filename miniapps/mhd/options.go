package mhd

import (
	"fmt"
	"time"

	"github.com/notargets/gofem2d/InputParameters"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/solver"
)

type Options struct {
	Case           int
	Params         Params
	NX, NY         int
	ElementType    mesh.ElementType
	RefineLevels   int
	Order          int
	Domain         map[string]float64 // Overrides of the case default domain
	Visualization  bool
	PlotHold       time.Duration
	OutputDir      string // Empty skips the output files
	Preconditioner string
	Solver         solver.Settings
}

func DefaultOptions() *Options {
	return &Options{
		Case:        1,
		Params:      DefaultParams(),
		NX:          16,
		NY:          16,
		ElementType: mesh.Quad,
		Order:       2,
		PlotHold:    30 * time.Second,
		OutputDir:   ".",
		Solver:      solver.DefaultSettings(),
	}
}

// ApplyParameters overrides the options with every value set in the input
// file
func (o *Options) ApplyParameters(ip *InputParameters.MHD) (err error) {
	if ip.Case != 0 {
		o.Case = ip.Case
	}
	for _, f := range []struct {
		src float64
		dst *float64
	}{
		{ip.Beta, &o.Params.Beta},
		{ip.Lx, &o.Params.Lx},
		{ip.Lambda, &o.Params.Lambda},
		{ip.Resistivity, &o.Params.ResiG},
		{ip.Ep, &o.Params.Ep},
		{ip.Tau, &o.Params.Tau},
	} {
		if f.src != 0 {
			*f.dst = f.src
		}
	}
	if ip.NX > 0 {
		o.NX = ip.NX
	}
	if ip.NY > 0 {
		o.NY = ip.NY
	}
	if len(ip.ElementType) != 0 {
		if o.ElementType, err = mesh.ParseElementType(ip.ElementType); err != nil {
			return
		}
	}
	if ip.RefineLevels > 0 {
		o.RefineLevels = ip.RefineLevels
	}
	if ip.PolynomialOrder > 0 {
		o.Order = ip.PolynomialOrder
	}
	if len(ip.Domain) != 0 {
		o.Domain = ip.Domain
	}
	ip.Solver.ApplyTo(&o.Solver, &o.Preconditioner)
	return
}

// Print lists the options in command line form
func (o *Options) Print() {
	fmt.Printf("Options used:\n")
	fmt.Printf("   --case %d\n", o.Case)
	fmt.Printf("   --beta %g --lx %g --lambda %g --resi %g\n",
		o.Params.Beta, o.Params.Lx, o.Params.Lambda, o.Params.ResiG)
	fmt.Printf("   --nx %d --ny %d --quads=%v\n", o.NX, o.NY, o.ElementType == mesh.Quad)
	fmt.Printf("   --refine %d\n", o.RefineLevels)
	fmt.Printf("   --order %d\n", o.Order)
}
