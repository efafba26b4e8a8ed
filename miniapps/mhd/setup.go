package mhd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"

	"github.com/notargets/gofem2d/fem"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/solver"
	"github.com/notargets/gofem2d/utils"
)

// State holds the projected initial conditions on the H1 space
type State struct {
	Fields Fields
	Domain Domain
	Mesh   *mesh.Mesh
	Fes    *fem.FiniteElementSpace

	Phi, Psi, W, J *fem.GridFunction
	BackPsi, E0    *fem.GridFunction

	// Discrete equilibrium: -Laplace(psi_h) = -J with psi on the boundary
	PsiH             *fem.GridFunction
	EquilibriumError float64
	Solve            solver.Result
}

type Summary struct {
	Title              string                `json:"Title"`
	Case               int                   `json:"Case"`
	Params             Params                `json:"Params"`
	Domain             Domain                `json:"Domain"`
	FESpace            string                `json:"FESpace"`
	Elements           int                   `json:"Elements"`
	Unknowns           int                   `json:"Unknowns"`
	Ranges             map[string][2]float64 `json:"Ranges"`
	EquilibriumL2Error float64               `json:"EquilibriumL2Error"`
	Iterations         int                   `json:"Iterations"`
	Converged          bool                  `json:"Converged"`
}

// Setup projects the initial conditions of the selected case and checks
// them against the discrete equilibrium
func Setup(opts *Options) (st *State, err error) {
	opts.Print()
	st = &State{}
	if st.Fields, err = opts.Params.Case(opts.Case); err != nil {
		return nil, err
	}
	if st.Domain, err = st.Fields.Domain.Override(opts.Domain); err != nil {
		return nil, err
	}
	if opts.Order < 1 {
		return nil, fmt.Errorf("polynomial order must be at least 1, have %d", opts.Order)
	}
	d := st.Domain
	if st.Mesh, err = mesh.NewRectangle(opts.NX, opts.NY, opts.ElementType,
		d.XMin, d.YMin, d.XMax, d.YMax); err != nil {
		return nil, err
	}
	for l := 0; l < opts.RefineLevels; l++ {
		if err = st.Mesh.UniformRefinement(); err != nil {
			return nil, err
		}
	}
	fec, err := fem.NewH1Collection(opts.Order)
	if err != nil {
		return nil, err
	}
	if st.Fes, err = fem.NewFiniteElementSpace(st.Mesh, fec); err != nil {
		return nil, err
	}
	fmt.Printf("Number of finite element unknowns: %d\n", st.Fes.NDofs())

	project := func(c fem.FunctionCoefficient) *fem.GridFunction {
		gf := fem.NewGridFunction(st.Fes)
		if c != nil {
			gf.ProjectCoefficient(c)
		}
		return gf
	}
	st.Phi = project(st.Fields.Phi)
	st.Psi = project(st.Fields.Psi)
	st.W = project(st.Fields.W)
	st.J = project(st.Fields.J)
	st.BackPsi = project(st.Fields.BackPsi)
	st.E0 = project(st.Fields.E0)
	for _, name := range fieldNames {
		lo, hi := st.field(name).MinMax()
		fmt.Printf("%-8s range: [%12.5e, %12.5e]\n", name, lo, hi)
	}

	if err = st.verifyEquilibrium(opts); err != nil {
		return nil, err
	}
	fmt.Printf("\n|| psi_h - psi ||_{L^2} = %g\n\n", st.EquilibriumError)

	if len(opts.OutputDir) != 0 {
		if err = st.Save(opts.OutputDir, opts); err != nil {
			return nil, err
		}
	}
	if opts.Visualization {
		utils.PlotVertexField(st.Mesh.Vertices, st.Mesh.Triangles(), st.Psi.VertexValues(), opts.PlotHold)
	}
	return
}

var fieldNames = []string{"phi", "psi", "w", "j", "backpsi", "e0"}

func (st *State) field(name string) *fem.GridFunction {
	switch name {
	case "phi":
		return st.Phi
	case "psi":
		return st.Psi
	case "w":
		return st.W
	case "j":
		return st.J
	case "backpsi":
		return st.BackPsi
	case "e0":
		return st.E0
	}
	panic(fmt.Sprintf("unknown field %s", name))
}

func (st *State) verifyEquilibrium(opts *Options) (err error) {
	var (
		fes      = st.Fes
		essBdr   = fes.BdrMarker(true)
		essTdofs = fes.GetEssentialTrueDofs(essBdr)
	)
	b := fem.NewLinearForm(fes)
	b.AddDomainIntegrator(fem.DomainLFIntegrator{Q: fem.ProductCoefficient{Scale: -1, Q: st.Fields.J}})
	b.Assemble()

	st.PsiH = fem.NewGridFunction(fes)
	st.PsiH.ProjectBdrCoefficient(st.Fields.Psi, essBdr)

	a := fem.NewBilinearForm(fes)
	a.AddDomainIntegrator(fem.DiffusionIntegrator{Q: fem.ConstantCoefficient(1)})
	a.EnableStaticCondensation()
	if err = a.Assemble(); err != nil {
		return
	}
	ls, err := a.FormLinearSystem(essTdofs, st.PsiH, b)
	if err != nil {
		return
	}
	st.Solve, err = solver.Solve(ls.A, ls.B, ls.X, opts.Preconditioner, opts.Solver)
	if err != nil {
		if !errors.Is(err, solver.ErrNotConverged) {
			return
		}
		log.Printf("warning: equilibrium solve: %v", err)
	}
	if err = a.RecoverFEMSolution(ls.X, b, st.PsiH); err != nil {
		return
	}
	st.EquilibriumError = st.PsiH.ComputeL2Error(st.Fields.Psi)
	return
}

func (st *State) Summary(opts *Options) (s Summary) {
	s = Summary{
		Title:              fmt.Sprintf("reduced MHD initial conditions, case %d", st.Fields.Case),
		Case:               st.Fields.Case,
		Params:             opts.Params,
		Domain:             st.Domain,
		FESpace:            st.Fes.FEC.Name(),
		Elements:           st.Mesh.NumElements,
		Unknowns:           st.Fes.NDofs(),
		Ranges:             make(map[string][2]float64),
		EquilibriumL2Error: st.EquilibriumError,
		Iterations:         st.Solve.Iterations,
		Converged:          st.Solve.Converged,
	}
	for _, name := range fieldNames {
		lo, hi := st.field(name).MinMax()
		s.Ranges[name] = [2]float64{lo, hi}
	}
	return
}

// Save writes the vertex values of all fields to mhd_init.vtk and the run
// summary to summary.yaml
func (st *State) Save(dir string, opts *Options) (err error) {
	if err = os.MkdirAll(dir, 0755); err != nil {
		return
	}
	pointData := make(map[string][]float64, len(fieldNames)+1)
	for _, name := range fieldNames {
		pointData[name] = st.field(name).VertexValues()
	}
	pointData["psi_h"] = st.PsiH.VertexValues()
	if err = st.Mesh.SaveVTK(filepath.Join(dir, "mhd_init.vtk"), "MHD initial conditions", pointData); err != nil {
		return
	}
	data, err := yaml.Marshal(st.Summary(opts))
	if err != nil {
		return fmt.Errorf("unable to encode summary: %w", err)
	}
	if err = os.WriteFile(filepath.Join(dir, "summary.yaml"), data, 0644); err != nil {
		return fmt.Errorf("unable to write summary: %w", err)
	}
	return
}
