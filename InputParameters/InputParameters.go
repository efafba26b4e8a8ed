package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"

	"github.com/notargets/gofem2d/solver"
)

// Solver holds the linear solver controls shared by all problems
type Solver struct {
	MaxIterations  int     `json:"MaxIterations"`
	RelTol         float64 `json:"RelTol"`
	AbsTol         float64 `json:"AbsTol"`
	PrintLevel     int     `json:"PrintLevel"`
	Preconditioner string  `json:"Preconditioner"` // "gs", "jacobi" or "none"
}

// ApplyTo overrides the solver settings and preconditioner name with every
// value set in the file
func (s *Solver) ApplyTo(settings *solver.Settings, precond *string) {
	if s.MaxIterations > 0 {
		settings.MaxIter = s.MaxIterations
	}
	if s.RelTol > 0 {
		settings.RelTol = s.RelTol
	}
	if s.AbsTol > 0 {
		settings.AbsTol = s.AbsTol
	}
	if s.PrintLevel > 0 {
		settings.PrintLevel = s.PrintLevel
	}
	if len(s.Preconditioner) != 0 {
		*precond = s.Preconditioner
	}
}

// Diffusion parameters obtained from the YAML input file
type Diffusion struct {
	Title              string `json:"Title"`
	MeshFile           string `json:"MeshFile"`
	NX                 int    `json:"NX"`
	NY                 int    `json:"NY"`
	ElementType        string `json:"ElementType"` // "quad" or "tri"
	RefineLevels       int    `json:"RefineLevels"`
	PolynomialOrder    int    `json:"PolynomialOrder"`
	StaticCondensation bool   `json:"StaticCondensation"`
	EssentialBCs       []int  `json:"EssentialBCs"` // Boundary attributes held at the exact solution
	Partitions         int    `json:"Partitions"`
	Solver             Solver `json:"Solver"`
}

func (ip *Diffusion) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *Diffusion) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	if len(ip.MeshFile) != 0 {
		fmt.Printf("[%s]\t\t= Mesh File\n", ip.MeshFile)
	} else {
		fmt.Printf("[%d x %d %s]\t= Generated Mesh\n", ip.NX, ip.NY, ip.ElementType)
	}
	fmt.Printf("[%d]\t\t\t\t= Refine Levels\n", ip.RefineLevels)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Printf("[%v]\t\t\t= Static Condensation\n", ip.StaticCondensation)
	fmt.Printf("%v\t\t\t\t= Essential BCs\n", ip.EssentialBCs)
	ip.Solver.Print()
}

func (s *Solver) Print() {
	fmt.Printf("[%d]\t\t\t\t= Max Iterations\n", s.MaxIterations)
	fmt.Printf("%8.2e\t\t= Relative Tolerance\n", s.RelTol)
	fmt.Printf("%8.2e\t\t= Absolute Tolerance\n", s.AbsTol)
	fmt.Printf("[%s]\t\t\t\t= Preconditioner\n", s.Preconditioner)
}

// MHD parameters of the reduced MHD initial conditions
type MHD struct {
	Title           string             `json:"Title"`
	Case            int                `json:"Case"`
	Beta            float64            `json:"Beta"`
	Lx              float64            `json:"Lx"`
	Lambda          float64            `json:"Lambda"`
	Resistivity     float64            `json:"Resistivity"`
	Ep              float64            `json:"Ep"`
	Tau             float64            `json:"Tau"`
	NX              int                `json:"NX"`
	NY              int                `json:"NY"`
	ElementType     string             `json:"ElementType"`
	RefineLevels    int                `json:"RefineLevels"`
	PolynomialOrder int                `json:"PolynomialOrder"`
	Domain          map[string]float64 `json:"Domain"` // Optional XMin, XMax, YMin, YMax override
	Solver          Solver             `json:"Solver"`
}

func (ip *MHD) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *MHD) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t\t= Case\n", ip.Case)
	fmt.Printf("%8.5f\t\t= Beta\n", ip.Beta)
	fmt.Printf("%8.5f\t\t= Lx\n", ip.Lx)
	fmt.Printf("%8.5f\t\t= Lambda\n", ip.Lambda)
	fmt.Printf("%8.5f\t\t= Resistivity\n", ip.Resistivity)
	fmt.Printf("%8.5f\t\t= Ep\n", ip.Ep)
	fmt.Printf("%8.5f\t\t= Tau\n", ip.Tau)
	fmt.Printf("[%d x %d %s]\t= Mesh\n", ip.NX, ip.NY, ip.ElementType)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	keys := make([]string, len(ip.Domain))
	i := 0
	for k := range ip.Domain {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Domain[%s] = %v\n", key, ip.Domain[key])
	}
}
