/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/notargets/gofem2d/InputParameters"
	"github.com/notargets/gofem2d/examples/diffusion"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/solver"
)

// DiffusionCmd represents the diffusion command
var DiffusionCmd = &cobra.Command{
	Use:   "diffusion",
	Short: "Poisson problem on the unit square with Neumann boundary data",
	Long: `
Solves -Laplace(u) = f with the exact solution u = sin(2 pi x) sin(2 pi y),
Neumann data on the boundary attributes not listed with --essential, and
reports the L2 error of the discrete solution.

gofem2d diffusion -o 3 --sc --nx 8 --ny 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := diffusionOptions()
		if err != nil {
			return err
		}
		return instrument(opts.OutputDir, func() error {
			if levels := viper.GetInt("study"); levels > 1 {
				_, err := diffusion.RunStudy(opts, levels)
				return err
			}
			_, err := diffusion.Run(opts)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(DiffusionCmd)
	def := diffusion.DefaultOptions()
	f := DiffusionCmd.Flags()
	f.StringP("mesh", "m", "", "mesh file to use (.msh, .su2 or .neu), generates a Cartesian mesh when empty")
	f.IntP("order", "o", def.Order, "finite element order (polynomial degree)")
	f.Bool("static-condensation", false, "enable static condensation")
	f.Bool("vis", false, "plot the solution")
	f.IntP("refine", "r", def.RefineLevels, "number of uniform refinements")
	f.Int("nx", def.NX, "number of generated cells in x")
	f.Int("ny", def.NY, "number of generated cells in y")
	f.Bool("quads", true, "generate quadrilaterals, triangles when false")
	f.IntP("partitions", "p", def.Partitions, "number of METIS partitions used for parallel assembly")
	f.IntSlice("essential", nil, "boundary attributes held at the exact solution (1=bottom 2=right 3=top 4=left)")
	f.String("out", def.OutputDir, "directory for refined.vtk and summary.yaml, empty disables output")
	f.StringP("inputConditionsFile", "I", "", "YAML file of problem parameters")
	f.Int("study", 0, "run a convergence study over this many refinement levels")
	addSolverFlags(f, def.Solver)
	f.SetNormalizeFunc(aliasFlags(map[string]string{"sc": "static-condensation"}))
}

func addSolverFlags(f *pflag.FlagSet, def solver.Settings) {
	f.String("precond", "gs", "preconditioner: gs, jacobi or none")
	f.Int("max-iter", def.MaxIter, "maximum PCG iterations")
	f.Float64("rel-tol", def.RelTol, "relative PCG tolerance on the preconditioned residual")
	f.Int("print-level", def.PrintLevel, "PCG output: 0 quiet, 1 summary, 2 every iteration")
	f.Duration("hold", 30*time.Second, "time to hold the plot window open")
}

func aliasFlags(aliases map[string]string) func(*pflag.FlagSet, string) pflag.NormalizedName {
	return func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if full, ok := aliases[name]; ok {
			name = full
		}
		return pflag.NormalizedName(name)
	}
}

func readInputFile(parse func([]byte) error) (err error) {
	name := viper.GetString("inputConditionsFile")
	if len(name) == 0 {
		return
	}
	var data []byte
	if data, err = os.ReadFile(name); err != nil {
		return
	}
	if err = parse(data); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return
}

func setInt(key string, dst *int) {
	if viper.IsSet(key) {
		*dst = viper.GetInt(key)
	}
}

func setFloat(key string, dst *float64) {
	if viper.IsSet(key) {
		*dst = viper.GetFloat64(key)
	}
}

func setBool(key string, dst *bool) {
	if viper.IsSet(key) {
		*dst = viper.GetBool(key)
	}
}

func setString(key string, dst *string) {
	if viper.IsSet(key) {
		*dst = viper.GetString(key)
	}
}

// getIntSlice accepts a list from flags and config files or a comma
// separated string from the environment
func getIntSlice(key string) ([]int, error) {
	if s, ok := viper.Get(key).(string); ok {
		return cast.ToIntSliceE(strings.FieldsFunc(strings.Trim(s, "[]"), func(r rune) bool {
			return r == ',' || r == ' '
		}))
	}
	return cast.ToIntSliceE(viper.Get(key))
}

func applySolverFlags(s *solver.Settings, precond *string, hold *time.Duration) {
	setString("precond", precond)
	setInt("max-iter", &s.MaxIter)
	setFloat("rel-tol", &s.RelTol)
	setInt("print-level", &s.PrintLevel)
	if viper.IsSet("hold") {
		*hold = viper.GetDuration("hold")
	}
}

// diffusionOptions layers the input file and then any flag, environment or
// config value over the defaults
func diffusionOptions() (opts *diffusion.Options, err error) {
	opts = diffusion.DefaultOptions()
	var ip InputParameters.Diffusion
	if err = readInputFile(ip.Parse); err != nil {
		return
	}
	if err = opts.ApplyParameters(&ip); err != nil {
		return
	}
	setString("mesh", &opts.MeshFile)
	setInt("order", &opts.Order)
	setBool("static-condensation", &opts.StaticCondensation)
	setBool("vis", &opts.Visualization)
	setInt("refine", &opts.RefineLevels)
	setInt("nx", &opts.NX)
	setInt("ny", &opts.NY)
	if viper.IsSet("quads") {
		opts.ElementType = mesh.Triangle
		if viper.GetBool("quads") {
			opts.ElementType = mesh.Quad
		}
	}
	setInt("partitions", &opts.Partitions)
	if viper.IsSet("essential") {
		if opts.EssentialBCs, err = getIntSlice("essential"); err != nil {
			return nil, fmt.Errorf("essential boundary attributes: %w", err)
		}
	}
	setString("out", &opts.OutputDir)
	applySolverFlags(&opts.Solver, &opts.Preconditioner, &opts.PlotHold)
	return
}
