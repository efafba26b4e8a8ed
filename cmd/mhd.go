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
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gofem2d/InputParameters"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/miniapps/mhd"
)

// MHDCmd represents the mhd command
var MHDCmd = &cobra.Command{
	Use:   "mhd",
	Short: "Initial conditions of the reduced MHD equations",
	Long: `
Projects the flux function, current density, background flux and external
electric field of one of the reduced MHD test cases onto an H1 space, then
checks the equilibrium Laplace(psi) = j with a Dirichlet solve.

Cases: 1 = uniform field, 2 = Harris sheet, 3 = magnetic islands,
4 = magnetic islands with a Gaussian perturbation

gofem2d mhd -c 2 --beta 0.001 --lambda 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := mhdOptions()
		if err != nil {
			return err
		}
		return instrument(opts.OutputDir, func() error {
			_, err := mhd.Setup(opts)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(MHDCmd)
	def := mhd.DefaultOptions()
	f := MHDCmd.Flags()
	f.IntP("case", "c", def.Case, "initial condition case, 1 through 4")
	f.Float64("beta", def.Params.Beta, "perturbation magnitude")
	f.Float64("lx", def.Params.Lx, "domain length in x for cases 1 and 2")
	f.Float64("lambda", def.Params.Lambda, "current sheet / island width parameter")
	f.Float64("resi", def.Params.ResiG, "resistivity")
	f.Float64("ep", def.Params.Ep, "island parameter of cases 3 and 4")
	f.Float64("tau", def.Params.Tau, "decay rate of the case 4 perturbation")
	f.IntP("order", "o", def.Order, "finite element order (polynomial degree)")
	f.IntP("refine", "r", def.RefineLevels, "number of uniform refinements")
	f.Int("nx", def.NX, "number of cells in x")
	f.Int("ny", def.NY, "number of cells in y")
	f.Bool("quads", true, "use quadrilaterals, triangles when false")
	f.Bool("vis", false, "plot the flux function")
	f.String("out", def.OutputDir, "directory for mhd_init.vtk and summary.yaml, empty disables output")
	f.StringP("inputConditionsFile", "I", "", "YAML file of problem parameters")
	addSolverFlags(f, def.Solver)
}

func mhdOptions() (opts *mhd.Options, err error) {
	opts = mhd.DefaultOptions()
	var ip InputParameters.MHD
	if err = readInputFile(ip.Parse); err != nil {
		return
	}
	if err = opts.ApplyParameters(&ip); err != nil {
		return
	}
	setInt("case", &opts.Case)
	setFloat("beta", &opts.Params.Beta)
	setFloat("lx", &opts.Params.Lx)
	setFloat("lambda", &opts.Params.Lambda)
	setFloat("resi", &opts.Params.ResiG)
	setFloat("ep", &opts.Params.Ep)
	setFloat("tau", &opts.Params.Tau)
	setInt("order", &opts.Order)
	setInt("refine", &opts.RefineLevels)
	setInt("nx", &opts.NX)
	setInt("ny", &opts.NY)
	if viper.IsSet("quads") {
		opts.ElementType = mesh.Triangle
		if viper.GetBool("quads") {
			opts.ElementType = mesh.Quad
		}
	}
	setBool("vis", &opts.Visualization)
	setString("out", &opts.OutputDir)
	applySolverFlags(&opts.Solver, &opts.Preconditioner, &opts.PlotHold)
	return
}
