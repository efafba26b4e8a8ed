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
	"log"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gofem2d/utils"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gofem2d",
	Short: "Continuous Galerkin finite element examples in two dimensions",
	Long: `
Solves model problems with H1 finite elements on triangle and quadrilateral
meshes: a Poisson problem with Neumann or Dirichlet data and the initial
conditions of the reduced MHD equations.

gofem2d diffusion --order 2 --nx 16 --ny 16
gofem2d mhd --case 2 --order 3`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return viper.BindPFlags(cmd.Flags())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gofem2d.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "write a profile of the run to the output directory: cpu or mem")
	rootCmd.PersistentFlags().Bool("perf", false, "count the CPU instructions retired by the run (linux only)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".gofem2d" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".gofem2d")
	}

	viper.SetEnvPrefix("GOFEM2D")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// instrument runs the model under the profiler and instruction counter
// selected on the command line. Profiled runs also report memory usage.
func instrument(outDir string, run func() error) (err error) {
	if len(outDir) == 0 {
		outDir = "."
	}
	mode := viper.GetString("profile")
	switch mode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(outDir)).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(outDir)).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q, expected cpu or mem", mode)
	}
	if viper.GetBool("perf") {
		err = countInstructions(run)
	} else {
		err = run()
	}
	if len(mode) != 0 {
		log.Printf("Memory usage: %s", utils.GetMemUsage())
	}
	return
}
