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
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gaptooth/InputParameters"
	"github.com/notargets/gaptooth/model_problems/Bratu1D"
)

// Printed in place of Bratu1D.ErrUnsupportedExperiment
const unsupportedMessage = "This experiment is not supported."

type ModelBratu struct {
	Experiment string
	ICFile     string
	Reference  string
	SteadyIn   string
	OutputDir  string
	Graph      bool
	Verbose    bool
}

// BratuCmd represents the bratu command
var BratuCmd = &cobra.Command{
	Use:   "bratu",
	Short: "Gap-tooth projective integration of the one dimensional Bratu problem",
	Long: `
Runs one experiment on the gap-tooth discretization of u_t = u_xx + lambda exp(u):

	evolution     time integration from u = 0 to FinalTime
	steady-state  Newton-Krylov fixed point of the coarse time-stepper
	arnoldi       eigenvalues of the linearized coarse time-stepper at the steady state

gaptooth bratu --experiment steady-state -I bratu.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		mb := &ModelBratu{
			Experiment: viper.GetString("experiment"),
			ICFile:     viper.GetString("inputConditionsFile"),
			Reference:  viper.GetString("reference"),
			SteadyIn:   viper.GetString("steadyState"),
			OutputDir:  viper.GetString("outputDir"),
			Graph:      viper.GetBool("graph"),
			Verbose:    viper.GetBool("verbose"),
		}
		ip := processBratuInput(mb)
		return RunBratu(mb, ip)
	},
}

func init() {
	rootCmd.AddCommand(BratuCmd)
	BratuCmd.Flags().StringP("experiment", "e", "", "experiment to run: evolution, steady-state or arnoldi")
	BratuCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters, defaults are used when absent")
	BratuCmd.Flags().StringP("reference", "r", "", "reference .npy dataset to compare against")
	BratuCmd.Flags().StringP("steadyState", "s", "", "steady state .npy for the arnoldi experiment, computed when absent")
	BratuCmd.Flags().StringP("outputDir", "o", ".", "directory for .npy results and PNG plots, empty disables output")
	BratuCmd.Flags().BoolP("graph", "g", false, "display a graph while computing the evolution")
	BratuCmd.Flags().BoolP("verbose", "v", false, "print progress of the time-stepper and residual evaluations")
	if err := viper.BindPFlags(BratuCmd.Flags()); err != nil {
		panic(err)
	}
}

func processBratuInput(mb *ModelBratu) (ip *InputParameters.BratuParameters) {
	var (
		err error
	)
	ip = InputParameters.Defaults()
	if len(mb.ICFile) != 0 {
		var data []byte
		if data, err = os.ReadFile(mb.ICFile); err != nil {
			panic(err)
		}
		if err = ip.Parse(data); err != nil {
			panic(err)
		}
	}
	if mb.Verbose {
		ip.Print()
	}
	return
}

func RunBratu(mb *ModelBratu, ip *InputParameters.BratuParameters) (err error) {
	switch mb.Experiment {
	case Bratu1D.Evolution, Bratu1D.SteadyState, Bratu1D.Arnoldi:
	default:
		return fmt.Errorf("%w: %q", Bratu1D.ErrUnsupportedExperiment, mb.Experiment)
	}
	var c *Bratu1D.Bratu
	if c, err = Bratu1D.NewBratu(ip, mb.Verbose); err != nil {
		return
	}
	c.ShowGraph = mb.Graph
	c.Reference = mb.Reference
	c.SteadyIn = mb.SteadyIn
	c.PlotDir = mb.OutputDir
	if c.PlotDir != "" {
		if err = os.MkdirAll(c.PlotDir, 0755); err != nil {
			return fmt.Errorf("output directory: %w", err)
		}
	}
	return c.Run(mb.Experiment)
}

// userMessage is the text printed for an error returned by a command
func userMessage(err error) string {
	if errors.Is(err, Bratu1D.ErrUnsupportedExperiment) {
		return unsupportedMessage
	}
	return err.Error()
}
