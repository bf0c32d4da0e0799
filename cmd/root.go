package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool
var noiseName string
var argCount int
var replicaCount int
var stepCount int64
var mcSteps int64
var mcStride int64
var scaleData bool
var scale0, scaleMin, scaleMax, dScale float64
var sigma0, sigmaMin, sigmaMax, dSigma float64
var sigmaMean float64
var kbt float64
var trueScale float64
var dataNoise float64
var randomSeed int64
var convergeWindow int
var monitorAddr string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "metainf",
	Short: "Bayesian metainference bias sampling",
	Long: `metainf runs a Bayesian metainference bias over synthetic observables.
Among other features:

  - Gaussian (single and per-datum sigma) and long-tailed noise models
  - A Metropolis sampler over the uncertainty and data-scaling parameters
  - Multiple in-process replicas sharing a consensus scaling factor
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (default is much more parsimonious)")

	rootCmd.PersistentFlags().StringVarP(&noiseName, "noise", "n", "", "Noise type: GAUSS, MGAUSS, or LTAIL")
	rootCmd.PersistentFlags().IntVarP(&argCount, "args", "a", 8, "Number of synthetic observables")
	rootCmd.PersistentFlags().IntVarP(&replicaCount, "replicas", "R", 2, "Number of in-process replicas")
	rootCmd.PersistentFlags().Int64VarP(&stepCount, "steps", "S", 2000, "Number of force-evaluation steps")

	rootCmd.PersistentFlags().Int64Var(&mcSteps, "mc-steps", 1, "MC iterations per sampler invocation")
	rootCmd.PersistentFlags().Int64Var(&mcStride, "mc-stride", 1, "Force-evaluation steps between sampler invocations")

	rootCmd.PersistentFlags().BoolVar(&scaleData, "scale-data", false, "Sample a scaling factor common to all values and replicas")
	rootCmd.PersistentFlags().Float64Var(&scale0, "scale0", 1.0, "Initial scaling factor")
	rootCmd.PersistentFlags().Float64Var(&scaleMin, "scale-min", 0.5, "Minimum scaling factor")
	rootCmd.PersistentFlags().Float64Var(&scaleMax, "scale-max", 1.5, "Maximum scaling factor")
	rootCmd.PersistentFlags().Float64Var(&dScale, "dscale", 0.05, "Maximum MC move of the scaling factor")

	rootCmd.PersistentFlags().Float64Var(&sigma0, "sigma0", 0.5, "Initial data uncertainty")
	rootCmd.PersistentFlags().Float64Var(&sigmaMin, "sigma-min", 0.01, "Minimum data uncertainty")
	rootCmd.PersistentFlags().Float64Var(&sigmaMax, "sigma-max", 5.0, "Maximum data uncertainty")
	rootCmd.PersistentFlags().Float64Var(&dSigma, "dsigma", 0.05, "Maximum MC move of the data uncertainty")
	rootCmd.PersistentFlags().Float64Var(&sigmaMean, "sigma-mean", 0.1, "Uncertainty in the mean estimate (before replica scaling)")

	rootCmd.PersistentFlags().Float64Var(&kbt, "kbt", 2.494339, "Thermal energy scale (kJ/mol; 300K water-ish default)")

	rootCmd.PersistentFlags().Float64Var(&trueScale, "true-scale", 1.0, "Scaling hidden in the synthetic data")
	rootCmd.PersistentFlags().Float64Var(&dataNoise, "data-noise", 0.2, "Half-width of the uniform noise on synthetic observables")

	rootCmd.PersistentFlags().Int64VarP(&randomSeed, "seed", "r", 1, "Random seed to use")
	rootCmd.PersistentFlags().IntVar(&convergeWindow, "window", 500, "Trace window for the equilibration report")
	rootCmd.PersistentFlags().StringVar(&monitorAddr, "http", "", "Address for the live expvar monitor (empty disables)")

	rootCmd.MarkPersistentFlagRequired("noise")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
