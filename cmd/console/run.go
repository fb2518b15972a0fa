package main

import (
	"errors"

	"github.com/dragonfly-xyz/nottingham-contracts/simulation"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		scenarioPath string
		haltOnError  bool
		format       string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a YAML scenario",
		Long: `Run loads a scenario file describing pools and scripted trades, executes it and
prints every step together with the resulting reserves and prices.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if scenarioPath == "" {
				return errors.New("--scenario is required")
			}
			sc, err := simulation.LoadScenario(scenarioPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("halt-on-error") {
				sc.HaltOnError = haltOnError
			}
			return a.runScenario(cmd, sc, format)
		},
	}

	cmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "path to the scenario file")
	cmd.Flags().BoolVar(&haltOnError, "halt-on-error", false, "stop at the first rejected step (overrides the scenario)")
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format (table, json)")
	return cmd
}

func newDemoCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in demonstration scenario",
		Long: `Demo buys 5% of the asset-0 reserve ten times from three pools of increasing
depth, then sells a balanced pool's whole asset-0 reserve into it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScenario(cmd, simulation.DemoScenario(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format (table, json)")
	return cmd
}

// runScenario executes sc and renders the trajectory. A halted run still
// renders what was recorded before returning the error.
func (a *app) runScenario(cmd *cobra.Command, sc *simulation.Scenario, format string) error {
	runner := simulation.NewRunner(a.logger, a.metrics)
	traj, runErr := runner.Run(cmd.Context(), sc)
	if traj == nil {
		return runErr
	}
	if err := a.renderTrajectory(cmd.OutOrStdout(), traj, format); err != nil {
		return err
	}
	return runErr
}
