package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rrey/collection-ganeti/api/v1alpha1"
	"github.com/rrey/collection-ganeti/internal/loader"
	"github.com/rrey/collection-ganeti/internal/output"
)

var applyState string

var applyCmd = &cobra.Command{
	Use:   "apply <manifest.yaml>",
	Short: "Converge an instance toward its declared state",
	Long: `Apply a GanetiInstance manifest against the cluster.

The manifest declares the instance spec and its desired state (present,
absent, started, stopped, restarted). apply observes the instance through
the RAPI, decides whether a lifecycle job is needed, submits at most one,
and reports whether anything changed.

Re-applying the same manifest is a no-op: an instance already in its
desired state is left alone. The --state flag overrides the manifest's
spec.state for one invocation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestPath := args[0]

		if err := output.ValidateFormat(outputFormat); err != nil {
			return err
		}

		inst, err := loader.LoadFromFile(manifestPath)
		if err != nil {
			return fmt.Errorf("failed to load manifest: %w", err)
		}

		if cmd.Flags().Changed("state") {
			state := v1alpha1.DesiredState(applyState)
			if !state.Valid() {
				return fmt.Errorf("invalid --state %q (valid: %v)", applyState, v1alpha1.ValidStates())
			}
			inst.Spec.State = state
		}

		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		log := newLogger(settings)
		reconciler := newReconciler(settings, log)

		res, err := reconciler.Reconcile(context.Background(), inst)
		if err != nil {
			return fmt.Errorf("failed to reconcile instance %s: %w", inst.GetName(), err)
		}

		formatter, err := output.NewFormatter(output.Options{
			Format:    output.Format(outputFormat),
			NoHeaders: noHeaders,
		})
		if err != nil {
			return err
		}

		text, err := formatter.FormatResult(res)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}

		fmt.Print(text)
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVar(&applyState, "state", "", "override the manifest's spec.state")
}
