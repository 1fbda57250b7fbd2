package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rrey/collection-ganeti/api/v1alpha1"
	"github.com/rrey/collection-ganeti/internal/output"
)

var startCmd = &cobra.Command{
	Use:   "start <instance-name>",
	Short: "Start a stopped instance",
	Long: `Start an existing instance by name.

Fails when the instance does not exist; starting an already running
instance is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(cmd, args[0], v1alpha1.StateStarted)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <instance-name>",
	Short: "Shut down a running instance",
	Long: `Shut down an existing instance by name.

Fails when the instance does not exist; stopping an already stopped
instance is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(cmd, args[0], v1alpha1.StateStopped)
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart <instance-name>",
	Short: "Reboot an instance",
	Long: `Reboot an existing instance by name.

A stopped instance is started instead of rebooted. Fails when the
instance does not exist.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(cmd, args[0], v1alpha1.StateRestarted)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <instance-name>",
	Short: "Remove an instance from the cluster",
	Long: `Remove an instance by name.

This submits a destruction job and cannot be undone. Deleting an
instance that does not exist is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(cmd, args[0], v1alpha1.StateAbsent)
	},
}

// runLifecycle drives a single named instance toward the given state, without
// a manifest. The reconciler enforces the same preconditions either way.
func runLifecycle(cmd *cobra.Command, name string, state v1alpha1.DesiredState) error {
	if err := output.ValidateFormat(outputFormat); err != nil {
		return err
	}

	inst := v1alpha1.NewInstance(name)
	inst.Spec.State = state

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log := newLogger(settings)
	reconciler := newReconciler(settings, log)

	res, err := reconciler.Reconcile(context.Background(), inst)
	if err != nil {
		return fmt.Errorf("failed to %s instance %s: %w", cmd.Name(), name, err)
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
}
