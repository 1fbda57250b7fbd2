package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rrey/collection-ganeti/internal/output"
)

var getCmd = &cobra.Command{
	Use:   "get <instance-name>",
	Short: "Get details about an instance",
	Long: `Get the observed state of a specific instance from the cluster.

Output formats:
  -o table  Human-readable table (default)
  -o yaml   Full YAML resource
  -o json   Full JSON resource`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		if err := output.ValidateFormat(outputFormat); err != nil {
			return err
		}

		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		log := newLogger(settings)
		client := newClient(settings, log)

		inst, err := client.GetInstance(context.Background(), name)
		if err != nil {
			return fmt.Errorf("failed to get instance: %w", err)
		}

		formatter, err := output.NewFormatter(output.Options{
			Format:    output.Format(outputFormat),
			NoHeaders: noHeaders,
		})
		if err != nil {
			return err
		}

		text, err := formatter.FormatInstance(inst)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}

		fmt.Print(text)
		return nil
	},
}
