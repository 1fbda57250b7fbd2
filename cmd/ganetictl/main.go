package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rrey/collection-ganeti/internal/config"
	"github.com/rrey/collection-ganeti/internal/logging"
	"github.com/rrey/collection-ganeti/internal/rapi"
	"github.com/rrey/collection-ganeti/internal/reconcile"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ganetictl",
	Short: "ganetictl - Ganeti instance management tool",
	Long: `ganetictl manages Ganeti cluster instances through the Remote API (RAPI)
with simple YAML manifests.

It provides commands to converge an instance toward a declared state and to
drive individual lifecycle transitions (start, stop, restart, delete).

Connection settings come from GANETI_* environment variables and can be
overridden per invocation with the global flags.`,
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
}

// Global flag values. Flags only override the environment when explicitly set.
var (
	flagAddress    string
	flagPort       int
	flagUsername   string
	flagPassword   string
	flagVerifyTLS  bool
	flagWait       bool
	flagJobTimeout time.Duration
	flagLogLevel   string

	outputFormat string
	noHeaders    bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagAddress, "address", "", "cluster RAPI address (default from GANETI_ADDRESS)")
	pf.IntVar(&flagPort, "port", 0, "cluster RAPI port (default from GANETI_PORT)")
	pf.StringVar(&flagUsername, "username", "", "RAPI basic auth user")
	pf.StringVar(&flagPassword, "password", "", "RAPI basic auth password")
	pf.BoolVar(&flagVerifyTLS, "verify-tls", false, "verify the RAPI TLS certificate")
	pf.BoolVar(&flagWait, "wait", true, "wait for submitted jobs to complete")
	pf.DurationVar(&flagJobTimeout, "job-timeout", 0, "per-job wait timeout (default from GANETI_JOB_TIMEOUT)")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	pf.StringVarP(&outputFormat, "output", "o", "table", "output format: table, yaml, json")
	pf.BoolVar(&noHeaders, "no-headers", false, "omit headers in table output")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(getCmd)
}

// loadSettings resolves the environment configuration and applies the global
// flags the user actually set.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("address") {
		settings.Address = flagAddress
	}
	if flags.Changed("port") {
		settings.Port = flagPort
	}
	if flags.Changed("username") {
		settings.Username = flagUsername
	}
	if flags.Changed("password") {
		settings.Password = flagPassword
	}
	if flags.Changed("verify-tls") {
		settings.VerifyTLS = flagVerifyTLS
	}
	if flags.Changed("wait") {
		settings.Wait = flagWait
	}
	if flags.Changed("job-timeout") {
		settings.JobTimeout = flagJobTimeout
	}
	if flags.Changed("log-level") {
		settings.LogLevel = flagLogLevel
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// newClient wires a RAPI client from the resolved settings.
func newClient(settings *config.Settings, log zerolog.Logger) *rapi.Client {
	return rapi.NewClient(rapi.Config{
		Address:   settings.Address,
		Port:      settings.Port,
		Username:  settings.Username,
		Password:  settings.Password,
		VerifyTLS: settings.VerifyTLS,
		Timeout:   settings.HTTPTimeout,
	}, log)
}

// newReconciler wires the full reconciliation stack from the resolved settings.
func newReconciler(settings *config.Settings, log zerolog.Logger) *reconcile.Reconciler {
	client := newClient(settings, log)
	return reconcile.New(client, reconcile.Options{
		Wait:         settings.Wait,
		JobTimeout:   settings.JobTimeout,
		PollInterval: settings.PollInterval,
	}, log)
}

func newLogger(settings *config.Settings) zerolog.Logger {
	return logging.Default(settings.LogLevel)
}
