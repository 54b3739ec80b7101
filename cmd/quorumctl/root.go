package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"quorumkit/internal/app"
	"quorumkit/internal/config"
	"quorumkit/internal/output"
	"quorumkit/internal/scenario"
)

type rootOptions struct {
	rpcURL   string
	logLevel string
	noColor  bool

	cfg     *config.Config
	printer *output.Printer
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "quorumctl",
		Short: "Deploy and exercise contracts on a Quorum node",
		Long: `quorumctl talks to a Quorum node over HTTP JSON-RPC. It deploys the
bundled SimpleStorage, HelloWorld, FiatLoanMatcher and version probe
contracts, exercises them and records every transaction in a journal.

Configuration is read from the environment and an optional .env file
(RPC_URL, DEFAULT_ACCOUNT, ACCOUNT_PASSWORD, GAS_LIMIT, DATABASE_URL, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.cfg = config.Load()
			if opts.rpcURL != "" {
				opts.cfg.RPCURL = opts.rpcURL
			}
			if opts.logLevel != "" {
				opts.cfg.LogLevel = opts.logLevel
			}
			if err := opts.cfg.Validate(); err != nil {
				return err
			}
			app.SetupLogger(opts.cfg.LogLevel, os.Stderr)

			opts.printer = output.NewPrinter()
			if opts.noColor {
				opts.printer.SetNoColor(true)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.rpcURL, "rpc", "", "node RPC URL (overrides RPC_URL)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newInfoCmd(opts),
		newDeployCmd(opts),
		newCheckCmd(opts),
		newHistoryCmd(opts),
	)
	return cmd
}

// connect opens the node session and journal for a command
func (o *rootOptions) connect(ctx context.Context) (*app.App, error) {
	o.printer.Info("Connecting to Quorum node at %s...", o.cfg.RPCURL)
	return app.New(ctx, o.cfg)
}

// env builds the scenario environment on an open app
func (o *rootOptions) env(a *app.App, compiler scenario.Compiler) *scenario.Env {
	return &scenario.Env{
		Session:  a.Session,
		Client:   a.Client(),
		Deployer: a.Deployer,
		Compiler: compiler,
		Printer:  o.printer,
	}
}
