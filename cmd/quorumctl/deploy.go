package main

import (
	"context"

	"github.com/spf13/cobra"

	"quorumkit/internal/compiler"
	"quorumkit/internal/orchestrator"
	"quorumkit/internal/scenario"
)

func newDeployCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy and exercise a bundled contract",
	}

	var greeting string
	helloWorld := &cobra.Command{
		Use:   "hello-world",
		Short: "Compile HelloWorld with solc, deploy it and change the greeting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runScenario(cmd.Context(), func(env *scenario.Env) *orchestrator.Orchestrator {
				return scenario.HelloWorld(env, greeting)
			})
		},
	}
	helloWorld.Flags().StringVar(&greeting, "greeting", "Hello, GoQuorum QBFT Network!", "greeting to set")

	loan := scenario.DefaultLoan
	fiatLoan := &cobra.Command{
		Use:   "fiatloan",
		Short: "Deploy FiatLoanMatcher and run one loan through request, fund and repay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runScenario(cmd.Context(), func(env *scenario.Env) *orchestrator.Orchestrator {
				return scenario.FiatLoan(env, loan)
			})
		},
	}
	fiatLoan.Flags().StringVar(&loan.Currency, "currency", loan.Currency, "loan currency")
	fiatLoan.Flags().Uint64Var(&loan.Amount, "amount", loan.Amount, "loan amount")
	fiatLoan.Flags().Uint64Var(&loan.Interest, "interest", loan.Interest, "loan interest")
	fiatLoan.Flags().Uint64Var(&loan.Duration, "duration", loan.Duration, "loan duration in seconds")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "simple-storage",
			Short: "Deploy SimpleStorage, store 42 and read it back",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.runScenario(cmd.Context(), scenario.SimpleStorage)
			},
		},
		helloWorld,
		fiatLoan,
		&cobra.Command{
			Use:   "version-probe",
			Short: "Deploy the version probe contract and read getVersion()",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.runScenario(cmd.Context(), scenario.VersionProbe)
			},
		},
	)
	return cmd
}

func (o *rootOptions) runScenario(ctx context.Context, build func(env *scenario.Env) *orchestrator.Orchestrator) error {
	a, err := o.connect(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	env := o.env(a, compiler.New(o.cfg.SolcPath))
	if _, err := build(env).Run(ctx); err != nil {
		return err
	}
	o.printer.Success("Deployment and testing completed successfully")
	return nil
}
