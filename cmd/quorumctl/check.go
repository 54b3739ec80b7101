package main

import (
	"github.com/spf13/cobra"

	"quorumkit/internal/scenario"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <contract-address>",
		Short: "Check that a SimpleStorage contract is deployed and read its value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			opts.printer.Info("Checking contract at address: %s", args[0])
			if _, err := scenario.Check(ctx, opts.env(a, nil), a.Poller, args[0]); err != nil {
				return err
			}
			opts.printer.Success("Contract check completed successfully")
			return nil
		},
	}
}
