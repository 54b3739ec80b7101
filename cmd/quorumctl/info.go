package main

import (
	"math/big"

	"github.com/spf13/cobra"

	"quorumkit/internal/node"
)

func newInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print network and account information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			p := opts.printer
			info := a.Session.Info()
			p.Bold("=== Environment Information ===")
			p.Field("Endpoint", a.Session.Endpoint())
			p.Field("Network ID", orUnknown(info.NetworkID))
			p.Field("Chain ID", orUnknown(info.ChainID))
			p.Field("Block number", info.BlockHeight)
			p.Field("Using account", a.Session.Sender().Hex())

			balance, err := a.Session.Balance(ctx, a.Session.Sender())
			if err != nil {
				p.Warn("failed to read balance: %v", err)
			} else {
				p.Field("Balance", node.FormatEther(balance)+" ETH")
			}

			p.Bold("Accounts")
			for i, id := range a.Session.Identities() {
				p.Info("  [%d] %s", i, id.Hex())
			}
			return nil
		},
	}
}

func orUnknown(v *big.Int) string {
	if v == nil {
		return "unknown"
	}
	return v.String()
}
