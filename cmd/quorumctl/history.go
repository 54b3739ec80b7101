package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quorumkit/internal/storage"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled deployments and transactions",
		Long: `List the deployments and transactions recorded in the journal.
The journal is only persistent when DATABASE_URL points at Postgres.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := storage.Open(ctx, opts.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer repo.Close()

			if opts.cfg.DatabaseURL == "" {
				opts.printer.Warn("DATABASE_URL is not set; the in-memory journal is empty")
			}

			deployments, err := repo.ListDeployments(ctx, limit, 0)
			if err != nil {
				return err
			}
			opts.printer.Bold("Deployments")
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tADDRESS\tBLOCK\tGAS\tDEPLOYED")
			for _, d := range deployments {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", d.Name, d.Address, d.BlockNumber, d.GasUsed, d.DeployedAt.Format("2006-01-02 15:04:05"))
			}
			w.Flush()

			submissions, err := repo.ListSubmissions(ctx, limit, 0)
			if err != nil {
				return err
			}
			opts.printer.Bold("Transactions")
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "HASH\tMETHOD\tPATH\tSTATUS\tBLOCK")
			for _, s := range submissions {
				status, block := "pending", "-"
				if s.Included() {
					status = "failed"
					if s.Status != nil && *s.Status == 1 {
						status = "success"
					}
					if s.BlockNumber != nil {
						block = fmt.Sprint(*s.BlockNumber)
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.TxHash, s.Method, s.Path, status, block)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows per table")
	return cmd
}
