package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/wrangle/report"
)

func newSummarizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize",
		Short: "Print shape, head, column info, statistics, missing values and value counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.acquire(cmd.Context())
			if err != nil {
				return err
			}
			return report.Summarize(f).Render(cmd.OutOrStdout())
		},
	}
}
