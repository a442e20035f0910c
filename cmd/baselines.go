package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var baselinesCmd = &cobra.Command{
	Use:   "baselines",
	Short: "List persisted volume baselines",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		baselines, err := st.ListBaselines(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tMEAN\tVARIANCE\tCOUNT\tUPDATED")
		for _, b := range baselines {
			fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%d\t%s\n",
				b.Key, b.Mean, b.Variance, b.Count, b.UpdatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(baselinesCmd)
}
