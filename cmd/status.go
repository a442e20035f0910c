package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/argusint/argus-cli/internal/monitoring"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store health metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		metrics, err := monitoring.NewCollector(st, nil).Collect(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(metrics)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
