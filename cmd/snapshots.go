package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/argusint/argus-cli/internal/export"
)

var (
	snapshotsLimit int
	snapshotsXLSX  string
	snapshotsJSON  bool
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List or export playback snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		snaps, err := st.ListSnapshots(ctx, snapshotsLimit)
		if err != nil {
			return err
		}

		if snapshotsXLSX != "" {
			if err := export.WriteXLSX(snapshotsXLSX, snaps); err != nil {
				return err
			}
			zap.L().Info("snapshots: exported workbook",
				zap.String("path", snapshotsXLSX),
				zap.Int("snapshots", len(snaps)),
			)
			return nil
		}

		if snapshotsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snaps)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTAKEN AT\tEVENTS\tMARKETS\tPREDICTIONS")
		for _, s := range snaps {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
				s.ID, s.Timestamp.Format(time.RFC3339), len(s.Events), len(s.MarketPrices), len(s.Predictions))
		}
		return w.Flush()
	},
}

func init() {
	snapshotsCmd.Flags().IntVar(&snapshotsLimit, "limit", 50, "max snapshots to list, newest first")
	snapshotsCmd.Flags().StringVar(&snapshotsXLSX, "xlsx", "", "export snapshots to an XLSX workbook at this path")
	snapshotsCmd.Flags().BoolVar(&snapshotsJSON, "json", false, "print snapshots as JSON")
	rootCmd.AddCommand(snapshotsCmd)
}
