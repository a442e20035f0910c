package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/argusint/argus-cli/internal/config"
	"github.com/argusint/argus-cli/internal/hotspot"
)

var hotspotsGeoJSON bool

var hotspotsCmd = &cobra.Command{
	Use:   "hotspots",
	Short: "Show configured hotspot definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		hotspots, err := config.LoadHotspots(cfg.Hotspots.Path)
		if err != nil {
			return err
		}

		if hotspotsGeoJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(hotspot.GeoJSON(hotspots))
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tLAT\tLON\tKEYWORDS")
		for _, h := range hotspots {
			fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%d\n", h.ID, h.Name, h.Lat, h.Lon, len(h.Keywords))
		}
		return w.Flush()
	},
}

func init() {
	hotspotsCmd.Flags().BoolVar(&hotspotsGeoJSON, "geojson", false, "print hotspots as a GeoJSON FeatureCollection")
	rootCmd.AddCommand(hotspotsCmd)
}
