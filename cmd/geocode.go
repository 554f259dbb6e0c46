package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/riverbend-maps/gagemap/pkg/geocode"
)

var geocodeBBox string

var geocodeCmd = &cobra.Command{
	Use:   "geocode <query>",
	Short: "Resolve a location query through the fallback chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := geocode.NewQuery(args[0])
		if geocodeBBox != "" {
			var box geocode.BBox
			if err := json.Unmarshal([]byte(geocodeBBox), &box); err != nil {
				return eris.Wrap(err, "parse bbox")
			}
			q.Viewport = box.Bounds()
		}

		chain := geocode.NewChain(geocode.DefaultProviders(cfg.Geocode.OpenCageKey))
		results := chain.Geocode(cmd.Context(), q)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func init() {
	geocodeCmd.Flags().StringVar(&geocodeBBox, "bbox", "", `viewport as JSON, e.g. {"south":35.5,"west":-94.5,"north":36.5,"east":-93.5}`)
	rootCmd.AddCommand(geocodeCmd)
}
