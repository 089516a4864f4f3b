package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/procsim/internal/service"
)

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read [path...]",
		Short: "Evaluate variables once and print their values",
		Long: `Evaluate the given variables at the current instant, or every variable
when no path is given. No counter process runs, so Counter reads 0.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			sim, err := newSimulation()
			if err != nil {
				return err
			}
			svc := sim.newService(cfg, nil)

			var results []service.ReadResult
			if len(args) == 0 {
				results = svc.ReadAll()
			} else {
				results = svc.Read(args)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					if r.Error != "" {
						fmt.Fprintf(out, "%s: error: %s\n", r.Path, r.Error)
						continue
					}
					fmt.Fprintf(out, "%s = %v (%s)\n", r.Path, r.Value, r.DataType)
				}
			}

			failed := 0
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d reads failed", failed, len(results))
			}
			return nil
		},
	}
}
