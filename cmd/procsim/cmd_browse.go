package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [path]",
		Short: "Show the namespace or the children of a node",
		Long: `Without a path, print the whole namespace as an outline.
With a path such as Simulation or Objects/Simulation, list its children.`,
		Args: cobra.MaximumNArgs(1),
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
			out := cmd.OutOrStdout()

			if len(args) == 0 && !jsonOut {
				fmt.Fprint(out, svc.Tree())
				return nil
			}

			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			res, err := svc.Browse(path)
			if err != nil {
				return fmt.Errorf("browse %q: %w", path, err)
			}

			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			fmt.Fprintf(out, "%s (%s)\n", res.Node.Path, res.Node.Class)
			for _, c := range res.Children {
				if c.DataType != "" {
					fmt.Fprintf(out, "  %-14s %-9s %s\n", c.BrowseName, c.DataType, c.DisplayName)
				} else {
					fmt.Fprintf(out, "  %s/\n", c.BrowseName)
				}
			}
			return nil
		},
	}
}
