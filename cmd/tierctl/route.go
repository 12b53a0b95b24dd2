package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/tierkit/alloc"
)

func init() {
	rootCmd.AddCommand(newRouteCmd())
}

func newRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <size>...",
		Short: "Show which tier serves each block size",
		Long: `The route command prints the cache tier a block size is routed to.
Sizes up to the threshold stay in the caller's local tier; larger sizes
go through the shared, locked global tier.

Example:
  tierctl route 64 256 257 4KB`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoute(args)
		},
	}
}

type routeResult struct {
	Size int    `json:"size"`
	Tier string `json:"tier"`
}

func runRoute(args []string) error {
	results := make([]routeResult, 0, len(args))
	for _, arg := range args {
		size, err := parseSize(arg)
		if err != nil {
			return err
		}
		results = append(results, routeResult{Size: size, Tier: alloc.Route(size).String()})
	}

	if jsonOut {
		return printJSON(results)
	}
	printVerbose("Threshold: %d bytes\n", alloc.Threshold)
	for _, r := range results {
		printInfo("%10d  %s\n", r.Size, r.Tier)
	}
	return nil
}
