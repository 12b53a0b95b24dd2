package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/tierkit/alloc"
)

func init() {
	rootCmd.AddCommand(newClassesCmd())
}

func newClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "Print the size classes used for cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses()
		},
	}
}

type classRow struct {
	Class int    `json:"class"`
	Lower int    `json:"lower"`
	Upper int    `json:"upper"`
	Tier  string `json:"tier"`
}

func runClasses() error {
	bounds := alloc.ClassBounds(alloc.DefaultClasses)
	rows := make([]classRow, len(bounds))
	lower := 0
	for i, upper := range bounds {
		rows[i] = classRow{Class: i, Lower: lower, Upper: upper, Tier: alloc.Route(upper).String()}
		lower = upper + 1
	}

	if jsonOut {
		return printJSON(rows)
	}

	printInfo("Size classes (%s): %d classes, large above %s\n\n",
		alloc.DefaultClasses.Name, len(rows), humanize.IBytes(uint64(bounds[len(bounds)-1])))
	for _, r := range rows {
		printInfo("  %3d  %8d - %-8d  %s\n", r.Class, r.Lower, r.Upper, r.Tier)
	}
	return nil
}
