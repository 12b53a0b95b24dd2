package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tierkit/alloc"
	"github.com/joshuapare/tierkit/codec"
	"github.com/joshuapare/tierkit/collections/array"
	"github.com/joshuapare/tierkit/collections/table"
	"github.com/joshuapare/tierkit/keys"
)

func init() {
	rootCmd.AddCommand(newDemoCmd())
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the reference array and table scenario",
		Long: `The demo command appends 1..5 to an array (capacity 4 grows to 8) and
inserts six keys into a table (capacity 8 grows to 16), printing the
container state and allocator statistics afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
}

type demoResult struct {
	ArrayCap   []int       `json:"array_cap"`
	Array      string      `json:"array"`
	ArrayAt4   int64       `json:"array_at_4"`
	TableCap   []int       `json:"table_cap"`
	Table      string      `json:"table"`
	TableA     int64       `json:"table_a"`
	AllocStats alloc.Stats `json:"alloc"`
}

func runDemo() error {
	a := alloc.New(nil)
	l := a.NewLocal()
	defer l.Close()

	var res demoResult

	arr := array.New(l, codec.Int64(), nil)
	defer arr.Free()
	for v := range int64(5) {
		arr.Append(v + 1)
		res.ArrayCap = append(res.ArrayCap, arr.Cap())
	}
	at4, err := arr.Get(4)
	if err != nil {
		return fmt.Errorf("array get: %w", err)
	}
	res.ArrayAt4 = at4
	res.Array = arr.String()

	tb := table.New(l, codec.String(8), codec.Int64(), keys.String(), nil)
	defer tb.Free()
	for i, k := range []string{"a", "b", "c", "d", "e", "f"} {
		tb.Set(k, int64(i+1))
		res.TableCap = append(res.TableCap, tb.Cap())
	}
	va, err := tb.Get("a")
	if err != nil {
		return fmt.Errorf("table get: %w", err)
	}
	res.TableA = va
	res.Table = tb.String()
	res.AllocStats = a.Stats()

	if jsonOut {
		return printJSON(res)
	}

	printInfo("Array: %s\n", res.Array)
	printInfo("  capacity after each append: %v\n", res.ArrayCap)
	printInfo("  len=%d get(4)=%d\n\n", arr.Len(), res.ArrayAt4)
	printInfo("Table: %s\n", res.Table)
	printInfo("  capacity after each insert: %v\n", res.TableCap)
	printInfo("  len=%d get(a)=%d\n", tb.Len(), res.TableA)
	printVerbose("\nLocal tier: %d hits, %d misses, %d frees\n",
		res.AllocStats.Local.Hits, res.AllocStats.Local.Misses, res.AllocStats.Local.Frees)
	return nil
}
