package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"merchantIndexer/internal/factory"
	"merchantIndexer/internal/felt"
)

func runSelector(cmd *cobra.Command, args []string) error {
	list, _ := cmd.Flags().GetBool("list")
	out := cmd.OutOrStdout()

	if list {
		schema, err := factory.FactorySchema()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VARIANT\tSELECTOR\tKEYS\tDATA")
		for _, v := range schema.Variants() {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", v.Name, v.Selector.Hex64(), v.KeyCount, v.DataCount)
		}
		return tw.Flush()
	}

	if len(args) == 0 {
		return fmt.Errorf("at least one event name is required")
	}
	for _, name := range args {
		fmt.Fprintf(out, "%s %s\n", name, felt.Selector(name).Hex64())
	}
	return nil
}
