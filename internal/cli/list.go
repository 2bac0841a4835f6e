package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schematic/pkg/pipeline"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:     "list [schema.json|schema.toml ...]",
		Aliases: []string{"ls"},
		Short:   "List collections by level with their references",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runList(cmd.Context(), args, &src)
		},
	}
	src.register(cmd)
	return cmd
}

func (c *CLI) runList(ctx context.Context, files []string, src *sourceFlags) error {
	d, _, err := c.loadDiagram(ctx, src, files, pipeline.Options{})
	if err != nil {
		return err
	}
	l := d.Layout()
	if l.Empty() {
		printInfo(c.out, "No collections")
		return nil
	}

	fmt.Fprintln(c.out, renderCollections(l))
	printStats(c.out, layoutStats(l), false)

	for _, u := range l.Unresolved {
		switch {
		case u.Self:
			printDetail(c.out, "%s.%s references itself", u.Collection, u.Field)
		default:
			printDetail(c.out, "%s.%s references unknown %s", u.Collection, u.Field, u.Value)
		}
	}
	for _, e := range l.CycleEdges {
		printWarning(c.out, "%s.%s → %s closes a reference cycle", e.From, e.Label, e.To)
	}
	return nil
}
