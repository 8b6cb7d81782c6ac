package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/voltlab/gridclosure/pkg/store"
)

// reportCommand creates the report command with its query subcommands.
func (c *CLI) reportCommand() *cobra.Command {
	var cfgPath string
	overrides := configOverrides{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Query the stored closure table",
		Long: `Query the stored closure table.

The closure table answers hierarchical questions without recursive
queries: all descendants of a node, all ancestors of a node, or the nodes
at an exact hop distance. Run 'build' first to populate the store.`,
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default "+defaultConfigFile+" if present)")
	overrides.register(cmd)

	withStore := func(run func(ctx context.Context, st store.Store, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			overrides.apply(cmd, &cfg)
			st, err := openStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close(cmd.Context())
			return run(cmd.Context(), st, args)
		}
	}

	var maxDepth int
	descendants := &cobra.Command{
		Use:   "descendants <node-id>",
		Short: "List all descendants of a node",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, st store.Store, args []string) error {
			id, err := parseNodeID(args[0])
			if err != nil {
				return err
			}
			rels, err := st.Descendants(ctx, id, maxDepth)
			if err != nil {
				return err
			}
			return printRelations(fmt.Sprintf("descendants of node %d", id), rels)
		}),
	}
	descendants.Flags().IntVar(&maxDepth, "max-depth", 0, "limit results to this hop distance (0 = unlimited)")

	ancestors := &cobra.Command{
		Use:   "ancestors <node-id>",
		Short: "List all ancestors of a node, component root first",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, st store.Store, args []string) error {
			id, err := parseNodeID(args[0])
			if err != nil {
				return err
			}
			rels, err := st.Ancestors(ctx, id)
			if err != nil {
				return err
			}
			return printRelations(fmt.Sprintf("ancestors of node %d", id), rels)
		}),
	}

	atDepth := &cobra.Command{
		Use:   "at-depth <node-id> <depth>",
		Short: "List nodes exactly N hops below a node",
		Args:  cobra.ExactArgs(2),
		RunE: withStore(func(ctx context.Context, st store.Store, args []string) error {
			id, err := parseNodeID(args[0])
			if err != nil {
				return err
			}
			depth, err := strconv.Atoi(args[1])
			if err != nil || depth < 1 {
				return fmt.Errorf("depth must be a positive integer, got %q", args[1])
			}
			rels, err := st.AtDepth(ctx, id, depth)
			if err != nil {
				return err
			}
			return printRelations(fmt.Sprintf("nodes %d hops below node %d", depth, id), rels)
		}),
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show stored row counts",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, st store.Store, args []string) error {
			counts, err := st.Counts(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "nodes\t%d\n", counts.Nodes)
			fmt.Fprintf(w, "segments\t%d\n", counts.Segments)
			fmt.Fprintf(w, "closure entries\t%d\n", counts.ClosureEntries)
			return w.Flush()
		}),
	}

	cmd.AddCommand(descendants, ancestors, atDepth, stats)
	return cmd
}

func parseNodeID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("node id must be an integer, got %q", s)
	}
	return id, nil
}

func printRelations(title string, rels []store.Relation) error {
	if len(rels) == 0 {
		fmt.Printf("no %s\n", title)
		return nil
	}
	fmt.Printf("%d %s\n\n", len(rels), title)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tNAME\tTYPE\tDEPTH")
	for _, rel := range rels {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", rel.NodeID, rel.Name, rel.Type, rel.Depth)
	}
	return w.Flush()
}
