package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voltlab/gridclosure/pkg/pipeline"
)

// buildCommand creates the build command, the main entry point of the tool.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		cfgPath string
		dryRun  bool
	)
	overrides := configOverrides{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the closure table and persist it",
		Long: `Build the closure table and persist it.

The build command loads node and segment records, constructs the network
graph, performs a breadth-first traversal from each component's substation
(or a fallback root when a component has none), and stores the nodes,
segments, and resulting closure entries in the configured backend.

The stored data is replaced wholesale on every run. Tolerated anomalies
(placeholder nodes from dangling segment endpoints, components traversed
from a fallback root) are reported as warnings, never as failures.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			overrides.apply(cmd, &cfg)
			return c.runBuild(cmd, cfg, dryRun)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "config file (default "+defaultConfigFile+" if present)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build the closure table but skip persisting it")
	overrides.register(cmd)

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, cfg Config, dryRun bool) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	opts := pipeline.Options{
		DataDir:      cfg.DataDir,
		NodesFile:    cfg.NodesFile,
		SegmentsFile: cfg.SegmentsFile,
		RootMarker:   cfg.RootMarker,
		DryRun:       dryRun,
	}

	runner := pipeline.NewRunner(nil, c.Logger)
	if !dryRun {
		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close(ctx)
		runner.Store = st
	}

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Built closure table: %d nodes, %d segments, %d entries across %d components",
		result.Stats.Nodes+result.Stats.PlaceholderNodes,
		result.Stats.Segments,
		result.Stats.Entries,
		result.Stats.Components))
	return nil
}

// configOverrides binds per-command flags that shadow config file values.
// A flag only overrides the file when it was set explicitly.
type configOverrides struct {
	dataDir      string
	nodesFile    string
	segmentsFile string
	rootMarker   string
	backend      string
	postgresDSN  string
	mongoURI     string
	mongoDB      string
}

func (o *configOverrides) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.dataDir, "data", "d", "", "directory containing the record files")
	cmd.Flags().StringVar(&o.nodesFile, "nodes-file", "", "node record file name")
	cmd.Flags().StringVar(&o.segmentsFile, "segments-file", "", "segment record file name")
	cmd.Flags().StringVar(&o.rootMarker, "root-marker", "", "node type marking a traversal root")
	cmd.Flags().StringVar(&o.backend, "store", "", "store backend: postgres (default), mongodb, memory")
	cmd.Flags().StringVar(&o.postgresDSN, "postgres-dsn", "", "PostgreSQL connection string")
	cmd.Flags().StringVar(&o.mongoURI, "mongo-uri", "", "MongoDB connection URI")
	cmd.Flags().StringVar(&o.mongoDB, "mongo-database", "", "MongoDB database name")
}

func (o *configOverrides) apply(cmd *cobra.Command, cfg *Config) {
	set := func(flag string, dst *string, v string) {
		if cmd.Flags().Changed(flag) {
			*dst = v
		}
	}
	set("data", &cfg.DataDir, o.dataDir)
	set("nodes-file", &cfg.NodesFile, o.nodesFile)
	set("segments-file", &cfg.SegmentsFile, o.segmentsFile)
	set("root-marker", &cfg.RootMarker, o.rootMarker)
	set("store", &cfg.Store.Backend, o.backend)
	set("postgres-dsn", &cfg.Store.PostgresDSN, o.postgresDSN)
	set("mongo-uri", &cfg.Store.MongoURI, o.mongoURI)
	set("mongo-database", &cfg.Store.MongoDatabase, o.mongoDB)
}
