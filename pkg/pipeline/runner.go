package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/voltlab/gridclosure/pkg/closure"
	"github.com/voltlab/gridclosure/pkg/entity"
	"github.com/voltlab/gridclosure/pkg/network"
	"github.com/voltlab/gridclosure/pkg/source/csvsource"
	"github.com/voltlab/gridclosure/pkg/store"
)

// Runner encapsulates pipeline execution.
//
// The Runner is stateless except for the store and logger - it doesn't
// hold pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Store  store.Store
	Logger *log.Logger
}

// NewRunner creates a runner persisting to st.
// If logger is nil, the default logger is used.
func NewRunner(st store.Store, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Store: st, Logger: logger}
}

// Result contains the outputs of one pipeline run.
type Result struct {
	// RunID uniquely identifies this run in logs and reports.
	RunID string

	// Graph is the constructed network, kept for export/visualization.
	Graph *network.Graph

	// Entries is the aggregated closure table.
	Entries []closure.Entry

	// Stats contains counts and timings.
	Stats Stats

	// Persisted reports whether the persist stage ran.
	Persisted bool
}

// Execute runs the complete load → build → traverse → persist pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	logger := r.Logger.With("run_id", result.RunID)

	// Stage 1: Load
	loadStart := time.Now()
	nodes, segments, err := r.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Nodes = len(nodes)
	result.Stats.Segments = len(segments)

	logger.Info("loaded records",
		"nodes", len(nodes),
		"segments", len(segments),
		"duration", result.Stats.LoadTime)

	// Stage 2: Build
	buildStart := time.Now()
	g := network.Build(nodes, segments)
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.PlaceholderNodes = len(g.Placeholders())

	logger.Info("built network",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.BuildTime)
	if n := result.Stats.PlaceholderNodes; n > 0 {
		logger.Warn("segments referenced unknown nodes; placeholders created",
			"placeholders", n, "ids", g.Placeholders())
	}

	// Stage 3: Traverse
	traverseStart := time.Now()
	entries, stats, err := closure.BuildAll(g, opts.RootMarker)
	if err != nil {
		return nil, fmt.Errorf("traverse: %w", err)
	}
	result.Entries = entries
	result.Stats.TraverseTime = time.Since(traverseStart)
	result.Stats.Entries = stats.Entries
	result.Stats.Components = stats.Components
	result.Stats.FallbackRoots = stats.FallbackRoots

	logger.Info("built closure table",
		"entries", stats.Entries,
		"components", stats.Components,
		"duration", result.Stats.TraverseTime)
	if stats.FallbackRoots > 0 {
		logger.Warn("components without a root-marked node used fallback roots",
			"marker", opts.RootMarker, "components", stats.FallbackRoots)
	}

	// Stage 4: Persist
	if opts.DryRun {
		logger.Info("dry run, skipping persist")
		return result, nil
	}
	persistStart := time.Now()
	if err := r.Persist(ctx, nodes, segments, entries, g); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	result.Stats.PersistTime = time.Since(persistStart)
	result.Persisted = true

	logger.Info("persisted network",
		"nodes", len(nodes)+result.Stats.PlaceholderNodes,
		"segments", len(segments),
		"entries", stats.Entries,
		"duration", result.Stats.PersistTime)

	return result, nil
}

// Load reads and validates the records configured in opts.
func (r *Runner) Load(opts Options) ([]entity.Node, []entity.Segment, error) {
	loader := csvsource.New(opts.DataDir)
	loader.NodesFile = opts.NodesFile
	loader.SegmentsFile = opts.SegmentsFile
	return loader.LoadAll()
}

// Persist stores the run output. Placeholder nodes materialized by the
// graph are persisted alongside the regular nodes so closure rows never
// reference an id missing from the node table.
func (r *Runner) Persist(ctx context.Context, nodes []entity.Node, segments []entity.Segment, entries []closure.Entry, g *network.Graph) error {
	all := nodes
	if placeholders := g.Placeholders(); len(placeholders) > 0 {
		all = make([]entity.Node, 0, len(nodes)+len(placeholders))
		all = append(all, nodes...)
		for _, id := range placeholders {
			all = append(all, entity.Node{ID: id})
		}
	}
	return r.Store.SaveNetwork(ctx, all, segments, entries)
}
