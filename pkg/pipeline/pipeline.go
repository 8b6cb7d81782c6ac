// Package pipeline provides the core build pipeline for gridclosure.
//
// This package implements the complete load → build → traverse → persist
// flow that can be used by the CLI and the embedded server. By centralizing
// this logic, we ensure consistent behavior across all entry points.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: read and validate node/segment records from the record source
//  2. Build: construct the undirected network graph from the entities
//  3. Traverse: sweep all connected components and emit the closure table
//  4. Persist: replace the stored network and closure wholesale
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(st, logger)
//	opts := pipeline.Options{DataDir: "data"}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Stats.Entries)
package pipeline

import (
	"time"

	"github.com/voltlab/gridclosure/pkg/closure"
	"github.com/voltlab/gridclosure/pkg/errors"
	"github.com/voltlab/gridclosure/pkg/source/csvsource"
)

// Options contains all configuration for one build run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Record source options
	DataDir      string `json:"data_dir"`
	NodesFile    string `json:"nodes_file,omitempty"`
	SegmentsFile string `json:"segments_file,omitempty"`

	// Traversal options
	RootMarker string `json:"root_marker,omitempty"`

	// DryRun skips the persist stage.
	DryRun bool `json:"dry_run,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.DataDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "data directory is required")
	}
	if o.NodesFile == "" {
		o.NodesFile = csvsource.DefaultNodesFile
	}
	if o.SegmentsFile == "" {
		o.SegmentsFile = csvsource.DefaultSegmentsFile
	}
	if o.RootMarker == "" {
		o.RootMarker = closure.DefaultRootMarker
	}
	o.validated = true
	return nil
}

// Stats contains timing and size information for one run.
type Stats struct {
	Nodes            int `json:"nodes"`
	Segments         int `json:"segments"`
	Entries          int `json:"entries"`
	Components       int `json:"components"`
	FallbackRoots    int `json:"fallback_roots"`
	PlaceholderNodes int `json:"placeholder_nodes"`

	LoadTime     time.Duration `json:"load_time"`
	BuildTime    time.Duration `json:"build_time"`
	TraverseTime time.Duration `json:"traverse_time"`
	PersistTime  time.Duration `json:"persist_time"`
}
