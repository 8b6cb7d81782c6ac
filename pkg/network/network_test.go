package network

import (
	"slices"
	"testing"

	"github.com/voltlab/gridclosure/pkg/entity"
)

func TestAddNode(t *testing.T) {
	g := New()
	g.AddNode(1, Attributes{AttrName: "SE Norte", AttrType: "Subestacion"})

	if !g.HasNode(1) {
		t.Fatal("HasNode(1) = false, want true")
	}
	if got := g.Type(1); got != "Subestacion" {
		t.Errorf("Type(1) = %q, want %q", got, "Subestacion")
	}

	// Re-adding overwrites attributes without duplicating the id.
	g.AddNode(1, Attributes{AttrType: "Poste"})
	if got := g.NodeCount(); got != 1 {
		t.Errorf("NodeCount() = %d, want 1", got)
	}
	if got := g.Type(1); got != "Poste" {
		t.Errorf("Type(1) after overwrite = %q, want %q", got, "Poste")
	}
}

func TestAddNodeNilAttributes(t *testing.T) {
	g := New()
	g.AddNode(1, nil)

	if attrs := g.Attributes(1); attrs == nil {
		t.Error("Attributes(1) = nil, want empty bag")
	}
	if got := g.Type(1); got != "" {
		t.Errorf("Type(1) = %q, want empty", got)
	}
}

func TestAddEdge(t *testing.T) {
	g := New()
	g.AddNode(1, nil)
	g.AddNode(2, nil)
	g.AddEdge(1, 2)

	if got := g.EdgeCount(); got != 1 {
		t.Errorf("EdgeCount() = %d, want 1", got)
	}
	if got := g.Neighbors(1); !slices.Equal(got, []int{2}) {
		t.Errorf("Neighbors(1) = %v, want [2]", got)
	}
	if got := g.Neighbors(2); !slices.Equal(got, []int{1}) {
		t.Errorf("Neighbors(2) = %v, want [1]", got)
	}

	// Duplicate edges are no-ops, in either orientation.
	g.AddEdge(1, 2)
	g.AddEdge(2, 1)
	if got := g.EdgeCount(); got != 1 {
		t.Errorf("EdgeCount() after duplicates = %d, want 1", got)
	}
}

func TestAddEdgePlaceholders(t *testing.T) {
	g := New()
	g.AddNode(1, Attributes{AttrType: "Poste"})
	g.AddEdge(1, 99)

	if !g.HasNode(99) {
		t.Fatal("HasNode(99) = false, want placeholder node")
	}
	if !g.IsPlaceholder(99) {
		t.Error("IsPlaceholder(99) = false, want true")
	}
	if g.IsPlaceholder(1) {
		t.Error("IsPlaceholder(1) = true, want false")
	}
	if got := g.Placeholders(); !slices.Equal(got, []int{99}) {
		t.Errorf("Placeholders() = %v, want [99]", got)
	}

	// Registering the real node later promotes the placeholder.
	g.AddNode(99, Attributes{AttrType: "Poste"})
	if g.IsPlaceholder(99) {
		t.Error("IsPlaceholder(99) after AddNode = true, want false")
	}
	if got := g.Neighbors(99); !slices.Equal(got, []int{1}) {
		t.Errorf("Neighbors(99) = %v, want [1]", got)
	}
}

func TestNodesSorted(t *testing.T) {
	g := New()
	for _, id := range []int{42, 7, 19, 3} {
		g.AddNode(id, nil)
	}
	want := []int{3, 7, 19, 42}
	if got := g.Nodes(); !slices.Equal(got, want) {
		t.Errorf("Nodes() = %v, want %v", got, want)
	}
}

func TestNeighborsAbsentNode(t *testing.T) {
	g := New()
	if got := g.Neighbors(5); got != nil {
		t.Errorf("Neighbors(5) = %v, want nil", got)
	}
}

func TestBuild(t *testing.T) {
	nodes := []entity.Node{
		{ID: 1, Name: "SE Norte", Type: "Subestacion", VoltageKV: 13.2},
		{ID: 2, Name: "P-002", Type: "Poste"},
		{ID: 3, Name: "P-003", Type: "Poste"},
	}
	segments := []entity.Segment{
		{ID: 10, From: 1, To: 2},
		{ID: 11, From: 2, To: 3},
		{ID: 12, From: 3, To: 99}, // dangling endpoint
	}

	g := Build(nodes, segments)

	if got := g.NodeCount(); got != 4 {
		t.Errorf("NodeCount() = %d, want 4", got)
	}
	if got := g.EdgeCount(); got != 3 {
		t.Errorf("EdgeCount() = %d, want 3", got)
	}
	if got := g.Placeholders(); !slices.Equal(got, []int{99}) {
		t.Errorf("Placeholders() = %v, want [99]", got)
	}
	if got := g.Attributes(1)[AttrVoltageKV]; got != 13.2 {
		t.Errorf("Attributes(1)[voltage_kv] = %v, want 13.2", got)
	}
}
