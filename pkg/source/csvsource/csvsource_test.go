package csvsource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voltlab/gridclosure/pkg/errors"
)

const validNodes = `id_nodo,nombre,tipo,voltaje_kv,x,y
1,SE Norte,Subestacion,13.2,-70.65,-33.45
2,P-002,Poste,0.4,-70.66,-33.46
`

const validSegments = `id_segmento,id_circuito,nodo_inicio,nodo_fin,longitud_m,tipo_conductor,capacidad_amp
10,CTO-01,1,2,120.5,3,250
`

func writeDataDir(t *testing.T, nodes, segments string) string {
	t.Helper()
	dir := t.TempDir()
	if nodes != "" {
		if err := os.WriteFile(filepath.Join(dir, DefaultNodesFile), []byte(nodes), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if segments != "" {
		if err := os.WriteFile(filepath.Join(dir, DefaultSegmentsFile), []byte(segments), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadAll(t *testing.T) {
	dir := writeDataDir(t, validNodes, validSegments)

	nodes, segments, err := New(dir).LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	if len(nodes) != 2 {
		t.Fatalf("len(nodes) = %d, want 2", len(nodes))
	}
	if nodes[0].ID != 1 || nodes[0].Type != "Subestacion" || nodes[0].VoltageKV != 13.2 {
		t.Errorf("nodes[0] = %+v", nodes[0])
	}

	if len(segments) != 1 {
		t.Fatalf("len(segments) = %d, want 1", len(segments))
	}
	if segments[0].From != 1 || segments[0].To != 2 || segments[0].CircuitID != "CTO-01" {
		t.Errorf("segments[0] = %+v", segments[0])
	}
}

func TestLoadNodesColumnOrderIndependent(t *testing.T) {
	shuffled := `tipo,y,x,voltaje_kv,nombre,id_nodo
Subestacion,-33.45,-70.65,13.2,SE Norte,1
`
	dir := writeDataDir(t, shuffled, validSegments)

	nodes, err := New(dir).LoadNodes()
	if err != nil {
		t.Fatalf("LoadNodes() error = %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != 1 || nodes[0].Name != "SE Norte" {
		t.Errorf("nodes = %+v", nodes)
	}
}

func TestLoadNodesMalformedField(t *testing.T) {
	bad := `id_nodo,nombre,tipo,voltaje_kv,x,y
1,SE Norte,Subestacion,13.2,-70.65,-33.45
2,P-002,Poste,not-a-number,-70.66,-33.46
`
	dir := writeDataDir(t, bad, validSegments)

	_, err := New(dir).LoadNodes()
	if err == nil {
		t.Fatal("LoadNodes() error = nil, want MALFORMED_RECORD")
	}
	if !errors.Is(err, errors.ErrCodeMalformedRecord) {
		t.Errorf("error code = %v, want MALFORMED_RECORD", errors.GetCode(err))
	}
	// The row is on file line 3.
	if msg := err.Error(); !strings.Contains(msg, DefaultNodesFile+":3") {
		t.Errorf("error %q does not name file and line", msg)
	}
}

func TestLoadSegmentsMissingFile(t *testing.T) {
	dir := writeDataDir(t, validNodes, "")

	_, err := New(dir).LoadSegments()
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadSegments() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadNodesEmptyFile(t *testing.T) {
	dir := writeDataDir(t, "", validSegments)
	if err := os.WriteFile(filepath.Join(dir, DefaultNodesFile), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(dir).LoadNodes()
	if !errors.Is(err, errors.ErrCodeMalformedRecord) {
		t.Errorf("LoadNodes() error = %v, want MALFORMED_RECORD", err)
	}
}

func TestLoaderCustomFileNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "n.csv"), []byte(validNodes), 0o644); err != nil {
		t.Fatal(err)
	}

	l := New(dir)
	l.NodesFile = "n.csv"
	nodes, err := l.LoadNodes()
	if err != nil {
		t.Fatalf("LoadNodes() error = %v", err)
	}
	if len(nodes) != 2 {
		t.Errorf("len(nodes) = %d, want 2", len(nodes))
	}
}
