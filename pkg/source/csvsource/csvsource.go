// Package csvsource reads distribution-network node and segment records
// from CSV files.
//
// The expected files follow the export format of the upstream GIS system:
//
//	nodos_circuito.csv:     id_nodo,nombre,tipo,voltaje_kv,x,y
//	segmentos_circuito.csv: id_segmento,id_circuito,nodo_inicio,nodo_fin,longitud_m,tipo_conductor,capacidad_amp
//
// Columns are resolved by header name, so column order does not matter.
// Any malformed numeric field aborts the load with a MALFORMED_RECORD
// error naming the file and line; partial ingestion is never attempted.
package csvsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/voltlab/gridclosure/pkg/entity"
	"github.com/voltlab/gridclosure/pkg/errors"
)

// Default file names, matching the upstream export.
const (
	DefaultNodesFile    = "nodos_circuito.csv"
	DefaultSegmentsFile = "segmentos_circuito.csv"
)

// Loader reads node and segment records from a data directory.
type Loader struct {
	DataDir      string
	NodesFile    string
	SegmentsFile string
}

// New creates a Loader for dataDir with the default file names.
func New(dataDir string) *Loader {
	return &Loader{
		DataDir:      dataDir,
		NodesFile:    DefaultNodesFile,
		SegmentsFile: DefaultSegmentsFile,
	}
}

// LoadAll reads both files and returns the validated entities.
func (l *Loader) LoadAll() ([]entity.Node, []entity.Segment, error) {
	nodes, err := l.LoadNodes()
	if err != nil {
		return nil, nil, err
	}
	segments, err := l.LoadSegments()
	if err != nil {
		return nil, nil, err
	}
	return nodes, segments, nil
}

// LoadNodes reads and validates the node file.
func (l *Loader) LoadNodes() ([]entity.Node, error) {
	path := filepath.Join(l.DataDir, l.NodesFile)
	var nodes []entity.Node
	err := readRows(path, func(line int, row row) error {
		rec := entity.NodeRecord{
			ID:        row.get("id_nodo"),
			Name:      row.get("nombre"),
			Type:      row.get("tipo"),
			VoltageKV: row.get("voltaje_kv"),
			X:         row.get("x"),
			Y:         row.get("y"),
		}
		n, err := rec.Node()
		if err != nil {
			return errors.Wrap(errors.ErrCodeMalformedRecord, err, "%s:%d", l.NodesFile, line)
		}
		nodes = append(nodes, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// LoadSegments reads and validates the segment file.
func (l *Loader) LoadSegments() ([]entity.Segment, error) {
	path := filepath.Join(l.DataDir, l.SegmentsFile)
	var segments []entity.Segment
	err := readRows(path, func(line int, row row) error {
		rec := entity.SegmentRecord{
			ID:            row.get("id_segmento"),
			CircuitID:     row.get("id_circuito"),
			From:          row.get("nodo_inicio"),
			To:            row.get("nodo_fin"),
			LengthM:       row.get("longitud_m"),
			ConductorType: row.get("tipo_conductor"),
			CapacityAmp:   row.get("capacidad_amp"),
		}
		s, err := rec.Segment()
		if err != nil {
			return errors.Wrap(errors.ErrCodeMalformedRecord, err, "%s:%d", l.SegmentsFile, line)
		}
		segments = append(segments, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return segments, nil
}

// row pairs one record with the header index of its file.
type row struct {
	header map[string]int
	fields []string
}

// get returns the named column, or "" when the column is missing. Missing
// required columns then fail numeric validation with a clear message.
func (r row) get(column string) string {
	i, ok := r.header[column]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// readRows streams a CSV file, calling fn once per data row with its
// 1-based line number (header is line 1).
func readRows(path string, fn func(line int, r row) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeFileNotFound, "record file not found: %s", path)
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	headerFields, err := reader.Read()
	if err == io.EOF {
		return errors.New(errors.ErrCodeMalformedRecord, "%s: empty file, header row required", path)
	}
	if err != nil {
		return fmt.Errorf("read header of %s: %w", path, err)
	}
	header := make(map[string]int, len(headerFields))
	for i, name := range headerFields {
		header[name] = i
	}

	for line := 2; ; line++ {
		fields, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeMalformedRecord, err, "%s:%d", path, line)
		}
		if err := fn(line, row{header: header, fields: fields}); err != nil {
			return err
		}
	}
}
