// Package entity defines the immutable value types of a distribution
// network: nodes (physical network points) and segments (undirected
// connections between two nodes).
//
// Entities are constructed once from raw string records and validated at
// construction time. A record with a non-numeric numeric field or a
// negative length, capacity, or voltage fails with a MALFORMED_RECORD
// error; nothing is silently defaulted.
package entity

import (
	"strconv"
	"strings"

	"github.com/voltlab/gridclosure/pkg/errors"
)

// Node represents a physical point in the network (substation, pole, ...).
// The id is assigned externally and must be unique across the node set.
type Node struct {
	ID        int     `json:"id" bson:"id"`
	Name      string  `json:"name" bson:"name"`
	Type      string  `json:"type" bson:"type"`
	VoltageKV float64 `json:"voltage_kv" bson:"voltage_kv"`
	X         float64 `json:"x" bson:"x"`
	Y         float64 `json:"y" bson:"y"`
}

// Segment represents an undirected connection between two nodes.
// A segment contributes exactly one edge regardless of endpoint order.
type Segment struct {
	ID            int     `json:"id" bson:"id"`
	CircuitID     string  `json:"circuit_id" bson:"circuit_id"`
	From          int     `json:"from" bson:"from"`
	To            int     `json:"to" bson:"to"`
	LengthM       float64 `json:"length_m" bson:"length_m"`
	ConductorType int     `json:"conductor_type" bson:"conductor_type"`
	CapacityAmp   int     `json:"capacity_amp" bson:"capacity_amp"`
}

// NodeRecord is a raw node row as read from the record source, all fields
// still unparsed.
type NodeRecord struct {
	ID        string
	Name      string
	Type      string
	VoltageKV string
	X         string
	Y         string
}

// SegmentRecord is a raw segment row as read from the record source.
type SegmentRecord struct {
	ID            string
	CircuitID     string
	From          string
	To            string
	LengthM       string
	ConductorType string
	CapacityAmp   string
}

// Node validates and converts the record into a Node.
func (r NodeRecord) Node() (Node, error) {
	id, err := parseInt("id", r.ID)
	if err != nil {
		return Node{}, err
	}
	voltage, err := parseNonNegativeFloat("voltage_kv", r.VoltageKV)
	if err != nil {
		return Node{}, err
	}
	x, err := parseFloat("x", r.X)
	if err != nil {
		return Node{}, err
	}
	y, err := parseFloat("y", r.Y)
	if err != nil {
		return Node{}, err
	}
	return Node{
		ID:        id,
		Name:      strings.TrimSpace(r.Name),
		Type:      strings.TrimSpace(r.Type),
		VoltageKV: voltage,
		X:         x,
		Y:         y,
	}, nil
}

// Segment validates and converts the record into a Segment.
func (r SegmentRecord) Segment() (Segment, error) {
	id, err := parseInt("id", r.ID)
	if err != nil {
		return Segment{}, err
	}
	from, err := parseInt("from", r.From)
	if err != nil {
		return Segment{}, err
	}
	to, err := parseInt("to", r.To)
	if err != nil {
		return Segment{}, err
	}
	length, err := parseNonNegativeFloat("length_m", r.LengthM)
	if err != nil {
		return Segment{}, err
	}
	conductor, err := parseInt("conductor_type", r.ConductorType)
	if err != nil {
		return Segment{}, err
	}
	capacity, err := parseNonNegativeInt("capacity_amp", r.CapacityAmp)
	if err != nil {
		return Segment{}, err
	}
	return Segment{
		ID:            id,
		CircuitID:     strings.TrimSpace(r.CircuitID),
		From:          from,
		To:            to,
		LengthM:       length,
		ConductorType: conductor,
		CapacityAmp:   capacity,
	}, nil
}

func parseInt(field, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New(errors.ErrCodeMalformedRecord, "field %s: not an integer: %q", field, s)
	}
	return v, nil
}

func parseNonNegativeInt(field, s string) (int, error) {
	v, err := parseInt(field, s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.New(errors.ErrCodeMalformedRecord, "field %s: must not be negative: %d", field, v)
	}
	return v, nil
}

func parseFloat(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeMalformedRecord, "field %s: not a number: %q", field, s)
	}
	return v, nil
}

func parseNonNegativeFloat(field, s string) (float64, error) {
	v, err := parseFloat(field, s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.New(errors.ErrCodeMalformedRecord, "field %s: must not be negative: %v", field, v)
	}
	return v, nil
}
