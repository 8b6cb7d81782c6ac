package entity

import (
	"testing"

	"github.com/voltlab/gridclosure/pkg/errors"
)

func TestNodeRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  NodeRecord
		want    Node
		wantErr bool
	}{
		{
			name:   "valid record",
			record: NodeRecord{ID: "1", Name: "SE Norte", Type: "Subestacion", VoltageKV: "13.2", X: "-70.65", Y: "-33.45"},
			want:   Node{ID: 1, Name: "SE Norte", Type: "Subestacion", VoltageKV: 13.2, X: -70.65, Y: -33.45},
		},
		{
			name:   "surrounding whitespace trimmed",
			record: NodeRecord{ID: " 2 ", Name: " P-002 ", Type: " Poste ", VoltageKV: "0.4", X: "0", Y: "0"},
			want:   Node{ID: 2, Name: "P-002", Type: "Poste", VoltageKV: 0.4},
		},
		{
			name:    "non-integer id",
			record:  NodeRecord{ID: "abc", VoltageKV: "13.2", X: "0", Y: "0"},
			wantErr: true,
		},
		{
			name:    "non-numeric voltage",
			record:  NodeRecord{ID: "1", VoltageKV: "high", X: "0", Y: "0"},
			wantErr: true,
		},
		{
			name:    "negative voltage",
			record:  NodeRecord{ID: "1", VoltageKV: "-13.2", X: "0", Y: "0"},
			wantErr: true,
		},
		{
			name:    "empty coordinate",
			record:  NodeRecord{ID: "1", VoltageKV: "13.2", X: "", Y: "0"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.record.Node()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Node() error = nil, want MALFORMED_RECORD")
				}
				if !errors.Is(err, errors.ErrCodeMalformedRecord) {
					t.Errorf("Node() error code = %v, want MALFORMED_RECORD", errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("Node() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Node() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSegmentRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  SegmentRecord
		want    Segment
		wantErr bool
	}{
		{
			name:   "valid record",
			record: SegmentRecord{ID: "10", CircuitID: "CTO-01", From: "1", To: "2", LengthM: "120.5", ConductorType: "3", CapacityAmp: "250"},
			want:   Segment{ID: 10, CircuitID: "CTO-01", From: 1, To: 2, LengthM: 120.5, ConductorType: 3, CapacityAmp: 250},
		},
		{
			name:    "non-integer endpoint",
			record:  SegmentRecord{ID: "10", From: "x", To: "2", LengthM: "1", ConductorType: "1", CapacityAmp: "1"},
			wantErr: true,
		},
		{
			name:    "negative length",
			record:  SegmentRecord{ID: "10", From: "1", To: "2", LengthM: "-5", ConductorType: "1", CapacityAmp: "1"},
			wantErr: true,
		},
		{
			name:    "negative capacity",
			record:  SegmentRecord{ID: "10", From: "1", To: "2", LengthM: "5", ConductorType: "1", CapacityAmp: "-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.record.Segment()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Segment() error = nil, want MALFORMED_RECORD")
				}
				if !errors.Is(err, errors.ErrCodeMalformedRecord) {
					t.Errorf("Segment() error code = %v, want MALFORMED_RECORD", errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("Segment() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Segment() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
