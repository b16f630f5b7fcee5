// Package snapshot persists a graph plus its analysis artifacts as a
// versioned JSON document. Round-tripping a snapshot yields a graph
// equivalent to a freshly authored one; unknown metadata keys survive.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"archatlas/internal/domain"
)

// Version is written into every snapshot and checked on load.
const Version = "1.0"

// MaxSize bounds a snapshot file at 5MB.
const MaxSize = 5 * 1024 * 1024

var validate = validator.New()

// Snapshot is the on-disk document.
type Snapshot struct {
	Version          string              `json:"version" validate:"required"`
	Timestamp        time.Time           `json:"timestamp" validate:"required"`
	Nodes            []domain.Component  `json:"nodes" validate:"required,min=1,dive"`
	Edges            []domain.Connection `json:"edges" validate:"dive"`
	CustomComponents []domain.Component  `json:"customComponents,omitempty" validate:"dive"`
	Findings         []domain.Finding    `json:"findings,omitempty"`
	AttackPaths      []domain.AttackPath `json:"attackPaths,omitempty"`
}

// New wraps a graph and its latest results into a snapshot.
func New(g domain.Graph, findings []domain.Finding, paths []domain.AttackPath) *Snapshot {
	return &Snapshot{
		Version:     Version,
		Timestamp:   time.Now().UTC(),
		Nodes:       g.Components,
		Edges:       g.Connections,
		Findings:    findings,
		AttackPaths: paths,
	}
}

// Graph extracts the component and connection lists.
func (s *Snapshot) Graph() domain.Graph {
	return domain.Graph{Components: s.Nodes, Connections: s.Edges}
}

// Encode marshals the snapshot and enforces the size limit.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("snapshot is %d bytes, exceeds %d byte limit", len(data), MaxSize)
	}
	return data, nil
}

// Decode parses and validates snapshot bytes.
func Decode(data []byte) (*Snapshot, error) {
	if len(data) > MaxSize {
		return nil, fmt.Errorf("snapshot is %d bytes, exceeds %d byte limit", len(data), MaxSize)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("unsupported snapshot version %q, want %q", s.Version, Version)
	}
	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("snapshot failed validation: %w", err)
	}
	return &s, nil
}

// Save writes the snapshot to path.
func (s *Snapshot) Save(path string) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}

// Load reads and validates a snapshot file.
func Load(path string) (*Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot %s: %w", path, err)
	}
	if info.Size() > MaxSize {
		return nil, fmt.Errorf("snapshot %s is %d bytes, exceeds %d byte limit", path, info.Size(), MaxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return Decode(data)
}
