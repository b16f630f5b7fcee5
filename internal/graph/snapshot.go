// Package graph builds an indexed, structurally validated snapshot of an
// architecture diagram and provides the traversal primitives the analysis
// passes share.
package graph

import (
	"fmt"

	"archatlas/internal/domain"
)

// StructuralError reports a graph that violates referential integrity:
// duplicate component ids or connections referencing missing components.
// Downstream passes index components by id, so these abort the whole
// analysis instead of being skipped.
type StructuralError struct {
	Problems []string
}

func (e *StructuralError) Error() string {
	if len(e.Problems) == 1 {
		return "structural error: " + e.Problems[0]
	}
	return fmt.Sprintf("structural errors (%d): %s", len(e.Problems), e.Problems[0])
}

// Snapshot is a read-only view over one graph. All analysis passes take a
// Snapshot and return fresh result structures; nothing here is mutated
// after New returns.
type Snapshot struct {
	Components  []domain.Component
	Connections []domain.Connection

	byID     map[string]*domain.Component
	outgoing map[string][]*domain.Connection
	incoming map[string][]*domain.Connection
}

// New indexes the graph and fails fast on structural problems.
func New(g domain.Graph) (*Snapshot, error) {
	s := &Snapshot{
		Components:  g.Components,
		Connections: g.Connections,
		byID:        make(map[string]*domain.Component, len(g.Components)),
		outgoing:    make(map[string][]*domain.Connection),
		incoming:    make(map[string][]*domain.Connection),
	}

	var problems []string
	for i := range s.Components {
		c := &s.Components[i]
		if c.ID == "" {
			problems = append(problems, "component with empty id")
			continue
		}
		if _, dup := s.byID[c.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate component id %q", c.ID))
			continue
		}
		s.byID[c.ID] = c
	}

	for i := range s.Connections {
		conn := &s.Connections[i]
		if _, ok := s.byID[conn.From]; !ok {
			problems = append(problems, fmt.Sprintf("connection %q references unknown source %q", conn.ID, conn.From))
			continue
		}
		if _, ok := s.byID[conn.To]; !ok {
			problems = append(problems, fmt.Sprintf("connection %q references unknown target %q", conn.ID, conn.To))
			continue
		}
		s.outgoing[conn.From] = append(s.outgoing[conn.From], conn)
		s.incoming[conn.To] = append(s.incoming[conn.To], conn)
	}

	if len(problems) > 0 {
		return nil, &StructuralError{Problems: problems}
	}
	return s, nil
}

// Component returns the component with the given id, or nil.
func (s *Snapshot) Component(id string) *domain.Component {
	return s.byID[id]
}

// Label returns the display name for a component id, falling back to the id.
func (s *Snapshot) Label(id string) string {
	if c := s.byID[id]; c != nil && c.Name != "" {
		return c.Name
	}
	return id
}

// Outgoing returns connections leaving the component.
func (s *Snapshot) Outgoing(id string) []*domain.Connection {
	return s.outgoing[id]
}

// Incoming returns connections entering the component.
func (s *Snapshot) Incoming(id string) []*domain.Connection {
	return s.incoming[id]
}

// Degree counts all incident connections of a component.
func (s *Snapshot) Degree(id string) int {
	return len(s.outgoing[id]) + len(s.incoming[id])
}

// Connection returns the first edge from->to, or nil.
func (s *Snapshot) Connection(from, to string) *domain.Connection {
	for _, conn := range s.outgoing[from] {
		if conn.To == to {
			return conn
		}
	}
	return nil
}

// ComponentsOfType filters components by type.
func (s *Snapshot) ComponentsOfType(t domain.ComponentType) []*domain.Component {
	var out []*domain.Component
	for i := range s.Components {
		if s.Components[i].Type == t {
			out = append(out, &s.Components[i])
		}
	}
	return out
}
