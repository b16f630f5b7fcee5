package enrich

import (
	"strings"

	"archatlas/internal/domain"
)

// AbstractionLevel controls how much of the architecture is shared with
// the enrichment service.
type AbstractionLevel string

const (
	// AbstractionFull sends component labels and vendor details as-is.
	AbstractionFull AbstractionLevel = "full"
	// AbstractionAbstracted masks vendor names but keeps structure.
	AbstractionAbstracted AbstractionLevel = "abstracted"
	// AbstractionConfidential sends only types and zones.
	AbstractionConfidential AbstractionLevel = "confidential"
)

// Valid reports whether l is a known abstraction level.
func (l AbstractionLevel) Valid() bool {
	switch l {
	case AbstractionFull, AbstractionAbstracted, AbstractionConfidential:
		return true
	}
	return false
}

type sanitizedNode struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Zone     string   `json:"zone,omitempty"`
	Label    string   `json:"label,omitempty"`
	Vendor   string   `json:"vendor,omitempty"`
	Features []string `json:"features,omitempty"`
}

// sanitizeComponents strips the graph down to what the chosen abstraction
// level allows. Labels are only preserved at the full level.
func sanitizeComponents(components []domain.Component, level AbstractionLevel) (nodes []sanitizedNode, preserveLabels bool) {
	for _, c := range components {
		node := sanitizedNode{
			ID:   c.ID,
			Type: string(c.Type),
			Zone: c.Zone,
		}
		switch level {
		case AbstractionFull:
			node.Label = c.Name
			node.Vendor = c.Metadata.Vendor
			node.Features = c.Metadata.Features
		case AbstractionAbstracted:
			node.Vendor = maskUppercase(c.Metadata.Vendor)
			node.Features = c.Metadata.Features
		}
		nodes = append(nodes, node)
	}
	return nodes, level == AbstractionFull
}

func maskUppercase(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune('X')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
