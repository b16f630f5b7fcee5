package rules

import (
	"strings"

	"archatlas/internal/domain"
	"archatlas/internal/graph"
)

// Predicate decides whether a rule fires for a connection. Predicates are
// pure functions of the connection and its two endpoints so the engine
// stays open for extension without touching dispatch code.
type Predicate func(conn *domain.Connection, from, to *domain.Component) bool

// predicates binds rule ids from the catalog metadata to their matching
// logic. Metadata without a registered predicate never triggers.
var predicates = map[string]Predicate{
	"enforce-https": func(conn *domain.Connection, _, _ *domain.Component) bool {
		if strings.EqualFold(strings.TrimSpace(conn.Protocol), "HTTP") {
			return true
		}
		for _, p := range conn.Ports {
			if p == 80 {
				return true
			}
		}
		return false
	},

	"unencrypted-db": func(conn *domain.Connection, _, to *domain.Component) bool {
		if to.Type != domain.ComponentTypeData {
			return false
		}
		enc := strings.ToLower(conn.Encryption)
		return !strings.Contains(enc, "tls") && !strings.Contains(enc, "ssl")
	},

	"insecure-protocol": func(conn *domain.Connection, _, _ *domain.Component) bool {
		// HTTP is handled by enforce-https; this rule covers the rest of
		// the legacy set (FTP, Telnet, SMB, ANY).
		if strings.EqualFold(strings.TrimSpace(conn.Protocol), "HTTP") {
			return false
		}
		return graph.InsecureProtocol(conn.Protocol)
	},

	"unauthenticated-connection": func(conn *domain.Connection, _, _ *domain.Component) bool {
		dc := strings.TrimSpace(conn.DataClass)
		if dc == "" || strings.EqualFold(dc, "public") {
			return false
		}
		return !graph.ConnectionAuthenticated(conn)
	},
}
