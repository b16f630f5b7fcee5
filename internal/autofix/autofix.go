// Package autofix rewrites a graph to resolve a finding. Every fix is a
// pure function over the component and connection lists: inputs are never
// mutated, and a failed precondition returns an error with no partial
// result.
package autofix

import (
	"fmt"
	"strings"

	"archatlas/internal/domain"
)

// Apply resolves the finding by returning rewritten component and
// connection lists. Returns an error when the finding has no registered
// fix or when its affected assets are missing from the graph.
func Apply(finding domain.Finding, components []domain.Component, connections []domain.Connection) ([]domain.Component, []domain.Connection, error) {
	if !finding.AutoFixAvailable {
		return nil, nil, fmt.Errorf("finding %s has no automatic fix", finding.ID)
	}

	byID := make(map[string]bool, len(components))
	for _, c := range components {
		byID[c.ID] = true
	}
	for _, asset := range finding.AffectedAssets {
		if !byID[asset] && !isConnectionID(asset, connections) {
			return nil, nil, fmt.Errorf("finding %s references unknown asset %q", finding.ID, asset)
		}
	}

	switch {
	case strings.HasPrefix(finding.ID, "enforce-https-"),
		strings.HasPrefix(finding.ID, "unencrypted-db-"),
		strings.HasPrefix(finding.ID, "insecure-protocol-"):
		return forceHTTPS(finding, components, connections)
	case strings.HasPrefix(finding.ID, "missing-waf-"):
		return insertWAF(finding, components, connections)
	}
	return nil, nil, fmt.Errorf("finding %s has no registered fix family", finding.ID)
}

func isConnectionID(id string, connections []domain.Connection) bool {
	for _, conn := range connections {
		if conn.ID == id {
			return true
		}
	}
	return false
}

// forceHTTPS rewrites every connection touching the finding's affected
// assets to HTTPS on port 443 with TLS 1.2+.
func forceHTTPS(finding domain.Finding, components []domain.Component, connections []domain.Connection) ([]domain.Component, []domain.Connection, error) {
	affected := make(map[string]bool, len(finding.AffectedAssets))
	for _, asset := range finding.AffectedAssets {
		affected[asset] = true
	}

	newComponents := append([]domain.Component(nil), components...)
	newConnections := make([]domain.Connection, len(connections))
	for i, conn := range connections {
		if affected[conn.From] || affected[conn.To] || affected[conn.ID] {
			conn.Protocol = "HTTPS"
			conn.Ports = []int{443}
			conn.Encryption = "TLS 1.2+"
		}
		newConnections[i] = conn
	}
	return newComponents, newConnections, nil
}

// insertWAF synthesizes a WAF component in front of the affected web
// server and reroutes every inbound connection through it.
func insertWAF(finding domain.Finding, components []domain.Component, connections []domain.Connection) ([]domain.Component, []domain.Connection, error) {
	if len(finding.AffectedAssets) == 0 {
		return nil, nil, fmt.Errorf("finding %s names no affected component", finding.ID)
	}
	webID := finding.AffectedAssets[0]

	var web *domain.Component
	for i := range components {
		if components[i].ID == webID {
			web = &components[i]
			break
		}
	}
	if web == nil {
		return nil, nil, fmt.Errorf("finding %s references unknown component %q", finding.ID, webID)
	}

	wafID := "waf-" + webID
	for _, c := range components {
		if c.ID == wafID {
			return nil, nil, fmt.Errorf("component %s already exists, fix already applied", wafID)
		}
	}

	waf := domain.Component{
		ID:       wafID,
		Type:     domain.ComponentTypeSecurity,
		Name:     "WAF",
		Category: "Security",
		Zone:     web.Zone,
	}

	newComponents := append([]domain.Component(nil), components...)
	newComponents = append(newComponents, waf)

	var newConnections []domain.Connection
	for _, conn := range connections {
		if conn.To == webID {
			conn.To = wafID
			conn.ID = conn.ID + "-via-waf"
		}
		newConnections = append(newConnections, conn)
	}
	newConnections = append(newConnections, domain.Connection{
		ID:         fmt.Sprintf("%s-%s", wafID, webID),
		From:       wafID,
		To:         webID,
		Label:      "Filtered traffic",
		Protocol:   "HTTPS",
		Ports:      []int{443},
		Encryption: "TLS 1.2+",
		Controls:   []string{"WAF filtering"},
	})
	return newComponents, newConnections, nil
}
