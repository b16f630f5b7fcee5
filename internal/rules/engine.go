// Package rules evaluates the declarative security rule catalog against a
// graph snapshot and emits findings with deterministic ids.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"archatlas/internal/catalog"
	"archatlas/internal/domain"
	"archatlas/internal/graph"
	"archatlas/internal/logging"
)

// Rule pairs catalog metadata with its predicate.
type Rule struct {
	Meta      catalog.RuleMeta
	Predicate Predicate
}

// Engine evaluates every rule against every connection, plus the
// graph-level scans that are not expressible per-connection.
type Engine struct {
	rules []Rule
}

// NewEngine binds rule metadata to registered predicates. Metadata whose id
// has no predicate is kept but can never trigger.
func NewEngine(metas []catalog.RuleMeta) *Engine {
	e := &Engine{}
	for _, meta := range metas {
		e.rules = append(e.rules, Rule{Meta: meta, Predicate: predicates[meta.ID]})
	}
	return e
}

// Evaluate runs the catalog over the snapshot. A panicking predicate
// disables only that rule for the run; everything else still evaluates.
func (e *Engine) Evaluate(s *graph.Snapshot) []domain.Finding {
	var findings []domain.Finding
	disabled := make(map[string]bool)

	for i := range s.Connections {
		conn := &s.Connections[i]
		from := s.Component(conn.From)
		to := s.Component(conn.To)

		for _, rule := range e.rules {
			if rule.Predicate == nil || disabled[rule.Meta.ID] {
				continue
			}
			if e.safeMatch(rule, conn, from, to, disabled) {
				findings = append(findings, e.connectionFinding(rule.Meta, conn))
			}
		}
	}

	findings = append(findings, e.checkDirectTier(s)...)
	findings = append(findings, e.checkMissingWAF(s)...)

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity.Rank() != findings[j].Severity.Rank() {
			return findings[i].Severity.Rank() > findings[j].Severity.Rank()
		}
		return findings[i].ID < findings[j].ID
	})
	return findings
}

func (e *Engine) safeMatch(rule Rule, conn *domain.Connection, from, to *domain.Component, disabled map[string]bool) (triggered bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.LogWarn("rule predicate panicked, disabling rule for this run", map[string]any{
				"rule":  rule.Meta.ID,
				"error": fmt.Sprintf("%v", r),
			})
			disabled[rule.Meta.ID] = true
			triggered = false
		}
	}()
	return rule.Predicate(conn, from, to)
}

func (e *Engine) connectionFinding(meta catalog.RuleMeta, conn *domain.Connection) domain.Finding {
	ports := make([]string, len(conn.Ports))
	for i, p := range conn.Ports {
		ports[i] = fmt.Sprintf("%d", p)
	}
	return domain.Finding{
		ID:               fmt.Sprintf("%s-%s", meta.ID, conn.ID),
		Title:            meta.Name,
		Severity:         meta.Severity,
		Category:         meta.Category,
		Description:      meta.Description,
		AffectedAssets:   []string{conn.From, conn.To},
		Evidence:         fmt.Sprintf("Connection: %s → %s (%s:%s)", conn.From, conn.To, conn.Protocol, strings.Join(ports, ",")),
		Standards:        meta.Standards,
		SuggestedFix:     meta.Fix,
		AutoFixAvailable: meta.AutoFix,
		ResidualRisk:     meta.Severity.ResidualRisk(),
	}
}

// checkDirectTier flags web components talking straight to data components
// when the graph has no app tier at all. One finding per offending web
// component; the evidence lists every such edge.
func (e *Engine) checkDirectTier(s *graph.Snapshot) []domain.Finding {
	if len(s.ComponentsOfType(domain.ComponentTypeApp)) > 0 {
		return nil
	}

	var findings []domain.Finding
	for _, web := range s.ComponentsOfType(domain.ComponentTypeWeb) {
		var edges []string
		affected := []string{web.ID}
		for _, conn := range s.Outgoing(web.ID) {
			if target := s.Component(conn.To); target != nil && target.Type == domain.ComponentTypeData {
				edges = append(edges, fmt.Sprintf("%s → %s", conn.From, conn.To))
				affected = append(affected, conn.To)
			}
		}
		if len(edges) == 0 {
			continue
		}
		findings = append(findings, domain.Finding{
			ID:               fmt.Sprintf("direct-db-%s", web.ID),
			Title:            "Direct Web-to-Database Connection",
			Severity:         domain.SeverityHigh,
			Category:         "Architecture",
			Description:      "Web tier connects directly to database without application tier",
			AffectedAssets:   affected,
			Evidence:         fmt.Sprintf("Direct connections: %s", strings.Join(edges, ", ")),
			Standards:        []string{"OWASP ASVS V1.4", "NIST 800-53 SC-7"},
			SuggestedFix:     "Insert application/API tier between web and database layers",
			AutoFixAvailable: false,
			ResidualRisk:     domain.SeverityHigh.ResidualRisk(),
		})
	}
	return findings
}

// checkMissingWAF flags web components with no inbound connection from a
// component named exactly "WAF". The match is on the name, not the type:
// the palette models WAFs as security components but diagrams imported
// from other tools often only carry the label.
func (e *Engine) checkMissingWAF(s *graph.Snapshot) []domain.Finding {
	wafIDs := make(map[string]bool)
	for i := range s.Components {
		if s.Components[i].Name == "WAF" {
			wafIDs[s.Components[i].ID] = true
		}
	}

	var findings []domain.Finding
	for _, web := range s.ComponentsOfType(domain.ComponentTypeWeb) {
		protected := false
		for _, conn := range s.Incoming(web.ID) {
			if wafIDs[conn.From] {
				protected = true
				break
			}
		}
		if protected {
			continue
		}
		findings = append(findings, domain.Finding{
			ID:               fmt.Sprintf("missing-waf-%s", web.ID),
			Title:            "Missing WAF Protection",
			Severity:         domain.SeverityMedium,
			Category:         "Security Controls",
			Description:      "Public web server lacks Web Application Firewall protection",
			AffectedAssets:   []string{web.ID},
			Evidence:         fmt.Sprintf("Web server %s is not protected by WAF", web.Name),
			Standards:        []string{"OWASP Top 10", "NIST CSF PR.PT-4"},
			SuggestedFix:     "Deploy Web Application Firewall in front of web servers",
			AutoFixAvailable: true,
			ResidualRisk:     domain.SeverityMedium.ResidualRisk(),
		})
	}
	return findings
}
