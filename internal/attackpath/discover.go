// Package attackpath searches the architecture graph for routes an
// attacker could take from internet-facing entry points to high-value
// targets, scores each route and derives remediation recommendations.
package attackpath

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"archatlas/internal/domain"
	"archatlas/internal/graph"
)

const maxPathDepth = 10

// Discover enumerates all simple paths from entry points to high-value
// targets, plus lateral movement paths between compute platforms and the
// same targets, sorted descending by risk score. Ids are derived from the
// endpoints so repeated runs on the same graph produce identical output.
func Discover(s *graph.Snapshot) []domain.AttackPath {
	entries := entryPoints(s)
	targets := highValueTargets(s)

	var paths []domain.AttackPath
	for _, entry := range entries {
		for _, target := range targets {
			if entry.ID == target.ID {
				continue
			}
			for i, route := range s.SimplePaths(entry.ID, target.ID, maxPathDepth) {
				id := fmt.Sprintf("attack-%s-%s-%d", entry.ID, target.ID, i)
				paths = append(paths, analyzeRoute(s, id, route))
			}
		}
	}

	for _, source := range computePlatforms(s) {
		for _, target := range targets {
			if source.ID == target.ID {
				continue
			}
			for i, route := range s.SimplePaths(source.ID, target.ID, maxPathDepth) {
				id := fmt.Sprintf("lateral-%s-%s-%d", source.ID, target.ID, i)
				p := analyzeRoute(s, id, route)
				if p.AttackType == domain.AttackTypeLateralMovement {
					paths = append(paths, p)
				}
			}
		}
	}

	paths = append(paths, privilegeEscalationPaths(s)...)

	sort.SliceStable(paths, func(i, j int) bool {
		if paths[i].RiskScore != paths[j].RiskScore {
			return paths[i].RiskScore > paths[j].RiskScore
		}
		return paths[i].ID < paths[j].ID
	})
	return paths
}

func entryPoints(s *graph.Snapshot) []*domain.Component {
	var out []*domain.Component
	for i := range s.Components {
		c := &s.Components[i]
		switch {
		case inZone(c, "edge", "external", "dmz"):
			out = append(out, c)
		case hasKind(c, "firewall", "cdn"), isGlobalLoadBalancer(c):
			out = append(out, c)
		case c.Metadata.Exposed && (c.Type == domain.ComponentTypeWeb || hasKind(c, "api gateway", "api-gateway")):
			out = append(out, c)
		}
	}
	return out
}

func highValueTargets(s *graph.Snapshot) []*domain.Component {
	var out []*domain.Component
	for i := range s.Components {
		c := &s.Components[i]
		switch {
		case c.Type == domain.ComponentTypeData:
			out = append(out, c)
		case hasKind(c, "database", "object storage", "object-storage", "secrets", "vault", "cache"):
			out = append(out, c)
		case inZone(c, "data"):
			out = append(out, c)
		case strings.EqualFold(c.Metadata.DataClassification, "confidential"):
			out = append(out, c)
		}
	}
	return out
}

func computePlatforms(s *graph.Snapshot) []*domain.Component {
	var out []*domain.Component
	for i := range s.Components {
		c := &s.Components[i]
		if hasKind(c, "kubernetes", "container") {
			out = append(out, c)
		}
	}
	return out
}

func analyzeRoute(s *graph.Snapshot, id string, route []string) domain.AttackPath {
	var vulnerabilities, mitigations []string

	labels := make([]string, len(route))
	for i, nodeID := range route {
		labels[i] = s.Label(nodeID)
	}

	for i := 0; i < len(route)-1; i++ {
		conn := s.Connection(route[i], route[i+1])
		if conn == nil {
			continue
		}
		fromLabel := s.Label(route[i])
		toLabel := s.Label(route[i+1])

		if graph.ConnectionEncrypted(conn) {
			mitigations = append(mitigations, fmt.Sprintf("Encrypted connection: %s", edgeDescription(conn)))
		} else {
			vulnerabilities = append(vulnerabilities, fmt.Sprintf("No encryption between %s and %s", fromLabel, toLabel))
		}

		if graph.ConnectionAuthenticated(conn) {
			mitigations = append(mitigations, fmt.Sprintf("Strong authentication: %s", edgeDescription(conn)))
		} else {
			vulnerabilities = append(vulnerabilities, fmt.Sprintf("Weak authentication between %s and %s", fromLabel, toLabel))
		}

		if hop := s.Component(route[i+1]); hop != nil {
			switch {
			case hasKind(hop, "firewall", "waf"):
				mitigations = append(mitigations, fmt.Sprintf("WAF protection: %s", hop.Name))
			case hasKind(hop, "service mesh", "service-mesh"):
				mitigations = append(mitigations, fmt.Sprintf("Service mesh mTLS: %s", hop.Name))
			case hop.Type == domain.ComponentTypeSecurity:
				mitigations = append(mitigations, fmt.Sprintf("Security control: %s", hop.Name))
			}
		}
	}

	attackType := classifyAttack(s, route)
	likelihood := calculateLikelihood(len(vulnerabilities), len(mitigations), len(route))
	impact := calculateImpact(s.Component(route[len(route)-1]))

	path := domain.AttackPath{
		ID:              id,
		Name:            fmt.Sprintf("%s: %s → %s", attackTypeTitle(attackType), labels[0], labels[len(labels)-1]),
		Path:            route,
		PathLabels:      labels,
		AttackType:      attackType,
		ThreatCategory:  classifyThreat(attackType, vulnerabilities),
		Likelihood:      likelihood,
		Impact:          impact,
		RiskScore:       likelihood * impact,
		Mitigations:     mitigations,
		Vulnerabilities: vulnerabilities,
		Description:     describeAttack(labels, attackType, vulnerabilities),
	}
	path.Steps = narrateSteps(s, path)
	return path
}

func classifyAttack(s *graph.Snapshot, route []string) domain.AttackType {
	start := s.Component(route[0])
	end := s.Component(route[len(route)-1])
	if start == nil || end == nil {
		return domain.AttackTypeMisconfiguration
	}

	externalStart := inZone(start, "edge", "external", "dmz")
	dataTarget := end.Type == domain.ComponentTypeData ||
		hasKind(end, "database", "object storage", "object-storage", "secrets", "vault")

	if hasKind(start, "kubernetes", "container") && dataTarget {
		return domain.AttackTypeLateralMovement
	}
	if externalStart && dataTarget {
		return domain.AttackTypeExfiltration
	}
	if hasKind(start, "cdn") || isGlobalLoadBalancer(start) {
		return domain.AttackTypeDDoS
	}
	if hasKind(end, "secrets", "vault") {
		return domain.AttackTypeCredentialTheft
	}
	return domain.AttackTypeInjection
}

func classifyThreat(attackType domain.AttackType, vulnerabilities []string) domain.ThreatCategory {
	vulnText := strings.ToLower(strings.Join(vulnerabilities, " "))

	switch {
	case attackType == domain.AttackTypeCredentialTheft, strings.Contains(vulnText, "authentication"):
		return domain.ThreatSpoofing
	case attackType == domain.AttackTypeInjection, strings.Contains(vulnText, "encryption"):
		return domain.ThreatTampering
	case attackType == domain.AttackTypeExfiltration:
		return domain.ThreatInformationDisclosure
	case attackType == domain.AttackTypeDDoS:
		return domain.ThreatDenialOfService
	case attackType == domain.AttackTypePrivilegeEscalation, attackType == domain.AttackTypeLateralMovement:
		return domain.ThreatElevationOfPrivilege
	}
	return domain.ThreatTampering
}

// calculateLikelihood scores 1-10: each vulnerability raises it, each
// mitigation lowers it, and longer paths are harder to exploit. Rounded to
// one decimal.
func calculateLikelihood(vulnCount, mitigationCount, pathLength int) float64 {
	base := math.Min(10, float64(vulnCount)*2)
	mitigationPenalty := math.Min(5, float64(mitigationCount)*0.5)
	lengthPenalty := math.Min(3, float64(pathLength-2)*0.3)

	score := math.Max(1, base-mitigationPenalty-lengthPenalty)
	return math.Round(score*10) / 10
}

// calculateImpact maps the target's kind to a fixed 1-10 impact score.
func calculateImpact(target *domain.Component) float64 {
	if target == nil {
		return 5
	}
	switch {
	case hasKind(target, "database"), hasKind(target, "secrets", "vault"):
		return 10
	case hasKind(target, "object storage", "object-storage", "bucket"):
		return 8
	case hasKind(target, "kubernetes", "container"):
		return 7
	case hasKind(target, "cache"):
		return 6
	case target.Type == domain.ComponentTypeData:
		return 10
	}
	return 5
}

var attackDescriptions = map[domain.AttackType]string{
	domain.AttackTypeDDoS:                "Distributed Denial of Service attack overwhelming the system",
	domain.AttackTypeInjection:           "Code injection attack exploiting input validation weaknesses",
	domain.AttackTypeExfiltration:        "Data exfiltration attack stealing sensitive information",
	domain.AttackTypeLateralMovement:     "Lateral movement after initial compromise",
	domain.AttackTypePrivilegeEscalation: "Privilege escalation to gain higher access",
	domain.AttackTypeMisconfiguration:    "Exploiting security misconfigurations",
	domain.AttackTypeCredentialTheft:     "Credential theft to steal authentication tokens",
}

func describeAttack(labels []string, attackType domain.AttackType, vulnerabilities []string) string {
	desc := fmt.Sprintf("%s through path: %s.", attackDescriptions[attackType], strings.Join(labels, " → "))
	if len(vulnerabilities) > 0 {
		shown := vulnerabilities
		if len(shown) > 2 {
			shown = shown[:2]
		}
		desc += fmt.Sprintf(" Exploits: %s", strings.Join(shown, ", "))
		if extra := len(vulnerabilities) - 2; extra > 0 {
			desc += fmt.Sprintf(" and %d more", extra)
		}
	}
	return desc
}

func attackTypeTitle(t domain.AttackType) string {
	words := strings.Split(string(t), "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func edgeDescription(conn *domain.Connection) string {
	if conn.Label != "" {
		return conn.Label
	}
	if conn.Encryption != "" {
		return conn.Encryption
	}
	return conn.Protocol
}

func hasKind(c *domain.Component, kinds ...string) bool {
	if c == nil {
		return false
	}
	return graph.NameContains(c.Name+" "+c.Category, kinds...)
}

func isGlobalLoadBalancer(c *domain.Component) bool {
	return hasKind(c, "load balancer", "load-balancer") && (hasKind(c, "global") || inZone(c, "edge"))
}

func inZone(c *domain.Component, zones ...string) bool {
	if c == nil {
		return false
	}
	zone := strings.ToLower(c.Zone)
	for _, z := range zones {
		if strings.Contains(zone, z) {
			return true
		}
	}
	return false
}
