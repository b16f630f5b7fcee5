package attackpath

import (
	"fmt"
	"sort"
	"strings"

	"archatlas/internal/domain"
)

const maxRecommendations = 10

// GenerateRecommendations derives a deduplicated advice list from the
// discovered paths and the STRIDE analysis: fixed advice keyed on the
// vulnerability text, the five most common threat statements, and generic
// baseline items when the list would otherwise be thin. Capped at ten.
func GenerateRecommendations(paths []domain.AttackPath, stride []domain.STRIDEAnalysis) []string {
	var recommendations []string
	seen := make(map[string]bool)
	add := func(r string) {
		if !seen[r] {
			seen[r] = true
			recommendations = append(recommendations, r)
		}
	}

	var hasEncryptionIssue, hasAuthIssue bool
	criticalCount := 0
	for _, p := range paths {
		if p.RiskScore >= 70 {
			criticalCount++
		}
		for _, v := range p.Vulnerabilities {
			lower := strings.ToLower(v)
			if strings.Contains(lower, "encryption") {
				hasEncryptionIssue = true
			}
			if strings.Contains(lower, "authentication") {
				hasAuthIssue = true
			}
		}
	}

	if hasEncryptionIssue {
		add("Enable TLS 1.3 encryption for all inter-service communication")
	}
	if hasAuthIssue {
		add("Implement IAM-based authentication with Workload Identity")
	}
	if criticalCount > 0 {
		add(fmt.Sprintf("URGENT: %d critical-risk attack paths identified - prioritize remediation", criticalCount))
	}

	for _, threat := range topThreats(stride, 5) {
		add(threat)
	}

	if len(recommendations) < 8 {
		add("Enable comprehensive logging and monitoring")
		add("Implement automated security scanning in CI/CD")
		add("Enforce MFA for all administrative access")
	}

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}

// topThreats returns the n most frequent threat statements across all
// nodes, ties broken alphabetically for stable output.
func topThreats(stride []domain.STRIDEAnalysis, n int) []string {
	counts := make(map[string]int)
	for _, analysis := range stride {
		for _, threats := range analysis.Threats.ByCategory() {
			for _, threat := range threats {
				counts[threat]++
			}
		}
	}

	threats := make([]string, 0, len(counts))
	for threat := range counts {
		threats = append(threats, threat)
	}
	sort.Slice(threats, func(i, j int) bool {
		if counts[threats[i]] != counts[threats[j]] {
			return counts[threats[i]] > counts[threats[j]]
		}
		return threats[i] < threats[j]
	})

	if len(threats) > n {
		threats = threats[:n]
	}
	return threats
}
