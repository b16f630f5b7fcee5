package attackpath

import (
	"fmt"
	"strings"
	"testing"

	"archatlas/internal/domain"
)

func TestGenerateRecommendations_FixedAdvice(t *testing.T) {
	paths := []domain.AttackPath{
		{
			RiskScore: 77,
			Vulnerabilities: []string{
				"No encryption between A and B",
				"Weak authentication between B and C",
			},
		},
		{RiskScore: 80},
	}

	recs := GenerateRecommendations(paths, nil)
	joined := strings.Join(recs, "\n")

	if !strings.Contains(joined, "TLS 1.3") {
		t.Errorf("encryption advice missing from %v", recs)
	}
	if !strings.Contains(joined, "Workload Identity") {
		t.Errorf("authentication advice missing from %v", recs)
	}
	if !strings.Contains(joined, "URGENT: 2 critical-risk attack paths identified") {
		t.Errorf("urgent advice missing from %v", recs)
	}
}

func TestGenerateRecommendations_TopThreatsAndFillers(t *testing.T) {
	stride := []domain.STRIDEAnalysis{
		{Threats: domain.STRIDEThreats{
			Tampering:             []string{"Data not encrypted with CMEK"},
			InformationDisclosure: []string{"Data transmitted without encryption"},
		}},
		{Threats: domain.STRIDEThreats{
			Tampering: []string{"Data not encrypted with CMEK"},
		}},
	}

	recs := GenerateRecommendations(nil, stride)

	// The twice-seen threat leads the threat block.
	if recs[0] != "Data not encrypted with CMEK" {
		t.Errorf("recs[0] = %q, want the most frequent threat first", recs[0])
	}
	joined := strings.Join(recs, "\n")
	for _, filler := range []string{
		"Enable comprehensive logging and monitoring",
		"Implement automated security scanning in CI/CD",
		"Enforce MFA for all administrative access",
	} {
		if !strings.Contains(joined, filler) {
			t.Errorf("thin list missing filler %q: %v", filler, recs)
		}
	}
}

func TestGenerateRecommendations_CapAndDedupe(t *testing.T) {
	var stride []domain.STRIDEAnalysis
	for i := 0; i < 15; i++ {
		stride = append(stride, domain.STRIDEAnalysis{Threats: domain.STRIDEThreats{
			Spoofing: []string{fmt.Sprintf("Threat %02d", i)},
		}})
	}
	paths := []domain.AttackPath{
		{RiskScore: 90, Vulnerabilities: []string{"No encryption between A and B", "no encryption between C and D"}},
	}

	recs := GenerateRecommendations(paths, stride)
	if len(recs) > maxRecommendations {
		t.Errorf("len(recs) = %d, want at most %d", len(recs), maxRecommendations)
	}

	seen := map[string]bool{}
	for _, r := range recs {
		if seen[r] {
			t.Errorf("duplicate recommendation %q", r)
		}
		seen[r] = true
	}
}
