package attackpath

import (
	"fmt"

	"archatlas/internal/domain"
	"archatlas/internal/graph"
)

var privEscMitigations = []string{
	"Implement principle of least privilege",
	"Regular access reviews and certification",
	"Multi-factor authentication for privileged accounts",
	"Privileged access management (PAM) solution",
}

// privilegeEscalationPaths synthesizes single-node paths against identity
// providers, key management services and secrets stores. Scores use the
// same 1-10 likelihood/impact scale as the route-based paths.
func privilegeEscalationPaths(s *graph.Snapshot) []domain.AttackPath {
	var paths []domain.AttackPath

	for i := range s.Components {
		c := &s.Components[i]
		impact, ok := privEscImpact(c)
		if !ok {
			continue
		}

		likelihood := 7.0
		difficulty := "Easy"
		if c.Metadata.Secured {
			likelihood = 3.0
			difficulty = "Hard"
		}

		id := fmt.Sprintf("priv-%s", c.ID)
		paths = append(paths, domain.AttackPath{
			ID:             id,
			Name:           fmt.Sprintf("Privilege Escalation on %s", c.Name),
			Path:           []string{c.ID},
			PathLabels:     []string{s.Label(c.ID)},
			AttackType:     domain.AttackTypePrivilegeEscalation,
			ThreatCategory: domain.ThreatElevationOfPrivilege,
			Likelihood:     likelihood,
			Impact:         impact,
			RiskScore:      likelihood * impact,
			Mitigations:    privEscMitigations,
			Vulnerabilities: []string{
				fmt.Sprintf("Misconfigured permissions or weak credentials on %s", c.Name),
			},
			Steps: []domain.AttackStep{{
				ID:            id + "-step-1",
				Component:     c.Name,
				Action:        "Exploit misconfigured permissions or weak credentials",
				Technique:     "Privilege Escalation",
				Prerequisites: []string{"Initial system access", "Local reconnaissance"},
				Outcome:       fmt.Sprintf("Administrative access to %s", c.Name),
				Difficulty:    difficulty,
			}},
			Description: fmt.Sprintf("Privilege escalation against %s granting control over downstream access decisions", c.Name),
		})
	}
	return paths
}

func privEscImpact(c *domain.Component) (float64, bool) {
	switch {
	case hasKind(c, "idp", "identity"):
		return 9, true
	case hasKind(c, "kms", "key management", "key-management"):
		return 7, true
	case hasKind(c, "secrets", "vault"):
		return 7, true
	case c.Metadata.Privileged:
		return 7, true
	}
	return 0, false
}
