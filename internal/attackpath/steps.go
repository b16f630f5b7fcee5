package attackpath

import (
	"fmt"

	"archatlas/internal/domain"
	"archatlas/internal/graph"
)

// narrateSteps turns a scored path into a step-by-step attack narrative:
// one initial access step on the entry node, then a lateral movement step
// per hop. Difficulty follows the component's exposed/secured metadata.
func narrateSteps(s *graph.Snapshot, path domain.AttackPath) []domain.AttackStep {
	if len(path.Path) == 0 {
		return nil
	}

	entry := s.Component(path.Path[0])
	steps := []domain.AttackStep{{
		ID:            fmt.Sprintf("%s-step-1", path.ID),
		Component:     s.Label(path.Path[0]),
		Action:        initialAccessAction(entry),
		Technique:     "Initial Access",
		Prerequisites: []string{"Internet connectivity", "Target reconnaissance"},
		Outcome:       fmt.Sprintf("Foothold established on %s", s.Label(path.Path[0])),
		Difficulty:    initialDifficulty(entry),
	}}

	for i := 1; i < len(path.Path); i++ {
		hop := s.Component(path.Path[i])
		steps = append(steps, domain.AttackStep{
			ID:            fmt.Sprintf("%s-step-%d", path.ID, i+1),
			Component:     s.Label(path.Path[i]),
			Action:        lateralMovementAction(hop),
			Technique:     "Lateral Movement",
			Prerequisites: []string{fmt.Sprintf("Access to %s", s.Label(path.Path[i-1]))},
			Outcome:       fmt.Sprintf("Access gained to %s", s.Label(path.Path[i])),
			Difficulty:    hopDifficulty(hop),
		})
	}
	return steps
}

func initialAccessAction(entry *domain.Component) string {
	switch {
	case entry == nil:
		return "Network service exploitation"
	case entry.Type == domain.ComponentTypeWeb:
		return "Exploit web application vulnerabilities (OWASP Top 10)"
	case hasKind(entry, "api gateway", "api-gateway"):
		return "API abuse or authentication bypass"
	case hasKind(entry, "email", "mail"):
		return "Phishing or malicious attachment"
	}
	return "Network service exploitation"
}

func lateralMovementAction(hop *domain.Component) string {
	switch {
	case hop == nil:
		return "Credential reuse or service exploitation"
	case hasKind(hop, "database"):
		return "SQL injection or credential stuffing"
	case hop.Type == domain.ComponentTypeApp:
		return "Application-level privilege escalation"
	case hasKind(hop, "object storage", "object-storage", "bucket"):
		return "Misconfigured bucket permissions"
	}
	return "Credential reuse or service exploitation"
}

func initialDifficulty(entry *domain.Component) string {
	if entry != nil && entry.Metadata.Exposed {
		return "Easy"
	}
	return "Medium"
}

func hopDifficulty(hop *domain.Component) string {
	if hop != nil && hop.Metadata.Secured {
		return "Hard"
	}
	return "Medium"
}
