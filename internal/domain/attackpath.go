package domain

// STRIDEThreats holds the threat statements per STRIDE category for one node.
type STRIDEThreats struct {
	Spoofing              []string `json:"spoofing"`
	Tampering             []string `json:"tampering"`
	Repudiation           []string `json:"repudiation"`
	InformationDisclosure []string `json:"information_disclosure"`
	DenialOfService       []string `json:"denial_of_service"`
	ElevationOfPrivilege  []string `json:"elevation_of_privilege"`
}

// Total sums list lengths across all six categories.
func (t STRIDEThreats) Total() int {
	return len(t.Spoofing) + len(t.Tampering) + len(t.Repudiation) +
		len(t.InformationDisclosure) + len(t.DenialOfService) + len(t.ElevationOfPrivilege)
}

// ByCategory returns the per-category lists keyed by ThreatCategory.
func (t STRIDEThreats) ByCategory() map[ThreatCategory][]string {
	return map[ThreatCategory][]string{
		ThreatSpoofing:              t.Spoofing,
		ThreatTampering:             t.Tampering,
		ThreatRepudiation:           t.Repudiation,
		ThreatInformationDisclosure: t.InformationDisclosure,
		ThreatDenialOfService:       t.DenialOfService,
		ThreatElevationOfPrivilege:  t.ElevationOfPrivilege,
	}
}

// STRIDEAnalysis is the per-node STRIDE result. Recomputed in full on every
// analysis run, never updated incrementally.
type STRIDEAnalysis struct {
	NodeID       string        `json:"node_id"`
	NodeLabel    string        `json:"node_label"`
	Threats      STRIDEThreats `json:"threats"`
	TotalThreats int           `json:"total_threats"`
}

// AttackStep narrates one hop of an attack path.
type AttackStep struct {
	ID            string   `json:"id"`
	Component     string   `json:"component"`
	Action        string   `json:"action"`
	Technique     string   `json:"technique"`
	Prerequisites []string `json:"prerequisites,omitempty"`
	Outcome       string   `json:"outcome"`
	Difficulty    string   `json:"difficulty"`
}

// AttackPath is one route from an entry point to a high-value target,
// annotated with per-hop vulnerabilities/mitigations and a risk score.
// Likelihood and impact are both on a 1-10 scale; RiskScore is their
// product (0-100).
type AttackPath struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Path            []string       `json:"path"`
	PathLabels      []string       `json:"path_labels"`
	AttackType      AttackType     `json:"attack_type"`
	ThreatCategory  ThreatCategory `json:"threat_category"`
	Likelihood      float64        `json:"likelihood"`
	Impact          float64        `json:"impact"`
	RiskScore       float64        `json:"risk_score"`
	Mitigations     []string       `json:"mitigations"`
	Vulnerabilities []string       `json:"vulnerabilities"`
	Steps           []AttackStep   `json:"steps,omitempty"`
	Description     string         `json:"description"`
}
