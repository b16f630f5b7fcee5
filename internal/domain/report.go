package domain

import "time"

// Enrichment is the optional LLM-produced narrative layered on top of the
// deterministic results. Scores and severities always come from the engine,
// never from here.
type Enrichment struct {
	Analysis                  string   `json:"analysis"`
	PrioritizedPathIDs        []string `json:"prioritized_path_ids,omitempty"`
	AdditionalVulnerabilities []string `json:"additional_vulnerabilities,omitempty"`
	Recommendations           []string `json:"recommendations,omitempty"`
	Notice                    string   `json:"notice,omitempty"`
}

// Report bundles the output of one analysis run.
type Report struct {
	RunID            string           `json:"run_id"`
	Timestamp        time.Time        `json:"timestamp"`
	Findings         []Finding        `json:"findings"`
	Validation       ValidationResult `json:"validation"`
	STRIDE           []STRIDEAnalysis `json:"stride"`
	AttackPaths      []AttackPath     `json:"attack_paths"`
	CriticalRisks    []AttackPath     `json:"critical_risks"`
	HighRisks        []AttackPath     `json:"high_risks"`
	MediumRisks      []AttackPath     `json:"medium_risks"`
	LowRisks         []AttackPath     `json:"low_risks"`
	OverallRiskScore int              `json:"overall_risk_score"`
	Recommendations  []string         `json:"recommendations"`
	Enrichment       *Enrichment      `json:"enrichment,omitempty"`
	CacheHit         bool             `json:"cache_hit,omitempty"`
}
