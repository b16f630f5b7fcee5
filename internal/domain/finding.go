package domain

// Finding is a single security issue raised by the rule engine. IDs are
// derived from the rule id plus the affected asset id, so re-running the
// analysis on an unchanged graph produces identical findings.
type Finding struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Severity         Severity `json:"severity"`
	Category         string   `json:"category"`
	Description      string   `json:"description"`
	AffectedAssets   []string `json:"affected_assets"`
	Evidence         string   `json:"evidence"`
	Standards        []string `json:"standards,omitempty"`
	SuggestedFix     string   `json:"suggested_fix,omitempty"`
	AutoFixAvailable bool     `json:"auto_fix_available"`
	ResidualRisk     string   `json:"residual_risk"`
}

// ValidationSeverity grades an architectural validation issue.
type ValidationSeverity string

const (
	ValidationError   ValidationSeverity = "error"
	ValidationWarning ValidationSeverity = "warning"
	ValidationInfo    ValidationSeverity = "info"
)

// ValidationCategory groups validation issues by concern.
type ValidationCategory string

const (
	CategoryConnectivity ValidationCategory = "connectivity"
	CategorySecurityZone ValidationCategory = "security-zone"
	CategoryRedundancy   ValidationCategory = "redundancy"
	CategoryAntiPattern  ValidationCategory = "anti-pattern"
	CategoryCompliance   ValidationCategory = "compliance"
)

// ValidationIssue is one graph-shape problem found by the validator.
type ValidationIssue struct {
	ID                 string             `json:"id"`
	Severity           ValidationSeverity `json:"severity"`
	Category           ValidationCategory `json:"category"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	AffectedComponents []string           `json:"affected_components"`
	Recommendation     string             `json:"recommendation"`
}

// ValidationSummary counts issues per severity.
type ValidationSummary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// ValidationResult is the validator output. Score is 0-100 and is kept
// separate from the rule engine's findings; the two are never merged.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Score   int               `json:"score"`
	Issues  []ValidationIssue `json:"issues"`
	Summary ValidationSummary `json:"summary"`
}
