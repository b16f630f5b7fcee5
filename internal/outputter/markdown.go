package outputter

import (
	"fmt"
	"os"
	"strings"

	"archatlas/internal/domain"
)

// WriteMarkdown renders the report as a markdown assessment document.
func WriteMarkdown(report *domain.Report, path string) error {
	var b strings.Builder

	b.WriteString("# Security Assessment Report\n\n")
	fmt.Fprintf(&b, "Run `%s` — %s\n\n", report.RunID, report.Timestamp.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Executive Summary\n\n")
	if report.Enrichment != nil && report.Enrichment.Analysis != "" {
		b.WriteString(report.Enrichment.Analysis)
		b.WriteString("\n\n")
	} else {
		fmt.Fprintf(&b,
			"Automated analysis identified %d security findings, %d architectural issues and %d attack paths. Overall attack path risk: %d/100.\n\n",
			len(report.Findings), len(report.Validation.Issues), len(report.AttackPaths), report.OverallRiskScore)
	}

	fmt.Fprintf(&b, "## Findings (%d)\n\n", len(report.Findings))
	if len(report.Findings) == 0 {
		b.WriteString("No rule-based findings.\n\n")
	} else {
		b.WriteString("| Severity | Finding | Affected | Fix |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, f := range report.Findings {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				f.Severity, f.Title, strings.Join(f.AffectedAssets, ", "), f.SuggestedFix)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Architecture Validation — score %d/100\n\n", report.Validation.Score)
	for _, issue := range report.Validation.Issues {
		fmt.Fprintf(&b, "- **%s** (%s/%s): %s\n", issue.Title, issue.Severity, issue.Category, issue.Description)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Attack Paths (%d)\n\n", len(report.AttackPaths))
	for _, p := range report.AttackPaths {
		fmt.Fprintf(&b, "### %s (risk %.0f)\n\n", p.Name, p.RiskScore)
		fmt.Fprintf(&b, "%s\n\n", p.Description)
		for _, step := range p.Steps {
			fmt.Fprintf(&b, "1. **%s** on %s (%s): %s\n", step.Technique, step.Component, step.Difficulty, step.Action)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n\n")
	for _, r := range report.Recommendations {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	if report.Enrichment != nil {
		for _, r := range report.Enrichment.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write markdown report %s: %w", path, err)
	}
	return nil
}
