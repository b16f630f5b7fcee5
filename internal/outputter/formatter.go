// Package outputter renders analysis reports for the terminal, persists
// them as JSON under results/, and writes markdown assessment reports.
// It never alters the report it is given.
package outputter

import (
	"fmt"
	"strings"

	"archatlas/internal/domain"
)

// DisplayHeader prints a banner line.
func DisplayHeader(title string) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  %s\n", title)
	fmt.Println(strings.Repeat("=", 78))
}

// DisplayReport prints the full analysis to stdout.
func DisplayReport(report *domain.Report) {
	DisplayHeader("🔍 SECURITY ANALYSIS REPORT")
	fmt.Printf("Run: %s  |  %s\n", report.RunID, report.Timestamp.Format("2006-01-02 15:04:05 MST"))
	if report.CacheHit {
		fmt.Println("(served from cache)")
	}

	displayFindings(report.Findings)
	DisplayValidation(report.Validation)
	displaySTRIDE(report.STRIDE)
	displayAttackPaths(report)
	displayRecommendations(report.Recommendations)

	if report.Enrichment != nil {
		DisplayHeader("🤖 AI ANALYSIS")
		if report.Enrichment.Notice != "" {
			fmt.Printf("⚠️  %s\n", report.Enrichment.Notice)
		}
		if report.Enrichment.Analysis != "" {
			fmt.Println(report.Enrichment.Analysis)
		}
		for _, v := range report.Enrichment.AdditionalVulnerabilities {
			fmt.Printf("   • %s\n", v)
		}
	}

	DisplayHeader("                          END OF REPORT")
}

func displayFindings(findings []domain.Finding) {
	DisplayHeader(fmt.Sprintf("🚨 SECURITY FINDINGS (%d)", len(findings)))
	if len(findings) == 0 {
		fmt.Println("✅ No security findings.")
		return
	}
	for _, f := range findings {
		fmt.Printf("%s [%s] %s\n", severityIcon(f.Severity), strings.ToUpper(string(f.Severity)), f.Title)
		fmt.Printf("   %s\n", f.Description)
		fmt.Printf("   Evidence: %s\n", f.Evidence)
		if f.SuggestedFix != "" {
			fix := f.SuggestedFix
			if f.AutoFixAvailable {
				fix += " (auto-fix available)"
			}
			fmt.Printf("   💡 Fix: %s\n", fix)
		}
		fmt.Printf("   Residual risk after fix: %s\n\n", f.ResidualRisk)
	}
}

// DisplayValidation prints the architectural validation result.
func DisplayValidation(result domain.ValidationResult) {
	status := "✅ VALID"
	if !result.Valid {
		status = "❌ INVALID"
	}
	DisplayHeader(fmt.Sprintf("🏗️  ARCHITECTURE VALIDATION — %s (score %d/100)", status, result.Score))
	fmt.Printf("Errors: %d  |  Warnings: %d  |  Info: %d\n\n",
		result.Summary.Errors, result.Summary.Warnings, result.Summary.Infos)

	for _, issue := range result.Issues {
		fmt.Printf("%s [%s/%s] %s\n", validationIcon(issue.Severity), issue.Severity, issue.Category, issue.Title)
		fmt.Printf("   %s\n", issue.Description)
		fmt.Printf("   💡 %s\n\n", issue.Recommendation)
	}
}

func displaySTRIDE(analyses []domain.STRIDEAnalysis) {
	DisplayHeader(fmt.Sprintf("🛡️  STRIDE THREAT MODEL (%d nodes with threats)", len(analyses)))
	for _, analysis := range analyses {
		fmt.Printf("• %s — %d threats\n", analysis.NodeLabel, analysis.TotalThreats)
		for category, threats := range analysis.Threats.ByCategory() {
			for _, threat := range threats {
				fmt.Printf("   [%s] %s\n", category, threat)
			}
		}
	}
}

func displayAttackPaths(report *domain.Report) {
	DisplayHeader(fmt.Sprintf("⚔️  ATTACK PATHS (%d)  |  Overall risk: %d/100", len(report.AttackPaths), report.OverallRiskScore))
	fmt.Printf("🔴 Critical: %d  🟠 High: %d  🟡 Medium: %d  🟢 Low: %d\n\n",
		len(report.CriticalRisks), len(report.HighRisks), len(report.MediumRisks), len(report.LowRisks))

	for _, p := range report.AttackPaths {
		fmt.Printf("%s %s (risk %.1f = %.1f × %.1f)\n", riskIcon(p.RiskScore), p.Name, p.RiskScore, p.Likelihood, p.Impact)
		fmt.Printf("   Path: %s\n", strings.Join(p.PathLabels, " → "))
		if len(p.Vulnerabilities) > 0 {
			fmt.Printf("   Exploits: %s\n", strings.Join(p.Vulnerabilities, "; "))
		}
		if len(p.Mitigations) > 0 {
			fmt.Printf("   Controls: %s\n", strings.Join(p.Mitigations, "; "))
		}
		fmt.Println()
	}
}

func displayRecommendations(recommendations []string) {
	if len(recommendations) == 0 {
		return
	}
	DisplayHeader("💡 RECOMMENDED ACTIONS")
	for i, r := range recommendations {
		fmt.Printf("   %d. %s\n", i+1, r)
	}
}

func severityIcon(s domain.Severity) string {
	switch s {
	case domain.SeverityCritical:
		return "🔴"
	case domain.SeverityHigh:
		return "🟠"
	case domain.SeverityMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

func validationIcon(s domain.ValidationSeverity) string {
	switch s {
	case domain.ValidationError:
		return "❌"
	case domain.ValidationWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

func riskIcon(score float64) string {
	switch {
	case score >= 70:
		return "🔴"
	case score >= 50:
		return "🟠"
	case score >= 30:
		return "🟡"
	}
	return "🟢"
}
