// Package stride maps component types and declared feature tags to threat
// statements in the six STRIDE categories. The mapping is a flat rule
// table so new threats are added as data rows, not new branches.
package stride

import (
	"sort"
	"strings"

	"archatlas/internal/domain"
	"archatlas/internal/graph"
)

// threatRule is one row of the threat table. All non-empty selectors must
// match. A rule fires when none of the features listed in absent are
// declared on the node.
type threatRule struct {
	category   domain.ThreatCategory
	types      []domain.ComponentType // any-of; empty matches all types
	kinds      []string               // any-of substring over name+category; empty matches all
	zones      []string               // any-of substring over zone; empty matches all
	privileged bool                   // when set, only privileged components match
	absent     []string               // fires when none of these feature tags is present
	threat     string
}

var threatTable = []threatRule{
	{
		category: domain.ThreatSpoofing,
		types:    []domain.ComponentType{domain.ComponentTypeWeb, domain.ComponentTypeApp},
		absent:   []string{"iam auth", "iam authentication", "workload identity"},
		threat:   "Missing IAM-based authentication",
	},
	{
		category: domain.ThreatSpoofing,
		kinds:    []string{"identity", "idp", "auth"},
		absent:   []string{"mfa"},
		threat:   "MFA not enforced",
	},
	{
		category: domain.ThreatSpoofing,
		kinds:    []string{"api gateway", "api-gateway"},
		absent:   []string{"api key", "iam auth", "jwt"},
		threat:   "API accepts unauthenticated requests",
	},
	{
		category: domain.ThreatTampering,
		kinds:    []string{"database", "storage", "cache"},
		absent:   []string{"cmek", "encryption"},
		threat:   "Data not encrypted with CMEK",
	},
	{
		category: domain.ThreatTampering,
		kinds:    []string{"kubernetes", "container"},
		absent:   []string{"binary auth"},
		threat:   "Container images not validated",
	},
	{
		category: domain.ThreatRepudiation,
		kinds:    []string{"database", "secrets", "vault"},
		absent:   []string{"audit logging", "logging"},
		threat:   "No audit logging for access tracking",
	},
	{
		category: domain.ThreatRepudiation,
		kinds:    []string{"api gateway", "api-gateway"},
		absent:   []string{"access logging", "logging"},
		threat:   "No access logs for API requests",
	},
	{
		category: domain.ThreatInformationDisclosure,
		kinds:    []string{"database"},
		absent:   []string{"private ip"},
		threat:   "Database accessible via public IP",
	},
	{
		category: domain.ThreatInformationDisclosure,
		absent:   []string{"tls", "encryption"},
		threat:   "Data transmitted without encryption",
	},
	{
		category: domain.ThreatDenialOfService,
		zones:    []string{"edge", "external"},
		absent:   []string{"ddos protection"},
		threat:   "No DDoS protection configured",
	},
	{
		category: domain.ThreatDenialOfService,
		kinds:    []string{"api gateway", "api-gateway"},
		absent:   []string{"rate limiting"},
		threat:   "No rate limiting to prevent abuse",
	},
	{
		category: domain.ThreatElevationOfPrivilege,
		kinds:    []string{"kubernetes"},
		absent:   []string{"pod security standards"},
		threat:   "No Pod Security Standards enforcement",
	},
	{
		category: domain.ThreatElevationOfPrivilege,
		kinds:    []string{"kubernetes", "container"},
		absent:   []string{"workload identity"},
		threat:   "Using service account keys instead of Workload Identity",
	},
	{
		category:   domain.ThreatElevationOfPrivilege,
		privileged: true,
		absent:     []string{"least privilege"},
		threat:     "Privileged component without least-privilege scoping",
	},
}

// Analyze runs the threat table over every component. Nodes without any
// threat are omitted; output is sorted descending by total threat count,
// ties broken by node id so runs are deterministic.
func Analyze(components []domain.Component) []domain.STRIDEAnalysis {
	var out []domain.STRIDEAnalysis

	for i := range components {
		c := &components[i]
		threats := nodeThreats(c)
		total := threats.Total()
		if total == 0 {
			continue
		}
		label := c.Name
		if label == "" {
			label = c.ID
		}
		out = append(out, domain.STRIDEAnalysis{
			NodeID:       c.ID,
			NodeLabel:    label,
			Threats:      threats,
			TotalThreats: total,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalThreats != out[j].TotalThreats {
			return out[i].TotalThreats > out[j].TotalThreats
		}
		return out[i].NodeID < out[j].NodeID
	})
	return out
}

func nodeThreats(c *domain.Component) domain.STRIDEThreats {
	features := graph.FeatureSet(c)
	kindText := strings.ToLower(c.Name + " " + c.Category)
	zone := strings.ToLower(c.Zone)

	var threats domain.STRIDEThreats
	for _, rule := range threatTable {
		if !rule.matches(c, features, kindText, zone) {
			continue
		}
		switch rule.category {
		case domain.ThreatSpoofing:
			threats.Spoofing = append(threats.Spoofing, rule.threat)
		case domain.ThreatTampering:
			threats.Tampering = append(threats.Tampering, rule.threat)
		case domain.ThreatRepudiation:
			threats.Repudiation = append(threats.Repudiation, rule.threat)
		case domain.ThreatInformationDisclosure:
			threats.InformationDisclosure = append(threats.InformationDisclosure, rule.threat)
		case domain.ThreatDenialOfService:
			threats.DenialOfService = append(threats.DenialOfService, rule.threat)
		case domain.ThreatElevationOfPrivilege:
			threats.ElevationOfPrivilege = append(threats.ElevationOfPrivilege, rule.threat)
		}
	}
	return threats
}

func (r threatRule) matches(c *domain.Component, features map[string]bool, kindText, zone string) bool {
	if len(r.types) > 0 {
		matched := false
		for _, t := range r.types {
			if c.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(r.kinds) > 0 {
		matched := false
		for _, k := range r.kinds {
			if strings.Contains(kindText, k) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(r.zones) > 0 {
		matched := false
		for _, z := range r.zones {
			if strings.Contains(zone, z) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if r.privileged && !c.Metadata.Privileged {
		return false
	}

	for _, f := range r.absent {
		if features[f] {
			return false
		}
	}
	return true
}
