// Package validator runs graph-shape checks over an architecture snapshot:
// connectivity anti-patterns, security zone boundaries, redundancy, cycles
// and compliance heuristics. Its issues and score are a separate output
// from the rule engine's findings; the two are never merged.
package validator

import (
	"fmt"
	"strings"
	"time"

	"archatlas/internal/domain"
	"archatlas/internal/graph"
	"archatlas/internal/logging"
)

const godComponentDegree = 10

// Validate runs the five passes and aggregates their issues. Passes are
// independent; issues are concatenated, never deduplicated across passes.
func Validate(s *graph.Snapshot) domain.ValidationResult {
	var issues []domain.ValidationIssue

	passes := []struct {
		name string
		run  func(*graph.Snapshot) []domain.ValidationIssue
	}{
		{"connectivity", checkConnectivity},
		{"security-zones", checkSecurityZones},
		{"redundancy", checkRedundancy},
		{"anti-patterns", checkAntiPatterns},
		{"compliance", checkCompliance},
	}

	for _, pass := range passes {
		logging.LogPassStart(pass.name)
		start := time.Now()
		found := pass.run(s)
		logging.LogPassEnd(pass.name, time.Since(start), len(found))
		issues = append(issues, found...)
	}

	summary := domain.ValidationSummary{}
	for _, issue := range issues {
		switch issue.Severity {
		case domain.ValidationError:
			summary.Errors++
		case domain.ValidationWarning:
			summary.Warnings++
		case domain.ValidationInfo:
			summary.Infos++
		}
	}

	score := 100 - (summary.Errors*10 + summary.Warnings*3 + summary.Infos*1)
	if score < 0 {
		score = 0
	}

	return domain.ValidationResult{
		Valid:   summary.Errors == 0,
		Score:   score,
		Issues:  issues,
		Summary: summary,
	}
}

// checkConnectivity flags edges between component classes that should not
// talk to each other directly.
func checkConnectivity(s *graph.Snapshot) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	for i := range s.Connections {
		conn := &s.Connections[i]
		from := s.Component(conn.From)
		to := s.Component(conn.To)

		switch {
		case isFirewall(from) && isFirewall(to):
			issues = append(issues, domain.ValidationIssue{
				ID:                 "conn-fw-fw-" + conn.ID,
				Severity:           domain.ValidationError,
				Category:           domain.CategoryConnectivity,
				Title:              "Firewall-to-Firewall Connection",
				Description:        fmt.Sprintf("Firewalls %s and %s are connected directly", s.Label(conn.From), s.Label(conn.To)),
				AffectedComponents: []string{conn.From, conn.To},
				Recommendation:     "Place a routing or switching layer between firewall tiers",
			})
		case isExternal(from) && isDatabase(to):
			issues = append(issues, domain.ValidationIssue{
				ID:                 "conn-internet-db-" + conn.ID,
				Severity:           domain.ValidationError,
				Category:           domain.CategoryConnectivity,
				Title:              "Database Exposed to External Network",
				Description:        fmt.Sprintf("External component %s connects directly to database %s", s.Label(conn.From), s.Label(conn.To)),
				AffectedComponents: []string{conn.From, conn.To},
				Recommendation:     "Route external traffic through an application tier and firewall",
			})
		case isLoadBalancer(from) && isDatabase(to):
			issues = append(issues, domain.ValidationIssue{
				ID:                 "conn-lb-db-" + conn.ID,
				Severity:           domain.ValidationWarning,
				Category:           domain.CategoryConnectivity,
				Title:              "Load Balancer Connected to Database",
				Description:        fmt.Sprintf("Load balancer %s bypasses the application tier to reach %s", s.Label(conn.From), s.Label(conn.To)),
				AffectedComponents: []string{conn.From, conn.To},
				Recommendation:     "Load balancers should distribute to application servers, not databases",
			})
		case isLoadBalancer(from) && isCache(to):
			issues = append(issues, domain.ValidationIssue{
				ID:                 "conn-lb-cache-" + conn.ID,
				Severity:           domain.ValidationWarning,
				Category:           domain.CategoryConnectivity,
				Title:              "Load Balancer Connected to Cache",
				Description:        fmt.Sprintf("Load balancer %s connects directly to cache %s", s.Label(conn.From), s.Label(conn.To)),
				AffectedComponents: []string{conn.From, conn.To},
				Recommendation:     "Caches should be accessed through application servers",
			})
		case isMonitoring(from):
			issues = append(issues, domain.ValidationIssue{
				ID:                 "conn-monitoring-outbound-" + conn.ID,
				Severity:           domain.ValidationInfo,
				Category:           domain.CategoryConnectivity,
				Title:              "Monitoring Component With Outbound Connection",
				Description:        fmt.Sprintf("Monitoring component %s has an outbound connection to %s", s.Label(conn.From), s.Label(conn.To)),
				AffectedComponents: []string{conn.From, conn.To},
				Recommendation:     "Monitoring systems usually collect data, not push it into workloads",
			})
		}
	}
	return issues
}

// checkSecurityZones verifies that external components cannot reach
// internal or database components without passing a firewall, and that
// databases never accept inbound edges from external or load balancer
// components.
func checkSecurityZones(s *graph.Snapshot) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	firewallGuard := func(id string) bool { return isFirewall(s.Component(id)) }

	for i := range s.Components {
		ext := &s.Components[i]
		if !isExternal(ext) {
			continue
		}
		for j := range s.Components {
			internal := &s.Components[j]
			if internal.ID == ext.ID || isExternal(internal) {
				continue
			}
			if !isDatabase(internal) && !strings.EqualFold(internal.Zone, "internal") && !strings.EqualFold(internal.Zone, "data") {
				continue
			}
			if !s.HasDirectEdge(ext.ID, internal.ID) {
				continue
			}
			if s.MediatedBy(ext.ID, internal.ID, firewallGuard) {
				continue
			}
			issues = append(issues, domain.ValidationIssue{
				ID:                 fmt.Sprintf("zone-no-firewall-%s-%s", ext.ID, internal.ID),
				Severity:           domain.ValidationError,
				Category:           domain.CategorySecurityZone,
				Title:              "Zone Boundary Without Firewall",
				Description:        fmt.Sprintf("External component %s reaches %s without crossing a firewall", ext.Name, internal.Name),
				AffectedComponents: []string{ext.ID, internal.ID},
				Recommendation:     "Place a firewall between external and internal zones",
			})
		}
	}

	for i := range s.Connections {
		conn := &s.Connections[i]
		from := s.Component(conn.From)
		to := s.Component(conn.To)
		if !isDatabase(to) {
			continue
		}
		if isExternal(from) || isLoadBalancer(from) {
			issues = append(issues, domain.ValidationIssue{
				ID:                 "zone-db-exposed-" + conn.ID,
				Severity:           domain.ValidationError,
				Category:           domain.CategorySecurityZone,
				Title:              "Database Reachable From Untrusted Tier",
				Description:        fmt.Sprintf("Database %s accepts connections from %s", s.Label(conn.To), s.Label(conn.From)),
				AffectedComponents: []string{conn.From, conn.To},
				Recommendation:     "Only application tier components should connect to databases",
			})
		}
	}
	return issues
}

// checkRedundancy finds single points of failure and orphaned components.
func checkRedundancy(s *graph.Snapshot) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	var loadBalancers []*domain.Component
	var databases []*domain.Component
	for i := range s.Components {
		c := &s.Components[i]
		if isLoadBalancer(c) {
			loadBalancers = append(loadBalancers, c)
		}
		if isDatabase(c) {
			databases = append(databases, c)
		}
	}

	if len(loadBalancers) == 1 {
		lb := loadBalancers[0]
		if downstream := s.Downstream(lb.ID); len(downstream) > 2 {
			issues = append(issues, domain.ValidationIssue{
				ID:                 "redundancy-single-lb-" + lb.ID,
				Severity:           domain.ValidationWarning,
				Category:           domain.CategoryRedundancy,
				Title:              "Single Load Balancer",
				Description:        fmt.Sprintf("Load balancer %s is a single point of failure for %d downstream components", lb.Name, len(downstream)),
				AffectedComponents: []string{lb.ID},
				Recommendation:     "Deploy a second load balancer in an active-active or active-passive pair",
			})
		}
	}

	for _, db := range databases {
		if db.Metadata.Environment != "production" {
			continue
		}
		hasReplica := false
		for _, sibling := range databases {
			if sibling.ID == db.ID {
				continue
			}
			if graph.NameContains(sibling.Name, "replica", "standby", "secondary") {
				hasReplica = true
				break
			}
		}
		if !hasReplica {
			issues = append(issues, domain.ValidationIssue{
				ID:                 "redundancy-single-db-" + db.ID,
				Severity:           domain.ValidationWarning,
				Category:           domain.CategoryRedundancy,
				Title:              "Production Database Without Replica",
				Description:        fmt.Sprintf("Database %s has no replica, standby or secondary sibling", db.Name),
				AffectedComponents: []string{db.ID},
				Recommendation:     "Add a read replica or standby instance for failover",
			})
		}
	}

	for i := range s.Components {
		c := &s.Components[i]
		if s.Degree(c.ID) > 0 || isExternal(c) {
			continue
		}
		issues = append(issues, domain.ValidationIssue{
			ID:                 "orphan-" + c.ID,
			Severity:           domain.ValidationInfo,
			Category:           domain.CategoryRedundancy,
			Title:              "Orphaned Component",
			Description:        fmt.Sprintf("Component %s has no connections", c.Name),
			AffectedComponents: []string{c.ID},
			Recommendation:     "Connect the component or remove it from the diagram",
		})
	}
	return issues
}

// checkAntiPatterns reports god components, dependency cycles and
// unencrypted edges into sensitive components.
func checkAntiPatterns(s *graph.Snapshot) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	for i := range s.Components {
		c := &s.Components[i]
		if degree := s.Degree(c.ID); degree > godComponentDegree {
			issues = append(issues, domain.ValidationIssue{
				ID:                 "antipattern-god-" + c.ID,
				Severity:           domain.ValidationWarning,
				Category:           domain.CategoryAntiPattern,
				Title:              "God Component",
				Description:        fmt.Sprintf("Component %s has %d connections", c.Name, degree),
				AffectedComponents: []string{c.ID},
				Recommendation:     "Split responsibilities across multiple components",
			})
		}
	}

	for idx, cycle := range s.DetectCycles() {
		labels := make([]string, len(cycle))
		for i, id := range cycle {
			labels[i] = s.Label(id)
		}
		issues = append(issues, domain.ValidationIssue{
			ID:                 fmt.Sprintf("antipattern-cycle-%d", idx),
			Severity:           domain.ValidationWarning,
			Category:           domain.CategoryAntiPattern,
			Title:              "Circular Dependency",
			Description:        fmt.Sprintf("Dependency cycle: %s", strings.Join(labels, " → ")),
			AffectedComponents: cycle[:len(cycle)-1],
			Recommendation:     "Break the cycle with an event queue or by inverting one dependency",
		})
	}

	for i := range s.Connections {
		conn := &s.Connections[i]
		to := s.Component(conn.To)
		if !isSensitive(to) {
			continue
		}
		if graph.ConnectionEncrypted(conn) {
			continue
		}
		issues = append(issues, domain.ValidationIssue{
			ID:                 "antipattern-no-encryption-" + conn.ID,
			Severity:           domain.ValidationWarning,
			Category:           domain.CategoryAntiPattern,
			Title:              "Unencrypted Connection to Sensitive Component",
			Description:        fmt.Sprintf("Connection from %s to %s carries no encryption marker", s.Label(conn.From), s.Label(conn.To)),
			AffectedComponents: []string{conn.From, conn.To},
			Recommendation:     "Enable TLS on connections into databases and identity systems",
		})
	}
	return issues
}

func isSensitive(c *domain.Component) bool {
	if c == nil {
		return false
	}
	return isDatabase(c) || graph.NameContains(c.Name, "database", "auth")
}

// checkCompliance applies coarse heuristics that only make sense above a
// minimum graph size.
func checkCompliance(s *graph.Snapshot) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	var hasMonitoring, hasAuth, hasDatabase, hasBackup, hasPublicFacing bool
	for i := range s.Components {
		c := &s.Components[i]
		if isMonitoring(c) {
			hasMonitoring = true
		}
		if isAuth(c) {
			hasAuth = true
		}
		if isDatabase(c) {
			hasDatabase = true
		}
		if graph.NameContains(c.Name, "backup", "replica", "standby") {
			hasBackup = true
		}
		if isLoadBalancer(c) || isServer(c) {
			hasPublicFacing = true
		}
	}

	if !hasMonitoring && len(s.Components) > 5 {
		issues = append(issues, domain.ValidationIssue{
			ID:                 "compliance-no-monitoring",
			Severity:           domain.ValidationWarning,
			Category:           domain.CategoryCompliance,
			Title:              "No Monitoring Component",
			Description:        "Architecture has no monitoring, logging or SIEM component",
			AffectedComponents: nil,
			Recommendation:     "Add centralized monitoring and log aggregation",
		})
	}

	if hasPublicFacing && !hasAuth && len(s.Components) > 3 {
		issues = append(issues, domain.ValidationIssue{
			ID:                 "compliance-no-auth",
			Severity:           domain.ValidationWarning,
			Category:           domain.CategoryCompliance,
			Title:              "No Authentication Component",
			Description:        "Public-facing components are present but no identity or auth component exists",
			AffectedComponents: nil,
			Recommendation:     "Add an identity provider or authentication service",
		})
	}

	if hasDatabase && !hasBackup {
		issues = append(issues, domain.ValidationIssue{
			ID:                 "compliance-no-backup",
			Severity:           domain.ValidationInfo,
			Category:           domain.CategoryCompliance,
			Title:              "No Backup Strategy Visible",
			Description:        "Databases are present but no backup, replica or standby component exists",
			AffectedComponents: nil,
			Recommendation:     "Model the backup path so it can be reviewed",
		})
	}
	return issues
}
