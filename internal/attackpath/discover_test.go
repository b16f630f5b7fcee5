package attackpath

import (
	"strings"
	"testing"

	"archatlas/internal/domain"
	"archatlas/internal/graph"
)

func mustSnapshot(t *testing.T, g domain.Graph) *graph.Snapshot {
	t.Helper()
	s, err := graph.New(g)
	if err != nil {
		t.Fatalf("graph.New() error = %v", err)
	}
	return s
}

func internetToDatabaseGraph() domain.Graph {
	return domain.Graph{
		Components: []domain.Component{
			{ID: "internet", Type: domain.ComponentTypeNetwork, Name: "Internet", Zone: "External"},
			{ID: "web1", Type: domain.ComponentTypeWeb, Name: "Web Server", Zone: "DMZ"},
			{ID: "db1", Type: domain.ComponentTypeData, Name: "Orders Database", Zone: "Data"},
		},
		Connections: []domain.Connection{
			{ID: "c1", From: "internet", To: "web1", Protocol: "HTTP"},
			{ID: "c2", From: "web1", To: "db1", Protocol: "TCP"},
		},
	}
}

func TestDiscover_InternetToDatabase(t *testing.T) {
	paths := Discover(mustSnapshot(t, internetToDatabaseGraph()))
	if len(paths) == 0 {
		t.Fatal("Discover() found no paths for exposed database")
	}

	var found *domain.AttackPath
	for i := range paths {
		if paths[i].Path[0] == "internet" && paths[i].Path[len(paths[i].Path)-1] == "db1" {
			found = &paths[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("no internet -> db1 path in %d discovered paths", len(paths))
	}

	if found.AttackType != domain.AttackTypeExfiltration {
		t.Errorf("AttackType = %s, want exfiltration for external-to-data route", found.AttackType)
	}
	if found.Impact != 10 {
		t.Errorf("Impact = %v, want 10 for database target", found.Impact)
	}
	if found.RiskScore != found.Likelihood*found.Impact {
		t.Errorf("RiskScore = %v, want likelihood*impact = %v", found.RiskScore, found.Likelihood*found.Impact)
	}
	if len(found.Vulnerabilities) == 0 {
		t.Error("unencrypted unauthenticated route reported no vulnerabilities")
	}
	if len(found.Steps) != len(found.Path) {
		t.Errorf("Steps = %d, want one per node (%d)", len(found.Steps), len(found.Path))
	}
}

func TestDiscover_PathsRespectDepthBound(t *testing.T) {
	paths := Discover(mustSnapshot(t, internetToDatabaseGraph()))
	for _, p := range paths {
		if len(p.Path) > maxPathDepth+1 {
			t.Errorf("path %s has %d nodes, exceeds depth bound", p.ID, len(p.Path))
		}
	}
}

func TestDiscover_Deterministic(t *testing.T) {
	g := internetToDatabaseGraph()
	first := Discover(mustSnapshot(t, g))
	second := Discover(mustSnapshot(t, g))

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("path order differs at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestDiscover_SortedByRiskDescending(t *testing.T) {
	paths := Discover(mustSnapshot(t, internetToDatabaseGraph()))
	for i := 1; i < len(paths); i++ {
		if paths[i].RiskScore > paths[i-1].RiskScore {
			t.Errorf("paths not sorted: %v at %d after %v", paths[i].RiskScore, i, paths[i-1].RiskScore)
		}
	}
}

func TestDiscover_MitigationsLowerLikelihood(t *testing.T) {
	secured := domain.Graph{
		Components: []domain.Component{
			{ID: "internet", Type: domain.ComponentTypeNetwork, Name: "Internet", Zone: "External"},
			{ID: "web1", Type: domain.ComponentTypeWeb, Name: "Web Server", Zone: "DMZ"},
			{ID: "db1", Type: domain.ComponentTypeData, Name: "Orders Database", Zone: "Data"},
		},
		Connections: []domain.Connection{
			{ID: "c1", From: "internet", To: "web1", Protocol: "HTTPS", Encryption: "TLS 1.2+", Auth: "OAuth"},
			{ID: "c2", From: "web1", To: "db1", Protocol: "PostgreSQL", Encryption: "TLS", Auth: "IAM"},
		},
	}

	open := Discover(mustSnapshot(t, internetToDatabaseGraph()))
	hardened := Discover(mustSnapshot(t, secured))

	likelihood := func(paths []domain.AttackPath) float64 {
		for _, p := range paths {
			if p.Path[0] == "internet" && p.Path[len(p.Path)-1] == "db1" {
				return p.Likelihood
			}
		}
		t.Fatal("internet -> db1 path not found")
		return 0
	}

	if lo, lh := likelihood(open), likelihood(hardened); lh >= lo {
		t.Errorf("hardened likelihood %v not below open likelihood %v", lh, lo)
	}
}

func TestCalculateLikelihood(t *testing.T) {
	tests := []struct {
		name       string
		vulns      int
		mitigation int
		pathLen    int
		want       float64
	}{
		{"no vulnerabilities floors at 1", 0, 5, 4, 1},
		{"four vulns no mitigations short path", 4, 0, 2, 8},
		{"vuln count caps at 10", 10, 0, 2, 10},
		{"mitigations subtract half point each", 4, 2, 2, 7},
		{"mitigation penalty caps at 5", 5, 20, 2, 5},
		{"length penalty", 4, 0, 4, 7.4},
		{"length penalty caps at 3", 10, 0, 20, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateLikelihood(tt.vulns, tt.mitigation, tt.pathLen); got != tt.want {
				t.Errorf("calculateLikelihood(%d, %d, %d) = %v, want %v", tt.vulns, tt.mitigation, tt.pathLen, got, tt.want)
			}
		})
	}
}

func TestCalculateImpact(t *testing.T) {
	tests := []struct {
		name   string
		target domain.Component
		want   float64
	}{
		{"database", domain.Component{Name: "Orders Database"}, 10},
		{"secrets vault", domain.Component{Name: "Secrets Manager", Category: "Vault"}, 10},
		{"object storage", domain.Component{Name: "Assets Object Storage"}, 8},
		{"kubernetes", domain.Component{Name: "Kubernetes Cluster"}, 7},
		{"cache", domain.Component{Name: "Redis Cache"}, 6},
		{"untyped data component", domain.Component{Name: "Warehouse", Type: domain.ComponentTypeData}, 10},
		{"plain app", domain.Component{Name: "Billing Service", Type: domain.ComponentTypeApp}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateImpact(&tt.target); got != tt.want {
				t.Errorf("calculateImpact(%s) = %v, want %v", tt.target.Name, got, tt.want)
			}
		})
	}
}

func TestClassifyAttack(t *testing.T) {
	g := domain.Graph{
		Components: []domain.Component{
			{ID: "internet", Type: domain.ComponentTypeNetwork, Name: "Internet", Zone: "External"},
			{ID: "cdn", Type: domain.ComponentTypeNetwork, Name: "CDN", Zone: "Edge"},
			{ID: "k8s", Type: domain.ComponentTypePlatform, Name: "Kubernetes Cluster", Zone: "Internal"},
			{ID: "app1", Type: domain.ComponentTypeApp, Name: "Billing Service", Zone: "Internal"},
			{ID: "db1", Type: domain.ComponentTypeData, Name: "Orders Database", Zone: "Data"},
			{ID: "secrets", Type: domain.ComponentTypeSecurity, Name: "Secrets Manager", Zone: "Management"},
		},
	}
	s := mustSnapshot(t, g)

	tests := []struct {
		name  string
		route []string
		want  domain.AttackType
	}{
		{"external to data is exfiltration", []string{"internet", "db1"}, domain.AttackTypeExfiltration},
		{"kubernetes to data is lateral movement", []string{"k8s", "db1"}, domain.AttackTypeLateralMovement},
		{"cdn start is ddos", []string{"cdn", "app1"}, domain.AttackTypeDDoS},
		{"secrets target is credential theft", []string{"app1", "secrets"}, domain.AttackTypeCredentialTheft},
		{"default is injection", []string{"app1", "k8s"}, domain.AttackTypeInjection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyAttack(s, tt.route); got != tt.want {
				t.Errorf("classifyAttack(%v) = %s, want %s", tt.route, got, tt.want)
			}
		})
	}
}

func TestDescribeAttack_TruncatesVulnerabilities(t *testing.T) {
	vulns := []string{"v1", "v2", "v3", "v4"}
	desc := describeAttack([]string{"A", "B"}, domain.AttackTypeInjection, vulns)
	if !strings.Contains(desc, "v1, v2") {
		t.Errorf("description %q does not list first two vulnerabilities", desc)
	}
	if !strings.Contains(desc, "and 2 more") {
		t.Errorf("description %q does not summarize the rest", desc)
	}
	if strings.Contains(desc, "v3") {
		t.Errorf("description %q lists more than two vulnerabilities", desc)
	}
}

func TestNarrateSteps(t *testing.T) {
	s := mustSnapshot(t, domain.Graph{
		Components: []domain.Component{
			{ID: "web1", Type: domain.ComponentTypeWeb, Name: "Web Server",
				Metadata: domain.Metadata{Exposed: true}},
			{ID: "db1", Type: domain.ComponentTypeData, Name: "Orders Database",
				Metadata: domain.Metadata{Secured: true}},
		},
		Connections: []domain.Connection{
			{ID: "c1", From: "web1", To: "db1"},
		},
	})

	steps := narrateSteps(s, domain.AttackPath{ID: "p1", Path: []string{"web1", "db1"}})
	if len(steps) != 2 {
		t.Fatalf("narrateSteps() = %d steps, want 2", len(steps))
	}

	first := steps[0]
	if first.Technique != "Initial Access" {
		t.Errorf("first technique = %s, want Initial Access", first.Technique)
	}
	if first.Difficulty != "Easy" {
		t.Errorf("exposed entry difficulty = %s, want Easy", first.Difficulty)
	}
	if !strings.Contains(first.Action, "OWASP") {
		t.Errorf("web entry action = %q, want web exploitation narrative", first.Action)
	}

	second := steps[1]
	if second.Technique != "Lateral Movement" {
		t.Errorf("second technique = %s, want Lateral Movement", second.Technique)
	}
	if second.Difficulty != "Hard" {
		t.Errorf("secured hop difficulty = %s, want Hard", second.Difficulty)
	}
	if second.Prerequisites[0] != "Access to Web Server" {
		t.Errorf("prerequisite = %q, want access to previous hop", second.Prerequisites[0])
	}
	if second.ID != "p1-step-2" {
		t.Errorf("step id = %s, want p1-step-2", second.ID)
	}
}
