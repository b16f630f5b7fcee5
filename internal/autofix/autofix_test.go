package autofix

import (
	"strings"
	"testing"

	"archatlas/internal/catalog"
	"archatlas/internal/domain"
	"archatlas/internal/graph"
	"archatlas/internal/rules"
)

func evaluate(t *testing.T, g domain.Graph) []domain.Finding {
	t.Helper()
	metas, err := catalog.LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	s, err := graph.New(g)
	if err != nil {
		t.Fatalf("graph.New() error = %v", err)
	}
	return rules.NewEngine(metas).Evaluate(s)
}

func findingByID(t *testing.T, findings []domain.Finding, id string) domain.Finding {
	t.Helper()
	for _, f := range findings {
		if f.ID == id {
			return f
		}
	}
	t.Fatalf("finding %s not present in %d findings", id, len(findings))
	return domain.Finding{}
}

func httpGraph() domain.Graph {
	return domain.Graph{
		Components: []domain.Component{
			{ID: "web1", Type: domain.ComponentTypeWeb, Name: "Web Server"},
			{ID: "app1", Type: domain.ComponentTypeApp, Name: "App Server"},
		},
		Connections: []domain.Connection{
			{ID: "c1", From: "web1", To: "app1", Protocol: "HTTP", Ports: []int{80}},
		},
	}
}

func TestApply_ForceHTTPSResolvesFinding(t *testing.T) {
	g := httpGraph()
	finding := findingByID(t, evaluate(t, g), "enforce-https-c1")

	components, connections, err := Apply(finding, g.Components, g.Connections)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	conn := connections[0]
	if conn.Protocol != "HTTPS" || len(conn.Ports) != 1 || conn.Ports[0] != 443 || conn.Encryption != "TLS 1.2+" {
		t.Errorf("connection not rewritten: %+v", conn)
	}

	// Re-running the analysis on the rewritten graph clears the finding.
	fixed := domain.Graph{Components: components, Connections: connections}
	for _, f := range evaluate(t, fixed) {
		if f.ID == "enforce-https-c1" {
			t.Error("enforce-https finding still present after fix")
		}
	}
}

func TestApply_ForceHTTPSDoesNotMutateInputs(t *testing.T) {
	g := httpGraph()
	finding := findingByID(t, evaluate(t, g), "enforce-https-c1")

	if _, _, err := Apply(finding, g.Components, g.Connections); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if g.Connections[0].Protocol != "HTTP" {
		t.Errorf("input connection mutated: %+v", g.Connections[0])
	}
	if g.Connections[0].Ports[0] != 80 {
		t.Errorf("input ports mutated: %v", g.Connections[0].Ports)
	}
}

func TestApply_InsertWAF(t *testing.T) {
	g := domain.Graph{
		Components: []domain.Component{
			{ID: "internet", Type: domain.ComponentTypeNetwork, Name: "Internet", Zone: "External"},
			{ID: "web1", Type: domain.ComponentTypeWeb, Name: "Web Server", Zone: "DMZ"},
		},
		Connections: []domain.Connection{
			{ID: "c1", From: "internet", To: "web1", Protocol: "HTTPS", Encryption: "TLS 1.2+"},
		},
	}
	finding := findingByID(t, evaluate(t, g), "missing-waf-web1")

	components, connections, err := Apply(finding, g.Components, g.Connections)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	var waf *domain.Component
	for i := range components {
		if components[i].ID == "waf-web1" {
			waf = &components[i]
		}
	}
	if waf == nil {
		t.Fatal("WAF component not inserted")
	}
	if waf.Name != "WAF" || waf.Type != domain.ComponentTypeSecurity || waf.Zone != "DMZ" {
		t.Errorf("WAF component = %+v, want security component named WAF in the web zone", waf)
	}

	var rerouted, filtered bool
	for _, conn := range connections {
		if conn.ID == "c1-via-waf" && conn.To == "waf-web1" {
			rerouted = true
		}
		if conn.From == "waf-web1" && conn.To == "web1" && conn.Label == "Filtered traffic" {
			filtered = true
		}
		if conn.To == "web1" && conn.From == "internet" {
			t.Errorf("inbound connection %s still bypasses the WAF", conn.ID)
		}
	}
	if !rerouted {
		t.Error("inbound connection not rerouted through the WAF")
	}
	if !filtered {
		t.Error("WAF to web server connection not created")
	}

	// The rewritten graph no longer raises the finding.
	fixed := domain.Graph{Components: components, Connections: connections}
	for _, f := range evaluate(t, fixed) {
		if f.ID == "missing-waf-web1" {
			t.Error("missing-waf finding still present after fix")
		}
	}
}

func TestApply_InsertWAFTwiceFails(t *testing.T) {
	g := domain.Graph{
		Components: []domain.Component{
			{ID: "web1", Type: domain.ComponentTypeWeb, Name: "Web Server", Zone: "DMZ"},
		},
	}
	finding := findingByID(t, evaluate(t, g), "missing-waf-web1")

	components, connections, err := Apply(finding, g.Components, g.Connections)
	if err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}

	if _, _, err := Apply(finding, components, connections); err == nil {
		t.Error("second Apply() succeeded, want already-applied error")
	} else if !strings.Contains(err.Error(), "already") {
		t.Errorf("second Apply() error = %v, want already-applied", err)
	}
}

func TestApply_Preconditions(t *testing.T) {
	components := []domain.Component{
		{ID: "web1", Type: domain.ComponentTypeWeb, Name: "Web Server"},
	}

	tests := []struct {
		name    string
		finding domain.Finding
	}{
		{
			name:    "no auto fix available",
			finding: domain.Finding{ID: "enforce-https-c1", AffectedAssets: []string{"web1"}},
		},
		{
			name: "unknown affected asset",
			finding: domain.Finding{ID: "enforce-https-c1", AutoFixAvailable: true,
				AffectedAssets: []string{"ghost"}},
		},
		{
			name: "no registered fix family",
			finding: domain.Finding{ID: "direct-db-web1", AutoFixAvailable: true,
				AffectedAssets: []string{"web1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, conns, err := Apply(tt.finding, components, nil)
			if err == nil {
				t.Errorf("Apply() = (%v, %v), want error", c, conns)
			}
		})
	}
}
