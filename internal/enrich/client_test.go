package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"archatlas/internal/domain"
)

func proxyReply(t *testing.T, payload string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req proxyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request body is not valid JSON: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v, want single user message", req.Messages)
		}

		resp := proxyResponse{}
		resp.Content = append(resp.Content, struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: "text", Text: payload})
		json.NewEncoder(w).Encode(resp)
	}
}

func testReport() *domain.Report {
	return &domain.Report{
		AttackPaths: []domain.AttackPath{
			{ID: "attack-1", RiskScore: 77, Path: []string{"internet", "db1"}, PathLabels: []string{"Internet", "Database"}},
			{ID: "attack-2", RiskScore: 40, Path: []string{"web1", "db1"}, PathLabels: []string{"Web", "Database"}},
		},
	}
}

func testComponents() []domain.Component {
	return []domain.Component{
		{ID: "internet", Type: domain.ComponentTypeNetwork, Name: "Internet", Zone: "External"},
		{ID: "db1", Type: domain.ComponentTypeData, Name: "Orders Database", Zone: "Data",
			Metadata: domain.Metadata{Vendor: "AWS RDS"}},
	}
}

func TestEnrich_Success(t *testing.T) {
	payload := `{"analysis":"posture is weak","additionalVulnerabilities":["shared credentials"],"prioritizedPathIds":["attack-2","attack-1"],"recommendations":["rotate keys"]}`
	server := httptest.NewServer(proxyReply(t, payload))
	defer server.Close()

	client, err := NewClient(server.URL, "key-123", AbstractionAbstracted)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	enrichment, err := client.Enrich(context.Background(), domain.Graph{Components: testComponents()}, testReport())
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	if enrichment.Analysis != "posture is weak" {
		t.Errorf("Analysis = %q", enrichment.Analysis)
	}
	if len(enrichment.PrioritizedPathIDs) != 2 || enrichment.PrioritizedPathIDs[0] != "attack-2" {
		t.Errorf("PrioritizedPathIDs = %v", enrichment.PrioritizedPathIDs)
	}
	if len(enrichment.AdditionalVulnerabilities) != 1 || len(enrichment.Recommendations) != 1 {
		t.Errorf("enrichment = %+v, want vulnerabilities and recommendations", enrichment)
	}
}

func TestEnrich_StripsMarkdownFences(t *testing.T) {
	payload := "```json\n{\"analysis\":\"fenced\"}\n```"
	server := httptest.NewServer(proxyReply(t, payload))
	defer server.Close()

	client, err := NewClient(server.URL, "", AbstractionFull)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	enrichment, err := client.Enrich(context.Background(), domain.Graph{Components: testComponents()}, testReport())
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if enrichment.Analysis != "fenced" {
		t.Errorf("Analysis = %q, want fenced payload parsed", enrichment.Analysis)
	}
}

func TestEnrich_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			},
		},
		{
			name: "empty content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"content":[]}`))
			},
		},
		{
			name:    "payload is not json",
			handler: proxyReply(t, "sorry, I cannot answer that"),
		},
		{
			name:    "missing analysis text",
			handler: proxyReply(t, `{"recommendations":["x"]}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client, err := NewClient(server.URL, "", AbstractionConfidential)
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			if _, err := client.Enrich(context.Background(), domain.Graph{Components: testComponents()}, testReport()); err == nil {
				t.Error("Enrich() succeeded, want error for caller to degrade on")
			}
		})
	}
}

func TestEnrich_SendsAPIKeyHeader(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		proxyReply(t, `{"analysis":"ok"}`)(w, r)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "secret-key", AbstractionAbstracted)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := client.Enrich(context.Background(), domain.Graph{Components: testComponents()}, testReport()); err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if gotKey != "secret-key" {
		t.Errorf("x-api-key = %q, want secret-key", gotKey)
	}
}

func TestEnrich_ConfidentialHidesLabels(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req proxyRequest
		json.Unmarshal(body, &req)
		prompt = req.Messages[0].Content
		r.Body = io.NopCloser(bytes.NewReader(body))
		proxyReply(t, `{"analysis":"ok"}`)(w, r)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "", AbstractionConfidential)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := client.Enrich(context.Background(), domain.Graph{Components: testComponents()}, testReport()); err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	if strings.Contains(prompt, "Orders Database") {
		t.Error("confidential prompt leaks component labels")
	}
	if strings.Contains(prompt, "AWS RDS") {
		t.Error("confidential prompt leaks vendor names")
	}
	if !strings.Contains(prompt, `"data"`) {
		t.Error("confidential prompt is missing component types")
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient("", "key", AbstractionFull); err == nil {
		t.Error("NewClient accepted an empty endpoint")
	}
	if _, err := NewClient("http://localhost:1234", "key", AbstractionLevel("loose")); err == nil {
		t.Error("NewClient accepted an unknown abstraction level")
	}
}
