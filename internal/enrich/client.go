// Package enrich calls an LLM proxy to layer narrative analysis on top of
// the deterministic results. The proxy is strictly best-effort: every
// failure path returns an error the caller degrades on, and the response
// can reorder attack paths but never touches scores or severities.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"archatlas/internal/domain"
	"archatlas/internal/logging"
)

const (
	defaultTimeout = 60 * time.Second
	maxPathsSent   = 10
)

// Client talks to the enrichment proxy.
type Client struct {
	endpoint string
	apiKey   string
	level    AbstractionLevel
	http     *http.Client
}

// NewClient builds a client for the given proxy endpoint. The API key is
// optional; proxies that inject their own credentials accept requests
// without one.
func NewClient(endpoint, apiKey string, level AbstractionLevel) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("enrichment endpoint is required")
	}
	if !level.Valid() {
		return nil, fmt.Errorf("unknown abstraction level %q", level)
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		level:    level,
		http:     &http.Client{Timeout: defaultTimeout},
	}, nil
}

type pathSummary struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	Threat          string   `json:"threat"`
	RiskScore       float64  `json:"riskScore"`
	Path            []string `json:"path"`
	Vulnerabilities []string `json:"vulnerabilities"`
	Mitigations     []string `json:"mitigations"`
}

type proxyRequest struct {
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature"`
	Messages    []proxyMessage `json:"messages"`
}

type proxyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type proxyResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type enrichmentPayload struct {
	Analysis                  string   `json:"analysis"`
	AdditionalVulnerabilities []string `json:"additionalVulnerabilities"`
	PrioritizedPathIDs        []string `json:"prioritizedPathIds"`
	Recommendations           []string `json:"recommendations"`
}

// Enrich sends the sanitized architecture and top attack paths to the
// proxy and validates the JSON it returns.
func (c *Client) Enrich(ctx context.Context, g domain.Graph, report *domain.Report) (*domain.Enrichment, error) {
	nodes, preserveLabels := sanitizeComponents(g.Components, c.level)

	paths := report.AttackPaths
	if len(paths) > maxPathsSent {
		paths = paths[:maxPathsSent]
	}
	summaries := make([]pathSummary, 0, len(paths))
	for _, p := range paths {
		route := p.Path
		if preserveLabels {
			route = p.PathLabels
		}
		summaries = append(summaries, pathSummary{
			ID:              p.ID,
			Type:            string(p.AttackType),
			Threat:          string(p.ThreatCategory),
			RiskScore:       p.RiskScore,
			Path:            route,
			Vulnerabilities: p.Vulnerabilities,
			Mitigations:     p.Mitigations,
		})
	}

	prompt, err := buildPrompt(nodes, summaries, len(report.AttackPaths))
	if err != nil {
		return nil, err
	}

	text, err := c.call(ctx, prompt)
	if err != nil {
		return nil, err
	}

	payload, err := parsePayload(text)
	if err != nil {
		return nil, err
	}
	if payload.Analysis == "" {
		return nil, fmt.Errorf("enrichment response missing analysis text")
	}

	logging.LogDebug("enrichment received", map[string]any{
		"prioritized": len(payload.PrioritizedPathIDs),
		"additional":  len(payload.AdditionalVulnerabilities),
	})
	return &domain.Enrichment{
		Analysis:                  payload.Analysis,
		PrioritizedPathIDs:        payload.PrioritizedPathIDs,
		AdditionalVulnerabilities: payload.AdditionalVulnerabilities,
		Recommendations:           payload.Recommendations,
	}, nil
}

func buildPrompt(nodes []sanitizedNode, summaries []pathSummary, totalPaths int) (string, error) {
	nodesJSON, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal architecture: %w", err)
	}
	pathsJSON, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal attack paths: %w", err)
	}

	return fmt.Sprintf(`You are a cybersecurity expert analyzing cloud architecture security.

ARCHITECTURE OVERVIEW:
%s

IDENTIFIED ATTACK PATHS (%d total, showing top %d):
%s

TASK:
1. Analyze these attack paths for additional vulnerabilities not already identified
2. Prioritize the paths by actual exploitability (not just risk score)
3. Identify any chained attacks that combine multiple paths
4. Provide specific, actionable mitigation recommendations

Format your response as JSON:
{
  "analysis": "Brief executive summary of the security posture",
  "additionalVulnerabilities": ["vulnerability 1", "vulnerability 2", ...],
  "prioritizedPathIds": ["path-id-1", "path-id-2", ...],
  "recommendations": ["recommendation 1", "recommendation 2", ...]
}`, nodesJSON, totalPaths, len(summaries), pathsJSON), nil
}

func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(proxyRequest{
		MaxTokens:   4096,
		Temperature: 0.3,
		Messages:    []proxyMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal enrichment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build enrichment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("enrichment request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read enrichment response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("enrichment proxy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed proxyResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode enrichment response: %w", err)
	}
	if len(parsed.Content) == 0 || parsed.Content[0].Type != "text" {
		return "", fmt.Errorf("enrichment response has no text content")
	}
	return parsed.Content[0].Text, nil
}

// parsePayload strips optional markdown fences and decodes the JSON body.
func parsePayload(text string) (*enrichmentPayload, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload enrichmentPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("enrichment response is not valid JSON: %w", err)
	}
	return &payload, nil
}
