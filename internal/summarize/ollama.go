// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// summaryPromptTmpl is the fixed prompt sent to the model for each paper.
// The single placeholder carries the paper's raw text.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`Summarize the following research paper content into concise bullet points:
{{.Text}}
Provide clear, concise, and comprehensive bullet points covering the main ideas, methods, results, and conclusions.
`))

// DefaultHost is the conventional local Ollama endpoint.
const DefaultHost = "http://localhost:11434"

// DefaultModel is the model used when none is configured.
const DefaultModel = "llama2:latest"

// OllamaBackend calls an Ollama server's generate API to summarize one
// paper. A single failure is surfaced once; no retry is performed here.
type OllamaBackend struct {
	Host   string // base URL; DefaultHost when empty
	Model  string
	APIKey string // optional bearer token for proxied endpoints
	Client *http.Client
}

// NewOllama builds a backend from a summary configuration, applying the
// conventional defaults for host and model.
func NewOllama(cfg types.SummaryConfig) *OllamaBackend {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &OllamaBackend{
		Host:   host,
		Model:  model,
		APIKey: cfg.APIKey,
		Client: &http.Client{Timeout: cfg.Timeout},
	}
}

// generateRequest is the request body for the Ollama generate API.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the non-streaming response body.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Summarize renders the prompt for text and calls the generate endpoint.
// All transport, status, and decode failures come back as *Error.
func (b *OllamaBackend) Summarize(ctx context.Context, text string) (string, error) {
	prompt, err := renderPrompt(text)
	if err != nil {
		return "", &Error{Model: b.Model, Err: fmt.Errorf("rendering prompt: %w", err)}
	}

	reqBody := generateRequest{
		Model:  b.Model,
		Prompt: prompt,
		Stream: false,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Model: b.Model, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	host := b.Host
	if host == "" {
		host = DefaultHost
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, host+"/api/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", &Error{Model: b.Model, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if b.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.APIKey)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{Model: b.Model, Err: fmt.Errorf("calling generate API: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &Error{Model: b.Model, Err: fmt.Errorf("generate API returned %d: %s", resp.StatusCode, string(body))}
	}

	var gResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", &Error{Model: b.Model, Err: fmt.Errorf("decoding response: %w", err)}
	}

	if strings.TrimSpace(gResp.Response) == "" {
		return "", &Error{Model: b.Model, Err: fmt.Errorf("model returned empty response")}
	}

	return formatBullets(gResp.Response), nil
}

// renderPrompt executes the summary prompt template with the paper text.
func renderPrompt(text string) (string, error) {
	var buf bytes.Buffer
	if err := summaryPromptTmpl.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// bulletLeadIn marks a model reply that announces its list before giving it.
const bulletLeadIn = "bullet points:"

// formatBullets keeps the text after a "bullet points:" lead-in, if the model
// produced one, and re-bullets each remaining non-empty line. Replies without
// the lead-in pass through unchanged.
func formatBullets(s string) string {
	idx := strings.Index(strings.ToLower(s), bulletLeadIn)
	if idx < 0 {
		return s
	}

	rest := s[idx+len(bulletLeadIn):]
	var points []string
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, "* ")
		line = strings.TrimPrefix(line, "- ")
		points = append(points, "* "+line)
	}
	if len(points) == 0 {
		return s
	}
	return strings.Join(points, "\n")
}
