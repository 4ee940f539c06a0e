package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SummaryConfig holds settings for the summarization stage.
type SummaryConfig struct {
	// Model is the model identifier served by the summarization endpoint
	// (default "llama2:latest").
	Model string `json:"model" yaml:"model"`

	// Host is the base URL of the model-serving endpoint
	// (default "http://localhost:11434").
	Host string `json:"host" yaml:"host"`

	// APIKey is an optional bearer token for proxied endpoints.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout is the per-call request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// OutputFormat selects the summary document format.
type OutputFormat string

const (
	OutputPDF      OutputFormat = "pdf"
	OutputMarkdown OutputFormat = "markdown"
)

// RenderConfig holds settings for the document rendering stage.
type RenderConfig struct {
	// Format selects the output format: pdf or markdown.
	Format OutputFormat `json:"format" yaml:"format"`

	// OutputDir is the directory for rendered summaries (default "summaries").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// DigestConfig holds settings for a batch digest run.
type DigestConfig struct {
	// InputFile is the path to the delimited corpus file.
	InputFile string `json:"input_file" yaml:"input_file"`

	// OutputDir is the directory for rendered summaries (default "summaries").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Workers bounds concurrent paper processing. Values below 2 mean the
	// batch runs strictly sequentially.
	Workers int `json:"workers" yaml:"workers"`

	// RequestsPerMinute caps calls to the summarization endpoint across all
	// workers. Zero means no cap.
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute"`
}

// FetchConfig holds settings for the corpus fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Query is the arXiv search query.
	Query string `json:"query" yaml:"query"`

	// MaxResults is the maximum number of papers to fetch (default 3).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// DownloadDelay is the delay between consecutive PDF downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// OutFile is the corpus file to write (default "research_content.txt").
	OutFile string `json:"out_file" yaml:"out_file"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Summary SummaryConfig `json:"summary" yaml:"summary"`
	Render  RenderConfig  `json:"render" yaml:"render"`
	Digest  DigestConfig  `json:"digest" yaml:"digest"`
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
}
