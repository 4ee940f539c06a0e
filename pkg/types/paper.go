// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PaperRecord is one paper's raw text as isolated from the corpus.
// The title, abstract, and body are recovered on demand by the title
// extractor; no parsed schema is stored.
type PaperRecord struct {
	// Index is the 1-based position of the record in the corpus.
	Index int `json:"index" yaml:"index"`

	// Text is the record's raw content, trimmed of surrounding whitespace.
	Text string `json:"text" yaml:"text"`
}

// OutcomeStatus indicates how processing ended for one paper record.
type OutcomeStatus string

const (
	StatusSucceeded OutcomeStatus = "succeeded"
	StatusFailed    OutcomeStatus = "failed"
)

// Outcome records the result of processing one paper record.
type Outcome struct {
	// Index is the record's 1-based position in the corpus.
	Index int `json:"index" yaml:"index"`

	// Title is the recovered paper title, or the fallback constant when the
	// record carries no title line.
	Title string `json:"title" yaml:"title"`

	// Status is succeeded or failed.
	Status OutcomeStatus `json:"status" yaml:"status"`

	// OutputPath is the rendered document path. Set only on success.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	// Reason is the failure diagnostic. Set only on failure.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Report is the ordered collection of per-paper outcomes for one digest run.
type Report struct {
	// InputFile is the corpus file the run was loaded from.
	InputFile string `json:"input_file" yaml:"input_file"`

	// OutputDir is the directory rendered summaries were written to.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// StartedAt is the run start time in UTC.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Outcomes lists per-paper results in corpus order.
	Outcomes []Outcome `json:"outcomes" yaml:"outcomes"`
}

// Succeeded returns the number of papers that produced a document.
func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == StatusSucceeded {
			n++
		}
	}
	return n
}

// Failed returns the number of papers that failed.
func (r *Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			n++
		}
	}
	return n
}

// HasFailures reports whether any paper failed.
func (r *Report) HasFailures() bool {
	return r.Failed() > 0
}
