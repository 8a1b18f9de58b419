// internal/workers/assistant/analyze-message/models.go
package analyzemessage

import "sitedesk-workers/internal/models"

type Input struct {
	Message      string   `json:"message"`
	ThreadID     string   `json:"threadId,omitempty"`
	ContextHints []string `json:"contextHints,omitempty"`
}

// Output is the full analysis result; it is written back to the process
// instance as job variables.
type Output = models.AnalysisResult
