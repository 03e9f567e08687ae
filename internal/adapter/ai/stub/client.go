// Package stub provides a fast, deterministic completion client for
// local development and handler tests.
package stub

import (
	"encoding/json"
	"strings"

	"github.com/interview-oracle/api/internal/domain"
)

// Client returns canned, schema-conformant replies without touching the
// network. The mode is inferred from the prompt's expected shape.
type Client struct{}

// New constructs a stub client.
func New() *Client { return &Client{} }

// Complete returns a canned reply matching the reply shape the prompt
// asks for.
func (c *Client) Complete(_ domain.Context, prompt string, _ int) (string, error) {
	if strings.Contains(prompt, `"answers"`) {
		payload := map[string]any{
			"answers": []map[string]any{
				{
					"question":  "Tell me about a time you led a project under a tight deadline.",
					"full":      "In my previous role I led a three-person team delivering a reporting service two weeks ahead of a contractual deadline. I broke the work into daily increments, removed a blocking dependency by stubbing the upstream API, and kept stakeholders aligned with a short written update every evening. We shipped on time with zero post-release defects.",
					"concise":   "I led a three-person team to an early, defect-free delivery by splitting work into daily increments and unblocking the team early.",
					"keyPoints": []string{"Led a team of three", "Daily incremental plan", "Unblocked upstream dependency", "Transparent stakeholder updates", "Zero post-release defects"},
				},
			},
		}
		b, _ := json.Marshal(payload)
		return string(b), nil
	}
	payload := map[string]any{
		"behavioral": []map[string]string{
			{"text": "Tell me about a time you resolved a production incident.", "confidence": domain.ConfidenceHighProbability},
			{"text": "Describe a situation where you disagreed with a teammate.", "confidence": domain.ConfidenceLikely},
			{"text": "Give me an example of a project you owned end to end.", "confidence": domain.ConfidenceLikely},
			{"text": "Tell me about a time you missed a deadline.", "confidence": domain.ConfidenceCommonInField},
			{"text": "Describe when you had to learn a new technology quickly.", "confidence": domain.ConfidenceLikely},
			{"text": "Give an example of mentoring a junior colleague.", "confidence": domain.ConfidenceCommonInField},
		},
		"technical": []map[string]string{
			{"text": "How would you design a rate limiter for a public API?", "confidence": domain.ConfidenceHighProbability},
			{"text": "Explain how you approach database schema migrations.", "confidence": domain.ConfidenceLikely},
			{"text": "What is your experience with observability tooling?", "confidence": domain.ConfidenceLikely},
			{"text": "How does your team handle code review?", "confidence": domain.ConfidenceCommonInField},
		},
		"company": []map[string]string{
			{"text": "Why do you want to work here?", "confidence": domain.ConfidenceHighProbability},
			{"text": "What interests you about our product?", "confidence": domain.ConfidenceLikely},
		},
	}
	b, _ := json.Marshal(payload)
	return string(b), nil
}
