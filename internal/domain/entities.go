// Package domain holds the entities, error taxonomy and ports of the
// interview generation core. It stays free of transport and storage
// concerns; adapters depend on it, never the other way around.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	// ErrGateway covers both non-2xx replies from the completion
	// endpoint and transport-level failures (treated identically).
	ErrGateway = errors.New("completion gateway error")
	// Recovery failures: the model reply could not be trusted as
	// structured data.
	ErrTruncated        = errors.New("reply truncated")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrInternal         = errors.New("internal error")
)

// AnswerStyle selects the tone guidance injected into answer prompts.
type AnswerStyle string

// Supported answer styles.
const (
	StyleConfident  AnswerStyle = "confident"
	StyleHumble     AnswerStyle = "humble"
	StyleTechnical  AnswerStyle = "technical"
	StyleLeadership AnswerStyle = "leadership"
)

// QuestionCategory is the model-assigned grouping of a generated question.
type QuestionCategory string

// Question categories, fixed by the generation contract.
const (
	CategoryBehavioral QuestionCategory = "behavioral"
	CategoryTechnical  QuestionCategory = "technical"
	CategoryCompany    QuestionCategory = "company"
)

// Confidence tags attached to generated questions. Unknown values
// returned by the model pass through untouched.
const (
	ConfidenceHighProbability = "High Probability"
	ConfidenceLikely          = "Likely"
	ConfidenceCommonInField   = "Common in Field"
)

// MaxAnswerQuestions bounds the per-request question count to keep
// external-call cost and latency predictable.
const MaxAnswerQuestions = 8

// MinJobDescriptionLen is the minimum accepted job description length.
const MinJobDescriptionLen = 50

// GenerationRequest describes one question- or answer-generation call.
// Immutable once constructed.
type GenerationRequest struct {
	JobDescription  string
	Role            string
	ExperienceLevel string
	CompanyName     string
	AnswerStyle     AnswerStyle
	Questions       []string
}

// QuestionRecord is one generated interview question. Created only by
// the recovery pipeline; immutable thereafter.
type QuestionRecord struct {
	Text       string           `json:"text"`
	Confidence string           `json:"confidence"`
	Category   QuestionCategory `json:"category"`
}

// QuestionSet groups generated questions by category. Target
// cardinality is 6/4/2 but returned counts are not strictly enforced.
type QuestionSet struct {
	Behavioral []QuestionRecord `json:"behavioral"`
	Technical  []QuestionRecord `json:"technical"`
	Company    []QuestionRecord `json:"company"`
}

// AnswerRecord is one generated answer bundle for a single question.
// Every field is non-empty after recovery; absent fields are masked
// with deterministic placeholders, never left null.
type AnswerRecord struct {
	Question        string       `json:"question"`
	MethodologyName string       `json:"methodology"`
	QuestionType    QuestionType `json:"type"`
	Full            string       `json:"full"`
	Concise         string       `json:"concise"`
	KeyPoints       []string     `json:"keyPoints"`
}

// GenerationMetadata accompanies an answer-generation response.
type GenerationMetadata struct {
	QuestionCount   int       `json:"questionCount"`
	Role            string    `json:"role"`
	ExperienceLevel string    `json:"experienceLevel"`
	CompanyName     string    `json:"companyName"`
	GeneratedAt     time.Time `json:"generatedAt"`
	Model           string    `json:"model"`
}

// AnswerSet is the result of one answer-generation call. Synthetic is
// set when recovery substituted placeholder records for an untrusted
// model reply.
type AnswerSet struct {
	Answers   []AnswerRecord     `json:"answers"`
	Metadata  GenerationMetadata `json:"metadata"`
	Synthetic bool               `json:"-"`
}

// SessionMetadata tracks derived counts and timestamps of a session.
type SessionMetadata struct {
	QuestionCount int       `json:"questionCount"`
	AnswerCount   int       `json:"answerCount"`
	HasAnswers    bool      `json:"hasAnswers"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Version       string    `json:"version"`
}

// SessionStats tracks view counters maintained by the client.
type SessionStats struct {
	TimesViewed int        `json:"timesViewed"`
	LastViewed  *time.Time `json:"lastViewed"`
}

// Session is a persisted question-and-answer bundle, exclusively owned
// by the user identified by UserID.
type Session struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	Title           string           `json:"title"`
	JobDescription  string           `json:"jobDescription"`
	Role            string           `json:"role"`
	ExperienceLevel string           `json:"experienceLevel"`
	CompanyName     string           `json:"companyName"`
	Questions       []QuestionRecord `json:"questions"`
	Answers         []AnswerRecord   `json:"answers"`
	Metadata        SessionMetadata  `json:"metadata"`
	Stats           SessionStats     `json:"stats"`
}

// SessionPatch carries a partial update. Nil fields are left unchanged;
// counts are recomputed when Questions or Answers are replaced.
type SessionPatch struct {
	Title           *string
	JobDescription  *string
	Role            *string
	ExperienceLevel *string
	CompanyName     *string
	Questions       []QuestionRecord
	Answers         []AnswerRecord
	Stats           *SessionStats
}

// SessionRepository is the session store port. Multi-instance
// consistency and durability are delegated to the adapter; the core
// assumes read-your-writes within one user's session only.
type SessionRepository interface {
	Create(ctx Context, s Session) (string, error)
	Get(ctx Context, userID, id string) (Session, error)
	List(ctx Context, userID string) ([]Session, error)
	Update(ctx Context, s Session) error
	Delete(ctx Context, userID, id string) error
}

// CompletionClient is the completion gateway port: one prompt in, the
// raw model reply text out. Implementations perform a single request
// with no retry.
type CompletionClient interface {
	Complete(ctx Context, prompt string, maxTokens int) (string, error)
}

// Context aliases context.Context so adapters and usecases share one name.
type Context = context.Context
