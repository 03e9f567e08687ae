// Package usecase contains the application services orchestrating the
// generation flows and session persistence.
package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/interview-oracle/api/internal/adapter/ai"
	"github.com/interview-oracle/api/internal/adapter/ai/tokencount"
	"github.com/interview-oracle/api/internal/adapter/observability"
	"github.com/interview-oracle/api/internal/domain"
)

// largePromptTokens is the estimated prompt size above which the
// answer-mode completion budget is raised.
const largePromptTokens = 2000

// GenerateService runs the two generation flows: validate, build the
// prompt, call the gateway once, recover the reply.
type GenerateService struct {
	AI              domain.CompletionClient
	Model           string
	MaxTokensQ      int
	MaxTokensA      int
	MaxTokensALarge int
}

// NewGenerateService constructs a GenerateService.
func NewGenerateService(client domain.CompletionClient, model string, maxQ, maxA, maxALarge int) GenerateService {
	if maxQ <= 0 {
		maxQ = 1500
	}
	if maxA <= 0 {
		maxA = 3000
	}
	if maxALarge < maxA {
		maxALarge = maxA
	}
	return GenerateService{AI: client, Model: model, MaxTokensQ: maxQ, MaxTokensA: maxA, MaxTokensALarge: maxALarge}
}

func validateCommon(req domain.GenerationRequest) error {
	if strings.TrimSpace(req.Role) == "" {
		return fmt.Errorf("%w: role is required", domain.ErrInvalidArgument)
	}
	jd := strings.TrimSpace(req.JobDescription)
	if jd == "" {
		return fmt.Errorf("%w: job description is required", domain.ErrInvalidArgument)
	}
	if len(jd) < domain.MinJobDescriptionLen {
		return fmt.Errorf("%w: job description must be at least %d characters long", domain.ErrInvalidArgument, domain.MinJobDescriptionLen)
	}
	return nil
}

// GenerateQuestions produces categorized questions for a job
// description. Validation failures are terminal before any external
// call; recovery failures are terminal (no synthetic fallback exists
// for model-driven categorization).
func (s GenerateService) GenerateQuestions(ctx domain.Context, req domain.GenerationRequest) (domain.QuestionSet, error) {
	if err := validateCommon(req); err != nil {
		return domain.QuestionSet{}, err
	}

	prompt := ai.BuildQuestionsPrompt(req)
	raw, err := s.AI.Complete(ctx, prompt, s.MaxTokensQ)
	if err != nil {
		observability.GenerationsTotal.WithLabelValues("questions", observability.OutcomeError).Inc()
		return domain.QuestionSet{}, err
	}

	set, err := ai.RecoverQuestions(raw)
	if err != nil {
		recordRecoveryFailure(err)
		observability.GenerationsTotal.WithLabelValues("questions", observability.OutcomeError).Inc()
		logRecoveryFailure(ctx, "questions", err)
		return domain.QuestionSet{}, err
	}
	observability.GenerationsTotal.WithLabelValues("questions", observability.OutcomeOK).Inc()
	return set, nil
}

// GenerateAnswers produces one structured answer per requested
// question. Recovery failures are downgraded to a synthetic placeholder
// result so the flow never blocks entirely on a model formatting
// failure; the failure remains visible in the placeholder text and in
// the Synthetic flag.
func (s GenerateService) GenerateAnswers(ctx domain.Context, req domain.GenerationRequest) (domain.AnswerSet, error) {
	if err := validateCommon(req); err != nil {
		return domain.AnswerSet{}, err
	}
	if len(req.Questions) == 0 {
		return domain.AnswerSet{}, fmt.Errorf("%w: questions array is required and must not be empty", domain.ErrInvalidArgument)
	}
	if len(req.Questions) > domain.MaxAnswerQuestions {
		return domain.AnswerSet{}, fmt.Errorf("%w: maximum %d questions allowed per request", domain.ErrInvalidArgument, domain.MaxAnswerQuestions)
	}
	for _, q := range req.Questions {
		if strings.TrimSpace(q) == "" {
			return domain.AnswerSet{}, fmt.Errorf("%w: questions must be non-empty", domain.ErrInvalidArgument)
		}
	}
	if req.AnswerStyle == "" {
		req.AnswerStyle = domain.StyleConfident
	}

	prompt := ai.BuildAnswersPrompt(req)
	budget := s.MaxTokensA
	if tokencount.EstimateTokensDefault(prompt) > largePromptTokens {
		budget = s.MaxTokensALarge
	}

	raw, err := s.AI.Complete(ctx, prompt, budget)
	if err != nil {
		observability.GenerationsTotal.WithLabelValues("answers", observability.OutcomeError).Inc()
		return domain.AnswerSet{}, err
	}

	answers, synthetic, err := ai.RecoverAnswers(raw, req.Questions)
	if err != nil {
		// Untrusted structure: substitute the deterministic placeholder
		// result rather than failing the whole action.
		recordRecoveryFailure(err)
		logRecoveryFailure(ctx, "answers", err)
		answers = ai.SyntheticAnswers(req.Questions)
		synthetic = true
	}
	outcome := observability.OutcomeOK
	if synthetic {
		outcome = observability.OutcomeSynthetic
	}
	observability.GenerationsTotal.WithLabelValues("answers", outcome).Inc()

	return domain.AnswerSet{
		Answers:   answers,
		Synthetic: synthetic,
		Metadata: domain.GenerationMetadata{
			QuestionCount:   len(req.Questions),
			Role:            req.Role,
			ExperienceLevel: req.ExperienceLevel,
			CompanyName:     req.CompanyName,
			GeneratedAt:     time.Now().UTC(),
			Model:           s.Model,
		},
	}, nil
}

func recordRecoveryFailure(err error) {
	switch {
	case errors.Is(err, domain.ErrTruncated):
		observability.RecoveryFailuresTotal.WithLabelValues("truncated").Inc()
	case errors.Is(err, domain.ErrMalformedPayload):
		observability.RecoveryFailuresTotal.WithLabelValues("malformed").Inc()
	case errors.Is(err, domain.ErrSchemaInvalid):
		observability.RecoveryFailuresTotal.WithLabelValues("schema").Inc()
	}
}

func logRecoveryFailure(_ domain.Context, mode string, err error) {
	var rerr *ai.RecoveryError
	if errors.As(err, &rerr) {
		slog.Error("model reply rejected by recovery pipeline",
			slog.String("mode", mode),
			slog.String("detail", rerr.Detail),
			slog.String("raw_preview", rerr.RawPreview),
			slog.String("sanitized_preview", rerr.SanitizedPreview))
		return
	}
	slog.Error("model reply rejected by recovery pipeline",
		slog.String("mode", mode), slog.Any("error", err))
}
