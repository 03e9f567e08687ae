package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/interview-oracle/api/internal/domain"
)

// sessionVersion is written into new session metadata.
const sessionVersion = "1.0"

// defaultExperienceLevel is applied when a save omits the field.
const defaultExperienceLevel = "Mid Level"

// SessionService owns session lifecycle on top of the injected store.
type SessionService struct {
	Repo domain.SessionRepository
}

// NewSessionService constructs a SessionService with the given repo.
func NewSessionService(r domain.SessionRepository) SessionService { return SessionService{Repo: r} }

// SaveInput carries the fields accepted on session save.
type SaveInput struct {
	Title           string
	JobDescription  string
	Role            string
	ExperienceLevel string
	CompanyName     string
	Questions       []domain.QuestionRecord
	Answers         []domain.AnswerRecord
}

// Save validates required fields and persists a new session, returning
// it with a generated id and computed metadata.
func (s SessionService) Save(ctx domain.Context, userID string, in SaveInput) (domain.Session, error) {
	for field, v := range map[string]string{
		"title":          in.Title,
		"jobDescription": in.JobDescription,
		"role":           in.Role,
	} {
		if strings.TrimSpace(v) == "" {
			return domain.Session{}, fmt.Errorf("%w: %s is required", domain.ErrInvalidArgument, field)
		}
	}
	if len(in.Questions) == 0 {
		return domain.Session{}, fmt.Errorf("%w: questions is required", domain.ErrInvalidArgument)
	}
	if in.ExperienceLevel == "" {
		in.ExperienceLevel = defaultExperienceLevel
	}
	now := time.Now().UTC()
	sess := domain.Session{
		ID:              uuid.New().String(),
		UserID:          userID,
		Title:           in.Title,
		JobDescription:  in.JobDescription,
		Role:            in.Role,
		ExperienceLevel: in.ExperienceLevel,
		CompanyName:     in.CompanyName,
		Questions:       in.Questions,
		Answers:         in.Answers,
		Metadata: domain.SessionMetadata{
			QuestionCount: len(in.Questions),
			AnswerCount:   len(in.Answers),
			HasAnswers:    len(in.Answers) > 0,
			CreatedAt:     now,
			UpdatedAt:     now,
			Version:       sessionVersion,
		},
		Stats: domain.SessionStats{},
	}
	if _, err := s.Repo.Create(ctx, sess); err != nil {
		return domain.Session{}, fmt.Errorf("op=session.save: %w", err)
	}
	return sess, nil
}

// Get loads one session owned by userID.
func (s SessionService) Get(ctx domain.Context, userID, id string) (domain.Session, error) {
	return s.Repo.Get(ctx, userID, id)
}

// List returns all sessions owned by userID.
func (s SessionService) List(ctx domain.Context, userID string) ([]domain.Session, error) {
	return s.Repo.List(ctx, userID)
}

// Update merges a partial patch into an existing session, recomputes
// derived counts when questions or answers were replaced, and bumps the
// update timestamp.
func (s SessionService) Update(ctx domain.Context, userID, id string, patch domain.SessionPatch) (domain.Session, error) {
	sess, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return domain.Session{}, err
	}
	if patch.Title != nil {
		sess.Title = *patch.Title
	}
	if patch.JobDescription != nil {
		sess.JobDescription = *patch.JobDescription
	}
	if patch.Role != nil {
		sess.Role = *patch.Role
	}
	if patch.ExperienceLevel != nil {
		sess.ExperienceLevel = *patch.ExperienceLevel
	}
	if patch.CompanyName != nil {
		sess.CompanyName = *patch.CompanyName
	}
	if patch.Questions != nil {
		sess.Questions = patch.Questions
		sess.Metadata.QuestionCount = len(patch.Questions)
	}
	if patch.Answers != nil {
		sess.Answers = patch.Answers
		sess.Metadata.AnswerCount = len(patch.Answers)
		sess.Metadata.HasAnswers = len(patch.Answers) > 0
	}
	if patch.Stats != nil {
		sess.Stats = *patch.Stats
	}
	sess.Metadata.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, sess); err != nil {
		return domain.Session{}, fmt.Errorf("op=session.update: %w", err)
	}
	return sess, nil
}

// Delete removes one session owned by userID.
func (s SessionService) Delete(ctx domain.Context, userID, id string) error {
	return s.Repo.Delete(ctx, userID, id)
}
