package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/interview-oracle/api/internal/config"
	"github.com/interview-oracle/api/internal/domain"
	"github.com/interview-oracle/api/internal/usecase"
	"github.com/interview-oracle/api/pkg/textx"
)

// maxBodyBytes caps request bodies to prevent abuse.
const maxBodyBytes = 1 << 20 // 1MB

// userIDHeader carries the (unauthenticated) user identity.
const userIDHeader = "X-User-Id"

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Generate   usecase.GenerateService
	Sessions   usecase.SessionService
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers wired.
func NewServer(cfg config.Config, gen usecase.GenerateService, sessions usecase.SessionService, dbCheck, redisCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Generate: gen, Sessions: sessions, DBCheck: dbCheck, RedisCheck: redisCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
		return false
	}
	if err := getValidator().Struct(dst); err != nil {
		verrs := map[string]string{}
		if ve, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ve {
				verrs[strings.ToLower(fe.Field()[:1])+fe.Field()[1:]] = fe.Tag()
			}
		}
		writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
		return false
	}
	return true
}

func userID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(userIDHeader)); id != "" {
		return SanitizeUserID(id)
	}
	return "anonymous"
}

// QuestionsHandler generates categorized interview questions.
func (s *Server) QuestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JobDescription  string `json:"jobDescription" validate:"required,min=50"`
			Role            string `json:"role" validate:"required"`
			ExperienceLevel string `json:"experienceLevel"`
			CompanyName     string `json:"companyName"`
		}
		if !decodeAndValidate(w, r, &req) {
			return
		}
		set, err := s.Generate.GenerateQuestions(r.Context(), domain.GenerationRequest{
			JobDescription:  textx.SanitizeText(req.JobDescription),
			Role:            SanitizeString(req.Role),
			ExperienceLevel: SanitizeString(req.ExperienceLevel),
			CompanyName:     SanitizeString(req.CompanyName),
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, set)
	}
}

// AnswersHandler generates structured answers for selected questions.
func (s *Server) AnswersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Questions       []string `json:"questions" validate:"required,min=1,max=8,dive,required"`
			JobDescription  string   `json:"jobDescription" validate:"required,min=50"`
			Role            string   `json:"role" validate:"required"`
			ExperienceLevel string   `json:"experienceLevel"`
			CompanyName     string   `json:"companyName"`
			AnswerStyle     string   `json:"answerStyle" validate:"omitempty,oneof=confident humble technical leadership"`
		}
		if !decodeAndValidate(w, r, &req) {
			return
		}
		questions := make([]string, 0, len(req.Questions))
		for _, q := range req.Questions {
			questions = append(questions, textx.SanitizeText(q))
		}
		set, err := s.Generate.GenerateAnswers(r.Context(), domain.GenerationRequest{
			JobDescription:  textx.SanitizeText(req.JobDescription),
			Role:            SanitizeString(req.Role),
			ExperienceLevel: SanitizeString(req.ExperienceLevel),
			CompanyName:     SanitizeString(req.CompanyName),
			AnswerStyle:     domain.AnswerStyle(req.AnswerStyle),
			Questions:       questions,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, set)
	}
}

// sessionBody is the session payload accepted on save and update.
type sessionBody struct {
	Title           *string                 `json:"title"`
	JobDescription  *string                 `json:"jobDescription"`
	Role            *string                 `json:"role"`
	ExperienceLevel *string                 `json:"experienceLevel"`
	CompanyName     *string                 `json:"companyName"`
	Questions       []domain.QuestionRecord `json:"questions"`
	Answers         []domain.AnswerRecord   `json:"answers"`
	Stats           *domain.SessionStats    `json:"stats"`
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func sanitizePtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := SanitizeString(*p)
	return &s
}

func sanitizeTextPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := textx.SanitizeText(*p)
	return &s
}

// SessionsGetHandler returns one session (by sessionId query param) or
// the full list for the requesting user.
func (s *Server) SessionsGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := userID(r)
		if id := r.URL.Query().Get("sessionId"); id != "" {
			sess, err := s.Sessions.Get(r.Context(), uid, id)
			if err != nil {
				writeError(w, r, err, nil)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"session": sess})
			return
		}
		list, err := s.Sessions.List(r.Context(), uid)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if list == nil {
			list = []domain.Session{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": list, "count": len(list)})
	}
}

// SessionsCreateHandler saves a new session.
func (s *Server) SessionsCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body sessionBody
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		sess, err := s.Sessions.Save(r.Context(), userID(r), usecase.SaveInput{
			Title:           SanitizeString(deref(body.Title)),
			JobDescription:  textx.SanitizeText(deref(body.JobDescription)),
			Role:            SanitizeString(deref(body.Role)),
			ExperienceLevel: SanitizeString(deref(body.ExperienceLevel)),
			CompanyName:     SanitizeString(deref(body.CompanyName)),
			Questions:       body.Questions,
			Answers:         body.Answers,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"message":   "Session saved successfully",
			"sessionId": sess.ID,
			"session":   sess,
		})
	}
}

// SessionsUpdateHandler merges a partial update into an existing session.
func (s *Server) SessionsUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("sessionId")
		if id == "" {
			writeError(w, r, fmt.Errorf("%w: session ID is required", domain.ErrInvalidArgument), nil)
			return
		}
		var body sessionBody
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		sess, err := s.Sessions.Update(r.Context(), userID(r), id, domain.SessionPatch{
			Title:           sanitizePtr(body.Title),
			JobDescription:  sanitizeTextPtr(body.JobDescription),
			Role:            sanitizePtr(body.Role),
			ExperienceLevel: sanitizePtr(body.ExperienceLevel),
			CompanyName:     sanitizePtr(body.CompanyName),
			Questions:       body.Questions,
			Answers:         body.Answers,
			Stats:           body.Stats,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Session updated successfully",
			"session": sess,
		})
	}
}

// SessionsDeleteHandler removes a session.
func (s *Server) SessionsDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("sessionId")
		if id == "" {
			writeError(w, r, fmt.Errorf("%w: session ID is required", domain.ErrInvalidArgument), nil)
			return
		}
		if err := s.Sessions.Delete(r.Context(), userID(r), id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":   "Session deleted successfully",
			"sessionId": id,
		})
	}
}

// ReadyzHandler probes the session store and, when configured, Redis.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 2)
		ok := true
		if s.DBCheck != nil {
			if err := s.DBCheck(ctx); err != nil {
				checks = append(checks, check{Name: "db", OK: false, Details: err.Error()})
				ok = false
			} else {
				checks = append(checks, check{Name: "db", OK: true})
			}
		}
		if s.RedisCheck != nil {
			if err := s.RedisCheck(ctx); err != nil {
				checks = append(checks, check{Name: "redis", OK: false, Details: err.Error()})
				ok = false
			} else {
				checks = append(checks, check{Name: "redis", OK: true})
			}
		}
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]any{"ready": ok, "checks": checks})
	}
}
