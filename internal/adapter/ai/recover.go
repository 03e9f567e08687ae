// Package ai contains the completion-side adapters: prompt building,
// the response recovery pipeline, and client wrappers.
//
// The recovery pipeline is the trust boundary of the service. The
// external model is not contractually guaranteed to return well-formed
// JSON: it may wrap the payload in prose or markdown fencing, truncate
// mid-payload, leave control characters unescaped inside string values,
// or omit required fields. Recovery succeeds whenever a valid result
// can be produced without guessing semantic content, and fails loudly
// otherwise.
package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/interview-oracle/api/internal/domain"
	"github.com/interview-oracle/api/pkg/textx"
)

// previewLen bounds diagnostic previews carried on recovery errors.
const previewLen = 400

// RecoveryError reports why a model reply could not be trusted as
// structured data. Kind is one of the domain recovery sentinels;
// previews are bounded and intended for logs, never for the UI.
type RecoveryError struct {
	Kind             error
	Detail           string
	RawPreview       string
	SanitizedPreview string
}

func (e *RecoveryError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
}

// Unwrap lets errors.Is match the domain sentinel.
func (e *RecoveryError) Unwrap() error { return e.Kind }

func preview(s string) string {
	if len(s) > previewLen {
		return s[:previewLen]
	}
	return s
}

// extractCandidate trims the reply and, when text surrounds an
// outermost balanced {...} span, returns only that span. Brace matching
// is string-aware so braces inside string literals do not count.
// The second return reports whether an opening brace was seen but never
// balanced, i.e. the payload is truncated.
func extractCandidate(raw string) (candidate string, truncated bool) {
	s := strings.TrimSpace(raw)
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return s, false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], false
			}
		}
	}
	// Opening brace without a matching close: structural nesting beyond
	// the cut is unknown, so the payload cannot be safely repaired.
	return s, true
}

// sanitizeJSONText escapes literal control characters found inside
// string literals (newline, CR, tab, backspace, form feed become their
// two-character escapes; other control characters are dropped) and
// leaves everything outside string literals untouched. Escape state is
// tracked per character, so already-escaped sequences pass through and
// the function is idempotent.
func sanitizeJSONText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}
		if escaped {
			escaped = false
			b.WriteByte(c)
			continue
		}
		switch {
		case c == '\\':
			escaped = true
			b.WriteByte(c)
		case c == '"':
			inString = false
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\b':
			b.WriteString(`\b`)
		case c == '\f':
			b.WriteString(`\f`)
		case c < 0x20 || c == 0x7f:
			// drop other non-printable control characters
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// parseCandidate runs stages 1-4: extract, completeness check,
// character sanitization, strict parse. On success the sanitized
// candidate JSON is returned.
func parseCandidate(raw string) (string, error) {
	candidate, truncated := extractCandidate(raw)
	if truncated {
		return "", &RecoveryError{
			Kind:       domain.ErrTruncated,
			Detail:     "payload does not close its outermost object",
			RawPreview: preview(raw),
		}
	}
	sanitized := sanitizeJSONText(candidate)
	var probe any
	if err := json.Unmarshal([]byte(sanitized), &probe); err != nil {
		return "", &RecoveryError{
			Kind:             domain.ErrMalformedPayload,
			Detail:           err.Error(),
			RawPreview:       preview(raw),
			SanitizedPreview: preview(sanitized),
		}
	}
	return sanitized, nil
}

// RecoverQuestions turns a raw question-mode reply into a categorized
// QuestionSet. There is no safe synthetic fallback in question mode
// (categorization is model-driven), so schema violations are terminal.
func RecoverQuestions(raw string) (domain.QuestionSet, error) {
	sanitized, err := parseCandidate(raw)
	if err != nil {
		return domain.QuestionSet{}, err
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(sanitized), &top); err != nil {
		return domain.QuestionSet{}, &RecoveryError{
			Kind:             domain.ErrSchemaInvalid,
			Detail:           "top-level value is not an object",
			RawPreview:       preview(raw),
			SanitizedPreview: preview(sanitized),
		}
	}

	set := domain.QuestionSet{}
	for _, grp := range []struct {
		key      string
		category domain.QuestionCategory
		dst      *[]domain.QuestionRecord
	}{
		{"behavioral", domain.CategoryBehavioral, &set.Behavioral},
		{"technical", domain.CategoryTechnical, &set.Technical},
		{"company", domain.CategoryCompany, &set.Company},
	} {
		rawArr, ok := top[grp.key]
		if !ok {
			return domain.QuestionSet{}, &RecoveryError{
				Kind:             domain.ErrSchemaInvalid,
				Detail:           fmt.Sprintf("missing %q collection", grp.key),
				RawPreview:       preview(raw),
				SanitizedPreview: preview(sanitized),
			}
		}
		var entries []struct {
			Text       string `json:"text"`
			Confidence string `json:"confidence"`
		}
		if err := json.Unmarshal(rawArr, &entries); err != nil {
			return domain.QuestionSet{}, &RecoveryError{
				Kind:             domain.ErrSchemaInvalid,
				Detail:           fmt.Sprintf("%q is not a question array: %v", grp.key, err),
				RawPreview:       preview(raw),
				SanitizedPreview: preview(sanitized),
			}
		}
		for _, e := range entries {
			text := textx.CleanDisplayText(e.Text)
			if text == "" {
				continue
			}
			conf := textx.CleanDisplayText(e.Confidence)
			if conf == "" {
				conf = domain.ConfidenceCommonInField
			}
			*grp.dst = append(*grp.dst, domain.QuestionRecord{
				Text:       text,
				Confidence: conf,
				Category:   grp.category,
			})
		}
	}
	return set, nil
}

// Field-name synonyms accepted during answer normalization, resolved
// in order. First present, non-empty alias wins.
var (
	fullAliases     = []string{"full", "fullAnswer"}
	conciseAliases  = []string{"concise", "brief", "short", "quickVersion"}
	keyPointAliases = []string{"keyPoints", "key_points"}
)

// Deterministic placeholders masking fields the model omitted.
const (
	placeholderFull      = "Answer generation failed for this question."
	placeholderConcise   = "Brief answer generation failed."
	placeholderKeyPoints = "Key points generation failed"
)

// RecoverAnswers turns a raw answer-mode reply into one normalized
// AnswerRecord per returned entry. questions are the originally
// requested question texts, used to fill missing question fields by
// position and to drive the synthetic fallback. The returned count may
// differ from len(questions); callers must iterate over what was
// returned (the model may merge or split).
func RecoverAnswers(raw string, questions []string) ([]domain.AnswerRecord, bool, error) {
	// Truncated and malformed payloads are terminal even in answer
	// mode; only schema-level absence of "answers" is downgraded to the
	// synthetic result below.
	sanitized, err := parseCandidate(raw)
	if err != nil {
		return nil, false, err
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(sanitized), &top); err != nil {
		return SyntheticAnswers(questions), true, nil
	}
	rawAnswers, ok := top["answers"]
	if !ok {
		return SyntheticAnswers(questions), true, nil
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(rawAnswers, &entries); err != nil {
		return SyntheticAnswers(questions), true, nil
	}

	out := make([]domain.AnswerRecord, 0, len(entries))
	for i, entry := range entries {
		question := stringField(entry, "question")
		if question == "" {
			if i < len(questions) {
				question = questions[i]
			} else {
				question = fmt.Sprintf("Question %d", i+1)
			}
		}
		qType := domain.Classify(question)
		framework := domain.FrameworkFor(qType)

		full := firstString(entry, fullAliases)
		if full == "" {
			full = placeholderFull
		}
		concise := firstString(entry, conciseAliases)
		if concise == "" {
			concise = placeholderConcise
		}
		points := firstStringSlice(entry, keyPointAliases)
		if len(points) == 0 {
			points = []string{placeholderKeyPoints}
		}

		out = append(out, domain.AnswerRecord{
			Question:        textx.CleanDisplayText(question),
			MethodologyName: framework.Name,
			QuestionType:    qType,
			Full:            textx.CleanDisplayText(full),
			Concise:         textx.CleanDisplayText(concise),
			KeyPoints:       points,
		})
	}
	return out, false, nil
}

// SyntheticAnswers builds the deterministic placeholder result used
// when the reply's structure cannot be trusted: one record per
// requested question, visibly flagged as failed, with locally computed
// type and methodology so the UI stays populated.
func SyntheticAnswers(questions []string) []domain.AnswerRecord {
	out := make([]domain.AnswerRecord, 0, len(questions))
	for _, q := range questions {
		qType := domain.Classify(q)
		framework := domain.FrameworkFor(qType)
		out = append(out, domain.AnswerRecord{
			Question:        q,
			MethodologyName: framework.Name,
			QuestionType:    qType,
			Full:            "I apologize, but there was an issue generating the full answer. Please try again.",
			Concise:         "Answer generation failed. Please retry.",
			KeyPoints: []string{
				"Please try generating answers again",
				"The system encountered a temporary issue",
				"Your question has been classified correctly",
				"The methodology has been determined",
				"Retry for proper answers",
			},
		})
	}
	return out
}

func stringField(entry map[string]json.RawMessage, key string) string {
	rawVal, ok := entry[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(rawVal, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func firstString(entry map[string]json.RawMessage, aliases []string) string {
	for _, a := range aliases {
		if s := stringField(entry, a); s != "" {
			return s
		}
	}
	return ""
}

func firstStringSlice(entry map[string]json.RawMessage, aliases []string) []string {
	for _, a := range aliases {
		rawVal, ok := entry[a]
		if !ok {
			continue
		}
		var vals []string
		if err := json.Unmarshal(rawVal, &vals); err != nil {
			continue
		}
		out := make([]string, 0, len(vals))
		for _, v := range vals {
			if c := textx.CleanDisplayText(v); c != "" {
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
