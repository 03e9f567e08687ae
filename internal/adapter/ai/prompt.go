package ai

import (
	"fmt"
	"strings"

	"github.com/interview-oracle/api/internal/domain"
)

// Style guidance injected into answer-mode prompts, keyed by answer style.
var styleGuidance = map[domain.AnswerStyle]string{
	domain.StyleConfident:  "Answer with confidence and conviction. State accomplishments directly, quantify impact, and avoid hedging language.",
	domain.StyleHumble:     "Answer with humility. Credit the team where due, acknowledge what you learned, and frame accomplishments as shared outcomes.",
	domain.StyleTechnical:  "Answer with technical depth. Name specific technologies, trade-offs and design decisions, and explain reasoning step by step.",
	domain.StyleLeadership: "Answer from a leadership perspective. Emphasize ownership, delegation, mentoring, and how you aligned people around outcomes.",
}

// questionsExample is the literal reply shape for question mode. It is
// the authoritative schema RecoverQuestions validates against: any
// change here must be mirrored there.
const questionsExample = `{
  "behavioral": [
    {"text": "question text", "confidence": "confidence level"},
    {"text": "question text", "confidence": "confidence level"},
    {"text": "question text", "confidence": "confidence level"},
    {"text": "question text", "confidence": "confidence level"},
    {"text": "question text", "confidence": "confidence level"},
    {"text": "question text", "confidence": "confidence level"}
  ],
  "technical": [
    {"text": "question text", "confidence": "confidence level"},
    {"text": "question text", "confidence": "confidence level"},
    {"text": "question text", "confidence": "confidence level"},
    {"text": "question text", "confidence": "confidence level"}
  ],
  "company": [
    {"text": "question text", "confidence": "confidence level"},
    {"text": "question text", "confidence": "confidence level"}
  ]
}`

// answersExample is the literal reply shape for answer mode, mirrored
// by RecoverAnswers.
const answersExample = `{
  "answers": [
    {
      "question": "first question here",
      "full": "200-300 word professional answer",
      "concise": "50-90 word brief answer",
      "keyPoints": ["point1", "point2", "point3", "point4", "point5"]
    }
  ]
}`

// BuildQuestionsPrompt renders the question-generation instruction for
// the external model.
func BuildQuestionsPrompt(req domain.GenerationRequest) string {
	experience := req.ExperienceLevel
	if experience == "" {
		experience = "professional"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert career coach and interviewer. Analyze this job description and generate interview questions for a %s applying for a %s position", experience, req.Role)
	if req.CompanyName != "" {
		fmt.Fprintf(&b, " at %s", req.CompanyName)
	}
	b.WriteString(".\n\nJob Description:\n")
	b.WriteString(req.JobDescription)
	fmt.Fprintf(&b, "\n\nRole Type: %s\n", req.Role)
	fmt.Fprintf(&b, "Experience Level: %s\n", orDefault(req.ExperienceLevel, "Not specified"))
	fmt.Fprintf(&b, "Company: %s\n", orDefault(req.CompanyName, "Not specified"))
	b.WriteString(`
Generate exactly 12 interview questions:
- 6 behavioral questions that assess soft skills, experience, and cultural fit
- 4 technical or role-specific questions that assess hard skills and domain knowledge
- 2 company-specific questions based on the organization and role context

For each question, assign a confidence level using these exact text values:
- "High Probability" for questions that are almost certainly going to be asked
- "Likely" for common questions in this type of role
- "Common in Field" for industry-standard questions

IMPORTANT: Make questions highly specific to the job description provided. Include relevant technologies, responsibilities, and requirements mentioned in the posting.

Format your response as ONLY a valid JSON object with this exact structure:
`)
	b.WriteString(questionsExample)
	b.WriteString("\n\nReturn ONLY the JSON object, no additional text or formatting.")
	return b.String()
}

// BuildAnswersPrompt renders the answer-generation instruction,
// restating every requested question with its locally selected
// methodology guidance.
func BuildAnswersPrompt(req domain.GenerationRequest) string {
	style := req.AnswerStyle
	if style == "" {
		style = domain.StyleConfident
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert career coach. Write professional interview answers for a %s applying for a %s position", orDefault(req.ExperienceLevel, "professional"), req.Role)
	if req.CompanyName != "" {
		fmt.Fprintf(&b, " at %s", req.CompanyName)
	}
	b.WriteString(".\n\nJob Description:\n")
	b.WriteString(req.JobDescription)
	b.WriteString("\n\nTone: ")
	b.WriteString(styleGuidance[style])
	b.WriteString("\n\nQuestions:\n")
	for i, q := range req.Questions {
		framework := domain.FrameworkFor(domain.Classify(q))
		fmt.Fprintf(&b, "%d. %s\n   Methodology (%s): %s\n", i+1, q, framework.Name, framework.Guidance)
	}
	b.WriteString(`
For each question write a "full" answer of 200-300 words and a "concise" answer of 50-90 words, plus exactly 5 key points.

Format your response as ONLY a valid JSON object with this exact structure:
`)
	b.WriteString(answersExample)
	b.WriteString("\n\nReturn ONLY the JSON object, no additional text or formatting.")
	return b.String()
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
