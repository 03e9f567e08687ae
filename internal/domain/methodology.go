package domain

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// QuestionType is the locally computed classification of a question,
// used to select its answer methodology. The model's self-reported
// type is ignored; classification here is deterministic.
type QuestionType string

// Question types, one per methodology framework.
const (
	TypeBehavioral     QuestionType = "behavioral"
	TypeMotivation     QuestionType = "motivation"
	TypeSelfAssessment QuestionType = "self_assessment"
	TypeCareerVision   QuestionType = "career_vision"
	TypeCompensation   QuestionType = "compensation"
	TypeTechnical      QuestionType = "technical"
	TypeGeneral        QuestionType = "general"
)

// MethodologyFramework describes the answer-structuring framework for
// one question type. Loaded once at init, immutable for process lifetime.
type MethodologyFramework struct {
	Name      string `yaml:"name"`
	Structure string `yaml:"structure"`
	Guidance  string `yaml:"guidance"`
	Tooltip   string `yaml:"tooltip"`
}

//go:embed frameworks.yaml
var frameworksYAML []byte

var frameworks map[QuestionType]MethodologyFramework

func init() {
	if err := yaml.Unmarshal(frameworksYAML, &frameworks); err != nil {
		panic(fmt.Sprintf("domain: parse frameworks.yaml: %v", err))
	}
	for _, t := range []QuestionType{TypeBehavioral, TypeMotivation, TypeSelfAssessment, TypeCareerVision, TypeCompensation, TypeTechnical, TypeGeneral} {
		if _, ok := frameworks[t]; !ok {
			panic(fmt.Sprintf("domain: frameworks.yaml missing %q", t))
		}
	}
}

// FrameworkFor returns the methodology framework for a question type,
// falling back to the general framework for unknown types.
func FrameworkFor(t QuestionType) MethodologyFramework {
	if f, ok := frameworks[t]; ok {
		return f
	}
	return frameworks[TypeGeneral]
}

// Keyword buckets tested in order. Order is significant: behavioral
// phrasing ("tell me about a time") is a strict subset of several other
// buckets' vocabulary, so it must win ties by being checked first.
var classifierBuckets = []struct {
	t        QuestionType
	keywords []string
}{
	{TypeBehavioral, []string{
		"tell me about a time", "describe a situation", "give me an example",
		"walk me through", "when you had to", "a time when", "an example of when",
		"describe when you", "tell me about when", "give an example of",
	}},
	{TypeMotivation, []string{
		"why do you want", "why are you interested", "what attracts you",
		"why this company", "why our company", "why us", "what interests you about",
	}},
	{TypeSelfAssessment, []string{
		"biggest weakness", "greatest weakness", "your weakness", "your strengths",
		"greatest strength", "how do you handle stress", "how do you deal with",
		"what are you bad at", "what do you struggle with", "areas for improvement",
	}},
	{TypeCareerVision, []string{
		"where do you see yourself", "career goals", "future plans",
		"in 5 years", "long term goals", "career aspirations", "professional goals",
	}},
	{TypeCompensation, []string{
		"salary expectations", "current salary", "compensation", "what do you expect to earn",
		"salary requirements", "pay expectations", "salary range",
	}},
	{TypeTechnical, []string{
		"explain how", "what is", "how does", "define", "technical approach",
		"your experience with", "how would you implement", "design a system",
	}},
}

// Classify maps a raw question string to its question type by testing
// the case-folded text against the ordered keyword buckets. Total over
// all strings; anything unmatched (including "") is general.
func Classify(question string) QuestionType {
	q := strings.ToLower(question)
	for _, b := range classifierBuckets {
		for _, kw := range b.keywords {
			if strings.Contains(q, kw) {
				return b.t
			}
		}
	}
	return TypeGeneral
}
