// Package report turns free-form review prose into a structured Report.
//
// Parsing never fails. When the prose cannot be mapped onto a well-formed
// report the parser returns a fixed fallback and says so in the Outcome.
package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/roastume/internal/entity"
)

const (
	DefaultScore  = 7
	FallbackScore = 6
	MinScore      = 1
	MaxScore      = 10

	// RecommendationLimit is the rune count kept from the raw prose.
	RecommendationLimit = 500
	ellipsis            = "..."
)

var reInt = regexp.MustCompile(`\d+`)

// Outcome is the result of Parse. Report is always non-nil.
type Outcome struct {
	Report   *entity.Report
	Fallback bool   // true when Report is the fixed fallback
	Reason   string // why the fallback was used
}

// Parse maps raw prose onto a Report stamped with time.Now().
func Parse(raw string) Outcome {
	return ParseAt(raw, time.Now())
}

// ParseAt is Parse with an explicit creation time.
func ParseAt(raw string, now time.Time) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = fallback(now, fmt.Sprintf("panic: %v", r))
		}
	}()

	rep, err := build(raw, now)
	if err != nil {
		return fallback(now, err.Error())
	}
	return Outcome{Report: rep}
}

func build(raw string, now time.Time) (*entity.Report, error) {
	overall := ExtractScore(raw)

	sections := []entity.SectionReview{
		{
			SectionName: "Contact Information",
			Score:       8,
			Feedback:    "Contact info looks professional and complete.",
			Suggestions: []string{"Consider adding LinkedIn profile if missing"},
		},
		{
			SectionName: "Professional Summary",
			Score:       overall - 1,
			Feedback:    "Summary needs more impact and specificity.",
			Suggestions: []string{"Add quantifiable achievements", "Make it more concise"},
		},
		{
			SectionName: "Work Experience",
			Score:       overall,
			Feedback:    "Experience section shows good progression.",
			Suggestions: []string{"Add more metrics and results"},
		},
		{
			SectionName: "Skills",
			Score:       overall - 2,
			Feedback:    "Skills section could be more organized.",
			Suggestions: []string{"Group by category", "Remove outdated skills"},
		},
	}
	for _, s := range sections {
		if s.Score < MinScore || s.Score > MaxScore {
			return nil, fmt.Errorf("section %q score %d out of range [%d,%d]", s.SectionName, s.Score, MinScore, MaxScore)
		}
	}

	return &entity.Report{
		OverallScore:   overall,
		SectionReviews: sections,
		Strengths: []string{
			"Good work experience progression",
			"Professional formatting",
			"Relevant skills listed",
		},
		Improvements: []string{
			"Add more quantifiable achievements",
			"Improve professional summary",
			"Better organize skills section",
		},
		FunnyObservation:      "Your CV has more buzzwords than a startup pitch deck! 😄",
		OverallRecommendation: Recommendation(raw),
		CreatedAt:             now,
	}, nil
}

// ExtractScore returns the first integer in [1,10] found on the first
// score-like line ("overall score" or "score:", case-insensitive).
// It returns DefaultScore when no such line carries one.
func ExtractScore(raw string) int {
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		l := strings.ToLower(line)
		if !strings.Contains(l, "overall score") && !strings.Contains(l, "score:") {
			continue
		}
		for _, tok := range reInt.FindAllString(line, -1) {
			n, err := strconv.Atoi(tok)
			if err != nil {
				continue
			}
			if n >= MinScore && n <= MaxScore {
				return n
			}
		}
	}
	return DefaultScore
}

// Recommendation keeps the first RecommendationLimit runes of raw,
// appending an ellipsis when anything was cut.
func Recommendation(raw string) string {
	r := []rune(raw)
	if len(r) <= RecommendationLimit {
		return raw
	}
	return string(r[:RecommendationLimit]) + ellipsis
}

func fallback(now time.Time, reason string) Outcome {
	return Outcome{
		Report: &entity.Report{
			OverallScore:          FallbackScore,
			SectionReviews:        []entity.SectionReview{},
			Strengths:             []string{"CV submitted successfully"},
			Improvements:          []string{"Consider reformatting for better readability"},
			FunnyObservation:      "Your CV is like a mystery novel - it keeps us guessing! 🔍",
			OverallRecommendation: "Overall, your CV shows potential but could use some refinement to really shine.",
			CreatedAt:             now,
		},
		Fallback: true,
		Reason:   reason,
	}
}
