package entity

import "time"

// SectionReview is the feedback for a single CV section.
type SectionReview struct {
	SectionName string   `json:"section_name"`
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// Report is the structured outcome of a completed review.
type Report struct {
	OverallScore          int             `json:"overall_score"`
	SectionReviews        []SectionReview `json:"section_reviews"`
	Strengths             []string        `json:"strengths"`
	Improvements          []string        `json:"improvements"`
	FunnyObservation      string          `json:"funny_observation"`
	OverallRecommendation string          `json:"overall_recommendation"`
	CreatedAt             time.Time       `json:"created_at"`
}

func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	out := *r
	out.Strengths = cloneStrings(r.Strengths)
	out.Improvements = cloneStrings(r.Improvements)
	if r.SectionReviews != nil {
		out.SectionReviews = make([]SectionReview, len(r.SectionReviews))
		for i, s := range r.SectionReviews {
			s.Suggestions = cloneStrings(s.Suggestions)
			out.SectionReviews[i] = s
		}
	}
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
