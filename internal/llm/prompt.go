package llm

import "strings"

// SystemPrompt is sent verbatim as the system message of every review request.
const SystemPrompt = `You are a witty but friendly CV reviewer who provides constructive feedback with humor.
Your job is to review resumes and give honest, helpful advice while keeping things light and entertaining.

Guidelines:
- Be casual and friendly, not mean or harsh
- Use humor to make feedback more engaging
- Always provide constructive suggestions
- Focus on content, structure, and presentation
- Give specific, actionable advice
- Rate different sections out of 10
- Keep the tone professional but fun`

const reviewTemplate = `Please review this CV and provide a fun but constructive roast. Include:

1. Overall Score (1-10)
2. Section-by-section feedback:
   - Contact Info & Header
   - Professional Summary/Objective
   - Work Experience
   - Education
   - Skills
   - Additional Sections

3. Top 3 things they're doing right
4. Top 3 things that need improvement
5. One funny but kind observation
6. Overall recommendation

Keep it friendly, constructive, and entertaining. Here's the CV content:

{cv_content}`

// BuildReviewPrompt renders the user message for cvText.
func BuildReviewPrompt(cvText string) string {
	return strings.Replace(reviewTemplate, "{cv_content}", cvText, 1)
}
