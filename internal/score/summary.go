package score

import (
	"strings"

	"jscenario/internal/domain"
)

// improvementThreshold is the category score below which a category's
// description is listed as an improvement point.
const improvementThreshold = 80

// Summary renders the short feedback paragraph shown under the headline
// when the backend supplies no coaching advice.
func Summary(eval domain.EvaluationResult) string {
	var b strings.Builder
	b.WriteString(Headline(eval.OverallScore))

	s := Clamp(eval.OverallScore)
	if s >= 70 && s < 85 {
		var points []string
		for _, c := range []domain.FeedbackCategory{eval.Grammar, eval.Appropriateness} {
			if c.Score < improvementThreshold && c.Description != "" {
				points = append(points, c.Description)
			}
		}
		if len(points) > 0 {
			b.WriteString("\n개선 포인트: ")
			b.WriteString(strings.Join(points, " / "))
		}
		return b.String()
	}

	for _, desc := range []string{eval.Grammar.Description, eval.Appropriateness.Description} {
		if desc != "" {
			b.WriteString("\n")
			b.WriteString(desc)
		}
	}
	return b.String()
}
