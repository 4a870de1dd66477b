package analytics

import (
	"fmt"

	"interview_prep_backend/internal/model"
)

var (
	genericRecommendations = []string{
		"Complete a full practice interview to get personalized feedback.",
		"Practice answering common interview questions out loud.",
		"Review the job description and prepare examples for each requirement.",
	}
	beginnerRecommendations = []string{
		"Strengthen your fundamentals with easy and medium questions before moving on.",
		"Build confidence by practicing short answers until they feel natural.",
		"Practice behavioral questions using the STAR method.",
	}
	improvementRecommendations = []string{
		"Challenge yourself with hard questions in your target role.",
		"Spend extra sessions on your weakest question categories.",
		"Deepen your technical explanations with concrete trade-offs and examples.",
	}
	masteryRecommendations = []string{
		"Keep your edge with regular practice sessions.",
		"Mentor others to sharpen how you explain your experience.",
		"Prepare for advanced and senior-level interview loops.",
	}
)

// Recommend produces up to five recommendations, most important first.
// The bucket comes from the mean overall score of sessions with answers;
// without any answered session the generic list is returned.
func Recommend(sessions []model.InterviewSession, b model.SkillBreakdown) []string {
	var answered []float64
	for i := range sessions {
		if sessions[i].AnsweredQuestions > 0 {
			answered = append(answered, float64(sessions[i].PerformanceMetrics.OverallScore))
		}
	}
	if len(answered) == 0 {
		return append([]string(nil), genericRecommendations...)
	}
	avg := roundMean(answered)

	var out []string
	switch {
	case avg < 70:
		out = append(out, beginnerRecommendations...)
	case avg < 85:
		out = append(out, improvementRecommendations...)
	default:
		out = append(out, masteryRecommendations...)
	}

	for _, s := range model.Skills {
		if sc := b.Get(s); sc.Samples > 0 && sc.Score < skillGapThreshold {
			out = append(out, fmt.Sprintf("Focus on improving %s skills through targeted practice.", s))
		}
	}

	if len(out) > recommendationCap {
		out = out[:recommendationCap]
	}
	return out
}

// AverageOverall is the rounded mean overall score over sessions with a
// nonzero score, 0 when there are none.
func AverageOverall(sessions []model.InterviewSession) int {
	var scores []float64
	for i := range sessions {
		if v := sessions[i].PerformanceMetrics.OverallScore; v != 0 {
			scores = append(scores, float64(v))
		}
	}
	return roundMean(scores)
}
