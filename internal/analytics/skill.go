package analytics

import (
	"math"
	"slices"

	"interview_prep_backend/internal/model"
)

// Breakdown aggregates per-skill scores across sessions. Sessions with a
// zero score for a skill are left out of its mean; Samples counts every
// session with at least one answer, so an earned zero still reads as data.
func (e *Engine) Breakdown(sessions []model.InterviewSession) model.SkillBreakdown {
	return breakdown(sessions, e.Tunables().TrendThreshold)
}

// Breakdown uses DefaultTrendThreshold.
func Breakdown(sessions []model.InterviewSession) model.SkillBreakdown {
	return breakdown(sessions, DefaultTrendThreshold)
}

func breakdown(sessions []model.InterviewSession, threshold float64) model.SkillBreakdown {
	ordered := SortSessions(sessions)
	focus := focusAreas(ordered)

	samples := answeredCount(ordered)
	var out model.SkillBreakdown
	for _, skill := range model.Skills {
		var scores []float64
		for i := range ordered {
			if v := ordered[i].PerformanceMetrics.SkillScore(skill); v != 0 {
				scores = append(scores, float64(v))
			}
		}
		out.Set(skill, model.SkillScore{
			Score:      roundMean(scores),
			Trend:      classifyTrend(scores, threshold),
			FocusAreas: slices.Clone(focus),
			Samples:    samples,
		})
	}
	return out
}

// focusAreas unions improvement areas with the earliest session first.
func focusAreas(ordered []model.InterviewSession) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, focusAreaCap)
	for i := range ordered {
		for _, area := range ordered[i].Insights().ImprovementAreas {
			if len(out) == focusAreaCap {
				return out
			}
			if _, ok := seen[area]; ok || area == "" {
				continue
			}
			seen[area] = struct{}{}
			out = append(out, area)
		}
	}
	return out
}

func answeredCount(sessions []model.InterviewSession) int {
	n := 0
	for i := range sessions {
		if sessions[i].AnsweredQuestions > 0 {
			n++
		}
	}
	return n
}

func roundMean(values []float64) int {
	if len(values) == 0 {
		return 0
	}
	return int(math.Round(mean(values)))
}
