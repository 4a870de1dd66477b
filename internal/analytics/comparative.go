package analytics

import (
	"math"

	"interview_prep_backend/internal/model"
)

// PeriodStats summarises one window of sessions.
func (e *Engine) PeriodStats(sessions []model.InterviewSession) model.PeriodStats {
	answered, total := 0, 0
	for i := range sessions {
		answered += sessions[i].AnsweredQuestions
		total += sessions[i].TotalQuestions
	}
	return model.PeriodStats{
		Sessions:       len(sessions),
		AverageScore:   AverageOverall(sessions),
		CompletionRate: percentOf(answered, total),
		SkillBreakdown: e.Breakdown(sessions),
	}
}

// Compare contrasts two windows of sessions. Empty windows produce zero
// stats and a no_previous_data trend, never an error.
func (e *Engine) Compare(current, previous []model.InterviewSession) model.ComparativeAnalysis {
	cur := e.PeriodStats(current)
	prev := e.PeriodStats(previous)

	return model.ComparativeAnalysis{
		CurrentPeriod:  cur,
		PreviousPeriod: prev,
		Improvements:   improvements(cur.AverageScore, prev.AverageScore),
		Trends: model.ComparativeTrends{
			Confidence: model.ConfidenceComparison{
				Current:  meanConfidence(current),
				Previous: meanConfidence(previous),
			},
		},
	}
}

// Compare uses the default engine.
func Compare(current, previous []model.InterviewSession) model.ComparativeAnalysis {
	return Default().Compare(current, previous)
}

func improvements(currentAvg, previousAvg int) model.Improvements {
	if previousAvg == 0 {
		return model.Improvements{Trend: model.TrendNoPreviousData}
	}
	diff := currentAvg - previousAvg
	trend := model.TrendStable
	switch {
	case diff > 0:
		trend = model.TrendImproving
	case diff < 0:
		trend = model.TrendDeclining
	}
	return model.Improvements{
		Score:      diff,
		Percentage: int(math.Round(float64(diff) / float64(previousAvg) * 100)),
		Trend:      trend,
	}
}

func meanConfidence(sessions []model.InterviewSession) int {
	values := make([]float64, 0, len(sessions))
	for i := range sessions {
		values = append(values, float64(sessions[i].PerformanceMetrics.ConfidenceScore))
	}
	return roundMean(values)
}

// percentOf returns round(part / whole * 100), or 0 when whole is 0.
func percentOf(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
