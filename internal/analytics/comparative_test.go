package analytics

import (
	"testing"
	"time"

	"interview_prep_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCompare_Empty(t *testing.T) {
	got := Compare(nil, nil)

	assert.Equal(t, 0, got.CurrentPeriod.Sessions)
	assert.Equal(t, 0, got.CurrentPeriod.AverageScore)
	assert.Equal(t, 0, got.CurrentPeriod.CompletionRate)
	assert.Equal(t, 0, got.PreviousPeriod.Sessions)
	assert.Equal(t, model.Improvements{Score: 0, Percentage: 0, Trend: model.TrendNoPreviousData}, got.Improvements)
	assert.Equal(t, model.ConfidenceComparison{}, got.Trends.Confidence)
	assert.Equal(t, model.TrendStable, got.CurrentPeriod.SkillBreakdown.Technical.Trend)
}

func TestCompare_Improvement(t *testing.T) {
	previous := []model.InterviewSession{
		scoredSession("p1", baseTime, 50, 50, 50, 50, 40),
		scoredSession("p2", baseTime.Add(time.Hour), 70, 70, 70, 70, 60),
	}
	current := []model.InterviewSession{
		scoredSession("c1", baseTime.Add(48*time.Hour), 75, 75, 75, 75, 70),
	}
	current[0].AnsweredQuestions = 3

	got := Compare(current, previous)

	assert.Equal(t, model.Improvements{Score: 15, Percentage: 25, Trend: model.TrendImproving}, got.Improvements)
	assert.Equal(t, 60, got.PreviousPeriod.AverageScore)
	assert.Equal(t, 2, got.PreviousPeriod.Sessions)
	assert.Equal(t, 100, got.PreviousPeriod.CompletionRate)
	assert.Equal(t, 60, got.CurrentPeriod.CompletionRate)
	assert.Equal(t, 70, got.Trends.Confidence.Current)
	assert.Equal(t, 50, got.Trends.Confidence.Previous)
}

func TestCompare_DecliningAndUnscored(t *testing.T) {
	previous := []model.InterviewSession{scoredSession("p1", baseTime, 80, 80, 80, 80, 80)}
	unscored := newSession("c0", 5)
	current := []model.InterviewSession{
		scoredSession("c1", baseTime.Add(time.Hour), 60, 60, 60, 60, 60),
		unscored,
	}

	got := Compare(current, previous)

	assert.Equal(t, 60, got.CurrentPeriod.AverageScore)
	assert.Equal(t, 2, got.CurrentPeriod.Sessions)
	assert.Equal(t, model.Improvements{Score: -20, Percentage: -25, Trend: model.TrendDeclining}, got.Improvements)
	assert.Equal(t, 50, got.CurrentPeriod.CompletionRate)
	// confidence averages every session in the period
	assert.Equal(t, 30, got.Trends.Confidence.Current)
}
