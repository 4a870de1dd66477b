package analytics

import (
	"testing"
	"time"

	"interview_prep_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestBreakdown_Empty(t *testing.T) {
	b := Breakdown(nil)
	for _, s := range model.Skills {
		got := b.Get(s)
		assert.Equal(t, 0, got.Score)
		assert.Equal(t, model.TrendStable, got.Trend)
		assert.NotNil(t, got.FocusAreas)
		assert.Empty(t, got.FocusAreas)
	}
}

func TestBreakdown_SkipsZeroScores(t *testing.T) {
	sessions := []model.InterviewSession{
		scoredSession("b", baseTime.Add(48*time.Hour), 80, 90, 0, 70, 60, "system design", "pacing"),
		scoredSession("a", baseTime, 60, 50, 70, 0, 60, "pacing", "examples"),
		scoredSession("c", baseTime.Add(96*time.Hour), 85, 95, 80, 75, 60, "depth"),
	}
	b := Breakdown(sessions)

	assert.Equal(t, 78, b.Technical.Score)
	assert.Equal(t, model.TrendImproving, b.Technical.Trend)
	assert.Equal(t, 75, b.Communication.Score)
	assert.Equal(t, 73, b.Behavioral.Score)
	assert.Equal(t, model.TrendStable, b.Behavioral.Trend)
	// earliest session first, deduplicated, capped at three
	assert.Equal(t, []string{"pacing", "examples", "system design"}, b.Technical.FocusAreas)
	assert.Equal(t, b.Technical.FocusAreas, b.Behavioral.FocusAreas)
}
