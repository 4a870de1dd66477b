package analytics

import (
	"testing"
	"time"

	"interview_prep_backend/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newSession(id string, total int) model.InterviewSession {
	return model.InterviewSession{
		UUIDBase:       model.UUIDBase{ID: id, CreatedAt: baseTime},
		JobTitle:       "Backend Engineer",
		Mode:           model.ModeText,
		Status:         model.SessionActive,
		TotalQuestions: total,
	}
}

func ptr(v float64) *float64 { return &v }

func buildRecord(t *testing.T, sessionID string, id uint, score float64, cat model.QuestionCategory) model.FeedbackRecord {
	t.Helper()
	rec, err := BuildRecord(RecordInput{
		SessionID:  sessionID,
		Question:   "Tell me about yourself",
		Answer:     "...",
		Category:   cat,
		Difficulty: model.DifficultyMedium,
		AnsweredAt: baseTime.Add(time.Duration(id) * time.Minute),
	}, model.Evaluation{Score: ptr(score)})
	require.NoError(t, err)
	rec.ID = id
	return rec
}

// scoredSession builds a session whose metrics already hold the given values.
func scoredSession(id string, at time.Time, overall, technical, communication, behavioral, confidence int, areas ...string) model.InterviewSession {
	s := newSession(id, 5)
	s.CreatedAt = at
	s.AnsweredQuestions = 5
	s.PerformanceMetrics = model.PerformanceMetrics{
		OverallScore:       overall,
		TechnicalScore:     technical,
		CommunicationScore: communication,
		BehavioralScore:    behavioral,
		ConfidenceScore:    confidence,
	}
	s.ProgressInsights = datatypes.NewJSONType(model.ProgressInsights{ImprovementAreas: areas})
	return s
}
