package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"interview_prep_backend/internal/analytics"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var now0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	engine    *analytics.Engine
	locker    *LocalSessionLocker
	interview *InterviewService
	analytics *AnalyticsService
}

func newFixture(t *testing.T, evaluator Evaluator) *fixture {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	engine := analytics.NewEngine(analytics.DefaultTunables()).WithClock(func() time.Time { return now0 })
	sessions := repository.NewSessionRepository(db)
	feedback := repository.NewFeedbackRepository(db)
	locker := NewLocalSessionLocker()

	return &fixture{
		db:        db,
		engine:    engine,
		locker:    locker,
		interview: NewInterviewService(db, sessions, feedback, evaluator, engine, locker, nil),
		analytics: NewAnalyticsService(sessions, feedback, engine, nil),
	}
}

func questions(n int) []PlannedQuestion {
	qs := make([]PlannedQuestion, n)
	for i := range qs {
		qs[i] = PlannedQuestion{Category: "technical", Difficulty: "medium"}
	}
	return qs
}

func score(v float64) *float64 { return &v }

func (f *fixture) record(t *testing.T, sessionID string, v float64, category string) *SubmitResult {
	t.Helper()
	res, err := f.interview.RecordFeedback(context.Background(), RecordFeedbackInput{
		SubmitAnswerInput: SubmitAnswerInput{
			SessionID:  sessionID,
			Question:   "q",
			Answer:     "a",
			Category:   category,
			Difficulty: "medium",
		},
		Evaluation: model.Evaluation{Score: score(v)},
	})
	require.NoError(t, err)
	return res
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t, StaticEvaluator{Score: 70})
	ctx := context.Background()

	s, err := f.interview.CreateSession(ctx, CreateSessionInput{
		OwnerID:  "u1",
		JobTitle: " Backend Engineer ",
		Questions: []PlannedQuestion{
			{Category: "technical", Difficulty: "easy"},
			{Category: "behavioral", Difficulty: "hard"},
			{Category: "situational", Difficulty: "hard"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", s.JobTitle)
	assert.Equal(t, model.ModeText, s.Mode)
	assert.Equal(t, 3, s.TotalQuestions)
	assert.Equal(t, model.DifficultyDistribution{Easy: 1, Hard: 2}, s.DifficultyDistribution)
	assert.Equal(t, "u1", s.Owner())
	assert.Equal(t, model.LevelBeginner, s.Path().CurrentLevel)

	_, err = f.interview.CreateSession(ctx, CreateSessionInput{JobTitle: "x"})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = f.interview.CreateSession(ctx, CreateSessionInput{
		JobTitle:  "x",
		Questions: []PlannedQuestion{{Category: "trivia", Difficulty: "easy"}},
	})
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestSubmitAnswer_StaticEvaluator(t *testing.T) {
	f := newFixture(t, StaticEvaluator{Score: 82})
	ctx := context.Background()
	s, err := f.interview.CreateSession(ctx, CreateSessionInput{JobTitle: "SRE", Questions: questions(2)})
	require.NoError(t, err)

	res, err := f.interview.SubmitAnswer(ctx, SubmitAnswerInput{
		SessionID:  s.ID,
		Question:   "How does a TCP handshake work?",
		Answer:     "SYN, SYN-ACK, ACK",
		Category:   "technical",
		Difficulty: "medium",
	})
	require.NoError(t, err)
	assert.Equal(t, 82, res.Record.Score)
	assert.Equal(t, model.ConfidenceMedium, res.Record.ConfidenceLevel)
	assert.Equal(t, now0, res.Record.AnsweredAt.UTC())
	assert.Equal(t, 1, res.Session.AnsweredQuestions)
	assert.Equal(t, 82, res.Session.PerformanceMetrics.OverallScore)
	assert.Equal(t, 1, res.Session.Version)

	_, err = f.interview.SubmitAnswer(ctx, SubmitAnswerInput{SessionID: "missing", Category: "technical", Difficulty: "easy", Answer: "x"})
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestRecordFeedback_RunningAverageAndCompletion(t *testing.T) {
	f := newFixture(t, StaticEvaluator{})
	ctx := context.Background()
	s, err := f.interview.CreateSession(ctx, CreateSessionInput{JobTitle: "SRE", Questions: questions(3)})
	require.NoError(t, err)

	f.record(t, s.ID, 60, "technical")
	f.record(t, s.ID, 80, "technical")
	res := f.record(t, s.ID, 100, "behavioral")

	assert.Equal(t, 3, res.Session.AnsweredQuestions)
	assert.Equal(t, 80, res.Session.PerformanceMetrics.OverallScore)
	assert.Equal(t, 70, res.Session.CategoryPerformance.Score(model.CategoryTechnical))
	assert.Equal(t, 100, res.Session.CategoryPerformance.Score(model.CategoryBehavioral))

	_, err = f.interview.RecordFeedback(ctx, RecordFeedbackInput{
		SubmitAnswerInput: SubmitAnswerInput{SessionID: s.ID, Category: "technical", Difficulty: "easy"},
		Evaluation:        model.Evaluation{Score: score(90)},
	})
	assert.ErrorIs(t, err, util.ErrSessionComplete)

	count, err := f.interview.Feedback.CountBySessionID(ctx, s.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestRecordFeedback_IncompleteRecordLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, StaticEvaluator{})
	ctx := context.Background()
	s, err := f.interview.CreateSession(ctx, CreateSessionInput{JobTitle: "SRE", Questions: questions(3)})
	require.NoError(t, err)

	for _, eval := range []model.Evaluation{{}, {Score: score(130)}, {Score: score(-1)}} {
		_, err := f.interview.RecordFeedback(ctx, RecordFeedbackInput{
			SubmitAnswerInput: SubmitAnswerInput{SessionID: s.ID, Category: "technical", Difficulty: "easy"},
			Evaluation:        eval,
		})
		assert.ErrorIs(t, err, util.ErrIncompleteRecord)
	}

	stored, err := f.interview.Sessions.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AnsweredQuestions)
	assert.Equal(t, 0, stored.Version)
}

func TestRecordFeedback_ConcurrentWritersSerialised(t *testing.T) {
	f := newFixture(t, StaticEvaluator{})
	ctx := context.Background()
	const n = 20
	s, err := f.interview.CreateSession(ctx, CreateSessionInput{JobTitle: "SRE", Questions: questions(n)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	total := 0
	for i := range n {
		v := float64(i * 5)
		total += i * 5
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.interview.RecordFeedback(ctx, RecordFeedbackInput{
				SubmitAnswerInput: SubmitAnswerInput{SessionID: s.ID, Category: "technical", Difficulty: "medium"},
				Evaluation:        model.Evaluation{Score: &v},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := f.interview.Sessions.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, n, stored.AnsweredQuestions)
	assert.Equal(t, n, stored.Version)
	assert.Equal(t, (total+n/2)/n, stored.PerformanceMetrics.OverallScore)
	assert.Zero(t, f.locker.held())
}

func TestCompleteSession_Idempotent(t *testing.T) {
	f := newFixture(t, StaticEvaluator{Score: 50})
	ctx := context.Background()
	s, err := f.interview.CreateSession(ctx, CreateSessionInput{JobTitle: "SRE", Questions: questions(3)})
	require.NoError(t, err)

	first, err := f.interview.CompleteSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, first.Status)
	require.NotNil(t, first.CompletedAt)

	second, err := f.interview.CompleteSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, first.CompletedAt.UTC(), second.CompletedAt.UTC())
	assert.Equal(t, 1, second.Version)

	_, err = f.interview.SubmitAnswer(ctx, SubmitAnswerInput{SessionID: s.ID, Answer: "x", Category: "technical", Difficulty: "easy"})
	assert.ErrorIs(t, err, util.ErrSessionComplete)
}

func TestRebuildSession_RestoresCorruptedAggregates(t *testing.T) {
	f := newFixture(t, StaticEvaluator{})
	ctx := context.Background()
	s, err := f.interview.CreateSession(ctx, CreateSessionInput{JobTitle: "SRE", Questions: questions(4)})
	require.NoError(t, err)
	f.record(t, s.ID, 40, "technical")
	f.record(t, s.ID, 90, "behavioral")

	require.NoError(t, f.db.Model(&model.InterviewSession{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{"metrics_overall_score": 3, "answered_questions": 0}).Error)

	rebuilt, err := f.interview.RebuildSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rebuilt.AnsweredQuestions)
	assert.Equal(t, 65, rebuilt.PerformanceMetrics.OverallScore)

	n, err := f.interview.RebuildAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCheckAccess(t *testing.T) {
	f := newFixture(t, StaticEvaluator{})
	ctx := context.Background()
	owned, err := f.interview.CreateSession(ctx, CreateSessionInput{OwnerID: "u1", JobTitle: "SRE", Questions: questions(1)})
	require.NoError(t, err)
	anon, err := f.interview.CreateSession(ctx, CreateSessionInput{JobTitle: "SRE", Questions: questions(1)})
	require.NoError(t, err)

	assert.NoError(t, f.interview.CheckAccess(ctx, owned.ID, "u1"))
	assert.ErrorIs(t, f.interview.CheckAccess(ctx, owned.ID, "u2"), util.ErrPermissionDenied)
	assert.NoError(t, f.interview.CheckAccess(ctx, anon.ID, ""))
}
