package repository

import (
	"context"
	"testing"
	"time"

	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var t0 = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func owner(id string) *string { return &id }

func createSession(t *testing.T, repo *SessionRepository, ownerID string, at time.Time) *model.InterviewSession {
	t.Helper()
	s := &model.InterviewSession{
		UUIDBase:       model.UUIDBase{CreatedAt: at},
		OwnerID:        owner(ownerID),
		JobTitle:       "SRE",
		Mode:           model.ModeText,
		Status:         model.SessionActive,
		TotalQuestions: 3,
	}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestSessionRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(newTestDB(t))

	s := createSession(t, repo, "u1", t0)
	require.NotEmpty(t, s.ID)

	s.PerformanceMetrics.OverallScore = 77
	s.PerformanceMetrics.Tally = model.MetricTally{Count: 1, Overall: 77}
	s.CategoryPerformance.Technical = 77
	s.ProgressInsights = datatypes.NewJSONType(model.ProgressInsights{Strengths: []string{"clarity"}})
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 77, got.PerformanceMetrics.OverallScore)
	assert.Equal(t, 1, got.PerformanceMetrics.Tally.Count)
	assert.Equal(t, 77, got.CategoryPerformance.Technical)
	assert.Equal(t, []string{"clarity"}, got.Insights().Strengths)
	assert.Equal(t, "u1", got.Owner())

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestSessionRepository_LockByIDInTransaction(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	s := createSession(t, repo, "u1", t0)

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).LockByID(ctx, s.ID)
		if err != nil {
			return err
		}
		locked.AnsweredQuestions = 1
		return repo.WithTx(tx).Save(ctx, locked)
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AnsweredQuestions)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := repo.WithTx(tx).LockByID(ctx, "missing")
		return err
	})
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestSessionRepository_FindByOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(newTestDB(t))

	late := createSession(t, repo, "u1", t0.Add(10*24*time.Hour))
	early := createSession(t, repo, "u1", t0)
	createSession(t, repo, "u2", t0.Add(time.Hour))
	old := createSession(t, repo, "u1", t0.Add(-40*24*time.Hour))

	all, err := repo.FindByOwner(ctx, "u1", model.TimeRange{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{old.ID, early.ID, late.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	window, err := repo.FindByOwner(ctx, "u1", model.TimeRange{Start: t0, End: t0.Add(10 * 24 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, early.ID, window[0].ID)
}

func TestSessionRepository_MarkCompletedAndListIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(newTestDB(t))
	a := createSession(t, repo, "u1", t0)
	b := createSession(t, repo, "u1", t0)

	require.NoError(t, repo.MarkCompleted(ctx, a.ID, t0.Add(time.Hour)))
	require.NoError(t, repo.MarkCompleted(ctx, a.ID, t0.Add(2*time.Hour)))

	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(t0.Add(time.Hour)))
	assert.Equal(t, 1, got.Version)

	ids, err := repo.ListIDs(ctx, "", 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids)

	first, err := repo.ListIDs(ctx, "", 1)
	require.NoError(t, err)
	rest, err := repo.ListIDs(ctx, first[0], 10)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestSessionRepository_OwnerStamp(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(newTestDB(t))

	stamp := func(owner string) string {
		t.Helper()
		got, err := repo.OwnerStamp(ctx, owner)
		require.NoError(t, err)
		return got
	}

	assert.Equal(t, "0:0", stamp("u1"))
	a := createSession(t, repo, "u1", t0)
	createSession(t, repo, "u2", t0)
	assert.Equal(t, "1:0", stamp("u1"))

	a.Version = 3
	require.NoError(t, repo.Save(ctx, a))
	assert.Equal(t, "1:3", stamp("u1"))

	require.NoError(t, repo.MarkCompleted(ctx, a.ID, t0))
	assert.Equal(t, "1:4", stamp("u1"))
	assert.Equal(t, "1:0", stamp("u2"))
}

func TestFeedbackRepository_OrderedBySessionIDs(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sessions := NewSessionRepository(db)
	repo := NewFeedbackRepository(db)

	s1 := createSession(t, sessions, "u1", t0)
	s2 := createSession(t, sessions, "u1", t0)

	add := func(sessionID string, score int, at time.Time) *model.FeedbackRecord {
		rec := &model.FeedbackRecord{
			SessionID:        sessionID,
			Score:            score,
			QuestionCategory: model.CategoryGeneral,
			Difficulty:       model.DifficultyEasy,
			ConfidenceLevel:  model.ConfidenceMedium,
			AnsweredAt:       at,
		}
		require.NoError(t, repo.Append(ctx, rec))
		require.NotZero(t, rec.ID)
		return rec
	}
	add(s1.ID, 50, t0.Add(3*time.Minute))
	add(s2.ID, 60, t0.Add(1*time.Minute))
	add(s1.ID, 70, t0.Add(2*time.Minute))
	add(s1.ID, 80, t0.Add(2*time.Minute))

	got, err := repo.FindBySessionIDs(ctx, []string{s1.ID, s2.ID})
	require.NoError(t, err)
	scores := make([]int, len(got))
	for i, r := range got {
		scores[i] = r.Score
	}
	assert.Equal(t, []int{60, 70, 80, 50}, scores)

	one, err := repo.FindBySessionID(ctx, s2.ID)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	none, err := repo.FindBySessionIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	n, err := repo.CountBySessionID(ctx, s1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, util.ErrFeedbackNotFound)
}
