package service

import (
	"context"
	"testing"
	"time"

	"interview_prep_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisReportCache_RoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	c := NewRedisReportCache(rdb, time.Minute)
	ctx := context.Background()

	_, ok := c.GetSessionAnalytics(ctx, "s1")
	assert.False(t, ok)
	_, ok = c.GetProgress(ctx, "u1", "30d")
	assert.False(t, ok)

	c.SetSessionAnalytics(ctx, "s1", &model.SessionAnalytics{
		Session: model.SessionSummary{ID: "s1", OverallScore: 72, Version: 3},
	})
	c.SetProgress(ctx, "u1", "30d", &model.UserProgress{TotalSessions: 4, DataVersion: "4:9"})
	c.SetProgress(ctx, "u1", "7d", &model.UserProgress{TotalSessions: 1})

	report, ok := c.GetSessionAnalytics(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, 72, report.Session.OverallScore)
	assert.Equal(t, 3, report.Session.Version)

	progress, ok := c.GetProgress(ctx, "u1", "30d")
	require.True(t, ok)
	assert.Equal(t, 4, progress.TotalSessions)
	assert.Equal(t, "4:9", progress.DataVersion)

	assert.Greater(t, mr.TTL(sessionReportKey("s1")), time.Duration(0))
	assert.Greater(t, mr.TTL(progressReportKey("u1")), time.Duration(0))

	mr.FastForward(2 * time.Minute)
	_, ok = c.GetSessionAnalytics(ctx, "s1")
	assert.False(t, ok)
}

func TestRedisReportCache_Invalidate(t *testing.T) {
	tests := []struct {
		name         string
		owner        string
		progressGone bool
	}{
		{"with owner", "u1", true},
		{"without owner", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr, rdb := newTestRedis(t)
			c := NewRedisReportCache(rdb, time.Minute)
			ctx := context.Background()

			c.SetSessionAnalytics(ctx, "s1", &model.SessionAnalytics{})
			c.SetSessionAnalytics(ctx, "s2", &model.SessionAnalytics{})
			c.SetProgress(ctx, "u1", "30d", &model.UserProgress{})
			c.SetProgress(ctx, "u1", "all", &model.UserProgress{})

			c.Invalidate(ctx, "s1", tt.owner)

			assert.False(t, mr.Exists(sessionReportKey("s1")))
			assert.True(t, mr.Exists(sessionReportKey("s2")))
			assert.Equal(t, !tt.progressGone, mr.Exists(progressReportKey("u1")))
		})
	}
}

func TestRedisReportCache_CorruptEntryMisses(t *testing.T) {
	mr, rdb := newTestRedis(t)
	c := NewRedisReportCache(rdb, time.Minute)

	require.NoError(t, mr.Set(sessionReportKey("s1"), "{not json"))
	_, ok := c.GetSessionAnalytics(context.Background(), "s1")
	assert.False(t, ok)
}
