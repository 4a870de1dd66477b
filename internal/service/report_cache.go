package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"interview_prep_backend/internal/model"
	"interview_prep_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ReportCache 缓存分析报表，写入反馈后失效。未命中时调用方重新计算。
type ReportCache interface {
	GetSessionAnalytics(ctx context.Context, sessionID string) (*model.SessionAnalytics, bool)
	SetSessionAnalytics(ctx context.Context, sessionID string, v *model.SessionAnalytics)
	GetProgress(ctx context.Context, ownerID, period string) (*model.UserProgress, bool)
	SetProgress(ctx context.Context, ownerID, period string, v *model.UserProgress)
	Invalidate(ctx context.Context, sessionID, ownerID string)
}

// NopReportCache never hits.
type NopReportCache struct{}

func (NopReportCache) GetSessionAnalytics(context.Context, string) (*model.SessionAnalytics, bool) {
	return nil, false
}
func (NopReportCache) SetSessionAnalytics(context.Context, string, *model.SessionAnalytics) {}
func (NopReportCache) GetProgress(context.Context, string, string) (*model.UserProgress, bool) {
	return nil, false
}
func (NopReportCache) SetProgress(context.Context, string, string, *model.UserProgress) {}
func (NopReportCache) Invalidate(context.Context, string, string)                       {}

// RedisReportCache stores reports as JSON. Progress reports for one owner
// live in a single hash keyed by period so they can be dropped together.
type RedisReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisReportCache(rdb *redis.Client, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{rdb: rdb, ttl: ttl}
}

func sessionReportKey(sessionID string) string {
	return fmt.Sprintf("interview:report:session:%s", sessionID)
}

func progressReportKey(ownerID string) string {
	return fmt.Sprintf("interview:report:progress:%s", ownerID)
}

func (c *RedisReportCache) GetSessionAnalytics(ctx context.Context, sessionID string) (*model.SessionAnalytics, bool) {
	raw, err := c.rdb.Get(ctx, sessionReportKey(sessionID)).Bytes()
	return decodeCached[model.SessionAnalytics](raw, err)
}

func (c *RedisReportCache) SetSessionAnalytics(ctx context.Context, sessionID string, v *model.SessionAnalytics) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, sessionReportKey(sessionID), raw, c.ttl).Err(); err != nil {
		logger.L().Warn("cache session report failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (c *RedisReportCache) GetProgress(ctx context.Context, ownerID, period string) (*model.UserProgress, bool) {
	raw, err := c.rdb.HGet(ctx, progressReportKey(ownerID), period).Bytes()
	return decodeCached[model.UserProgress](raw, err)
}

func (c *RedisReportCache) SetProgress(ctx context.Context, ownerID, period string, v *model.UserProgress) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	key := progressReportKey(ownerID)
	_, err = c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, period, raw)
		p.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		logger.L().Warn("cache progress report failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func (c *RedisReportCache) Invalidate(ctx context.Context, sessionID, ownerID string) {
	keys := []string{sessionReportKey(sessionID)}
	if ownerID != "" {
		keys = append(keys, progressReportKey(ownerID))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logger.L().Warn("invalidate report cache failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func decodeCached[T any](raw []byte, err error) (*T, bool) {
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L().Warn("read report cache failed", zap.Error(err))
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return &v, true
}
