package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"interview_prep_backend/internal/config"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// EvaluationRequest 评估器的输入
type EvaluationRequest struct {
	Question string
	Answer   string
	JobTitle string
	Category model.QuestionCategory
}

// Evaluator scores a single answer. Optional fields of the result may be
// missing; BuildRecord fills the defaults.
type Evaluator interface {
	Evaluate(ctx context.Context, req EvaluationRequest) (*model.Evaluation, error)
}

// StaticEvaluator returns a fixed score, for local runs and tests.
type StaticEvaluator struct {
	Score float64
}

func (e StaticEvaluator) Evaluate(ctx context.Context, req EvaluationRequest) (*model.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Answer) == "" {
		zero := 0.0
		return &model.Evaluation{
			Score:           &zero,
			ConfidenceLevel: model.ConfidenceLow,
			Improvements:    []string{"Provide an answer to the question"},
			Sentiment:       model.SentimentNegative,
		}, nil
	}
	score := e.Score
	return &model.Evaluation{Score: &score, Sentiment: model.SentimentNeutral}, nil
}

// RetryConfig 评估器重试参数
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Multiplier:  2.0,
	}
}

// RetryingEvaluator retries transient evaluator failures with exponential
// backoff and jitter. A malformed evaluation is retried once.
type RetryingEvaluator struct {
	inner  Evaluator
	config RetryConfig
}

func WithRetry(e Evaluator, cfg RetryConfig) *RetryingEvaluator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	return &RetryingEvaluator{inner: e, config: cfg}
}

func (r *RetryingEvaluator) Evaluate(ctx context.Context, req EvaluationRequest) (*model.Evaluation, error) {
	var lastErr error
	malformedRetried := false

	for attempt := range r.config.MaxAttempts {
		eval, err := r.inner.Evaluate(ctx, req)
		if err == nil {
			return eval, nil
		}
		lastErr = err

		if !shouldRetry(err, &malformedRetried) || attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt)
		logger.L().Warn("evaluator call failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

func shouldRetry(err error, malformedRetried *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, util.ErrIncompleteRecord) {
		if *malformedRetried {
			return false
		}
		*malformedRetried = true
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	return errors.Is(err, util.ErrEvaluatorUnavailable)
}

func (r *RetryingEvaluator) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if limit := float64(r.config.MaxWait); limit > 0 && wait > limit {
		wait = limit
	}
	// ±20% 抖动
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

// NewEvaluator 根据 ai.provider 构造评估器
func NewEvaluator(cfg config.AIConfig) (Evaluator, error) {
	switch cfg.Provider {
	case util.EvaluatorStatic, "":
		return StaticEvaluator{Score: cfg.StaticScore}, nil
	case util.EvaluatorOpenAI:
		chat, err := NewChatEvaluator(cfg)
		if err != nil {
			return nil, err
		}
		retry := DefaultRetryConfig()
		if cfg.MaxRetries > 0 {
			retry.MaxAttempts = cfg.MaxRetries
		}
		return WithRetry(chat, retry), nil
	}
	return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
}
