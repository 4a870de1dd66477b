package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"interview_prep_backend/internal/analytics"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/logger"
	"interview_prep_backend/pkg/monitoring"
	"interview_prep_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PlannedQuestion 题目由外部生成，这里只关心类别和难度
type PlannedQuestion struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

type CreateSessionInput struct {
	OwnerID   string
	JobTitle  string
	Mode      string
	Questions []PlannedQuestion
}

type SubmitAnswerInput struct {
	SessionID  string
	Question   string
	Answer     string
	Category   string
	Difficulty string
}

// RecordFeedbackInput 调用方已经拿到评估结果时使用
type RecordFeedbackInput struct {
	SubmitAnswerInput
	Evaluation model.Evaluation
}

type SubmitResult struct {
	Record  model.FeedbackRecord   `json:"record"`
	Session model.InterviewSession `json:"session"`
}

// InterviewService 写路径：评估 → 追加反馈 → 更新会话聚合
type InterviewService struct {
	DB          *gorm.DB
	Sessions    *repository.SessionRepository
	Feedback    *repository.FeedbackRepository
	Evaluator   Evaluator
	Engine      *analytics.Engine
	Locker      SessionLocker
	Cache       ReportCache
	LockTimeout time.Duration
}

func NewInterviewService(
	db *gorm.DB,
	sessions *repository.SessionRepository,
	feedback *repository.FeedbackRepository,
	evaluator Evaluator,
	engine *analytics.Engine,
	locker SessionLocker,
	cache ReportCache,
) *InterviewService {
	if locker == nil {
		locker = NewLocalSessionLocker()
	}
	if cache == nil {
		cache = NopReportCache{}
	}
	if engine == nil {
		engine = analytics.Default()
	}
	return &InterviewService{
		DB:          db,
		Sessions:    sessions,
		Feedback:    feedback,
		Evaluator:   evaluator,
		Engine:      engine,
		Locker:      locker,
		Cache:       cache,
		LockTimeout: 10 * time.Second,
	}
}

func (s *InterviewService) CreateSession(ctx context.Context, in CreateSessionInput) (*model.InterviewSession, error) {
	jobTitle := strings.TrimSpace(in.JobTitle)
	if jobTitle == "" {
		return nil, util.InvalidInput("job title is required")
	}
	if len(in.Questions) == 0 {
		return nil, util.InvalidInput("at least one question is required")
	}
	mode, err := model.ParseInteractionMode(in.Mode)
	if err != nil {
		return nil, util.InvalidInput(err.Error())
	}

	var dist model.DifficultyDistribution
	for i, q := range in.Questions {
		if _, err := model.ParseQuestionCategory(q.Category); err != nil {
			return nil, util.InvalidInput(fmt.Sprintf("question %d: %v", i+1, err))
		}
		d, err := model.ParseDifficulty(q.Difficulty)
		if err != nil {
			return nil, util.InvalidInput(fmt.Sprintf("question %d: %v", i+1, err))
		}
		switch d {
		case model.DifficultyEasy:
			dist.Easy++
		case model.DifficultyMedium:
			dist.Medium++
		case model.DifficultyHard:
			dist.Hard++
		}
	}

	session := model.InterviewSession{
		JobTitle:               jobTitle,
		Mode:                   mode,
		Status:                 model.SessionActive,
		TotalQuestions:         len(in.Questions),
		DifficultyDistribution: dist,
	}
	if owner := strings.TrimSpace(in.OwnerID); owner != "" {
		session.OwnerID = &owner
	}
	// 空会话也带一份完整的派生字段
	session = s.Engine.Derive(session, nil)

	if err := s.Sessions.Create(ctx, &session); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, session.ID, session.Owner())
	logger.L().Info("interview session created",
		zap.String("session_id", session.ID),
		zap.Int("total_questions", session.TotalQuestions))
	return &session, nil
}

// SubmitAnswer 评估并记录一个回答。评估在锁外进行。
func (s *InterviewService) SubmitAnswer(ctx context.Context, in SubmitAnswerInput) (*SubmitResult, error) {
	ctx, span := tracing.StartSpan(ctx, "InterviewService.SubmitAnswer", attribute.String("session.id", in.SessionID))
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	input, err := s.parseInput(in)
	if err != nil {
		s.reject("invalid_input", in.SessionID, err)
		return nil, err
	}

	session, err := s.Sessions.FindByID(ctx, in.SessionID)
	if err != nil {
		s.reject("not_found", in.SessionID, err)
		return nil, err
	}
	if err = ensureOpen(session); err != nil {
		s.reject("session_complete", in.SessionID, err)
		return nil, err
	}

	eval, err := s.evaluate(ctx, EvaluationRequest{
		Question: in.Question,
		Answer:   in.Answer,
		JobTitle: session.JobTitle,
		Category: input.Category,
	})
	if err != nil {
		s.reject("evaluator", in.SessionID, err)
		return nil, err
	}

	result, err := s.record(ctx, input, *eval)
	return result, err
}

// RecordFeedback 使用已有评估结果走同一条追加路径
func (s *InterviewService) RecordFeedback(ctx context.Context, in RecordFeedbackInput) (*SubmitResult, error) {
	input, err := s.parseInput(in.SubmitAnswerInput)
	if err != nil {
		s.reject("invalid_input", in.SessionID, err)
		return nil, err
	}
	return s.record(ctx, input, in.Evaluation)
}

func (s *InterviewService) parseInput(in SubmitAnswerInput) (analytics.RecordInput, error) {
	if strings.TrimSpace(in.SessionID) == "" {
		return analytics.RecordInput{}, util.InvalidInput("session id is required")
	}
	cat, err := model.ParseQuestionCategory(in.Category)
	if err != nil {
		return analytics.RecordInput{}, util.InvalidInput(err.Error())
	}
	diff, err := model.ParseDifficulty(in.Difficulty)
	if err != nil {
		return analytics.RecordInput{}, util.InvalidInput(err.Error())
	}
	return analytics.RecordInput{
		SessionID:  in.SessionID,
		Question:   in.Question,
		Answer:     in.Answer,
		Category:   cat,
		Difficulty: diff,
	}, nil
}

func (s *InterviewService) evaluate(ctx context.Context, req EvaluationRequest) (*model.Evaluation, error) {
	start := time.Now()
	eval, err := s.Evaluator.Evaluate(ctx, req)

	outcome := "ok"
	switch {
	case err == nil && eval == nil:
		outcome = "empty"
		err = util.IncompleteRecord("evaluator returned no result")
	case err == nil:
	case errors.Is(err, util.ErrIncompleteRecord), errors.Is(err, util.ErrEvaluatorUnavailable):
		outcome = "error"
	default:
		outcome = "error"
		err = fmt.Errorf("%w: %w", util.ErrEvaluatorUnavailable, err)
	}
	monitoring.EvaluatorDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}
	return eval, nil
}

// record 在会话锁和事务内追加记录并更新聚合
func (s *InterviewService) record(ctx context.Context, in analytics.RecordInput, eval model.Evaluation) (*SubmitResult, error) {
	rec, err := analytics.BuildRecord(in, eval)
	if err != nil {
		s.reject("incomplete_record", in.SessionID, err)
		return nil, err
	}

	var result SubmitResult
	err = s.withSessionLock(ctx, in.SessionID, func(tx *gorm.DB) error {
		sessions := s.Sessions.WithTx(tx)
		feedback := s.Feedback.WithTx(tx)

		current, err := sessions.LockByID(ctx, in.SessionID)
		if err != nil {
			return err
		}
		if err := ensureOpen(current); err != nil {
			return err
		}

		prior, err := feedback.FindBySessionID(ctx, in.SessionID)
		if err != nil {
			return err
		}
		rec.AnsweredAt = s.Engine.Now().UTC()
		// 同一会话内时间戳单调不减
		if n := len(prior); n > 0 && rec.AnsweredAt.Before(prior[n-1].AnsweredAt) {
			rec.AnsweredAt = prior[n-1].AnsweredAt
		}

		updated, err := analytics.ApplyFeedback(*current, rec)
		if err != nil {
			return err
		}
		if err := feedback.Append(ctx, &rec); err != nil {
			return err
		}

		updated = s.Engine.Derive(updated, append(prior, rec))
		updated.Version++
		if err := sessions.Save(ctx, &updated); err != nil {
			return err
		}

		result = SubmitResult{Record: rec, Session: updated}
		return nil
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.reject(rejectReason(err), in.SessionID, err)
		}
		return nil, err
	}

	s.Cache.Invalidate(ctx, in.SessionID, result.Session.Owner())
	monitoring.FeedbackApplied.WithLabelValues(string(rec.QuestionCategory)).Inc()
	monitoring.TrendClassifications.WithLabelValues("session_confidence", string(result.Session.Insights().ConfidenceTrend)).Inc()
	logger.L().Debug("feedback applied",
		zap.String("session_id", in.SessionID),
		zap.Int("n", result.Session.AnsweredQuestions),
		zap.Int("overall_score", result.Session.PerformanceMetrics.OverallScore))
	return &result, nil
}

// CompleteSession 标记会话完成，重复调用无副作用
func (s *InterviewService) CompleteSession(ctx context.Context, sessionID string) (*model.InterviewSession, error) {
	var owner string
	changed := false
	err := s.withSessionLock(ctx, sessionID, func(tx *gorm.DB) error {
		sessions := s.Sessions.WithTx(tx)
		session, err := sessions.LockByID(ctx, sessionID)
		if err != nil {
			return err
		}
		owner = session.Owner()
		if session.Status == model.SessionCompleted {
			return nil
		}
		changed = true
		return sessions.MarkCompleted(ctx, sessionID, s.Engine.Now())
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.Cache.Invalidate(ctx, sessionID, owner)
	}
	return s.Sessions.FindByID(ctx, sessionID)
}

// RebuildSession 从反馈日志重算会话的全部聚合与派生字段
func (s *InterviewService) RebuildSession(ctx context.Context, sessionID string) (*model.InterviewSession, error) {
	var rebuilt model.InterviewSession
	err := s.withSessionLock(ctx, sessionID, func(tx *gorm.DB) error {
		sessions := s.Sessions.WithTx(tx)
		current, err := sessions.LockByID(ctx, sessionID)
		if err != nil {
			return err
		}
		records, err := s.Feedback.WithTx(tx).FindBySessionID(ctx, sessionID)
		if err != nil {
			return err
		}
		rebuilt, err = s.Engine.Rebuild(*current, records)
		if err != nil {
			return fmt.Errorf("rebuild session %s: %w", sessionID, err)
		}
		rebuilt.Version++
		return sessions.Save(ctx, &rebuilt)
	})
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, sessionID, rebuilt.Owner())
	return &rebuilt, nil
}

// RebuildAll 按 id 顺序重算所有会话，返回处理数量
func (s *InterviewService) RebuildAll(ctx context.Context) (int, error) {
	const pageSize = 100
	count := 0
	after := ""
	for {
		ids, err := s.Sessions.ListIDs(ctx, after, pageSize)
		if err != nil {
			return count, err
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return count, err
			}
			if _, err := s.RebuildSession(ctx, id); err != nil {
				return count, err
			}
			count++
		}
		if len(ids) < pageSize {
			return count, nil
		}
		after = ids[len(ids)-1]
	}
}

func (s *InterviewService) withSessionLock(ctx context.Context, sessionID string, fn func(tx *gorm.DB) error) error {
	lockCtx := ctx
	if s.LockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.LockTimeout)
		defer cancel()
	}
	unlock, err := s.Locker.Lock(lockCtx, sessionID)
	if err != nil {
		return fmt.Errorf("lock session %s: %w", sessionID, err)
	}
	defer unlock()

	return s.DB.WithContext(ctx).Transaction(fn)
}

func ensureOpen(session *model.InterviewSession) error {
	if session.Status == model.SessionCompleted || session.AnsweredQuestions >= session.TotalQuestions {
		return util.ErrSessionComplete
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		return "not_found"
	case errors.Is(err, util.ErrSessionComplete):
		return "session_complete"
	case errors.Is(err, util.ErrIncompleteRecord):
		return "incomplete_record"
	case errors.Is(err, util.ErrInvalidInput):
		return "invalid_input"
	}
	return "internal"
}

func (s *InterviewService) reject(reason, sessionID string, err error) {
	monitoring.SubmissionRejections.WithLabelValues(reason).Inc()
	logger.L().Warn("answer submission rejected",
		zap.String("session_id", sessionID),
		zap.String("reason", reason),
		zap.Error(err))
}

// CheckAccess 匿名会话对所有人开放，有归属的会话只允许本人访问
func (s *InterviewService) CheckAccess(ctx context.Context, sessionID, ownerID string) error {
	session, err := s.Sessions.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if owner := session.Owner(); owner != "" && owner != ownerID {
		return util.ErrPermissionDenied
	}
	return nil
}
