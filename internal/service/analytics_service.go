package service

import (
	"context"
	"strings"

	"interview_prep_backend/internal/analytics"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/monitoring"
	"interview_prep_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const recentSessionLimit = 5

// AnalyticsService 读路径：所有报表都从反馈日志重新计算，不读取会话上的缓存字段
type AnalyticsService struct {
	Sessions *repository.SessionRepository
	Feedback *repository.FeedbackRepository
	Engine   *analytics.Engine
	Cache    ReportCache
}

func NewAnalyticsService(
	sessions *repository.SessionRepository,
	feedback *repository.FeedbackRepository,
	engine *analytics.Engine,
	cache ReportCache,
) *AnalyticsService {
	if cache == nil {
		cache = NopReportCache{}
	}
	if engine == nil {
		engine = analytics.Default()
	}
	return &AnalyticsService{Sessions: sessions, Feedback: feedback, Engine: engine, Cache: cache}
}

// GetUserProgress 汇总 ownerID 在 tr 内创建的会话
func (s *AnalyticsService) GetUserProgress(ctx context.Context, ownerID string, tr model.TimeRange) (*model.UserProgress, error) {
	ctx, span := tracing.StartSpan(ctx, "AnalyticsService.GetUserProgress", attribute.String("owner.id", ownerID))
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if strings.TrimSpace(ownerID) == "" {
		err = util.InvalidInput("owner id is required")
		return nil, err
	}

	sessions, err := s.loadSessions(ctx, ownerID, tr)
	if err != nil {
		return nil, err
	}

	progress := s.summarize(sessions)
	progress.Range = tr
	return progress, nil
}

// GetUserProgressForPeriod 解析时间段 token 并走缓存
func (s *AnalyticsService) GetUserProgressForPeriod(ctx context.Context, ownerID, period string) (*model.UserProgress, error) {
	if period == "" {
		period = util.DefaultPeriod
	}
	tr, err := analytics.CurrentRange(period, s.Engine.Now())
	if err != nil {
		return nil, err
	}
	// 先取版本戳再加载，缓存内容不会比戳新
	stamp, err := s.Sessions.OwnerStamp(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.Cache.GetProgress(ctx, ownerID, period); ok && cached.DataVersion == stamp {
		return cached, nil
	}

	progress, err := s.GetUserProgress(ctx, ownerID, tr)
	if err != nil {
		return nil, err
	}
	progress.DataVersion = stamp
	s.Cache.SetProgress(ctx, ownerID, period, progress)
	return progress, nil
}

func (s *AnalyticsService) summarize(sessions []model.InterviewSession) *model.UserProgress {
	progress := &model.UserProgress{
		TotalSessions:  len(sessions),
		RecentSessions: []model.SessionSummary{},
	}

	var overall []float64
	for i := range sessions {
		sess := &sessions[i]
		if sess.Status == model.SessionCompleted {
			progress.CompletedSessions++
		}
		progress.TotalQuestionsAnswered += sess.AnsweredQuestions
		if sess.AnsweredQuestions > 0 {
			overall = append(overall, float64(sess.PerformanceMetrics.OverallScore))
		}
	}

	progress.AverageScore = analytics.AverageOverall(sessions)
	progress.Trend = s.Engine.ClassifyTrend(overall)
	progress.SkillBreakdown = s.Engine.Breakdown(sessions)
	progress.LearningPath = analytics.GeneratePath(progress.AverageScore, progress.SkillBreakdown)
	progress.Recommendations = analytics.Recommend(sessions, progress.SkillBreakdown)

	for i := len(sessions) - 1; i >= 0 && len(progress.RecentSessions) < recentSessionLimit; i-- {
		progress.RecentSessions = append(progress.RecentSessions, summaryOf(&sessions[i]))
	}

	monitoring.TrendClassifications.WithLabelValues("user_history", string(progress.Trend)).Inc()
	return progress
}

// GetSessionAnalytics 单个会话的详细报表
func (s *AnalyticsService) GetSessionAnalytics(ctx context.Context, sessionID string) (*model.SessionAnalytics, error) {
	ctx, span := tracing.StartSpan(ctx, "AnalyticsService.GetSessionAnalytics", attribute.String("session.id", sessionID))
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	session, err := s.Sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// 提交前读到旧数据的请求可能在失效之后回写，按版本丢弃
	if cached, ok := s.Cache.GetSessionAnalytics(ctx, sessionID); ok && cached.Session.Version == session.Version {
		return cached, nil
	}
	records, err := s.Feedback.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	rebuilt, err := s.Engine.Rebuild(*session, records)
	if err != nil {
		return nil, err
	}

	ordered := analytics.SortRecords(records)
	timeline := make([]model.ScorePoint, 0, len(ordered))
	for i, r := range ordered {
		timeline = append(timeline, model.ScorePoint{
			Index:      i + 1,
			Score:      r.Score,
			Category:   r.QuestionCategory,
			Difficulty: r.Difficulty,
			AnsweredAt: r.AnsweredAt,
		})
	}

	report := &model.SessionAnalytics{
		Session:                summaryOf(&rebuilt),
		PerformanceMetrics:     rebuilt.PerformanceMetrics,
		CategoryPerformance:    rebuilt.CategoryPerformance,
		DifficultyDistribution: rebuilt.DifficultyDistribution,
		ProgressInsights:       rebuilt.Insights(),
		LearningPath:           rebuilt.Path(),
		SkillBreakdown:         s.Engine.Breakdown([]model.InterviewSession{rebuilt}),
		ScoreTimeline:          timeline,
	}
	s.Cache.SetSessionAnalytics(ctx, sessionID, report)
	return report, nil
}

// GetComparativeAnalysis 比较当前时间段与紧邻的上一时间段，两段并发加载
func (s *AnalyticsService) GetComparativeAnalysis(ctx context.Context, ownerID, period string) (*model.ComparativeAnalysis, error) {
	ctx, span := tracing.StartSpan(ctx, "AnalyticsService.GetComparativeAnalysis",
		attribute.String("owner.id", ownerID),
		attribute.String("period", period))
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if strings.TrimSpace(ownerID) == "" {
		err = util.InvalidInput("owner id is required")
		return nil, err
	}
	if period == "" {
		period = util.DefaultPeriod
	}
	current, previous, err := analytics.PeriodRanges(period, s.Engine.Now())
	if err != nil {
		return nil, err
	}

	var cur, prev []model.InterviewSession
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cur, err = s.loadSessions(gctx, ownerID, current)
		return err
	})
	g.Go(func() error {
		var err error
		prev, err = s.loadSessions(gctx, ownerID, previous)
		return err
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	result := s.Engine.Compare(cur, prev)
	result.CurrentRange = &current
	result.PreviousRange = &previous
	monitoring.TrendClassifications.WithLabelValues("period_comparison", string(result.Improvements.Trend)).Inc()
	return &result, nil
}

// loadSessions 读取会话并用反馈日志重算，结果按时间排序
func (s *AnalyticsService) loadSessions(ctx context.Context, ownerID string, tr model.TimeRange) ([]model.InterviewSession, error) {
	sessions, err := s.Sessions.FindByOwner(ctx, ownerID, tr)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	ids := make([]string, len(sessions))
	for i := range sessions {
		ids[i] = sessions[i].ID
	}
	records, err := s.Feedback.FindBySessionIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	groups := analytics.GroupRecords(records)

	out := make([]model.InterviewSession, 0, len(sessions))
	for i := range sessions {
		rebuilt, err := s.Engine.Rebuild(sessions[i], groups[sessions[i].ID])
		if err != nil {
			return nil, err
		}
		out = append(out, rebuilt)
	}
	return analytics.SortSessions(out), nil
}

func summaryOf(s *model.InterviewSession) model.SessionSummary {
	return model.SessionSummary{
		ID:                s.ID,
		JobTitle:          s.JobTitle,
		Mode:              s.Mode,
		Status:            s.Status,
		OverallScore:      s.PerformanceMetrics.OverallScore,
		AnsweredQuestions: s.AnsweredQuestions,
		TotalQuestions:    s.TotalQuestions,
		CreatedAt:         s.CreatedAt,
		Version:           s.Version,
	}
}
