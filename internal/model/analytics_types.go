package model

import "time"

// TimeRange 半开区间 [Start, End)，零值表示不限
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r TimeRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls inside [Start, End).
func (r TimeRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && !t.Before(r.End) {
		return false
	}
	return true
}

func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// SkillScore 单项技能的聚合结果
type SkillScore struct {
	Score      int      `json:"score"`
	Trend      Trend    `json:"trend"`
	FocusAreas []string `json:"focusAreas"`
	// 有作答的会话数，为 0 表示该技能没有数据
	Samples int `json:"samples"`
}

// SkillBreakdown technical / communication / behavioral
type SkillBreakdown struct {
	Technical     SkillScore `json:"technical"`
	Communication SkillScore `json:"communication"`
	Behavioral    SkillScore `json:"behavioral"`
}

func (b SkillBreakdown) Get(s Skill) SkillScore {
	switch s {
	case SkillTechnical:
		return b.Technical
	case SkillCommunication:
		return b.Communication
	case SkillBehavioral:
		return b.Behavioral
	}
	return SkillScore{Trend: TrendStable, FocusAreas: []string{}}
}

func (b *SkillBreakdown) Set(s Skill, v SkillScore) {
	switch s {
	case SkillTechnical:
		b.Technical = v
	case SkillCommunication:
		b.Communication = v
	case SkillBehavioral:
		b.Behavioral = v
	}
}

type PeriodStats struct {
	Sessions       int            `json:"sessions"`
	AverageScore   int            `json:"averageScore"`
	CompletionRate int            `json:"completionRate"`
	SkillBreakdown SkillBreakdown `json:"skillBreakdown"`
}

type Improvements struct {
	Score      int   `json:"score"`
	Percentage int   `json:"percentage"`
	Trend      Trend `json:"trend"`
}

type ConfidenceComparison struct {
	Current  int `json:"current"`
	Previous int `json:"previous"`
}

type ComparativeTrends struct {
	Confidence ConfidenceComparison `json:"confidence"`
}

type ComparativeAnalysis struct {
	CurrentPeriod  PeriodStats       `json:"currentPeriod"`
	PreviousPeriod PeriodStats       `json:"previousPeriod"`
	Improvements   Improvements      `json:"improvements"`
	Trends         ComparativeTrends `json:"trends"`
	// 仅在按时间段查询时填充
	CurrentRange  *TimeRange `json:"currentRange,omitempty"`
	PreviousRange *TimeRange `json:"previousRange,omitempty"`
}

type SessionSummary struct {
	ID                string          `json:"id"`
	JobTitle          string          `json:"jobTitle"`
	Mode              InteractionMode `json:"mode"`
	Status            SessionStatus   `json:"status"`
	OverallScore      int             `json:"overallScore"`
	AnsweredQuestions int             `json:"answeredQuestions"`
	TotalQuestions    int             `json:"totalQuestions"`
	CreatedAt         time.Time       `json:"createdAt"`
	// 报表对应的会话版本，缓存命中时与库中版本比较
	Version int `json:"version"`
}

type UserProgress struct {
	TotalSessions          int              `json:"totalSessions"`
	CompletedSessions      int              `json:"completedSessions"`
	AverageScore           int              `json:"averageScore"`
	TotalQuestionsAnswered int              `json:"totalQuestionsAnswered"`
	Trend                  Trend            `json:"trend"`
	SkillBreakdown         SkillBreakdown   `json:"skillBreakdown"`
	LearningPath           LearningPath     `json:"learningPath"`
	Recommendations        []string         `json:"recommendations"`
	RecentSessions         []SessionSummary `json:"recentSessions"`
	Range                  TimeRange        `json:"range"`
	// 计算时 owner 会话集合的版本戳，见 SessionRepository.OwnerStamp
	DataVersion string `json:"dataVersion,omitempty"`
}

type ScorePoint struct {
	Index      int              `json:"index"`
	Score      int              `json:"score"`
	Category   QuestionCategory `json:"category"`
	Difficulty Difficulty       `json:"difficulty"`
	AnsweredAt time.Time        `json:"answeredAt"`
}

type SessionAnalytics struct {
	Session                SessionSummary         `json:"session"`
	PerformanceMetrics     PerformanceMetrics     `json:"performanceMetrics"`
	CategoryPerformance    CategoryPerformance    `json:"categoryPerformance"`
	DifficultyDistribution DifficultyDistribution `json:"difficultyDistribution"`
	ProgressInsights       ProgressInsights       `json:"progressInsights"`
	LearningPath           LearningPath           `json:"learningPath"`
	SkillBreakdown         SkillBreakdown         `json:"skillBreakdown"`
	ScoreTimeline          []ScorePoint           `json:"scoreTimeline"`
}
