package model

import (
	"time"

	"gorm.io/datatypes"
)

// MetricTally 运行平均数的精确累加值，平均分只在输出时取整
type MetricTally struct {
	Count         int `gorm:"default:0"`
	Overall       int `gorm:"default:0"`
	Communication int `gorm:"default:0"`
	Technical     int `gorm:"default:0"`
	Behavioral    int `gorm:"default:0"`
	Confidence    int `gorm:"default:0"`
}

type PerformanceMetrics struct {
	OverallScore       int `gorm:"default:0" json:"overallScore"`
	CommunicationScore int `gorm:"default:0" json:"communicationScore"`
	TechnicalScore     int `gorm:"default:0" json:"technicalScore"`
	BehavioralScore    int `gorm:"default:0" json:"behavioralScore"`
	ConfidenceScore    int `gorm:"default:0" json:"confidenceScore"`
	// 百分比变化，见 analytics.ImprovementRate
	ImprovementRate int `gorm:"default:0" json:"improvementRate"`

	Tally MetricTally `gorm:"embedded;embeddedPrefix:tally_" json:"-"`
}

// SkillScore returns the session-level score for a skill.
func (m PerformanceMetrics) SkillScore(s Skill) int {
	switch s {
	case SkillTechnical:
		return m.TechnicalScore
	case SkillCommunication:
		return m.CommunicationScore
	case SkillBehavioral:
		return m.BehavioralScore
	}
	return 0
}

type CategoryTally struct {
	TechnicalTotal   int `gorm:"default:0"`
	TechnicalCount   int `gorm:"default:0"`
	BehavioralTotal  int `gorm:"default:0"`
	BehavioralCount  int `gorm:"default:0"`
	SituationalTotal int `gorm:"default:0"`
	SituationalCount int `gorm:"default:0"`
	GeneralTotal     int `gorm:"default:0"`
	GeneralCount     int `gorm:"default:0"`
}

type CategoryPerformance struct {
	Technical   int `gorm:"default:0" json:"technical"`
	Behavioral  int `gorm:"default:0" json:"behavioral"`
	Situational int `gorm:"default:0" json:"situational"`
	General     int `gorm:"default:0" json:"general"`

	Tally CategoryTally `gorm:"embedded;embeddedPrefix:tally_" json:"-"`
}

// Score returns the running average for a category.
func (c CategoryPerformance) Score(cat QuestionCategory) int {
	switch cat {
	case CategoryTechnical:
		return c.Technical
	case CategoryBehavioral:
		return c.Behavioral
	case CategorySituational:
		return c.Situational
	case CategoryGeneral:
		return c.General
	}
	return 0
}

// Count returns how many records have been folded into a category.
func (c CategoryPerformance) Count(cat QuestionCategory) int {
	switch cat {
	case CategoryTechnical:
		return c.Tally.TechnicalCount
	case CategoryBehavioral:
		return c.Tally.BehavioralCount
	case CategorySituational:
		return c.Tally.SituationalCount
	case CategoryGeneral:
		return c.Tally.GeneralCount
	}
	return 0
}

type DifficultyDistribution struct {
	Easy   int `gorm:"default:0" json:"easy"`
	Medium int `gorm:"default:0" json:"medium"`
	Hard   int `gorm:"default:0" json:"hard"`
}

// ProgressInsights 派生字段，仅作缓存，可随时从 FeedbackRecord 重算
type ProgressInsights struct {
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	ImprovementAreas []string `json:"improvementAreas"`
	NextSteps        []string `json:"nextSteps"`
	ConfidenceTrend  Trend    `json:"confidenceTrend"`
	SkillGaps        []string `json:"skillGaps"`
	Recommendations  []string `json:"recommendations"`
}

type LearningPath struct {
	CurrentLevel          ProficiencyLevel `json:"currentLevel"`
	TargetLevel           ProficiencyLevel `json:"targetLevel"`
	EstimatedTimeToTarget string           `json:"estimatedTimeToTarget"`
	FocusAreas            []string         `json:"focusAreas"`
	PracticeExercises     []string         `json:"practiceExercises"`
}

// swagger:model InterviewSession
type InterviewSession struct {
	UUIDBase
	OwnerID           *string         `gorm:"size:64;index" json:"ownerId,omitempty"`
	JobTitle          string          `gorm:"size:255;not null" json:"jobTitle"`
	Mode              InteractionMode `gorm:"size:16;default:'text'" json:"mode"`
	Status            SessionStatus   `gorm:"size:16;default:'active'" json:"status"`
	TotalQuestions    int             `gorm:"default:0" json:"totalQuestions"`
	AnsweredQuestions int             `gorm:"default:0" json:"answeredQuestions"`

	PerformanceMetrics     PerformanceMetrics     `gorm:"embedded;embeddedPrefix:metrics_" json:"performanceMetrics"`
	CategoryPerformance    CategoryPerformance    `gorm:"embedded;embeddedPrefix:category_" json:"categoryPerformance"`
	DifficultyDistribution DifficultyDistribution `gorm:"embedded;embeddedPrefix:difficulty_" json:"difficultyDistribution"`

	ProgressInsights datatypes.JSONType[ProgressInsights] `json:"progressInsights"`
	LearningPath     datatypes.JSONType[LearningPath]     `json:"learningPath"`

	CompletedAt *time.Time `json:"completedAt,omitempty"`
	// 每次成功写入反馈时自增
	Version int `gorm:"default:0" json:"version"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}

// Insights returns the cached progress insights.
func (s *InterviewSession) Insights() ProgressInsights {
	return s.ProgressInsights.Data()
}

// Path returns the cached learning path.
func (s *InterviewSession) Path() LearningPath {
	return s.LearningPath.Data()
}

// Owner returns the owner id or "" for anonymous sessions.
func (s *InterviewSession) Owner() string {
	if s.OwnerID == nil {
		return ""
	}
	return *s.OwnerID
}
