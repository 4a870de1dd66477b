package model

import (
	"fmt"
	"strings"
)

// QuestionCategory 题目类别，决定 categoryPerformance 的分桶
type QuestionCategory string

const (
	CategoryTechnical   QuestionCategory = "technical"
	CategoryBehavioral  QuestionCategory = "behavioral"
	CategorySituational QuestionCategory = "situational"
	CategoryGeneral     QuestionCategory = "general"
)

// QuestionCategories lists every category in reporting order.
var QuestionCategories = []QuestionCategory{CategoryTechnical, CategoryBehavioral, CategorySituational, CategoryGeneral}

func (c QuestionCategory) Valid() bool {
	switch c {
	case CategoryTechnical, CategoryBehavioral, CategorySituational, CategoryGeneral:
		return true
	}
	return false
}

func ParseQuestionCategory(s string) (QuestionCategory, error) {
	c := QuestionCategory(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return CategoryGeneral, nil
	}
	if !c.Valid() {
		return "", fmt.Errorf("unknown question category %q", s)
	}
	return c, nil
}

// Skill 技能维度，对应 performanceMetrics 中的三个子分数
type Skill string

const (
	SkillTechnical     Skill = "technical"
	SkillCommunication Skill = "communication"
	SkillBehavioral    Skill = "behavioral"
)

// Skills lists the skills in their fixed tie-break order.
var Skills = []Skill{SkillTechnical, SkillCommunication, SkillBehavioral}

func (s Skill) Valid() bool {
	switch s {
	case SkillTechnical, SkillCommunication, SkillBehavioral:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if d == "" {
		return DifficultyMedium, nil
	}
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

func (c ConfidenceLevel) Valid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

type InteractionMode string

const (
	ModeText  InteractionMode = "text"
	ModeVoice InteractionMode = "voice"
)

func ParseInteractionMode(s string) (InteractionMode, error) {
	m := InteractionMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case "":
		return ModeText, nil
	case ModeText, ModeVoice:
		return m, nil
	}
	return "", fmt.Errorf("unknown interaction mode %q", s)
}

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// Trend 趋势分类
type Trend string

const (
	TrendImproving      Trend = "improving"
	TrendStable         Trend = "stable"
	TrendDeclining      Trend = "declining"
	TrendNoPreviousData Trend = "no_previous_data"
)

type ProficiencyLevel string

const (
	LevelBeginner     ProficiencyLevel = "beginner"
	LevelIntermediate ProficiencyLevel = "intermediate"
	LevelAdvanced     ProficiencyLevel = "advanced"
	LevelExpert       ProficiencyLevel = "expert"
)
