package model

import (
	"time"

	"gorm.io/datatypes"
)

// DetailedFeedback 评估器返回的分项分数
type DetailedFeedback struct {
	Communication SubScore  `json:"communication"`
	Technical     SubScore  `json:"technical"`
	Behavioral    SubScore  `json:"behavioral"`
	Confidence    SubScore  `json:"confidence"`
	Strengths     []string  `json:"strengths"`
	Improvements  []string  `json:"improvements"`
	Sentiment     Sentiment `json:"sentiment"`
	Summary       string    `json:"summary,omitempty"`
}

type SubScore struct {
	Overall int `json:"overall"`
}

// swagger:model FeedbackRecord
type FeedbackRecord struct {
	ID               uint                                 `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID        string                               `gorm:"type:varchar(36);not null;index:idx_feedback_session_time,priority:1" json:"sessionId"`
	Question         string                               `gorm:"type:text" json:"question"`
	Answer           string                               `gorm:"type:text" json:"answer"`
	Score            int                                  `gorm:"not null" json:"score"`
	DetailedFeedback datatypes.JSONType[DetailedFeedback] `json:"detailedFeedback"`
	QuestionCategory QuestionCategory                     `gorm:"size:32;not null" json:"questionCategory"`
	Difficulty       Difficulty                           `gorm:"size:16;not null" json:"difficulty"`
	ConfidenceLevel  ConfidenceLevel                      `gorm:"size:16;not null" json:"confidenceLevel"`
	AnsweredAt       time.Time                            `gorm:"not null;index:idx_feedback_session_time,priority:2" json:"answeredAt"`
	CreatedAt        time.Time                            `json:"createdAt"`
}

func (FeedbackRecord) TableName() string {
	return "feedback_records"
}

// Detail returns the nested sub-scores.
func (r *FeedbackRecord) Detail() DetailedFeedback {
	return r.DetailedFeedback.Data()
}

// Evaluation 外部评估器的输出，可选字段为 nil 表示缺失
type Evaluation struct {
	Score           *float64        `json:"score"`
	Communication   *float64        `json:"communication,omitempty"`
	Technical       *float64        `json:"technical,omitempty"`
	Behavioral      *float64        `json:"behavioral,omitempty"`
	Confidence      *float64        `json:"confidence,omitempty"`
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel,omitempty"`
	Strengths       []string        `json:"strengths,omitempty"`
	Improvements    []string        `json:"improvements,omitempty"`
	Sentiment       Sentiment       `json:"sentiment,omitempty"`
	Feedback        string          `json:"feedback,omitempty"`
}
