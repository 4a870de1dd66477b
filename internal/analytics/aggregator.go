package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"

	"gorm.io/datatypes"
)

// RecordInput is everything about an answer except its evaluation.
type RecordInput struct {
	SessionID  string
	Question   string
	Answer     string
	Category   model.QuestionCategory
	Difficulty model.Difficulty
	AnsweredAt time.Time
}

// BuildRecord normalises an evaluator result into an immutable FeedbackRecord.
// Missing sub-scores default to the raw score and a missing confidence level
// defaults to medium. A missing or out-of-range score is rejected.
func BuildRecord(in RecordInput, eval model.Evaluation) (model.FeedbackRecord, error) {
	if strings.TrimSpace(in.SessionID) == "" {
		return model.FeedbackRecord{}, util.InvalidInput("session id is required")
	}
	if !in.Category.Valid() {
		return model.FeedbackRecord{}, util.InvalidInput(fmt.Sprintf("unknown question category %q", in.Category))
	}
	if !in.Difficulty.Valid() {
		return model.FeedbackRecord{}, util.InvalidInput(fmt.Sprintf("unknown difficulty %q", in.Difficulty))
	}
	if eval.Score == nil {
		return model.FeedbackRecord{}, util.IncompleteRecord("score is missing")
	}
	raw := *eval.Score
	if math.IsNaN(raw) || raw < 0 || raw > 100 {
		return model.FeedbackRecord{}, util.IncompleteRecord(fmt.Sprintf("score %v outside [0,100]", raw))
	}
	score := int(math.Round(raw))

	level := eval.ConfidenceLevel
	if !level.Valid() {
		level = model.ConfidenceMedium
	}
	sentiment := eval.Sentiment
	if !sentiment.Valid() {
		sentiment = model.SentimentNeutral
	}

	at := in.AnsweredAt
	if at.IsZero() {
		at = time.Now()
	}

	detail := model.DetailedFeedback{
		Communication: model.SubScore{Overall: subScore(eval.Communication, score)},
		Technical:     model.SubScore{Overall: subScore(eval.Technical, score)},
		Behavioral:    model.SubScore{Overall: subScore(eval.Behavioral, score)},
		Confidence:    model.SubScore{Overall: subScore(eval.Confidence, score)},
		Strengths:     cleanList(eval.Strengths),
		Improvements:  cleanList(eval.Improvements),
		Sentiment:     sentiment,
		Summary:       strings.TrimSpace(eval.Feedback),
	}

	return model.FeedbackRecord{
		SessionID:        in.SessionID,
		Question:         in.Question,
		Answer:           in.Answer,
		Score:            score,
		DetailedFeedback: datatypes.NewJSONType(detail),
		QuestionCategory: in.Category,
		Difficulty:       in.Difficulty,
		ConfidenceLevel:  level,
		AnsweredAt:       at,
	}, nil
}

// subScore clamps an optional sub-score, falling back to the raw score.
func subScore(v *float64, fallback int) int {
	if v == nil || math.IsNaN(*v) {
		return fallback
	}
	return int(math.Round(math.Max(0, math.Min(100, *v))))
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// ApplyFeedback folds the n-th record into a session that already reflects
// n-1 records. Each metric follows
//
//	avg_n = round((avg_{n-1} * (n-1) + v) / n)
//
// with avg_{n-1} carried exactly as a running total, so the published
// average always equals round(mean) over all n records.
func ApplyFeedback(s model.InterviewSession, r model.FeedbackRecord) (model.InterviewSession, error) {
	if r.SessionID != s.ID {
		return s, util.InvalidInput(fmt.Sprintf("record belongs to session %q, not %q", r.SessionID, s.ID))
	}
	if r.Score < 0 || r.Score > 100 {
		return s, util.IncompleteRecord(fmt.Sprintf("score %d outside [0,100]", r.Score))
	}
	if !r.QuestionCategory.Valid() {
		return s, util.InvalidInput(fmt.Sprintf("unknown question category %q", r.QuestionCategory))
	}
	if s.AnsweredQuestions >= s.TotalQuestions {
		return s, util.ErrSessionComplete
	}

	d := r.Detail()
	m := &s.PerformanceMetrics
	m.Tally.Count++
	m.Tally.Overall += r.Score
	m.Tally.Communication += d.Communication.Overall
	m.Tally.Technical += d.Technical.Overall
	m.Tally.Behavioral += d.Behavioral.Overall
	m.Tally.Confidence += d.Confidence.Overall

	n := m.Tally.Count
	m.OverallScore = roundDiv(m.Tally.Overall, n)
	m.CommunicationScore = roundDiv(m.Tally.Communication, n)
	m.TechnicalScore = roundDiv(m.Tally.Technical, n)
	m.BehavioralScore = roundDiv(m.Tally.Behavioral, n)
	m.ConfidenceScore = roundDiv(m.Tally.Confidence, n)

	applyCategory(&s.CategoryPerformance, r.QuestionCategory, r.Score)

	s.AnsweredQuestions++
	return s, nil
}

func applyCategory(c *model.CategoryPerformance, cat model.QuestionCategory, v int) {
	t := &c.Tally
	switch cat {
	case model.CategoryTechnical:
		t.TechnicalTotal += v
		t.TechnicalCount++
		c.Technical = roundDiv(t.TechnicalTotal, t.TechnicalCount)
	case model.CategoryBehavioral:
		t.BehavioralTotal += v
		t.BehavioralCount++
		c.Behavioral = roundDiv(t.BehavioralTotal, t.BehavioralCount)
	case model.CategorySituational:
		t.SituationalTotal += v
		t.SituationalCount++
		c.Situational = roundDiv(t.SituationalTotal, t.SituationalCount)
	case model.CategoryGeneral:
		t.GeneralTotal += v
		t.GeneralCount++
		c.General = roundDiv(t.GeneralTotal, t.GeneralCount)
	}
}

// Recompute rebuilds metrics and category performance from scratch by
// replaying every record in chronological order.
func Recompute(s model.InterviewSession, records []model.FeedbackRecord) (model.InterviewSession, error) {
	s.PerformanceMetrics = model.PerformanceMetrics{}
	s.CategoryPerformance = model.CategoryPerformance{}
	s.AnsweredQuestions = 0

	var err error
	for _, r := range SortRecords(records) {
		if s, err = ApplyFeedback(s, r); err != nil {
			return s, fmt.Errorf("replay record %d: %w", r.ID, err)
		}
	}
	return s, nil
}

func roundDiv(total, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(n)))
}
