package analytics

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"interview_prep_backend/internal/model"

	"gorm.io/datatypes"
)

// weaknessThreshold marks a question category as weak.
const weaknessThreshold = 60

// skillGapThreshold marks a skill as a gap.
const skillGapThreshold = 70

// Derive rebuilds every derived field of a session from its records:
// improvement rate, progress insights and learning path. The previous
// cached values are never consulted.
func (e *Engine) Derive(s model.InterviewSession, records []model.FeedbackRecord) model.InterviewSession {
	t := e.Tunables()
	ordered := SortRecords(records)

	s.PerformanceMetrics.ImprovementRate = ImprovementRate(scoresOf(ordered))

	insights := model.ProgressInsights{
		Strengths:        recentUnique(ordered, func(d model.DetailedFeedback) []string { return d.Strengths }, t.InsightListCap),
		ImprovementAreas: recentUnique(ordered, func(d model.DetailedFeedback) []string { return d.Improvements }, t.InsightListCap),
		Weaknesses:       weakCategories(s.CategoryPerformance, t.InsightListCap),
		SkillGaps:        skillGaps(s.PerformanceMetrics, t.InsightListCap),
		ConfidenceTrend:  classifyTrend(confidenceSeries(ordered), t.TrendThreshold),
	}
	// focus areas read the improvement areas just computed
	s.ProgressInsights = datatypes.NewJSONType(insights)

	single := []model.InterviewSession{s}
	b := breakdown(single, t.TrendThreshold)
	path := GeneratePath(s.PerformanceMetrics.OverallScore, b)

	insights.Recommendations = capList(Recommend(single, b), t.InsightListCap)
	insights.NextSteps = capList(nextSteps(path), t.InsightListCap)

	s.ProgressInsights = datatypes.NewJSONType(insights)
	s.LearningPath = datatypes.NewJSONType(path)
	return s
}

// Derive uses the default engine.
func Derive(s model.InterviewSession, records []model.FeedbackRecord) model.InterviewSession {
	return Default().Derive(s, records)
}

// Rebuild replays records into a fresh aggregate and derives insights,
// the batch counterpart of ApplyFeedback followed by Derive.
func (e *Engine) Rebuild(s model.InterviewSession, records []model.FeedbackRecord) (model.InterviewSession, error) {
	s, err := Recompute(s, records)
	if err != nil {
		return s, err
	}
	return e.Derive(s, records), nil
}

// ImprovementRate is the percentage change of the second-half mean over
// the first-half mean, split like ClassifyTrend. It is 0 for fewer than two
// values or a zero first-half mean.
func ImprovementRate(scores []int) int {
	if len(scores) < 2 {
		return 0
	}
	values := intsToFloats(scores)
	mid := (len(values) + 1) / 2
	first, second := mean(values[:mid]), mean(values[mid:])
	if first == 0 {
		return 0
	}
	return int(math.Round((second - first) / first * 100))
}

func scoresOf(records []model.FeedbackRecord) []int {
	out := make([]int, len(records))
	for i := range records {
		out[i] = records[i].Score
	}
	return out
}

func confidenceSeries(records []model.FeedbackRecord) []float64 {
	out := make([]float64, len(records))
	for i := range records {
		out[i] = float64(records[i].Detail().Confidence.Overall)
	}
	return out
}

// recentUnique walks records newest first and collects distinct items.
func recentUnique(records []model.FeedbackRecord, pick func(model.DetailedFeedback) []string, limit int) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := len(records) - 1; i >= 0 && len(out) < limit; i-- {
		for _, item := range pick(records[i].Detail()) {
			if _, ok := seen[item]; ok || item == "" {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func weakCategories(c model.CategoryPerformance, limit int) []string {
	type entry struct {
		cat   model.QuestionCategory
		score int
	}
	var weak []entry
	for _, cat := range model.QuestionCategories {
		if c.Count(cat) > 0 && c.Score(cat) < weaknessThreshold {
			weak = append(weak, entry{cat, c.Score(cat)})
		}
	}
	slices.SortStableFunc(weak, func(a, b entry) int { return cmp.Compare(a.score, b.score) })

	out := []string{}
	for _, w := range weak {
		out = append(out, string(w.cat))
	}
	return capList(out, limit)
}

func skillGaps(m model.PerformanceMetrics, limit int) []string {
	type entry struct {
		skill model.Skill
		score int
	}
	var gaps []entry
	for _, s := range model.Skills {
		if v := m.SkillScore(s); m.Tally.Count > 0 && v < skillGapThreshold {
			gaps = append(gaps, entry{s, v})
		}
	}
	slices.SortStableFunc(gaps, func(a, b entry) int { return cmp.Compare(a.score, b.score) })

	out := []string{}
	for _, g := range gaps {
		out = append(out, string(g.skill))
	}
	return capList(out, limit)
}

func nextSteps(path model.LearningPath) []string {
	out := make([]string, 0, len(path.FocusAreas)+1)
	for _, area := range path.FocusAreas {
		if area == generalImprovement {
			out = append(out, "Keep practicing across all question categories.")
			continue
		}
		out = append(out, fmt.Sprintf("Practice more %s questions.", area))
	}
	out = append(out, fmt.Sprintf("Work towards %s level.", path.TargetLevel))
	return out
}

func capList(items []string, limit int) []string {
	if items == nil {
		return []string{}
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
