package analytics

import (
	"cmp"
	"slices"

	"interview_prep_backend/internal/model"
)

// SortRecords returns a copy ordered by AnsweredAt, then ID. Storage order
// is never relied upon.
func SortRecords(records []model.FeedbackRecord) []model.FeedbackRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b model.FeedbackRecord) int {
		if c := a.AnsweredAt.Compare(b.AnsweredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// SortSessions returns a copy ordered by CreatedAt, then ID.
func SortSessions(sessions []model.InterviewSession) []model.InterviewSession {
	out := slices.Clone(sessions)
	slices.SortStableFunc(out, func(a, b model.InterviewSession) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// GroupRecords buckets records by session id, each bucket sorted.
func GroupRecords(records []model.FeedbackRecord) map[string][]model.FeedbackRecord {
	groups := make(map[string][]model.FeedbackRecord)
	for _, r := range SortRecords(records) {
		groups[r.SessionID] = append(groups[r.SessionID], r)
	}
	return groups
}
