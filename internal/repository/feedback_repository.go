package repository

import (
	"context"

	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"

	"gorm.io/gorm"
)

// FeedbackRepository is the append-only Feedback Log Store. Records are
// never updated or deleted.
type FeedbackRepository struct {
	DB *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{DB: db}
}

func (r *FeedbackRepository) WithTx(tx *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{DB: tx}
}

// Append persists the record and fills in its id.
func (r *FeedbackRepository) Append(ctx context.Context, record *model.FeedbackRecord) error {
	return r.DB.WithContext(ctx).Create(record).Error
}

func (r *FeedbackRepository) FindByID(ctx context.Context, id uint) (*model.FeedbackRecord, error) {
	var record model.FeedbackRecord
	if err := r.DB.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, notFound(err, util.ErrFeedbackNotFound)
	}
	return &record, nil
}

func (r *FeedbackRepository) FindBySessionID(ctx context.Context, sessionID string) ([]model.FeedbackRecord, error) {
	return r.FindBySessionIDs(ctx, []string{sessionID})
}

// FindBySessionIDs returns records ordered by answered_at, then id.
func (r *FeedbackRepository) FindBySessionIDs(ctx context.Context, sessionIDs []string) ([]model.FeedbackRecord, error) {
	records := []model.FeedbackRecord{}
	if len(sessionIDs) == 0 {
		return records, nil
	}
	err := r.DB.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Order("answered_at asc").
		Order("id asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *FeedbackRepository) CountBySessionID(ctx context.Context, sessionID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.FeedbackRecord{}).Where("session_id = ?", sessionID).Count(&n).Error
	return n, err
}
