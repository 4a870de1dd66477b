package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository is the Session Store.
type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// WithTx binds the repository to a transaction.
func (r *SessionRepository) WithTx(tx *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: tx}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.InterviewSession) error {
	return r.DB.WithContext(ctx).Create(session).Error
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*model.InterviewSession, error) {
	var session model.InterviewSession
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, notFound(err, util.ErrSessionNotFound)
	}
	return &session, nil
}

// LockByID reads the row with SELECT ... FOR UPDATE. Must be called inside
// a transaction; dialects without row locks fall back to a plain read.
func (r *SessionRepository) LockByID(ctx context.Context, id string) (*model.InterviewSession, error) {
	var session model.InterviewSession
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, notFound(err, util.ErrSessionNotFound)
	}
	return &session, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *model.InterviewSession) error {
	return r.DB.WithContext(ctx).Save(session).Error
}

// MarkCompleted sets status and completed_at once and bumps the version;
// later calls are no-ops.
func (r *SessionRepository) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.InterviewSession{}).
		Where("id = ? AND status <> ?", id, model.SessionCompleted).
		Updates(map[string]interface{}{
			"status":       model.SessionCompleted,
			"completed_at": at.UTC(),
			"version":      gorm.Expr("version + 1"),
		}).Error
}

// OwnerStamp summarises the owner's session set as "<count>:<sum of
// versions>". Creating a session or bumping any version changes it.
func (r *SessionRepository) OwnerStamp(ctx context.Context, ownerID string) (string, error) {
	var row struct {
		Sessions int64
		Versions int64
	}
	err := r.DB.WithContext(ctx).Model(&model.InterviewSession{}).
		Select("COUNT(*) AS sessions, COALESCE(SUM(version), 0) AS versions").
		Where("owner_id = ?", ownerID).
		Scan(&row).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d:%d", row.Sessions, row.Versions), nil
}

// FindByOwner returns the owner's sessions created inside tr, oldest first.
func (r *SessionRepository) FindByOwner(ctx context.Context, ownerID string, tr model.TimeRange) ([]model.InterviewSession, error) {
	var sessions []model.InterviewSession
	query := r.DB.WithContext(ctx).Where("owner_id = ?", ownerID)
	if !tr.Start.IsZero() {
		query = query.Where("created_at >= ?", tr.Start.UTC())
	}
	if !tr.End.IsZero() {
		query = query.Where("created_at < ?", tr.End.UTC())
	}
	err := query.Order("created_at asc").Order("id asc").Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListIDs pages through all session ids in id order.
func (r *SessionRepository) ListIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.InterviewSession{}).
		Where("id > ?", afterID).
		Order("id asc").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
