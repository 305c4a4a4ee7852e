package chat

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListMessages returns all transcript rows for the session in insertion
// order. An unknown session yields an empty slice, not an error.
func (r *Repo) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// PurgeByRolePrefix bulk-deletes rows matching role and content prefix.
// Idempotent: an empty match set is not an error.
func (r *Repo) PurgeByRolePrefix(ctx context.Context, sessionID, role, prefix string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ? AND role = ? AND content LIKE ?", sessionID, role, prefix+"%").
		Delete(&Message{}).Error
}

func (r *Repo) InsertFileContext(ctx context.Context, fc *FileContext) error {
	return r.db.WithContext(ctx).Create(fc).Error
}

func (r *Repo) ListFileContexts(ctx context.Context, sessionID string) ([]FileContext, error) {
	var fcs []FileContext
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&fcs).Error; err != nil {
		return nil, err
	}
	return fcs, nil
}

func (r *Repo) DeleteFileContexts(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&FileContext{}).Error
}
