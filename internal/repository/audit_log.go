package repository

import (
	"context"

	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"gorm.io/gorm"
)

type AuditLogRepository struct {
	*baseRepository
}

// Record writes an audit row. Destructive endpoints call this after the fact;
// a failed write is logged but never fails the request.
func (alr AuditLogRepository) Record(ctx context.Context, tx *gorm.DB, log *model.AuditLog) {
	alr.logger.Debugf("Record audit action %s on %s %d", log.Action, log.TargetType, log.TargetID)

	db := alr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.AuditLog{}).Create(log).Error; err != nil {
		alr.logger.Errorf("Failed to record audit action %s: %v", log.Action, err)
	}
}

func (alr AuditLogRepository) List(ctx context.Context, tx *gorm.DB, targetType string, targetID uint, limit int) ([]model.AuditLog, error) {
	alr.logger.Debugf("List audit logs of %s %d", targetType, targetID)

	db := alr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var logs []model.AuditLog
	if err := db.WithContext(ctx).Model(&model.AuditLog{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}

	return logs, nil
}
