package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AnnotationRepository struct {
	*baseRepository
}

func (ar AnnotationRepository) Create(ctx context.Context, tx *gorm.DB, annotation *model.Annotation) (*model.Annotation, error) {
	ar.logger.Debugf("Create annotation on image %d by user %d", annotation.ImageID, annotation.UserID)

	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	annotation.Version = 1
	annotation.ReviewStatus = constant.ReviewStatusPending

	if err := db.WithContext(ctx).Model(&model.Annotation{}).Create(annotation).Error; err != nil {
		return nil, err
	}

	return annotation, nil
}

func (ar AnnotationRepository) GetByID(ctx context.Context, tx *gorm.DB, annotationID uint) (*model.Annotation, error) {
	ar.logger.Debugf("Get annotation %d", annotationID)

	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var annotation model.Annotation
	if err := db.WithContext(ctx).Model(&model.Annotation{}).First(&annotation, annotationID).Error; err != nil {
		return nil, err
	}

	return &annotation, nil
}

func (ar AnnotationRepository) ListByImage(ctx context.Context, tx *gorm.DB, imageID uint) ([]model.Annotation, error) {
	ar.logger.Debugf("List annotations of image %d", imageID)

	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var annotations []model.Annotation
	if err := db.WithContext(ctx).Model(&model.Annotation{}).
		Preload("User").
		Where("image_id = ?", imageID).
		Order("created_at").
		Find(&annotations).Error; err != nil {
		return nil, err
	}

	return annotations, nil
}

// ListByProject returns every annotation of the project with its image
// preloaded, for export.
func (ar AnnotationRepository) ListByProject(ctx context.Context, tx *gorm.DB, projectID uint) ([]model.Annotation, error) {
	ar.logger.Debugf("List annotations of project %d", projectID)

	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var annotations []model.Annotation
	if err := db.WithContext(ctx).Model(&model.Annotation{}).
		Preload("Image").
		Preload("User").
		Joins("JOIN images ON images.id = annotations.image_id").
		Where("images.project_id = ?", projectID).
		Order("annotations.image_id, annotations.created_at").
		Find(&annotations).Error; err != nil {
		return nil, err
	}

	return annotations, nil
}

// AnnotationUpdate carries the partial update; nil fields stay untouched.
type AnnotationUpdate struct {
	BoundingBoxes datatypes.JSON
	Tags          *string
}

// Update snapshots the current row into annotation_history, applies the
// changes and bumps the version, all in one transaction. History and the
// version counter move together or not at all.
func (ar AnnotationRepository) Update(ctx context.Context, tx *gorm.DB, annotationID, changedBy uint, update AnnotationUpdate) (*model.Annotation, error) {
	ar.logger.Debugf("Update annotation %d by user %d", annotationID, changedBy)

	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	annotation, err := ar.GetByID(ctx, tx, annotationID)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(annotation)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"version": gorm.Expr("version + 1"),
	}
	if update.BoundingBoxes != nil {
		updates["bounding_boxes"] = update.BoundingBoxes
	}
	if update.Tags != nil {
		updates["tags"] = *update.Tags
	}

	err = ar.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		now := time.Now()
		history := model.AnnotationHistory{
			AnnotationID: annotationID,
			DataSnapshot: datatypes.JSON(snapshot),
			ChangedBy:    changedBy,
			ChangedAt:    &now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		return tx.Model(&model.Annotation{}).
			Where("id = ?", annotationID).
			Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return ar.GetByID(ctx, tx, annotationID)
}

// Review records a review verdict without touching the version counter or
// writing history.
func (ar AnnotationRepository) Review(ctx context.Context, tx *gorm.DB, annotationID, reviewerID uint, status constant.ReviewStatus) (*model.Annotation, error) {
	ar.logger.Debugf("Review annotation %d by user %d", annotationID, reviewerID)

	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.Annotation{}).
		Where("id = ?", annotationID).
		Updates(map[string]any{
			"reviewer_id":   reviewerID,
			"review_status": status,
		}).Error; err != nil {
		return nil, err
	}

	return ar.GetByID(ctx, tx, annotationID)
}

func (ar AnnotationRepository) ListHistory(ctx context.Context, tx *gorm.DB, annotationID uint) ([]model.AnnotationHistory, error) {
	ar.logger.Debugf("List history of annotation %d", annotationID)

	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var history []model.AnnotationHistory
	if err := db.WithContext(ctx).Model(&model.AnnotationHistory{}).
		Where("annotation_id = ?", annotationID).
		Order("changed_at DESC").
		Find(&history).Error; err != nil {
		return nil, err
	}

	return history, nil
}

// Delete removes the annotation and its history.
func (ar AnnotationRepository) Delete(ctx context.Context, tx *gorm.DB, annotationID uint) error {
	ar.logger.Debugf("Delete annotation %d", annotationID)

	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return ar.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Where("annotation_id = ?", annotationID).
			Delete(&model.AnnotationHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Annotation{}, annotationID).Error
	})
}
