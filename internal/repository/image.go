package repository

import (
	"context"
	"errors"

	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ImageRepository struct {
	*baseRepository
}

// imageScope narrows a query to one storage location. The same Orthanc
// instance may exist in several projects, or in several folders of one
// project, but not twice in the same place.
func imageScope(db *gorm.DB, orthancID string, projectID uint, folderID *uint) *gorm.DB {
	db = db.Where("orthanc_id = ? AND project_id = ?", orthancID, projectID)
	if folderID == nil {
		return db.Where("folder_id IS NULL")
	}
	return db.Where("folder_id = ?", *folderID)
}

func (ir ImageRepository) Create(ctx context.Context, tx *gorm.DB, image *model.Image) (*model.Image, error) {
	ir.logger.Debugf("Create image %s in project %d", image.Filename, image.ProjectID)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if image.FolderID != nil {
		var folder model.Folder
		if err := db.WithContext(ctx).Model(&model.Folder{}).
			Where("id = ? AND project_id = ?", *image.FolderID, image.ProjectID).
			First(&folder).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
	}

	var count int64
	if err := imageScope(db.WithContext(ctx).Model(&model.Image{}), image.OrthancID, image.ProjectID, image.FolderID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateImage
	}

	if err := db.WithContext(ctx).Model(&model.Image{}).Create(image).Error; err != nil {
		return nil, err
	}

	return image, nil
}

// GetByIDForUser returns the image only when the user belongs to its project.
// An image outside the user's projects is indistinguishable from a missing
// one, both come back as gorm.ErrRecordNotFound.
func (ir ImageRepository) GetByIDForUser(ctx context.Context, tx *gorm.DB, imageID, userID uint) (*model.Image, error) {
	ir.logger.Debugf("Get image %d for user %d", imageID, userID)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var image model.Image
	if err := db.WithContext(ctx).Model(&model.Image{}).
		Joins("JOIN project_members pm ON pm.project_id = images.project_id AND pm.user_id = ?", userID).
		Where("images.id = ?", imageID).
		First(&image).Error; err != nil {
		return nil, err
	}

	return &image, nil
}

func (ir ImageRepository) GetByID(ctx context.Context, tx *gorm.DB, imageID uint) (*model.Image, error) {
	ir.logger.Debugf("Get image %d", imageID)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var image model.Image
	if err := db.WithContext(ctx).Model(&model.Image{}).First(&image, imageID).Error; err != nil {
		return nil, err
	}

	return &image, nil
}

// ImageFilter narrows List. A nil field means no filter on it; RootOnly
// restricts to unfiled images and wins over FolderID.
type ImageFilter struct {
	ProjectID      *uint
	FolderID       *uint
	RootOnly       bool
	AssignedUserID *uint
}

// List returns images of projects the user belongs to, newest first.
func (ir ImageRepository) List(ctx context.Context, tx *gorm.DB, userID uint, filter ImageFilter, page, pageSize int) ([]model.Image, int64, error) {
	ir.logger.Debugf("List images for user %d", userID)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	query := db.WithContext(ctx).Model(&model.Image{}).
		Joins("JOIN project_members pm ON pm.project_id = images.project_id AND pm.user_id = ?", userID)

	if filter.ProjectID != nil {
		query = query.Where("images.project_id = ?", *filter.ProjectID)
	}
	if filter.RootOnly {
		query = query.Where("images.folder_id IS NULL")
	} else if filter.FolderID != nil {
		query = query.Where("images.folder_id = ?", *filter.FolderID)
	}
	if filter.AssignedUserID != nil {
		query = query.Where("images.assigned_user_id = ?", *filter.AssignedUserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var images []model.Image
	if err := query.Order("images.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&images).Error; err != nil {
		return nil, 0, err
	}

	return images, total, nil
}

// ImageUpdate carries the partial update; nil fields stay untouched.
// MoveToRoot moves the image out of its folder.
type ImageUpdate struct {
	Filename       *string
	FolderID       *uint
	MoveToRoot     bool
	AssignedUserID *uint
}

// Update moves or re-assigns the image. A target folder must belong to the
// same project, an assignee must be a project member, and a move must not
// land on a duplicate of the same Orthanc instance.
func (ir ImageRepository) Update(ctx context.Context, tx *gorm.DB, imageID uint, update ImageUpdate) (*model.Image, error) {
	ir.logger.Debugf("Update image %d", imageID)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	image, err := ir.GetByID(ctx, tx, imageID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	targetFolder := image.FolderID
	moved := false
	if update.MoveToRoot {
		targetFolder = nil
		moved = true
		updates["folder_id"] = nil
	} else if update.FolderID != nil {
		var folder model.Folder
		if err := db.WithContext(ctx).Model(&model.Folder{}).
			Where("id = ? AND project_id = ?", *update.FolderID, image.ProjectID).
			First(&folder).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		targetFolder = update.FolderID
		moved = true
		updates["folder_id"] = *update.FolderID
	}

	if moved {
		var count int64
		if err := imageScope(db.WithContext(ctx).Model(&model.Image{}), image.OrthancID, image.ProjectID, targetFolder).
			Where("id != ?", imageID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrDuplicateImage
		}
	}

	if update.AssignedUserID != nil {
		var count int64
		if err := db.WithContext(ctx).Model(&model.ProjectMember{}).
			Where("project_id = ? AND user_id = ?", image.ProjectID, *update.AssignedUserID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrNotProjectMember
		}
		updates["assigned_user_id"] = *update.AssignedUserID
	}

	if update.Filename != nil {
		updates["filename"] = *update.Filename
	}

	if len(updates) > 0 {
		if err := db.WithContext(ctx).Model(&model.Image{}).
			Where("id = ?", imageID).
			Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return ir.GetByID(ctx, tx, imageID)
}

func (ir ImageRepository) SetThumbnailURL(ctx context.Context, tx *gorm.DB, imageID uint, url string) error {
	ir.logger.Debugf("Set thumbnail of image %d", imageID)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.Image{}).
		Where("id = ?", imageID).
		Update("thumbnail_url", url).Error
}

func (ir ImageRepository) SetDicomMetadata(ctx context.Context, tx *gorm.DB, imageID uint, metadata datatypes.JSON) error {
	ir.logger.Debugf("Set metadata of image %d", imageID)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.Image{}).
		Where("id = ?", imageID).
		Update("dicom_metadata", metadata).Error
}

// Delete removes the image together with its annotations and their history.
func (ir ImageRepository) Delete(ctx context.Context, tx *gorm.DB, imageID uint) error {
	ir.logger.Debugf("Delete image %d", imageID)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return ir.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		var annotationIDs []uint
		if err := tx.Model(&model.Annotation{}).
			Where("image_id = ?", imageID).
			Pluck("id", &annotationIDs).Error; err != nil {
			return err
		}

		if len(annotationIDs) > 0 {
			if err := tx.Where("annotation_id IN ?", annotationIDs).
				Delete(&model.AnnotationHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("image_id = ?", imageID).
				Delete(&model.Annotation{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&model.Image{}, imageID).Error
	})
}

// CountByOrthancID reports how many images still reference the Orthanc
// instance. The caller only evicts the instance from Orthanc when this
// drops to zero.
func (ir ImageRepository) CountByOrthancID(ctx context.Context, tx *gorm.DB, orthancID string) (int64, error) {
	ir.logger.Debugf("Count images of orthanc instance %s", orthancID)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var count int64
	err := db.WithContext(ctx).Model(&model.Image{}).
		Where("orthanc_id = ?", orthancID).
		Count(&count).Error
	return count, err
}
