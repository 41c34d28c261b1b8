package repository

import (
	"context"
	"errors"

	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"gorm.io/gorm"
)

type FolderRepository struct {
	*baseRepository
}

// siblingScope narrows a folder query to one location in the tree. A nil
// parent means the project root; null and non-null parents are distinct
// scopes, so the same name may appear under both.
func siblingScope(db *gorm.DB, projectID uint, parentFolderID *uint) *gorm.DB {
	db = db.Where("project_id = ?", projectID)
	if parentFolderID == nil {
		return db.Where("parent_folder_id IS NULL")
	}
	return db.Where("parent_folder_id = ?", *parentFolderID)
}

// Create validates that the parent (if any) lives in the same project and
// that no sibling carries the same name, then stores the folder.
func (fr FolderRepository) Create(ctx context.Context, tx *gorm.DB, folder *model.Folder) (*model.Folder, error) {
	fr.logger.Debugf("Create folder %s in project %d", folder.Name, folder.ProjectID)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if folder.ParentFolderID != nil {
		var parent model.Folder
		if err := db.WithContext(ctx).Model(&model.Folder{}).
			Where("id = ? AND project_id = ?", *folder.ParentFolderID, folder.ProjectID).
			First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
	}

	var count int64
	if err := siblingScope(db.WithContext(ctx).Model(&model.Folder{}), folder.ProjectID, folder.ParentFolderID).
		Where("name = ?", folder.Name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateFolderName
	}

	if err := db.WithContext(ctx).Model(&model.Folder{}).Create(folder).Error; err != nil {
		return nil, err
	}

	return folder, nil
}

func (fr FolderRepository) GetByID(ctx context.Context, tx *gorm.DB, folderID uint) (*model.Folder, error) {
	fr.logger.Debugf("Get folder %d", folderID)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var folder model.Folder
	if err := db.WithContext(ctx).Model(&model.Folder{}).First(&folder, folderID).Error; err != nil {
		return nil, err
	}

	return &folder, nil
}

type FolderResponse struct {
	model.Folder
	ImageCount     int64 `json:"imageCount"`
	SubfolderCount int64 `json:"subfolderCount"`
}

func (fr FolderRepository) countChildren(ctx context.Context, db *gorm.DB, folderID uint) (images int64, subfolders int64, err error) {
	if err = db.WithContext(ctx).Model(&model.Image{}).
		Where("folder_id = ?", folderID).
		Count(&images).Error; err != nil {
		return
	}
	err = db.WithContext(ctx).Model(&model.Folder{}).
		Where("parent_folder_id = ?", folderID).
		Count(&subfolders).Error
	return
}

func (fr FolderRepository) GetByIDWithCounts(ctx context.Context, tx *gorm.DB, folderID uint) (*FolderResponse, error) {
	folder, err := fr.GetByID(ctx, tx, folderID)
	if err != nil {
		return nil, err
	}

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	images, subfolders, err := fr.countChildren(ctx, db, folder.ID)
	if err != nil {
		return nil, err
	}

	return &FolderResponse{Folder: *folder, ImageCount: images, SubfolderCount: subfolders}, nil
}

func (fr FolderRepository) ListByProject(ctx context.Context, tx *gorm.DB, projectID uint) ([]FolderResponse, error) {
	fr.logger.Debugf("List folders of project %d", projectID)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var folders []model.Folder
	if err := db.WithContext(ctx).Model(&model.Folder{}).
		Where("project_id = ?", projectID).
		Order("name").
		Find(&folders).Error; err != nil {
		return nil, err
	}

	res := make([]FolderResponse, 0, len(folders))
	for _, folder := range folders {
		images, subfolders, err := fr.countChildren(ctx, db, folder.ID)
		if err != nil {
			return nil, err
		}
		res = append(res, FolderResponse{Folder: folder, ImageCount: images, SubfolderCount: subfolders})
	}

	return res, nil
}

// FolderUpdate carries the partial update; nil fields stay untouched.
// MoveToRoot moves the folder to the project root.
type FolderUpdate struct {
	Name           *string
	Description    *string
	ParentFolderID *uint
	MoveToRoot     bool
}

// Update renames or re-parents the folder. A new parent must live in the same
// project and must not be the folder itself; only this direct self-cycle is
// rejected, deeper cycles through descendants are not validated.
func (fr FolderRepository) Update(ctx context.Context, tx *gorm.DB, folderID uint, update FolderUpdate) (*model.Folder, error) {
	fr.logger.Debugf("Update folder %d", folderID)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	folder, err := fr.GetByID(ctx, tx, folderID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	targetParent := folder.ParentFolderID
	moved := false
	if update.MoveToRoot {
		targetParent = nil
		moved = true
		updates["parent_folder_id"] = nil
	} else if update.ParentFolderID != nil {
		if *update.ParentFolderID == folderID {
			return nil, ErrSelfParent
		}

		var parent model.Folder
		if err := db.WithContext(ctx).Model(&model.Folder{}).
			Where("id = ? AND project_id = ?", *update.ParentFolderID, folder.ProjectID).
			First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}

		targetParent = update.ParentFolderID
		moved = true
		updates["parent_folder_id"] = *update.ParentFolderID
	}

	targetName := folder.Name
	if update.Name != nil && *update.Name != folder.Name {
		targetName = *update.Name
		updates["name"] = *update.Name
	}

	if targetName != folder.Name || moved {
		var count int64
		if err := siblingScope(db.WithContext(ctx).Model(&model.Folder{}), folder.ProjectID, targetParent).
			Where("name = ? AND id != ?", targetName, folderID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrDuplicateFolderName
		}
	}

	if update.Description != nil {
		updates["description"] = *update.Description
	}

	if len(updates) > 0 {
		if err := db.WithContext(ctx).Model(&model.Folder{}).
			Where("id = ?", folderID).
			Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return fr.GetByID(ctx, tx, folderID)
}

// Delete removes the folder and re-parents everything underneath it to the
// folder's own parent (or the project root). Children are never deleted or
// orphaned.
func (fr FolderRepository) Delete(ctx context.Context, tx *gorm.DB, folderID uint) (imagesMoved int64, subfoldersMoved int64, err error) {
	fr.logger.Debugf("Delete folder %d", folderID)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	folder, err := fr.GetByID(ctx, tx, folderID)
	if err != nil {
		return 0, 0, err
	}

	err = fr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		var newParent any
		if folder.ParentFolderID != nil {
			newParent = *folder.ParentFolderID
		}

		res := tx.Model(&model.Image{}).
			Where("folder_id = ?", folderID).
			Update("folder_id", newParent)
		if res.Error != nil {
			return res.Error
		}
		imagesMoved = res.RowsAffected

		res = tx.Model(&model.Folder{}).
			Where("parent_folder_id = ?", folderID).
			Update("parent_folder_id", newParent)
		if res.Error != nil {
			return res.Error
		}
		subfoldersMoved = res.RowsAffected

		return tx.Delete(&model.Folder{}, folderID).Error
	})
	if err != nil {
		return 0, 0, err
	}

	return imagesMoved, subfoldersMoved, nil
}

// AssignImages assigns every image directly inside the folder to the given
// user, who must be a member of the folder's project.
func (fr FolderRepository) AssignImages(ctx context.Context, tx *gorm.DB, folderID, assignedUserID uint) (int64, error) {
	fr.logger.Debugf("Assign images of folder %d to user %d", folderID, assignedUserID)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	folder, err := fr.GetByID(ctx, tx, folderID)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", folder.ProjectID, assignedUserID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrNotProjectMember
	}

	res := db.WithContext(ctx).Model(&model.Image{}).
		Where("folder_id = ?", folderID).
		Update("assigned_user_id", assignedUserID)
	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}
