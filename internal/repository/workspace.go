package repository

import (
	"context"
	"errors"
	"time"

	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"gorm.io/gorm"
)

type WorkspaceRepository struct {
	*baseRepository
}

// Create stores the workspace and inserts its owner membership row in one
// transaction, so a workspace can never exist without an owner member.
func (wr WorkspaceRepository) Create(ctx context.Context, tx *gorm.DB, workspace *model.Workspace) (*model.Workspace, error) {
	wr.logger.Debugf("Create workspace with name: %s", workspace.Name)

	db := wr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	err := wr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Model(&model.Workspace{}).Create(workspace).Error; err != nil {
			return err
		}

		now := time.Now()
		member := model.WorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      workspace.OwnerID,
			Role:        constant.MemberRoleOwner,
			JoinedAt:    &now,
		}
		return tx.Model(&model.WorkspaceMember{}).Create(&member).Error
	})
	if err != nil {
		return workspace, err
	}

	return workspace, nil
}

// GetRoleOfWorkspace is the membership resolver for workspaces: a direct
// lookup in workspace_members. MemberRoleNone means no row exists.
func (wr WorkspaceRepository) GetRoleOfWorkspace(ctx context.Context, tx *gorm.DB, workspaceID, userID uint) (constant.MemberRole, error) {
	wr.logger.Debugf("Get role of workspace %d for user %d", workspaceID, userID)

	db := wr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var member model.WorkspaceMember
	if err := db.WithContext(ctx).Model(&model.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return constant.MemberRoleNone, nil
		}
		return constant.MemberRoleNone, err
	}

	return member.Role, nil
}

// GetByIDForUser returns the workspace only if the user is a member.
// Absence of membership surfaces as gorm.ErrRecordNotFound so handlers do not
// leak existence.
func (wr WorkspaceRepository) GetByIDForUser(ctx context.Context, tx *gorm.DB, workspaceID, userID uint) (*model.Workspace, error) {
	wr.logger.Debugf("Get workspace %d for user %d", workspaceID, userID)

	db := wr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var workspace model.Workspace
	if err := db.WithContext(ctx).Model(&model.Workspace{}).
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspaces.id = ? AND workspace_members.user_id = ?", workspaceID, userID).
		Preload("Owner").
		First(&workspace).Error; err != nil {
		return nil, err
	}

	return &workspace, nil
}

type WorkspaceResponse struct {
	model.Workspace
	MembersCount  int64 `json:"membersCount"`
	ProjectsCount int64 `json:"projectsCount"`
}

// ListForUser returns every workspace the user is a member of, enriched with
// member and project counts.
func (wr WorkspaceRepository) ListForUser(ctx context.Context, tx *gorm.DB, userID uint) ([]WorkspaceResponse, error) {
	wr.logger.Debugf("List workspaces for user %d", userID)

	db := wr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var workspaces []model.Workspace
	if err := db.WithContext(ctx).Model(&model.Workspace{}).
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspace_members.user_id = ?", userID).
		Preload("Owner").
		Find(&workspaces).Error; err != nil {
		return nil, err
	}

	res := make([]WorkspaceResponse, 0, len(workspaces))
	for _, workspace := range workspaces {
		var membersCount, projectsCount int64
		if err := db.WithContext(ctx).Model(&model.WorkspaceMember{}).
			Where("workspace_id = ?", workspace.ID).
			Count(&membersCount).Error; err != nil {
			return nil, err
		}
		if err := db.WithContext(ctx).Model(&model.Project{}).
			Where("workspace_id = ?", workspace.ID).
			Count(&projectsCount).Error; err != nil {
			return nil, err
		}

		res = append(res, WorkspaceResponse{
			Workspace:     workspace,
			MembersCount:  membersCount,
			ProjectsCount: projectsCount,
		})
	}

	return res, nil
}

func (wr WorkspaceRepository) Update(ctx context.Context, tx *gorm.DB, workspaceID uint, updates map[string]any) (*model.Workspace, error) {
	wr.logger.Debugf("Update workspace %d with data: %v", workspaceID, updates)

	db := wr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.Workspace{}).
		Where("id = ?", workspaceID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	var workspace model.Workspace
	if err := db.WithContext(ctx).Model(&model.Workspace{}).Preload("Owner").First(&workspace, workspaceID).Error; err != nil {
		return nil, err
	}

	return &workspace, nil
}

// Delete removes the workspace and everything it owns: projects with their
// folders, images, annotations and membership rows.
func (wr WorkspaceRepository) Delete(ctx context.Context, tx *gorm.DB, workspaceID uint) error {
	wr.logger.Debugf("Delete workspace %d", workspaceID)

	db := wr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return wr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		var projectIDs []uint
		if err := tx.Model(&model.Project{}).
			Where("workspace_id = ?", workspaceID).
			Pluck("id", &projectIDs).Error; err != nil {
			return err
		}

		if len(projectIDs) > 0 {
			var imageIDs []uint
			if err := tx.Model(&model.Image{}).
				Where("project_id IN ?", projectIDs).
				Pluck("id", &imageIDs).Error; err != nil {
				return err
			}

			if len(imageIDs) > 0 {
				var annotationIDs []uint
				if err := tx.Model(&model.Annotation{}).
					Where("image_id IN ?", imageIDs).
					Pluck("id", &annotationIDs).Error; err != nil {
					return err
				}
				if len(annotationIDs) > 0 {
					if err := tx.Where("annotation_id IN ?", annotationIDs).Delete(&model.AnnotationHistory{}).Error; err != nil {
						return err
					}
				}
				if err := tx.Where("image_id IN ?", imageIDs).Delete(&model.Annotation{}).Error; err != nil {
					return err
				}
			}

			if err := tx.Where("project_id IN ?", projectIDs).Delete(&model.Image{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id IN ?", projectIDs).Delete(&model.Folder{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id IN ?", projectIDs).Delete(&model.ProjectMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("workspace_id = ?", workspaceID).Delete(&model.Project{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&model.WorkspaceMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.Workspace{}, workspaceID).Error
	})
}

func (wr WorkspaceRepository) AddMember(ctx context.Context, tx *gorm.DB, workspaceID, userID uint, role constant.MemberRole) (*model.WorkspaceMember, error) {
	wr.logger.Debugf("Add member %d to workspace %d with role %s", userID, workspaceID, role)

	db := wr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var count int64
	if err := db.WithContext(ctx).Model(&model.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyMember
	}

	now := time.Now()
	member := model.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		JoinedAt:    &now,
	}
	if err := db.WithContext(ctx).Model(&model.WorkspaceMember{}).Create(&member).Error; err != nil {
		return nil, err
	}

	return &member, nil
}

// RemoveMember deletes a membership row. The owner row is protected
// regardless of who asks.
func (wr WorkspaceRepository) RemoveMember(ctx context.Context, tx *gorm.DB, workspaceID, userID uint) error {
	wr.logger.Debugf("Remove member %d from workspace %d", userID, workspaceID)

	db := wr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var member model.WorkspaceMember
	if err := db.WithContext(ctx).Model(&model.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error; err != nil {
		return err
	}

	if member.Role == constant.MemberRoleOwner {
		return ErrOwnerNotRemovable
	}

	return db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Delete(&model.WorkspaceMember{}).Error
}

func (wr WorkspaceRepository) ListMembers(ctx context.Context, tx *gorm.DB, workspaceID uint) ([]model.WorkspaceMember, error) {
	wr.logger.Debugf("List members of workspace %d", workspaceID)

	db := wr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var members []model.WorkspaceMember
	if err := db.WithContext(ctx).Model(&model.WorkspaceMember{}).
		Where("workspace_id = ?", workspaceID).
		Preload("User").
		Find(&members).Error; err != nil {
		return nil, err
	}

	return members, nil
}
