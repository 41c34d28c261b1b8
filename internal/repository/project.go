package repository

import (
	"context"
	"errors"
	"time"

	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	*baseRepository
}

// Create stores the project and inserts its owner membership row in one
// transaction. Workspace membership of the creator is the controller's
// concern.
func (pr ProjectRepository) Create(ctx context.Context, tx *gorm.DB, project *model.Project) (*model.Project, error) {
	pr.logger.Debugf("Create project with name: %s in workspace %d", project.Name, project.WorkspaceID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	err := pr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Model(&model.Project{}).Create(project).Error; err != nil {
			return err
		}

		now := time.Now()
		member := model.ProjectMember{
			ProjectID: project.ID,
			UserID:    project.OwnerID,
			Role:      constant.MemberRoleOwner,
			JoinedAt:  &now,
		}
		return tx.Model(&model.ProjectMember{}).Create(&member).Error
	})
	if err != nil {
		return project, err
	}

	return project, nil
}

// GetRoleOfProject is the membership resolver for projects: a direct lookup
// in project_members. Folder and image access derive from this; there is no
// per-folder or per-image role.
func (pr ProjectRepository) GetRoleOfProject(ctx context.Context, tx *gorm.DB, projectID, userID uint) (constant.MemberRole, error) {
	pr.logger.Debugf("Get role of project %d for user %d", projectID, userID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var member model.ProjectMember
	if err := db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return constant.MemberRoleNone, nil
		}
		return constant.MemberRoleNone, err
	}

	return member.Role, nil
}

// GetByIDForUser returns the project only if the user is a member; absence of
// membership surfaces as gorm.ErrRecordNotFound.
func (pr ProjectRepository) GetByIDForUser(ctx context.Context, tx *gorm.DB, projectID, userID uint) (*model.Project, error) {
	pr.logger.Debugf("Get project %d for user %d", projectID, userID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var project model.Project
	if err := db.WithContext(ctx).Model(&model.Project{}).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("projects.id = ? AND project_members.user_id = ?", projectID, userID).
		Preload("Owner").
		First(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// GetByID skips the membership filter. Used where the caller has already been
// authorized through another path.
func (pr ProjectRepository) GetByID(ctx context.Context, tx *gorm.DB, projectID uint) (*model.Project, error) {
	pr.logger.Debugf("Get project %d", projectID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var project model.Project
	if err := db.WithContext(ctx).Model(&model.Project{}).Preload("Owner").First(&project, projectID).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// ListForUser returns projects the user is a member of, optionally filtered
// to one workspace.
func (pr ProjectRepository) ListForUser(ctx context.Context, tx *gorm.DB, userID uint, workspaceID *uint) ([]model.Project, error) {
	pr.logger.Debugf("List projects for user %d", userID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	query := db.WithContext(ctx).Model(&model.Project{}).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", userID).
		Preload("Owner")

	if workspaceID != nil {
		query = query.Where("projects.workspace_id = ?", *workspaceID)
	}

	var projects []model.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

func (pr ProjectRepository) Update(ctx context.Context, tx *gorm.DB, projectID uint, updates map[string]any) (*model.Project, error) {
	pr.logger.Debugf("Update project %d with data: %v", projectID, updates)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ?", projectID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	return pr.GetByID(ctx, tx, projectID)
}

// Delete removes the project together with its folders, images, annotations
// and membership rows.
func (pr ProjectRepository) Delete(ctx context.Context, tx *gorm.DB, projectID uint) error {
	pr.logger.Debugf("Delete project %d", projectID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return pr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		var imageIDs []uint
		if err := tx.Model(&model.Image{}).
			Where("project_id = ?", projectID).
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

		if err := tx.Where("project_id = ?", projectID).Delete(&model.Image{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&model.Folder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&model.ProjectMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.Project{}, projectID).Error
	})
}

func (pr ProjectRepository) AddMember(ctx context.Context, tx *gorm.DB, projectID, userID uint, role constant.MemberRole) (*model.ProjectMember, error) {
	pr.logger.Debugf("Add member %d to project %d with role %s", userID, projectID, role)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var count int64
	if err := db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyMember
	}

	now := time.Now()
	member := model.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		JoinedAt:  &now,
	}
	if err := db.WithContext(ctx).Model(&model.ProjectMember{}).Create(&member).Error; err != nil {
		return nil, err
	}

	return &member, nil
}

// RemoveMember deletes a membership row. The owner row is protected
// regardless of who asks.
func (pr ProjectRepository) RemoveMember(ctx context.Context, tx *gorm.DB, projectID, userID uint) error {
	pr.logger.Debugf("Remove member %d from project %d", userID, projectID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var member model.ProjectMember
	if err := db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return err
	}

	if member.Role == constant.MemberRoleOwner {
		return ErrOwnerNotRemovable
	}

	return db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.ProjectMember{}).Error
}

func (pr ProjectRepository) ListMembers(ctx context.Context, tx *gorm.DB, projectID uint) ([]model.ProjectMember, error) {
	pr.logger.Debugf("List members of project %d", projectID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var members []model.ProjectMember
	if err := db.WithContext(ctx).Model(&model.ProjectMember{}).
		Where("project_id = ?", projectID).
		Preload("User").
		Find(&members).Error; err != nil {
		return nil, err
	}

	return members, nil
}

// AssignUnfiledImages assigns every image without a folder to the given user,
// who must already be a project member.
func (pr ProjectRepository) AssignUnfiledImages(ctx context.Context, tx *gorm.DB, projectID, assignedUserID uint) (int64, error) {
	pr.logger.Debugf("Assign unfiled images of project %d to user %d", projectID, assignedUserID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	role, err := pr.GetRoleOfProject(ctx, tx, projectID, assignedUserID)
	if err != nil {
		return 0, err
	}
	if role == constant.MemberRoleNone {
		return 0, ErrNotProjectMember
	}

	res := db.WithContext(ctx).Model(&model.Image{}).
		Where("project_id = ? AND folder_id IS NULL", projectID).
		Update("assigned_user_id", assignedUserID)
	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}
