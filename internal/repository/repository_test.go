package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestRepo builds a Repository on a fresh in-memory sqlite database.
// Each test gets its own database, so tests stay independent.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Workspace{},
		&model.WorkspaceMember{},
		&model.Project{},
		&model.ProjectMember{},
		&model.Folder{},
		&model.Image{},
		&model.Annotation{},
		&model.AnnotationHistory{},
		&model.AuditLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewRepository(db, zap.NewNop().Sugar())
}

var testUserSeq int

func createTestUser(t *testing.T, repo *Repository) *model.User {
	t.Helper()

	testUserSeq++
	user, err := repo.User.Create(context.Background(), nil, &model.User{
		Email:        fmt.Sprintf("user%d@example.com", testUserSeq),
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     fmt.Sprintf("User%d", testUserSeq),
		Role:         constant.UserRoleUser,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

func createTestWorkspace(t *testing.T, repo *Repository, ownerID uint) *model.Workspace {
	t.Helper()

	workspace, err := repo.Workspace.Create(context.Background(), nil, &model.Workspace{
		Name:    "Test Workspace",
		OwnerID: ownerID,
	})
	if err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}

	return workspace
}

func createTestProject(t *testing.T, repo *Repository, workspaceID, ownerID uint) *model.Project {
	t.Helper()

	project, err := repo.Project.Create(context.Background(), nil, &model.Project{
		Name:        "Test Project",
		WorkspaceID: workspaceID,
		OwnerID:     ownerID,
	})
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	return project
}

func createTestImage(t *testing.T, repo *Repository, projectID uint, orthancID string, folderID *uint, uploaderID uint) *model.Image {
	t.Helper()

	image, err := repo.Image.Create(context.Background(), nil, &model.Image{
		OrthancID:  orthancID,
		Filename:   orthancID + ".dcm",
		ProjectID:  projectID,
		FolderID:   folderID,
		UploaderID: uploaderID,
	})
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}

	return image
}

func createTestAnnotation(t *testing.T, repo *Repository, imageID, userID uint) *model.Annotation {
	t.Helper()

	annotation, err := repo.Annotation.Create(context.Background(), nil, &model.Annotation{
		ImageID:       imageID,
		UserID:        userID,
		BoundingBoxes: datatypes.JSON(`[{"x":10,"y":20,"width":30,"height":40,"label":"nodule"}]`),
		Tags:          datatypes.JSON(`["chest"]`),
	})
	if err != nil {
		t.Fatalf("failed to create annotation: %v", err)
	}

	return annotation
}
