package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
)

func createTestFolder(t *testing.T, repo *Repository, projectID uint, name string, parentID *uint) *model.Folder {
	t.Helper()

	folder, err := repo.Folder.Create(context.Background(), nil, &model.Folder{
		Name:           name,
		ProjectID:      projectID,
		ParentFolderID: parentID,
	})
	if err != nil {
		t.Fatalf("failed to create folder %s: %v", name, err)
	}

	return folder
}

func TestFolderSiblingNameUniqueness(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)
	other := createTestProject(t, repo, workspace.ID, owner.ID)

	parent := createTestFolder(t, repo, project.ID, "Chest", nil)

	tests := []struct {
		name      string
		folder    model.Folder
		wantError error
	}{
		{
			"duplicate at root",
			model.Folder{Name: "Chest", ProjectID: project.ID},
			ErrDuplicateFolderName,
		},
		{
			"same name under a parent is a different scope",
			model.Folder{Name: "Chest", ProjectID: project.ID, ParentFolderID: &parent.ID},
			nil,
		},
		{
			"same name in another project",
			model.Folder{Name: "Chest", ProjectID: other.ID},
			nil,
		},
		{
			"parent from another project",
			model.Folder{Name: "Skull", ProjectID: other.ID, ParentFolderID: &parent.ID},
			ErrParentNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			folder := tc.folder
			_, err := repo.Folder.Create(context.Background(), nil, &folder)
			if !errors.Is(err, tc.wantError) {
				t.Errorf("expected error %v, got %v", tc.wantError, err)
			}
		})
	}
}

func TestFolderUpdateRename(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)

	createTestFolder(t, repo, project.ID, "Chest", nil)
	folder := createTestFolder(t, repo, project.ID, "Skull", nil)

	name := "Chest"
	_, err := repo.Folder.Update(context.Background(), nil, folder.ID, FolderUpdate{Name: &name})
	if !errors.Is(err, ErrDuplicateFolderName) {
		t.Fatalf("expected ErrDuplicateFolderName, got %v", err)
	}

	name = "Abdomen"
	updated, err := repo.Folder.Update(context.Background(), nil, folder.ID, FolderUpdate{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Abdomen" {
		t.Errorf("expected renamed folder, got %s", updated.Name)
	}
}

func TestFolderUpdateSelfParent(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)

	folder := createTestFolder(t, repo, project.ID, "Chest", nil)

	_, err := repo.Folder.Update(context.Background(), nil, folder.ID, FolderUpdate{ParentFolderID: &folder.ID})
	if !errors.Is(err, ErrSelfParent) {
		t.Errorf("expected ErrSelfParent, got %v", err)
	}
}

func TestFolderUpdateMoveIntoParent(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)

	parent := createTestFolder(t, repo, project.ID, "Chest", nil)
	createTestFolder(t, repo, project.ID, "Left", &parent.ID)
	folder := createTestFolder(t, repo, project.ID, "Left", nil)

	// A sibling named Left already exists under Chest.
	_, err := repo.Folder.Update(context.Background(), nil, folder.ID, FolderUpdate{ParentFolderID: &parent.ID})
	if !errors.Is(err, ErrDuplicateFolderName) {
		t.Fatalf("expected ErrDuplicateFolderName, got %v", err)
	}

	name := "Right"
	updated, err := repo.Folder.Update(context.Background(), nil, folder.ID, FolderUpdate{
		Name:           &name,
		ParentFolderID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ParentFolderID == nil || *updated.ParentFolderID != parent.ID {
		t.Errorf("expected folder moved under %d, got %v", parent.ID, updated.ParentFolderID)
	}
}

func TestFolderUpdateMoveToRoot(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)

	parent := createTestFolder(t, repo, project.ID, "Chest", nil)
	folder := createTestFolder(t, repo, project.ID, "Nodules", &parent.ID)

	updated, err := repo.Folder.Update(context.Background(), nil, folder.ID, FolderUpdate{MoveToRoot: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ParentFolderID != nil {
		t.Errorf("expected folder at root, got parent %d", *updated.ParentFolderID)
	}

	// Moving up collides with a root folder of the same name.
	blocked := createTestFolder(t, repo, project.ID, "Chest", &parent.ID)
	if _, err := repo.Folder.Update(context.Background(), nil, blocked.ID, FolderUpdate{MoveToRoot: true}); !errors.Is(err, ErrDuplicateFolderName) {
		t.Errorf("expected ErrDuplicateFolderName, got %v", err)
	}
}

func TestFolderDeleteReparentsChildren(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)

	grandparent := createTestFolder(t, repo, project.ID, "Chest", nil)
	folder := createTestFolder(t, repo, project.ID, "Nodules", &grandparent.ID)
	child := createTestFolder(t, repo, project.ID, "Confirmed", &folder.ID)
	image := createTestImage(t, repo, project.ID, "orthanc-1", &folder.ID, owner.ID)

	imagesMoved, subfoldersMoved, err := repo.Folder.Delete(context.Background(), nil, folder.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if imagesMoved != 1 || subfoldersMoved != 1 {
		t.Errorf("expected 1 image and 1 subfolder moved, got %d and %d", imagesMoved, subfoldersMoved)
	}

	childAfter, err := repo.Folder.GetByID(context.Background(), nil, child.ID)
	if err != nil {
		t.Fatalf("child should survive: %v", err)
	}
	if childAfter.ParentFolderID == nil || *childAfter.ParentFolderID != grandparent.ID {
		t.Errorf("expected child under grandparent %d, got %v", grandparent.ID, childAfter.ParentFolderID)
	}

	imageAfter, err := repo.Image.GetByID(context.Background(), nil, image.ID)
	if err != nil {
		t.Fatalf("image should survive: %v", err)
	}
	if imageAfter.FolderID == nil || *imageAfter.FolderID != grandparent.ID {
		t.Errorf("expected image under grandparent %d, got %v", grandparent.ID, imageAfter.FolderID)
	}
}

func TestFolderDeleteAtRootMovesChildrenToRoot(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)

	folder := createTestFolder(t, repo, project.ID, "Chest", nil)
	child := createTestFolder(t, repo, project.ID, "Nodules", &folder.ID)
	image := createTestImage(t, repo, project.ID, "orthanc-1", &folder.ID, owner.ID)

	if _, _, err := repo.Folder.Delete(context.Background(), nil, folder.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	childAfter, err := repo.Folder.GetByID(context.Background(), nil, child.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if childAfter.ParentFolderID != nil {
		t.Errorf("expected child at root, got parent %d", *childAfter.ParentFolderID)
	}

	imageAfter, err := repo.Image.GetByID(context.Background(), nil, image.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if imageAfter.FolderID != nil {
		t.Errorf("expected image at root, got folder %d", *imageAfter.FolderID)
	}
}

func TestFolderGetByIDWithCounts(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)

	folder := createTestFolder(t, repo, project.ID, "Chest", nil)
	createTestFolder(t, repo, project.ID, "Nodules", &folder.ID)
	createTestImage(t, repo, project.ID, "orthanc-1", &folder.ID, owner.ID)
	createTestImage(t, repo, project.ID, "orthanc-2", &folder.ID, owner.ID)

	res, err := repo.Folder.GetByIDWithCounts(context.Background(), nil, folder.ID)
	if err != nil {
		t.Fatalf("GetByIDWithCounts: %v", err)
	}
	if res.ImageCount != 2 {
		t.Errorf("expected 2 images, got %d", res.ImageCount)
	}
	if res.SubfolderCount != 1 {
		t.Errorf("expected 1 subfolder, got %d", res.SubfolderCount)
	}
}

func TestFolderAssignImages(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	assignee := createTestUser(t, repo)
	outsider := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)

	if _, err := repo.Project.AddMember(context.Background(), nil, project.ID, assignee.ID, constant.MemberRoleMember); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	folder := createTestFolder(t, repo, project.ID, "Chest", nil)
	createTestImage(t, repo, project.ID, "orthanc-1", &folder.ID, owner.ID)
	createTestImage(t, repo, project.ID, "orthanc-2", &folder.ID, owner.ID)
	outside := createTestImage(t, repo, project.ID, "orthanc-3", nil, owner.ID)

	if _, err := repo.Folder.AssignImages(context.Background(), nil, folder.ID, outsider.ID); !errors.Is(err, ErrNotProjectMember) {
		t.Fatalf("expected ErrNotProjectMember for outsider, got %v", err)
	}

	count, err := repo.Folder.AssignImages(context.Background(), nil, folder.ID, assignee.ID)
	if err != nil {
		t.Fatalf("AssignImages: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 images assigned, got %d", count)
	}

	outsideAfter, err := repo.Image.GetByID(context.Background(), nil, outside.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if outsideAfter.AssignedUserID != nil {
		t.Errorf("image outside the folder should stay unassigned, got %v", *outsideAfter.AssignedUserID)
	}
}
