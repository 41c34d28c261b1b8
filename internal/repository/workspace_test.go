package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"gorm.io/gorm"
)

func TestWorkspaceCreateInsertsOwnerMembership(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)

	workspace := createTestWorkspace(t, repo, owner.ID)

	role, err := repo.Workspace.GetRoleOfWorkspace(context.Background(), nil, workspace.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetRoleOfWorkspace: %v", err)
	}
	if role != constant.MemberRoleOwner {
		t.Errorf("expected owner role for creator, got %s", role)
	}
}

func TestWorkspaceGetRoleOfWorkspace(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	member := createTestUser(t, repo)
	outsider := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)

	if _, err := repo.Workspace.AddMember(context.Background(), nil, workspace.ID, member.ID, constant.MemberRoleAdmin); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	tests := []struct {
		name string
		user uint
		want constant.MemberRole
	}{
		{"owner", owner.ID, constant.MemberRoleOwner},
		{"admin member", member.ID, constant.MemberRoleAdmin},
		{"non-member", outsider.ID, constant.MemberRoleNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			role, err := repo.Workspace.GetRoleOfWorkspace(context.Background(), nil, workspace.ID, tc.user)
			if err != nil {
				t.Fatalf("GetRoleOfWorkspace: %v", err)
			}
			if role != tc.want {
				t.Errorf("expected role %s, got %s", tc.want, role)
			}
		})
	}
}

func TestWorkspaceGetByIDForUserHidesForeignWorkspace(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	outsider := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)

	if _, err := repo.Workspace.GetByIDForUser(context.Background(), nil, workspace.ID, owner.ID); err != nil {
		t.Fatalf("member should see the workspace: %v", err)
	}

	_, err := repo.Workspace.GetByIDForUser(context.Background(), nil, workspace.ID, outsider.ID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected record not found for non-member, got %v", err)
	}
}

func TestWorkspaceAddMemberTwice(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	member := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)

	if _, err := repo.Workspace.AddMember(context.Background(), nil, workspace.ID, member.ID, constant.MemberRoleMember); err != nil {
		t.Fatalf("first AddMember: %v", err)
	}

	_, err := repo.Workspace.AddMember(context.Background(), nil, workspace.ID, member.ID, constant.MemberRoleAdmin)
	if !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestWorkspaceRemoveMember(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	member := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)

	if _, err := repo.Workspace.AddMember(context.Background(), nil, workspace.ID, member.ID, constant.MemberRoleMember); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	if err := repo.Workspace.RemoveMember(context.Background(), nil, workspace.ID, member.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}

	role, err := repo.Workspace.GetRoleOfWorkspace(context.Background(), nil, workspace.ID, member.ID)
	if err != nil {
		t.Fatalf("GetRoleOfWorkspace: %v", err)
	}
	if role != constant.MemberRoleNone {
		t.Errorf("expected no role after removal, got %s", role)
	}
}

func TestWorkspaceOwnerNotRemovable(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)

	err := repo.Workspace.RemoveMember(context.Background(), nil, workspace.ID, owner.ID)
	if !errors.Is(err, ErrOwnerNotRemovable) {
		t.Errorf("expected ErrOwnerNotRemovable, got %v", err)
	}

	role, roleErr := repo.Workspace.GetRoleOfWorkspace(context.Background(), nil, workspace.ID, owner.ID)
	if roleErr != nil {
		t.Fatalf("GetRoleOfWorkspace: %v", roleErr)
	}
	if role != constant.MemberRoleOwner {
		t.Errorf("owner membership should survive the attempt, got %s", role)
	}
}

func TestWorkspaceDeleteCascades(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)

	folder, err := repo.Folder.Create(context.Background(), nil, &model.Folder{
		Name:      "Chest",
		ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("Folder.Create: %v", err)
	}

	image := createTestImage(t, repo, project.ID, "orthanc-1", &folder.ID, owner.ID)
	annotation := createTestAnnotation(t, repo, image.ID, owner.ID)
	if _, err := repo.Annotation.Update(context.Background(), nil, annotation.ID, owner.ID, AnnotationUpdate{}); err != nil {
		t.Fatalf("Annotation.Update: %v", err)
	}

	if err := repo.Workspace.Delete(context.Background(), nil, workspace.ID); err != nil {
		t.Fatalf("Workspace.Delete: %v", err)
	}

	db := repo.DB
	counts := []struct {
		name  string
		model any
	}{
		{"workspaces", &model.Workspace{}},
		{"workspace members", &model.WorkspaceMember{}},
		{"projects", &model.Project{}},
		{"project members", &model.ProjectMember{}},
		{"folders", &model.Folder{}},
		{"images", &model.Image{}},
		{"annotations", &model.Annotation{}},
		{"annotation history", &model.AnnotationHistory{}},
	}
	for _, tc := range counts {
		var count int64
		if err := db.Model(tc.model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", tc.name, err)
		}
		if count != 0 {
			t.Errorf("expected no %s after delete, found %d", tc.name, count)
		}
	}
}
