package repository

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/raven-med/radtag/internal/model"
)

func TestUserGetByEmail(t *testing.T) {
	repo := setupTestRepo(t)
	user := createTestUser(t, repo)

	found, err := repo.User.GetByEmail(context.Background(), nil, user.Email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("expected user %d, got %d", user.ID, found.ID)
	}

	_, err = repo.User.GetByEmail(context.Background(), nil, "nobody@example.com")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected record not found, got %v", err)
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	repo := setupTestRepo(t)
	user := createTestUser(t, repo)

	_, err := repo.User.Create(context.Background(), nil, &model.User{
		Email:        user.Email,
		PasswordHash: "hash",
	})
	if err == nil {
		t.Error("expected unique constraint violation for duplicate email")
	}
}

func TestAuditLogRecordAndList(t *testing.T) {
	repo := setupTestRepo(t)
	user := createTestUser(t, repo)

	repo.AuditLog.Record(context.Background(), nil, &model.AuditLog{
		Action:     "workspace.delete",
		UserID:     user.ID,
		TargetType: "workspace",
		TargetID:   42,
		Details:    datatypes.JSON(`{"name":"Old Workspace"}`),
	})
	repo.AuditLog.Record(context.Background(), nil, &model.AuditLog{
		Action:     "image.delete",
		UserID:     user.ID,
		TargetType: "image",
		TargetID:   7,
	})

	logs, err := repo.AuditLog.List(context.Background(), nil, "workspace", 42, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log for the workspace, got %d", len(logs))
	}
	if logs[0].Action != "workspace.delete" {
		t.Errorf("expected workspace.delete, got %s", logs[0].Action)
	}
}
