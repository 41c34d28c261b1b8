package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestAnnotationCreateDefaults(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)
	image := createTestImage(t, repo, project.ID, "orthanc-1", nil, owner.ID)

	annotation, err := repo.Annotation.Create(context.Background(), nil, &model.Annotation{
		ImageID: image.ID,
		UserID:  owner.ID,
		// Client-supplied version and status are ignored.
		Version:       7,
		ReviewStatus:  constant.ReviewStatusApproved,
		BoundingBoxes: datatypes.JSON(`[]`),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if annotation.Version != 1 {
		t.Errorf("expected version 1, got %d", annotation.Version)
	}
	if annotation.ReviewStatus != constant.ReviewStatusPending {
		t.Errorf("expected pending status, got %s", annotation.ReviewStatus)
	}
}

func TestAnnotationUpdateWritesHistory(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	editor := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)
	image := createTestImage(t, repo, project.ID, "orthanc-1", nil, owner.ID)
	annotation := createTestAnnotation(t, repo, image.ID, owner.ID)

	originalBoxes := string(annotation.BoundingBoxes)

	newBoxes := datatypes.JSON(`[{"x":1,"y":2,"width":3,"height":4,"label":"mass"}]`)
	updated, err := repo.Annotation.Update(context.Background(), nil, annotation.ID, editor.ID, AnnotationUpdate{
		BoundingBoxes: newBoxes,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Version != 2 {
		t.Errorf("expected version 2 after update, got %d", updated.Version)
	}
	if string(updated.BoundingBoxes) != string(newBoxes) {
		t.Errorf("expected new boxes stored, got %s", updated.BoundingBoxes)
	}

	history, err := repo.Annotation.ListHistory(context.Background(), nil, annotation.ID)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected exactly 1 history entry, got %d", len(history))
	}
	if history[0].ChangedBy != editor.ID {
		t.Errorf("expected history changed by %d, got %d", editor.ID, history[0].ChangedBy)
	}

	// The snapshot holds the payload as it was before the update.
	var snapshot model.Annotation
	if err := json.Unmarshal(history[0].DataSnapshot, &snapshot); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snapshot.Version != 1 {
		t.Errorf("expected snapshot of version 1, got %d", snapshot.Version)
	}
	if string(snapshot.BoundingBoxes) != originalBoxes {
		t.Errorf("expected snapshot of original boxes, got %s", snapshot.BoundingBoxes)
	}
}

func TestAnnotationUpdateAccumulatesHistory(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)
	image := createTestImage(t, repo, project.ID, "orthanc-1", nil, owner.ID)
	annotation := createTestAnnotation(t, repo, image.ID, owner.ID)

	for i := 0; i < 3; i++ {
		if _, err := repo.Annotation.Update(context.Background(), nil, annotation.ID, owner.ID, AnnotationUpdate{}); err != nil {
			t.Fatalf("Update %d: %v", i, err)
		}
	}

	updated, err := repo.Annotation.GetByID(context.Background(), nil, annotation.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Version != 4 {
		t.Errorf("expected version 4 after 3 updates, got %d", updated.Version)
	}

	history, err := repo.Annotation.ListHistory(context.Background(), nil, annotation.ID)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("expected 3 history entries, got %d", len(history))
	}
}

func TestAnnotationReviewDoesNotBumpVersion(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	reviewer := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)
	image := createTestImage(t, repo, project.ID, "orthanc-1", nil, owner.ID)
	annotation := createTestAnnotation(t, repo, image.ID, owner.ID)

	reviewed, err := repo.Annotation.Review(context.Background(), nil, annotation.ID, reviewer.ID, constant.ReviewStatusApproved)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}

	if reviewed.ReviewStatus != constant.ReviewStatusApproved {
		t.Errorf("expected approved status, got %s", reviewed.ReviewStatus)
	}
	if reviewed.ReviewerID == nil || *reviewed.ReviewerID != reviewer.ID {
		t.Errorf("expected reviewer %d recorded, got %v", reviewer.ID, reviewed.ReviewerID)
	}
	if reviewed.Version != 1 {
		t.Errorf("review must not bump the version, got %d", reviewed.Version)
	}

	history, err := repo.Annotation.ListHistory(context.Background(), nil, annotation.ID)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("review must not write history, got %d entries", len(history))
	}
}

func TestAnnotationListByImage(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)
	imageA := createTestImage(t, repo, project.ID, "orthanc-1", nil, owner.ID)
	imageB := createTestImage(t, repo, project.ID, "orthanc-2", nil, owner.ID)

	createTestAnnotation(t, repo, imageA.ID, owner.ID)
	createTestAnnotation(t, repo, imageA.ID, owner.ID)
	createTestAnnotation(t, repo, imageB.ID, owner.ID)

	annotations, err := repo.Annotation.ListByImage(context.Background(), nil, imageA.ID)
	if err != nil {
		t.Fatalf("ListByImage: %v", err)
	}
	if len(annotations) != 2 {
		t.Errorf("expected 2 annotations, got %d", len(annotations))
	}

	all, err := repo.Annotation.ListByProject(context.Background(), nil, project.ID)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 annotations in project, got %d", len(all))
	}
}

func TestAnnotationDeleteRemovesHistory(t *testing.T) {
	repo := setupTestRepo(t)
	owner := createTestUser(t, repo)
	workspace := createTestWorkspace(t, repo, owner.ID)
	project := createTestProject(t, repo, workspace.ID, owner.ID)
	image := createTestImage(t, repo, project.ID, "orthanc-1", nil, owner.ID)
	annotation := createTestAnnotation(t, repo, image.ID, owner.ID)

	if _, err := repo.Annotation.Update(context.Background(), nil, annotation.ID, owner.ID, AnnotationUpdate{}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := repo.Annotation.Delete(context.Background(), nil, annotation.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := repo.Annotation.GetByID(context.Background(), nil, annotation.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected annotation gone, got %v", err)
	}

	var history int64
	if err := repo.DB.Model(&model.AnnotationHistory{}).Count(&history).Error; err != nil {
		t.Fatalf("count history: %v", err)
	}
	if history != 0 {
		t.Errorf("expected history gone, got %d entries", history)
	}
}
