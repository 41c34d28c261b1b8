package controller

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	appcontext "github.com/raven-med/radtag/internal/app_context"
	"github.com/raven-med/radtag/internal/auth"
	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"github.com/raven-med/radtag/internal/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestController wires a Controller over a fresh in-memory sqlite
// database. Only Logger and Repository are populated; handlers under test
// must not reach the PACS, S3 or mail clients.
func setupTestController(t *testing.T) (*Controller, *repository.Repository, *gorm.DB) {
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

	repo := repository.NewRepository(db, zap.NewNop().Sugar())
	app := &appcontext.Application{
		Logger:     zap.NewNop().Sugar(),
		Repository: repo,
	}

	return NewController(app), repo, db
}

// patchAnnotation invokes UpdateAnnotation directly with an authenticated
// request, the way the router would after AuthMiddleware.
func patchAnnotation(c *Controller, user *model.User, annotationID uint, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPatch, "/api/v1/annotations/"+strconv.FormatUint(uint64(annotationID), 10), strings.NewReader(body))
	ctx.Request.Header.Set("Content-Type", "application/json")
	ctx.Params = gin.Params{{Key: "annotationId", Value: strconv.FormatUint(uint64(annotationID), 10)}}
	ctx.Set("user", auth.JWTPayload{ID: user.ID, Email: user.Email, FirstName: user.FirstName, LastName: user.LastName})

	c.Annotation.UpdateAnnotation(ctx)
	return w
}

var ctrlUserSeq int

func seedUser(t *testing.T, repo *repository.Repository) *model.User {
	t.Helper()

	ctrlUserSeq++
	user, err := repo.User.Create(context.Background(), nil, &model.User{
		Email:        fmt.Sprintf("ctrl%d@example.com", ctrlUserSeq),
		PasswordHash: "hash",
		FirstName:    "Ctrl",
		LastName:     fmt.Sprintf("User%d", ctrlUserSeq),
		Role:         constant.UserRoleUser,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// seedAnnotation builds owner -> workspace -> project -> image -> annotation
// and returns the annotation together with its author, a plain project
// member.
func seedAnnotation(t *testing.T, repo *repository.Repository) (*model.User, *model.Annotation) {
	t.Helper()

	owner := seedUser(t, repo)
	author := seedUser(t, repo)

	workspace, err := repo.Workspace.Create(context.Background(), nil, &model.Workspace{Name: "Radiology", OwnerID: owner.ID})
	if err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}
	project, err := repo.Project.Create(context.Background(), nil, &model.Project{Name: "Chest CT", WorkspaceID: workspace.ID, OwnerID: owner.ID})
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	if _, err := repo.Project.AddMember(context.Background(), nil, project.ID, author.ID, constant.MemberRoleMember); err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
	image, err := repo.Image.Create(context.Background(), nil, &model.Image{
		OrthancID:  "instance-1",
		Filename:   "instance-1.dcm",
		ProjectID:  project.ID,
		UploaderID: owner.ID,
	})
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	annotation, err := repo.Annotation.Create(context.Background(), nil, &model.Annotation{
		ImageID:       image.ID,
		UserID:        author.ID,
		BoundingBoxes: datatypes.JSON(`[{"x":10,"y":20,"width":30,"height":40,"label":"nodule"}]`),
		Tags:          datatypes.JSON(`["chest"]`),
	})
	if err != nil {
		t.Fatalf("failed to create annotation: %v", err)
	}

	return author, annotation
}

func TestUpdateAnnotationForbiddenReviewLeavesContentUntouched(t *testing.T) {
	c, repo, _ := setupTestController(t)
	author, annotation := seedAnnotation(t, repo)

	// The author may edit content but has no review rights, so the combined
	// request must fail as a whole.
	body := `{"boundingBoxes":[{"x":1,"y":2,"width":3,"height":4,"label":"mass"}],"reviewStatus":"approved"}`
	w := patchAnnotation(c, author, annotation.ID, body)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d: %s", http.StatusForbidden, w.Code, w.Body.String())
	}

	after, err := repo.Annotation.GetByID(context.Background(), nil, annotation.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if after.Version != 1 {
		t.Errorf("expected version 1 after rejected request, got %d", after.Version)
	}
	if string(after.BoundingBoxes) != string(annotation.BoundingBoxes) {
		t.Errorf("bounding boxes changed by rejected request: %s", after.BoundingBoxes)
	}
	if after.ReviewStatus != constant.ReviewStatusPending {
		t.Errorf("expected pending review status, got %s", after.ReviewStatus)
	}

	history, err := repo.Annotation.ListHistory(context.Background(), nil, annotation.ID)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected no history rows after rejected request, got %d", len(history))
	}
}

func TestUpdateAnnotationMissingRowIsNotFound(t *testing.T) {
	c, repo, _ := setupTestController(t)
	author, _ := seedAnnotation(t, repo)

	w := patchAnnotation(c, author, 9999, `{"tags":["chest"]}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d: %s", http.StatusNotFound, w.Code, w.Body.String())
	}
}

func TestUpdateAnnotationLookupFailureIsServerError(t *testing.T) {
	c, repo, db := setupTestController(t)
	author, annotation := seedAnnotation(t, repo)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}

	w := patchAnnotation(c, author, annotation.ID, `{"tags":["chest"]}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d: %s", http.StatusInternalServerError, w.Code, w.Body.String())
	}
}
