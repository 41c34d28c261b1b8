package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	appcontext "github.com/raven-med/radtag/internal/app_context"
	"github.com/raven-med/radtag/internal/auth"
	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"github.com/raven-med/radtag/internal/util"
	"gorm.io/gorm"
)

type baseController struct {
	app *appcontext.Application
}

type Controller struct {
	Index      *IndexController
	Auth       *AuthController
	User       *UserController
	Workspace  *WorkspaceController
	Project    *ProjectController
	Folder     *FolderController
	Image      *ImageController
	Annotation *AnnotationController
	Tag        *TagController
}

func newBaseController(app *appcontext.Application) *baseController {
	return &baseController{app: app}
}

func NewController(app *appcontext.Application) *Controller {
	bc := newBaseController(app)

	return &Controller{
		Index:      &IndexController{baseController: bc},
		Auth:       &AuthController{baseController: bc},
		User:       &UserController{baseController: bc},
		Workspace:  &WorkspaceController{baseController: bc},
		Project:    &ProjectController{baseController: bc},
		Folder:     &FolderController{baseController: bc},
		Image:      &ImageController{baseController: bc},
		Annotation: &AnnotationController{baseController: bc},
		Tag:        &TagController{baseController: bc},
	}
}

func (b *baseController) getAuthUser(ctx *gin.Context) (*auth.JWTPayload, error) {
	user, exists := ctx.Get("user")
	if !exists {
		return nil, errors.New("user not found in context")
	}

	jsonUser, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	var authUser *auth.JWTPayload
	err = json.Unmarshal(jsonUser, &authUser)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return authUser, nil
}

// parseUintParam reads a numeric path parameter.
func parseUintParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return uint(id), nil
}

// requireWorkspaceRole resolves the caller's role in the workspace and checks
// it against min. A caller without any membership gets MemberRoleNone back,
// never an error, so handlers can hide the resource's existence.
func (b *baseController) requireWorkspaceRole(ctx *gin.Context, workspaceID uint, min constant.MemberRole) (*auth.JWTPayload, constant.MemberRole, bool, error) {
	user, err := b.getAuthUser(ctx)
	if err != nil {
		return nil, constant.MemberRoleNone, false, fmt.Errorf("failed to get auth user: %w", err)
	}

	role, err := b.app.Repository.Workspace.GetRoleOfWorkspace(ctx, nil, workspaceID, user.ID)
	if err != nil {
		return nil, constant.MemberRoleNone, false, fmt.Errorf("failed to get workspace role: %w", err)
	}

	return user, role, util.RoleAtLeast(role, min), nil
}

// requireProjectRole is the project-side gate. Folder, image and annotation
// handlers derive access through this by first walking up to the owning
// project.
func (b *baseController) requireProjectRole(ctx *gin.Context, projectID uint, min constant.MemberRole) (*auth.JWTPayload, constant.MemberRole, bool, error) {
	user, err := b.getAuthUser(ctx)
	if err != nil {
		return nil, constant.MemberRoleNone, false, fmt.Errorf("failed to get auth user: %w", err)
	}

	role, err := b.app.Repository.Project.GetRoleOfProject(ctx, nil, projectID, user.ID)
	if err != nil {
		return nil, constant.MemberRoleNone, false, fmt.Errorf("failed to get project role: %w", err)
	}

	return user, role, util.RoleAtLeast(role, min), nil
}

// requireProjectRoleForFolder gates a folder operation by the owning project.
// A missing folder and a folder in a foreign project are indistinguishable to
// the caller: both come back as MemberRoleNone with a nil error. A non-nil
// error means the lookup itself failed.
func (b *baseController) requireProjectRoleForFolder(ctx *gin.Context, folderID uint, min constant.MemberRole) (*auth.JWTPayload, *model.Folder, constant.MemberRole, bool, error) {
	folder, err := b.app.Repository.Folder.GetByID(ctx, nil, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, constant.MemberRoleNone, false, nil
		}
		return nil, nil, constant.MemberRoleNone, false, err
	}

	user, role, allowed, err := b.requireProjectRole(ctx, folder.ProjectID, min)
	return user, folder, role, allowed, err
}

func (b *baseController) requireProjectRoleForImage(ctx *gin.Context, imageID uint, min constant.MemberRole) (*auth.JWTPayload, *model.Image, constant.MemberRole, bool, error) {
	image, err := b.app.Repository.Image.GetByID(ctx, nil, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, constant.MemberRoleNone, false, nil
		}
		return nil, nil, constant.MemberRoleNone, false, err
	}

	user, role, allowed, err := b.requireProjectRole(ctx, image.ProjectID, min)
	return user, image, role, allowed, err
}

func (b *baseController) requireProjectRoleForAnnotation(ctx *gin.Context, annotationID uint, min constant.MemberRole) (*auth.JWTPayload, *model.Annotation, *model.Image, constant.MemberRole, bool, error) {
	annotation, err := b.app.Repository.Annotation.GetByID(ctx, nil, annotationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, constant.MemberRoleNone, false, nil
		}
		return nil, nil, nil, constant.MemberRoleNone, false, err
	}

	user, image, role, allowed, err := b.requireProjectRoleForImage(ctx, annotation.ImageID, min)
	return user, annotation, image, role, allowed, err
}
