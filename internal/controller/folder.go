package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"github.com/raven-med/radtag/internal/repository"
	"github.com/raven-med/radtag/internal/util"
)

type FolderController struct {
	*baseController
}

const ErrFolderNotFound = "folder not found or access denied"

func (fc FolderController) CreateFolder(ctx *gin.Context) {
	type Request struct {
		Name           string `json:"name" binding:"required,strNotEmpty,min=1,max=100"`
		Description    string `json:"description" binding:"max=500"`
		ProjectID      uint   `json:"projectId" binding:"required,number,gte=1"`
		ParentFolderID *uint  `json:"parentFolderId" binding:"omitempty,gte=1"`
	}
	var body Request

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	_, role, _, err := fc.requireProjectRole(ctx, body.ProjectID, constant.MemberRoleMember)
	if err != nil {
		fc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create folder", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrProjectNotFound)), nil)
		return
	}

	folder, err := fc.app.Repository.Folder.Create(ctx, nil, &model.Folder{
		Name:           body.Name,
		Description:    body.Description,
		ProjectID:      body.ProjectID,
		ParentFolderID: body.ParentFolderID,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrParentNotFound):
			util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(err, "parentFolderId"), nil)
		case errors.Is(err, repository.ErrDuplicateFolderName):
			util.ResponseFailed(ctx, http.StatusConflict, "", util.GenerateErrorMessages(err, "name"), nil)
		default:
			fc.app.Logger.Error(err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create folder", util.GenerateErrorMessages(err), nil)
		}
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"folder": folder,
	})
}

func (fc FolderController) ListFoldersByProject(ctx *gin.Context) {
	projectId, err := parseUintParam(ctx, "projectId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid project id", util.GenerateErrorMessages(err), nil)
		return
	}

	_, role, _, err := fc.requireProjectRole(ctx, projectId, constant.MemberRoleMember)
	if err != nil {
		fc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to list folders", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrProjectNotFound)), nil)
		return
	}

	folders, err := fc.app.Repository.Folder.ListByProject(ctx, nil, projectId)
	if err != nil {
		fc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to list folders", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"folders": folders,
	})
}

func (fc FolderController) GetFolderById(ctx *gin.Context) {
	folderId, err := parseUintParam(ctx, "folderId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid folder id", util.GenerateErrorMessages(err), nil)
		return
	}

	_, _, role, _, err := fc.requireProjectRoleForFolder(ctx, folderId, constant.MemberRoleMember)
	if err != nil {
		fc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to resolve folder access", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrFolderNotFound)), nil)
		return
	}

	folder, err := fc.app.Repository.Folder.GetByIDWithCounts(ctx, nil, folderId)
	if err != nil {
		fc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get folder", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"folder": folder,
	})
}

func (fc FolderController) UpdateFolder(ctx *gin.Context) {
	type Request struct {
		Name           *string `json:"name" binding:"omitempty,strNotEmpty,min=1,max=100"`
		Description    *string `json:"description" binding:"omitempty,max=500"`
		ParentFolderID *uint   `json:"parentFolderId" binding:"omitempty,gte=1"`
		MoveToRoot     bool    `json:"moveToRoot"`
	}
	var body Request

	folderId, err := parseUintParam(ctx, "folderId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid folder id", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	_, _, role, _, err := fc.requireProjectRoleForFolder(ctx, folderId, constant.MemberRoleMember)
	if err != nil {
		fc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to resolve folder access", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrFolderNotFound)), nil)
		return
	}

	folder, err := fc.app.Repository.Folder.Update(ctx, nil, folderId, repository.FolderUpdate{
		Name:           body.Name,
		Description:    body.Description,
		ParentFolderID: body.ParentFolderID,
		MoveToRoot:     body.MoveToRoot,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSelfParent):
			util.ResponseFailed(ctx, http.StatusBadRequest, "", util.GenerateErrorMessages(err, "parentFolderId"), nil)
		case errors.Is(err, repository.ErrParentNotFound):
			util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(err, "parentFolderId"), nil)
		case errors.Is(err, repository.ErrDuplicateFolderName):
			util.ResponseFailed(ctx, http.StatusConflict, "", util.GenerateErrorMessages(err, "name"), nil)
		default:
			fc.app.Logger.Error(err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update folder", util.GenerateErrorMessages(err), nil)
		}
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"folder": folder,
	})
}

func (fc FolderController) DeleteFolder(ctx *gin.Context) {
	folderId, err := parseUintParam(ctx, "folderId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid folder id", util.GenerateErrorMessages(err), nil)
		return
	}

	user, _, role, allowed, err := fc.requireProjectRoleForFolder(ctx, folderId, constant.MemberRoleAdmin)
	if err != nil {
		fc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to resolve folder access", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrFolderNotFound)), nil)
		return
	}
	if !allowed {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("admin role required")), nil)
		return
	}

	imagesMoved, subfoldersMoved, err := fc.app.Repository.Folder.Delete(ctx, nil, folderId)
	if err != nil {
		fc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete folder", util.GenerateErrorMessages(err), nil)
		return
	}

	fc.app.Repository.AuditLog.Record(ctx, nil, &model.AuditLog{
		Action:     "folder.delete",
		UserID:     user.ID,
		TargetType: "folder",
		TargetID:   folderId,
	})

	util.ResponseSuccess(ctx, gin.H{
		"imagesMoved":     imagesMoved,
		"subfoldersMoved": subfoldersMoved,
	})
}

func (fc FolderController) AssignImages(ctx *gin.Context) {
	type Request struct {
		AssignedUserID uint `json:"assignedUserId" binding:"required,number,gte=1"`
	}
	var body Request

	folderId, err := parseUintParam(ctx, "folderId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid folder id", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	_, _, role, allowed, err := fc.requireProjectRoleForFolder(ctx, folderId, constant.MemberRoleAdmin)
	if err != nil {
		fc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to resolve folder access", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrFolderNotFound)), nil)
		return
	}
	if !allowed {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("admin role required")), nil)
		return
	}

	assigned, err := fc.app.Repository.Folder.AssignImages(ctx, nil, folderId, body.AssignedUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotProjectMember) {
			util.ResponseFailed(ctx, http.StatusBadRequest, "", util.GenerateErrorMessages(err, "assignedUserId"), nil)
			return
		}
		fc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to assign images", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"assignedCount": assigned,
	})
}
