package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/mailer"
	"github.com/raven-med/radtag/internal/model"
	"github.com/raven-med/radtag/internal/repository"
	"github.com/raven-med/radtag/internal/util"
	"gorm.io/gorm"
)

type ProjectController struct {
	*baseController
}

const ErrProjectNotFound = "project not found or access denied"

func (pc ProjectController) CreateProject(ctx *gin.Context) {
	type Request struct {
		Name        string `json:"name" binding:"required,strNotEmpty,min=1,max=100"`
		Description string `json:"description" binding:"max=500"`
		WorkspaceID uint   `json:"workspaceId" binding:"required,number,gte=1"`
	}
	var body Request

	if err := ctx.ShouldBindJSON(&body); err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	// Any workspace member may start a project; they become its owner.
	user, role, _, err := pc.requireWorkspaceRole(ctx, body.WorkspaceID, constant.MemberRoleMember)
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create project", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrWorkspaceNotFound)), nil)
		return
	}

	project, err := pc.app.Repository.Project.Create(ctx, nil, &model.Project{
		Name:        body.Name,
		Description: body.Description,
		WorkspaceID: body.WorkspaceID,
		OwnerID:     user.ID,
	})
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create project", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"project": project,
	})
}

func (pc ProjectController) ListProjects(ctx *gin.Context) {
	user, err := pc.getAuthUser(ctx)
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	var workspaceID *uint
	if raw := ctx.Query("workspace_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid workspace id", util.GenerateErrorMessages(err), nil)
			return
		}

		// The filter leaks nothing: a foreign workspace answers like a
		// missing one.
		role, err := pc.app.Repository.Workspace.GetRoleOfWorkspace(ctx, nil, uint(id), user.ID)
		if err != nil {
			pc.app.Logger.Error(err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to list projects", util.GenerateErrorMessages(err), nil)
			return
		}
		if role == constant.MemberRoleNone {
			util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrWorkspaceNotFound)), nil)
			return
		}

		uid := uint(id)
		workspaceID = &uid
	}

	projects, err := pc.app.Repository.Project.ListForUser(ctx, nil, user.ID, workspaceID)
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to list projects", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"projects": projects,
	})
}

func (pc ProjectController) GetProjectById(ctx *gin.Context) {
	projectId, err := parseUintParam(ctx, "projectId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid project id", util.GenerateErrorMessages(err), nil)
		return
	}

	user, err := pc.getAuthUser(ctx)
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	project, err := pc.app.Repository.Project.GetByIDForUser(ctx, nil, projectId, user.ID)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrProjectNotFound)), nil)
		return
	}

	role, err := pc.app.Repository.Project.GetRoleOfProject(ctx, nil, projectId, user.ID)
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get project", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"project": project,
		"role":    role,
	})
}

func (pc ProjectController) UpdateProject(ctx *gin.Context) {
	type Request struct {
		Name        *string `json:"name" binding:"omitempty,strNotEmpty,min=1,max=100"`
		Description *string `json:"description" binding:"omitempty,max=500"`
	}
	var body Request

	projectId, err := parseUintParam(ctx, "projectId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid project id", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	_, role, allowed, err := pc.requireProjectRole(ctx, projectId, constant.MemberRoleAdmin)
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update project", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrProjectNotFound)), nil)
		return
	}
	if !allowed {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("admin role required")), nil)
		return
	}

	updates := map[string]any{}
	if body.Name != nil {
		updates["name"] = *body.Name
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}

	project, err := pc.app.Repository.Project.Update(ctx, nil, projectId, updates)
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update project", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"project": project,
	})
}

func (pc ProjectController) DeleteProject(ctx *gin.Context) {
	projectId, err := parseUintParam(ctx, "projectId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid project id", util.GenerateErrorMessages(err), nil)
		return
	}

	user, role, _, err := pc.requireProjectRole(ctx, projectId, constant.MemberRoleOwner)
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete project", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrProjectNotFound)), nil)
		return
	}
	if role != constant.MemberRoleOwner {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("only the owner can delete a project")), nil)
		return
	}

	if err := pc.app.Repository.Project.Delete(ctx, nil, projectId); err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete project", util.GenerateErrorMessages(err), nil)
		return
	}

	pc.app.Repository.AuditLog.Record(ctx, nil, &model.AuditLog{
		Action:     "project.delete",
		UserID:     user.ID,
		TargetType: "project",
		TargetID:   projectId,
	})

	util.ResponseSuccess(ctx, nil)
}

func (pc ProjectController) InviteMember(ctx *gin.Context) {
	type Request struct {
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"required,oneof=admin member"`
	}
	var body Request

	projectId, err := parseUintParam(ctx, "projectId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid project id", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	inviter, role, allowed, err := pc.requireProjectRole(ctx, projectId, constant.MemberRoleAdmin)
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to invite member", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrProjectNotFound)), nil)
		return
	}
	if !allowed {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("admin role required")), nil)
		return
	}

	invitee, err := pc.app.Repository.User.GetByEmail(ctx, nil, strings.ToLower(strings.TrimSpace(body.Email)))
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "User not found", util.GenerateErrorMessages(errors.New("no account with this email"), "email"), nil)
		return
	}

	member, err := pc.app.Repository.Project.AddMember(ctx, nil, projectId, invitee.ID, constant.MemberRole(body.Role))
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyMember) {
			util.ResponseFailed(ctx, http.StatusBadRequest, "", util.GenerateErrorMessages(err, "email"), nil)
			return
		}
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to invite member", util.GenerateErrorMessages(err), nil)
		return
	}

	project, err := pc.app.Repository.Project.GetByID(ctx, nil, projectId)
	if err == nil {
		go func() {
			if _, err := pc.app.Mailer.Send(mailer.PROJECT_INVITE_TMPL, invitee.FirstName, invitee.Email, map[string]any{
				"Username":    invitee.FirstName,
				"InviterName": fmt.Sprintf("%s %s", inviter.FirstName, inviter.LastName),
				"ProjectName": project.Name,
				"Role":        body.Role,
			}); err != nil {
				pc.app.Logger.Errorf("Failed to send project invite email: %v", err)
			}
		}()
	}

	util.ResponseSuccess(ctx, gin.H{
		"member": member,
	})
}

func (pc ProjectController) RemoveMember(ctx *gin.Context) {
	projectId, err := parseUintParam(ctx, "projectId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid project id", util.GenerateErrorMessages(err), nil)
		return
	}

	memberUserId, err := parseUintParam(ctx, "userId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid user id", util.GenerateErrorMessages(err), nil)
		return
	}

	user, role, allowed, err := pc.requireProjectRole(ctx, projectId, constant.MemberRoleAdmin)
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to remove member", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrProjectNotFound)), nil)
		return
	}
	if !allowed {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("admin role required")), nil)
		return
	}

	if err := pc.app.Repository.Project.RemoveMember(ctx, nil, projectId, memberUserId); err != nil {
		if errors.Is(err, repository.ErrOwnerNotRemovable) {
			util.ResponseFailed(ctx, http.StatusBadRequest, "", util.GenerateErrorMessages(err), nil)
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Member not found", util.GenerateErrorMessages(err), nil)
			return
		}
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to remove member", util.GenerateErrorMessages(err), nil)
		return
	}

	pc.app.Repository.AuditLog.Record(ctx, nil, &model.AuditLog{
		Action:     "project.member.remove",
		UserID:     user.ID,
		TargetType: "project",
		TargetID:   projectId,
	})

	util.ResponseSuccess(ctx, nil)
}

func (pc ProjectController) ListMembers(ctx *gin.Context) {
	projectId, err := parseUintParam(ctx, "projectId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid project id", util.GenerateErrorMessages(err), nil)
		return
	}

	_, role, _, err := pc.requireProjectRole(ctx, projectId, constant.MemberRoleMember)
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to list members", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrProjectNotFound)), nil)
		return
	}

	members, err := pc.app.Repository.Project.ListMembers(ctx, nil, projectId)
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to list members", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"members": members,
	})
}

// AssignUnfiledImages assigns every image sitting at the project root to one
// member in a single call.
func (pc ProjectController) AssignUnfiledImages(ctx *gin.Context) {
	type Request struct {
		AssignedUserID uint `json:"assignedUserId" binding:"required,number,gte=1"`
	}
	var body Request

	projectId, err := parseUintParam(ctx, "projectId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid project id", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	user, role, allowed, err := pc.requireProjectRole(ctx, projectId, constant.MemberRoleAdmin)
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to assign images", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrProjectNotFound)), nil)
		return
	}
	if !allowed {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("admin role required")), nil)
		return
	}

	assigned, err := pc.app.Repository.Project.AssignUnfiledImages(ctx, nil, projectId, body.AssignedUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotProjectMember) {
			util.ResponseFailed(ctx, http.StatusBadRequest, "", util.GenerateErrorMessages(err, "assignedUserId"), nil)
			return
		}
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to assign images", util.GenerateErrorMessages(err), nil)
		return
	}

	pc.app.Repository.AuditLog.Record(ctx, nil, &model.AuditLog{
		Action:     "project.assign_unfiled",
		UserID:     user.ID,
		TargetType: "project",
		TargetID:   projectId,
	})

	util.ResponseSuccess(ctx, gin.H{
		"assignedCount": assigned,
	})
}
