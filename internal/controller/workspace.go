package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/mailer"
	"github.com/raven-med/radtag/internal/model"
	"github.com/raven-med/radtag/internal/repository"
	"github.com/raven-med/radtag/internal/util"
	"gorm.io/gorm"
)

type WorkspaceController struct {
	*baseController
}

const ErrWorkspaceNotFound = "workspace not found or access denied"

func (wc WorkspaceController) CreateWorkspace(ctx *gin.Context) {
	type Request struct {
		Name        string `json:"name" binding:"required,strNotEmpty,min=1,max=100"`
		Description string `json:"description" binding:"max=500"`
	}
	var body Request

	user, err := wc.getAuthUser(ctx)
	if err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	workspace, err := wc.app.Repository.Workspace.Create(ctx, nil, &model.Workspace{
		Name:        body.Name,
		Description: body.Description,
		OwnerID:     user.ID,
	})
	if err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create workspace", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"workspace": workspace,
	})
}

func (wc WorkspaceController) ListWorkspaces(ctx *gin.Context) {
	user, err := wc.getAuthUser(ctx)
	if err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	workspaces, err := wc.app.Repository.Workspace.ListForUser(ctx, nil, user.ID)
	if err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to list workspaces", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"workspaces": workspaces,
	})
}

func (wc WorkspaceController) GetWorkspaceById(ctx *gin.Context) {
	workspaceId, err := parseUintParam(ctx, "workspaceId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid workspace id", util.GenerateErrorMessages(err), nil)
		return
	}

	user, err := wc.getAuthUser(ctx)
	if err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	workspace, err := wc.app.Repository.Workspace.GetByIDForUser(ctx, nil, workspaceId, user.ID)
	if err != nil {
		// Non-members get the same answer as a missing workspace.
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrWorkspaceNotFound)), nil)
		return
	}

	role, err := wc.app.Repository.Workspace.GetRoleOfWorkspace(ctx, nil, workspaceId, user.ID)
	if err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get workspace", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"workspace": workspace,
		"role":      role,
	})
}

func (wc WorkspaceController) UpdateWorkspace(ctx *gin.Context) {
	type Request struct {
		Name        *string `json:"name" binding:"omitempty,strNotEmpty,min=1,max=100"`
		Description *string `json:"description" binding:"omitempty,max=500"`
	}
	var body Request

	workspaceId, err := parseUintParam(ctx, "workspaceId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid workspace id", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	_, role, allowed, err := wc.requireWorkspaceRole(ctx, workspaceId, constant.MemberRoleAdmin)
	if err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update workspace", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrWorkspaceNotFound)), nil)
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

	workspace, err := wc.app.Repository.Workspace.Update(ctx, nil, workspaceId, updates)
	if err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update workspace", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"workspace": workspace,
	})
}

func (wc WorkspaceController) DeleteWorkspace(ctx *gin.Context) {
	workspaceId, err := parseUintParam(ctx, "workspaceId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid workspace id", util.GenerateErrorMessages(err), nil)
		return
	}

	user, role, _, err := wc.requireWorkspaceRole(ctx, workspaceId, constant.MemberRoleOwner)
	if err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete workspace", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrWorkspaceNotFound)), nil)
		return
	}
	if role != constant.MemberRoleOwner {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("only the owner can delete a workspace")), nil)
		return
	}

	if err := wc.app.Repository.Workspace.Delete(ctx, nil, workspaceId); err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete workspace", util.GenerateErrorMessages(err), nil)
		return
	}

	wc.app.Repository.AuditLog.Record(ctx, nil, &model.AuditLog{
		Action:     "workspace.delete",
		UserID:     user.ID,
		TargetType: "workspace",
		TargetID:   workspaceId,
	})

	util.ResponseSuccess(ctx, nil)
}

func (wc WorkspaceController) InviteMember(ctx *gin.Context) {
	type Request struct {
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"required,oneof=admin member"`
	}
	var body Request

	workspaceId, err := parseUintParam(ctx, "workspaceId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid workspace id", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	inviter, role, allowed, err := wc.requireWorkspaceRole(ctx, workspaceId, constant.MemberRoleAdmin)
	if err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to invite member", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrWorkspaceNotFound)), nil)
		return
	}
	if !allowed {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("admin role required")), nil)
		return
	}

	invitee, err := wc.app.Repository.User.GetByEmail(ctx, nil, strings.ToLower(strings.TrimSpace(body.Email)))
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "User not found", util.GenerateErrorMessages(errors.New("no account with this email"), "email"), nil)
		return
	}

	member, err := wc.app.Repository.Workspace.AddMember(ctx, nil, workspaceId, invitee.ID, constant.MemberRole(body.Role))
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyMember) {
			util.ResponseFailed(ctx, http.StatusBadRequest, "", util.GenerateErrorMessages(err, "email"), nil)
			return
		}
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to invite member", util.GenerateErrorMessages(err), nil)
		return
	}

	workspace, err := wc.app.Repository.Workspace.GetByIDForUser(ctx, nil, workspaceId, inviter.ID)
	if err == nil {
		// Notification failure must not fail the invite.
		go func() {
			if _, err := wc.app.Mailer.Send(mailer.WORKSPACE_INVITE_TMPL, invitee.FirstName, invitee.Email, map[string]any{
				"Username":      invitee.FirstName,
				"InviterName":   fmt.Sprintf("%s %s", inviter.FirstName, inviter.LastName),
				"WorkspaceName": workspace.Name,
				"Role":          body.Role,
			}); err != nil {
				wc.app.Logger.Errorf("Failed to send workspace invite email: %v", err)
			}
		}()
	}

	util.ResponseSuccess(ctx, gin.H{
		"member": member,
	})
}

func (wc WorkspaceController) RemoveMember(ctx *gin.Context) {
	workspaceId, err := parseUintParam(ctx, "workspaceId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid workspace id", util.GenerateErrorMessages(err), nil)
		return
	}

	memberUserId, err := parseUintParam(ctx, "userId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid user id", util.GenerateErrorMessages(err), nil)
		return
	}

	user, role, allowed, err := wc.requireWorkspaceRole(ctx, workspaceId, constant.MemberRoleAdmin)
	if err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to remove member", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrWorkspaceNotFound)), nil)
		return
	}
	if !allowed {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("admin role required")), nil)
		return
	}

	if err := wc.app.Repository.Workspace.RemoveMember(ctx, nil, workspaceId, memberUserId); err != nil {
		if errors.Is(err, repository.ErrOwnerNotRemovable) {
			util.ResponseFailed(ctx, http.StatusBadRequest, "", util.GenerateErrorMessages(err), nil)
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Member not found", util.GenerateErrorMessages(err), nil)
			return
		}
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to remove member", util.GenerateErrorMessages(err), nil)
		return
	}

	wc.app.Repository.AuditLog.Record(ctx, nil, &model.AuditLog{
		Action:     "workspace.member.remove",
		UserID:     user.ID,
		TargetType: "workspace",
		TargetID:   workspaceId,
	})

	util.ResponseSuccess(ctx, nil)
}

func (wc WorkspaceController) ListMembers(ctx *gin.Context) {
	workspaceId, err := parseUintParam(ctx, "workspaceId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid workspace id", util.GenerateErrorMessages(err), nil)
		return
	}

	_, role, _, err := wc.requireWorkspaceRole(ctx, workspaceId, constant.MemberRoleMember)
	if err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to list members", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrWorkspaceNotFound)), nil)
		return
	}

	members, err := wc.app.Repository.Workspace.ListMembers(ctx, nil, workspaceId)
	if err != nil {
		wc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to list members", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"members": members,
	})
}
