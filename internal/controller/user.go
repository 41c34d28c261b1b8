package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raven-med/radtag/internal/util"
)

type UserController struct {
	*baseController
}

func (uc UserController) GetMe(ctx *gin.Context) {
	authUser, err := uc.getAuthUser(ctx)
	if err != nil {
		uc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	user, err := uc.app.Repository.User.GetByID(ctx, nil, authUser.ID)
	if err != nil {
		uc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusNotFound, "User not found", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"user": user,
	})
}

// Search backs the invite pickers. Matches on email and name, active accounts
// only.
func (uc UserController) Search(ctx *gin.Context) {
	search := strings.TrimSpace(ctx.Query("search"))
	if search == "" {
		util.ResponseSuccess(ctx, gin.H{
			"users": []any{},
		})
		return
	}

	users, err := uc.app.Repository.User.Search(ctx, nil, search, 20)
	if err != nil {
		uc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to search users", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"users": users,
	})
}
