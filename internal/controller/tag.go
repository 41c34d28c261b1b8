package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/util"
)

type TagController struct {
	*baseController
}

// TagSuggestion is one candidate label for an image.
type TagSuggestion struct {
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence"`
}

// SuggestTags returns candidate tags for an image. The suggestions are a
// placeholder until a classification model is plugged in.
func (tc TagController) SuggestTags(ctx *gin.Context) {
	imageId, err := parseUintParam(ctx, "imageId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid image id", util.GenerateErrorMessages(err), nil)
		return
	}

	_, _, role, _, err := tc.requireProjectRoleForImage(ctx, imageId, constant.MemberRoleMember)
	if err != nil {
		tc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to resolve image access", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrImageNotFound)), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"suggestions": []TagSuggestion{
			{Tag: "pneumonia", Confidence: 0.85},
			{Tag: "normal", Confidence: 0.60},
			{Tag: "fracture", Confidence: 0.40},
		},
	})
}
