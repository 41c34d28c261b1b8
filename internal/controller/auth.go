package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raven-med/radtag/internal/auth"
	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"github.com/raven-med/radtag/internal/util"
	"gorm.io/gorm"
)

type AuthController struct {
	*baseController
}

const ErrInvalidCredentials = "invalid email or password"

func (ac AuthController) Register(ctx *gin.Context) {
	type Request struct {
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8,max=72"`
		FirstName string `json:"firstName" binding:"required,strNotEmpty,max=100"`
		LastName  string `json:"lastName" binding:"required,strNotEmpty,max=100"`
	}
	var body Request

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	if _, err := ac.app.Repository.User.GetByEmail(ctx, nil, email); err == nil {
		util.ResponseFailed(ctx, http.StatusConflict, "Email already registered", util.GenerateErrorMessages(errors.New("email already registered"), "email"), nil)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to register", util.GenerateErrorMessages(err), nil)
		return
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to register", util.GenerateErrorMessages(err), nil)
		return
	}

	user, err := ac.app.Repository.User.Create(ctx, nil, &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    body.FirstName,
		LastName:     body.LastName,
		Role:         constant.UserRoleUser,
		IsActive:     true,
	})
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to register", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"user": user,
	})
}

func (ac AuthController) Login(ctx *gin.Context) {
	type Request struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	var body Request

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	user, err := ac.app.Repository.User.GetByEmail(ctx, nil, email)
	if err != nil {
		// Same response for unknown email and wrong password.
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(errors.New(ErrInvalidCredentials)), nil)
		return
	}

	if !user.IsActive || !auth.ComparePassword(user.PasswordHash, body.Password) {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(errors.New(ErrInvalidCredentials)), nil)
		return
	}

	refreshToken, accessToken, err := ac.app.JWTService.GenerateRefreshAndAccessToken(auth.JWTPayload{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to login", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"refreshToken": refreshToken,
		"accessToken":  accessToken,
	})
}

func (ac AuthController) RefreshAccessToken(ctx *gin.Context) {
	refreshToken, err := util.ReadRefreshToken(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessage(err, nil), nil)
		return
	}

	jwtClaims, err := ac.app.JWTService.VerifyJwtToken(refreshToken)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessage(err, nil), nil)
		return
	}

	if jwtClaims == nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessage(errors.New("jwt claim empty"), nil), nil)
		return
	}

	if jwtClaims.Type != constant.JWT_TYPE_REFRESH {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessage(errors.New("invalid jwt token type"), nil), nil)
		return
	}

	// Re-read the user so a deactivated account cannot mint new tokens.
	user, err := ac.app.Repository.User.GetByID(ctx, nil, jwtClaims.User.ID)
	if err != nil || !user.IsActive {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessage(errors.New("account no longer active"), nil), nil)
		return
	}

	newRefreshToken, newAccessToken, err := ac.app.JWTService.GenerateRefreshAndAccessToken(auth.JWTPayload{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessage(err, nil), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"refreshToken": newRefreshToken,
		"accessToken":  newAccessToken,
	})
}

func (ac AuthController) VerifyJwtAccessToken(ctx *gin.Context) {
	token := ctx.Param("token")

	// Keep in mind that verify jwt token does not check database.
	jwtClaims, err := ac.app.JWTService.VerifyJwtToken(token)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessage(err, nil), gin.H{
			"tokenValid": false,
		})
		return
	}

	if jwtClaims == nil || jwtClaims.Type != constant.JWT_TYPE_ACCESS {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessage(errors.New("invalid jwt token type"), nil), gin.H{
			"tokenValid": false,
		})
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"tokenValid": true,
		"payload":    jwtClaims,
	})
}
