package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"github.com/raven-med/radtag/internal/repository"
	"github.com/raven-med/radtag/internal/util"
	"github.com/raven-med/radtag/pkg/radtag"
	"gorm.io/datatypes"
)

type AnnotationController struct {
	*baseController
}

const ErrAnnotationNotFound = "annotation not found or access denied"

func (ac AnnotationController) CreateAnnotation(ctx *gin.Context) {
	type Request struct {
		ImageID       uint            `json:"imageId" binding:"required,number,gte=1"`
		BoundingBoxes json.RawMessage `json:"boundingBoxes" binding:"required"`
		Tags          []string        `json:"tags"`
	}
	var body Request

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	if _, err := radtag.ParseBoundingBoxes(body.BoundingBoxes); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid bounding boxes", util.GenerateErrorMessages(err, "boundingBoxes"), nil)
		return
	}

	user, _, role, _, err := ac.requireProjectRoleForImage(ctx, body.ImageID, constant.MemberRoleMember)
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to resolve image access", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrImageNotFound)), nil)
		return
	}

	var tags datatypes.JSON
	if body.Tags != nil {
		raw, err := json.Marshal(body.Tags)
		if err != nil {
			ac.app.Logger.Error(err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create annotation", util.GenerateErrorMessages(err), nil)
			return
		}
		tags = datatypes.JSON(raw)
	}

	annotation, err := ac.app.Repository.Annotation.Create(ctx, nil, &model.Annotation{
		ImageID:       body.ImageID,
		UserID:        user.ID,
		BoundingBoxes: datatypes.JSON(body.BoundingBoxes),
		Tags:          tags,
	})
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create annotation", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"annotation": annotation,
	})
}

func (ac AnnotationController) ListAnnotationsByImage(ctx *gin.Context) {
	imageId, err := parseUintParam(ctx, "imageId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid image id", util.GenerateErrorMessages(err), nil)
		return
	}

	_, _, role, _, err := ac.requireProjectRoleForImage(ctx, imageId, constant.MemberRoleMember)
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to resolve image access", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrImageNotFound)), nil)
		return
	}

	annotations, err := ac.app.Repository.Annotation.ListByImage(ctx, nil, imageId)
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to list annotations", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"annotations": annotations,
	})
}

func (ac AnnotationController) GetAnnotationById(ctx *gin.Context) {
	annotationId, err := parseUintParam(ctx, "annotationId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid annotation id", util.GenerateErrorMessages(err), nil)
		return
	}

	_, annotation, _, role, _, err := ac.requireProjectRoleForAnnotation(ctx, annotationId, constant.MemberRoleMember)
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to resolve annotation access", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrAnnotationNotFound)), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"annotation": annotation,
	})
}

// UpdateAnnotation handles both content edits and review verdicts. Content
// edits snapshot history and bump the version; a review verdict alone does
// neither. Last write wins.
func (ac AnnotationController) UpdateAnnotation(ctx *gin.Context) {
	type Request struct {
		BoundingBoxes json.RawMessage `json:"boundingBoxes"`
		Tags          []string        `json:"tags"`
		ReviewStatus  *string         `json:"reviewStatus" binding:"omitempty,oneof=pending approved rejected revised"`
	}
	var body Request

	annotationId, err := parseUintParam(ctx, "annotationId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid annotation id", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	user, annotation, _, role, isAdmin, err := ac.requireProjectRoleForAnnotation(ctx, annotationId, constant.MemberRoleAdmin)
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to resolve annotation access", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrAnnotationNotFound)), nil)
		return
	}

	editRequested := body.BoundingBoxes != nil || body.Tags != nil

	// Both permission checks run before either write so a forbidden review
	// verdict cannot leave a half-applied request behind.
	if editRequested && !isAdmin && annotation.UserID != user.ID {
		// Content edits are limited to the author and project admins.
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("only the author or an admin can edit an annotation")), nil)
		return
	}
	if body.ReviewStatus != nil && !isAdmin {
		// Reviews need a project admin or an account-level reviewer.
		account, err := ac.app.Repository.User.GetByID(ctx, nil, user.ID)
		if err != nil || account.Role != constant.UserRoleReviewer {
			util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("reviewer or admin role required")), nil)
			return
		}
	}

	if editRequested {
		update := repository.AnnotationUpdate{}
		if body.BoundingBoxes != nil {
			if _, err := radtag.ParseBoundingBoxes(body.BoundingBoxes); err != nil {
				util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid bounding boxes", util.GenerateErrorMessages(err, "boundingBoxes"), nil)
				return
			}
			update.BoundingBoxes = datatypes.JSON(body.BoundingBoxes)
		}
		if body.Tags != nil {
			raw, err := json.Marshal(body.Tags)
			if err != nil {
				ac.app.Logger.Error(err)
				util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update annotation", util.GenerateErrorMessages(err), nil)
				return
			}
			tags := string(raw)
			update.Tags = &tags
		}

		annotation, err = ac.app.Repository.Annotation.Update(ctx, nil, annotationId, user.ID, update)
		if err != nil {
			ac.app.Logger.Error(err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update annotation", util.GenerateErrorMessages(err), nil)
			return
		}
	}

	if body.ReviewStatus != nil {
		annotation, err = ac.app.Repository.Annotation.Review(ctx, nil, annotationId, user.ID, constant.ReviewStatus(*body.ReviewStatus))
		if err != nil {
			ac.app.Logger.Error(err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to review annotation", util.GenerateErrorMessages(err), nil)
			return
		}
	}

	util.ResponseSuccess(ctx, gin.H{
		"annotation": annotation,
	})
}

func (ac AnnotationController) GetAnnotationHistory(ctx *gin.Context) {
	annotationId, err := parseUintParam(ctx, "annotationId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid annotation id", util.GenerateErrorMessages(err), nil)
		return
	}

	_, _, _, role, _, err := ac.requireProjectRoleForAnnotation(ctx, annotationId, constant.MemberRoleMember)
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to resolve annotation access", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrAnnotationNotFound)), nil)
		return
	}

	history, err := ac.app.Repository.Annotation.ListHistory(ctx, nil, annotationId)
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to list history", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"history": history,
	})
}

func (ac AnnotationController) DeleteAnnotation(ctx *gin.Context) {
	annotationId, err := parseUintParam(ctx, "annotationId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid annotation id", util.GenerateErrorMessages(err), nil)
		return
	}

	user, annotation, _, role, isAdmin, err := ac.requireProjectRoleForAnnotation(ctx, annotationId, constant.MemberRoleAdmin)
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to resolve annotation access", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrAnnotationNotFound)), nil)
		return
	}
	if !isAdmin && annotation.UserID != user.ID {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("only the author or an admin can delete an annotation")), nil)
		return
	}

	if err := ac.app.Repository.Annotation.Delete(ctx, nil, annotationId); err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete annotation", util.GenerateErrorMessages(err), nil)
		return
	}

	ac.app.Repository.AuditLog.Record(ctx, nil, &model.AuditLog{
		Action:     "annotation.delete",
		UserID:     user.ID,
		TargetType: "annotation",
		TargetID:   annotationId,
	})

	util.ResponseSuccess(ctx, nil)
}

// ExportProject dumps every annotation of a project in the requested format.
func (ac AnnotationController) ExportProject(ctx *gin.Context) {
	projectId, err := parseUintParam(ctx, "projectId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid project id", util.GenerateErrorMessages(err), nil)
		return
	}

	format := constant.ExportFormat(ctx.DefaultQuery("format", string(constant.ExportFormatJSON)))
	if !format.Valid() {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid export format", util.GenerateErrorMessages(fmt.Errorf("unsupported format: %s", format), "format"), nil)
		return
	}

	_, role, _, err := ac.requireProjectRole(ctx, projectId, constant.MemberRoleMember)
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to export annotations", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrProjectNotFound)), nil)
		return
	}

	project, err := ac.app.Repository.Project.GetByID(ctx, nil, projectId)
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to export annotations", util.GenerateErrorMessages(err), nil)
		return
	}

	annotations, err := ac.app.Repository.Annotation.ListByProject(ctx, nil, projectId)
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to export annotations", util.GenerateErrorMessages(err), nil)
		return
	}

	exports := make([]radtag.ExportAnnotation, 0, len(annotations))
	for _, a := range annotations {
		boxes, err := radtag.ParseBoundingBoxes(a.BoundingBoxes)
		if err != nil {
			ac.app.Logger.Errorf("Annotation %d carries invalid bounding boxes: %v", a.ID, err)
			continue
		}
		tags, err := radtag.ParseTags(a.Tags)
		if err != nil {
			ac.app.Logger.Errorf("Annotation %d carries invalid tags: %v", a.ID, err)
			tags = nil
		}

		var updatedAt time.Time
		if a.UpdatedAt != nil {
			updatedAt = *a.UpdatedAt
		}

		exports = append(exports, radtag.ExportAnnotation{
			AnnotationID:  a.ID,
			ImageID:       a.ImageID,
			OrthancID:     a.Image.OrthancID,
			Filename:      a.Image.Filename,
			Author:        fmt.Sprintf("%s %s", a.User.FirstName, a.User.LastName),
			Version:       a.Version,
			ReviewStatus:  string(a.ReviewStatus),
			BoundingBoxes: boxes,
			Tags:          tags,
			UpdatedAt:     updatedAt,
		})
	}

	bundle := radtag.NewExportBundle(projectId, project.Name, exports)
	baseName := fmt.Sprintf("project_%d_annotations", projectId)

	switch format {
	case constant.ExportFormatJSON:
		data, err := radtag.ExportJSON(bundle)
		if err != nil {
			ac.app.Logger.Error(err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to export annotations", util.GenerateErrorMessages(err), nil)
			return
		}
		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", baseName+".json"))
		ctx.Data(http.StatusOK, "application/json", data)

	case constant.ExportFormatCSV:
		data, err := radtag.ExportCSV(exports)
		if err != nil {
			ac.app.Logger.Error(err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to export annotations", util.GenerateErrorMessages(err), nil)
			return
		}
		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", baseName+".csv"))
		ctx.Data(http.StatusOK, "text/csv", data)

	case constant.ExportFormatZip:
		ac.exportZip(ctx, bundle, baseName)

	case constant.ExportFormatDicomSeg:
		data, err := radtag.ExportSeg(bundle)
		if err != nil {
			ac.app.Logger.Error(err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to export annotations", util.GenerateErrorMessages(err), nil)
			return
		}
		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", baseName+".dcm"))
		ctx.Data(http.StatusOK, "application/dicom", data)
	}
}

func (ac AnnotationController) exportZip(ctx *gin.Context, bundle radtag.ExportBundle, baseName string) {
	scratch, err := os.MkdirTemp("", "export-"+uuid.NewString())
	if err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to export annotations", util.GenerateErrorMessages(err), nil)
		return
	}
	defer os.RemoveAll(scratch)

	bundleDir := filepath.Join(scratch, baseName)
	if err := os.Mkdir(bundleDir, 0o755); err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to export annotations", util.GenerateErrorMessages(err), nil)
		return
	}

	fetch := func(orthancID string) (io.ReadCloser, error) {
		return ac.app.PACS.Download(ctx, orthancID)
	}
	if ctx.Query("include_images") != "true" {
		fetch = nil
	}

	if err := radtag.WriteExportBundle(bundleDir, bundle, fetch); err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to export annotations", util.GenerateErrorMessages(err), nil)
		return
	}

	zipPath := filepath.Join(scratch, baseName+".zip")
	if err := util.ZipDir(bundleDir, zipPath); err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to export annotations", util.GenerateErrorMessages(err), nil)
		return
	}

	ctx.FileAttachment(zipPath, baseName+".zip")
}
