package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raven-med/radtag/internal/constant"
	"github.com/raven-med/radtag/internal/model"
	"github.com/raven-med/radtag/internal/pacs"
	"github.com/raven-med/radtag/internal/repository"
	"github.com/raven-med/radtag/internal/util"
	"github.com/raven-med/radtag/pkg/radtag"
	"gorm.io/datatypes"
)

type ImageController struct {
	*baseController
}

const (
	ErrImageNotFound          = "image not found or access denied"
	ErrDicomFileRequired      = "a DICOM file is required"
	ErrDicomFileInvalid       = "file must be a valid .dcm or .dicom DICOM file"
	ErrDicomFileTooLarge      = "file exceeds the maximum upload size"
	ErrDicomServerUnavailable = "failed to upload to DICOM server"
)

const thumbnailURLExpiry = 7 * 24 * time.Hour

func (ic ImageController) UploadImage(ctx *gin.Context) {
	type Request struct {
		ProjectID uint  `form:"projectId" binding:"required,number,gte=1"`
		FolderID  *uint `form:"folderId" binding:"omitempty,gte=1"`
	}
	var body Request

	if err := ctx.ShouldBind(&body); err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	user, role, _, err := ic.requireProjectRole(ctx, body.ProjectID, constant.MemberRoleMember)
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to upload image", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrProjectNotFound)), nil)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "No file uploaded", util.GenerateErrorMessages(errors.New(ErrDicomFileRequired), "file"), nil)
		return
	}

	if !radtag.IsDicomFilename(file.Filename) {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid file", util.GenerateErrorMessages(errors.New(ErrDicomFileInvalid), "file"), nil)
		return
	}
	if file.Size > constant.MaxDicomUploadSize {
		util.ResponseFailed(ctx, http.StatusBadRequest, "File too large", util.GenerateErrorMessages(errors.New(ErrDicomFileTooLarge), "file"), nil)
		return
	}

	src, err := file.Open()
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to read file", util.GenerateErrorMessages(err), nil)
		return
	}
	defer src.Close()

	head := make([]byte, 256)
	n, _ := io.ReadFull(src, head)
	if !radtag.SniffDicom(head[:n]) {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid file", util.GenerateErrorMessages(errors.New(ErrDicomFileInvalid), "file"), nil)
		return
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to read file", util.GenerateErrorMessages(err), nil)
		return
	}

	orthancID, err := ic.app.PACS.Upload(ctx, file.Filename, src)
	if err != nil {
		ic.app.Logger.Errorf("Orthanc upload failed: %v", err)
		if errors.Is(err, pacs.ErrUploadFailed) {
			util.ResponseFailed(ctx, http.StatusBadGateway, "", util.GenerateErrorMessages(errors.New(ErrDicomServerUnavailable), "file"), nil)
			return
		}
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to upload image", util.GenerateErrorMessages(err), nil)
		return
	}

	// Metadata is best effort, upload never fails on it.
	var metadata datatypes.JSON
	if raw, err := ic.app.PACS.FetchMetadata(ctx, orthancID); err == nil && raw != nil {
		metadata = datatypes.JSON(raw)
	}

	image, err := ic.app.Repository.Image.Create(ctx, nil, &model.Image{
		OrthancID:     orthancID,
		Filename:      file.Filename,
		ProjectID:     body.ProjectID,
		FolderID:      body.FolderID,
		UploaderID:    user.ID,
		DicomMetadata: metadata,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateImage):
			// Orthanc deduplicates by content, the existing row still
			// references the instance, so nothing to clean up there.
			util.ResponseFailed(ctx, http.StatusConflict, "", util.GenerateErrorMessages(err, "file"), nil)
		case errors.Is(err, repository.ErrParentNotFound):
			util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(err, "folderId"), nil)
		default:
			ic.app.Logger.Error(err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to upload image", util.GenerateErrorMessages(err), nil)
		}
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"image": image,
	})
}

func (ic ImageController) ListImages(ctx *gin.Context) {
	user, err := ic.getAuthUser(ctx)
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	var filter repository.ImageFilter
	for query, target := range map[string]**uint{
		"project_id":       &filter.ProjectID,
		"folder_id":        &filter.FolderID,
		"assigned_user_id": &filter.AssignedUserID,
	} {
		raw := ctx.Query(query)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			util.ResponseFailed(ctx, http.StatusBadRequest, fmt.Sprintf("Invalid %s", query), util.GenerateErrorMessages(err), nil)
			return
		}
		uid := uint(id)
		*target = &uid
	}
	filter.RootOnly = ctx.Query("root") == "true"

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("pageSize", strconv.Itoa(int(constant.DefaultPageSize))))
	if pageSize < 1 || pageSize > 100 {
		pageSize = int(constant.DefaultPageSize)
	}

	images, total, err := ic.app.Repository.Image.List(ctx, nil, user.ID, filter, page, pageSize)
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to list images", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"images":    images,
		"total":     total,
		"page":      page,
		"totalPage": util.CalculateTotalPage(total, uint(pageSize)),
	})
}

func (ic ImageController) GetImageById(ctx *gin.Context) {
	imageId, err := parseUintParam(ctx, "imageId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid image id", util.GenerateErrorMessages(err), nil)
		return
	}

	user, err := ic.getAuthUser(ctx)
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	image, err := ic.app.Repository.Image.GetByIDForUser(ctx, nil, imageId, user.ID)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrImageNotFound)), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"image": image,
	})
}

// GetImageFile streams the DICOM binary from Orthanc through the API, so the
// PACS stays unreachable from clients.
func (ic ImageController) GetImageFile(ctx *gin.Context) {
	imageId, err := parseUintParam(ctx, "imageId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid image id", util.GenerateErrorMessages(err), nil)
		return
	}

	user, err := ic.getAuthUser(ctx)
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	image, err := ic.app.Repository.Image.GetByIDForUser(ctx, nil, imageId, user.ID)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrImageNotFound)), nil)
		return
	}

	rc, err := ic.app.PACS.Download(ctx, image.OrthancID)
	if err != nil {
		ic.app.Logger.Errorf("Orthanc download failed for image %d: %v", imageId, err)
		util.ResponseFailed(ctx, http.StatusBadGateway, "", util.GenerateErrorMessages(errors.New(ErrDicomServerUnavailable)), nil)
		return
	}
	defer rc.Close()

	ctx.Header("Content-Type", "application/dicom")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", image.Filename))
	if _, err := io.Copy(ctx.Writer, rc); err != nil {
		ic.app.Logger.Errorf("Failed to stream dicom file for image %d: %v", imageId, err)
	}
}

// GetImageThumbnail serves a presigned URL for the cached thumbnail,
// rendering and storing it on first access.
func (ic ImageController) GetImageThumbnail(ctx *gin.Context) {
	imageId, err := parseUintParam(ctx, "imageId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid image id", util.GenerateErrorMessages(err), nil)
		return
	}

	user, err := ic.getAuthUser(ctx)
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	image, err := ic.app.Repository.Image.GetByIDForUser(ctx, nil, imageId, user.ID)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrImageNotFound)), nil)
		return
	}

	if image.ThumbnailURL != "" {
		util.ResponseSuccess(ctx, gin.H{
			"thumbnailUrl": image.ThumbnailURL,
		})
		return
	}

	preview, err := ic.app.PACS.Preview(ctx, image.OrthancID)
	if err != nil {
		ic.app.Logger.Errorf("Orthanc preview failed for image %d: %v", imageId, err)
		util.ResponseFailed(ctx, http.StatusBadGateway, "", util.GenerateErrorMessages(errors.New(ErrDicomServerUnavailable)), nil)
		return
	}

	thumb, err := radtag.RenderThumbnail(preview, radtag.DefaultThumbnailSize)
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to render thumbnail", util.GenerateErrorMessages(err), nil)
		return
	}

	info, err := util.UploadBytesToS3(ctx, thumb, fmt.Sprintf("image_%d.png", image.ID), &util.FileUploadOptions{
		DirectoryPath: util.GetThumbnailDirectoryPath(image.ProjectID),
		UniquePrefix:  true,
		ContentType:   "image/png",
		Bucket:        ic.app.Config.Minio.BUCKET,
		S3:            ic.app.S3,
	})
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to store thumbnail", util.GenerateErrorMessages(err), nil)
		return
	}

	url, err := util.PresignedObjectURL(ctx, ic.app.S3, info.Bucket, info.Key, thumbnailURLExpiry)
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to sign thumbnail url", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ic.app.Repository.Image.SetThumbnailURL(ctx, nil, image.ID, url); err != nil {
		ic.app.Logger.Errorf("Failed to cache thumbnail url for image %d: %v", image.ID, err)
	}

	util.ResponseSuccess(ctx, gin.H{
		"thumbnailUrl": url,
	})
}

func (ic ImageController) UpdateImage(ctx *gin.Context) {
	type Request struct {
		Filename       *string `json:"filename" binding:"omitempty,strNotEmpty,max=255"`
		FolderID       *uint   `json:"folderId" binding:"omitempty,gte=1"`
		MoveToRoot     bool    `json:"moveToRoot"`
		AssignedUserID *uint   `json:"assignedUserId" binding:"omitempty,gte=1"`
	}
	var body Request

	imageId, err := parseUintParam(ctx, "imageId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid image id", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	// Moving between folders is member work, assigning images is not.
	minRole := constant.MemberRoleMember
	if body.AssignedUserID != nil {
		minRole = constant.MemberRoleAdmin
	}

	_, _, role, allowed, err := ic.requireProjectRoleForImage(ctx, imageId, minRole)
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to resolve image access", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrImageNotFound)), nil)
		return
	}
	if !allowed {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("admin role required to assign images")), nil)
		return
	}

	image, err := ic.app.Repository.Image.Update(ctx, nil, imageId, repository.ImageUpdate{
		Filename:       body.Filename,
		FolderID:       body.FolderID,
		MoveToRoot:     body.MoveToRoot,
		AssignedUserID: body.AssignedUserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrParentNotFound):
			util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(err, "folderId"), nil)
		case errors.Is(err, repository.ErrDuplicateImage):
			util.ResponseFailed(ctx, http.StatusConflict, "", util.GenerateErrorMessages(err, "folderId"), nil)
		case errors.Is(err, repository.ErrNotProjectMember):
			util.ResponseFailed(ctx, http.StatusBadRequest, "", util.GenerateErrorMessages(err, "assignedUserId"), nil)
		default:
			ic.app.Logger.Error(err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update image", util.GenerateErrorMessages(err), nil)
		}
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"image": image,
	})
}

func (ic ImageController) DeleteImage(ctx *gin.Context) {
	imageId, err := parseUintParam(ctx, "imageId")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid image id", util.GenerateErrorMessages(err), nil)
		return
	}

	user, image, role, allowed, err := ic.requireProjectRoleForImage(ctx, imageId, constant.MemberRoleAdmin)
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to resolve image access", util.GenerateErrorMessages(err), nil)
		return
	}
	if role == constant.MemberRoleNone {
		util.ResponseFailed(ctx, http.StatusNotFound, "", util.GenerateErrorMessages(errors.New(ErrImageNotFound)), nil)
		return
	}
	// The uploader may delete their own upload without the admin gate.
	if !allowed && image.UploaderID != user.ID {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New("admin role required")), nil)
		return
	}

	if err := ic.app.Repository.Image.Delete(ctx, nil, imageId); err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete image", util.GenerateErrorMessages(err), nil)
		return
	}

	// The local row is authoritative. Evict the Orthanc instance only when no
	// other row references it, and never fail the request on it.
	remaining, err := ic.app.Repository.Image.CountByOrthancID(ctx, nil, image.OrthancID)
	if err == nil && remaining == 0 {
		if err := ic.app.PACS.Delete(ctx, image.OrthancID); err != nil {
			ic.app.Logger.Errorf("Failed to delete orthanc instance %s: %v", image.OrthancID, err)
		}
	}

	ic.app.Repository.AuditLog.Record(ctx, nil, &model.AuditLog{
		Action:     "image.delete",
		UserID:     user.ID,
		TargetType: "image",
		TargetID:   imageId,
	})

	util.ResponseSuccess(ctx, nil)
}
