package route

import (
	"github.com/gin-gonic/gin"
	"github.com/raven-med/radtag/internal/controller"
	"github.com/raven-med/radtag/internal/middleware"
)

func V1_Folders(r *gin.RouterGroup, fc *controller.FolderController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/folders")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("", fc.CreateFolder)
		v1.GET("/project/:projectId", fc.ListFoldersByProject)
		v1.GET("/:folderId", fc.GetFolderById)
		v1.PATCH("/:folderId", fc.UpdateFolder)
		v1.DELETE("/:folderId", fc.DeleteFolder)
		v1.PATCH("/:folderId/assign-images", fc.AssignImages)
	}
}
