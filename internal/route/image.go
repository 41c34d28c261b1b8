package route

import (
	"github.com/gin-gonic/gin"
	"github.com/raven-med/radtag/internal/controller"
	"github.com/raven-med/radtag/internal/middleware"
)

func V1_Images(r *gin.RouterGroup, ic *controller.ImageController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/images")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("/upload", ic.UploadImage)
		v1.GET("", ic.ListImages)
		v1.GET("/:imageId", ic.GetImageById)
		v1.GET("/:imageId/file", ic.GetImageFile)
		v1.GET("/:imageId/thumbnail", ic.GetImageThumbnail)
		v1.PATCH("/:imageId", ic.UpdateImage)
		v1.DELETE("/:imageId", ic.DeleteImage)
	}
}
