package route

import (
	"github.com/gin-gonic/gin"
	"github.com/raven-med/radtag/internal/controller"
	"github.com/raven-med/radtag/internal/middleware"
)

func V1_Annotations(r *gin.RouterGroup, ac *controller.AnnotationController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/annotations")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("", ac.CreateAnnotation)
		v1.GET("/image/:imageId", ac.ListAnnotationsByImage)
		v1.GET("/export/project/:projectId", ac.ExportProject)
		v1.GET("/:annotationId", ac.GetAnnotationById)
		v1.PATCH("/:annotationId", ac.UpdateAnnotation)
		v1.DELETE("/:annotationId", ac.DeleteAnnotation)
		v1.GET("/:annotationId/history", ac.GetAnnotationHistory)
	}
}
