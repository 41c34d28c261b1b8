package route

import (
	"github.com/gin-gonic/gin"
	"github.com/raven-med/radtag/internal/controller"
	"github.com/raven-med/radtag/internal/middleware"
)

func V1_Tags(r *gin.RouterGroup, tc *controller.TagController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/tags")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.GET("/suggest/:imageId", tc.SuggestTags)
	}
}
