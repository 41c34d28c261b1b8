package route

import (
	"github.com/gin-gonic/gin"
	"github.com/raven-med/radtag/internal/controller"
	"github.com/raven-med/radtag/internal/middleware"
)

func V1_Projects(r *gin.RouterGroup, pc *controller.ProjectController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/projects")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("", pc.CreateProject)
		v1.GET("", pc.ListProjects)
		v1.GET("/:projectId", pc.GetProjectById)
		v1.PATCH("/:projectId", pc.UpdateProject)
		v1.DELETE("/:projectId", pc.DeleteProject)
		v1.POST("/:projectId/invite", pc.InviteMember)
		v1.GET("/:projectId/members", pc.ListMembers)
		v1.DELETE("/:projectId/members/:userId", pc.RemoveMember)
		v1.PATCH("/:projectId/assign-unfiled", pc.AssignUnfiledImages)
	}
}
