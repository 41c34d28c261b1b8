package route

import (
	"github.com/gin-gonic/gin"
	"github.com/raven-med/radtag/internal/controller"
	"github.com/raven-med/radtag/internal/middleware"
)

func V1_Workspaces(r *gin.RouterGroup, wc *controller.WorkspaceController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/workspaces")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("", wc.CreateWorkspace)
		v1.GET("", wc.ListWorkspaces)
		v1.GET("/:workspaceId", wc.GetWorkspaceById)
		v1.PATCH("/:workspaceId", wc.UpdateWorkspace)
		v1.DELETE("/:workspaceId", wc.DeleteWorkspace)
		v1.POST("/:workspaceId/invite", wc.InviteMember)
		v1.GET("/:workspaceId/members", wc.ListMembers)
		v1.DELETE("/:workspaceId/members/:userId", wc.RemoveMember)
	}
}
