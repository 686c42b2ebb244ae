package httpapi

import (
	"github.com/gin-gonic/gin"
)

// NewRouter wires every route onto a fresh engine. Read endpoints take
// an optional identity so anonymous browsing works; writes and the
// notification feed require one.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)

		roles := authGroup.Group("/roles", h.AuthRequired(), h.RequireAdmin())
		{
			roles.POST("/update", h.UpdateUserRole)
			roles.GET("/users", h.ListUsers)
			roles.GET("/users/:id", h.GetUser)
		}
	}

	posts := api.Group("/posts")
	{
		posts.GET("", h.AuthOptional(), h.ListPosts)
		posts.GET("/search", h.AuthOptional(), h.SearchPosts)
		posts.POST("", h.AuthRequired(), h.SubmitPost)
		posts.GET("/:id", h.AuthOptional(), h.GetPost)
		posts.PUT("/:id", h.AuthRequired(), h.EditPost)
		posts.DELETE("/:id", h.AuthRequired(), h.DeletePost)
		posts.POST("/:id/approve", h.AuthRequired(), h.RequireModerator(), h.ApprovePost)
		posts.POST("/:id/reject", h.AuthRequired(), h.RequireModerator(), h.RejectPost)
		posts.GET("/:id/comments", h.AuthOptional(), h.ListComments)
		posts.GET("/:id/ws", h.ChatSocket)
	}

	features := api.Group("/feature-requests", h.AuthRequired())
	{
		features.GET("", h.ListFeatureRequests)
		features.POST("", h.SubmitFeatureRequest)
		features.PATCH("/:id", h.RequireAdmin(), h.UpdateFeatureRequest)
	}

	api.GET("/notifications/sse", h.AuthRequired(), h.RequireModerator(), h.NotificationStream)

	return router
}
