package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/storyforge/storyforge-backend/internal/handler"
	"github.com/storyforge/storyforge-backend/internal/middleware"
	"github.com/storyforge/storyforge-backend/internal/repository"
	"github.com/storyforge/storyforge-backend/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	storyHandler *handler.StoryHandler,
	versionHandler *handler.VersionHandler,
	episodeHandler *handler.EpisodeHandler,
	reportHandler *handler.ReportHandler,
	adminHandler *handler.AdminHandler,
	orgHandler *handler.OrganizationHandler,
	jwtManager *jwt.Manager,
	users repository.UserRepository,
) {
	api := router.Group("/api/v1")

	auth := middleware.JWTAuth(jwtManager, users)
	optionalAuth := middleware.OptionalJWTAuth(jwtManager, users)

	// Stories. Listing and detail are public; an attached token widens
	// visibility to the caller's own non-public stories.
	stories := api.Group("/stories")
	stories.GET("", optionalAuth, storyHandler.List)
	stories.POST("", auth, storyHandler.Create)
	stories.GET("/mine", auth, storyHandler.MyStories)
	stories.GET("/feed", auth, storyHandler.Feed)
	stories.GET("/:id", optionalAuth, storyHandler.Get)
	stories.PATCH("/:id", auth, storyHandler.Update)
	stories.GET("/:id/versions", versionHandler.ListByStory)
	stories.GET("/:id/episodes", versionHandler.EpisodesByStory)
	stories.POST("/:id/like", auth, storyHandler.Like)
	stories.DELETE("/:id/like", auth, storyHandler.Unlike)
	stories.POST("/:id/follow", auth, storyHandler.Follow)
	stories.DELETE("/:id/follow", auth, storyHandler.Unfollow)
	stories.POST("/:id/report", auth, storyHandler.Report)

	// Versions
	versions := api.Group("/versions")
	versions.POST("", auth, versionHandler.Create)
	versions.GET("/:id", versionHandler.Get)
	versions.GET("/:id/episodes", versionHandler.Episodes)
	versions.GET("/:id/next", versionHandler.Next)
	versions.GET("/:id/previous", versionHandler.Previous)

	// Episodes
	episodes := api.Group("/episodes")
	episodes.POST("", auth, episodeHandler.Create)
	episodes.GET("/:id", episodeHandler.Get)
	episodes.DELETE("/:id", auth, episodeHandler.Delete)
	episodes.POST("/:id/branch", auth, episodeHandler.Branch)
	episodes.GET("/:id/next", episodeHandler.Next)
	episodes.GET("/:id/previous", episodeHandler.Previous)
	episodes.GET("/:id/tip", episodeHandler.LineageTip)
	episodes.POST("/:id/like", auth, episodeHandler.Like)
	episodes.DELETE("/:id/like", auth, episodeHandler.Unlike)
	episodes.POST("/:id/report", auth, episodeHandler.Report)
	episodes.POST("/:id/submit", auth, episodeHandler.SubmitForApproval)

	// Organization-scoped user management (admin or subadmin)
	org := api.Group("/org", auth)
	org.GET("/users", orgHandler.OrgUsers)
	org.POST("/users", orgHandler.AddMember)

	// Administration
	admin := api.Group("/admin", auth)
	admin.GET("/reports", reportHandler.List)
	admin.GET("/stories/quarantined", adminHandler.QuarantinedStories)
	admin.GET("/stories/:id/reports", reportHandler.StoryReports)
	admin.POST("/stories/:id/approve", adminHandler.ApproveStory)
	admin.POST("/stories/:id/reject", adminHandler.RejectStory)
	admin.PATCH("/stories/:id/visibility", adminHandler.ChangeStoryVisibility)
	admin.DELETE("/stories/:id", adminHandler.DeleteStory)
	admin.GET("/episodes/:id/reports", reportHandler.EpisodeReports)
	admin.POST("/episodes/:id/approve", adminHandler.ApproveEpisode)
	admin.POST("/episodes/:id/reject", adminHandler.RejectEpisode)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", adminHandler.CreateUser)
	admin.PATCH("/users/:id/role", adminHandler.AssignRole)
	admin.POST("/users/:id/subadmin", adminHandler.MakeSubadmin)
	admin.GET("/organizations", orgHandler.List)
	admin.POST("/organizations", orgHandler.Create)
	admin.GET("/organizations/:id", orgHandler.Get)
	admin.PATCH("/organizations/:id", orgHandler.Update)
	admin.DELETE("/organizations/:id", orgHandler.Delete)
}
