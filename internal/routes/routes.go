package routes

import (
	"github.com/gin-gonic/gin"

	"shiftops/internal/authz"
	"shiftops/internal/handlers"
	"shiftops/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	workflowHandler *handlers.WorkflowHandler,
	assignmentHandler *handlers.AssignmentHandler,
	completionHandler *handlers.CompletionHandler,
	transferHandler *handlers.TransferHandler,
	announcementHandler *handlers.AnnouncementHandler,
	photoHandler *handlers.PhotoHandler,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.POST("/register", authHandler.Register)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	// PROFILES
	profiles := r.Group("/profiles")
	{
		profiles.GET("/", profileHandler.List)
		profiles.GET("/me", profileHandler.Me)
		profiles.GET("/:id", profileHandler.GetByID)
		profiles.PUT("/:id", profileHandler.Update)
		profiles.POST("/:id/archive",
			middleware.RequireCapability(authz.CapManageProfiles), profileHandler.Archive)
	}

	// TASK LIBRARY + WORKFLOWS (managers)
	tasks := r.Group("/tasks", middleware.RequireCapability(authz.CapManageWorkflows))
	{
		tasks.POST("/", workflowHandler.CreateTask)
		tasks.GET("/", workflowHandler.ListTasks)
		tasks.PUT("/:id", workflowHandler.UpdateTask)
	}

	workflows := r.Group("/workflows")
	{
		workflows.GET("/", workflowHandler.List)
		workflows.GET("/:id", workflowHandler.GetByID)

		manage := workflows.Group("", middleware.RequireCapability(authz.CapManageWorkflows))
		{
			manage.POST("/", workflowHandler.Create)
			manage.PUT("/:id", workflowHandler.Update)
			manage.POST("/:id/assignees", workflowHandler.AddAssignee)
			manage.DELETE("/:id/assignees/:profile_id", workflowHandler.RemoveAssignee)
			manage.POST("/:id/spawn", workflowHandler.Spawn)
		}
	}

	// ASSIGNMENTS
	assignments := r.Group("/assignments")
	{
		assignments.GET("/", assignmentHandler.List)
		assignments.GET("/:id", assignmentHandler.GetByID)
		assignments.POST("/:id/tasks/:task_id/complete", assignmentHandler.CompleteTask)
		assignments.POST("/:id/transfer", transferHandler.Request)
		assignments.GET("/:id/report",
			middleware.RequireCapability(authz.CapViewReports), assignmentHandler.Report)
	}

	// COMPLETIONS
	completions := r.Group("/completions")
	{
		completions.PUT("/:id",
			middleware.RequireCapability(authz.CapEditCompletions), completionHandler.Edit)
		completions.GET("/:id/history", completionHandler.History)
	}

	// TRANSFERS
	transfers := r.Group("/transfers")
	{
		transfers.GET("/", transferHandler.List)
		transfers.GET("/:id", transferHandler.GetByID)
		transfers.POST("/:id/transferee-response", transferHandler.TransfereeResponse)
		transfers.POST("/:id/manager-response",
			middleware.RequireCapability(authz.CapApproveTransfers), transferHandler.ManagerResponse)
	}

	// ANNOUNCEMENTS
	announcements := r.Group("/announcements")
	{
		announcements.GET("/", announcementHandler.List)
		announcements.POST("/",
			middleware.RequireCapability(authz.CapPostAnnouncements), announcementHandler.Post)
		announcements.POST("/:id/read", announcementHandler.MarkRead)
	}

	// PHOTOS
	r.POST("/photos", photoHandler.Upload)

	return r
}
