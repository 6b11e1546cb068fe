package routes

import (
	"consortium-planner-api/controllers"
	"consortium-planner-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Invitation acceptance is token-addressed, no session needed
			public.POST("/invitations/accept", controllers.AcceptInvitation)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Consortium Planner API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Projects and everything scoped to one project
			projects := protected.Group("/projects")
			{
				projects.GET("", controllers.GetProjects)
				projects.POST("", controllers.CreateProject)
				projects.GET("/:id", controllers.GetProject)
				projects.PUT("/:id", controllers.UpdateProject)
				projects.DELETE("/:id", controllers.DeleteProject)
				projects.GET("/:id/team", controllers.GetProjectTeam)

				// Consortium partners
				projects.GET("/:id/partners", controllers.GetPartners)
				projects.POST("/:id/partners", controllers.CreatePartner)

				// Tree roots
				projects.POST("/:id/sections", controllers.CreateSection)

				// Planned effort
				projects.GET("/:id/assignments", controllers.GetAssignments)
				projects.POST("/:id/assignments", controllers.CreateAssignment)

				// Logged hours
				projects.GET("/:id/timesheet", controllers.GetTimesheetEntries)
				projects.POST("/:id/timesheet", controllers.CreateTimesheetEntry)

				// Budget reporting
				projects.GET("/:id/effort-summary", controllers.GetProjectEffortSummary)
				projects.GET("/:id/partner-budgets", controllers.GetPartnerBudgets)
				projects.GET("/:id/budget/:kind/:containerId", controllers.GetContainerBudget)
				projects.GET("/:id/members/:userId/rate", controllers.ResolveRate)

				// Invitations
				projects.GET("/:id/invitations", controllers.GetInvitations)
				projects.POST("/:id/invitations", controllers.CreateInvitation)
				projects.DELETE("/:id/invitations/:invitationId", controllers.RevokeInvitation)

				// Templates and snapshots
				projects.POST("/:id/template", controllers.CreateTemplate)
				projects.GET("/:id/snapshots", controllers.GetSnapshots)
				projects.POST("/:id/snapshots", controllers.CreateSnapshot)
				projects.POST("/:id/snapshots/:snapshotId/restore", controllers.RestoreSnapshot)
			}

			// Partner records addressed directly
			protected.PUT("/partners/:partnerId", controllers.UpdatePartner)
			protected.DELETE("/partners/:partnerId", controllers.DeletePartner)

			// Tree node creation below the section level
			protected.POST("/works", controllers.CreateWork)
			protected.POST("/works/:workId/tasks", controllers.CreateTask)
			protected.POST("/tasks/:taskId/activities", controllers.CreateActivity)

			// Generic node operations, addressed by kind
			nodes := protected.Group("/nodes")
			{
				nodes.PUT("/:kind/:containerId", controllers.UpdateNode)
				nodes.POST("/:kind/:containerId/move", controllers.MoveNode)
				nodes.DELETE("/:kind/:containerId", controllers.DeleteNode)
				nodes.PUT("/:kind/:containerId/partner-assignments", controllers.ReplacePartnerAssignments)
			}
			protected.PUT("/tree/reorder", controllers.ReorderNodes)

			// Modules and their workflow
			modules := protected.Group("/modules")
			{
				modules.POST("", controllers.CreateModule)
				modules.GET("/:id", controllers.GetModule)
				modules.PUT("/:id", controllers.UpdateModule)
				modules.POST("/:id/status", controllers.TransitionModule)
				modules.DELETE("/:id", controllers.DeleteModule)
				modules.PUT("/:id/members", controllers.ReplaceModuleMembers)
				modules.POST("/:id/components", controllers.CreateTextComponent)
				modules.POST("/:id/components/:componentId/merge", controllers.MergeTextComponent)
				modules.DELETE("/:id/components/:componentId", controllers.DeleteTextComponent)
			}

			// Planned effort and logged hours addressed directly
			protected.PUT("/assignments/:assignmentId", controllers.UpdateAssignment)
			protected.DELETE("/assignments/:assignmentId", controllers.DeleteAssignment)
			protected.PUT("/timesheet/:entryId", controllers.UpdateTimesheetEntry)
			protected.DELETE("/timesheet/:entryId", controllers.DeleteTimesheetEntry)

			// Availability and workload
			users := protected.Group("/users")
			{
				users.GET("/:userId/availability/:year", controllers.GetAvailability)
				users.PUT("/:userId/availability/:year", controllers.SetAvailability)
				users.GET("/:userId/workload/:year", controllers.GetUserWorkload)
			}

			// Standard-cost rate card (writes are manager only)
			costs := protected.Group("/standard-costs")
			{
				costs.GET("", controllers.GetStandardCosts)
				costs.POST("", middleware.RequireManager(), controllers.CreateStandardCost)
				costs.PUT("/:costId", middleware.RequireManager(), controllers.UpdateStandardCost)
				costs.DELETE("/:costId", middleware.RequireManager(), controllers.DeleteStandardCost)
			}

			// Cross-project organization directory
			organizations := protected.Group("/organizations")
			{
				organizations.GET("", controllers.GetOrganizations)
				organizations.POST("", controllers.CreateOrganization)
				organizations.PUT("/:organizationId", controllers.UpdateOrganization)
				organizations.DELETE("/:organizationId", middleware.RequireManager(), controllers.DeleteOrganization)
			}
		}
	}
}
