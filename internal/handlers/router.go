package handlers

import (
	"github.com/adithyakesavan/taskdeck/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the full API surface on r. Session middleware must
// already be installed.
func RegisterRoutes(r *gin.Engine, auth *AuthHandler, tasks *TaskHandler, notifications *NotificationHandler, events *EventHandler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "taskdeck API is running",
		})
	})

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", auth.Signup)
			authGroup.POST("/login", auth.Login)
			authGroup.POST("/logout", auth.Logout)
			authGroup.POST("/reset-password", auth.ResetPassword)
			authGroup.GET("/me", middleware.RequireAuth(), auth.GetCurrentUser)
			authGroup.PATCH("/me", middleware.RequireAuth(), auth.UpdateProfile)
		}

		taskGroup := api.Group("/tasks")
		taskGroup.Use(middleware.RequireAuth())
		{
			taskGroup.GET("", tasks.ListTasks)
			taskGroup.POST("", tasks.CreateTask)
			taskGroup.GET("/:id", tasks.GetTask)
			taskGroup.PATCH("/:id", tasks.UpdateTask)
			taskGroup.DELETE("/:id", tasks.DeleteTask)
			taskGroup.POST("/:id/toggle", tasks.ToggleTask)
		}

		notifGroup := api.Group("/notifications")
		notifGroup.Use(middleware.RequireAuth())
		{
			notifGroup.GET("", notifications.ListNotifications)
			notifGroup.POST("/read-all", notifications.MarkAllRead)
			notifGroup.POST("/:id/read", notifications.MarkRead)
			notifGroup.DELETE("/:id", notifications.DeleteNotification)
		}

		api.GET("/events", middleware.RequireAuth(), events.Stream)
	}
}
