package handler

import "github.com/gin-gonic/gin"

// Register mounts the session, chat and form endpoints under /api.
func Register(router gin.IRouter, advisor *AdvisorHandler, form *FormHandler) {
	api := router.Group("/api")
	{
		sessions := api.Group("/sessions")
		{
			sessions.POST("", advisor.CreateSession)
			sessions.GET("", advisor.GetSessionList)
			sessions.GET("/:session_id", advisor.GetSession)
			sessions.PUT("/:session_id", advisor.UpdateSessionTitle)
			sessions.DELETE("/:session_id", advisor.DeleteSession)
		}

		chat := api.Group("/chat")
		{
			chat.POST("/message", advisor.SendMessage)
			chat.POST("/stream", advisor.StreamMessage)
			chat.GET("/messages/:session_id", advisor.GetMessages)
			chat.POST("/reset/:session_id", advisor.ResetChat)
		}

		f := api.Group("/form/:session_id")
		{
			f.GET("", form.GetView)
			f.PUT("/field", form.SetField)
			f.POST("/priority", form.TogglePriority)
			f.POST("/submit", form.Submit)
			f.POST("/frameworks", form.ShowFrameworks)
			f.POST("/select", form.SelectUseCase)
			f.POST("/back", form.Back)
			f.POST("/reset", form.Reset)
		}
	}
}
