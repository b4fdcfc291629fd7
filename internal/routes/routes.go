package routes

import (
	"github.com/courierlab/messenger-backend/internal/handler"
	"github.com/courierlab/messenger-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles everything Setup wires into the router
type Handlers struct {
	Users         *handler.UserHandler
	Messages      *handler.MessageHandler
	Threads       *handler.ThreadHandler
	Notifications *handler.NotificationHandler
}

// Setup configures the v1 API routes
func Setup(router *gin.Engine, h *Handlers) {
	api := router.Group("/api/v1")
	auth := middleware.RequireAuth()

	// Users
	users := api.Group("/users")
	users.POST("", h.Users.Register)
	users.GET("/:id", h.Users.Get)
	users.DELETE("/me", auth, h.Users.DeleteMe)

	// Messages
	messages := api.Group("/messages")
	messages.Use(auth)
	messages.POST("", h.Messages.Send)
	messages.GET("/unread", h.Messages.GetUnread)
	messages.GET("/:id", h.Messages.Get)
	messages.PUT("/:id", h.Messages.Edit)
	messages.POST("/:id/read", h.Messages.MarkAsRead)
	messages.GET("/:id/history", h.Messages.GetHistory)

	// Conversations
	conversations := api.Group("/conversations")
	conversations.Use(auth)
	conversations.GET("", h.Messages.GetConversations)
	conversations.GET("/:partnerID/thread", h.Threads.GetThread)

	// Notifications
	notifications := api.Group("/notifications")
	notifications.Use(auth)
	notifications.GET("", h.Notifications.GetList)
	notifications.GET("/unread-count", h.Notifications.GetUnreadCount)
	notifications.POST("/:id/read", h.Notifications.MarkAsRead)
	notifications.POST("/read-all", h.Notifications.MarkAllAsRead)
}
