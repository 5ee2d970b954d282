package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, optionalAuth gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Public Routes (token optional) ===
	group.POST("", optionalAuth, h.Create)
	group.GET("/guest", h.ListGuest)
	group.GET("/:id", optionalAuth, h.Get)

	// === Authenticated Routes ===
	authed := group.Group("", authMiddleware)
	{
		authed.GET("", h.List)
		authed.GET("/provider/:providerId", h.ListByProvider)
		authed.PATCH("/:id", h.Update)
		authed.PATCH("/:id/status", h.UpdateStatus)
		authed.PATCH("/:id/assign", h.Assign)
		authed.DELETE("/:id", h.Cancel)
	}
}
