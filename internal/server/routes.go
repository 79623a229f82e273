package server

import (
	"atelier/internal/server/middleware"
	"atelier/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Card routes
	apiRoutes.GET("/canvases/:canvas/cards", routes.GetCardsHandler)
	apiRoutes.POST("/canvases/:canvas/cards", routes.CreateCardHandler)
	apiRoutes.PATCH("/cards/:id", routes.EditCardHandler)
	apiRoutes.DELETE("/cards/:id", routes.DeleteCardHandler)
	apiRoutes.PATCH("/cards/:id/size", routes.EditCardSizeHandler)
	apiRoutes.POST("/cards/positions", routes.MoveCardsHandler)

	// Canvas assistant
	apiRoutes.POST("/canvases/:canvas/chat", routes.CanvasChatHandler)

	// Blog routes
	apiRoutes.GET("/posts", routes.GetPostsHandler)
	apiRoutes.GET("/posts/:slug", routes.GetPostHandler)

	// Upload and link metadata routes
	apiRoutes.POST("/uploads", routes.UploadFileHandler, middleware.RequireUser)
	apiRoutes.GET("/link-metadata", routes.GetLinkMetadataHandler)
}
