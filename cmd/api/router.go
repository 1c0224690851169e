package main

import (
	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/web"
	"bookshelf-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	router.SetHTMLTemplate(web.Templates())
	router.StaticFS("/static", web.Static())

	h := c.EntryHandler

	router.GET("/", h.Index)
	router.GET("/health", h.Health)

	// ========================================
	// BOOK ENTRY ROUTES
	// ========================================
	router.POST("/create-book", h.CreateBook)
	router.GET("/entries", h.ListEntries)
	router.GET("/entries/export", h.ExportEntries)
	router.GET("/get-book/:title", h.GetBook)
	router.PUT("/update-book", h.UpdateBook)
	router.DELETE("/delete-book/:title", h.DeleteBook)

	return router
}
