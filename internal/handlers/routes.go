package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the catalog pages on router
func RegisterRoutes(router *gin.Engine, catalogHandler *CatalogHandler, exportHandler *ExportHandler,
	healthHandler *HealthHandler, notFoundHandler *NotFoundHandler) {
	// Listing
	router.GET("/", catalogHandler.Index)
	router.GET("/sort", catalogHandler.Index)

	// Entry forms
	router.GET("/add_book", catalogHandler.AddBookForm)
	router.POST("/add_book", catalogHandler.AddBook)
	router.GET("/add_author", catalogHandler.AddAuthorForm)
	router.POST("/add_author", catalogHandler.AddAuthor)

	router.POST("/book/:id/delete", catalogHandler.DeleteBook)
	router.POST("/search_book", catalogHandler.SearchBook)
	router.GET("/export", exportHandler.Export)

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)

	router.NoRoute(notFoundHandler.NotFound)
}
