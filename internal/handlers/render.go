package handlers

import (
	"net/http"

	"github.com/alimgiray/bookshelf/internal/middleware"
	"github.com/gin-gonic/gin"
)

// pageData builds the common view data for a page, including the pending flash notice
func pageData(c *gin.Context, title string) gin.H {
	return gin.H{
		"Title": title,
		"Flash": middleware.GetFlash(c),
	}
}

// renderError renders the shared error page
func renderError(c *gin.Context, status int, title, message string) {
	data := pageData(c, title)
	data["Error"] = message
	data["RequestID"] = middleware.GetRequestID(c)
	c.HTML(status, "error", data)
}

// renderInternalError records err on the request and answers with a generic 500 page
func renderInternalError(c *gin.Context, err error) {
	c.Error(err)
	renderError(c, http.StatusInternalServerError, "Something went wrong",
		"An unexpected error occurred. Please try again later.")
}
