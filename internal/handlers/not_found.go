package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type NotFoundHandler struct{}

func NewNotFoundHandler() *NotFoundHandler {
	return &NotFoundHandler{}
}

// NotFound handles 404 errors for non-existent routes
func (h *NotFoundHandler) NotFound(c *gin.Context) {
	renderError(c, http.StatusNotFound, "404 - Page Not Found",
		"Nothing lives at "+c.Request.URL.Path+".")
}
