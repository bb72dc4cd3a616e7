package handlers

import (
	"bytes"
	"net/http"

	"github.com/alimgiray/bookshelf/internal/services"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	catalogService *services.CatalogService
}

func NewExportHandler(catalogService *services.CatalogService) *ExportHandler {
	return &ExportHandler{
		catalogService: catalogService,
	}
}

// Export downloads the catalog as books.xlsx
func (h *ExportHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.catalogService.ExportBooks(c.Request.Context(), &buf); err != nil {
		renderInternalError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="books.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
