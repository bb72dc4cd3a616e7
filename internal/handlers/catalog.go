package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/alimgiray/bookshelf/internal/middleware"
	"github.com/alimgiray/bookshelf/internal/models"
	"github.com/alimgiray/bookshelf/internal/services"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
	flash          *middleware.FlashStore
}

func NewCatalogHandler(catalogService *services.CatalogService, flash *middleware.FlashStore) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		flash:          flash,
	}
}

type bookForm struct {
	Title           string
	PublicationYear string
	ISBN            string
	AuthorName      string
}

type authorForm struct {
	Name      string
	BirthDate string
	DeathDate string
}

// Index lists all books, sorted by the "query" parameter. Only a missing
// parameter falls back to title order.
func (h *CatalogHandler) Index(c *gin.Context) {
	sortKey, ok := c.GetQuery("query")
	if !ok {
		sortKey = services.SortByBookTitle
	}

	books, err := h.catalogService.ListBooks(c.Request.Context(), sortKey)
	if errors.Is(err, services.ErrInvalidSortKey) {
		renderError(c, http.StatusForbidden, "Forbidden", "Books can only be sorted by title or author name.")
		return
	}
	if err != nil {
		renderInternalError(c, err)
		return
	}

	data := pageData(c, "Home")
	data["Books"] = books
	data["SortKey"] = sortKey
	c.HTML(http.StatusOK, "home", data)
}

// AddBookForm displays the empty add book form
func (h *CatalogHandler) AddBookForm(c *gin.Context) {
	data := pageData(c, "Add Book")
	data["Form"] = bookForm{}
	c.HTML(http.StatusOK, "add_book", data)
}

// AddBook handles the add book form submission
func (h *CatalogHandler) AddBook(c *gin.Context) {
	form := bookForm{
		Title:           strings.TrimSpace(c.PostForm("book-title")),
		PublicationYear: strings.TrimSpace(c.PostForm("publication-year")),
		ISBN:            strings.TrimSpace(c.PostForm("isbn")),
		AuthorName:      strings.TrimSpace(c.PostForm("author-name")),
	}

	year, err := strconv.Atoi(form.PublicationYear)
	if err != nil {
		h.renderBookForm(c, http.StatusBadRequest, form, models.ErrPublicationYearInvalid.Message)
		return
	}

	_, err = h.catalogService.AddBook(c.Request.Context(), form.Title, year, form.ISBN, form.AuthorName)
	var validationErr *models.ValidationError
	switch {
	case errors.Is(err, services.ErrDuplicateBook):
		h.renderBookForm(c, http.StatusConflict, form, "Book already exists in your shelf")
		return
	case errors.As(err, &validationErr):
		h.renderBookForm(c, http.StatusBadRequest, form, validationErr.Message)
		return
	case err != nil:
		renderInternalError(c, err)
		return
	}

	h.redirectHome(c, middleware.FlashSuccess, "Book added successfully!")
}

// AddAuthorForm displays the empty add author form
func (h *CatalogHandler) AddAuthorForm(c *gin.Context) {
	data := pageData(c, "Add Author")
	data["Form"] = authorForm{}
	c.HTML(http.StatusOK, "add_author", data)
}

// AddAuthor creates an author, or updates the one with the same name
func (h *CatalogHandler) AddAuthor(c *gin.Context) {
	form := authorForm{
		Name:      strings.TrimSpace(c.PostForm("name")),
		BirthDate: strings.TrimSpace(c.PostForm("birth-date")),
		DeathDate: strings.TrimSpace(c.PostForm("death-date")),
	}

	_, outcome, err := h.catalogService.AddOrUpdateAuthor(c.Request.Context(), form.Name, form.BirthDate, form.DeathDate)
	var validationErr *models.ValidationError
	switch {
	case errors.Is(err, services.ErrInvalidDateRange):
		h.renderAuthorForm(c, http.StatusBadRequest, form, "Birth date must be earlier than death date")
		return
	case errors.Is(err, services.ErrInvalidDate):
		h.renderAuthorForm(c, http.StatusBadRequest, form, "Dates must be in YYYY-MM-DD format")
		return
	case errors.As(err, &validationErr):
		h.renderAuthorForm(c, http.StatusBadRequest, form, validationErr.Message)
		return
	case err != nil:
		renderInternalError(c, err)
		return
	}

	if outcome == services.AuthorUpdated {
		h.redirectHome(c, middleware.FlashSuccess, "Author details updated successfully!")
		return
	}
	h.redirectHome(c, middleware.FlashSuccess, "Author details added successfully!")
}

// DeleteBook removes the book identified by the :id path parameter
func (h *CatalogHandler) DeleteBook(c *gin.Context) {
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		renderError(c, http.StatusNotFound, "Book Not Found", "The requested book could not be found.")
		return
	}

	err = h.catalogService.DeleteBook(c.Request.Context(), bookID)
	if errors.Is(err, services.ErrBookNotFound) {
		renderError(c, http.StatusNotFound, "Book Not Found", "The requested book could not be found.")
		return
	}
	if err != nil {
		renderInternalError(c, err)
		return
	}

	h.redirectHome(c, middleware.FlashSuccess, "Book deleted successfully!")
}

// SearchBook searches titles and author names
func (h *CatalogHandler) SearchBook(c *gin.Context) {
	result, err := h.catalogService.SearchBooks(c.Request.Context(), c.PostForm("search-book"))
	if errors.Is(err, services.ErrEmptySearch) {
		h.redirectHome(c, middleware.FlashDanger, "You did not type a word to search...")
		return
	}
	if err != nil {
		renderInternalError(c, err)
		return
	}

	if result.NoMatch() {
		h.redirectHome(c, middleware.FlashDanger, "No result found")
		return
	}

	data := pageData(c, "Search Results")
	data["Result"] = result
	data["Flash"] = &middleware.Flash{
		Category: middleware.FlashSuccess,
		Message:  fmt.Sprintf("%d books found", result.Count),
	}
	c.HTML(http.StatusOK, "search", data)
}

func (h *CatalogHandler) renderBookForm(c *gin.Context, status int, form bookForm, message string) {
	data := pageData(c, "Add Book")
	data["Form"] = form
	data["Flash"] = &middleware.Flash{Category: middleware.FlashDanger, Message: message}
	c.HTML(status, "add_book", data)
}

func (h *CatalogHandler) renderAuthorForm(c *gin.Context, status int, form authorForm, message string) {
	data := pageData(c, "Add Author")
	data["Form"] = form
	data["Flash"] = &middleware.Flash{Category: middleware.FlashDanger, Message: message}
	c.HTML(status, "add_author", data)
}

func (h *CatalogHandler) redirectHome(c *gin.Context, category, message string) {
	if err := h.flash.Set(c, category, message); err != nil {
		c.Error(err)
	}
	c.Redirect(http.StatusFound, "/")
}
