package models

import (
	"strings"
	"time"
)

type Book struct {
	ID              int64     `json:"id"`
	ISBN            string    `json:"isbn"`
	CoverURL        string    `json:"cover_url"`
	Title           string    `json:"title"`
	PublicationYear int       `json:"publication_year"`
	AuthorID        int64     `json:"author_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func (b *Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrBookTitleRequired
	}
	if strings.TrimSpace(b.ISBN) == "" {
		return ErrBookISBNRequired
	}
	return nil
}

// BookWithAuthor is a book joined with the name of its author, used by list views.
type BookWithAuthor struct {
	Book
	AuthorName string `json:"author_name"`
}

// SearchMatch is a single row of a search result.
type SearchMatch struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	PublicationYear int    `json:"publication_year"`
	CoverURL        string `json:"cover_url"`
}
