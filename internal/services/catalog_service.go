package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alimgiray/bookshelf/internal/models"
	"github.com/alimgiray/bookshelf/internal/repositories"
	"github.com/alimgiray/bookshelf/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Sort keys accepted by ListBooks
const (
	SortByBookTitle  = "book-title"
	SortByAuthorName = "author-name"
)

var (
	ErrDuplicateBook    = errors.New("book already exists in your shelf")
	ErrInvalidDate      = errors.New("dates must use the YYYY-MM-DD format")
	ErrInvalidDateRange = errors.New("birth date must be earlier than death date")
	ErrBookNotFound     = errors.New("book not found")
	ErrEmptySearch      = errors.New("search term is empty")
	ErrInvalidSortKey   = errors.New("invalid sort key")
)

// AuthorOutcome tells whether AddOrUpdateAuthor inserted or overwrote a record
type AuthorOutcome int

const (
	AuthorCreated AuthorOutcome = iota + 1
	AuthorUpdated
)

// SearchResult holds the rows matched by SearchBooks
type SearchResult struct {
	Term    string
	Matches []*models.SearchMatch
	Count   int
}

// NoMatch reports an empty result set
func (r *SearchResult) NoMatch() bool {
	return r.Count == 0
}

type CatalogService struct {
	authorRepo    *repositories.AuthorRepository
	bookRepo      *repositories.BookRepository
	coverLookup   CoverLookup
	exportService *ExportService
}

func NewCatalogService(authorRepo *repositories.AuthorRepository, bookRepo *repositories.BookRepository,
	coverLookup CoverLookup, exportService *ExportService) *CatalogService {
	return &CatalogService{
		authorRepo:    authorRepo,
		bookRepo:      bookRepo,
		coverLookup:   coverLookup,
		exportService: exportService,
	}
}

// ListBooks returns the whole catalog ordered by sortKey
func (s *CatalogService) ListBooks(ctx context.Context, sortKey string) ([]*models.BookWithAuthor, error) {
	var order repositories.BookOrder
	switch sortKey {
	case SortByBookTitle:
		order = repositories.OrderByTitle
	case SortByAuthorName:
		order = repositories.OrderByAuthorName
	default:
		return nil, ErrInvalidSortKey
	}

	books, err := s.bookRepo.ListOrderedBy(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// AddBook stores a new book, attaching it to the author with a matching name
// (ignoring case) or to a newly created author. A known ISBN yields ErrDuplicateBook.
func (s *CatalogService) AddBook(ctx context.Context, title string, publicationYear int, isbn, authorName string) (*models.Book, error) {
	book := &models.Book{
		ISBN:            strings.TrimSpace(isbn),
		Title:           strings.TrimSpace(title),
		PublicationYear: publicationYear,
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}

	authorName = strings.TrimSpace(authorName)
	if authorName == "" {
		return nil, models.ErrAuthorNameRequired
	}

	_, err := s.bookRepo.GetByISBN(ctx, book.ISBN)
	switch {
	case err == nil:
		return nil, ErrDuplicateBook
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to check ISBN: %w", err)
	}

	book.CoverURL = s.coverLookup.FetchCoverURL(ctx, book.ISBN)

	author, err := s.authorRepo.GetByName(ctx, authorName)
	if errors.Is(err, sql.ErrNoRows) {
		author = models.NewAuthor(authorName)
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up author: %w", err)
	}

	if err := s.bookRepo.Create(ctx, book, author); err != nil {
		if errors.Is(err, repositories.ErrDuplicateISBN) {
			return nil, ErrDuplicateBook
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"book_id":   book.ID,
		"isbn":      book.ISBN,
		"author_id": author.ID,
	}).Info("Book added")

	return book, nil
}

// AddOrUpdateAuthor creates an author or, when one with the same name
// (ignoring case) exists, overwrites its name and dates.
func (s *CatalogService) AddOrUpdateAuthor(ctx context.Context, name, birthDate, deathDate string) (*models.Author, AuthorOutcome, error) {
	birth, err := models.ParseDate(birthDate)
	if err != nil {
		return nil, 0, ErrInvalidDate
	}
	death, err := models.ParseDate(deathDate)
	if err != nil {
		return nil, 0, ErrInvalidDate
	}

	author := &models.Author{
		Name:        strings.TrimSpace(name),
		BirthDate:   &birth,
		DateOfDeath: &death,
	}
	if err := author.Validate(); err != nil {
		return nil, 0, err
	}
	if !author.HasValidLifespan() {
		return nil, 0, ErrInvalidDateRange
	}

	existing, err := s.authorRepo.GetByName(ctx, author.Name)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.authorRepo.Create(ctx, author); err != nil {
			return nil, 0, fmt.Errorf("failed to create author: %w", err)
		}
		logger.WithField("author_id", author.ID).Info("Author added")
		return author, AuthorCreated, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to look up author: %w", err)
	}

	author.ID = existing.ID
	author.CreatedAt = existing.CreatedAt
	if err := s.authorRepo.Update(ctx, author); err != nil {
		return nil, 0, fmt.Errorf("failed to update author: %w", err)
	}
	logger.WithField("author_id", author.ID).Info("Author updated")
	return author, AuthorUpdated, nil
}

// DeleteBook removes a book. Its author is left in place.
func (s *CatalogService) DeleteBook(ctx context.Context, bookID int64) error {
	err := s.bookRepo.Delete(ctx, bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	logger.WithField("book_id", bookID).Info("Book deleted")
	return nil
}

// SearchBooks finds books whose title or author name contains term, ignoring case.
// The term is matched as given, surrounding whitespace included.
func (s *CatalogService) SearchBooks(ctx context.Context, term string) (*SearchResult, error) {
	if term == "" {
		return nil, ErrEmptySearch
	}

	matches, err := s.bookRepo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}

	return &SearchResult{
		Term:    term,
		Matches: matches,
		Count:   len(matches),
	}, nil
}

// ExportBooks writes the catalog, ordered by title, as a spreadsheet
func (s *CatalogService) ExportBooks(ctx context.Context, w io.Writer) error {
	books, err := s.ListBooks(ctx, SortByBookTitle)
	if err != nil {
		return err
	}
	return s.exportService.WriteBooks(w, books)
}
