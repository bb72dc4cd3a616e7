package services

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/alimgiray/bookshelf/internal/models"
	"github.com/alimgiray/bookshelf/internal/repositories"
	"github.com/alimgiray/bookshelf/pkg/config"
	"github.com/alimgiray/bookshelf/pkg/database"
	"github.com/alimgiray/bookshelf/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func init() {
	logger.Init("error", "text")
}

type stubCoverLookup struct {
	url   string
	calls []string
}

func (s *stubCoverLookup) FetchCoverURL(ctx context.Context, isbn string) string {
	s.calls = append(s.calls, isbn)
	return s.url
}

type catalogFixture struct {
	service *CatalogService
	authors *repositories.AuthorRepository
	books   *repositories.BookRepository
	covers  *stubCoverLookup
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Path:          filepath.Join(t.TempDir(), "catalog.db"),
		MaxOpenConns:  4,
		MaxIdleConns:  2,
		BusyTimeoutMS: 1000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &catalogFixture{
		authors: repositories.NewAuthorRepository(db),
		books:   repositories.NewBookRepository(db),
		covers:  &stubCoverLookup{url: "https://covers.test/cover.jpg"},
	}
	f.service = NewCatalogService(f.authors, f.books, f.covers, NewExportService())
	return f
}

func (f *catalogFixture) counts(t *testing.T) (authors, books int) {
	t.Helper()
	ctx := context.Background()
	authors, err := f.authors.Count(ctx)
	require.NoError(t, err)
	books, err = f.books.Count(ctx)
	require.NoError(t, err)
	return authors, books
}

func TestAddBookWithNewAuthor(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	book, err := f.service.AddBook(ctx, "Pride and Prejudice", 1813, "9780141439518", "Jane Austen")
	require.NoError(t, err)
	assert.Equal(t, "https://covers.test/cover.jpg", book.CoverURL)
	assert.Equal(t, []string{"9780141439518"}, f.covers.calls)

	authors, books := f.counts(t)
	assert.Equal(t, 1, authors)
	assert.Equal(t, 1, books)

	author, err := f.authors.GetByID(ctx, book.AuthorID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Austen", author.Name)
	assert.Nil(t, author.BirthDate)
	assert.Nil(t, author.DateOfDeath)
}

func TestAddBookReusesExistingAuthorIgnoringCase(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	first, err := f.service.AddBook(ctx, "Pride and Prejudice", 1813, "9780141439518", "Jane Austen")
	require.NoError(t, err)

	second, err := f.service.AddBook(ctx, "Emma", 1815, "9780141439587", "JANE austen")
	require.NoError(t, err)

	assert.Equal(t, first.AuthorID, second.AuthorID)
	authors, books := f.counts(t)
	assert.Equal(t, 1, authors)
	assert.Equal(t, 2, books)

	author, err := f.authors.GetByID(ctx, first.AuthorID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Austen", author.Name, "stored casing is kept")
}

func TestAddBookDuplicateISBN(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.service.AddBook(ctx, "Pride and Prejudice", 1813, "9780141439518", "Jane Austen")
	require.NoError(t, err)

	_, err = f.service.AddBook(ctx, "Another Title", 2001, "9780141439518", "Brand New Author")
	assert.ErrorIs(t, err, ErrDuplicateBook)

	authors, books := f.counts(t)
	assert.Equal(t, 1, authors, "no author is created for a duplicate")
	assert.Equal(t, 1, books)
	assert.Len(t, f.covers.calls, 1, "duplicates are rejected before the cover lookup")
}

func TestAddBookBlankCoverOnLookupFailure(t *testing.T) {
	f := newCatalogFixture(t)
	f.covers.url = ""

	book, err := f.service.AddBook(context.Background(), "The Hobbit", 1937, "9780547928227", "J.R.R. Tolkien")
	require.NoError(t, err)
	assert.Equal(t, "", book.CoverURL)
}

func TestAddBookValidation(t *testing.T) {
	f := newCatalogFixture(t)

	testCases := []struct {
		name       string
		title      string
		isbn       string
		authorName string
		field      string
	}{
		{"Missing title", " ", "1", "Author", "book-title"},
		{"Missing ISBN", "Title", "", "Author", "isbn"},
		{"Missing author", "Title", "1", "  ", "author-name"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.AddBook(context.Background(), tc.title, 2000, tc.isbn, tc.authorName)
			var validationErr *models.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}

	authors, books := f.counts(t)
	assert.Zero(t, authors)
	assert.Zero(t, books)
}

func TestAddOrUpdateAuthor(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	created, outcome, err := f.service.AddOrUpdateAuthor(ctx, "jane austen", "1775-12-01", "1817-07-01")
	require.NoError(t, err)
	assert.Equal(t, AuthorCreated, outcome)

	updated, outcome, err := f.service.AddOrUpdateAuthor(ctx, "Jane Austen", "1775-12-16", "1817-07-18")
	require.NoError(t, err)
	assert.Equal(t, AuthorUpdated, outcome)
	assert.Equal(t, created.ID, updated.ID)

	authors, _ := f.counts(t)
	assert.Equal(t, 1, authors)

	stored, err := f.authors.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Austen", stored.Name)
	assert.Equal(t, "1775-12-16", models.FormatDate(stored.BirthDate))
	assert.Equal(t, "1817-07-18", models.FormatDate(stored.DateOfDeath))
}

func TestAddOrUpdateAuthorRejectsBadDates(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, _, err := f.service.AddOrUpdateAuthor(ctx, "Jane Austen", "1775-12-16", "1817-07-18")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		birth    string
		death    string
		expected error
	}{
		{"Birth after death", "1817-07-18", "1775-12-16", ErrInvalidDateRange},
		{"Unparseable birth", "16/12/1775", "1817-07-18", ErrInvalidDate},
		{"Empty death", "1775-12-16", "", ErrInvalidDate},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.service.AddOrUpdateAuthor(ctx, "Jane Austen", tc.birth, tc.death)
			assert.ErrorIs(t, err, tc.expected)
		})
	}

	stored, err := f.authors.GetByName(ctx, "jane austen")
	require.NoError(t, err)
	assert.Equal(t, "1775-12-16", models.FormatDate(stored.BirthDate), "rejected updates perform no writes")
}

func TestDeleteBook(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	book, err := f.service.AddBook(ctx, "Pride and Prejudice", 1813, "9780141439518", "Jane Austen")
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteBook(ctx, book.ID))
	assert.ErrorIs(t, f.service.DeleteBook(ctx, book.ID), ErrBookNotFound)
	assert.ErrorIs(t, f.service.DeleteBook(ctx, 12345), ErrBookNotFound)

	authors, books := f.counts(t)
	assert.Equal(t, 1, authors)
	assert.Equal(t, 0, books)
}

func seedAustenAndTolkien(t *testing.T, f *catalogFixture) {
	t.Helper()
	ctx := context.Background()

	_, _, err := f.service.AddOrUpdateAuthor(ctx, "Jane Austen", "1775-12-16", "1817-07-18")
	require.NoError(t, err)

	for _, b := range []struct {
		title  string
		year   int
		isbn   string
		author string
	}{
		{"Pride and Prejudice", 1813, "9780141439518", "Jane Austen"},
		{"The Hobbit", 1937, "9780547928227", "J.R.R. Tolkien"},
		{"A Room of One's Own", 1929, "9780156787338", "Virginia Woolf"},
	} {
		_, err := f.service.AddBook(ctx, b.title, b.year, b.isbn, b.author)
		require.NoError(t, err)
	}
}

func TestListBooks(t *testing.T) {
	f := newCatalogFixture(t)
	seedAustenAndTolkien(t, f)
	ctx := context.Background()

	books, err := f.service.ListBooks(ctx, SortByBookTitle)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.True(t, sort.SliceIsSorted(books, func(i, j int) bool { return books[i].Title < books[j].Title }))
	assert.Equal(t, "A Room of One's Own", books[0].Title)

	books, err = f.service.ListBooks(ctx, SortByAuthorName)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.True(t, sort.SliceIsSorted(books, func(i, j int) bool { return books[i].AuthorName < books[j].AuthorName }))
	assert.Equal(t, "The Hobbit", books[0].Title)

	for _, key := range []string{"publication-year", ""} {
		_, err = f.service.ListBooks(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidSortKey, "sort key %q", key)
	}
}

func TestSearchBooks(t *testing.T) {
	f := newCatalogFixture(t)
	seedAustenAndTolkien(t, f)
	ctx := context.Background()

	_, err := f.service.SearchBooks(ctx, "")
	assert.ErrorIs(t, err, ErrEmptySearch)

	// A single space is a real needle: every multi-word title or name matches
	result, err := f.service.SearchBooks(ctx, " ")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
	assert.Equal(t, " ", result.Term)

	result, err = f.service.SearchBooks(ctx, "hobbit ")
	require.NoError(t, err)
	assert.True(t, result.NoMatch())

	result, err = f.service.SearchBooks(ctx, "austen")
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.False(t, result.NoMatch())
	assert.Equal(t, "Pride and Prejudice", result.Matches[0].Title)
	assert.Equal(t, "Jane Austen", result.Matches[0].Author)
	assert.Equal(t, 1813, result.Matches[0].PublicationYear)
	assert.Equal(t, "https://covers.test/cover.jpg", result.Matches[0].CoverURL)

	result, err = f.service.SearchBooks(ctx, "tolkien")
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "J.R.R. Tolkien", result.Matches[0].Author)

	result, err = f.service.SearchBooks(ctx, "dostoevsky")
	require.NoError(t, err)
	assert.True(t, result.NoMatch())
}

func TestExportBooks(t *testing.T) {
	f := newCatalogFixture(t)
	seedAustenAndTolkien(t, f)

	var buf bytes.Buffer
	require.NoError(t, f.service.ExportBooks(context.Background(), &buf))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Books")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Title", "Author", "Publication Year", "ISBN", "Cover URL"}, rows[0])
	assert.Equal(t, "A Room of One's Own", rows[1][0])
	assert.Equal(t, "Virginia Woolf", rows[1][1])
	assert.Equal(t, "1929", rows[1][2])
}
