package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alimgiray/bookshelf/internal/models"
)

// BookOrder selects the ordering of catalog listings
type BookOrder int

const (
	OrderByTitle BookOrder = iota
	OrderByAuthorName
)

func (o BookOrder) clause() (string, error) {
	switch o {
	case OrderByTitle:
		return "b.title, b.id", nil
	case OrderByAuthorName:
		return "a.name, b.id", nil
	default:
		return "", fmt.Errorf("unknown book order %d", o)
	}
}

type BookRepository struct {
	db *sql.DB
}

func NewBookRepository(db *sql.DB) *BookRepository {
	return &BookRepository{
		db: db,
	}
}

// Create stores a book owned by author. An author without an ID is inserted
// first; both rows are written in a single transaction.
func (r *BookRepository) Create(ctx context.Context, book *models.Book, author *models.Author) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed, insertedAuthor := false, false
	defer func() {
		if committed {
			return
		}
		tx.Rollback()
		if insertedAuthor {
			author.ID = 0
		}
	}()

	if author.ID == 0 {
		if err := insertAuthor(ctx, tx, author); err != nil {
			return err
		}
		insertedAuthor = true
	}
	book.AuthorID = author.ID

	query := `
		INSERT INTO books (isbn, cover_url, title, publication_year, author_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	result, err := tx.ExecContext(ctx, query,
		book.ISBN,
		book.CoverURL,
		book.Title,
		book.PublicationYear,
		book.AuthorID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateISBN
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	book.ID = id
	return nil
}

// GetByID retrieves a book by ID
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	query := `
		SELECT id, isbn, cover_url, title, publication_year, author_id, created_at
		FROM books
		WHERE id = $1
	`

	return scanBook(r.db.QueryRowContext(ctx, query, id))
}

// GetByISBN retrieves a book by its exact ISBN
func (r *BookRepository) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	query := `
		SELECT id, isbn, cover_url, title, publication_year, author_id, created_at
		FROM books
		WHERE isbn = $1
	`

	return scanBook(r.db.QueryRowContext(ctx, query, isbn))
}

// Delete deletes a book by ID
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ListOrderedBy returns every book joined with its author
func (r *BookRepository) ListOrderedBy(ctx context.Context, order BookOrder) ([]*models.BookWithAuthor, error) {
	orderBy, err := order.clause()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT b.id, b.isbn, b.cover_url, b.title, b.publication_year, b.author_id, b.created_at, a.name
		FROM books b
		JOIN authors a ON a.id = b.author_id
		ORDER BY ` + orderBy

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*models.BookWithAuthor
	for rows.Next() {
		book := &models.BookWithAuthor{}
		err := rows.Scan(
			&book.ID,
			&book.ISBN,
			&book.CoverURL,
			&book.Title,
			&book.PublicationYear,
			&book.AuthorID,
			&book.CreatedAt,
			&book.AuthorName,
		)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	return books, rows.Err()
}

// Search returns books whose title or author name contains term, ignoring case.
// The term is matched literally.
func (r *BookRepository) Search(ctx context.Context, term string) ([]*models.SearchMatch, error) {
	query := `
		SELECT b.title, a.name, b.publication_year, b.cover_url
		FROM books b
		JOIN authors a ON a.id = b.author_id
		WHERE instr(casefold(b.title), casefold($1)) > 0
		   OR instr(casefold(a.name), casefold($1)) > 0
		ORDER BY b.title, b.id
	`

	rows, err := r.db.QueryContext(ctx, query, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*models.SearchMatch
	for rows.Next() {
		match := &models.SearchMatch{}
		err := rows.Scan(
			&match.Title,
			&match.Author,
			&match.PublicationYear,
			&match.CoverURL,
		)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}

	return matches, rows.Err()
}

// Count returns the number of stored books
func (r *BookRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&count)
	return count, err
}

func scanBook(row *sql.Row) (*models.Book, error) {
	book := &models.Book{}
	err := row.Scan(
		&book.ID,
		&book.ISBN,
		&book.CoverURL,
		&book.Title,
		&book.PublicationYear,
		&book.AuthorID,
		&book.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return book, nil
}
