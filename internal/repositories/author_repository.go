package repositories

import (
	"context"
	"database/sql"

	"github.com/alimgiray/bookshelf/internal/models"
)

type AuthorRepository struct {
	db *sql.DB
}

func NewAuthorRepository(db *sql.DB) *AuthorRepository {
	return &AuthorRepository{
		db: db,
	}
}

// Create inserts a new author and assigns its generated ID
func (r *AuthorRepository) Create(ctx context.Context, author *models.Author) error {
	return insertAuthor(ctx, r.db, author)
}

func insertAuthor(ctx context.Context, q execer, author *models.Author) error {
	query := `
		INSERT INTO authors (name, birth_date, date_of_death)
		VALUES ($1, $2, $3)
	`

	result, err := q.ExecContext(ctx, query,
		author.Name,
		dateValue(author.BirthDate),
		dateValue(author.DateOfDeath),
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	author.ID = id
	return nil
}

// Update overwrites the name and dates of an existing author
func (r *AuthorRepository) Update(ctx context.Context, author *models.Author) error {
	query := `
		UPDATE authors
		SET name = $1, birth_date = $2, date_of_death = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query,
		author.Name,
		dateValue(author.BirthDate),
		dateValue(author.DateOfDeath),
		author.ID,
	)
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

// GetByID retrieves an author by ID
func (r *AuthorRepository) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	query := `
		SELECT id, name, birth_date, date_of_death, created_at
		FROM authors
		WHERE id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByName retrieves the oldest author whose name matches case-insensitively
func (r *AuthorRepository) GetByName(ctx context.Context, name string) (*models.Author, error) {
	query := `
		SELECT id, name, birth_date, date_of_death, created_at
		FROM authors
		WHERE casefold(name) = casefold($1)
		ORDER BY id
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

// Count returns the number of stored authors
func (r *AuthorRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM authors`).Scan(&count)
	return count, err
}

func (r *AuthorRepository) scanOne(row *sql.Row) (*models.Author, error) {
	var birth, death sql.NullString
	author := &models.Author{}

	err := row.Scan(
		&author.ID,
		&author.Name,
		&birth,
		&death,
		&author.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if author.BirthDate, err = scanDate(birth); err != nil {
		return nil, err
	}
	if author.DateOfDeath, err = scanDate(death); err != nil {
		return nil, err
	}

	return author, nil
}
