package models

// Common errors
var (
	ErrAuthorNameRequired     = &ValidationError{Field: "author-name", Message: "Author name is required"}
	ErrBookTitleRequired      = &ValidationError{Field: "book-title", Message: "Book title is required"}
	ErrBookISBNRequired       = &ValidationError{Field: "isbn", Message: "ISBN is required"}
	ErrPublicationYearInvalid = &ValidationError{Field: "publication-year", Message: "Publication year must be a whole number"}
)

// ValidationError reports an invalid form field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
