package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used by forms and storage.
const DateLayout = "2006-01-02"

type Author struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewAuthor returns an unsaved author carrying only a name.
func NewAuthor(name string) *Author {
	return &Author{Name: name}
}

func (a *Author) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrAuthorNameRequired
	}
	return nil
}

// HasValidLifespan reports whether birth date is not after date of death.
// Missing dates are always valid.
func (a *Author) HasValidLifespan() bool {
	if a.BirthDate == nil || a.DateOfDeath == nil {
		return true
	}
	return !a.BirthDate.After(*a.DateOfDeath)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}

// FormatDate renders an optional date, empty when unset.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
