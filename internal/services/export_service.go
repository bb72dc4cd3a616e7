package services

import (
	"fmt"
	"io"

	"github.com/alimgiray/bookshelf/internal/models"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Books"

var exportHeader = []interface{}{"Title", "Author", "Publication Year", "ISBN", "Cover URL"}

type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// WriteBooks writes books as an xlsx workbook with a single "Books" sheet
func (s *ExportService) WriteBooks(w io.Writer, books []*models.BookWithAuthor) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return err
	}

	for i, book := range books {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{book.Title, book.AuthorName, book.PublicationYear, book.ISBN, book.CoverURL}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "B", 40); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
