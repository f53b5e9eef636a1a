package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"realty-analyzer/models"
	"realty-analyzer/utils"
)

// FileSource loads the dataset from a spreadsheet on disk. .xlsx files are
// read with excelize, .csv files with encoding/csv.
type FileSource struct {
	Path   string
	Sheet  string // xlsx only; empty means the first sheet
	Logger *utils.Logger
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path, sheet string, logger *utils.Logger) *FileSource {
	return &FileSource{Path: path, Sheet: sheet, Logger: logger}
}

// FetchAll reads every data row of the file.
func (s *FileSource) FetchAll() ([]models.Record, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".xlsx", ".xlsm":
		rows, err = s.readXLSX()
	case ".csv":
		rows, err = s.readCSV()
	default:
		return nil, fmt.Errorf("file source: unsupported file type %q", s.Path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file source: %q has no header row", s.Path)
	}

	cleaner, err := newRowCleaner(rows[0], s.Logger)
	if err != nil {
		return nil, fmt.Errorf("file source: %q: %w", s.Path, err)
	}
	records := cleaner.Clean(rows[1:])
	s.Logger.Info("[dataset] Loaded %d records from %s", len(records), s.Path)
	return records, nil
}

func (s *FileSource) readXLSX() ([][]string, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("file source: open %q: %w", s.Path, err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("file source: %q has no sheets", s.Path)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("file source: read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func (s *FileSource) readCSV() ([][]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("file source: open %q: %w", s.Path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("file source: read %q: %w", s.Path, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
