package availability

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pibshift/pibshift/pkg/core/model"
)

// Source loads an availability table from somewhere
type Source interface {
	Load(ctx context.Context) (*model.AvailabilityTable, error)
}

// FileSource reads a local .xlsx or .csv file
type FileSource struct {
	Path   string
	Sheet  string
	Layout Layout
}

// NewFileSource creates a FileSource for path
func NewFileSource(path, sheet string, layout Layout) *FileSource {
	return &FileSource{Path: path, Sheet: sheet, Layout: layout}
}

func (s *FileSource) Load(ctx context.Context) (*model.AvailabilityTable, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open availability file: %w", err)
	}
	defer f.Close()

	return Read(f, s.Path, s.Sheet, s.Layout)
}

// ReaderSource reads an upload; Name only selects the format by extension
type ReaderSource struct {
	Reader io.Reader
	Name   string
	Sheet  string
	Layout Layout
}

func (s *ReaderSource) Load(ctx context.Context) (*model.AvailabilityTable, error) {
	return Read(s.Reader, s.Name, s.Sheet, s.Layout)
}

// Read parses an .xlsx/.xlsm workbook or a .csv file, chosen by the extension of name
func Read(r io.Reader, name, sheet string, layout Layout) (*model.AvailabilityTable, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r, sheet, layout)
	case ".csv":
		return ReadCSV(r, layout)
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
}
