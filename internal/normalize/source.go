package normalize

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrEmptySheet is returned when a source has no header row.
var ErrEmptySheet = errors.New("sheet is empty")

// SourceError wraps a failure to read a raw source.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("read source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Source yields the raw grid of a spreadsheet. The first row is the header.
// Rows may be shorter than the header when trailing cells are empty.
type Source interface {
	Name() string
	Rows(ctx context.Context) ([][]string, error)
}

// ExcelSource reads one worksheet of an xlsx workbook.
type ExcelSource struct {
	Path  string
	Sheet string // first sheet when empty
}

func (s ExcelSource) Name() string { return s.Path }

func (s ExcelSource) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, &SourceError{Source: s.Path, Err: err}
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, &SourceError{Source: s.Path, Err: ErrEmptySheet}
		}
		sheet = list[0]
	}

	// Raw values keep date cells as serial numbers instead of locale
	// formatted strings.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &SourceError{Source: s.Path, Err: err}
	}
	if len(rows) == 0 {
		return nil, &SourceError{Source: s.Path, Err: ErrEmptySheet}
	}
	return rows, nil
}

// CSVSource reads a comma separated export of the spreadsheet.
type CSVSource struct {
	Path string
}

func (s CSVSource) Name() string { return s.Path }

func (s CSVSource) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, &SourceError{Source: s.Path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &SourceError{Source: s.Path, Err: err}
	}
	if len(rows) == 0 {
		return nil, &SourceError{Source: s.Path, Err: ErrEmptySheet}
	}
	return rows, nil
}

// SheetsSource reads a range of a Google spreadsheet with a service account.
type SheetsSource struct {
	SpreadsheetID   string
	Range           string
	CredentialsFile string

	// Service overrides the client built from CredentialsFile.
	Service *sheets.Service
}

func (s SheetsSource) Name() string {
	return fmt.Sprintf("sheets:%s/%s", s.SpreadsheetID, s.Range)
}

func (s SheetsSource) Rows(ctx context.Context) ([][]string, error) {
	srv := s.Service
	if srv == nil {
		var err error
		srv, err = sheets.NewService(ctx, option.WithCredentialsFile(s.CredentialsFile))
		if err != nil {
			return nil, &SourceError{Source: s.Name(), Err: fmt.Errorf("create sheets service: %w", err)}
		}
	}

	resp, err := srv.Spreadsheets.Values.Get(s.SpreadsheetID, s.Range).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, &SourceError{Source: s.Name(), Err: err}
	}
	if len(resp.Values) == 0 {
		return nil, &SourceError{Source: s.Name(), Err: ErrEmptySheet}
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			rows[i][j] = sheetValue(v)
		}
	}
	return rows, nil
}

// sheetValue renders an unformatted Sheets cell. Numbers arrive as float64.
func sheetValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatFloat(x)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}
