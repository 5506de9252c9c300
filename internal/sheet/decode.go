package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/solderinua-oss/solder-warehouse/internal/domain"
)

// Format is the container format of an uploaded table.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var (
	zipMagic  = []byte("PK\x03\x04")
	ole2Magic = []byte("\xd0\xcf\x11\xe0")
)

// textSniffLen bounds how much of a file is checked before it is read as CSV.
const textSniffLen = 8 << 10

// DetectFormat picks a format from the file extension and the leading bytes.
// Legacy .xls workbooks and binary files that are not zip containers are
// rejected. Files without an extension are read as CSV only when they look
// like text.
func DetectFormat(name string, head []byte) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".xls" || bytes.HasPrefix(head, ole2Magic):
		return "", errors.New("legacy .xls workbooks are not supported, save the file as .xlsx")
	case ext == ".xlsx" || ext == ".xlsm":
		return FormatXLSX, nil
	case ext == ".csv" || ext == ".txt":
		if !looksLikeText(head) {
			return "", fmt.Errorf("%s does not contain text", name)
		}
		return FormatCSV, nil
	case bytes.HasPrefix(head, zipMagic):
		return FormatXLSX, nil
	case ext == "" && looksLikeText(head):
		return FormatCSV, nil
	}
	if ext == "" {
		return "", errors.New("unrecognized binary file")
	}
	return "", fmt.Errorf("unsupported file type %s", ext)
}

// looksLikeText rejects control bytes other than common whitespace. Any other
// byte sequence is readable as UTF-8 or Windows-1251.
func looksLikeText(head []byte) bool {
	if len(head) > textSniffLen {
		head = head[:textSniffLen]
	}
	for _, b := range head {
		switch {
		case b == '\t', b == '\n', b == '\r', b == '\f':
		case b < 0x20, b == 0x7f:
			return false
		}
	}
	return true
}

// Decode reads the whole table from r. Every failure wraps domain.ErrDecode;
// a readable file without any non-empty sheet also wraps domain.ErrNoSheet.
func Decode(name string, r io.Reader) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrDecode, name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrDecode, name)
	}

	format, err := DetectFormat(name, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDecode, name, err)
	}

	var wb *Workbook
	switch format {
	case FormatXLSX:
		wb, err = decodeXLSX(data)
	default:
		wb, err = decodeCSV(name, data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDecode, name, err)
	}
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("%w: %w in %s", domain.ErrDecode, domain.ErrNoSheet, name)
	}
	return wb, nil
}

func decodeXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		records, err := readSheetRows(f, name)
		if err != nil {
			return nil, err
		}
		if s, ok := buildSheet(name, records); ok {
			wb.Sheets = append(wb.Sheets, s)
		}
	}
	return wb, nil
}

func readSheetRows(f *excelize.File, name string) ([][]string, error) {
	rows, err := f.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", name, err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from sheet %s: %w", name, err)
		}
		records = append(records, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in sheet %s: %w", name, err)
	}
	return records, nil
}

func decodeCSV(name string, data []byte) (*Workbook, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		// Exports from older desktop tools are Windows-1251.
		src = transform.NewReader(src, charmap.Windows1251.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("csv line %d: %w", perr.Line, perr.Err)
		}
		return nil, err
	}

	wb := &Workbook{}
	sheetName := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if s, ok := buildSheet(sheetName, records); ok {
		wb.Sheets = append(wb.Sheets, s)
	}
	return wb, nil
}

// sniffDelimiter counts candidate separators on the first line. Semicolons win
// ties because comma is also the decimal separator in these exports.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best, bestCount := ';', bytes.Count(line, []byte{';'})
	for _, c := range []rune{',', '\t'} {
		if n := bytes.Count(line, []byte{byte(c)}); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}
