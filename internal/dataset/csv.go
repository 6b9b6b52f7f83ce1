package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVLoader reads comma, semicolon or tab separated files with a header row.
type CSVLoader struct {
	Options Options
}

// CanLoad accepts .csv and .tsv files.
func (CSVLoader) CanLoad(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

// Load reads the whole file into memory and infers column types.
func (l CSVLoader) Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	t, err := ReadCSV(f, l.delimiter(path), l.Options)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return t, nil
}

func (l CSVLoader) delimiter(path string) rune {
	if l.Options.Delimiter != 0 {
		return l.Options.Delimiter
	}
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// ReadCSV parses delimited text with a header row. Rows shorter than the header
// are padded with missing cells; longer rows are an error.
func ReadCSV(r io.Reader, delim rune, opt Options) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 || (len(header) == 1 && strings.TrimSpace(header[0]) == "") {
		return nil, errors.New("empty header row")
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("read row %d: %d fields, header has %d", len(rows)+1, len(rec), len(header))
		}
		rows = append(rows, rec)
	}
	return fromRecords(header, rows, opt)
}

// WriteCSV writes the table with a header row. Missing cells are written empty
// and timestamps use RFC 3339 with milliseconds.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, v := range t.Row(i) {
			row[j] = FormatCell(v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatCell renders a cell for display or export; missing cells are empty.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02T15:04:05.000Z07:00")
	default:
		return fmt.Sprint(x)
	}
}
