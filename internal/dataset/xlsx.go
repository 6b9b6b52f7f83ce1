package dataset

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// XLSXLoader reads one worksheet of an .xlsx workbook. The first row is the header.
type XLSXLoader struct {
	Options Options
	// Sheet selects a worksheet by name (case-insensitive).
	Sheet string
	// SheetIndex is the 1-based sheet id used when Sheet is empty; 0 means the first sheet.
	SheetIndex int
}

// CanLoad accepts .xlsx files.
func (XLSXLoader) CanLoad(p string) bool {
	return strings.HasSuffix(strings.ToLower(p), ".xlsx")
}

// Load extracts the selected worksheet and infers column types.
func (l XLSXLoader) Load(p string) (*Table, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, &LoadError{Path: p, Err: err}
	}
	defer zr.Close()

	wb, err := openWorkbook(&zr.Reader)
	if err != nil {
		return nil, &LoadError{Path: p, Err: err}
	}
	entry, err := wb.resolve(l.Sheet, l.SheetIndex)
	if err != nil {
		return nil, &LoadError{Path: p, Err: err}
	}
	grid, err := wb.cells(entry)
	if err != nil {
		return nil, &LoadError{Path: p, Err: err}
	}
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, &LoadError{Path: p, Err: errors.New("empty worksheet: no header row")}
	}
	t, err := fromRecords(grid[0], grid[1:], l.Options)
	if err != nil {
		return nil, &LoadError{Path: p, Err: err}
	}
	return t, nil
}

type xlsxWorkbook struct {
	Sheets []struct {
		Name    string `xml:"name,attr"`
		SheetID int    `xml:"sheetId,attr"`
		RelID   string `xml:"id,attr"`
	} `xml:"sheets>sheet"`
}

type xlsxRels struct {
	Items []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// xlsxText is a rich-text string: plain <t> or a list of formatted runs.
type xlsxText struct {
	T    string `xml:"t"`
	Runs []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

func (s xlsxText) String() string {
	if len(s.Runs) == 0 {
		return s.T
	}
	var b strings.Builder
	b.WriteString(s.T)
	for _, r := range s.Runs {
		b.WriteString(r.T)
	}
	return b.String()
}

type xlsxSharedStrings struct {
	Items []xlsxText `xml:"si"`
}

type xlsxWorksheet struct {
	Rows []struct {
		Num   int        `xml:"r,attr"`
		Cells []xlsxCell `xml:"c"`
	} `xml:"sheetData>row"`
}

type xlsxCell struct {
	Ref    string    `xml:"r,attr"`
	Type   string    `xml:"t,attr"`
	Value  string    `xml:"v"`
	Inline *xlsxText `xml:"is"`
}

// workbook is an opened archive with its sheet index and string table.
type workbook struct {
	zr     *zip.Reader
	book   xlsxWorkbook
	rels   map[string]string
	shared []string
}

func openWorkbook(zr *zip.Reader) (*workbook, error) {
	wb := &workbook{zr: zr, rels: map[string]string{}}
	if _, err := wb.decode("xl/workbook.xml", &wb.book); err != nil {
		return nil, err
	}
	var rels xlsxRels
	if _, err := wb.decode("xl/_rels/workbook.xml.rels", &rels); err != nil {
		return nil, err
	}
	for _, r := range rels.Items {
		if r.ID != "" && r.Target != "" {
			wb.rels[r.ID] = normalizeRelPath(r.Target)
		}
	}
	var sst xlsxSharedStrings
	if _, err := wb.decode("xl/sharedStrings.xml", &sst); err != nil {
		return nil, err
	}
	for _, si := range sst.Items {
		wb.shared = append(wb.shared, si.String())
	}
	return wb, nil
}

// decode unmarshals the named archive entry into v. A missing entry is not an
// error; found reports whether it existed.
func (wb *workbook) decode(name string, v any) (found bool, err error) {
	f, err := wb.zr.Open(name)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	if err := xml.NewDecoder(f).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return true, fmt.Errorf("parse %s: %w", name, err)
	}
	return true, nil
}

// resolve returns the archive entry holding the requested worksheet.
func (wb *workbook) resolve(name string, id int) (string, error) {
	sheets := wb.book.Sheets
	if name != "" {
		names := make([]string, len(sheets))
		for i, s := range sheets {
			names[i] = s.Name
			if strings.EqualFold(s.Name, name) && wb.rels[s.RelID] != "" {
				return wb.rels[s.RelID], nil
			}
		}
		return "", fmt.Errorf("sheet %q not found (available: %s)", name, strings.Join(names, ", "))
	}
	if id <= 0 && len(sheets) > 0 {
		id = sheets[0].SheetID
	}
	for _, s := range sheets {
		if s.SheetID == id && wb.rels[s.RelID] != "" {
			return wb.rels[s.RelID], nil
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", max(id, 1)), nil
}

// cells reads the worksheet into rows of strings, placing each cell by its
// column reference and each row by its row number, so skipped cells and rows
// stay empty. Rows above the first stored row are dropped.
func (wb *workbook) cells(entry string) ([][]string, error) {
	var ws xlsxWorksheet
	found, err := wb.decode(entry, &ws)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("worksheet %s missing from workbook", entry)
	}
	grid := make([][]string, 0, len(ws.Rows))
	first := 0
	for _, r := range ws.Rows {
		if r.Num > 0 {
			if first == 0 {
				first = r.Num
			}
			for len(grid) < r.Num-first {
				grid = append(grid, nil)
			}
		}
		var row []string
		for _, c := range r.Cells {
			col := colIndexFromRef(c.Ref)
			if col < 0 {
				col = len(row)
			}
			for len(row) <= col {
				row = append(row, "")
			}
			row[col] = wb.text(c)
		}
		grid = append(grid, row)
	}
	return grid, nil
}

func (wb *workbook) text(c xlsxCell) string {
	switch c.Type {
	case "s":
		i, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || i < 0 || i >= len(wb.shared) {
			return ""
		}
		return wb.shared[i]
	case "inlineStr":
		if c.Inline != nil {
			return c.Inline.String()
		}
	case "b":
		return strconv.FormatBool(strings.TrimSpace(c.Value) == "1")
	case "e":
		return ""
	}
	return c.Value
}

// colIndexFromRef turns "C12" into 2. It returns -1 when ref has no column letters.
func colIndexFromRef(ref string) int {
	n := 0
	for _, r := range ref {
		switch {
		case r >= 'A' && r <= 'Z':
			n = n*26 + int(r-'A') + 1
		case r >= 'a' && r <= 'z':
			n = n*26 + int(r-'a') + 1
		default:
			return n - 1
		}
	}
	return n - 1
}

// normalizeRelPath converts relationship targets such as "/xl/worksheets/sheet1.xml"
// or "worksheets/sheet1.xml" into zip entry names.
func normalizeRelPath(rel string) string {
	if rel == "" {
		return ""
	}
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return path.Clean(rel)
	}
	return path.Join("xl", rel)
}
