package source

import (
	"context"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook serves transcripts stored one per row in the first sheet of an
// XLSX file. Columns are found from header names.
type Workbook struct {
	path string
	refs []string
	rows map[string]string
}

// OpenWorkbook loads every non-empty transcript row. The transcript column is
// the first header mentioning "transcript" or "text"; the id column is the
// first mentioning "call id" or "callid", else a header that is exactly "id".
// Rows without an id are keyed by their 1-based data row number.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("open workbook %s: no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("open workbook %s: no data rows", path)
	}

	textIdx, callIdx, plainIdx := -1, -1, -1
	for i, h := range rows[0] {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case textIdx == -1 && (strings.Contains(l, "transcript") || strings.Contains(l, "text")):
			textIdx = i
		case callIdx == -1 && (strings.Contains(l, "call id") || strings.Contains(l, "callid")):
			callIdx = i
		case plainIdx == -1 && l == "id":
			plainIdx = i
		}
	}
	idIdx := callIdx
	if idIdx == -1 {
		idIdx = plainIdx
	}
	if textIdx == -1 {
		return nil, fmt.Errorf("open workbook %s: no transcript column", path)
	}

	wb := &Workbook{path: path, rows: map[string]string{}}
	for n, r := range rows[1:] {
		if textIdx >= len(r) || strings.TrimSpace(r[textIdx]) == "" {
			continue
		}
		id := ""
		if idIdx >= 0 && idIdx < len(r) {
			id = strings.TrimSpace(r[idIdx])
		}
		if id == "" {
			id = strconv.Itoa(n + 1)
		}
		if _, dup := wb.rows[id]; dup {
			continue
		}
		wb.refs = append(wb.refs, id)
		wb.rows[id] = r[textIdx]
	}
	return wb, nil
}

// Refs returns the row ids in sheet order.
func (w *Workbook) Refs() []string {
	return append([]string(nil), w.refs...)
}

func (w *Workbook) Read(_ context.Context, id string) (string, error) {
	text, ok := w.rows[id]
	if !ok {
		return "", &fs.PathError{Op: "read", Path: w.path + "#" + id, Err: fs.ErrNotExist}
	}
	return text, nil
}
