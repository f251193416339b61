// =============================================================================
// Receipt Checker - Bank Statement Grid Loading
// =============================================================================
//
// Banks deliver statements as .xlsx, legacy .xls, or occasionally .csv. This
// file turns any of them into a plain grid of strings while preserving the
// original row positions — the parser derives each transaction's row_num
// from its 1-based position in this grid, and the highlighting write-back
// joins on that number, so no row may ever be dropped or reordered here.
//
//   .xlsx : excelize, first sheet
//   .xls  : shakinm/xlsReader; the library wants a file path, so the upload
//           is staged through a temp file
//   .csv  : encoding/csv with a Windows-1256 fallback for legacy exports
//
// =============================================================================

package bankstmt

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// LoadGrid reads spreadsheet bytes into a row-major grid of cell strings.
// The format is chosen from the file name extension; anything that is not
// .xls or .csv is treated as .xlsx.
func LoadGrid(data []byte, filename string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		return loadXLSGrid(data)
	case ".csv":
		return loadCSVGrid(data)
	default:
		return loadXLSXGrid(data)
	}
}

func loadXLSXGrid(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
	}
	return rows, nil
}

// loadXLSGrid stages the bytes through a temp file because xlsReader only
// opens paths.
func loadXLSGrid(data []byte) ([][]string, error) {
	tmp, err := os.CreateTemp("", "bankstmt-*.xls")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to stage xls: %w", err)
	}
	tmp.Close()

	workbook, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}

	if workbook.GetNumberSheets() == 0 {
		return nil, fmt.Errorf("xls has no sheets")
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("failed to read xls sheet: %w", err)
	}
	if sheet == nil {
		return nil, fmt.Errorf("xls sheet 0 is empty")
	}

	var grid [][]string
	for i := 0; i <= int(sheet.GetNumberRows()); i++ {
		row, err := sheet.GetRow(i)
		if err != nil || row == nil {
			// positions must stay stable, keep the gap
			grid = append(grid, nil)
			continue
		}
		var cells []string
		for _, col := range row.GetCols() {
			if col != nil {
				cells = append(cells, col.GetString())
			} else {
				cells = append(cells, "")
			}
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

func loadCSVGrid(data []byte) ([][]string, error) {
	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(src, charmap.Windows1256.NewDecoder())
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	grid, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return grid, nil
}
