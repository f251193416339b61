// =============================================================================
// Receipt Checker - Reconciliation Marking (Highlight Write-Back)
// =============================================================================
//
// After a reconciliation pass, matched bank rows are written back so the
// next pass can flag them as duplicates: the marker text goes into a fixed
// designated column and the whole row is filled yellow. The original
// workbook may be a legacy .xls with formatting excelize cannot round-trip,
// so the write-back always rebuilds a clean .xlsx from the string grid
// instead of editing the upload in place.
//
// Rows locked by a previous pass keep their original marker text; only newly
// matched rows receive the fresh marker. row_num from the parser is the join
// key and maps 1:1 onto the sheet's 1-based rows because the grid preserves
// source positions.
//
// =============================================================================

package bankstmt

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// DefaultLockColumn is the designated marker column (column O); statements
// seen in production never use more than 14 data columns.
const DefaultLockColumn = 15

// LockPlan maps a bank grid row number (1-based) to the marker text to write
// into it.
type LockPlan map[int]string

// WriteLockedWorkbook rebuilds the statement as an .xlsx with every planned
// row marked and highlighted, and saves it to path.
func WriteLockedWorkbook(grid [][]string, plan LockPlan, lockColumn int, path string) error {
	if lockColumn <= 0 {
		lockColumn = DefaultLockColumn
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	// The statement is right-to-left; without this the rebuilt sheet is
	// unreadable next to the original.
	rtl := true
	if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return fmt.Errorf("failed to set sheet view: %w", err)
	}

	for ri, row := range grid {
		for ci, cell := range row {
			if cell == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return fmt.Errorf("bad cell coordinates: %w", err)
			}
			if err := f.SetCellValue(sheet, name, cell); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", name, err)
			}
		}
	}

	yellow, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create highlight style: %w", err)
	}

	// deterministic write order for identical inputs
	rows := make([]int, 0, len(plan))
	for r := range plan {
		rows = append(rows, r)
	}
	sort.Ints(rows)

	for _, r := range rows {
		marker, err := excelize.CoordinatesToCellName(lockColumn, r)
		if err != nil {
			return fmt.Errorf("bad lock column coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, marker, plan[r]); err != nil {
			return fmt.Errorf("failed to write lock marker: %w", err)
		}

		first, _ := excelize.CoordinatesToCellName(1, r)
		last, _ := excelize.CoordinatesToCellName(lockColumn, r)
		if err := f.SetCellStyle(sheet, first, last, yellow); err != nil {
			return fmt.Errorf("failed to highlight row %d: %w", r, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save locked workbook: %w", err)
	}
	return nil
}
