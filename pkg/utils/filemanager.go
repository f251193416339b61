// =============================================================================
// Receipt Checker - File Management Utilities
// =============================================================================
//
// Small file-system helpers shared by the CLI and the server: output
// directory creation, collision-free output naming, and JSON report
// writing.
//
// =============================================================================

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EnsureDir creates dir (and parents) when missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// UniqueName builds a collision-free file name from a base name, a
// timestamp and a short uuid fragment: "<base>_20260823_154500_1a2b3c4d<ext>".
// The extension must include the dot.
func UniqueName(base, ext string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "report"
	}
	stamp := time.Now().Format("20060102_150405")
	id := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%s_%s%s", base, stamp, id, ext)
}

// WorkbookName keeps the original spreadsheet base name but forces the
// .xlsx extension — legacy .xls uploads are rebuilt as .xlsx by the
// write-back.
func WorkbookName(original string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" {
		base = "bank"
	}
	return base + ".xlsx"
}

// WriteJSON marshals v with indentation and writes it to path.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
