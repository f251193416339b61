// =============================================================================
// Receipt Checker - HTTP Handlers
// =============================================================================
//
// The analyze handler accepts the two statement uploads plus the matching
// flags, runs the reconciliation pipeline, triggers the best-effort
// highlighting write-back, and returns the per-row results with summary
// counts. The response shape is the stable API contract consumed by the
// frontend.
//
// =============================================================================

package server

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/checkhesab/receipt-checker/internal/bankstmt"
	"github.com/checkhesab/receipt-checker/internal/reconcile"
	"github.com/checkhesab/receipt-checker/internal/types"
	"github.com/checkhesab/receipt-checker/pkg/utils"
)

// analyzeResponse is the wire format of a successful reconciliation.
type analyzeResponse struct {
	OK        bool                `json:"ok"`
	Total     int                 `json:"total"`
	Found     int                 `json:"found"`
	Review    int                 `json:"review"`
	Duplicate int                 `json:"duplicate"`
	NotFound  int                 `json:"not_found"`
	BankTotal int                 `json:"bank_total"`
	PDFTotal  int                 `json:"pdf_total"`
	Results   []types.MatchResult `json:"results"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.Server.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart upload"})
		return
	}

	ledgerData, ledgerName, err := formFile(r, "pdf_file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing ledger file (pdf_file)"})
		return
	}
	bankData, bankName, err := formFile(r, "excel_file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing bank file (excel_file)"})
		return
	}

	opts := s.requestOptions(r)

	outcome, err := reconcile.Run(ledgerData, ledgerName, bankData, bankName, opts)
	if err != nil {
		log.Error().Err(err).Str("ledger", ledgerName).Str("bank", bankName).Msg("reconciliation failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	// The write-back is a side channel: its failure must not fail the
	// analysis the user is waiting for.
	if s.cfg.Locking.Enabled {
		s.writeLockedCopy(outcome, ledgerName, bankName)
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		OK:        true,
		Total:     outcome.Summary.Total,
		Found:     outcome.Summary.Found,
		Review:    outcome.Summary.Review,
		Duplicate: outcome.Summary.Duplicate,
		NotFound:  outcome.Summary.NotFound,
		BankTotal: outcome.Summary.BankTotal,
		PDFTotal:  outcome.Summary.LedgerTotal,
		Results:   outcome.Results,
	})
}

// requestOptions folds the form flags over the configured defaults.
func (s *Server) requestOptions(r *http.Request) types.MatchOptions {
	opts := s.cfg.MatchOptions()
	opts.CreditOnly = formBool(r, "credit_only", opts.CreditOnly)
	opts.UseTracking = formBool(r, "use_tracking", opts.UseTracking)
	opts.UseName = formBool(r, "use_name", opts.UseName)
	opts.UseAmount = formBool(r, "use_amount", opts.UseAmount)
	if v := strings.ToLower(strings.TrimSpace(r.FormValue("tx_type_filter"))); v != "" {
		opts.TxTypeFilter = v
	}
	return opts
}

func (s *Server) writeLockedCopy(outcome *reconcile.Outcome, ledgerName, bankName string) {
	plan := outcome.LockPlan(ledgerName)
	if len(plan) == 0 {
		return
	}
	if err := utils.EnsureDir(s.cfg.Locking.OutputDir); err != nil {
		log.Error().Err(err).Msg("failed to prepare lock output directory")
		return
	}
	path := filepath.Join(s.cfg.Locking.OutputDir, utils.WorkbookName(bankName))
	if err := bankstmt.WriteLockedWorkbook(outcome.BankGrid, plan, s.cfg.Locking.LockColumn, path); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to write locked workbook")
		return
	}
	log.Info().Str("path", path).Int("rows", len(plan)).Msg("locked workbook written")
}

// =============================================================================
// HELPERS
// =============================================================================

func formFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()
	data, err := readAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

func readAll(f multipart.File) ([]byte, error) {
	return io.ReadAll(f)
}

func formBool(r *http.Request, field string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(r.FormValue(field)))
	switch v {
	case "":
		return def
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
