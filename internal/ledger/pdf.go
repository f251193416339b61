// =============================================================================
// Receipt Checker - PDF Statement Parser
// =============================================================================
//
// Parses the Tahesab account-statement PDF. The document is a visual table
// with no recoverable structure, so the pipeline is:
//
//   positioned glyphs -> word tokens -> assembled lines -> per-line
//   amount extraction + description annotation -> LedgerRow
//
// Page 1 tokens seed the owner-code set; after all pages are extracted the
// frequency pass scrubs structural codes from every row.
//
// A line with no surviving amount candidate is not a transaction row and is
// dropped. Dates on these statements are frequently garbled by the renderer,
// so the date is best-effort and may be empty.
//
// =============================================================================

package ledger

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/dslipak/pdf"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/checkhesab/receipt-checker/internal/textnorm"
	"github.com/checkhesab/receipt-checker/internal/types"
)

const maxDescRunes = 200

var (
	reDocNum = regexp.MustCompile(`\b(\d{6,8})\b`)
	// Solar Hijri year (13xx/14xx) followed by month and day with arbitrary
	// single-rune separators, matched on the de-spaced line.
	reRowDate  = regexp.MustCompile(`1[34]\d\d\D\d{1,2}\D\d{1,2}`)
	reAllSpace = regexp.MustCompile(`\s+`)
)

// ParsePDF extracts ledger rows from a statement PDF held in memory.
func ParsePDF(data []byte) (rows []types.LedgerRow, err error) {
	// The underlying reader panics on some malformed content streams; a
	// malformed upload must surface as a request error, not a crash.
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	owner := NewOwnerCodes()
	extractor := NewAmountExtractor()
	var out []*types.LedgerRow

	numPages := reader.NumPage()
	log.Info().Int("pages", numPages).Msg("parsing statement PDF")

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content := page.Content()
		frags := make([]Token, 0, len(content.Text))
		for _, t := range content.Text {
			frags = append(frags, Token{X: t.X, Y: t.Y, W: t.W, H: t.FontSize, Text: t.S})
		}
		words := MergeFragments(frags)

		if pageNum == 1 {
			for _, w := range words {
				owner.SeedFromHeaderToken(w.Text)
			}
		}

		for _, line := range AssembleLines(words) {
			row := parseStatementLine(line, pageNum, extractor, owner)
			if row != nil {
				out = append(out, row)
			}
		}
	}

	owner.ApplyFrequencyFilter(out)

	log.Info().Int("rows", len(out)).Msg("statement PDF extracted")

	result := make([]types.LedgerRow, len(out))
	for i, r := range out {
		result[i] = *r
	}
	return result, nil
}

// parseStatementLine converts one assembled line into a ledger row, or nil
// when the line carries no transaction amount.
func parseStatementLine(line string, pageNum int, extractor *AmountExtractor, owner *OwnerCodes) *types.LedgerRow {
	credit, ok := extractor.TransactionAmount(line)
	if !ok {
		return nil
	}

	codes, sender := AnnotateDescription(line, owner)

	lineNorm := textnorm.Digits(line)
	docNum := ""
	if m := reDocNum.FindStringSubmatch(lineNorm); m != nil {
		docNum = m[1]
	}

	date := ""
	deSpaced := reAllSpace.ReplaceAllString(lineNorm, "")
	if m := reRowDate.FindString(deSpaced); m != "" {
		date = strings.NewReplacer("-", "/", "_", "/").Replace(m)
	}

	return &types.LedgerRow{
		Page:      pageNum,
		Date:      date,
		DocNum:    docNum,
		Desc:      truncateRunes(strings.TrimSpace(line), maxDescRunes),
		Credit:    credit,
		Debit:     decimal.Zero,
		CreditRaw: credit.String(),
		DebitRaw:  "0",
		Codes:     codes,
		Sender:    sender,
		DocType:   types.DocTypeCredit,
		Amount:    credit,
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
