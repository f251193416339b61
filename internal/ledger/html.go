// =============================================================================
// Receipt Checker - HTML Statement Parser
// =============================================================================
//
// Some accounting tools export the same statement as an HTML table dump
// instead of a PDF. The table headers are inspected to locate the شرح
// (description), بستانکار (credit), بدهکار (debit) and تاریخ (date) columns;
// every table in the document is processed because paginated exports split
// transactions across multiple tables.
//
// Older Iranian accounting tools still emit Windows-1256; bytes that are not
// valid UTF-8 are decoded through that code page.
//
// =============================================================================

package ledger

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/checkhesab/receipt-checker/internal/textnorm"
	"github.com/checkhesab/receipt-checker/internal/types"
)

// ParseHTML extracts ledger rows from an HTML statement export.
func ParseHTML(data []byte) ([]types.LedgerRow, error) {
	text, err := decodeHTML(data)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	owner := NewOwnerCodes()
	seen := make(map[string]struct{})
	var out []*types.LedgerRow

	// Column indices carry across tables: paginated exports repeat the
	// header only on the first table, so continuation tables inherit the
	// last known layout.
	cols := statementColumns{desc: -1, credit: -1, debit: -1, date: -1}
	for _, table := range findElements(doc, "table") {
		parseHTMLTable(table, &cols, owner, seen, &out)
	}

	owner.ApplyFrequencyFilter(out)

	log.Info().Int("rows", len(out)).Msg("statement HTML extracted")

	result := make([]types.LedgerRow, len(out))
	for i, r := range out {
		result[i] = *r
	}
	return result, nil
}

// decodeHTML returns the document text, falling back to Windows-1256 when
// the bytes are not valid UTF-8.
func decodeHTML(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, _, err := transform.Bytes(charmap.Windows1256.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode legacy HTML encoding: %w", err)
	}
	return string(decoded), nil
}

// statementColumns is the column-role mapping shared across a document's
// tables; -1 marks a column not located yet.
type statementColumns struct {
	desc, credit, debit, date int
}

// parseHTMLTable updates the column mapping from this table's header cells
// and appends its transaction rows. A table without its own header keeps the
// mapping established by an earlier table.
func parseHTMLTable(table *html.Node, cols *statementColumns, owner *OwnerCodes, seen map[string]struct{}, out *[]*types.LedgerRow) {
	// Header cells may be th or td depending on the exporting tool; inspect
	// both in document order.
	cells := findElements(table, "th", "td")
	for i, cell := range cells {
		t := nodeText(cell)
		switch {
		case strings.Contains(t, "شرح"):
			cols.desc = i
		case strings.Contains(t, "بستانکار"):
			cols.credit = i
		case strings.Contains(t, "بدهکار"):
			cols.debit = i
		case strings.Contains(t, "تاریخ"):
			cols.date = i
		}
	}

	descIdx, creditIdx, debitIdx, dateIdx := cols.desc, cols.credit, cols.debit, cols.date
	if descIdx == -1 || creditIdx == -1 {
		return
	}

	for _, tr := range findElements(table, "tr") {
		tds := findElements(tr, "td")
		if len(tds) <= max(descIdx, creditIdx) {
			continue
		}

		var parts []string
		for _, td := range tds {
			if t := nodeText(td); t != "" {
				parts = append(parts, t)
			}
		}
		desc := strings.Join(parts, " | ")
		// header rows re-encoded as td
		if desc == "" || strings.Contains(desc, "شرح") || strings.Contains(desc, "ردیف") {
			continue
		}

		creditRaw := nodeText(tds[creditIdx])
		debitRaw := "0"
		if debitIdx != -1 && len(tds) > debitIdx {
			debitRaw = nodeText(tds[debitIdx])
		}
		date := ""
		if dateIdx != -1 && len(tds) > dateIdx {
			date = nodeText(tds[dateIdx])
		}

		credit, _ := textnorm.ToAmount(creditRaw)
		debit, _ := textnorm.ToAmount(debitRaw)
		if credit.IsZero() && debit.IsZero() {
			continue
		}

		// Paginated exports repeat rows across tables; de-duplicate on the
		// transaction identity.
		key := fmt.Sprintf("%s\x00%s\x00%s\x00%s", date, truncateRunes(desc, 100), credit.String(), debit.String())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		codes, sender := AnnotateDescription(desc, owner)

		docType := types.DocTypeDebit
		amount := debit
		if credit.GreaterThan(decimal.Zero) {
			docType = types.DocTypeCredit
			amount = credit
		}

		*out = append(*out, &types.LedgerRow{
			Page:      1,
			Date:      date,
			Desc:      truncateRunes(desc, maxDescRunes),
			Credit:    credit,
			Debit:     debit,
			CreditRaw: creditRaw,
			DebitRaw:  debitRaw,
			Codes:     codes,
			Sender:    sender,
			DocType:   docType,
			Amount:    amount,
		})
	}
}

// =============================================================================
// NODE HELPERS
// =============================================================================

// findElements returns every descendant element of n whose tag is in names,
// in document order.
func findElements(n *html.Node, names ...string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				for _, name := range names {
					if c.Data == name {
						out = append(out, c)
						break
					}
				}
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// nodeText concatenates the trimmed text content of a node's subtree.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
