package ledger

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/checkhesab/receipt-checker/internal/types"
)

const tableHeader = `<tr><th>شرح</th><th>بستانکار</th><th>بدهکار</th><th>تاریخ</th></tr>`

// statementTable builds a table big enough that singleton codes stay under
// the 10% owner-code frequency bar.
func statementTable() string {
	var b strings.Builder
	b.WriteString("<html><body><table>")
	b.WriteString(tableHeader)
	b.WriteString(`<tr><td>واریز [2452] حسینی/1264</td><td>500,000</td><td>0</td><td>1404/01/05</td></tr>`)
	b.WriteString(`<tr><td>برداشت چک</td><td>0</td><td>750,000</td><td>1404/01/06</td></tr>`)
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, `<tr><td>واریز نقدی/%d</td><td>%d</td><td>0</td><td>1404/01/%02d</td></tr>`,
			6000+i, 100000+i*1000, 7+i)
	}
	b.WriteString(`<tr><td>جمع</td><td>0</td><td>0</td><td></td></tr>`)
	b.WriteString("</table></body></html>")
	return b.String()
}

func TestParseHTML(t *testing.T) {
	rows, err := ParseHTML([]byte(statementTable()))
	require.NoError(t, err)
	require.Len(t, rows, 12)

	credit := rows[0]
	assert.Equal(t, types.DocTypeCredit, credit.DocType)
	assert.True(t, credit.Credit.Equal(decimal.NewFromInt(500000)))
	assert.True(t, credit.Amount.Equal(decimal.NewFromInt(500000)))
	assert.Equal(t, "1404/01/05", credit.Date)
	assert.Contains(t, credit.Codes, "2452")
	assert.Contains(t, credit.Codes, "1264")
	assert.Equal(t, "حسینی", credit.Sender)

	debit := rows[1]
	assert.Equal(t, types.DocTypeDebit, debit.DocType)
	assert.True(t, debit.Debit.Equal(decimal.NewFromInt(750000)))
	assert.True(t, debit.Amount.Equal(decimal.NewFromInt(750000)))
}

func TestParseHTMLDeduplicatesAcrossTables(t *testing.T) {
	// paginated exports repeat rows in every table
	page := statementTable()
	doubled := page[:len(page)-len("</body></html>")] +
		"<table>" + tableHeader +
		`<tr><td>واریز [2452] حسینی/1264</td><td>500,000</td><td>0</td><td>1404/01/05</td></tr>` +
		"</table></body></html>"

	rows, err := ParseHTML([]byte(doubled))
	require.NoError(t, err)
	assert.Len(t, rows, 12)
}

func TestParseHTMLHeaderlessContinuationTable(t *testing.T) {
	// paginated exports repeat the header only on the first table; later
	// tables inherit the established column layout
	var b strings.Builder
	b.WriteString("<html><body><table>")
	b.WriteString(tableHeader)
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&b, `<tr><td>واریز نقدی/%d</td><td>%d</td><td>0</td><td>1404/01/%02d</td></tr>`,
			6000+i, 100000+i*1000, 7+i)
	}
	b.WriteString("</table><table>")
	for i := 6; i < 12; i++ {
		fmt.Fprintf(&b, `<tr><td>واریز نقدی/%d</td><td>%d</td><td>0</td><td>1404/01/%02d</td></tr>`,
			6000+i, 100000+i*1000, 7+i)
	}
	b.WriteString("</table></body></html>")

	rows, err := ParseHTML([]byte(b.String()))
	require.NoError(t, err)
	require.Len(t, rows, 12)
	assert.Contains(t, rows[11].Codes, "6011")
	assert.True(t, rows[11].Credit.Equal(decimal.NewFromInt(111000)))
}

func TestParseHTMLWithoutStatementColumns(t *testing.T) {
	rows, err := ParseHTML([]byte(`<html><body><table>
<tr><th>نام</th><th>مقدار</th></tr>
<tr><td>الف</td><td>1</td></tr>
</table></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodeHTMLLegacyEncoding(t *testing.T) {
	legacy, _, err := transform.Bytes(charmap.Windows1256.NewEncoder(), []byte("شرح حساب"))
	require.NoError(t, err)
	require.NotEqual(t, "شرح حساب", string(legacy))

	decoded, err := decodeHTML(legacy)
	require.NoError(t, err)
	assert.Equal(t, "شرح حساب", decoded)
}
