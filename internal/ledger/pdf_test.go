package ledger

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkhesab/receipt-checker/internal/types"
)

func TestParseStatementLine(t *testing.T) {
	e := NewAmountExtractor()

	t.Run("full_transaction_line", func(t *testing.T) {
		line := "1404/2/15 واریز نقد به بانک [صادرات منشادی،24454] خدمتی/2452 1,250,000 750,000"
		row := parseStatementLine(line, 3, e, nil)
		require.NotNil(t, row)

		assert.Equal(t, 3, row.Page)
		assert.Equal(t, "1404/2/15", row.Date)
		assert.True(t, row.Credit.Equal(decimal.NewFromInt(750000)))
		assert.True(t, row.Amount.Equal(decimal.NewFromInt(750000)))
		assert.True(t, row.Debit.IsZero())
		assert.Equal(t, types.DocTypeCredit, row.DocType)
		assert.Equal(t, []string{"24454", "2452"}, row.Codes)
		assert.Equal(t, "خدمتی", row.Sender)
	})

	t.Run("no_amount_is_not_a_row", func(t *testing.T) {
		assert.Nil(t, parseStatementLine("صورتحساب معین", 1, e, nil))
	})

	t.Run("document_number_extracted", func(t *testing.T) {
		row := parseStatementLine("سند 7123456 واریز 1,500,000 750,000", 1, e, nil)
		require.NotNil(t, row)
		assert.Equal(t, "7123456", row.DocNum)
	})

	t.Run("description_truncated", func(t *testing.T) {
		line := "واریز 750,000 " + strings.Repeat("م", 300)
		row := parseStatementLine(line, 1, e, nil)
		require.NotNil(t, row)
		assert.LessOrEqual(t, len([]rune(row.Desc)), maxDescRunes)
	})
}
