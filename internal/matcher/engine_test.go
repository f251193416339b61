package matcher

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkhesab/receipt-checker/internal/types"
)

func amt(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// ledgerRow builds a banking-type credit row that survives the pre-filter.
func ledgerRow(amount int64, codes []string, sender string) types.LedgerRow {
	return types.LedgerRow{
		Desc:    "واریز نقد به بانک",
		Credit:  amt(amount),
		Amount:  amt(amount),
		Codes:   codes,
		Sender:  sender,
		DocType: types.DocTypeCredit,
	}
}

func TestMatchByCodeExact(t *testing.T) {
	txns := []types.BankTransaction{
		{RowNum: 2, Ref: "99912337", Primary: "99912337", Amount: amt(500000), TxType: types.TxDeposit},
	}
	rows := []types.LedgerRow{ledgerRow(500000, []string{"99912337"}, "")}

	results := Match(rows, txns, types.DefaultMatchOptions())
	require.Len(t, results, 1)

	r := results[0]
	assert.True(t, r.Found)
	assert.Equal(t, types.StatusExact, r.Status)
	assert.Equal(t, 2, r.BankRow)
	assert.Equal(t, "99912337", r.BankRef)
	assert.Contains(t, r.MatchMethod, "99912337")
}

func TestMatchFullCodePreferredOverSuffix(t *testing.T) {
	// the full code identifies one transaction; its last-4 suffix collides
	// with another transaction's code
	txns := []types.BankTransaction{
		{RowNum: 2, Ref: "2337", Primary: "2337", Amount: amt(900000), TxType: types.TxDeposit},
		{RowNum: 3, Ref: "99912337", Primary: "99912337", Amount: amt(500000), TxType: types.TxDeposit},
	}
	rows := []types.LedgerRow{ledgerRow(500000, []string{"99912337"}, "")}

	results := Match(rows, txns, types.DefaultMatchOptions())
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].BankRow)
}

func TestMatchMultipleCandidatesNarrowedByAmount(t *testing.T) {
	txns := []types.BankTransaction{
		{RowNum: 2, Primary: "5555", Amount: amt(2000000), TxType: types.TxDeposit},
		{RowNum: 3, Primary: "5555", Amount: amt(1000000), TxType: types.TxDeposit},
	}
	rows := []types.LedgerRow{ledgerRow(1010000, []string{"5555"}, "")}

	results := Match(rows, txns, types.DefaultMatchOptions())
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, types.StatusExact, r.Status)
	assert.Equal(t, 3, r.BankRow)
	assert.Contains(t, r.MatchMethod, "چندگانه")
}

func TestMatchLockedTransactionReportsDuplicate(t *testing.T) {
	txns := []types.BankTransaction{
		{RowNum: 2, Primary: "8888", Amount: amt(500000), TxType: types.TxDeposit, IsLocked: true},
	}
	rows := []types.LedgerRow{ledgerRow(500000, []string{"8888"}, "")}

	results := Match(rows, txns, types.DefaultMatchOptions())
	require.Len(t, results, 1)

	r := results[0]
	assert.True(t, r.Found)
	assert.Equal(t, types.StatusDuplicate, r.Status)
	assert.Equal(t, "تکراری (قبلاً تطبیق شده)", r.MatchMethod)
}

func TestMatchLockedPreferredAmongCandidates(t *testing.T) {
	// when an unlocked twin exists the locked one must still be surfaced
	txns := []types.BankTransaction{
		{RowNum: 2, Primary: "7777", Amount: amt(500000), TxType: types.TxDeposit},
		{RowNum: 3, Primary: "7777", Amount: amt(500000), TxType: types.TxDeposit, IsLocked: true},
	}
	rows := []types.LedgerRow{ledgerRow(500000, []string{"7777"}, "")}

	results := Match(rows, txns, types.DefaultMatchOptions())
	require.Len(t, results, 1)
	assert.Equal(t, types.StatusDuplicate, results[0].Status)
	assert.Equal(t, 3, results[0].BankRow)
}

func TestMatchBySenderAmountTolerance(t *testing.T) {
	t.Run("just_inside_tolerance", func(t *testing.T) {
		txns := []types.BankTransaction{
			{RowNum: 2, Sender: "احمدی", Amount: amt(1049900), TxType: types.TxDeposit},
		}
		rows := []types.LedgerRow{ledgerRow(1000000, []string{"1111"}, "احمدی")}

		results := Match(rows, txns, types.DefaultMatchOptions())
		require.Len(t, results, 1)
		assert.Equal(t, types.StatusReview, results[0].Status)
		assert.Equal(t, "نام مشابه + مبلغ یکسان", results[0].MatchMethod)
	})

	t.Run("exactly_five_percent_rejected", func(t *testing.T) {
		txns := []types.BankTransaction{
			{RowNum: 2, Sender: "احمدی", Amount: amt(1050000), TxType: types.TxDeposit},
		}
		rows := []types.LedgerRow{ledgerRow(1000000, []string{"1111"}, "احمدی")}

		results := Match(rows, txns, types.DefaultMatchOptions())
		require.Len(t, results, 1)
		assert.False(t, results[0].Found)
		assert.Equal(t, types.StatusNotFound, results[0].Status)
	})
}

func TestMatchPartialSenderContainment(t *testing.T) {
	txns := []types.BankTransaction{
		{RowNum: 2, Sender: "حاج احمدی تهرانی", Amount: amt(1000000), TxType: types.TxDeposit},
	}
	rows := []types.LedgerRow{ledgerRow(1000000, []string{"1111"}, "احمدی")}

	results := Match(rows, txns, types.DefaultMatchOptions())
	require.Len(t, results, 1)
	assert.Equal(t, types.StatusReview, results[0].Status)
	assert.Equal(t, "نام جزئی مشابه + مبلغ یکسان", results[0].MatchMethod)
}

func TestMatchNameTierRequiresACode(t *testing.T) {
	// receipts that produced no tracking code are never matched on name alone
	txns := []types.BankTransaction{
		{RowNum: 2, Sender: "احمدی", Amount: amt(1000000), TxType: types.TxDeposit},
	}
	rows := []types.LedgerRow{ledgerRow(1000000, nil, "احمدی")}

	results := Match(rows, txns, types.DefaultMatchOptions())
	require.Len(t, results, 1)
	assert.Equal(t, types.StatusNotFound, results[0].Status)
}

func TestMatchUseAmountGatesNameTier(t *testing.T) {
	txns := []types.BankTransaction{
		{RowNum: 2, Sender: "احمدی", Amount: amt(1000000), TxType: types.TxDeposit},
	}
	rows := []types.LedgerRow{ledgerRow(1000000, []string{"1111"}, "احمدی")}

	opts := types.DefaultMatchOptions()
	opts.UseAmount = false
	results := Match(rows, txns, opts)
	require.Len(t, results, 1)
	assert.Equal(t, types.StatusNotFound, results[0].Status)
}

func TestMatchCreditOnlyFiltersDebitRows(t *testing.T) {
	rows := []types.LedgerRow{
		{Desc: "واریز", Credit: decimal.Zero, Debit: amt(500000), Amount: amt(500000), Codes: []string{"1234"}},
	}
	results := Match(rows, nil, types.DefaultMatchOptions())
	assert.Empty(t, results)
}

func TestMatchNonBankingRowsDropped(t *testing.T) {
	rows := []types.LedgerRow{
		{Desc: "فروش کالا", Credit: amt(500000), Amount: amt(500000)},
	}
	results := Match(rows, nil, types.DefaultMatchOptions())
	assert.Empty(t, results)
}

func TestMatchBareCodeGluedToLetters(t *testing.T) {
	// renderer artifacts can weld the code to the preceding word; the row
	// must still pass the banking pre-filter
	rows := []types.LedgerRow{
		{Desc: "فروش کالا1234", Credit: amt(500000), Amount: amt(500000), Codes: []string{"1234"}},
	}
	results := Match(rows, nil, types.DefaultMatchOptions())
	require.Len(t, results, 1)
	assert.Equal(t, types.StatusNotFound, results[0].Status)
}

func TestMatchDirectionFilterKeepsUnknown(t *testing.T) {
	txns := []types.BankTransaction{
		{RowNum: 2, Primary: "4444", Amount: amt(500000), TxType: types.TxWithdrawal},
		{RowNum: 3, Primary: "6666", Amount: amt(500000), TxType: types.TxUnknown},
	}
	rows := []types.LedgerRow{
		ledgerRow(500000, []string{"4444"}, ""),
		ledgerRow(500000, []string{"6666"}, ""),
	}

	opts := types.DefaultMatchOptions()
	opts.TxTypeFilter = types.TxDeposit
	results := Match(rows, txns, opts)
	require.Len(t, results, 2)

	// the withdrawal is hidden by the filter, the unclassified row is not
	assert.Equal(t, types.StatusNotFound, results[0].Status)
	assert.Equal(t, types.StatusExact, results[1].Status)
}

func TestMatchResultCarriesRowFields(t *testing.T) {
	txns := []types.BankTransaction{
		{RowNum: 2, Ref: "12345678", Primary: "12345678", Amount: amt(500000), Date: "1404/01/05", TxType: types.TxDeposit},
	}
	row := ledgerRow(500000, []string{"12345678"}, "احمدی")
	row.Date = "1404/01/04"
	row.DocNum = "712345"

	results := Match([]types.LedgerRow{row}, txns, types.DefaultMatchOptions())
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, 1, r.Index)
	assert.Equal(t, "1404/01/04", r.Date)
	assert.Equal(t, "712345", r.DocNum)
	assert.Equal(t, int64(500000), r.Amount)
	assert.Equal(t, "12345678", r.Codes)
	assert.Equal(t, "1404/01/05", r.BankDate)
}
