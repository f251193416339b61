package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairDigits(t *testing.T) {
	h := TahesabHeuristic{}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"nine_digits_trailing_pair", "123456722", "123456700"},
		{"longer_trailing_run", "123456222", "123456000"},
		{"four_digits_untouched", "5622", "5622"},
		{"six_digits_untouched", "123422", "123422"},
		{"single_trailing_two", "12345672", "12345672"},
		{"no_trailing_twos", "123456789", "123456789"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, h.RepairDigits(tc.in))
		})
	}
}

func TestCandidates(t *testing.T) {
	e := NewAmountExtractor()

	t.Run("sorted_descending", func(t *testing.T) {
		got := e.Candidates("جمع 50,000 و 1,200,000 و 1,500,000")
		require.Len(t, got, 3)
		assert.True(t, got[0].Equal(decimal.NewFromInt(1500000)))
		assert.True(t, got[1].Equal(decimal.NewFromInt(1200000)))
		assert.True(t, got[2].Equal(decimal.NewFromInt(50000)))
	})

	t.Run("small_numbers_excluded", func(t *testing.T) {
		assert.Empty(t, e.Candidates("ردیف 12 صفحه 3"))
	})

	t.Run("account_numbers_excluded", func(t *testing.T) {
		// ten digits is an account number, not an amount
		assert.Empty(t, e.Candidates("حساب 0412060171"))
	})

	t.Run("persian_digits", func(t *testing.T) {
		got := e.Candidates("واریز ۷۵۰,۰۰۰")
		require.Len(t, got, 1)
		assert.True(t, got[0].Equal(decimal.NewFromInt(750000)))
	})

	t.Run("glyph_repair_applied", func(t *testing.T) {
		got := e.Candidates("مبلغ 123456722")
		require.Len(t, got, 1)
		assert.True(t, got[0].Equal(decimal.NewFromInt(123456700)))
	})
}

func TestTransactionAmount(t *testing.T) {
	e := NewAmountExtractor()

	t.Run("second_largest_wins", func(t *testing.T) {
		// the largest figure on the line is the running balance
		amt, ok := e.TransactionAmount("واریز 50,000 750,000 1,500,000")
		require.True(t, ok)
		assert.True(t, amt.Equal(decimal.NewFromInt(750000)))
	})

	t.Run("single_candidate", func(t *testing.T) {
		amt, ok := e.TransactionAmount("واریز 750,000 بابت فاکتور")
		require.True(t, ok)
		assert.True(t, amt.Equal(decimal.NewFromInt(750000)))
	})

	t.Run("no_candidates_is_not_a_transaction", func(t *testing.T) {
		_, ok := e.TransactionAmount("صورتحساب معین - تاهساب")
		assert.False(t, ok)
	})
}
