package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnotateDescription(t *testing.T) {
	t.Run("bracket_and_slash_rules_union", func(t *testing.T) {
		codes, sender := AnnotateDescription("واریز نقد به بانک (از مشتری) [صادرات منشادی،24454] خدمتی/2452", nil)
		assert.Equal(t, []string{"24454", "2452"}, codes)
		assert.Equal(t, "خدمتی", sender)
	})

	t.Run("code_before_name", func(t *testing.T) {
		codes, sender := AnnotateDescription("1102/برهام", nil)
		assert.Equal(t, []string{"1102"}, codes)
		assert.Equal(t, "برهام", sender)
	})

	t.Run("code_adjacent_to_bracket", func(t *testing.T) {
		codes, _ := AnnotateDescription("واریز 8842[غفاری]", nil)
		assert.Equal(t, []string{"8842"}, codes)
	})

	t.Run("code_pushed_after_reversed_bracket", func(t *testing.T) {
		// the renderer reverses RTL bracket pairs and pushes the code outside
		codes, _ := AnnotateDescription("[صادرات منشادی یزد]3030 واریز", nil)
		assert.Equal(t, []string{"3030"}, codes)
	})

	t.Run("short_bracket_does_not_false_positive", func(t *testing.T) {
		codes, _ := AnnotateDescription("[یک]3030", nil)
		assert.Empty(t, codes)
	})

	t.Run("pipe_isolated_cell", func(t *testing.T) {
		codes, _ := AnnotateDescription("واریز احمدی | 2452 | بابت فاکتور", nil)
		assert.Equal(t, []string{"2452"}, codes)
	})

	t.Run("pipe_trailing_cell", func(t *testing.T) {
		codes, _ := AnnotateDescription("واریز وجه | 100617", nil)
		assert.Equal(t, []string{"100617"}, codes)
	})

	t.Run("chained_codes", func(t *testing.T) {
		codes, _ := AnnotateDescription("واریز کد 0260/2502", nil)
		assert.Equal(t, []string{"0260", "2502"}, codes)
	})

	t.Run("date_is_not_a_code_chain", func(t *testing.T) {
		codes, _ := AnnotateDescription("تاریخ 1404/12/04", nil)
		assert.Empty(t, codes)
	})

	t.Run("owner_codes_subtracted", func(t *testing.T) {
		owner := NewOwnerCodes()
		owner.Add("8181")
		codes, _ := AnnotateDescription("واریز [8181] حسینی/2452", owner)
		assert.Equal(t, []string{"2452"}, codes)
	})

	t.Run("persian_digits_folded_before_extraction", func(t *testing.T) {
		// both the code rules and the sender patterns must see folded digits
		codes, sender := AnnotateDescription("خدمتی/۲۴۵۲", nil)
		assert.Equal(t, []string{"2452"}, codes)
		assert.Equal(t, "خدمتی", sender)
	})

	t.Run("empty_description", func(t *testing.T) {
		codes, sender := AnnotateDescription("", nil)
		assert.Nil(t, codes)
		assert.Equal(t, "", sender)
	})
}

func TestResolveSender(t *testing.T) {
	t.Run("name_before_slash_wins", func(t *testing.T) {
		assert.Equal(t, "خدمتی", resolveSender("[100617] خدمتی/2452"))
	})

	t.Run("name_after_bracket", func(t *testing.T) {
		assert.Equal(t, "دادور", resolveSender("[97830] دادور"))
	})

	t.Run("transfer_recipient", func(t *testing.T) {
		assert.Equal(t, "احمدی", resolveSender("حواله به: احمدی"))
	})

	t.Run("transfer_with_payer_prefix", func(t *testing.T) {
		got := resolveSender("پرداخت | رضایی (حواله به: 110 احمدی کریمی)")
		assert.Equal(t, "رضایی احمدی کریمی", got)
	})

	t.Run("no_pattern", func(t *testing.T) {
		assert.Equal(t, "", resolveSender("واریز نقدی"))
	})
}
